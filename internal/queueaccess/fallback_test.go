package queueaccess_test

import (
	"context"
	"errors"
	"testing"

	"convoy/internal/ipc"
	"convoy/internal/queue"
	"convoy/internal/queueaccess"
	"convoy/internal/testsupport"
)

func TestOpenWithFallbackUsesStoreWhenDialFails(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	job := testsupport.NewJob(t, store, "/in/a.mkv", "/out/a.mp4")

	session, err := queueaccess.OpenWithFallback(
		func() (*ipc.Client, error) { return nil, errors.New("socket unavailable") },
		func() (*queue.Store, error) { return store, nil },
	)
	if err != nil {
		t.Fatalf("OpenWithFallback: %v", err)
	}

	ctx := context.Background()
	jobs, err := session.Access.List(ctx, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ID != job.ID {
		t.Fatalf("List = %+v, want the seeded job", jobs)
	}

	view, err := session.Access.Describe(ctx, job.ID)
	if err != nil {
		t.Fatalf("Describe: %v", err)
	}
	if view.InputPath != "/in/a.mkv" {
		t.Fatalf("Describe input = %q, want /in/a.mkv", view.InputPath)
	}

	stats, err := session.Access.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats[string(queue.StatusQueued)] != 1 {
		t.Fatalf("Stats queued = %d, want 1", stats[string(queue.StatusQueued)])
	}
}

func TestStoreAccessFiltersAndClears(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	keep := testsupport.NewJob(t, store, "/in/keep.mkv", "/out/keep.mp4")
	doomed := testsupport.NewJob(t, store, "/in/doomed.mkv", "/out/doomed.mp4")
	if _, err := store.MarkFailed(ctx, doomed.ID, "boom"); err != nil {
		t.Fatalf("MarkFailed: %v", err)
	}

	access := queueaccess.NewStoreAccess(store)

	failed, err := access.List(ctx, []string{"failed", "not-a-status"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(failed) != 1 || failed[0].ID != doomed.ID {
		t.Fatalf("List failed = %+v, want only the failed job", failed)
	}

	removed, err := access.ClearFailed(ctx)
	if err != nil {
		t.Fatalf("ClearFailed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("ClearFailed removed = %d, want 1", removed)
	}

	remaining, err := access.List(ctx, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != keep.ID {
		t.Fatalf("List after clear = %+v, want only the queued job", remaining)
	}
}

func TestSessionCloseWithoutCleanupIsNoop(t *testing.T) {
	var session queueaccess.Session
	if err := session.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
}

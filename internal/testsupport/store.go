package testsupport

import (
	"context"
	"testing"

	"convoy/internal/config"
	"convoy/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewJob creates a queued job for tests using the provided store.
func NewJob(t testing.TB, store *queue.Store, inputPath, outputPath string) *queue.Job {
	t.Helper()

	job, err := store.NewJob(context.Background(), inputPath, outputPath, "Balanced", "{}")
	if err != nil {
		t.Fatalf("store.NewJob: %v", err)
	}
	return job
}

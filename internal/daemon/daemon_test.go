package daemon_test

import (
	"context"
	"path/filepath"
	"testing"

	"convoy/internal/config"
	"convoy/internal/converter"
	"convoy/internal/daemon"
	"convoy/internal/events"
	"convoy/internal/logging"
	"convoy/internal/presets"
	"convoy/internal/queue"
	"convoy/internal/testsupport"
	"convoy/internal/workflow"
)

func newDaemon(t *testing.T) (*daemon.Daemon, *config.Config, *queue.Store) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	bus := events.NewBus()
	t.Cleanup(bus.Close)

	catalog := presets.NewCatalog(presets.Builtins()...)
	conv := converter.New(cfg, store, catalog, bus, logging.NewNop())
	coord := workflow.NewCoordinator(cfg, conv, bus, logging.NewNop())

	d, err := daemon.New(cfg, store, conv, coord, logging.NewNop())
	if err != nil {
		t.Fatalf("daemon.New failed: %v", err)
	}
	return d, cfg, store
}

func TestStartStopLifecycle(t *testing.T) {
	d, _, _ := newDaemon(t)
	ctx := context.Background()

	if d.Running() {
		t.Fatal("daemon running before Start")
	}
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !d.Running() {
		t.Fatal("daemon not running after Start")
	}
	if err := d.Start(ctx); err == nil {
		t.Fatal("expected error starting twice")
	}

	d.Stop()
	if d.Running() {
		t.Fatal("daemon still running after Stop")
	}

	// The lock is released, so a restart succeeds.
	if err := d.Start(ctx); err != nil {
		t.Fatalf("restart failed: %v", err)
	}
	d.Stop()
}

func TestAddFileValidatesInput(t *testing.T) {
	d, cfg, _ := newDaemon(t)
	ctx := context.Background()
	base := testsupport.BaseDir(cfg)

	if _, _, err := d.AddFile(ctx, "", ""); err == nil {
		t.Fatal("expected error for empty path")
	}
	if _, _, err := d.AddFile(ctx, filepath.Join(base, "absent.webm"), ""); err == nil {
		t.Fatal("expected error for missing file")
	}
	if _, _, err := d.AddFile(ctx, base, ""); err == nil {
		t.Fatal("expected error for directory")
	}

	text := filepath.Join(base, "readme.txt")
	testsupport.WriteFile(t, text, 8)
	if _, _, err := d.AddFile(ctx, text, ""); err == nil {
		t.Fatal("expected error for unsupported extension")
	}

	input := filepath.Join(base, "clip.webm")
	testsupport.WriteFile(t, input, 64)
	id, duplicate, err := d.AddFile(ctx, input, "")
	if err != nil || duplicate || id == "" {
		t.Fatalf("AddFile = (%q, %v, %v)", id, duplicate, err)
	}

	_, duplicate, err = d.AddFile(ctx, input, "")
	if err != nil || !duplicate {
		t.Fatalf("second AddFile = (dup=%v, err=%v), want duplicate", duplicate, err)
	}
}

func TestApplySetting(t *testing.T) {
	d, _, _ := newDaemon(t)

	cases := []struct {
		key     string
		value   string
		wantErr bool
	}{
		{"output_directory", "/media/out", false},
		{"use_subdirectory", "false", false},
		{"use_subdirectory", "maybe", true},
		{"subdirectory_name", "done", false},
		{"subdirectory_name", "  ", true},
		{"filename_pattern", "{name}_{number}", false},
		{"zoomed_thumbnails", "on", false},
		{"bogus", "1", true},
	}
	for _, tc := range cases {
		err := d.ApplySetting(tc.key, tc.value)
		if tc.wantErr && err == nil {
			t.Fatalf("ApplySetting(%q, %q) expected error", tc.key, tc.value)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("ApplySetting(%q, %q) failed: %v", tc.key, tc.value, err)
		}
	}

	settings := d.Settings()
	if settings.OutputDirectory != "/media/out" || settings.UseSubdirectory {
		t.Fatalf("settings not applied: %#v", settings)
	}
	if settings.FilenamePattern != "{name}_{number}" || !settings.ZoomedThumbnails {
		t.Fatalf("settings not applied: %#v", settings)
	}
}

func TestRenderTemplate(t *testing.T) {
	d, _, _ := newDaemon(t)

	path, valid := d.RenderTemplate("{name}_{number}", "/media/show.webm", 4, 12)
	if !valid {
		t.Fatal("template reported invalid")
	}
	if filepath.Base(path) != "show_04.mp4" {
		t.Fatalf("rendered = %q, want show_04.mp4", path)
	}

	_, valid = d.RenderTemplate("{unknown}", "/media/show.webm", 0, 0)
	if valid {
		t.Fatal("invalid template reported valid")
	}
}

func TestTestNotificationWithoutTopic(t *testing.T) {
	d, _, _ := newDaemon(t)

	sent, message, err := d.TestNotification(context.Background())
	if err != nil {
		t.Fatalf("TestNotification failed: %v", err)
	}
	if sent || message == "" {
		t.Fatalf("unexpected result: sent=%v message=%q", sent, message)
	}
}

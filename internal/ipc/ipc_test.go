package ipc_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"convoy/internal/config"
	"convoy/internal/converter"
	"convoy/internal/daemon"
	"convoy/internal/events"
	"convoy/internal/ipc"
	"convoy/internal/logging"
	"convoy/internal/presets"
	"convoy/internal/queue"
	"convoy/internal/testsupport"
	"convoy/internal/workflow"
)

func startServer(t *testing.T) (*ipc.Client, *config.Config, *queue.Store) {
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

	ctx, cancel := context.WithCancel(context.Background())
	server, err := ipc.NewServer(ctx, cfg.SocketPath(), d, logging.NewNop())
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	server.Serve()
	t.Cleanup(func() {
		server.Close()
		cancel()
	})

	client, err := ipc.Dial(cfg.SocketPath())
	if err != nil {
		t.Fatalf("Dial failed: %v", err)
	}
	t.Cleanup(func() {
		client.Close()
	})
	return client, cfg, store
}

func TestPingAndStatus(t *testing.T) {
	client, cfg, _ := startServer(t)

	ping, err := client.Ping()
	if err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
	if ping.PID != os.Getpid() {
		t.Fatalf("ping pid = %d, want %d", ping.PID, os.Getpid())
	}

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status failed: %v", err)
	}
	if status.Running {
		t.Fatal("daemon reported running before start")
	}
	if status.QueueDBPath != cfg.DatabasePath() {
		t.Fatalf("db path = %q, want %q", status.QueueDBPath, cfg.DatabasePath())
	}
	if status.SocketPath != cfg.SocketPath() {
		t.Fatalf("socket path = %q, want %q", status.SocketPath, cfg.SocketPath())
	}
	if _, ok := status.QueueStats[string(queue.StatusQueued)]; !ok {
		t.Fatalf("queue stats missing queued count: %#v", status.QueueStats)
	}
}

func TestAddFileAndQueueReads(t *testing.T) {
	client, cfg, _ := startServer(t)

	input := filepath.Join(testsupport.BaseDir(cfg), "movie.webm")
	testsupport.WriteFile(t, input, 128)

	added, err := client.AddFile(input, "Balanced")
	if err != nil {
		t.Fatalf("AddFile failed: %v", err)
	}
	if added.Duplicate || added.JobID == "" {
		t.Fatalf("unexpected add response: %#v", added)
	}

	// The same input again is reported as a duplicate, not an error.
	again, err := client.AddFile(input, "Balanced")
	if err != nil {
		t.Fatalf("AddFile(duplicate) failed: %v", err)
	}
	if !again.Duplicate {
		t.Fatalf("expected duplicate response: %#v", again)
	}

	list, err := client.QueueList(nil)
	if err != nil {
		t.Fatalf("QueueList failed: %v", err)
	}
	if len(list.Jobs) != 1 || list.Jobs[0].ID != added.JobID {
		t.Fatalf("unexpected queue list: %#v", list.Jobs)
	}

	described, err := client.QueueDescribe(added.JobID)
	if err != nil {
		t.Fatalf("QueueDescribe failed: %v", err)
	}
	if described.Job.InputPath != input {
		t.Fatalf("described input = %q, want %q", described.Job.InputPath, input)
	}

	if _, err := client.QueueList([]string{"bogus"}); err == nil {
		t.Fatal("expected error for unknown status filter")
	}

	cancel, err := client.QueueCancel(added.JobID)
	if err != nil {
		t.Fatalf("QueueCancel failed: %v", err)
	}
	if !cancel.Cancelled {
		t.Fatal("cancel not acknowledged")
	}

	cleared, err := client.QueueClearFailed()
	if err != nil {
		t.Fatalf("QueueClearFailed failed: %v", err)
	}
	if cleared.Removed != 1 {
		t.Fatalf("cleared %d jobs, want 1", cleared.Removed)
	}
}

func TestAddFileRejectsInvalidInputs(t *testing.T) {
	client, cfg, _ := startServer(t)

	if _, err := client.AddFile(filepath.Join(testsupport.BaseDir(cfg), "missing.webm"), ""); err == nil {
		t.Fatal("expected error for missing file")
	}

	text := filepath.Join(testsupport.BaseDir(cfg), "notes.txt")
	testsupport.WriteFile(t, text, 16)
	if _, err := client.AddFile(text, ""); err == nil {
		t.Fatal("expected error for unsupported extension")
	}
}

func TestAddBatchNumbersOutputs(t *testing.T) {
	client, cfg, _ := startServer(t)

	if _, err := client.SettingsSet("filename_pattern", "{name}_{number}"); err != nil {
		t.Fatalf("SettingsSet failed: %v", err)
	}

	base := testsupport.BaseDir(cfg)
	inputs := make([]string, 0, 3)
	for _, name := range []string{"a.webm", "b.webm", "c.webm"} {
		path := filepath.Join(base, name)
		testsupport.WriteFile(t, path, 32)
		inputs = append(inputs, path)
	}

	batch, err := client.AddBatch(inputs, "Web")
	if err != nil {
		t.Fatalf("AddBatch failed: %v", err)
	}
	if len(batch.JobIDs) != 3 {
		t.Fatalf("batch ids = %d, want 3", len(batch.JobIDs))
	}

	list, err := client.QueueList(nil)
	if err != nil {
		t.Fatalf("QueueList failed: %v", err)
	}
	want := []string{"a_0.mp4", "b_1.mp4", "c_2.mp4"}
	for i, job := range list.Jobs {
		if filepath.Base(job.OutputPath) != want[i] {
			t.Fatalf("output[%d] = %q, want suffix %q", i, job.OutputPath, want[i])
		}
		if job.PresetName != "Web" {
			t.Fatalf("preset = %q, want Web", job.PresetName)
		}
	}
}

func TestSettingsRoundTripOverRPC(t *testing.T) {
	client, _, _ := startServer(t)

	updated, err := client.SettingsSet("output_directory", "/media/out")
	if err != nil {
		t.Fatalf("SettingsSet failed: %v", err)
	}
	if updated.Settings.OutputDirectory != "/media/out" {
		t.Fatalf("settings = %#v", updated.Settings)
	}

	fetched, err := client.SettingsGet()
	if err != nil {
		t.Fatalf("SettingsGet failed: %v", err)
	}
	if fetched.Settings.OutputDirectory != "/media/out" {
		t.Fatalf("fetched settings = %#v", fetched.Settings)
	}

	// Invalid template falls back to the default instead of erroring.
	invalid, err := client.SettingsSet("filename_pattern", "{bogus}")
	if err != nil {
		t.Fatalf("SettingsSet(pattern) failed: %v", err)
	}
	if invalid.Settings.FilenamePattern != "{name}_converted" {
		t.Fatalf("pattern = %q, want default", invalid.Settings.FilenamePattern)
	}

	if _, err := client.SettingsSet("unknown_key", "1"); err == nil {
		t.Fatal("expected error for unknown setting")
	}
}

func TestTemplateRenderOverRPC(t *testing.T) {
	client, _, _ := startServer(t)

	rendered, err := client.TemplateRender(ipc.TemplateRenderRequest{
		Template:  "{name}_{number}",
		InputPath: "/media/show.webm",
		Index:     4,
		BatchSize: 12,
	})
	if err != nil {
		t.Fatalf("TemplateRender failed: %v", err)
	}
	if !rendered.Valid {
		t.Fatal("template reported invalid")
	}
	if filepath.Base(rendered.Path) != "show_04.mp4" {
		t.Fatalf("rendered = %q, want show_04.mp4", rendered.Path)
	}

	invalid, err := client.TemplateRender(ipc.TemplateRenderRequest{
		Template:  "{bogus}",
		InputPath: "/media/show.webm",
	})
	if err != nil {
		t.Fatalf("TemplateRender(invalid) failed: %v", err)
	}
	if invalid.Valid {
		t.Fatal("invalid template reported valid")
	}
}

func TestPresetsAndHistoryOverRPC(t *testing.T) {
	client, _, store := startServer(t)

	resp, err := client.Presets()
	if err != nil {
		t.Fatalf("Presets failed: %v", err)
	}
	if len(resp.Presets) != len(presets.Builtins()) {
		t.Fatalf("presets = %d, want %d", len(resp.Presets), len(presets.Builtins()))
	}
	defaults := 0
	for _, preset := range resp.Presets {
		if preset.Default {
			defaults++
		}
	}
	if defaults != 1 {
		t.Fatalf("default presets = %d, want 1", defaults)
	}

	job := testsupport.NewJob(t, store, "/media/a.webm", "/out/a.mp4")
	entry := &queue.HistoryEntry{
		JobID:      job.ID,
		InputPath:  job.InputPath,
		OutputPath: job.OutputPath,
		PresetName: job.PresetName,
		SizeAfter:  999,
	}
	if _, err := store.AppendHistory(context.Background(), entry); err != nil {
		t.Fatalf("AppendHistory failed: %v", err)
	}

	history, err := client.History()
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history.Entries) != 1 || history.Entries[0].JobID != job.ID {
		t.Fatalf("unexpected history: %#v", history.Entries)
	}

	cleared, err := client.HistoryClear()
	if err != nil {
		t.Fatalf("HistoryClear failed: %v", err)
	}
	if cleared.Removed != 1 {
		t.Fatalf("cleared %d entries, want 1", cleared.Removed)
	}
}

func TestLogTailOverRPC(t *testing.T) {
	client, cfg, _ := startServer(t)

	logPath := filepath.Join(cfg.Paths.LogDir, "convoyd.log")
	if err := os.MkdirAll(cfg.Paths.LogDir, 0o755); err != nil {
		t.Fatalf("mkdir log dir: %v", err)
	}
	if err := os.WriteFile(logPath, []byte("first\nsecond\nthird\n"), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	resp, err := client.LogTail(ipc.LogTailRequest{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("LogTail failed: %v", err)
	}
	if len(resp.Lines) != 2 || resp.Lines[0] != "second" || resp.Lines[1] != "third" {
		t.Fatalf("unexpected tail: %#v", resp.Lines)
	}
	if resp.Offset == 0 {
		t.Fatal("expected advancing offset")
	}
}

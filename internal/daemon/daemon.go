package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gofrs/flock"

	"convoy/internal/config"
	"convoy/internal/converter"
	"convoy/internal/logging"
	"convoy/internal/naming"
	"convoy/internal/presets"
	"convoy/internal/queue"
	"convoy/internal/workflow"
)

// Daemon coordinates the background services and enforces single-instance
// execution via a file lock.
type Daemon struct {
	cfg         *config.Config
	logger      *slog.Logger
	store       *queue.Store
	converter   *converter.Service
	coordinator *workflow.Coordinator
	logPath     string

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// Status represents daemon runtime information.
type Status struct {
	Running      bool
	Converting   bool
	PID          int
	QueueDBPath  string
	SocketPath   string
	LockFilePath string
	QueueStats   map[queue.Status]int
	PresetCount  int
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *queue.Store, conv *converter.Service, coord *workflow.Coordinator, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || conv == nil || coord == nil {
		return nil, errors.New("daemon requires config, store, converter, and coordinator")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:         cfg,
		logger:      logging.WithComponent(logger, "daemon"),
		store:       store,
		converter:   conv,
		coordinator: coord,
		logPath:     filepath.Join(cfg.Paths.LogDir, "convoyd.log"),
		lockPath:    lockPath,
		lock:        flock.New(lockPath),
	}, nil
}

// Start acquires the daemon lock and launches the converter worker and the
// coordinator sync loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another convoy daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.converter.Start(runCtx); err != nil {
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start converter: %w", err)
	}
	if err := d.coordinator.Start(runCtx); err != nil {
		d.converter.Stop()
		_ = d.lock.Unlock()
		cancel()
		return fmt.Errorf("start coordinator: %w", err)
	}

	d.cancel = cancel
	d.running.Store(true)
	d.logger.Info("convoy daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops background processing and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	d.coordinator.Stop()
	d.converter.Stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("convoy daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether background processing is active.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) Status {
	stats, err := d.store.Stats(ctx)
	if err != nil {
		d.logger.Warn("queue stats unavailable", logging.Error(err))
	}
	return Status{
		Running:      d.running.Load(),
		Converting:   d.converter.Running(),
		PID:          os.Getpid(),
		QueueDBPath:  d.cfg.DatabasePath(),
		SocketPath:   d.cfg.SocketPath(),
		LockFilePath: d.lockPath,
		QueueStats:   stats,
		PresetCount:  len(d.converter.Presets()),
	}
}

// AddFile validates and enqueues one input file. A duplicate active input
// is reported without error.
func (d *Daemon) AddFile(ctx context.Context, inputPath, presetName string) (jobID string, duplicate bool, err error) {
	abs, err := d.validateInput(inputPath)
	if err != nil {
		return "", false, err
	}
	id, err := d.coordinator.AddFile(ctx, abs, presetName)
	if errors.Is(err, workflow.ErrDuplicateInput) {
		return "", true, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, false, nil
}

// AddBatch validates and enqueues inputs as one numbered batch. Invalid
// paths fail the whole request before anything is submitted.
func (d *Daemon) AddBatch(ctx context.Context, inputPaths []string, presetName string) ([]string, error) {
	if len(inputPaths) == 0 {
		return nil, errors.New("at least one input file is required")
	}
	resolved := make([]string, 0, len(inputPaths))
	for _, input := range inputPaths {
		abs, err := d.validateInput(input)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, abs)
	}
	return d.coordinator.AddBatch(ctx, resolved, presetName)
}

func (d *Daemon) validateInput(inputPath string) (string, error) {
	trimmed := strings.TrimSpace(inputPath)
	if trimmed == "" {
		return "", errors.New("input path is required")
	}
	abs, err := filepath.Abs(trimmed)
	if err != nil {
		return "", fmt.Errorf("resolve input path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("stat input file: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("input path %q is a directory", abs)
	}
	ext := strings.ToLower(filepath.Ext(info.Name()))
	for _, allowed := range d.cfg.Conversion.SourceExtensions {
		if ext == strings.ToLower(allowed) {
			return abs, nil
		}
	}
	return "", fmt.Errorf("unsupported file extension %q", ext)
}

// ListQueue returns jobs filtered by optional statuses.
func (d *Daemon) ListQueue(ctx context.Context, statuses []queue.Status) ([]*queue.Job, error) {
	return d.store.List(ctx, statuses...)
}

// GetJob returns a single job by id.
func (d *Daemon) GetJob(ctx context.Context, id string) (*queue.Job, error) {
	return d.store.GetJob(ctx, id)
}

// ClearQueue removes all jobs.
func (d *Daemon) ClearQueue(ctx context.Context) (int64, error) {
	return d.store.Clear(ctx)
}

// ClearCompleted removes completed jobs.
func (d *Daemon) ClearCompleted(ctx context.Context) (int64, error) {
	return d.coordinator.ClearCompleted(ctx)
}

// ClearFailed removes failed jobs.
func (d *Daemon) ClearFailed(ctx context.Context) (int64, error) {
	return d.coordinator.ClearFailed(ctx)
}

// CancelJob stops one job.
func (d *Daemon) CancelJob(ctx context.Context, id string) error {
	return d.coordinator.Cancel(ctx, id)
}

// ResetStuck requeues jobs left in flight by an unclean shutdown.
func (d *Daemon) ResetStuck(ctx context.Context) (int64, error) {
	return d.store.ResetStuckProcessing(ctx)
}

// History returns recorded conversions, newest first.
func (d *Daemon) History(ctx context.Context) ([]*queue.HistoryEntry, error) {
	return d.store.ListHistory(ctx)
}

// ClearHistory removes the conversion history.
func (d *Daemon) ClearHistory(ctx context.Context) (int64, error) {
	return d.coordinator.ClearHistory(ctx)
}

// Presets returns the loaded catalog.
func (d *Daemon) Presets(ctx context.Context) ([]presets.Preset, error) {
	return d.coordinator.LoadPresets(ctx)
}

// Settings returns the current naming settings.
func (d *Daemon) Settings() queue.Settings {
	return d.coordinator.Settings()
}

// ApplySetting updates one naming setting by key.
func (d *Daemon) ApplySetting(key, value string) error {
	switch key {
	case "output_directory":
		d.coordinator.SetOutputDirectory(value)
	case "use_subdirectory":
		enabled, err := parseBool(value)
		if err != nil {
			return err
		}
		d.coordinator.SetUseSubdirectory(enabled)
	case "subdirectory_name":
		if strings.TrimSpace(value) == "" {
			return errors.New("subdirectory name cannot be blank")
		}
		d.coordinator.SetSubdirectoryName(value)
	case "filename_pattern":
		d.coordinator.SetFilenamePattern(value)
	case "zoomed_thumbnails":
		enabled, err := parseBool(value)
		if err != nil {
			return err
		}
		d.coordinator.SetZoomedThumbnails(enabled)
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", value)
}

// RenderTemplate previews a naming template against a sample input using
// the current settings. Invalid templates render with the default and are
// flagged.
func (d *Daemon) RenderTemplate(template, inputPath string, index, batchSize int) (path string, valid bool) {
	valid = naming.Validate(template)
	settings := d.coordinator.Settings()
	req := naming.Request{
		InputPath:        inputPath,
		OutputDirectory:  settings.OutputDirectory,
		UseSubdirectory:  settings.UseSubdirectory,
		SubdirectoryName: settings.SubdirectoryName,
		Template:         template,
		Container:        d.cfg.Conversion.TargetContainer,
		SourceExtensions: d.cfg.Conversion.SourceExtensions,
		Claimed:          naming.NewPathSet(),
		Index:            index,
		BatchSize:        batchSize,
	}
	if index > 0 || batchSize > 0 {
		req.ForceNumber = true
	}
	return naming.Resolve(req), valid
}

// TestNotification sends a test push via the current configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.converter.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// QueueHealth returns aggregate queue diagnostics.
func (d *Daemon) QueueHealth(ctx context.Context) (queue.HealthSummary, error) {
	return d.store.Health(ctx)
}

// DatabaseHealth returns detailed database diagnostics.
func (d *Daemon) DatabaseHealth(ctx context.Context) (queue.DatabaseHealth, error) {
	return d.store.CheckHealth(ctx)
}

// LogPath returns the path to the daemon log file.
func (d *Daemon) LogPath() string {
	return d.logPath
}

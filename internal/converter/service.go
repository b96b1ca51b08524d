package converter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"convoy/internal/config"
	"convoy/internal/events"
	"convoy/internal/logging"
	"convoy/internal/media/ffprobe"
	"convoy/internal/notifications"
	"convoy/internal/presets"
	"convoy/internal/queue"
	"convoy/internal/services/ffmpeg"
)

// prober matches ffprobe.Inspect so tests can substitute probe results.
type prober func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Service owns the conversion worker and implements the collaborator
// contract consumed by the workflow coordinator.
type Service struct {
	cfg      *config.Config
	store    *queue.Store
	catalog  *presets.Catalog
	bus      *events.Bus
	client   ffmpeg.Client
	notifier notifications.Service
	logger   *slog.Logger
	probe    prober

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	active  map[string]context.CancelFunc
}

// Option configures optional Service behavior.
type Option func(*Service)

// WithFFmpegClient overrides the ffmpeg client (used in tests).
func WithFFmpegClient(client ffmpeg.Client) Option {
	return func(s *Service) {
		if client != nil {
			s.client = client
		}
	}
}

// WithProber overrides the media prober (used in tests).
func WithProber(probe prober) Option {
	return func(s *Service) {
		if probe != nil {
			s.probe = probe
		}
	}
}

// WithNotifier overrides the notification service (used in tests).
func WithNotifier(notifier notifications.Service) Option {
	return func(s *Service) {
		if notifier != nil {
			s.notifier = notifier
		}
	}
}

// New constructs a converter service.
func New(cfg *config.Config, store *queue.Store, catalog *presets.Catalog, bus *events.Bus, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.NewNop()
	}
	svc := &Service{
		cfg:      cfg,
		store:    store,
		catalog:  catalog,
		bus:      bus,
		client:   ffmpeg.NewCLI(ffmpeg.WithBinary(cfg.Conversion.FFmpegBinary)),
		notifier: notifications.NewService(cfg),
		logger:   logging.WithComponent(logger, "converter"),
		probe:    ffprobe.Inspect,
		active:   make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Presets returns the loaded preset catalog.
func (s *Service) Presets() []presets.Preset {
	return s.catalog.List()
}

// AddJob enqueues a conversion with a by-value preset snapshot. The output
// path must already be resolved and collision-free.
func (s *Service) AddJob(ctx context.Context, inputPath, outputPath string, preset presets.Preset) (string, error) {
	snapshot, err := json.Marshal(preset.Clone())
	if err != nil {
		return "", fmt.Errorf("marshal preset snapshot: %w", err)
	}

	job, err := s.store.NewJob(ctx, inputPath, outputPath, preset.Name, string(snapshot))
	if err != nil {
		return "", err
	}

	s.publish(events.Event{Kind: events.KindJobUpdated, JobID: job.ID, Revision: job.Revision})
	s.logger.Info("job enqueued",
		logging.String(logging.FieldJobID, job.ID),
		logging.String("input", inputPath),
		logging.String("output", outputPath),
		logging.String("preset", preset.Name),
	)
	return job.ID, nil
}

// Jobs returns every job in the queue.
func (s *Service) Jobs(ctx context.Context) ([]*queue.Job, error) {
	return s.store.List(ctx)
}

// History returns the recorded conversion history, newest first.
func (s *Service) History(ctx context.Context) ([]*queue.HistoryEntry, error) {
	return s.store.ListHistory(ctx)
}

// ClearCompleted removes completed jobs.
func (s *Service) ClearCompleted(ctx context.Context) (int64, error) {
	count, err := s.store.ClearCompleted(ctx)
	if err != nil {
		return 0, err
	}
	s.publish(events.Event{Kind: events.KindJobsCleared})
	return count, nil
}

// ClearFailed removes failed jobs.
func (s *Service) ClearFailed(ctx context.Context) (int64, error) {
	count, err := s.store.ClearFailed(ctx)
	if err != nil {
		return 0, err
	}
	s.publish(events.Event{Kind: events.KindJobsCleared})
	return count, nil
}

// ClearHistory removes all history entries.
func (s *Service) ClearHistory(ctx context.Context) (int64, error) {
	return s.store.ClearHistory(ctx)
}

// PathExists reports whether a path exists on disk. It never errors; any
// stat failure reads as absent.
func (s *Service) PathExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// LoadSettings reads the persisted naming settings.
func (s *Service) LoadSettings(ctx context.Context) (queue.Settings, error) {
	settings, _, err := s.store.LoadSettings(ctx)
	return settings, err
}

// SaveSettings persists naming settings, returning the sanitized values.
func (s *Service) SaveSettings(ctx context.Context, settings queue.Settings) (queue.Settings, error) {
	return s.store.SaveSettings(ctx, settings)
}

// TestNotification sends a test push through the configured notifier.
func (s *Service) TestNotification(ctx context.Context) error {
	return s.notifier.TestNotification(ctx)
}

// Cancel stops a job. Queued and ready jobs fail immediately; a processing
// job moves to cancelling and its ffmpeg context is cancelled, after which
// the worker finalizes the failure.
func (s *Service) Cancel(ctx context.Context, jobID string) error {
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return err
	}

	switch job.Status {
	case queue.StatusQueued, queue.StatusReady:
		failed, err := s.store.MarkFailed(ctx, job.ID, queue.CancelledMessage)
		if err != nil {
			return err
		}
		s.publish(events.Event{Kind: events.KindConversionFailed, JobID: failed.ID, Revision: failed.Revision, Message: queue.CancelledMessage})
		return nil
	case queue.StatusProcessing:
		updated, err := s.store.Transition(ctx, job.ID, queue.StatusProcessing, queue.StatusCancelling)
		if err != nil {
			return err
		}
		s.publish(events.Event{Kind: events.KindJobUpdated, JobID: updated.ID, Revision: updated.Revision})
		s.cancelActive(job.ID)
		return nil
	case queue.StatusCancelling:
		s.cancelActive(job.ID)
		return nil
	default:
		return fmt.Errorf("job %s is already %s", job.ID, job.Status)
	}
}

// Start requeues stuck jobs and launches the worker loop.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("converter already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	reset, err := s.store.ResetStuckProcessing(runCtx)
	if err != nil {
		s.logger.Warn("reset stuck jobs failed; stale processing jobs may remain", logging.Error(err))
	} else if reset > 0 {
		s.logger.Info("requeued jobs from unclean shutdown", logging.Int64("count", reset))
		s.publish(events.Event{Kind: events.KindJobUpdated})
	}

	if pending, err := s.store.List(runCtx, queue.StatusQueued, queue.StatusReady); err == nil && len(pending) > 0 {
		if err := s.notifier.NotifyQueueStarted(runCtx, len(pending)); err != nil {
			s.logger.Warn("queue started notification failed", logging.Error(err))
		}
	}

	go s.run(runCtx)
	return nil
}

// Stop terminates the worker and waits for the in-flight job to unwind.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
}

// Running reports whether the worker loop is active.
func (s *Service) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Service) publish(event events.Event) {
	if s.bus != nil {
		s.bus.Publish(event)
	}
}

func (s *Service) registerCancel(jobID string, cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[jobID] = cancel
}

func (s *Service) unregisterCancel(jobID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, jobID)
}

func (s *Service) cancelActive(jobID string) {
	s.mu.Lock()
	cancel := s.active[jobID]
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (s *Service) pollInterval() time.Duration {
	interval := time.Duration(s.cfg.Conversion.QueuePollInterval) * time.Second
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return interval
}

func (s *Service) retryInterval() time.Duration {
	interval := time.Duration(s.cfg.Conversion.ErrorRetryInterval) * time.Second
	if interval <= 0 {
		interval = 10 * time.Second
	}
	return interval
}

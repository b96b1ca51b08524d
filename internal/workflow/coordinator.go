package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"convoy/internal/config"
	"convoy/internal/events"
	"convoy/internal/logging"
	"convoy/internal/naming"
	"convoy/internal/presets"
	"convoy/internal/queue"
)

// ErrDuplicateInput reports that an input file already has an active job.
// Callers treat it as success; it exists for logging and diagnostics.
var ErrDuplicateInput = errors.New("input already has an active job")

// persistTimeout bounds the asynchronous settings write.
const persistTimeout = 5 * time.Second

// Converter is the collaborator contract the coordinator drives. The
// converter service implements it; tests substitute a fake.
type Converter interface {
	Presets() []presets.Preset
	AddJob(ctx context.Context, inputPath, outputPath string, preset presets.Preset) (string, error)
	Jobs(ctx context.Context) ([]*queue.Job, error)
	History(ctx context.Context) ([]*queue.HistoryEntry, error)
	ClearCompleted(ctx context.Context) (int64, error)
	ClearFailed(ctx context.Context) (int64, error)
	ClearHistory(ctx context.Context) (int64, error)
	Cancel(ctx context.Context, jobID string) error
	PathExists(path string) bool
	LoadSettings(ctx context.Context) (queue.Settings, error)
	SaveSettings(ctx context.Context, settings queue.Settings) (queue.Settings, error)
}

// Coordinator serializes all ledger mutation behind one mutex. Batch
// submission is deliberately sequential so auto-numbering stays
// deterministic.
type Coordinator struct {
	cfg       *config.Config
	converter Converter
	bus       *events.Bus
	logger    *slog.Logger

	mu             sync.Mutex
	jobs           map[string]*queue.Job
	order          []string
	history        []*queue.HistoryEntry
	settings       queue.Settings
	settingsLoaded bool
	presets        []presets.Preset
	presetsLoaded  bool

	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewCoordinator constructs a coordinator over the given collaborator.
func NewCoordinator(cfg *config.Config, converter Converter, bus *events.Bus, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Coordinator{
		cfg:       cfg,
		converter: converter,
		bus:       bus,
		logger:    logging.WithComponent(logger, "workflow"),
		jobs:      make(map[string]*queue.Job),
		settings:  queue.DefaultSettings(),
	}
}

// Start loads the initial ledger snapshot and launches the synchronizer
// loop. It returns an error when already running.
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return errors.New("coordinator already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true
	c.mu.Unlock()

	if err := c.Refresh(runCtx); err != nil {
		c.logger.Warn("initial ledger refresh failed", logging.Error(err))
	}

	if c.bus != nil {
		ch, cancelSub := c.bus.Subscribe()
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			defer cancelSub()
			c.runSynchronizer(runCtx, ch)
		}()
	}
	return nil
}

// Stop terminates the synchronizer and waits for pending async persists.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	cancel := c.cancel
	c.running = false
	c.cancel = nil
	c.mu.Unlock()

	cancel()
	c.wg.Wait()
}

// Refresh re-fetches jobs, history, and settings from the collaborator.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	if err := c.refreshJobsLocked(ctx); err != nil {
		firstErr = err
	}
	if err := c.refreshHistoryLocked(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	if err := c.loadSettingsLocked(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// LoadPresets returns the preset catalog, fetching it from the collaborator
// on first use. An empty catalog is retried once before failing.
func (c *Coordinator) LoadPresets(ctx context.Context) ([]presets.Preset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.loadPresetsLocked(); err != nil {
		return nil, err
	}
	return clonePresets(c.presets), nil
}

func (c *Coordinator) loadPresetsLocked() error {
	if c.presetsLoaded {
		return nil
	}
	list := c.converter.Presets()
	if len(list) == 0 {
		list = c.converter.Presets()
	}
	if len(list) == 0 {
		return errors.New("no conversion presets available")
	}
	c.presets = clonePresets(list)
	c.presetsLoaded = true
	return nil
}

// selectPresetLocked resolves a preset by name, falling back to the
// default (second catalog entry, else the first) for unknown names.
func (c *Coordinator) selectPresetLocked(name string) presets.Preset {
	for _, preset := range c.presets {
		if preset.Name == name {
			return preset.Clone()
		}
	}
	if name != "" {
		c.logger.Warn("unknown preset, using default", logging.String("preset", name))
	}
	if len(c.presets) >= 2 {
		return c.presets[1].Clone()
	}
	return c.presets[0].Clone()
}

// AddFile resolves a collision-free output path for the input and submits
// one job. An input that already has an active job is a logged no-op; the
// returned ErrDuplicateInput marks it without failing the caller.
func (c *Coordinator) AddFile(ctx context.Context, inputPath, presetName string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadPresetsLocked(); err != nil {
		return "", err
	}
	if err := c.loadSettingsLocked(ctx); err != nil {
		c.logger.Warn("settings unavailable, using defaults", logging.Error(err))
	}
	if c.hasActiveInputLocked(inputPath) {
		c.logger.Info("skipping input with active job", logging.String("input", inputPath))
		return "", ErrDuplicateInput
	}

	preset := c.selectPresetLocked(presetName)
	claimed := c.claimedPathsLocked()
	output := c.resolveOutputLocked(naming.Request{
		InputPath:        inputPath,
		OutputDirectory:  c.settings.OutputDirectory,
		UseSubdirectory:  c.settings.UseSubdirectory,
		SubdirectoryName: c.settings.SubdirectoryName,
		Template:         c.settings.FilenamePattern,
		Container:        c.cfg.Conversion.TargetContainer,
		SourceExtensions: c.cfg.Conversion.SourceExtensions,
		Claimed:          claimed,
	})

	id, err := c.converter.AddJob(ctx, inputPath, output, preset)
	if err != nil {
		return "", fmt.Errorf("add job for %s: %w", inputPath, err)
	}
	if err := c.refreshJobsLocked(ctx); err != nil {
		c.logger.Warn("ledger refresh after add failed", logging.Error(err))
	}
	return id, nil
}

// AddBatch submits inputs strictly in order. Inputs with active jobs are
// filtered out. A template containing {number} pins each survivor to its
// batch position; every resolved path joins the snapshot before the next
// input is considered, so batch members cannot collide even before the
// filesystem is written. The first submission failure aborts the remainder;
// already-submitted jobs stay.
func (c *Coordinator) AddBatch(ctx context.Context, inputPaths []string, presetName string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.loadPresetsLocked(); err != nil {
		return nil, err
	}
	if err := c.loadSettingsLocked(ctx); err != nil {
		c.logger.Warn("settings unavailable, using defaults", logging.Error(err))
	}

	batch := make([]string, 0, len(inputPaths))
	for _, input := range inputPaths {
		if c.hasActiveInputLocked(input) {
			c.logger.Info("skipping input with active job", logging.String("input", input))
			continue
		}
		batch = append(batch, input)
	}
	if len(batch) == 0 {
		return nil, nil
	}

	preset := c.selectPresetLocked(presetName)
	claimed := c.claimedPathsLocked()
	numbered := naming.HasNumberPlaceholder(naming.Sanitize(c.settings.FilenamePattern))

	ids := make([]string, 0, len(batch))
	for position, input := range batch {
		req := naming.Request{
			InputPath:        input,
			OutputDirectory:  c.settings.OutputDirectory,
			UseSubdirectory:  c.settings.UseSubdirectory,
			SubdirectoryName: c.settings.SubdirectoryName,
			Template:         c.settings.FilenamePattern,
			Container:        c.cfg.Conversion.TargetContainer,
			SourceExtensions: c.cfg.Conversion.SourceExtensions,
			Claimed:          claimed,
			BatchSize:        len(batch),
		}
		if numbered {
			req.ForceNumber = true
			req.Index = position
		}
		output := c.resolveOutputLocked(req)

		id, err := c.converter.AddJob(ctx, input, output, preset)
		if err != nil {
			if refreshErr := c.refreshJobsLocked(ctx); refreshErr != nil {
				c.logger.Warn("ledger refresh after add failed", logging.Error(refreshErr))
			}
			return ids, fmt.Errorf("batch add aborted at %s: %w", input, err)
		}
		ids = append(ids, id)
		claimed.Add(output)
	}

	if err := c.refreshJobsLocked(ctx); err != nil {
		c.logger.Warn("ledger refresh after add failed", logging.Error(err))
	}
	return ids, nil
}

// resolveOutputLocked runs the snapshot resolution, then the live
// existence loop: while the candidate exists on disk it joins the claimed
// set and resolution retries with forced numbering. This is the only place
// live filesystem state influences naming.
func (c *Coordinator) resolveOutputLocked(req naming.Request) string {
	claimed := req.Claimed
	if claimed == nil {
		claimed = naming.NewPathSet()
		req.Claimed = claimed
	}
	candidate := naming.ResolveAvailable(req)
	for c.converter.PathExists(candidate) {
		claimed.Add(candidate)
		retry := req
		retry.ForceNumber = true
		candidate = naming.ResolveAvailable(retry)
	}
	return candidate
}

// claimedPathsLocked snapshots every output path held by current jobs and
// recorded history.
func (c *Coordinator) claimedPathsLocked() naming.PathSet {
	claimed := naming.NewPathSet()
	for _, job := range c.jobs {
		claimed.Add(job.OutputPath)
	}
	for _, entry := range c.history {
		claimed.Add(entry.OutputPath)
	}
	return claimed
}

func (c *Coordinator) hasActiveInputLocked(inputPath string) bool {
	for _, job := range c.jobs {
		if job.InputPath == inputPath && job.Status.IsActive() {
			return true
		}
	}
	return false
}

// Cancel delegates job cancellation to the collaborator.
func (c *Coordinator) Cancel(ctx context.Context, jobID string) error {
	return c.converter.Cancel(ctx, jobID)
}

// ClearCompleted removes completed jobs and refreshes the ledger.
func (c *Coordinator) ClearCompleted(ctx context.Context) (int64, error) {
	count, err := c.converter.ClearCompleted(ctx)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.refreshJobsLocked(ctx); err != nil {
		c.logger.Warn("ledger refresh after clear failed", logging.Error(err))
	}
	return count, nil
}

// ClearFailed removes failed jobs and refreshes the ledger.
func (c *Coordinator) ClearFailed(ctx context.Context) (int64, error) {
	count, err := c.converter.ClearFailed(ctx)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.refreshJobsLocked(ctx); err != nil {
		c.logger.Warn("ledger refresh after clear failed", logging.Error(err))
	}
	return count, nil
}

// ClearHistory removes the conversion history and refreshes the ledger.
func (c *Coordinator) ClearHistory(ctx context.Context) (int64, error) {
	count, err := c.converter.ClearHistory(ctx)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.refreshHistoryLocked(ctx); err != nil {
		c.logger.Warn("history refresh after clear failed", logging.Error(err))
	}
	return count, nil
}

// Jobs returns a copy of every job in ledger order.
func (c *Coordinator) Jobs() []queue.Job {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]queue.Job, 0, len(c.order))
	for _, id := range c.order {
		if job, ok := c.jobs[id]; ok {
			out = append(out, *job)
		}
	}
	return out
}

// Job returns a copy of one job by id.
func (c *Coordinator) Job(id string) (queue.Job, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	job, ok := c.jobs[id]
	if !ok {
		return queue.Job{}, false
	}
	return *job, true
}

// History returns a copy of the recorded history, newest first.
func (c *Coordinator) History() []queue.HistoryEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]queue.HistoryEntry, 0, len(c.history))
	for _, entry := range c.history {
		out = append(out, *entry)
	}
	return out
}

// Settings returns the current naming settings.
func (c *Coordinator) Settings() queue.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// Presets returns the loaded preset catalog, or nil before the first load.
func (c *Coordinator) Presets() []presets.Preset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clonePresets(c.presets)
}

// SetOutputDirectory updates the output directory. Empty means the input
// file's own directory.
func (c *Coordinator) SetOutputDirectory(path string) {
	c.updateSettings(func(s *queue.Settings) {
		s.OutputDirectory = path
	})
}

// SetUseSubdirectory toggles the converted-output subdirectory.
func (c *Coordinator) SetUseSubdirectory(enabled bool) {
	c.updateSettings(func(s *queue.Settings) {
		s.UseSubdirectory = enabled
	})
}

// SetSubdirectoryName updates the subdirectory leaf name. Blank keeps the
// default.
func (c *Coordinator) SetSubdirectoryName(name string) {
	c.updateSettings(func(s *queue.Settings) {
		if name != "" {
			s.SubdirectoryName = name
		}
	})
}

// SetFilenamePattern updates the naming template, substituting the default
// for an invalid pattern.
func (c *Coordinator) SetFilenamePattern(pattern string) {
	if !naming.Validate(pattern) {
		c.logger.Warn("invalid filename pattern, using default", logging.String("pattern", pattern))
		pattern = naming.DefaultTemplate
	}
	c.updateSettings(func(s *queue.Settings) {
		s.FilenamePattern = pattern
	})
}

// SetZoomedThumbnails toggles enlarged thumbnails.
func (c *Coordinator) SetZoomedThumbnails(enabled bool) {
	c.updateSettings(func(s *queue.Settings) {
		s.ZoomedThumbnails = enabled
	})
}

// updateSettings applies a mutation to the in-memory settings immediately
// and persists the result asynchronously. Persistence failure is logged
// only; the in-memory value stands.
func (c *Coordinator) updateSettings(mutate func(*queue.Settings)) {
	c.mu.Lock()
	mutate(&c.settings)
	c.settingsLoaded = true
	snapshot := c.settings
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if _, err := c.converter.SaveSettings(ctx, snapshot); err != nil {
			c.logger.Warn("settings persist failed", logging.Error(err))
		}
	}()
}

func (c *Coordinator) loadSettingsLocked(ctx context.Context) error {
	if c.settingsLoaded {
		return nil
	}
	settings, err := c.converter.LoadSettings(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	c.settings = settings
	c.settingsLoaded = true
	return nil
}

// refreshJobsLocked replaces the ledger's job set wholesale with the
// collaborator's view, keeping whichever copy of each job carries the
// freshest revision so a just-merged progress event cannot be rolled back
// by a slower re-fetch.
func (c *Coordinator) refreshJobsLocked(ctx context.Context) error {
	list, err := c.converter.Jobs(ctx)
	if err != nil {
		return fmt.Errorf("refresh jobs: %w", err)
	}
	next := make(map[string]*queue.Job, len(list))
	order := make([]string, 0, len(list))
	for _, fetched := range list {
		job := *fetched
		if prev, ok := c.jobs[job.ID]; ok && prev.Revision > job.Revision {
			job = *prev
		}
		next[job.ID] = &job
		order = append(order, job.ID)
	}
	c.jobs = next
	c.order = order
	return nil
}

func (c *Coordinator) refreshHistoryLocked(ctx context.Context) error {
	list, err := c.converter.History(ctx)
	if err != nil {
		return fmt.Errorf("refresh history: %w", err)
	}
	next := make([]*queue.HistoryEntry, 0, len(list))
	for _, fetched := range list {
		entry := *fetched
		next = append(next, &entry)
	}
	c.history = next
	return nil
}

func clonePresets(list []presets.Preset) []presets.Preset {
	if list == nil {
		return nil
	}
	out := make([]presets.Preset, 0, len(list))
	for _, preset := range list {
		out = append(out, preset.Clone())
	}
	return out
}

// Package daemonrun bootstraps the convoyd process: logging, PID file,
// store, converter, coordinator, daemon, and IPC server, then waits for a
// termination signal.
package daemonrun

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"convoy/internal/config"
	"convoy/internal/converter"
	"convoy/internal/daemon"
	"convoy/internal/events"
	"convoy/internal/ipc"
	"convoy/internal/logging"
	"convoy/internal/preflight"
	"convoy/internal/presets"
	"convoy/internal/queue"
	"convoy/internal/workflow"
)

// Options configures daemon process runtime behavior.
type Options struct {
	LogLevel string
}

// Run starts the convoy daemon runtime loop and blocks until a signal
// arrives or the parent context is cancelled.
func Run(cmdCtx context.Context, cfg *config.Config, opts Options) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}

	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("prepare directories: %w", err)
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("convoyd-%s.log", runID))

	level := opts.LogLevel
	if level == "" {
		level = cfg.Logging.Level
	}
	logger, err := logging.New(logging.Options{
		Level:            level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
	})
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	logDependencySnapshot(logger, cfg)
	if err := ensureCurrentLogPointer(cfg.Paths.LogDir, logPath); err != nil {
		fmt.Fprintf(os.Stderr, "warn: unable to update convoyd.log link: %v\n", err)
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "convoyd-*.log", Exclude: []string{logPath}},
	)

	pidPath := cfg.PIDPath()
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open queue store", logging.Error(err))
		return err
	}
	defer store.Close()

	if err := seedSettings(signalCtx, cfg, store); err != nil {
		logger.Warn("seed naming settings failed", logging.Error(err))
	}

	catalog, err := presets.Load(cfg.Presets.Path)
	if err != nil {
		logger.Error("load preset catalog", logging.Error(err))
		return err
	}

	bus := events.NewBus()
	defer bus.Close()

	conv := converter.New(cfg, store, catalog, bus, logger)
	coord := workflow.NewCoordinator(cfg, conv, bus, logger)

	d, err := daemon.New(cfg, store, conv, coord, logger)
	if err != nil {
		return fmt.Errorf("create daemon: %w", err)
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(signalCtx, cfg.SocketPath(), d, logger)
	if err != nil {
		return fmt.Errorf("start IPC server: %w", err)
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(signalCtx); err != nil {
		logger.Warn("daemon start failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check configuration and queue database access"),
		)
	}

	<-signalCtx.Done()
	logger.Info("convoy daemon shutting down")
	return nil
}

// seedSettings writes the configured naming defaults into the settings
// table on first run only; later edits through the CLI stay authoritative.
func seedSettings(ctx context.Context, cfg *config.Config, store *queue.Store) error {
	_, found, err := store.LoadSettings(ctx)
	if err != nil {
		return err
	}
	if found {
		return nil
	}
	seed := queue.Settings{
		OutputDirectory:  cfg.Naming.OutputDirectory,
		UseSubdirectory:  cfg.Naming.UseSubdirectory,
		SubdirectoryName: cfg.Naming.SubdirectoryName,
		FilenamePattern:  cfg.Naming.FilenamePattern,
		ZoomedThumbnails: cfg.Naming.ZoomedThumbnails,
	}
	_, err = store.SaveSettings(ctx, seed)
	return err
}

func ensureCurrentLogPointer(logDir, target string) error {
	if logDir == "" || target == "" {
		return nil
	}
	current := filepath.Join(logDir, "convoyd.log")
	if err := os.Remove(current); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing log pointer: %w", err)
	}
	if err := os.Symlink(target, current); err == nil {
		return nil
	}
	if err := os.Link(target, current); err != nil {
		return fmt.Errorf("link log pointer: %w", err)
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}

func logDependencySnapshot(logger *slog.Logger, cfg *config.Config) {
	if logger == nil || cfg == nil {
		return
	}
	attrs := []logging.Attr{
		logging.Bool("ntfy_configured", strings.TrimSpace(cfg.Notifications.NtfyTopic) != ""),
	}
	for _, status := range preflight.CheckSystemDeps(cfg) {
		key := strings.ToLower(status.Name)
		attrs = append(attrs,
			logging.Bool(key+"_available", status.Available),
			logging.String(key+"_binary", status.Command),
		)
		if !status.Available && status.Detail != "" {
			attrs = append(attrs, logging.String(key+"_detail", status.Detail))
		}
	}
	logger.Info("dependency snapshot", logging.Args(attrs...)...)
}

package converter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"convoy/internal/events"
	"convoy/internal/logging"
	"convoy/internal/presets"
	"convoy/internal/queue"
	"convoy/internal/services"
	"convoy/internal/services/ffmpeg"
)

const (
	messageReady      = "Ready to convert"
	messageConverting = "Converting video..."
)

func (s *Service) run(ctx context.Context) {
	defer s.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := s.store.NextForStatuses(ctx, queue.StatusQueued, queue.StatusReady)
		if err != nil {
			s.logger.Error("failed to fetch next job", logging.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.retryInterval()):
			}
			continue
		}
		if job == nil {
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.pollInterval()):
			}
			continue
		}

		if err := s.processJob(ctx, job); err != nil {
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return
			}
		}
	}
}

func (s *Service) processJob(ctx context.Context, job *queue.Job) error {
	ctx = services.WithJobID(ctx, job.ID)
	switch job.Status {
	case queue.StatusQueued:
		return s.preprocess(services.WithStage(ctx, "preprocess"), job)
	case queue.StatusReady:
		return s.convert(services.WithStage(ctx, "convert"), job)
	default:
		return nil
	}
}

// preprocess probes the input and extracts a thumbnail. Media inspection
// failures are non-fatal; the job still becomes ready.
func (s *Service) preprocess(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)

	result, err := s.probe(ctx, s.cfg.Conversion.FFprobeBinary, job.InputPath)
	if err != nil {
		logger.Warn("probe failed; converting without duration", logging.Error(err))
	} else {
		job.DurationSeconds = result.DurationSeconds()
		job.SizeBefore = result.SizeBytes()
	}
	if job.SizeBefore == 0 {
		if info, err := os.Stat(job.InputPath); err == nil {
			job.SizeBefore = info.Size()
		}
	}

	if job.DurationSeconds > 0 && result.HasVideo() {
		thumbPath := filepath.Join(s.cfg.ThumbnailDir(), job.ID+".jpg")
		if err := os.MkdirAll(s.cfg.ThumbnailDir(), 0o755); err != nil {
			logger.Warn("thumbnail directory unavailable", logging.Error(err))
		} else if err := s.client.ExtractThumbnail(ctx, job.InputPath, thumbPath, job.DurationSeconds*0.1); err != nil {
			logger.Warn("thumbnail extraction failed", logging.Error(err))
		} else {
			job.ThumbnailPath = thumbPath
		}
	}

	job.StatusMessage = messageReady
	if err := s.store.Update(ctx, job); err != nil {
		return fmt.Errorf("persist preprocess results: %w", err)
	}

	ready, err := s.store.Transition(ctx, job.ID, queue.StatusQueued, queue.StatusReady)
	if err != nil {
		// A concurrent cancel may have failed the job already.
		logger.Warn("job left preprocess unexpectedly", logging.Error(err))
		return nil
	}
	s.publish(events.Event{Kind: events.KindJobUpdated, JobID: ready.ID, Revision: ready.Revision, Message: messageReady})
	logger.Info("job ready", logging.Float64("duration_seconds", ready.DurationSeconds))
	return nil
}

func (s *Service) convert(ctx context.Context, job *queue.Job) error {
	logger := logging.WithContext(ctx, s.logger)

	processing, err := s.store.Transition(ctx, job.ID, queue.StatusReady, queue.StatusProcessing)
	if err != nil {
		logger.Warn("job left ready unexpectedly", logging.Error(err))
		return nil
	}
	s.publish(events.Event{Kind: events.KindJobUpdated, JobID: processing.ID, Revision: processing.Revision})

	jobCtx, cancelJob := context.WithCancel(ctx)
	defer cancelJob()
	s.registerCancel(job.ID, cancelJob)
	defer s.unregisterCancel(job.ID)

	if err := os.MkdirAll(filepath.Dir(processing.OutputPath), 0o755); err != nil {
		return s.failJob(ctx, processing.ID, fmt.Sprintf("create output directory: %v", err), logger)
	}

	var preset presets.Preset
	if err := json.Unmarshal([]byte(processing.PresetJSON), &preset); err != nil {
		return s.failJob(ctx, processing.ID, fmt.Sprintf("decode preset snapshot: %v", err), logger)
	}

	if rev, err := s.store.SetProgress(ctx, processing.ID, 0, messageConverting); err == nil {
		s.publish(events.Event{Kind: events.KindProgress, JobID: processing.ID, Revision: rev, Percent: 0, Message: messageConverting})
	}

	sample := time.Duration(s.cfg.Conversion.ProgressSampleInterval) * time.Second
	if sample <= 0 {
		sample = time.Second
	}
	var lastSample time.Time

	req := ffmpeg.ConvertRequest{
		InputPath:       processing.InputPath,
		OutputPath:      processing.OutputPath,
		PresetArgs:      preset.FFmpegArgs(),
		DurationSeconds: processing.DurationSeconds,
	}
	convertErr := s.client.Convert(jobCtx, req, func(update ffmpeg.ProgressUpdate) {
		now := time.Now()
		if update.Percent < 100 && now.Sub(lastSample) < sample {
			return
		}
		lastSample = now
		rev, err := s.store.SetProgress(ctx, processing.ID, update.Percent, messageConverting)
		if err != nil {
			return
		}
		s.publish(events.Event{Kind: events.KindProgress, JobID: processing.ID, Revision: rev, Percent: update.Percent, Message: messageConverting})
	})

	if convertErr != nil {
		// Abandon the job mid-flight on daemon shutdown; startup recovery
		// requeues it.
		if ctx.Err() != nil {
			return context.Canceled
		}

		current, err := s.store.GetJob(ctx, processing.ID)
		if err != nil {
			return err
		}
		message := convertErr.Error()
		if current.Status == queue.StatusCancelling || jobCtx.Err() != nil {
			message = queue.CancelledMessage
		}
		removeIncompleteOutput(processing.OutputPath)
		return s.failJob(ctx, processing.ID, message, logger)
	}

	return s.completeJob(ctx, processing, logger)
}

func (s *Service) completeJob(ctx context.Context, job *queue.Job, logger *slog.Logger) error {
	if rev, err := s.store.SetProgress(ctx, job.ID, 100, "Conversion complete"); err == nil {
		s.publish(events.Event{Kind: events.KindProgress, JobID: job.ID, Revision: rev, Percent: 100, Message: "Conversion complete"})
	}

	completed, err := s.store.Transition(ctx, job.ID, queue.StatusProcessing, queue.StatusCompleted)
	if err != nil {
		logger.Warn("completion transition failed", logging.Error(err))
		return err
	}

	var sizeAfter int64
	if info, statErr := os.Stat(completed.OutputPath); statErr == nil {
		sizeAfter = info.Size()
	}
	entry := &queue.HistoryEntry{
		JobID:           completed.ID,
		InputPath:       completed.InputPath,
		OutputPath:      completed.OutputPath,
		PresetName:      completed.PresetName,
		SizeBefore:      completed.SizeBefore,
		SizeAfter:       sizeAfter,
		DurationSeconds: completed.DurationSeconds,
	}
	if _, err := s.store.AppendHistory(ctx, entry); err != nil {
		logger.Warn("history append failed", logging.Error(err))
	}

	s.publish(events.Event{Kind: events.KindConversionComplete, JobID: completed.ID, Revision: completed.Revision, Percent: 100})
	logger.Info("conversion complete",
		logging.String("output", completed.OutputPath),
		logging.Int64("size_after", sizeAfter),
	)

	if err := s.notifier.NotifyConversionCompleted(ctx, filepath.Base(completed.InputPath), completed.OutputPath); err != nil {
		logger.Warn("completion notification failed", logging.Error(err))
	}
	return nil
}

func (s *Service) failJob(ctx context.Context, jobID, message string, logger *slog.Logger) error {
	failed, err := s.store.MarkFailed(ctx, jobID, message)
	if err != nil {
		logger.Warn("failure transition failed", logging.Error(err))
		return err
	}
	s.publish(events.Event{Kind: events.KindConversionFailed, JobID: failed.ID, Revision: failed.Revision, Message: message})
	logger.Warn("conversion failed", logging.String("reason", message))

	if err := s.notifier.NotifyConversionFailed(ctx, filepath.Base(failed.InputPath), message); err != nil {
		logger.Warn("failure notification failed", logging.Error(err))
	}
	return nil
}

// removeIncompleteOutput discards a partial output file so retried or failed
// jobs never leave truncated media behind.
func removeIncompleteOutput(path string) {
	if path == "" {
		return
	}
	_ = os.Remove(path)
}

package workflow

import (
	"context"

	"convoy/internal/events"
	"convoy/internal/logging"
)

// messageConverting is the generic placeholder applied when a progress
// event arrives for a job with no status message yet.
const messageConverting = "Converting video..."

// runSynchronizer folds bus events into the ledger until the context is
// cancelled or the bus closes. Fold errors are logged, never fatal.
func (c *Coordinator) runSynchronizer(ctx context.Context, ch <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			c.apply(ctx, event)
		}
	}
}

// apply merges one event. Progress merges are additive and revision-gated;
// structural events trigger an authoritative re-fetch, which sidesteps any
// ordering races between the worker and the event stream.
func (c *Coordinator) apply(ctx context.Context, event events.Event) {
	switch event.Kind {
	case events.KindProgress:
		c.mergeProgress(ctx, event)
	case events.KindJobUpdated, events.KindConversionFailed, events.KindJobsCleared:
		c.mu.Lock()
		err := c.refreshJobsLocked(ctx)
		c.mu.Unlock()
		if err != nil {
			c.logger.Warn("job refresh failed", logging.String("event", string(event.Kind)), logging.Error(err))
		}
	case events.KindConversionComplete:
		c.mu.Lock()
		jobsErr := c.refreshJobsLocked(ctx)
		historyErr := c.refreshHistoryLocked(ctx)
		c.mu.Unlock()
		if jobsErr != nil {
			c.logger.Warn("job refresh failed", logging.String("event", string(event.Kind)), logging.Error(jobsErr))
		}
		if historyErr != nil {
			c.logger.Warn("history refresh failed", logging.Error(historyErr))
		}
	default:
		c.logger.Warn("unhandled event kind", logging.String("event", string(event.Kind)))
	}
}

// mergeProgress folds a progress event into the job it names. Stale events
// (revision behind the ledger) are dropped; an unknown job id triggers a
// full re-fetch instead.
func (c *Coordinator) mergeProgress(ctx context.Context, event events.Event) {
	c.mu.Lock()
	job, ok := c.jobs[event.JobID]
	if !ok {
		err := c.refreshJobsLocked(ctx)
		c.mu.Unlock()
		if err != nil {
			c.logger.Warn("job refresh failed", logging.String("event", string(event.Kind)), logging.Error(err))
		}
		return
	}
	defer c.mu.Unlock()

	if event.Revision > 0 && event.Revision < job.Revision {
		return
	}
	job.Progress = event.Percent
	if event.Revision > job.Revision {
		job.Revision = event.Revision
	}
	if event.Message != "" {
		job.StatusMessage = event.Message
	} else if job.StatusMessage == "" {
		job.StatusMessage = messageConverting
	}
}

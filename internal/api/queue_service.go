package api

import (
	"context"

	"convoy/internal/queue"
)

// QueueReader abstracts queue persistence interactions needed for API queries.
type QueueReader interface {
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Job, error)
	GetJob(ctx context.Context, id string) (*queue.Job, error)
	Stats(ctx context.Context) (map[queue.Status]int, error)
	ListHistory(ctx context.Context) ([]*queue.HistoryEntry, error)
}

// QueueService exposes read-only queue operations returning API DTOs.
type QueueService struct {
	store QueueReader
}

// NewQueueService constructs a QueueService around the provided reader.
func NewQueueService(store QueueReader) *QueueService {
	if store == nil {
		return nil
	}
	return &QueueService{store: store}
}

// List returns jobs filtered by status in submission order.
func (s *QueueService) List(ctx context.Context, statuses ...queue.Status) ([]JobView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	jobs, err := s.store.List(ctx, statuses...)
	if err != nil {
		return nil, err
	}
	return FromJobs(jobs), nil
}

// Describe fetches a single job by id.
func (s *QueueService) Describe(ctx context.Context, id string) (*JobView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	job, err := s.store.GetJob(ctx, id)
	if err != nil || job == nil {
		return nil, err
	}
	view := FromJob(job)
	return &view, nil
}

// Stats returns queue summary counts keyed by status string.
func (s *QueueService) Stats(ctx context.Context) (map[string]int, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return MergeQueueStats(stats), nil
}

// History returns the recorded conversions, newest first.
func (s *QueueService) History(ctx context.Context) ([]HistoryView, error) {
	if s == nil || s.store == nil {
		return nil, nil
	}
	entries, err := s.store.ListHistory(ctx)
	if err != nil {
		return nil, err
	}
	return FromHistoryEntries(entries), nil
}

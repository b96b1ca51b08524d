package queue

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// historyCap bounds the history table; the oldest entries are trimmed once
// the cap is exceeded.
const historyCap = 100

// AppendHistory records a completed conversion and trims the table to the
// most recent entries.
func (s *Store) AppendHistory(ctx context.Context, entry *HistoryEntry) (*HistoryEntry, error) {
	if entry == nil {
		return nil, errors.New("history entry is nil")
	}
	completedAt := entry.CompletedAt
	if completedAt.IsZero() {
		completedAt = time.Now().UTC()
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO history (
            job_id, input_path, output_path, preset_name,
            size_before, size_after, duration_seconds, completed_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.JobID,
		entry.InputPath,
		entry.OutputPath,
		entry.PresetName,
		entry.SizeBefore,
		entry.SizeAfter,
		entry.DurationSeconds,
		completedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert history entry: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := s.execWithRetry(
		ctx,
		`DELETE FROM history WHERE id NOT IN (SELECT id FROM history ORDER BY id DESC LIMIT ?)`,
		historyCap,
	); err != nil {
		return nil, fmt.Errorf("trim history: %w", err)
	}

	stored := *entry
	stored.ID = id
	stored.CompletedAt = completedAt.UTC()
	return &stored, nil
}

// ListHistory returns history entries, newest first.
func (s *Store) ListHistory(ctx context.Context) ([]*HistoryEntry, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, job_id, input_path, output_path, preset_name,
                size_before, size_after, duration_seconds, completed_at
         FROM history ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var entries []*HistoryEntry
	for rows.Next() {
		var (
			entry        HistoryEntry
			completedRaw string
		)
		if err := rows.Scan(
			&entry.ID,
			&entry.JobID,
			&entry.InputPath,
			&entry.OutputPath,
			&entry.PresetName,
			&entry.SizeBefore,
			&entry.SizeAfter,
			&entry.DurationSeconds,
			&completedRaw,
		); err != nil {
			return nil, err
		}
		if completed, err := parseTimeString(completedRaw); err == nil {
			entry.CompletedAt = completed
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

// ClearHistory removes all history entries.
func (s *Store) ClearHistory(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM history`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

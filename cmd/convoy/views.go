package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"convoy/internal/api"
	"convoy/internal/queue"
	"convoy/internal/textutil"
)

// jobTimeFormat matches the timestamp layout the API layer emits.
const jobTimeFormat = "2006-01-02T15:04:05.000Z07:00"

func buildQueueStatusRows(stats map[string]int) [][]string {
	if len(stats) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(stats))
	for _, status := range queue.AllStatuses() {
		count, ok := stats[string(status)]
		if !ok {
			continue
		}
		rows = append(rows, []string{textutil.StatusLabel(string(status)), fmt.Sprintf("%d", count)})
	}
	return rows
}

func buildQueueListRows(jobs []api.JobView) [][]string {
	rows := make([][]string, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, []string{
			shortID(job.ID),
			filepath.Base(job.InputPath),
			textutil.StatusLabel(job.Status),
			formatProgress(job.Status, job.Progress),
			job.PresetName,
			filepath.Base(job.OutputPath),
			formatDisplayTime(job.CreatedAt),
		})
	}
	return rows
}

func buildHistoryRows(entries []api.HistoryView) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			filepath.Base(entry.InputPath),
			entry.OutputPath,
			entry.PresetName,
			formatSizeChange(entry.SizeBefore, entry.SizeAfter),
			formatDisplayTime(entry.CompletedAt),
		})
	}
	return rows
}

func buildPresetRows(presets []api.PresetView) [][]string {
	rows := make([][]string, 0, len(presets))
	for _, preset := range presets {
		rows = append(rows, []string{
			preset.Name,
			preset.Description,
			preset.VideoCodec,
			preset.AudioCodec,
			formatQuality(preset),
			textutil.Ternary(preset.Default, "yes", ""),
		})
	}
	return rows
}

func formatQuality(preset api.PresetView) string {
	if preset.CRF > 0 {
		return fmt.Sprintf("crf %d", preset.CRF)
	}
	if preset.Bitrate != "" {
		return preset.Bitrate
	}
	return "-"
}

func formatSizeChange(before, after int64) string {
	if after <= 0 {
		return "-"
	}
	if before <= 0 {
		return textutil.FormatBytes(after)
	}
	return fmt.Sprintf("%s -> %s", textutil.FormatBytes(before), textutil.FormatBytes(after))
}

func formatProgress(status string, progress float64) string {
	parsed, ok := queue.ParseStatus(status)
	if !ok {
		return "-"
	}
	switch parsed {
	case queue.StatusCompleted:
		return "100%"
	case queue.StatusProcessing, queue.StatusCancelling:
		return fmt.Sprintf("%.0f%%", progress)
	default:
		return "-"
	}
}

func shortID(id string) string {
	id = strings.TrimSpace(id)
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatDisplayTime(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	for _, layout := range []string{jobTimeFormat, time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Local().Format("2006-01-02 15:04")
		}
	}
	return value
}

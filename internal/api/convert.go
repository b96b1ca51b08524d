package api

import (
	"time"

	"convoy/internal/presets"
	"convoy/internal/queue"
)

// FromJob converts a queue job into its API view.
func FromJob(job *queue.Job) JobView {
	if job == nil {
		return JobView{}
	}
	return JobView{
		ID:              job.ID,
		InputPath:       job.InputPath,
		OutputPath:      job.OutputPath,
		PresetName:      job.PresetName,
		Status:          string(job.Status),
		Progress:        job.Progress,
		DurationSeconds: job.DurationSeconds,
		SizeBefore:      job.SizeBefore,
		StatusMessage:   job.StatusMessage,
		ErrorMessage:    job.ErrorMessage,
		ThumbnailPath:   job.ThumbnailPath,
		Revision:        job.Revision,
		CreatedAt:       formatTime(job.CreatedAt),
		UpdatedAt:       formatTime(job.UpdatedAt),
	}
}

// FromJobs converts a slice of queue jobs preserving order.
func FromJobs(jobs []*queue.Job) []JobView {
	if len(jobs) == 0 {
		return nil
	}
	out := make([]JobView, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, FromJob(job))
	}
	return out
}

// FromHistoryEntry converts a history record into its API view.
func FromHistoryEntry(entry *queue.HistoryEntry) HistoryView {
	if entry == nil {
		return HistoryView{}
	}
	return HistoryView{
		ID:              entry.ID,
		JobID:           entry.JobID,
		InputPath:       entry.InputPath,
		OutputPath:      entry.OutputPath,
		PresetName:      entry.PresetName,
		SizeBefore:      entry.SizeBefore,
		SizeAfter:       entry.SizeAfter,
		DurationSeconds: entry.DurationSeconds,
		CompletedAt:     formatTime(entry.CompletedAt),
	}
}

// FromHistoryEntries converts history records preserving order.
func FromHistoryEntries(entries []*queue.HistoryEntry) []HistoryView {
	if len(entries) == 0 {
		return nil
	}
	out := make([]HistoryView, 0, len(entries))
	for _, entry := range entries {
		out = append(out, FromHistoryEntry(entry))
	}
	return out
}

// FromPreset converts a catalog entry, marking whether it is the default.
func FromPreset(preset presets.Preset, isDefault bool) PresetView {
	view := PresetView{
		Name:        preset.Name,
		Description: preset.Description,
		VideoCodec:  preset.VideoCodec,
		AudioCodec:  preset.AudioCodec,
		Bitrate:     preset.Bitrate,
		Scale:       preset.Scale,
		FastStart:   preset.FastStart,
		Default:     isDefault,
	}
	if preset.CRF != nil {
		view.CRF = *preset.CRF
	}
	return view
}

// FromSettings converts persisted naming settings.
func FromSettings(settings queue.Settings) SettingsView {
	return SettingsView{
		OutputDirectory:  settings.OutputDirectory,
		UseSubdirectory:  settings.UseSubdirectory,
		SubdirectoryName: settings.SubdirectoryName,
		FilenamePattern:  settings.FilenamePattern,
		ZoomedThumbnails: settings.ZoomedThumbnails,
	}
}

// ToSettings converts a settings view back into the queue representation.
func ToSettings(view SettingsView) queue.Settings {
	return queue.Settings{
		OutputDirectory:  view.OutputDirectory,
		UseSubdirectory:  view.UseSubdirectory,
		SubdirectoryName: view.SubdirectoryName,
		FilenamePattern:  view.FilenamePattern,
		ZoomedThumbnails: view.ZoomedThumbnails,
	}
}

// MergeQueueStats normalizes queue stats so every known status has a count.
func MergeQueueStats(stats map[queue.Status]int) map[string]int {
	merged := make(map[string]int, len(queue.AllStatuses()))
	for _, status := range queue.AllStatuses() {
		merged[string(status)] = 0
	}
	for status, count := range stats {
		merged[string(status)] = count
	}
	return merged
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateTimeFormat)
}

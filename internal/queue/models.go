package queue

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a conversion job.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusReady      Status = "ready"
	StatusProcessing Status = "processing"
	StatusCancelling Status = "cancelling"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// CancelledMessage is the error message recorded when a user cancels a job.
const CancelledMessage = "conversion cancelled"

var allStatuses = []Status{
	StatusQueued,
	StatusReady,
	StatusProcessing,
	StatusCancelling,
	StatusCompleted,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var allowedTransitions = map[Status]map[Status]struct{}{
	StatusQueued:     {StatusReady: {}, StatusCancelling: {}, StatusFailed: {}},
	StatusReady:      {StatusProcessing: {}, StatusCancelling: {}, StatusFailed: {}},
	StatusProcessing: {StatusCompleted: {}, StatusFailed: {}, StatusCancelling: {}},
	StatusCancelling: {StatusFailed: {}},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// CanTransition reports whether the state machine permits moving a job from
// one status to another. Completed and failed are terminal.
func CanTransition(from, to Status) bool {
	targets, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	_, ok = targets[to]
	return ok
}

// IsTerminal reports whether a status ends the job lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// IsActive reports whether a job in this status still claims its input and
// output paths.
func (s Status) IsActive() bool {
	return !s.IsTerminal()
}

// Job represents a conversion job persisted in SQLite.
//
// OutputPath is computed once at creation and never changes. PresetName and
// PresetJSON snapshot the preset by value so later catalog edits do not
// retroactively alter a running job. Revision increments on every store
// mutation; events carry it so consumers can discard stale updates.
type Job struct {
	ID              string
	InputPath       string
	OutputPath      string
	PresetName      string
	PresetJSON      string
	Status          Status
	Progress        float64
	DurationSeconds float64
	SizeBefore      int64
	StatusMessage   string
	ErrorMessage    string
	ThumbnailPath   string
	Revision        int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SetFailed marks the job as failed with the given error message.
func (j *Job) SetFailed(message string) {
	j.Status = StatusFailed
	j.ErrorMessage = message
	j.StatusMessage = message
	j.Progress = 0
}

// HistoryEntry is an immutable record of a completed conversion.
type HistoryEntry struct {
	ID              int64
	JobID           string
	InputPath       string
	OutputPath      string
	PresetName      string
	SizeBefore      int64
	SizeAfter       int64
	DurationSeconds float64
	CompletedAt     time.Time
}

// Settings holds the persisted output-naming preferences.
type Settings struct {
	OutputDirectory  string
	UseSubdirectory  bool
	SubdirectoryName string
	FilenamePattern  string
	ZoomedThumbnails bool
}

// HealthSummary describes aggregated job counts per key lifecycle state.
type HealthSummary struct {
	Total      int
	Queued     int
	Ready      int
	Processing int
	Completed  int
	Failed     int
}

// DatabaseHealth captures diagnostic information about the queue database.
type DatabaseHealth struct {
	DBPath           string
	DatabaseExists   bool
	DatabaseReadable bool
	SchemaVersion    string
	TableExists      bool
	ColumnsPresent   []string
	MissingColumns   []string
	IntegrityCheck   bool
	TotalJobs        int
	Error            string
}

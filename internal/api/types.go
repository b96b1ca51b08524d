package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// JobView describes a queue entry in a transport-friendly format.
type JobView struct {
	ID              string  `json:"id"`
	InputPath       string  `json:"inputPath"`
	OutputPath      string  `json:"outputPath"`
	PresetName      string  `json:"presetName"`
	Status          string  `json:"status"`
	Progress        float64 `json:"progress"`
	DurationSeconds float64 `json:"durationSeconds,omitempty"`
	SizeBefore      int64   `json:"sizeBefore,omitempty"`
	StatusMessage   string  `json:"statusMessage,omitempty"`
	ErrorMessage    string  `json:"errorMessage,omitempty"`
	ThumbnailPath   string  `json:"thumbnailPath,omitempty"`
	Revision        int64   `json:"revision"`
	CreatedAt       string  `json:"createdAt,omitempty"`
	UpdatedAt       string  `json:"updatedAt,omitempty"`
}

// HistoryView describes a completed conversion record.
type HistoryView struct {
	ID              int64   `json:"id"`
	JobID           string  `json:"jobId"`
	InputPath       string  `json:"inputPath"`
	OutputPath      string  `json:"outputPath"`
	PresetName      string  `json:"presetName"`
	SizeBefore      int64   `json:"sizeBefore"`
	SizeAfter       int64   `json:"sizeAfter"`
	DurationSeconds float64 `json:"durationSeconds"`
	CompletedAt     string  `json:"completedAt,omitempty"`
}

// PresetView describes one catalog entry for display.
type PresetView struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	VideoCodec  string `json:"videoCodec"`
	AudioCodec  string `json:"audioCodec"`
	CRF         int    `json:"crf,omitempty"`
	Bitrate     string `json:"bitrate,omitempty"`
	Scale       string `json:"scale,omitempty"`
	FastStart   bool   `json:"fastStart,omitempty"`
	Default     bool   `json:"default"`
}

// SettingsView mirrors the persisted naming settings.
type SettingsView struct {
	OutputDirectory  string `json:"outputDirectory"`
	UseSubdirectory  bool   `json:"useSubdirectory"`
	SubdirectoryName string `json:"subdirectoryName"`
	FilenamePattern  string `json:"filenamePattern"`
	ZoomedThumbnails bool   `json:"zoomedThumbnails"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool           `json:"running"`
	Converting   bool           `json:"converting"`
	PID          int            `json:"pid"`
	QueueDBPath  string         `json:"queueDbPath"`
	SocketPath   string         `json:"socketPath"`
	LockFilePath string         `json:"lockFilePath"`
	QueueStats   map[string]int `json:"queueStats"`
	PresetCount  int            `json:"presetCount"`
}

// QueueStatsResponse provides a normalized queue stats payload.
type QueueStatsResponse struct {
	Counts map[string]int `json:"counts"`
}

// QueueListResponse wraps a collection of job views.
type QueueListResponse struct {
	Jobs []JobView `json:"jobs"`
}

// HistoryListResponse wraps a collection of history views.
type HistoryListResponse struct {
	Entries []HistoryView `json:"entries"`
}

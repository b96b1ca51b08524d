package ipc

import "convoy/internal/api"

// JobView mirrors the API job DTO for IPC callers.
type JobView = api.JobView

// HistoryView mirrors the API history DTO for IPC callers.
type HistoryView = api.HistoryView

// PresetView mirrors the API preset DTO for IPC callers.
type PresetView = api.PresetView

// SettingsView mirrors the API settings DTO for IPC callers.
type SettingsView = api.SettingsView

// PingRequest checks daemon liveness.
type PingRequest struct{}

// PingResponse reports daemon liveness.
type PingResponse struct {
	PID int `json:"pid"`
}

// StartRequest triggers background processing startup.
type StartRequest struct{}

// StartResponse indicates whether processing was started.
type StartResponse struct {
	Started bool   `json:"started"`
	Message string `json:"message"`
}

// StopRequest stops background processing.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents daemon runtime information.
type StatusResponse struct {
	Running     bool           `json:"running"`
	Converting  bool           `json:"converting"`
	PID         int            `json:"pid"`
	QueueDBPath string         `json:"queue_db_path"`
	SocketPath  string         `json:"socket_path"`
	LockPath    string         `json:"lock_path"`
	QueueStats  map[string]int `json:"queue_stats"`
	PresetCount int            `json:"preset_count"`
}

// AddFileRequest enqueues a single input file.
type AddFileRequest struct {
	InputPath  string `json:"input_path"`
	PresetName string `json:"preset_name"`
}

// AddFileResponse reports the created job, or that the input was already
// active.
type AddFileResponse struct {
	JobID     string `json:"job_id"`
	Duplicate bool   `json:"duplicate"`
}

// AddBatchRequest enqueues inputs as one numbered batch.
type AddBatchRequest struct {
	InputPaths []string `json:"input_paths"`
	PresetName string   `json:"preset_name"`
}

// AddBatchResponse reports the created jobs.
type AddBatchResponse struct {
	JobIDs []string `json:"job_ids"`
}

// QueueListRequest filters queue listing by status.
type QueueListRequest struct {
	Statuses []string `json:"statuses"`
}

// QueueListResponse contains queue entries.
type QueueListResponse struct {
	Jobs []JobView `json:"jobs"`
}

// QueueDescribeRequest fetches a single job by id.
type QueueDescribeRequest struct {
	ID string `json:"id"`
}

// QueueDescribeResponse contains a single job.
type QueueDescribeResponse struct {
	Job JobView `json:"job"`
}

// QueueClearRequest removes all jobs.
type QueueClearRequest struct{}

// QueueClearResponse reports number of removed jobs.
type QueueClearResponse struct {
	Removed int64 `json:"removed"`
}

// QueueClearCompletedRequest removes completed jobs.
type QueueClearCompletedRequest struct{}

// QueueClearCompletedResponse reports number of removed jobs.
type QueueClearCompletedResponse struct {
	Removed int64 `json:"removed"`
}

// QueueClearFailedRequest removes failed jobs.
type QueueClearFailedRequest struct{}

// QueueClearFailedResponse reports number of removed jobs.
type QueueClearFailedResponse struct {
	Removed int64 `json:"removed"`
}

// QueueCancelRequest stops one job.
type QueueCancelRequest struct {
	ID string `json:"id"`
}

// QueueCancelResponse indicates the cancel was accepted.
type QueueCancelResponse struct {
	Cancelled bool `json:"cancelled"`
}

// QueueResetRequest requeues jobs left in flight by an unclean shutdown.
type QueueResetRequest struct{}

// QueueResetResponse reports number of jobs requeued.
type QueueResetResponse struct {
	Updated int64 `json:"updated"`
}

// HistoryRequest fetches recorded conversions.
type HistoryRequest struct{}

// HistoryResponse contains history entries, newest first.
type HistoryResponse struct {
	Entries []HistoryView `json:"entries"`
}

// HistoryClearRequest removes all history entries.
type HistoryClearRequest struct{}

// HistoryClearResponse reports number of removed entries.
type HistoryClearResponse struct {
	Removed int64 `json:"removed"`
}

// PresetsRequest fetches the preset catalog.
type PresetsRequest struct{}

// PresetsResponse contains the catalog in order.
type PresetsResponse struct {
	Presets []PresetView `json:"presets"`
}

// SettingsGetRequest fetches the persisted naming settings.
type SettingsGetRequest struct{}

// SettingsGetResponse contains the current settings.
type SettingsGetResponse struct {
	Settings SettingsView `json:"settings"`
}

// SettingsSetRequest updates one naming setting by key.
type SettingsSetRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SettingsSetResponse contains the settings after the update.
type SettingsSetResponse struct {
	Settings SettingsView `json:"settings"`
}

// TemplateRenderRequest previews a naming template against a sample input.
type TemplateRenderRequest struct {
	Template  string `json:"template"`
	InputPath string `json:"input_path"`
	Index     int    `json:"index"`
	BatchSize int    `json:"batch_size"`
}

// TemplateRenderResponse reports the rendered path and template validity.
type TemplateRenderResponse struct {
	Path  string `json:"path"`
	Valid bool   `json:"valid"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports notification test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}

// LogTailRequest fetches log lines based on offset and follow semantics.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse returns log lines and the next offset.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}

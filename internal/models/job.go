package models

// Job statuses as they appear on the wire and in meta snapshots.
const (
	JobStatusQueued     = "queued"
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
)

// JobMeta is the scalar progress snapshot persisted next to the report file.
// It is rewritten atomically after every mutation of processed or status.
type JobMeta struct {
	JobID     string `json:"jobId"`
	Processed int    `json:"processed"`
	Total     int    `json:"total"`
	Status    string `json:"status"`
}

// ProgressEvent is the payload pushed on the progress channel and over SSE.
// Terminal events carry the final counters and the report location.
type ProgressEvent struct {
	JobID      string `json:"jobId"`
	Processed  int    `json:"processed"`
	Total      int    `json:"total"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	Status     string `json:"status"`
	ReportPath string `json:"reportPath,omitempty"`
}

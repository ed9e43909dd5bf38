package models

import (
	"time"

	"gorm.io/datatypes"
)

// Upload record statuses (reconciler-side bookkeeping).
const (
	UploadStatusInProgress = "in_progress"
	UploadStatusCompleted  = "completed"
	UploadStatusFailed     = "failed"
)

// UploadRecord tracks one submitted file for the reconciler. Created at
// submission, mutated only by the reconciler, never deleted automatically.
type UploadRecord struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Filename  string `json:"filename"`
	JobID     string `gorm:"index" json:"jobId"`
	Status    string `gorm:"index" json:"status"`
	Progress  int    `json:"progress"`
	RowCount  int    `json:"rowCount"`
	TotalRows int    `json:"totalRows"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// JobCache is the reconciler's per-job pagination state, persisted so a
// restart resumes from the last merged page instead of refetching everything.
// Rows holds the merged row set newest-first as a JSON array.
type JobCache struct {
	JobID            string         `gorm:"primaryKey" json:"jobId"`
	LastFetchedPage  int            `json:"lastFetchedPage"`
	PageSize         int            `json:"pageSize"`
	Rows             datatypes.JSON `json:"rows"`
	ConsecutiveEmpty int            `json:"consecutiveEmpty"`
	Completed        bool           `json:"completed"`
	TotalRows        int            `json:"totalRows"`
	UpdatedAt        time.Time
}

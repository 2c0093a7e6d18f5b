package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/receiptlens/receiptlens/constants"
)

// ScanJob represents one scan of a receipt file for data transfer between layers.
type ScanJob struct {
	ID           uuid.UUID           `json:"id"`
	SourcePath   string              `json:"source_path"`
	Status       constants.JobStatus `json:"status"`
	ErrorMessage *string             `json:"error_message,omitempty"`
	RecordID     *uuid.UUID          `json:"record_id,omitempty"`
	Confidence   *float64            `json:"confidence,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`
}

// Terminal reports whether the job has finished, successfully or not.
func (j ScanJob) Terminal() bool {
	return j.Status == constants.JobStatusSucceeded || j.Status == constants.JobStatusFailed
}

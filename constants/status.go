package constants

// JobStatus is the canonical status for rows in scan_jobs.
type JobStatus string

// Stable values (store these exact strings in DB).
const (
	JobStatusPending   JobStatus = "PENDING"   // queued for processing
	JobStatusRunning   JobStatus = "RUNNING"   // in progress
	JobStatusSucceeded JobStatus = "SUCCEEDED" // record extracted and stored
	JobStatusFailed    JobStatus = "FAILED"    // terminal failure
)

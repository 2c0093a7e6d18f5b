// Package async runs queued receipt scans on a bounded worker pool.
package async

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Task is one queued scan request.
type Task struct {
	JobID       uuid.UUID
	SourcePath  string
	Force       bool // process even when the content hash is already known
	SubmittedAt time.Time
	RequestID   string
}

// ErrQueueFull is returned by Enqueue when the queue has no capacity left;
// callers decide whether to retry, block or fail the request.
var ErrQueueFull = errors.New("scan queue is full")

type Queue interface {
	Enqueue(ctx context.Context, task Task) error
	Shutdown(ctx context.Context)
}

// Processor handles one queued scan. Implemented by the pipeline.
type Processor interface {
	ProcessTask(ctx context.Context, task Task) error
}

// Package ingest registers receipt image files with the store, deduplicating
// on content hash, and watches directories for new arrivals.
package ingest

import (
	"context"
	"time"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string
	FileID       string
	Deduplicated bool
	HashHex      string
	FileExt      string
	UploadedAt   time.Time
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor is the behavior the callers depend on.
type Ingestor interface {
	// IngestPath registers a single file.
	IngestPath(ctx context.Context, path string) (IngestionResult, error)
	// IngestDirectory registers all matching files under root.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error)
}

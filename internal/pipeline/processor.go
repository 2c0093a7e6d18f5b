// Package pipeline stages a receipt scan: preprocess and OCR the image,
// fuse and extract fields, persist the result.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/receiptlens/receiptlens/internal/async"
	"github.com/receiptlens/receiptlens/internal/entity"
	"github.com/receiptlens/receiptlens/internal/extract"
	"github.com/receiptlens/receiptlens/internal/imaging"
	"github.com/receiptlens/receiptlens/internal/repository"
)

// Processor coordinates the stages. Persist and Jobs are optional: without a
// store the processor runs scans in memory and returns the record.
type Processor struct {
	Logger  *slog.Logger
	OCR     *OCRStage
	Parse   *ParseStage
	Persist *PersistStage
	Jobs    repository.JobRepository
}

func NewProcessor(logger *slog.Logger, ocr *OCRStage, parse *ParseStage, persist *PersistStage, jobs repository.JobRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Logger: logger, OCR: ocr, Parse: parse, Persist: persist, Jobs: jobs}
}

// ProcessResult is the outcome of one scan.
type ProcessResult struct {
	Record     entity.ReceiptRecord
	Stored     *entity.Record // nil when no store is wired
	Fields     extract.FieldConfidences
	Confidence float64
	Quality    imaging.Stats
	Language   string
	JobID      uuid.UUID
	RecordID   uuid.UUID
}

// ProcessFile scans one image file and, when a store is wired, persists the
// record.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*ProcessResult, error) {
	ocrOut, err := p.OCR.Run(ctx, path)
	if err != nil {
		p.Logger.Error("ocr stage failed", "source_path", path, "error", err)
		return nil, err
	}

	parsed := p.Parse.Run(ocrOut.Detections, ocrOut.Quality)

	res := &ProcessResult{
		Record:     parsed.Record,
		Fields:     parsed.Fields,
		Confidence: parsed.Confidence,
		Quality:    ocrOut.Quality,
		Language:   parsed.Language,
	}

	if p.Persist != nil {
		stored, err := p.Persist.Run(ctx, path, ocrOut.ContentHash, parsed)
		if err != nil {
			p.Logger.Error("persist stage failed", "source_path", path, "error", err)
			return nil, err
		}
		res.Stored = stored
		res.RecordID = stored.ID
	}
	return res, nil
}

// ProcessJob runs a scan with scan-job bookkeeping around it.
func (p *Processor) ProcessJob(ctx context.Context, jobID uuid.UUID, path string) (*ProcessResult, error) {
	tracked := p.Jobs != nil && jobID != uuid.Nil
	if tracked {
		if err := p.Jobs.MarkRunning(ctx, jobID); err != nil {
			p.Logger.Error("failed to mark job running", "job_id", jobID, "error", err)
		}
	}

	res, err := p.ProcessFile(ctx, path)
	if err != nil {
		if tracked {
			_ = p.Jobs.MarkFailed(ctx, jobID, err.Error())
		}
		return nil, err
	}
	res.JobID = jobID

	if tracked {
		if err := p.Jobs.MarkSucceeded(ctx, jobID, res.RecordID, res.Confidence); err != nil {
			p.Logger.Error("failed to mark job succeeded", "job_id", jobID, "error", err)
		}
	}
	return res, nil
}

// ProcessTask lets the processor serve as the worker-pool handler.
func (p *Processor) ProcessTask(ctx context.Context, task async.Task) error {
	_, err := p.ProcessJob(ctx, task.JobID, task.SourcePath)
	return err
}

var _ async.Processor = (*Processor)(nil)

package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/receiptlens/receiptlens/constants"
	"github.com/receiptlens/receiptlens/internal/common"
	"github.com/receiptlens/receiptlens/internal/entity"
)

type JobRepository interface {
	Create(ctx context.Context, sourcePath string) (*entity.ScanJob, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.ScanJob, error)
	MarkRunning(ctx context.Context, id uuid.UUID) error
	MarkSucceeded(ctx context.Context, id, recordID uuid.UUID, confidence float64) error
	MarkFailed(ctx context.Context, id uuid.UUID, message string) error
}

type jobRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewJobRepository(db *DB, logger *slog.Logger) JobRepository {
	return &jobRepository{db: db, logger: logger}
}

func (r *jobRepository) Create(ctx context.Context, sourcePath string) (*entity.ScanJob, error) {
	now := time.Now().UTC()
	job := &entity.ScanJob{
		ID:         uuid.New(),
		SourcePath: sourcePath,
		Status:     constants.JobStatusPending,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scan_jobs (id, source_path, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)`,
		job.ID.String(), job.SourcePath, string(job.Status), job.CreatedAt, job.UpdatedAt)
	if err != nil {
		r.logger.Error("scan job create failed", "source_path", sourcePath, "error", err)
		return nil, err
	}
	r.logger.Info("scan job created", "job_id", job.ID, "source_path", sourcePath)
	return job, nil
}

func (r *jobRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.ScanJob, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, source_path, status, error_message, record_id, confidence, created_at, updated_at
		FROM scan_jobs WHERE id = ?`, id.String())

	var (
		job        entity.ScanJob
		jobID      string
		status     string
		errMsg     sql.NullString
		recordID   sql.NullString
		confidence sql.NullFloat64
	)
	err := row.Scan(&jobID, &job.SourcePath, &status, &errMsg, &recordID, &confidence,
		&job.CreatedAt, &job.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("scan job fetch failed", "job_id", id, "error", err)
		return nil, err
	}

	job.ID, err = uuid.Parse(jobID)
	if err != nil {
		return nil, err
	}
	job.Status = constants.JobStatus(status)
	if errMsg.Valid {
		job.ErrorMessage = &errMsg.String
	}
	if recordID.Valid {
		rid, err := uuid.Parse(recordID.String)
		if err != nil {
			return nil, err
		}
		job.RecordID = &rid
	}
	if confidence.Valid {
		job.Confidence = &confidence.Float64
	}
	return &job, nil
}

func (r *jobRepository) MarkRunning(ctx context.Context, id uuid.UUID) error {
	return r.setStatus(ctx, id, `
		UPDATE scan_jobs SET status = ?, updated_at = ? WHERE id = ?`,
		string(constants.JobStatusRunning), time.Now().UTC(), id.String())
}

func (r *jobRepository) MarkSucceeded(ctx context.Context, id, recordID uuid.UUID, confidence float64) error {
	err := r.setStatus(ctx, id, `
		UPDATE scan_jobs SET status = ?, record_id = ?, confidence = ?, updated_at = ? WHERE id = ?`,
		string(constants.JobStatusSucceeded), recordID.String(), confidence, time.Now().UTC(), id.String())
	if err != nil {
		return err
	}
	r.logger.Info("scan job succeeded", "job_id", id, "record_id", recordID, "confidence", confidence)
	return nil
}

func (r *jobRepository) MarkFailed(ctx context.Context, id uuid.UUID, message string) error {
	err := r.setStatus(ctx, id, `
		UPDATE scan_jobs SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(constants.JobStatusFailed), message, time.Now().UTC(), id.String())
	if err != nil {
		return err
	}
	r.logger.Warn("scan job failed", "job_id", id, "error", message)
	return nil
}

func (r *jobRepository) setStatus(ctx context.Context, id uuid.UUID, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("scan job update failed", "job_id", id, "error", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

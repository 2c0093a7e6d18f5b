package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/receiptlens/receiptlens/internal/common"
	"github.com/receiptlens/receiptlens/internal/entity"
)

type FileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.IngestedFile, error)
	GetByHash(ctx context.Context, hash []byte) (*entity.IngestedFile, error)
	Create(ctx context.Context, f *entity.IngestedFile) (*entity.IngestedFile, error)
	// UpsertByHash returns the stored row and whether it already existed.
	UpsertByHash(ctx context.Context, f *entity.IngestedFile) (*entity.IngestedFile, bool, error)
}

type fileRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewFileRepository(db *DB, logger *slog.Logger) FileRepository {
	return &fileRepository{db: db, logger: logger}
}

const fileColumns = `id, source_path, filename, file_ext, file_size, content_hash, uploaded_at`

func (r *fileRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.IngestedFile, error) {
	return r.scanFile(r.db.QueryRowContext(ctx, `
		SELECT `+fileColumns+` FROM ingested_files WHERE id = ?`, id.String()))
}

func (r *fileRepository) GetByHash(ctx context.Context, hash []byte) (*entity.IngestedFile, error) {
	return r.scanFile(r.db.QueryRowContext(ctx, `
		SELECT `+fileColumns+` FROM ingested_files WHERE content_hash = ?`, hash))
}

func (r *fileRepository) Create(ctx context.Context, f *entity.IngestedFile) (*entity.IngestedFile, error) {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	if f.UploadedAt.IsZero() {
		f.UploadedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ingested_files (`+fileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID.String(), f.SourcePath, f.Filename, f.FileExt, f.FileSize, f.ContentHash, f.UploadedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.ErrDuplicate
		}
		r.logger.Error("failed to create ingested file", "source_path", f.SourcePath, "error", err)
		return nil, err
	}
	return f, nil
}

func (r *fileRepository) UpsertByHash(ctx context.Context, f *entity.IngestedFile) (*entity.IngestedFile, bool, error) {
	if existing, err := r.GetByHash(ctx, f.ContentHash); err == nil {
		return existing, true, nil
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}
	row, err := r.Create(ctx, f)
	if errors.Is(err, common.ErrDuplicate) {
		// lost an insert race; the winner's row is the canonical one
		existing, getErr := r.GetByHash(ctx, f.ContentHash)
		if getErr != nil {
			return nil, false, getErr
		}
		return existing, true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return row, false, nil
}

func (r *fileRepository) scanFile(row *sql.Row) (*entity.IngestedFile, error) {
	var (
		f  entity.IngestedFile
		id string
	)
	err := row.Scan(&id, &f.SourcePath, &f.Filename, &f.FileExt, &f.FileSize, &f.ContentHash, &f.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	f.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

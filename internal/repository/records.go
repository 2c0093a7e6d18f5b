package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/receiptlens/receiptlens/constants"
	"github.com/receiptlens/receiptlens/internal/common"
	"github.com/receiptlens/receiptlens/internal/entity"
)

type RecordRepository interface {
	Create(ctx context.Context, rec *entity.Record) (*entity.Record, error)
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Record, error)
	List(ctx context.Context, limit, offset int) ([]*entity.Record, error)
	ListSince(ctx context.Context, since time.Time) ([]*entity.Record, error)
}

type recordRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewRecordRepository(db *DB, logger *slog.Logger) RecordRepository {
	return &recordRepository{db: db, logger: logger}
}

const recordColumns = `id, title, tx_date, amount, currency, raw_text, confidence, source_path, content_hash, created_at`

func (r *recordRepository) Create(ctx context.Context, rec *entity.Record) (*entity.Record, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO records (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Title, rec.Date, rec.Amount, string(rec.Currency),
		joinRawText(rec.RawTextLines), rec.Confidence, rec.SourcePath, rec.ContentHash, rec.CreatedAt)
	if err != nil {
		r.logger.Error("failed to create record", "record_id", rec.ID, "error", err)
		return nil, err
	}
	return rec, nil
}

func (r *recordRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Record, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+recordColumns+` FROM records WHERE id = ?`, id.String())
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		r.logger.Error("failed to get record", "record_id", id, "error", err)
		return nil, err
	}
	return rec, nil
}

func (r *recordRepository) List(ctx context.Context, limit, offset int) ([]*entity.Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+` FROM records
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		r.logger.Error("failed to list records", "error", err)
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (r *recordRepository) ListSince(ctx context.Context, since time.Time) ([]*entity.Record, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+recordColumns+` FROM records
		WHERE created_at >= ? ORDER BY created_at ASC`, since)
	if err != nil {
		r.logger.Error("failed to list records", "since", since, "error", err)
		return nil, err
	}
	defer rows.Close()
	return collectRecords(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*entity.Record, error) {
	var (
		rec      entity.Record
		id       string
		currency string
		rawText  string
	)
	err := row.Scan(&id, &rec.Title, &rec.Date, &rec.Amount, &currency,
		&rawText, &rec.Confidence, &rec.SourcePath, &rec.ContentHash, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	rec.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, err
	}
	rec.Currency = constants.Currency(currency)
	rec.RawTextLines = splitRawText(rawText)
	return &rec, nil
}

func collectRecords(rows *sql.Rows) ([]*entity.Record, error) {
	var out []*entity.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Fused lines never contain newlines, so a newline join is a lossless
// single-column encoding.
func joinRawText(lines []string) string {
	return strings.Join(lines, "\n")
}

func splitRawText(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

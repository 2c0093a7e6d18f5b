package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/receiptlens/receiptlens/internal/entity"
	"github.com/receiptlens/receiptlens/internal/repository"
)

// PersistStage stores extracted records. Jobs transitions live with the
// processor; this stage only owns the record row.
type PersistStage struct {
	Records repository.RecordRepository
	Logger  *slog.Logger
}

func NewPersistStage(records repository.RecordRepository, logger *slog.Logger) *PersistStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistStage{Records: records, Logger: logger}
}

// Run inserts the record and returns the stored row.
func (s *PersistStage) Run(ctx context.Context, sourcePath, contentHash string, parsed ParseOutput) (*entity.Record, error) {
	rec := &entity.Record{
		Title:        parsed.Record.Title,
		Date:         parsed.Record.Date,
		Amount:       parsed.Record.Amount,
		Currency:     parsed.Record.Currency,
		RawTextLines: parsed.Record.RawTextLines,
		Confidence:   parsed.Confidence,
		SourcePath:   sourcePath,
		ContentHash:  contentHash,
	}
	stored, err := s.Records.Create(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("store record: %w", err)
	}
	s.Logger.Info("record stored", "record_id", stored.ID, "title", stored.Title, "confidence", stored.Confidence)
	return stored, nil
}

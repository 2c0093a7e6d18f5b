package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/receiptlens/receiptlens/internal/repository"
)

// Service is a tiny façade over the record repository that produces XLSX
// workbooks for exports.
type Service struct {
	records repository.RecordRepository
	logger  *slog.Logger
}

func NewService(records repository.RecordRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{records: records, logger: logger}
}

// ExportXLSX returns an XLSX workbook (as bytes) of stored records.
// If since is provided, only records created at or after it are included;
// nil exports everything.
func (s *Service) ExportXLSX(ctx context.Context, since *time.Time) ([]byte, error) {
	start := time.Now()

	var cutoff time.Time
	if since != nil {
		cutoff = since.UTC()
	}
	recs, err := s.records.ListSince(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "Expenses"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"ID",
		"Title",
		"Date",
		"Amount",
		"Currency",
		"Confidence",
		"Source",
		"Created At",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, r := range recs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.ID.String())
		write(2, truncate(r.Title, 140))
		write(3, r.Date)
		write(4, r.Amount)
		write(5, string(r.Currency))
		write(6, r.Confidence)
		write(7, r.SourcePath)
		write(8, r.CreatedAt.UTC().Format("2006-01-02 15:04:05"))

		row++
	}

	// Widen a few columns
	_ = f.SetColWidth(sheet, "A", "A", 38) // uuid
	_ = f.SetColWidth(sheet, "B", "B", 28) // title
	_ = f.SetColWidth(sheet, "C", "C", 12) // date
	_ = f.SetColWidth(sheet, "D", "F", 12) // amount, currency, confidence
	_ = f.SetColWidth(sheet, "G", "G", 60) // source path
	_ = f.SetColWidth(sheet, "H", "H", 20) // created at

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(recs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// Write streams the workbook to w. Used by the HTTP download handler.
func (s *Service) Write(ctx context.Context, w io.Writer, since *time.Time) error {
	b, err := s.ExportXLSX(ctx, since)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// ExportToFile writes the workbook to path.
func (s *Service) ExportToFile(ctx context.Context, path string, since *time.Time) error {
	b, err := s.ExportXLSX(ctx, since)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

func truncate(s string, n int) string {
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 1 {
		return s[:n]
	}
	return s[:n-1] + "…"
}

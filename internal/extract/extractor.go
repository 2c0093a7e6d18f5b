package extract

import (
	"log/slog"

	"github.com/receiptlens/receiptlens/internal/entity"
	"github.com/receiptlens/receiptlens/internal/fusion"
)

// StandardExtractor runs the title, date and amount cascades independently
// over the same ranked lines and assembles the resulting record.
type StandardExtractor struct {
	titles  *TitleExtractor
	dates   *DateExtractor
	amounts *AmountExtractor
	logger  *slog.Logger
}

func NewStandardExtractor(logger *slog.Logger) *StandardExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &StandardExtractor{
		titles:  NewTitleExtractor(),
		dates:   NewDateExtractor(),
		amounts: NewAmountExtractor(),
		logger:  logger,
	}
}

var _ RecordExtractor = (*StandardExtractor)(nil)

// ExtractRecord assembles a ReceiptRecord from ranked fused lines. Fields no
// cascade tier could resolve keep their zero value and contribute nothing to
// the overall confidence. Boosted amount scores are clamped to [0,1] here;
// the raw score is only meaningful for candidate ranking.
func (e *StandardExtractor) ExtractRecord(lines []fusion.Line) Result {
	title := e.titles.Extract(lines)
	date := e.dates.Extract(lines)
	amount := e.amounts.Extract(lines)

	fields := FieldConfidences{
		Merchant: clampUnit(title.Score),
		Date:     clampUnit(date.Confidence),
		Total:    clampUnit(amount.Score),
	}

	record := entity.ReceiptRecord{
		Title:        title.Value,
		Date:         date.Value,
		Amount:       amount.Value,
		Currency:     amount.Currency,
		RawTextLines: fusion.RawTexts(lines),
	}

	e.logger.Debug("record extracted",
		"title", record.Title,
		"date", record.Date,
		"amount", record.Amount,
		"currency", record.Currency,
		"lines", len(record.RawTextLines))

	return Result{Record: record, Fields: fields}
}

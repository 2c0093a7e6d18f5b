package pipeline

import (
	"log/slog"
	"strings"

	"github.com/receiptlens/receiptlens/internal/entity"
	"github.com/receiptlens/receiptlens/internal/extract"
	"github.com/receiptlens/receiptlens/internal/fusion"
	"github.com/receiptlens/receiptlens/internal/imaging"
)

// ParseStage fuses pooled detections and runs field extraction. The cascades
// are the primary path; when the detections carry geometry, keyword-table
// classification fills any field the cascades left empty and contributes the
// tax confidence (the cascades have no tax rule).
type ParseStage struct {
	Cascades   *extract.StandardExtractor
	Structured *extract.StructuredExtractor
	Logger     *slog.Logger
}

func NewParseStage(cascades *extract.StandardExtractor, structured *extract.StructuredExtractor, logger *slog.Logger) *ParseStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseStage{Cascades: cascades, Structured: structured, Logger: logger}
}

// ParseOutput is the extracted record with its confidence breakdown.
type ParseOutput struct {
	Record     entity.ReceiptRecord
	Fields     extract.FieldConfidences
	Confidence float64
	Language   string
}

// Run is pure: zero detections degrade to an empty record, never an error.
func (s *ParseStage) Run(dets []entity.Detection, quality imaging.Stats) ParseOutput {
	lines := fusion.Fuse(dets)
	result := s.Cascades.ExtractRecord(lines)

	out := ParseOutput{
		Record:   result.Record,
		Fields:   result.Fields,
		Language: extract.DetectLanguage(strings.Join(fusion.RawTexts(lines), " ")),
	}

	if s.Structured != nil && hasGeometry(dets) {
		sf := s.Structured.Classify(dets)
		out.Language = sf.Language
		if out.Record.Title == extract.UntitledReceipt && sf.Merchant.Value != "" {
			out.Record.Title = sf.Merchant.Value
			out.Fields.Merchant = sf.Merchant.Score
		}
		if out.Record.Date == "" && sf.Date.Value != "" {
			out.Record.Date = sf.Date.Value
			out.Fields.Date = sf.Date.Confidence
		}
		if out.Record.Amount == 0 && sf.Total.Value != 0 {
			out.Record.Amount = sf.Total.Value
			out.Record.Currency = sf.Total.Currency
			out.Fields.Total = sf.Total.Score
		}
		if sf.Tax.Value != 0 {
			out.Fields.Tax = sf.Tax.Score
		}
	}

	out.Confidence = extract.OverallConfidence(out.Fields, quality.Score)

	s.Logger.Debug("parse stage finished",
		"title", out.Record.Title,
		"date", out.Record.Date,
		"amount", out.Record.Amount,
		"currency", out.Record.Currency,
		"language", out.Language,
		"confidence", out.Confidence)
	return out
}

func hasGeometry(dets []entity.Detection) bool {
	for _, d := range dets {
		if !d.Box.Empty() {
			return true
		}
	}
	return false
}

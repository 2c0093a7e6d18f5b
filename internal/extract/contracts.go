// Package extract turns ranked fused lines into the fields of an expense
// record. Each extractor is a prioritized cascade over declarative rule
// tables; extractors are independent and side-effect free.
package extract

import (
	"github.com/receiptlens/receiptlens/constants"
	"github.com/receiptlens/receiptlens/internal/entity"
	"github.com/receiptlens/receiptlens/internal/fusion"
)

// FieldConfidences carries the per-field extraction confidence feeding the
// overall score. Zero means the field was not found.
type FieldConfidences struct {
	Merchant float64 `json:"merchant"`
	Date     float64 `json:"date"`
	Total    float64 `json:"total"`
	Tax      float64 `json:"tax"`
}

// Result is a fully assembled record plus its extraction confidences.
type Result struct {
	Record entity.ReceiptRecord
	Fields FieldConfidences
}

// RecordExtractor assembles a ReceiptRecord from fused lines.
type RecordExtractor interface {
	ExtractRecord(lines []fusion.Line) Result
}

// TitleField is an extracted title with its heuristic score.
type TitleField struct {
	Value      string
	Score      float64
	SourceText string
}

// DateField is a canonical MM/DD/YYYY date (or empty) with the fused
// confidence of the line it came from.
type DateField struct {
	Value      string
	Confidence float64
	SourceText string
}

// AmountField is a monetary value with its resolved currency and score.
// Scores are heuristic weights, not probabilities; boosts can push them
// past 1.0.
type AmountField struct {
	Value      float64
	Currency   constants.Currency
	Score      float64
	SourceText string
}

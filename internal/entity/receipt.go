package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/receiptlens/receiptlens/constants"
)

// ReceiptRecord is the structured result extracted from one receipt image.
// Date is MM/DD/YYYY (zero-padded) or empty when no date was found.
type ReceiptRecord struct {
	Title        string             `json:"title"`
	Date         string             `json:"date"`
	Amount       float64            `json:"amount"`
	Currency     constants.Currency `json:"currency"`
	RawTextLines []string           `json:"raw_text"`
}

// Record represents a stored receipt record for data transfer between layers.
type Record struct {
	ID           uuid.UUID          `json:"id"`
	Title        string             `json:"title"`
	Date         string             `json:"date"`
	Amount       float64            `json:"amount"`
	Currency     constants.Currency `json:"currency"`
	RawTextLines []string           `json:"raw_text"`
	Confidence   float64            `json:"confidence"`
	SourcePath   string             `json:"source_path,omitempty"`
	ContentHash  string             `json:"content_hash,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// Extracted returns the extraction-layer view of a stored record.
func (r Record) Extracted() ReceiptRecord {
	return ReceiptRecord{
		Title:        r.Title,
		Date:         r.Date,
		Amount:       r.Amount,
		Currency:     r.Currency,
		RawTextLines: r.RawTextLines,
	}
}

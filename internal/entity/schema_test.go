package entity

import (
	"encoding/json"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/google/uuid"

	"github.com/receiptlens/receiptlens/constants"
)

func TestEntity(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Entity Suite")
}

var _ = Describe("ValidateRecordJSON", func() {
	It("should accept a fully populated record", func() {
		data := []byte(`{
			"title": "Corner Bakery",
			"date": "03/15/2024",
			"amount": 18.4,
			"currency": "USD",
			"raw_text": ["Corner Bakery", "Total: $18.40"]
		}`)
		Expect(ValidateRecordJSON(data)).To(Succeed())
	})

	It("should accept an empty date", func() {
		data := []byte(`{"title":"Untitled Receipt","date":"","amount":0,"currency":"UNKNOWN","raw_text":[]}`)
		Expect(ValidateRecordJSON(data)).To(Succeed())
	})

	It("should reject ISO dates", func() {
		data := []byte(`{"title":"Shop","date":"2024-03-15","amount":5,"currency":"USD","raw_text":[]}`)
		Expect(ValidateRecordJSON(data)).To(MatchError(ContainSubstring("json does not match schema")))
	})

	It("should reject a missing field", func() {
		data := []byte(`{"title":"Shop","date":"","amount":5,"raw_text":[]}`)
		Expect(ValidateRecordJSON(data)).NotTo(Succeed())
	})

	It("should reject unknown fields", func() {
		data := []byte(`{"title":"Shop","date":"","amount":5,"currency":"USD","raw_text":[],"note":"x"}`)
		Expect(ValidateRecordJSON(data)).NotTo(Succeed())
	})

	It("should reject negative amounts", func() {
		data := []byte(`{"title":"Shop","date":"","amount":-1,"currency":"USD","raw_text":[]}`)
		Expect(ValidateRecordJSON(data)).NotTo(Succeed())
	})

	It("should reject currencies outside the enum", func() {
		data := []byte(`{"title":"Shop","date":"","amount":5,"currency":"CHF","raw_text":[]}`)
		Expect(ValidateRecordJSON(data)).NotTo(Succeed())
	})

	It("should reject an empty title", func() {
		data := []byte(`{"title":"","date":"","amount":5,"currency":"USD","raw_text":[]}`)
		Expect(ValidateRecordJSON(data)).NotTo(Succeed())
	})

	It("should reject non-string raw text entries", func() {
		data := []byte(`{"title":"Shop","date":"","amount":5,"currency":"USD","raw_text":[42]}`)
		Expect(ValidateRecordJSON(data)).NotTo(Succeed())
	})

	It("should validate a marshalled extraction result", func() {
		rec := ReceiptRecord{
			Title:        "Corner Bakery",
			Date:         "03/15/2024",
			Amount:       18.4,
			Currency:     constants.USD,
			RawTextLines: []string{"Corner Bakery"},
		}
		data, err := json.Marshal(rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(ValidateRecordJSON(data)).To(Succeed())
	})

	It("should validate the placeholder record the extractor degrades to", func() {
		rec := ReceiptRecord{
			Title:        "Untitled Receipt",
			Currency:     constants.Unknown,
			RawTextLines: []string{},
		}
		data, err := json.Marshal(rec)
		Expect(err).NotTo(HaveOccurred())
		Expect(ValidateRecordJSON(data)).To(Succeed())
	})
})

var _ = Describe("BuildRecordJSONSchema", func() {
	It("should require all five record fields and nothing more", func() {
		schema := BuildRecordJSONSchema()

		Expect(schema["required"]).To(ConsistOf("title", "date", "amount", "currency", "raw_text"))
		Expect(schema["additionalProperties"]).To(Equal(false))
		Expect(schema["properties"]).To(HaveLen(5))
	})
})

var _ = Describe("Box", func() {
	It("should treat missing geometry as empty", func() {
		Expect(Box{}.Empty()).To(BeTrue())
		Expect(Box{Left: 5, Top: 9}.Empty()).To(BeTrue())
		Expect(Box{Width: 10, Height: 2}.Empty()).To(BeFalse())
	})

	It("should derive the far edges", func() {
		b := Box{Left: 10, Top: 20, Width: 100, Height: 15}
		Expect(b.Right()).To(Equal(110))
		Expect(b.Bottom()).To(Equal(35))
	})
})

var _ = Describe("ScanJob", func() {
	It("should be terminal only once finished", func() {
		Expect(ScanJob{Status: constants.JobStatusPending}.Terminal()).To(BeFalse())
		Expect(ScanJob{Status: constants.JobStatusRunning}.Terminal()).To(BeFalse())
		Expect(ScanJob{Status: constants.JobStatusSucceeded}.Terminal()).To(BeTrue())
		Expect(ScanJob{Status: constants.JobStatusFailed}.Terminal()).To(BeTrue())
	})
})

var _ = Describe("Record", func() {
	It("should project the extraction-layer view", func() {
		rec := Record{
			ID:           uuid.New(),
			Title:        "Corner Bakery",
			Date:         "03/15/2024",
			Amount:       18.4,
			Currency:     constants.USD,
			RawTextLines: []string{"Corner Bakery"},
			Confidence:   0.82,
			SourcePath:   "/receipts/a.png",
			CreatedAt:    time.Now(),
		}

		Expect(rec.Extracted()).To(Equal(ReceiptRecord{
			Title:        "Corner Bakery",
			Date:         "03/15/2024",
			Amount:       18.4,
			Currency:     constants.USD,
			RawTextLines: []string{"Corner Bakery"},
		}))
	})
})

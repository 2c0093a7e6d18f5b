package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/receiptlens/receiptlens/constants"
	"github.com/receiptlens/receiptlens/internal/entity"
)

// lineDet fakes one physical receipt line as a single positioned detection.
func lineDet(text string, top int, conf float64) entity.Detection {
	return entity.Detection{
		Text:       text,
		Confidence: conf,
		Box:        entity.Box{Left: 10, Top: top, Width: 200, Height: 12},
	}
}

var _ = Describe("StructuredExtractor", func() {
	var (
		dets   []entity.Detection
		fields StructuredFields
	)

	JustBeforeEach(func() {
		fields = NewStructuredExtractor(nil).Classify(dets)
	})

	When("an English receipt has one line per class", func() {
		BeforeEach(func() {
			dets = []entity.Detection{
				lineDet("Corner Store", 0, 0.9),
				lineDet("Date: 03/15/2024", 40, 0.85),
				lineDet("Total: ₹450.00", 80, 0.8),
				lineDet("GST ₹22.50", 120, 0.75),
			}
		})

		It("should detect English", func() {
			Expect(fields.Language).To(Equal("en"))
		})

		It("should classify the merchant line", func() {
			Expect(fields.Merchant.Value).To(Equal("Corner Store"))
			Expect(fields.Merchant.Score).To(Equal(0.9))
		})

		It("should parse the date line", func() {
			Expect(fields.Date.Value).To(Equal("03/15/2024"))
		})

		It("should parse the total as rupees", func() {
			Expect(fields.Total.Value).To(Equal(450.0))
			Expect(fields.Total.Currency).To(Equal(constants.INR))
			Expect(fields.Total.Score).To(Equal(0.8))
		})

		It("should parse the tax line", func() {
			Expect(fields.Tax.Value).To(Equal(22.50))
			Expect(fields.Tax.Currency).To(Equal(constants.INR))
		})

		It("should keep the physical lines in reading order", func() {
			Expect(fields.Lines).To(HaveLen(4))
			Expect(fields.Lines[0].RawText).To(Equal("Corner Store"))
			Expect(fields.Lines[3].RawText).To(Equal("GST ₹22.50"))
		})
	})

	When("several lines match the same class", func() {
		BeforeEach(func() {
			dets = []entity.Detection{
				lineDet("Main Street Store", 0, 0.9),
				lineDet("Outlet Branch", 40, 0.95),
			}
		})

		It("should keep the first match", func() {
			Expect(fields.Merchant.Value).To(Equal("Main Street Store"))
		})
	})

	When("a keyword line has no rupee notation", func() {
		BeforeEach(func() {
			dets = []entity.Detection{
				lineDet("Total: $45.00", 0, 0.9),
				lineDet("Amount Rs 450", 40, 0.8),
			}
		})

		It("should not consume the class slot on it", func() {
			Expect(fields.Total.Value).To(Equal(450.0))
			Expect(fields.Total.SourceText).To(Equal("Amount Rs 450"))
		})
	})

	When("the receipt is in Devanagari", func() {
		BeforeEach(func() {
			dets = []entity.Detection{
				lineDet("सुपर स्टोर", 0, 0.9),
				lineDet("कुल रु. 500", 40, 0.85),
			}
		})

		It("should use the Hindi profile", func() {
			Expect(fields.Language).To(Equal("hi"))
			Expect(fields.Merchant.Value).To(Equal("सुपर स्टोर"))
			Expect(fields.Total.Value).To(Equal(500.0))
		})
	})

	When("detections carry no geometry", func() {
		BeforeEach(func() {
			dets = []entity.Detection{
				{Text: "Total Rs 45", Confidence: 0.9},
			}
		})

		It("should classify nothing", func() {
			Expect(fields.Language).To(Equal("en"))
			Expect(fields.Lines).To(BeEmpty())
			Expect(fields.Total.Value).To(BeZero())
		})
	})

	When("there are no detections", func() {
		BeforeEach(func() {
			dets = nil
		})

		It("should return the English zero value", func() {
			Expect(fields.Language).To(Equal("en"))
			Expect(fields.Merchant.Value).To(BeEmpty())
		})
	})
})

package fusion

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/receiptlens/receiptlens/internal/entity"
)

func TestFusion(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Fusion Suite")
}

var _ = Describe("NormalizeText", func() {
	It("should lowercase and collapse whitespace", func() {
		Expect(NormalizeText("Corner   BAKERY\t Cafe")).To(Equal("corner bakery cafe"))
	})

	It("should strip disallowed runes", func() {
		Expect(NormalizeText("TOTAL* (net)")).To(Equal("total net"))
	})

	It("should keep currency symbols and money punctuation", func() {
		Expect(NormalizeText("Total: $12.50")).To(Equal("total: $12.50"))
		Expect(NormalizeText("₹1,250.00")).To(Equal("₹1,250.00"))
	})

	It("should trim surrounding whitespace", func() {
		Expect(NormalizeText("  hello  ")).To(Equal("hello"))
	})
})

var _ = Describe("Fuse", func() {
	var (
		dets  []entity.Detection
		lines []Line
	)

	JustBeforeEach(func() {
		lines = Fuse(dets)
	})

	When("detections sit at or below the confidence floor", func() {
		BeforeEach(func() {
			dets = []entity.Detection{
				{Text: "at floor", Confidence: ConfidenceFloor},
				{Text: "below floor", Confidence: 0.05},
				{Text: "above floor", Confidence: ConfidenceFloor + 0.01},
			}
		})

		It("should keep only detections strictly above the floor", func() {
			Expect(lines).To(HaveLen(1))
			Expect(lines[0].RawText).To(Equal("above floor"))
		})
	})

	When("text is blank or a single rune", func() {
		BeforeEach(func() {
			dets = []entity.Detection{
				{Text: "   ", Confidence: 0.9},
				{Text: "x", Confidence: 0.9},
				{Text: " ₹ ", Confidence: 0.9},
				{Text: "ok", Confidence: 0.9},
			}
		})

		It("should discard everything shorter than two runes after trimming", func() {
			Expect(lines).To(HaveLen(1))
			Expect(lines[0].RawText).To(Equal("ok"))
		})
	})

	When("confidences differ", func() {
		BeforeEach(func() {
			dets = []entity.Detection{
				{Text: "low", Confidence: 0.3},
				{Text: "high", Confidence: 0.9},
				{Text: "mid", Confidence: 0.6},
			}
		})

		It("should rank lines by confidence descending", func() {
			Expect(lines).To(HaveLen(3))
			Expect(lines[0].RawText).To(Equal("high"))
			Expect(lines[1].RawText).To(Equal("mid"))
			Expect(lines[2].RawText).To(Equal("low"))
		})
	})

	When("the same text arrives from several variants", func() {
		BeforeEach(func() {
			dets = []entity.Detection{
				{Text: "TOTAL 9.99", Confidence: 0.5, Variant: "binary"},
				{Text: "TOTAL 9.99", Confidence: 0.8, Variant: "adaptive"},
				{Text: "TOTAL 9.99", Confidence: 0.6, Variant: "enhanced"},
			}
		})

		It("should keep a single line", func() {
			Expect(lines).To(HaveLen(1))
		})

		It("should keep the highest-confidence occurrence", func() {
			Expect(lines[0].Confidence).To(Equal(0.8))
			Expect(lines[0].Variant).To(Equal("adaptive"))
		})
	})

	When("texts differ only in casing", func() {
		BeforeEach(func() {
			dets = []entity.Detection{
				{Text: "Total", Confidence: 0.8},
				{Text: "TOTAL", Confidence: 0.7},
			}
		})

		It("should treat them as distinct raw lines", func() {
			Expect(lines).To(HaveLen(2))
		})

		It("should normalize both the same way", func() {
			Expect(lines[0].Normalized).To(Equal("total"))
			Expect(lines[1].Normalized).To(Equal("total"))
		})
	})

	When("there are no detections", func() {
		BeforeEach(func() {
			dets = nil
		})

		It("should return an empty slice", func() {
			Expect(lines).NotTo(BeNil())
			Expect(lines).To(BeEmpty())
		})
	})
})

var _ = Describe("RawTexts", func() {
	It("should return the raw lines in rank order", func() {
		lines := []Line{{RawText: "one"}, {RawText: "two"}}
		Expect(RawTexts(lines)).To(Equal([]string{"one", "two"}))
	})

	It("should never return nil", func() {
		Expect(RawTexts(nil)).NotTo(BeNil())
		Expect(RawTexts(nil)).To(BeEmpty())
	})
})

var _ = Describe("GroupIntoLines", func() {
	var (
		dets   []entity.Detection
		cfg    LineConfig
		groups [][]entity.Detection
	)

	BeforeEach(func() {
		cfg = DefaultLineConfig()
	})

	JustBeforeEach(func() {
		groups = GroupIntoLines(dets, cfg)
	})

	When("detections carry no geometry", func() {
		BeforeEach(func() {
			dets = []entity.Detection{
				{Text: "floating", Confidence: 0.9},
				{Text: "words", Confidence: 0.9},
			}
		})

		It("should ignore them entirely", func() {
			Expect(groups).To(BeNil())
		})
	})

	When("tops chain within the threshold", func() {
		BeforeEach(func() {
			dets = []entity.Detection{
				{Text: "a", Box: entity.Box{Left: 0, Top: 0, Width: 20, Height: 10}},
				{Text: "b", Box: entity.Box{Left: 30, Top: 8, Width: 20, Height: 10}},
				{Text: "c", Box: entity.Box{Left: 60, Top: 16, Width: 20, Height: 10}},
			}
		})

		It("should chain them into one line even when the ends are far apart", func() {
			// each detection is within 10px of the previously added one
			Expect(groups).To(HaveLen(1))
			Expect(groups[0]).To(HaveLen(3))
		})
	})

	When("a gap exceeds the threshold", func() {
		BeforeEach(func() {
			dets = []entity.Detection{
				{Text: "a", Box: entity.Box{Left: 0, Top: 0, Width: 20, Height: 10}},
				{Text: "b", Box: entity.Box{Left: 0, Top: 30, Width: 20, Height: 10}},
			}
		})

		It("should start a new line", func() {
			Expect(groups).To(HaveLen(2))
		})
	})

	When("words arrive out of reading order", func() {
		BeforeEach(func() {
			dets = []entity.Detection{
				{Text: "world", Box: entity.Box{Left: 80, Top: 2, Width: 40, Height: 10}},
				{Text: "hello", Box: entity.Box{Left: 10, Top: 0, Width: 40, Height: 10}},
			}
		})

		It("should order each line left to right", func() {
			Expect(groups).To(HaveLen(1))
			Expect(groups[0][0].Text).To(Equal("hello"))
			Expect(groups[0][1].Text).To(Equal("world"))
		})
	})

	When("the threshold is unset", func() {
		BeforeEach(func() {
			cfg = LineConfig{}
			dets = []entity.Detection{
				{Text: "a", Box: entity.Box{Left: 0, Top: 0, Width: 20, Height: 10}},
				{Text: "b", Box: entity.Box{Left: 30, Top: 9, Width: 20, Height: 10}},
			}
		})

		It("should fall back to the default tolerance", func() {
			Expect(groups).To(HaveLen(1))
		})
	})
})

var _ = Describe("JoinLines", func() {
	It("should join words with single spaces", func() {
		groups := [][]entity.Detection{{
			{Text: "Total", Confidence: 0.8, Variant: "binary"},
			{Text: "$9.99", Confidence: 0.6},
		}}
		lines := JoinLines(groups)
		Expect(lines).To(HaveLen(1))
		Expect(lines[0].RawText).To(Equal("Total $9.99"))
	})

	It("should average the word confidences", func() {
		groups := [][]entity.Detection{{
			{Text: "Total", Confidence: 0.8},
			{Text: "$9.99", Confidence: 0.6},
		}}
		lines := JoinLines(groups)
		Expect(lines[0].Confidence).To(BeNumerically("~", 0.7, 1e-9))
	})

	It("should carry the first word's variant and a normalized form", func() {
		groups := [][]entity.Detection{{
			{Text: "Corner", Confidence: 0.9, Variant: "adaptive"},
			{Text: "BAKERY", Confidence: 0.9},
		}}
		lines := JoinLines(groups)
		Expect(lines[0].Variant).To(Equal("adaptive"))
		Expect(lines[0].Normalized).To(Equal("corner bakery"))
	})
})

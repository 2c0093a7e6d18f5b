package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DetectLanguage", func() {
	It("should default to English for Latin text", func() {
		Expect(DetectLanguage("Total: $45.00 Thank you")).To(Equal("en"))
	})

	It("should default to English for empty text", func() {
		Expect(DetectLanguage("")).To(Equal("en"))
	})

	It("should pick Hindi for plain Devanagari", func() {
		Expect(DetectLanguage("कुल राशि 500")).To(Equal("hi"))
	})

	It("should pick Marathi when a marker term appears", func() {
		Expect(DetectLanguage("एकूण रक्कम 500")).To(Equal("mr"))
	})

	It("should pick Hindi for mixed-script text without markers", func() {
		Expect(DetectLanguage("Super Store दुकान")).To(Equal("hi"))
	})
})

var _ = Describe("ProfileFor", func() {
	It("should return the requested profile", func() {
		Expect(ProfileFor("hi").Lang).To(Equal("hi"))
		Expect(ProfileFor("mr").Lang).To(Equal("mr"))
	})

	It("should fall back to English for unknown languages", func() {
		Expect(ProfileFor("de").Lang).To(Equal("en"))
		Expect(ProfileFor("").Lang).To(Equal("en"))
	})
})

var _ = Describe("Profile", func() {
	Describe("MatchAmount", func() {
		It("should parse a rupee sign with thousands separators", func() {
			v, ok := ProfileFor("en").MatchAmount("₹1,250.50")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(1250.50))
		})

		It("should parse the abbreviated rupee form", func() {
			v, ok := ProfileFor("en").MatchAmount("Rs. 450")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(450.0))
		})

		It("should parse the Devanagari abbreviation on Hindi receipts", func() {
			v, ok := ProfileFor("hi").MatchAmount("रु. 300")
			Expect(ok).To(BeTrue())
			Expect(v).To(Equal(300.0))
		})

		It("should report no match for other currencies", func() {
			_, ok := ProfileFor("en").MatchAmount("Total $45.00")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("line classification", func() {
		var p Profile

		BeforeEach(func() {
			p = ProfileFor("en")
		})

		It("should recognize total lines case-insensitively", func() {
			Expect(p.isTotalLine("Grand Total: 99")).To(BeTrue())
		})

		It("should recognize tax lines", func() {
			Expect(p.isTaxLine("GST 5%")).To(BeTrue())
		})

		It("should recognize date lines", func() {
			Expect(p.isDateLine("Invoice Date: 01/01/2024")).To(BeTrue())
		})

		It("should recognize merchant lines", func() {
			Expect(p.isMerchantLine("Corner Store #4")).To(BeTrue())
		})

		It("should reject lines without vocabulary hits", func() {
			Expect(p.isMerchantLine("Corner Bakery")).To(BeFalse())
			Expect(p.isTotalLine("Thank you")).To(BeFalse())
		})

		When("the profile is Hindi", func() {
			BeforeEach(func() {
				p = ProfileFor("hi")
			})

			It("should match Devanagari vocabulary", func() {
				Expect(p.isTotalLine("कुल राशि 500")).To(BeTrue())
				Expect(p.isTaxLine("जीएसटी 22.50")).To(BeTrue())
			})
		})
	})
})

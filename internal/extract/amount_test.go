package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/receiptlens/receiptlens/constants"
)

var _ = Describe("AmountExtractor", func() {
	var (
		texts []string
		field AmountField
	)

	JustBeforeEach(func() {
		field = NewAmountExtractor().Extract(fusedLines(0.9, texts...))
	})

	When("the dollar sign was misread as the letter S", func() {
		BeforeEach(func() {
			texts = []string{"Amount: S 24.99"}
		})

		It("should treat the value as dollars", func() {
			Expect(field.Value).To(Equal(24.99))
			Expect(field.Currency).To(Equal(constants.USD))
		})

		It("should let the keyword boost push the score past one", func() {
			Expect(field.Score).To(BeNumerically(">", 1.0))
		})
	})

	When("a bare S precedes the number", func() {
		BeforeEach(func() {
			texts = []string{"s 12.99"}
		})

		It("should still resolve dollars", func() {
			Expect(field.Value).To(Equal(12.99))
			Expect(field.Currency).To(Equal(constants.USD))
		})
	})

	When("a labeled line carries a currency symbol", func() {
		BeforeEach(func() {
			texts = []string{"Total: $45.00"}
		})

		It("should resolve the symbol", func() {
			Expect(field.Value).To(Equal(45.00))
			Expect(field.Currency).To(Equal(constants.USD))
		})
	})

	When("the symbol follows the number", func() {
		BeforeEach(func() {
			texts = []string{"45.00€"}
		})

		It("should resolve the trailing symbol", func() {
			Expect(field.Value).To(Equal(45.00))
			Expect(field.Currency).To(Equal(constants.EUR))
		})
	})

	When("the rupee word stands in for a symbol", func() {
		BeforeEach(func() {
			texts = []string{"Total Rs 1250.50"}
		})

		It("should resolve INR", func() {
			Expect(field.Value).To(Equal(1250.50))
			Expect(field.Currency).To(Equal(constants.INR))
		})
	})

	When("the decimals use a comma", func() {
		BeforeEach(func() {
			texts = []string{"Total: 45,00"}
		})

		It("should parse the European form", func() {
			Expect(field.Value).To(Equal(45.00))
		})
	})

	When("several amounts compete", func() {
		BeforeEach(func() {
			texts = []string{
				"Item A 12.00",
				"Total: 96.12",
				"Cash 100.00",
			}
		})

		It("should prefer the total line over larger bare numbers", func() {
			Expect(field.Value).To(Equal(96.12))
		})
	})

	When("the same value appears with and without context", func() {
		BeforeEach(func() {
			texts = []string{"$12.50", "Total 12.50"}
		})

		It("should merge the near-equal candidates", func() {
			Expect(field.Value).To(Equal(12.50))
		})

		It("should keep the higher-scored occurrence", func() {
			// the keyword line outscores the symbol line, so its (unknown)
			// currency survives the merge
			Expect(field.Score).To(BeNumerically("~", 1.0, 1e-9))
			Expect(field.Currency).To(Equal(constants.Unknown))
		})
	})

	When("a bare year is the only number", func() {
		BeforeEach(func() {
			texts = []string{"2024"}
		})

		It("should reject it as a date fragment", func() {
			Expect(field.Value).To(BeZero())
			Expect(field.Currency).To(Equal(constants.Unknown))
		})
	})

	When("a year-like value sits on a money line", func() {
		BeforeEach(func() {
			texts = []string{"total 1999"}
		})

		It("should keep it", func() {
			Expect(field.Value).To(Equal(1999.0))
		})
	})

	When("a sub-unit value has no money context", func() {
		BeforeEach(func() {
			texts = []string{"0.50"}
		})

		It("should reject it", func() {
			Expect(field.Value).To(BeZero())
		})
	})

	When("a sub-unit value sits on a money line", func() {
		BeforeEach(func() {
			texts = []string{"fee 0.50"}
		})

		It("should keep it", func() {
			Expect(field.Value).To(Equal(0.50))
		})
	})

	When("there are no lines", func() {
		BeforeEach(func() {
			texts = nil
		})

		It("should return an unknown-currency zero field", func() {
			Expect(field.Value).To(BeZero())
			Expect(field.Currency).To(Equal(constants.Unknown))
			Expect(field.Score).To(BeZero())
		})
	})
})

package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TitleExtractor", func() {
	var (
		texts []string
		field TitleField
	)

	JustBeforeEach(func() {
		field = NewTitleExtractor().Extract(fusedLines(0.9, texts...))
	})

	When("a line carries an explicit label", func() {
		BeforeEach(func() {
			texts = []string{
				"Date: 01/02/2024",
				"Merchant: Blue Bottle Coffee",
				"Total: $12.50",
			}
		})

		It("should take the labeled line regardless of position", func() {
			Expect(field.Value).To(Equal("Blue Bottle Coffee"))
		})

		It("should score it highest", func() {
			Expect(field.Score).To(Equal(0.9))
		})

		It("should keep the original casing", func() {
			Expect(field.SourceText).To(Equal("Merchant: Blue Bottle Coffee"))
		})
	})

	When("the label capture is a short fragment", func() {
		BeforeEach(func() {
			texts = []string{"Name: XY", "Blue Bottle"}
		})

		It("should skip the fragment and fall through to the shape rules", func() {
			Expect(field.Value).To(Equal("Blue Bottle"))
			Expect(field.Score).To(Equal(0.8))
		})
	})

	When("no label exists but a proper-noun line does", func() {
		BeforeEach(func() {
			texts = []string{
				"123 Main Street 45.67",
				"Corner Bakery",
				"Total: $45.67",
			}
		})

		It("should pick the proper-noun line", func() {
			Expect(field.Value).To(Equal("Corner Bakery"))
			Expect(field.Score).To(Equal(0.8))
		})
	})

	When("a line carries a business suffix", func() {
		BeforeEach(func() {
			texts = []string{
				"09/12/2024 14:33",
				"ACME CORP",
				"item 4.50",
			}
		})

		It("should pick the suffix line", func() {
			Expect(field.Value).To(Equal("ACME CORP"))
			Expect(field.Score).To(Equal(0.7))
		})
	})

	When("only a plain first line qualifies", func() {
		BeforeEach(func() {
			texts = []string{
				"GR0CERY 0UTLET #42",
				"12/01/2024",
				"Total 9.99",
			}
		})

		It("should award it the first-line score", func() {
			Expect(field.Value).To(Equal("GR0CERY 0UTLET #42"))
			Expect(field.Score).To(Equal(0.5))
		})
	})

	When("the leading line is date-like", func() {
		BeforeEach(func() {
			texts = []string{"01/02/2024", "some merchant here"}
		})

		It("should pass the first-line award to the next eligible line", func() {
			Expect(field.Value).To(Equal("some merchant here"))
			Expect(field.Score).To(Equal(0.5))
		})
	})

	When("the first eligible line also matches a shape rule", func() {
		BeforeEach(func() {
			texts = []string{"Seattle Coffee Works", "plain lowercase tail"}
		})

		It("should keep the better shape score and spend the award there", func() {
			Expect(field.Value).To(Equal("Seattle Coffee Works"))
			Expect(field.Score).To(Equal(0.8))
		})
	})

	When("every line carries receipt structure", func() {
		BeforeEach(func() {
			texts = []string{
				"Total: 55.00",
				"Invoice 1234",
				"Date: 01/01/2024",
			}
		})

		It("should fall back to the first usable line at the last-resort score", func() {
			Expect(field.Value).To(Equal("Total: 55.00"))
			Expect(field.Score).To(Equal(0.3))
		})
	})

	When("lines are too short or purely numeric", func() {
		BeforeEach(func() {
			texts = []string{"12345", "99"}
		})

		It("should return the placeholder", func() {
			Expect(field.Value).To(Equal(UntitledReceipt))
			Expect(field.Score).To(BeZero())
		})
	})

	When("there are no lines at all", func() {
		BeforeEach(func() {
			texts = nil
		})

		It("should return the placeholder", func() {
			Expect(field.Value).To(Equal(UntitledReceipt))
		})
	})
})

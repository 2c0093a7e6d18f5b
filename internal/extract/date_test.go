package extract

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DateExtractor", func() {
	var (
		texts []string
		field DateField
	)

	JustBeforeEach(func() {
		field = NewDateExtractor().Extract(fusedLines(0.85, texts...))
	})

	When("a labeled line and a bare date both exist", func() {
		BeforeEach(func() {
			texts = []string{"03/15/2024", "Date: 04/16/2024"}
		})

		It("should prefer the labeled line", func() {
			Expect(field.Value).To(Equal("04/16/2024"))
		})

		It("should carry the line confidence and source", func() {
			Expect(field.Confidence).To(Equal(0.85))
			Expect(field.SourceText).To(Equal("Date: 04/16/2024"))
		})
	})

	When("only a bare four-digit-year date exists", func() {
		BeforeEach(func() {
			texts = []string{"Corner Bakery", "03/15/2024 10:22"}
		})

		It("should find it anywhere in the line", func() {
			Expect(field.Value).To(Equal("03/15/2024"))
		})
	})

	When("the components are single digits", func() {
		BeforeEach(func() {
			texts = []string{"3/5/2024"}
		})

		It("should zero-pad the canonical form", func() {
			Expect(field.Value).To(Equal("03/05/2024"))
		})
	})

	When("the first component cannot be a month", func() {
		BeforeEach(func() {
			texts = []string{"25/12/2024"}
		})

		It("should treat it as the day", func() {
			Expect(field.Value).To(Equal("12/25/2024"))
		})
	})

	When("a line holds an invalid match before a valid one", func() {
		BeforeEach(func() {
			texts = []string{"13/13/2024 then 14/10/2024"}
		})

		It("should skip the invalid match and keep scanning", func() {
			Expect(field.Value).To(Equal("10/14/2024"))
		})
	})

	When("the date is labeled with a short numeric form", func() {
		BeforeEach(func() {
			texts = []string{"12/11/10", "Date: 5.3.24"}
		})

		It("should prefer the labeled pattern over an earlier bare short date", func() {
			Expect(field.Value).To(Equal("05/03/2024"))
		})
	})

	When("the date is textual", func() {
		BeforeEach(func() {
			texts = []string{"March 5th, 2024"}
		})

		It("should resolve the month name and strip the ordinal", func() {
			Expect(field.Value).To(Equal("03/05/2024"))
		})
	})

	When("the day precedes the month name", func() {
		BeforeEach(func() {
			texts = []string{"21 December 2023"}
		})

		It("should resolve it day-first", func() {
			Expect(field.Value).To(Equal("12/21/2023"))
		})
	})

	When("the date is year-first", func() {
		BeforeEach(func() {
			texts = []string{"2024/3/5"}
		})

		It("should read the trailing pair as month and day", func() {
			Expect(field.Value).To(Equal("03/05/2024"))
		})
	})

	When("the year has two digits", func() {
		It("should expand values below fifty into the 2000s", func() {
			f := NewDateExtractor().Extract(fusedLines(0.8, "01/02/49"))
			Expect(f.Value).To(Equal("01/02/2049"))
		})

		It("should expand values of fifty and above into the 1900s", func() {
			f := NewDateExtractor().Extract(fusedLines(0.8, "01/02/50"))
			Expect(f.Value).To(Equal("01/02/1950"))
		})
	})

	When("every numeric candidate is calendar-invalid", func() {
		BeforeEach(func() {
			texts = []string{"14/25/2024"}
		})

		It("should return empty", func() {
			Expect(field.Value).To(Equal(""))
			Expect(field.Confidence).To(BeZero())
		})
	})

	When("there are no lines", func() {
		BeforeEach(func() {
			texts = nil
		})

		It("should return the zero field", func() {
			Expect(field).To(Equal(DateField{}))
		})
	})
})

package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/receiptlens/receiptlens/internal/fusion"
)

// dateKind says which capture group holds which component, so rules stay
// declarative instead of branching per pattern.
type dateKind int

const (
	dateMonthFirst dateKind = iota // captures: month, day, year
	dateYearFirst                  // captures: year, month, day
	dateNameFirst                  // captures: month name, day, year
	dateDayName                    // captures: day, month name, year
)

type dateRule struct {
	re   *regexp.Regexp
	kind dateKind
}

const monthAlt = `jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec`

var (
	// numeric date with an unambiguous 4-digit year; tiers 1, 2 and 4 all
	// revolve around this shape
	reNumericDate4 = regexp.MustCompile(`(\d{1,2})[/.\-](\d{1,2})[/.\-](20\d{2})`)

	// tier 3: labeled and textual shapes, in priority order
	dateRules = []dateRule{
		{regexp.MustCompile(`(?:date|dt)[:.\s\-]+(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2,4})`), dateMonthFirst},
		{regexp.MustCompile(`(?:date|dt)[:.\s\-]+(` + monthAlt + `)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?[.,]?\s+(\d{2,4})`), dateNameFirst},
		{regexp.MustCompile(`(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{2})\b`), dateMonthFirst},
		{regexp.MustCompile(`(20\d{2})[/.\-](\d{1,2})[/.\-](\d{1,2})`), dateYearFirst},
		{regexp.MustCompile(`\b(` + monthAlt + `)[a-z]*\.?\s+(\d{1,2})(?:st|nd|rd|th)?[.,]?\s+(\d{2,4})\b`), dateNameFirst},
		{regexp.MustCompile(`\b(\d{1,2})(?:st|nd|rd|th)?\s+(` + monthAlt + `)[a-z]*\.?[.,]?\s*(\d{2,4})\b`), dateDayName},
	}

	monthNumbers = map[string]int{
		"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
		"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
	}
)

// DateExtractor produces one canonical MM/DD/YYYY string, or empty.
type DateExtractor struct{}

func NewDateExtractor() *DateExtractor {
	return &DateExtractor{}
}

// Extract runs the four-tier date cascade over ranked lines:
// "date"-labeled numeric lines, bare numeric lines, the textual/labeled
// rule table, then a global scan. First valid hit wins.
func (e *DateExtractor) Extract(lines []fusion.Line) DateField {
	// tier 1: the word "date" plus a 4-digit-year numeric date on one line
	for _, ln := range lines {
		if !strings.Contains(ln.Normalized, "date") {
			continue
		}
		if f, ok := firstValidDate(reNumericDate4, dateMonthFirst, ln); ok {
			return f
		}
	}

	// tier 2: a bare 4-digit-year numeric date anywhere
	for _, ln := range lines {
		if f, ok := firstValidDate(reNumericDate4, dateMonthFirst, ln); ok {
			return f
		}
	}

	// tier 3: pattern-major walk of the labeled/textual rule table
	for _, rule := range dateRules {
		for _, ln := range lines {
			if f, ok := firstValidDate(rule.re, rule.kind, ln); ok {
				return f
			}
		}
	}

	// tier 4: best-effort global scan, first valid match in scan order
	for _, ln := range lines {
		if f, ok := firstValidDate(reNumericDate4, dateMonthFirst, ln); ok {
			return f
		}
	}

	return DateField{}
}

// firstValidDate walks every match of re in the line and returns the first
// that survives calendar validation; invalid matches are skipped, not fatal.
func firstValidDate(re *regexp.Regexp, kind dateKind, ln fusion.Line) (DateField, bool) {
	for _, m := range re.FindAllStringSubmatch(ln.Normalized, -1) {
		if canonical, ok := buildDate(kind, m[1], m[2], m[3]); ok {
			return DateField{Value: canonical, Confidence: ln.Confidence, SourceText: ln.RawText}, true
		}
	}
	return DateField{}, false
}

// buildDate assembles the canonical date from the captures of one rule.
//
// Numeric pairs are disambiguated uniformly: when the first number exceeds
// 12 but fits a day, it is the day and the second number the month.
// Two-digit years expand with one fixed rule: below 50 is 2000s, else 1900s.
func buildDate(kind dateKind, c1, c2, c3 string) (string, bool) {
	var month, day, year int
	var ok bool

	switch kind {
	case dateMonthFirst:
		a, _ := strconv.Atoi(c1)
		b, _ := strconv.Atoi(c2)
		if year, ok = expandYear(c3); !ok {
			return "", false
		}
		month, day = disambiguate(a, b)
	case dateYearFirst:
		if year, ok = expandYear(c1); !ok {
			return "", false
		}
		a, _ := strconv.Atoi(c2)
		b, _ := strconv.Atoi(c3)
		month, day = disambiguate(a, b)
	case dateNameFirst:
		month = monthNumbers[strings.ToLower(c1)[:3]]
		day, _ = strconv.Atoi(c2)
		if year, ok = expandYear(c3); !ok {
			return "", false
		}
	case dateDayName:
		day, _ = strconv.Atoi(c1)
		month = monthNumbers[strings.ToLower(c2)[:3]]
		if year, ok = expandYear(c3); !ok {
			return "", false
		}
	}

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return "", false
	}
	return fmt.Sprintf("%02d/%02d/%04d", month, day, year), true
}

// disambiguate maps a numeric pair to (month, day). A first value above 12
// cannot be a month; when it still fits a day the pair is day-first.
func disambiguate(a, b int) (month, day int) {
	if a > 12 && a <= 31 {
		return b, a
	}
	return a, b
}

// expandYear handles 2- and 4-digit years; 3-digit captures are garbage.
func expandYear(s string) (int, bool) {
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	switch {
	case y >= 1000:
		return y, true
	case y < 100:
		if y < 50 {
			return 2000 + y, true
		}
		return 1900 + y, true
	default:
		return 0, false
	}
}

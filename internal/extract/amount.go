package extract

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/receiptlens/receiptlens/constants"
	"github.com/receiptlens/receiptlens/internal/fusion"
)

// amountRule is one row of the amount cascade. Rules either imply a fixed
// currency (the "S" misread is always USD, "rs" always INR), capture a
// symbol to resolve, or leave the currency unknown.
type amountRule struct {
	re       *regexp.Regexp
	score    float64
	currency constants.Currency // fixed currency; Unknown means resolve from capture
	symIdx   int                // capture group holding a currency symbol, 0 = none
	valIdx   int                // capture group holding the numeric value
}

const (
	moneyKw   = `(?:amount|total|sum|price|cost|fee)`
	numGroup  = `(\d+(?:[.,]\d{1,2})?)`
	symGroup  = `([$€£¥₹])`
	rupeeWord = `(?:rs\.?|rupees?)`
)

// amountRules runs most specific to least. The "S" rows handle tesseract
// reading a dollar sign as the letter S on thermal paper.
var amountRules = []amountRule{
	{regexp.MustCompile(`amount:?\s*s\s*` + numGroup + `\b`), 0.95, constants.USD, 0, 1},
	{regexp.MustCompile(moneyKw + `[:.]?\s*` + symGroup + `\s*` + numGroup), 0.9, constants.Unknown, 1, 2},
	{regexp.MustCompile(moneyKw + `[:.]?\s*` + numGroup + `\s*` + symGroup), 0.9, constants.Unknown, 2, 1},
	{regexp.MustCompile(moneyKw + `[:.]?\s*` + rupeeWord + `\s*` + numGroup), 0.9, constants.INR, 0, 1},
	{regexp.MustCompile(moneyKw + `[^0-9]*` + numGroup), 0.9, constants.Unknown, 0, 1},
	{regexp.MustCompile(moneyKw + `[:.\s]\s*` + numGroup + `\b`), 0.8, constants.Unknown, 0, 1},
	{regexp.MustCompile(`\bs\s*(\d+(?:[.,]\d{2})?)\b`), 0.8, constants.USD, 0, 1},
	{regexp.MustCompile(symGroup + `\s*` + numGroup), 0.7, constants.Unknown, 1, 2},
	{regexp.MustCompile(numGroup + `\s*` + symGroup), 0.7, constants.Unknown, 2, 1},
	{regexp.MustCompile(`\b` + rupeeWord + `\s*` + numGroup), 0.7, constants.INR, 0, 1},
	{regexp.MustCompile(`\b(\d+(?:[.,]\d{2})?)\b`), 0.5, constants.Unknown, 0, 1},
}

// boostWords each add 0.1 to a candidate whose source line contains them;
// scores are heuristic weights and may exceed 1.0.
var boostWords = []string{"total", "amount", "price"}

var (
	reMoneyKeyword = regexp.MustCompile(moneyKw)
	reBareInteger  = regexp.MustCompile(`^(\d+)$`)
)

// fallbackScore is what a bare-integer rescue is worth when the whole
// cascade produced nothing.
const fallbackScore = 0.3

// amountCandidate is transient state for one extraction run.
type amountCandidate struct {
	value    float64
	score    float64
	currency constants.Currency
	line     string // normalized source line
	raw      string
}

// AmountExtractor finds the monetary total and its currency.
type AmountExtractor struct{}

func NewAmountExtractor() *AmountExtractor {
	return &AmountExtractor{}
}

// Extract collects every rule match on every line, filters year-like and
// sub-unit values, merges near-equal amounts and selects by source-line
// preference ("total", then "amount") before falling back to the highest
// score.
func (e *AmountExtractor) Extract(lines []fusion.Line) AmountField {
	candidates := e.collect(lines)
	candidates = e.merge(candidates)

	if picked, ok := e.selectCandidate(candidates); ok {
		return AmountField{
			Value:      picked.value,
			Currency:   picked.currency,
			Score:      picked.score,
			SourceText: picked.raw,
		}
	}

	if rescued, ok := e.fallback(lines); ok {
		return rescued
	}

	return AmountField{Currency: constants.Unknown}
}

func (e *AmountExtractor) collect(lines []fusion.Line) []amountCandidate {
	var out []amountCandidate
	for _, ln := range lines {
		hasKeyword := reMoneyKeyword.MatchString(ln.Normalized)
		for _, rule := range amountRules {
			for _, m := range rule.re.FindAllStringSubmatch(ln.Normalized, -1) {
				value, err := parseAmountValue(m[rule.valIdx])
				if err != nil {
					continue
				}
				// calendar years and sub-unit noise only survive on lines
				// that explicitly talk about money
				if !hasKeyword {
					if isIntegral(value) && value >= 1900 && value <= 2100 {
						continue
					}
					if value < 1 {
						continue
					}
				}

				currency := rule.currency
				if rule.symIdx > 0 {
					if cur, ok := constants.CurrencyForSymbol(m[rule.symIdx]); ok {
						currency = cur
					}
				}

				score := rule.score
				for _, w := range boostWords {
					if strings.Contains(ln.Normalized, w) {
						score += 0.1
					}
				}

				out = append(out, amountCandidate{
					value:    value,
					score:    score,
					currency: currency,
					line:     ln.Normalized,
					raw:      ln.RawText,
				})
			}
		}
	}
	return out
}

// merge collapses candidates whose values differ by less than one cent,
// keeping the higher-scored one (stable, so earlier candidates win ties).
func (e *AmountExtractor) merge(candidates []amountCandidate) []amountCandidate {
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	out := make([]amountCandidate, 0, len(candidates))
	for _, c := range candidates {
		dup := false
		for _, kept := range out {
			if math.Abs(kept.value-c.value) < 0.01 {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, c)
		}
	}
	return out
}

// selectCandidate prefers a confident "total" line, then a confident
// "amount" line, then the best remaining score. Candidates arrive sorted
// by score descending.
func (e *AmountExtractor) selectCandidate(candidates []amountCandidate) (amountCandidate, bool) {
	if len(candidates) == 0 {
		return amountCandidate{}, false
	}
	for _, c := range candidates {
		if c.score >= 0.7 && strings.Contains(c.line, "total") {
			return c, true
		}
	}
	for _, c := range candidates {
		if c.score >= 0.7 && strings.Contains(c.line, "amount") {
			return c, true
		}
	}
	return candidates[0], true
}

// fallback rescues a line that is nothing but a plausible integer. Year-like
// values stay excluded: a lone "2024" is a date fragment, not a price.
func (e *AmountExtractor) fallback(lines []fusion.Line) (AmountField, bool) {
	for _, ln := range lines {
		m := reBareInteger.FindStringSubmatch(ln.Normalized)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 || n >= 10000 {
			continue
		}
		if n >= 1900 && n <= 2100 {
			continue
		}
		return AmountField{
			Value:      float64(n),
			Currency:   constants.Unknown,
			Score:      fallbackScore,
			SourceText: ln.RawText,
		}, true
	}
	return AmountField{}, false
}

func parseAmountValue(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

func isIntegral(v float64) bool {
	return v == math.Trunc(v)
}

package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/receiptlens/receiptlens/internal/fusion"
)

// UntitledReceipt is the fixed placeholder when no title can be extracted.
const UntitledReceipt = "Untitled Receipt"

var (
	reTitleLabel   = regexp.MustCompile(`(?i)(?:title|merchant|store|vendor|name)[:.\s\-]+(.+)`)
	reLabelRemnant = regexp.MustCompile(`^[:.\s\-]+`)
	reProperNoun   = regexp.MustCompile(`^[A-Z][a-z]+(?:\s+[A-Z][a-z]+){0,3}$`)
	reBizSuffix    = regexp.MustCompile(`(?i)\b(?:llc|inc|corp|shop|store|restaurant|cafe|hotel)\b`)
	reAllDigits    = regexp.MustCompile(`^\d+$`)

	// lines carrying these words are receipt structure, not merchant names
	titleStopWords = []string{"date", "amount", "total", "invoice", "receipt", "bill", "tax", "payment", "customer"}

	reDateLike   = regexp.MustCompile(`\d{1,2}[/.\-]\d{1,2}[/.\-]\d{2,4}`)
	reAmountLike = regexp.MustCompile(`[$€£¥₹]\s*\d|\d+[.,]\d{2}\b|^\d+$`)
)

// titleRule scores in tier order; scores are fixed per rule.
const (
	titleScoreLabeled    = 0.9
	titleScoreProperNoun = 0.8
	titleScoreBizSuffix  = 0.7
	titleScoreFirstLine  = 0.5
	titleScoreLastResort = 0.3
)

// TitleExtractor finds the merchant/title line. Tiers never mix: the first
// tier producing any match across the whole list wins.
type TitleExtractor struct{}

func NewTitleExtractor() *TitleExtractor {
	return &TitleExtractor{}
}

// Extract runs the title cascade over ranked lines.
func (e *TitleExtractor) Extract(lines []fusion.Line) TitleField {
	if f, ok := e.labeled(lines); ok {
		return f
	}
	if f, ok := e.scored(lines); ok {
		return f
	}
	if f, ok := e.firstUsable(lines); ok {
		return f
	}
	return TitleField{Value: UntitledReceipt}
}

// labeled matches an explicit label ("Merchant: ...") and keeps the original
// casing of the captured remainder. A single-word capture shorter than four
// runes is treated as a leftover label fragment and skipped.
func (e *TitleExtractor) labeled(lines []fusion.Line) (TitleField, bool) {
	for _, ln := range lines {
		m := reTitleLabel.FindStringSubmatch(ln.RawText)
		if m == nil {
			continue
		}
		title := strings.TrimSpace(reLabelRemnant.ReplaceAllString(m[1], ""))
		if title == "" {
			continue
		}
		if !strings.Contains(title, " ") && utf8.RuneCountInString(title) < 4 {
			continue
		}
		return TitleField{Value: title, Score: titleScoreLabeled, SourceText: ln.RawText}, true
	}
	return TitleField{}, false
}

// scored collects candidates from lines free of structural keywords:
// proper-noun shape 0.8, business suffix 0.7, and the first line that is
// neither date-like nor amount-like 0.5 (at most once). Highest score wins,
// ties fall to the earlier line.
func (e *TitleExtractor) scored(lines []fusion.Line) (TitleField, bool) {
	var best TitleField
	firstLineSeen := false
	for _, ln := range lines {
		if containsAny(ln.Normalized, titleStopWords) {
			continue
		}
		if utf8.RuneCountInString(ln.RawText) < 3 {
			continue
		}

		score := 0.0
		switch {
		case reProperNoun.MatchString(ln.RawText):
			score = titleScoreProperNoun
		case reBizSuffix.MatchString(ln.RawText):
			score = titleScoreBizSuffix
		}

		// the first-line award is independent of the shape rules above and
		// handed out exactly once
		if !firstLineSeen &&
			!reDateLike.MatchString(ln.Normalized) && !reAmountLike.MatchString(ln.Normalized) {
			firstLineSeen = true
			if score < titleScoreFirstLine {
				score = titleScoreFirstLine
			}
		}

		if score > best.Score {
			best = TitleField{Value: ln.RawText, Score: score, SourceText: ln.RawText}
		}
	}
	return best, best.Score > 0
}

// firstUsable is the last resort: the first line of three or more runes
// that is not purely numeric.
func (e *TitleExtractor) firstUsable(lines []fusion.Line) (TitleField, bool) {
	for _, ln := range lines {
		if utf8.RuneCountInString(ln.RawText) < 3 {
			continue
		}
		if reAllDigits.MatchString(ln.RawText) {
			continue
		}
		return TitleField{Value: ln.RawText, Score: titleScoreLastResort, SourceText: ln.RawText}, true
	}
	return TitleField{}, false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

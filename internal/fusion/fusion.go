// Package fusion merges word detections collected from several preprocessed
// renditions of one receipt image into a single ranked, duplicate-free list
// of text lines. Field extractors consume that list; they never see raw
// per-variant output.
package fusion

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/receiptlens/receiptlens/internal/entity"
)

// ConfidenceFloor is the minimum detection confidence kept for fusion.
// Detections at or below it are discarded.
const ConfidenceFloor = 0.2

// Line is one fused text line. Normalized is the matching key; RawText is
// preserved untouched for the output record.
type Line struct {
	RawText    string
	Normalized string
	Confidence float64
	Variant    string
}

var (
	// everything outside letters, digits, underscore, whitespace,
	// basic punctuation and the currency symbols gets dropped
	reDisallowed = regexp.MustCompile(`[^\p{L}\p{N}_\s:;.,\-/$€£¥₹%]`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// NormalizeText lowercases text, strips disallowed runes and collapses
// whitespace runs to single spaces.
func NormalizeText(text string) string {
	t := strings.ToLower(text)
	t = reDisallowed.ReplaceAllString(t, "")
	t = reWhitespace.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}

// Fuse filters, ranks and dedupes detections pooled across all variants.
//
// Detections at or below the confidence floor, blank, or shorter than two
// runes after trimming are discarded. Survivors are sorted by confidence
// descending (stable, so first-seen order breaks ties) and deduplicated on
// exact raw text: the kept occurrence of a duplicated text is always its
// highest-confidence instance.
func Fuse(dets []entity.Detection) []Line {
	kept := make([]Line, 0, len(dets))
	for _, d := range dets {
		if d.Confidence <= ConfidenceFloor {
			continue
		}
		raw := strings.TrimSpace(d.Text)
		if utf8.RuneCountInString(raw) < 2 {
			continue
		}
		kept = append(kept, Line{
			RawText:    raw,
			Normalized: NormalizeText(raw),
			Confidence: d.Confidence,
			Variant:    d.Variant,
		})
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Confidence > kept[j].Confidence
	})

	seen := make(map[string]struct{}, len(kept))
	out := make([]Line, 0, len(kept))
	for _, ln := range kept {
		if _, dup := seen[ln.RawText]; dup {
			continue
		}
		seen[ln.RawText] = struct{}{}
		out = append(out, ln)
	}
	return out
}

// RawTexts returns the ranked raw lines for the output record.
// Never nil: an empty fusion yields an empty slice.
func RawTexts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = ln.RawText
	}
	return out
}

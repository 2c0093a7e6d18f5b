package fusion

import (
	"sort"
	"strings"

	"github.com/receiptlens/receiptlens/internal/entity"
)

// LineConfig controls geometric line grouping.
type LineConfig struct {
	// YThreshold is the vertical tolerance in pixels: a detection joins the
	// current line while its top edge is within this distance of the line's
	// most recently added member.
	YThreshold int
}

// DefaultLineConfig returns the tolerance tuned for phone photos of receipts.
func DefaultLineConfig() LineConfig {
	return LineConfig{YThreshold: 10}
}

// GroupIntoLines clusters detections into physical lines by vertical
// proximity and orders each line left to right. Detections without geometry
// are ignored; callers fall back to confidence ranking for those.
func GroupIntoLines(dets []entity.Detection, cfg LineConfig) [][]entity.Detection {
	if cfg.YThreshold <= 0 {
		cfg = DefaultLineConfig()
	}

	positioned := make([]entity.Detection, 0, len(dets))
	for _, d := range dets {
		if d.Box.Empty() || strings.TrimSpace(d.Text) == "" {
			continue
		}
		positioned = append(positioned, d)
	}
	if len(positioned) == 0 {
		return nil
	}

	sort.SliceStable(positioned, func(i, j int) bool {
		return positioned[i].Box.Top < positioned[j].Box.Top
	})

	var groups [][]entity.Detection
	current := []entity.Detection{positioned[0]}
	for _, d := range positioned[1:] {
		last := current[len(current)-1]
		if abs(d.Box.Top-last.Box.Top) <= cfg.YThreshold {
			current = append(current, d)
			continue
		}
		groups = append(groups, sortByLeft(current))
		current = []entity.Detection{d}
	}
	groups = append(groups, sortByLeft(current))
	return groups
}

// JoinLines renders grouped detections as text lines, words joined by
// single spaces, each line's confidence being the mean of its words.
func JoinLines(groups [][]entity.Detection) []Line {
	out := make([]Line, 0, len(groups))
	for _, group := range groups {
		words := make([]string, 0, len(group))
		variant := ""
		sum := 0.0
		for _, d := range group {
			words = append(words, strings.TrimSpace(d.Text))
			sum += d.Confidence
			if variant == "" {
				variant = d.Variant
			}
		}
		raw := strings.Join(words, " ")
		out = append(out, Line{
			RawText:    raw,
			Normalized: NormalizeText(raw),
			Confidence: sum / float64(len(group)),
			Variant:    variant,
		})
	}
	return out
}

func sortByLeft(line []entity.Detection) []entity.Detection {
	sort.SliceStable(line, func(i, j int) bool {
		return line[i].Box.Left < line[j].Box.Left
	})
	return line
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

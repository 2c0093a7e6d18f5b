package extract

import (
	"log/slog"
	"strings"

	"github.com/receiptlens/receiptlens/constants"
	"github.com/receiptlens/receiptlens/internal/entity"
	"github.com/receiptlens/receiptlens/internal/fusion"
)

// StructuredFields is the outcome of classifying physical lines against a
// language profile. Zero-valued fields were not found.
type StructuredFields struct {
	Language string
	Merchant TitleField
	Date     DateField
	Total    AmountField
	Tax      AmountField
	// Lines are the physical lines in reading order.
	Lines []fusion.Line
}

// StructuredExtractor classifies geometry-grouped lines via per-language
// keyword tables instead of the pattern cascades. Supporting another
// language means adding a Profile entry, nothing else.
type StructuredExtractor struct {
	lineCfg fusion.LineConfig
	dates   *DateExtractor
	logger  *slog.Logger
}

func NewStructuredExtractor(logger *slog.Logger) *StructuredExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &StructuredExtractor{
		lineCfg: fusion.DefaultLineConfig(),
		dates:   NewDateExtractor(),
		logger:  logger,
	}
}

// Classify groups detections into physical lines, detects the receipt
// language, and takes the first line matching each keyword class. Field
// confidence is the mean word confidence of the matched line. The currency
// pattern table is rupee notation in every profile, so a matched amount is
// always INR.
func (e *StructuredExtractor) Classify(dets []entity.Detection) StructuredFields {
	groups := fusion.GroupIntoLines(dets, e.lineCfg)
	lines := fusion.JoinLines(groups)
	if len(lines) == 0 {
		return StructuredFields{Language: "en"}
	}

	texts := make([]string, len(lines))
	for i, ln := range lines {
		texts[i] = ln.RawText
	}
	lang := DetectLanguage(strings.Join(texts, " "))
	profile := ProfileFor(lang)

	out := StructuredFields{Language: lang, Lines: lines}
	for _, ln := range lines {
		if out.Merchant.Value == "" && profile.isMerchantLine(ln.RawText) {
			out.Merchant = TitleField{Value: ln.RawText, Score: ln.Confidence, SourceText: ln.RawText}
		}
		if out.Date.Value == "" && profile.isDateLine(ln.RawText) {
			if f := e.dates.Extract([]fusion.Line{ln}); f.Value != "" {
				out.Date = f
			}
		}
		if out.Total.Value == 0 && profile.isTotalLine(ln.RawText) {
			if v, ok := profile.MatchAmount(ln.RawText); ok && v != 0 {
				out.Total = AmountField{Value: v, Currency: constants.INR, Score: ln.Confidence, SourceText: ln.RawText}
			}
		}
		if out.Tax.Value == 0 && profile.isTaxLine(ln.RawText) {
			if v, ok := profile.MatchAmount(ln.RawText); ok && v != 0 {
				out.Tax = AmountField{Value: v, Currency: constants.INR, Score: ln.Confidence, SourceText: ln.RawText}
			}
		}
	}

	e.logger.Debug("structured classification",
		"language", lang,
		"lines", len(lines),
		"merchant_found", out.Merchant.Value != "",
		"date_found", out.Date.Value != "",
		"total_found", out.Total.Value != 0,
		"tax_found", out.Tax.Value != 0)

	return out
}

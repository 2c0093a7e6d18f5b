package extract

// Field weights for the overall record confidence. They sum to 1.0 with
// image quality carrying the remainder.
const (
	weightMerchant = 0.2
	weightDate     = 0.2
	weightTotal    = 0.3
	weightTax      = 0.2
	weightQuality  = 0.1
)

// OverallConfidence folds per-field confidences and the image quality score
// into a single [0,1] value. Missing fields contribute zero.
func OverallConfidence(fields FieldConfidences, quality float64) float64 {
	score := weightMerchant*clampUnit(fields.Merchant) +
		weightDate*clampUnit(fields.Date) +
		weightTotal*clampUnit(fields.Total) +
		weightTax*clampUnit(fields.Tax) +
		weightQuality*clampUnit(quality)
	return clampUnit(score)
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

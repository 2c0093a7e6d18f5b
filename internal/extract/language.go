package extract

import (
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Profile is the keyword and currency vocabulary for one receipt language.
// Keywords are matched case-insensitively against whole lines.
type Profile struct {
	Lang     string
	Merchant []string
	Date     []string
	Total    []string
	Tax      []string
	Currency []*regexp.Regexp
}

// The amount group tolerates Indian-style thousands separators; commas are
// stripped before parsing.
const sepNumber = `(\d+(?:,\d{3})*(?:\.\d{2})?)`

var (
	reRupeeSign = regexp.MustCompile(`₹\s*` + sepNumber)
	reRupeeAbbr = regexp.MustCompile(`(?i)rs\.?\s*` + sepNumber)
	reRupeeDeva = regexp.MustCompile(`रु\.?\s*` + sepNumber)
)

var profiles = map[string]Profile{
	"en": {
		Lang:     "en",
		Merchant: []string{"store", "shop", "outlet", "branch"},
		Date:     []string{"date", "invoice date", "bill date"},
		Total:    []string{"total", "amount", "sum", "grand total", "net amount"},
		Tax:      []string{"tax", "gst", "vat", "service charge"},
		Currency: []*regexp.Regexp{reRupeeSign, reRupeeAbbr},
	},
	"hi": {
		Lang:     "hi",
		Merchant: []string{"दुकान", "स्टोर", "शाखा"},
		Date:     []string{"तारीख", "बिल की तारीख", "चालान की तारीख"},
		Total:    []string{"कुल", "राशि", "योग", "कुल राशि"},
		Tax:      []string{"कर", "जीएसटी", "वैट", "सेवा शुल्क"},
		Currency: []*regexp.Regexp{reRupeeSign, reRupeeDeva},
	},
	"mr": {
		Lang:     "mr",
		Merchant: []string{"दुकान", "स्टोअर", "शाखा"},
		Date:     []string{"तारीख", "बिलाची तारीख", "चालानाची तारीख"},
		Total:    []string{"एकूण", "रक्कम", "बेरीज", "एकूण रक्कम"},
		Tax:      []string{"कर", "जीएसटी", "व्हॅट", "सेवा शुल्क"},
		Currency: []*regexp.Regexp{reRupeeSign, reRupeeDeva},
	},
}

// ProfileFor returns the vocabulary for lang, falling back to English for
// anything unrecognized.
func ProfileFor(lang string) Profile {
	if p, ok := profiles[lang]; ok {
		return p
	}
	return profiles["en"]
}

// markers that only occur in one of the two Devanagari vocabularies.
var marathiMarkers = []string{"एकूण", "बेरीज", "स्टोअर", "व्हॅट", "बिलाची", "चालानाची", "रक्कम"}

// DetectLanguage picks the profile language for a page of text. Devanagari
// script selects Hindi unless a Marathi-specific term appears; everything
// else is treated as English.
func DetectLanguage(text string) string {
	devanagari := false
	for _, r := range text {
		if unicode.Is(unicode.Devanagari, r) {
			devanagari = true
			break
		}
	}
	if !devanagari {
		return "en"
	}
	for _, marker := range marathiMarkers {
		if strings.Contains(text, marker) {
			return "mr"
		}
	}
	return "hi"
}

// MatchAmount runs the profile's currency patterns over text and returns
// the first parsable amount.
func (p Profile) MatchAmount(text string) (float64, bool) {
	for _, re := range p.Currency {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		return v, true
	}
	return 0, false
}

func (p Profile) isMerchantLine(text string) bool { return containsAnyFold(text, p.Merchant) }
func (p Profile) isDateLine(text string) bool     { return containsAnyFold(text, p.Date) }
func (p Profile) isTotalLine(text string) bool    { return containsAnyFold(text, p.Total) }
func (p Profile) isTaxLine(text string) bool      { return containsAnyFold(text, p.Tax) }

func containsAnyFold(s string, words []string) bool {
	lower := strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

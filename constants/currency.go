package constants

import (
	"strings"
)

type Currency string

const (
	USD     Currency = "USD"
	EUR     Currency = "EUR"
	GBP     Currency = "GBP"
	JPY     Currency = "JPY"
	INR     Currency = "INR"
	Unknown Currency = "UNKNOWN"
)

var allCurrencies = []Currency{
	USD,
	EUR,
	GBP,
	JPY,
	INR,
	Unknown,
}

func CurrencyCodes() []string {
	result := make([]string, len(allCurrencies))
	for i, cur := range allCurrencies {
		result[i] = string(cur)
	}
	return result
}

// CurrencyForSymbol maps a currency symbol found in receipt text to its code.
func CurrencyForSymbol(symbol string) (Currency, bool) {
	symbols := map[string]Currency{
		"$": USD,
		"€": EUR,
		"£": GBP,
		"¥": JPY,
		"₹": INR,
	}
	cur, ok := symbols[symbol]
	return cur, ok
}

// ParseCurrency canonicalizes a currency code or textual mention.
// Unrecognized input maps to Unknown.
func ParseCurrency(input string) (Currency, bool) {
	if input == "" {
		return Unknown, false
	}

	normalized := strings.ToUpper(strings.TrimSpace(input))

	// textual mentions seen on Indian receipts
	synonyms := map[string]Currency{
		"RS":     INR,
		"RS.":    INR,
		"RUPEE":  INR,
		"RUPEES": INR,
	}

	if cur, ok := synonyms[normalized]; ok {
		return cur, true
	}

	for _, cur := range allCurrencies {
		if normalized == string(cur) {
			return cur, true
		}
	}

	return Unknown, false
}

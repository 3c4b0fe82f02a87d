package normalize

import (
	"strconv"
	"strings"
)

// Money parses a currency-like string into a non-negative amount. Currency
// symbols, thousands separators, and a trailing "USD"/"dollars" are stripped.
// Negative results are rejected.
func Money(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	neg := strings.HasPrefix(s, "-") || strings.HasPrefix(s, "(")

	cleaned := strings.NewReplacer(
		"$", "",
		",", "",
		"(", "",
		")", "",
		"USD", "",
		"usd", "",
	).Replace(s)
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSuffix(cleaned, "dollars")
	cleaned = strings.TrimSuffix(cleaned, "Dollars")
	cleaned = strings.TrimSpace(cleaned)

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	if neg || v < 0 {
		return 0, false
	}
	return v, true
}

// Percent parses a percentage like "3%", "3.5 percent", or a bare number
// into its numeric rate.
func Percent(s string) (float64, bool) {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.TrimSuffix(s, "percent")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

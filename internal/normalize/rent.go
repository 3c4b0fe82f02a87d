package normalize

import (
	"regexp"
	"strings"
)

// RentFrequency is the billing period a rent quote is expressed in.
type RentFrequency string

const (
	RentAnnual    RentFrequency = "annual"
	RentQuarterly RentFrequency = "quarterly"
	RentMonthly   RentFrequency = "monthly"
	RentUnknown   RentFrequency = "unknown"
)

// RentQuote is a parsed rent expression: either a per-square-foot rate or a
// flat amount, with the frequency it is quoted at.
type RentQuote struct {
	AmountPerSF *float64      `json:"amount_per_sf,omitempty"`
	Amount      *float64      `json:"amount,omitempty"`
	Frequency   RentFrequency `json:"frequency"`
}

var (
	perSFRe  = regexp.MustCompile(`(?i)\$?\s*([\d,]+(?:\.\d+)?)\s*(?:per|/)\s*(?:square\s+foot|sq\.?\s*ft\.?|sf|psf)(?:\s*(?:per|/)\s*(year|annum|quarter|month))?`)
	perTimeRe = regexp.MustCompile(`(?i)\$?\s*([\d,]+(?:\.\d+)?)\s*(?:per|/|a)\s*(month|mo\.?|year|annum|yr\.?)`)
	bareAmtRe = regexp.MustCompile(`\$?\s*([\d,]+(?:\.\d+)?)`)
)

// RentUnit parses a rent expression such as "$24.50 per square foot per
// year", "$2,500 per month", or a bare amount. Bare amounts come back with
// RentUnknown frequency.
func RentUnit(s string) (RentQuote, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RentQuote{}, false
	}

	if m := perSFRe.FindStringSubmatch(s); m != nil {
		amt, ok := Money(m[1])
		if !ok {
			return RentQuote{}, false
		}
		freq := RentAnnual // per-SF rates default to annual quoting convention
		switch strings.ToLower(m[2]) {
		case "month":
			freq = RentMonthly
		case "quarter":
			freq = RentQuarterly
		}
		return RentQuote{AmountPerSF: &amt, Frequency: freq}, true
	}

	if m := perTimeRe.FindStringSubmatch(s); m != nil {
		amt, ok := Money(m[1])
		if !ok {
			return RentQuote{}, false
		}
		freq := RentMonthly
		unit := strings.ToLower(strings.TrimSuffix(m[2], "."))
		if unit == "year" || unit == "annum" || unit == "yr" {
			freq = RentAnnual
		}
		return RentQuote{Amount: &amt, Frequency: freq}, true
	}

	if m := bareAmtRe.FindStringSubmatch(s); m != nil {
		amt, ok := Money(m[1])
		if !ok {
			return RentQuote{}, false
		}
		return RentQuote{Amount: &amt, Frequency: RentUnknown}, true
	}

	return RentQuote{}, false
}

// MonthlyTotal converts the quote to a monthly dollar amount. Per-SF quotes
// require a floor area; the divisor follows the quoted frequency (12 annual,
// 4 quarterly, 1 monthly). Flat annual quotes divide by 12.
// Unknown-frequency amounts are taken as monthly.
func (q RentQuote) MonthlyTotal(area float64) (float64, bool) {
	if q.AmountPerSF != nil {
		if area <= 0 {
			return 0, false
		}
		total := *q.AmountPerSF * area
		switch q.Frequency {
		case RentMonthly:
			return total, true
		case RentQuarterly:
			return total / 4, true
		default:
			return total / 12, true
		}
	}
	if q.Amount != nil {
		if q.Frequency == RentAnnual {
			return *q.Amount / 12, true
		}
		return *q.Amount, true
	}
	return 0, false
}

// Package normalize converts raw extracted text into canonical typed values.
// Unparseable input never raises; callers get a nil/false result and keep the
// raw text.
package normalize

import (
	"strings"
	"time"
)

// ISODate is the canonical output layout for normalized dates.
const ISODate = "2006-01-02"

// dateLayouts are tried in order. M/D/Y variants come before textual forms.
var dateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"1-2-2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"2006/01/02",
}

// Date parses a textual date into a calendar date. Returns false for anything
// that does not resolve to a valid date. Already-ISO input round-trips
// unchanged (idempotence).
func Date(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	// Collapse ordinal suffixes: "June 1st, 2024" -> "June 1, 2024".
	s = stripOrdinals(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// DateString normalizes a textual date to ISO YYYY-MM-DD form.
func DateString(s string) (string, bool) {
	t, ok := Date(s)
	if !ok {
		return "", false
	}
	return t.Format(ISODate), true
}

func stripOrdinals(s string) string {
	for _, suffix := range []string{"st,", "nd,", "rd,", "th,", "st ", "nd ", "rd ", "th "} {
		for {
			idx := indexAfterDigit(s, suffix)
			if idx < 0 {
				break
			}
			s = s[:idx] + s[idx+2:]
		}
	}
	return s
}

// indexAfterDigit finds suffix occurrences immediately following a digit.
func indexAfterDigit(s, suffix string) int {
	from := 0
	for {
		i := strings.Index(s[from:], suffix)
		if i < 0 {
			return -1
		}
		i += from
		if i > 0 && s[i-1] >= '0' && s[i-1] <= '9' {
			return i
		}
		from = i + 1
	}
}

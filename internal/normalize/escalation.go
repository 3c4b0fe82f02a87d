package normalize

import (
	"regexp"
	"strings"

	"github.com/sells-group/lease-cli/internal/model"
)

var (
	pctEscRe = regexp.MustCompile(`(?i)([\d.]+)\s*(?:%|percent)\s*(?:\((?:[\d.]+%?)\)\s*)?(?:increase|escalation|adjustment|per\s+annum|annual(?:ly)?|each\s+year|per\s+year)?`)
	wordPctRe = regexp.MustCompile(`(?i)\b(one|two|three|four|five|six|seven|eight|nine|ten)\s+percent\b`)
	fixedEscRe = regexp.MustCompile(`(?i)\$\s*([\d,]+(?:\.\d+)?)\s*(?:per|/)\s*(?:square\s+foot|sq\.?\s*ft\.?|sf|psf)\s*(?:per|/|each)\s*(?:year|annum)`)
	fixedAmtRe = regexp.MustCompile(`(?i)\$\s*([\d,]+(?:\.\d+)?)\s*(?:increase|escalation|per\s+(?:year|annum))`)
	cpiRe      = regexp.MustCompile(`(?i)\b(?:cpi|consumer\s+price\s+index|cost\s+of\s+living|inflation\s+index)\b`)
	capRe      = regexp.MustCompile(`(?i)(?:cap(?:ped)?\s*(?:at|of)?|not\s+to\s+exceed|maximum\s+of)\s*([\d.]+)\s*%`)
	floorRe    = regexp.MustCompile(`(?i)(?:floor\s*(?:at|of)?|minimum\s+of|not\s+less\s+than|at\s+least)\s*([\d.]+)\s*%`)
	monthlyRe  = regexp.MustCompile(`(?i)\b(?:per\s+month|monthly|each\s+month)\b`)
	oneTimeRe  = regexp.MustCompile(`(?i)\b(?:one[- ]time|single)\b`)
)

var numberWords = map[string]float64{
	"one": 1, "two": 2, "three": 3, "four": 4, "five": 5,
	"six": 6, "seven": 7, "eight": 8, "nine": 9, "ten": 10,
}

// Escalation parses escalation clause text into a typed EscalationClause.
// Recognized forms: percentage with frequency, fixed dollars per square foot
// per year, and CPI/index references with optional cap and floor. Anything
// else comes back as type none with ok=false.
func Escalation(s string) (model.EscalationClause, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return model.EscalationClause{Type: model.EscalationNone}, false
	}

	freq := model.FrequencyAnnual
	if monthlyRe.MatchString(s) {
		freq = model.FrequencyMonthly
	} else if oneTimeRe.MatchString(s) {
		freq = model.FrequencyOneTime
	}

	// CPI takes precedence: CPI clauses often also carry a cap percentage
	// that would otherwise parse as a plain percentage escalation.
	if cpiRe.MatchString(s) {
		clause := model.EscalationClause{Type: model.EscalationCPI, Frequency: freq}
		if m := capRe.FindStringSubmatch(s); m != nil {
			if v, ok := Percent(m[1]); ok {
				clause.Cap = &v
			}
		}
		if m := floorRe.FindStringSubmatch(s); m != nil {
			if v, ok := Percent(m[1]); ok {
				clause.Floor = &v
			}
		}
		return clause, true
	}

	if m := fixedEscRe.FindStringSubmatch(s); m != nil {
		if v, ok := Money(m[1]); ok {
			return model.EscalationClause{
				Type:      model.EscalationFixedDollar,
				Rate:      &v,
				Frequency: freq,
			}, true
		}
	}

	if m := pctEscRe.FindStringSubmatch(s); m != nil {
		if v, ok := Percent(m[1]); ok {
			return model.EscalationClause{
				Type:      model.EscalationPercentage,
				Rate:      &v,
				Frequency: freq,
			}, true
		}
	}

	if m := wordPctRe.FindStringSubmatch(s); m != nil {
		v := numberWords[strings.ToLower(m[1])]
		return model.EscalationClause{
			Type:      model.EscalationPercentage,
			Rate:      &v,
			Frequency: freq,
		}, true
	}

	if m := fixedAmtRe.FindStringSubmatch(s); m != nil {
		if v, ok := Money(m[1]); ok {
			return model.EscalationClause{
				Type:      model.EscalationFixedDollar,
				Rate:      &v,
				Frequency: freq,
			}, true
		}
	}

	return model.EscalationClause{Type: model.EscalationNone}, false
}

package rentroll

import (
	"regexp"
	"strconv"
	"strings"
)

// Step schedules in lease text usually read like
// "Months 1-12: $2,500.00" or "Year 2: $2,575.00 per month".
var (
	monthRangeRe = regexp.MustCompile(`(?i)months?\s+(\d{1,3})\s*(?:-|to|through)\s*(\d{1,3})\s*:?\s*\$\s*([\d,]+(?:\.\d{1,2})?)`)
	yearStepRe   = regexp.MustCompile(`(?i)year\s+(\d{1,2})\s*:?\s*\$\s*([\d,]+(?:\.\d{1,2})?)`)
)

// ParseSteps pulls a step-rent table out of free text. It returns nil when
// the text contains no recognizable steps.
func ParseSteps(text string) []StepRent {
	var steps []StepRent
	for _, m := range monthRangeRe.FindAllStringSubmatch(text, -1) {
		from, err1 := strconv.Atoi(m[1])
		to, err2 := strconv.Atoi(m[2])
		rent, err3 := parseAmount(m[3])
		if err1 != nil || err2 != nil || err3 != nil || from < 1 || to < from {
			continue
		}
		steps = append(steps, StepRent{FromMonth: from, ToMonth: to, MonthlyRent: rent})
	}
	if len(steps) > 0 {
		return steps
	}
	for _, m := range yearStepRe.FindAllStringSubmatch(text, -1) {
		year, err1 := strconv.Atoi(m[1])
		rent, err2 := parseAmount(m[2])
		if err1 != nil || err2 != nil || year < 1 {
			continue
		}
		steps = append(steps, StepRent{
			FromMonth:   (year-1)*12 + 1,
			ToMonth:     year * 12,
			MonthlyRent: rent,
		})
	}
	return steps
}

func parseAmount(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
}

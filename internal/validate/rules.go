// Package validate applies deterministic per-field rules and assigns each
// lease field a review state.
package validate

import (
	"fmt"
	"math"
	"time"

	"github.com/sells-group/lease-cli/internal/model"
)

// Rule thresholds.
const (
	minYear            = 1900
	maxYearAhead       = 50
	maxMoney           = 100_000_000
	maxEscalationRate  = 10.0
	scheduleTolerance  = 0.01 // 1% agreement between schedule and base rent
	confidenceFail     = 70.0
	confidenceAutoPass = 85.0
)

// Outcome is the result of one rule applied to one field.
type Outcome struct {
	Rule     string
	Severity model.Severity
	Passed   bool
	Note     string
	Expected string
	Actual   string
}

func pass(rule string) Outcome {
	return Outcome{Rule: rule, Passed: true}
}

func fail(rule string, sev model.Severity, note string) Outcome {
	return Outcome{Rule: rule, Severity: sev, Note: note}
}

// Context carries cross-entity inputs some rules need.
type Context struct {
	// AnnualScheduleTotal is the annualized total of the first schedule year,
	// when a rent schedule is available. Enables the rent-reconciliation rule
	// on base_rent.
	AnnualScheduleTotal *float64

	// Now anchors the date-range check; zero means time.Now.
	Now time.Time
}

func (c Context) now() time.Time {
	if c.Now.IsZero() {
		return time.Now()
	}
	return c.Now
}

// Field classes the rules key on. These mirror the normalizer's classes.
var (
	dateRuleFields = map[string]bool{
		model.FieldLeaseStart:       true,
		model.FieldLeaseEnd:         true,
		model.FieldRentCommencement: true,
	}
	moneyRuleFields = map[string]bool{
		model.FieldBaseRent:        true,
		model.FieldAnnualRent:      true,
		model.FieldSecurityDeposit: true,
		model.FieldCAM:             true,
		model.FieldTaxes:           true,
		model.FieldInsurance:       true,
		model.FieldLateFee:         true,
	}
)

// dateLogicRule checks date fields: present, parseable, and within a sane
// calendar range.
func dateLogicRule(f model.LeaseField, ctx Context) Outcome {
	const rule = "date_logic"
	if f.ValueText == "" {
		return fail(rule, model.SeverityHigh, "date value is missing")
	}
	if f.Normalized == nil || f.Normalized.Date == nil {
		return fail(rule, model.SeverityHigh, fmt.Sprintf("unparseable date %q", f.ValueText))
	}
	year := f.Normalized.Date.Year()
	if year < minYear || year > ctx.now().Year()+maxYearAhead {
		return fail(rule, model.SeverityMedium, fmt.Sprintf("year %d outside plausible range", year))
	}
	return pass(rule)
}

// numericFormatRule checks money fields: parseable, non-negative, and below
// the absurdity ceiling.
func numericFormatRule(f model.LeaseField, _ Context) Outcome {
	const rule = "numeric_format"
	if f.Normalized == nil || f.Normalized.Numeric == nil {
		return fail(rule, model.SeverityHigh, fmt.Sprintf("unparseable amount %q", f.ValueText))
	}
	v := *f.Normalized.Numeric
	if v < 0 {
		return fail(rule, model.SeverityHigh, fmt.Sprintf("negative amount %.2f", v))
	}
	if v > maxMoney {
		return fail(rule, model.SeverityMedium, fmt.Sprintf("amount %.2f exceeds plausible maximum", v))
	}
	return pass(rule)
}

// rentReconciliationRule compares the annualized schedule total against
// base_rent x 12; they must agree within 1%.
func rentReconciliationRule(f model.LeaseField, ctx Context) Outcome {
	const rule = "rent_reconciliation"
	if f.FieldName != model.FieldBaseRent || ctx.AnnualScheduleTotal == nil {
		return pass(rule)
	}
	if f.Normalized == nil || f.Normalized.Numeric == nil {
		return pass(rule) // numeric_format already covers unparseable rent
	}
	expected := *f.Normalized.Numeric * 12
	actual := *ctx.AnnualScheduleTotal
	if expected == 0 {
		if actual == 0 {
			return pass(rule)
		}
		return Outcome{
			Rule:     rule,
			Severity: model.SeverityHigh,
			Note:     "schedule has rent but base rent is zero",
			Expected: fmt.Sprintf("%.2f", expected),
			Actual:   fmt.Sprintf("%.2f", actual),
		}
	}
	if math.Abs(actual-expected)/expected > scheduleTolerance {
		return Outcome{
			Rule:     rule,
			Severity: model.SeverityHigh,
			Note:     "annualized schedule disagrees with base rent",
			Expected: fmt.Sprintf("%.2f", expected),
			Actual:   fmt.Sprintf("%.2f", actual),
		}
	}
	return pass(rule)
}

// escalationSanityRule bounds a numeric escalation rate to [0, 10] percent.
func escalationSanityRule(f model.LeaseField, _ Context) Outcome {
	const rule = "escalation_sanity"
	if f.FieldName != model.FieldEscalation || f.Normalized == nil || f.Normalized.Numeric == nil {
		return pass(rule)
	}
	rate := *f.Normalized.Numeric
	if rate < 0 || rate > maxEscalationRate {
		return fail(rule, model.SeverityMedium, fmt.Sprintf("escalation rate %.2f%% outside [0, %.0f]", rate, maxEscalationRate))
	}
	return pass(rule)
}

// confidenceRule gates on extraction confidence: below 70 fails high, the
// 70-85 band fails low (flag for review), 85 and above passes.
func confidenceRule(f model.LeaseField, _ Context) Outcome {
	const rule = "confidence"
	switch {
	case f.Confidence < confidenceFail:
		return fail(rule, model.SeverityHigh, fmt.Sprintf("confidence %.0f below %.0f", f.Confidence, confidenceFail))
	case f.Confidence < confidenceAutoPass:
		return fail(rule, model.SeverityLow, fmt.Sprintf("confidence %.0f below auto-pass threshold", f.Confidence))
	}
	return pass(rule)
}

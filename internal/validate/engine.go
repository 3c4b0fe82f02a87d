package validate

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/lease-cli/internal/model"
)

type ruleFunc func(model.LeaseField, Context) Outcome

// rulesFor selects the rule chain for a field. Every field gets the
// confidence gate; the rest depend on the field class.
func rulesFor(name string) []ruleFunc {
	rules := []ruleFunc{confidenceRule}
	switch {
	case dateRuleFields[name]:
		rules = append(rules, dateLogicRule)
	case moneyRuleFields[name]:
		rules = append(rules, numericFormatRule)
	}
	if name == model.FieldBaseRent {
		rules = append(rules, rentReconciliationRule)
	}
	if name == model.FieldEscalation {
		rules = append(rules, escalationSanityRule)
	}
	return rules
}

// Result pairs the resolved state with the outcomes that produced it.
type Result struct {
	State    model.ValidationState
	Outcomes []Outcome
}

// Notes renders failed outcomes as human-readable validation notes.
func (r Result) Notes() []string {
	var notes []string
	for _, o := range r.Outcomes {
		if o.Passed {
			continue
		}
		n := fmt.Sprintf("%s: %s", o.Rule, o.Note)
		if o.Expected != "" {
			n = fmt.Sprintf("%s (expected %s, got %s)", n, o.Expected, o.Actual)
		}
		notes = append(notes, n)
	}
	return notes
}

// Evaluate runs every applicable rule against the field and resolves the
// worst outcome: any high-severity failure forces rule_fail, any other
// failure forces flagged, and a clean run auto-passes.
func Evaluate(f model.LeaseField, ctx Context) Result {
	var (
		outcomes []Outcome
		anyFail  bool
		anyHigh  bool
	)
	for _, rule := range rulesFor(f.FieldName) {
		o := rule(f, ctx)
		outcomes = append(outcomes, o)
		if !o.Passed {
			anyFail = true
			if o.Severity == model.SeverityHigh || o.Severity == model.SeverityCritical {
				anyHigh = true
			}
		}
	}

	state := model.StateAutoPass
	switch {
	case anyHigh:
		state = model.StateRuleFail
	case anyFail:
		state = model.StateFlagged
	}
	if state != model.StateAutoPass {
		zap.L().Debug("validate: field did not auto-pass",
			zap.String("field", f.FieldName),
			zap.String("state", string(state)))
	}
	return Result{State: state, Outcomes: outcomes}
}

// EvaluateAll validates each field in place, setting ValidationState and
// ValidationNotes, and reports how many need human review.
func EvaluateAll(fields []model.LeaseField, ctx Context) (review int) {
	for i := range fields {
		r := Evaluate(fields[i], ctx)
		fields[i].ValidationState = r.State
		fields[i].ValidationNotes = strings.Join(r.Notes(), "; ")
		if r.State.RequiresReview() {
			review++
		}
	}
	return review
}

// CrossFieldCheck applies checks that span fields. Today that is the term
// ordering check: lease_start must precede lease_end.
func CrossFieldCheck(fields model.FieldSet) []model.Discrepancy {
	start, okStart := fields.Date(model.FieldLeaseStart)
	end, okEnd := fields.Date(model.FieldLeaseEnd)
	if !okStart || !okEnd {
		return nil
	}
	if start.Before(end) {
		return nil
	}
	return []model.Discrepancy{{
		ID:             uuid.NewString(),
		FieldName:      model.FieldLeaseStart,
		Severity:       model.SeverityCritical,
		Type:           model.DiscrepancyLogicError,
		Description:    "lease start date is not before lease end date",
		Expected:       fmt.Sprintf("start before %s", end.Format("2006-01-02")),
		Actual:         start.Format("2006-01-02"),
		Recommendation: "verify the lease term dates against the source document",
	}}
}

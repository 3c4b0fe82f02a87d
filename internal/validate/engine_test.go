package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lease-cli/internal/model"
)

func floatPtr(v float64) *float64 { return &v }

func datePtr(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func dateField(name, value string, parsed *time.Time, confidence float64) model.LeaseField {
	f := model.LeaseField{
		ExtractedField: model.ExtractedField{
			FieldName:  name,
			ValueText:  value,
			Confidence: confidence,
		},
	}
	if parsed != nil {
		f.Normalized = &model.NormalizedValue{Date: parsed}
	}
	return f
}

func moneyField(name string, amount *float64, confidence float64) model.LeaseField {
	f := model.LeaseField{
		ExtractedField: model.ExtractedField{
			FieldName:  name,
			ValueText:  "$",
			Confidence: confidence,
		},
	}
	if amount != nil {
		f.Normalized = &model.NormalizedValue{Numeric: amount}
	}
	return f
}

var testCtx = Context{Now: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)}

func TestEvaluate_AutoPass(t *testing.T) {
	f := dateField(model.FieldLeaseStart, "2024-06-01", datePtr("2024-06-01"), 95)
	r := Evaluate(f, testCtx)
	assert.Equal(t, model.StateAutoPass, r.State)
	assert.Empty(t, r.Notes())
}

func TestEvaluate_ConfidenceBands(t *testing.T) {
	tests := []struct {
		name       string
		confidence float64
		want       model.ValidationState
	}{
		{"below seventy fails hard", 65, model.StateRuleFail},
		{"seventy flags", 70, model.StateFlagged},
		{"mid band flags", 80, model.StateFlagged},
		{"eighty five passes", 85, model.StateAutoPass},
		{"high passes", 99, model.StateAutoPass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := model.LeaseField{ExtractedField: model.ExtractedField{
				FieldName:  model.FieldTenantName,
				ValueText:  "Acme Widgets Inc.",
				Confidence: tt.confidence,
			}}
			r := Evaluate(f, testCtx)
			assert.Equal(t, tt.want, r.State)
		})
	}
}

func TestEvaluate_DateRules(t *testing.T) {
	tests := []struct {
		name  string
		field model.LeaseField
		want  model.ValidationState
	}{
		{"missing date fails hard", dateField(model.FieldLeaseEnd, "", nil, 95), model.StateRuleFail},
		{"unparseable date fails hard", dateField(model.FieldLeaseEnd, "the first of never", nil, 95), model.StateRuleFail},
		{"ancient year flags", dateField(model.FieldLeaseStart, "1850-01-01", datePtr("1850-01-01"), 95), model.StateFlagged},
		{"far future year flags", dateField(model.FieldLeaseStart, "2099-01-01", datePtr("2099-01-01"), 95), model.StateFlagged},
		{"boundary future year passes", dateField(model.FieldLeaseStart, "2076-01-01", datePtr("2076-01-01"), 95), model.StateAutoPass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Evaluate(tt.field, testCtx)
			assert.Equal(t, tt.want, r.State)
		})
	}
}

func TestEvaluate_MoneyRules(t *testing.T) {
	tests := []struct {
		name  string
		field model.LeaseField
		want  model.ValidationState
	}{
		{"unparseable amount fails hard", moneyField(model.FieldBaseRent, nil, 95), model.StateRuleFail},
		{"negative amount fails hard", moneyField(model.FieldBaseRent, floatPtr(-100), 95), model.StateRuleFail},
		{"implausibly large flags", moneyField(model.FieldAnnualRent, floatPtr(2e8), 95), model.StateFlagged},
		{"ordinary amount passes", moneyField(model.FieldBaseRent, floatPtr(2500), 95), model.StateAutoPass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Evaluate(tt.field, testCtx)
			assert.Equal(t, tt.want, r.State)
		})
	}
}

func TestEvaluate_RentReconciliation(t *testing.T) {
	rent := moneyField(model.FieldBaseRent, floatPtr(2500), 95)

	t.Run("within one percent passes", func(t *testing.T) {
		ctx := testCtx
		ctx.AnnualScheduleTotal = floatPtr(30200) // 0.67% off 30000
		r := Evaluate(rent, ctx)
		assert.Equal(t, model.StateAutoPass, r.State)
	})

	t.Run("outside one percent fails hard with amounts", func(t *testing.T) {
		ctx := testCtx
		ctx.AnnualScheduleTotal = floatPtr(33000)
		r := Evaluate(rent, ctx)
		assert.Equal(t, model.StateRuleFail, r.State)
		notes := r.Notes()
		require.Len(t, notes, 1)
		assert.Contains(t, notes[0], "expected 30000.00")
		assert.Contains(t, notes[0], "got 33000.00")
	})

	t.Run("no schedule context skips the rule", func(t *testing.T) {
		r := Evaluate(rent, testCtx)
		assert.Equal(t, model.StateAutoPass, r.State)
	})
}

func TestEvaluate_EscalationSanity(t *testing.T) {
	esc := func(rate float64) model.LeaseField {
		return model.LeaseField{ExtractedField: model.ExtractedField{
			FieldName:  model.FieldEscalation,
			ValueText:  "3% annual increase",
			Normalized: &model.NormalizedValue{Numeric: floatPtr(rate)},
			Confidence: 95,
		}}
	}
	assert.Equal(t, model.StateAutoPass, Evaluate(esc(3), testCtx).State)
	assert.Equal(t, model.StateAutoPass, Evaluate(esc(10), testCtx).State)
	assert.Equal(t, model.StateFlagged, Evaluate(esc(25), testCtx).State)
	assert.Equal(t, model.StateFlagged, Evaluate(esc(-1), testCtx).State)
}

func TestEvaluate_WorstOutcomeWins(t *testing.T) {
	// Low-confidence band (low severity) plus an unparseable date (high
	// severity) must resolve to rule_fail, not flagged.
	f := dateField(model.FieldLeaseStart, "garbled", nil, 75)
	r := Evaluate(f, testCtx)
	assert.Equal(t, model.StateRuleFail, r.State)
	assert.Len(t, r.Notes(), 2)
}

func TestEvaluateAll_CountsReview(t *testing.T) {
	fields := []model.LeaseField{
		dateField(model.FieldLeaseStart, "2024-06-01", datePtr("2024-06-01"), 95),
		moneyField(model.FieldBaseRent, floatPtr(-5), 95),
		dateField(model.FieldLeaseEnd, "2029-05-31", datePtr("2029-05-31"), 72),
	}
	review := EvaluateAll(fields, testCtx)
	assert.Equal(t, 2, review)
	assert.Equal(t, model.StateAutoPass, fields[0].ValidationState)
	assert.Equal(t, model.StateRuleFail, fields[1].ValidationState)
	assert.Equal(t, model.StateFlagged, fields[2].ValidationState)
	assert.NotEmpty(t, fields[1].ValidationNotes)
}

func TestCrossFieldCheck(t *testing.T) {
	mk := func(start, end string) model.FieldSet {
		return model.NewFieldSet([]model.LeaseField{
			dateField(model.FieldLeaseStart, start, datePtr(start), 95),
			dateField(model.FieldLeaseEnd, end, datePtr(end), 95),
		})
	}

	t.Run("ordered term is clean", func(t *testing.T) {
		assert.Empty(t, CrossFieldCheck(mk("2024-06-01", "2029-05-31")))
	})

	t.Run("inverted term is critical", func(t *testing.T) {
		ds := CrossFieldCheck(mk("2029-05-31", "2024-06-01"))
		require.Len(t, ds, 1)
		assert.Equal(t, model.SeverityCritical, ds[0].Severity)
		assert.Equal(t, model.DiscrepancyLogicError, ds[0].Type)
		assert.NotEmpty(t, ds[0].ID)
	})

	t.Run("equal dates are critical", func(t *testing.T) {
		ds := CrossFieldCheck(mk("2024-06-01", "2024-06-01"))
		require.Len(t, ds, 1)
	})

	t.Run("missing date skips the check", func(t *testing.T) {
		fs := model.NewFieldSet([]model.LeaseField{
			dateField(model.FieldLeaseStart, "2024-06-01", datePtr("2024-06-01"), 95),
		})
		assert.Empty(t, CrossFieldCheck(fs))
	})
}

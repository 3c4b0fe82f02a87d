package rentroll

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lease-cli/internal/model"
)

func leaseFieldSet(t *testing.T) model.FieldSet {
	t.Helper()
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2029, 5, 31, 0, 0, 0, 0, time.UTC)
	rent := 2000.0
	return model.NewFieldSet([]model.LeaseField{
		{ExtractedField: model.ExtractedField{FieldName: model.FieldLeaseStart, Normalized: &model.NormalizedValue{Date: &start}}},
		{ExtractedField: model.ExtractedField{FieldName: model.FieldLeaseEnd, Normalized: &model.NormalizedValue{Date: &end}}},
		{ExtractedField: model.ExtractedField{FieldName: model.FieldBaseRent, Normalized: &model.NormalizedValue{Numeric: &rent}}},
		{ExtractedField: model.ExtractedField{FieldName: model.FieldEscalation, ValueText: "3% annual increase"}},
	})
}

func TestFromFields(t *testing.T) {
	in, clause, err := FromFields(leaseFieldSet(t), 3.0)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), in.StartDate)
	assert.InDelta(t, 2000, in.BaseRent, 0.001)
	assert.Equal(t, model.EscalationPercentage, clause.Type)
	require.NotNil(t, clause.Rate)
	assert.InDelta(t, 3.0, *clause.Rate, 0.001)
	assert.InDelta(t, 3.0, in.CPIRate, 0.001)
}

func TestFromFields_StepSchedule(t *testing.T) {
	fields := leaseFieldSet(t)
	sched := fields[model.FieldBaseRentSchedule]
	sched.FieldName = model.FieldBaseRentSchedule
	sched.ValueText = "Year 1: $2,000\nYear 2: $2,100"
	fields[model.FieldBaseRentSchedule] = sched

	in, _, err := FromFields(fields, 3.0)
	require.NoError(t, err)
	require.Len(t, in.StepRents, 2)
	assert.InDelta(t, 2100, in.StepRents[1].MonthlyRent, 0.001)
}

func TestFromFields_MissingInputs(t *testing.T) {
	fields := leaseFieldSet(t)
	delete(fields, model.FieldBaseRent)

	_, _, err := FromFields(fields, 3.0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no base rent")
}

package reconcile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lease-cli/internal/model"
)

func field(name, text string, numeric *float64, date *time.Time) model.LeaseField {
	f := model.LeaseField{ExtractedField: model.ExtractedField{
		FieldName:  name,
		ValueText:  text,
		Confidence: 90,
	}}
	if numeric != nil || date != nil {
		f.Normalized = &model.NormalizedValue{Numeric: numeric, Date: date}
	}
	return f
}

func fptr(v float64) *float64 { return &v }

func dptr(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

// completeFields builds a field set that passes every check.
func completeFields() model.FieldSet {
	return model.NewFieldSet([]model.LeaseField{
		field(model.FieldTenantName, "Acme Widgets Inc.", nil, nil),
		field(model.FieldPropertyAddress, "450 Industrial Parkway", nil, nil),
		field(model.FieldLeaseStart, "2024-06-01", nil, dptr("2024-06-01")),
		field(model.FieldLeaseEnd, "2029-05-31", nil, dptr("2029-05-31")),
		field(model.FieldBaseRent, "$2,500.00", fptr(2500), nil),
		field(model.FieldSecurityDeposit, "$5,000.00", fptr(5000), nil),
		field(model.FieldLateFee, "$125.00", fptr(125), nil),
		field(model.FieldPaymentDueDay, "1", fptr(1), nil),
	})
}

func monthlySchedule(start time.Time, months int, rent float64) []model.RentRollEntry {
	entries := make([]model.RentRollEntry, 0, months)
	cumulative := 0.0
	for i := 0; i < months; i++ {
		ps := start.AddDate(0, i, 0)
		cumulative += rent
		entries = append(entries, model.RentRollEntry{
			PeriodStart:    ps,
			PeriodEnd:      ps.AddDate(0, 1, -1),
			MonthNumber:    i + 1,
			BaseRent:       rent,
			TotalRent:      rent,
			CumulativeRent: cumulative,
		})
	}
	return entries
}

func TestRun_CleanDocumentPasses(t *testing.T) {
	e := New()
	report := e.Run("doc-1", Inputs{Fields: completeFields()})
	assert.Equal(t, model.ReportPass, report.OverallStatus)
	assert.Empty(t, report.Discrepancies)
	assert.Equal(t, "doc-1", report.DocumentID)
}

func TestRun_MissingCriticalFields(t *testing.T) {
	fields := model.NewFieldSet([]model.LeaseField{
		field(model.FieldTenantName, "Acme Widgets Inc.", nil, nil),
	})
	report := New().Run("doc-1", Inputs{Fields: fields})
	assert.Equal(t, model.ReportFail, report.OverallStatus)

	var missing []string
	for _, d := range report.Discrepancies {
		if d.Type == model.DiscrepancyMissingData {
			assert.Equal(t, model.SeverityCritical, d.Severity)
			missing = append(missing, d.FieldName)
		}
	}
	assert.ElementsMatch(t, []string{
		model.FieldPropertyAddress,
		model.FieldLeaseStart,
		model.FieldLeaseEnd,
		model.FieldBaseRent,
	}, missing)
}

func TestCheckBaseRentRange(t *testing.T) {
	tests := []struct {
		name    string
		rent    float64
		wantSev model.Severity
		wantAny bool
	}{
		{"zero rent is critical", 0, model.SeverityCritical, true},
		{"negative rent is critical", -50, model.SeverityCritical, true},
		{"suspiciously low is medium", 45, model.SeverityMedium, true},
		{"suspiciously high is medium", 1_500_000, model.SeverityMedium, true},
		{"ordinary rent is clean", 2500, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := Inputs{Fields: model.NewFieldSet([]model.LeaseField{
				field(model.FieldBaseRent, "x", fptr(tt.rent), nil),
			})}
			ds := checkBaseRentRange(in)
			if !tt.wantAny {
				assert.Empty(t, ds)
				return
			}
			require.Len(t, ds, 1)
			assert.Equal(t, tt.wantSev, ds[0].Severity)
		})
	}
}

func TestCheckTermDates(t *testing.T) {
	mk := func(start, end string) Inputs {
		return Inputs{Fields: model.NewFieldSet([]model.LeaseField{
			field(model.FieldLeaseStart, start, nil, dptr(start)),
			field(model.FieldLeaseEnd, end, nil, dptr(end)),
		})}
	}

	t.Run("inverted dates are critical", func(t *testing.T) {
		ds := checkTermDates(mk("2024-06-01", "2023-01-01"))
		require.Len(t, ds, 1)
		assert.Equal(t, model.SeverityCritical, ds[0].Severity)
		assert.Contains(t, ds[0].Actual, "2024-06-01")
	})

	t.Run("sub-month term is medium", func(t *testing.T) {
		ds := checkTermDates(mk("2024-06-01", "2024-06-15"))
		require.Len(t, ds, 1)
		assert.Equal(t, model.SeverityMedium, ds[0].Severity)
	})

	t.Run("over fifty year term is medium", func(t *testing.T) {
		ds := checkTermDates(mk("2024-06-01", "2080-06-01"))
		require.Len(t, ds, 1)
		assert.Equal(t, model.SeverityMedium, ds[0].Severity)
	})

	t.Run("five year term is clean", func(t *testing.T) {
		assert.Empty(t, checkTermDates(mk("2024-06-01", "2029-05-31")))
	})
}

func TestCheckRentCommencement(t *testing.T) {
	in := Inputs{Fields: model.NewFieldSet([]model.LeaseField{
		field(model.FieldLeaseStart, "2024-06-01", nil, dptr("2024-06-01")),
		field(model.FieldRentCommencement, "2024-05-01", nil, dptr("2024-05-01")),
	})}
	ds := checkRentCommencement(in)
	require.Len(t, ds, 1)
	assert.Equal(t, model.SeverityHigh, ds[0].Severity)

	in.Fields = model.NewFieldSet([]model.LeaseField{
		field(model.FieldLeaseStart, "2024-06-01", nil, dptr("2024-06-01")),
		field(model.FieldRentCommencement, "2024-07-01", nil, dptr("2024-07-01")),
	})
	assert.Empty(t, checkRentCommencement(in))
}

func TestCheckScheduleGaps(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	sched := monthlySchedule(start, 6, 2500)

	t.Run("contiguous schedule is clean", func(t *testing.T) {
		assert.Empty(t, checkScheduleGaps(Inputs{Schedule: sched}))
	})

	t.Run("ten day gap yields one medium referencing the schedule", func(t *testing.T) {
		gapped := monthlySchedule(start, 6, 2500)
		for i := 3; i < len(gapped); i++ {
			gapped[i].PeriodStart = gapped[i].PeriodStart.AddDate(0, 0, 10)
			gapped[i].PeriodEnd = gapped[i].PeriodEnd.AddDate(0, 0, 10)
		}
		ds := checkScheduleGaps(Inputs{Schedule: gapped})
		require.Len(t, ds, 1)
		assert.Equal(t, model.SeverityMedium, ds[0].Severity)
		assert.Equal(t, model.FieldBaseRentSchedule, ds[0].FieldName)
	})
}

func TestCheckNegativeRent(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	sched := monthlySchedule(start, 3, 2500)
	sched[1].TotalRent = -10
	ds := checkNegativeRent(Inputs{Schedule: sched})
	require.Len(t, ds, 1)
	assert.Equal(t, model.SeverityCritical, ds[0].Severity)
	assert.Equal(t, model.DiscrepancyCalculationError, ds[0].Type)
}

func TestCheckEscalationApplied(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	flat := monthlySchedule(start, 24, 2500)
	fields := model.NewFieldSet([]model.LeaseField{
		field(model.FieldEscalation, "3% annual increase", fptr(3), nil),
	})

	t.Run("clause with no applied escalation is high", func(t *testing.T) {
		ds := checkEscalationApplied(Inputs{Fields: fields, Schedule: flat})
		require.Len(t, ds, 1)
		assert.Equal(t, model.SeverityHigh, ds[0].Severity)
	})

	t.Run("applied escalation is clean", func(t *testing.T) {
		escalated := monthlySchedule(start, 24, 2500)
		escalated[12].EscalationAmount = 75
		assert.Empty(t, checkEscalationApplied(Inputs{Fields: fields, Schedule: escalated}))
	})

	t.Run("clause parsed as none is skipped", func(t *testing.T) {
		none := &model.EscalationClause{Type: model.EscalationNone}
		assert.Empty(t, checkEscalationApplied(Inputs{Fields: fields, Schedule: flat, Escalation: none}))
	})
}

func TestCheckDepositRatio(t *testing.T) {
	mk := func(deposit, rent float64) Inputs {
		return Inputs{Fields: model.NewFieldSet([]model.LeaseField{
			field(model.FieldSecurityDeposit, "x", fptr(deposit), nil),
			field(model.FieldBaseRent, "x", fptr(rent), nil),
		})}
	}

	ds := checkDepositRatio(mk(500, 2500)) // 0.2x
	require.Len(t, ds, 1)
	assert.Equal(t, model.SeverityLow, ds[0].Severity)

	ds = checkDepositRatio(mk(20000, 2500)) // 8x
	require.Len(t, ds, 1)
	assert.Equal(t, model.SeverityMedium, ds[0].Severity)

	assert.Empty(t, checkDepositRatio(mk(5000, 2500))) // 2x
}

func TestCheckLateFee(t *testing.T) {
	mk := func(fee float64) Inputs {
		return Inputs{Fields: model.NewFieldSet([]model.LeaseField{
			field(model.FieldLateFee, "x", fptr(fee), nil),
			field(model.FieldBaseRent, "x", fptr(2500), nil),
		})}
	}
	assert.Empty(t, checkLateFee(mk(125)))
	ds := checkLateFee(mk(500)) // 20%
	require.Len(t, ds, 1)
	assert.Equal(t, model.SeverityMedium, ds[0].Severity)
}

func TestCheckDueDay(t *testing.T) {
	mk := func(day float64) Inputs {
		return Inputs{Fields: model.NewFieldSet([]model.LeaseField{
			field(model.FieldPaymentDueDay, "x", fptr(day), nil),
		})}
	}
	assert.Empty(t, checkDueDay(mk(1)))
	assert.Empty(t, checkDueDay(mk(31)))
	assert.Len(t, checkDueDay(mk(45)), 1)
	assert.Len(t, checkDueDay(mk(0)), 1)
}

func TestRun_OrdersBySeverity(t *testing.T) {
	fields := model.NewFieldSet([]model.LeaseField{
		field(model.FieldTenantName, "Acme Widgets Inc.", nil, nil),
		field(model.FieldPropertyAddress, "450 Industrial Parkway", nil, nil),
		field(model.FieldLeaseStart, "2024-06-01", nil, dptr("2024-06-01")),
		field(model.FieldLeaseEnd, "2023-01-01", nil, dptr("2023-01-01")), // inverted: critical
		field(model.FieldBaseRent, "$45.00", fptr(45), nil),              // low rent: medium
		field(model.FieldSecurityDeposit, "$5.00", fptr(5), nil),         // tiny deposit: low
	})
	report := New().Run("doc-1", Inputs{Fields: fields})
	assert.Equal(t, model.ReportFail, report.OverallStatus)
	require.GreaterOrEqual(t, len(report.Discrepancies), 3)
	for i := 1; i < len(report.Discrepancies); i++ {
		assert.LessOrEqual(t,
			report.Discrepancies[i-1].Severity.Rank(),
			report.Discrepancies[i].Severity.Rank())
	}
	assert.Equal(t, model.SeverityCritical, report.Discrepancies[0].Severity)
}

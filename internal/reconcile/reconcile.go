// Package reconcile cross-checks a document's extracted fields and its
// generated rent schedule for financial and logical consistency. It runs
// once per document, after per-field validation, and produces a report
// rather than errors: discrepancies never block the pipeline.
package reconcile

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/lease-cli/internal/model"
)

const (
	minPlausibleRent  = 100.0
	maxPlausibleRent  = 1_000_000.0
	minTermMonths     = 1
	maxTermMonths     = 600
	maxScheduleGap    = 2 // days between consecutive periods
	minDepositRatio   = 0.5
	maxDepositRatio   = 6.0
	maxLateFeePercent = 0.15
)

// Inputs is everything the engine looks at. Schedule and Escalation are
// optional; checks that need them are skipped when absent.
type Inputs struct {
	Fields     model.FieldSet
	Schedule   []model.RentRollEntry
	Escalation *model.EscalationClause
}

// Engine runs the whole-document consistency checks.
type Engine struct{}

func New() *Engine { return &Engine{} }

type checkFunc func(Inputs) []model.Discrepancy

// Run executes every check and assembles the document report. Discrepancies
// are ordered by severity, then field name, so reports are stable.
func (e *Engine) Run(documentID string, in Inputs) model.ValidationReport {
	checks := []checkFunc{
		checkCriticalFields,
		checkBaseRentRange,
		checkTermDates,
		checkRentCommencement,
		checkScheduleGaps,
		checkNegativeRent,
		checkEscalationApplied,
		checkDepositRatio,
		checkLateFee,
		checkDueDay,
	}

	var all []model.Discrepancy
	for _, check := range checks {
		all = append(all, check(in)...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Severity != all[j].Severity {
			return all[i].Severity.Rank() < all[j].Severity.Rank()
		}
		return all[i].FieldName < all[j].FieldName
	})

	report := model.ValidationReport{
		DocumentID:    documentID,
		OverallStatus: model.ComputeStatus(all),
		Discrepancies: all,
	}
	zap.L().Info("reconcile: document checked",
		zap.String("document_id", documentID),
		zap.Int("discrepancies", len(all)),
		zap.String("status", string(report.OverallStatus)))
	return report
}

func disc(field string, sev model.Severity, typ model.DiscrepancyType, desc, rec string) model.Discrepancy {
	return model.Discrepancy{
		ID:             uuid.NewString(),
		FieldName:      field,
		Severity:       sev,
		Type:           typ,
		Description:    desc,
		Recommendation: rec,
	}
}

// criticalFields are the fields a lease record is unusable without.
var criticalFields = []string{
	model.FieldTenantName,
	model.FieldPropertyAddress,
	model.FieldLeaseStart,
	model.FieldLeaseEnd,
	model.FieldBaseRent,
}

func checkCriticalFields(in Inputs) []model.Discrepancy {
	var out []model.Discrepancy
	for _, name := range criticalFields {
		if v, ok := in.Fields.Text(name); ok && v != "" {
			continue
		}
		out = append(out, disc(name, model.SeverityCritical, model.DiscrepancyMissingData,
			fmt.Sprintf("critical field %s was not extracted", name),
			"locate the value in the source document and add it manually"))
	}
	return out
}

func checkBaseRentRange(in Inputs) []model.Discrepancy {
	rent, ok := in.Fields.Numeric(model.FieldBaseRent)
	if !ok {
		return nil
	}
	switch {
	case rent <= 0:
		return []model.Discrepancy{disc(model.FieldBaseRent, model.SeverityCritical, model.DiscrepancyLogicError,
			fmt.Sprintf("base rent %.2f is not positive", rent),
			"a lease with non-positive rent is almost certainly a misread")}
	case rent < minPlausibleRent:
		return []model.Discrepancy{disc(model.FieldBaseRent, model.SeverityMedium, model.DiscrepancyValueMismatch,
			fmt.Sprintf("base rent %.2f is below the plausible monthly minimum of %.0f", rent, minPlausibleRent),
			"check whether a per-square-foot rate was extracted as the monthly amount")}
	case rent > maxPlausibleRent:
		return []model.Discrepancy{disc(model.FieldBaseRent, model.SeverityMedium, model.DiscrepancyValueMismatch,
			fmt.Sprintf("base rent %.2f exceeds the plausible monthly maximum of %.0f", rent, maxPlausibleRent),
			"check whether an annual or total amount was extracted as the monthly rent")}
	}
	return nil
}

func monthsBetween(start, end time.Time) int {
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	return months
}

func checkTermDates(in Inputs) []model.Discrepancy {
	start, okStart := in.Fields.Date(model.FieldLeaseStart)
	end, okEnd := in.Fields.Date(model.FieldLeaseEnd)
	if !okStart || !okEnd {
		return nil
	}
	if !start.Before(end) {
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
	term := monthsBetween(start, end)
	if term < minTermMonths || term > maxTermMonths {
		return []model.Discrepancy{disc(model.FieldLeaseTermMonths, model.SeverityMedium, model.DiscrepancyLogicError,
			fmt.Sprintf("lease term of %d months is outside the expected %d-%d month range", term, minTermMonths, maxTermMonths),
			"confirm the stated term against the start and end dates")}
	}
	return nil
}

func checkRentCommencement(in Inputs) []model.Discrepancy {
	commence, okC := in.Fields.Date(model.FieldRentCommencement)
	start, okS := in.Fields.Date(model.FieldLeaseStart)
	if !okC || !okS || !commence.Before(start) {
		return nil
	}
	return []model.Discrepancy{{
		ID:             uuid.NewString(),
		FieldName:      model.FieldRentCommencement,
		Severity:       model.SeverityHigh,
		Type:           model.DiscrepancyLogicError,
		Description:    "rent commencement precedes the lease start date",
		Expected:       fmt.Sprintf("on or after %s", start.Format("2006-01-02")),
		Actual:         commence.Format("2006-01-02"),
		Recommendation: "rent normally starts on or after occupancy; verify both dates",
	}}
}

func checkScheduleGaps(in Inputs) []model.Discrepancy {
	var out []model.Discrepancy
	for i := 1; i < len(in.Schedule); i++ {
		prev := in.Schedule[i-1]
		cur := in.Schedule[i]
		gap := cur.PeriodStart.Sub(prev.PeriodEnd).Hours() / 24
		if gap <= maxScheduleGap {
			continue
		}
		out = append(out, model.Discrepancy{
			ID:          uuid.NewString(),
			FieldName:   model.FieldBaseRentSchedule,
			Severity:    model.SeverityMedium,
			Type:        model.DiscrepancyLogicError,
			Description: fmt.Sprintf("%.0f-day gap between schedule months %d and %d", gap, prev.MonthNumber, cur.MonthNumber),
			Expected:    fmt.Sprintf("period starting near %s", prev.PeriodEnd.Format("2006-01-02")),
			Actual:      cur.PeriodStart.Format("2006-01-02"),
		})
	}
	return out
}

func checkNegativeRent(in Inputs) []model.Discrepancy {
	for _, entry := range in.Schedule {
		if entry.TotalRent < 0 {
			return []model.Discrepancy{disc(model.FieldBaseRentSchedule, model.SeverityCritical, model.DiscrepancyCalculationError,
				fmt.Sprintf("schedule month %d has negative total rent %.2f", entry.MonthNumber, entry.TotalRent),
				"abatements should floor at zero; inspect the schedule inputs")}
		}
	}
	return nil
}

func checkEscalationApplied(in Inputs) []model.Discrepancy {
	text, ok := in.Fields.Text(model.FieldEscalation)
	if !ok || text == "" || len(in.Schedule) == 0 {
		return nil
	}
	if in.Escalation != nil && in.Escalation.IsNone() {
		return nil
	}
	for _, entry := range in.Schedule {
		if entry.EscalationAmount != 0 {
			return nil
		}
	}
	return []model.Discrepancy{disc(model.FieldEscalation, model.SeverityHigh, model.DiscrepancyCalculationError,
		"an escalation clause was extracted but no escalation was applied in the schedule",
		"the clause text may not have parsed; review the escalation terms")}
}

func checkDepositRatio(in Inputs) []model.Discrepancy {
	deposit, okD := in.Fields.Numeric(model.FieldSecurityDeposit)
	rent, okR := in.Fields.Numeric(model.FieldBaseRent)
	if !okD || !okR || rent <= 0 {
		return nil
	}
	ratio := deposit / rent
	switch {
	case ratio < minDepositRatio:
		return []model.Discrepancy{disc(model.FieldSecurityDeposit, model.SeverityLow, model.DiscrepancyValueMismatch,
			fmt.Sprintf("security deposit is %.1fx monthly rent, below the customary %.1fx", ratio, minDepositRatio),
			"unusually small deposits are sometimes partial extractions")}
	case ratio > maxDepositRatio:
		return []model.Discrepancy{disc(model.FieldSecurityDeposit, model.SeverityMedium, model.DiscrepancyValueMismatch,
			fmt.Sprintf("security deposit is %.1fx monthly rent, above the customary %.1fx", ratio, maxDepositRatio),
			"check whether a total-term amount was extracted as the deposit")}
	}
	return nil
}

func checkLateFee(in Inputs) []model.Discrepancy {
	fee, okF := in.Fields.Numeric(model.FieldLateFee)
	rent, okR := in.Fields.Numeric(model.FieldBaseRent)
	if !okF || !okR || rent <= 0 {
		return nil
	}
	if fee <= rent*maxLateFeePercent {
		return nil
	}
	return []model.Discrepancy{disc(model.FieldLateFee, model.SeverityMedium, model.DiscrepancyValueMismatch,
		fmt.Sprintf("late fee %.2f exceeds %.0f%% of monthly rent", fee, maxLateFeePercent*100),
		"late fees above this share of rent are rare; verify the amount")}
}

func checkDueDay(in Inputs) []model.Discrepancy {
	day, ok := in.Fields.Numeric(model.FieldPaymentDueDay)
	if !ok || (day >= 1 && day <= 31) {
		return nil
	}
	return []model.Discrepancy{disc(model.FieldPaymentDueDay, model.SeverityMedium, model.DiscrepancyFormatError,
		fmt.Sprintf("payment due day %.0f is not a calendar day", day),
		"due day must fall between 1 and 31")}
}

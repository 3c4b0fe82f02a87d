// Package rentroll generates the month-by-month rent schedule for a lease
// term, applying step rents, escalations, free-rent months and abatements.
package rentroll

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lease-cli/internal/model"
)

// DefaultCPIRate is the assumed annual index rate when a CPI clause carries
// no supplied adjustment. It is an estimate and schedules built on it say so
// in their escalation notes.
const DefaultCPIRate = 3.0

// StepRent overrides the base rent for a span of lease months. ToMonth zero
// means the step runs to the end of the term.
type StepRent struct {
	FromMonth   int     `json:"from_month"`
	ToMonth     int     `json:"to_month"`
	MonthlyRent float64 `json:"monthly_rent"`
}

// Abatement reduces rent for a span of lease months. Rent never goes below
// zero.
type Abatement struct {
	FromMonth int     `json:"from_month"`
	ToMonth   int     `json:"to_month"`
	Amount    float64 `json:"amount"`
}

// Inputs describes one lease term to schedule.
type Inputs struct {
	StartDate      time.Time
	EndDate        time.Time
	BaseRent       float64
	StepRents      []StepRent
	Escalation     model.EscalationClause
	FreeRentMonths []int
	Abatements     []Abatement

	// CPIRate overrides DefaultCPIRate for clauses with no supplied
	// adjustment. Zero means use the default.
	CPIRate float64
}

func (in Inputs) cpiRate() (rate float64, estimated bool) {
	if in.Escalation.CPIAdjustment != nil {
		return *in.Escalation.CPIAdjustment, false
	}
	if in.CPIRate > 0 {
		return in.CPIRate, true
	}
	return DefaultCPIRate, true
}

// Generate produces one entry per calendar month from StartDate through
// EndDate inclusive. Percentage and CPI escalations compound onto the
// running base at each 12-month boundary; fixed-dollar escalations are
// additive and do not compound.
func Generate(in Inputs) ([]model.RentRollEntry, error) {
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, eris.New("rentroll: start and end dates are required")
	}
	if !in.StartDate.Before(in.EndDate) {
		return nil, eris.Errorf("rentroll: start %s is not before end %s",
			in.StartDate.Format("2006-01-02"), in.EndDate.Format("2006-01-02"))
	}
	if in.BaseRent < 0 {
		return nil, eris.Errorf("rentroll: negative base rent %.2f", in.BaseRent)
	}

	free := make(map[int]bool, len(in.FreeRentMonths))
	for _, m := range in.FreeRentMonths {
		free[m] = true
	}

	base := in.BaseRent
	cumulative := 0.0
	var entries []model.RentRollEntry

	for month := 1; ; month++ {
		periodStart := in.StartDate.AddDate(0, month-1, 0)
		if periodStart.After(in.EndDate) {
			break
		}
		periodEnd := periodStart.AddDate(0, 1, -1)
		if periodEnd.After(in.EndDate) {
			periodEnd = in.EndDate
		}

		if step, ok := stepFor(in.StepRents, month); ok {
			base = step
		}

		escalation, note := applyEscalation(in, &base, month)

		note2 := note
		total := base
		if free[month] {
			total = 0
			note2 = appendNote(note2, "free rent")
		}
		if abated, amt := abatementFor(in.Abatements, month); abated {
			total -= amt
			if total < 0 {
				total = 0
			}
			note2 = appendNote(note2, fmt.Sprintf("abatement of %.2f applied", amt))
		}

		cumulative += total
		entries = append(entries, model.RentRollEntry{
			PeriodStart:      periodStart,
			PeriodEnd:        periodEnd,
			MonthNumber:      month,
			BaseRent:         base,
			EscalationAmount: escalation,
			TotalRent:        total,
			CumulativeRent:   cumulative,
			EscalationNote:   note2,
		})
	}

	zap.L().Debug("rentroll: schedule generated",
		zap.Int("months", len(entries)),
		zap.String("escalation", string(in.Escalation.Type)))
	return entries, nil
}

// escalates reports whether an escalation event lands on this lease month.
// Annual clauses fire at every 12-month boundary, monthly clauses every
// month after the first, one-time clauses at their single effective
// boundary.
func escalates(clause model.EscalationClause, month int) bool {
	if clause.IsNone() || month == 1 {
		return false
	}
	switch clause.Frequency {
	case model.FrequencyMonthly:
		return true
	case model.FrequencyOneTime:
		year := 1
		if clause.EffectiveYear != nil {
			year = *clause.EffectiveYear
		}
		return month == year*12+1
	default: // annual
		if (month-1)%12 != 0 {
			return false
		}
		if clause.EffectiveYear != nil && month <= *clause.EffectiveYear*12 {
			return false
		}
		return true
	}
}

func applyEscalation(in Inputs, base *float64, month int) (amount float64, note string) {
	clause := in.Escalation
	if !escalates(clause, month) {
		return 0, ""
	}

	switch clause.Type {
	case model.EscalationPercentage:
		rate := 0.0
		if clause.Rate != nil {
			rate = *clause.Rate
		}
		amount = *base * rate / 100
		*base += amount
		note = fmt.Sprintf("%.2f%% escalation applied", rate)

	case model.EscalationFixedDollar:
		if clause.Rate != nil {
			amount = *clause.Rate
		}
		*base += amount
		note = fmt.Sprintf("fixed escalation of %.2f applied", amount)

	case model.EscalationCPI:
		rate, estimated := in.cpiRate()
		if clause.Floor != nil && rate < *clause.Floor {
			rate = *clause.Floor
		}
		if clause.Cap != nil && rate > *clause.Cap {
			rate = *clause.Cap
		}
		amount = *base * rate / 100
		*base += amount
		if estimated {
			note = fmt.Sprintf("estimated CPI escalation at %.2f%% applied", rate)
		} else {
			note = fmt.Sprintf("CPI escalation at %.2f%% applied", rate)
		}
	}
	return amount, note
}

func stepFor(steps []StepRent, month int) (float64, bool) {
	for _, s := range steps {
		if month < s.FromMonth {
			continue
		}
		if s.ToMonth != 0 && month > s.ToMonth {
			continue
		}
		if month == s.FromMonth {
			return s.MonthlyRent, true
		}
	}
	return 0, false
}

func abatementFor(abatements []Abatement, month int) (bool, float64) {
	total := 0.0
	found := false
	for _, a := range abatements {
		if month < a.FromMonth {
			continue
		}
		if a.ToMonth != 0 && month > a.ToMonth {
			continue
		}
		total += a.Amount
		found = true
	}
	return found, total
}

func appendNote(existing, add string) string {
	if existing == "" {
		return add
	}
	return existing + "; " + add
}

// FirstYearTotal sums the first twelve months of a schedule, annualizing
// shorter schedules pro rata. It feeds the rent-reconciliation rule.
func FirstYearTotal(entries []model.RentRollEntry) (float64, bool) {
	if len(entries) == 0 {
		return 0, false
	}
	total := 0.0
	months := 0
	for _, e := range entries {
		if months == 12 {
			break
		}
		total += e.TotalRent
		months++
	}
	if months < 12 {
		total = total / float64(months) * 12
	}
	return total, true
}

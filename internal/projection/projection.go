// Package projection forecasts annual rent under an escalation clause and
// compares competing clauses over a common horizon.
package projection

import (
	"math"
	"sort"

	"github.com/rotisserie/eris"

	"github.com/sells-group/lease-cli/internal/model"
	"github.com/sells-group/lease-cli/internal/rentroll"
)

const (
	// DefaultYears is the projection horizon when the caller does not pick one.
	DefaultYears = 5
	// DefaultDiscountRate is the NPV discount rate when none is supplied.
	DefaultDiscountRate = 0.05
)

// YearProjection is one projected lease year.
type YearProjection struct {
	Year        int     `json:"year"`
	MonthlyRent float64 `json:"monthly_rent"`
	AnnualRent  float64 `json:"annual_rent"`
	Cumulative  float64 `json:"cumulative"`
}

// Projection is the full forecast for one clause.
type Projection struct {
	Years           []YearProjection `json:"years"`
	CumulativeTotal float64          `json:"cumulative_total"`
	EffectiveRate   float64          `json:"effective_rate"`
}

// Project forecasts years of annual rent starting from the current monthly
// rent. Percentage and CPI clauses compound once per year; fixed-dollar
// clauses add their amount each year without compounding. A clause of type
// none projects a constant currentRent x 12 every year. years <= 0 uses
// DefaultYears.
func Project(currentRent float64, clause model.EscalationClause, years int) (Projection, error) {
	if currentRent < 0 {
		return Projection{}, eris.Errorf("projection: negative current rent %.2f", currentRent)
	}
	if years <= 0 {
		years = DefaultYears
	}

	monthly := currentRent
	cumulative := 0.0
	out := Projection{Years: make([]YearProjection, 0, years)}
	for year := 1; year <= years; year++ {
		if year > 1 {
			monthly = escalate(monthly, clause)
		}
		annual := monthly * 12
		cumulative += annual
		out.Years = append(out.Years, YearProjection{
			Year:        year,
			MonthlyRent: monthly,
			AnnualRent:  annual,
			Cumulative:  cumulative,
		})
	}
	out.CumulativeTotal = cumulative
	out.EffectiveRate = EffectiveRate(out.Years[0].AnnualRent, out.Years[years-1].AnnualRent, years-1)
	return out, nil
}

func escalate(monthly float64, clause model.EscalationClause) float64 {
	switch clause.Type {
	case model.EscalationPercentage:
		if clause.Rate != nil {
			return monthly * (1 + *clause.Rate/100)
		}
	case model.EscalationFixedDollar:
		if clause.Rate != nil {
			return monthly + *clause.Rate
		}
	case model.EscalationCPI:
		rate := rentroll.DefaultCPIRate
		if clause.CPIAdjustment != nil {
			rate = *clause.CPIAdjustment
		}
		if clause.Floor != nil && rate < *clause.Floor {
			rate = *clause.Floor
		}
		if clause.Cap != nil && rate > *clause.Cap {
			rate = *clause.Cap
		}
		return monthly * (1 + rate/100)
	}
	return monthly
}

// Scenario names one clause for comparison.
type Scenario struct {
	Name   string
	Clause model.EscalationClause
}

// ScenarioResult is one ranked comparison row.
type ScenarioResult struct {
	Name       string  `json:"name"`
	Cumulative float64 `json:"cumulative"`
}

// Comparison ranks scenarios by cumulative cost over the horizon, cheapest
// first.
type Comparison struct {
	Results []ScenarioResult `json:"results"`
	Best    ScenarioResult   `json:"best"`
	Worst   ScenarioResult   `json:"worst"`
	Spread  float64          `json:"spread"`
}

// Compare projects every scenario over the same horizon and ranks them by
// cumulative total. Best is the cheapest for the tenant.
func Compare(currentRent float64, scenarios []Scenario, years int) (Comparison, error) {
	if len(scenarios) == 0 {
		return Comparison{}, eris.New("projection: no scenarios to compare")
	}
	results := make([]ScenarioResult, 0, len(scenarios))
	for _, s := range scenarios {
		p, err := Project(currentRent, s.Clause, years)
		if err != nil {
			return Comparison{}, eris.Wrapf(err, "projection: scenario %s", s.Name)
		}
		results = append(results, ScenarioResult{Name: s.Name, Cumulative: p.CumulativeTotal})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Cumulative < results[j].Cumulative
	})
	best := results[0]
	worst := results[len(results)-1]
	return Comparison{
		Results: results,
		Best:    best,
		Worst:   worst,
		Spread:  worst.Cumulative - best.Cumulative,
	}, nil
}

// NPV discounts annual cashflows at the given rate. Cashflows are treated
// as end-of-year; rate <= 0 uses DefaultDiscountRate.
func NPV(cashflows []float64, rate float64) float64 {
	if rate <= 0 {
		rate = DefaultDiscountRate
	}
	npv := 0.0
	for i, cf := range cashflows {
		npv += cf / math.Pow(1+rate, float64(i+1))
	}
	return npv
}

// EffectiveRate is the compound annual growth rate implied by an initial
// and final value over a number of years.
func EffectiveRate(initial, final float64, years int) float64 {
	if initial <= 0 || final <= 0 || years <= 0 {
		return 0
	}
	return math.Pow(final/initial, 1/float64(years)) - 1
}

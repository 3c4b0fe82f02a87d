package model

// EscalationType identifies the rent escalation model a clause follows.
type EscalationType string

const (
	EscalationNone        EscalationType = "none"
	EscalationFixedDollar EscalationType = "fixed_dollar"
	EscalationPercentage  EscalationType = "percentage"
	EscalationCPI         EscalationType = "cpi"
)

// Frequency is how often an escalation applies.
type Frequency string

const (
	FrequencyAnnual  Frequency = "annual"
	FrequencyMonthly Frequency = "monthly"
	FrequencyOneTime Frequency = "one_time"
)

// EscalationClause describes how rent increases over the lease term.
// When Type is EscalationNone all numeric fields are ignored.
type EscalationClause struct {
	Type          EscalationType `json:"type"`
	Rate          *float64       `json:"rate,omitempty"`           // percent for percentage/cpi, dollars for fixed_dollar
	CPIAdjustment *float64       `json:"cpi_adjustment,omitempty"` // supplied index rate, percent
	Cap           *float64       `json:"cap,omitempty"`            // percent ceiling for cpi
	Floor         *float64       `json:"floor,omitempty"`          // percent floor for cpi
	Frequency     Frequency      `json:"frequency"`
	EffectiveYear *int           `json:"effective_year,omitempty"`
}

// IsNone reports whether the clause escalates at all.
func (c EscalationClause) IsNone() bool {
	return c.Type == EscalationNone || c.Type == ""
}

package model

import "time"

// RentRollEntry is one month of the generated rent schedule. Entries are
// emitted in strict monthly sequence; CumulativeRent is the exact running sum
// of TotalRent.
type RentRollEntry struct {
	PeriodStart      time.Time `json:"period_start" csv:"period_start"`
	PeriodEnd        time.Time `json:"period_end" csv:"period_end"`
	MonthNumber      int       `json:"month_number" csv:"month_number"`
	BaseRent         float64   `json:"base_rent" csv:"base_rent"`
	EscalationAmount float64   `json:"escalation_amount" csv:"escalation_amount"`
	TotalRent        float64   `json:"total_rent" csv:"total_rent"`
	CumulativeRent   float64   `json:"cumulative_rent" csv:"cumulative_rent"`
	EscalationNote   string    `json:"escalation_note,omitempty" csv:"escalation_note,omitempty"`
}

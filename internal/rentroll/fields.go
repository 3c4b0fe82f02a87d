package rentroll

import (
	"github.com/rotisserie/eris"

	"github.com/sells-group/lease-cli/internal/model"
	"github.com/sells-group/lease-cli/internal/normalize"
)

// FromFields derives schedule inputs from extracted lease fields. The
// escalation clause is returned separately so callers can reuse it even when
// the schedule itself cannot be built.
func FromFields(fields model.FieldSet, defaultCPI float64) (Inputs, model.EscalationClause, error) {
	var clause model.EscalationClause
	if text, ok := fields.Text(model.FieldEscalation); ok {
		clause, _ = normalize.Escalation(text)
	}

	start, ok := fields.Date(model.FieldLeaseStart)
	if !ok {
		return Inputs{}, clause, eris.New("rentroll: no lease start date")
	}
	end, ok := fields.Date(model.FieldLeaseEnd)
	if !ok {
		return Inputs{}, clause, eris.New("rentroll: no lease end date")
	}
	baseRent, ok := fields.Numeric(model.FieldBaseRent)
	if !ok {
		return Inputs{}, clause, eris.New("rentroll: no base rent")
	}

	in := Inputs{
		StartDate:  start,
		EndDate:    end,
		BaseRent:   baseRent,
		Escalation: clause,
		CPIRate:    defaultCPI,
	}
	if text, ok := fields.Text(model.FieldBaseRentSchedule); ok {
		in.StepRents = ParseSteps(text)
	}
	return in, clause, nil
}

package pipeline

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lease-cli/internal/model"
	"github.com/sells-group/lease-cli/internal/projection"
	"github.com/sells-group/lease-cli/internal/rentroll"
)

// buildSchedule derives the monthly rent roll and multi-year projection from
// extracted fields. Missing term dates or base rent make the schedule
// unavailable, not the run failed. A failed projection is returned as
// projErr alongside the schedule, which still stands on its own.
func (p *Pipeline) buildSchedule(fields model.FieldSet) (schedule []model.RentRollEntry, proj *projection.Projection, clause model.EscalationClause, projErr, err error) {
	in, clause, err := rentroll.FromFields(fields, p.cfg.RentRoll.DefaultCPIRate)
	if err != nil {
		return nil, nil, clause, nil, err
	}

	schedule, err = rentroll.Generate(in)
	if err != nil {
		return nil, nil, clause, nil, eris.Wrap(err, "pipeline: generate rent roll")
	}

	currentRent := in.BaseRent
	if len(schedule) > 0 {
		currentRent = schedule[len(schedule)-1].BaseRent
	}
	projected, err := projection.Project(currentRent, clause, p.cfg.Projection.Years)
	if err != nil {
		zap.L().Warn("rent projection unavailable",
			zap.String("escalation_type", string(clause.Type)),
			zap.Error(err),
		)
		return schedule, nil, clause, eris.Wrap(err, "pipeline: project rent"), nil
	}
	return schedule, &projected, clause, nil, nil
}

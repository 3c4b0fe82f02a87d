// Package pipeline orchestrates document processing end to end: segmentation,
// parallel extraction, normalization, validation, persistence, reconciliation,
// and schedule generation.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/lease-cli/internal/config"
	"github.com/sells-group/lease-cli/internal/extract"
	"github.com/sells-group/lease-cli/internal/merge"
	"github.com/sells-group/lease-cli/internal/model"
	"github.com/sells-group/lease-cli/internal/normalize"
	"github.com/sells-group/lease-cli/internal/pattern"
	"github.com/sells-group/lease-cli/internal/projection"
	"github.com/sells-group/lease-cli/internal/reconcile"
	"github.com/sells-group/lease-cli/internal/rentroll"
	"github.com/sells-group/lease-cli/internal/segment"
	"github.com/sells-group/lease-cli/internal/store"
	"github.com/sells-group/lease-cli/internal/validate"
)

// Pipeline runs the full lease processing sequence over one document.
type Pipeline struct {
	cfg        *config.Config
	store      store.Store
	segmenter  *segment.Segmenter
	pattern    *pattern.Extractor
	extractor  *extract.Extractor
	reconciler *reconcile.Engine
}

// New creates a Pipeline with all dependencies.
func New(
	cfg *config.Config,
	st store.Store,
	segmenter *segment.Segmenter,
	patternExtractor *pattern.Extractor,
	domainExtractor *extract.Extractor,
	reconciler *reconcile.Engine,
) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		store:      st,
		segmenter:  segmenter,
		pattern:    patternExtractor,
		extractor:  domainExtractor,
		reconciler: reconciler,
	}
}

// Result is the in-memory outcome of one pipeline run.
type Result struct {
	RunID       string
	DocumentID  string
	Fields      []model.LeaseField
	ReviewCount int
	Report      model.ValidationReport
	Schedule    []model.RentRollEntry
	Projection  *projection.Projection
	Phases      []model.PhaseResult
	Summary     string
}

// Process executes the pipeline for a single document. Extraction and
// validation degrade gracefully; persistence failures abort the run.
func (p *Pipeline) Process(ctx context.Context, doc model.Document) (*Result, error) {
	log := zap.L().With(zap.String("document_id", doc.ID))
	log.Info("pipeline: starting document processing")

	result := &Result{DocumentID: doc.ID}

	run, err := p.store.CreateRun(ctx, doc.ID)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: create run")
	}
	result.RunID = run.ID

	setStatus := func(status model.RunStatus) {
		if statusErr := p.store.UpdateRunStatus(ctx, run.ID, status); statusErr != nil {
			log.Warn("pipeline: failed to update status", zap.Error(statusErr))
		}
	}

	var phasesMu sync.Mutex
	trackPhase := func(name string, fn func() (*model.PhaseResult, error)) *model.PhaseResult {
		phase, phaseErr := p.store.CreatePhase(ctx, run.ID, name)
		if phaseErr != nil {
			log.Warn("pipeline: failed to create phase", zap.String("phase", name), zap.Error(phaseErr))
		}

		start := time.Now()
		phaseResult, fnErr := fn()
		duration := time.Since(start).Milliseconds()

		if phaseResult == nil {
			phaseResult = &model.PhaseResult{}
		}
		phaseResult.Name = name
		phaseResult.Duration = duration

		switch {
		case fnErr != nil:
			phaseResult.Status = model.PhaseStatusFailed
			phaseResult.Error = fnErr.Error()
			log.Error("pipeline: phase failed",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
				zap.Error(fnErr),
			)
		case phaseResult.Status == "":
			phaseResult.Status = model.PhaseStatusComplete
			log.Info("pipeline: phase complete",
				zap.String("phase", name),
				zap.Int64("duration_ms", duration),
			)
		default:
			log.Info("pipeline: phase finished",
				zap.String("phase", name),
				zap.String("status", string(phaseResult.Status)),
				zap.Int64("duration_ms", duration),
			)
		}

		if phase != nil {
			_ = p.store.CompletePhase(ctx, phase.ID, phaseResult)
		}
		phasesMu.Lock()
		result.Phases = append(result.Phases, *phaseResult)
		phasesMu.Unlock()
		return phaseResult
	}

	// ===== Phase 1: Segmentation =====
	setStatus(model.RunStatusSegmenting)

	var segments []model.ClauseSegment
	trackPhase("1_segment", func() (*model.PhaseResult, error) {
		segs, headings := p.segmenter.Segment(doc)
		segments = segs
		return &model.PhaseResult{
			Metadata: map[string]any{
				"segments": len(segs),
				"headings": len(headings),
			},
		}, nil
	})

	// ===== Phase 2: Extraction (pattern + domain in parallel) =====
	setStatus(model.RunStatusExtracting)

	var patternFields, domainFields []model.ExtractedField

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		trackPhase("2a_pattern", func() (*model.PhaseResult, error) {
			patternFields = p.pattern.Extract(doc, segments)
			return &model.PhaseResult{
				Metadata: map[string]any{"fields": len(patternFields)},
			}, nil
		})
		return nil
	})
	g.Go(func() error {
		trackPhase("2b_domain", func() (*model.PhaseResult, error) {
			if !p.extractor.Enabled() {
				return &model.PhaseResult{
					Status:   model.PhaseStatusSkipped,
					Metadata: map[string]any{"reason": "no strategy configured"},
				}, nil
			}
			fields, extractErr := p.extractor.Extract(gCtx, doc, segments)
			domainFields = fields
			if extractErr != nil {
				// pattern extraction still carries the run
				return &model.PhaseResult{
					Status:   model.PhaseStatusDegraded,
					Metadata: map[string]any{"error": extractErr.Error()},
				}, nil
			}
			return &model.PhaseResult{
				Metadata: map[string]any{"fields": len(fields)},
			}, nil
		})
		return nil
	})
	_ = g.Wait()

	// ===== Phase 3: Merge + normalize =====
	var leaseFields []model.LeaseField
	trackPhase("3_merge", func() (*model.PhaseResult, error) {
		merged := normalize.Fields(merge.Merge(patternFields, domainFields))
		leaseFields = make([]model.LeaseField, 0, len(merged))
		for _, f := range merged {
			leaseFields = append(leaseFields, model.LeaseField{
				ExtractedField:  f,
				DocumentID:      doc.ID,
				ValidationState: model.StateCandidate,
			})
		}
		return &model.PhaseResult{
			Metadata: map[string]any{
				"pattern_fields": len(patternFields),
				"domain_fields":  len(domainFields),
				"merged_fields":  len(leaseFields),
			},
		}, nil
	})

	if len(leaseFields) == 0 {
		setStatus(model.RunStatusFailed)
		return result, eris.New("pipeline: no fields extracted")
	}

	fieldSet := model.NewFieldSet(leaseFields)

	// ===== Phase 4: Rent roll + projection =====
	var clause model.EscalationClause
	trackPhase("4_rentroll", func() (*model.PhaseResult, error) {
		schedule, proj, c, projErr, schedErr := p.buildSchedule(fieldSet)
		clause = c
		if schedErr != nil {
			return &model.PhaseResult{
				Status:   model.PhaseStatusSkipped,
				Metadata: map[string]any{"reason": schedErr.Error()},
			}, nil
		}
		result.Schedule = schedule
		result.Projection = proj
		meta := map[string]any{"months": len(schedule)}
		if projErr != nil {
			meta["projection_error"] = projErr.Error()
		}
		return &model.PhaseResult{Metadata: meta}, nil
	})

	// ===== Phase 5: Validation =====
	setStatus(model.RunStatusValidating)

	trackPhase("5_validate", func() (*model.PhaseResult, error) {
		vctx := validate.Context{Now: time.Now()}
		if total, ok := rentroll.FirstYearTotal(result.Schedule); ok {
			vctx.AnnualScheduleTotal = &total
		} else if annual, ok := fieldSet.Numeric(model.FieldAnnualRent); ok {
			vctx.AnnualScheduleTotal = &annual
		}
		result.ReviewCount = validate.EvaluateAll(leaseFields, vctx)
		return &model.PhaseResult{
			Metadata: map[string]any{
				"fields": len(leaseFields),
				"review": result.ReviewCount,
			},
		}, nil
	})

	// ===== Phase 6: Persistence =====
	persistPhase := trackPhase("6_persist", func() (*model.PhaseResult, error) {
		n, upsertErr := p.store.UpsertFields(ctx, leaseFields)
		if upsertErr != nil {
			return nil, upsertErr
		}
		return &model.PhaseResult{
			Metadata: map[string]any{"upserted": n},
		}, nil
	})
	if persistPhase.Status == model.PhaseStatusFailed {
		setStatus(model.RunStatusFailed)
		return result, eris.New("pipeline: field persistence failed: " + persistPhase.Error)
	}
	result.Fields = leaseFields

	// ===== Phase 7: Reconciliation =====
	setStatus(model.RunStatusReconciling)

	trackPhase("7_reconcile", func() (*model.PhaseResult, error) {
		report := p.reconciler.Run(doc.ID, reconcile.Inputs{
			Fields:     fieldSet,
			Schedule:   result.Schedule,
			Escalation: &clause,
		})
		report.Discrepancies = mergeDiscrepancies(report.Discrepancies, validate.CrossFieldCheck(fieldSet))
		report.OverallStatus = model.ComputeStatus(report.Discrepancies)
		result.Report = report

		if saveErr := p.store.SaveReport(ctx, report); saveErr != nil {
			return nil, saveErr
		}
		return &model.PhaseResult{
			Metadata: map[string]any{
				"status":        string(report.OverallStatus),
				"discrepancies": len(report.Discrepancies),
			},
		}, nil
	})

	// ===== Phase 8: Report =====
	trackPhase("8_report", func() (*model.PhaseResult, error) {
		result.Summary = FormatReport(doc, result)
		return &model.PhaseResult{}, nil
	})

	runResult := &model.RunResult{
		FieldsExtracted: len(leaseFields),
		FieldsReview:    result.ReviewCount,
		ReportStatus:    result.Report.OverallStatus,
		Discrepancies:   len(result.Report.Discrepancies),
		ScheduleMonths:  len(result.Schedule),
		Phases:          result.Phases,
		Report:          result.Summary,
	}
	if saveErr := p.store.UpdateRunResult(ctx, run.ID, runResult); saveErr != nil {
		log.Warn("pipeline: failed to save run result", zap.Error(saveErr))
	}

	log.Info("pipeline: document processing complete",
		zap.String("run_id", run.ID),
		zap.Int("fields", len(leaseFields)),
		zap.Int("review", result.ReviewCount),
		zap.String("report_status", string(result.Report.OverallStatus)),
	)

	return result, nil
}

// mergeDiscrepancies appends cross-field findings that reconciliation did not
// already produce for the same field and type.
func mergeDiscrepancies(base, extra []model.Discrepancy) []model.Discrepancy {
	seen := make(map[string]bool, len(base))
	for _, d := range base {
		seen[d.FieldName+"|"+string(d.Type)] = true
	}
	for _, d := range extra {
		if seen[d.FieldName+"|"+string(d.Type)] {
			continue
		}
		base = append(base, d)
	}
	return base
}

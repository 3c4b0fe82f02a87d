package extract

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/lease-cli/internal/model"
)

// Extractor runs domain-scoped extraction through a pluggable strategy.
type Extractor struct {
	strategy Strategy
	limiter  *rate.Limiter
}

// New creates an Extractor. A nil strategy is a supported configuration: the
// extractor then returns no fields and the pipeline runs pattern-only.
// requestsPerSecond staggers strategy calls when batching; <=0 disables
// limiting.
func New(strategy Strategy, requestsPerSecond float64) *Extractor {
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &Extractor{strategy: strategy, limiter: limiter}
}

// Enabled reports whether a strategy is configured.
func (e *Extractor) Enabled() bool {
	return e != nil && e.strategy != nil
}

// Extract queries the strategy once per domain that has relevant clauses.
// Strategy errors are absorbed per domain: the failing domain contributes no
// fields and extraction continues. The returned error is always nil today;
// the signature leaves room for fatal strategy misconfiguration.
func (e *Extractor) Extract(ctx context.Context, doc model.Document, segments []model.ClauseSegment) ([]model.ExtractedField, error) {
	if !e.Enabled() {
		zap.L().Debug("extract: no strategy configured, skipping domain extraction",
			zap.String("document_id", doc.ID))
		return nil, nil
	}

	log := zap.L().With(zap.String("document_id", doc.ID))
	var out []model.ExtractedField

	for _, domain := range Domains {
		instruction := BuildInstruction(domain, segments)
		if instruction == "" {
			continue
		}

		if e.limiter != nil {
			if err := e.limiter.Wait(ctx); err != nil {
				return out, nil // context canceled; keep what we have
			}
		}

		fields, err := e.strategy.Extract(ctx, domain, instruction)
		if err != nil {
			log.Warn("extract: strategy failed for domain, continuing without it",
				zap.String("domain", string(domain)),
				zap.Error(err),
			)
			continue
		}

		allowed := make(map[string]bool)
		for _, name := range domain.Fields() {
			allowed[name] = true
		}
		for _, f := range fields {
			if !allowed[f.FieldName] {
				log.Debug("extract: dropping out-of-domain field",
					zap.String("domain", string(domain)),
					zap.String("field", f.FieldName),
				)
				continue
			}
			f.Origin = model.OriginDomain
			if f.Confidence < 0 {
				f.Confidence = 0
			}
			if f.Confidence > 100 {
				f.Confidence = 100
			}
			out = append(out, f)
		}
	}

	log.Debug("extract: domain extraction complete", zap.Int("fields", len(out)))
	return out, nil
}

// Package merge combines pattern and domain extraction candidates into one
// candidate per field name.
package merge

import (
	"sort"

	"go.uber.org/zap"

	"github.com/sells-group/lease-cli/internal/model"
)

// Merge resolves pattern and domain candidates keyed by field name. When a
// field exists in both sources the strictly higher confidence wins; ties keep
// the pattern result, since it is reproducible. Singletons pass through
// unchanged. Output is sorted by field name for deterministic downstream
// processing.
func Merge(pattern, domain []model.ExtractedField) []model.ExtractedField {
	best := make(map[string]model.ExtractedField, len(pattern)+len(domain))

	for _, f := range pattern {
		if f.FieldName == "" {
			continue
		}
		f.Origin = model.OriginPattern
		best[f.FieldName] = f
	}

	for _, f := range domain {
		if f.FieldName == "" {
			continue
		}
		f.Origin = model.OriginDomain
		existing, ok := best[f.FieldName]
		if !ok {
			best[f.FieldName] = f
			continue
		}
		if f.Confidence > existing.Confidence {
			zap.L().Debug("merge: domain candidate wins",
				zap.String("field", f.FieldName),
				zap.Float64("domain_confidence", f.Confidence),
				zap.Float64("pattern_confidence", existing.Confidence),
			)
			best[f.FieldName] = f
		}
	}

	out := make([]model.ExtractedField, 0, len(best))
	for _, f := range best {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FieldName < out[j].FieldName })
	return out
}

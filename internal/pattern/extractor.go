package pattern

import (
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/lease-cli/internal/model"
)

// excerptLen bounds the provenance excerpt taken around a match.
const excerptLen = 160

// Extractor applies the pattern table to raw document text. It is stateless
// and deterministic: same input text always yields the same candidates. One
// instance is safe for concurrent use across documents.
type Extractor struct {
	table []Entry
}

// New creates an Extractor over the default table.
func New() *Extractor {
	return &Extractor{table: Table}
}

// NewWithTable creates an Extractor over a custom table, for tests.
func NewWithTable(table []Entry) *Extractor {
	return &Extractor{table: table}
}

// Extract runs every table entry against the document and returns at most one
// candidate per field. The first pattern whose capture passes the entry's
// validator wins; rejected captures fall through to the next pattern.
// Segments supply provenance: the clause whose text contains the match.
func (e *Extractor) Extract(doc model.Document, segments []model.ClauseSegment) []model.ExtractedField {
	text := doc.FullText()
	var out []model.ExtractedField

	for _, entry := range e.table {
		for _, pat := range entry.Patterns {
			m := pat.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			capture := firstCapture(m)
			if entry.Validate != nil && !entry.Validate(capture) {
				continue
			}
			out = append(out, model.ExtractedField{
				FieldName:  entry.Field,
				ValueText:  capture,
				Source:     locate(capture, segments),
				Confidence: entry.Confidence,
				Origin:     model.OriginPattern,
			})
			break
		}
	}

	zap.L().Debug("pattern: extraction complete",
		zap.String("document_id", doc.ID),
		zap.Int("fields", len(out)),
	)
	return out
}

// firstCapture returns the first non-empty capture group, trimmed.
func firstCapture(m []string) string {
	for _, g := range m[1:] {
		if g = strings.TrimSpace(g); g != "" {
			return g
		}
	}
	return ""
}

// locate finds the clause segment whose text contains the capture and builds
// a provenance location. Returns nil when no segment contains it.
func locate(capture string, segments []model.ClauseSegment) *model.ClauseLocation {
	if capture == "" {
		return nil
	}
	for _, seg := range segments {
		idx := strings.Index(seg.Text, capture)
		if idx < 0 {
			continue
		}
		return &model.ClauseLocation{
			Page:     seg.Pages.Start,
			ClauseID: seg.ID,
			Excerpt:  excerpt(seg.Text, idx, len(capture)),
		}
	}
	return nil
}

// excerpt returns a window of text around the match, trimmed to whole runs.
func excerpt(text string, idx, matchLen int) string {
	start := idx - excerptLen/2
	if start < 0 {
		start = 0
	}
	end := idx + matchLen + excerptLen/2
	if end > len(text) {
		end = len(text)
	}
	return strings.TrimSpace(text[start:end])
}

// Package segment splits raw lease text into typed clause segments.
package segment

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sells-group/lease-cli/internal/model"
)

// Config controls segmentation behavior.
type Config struct {
	// MinSegmentChars is the minimum accumulated length for a standalone
	// segment; shorter accumulations merge forward. Default 50.
	MinSegmentChars int

	// MergeAdjacent merges adjacent same-type segments that start within
	// MergePageWindow pages of each other into one logical clause.
	MergeAdjacent   bool
	MergePageWindow int
}

// DefaultConfig returns the standard segmenter configuration.
func DefaultConfig() Config {
	return Config{
		MinSegmentChars: 50,
		MergeAdjacent:   true,
		MergePageWindow: 2,
	}
}

// Segmenter splits per-page raw text into clause segments.
type Segmenter struct {
	cfg Config
}

// New creates a Segmenter. Zero config values fall back to defaults.
func New(cfg Config) *Segmenter {
	def := DefaultConfig()
	if cfg.MinSegmentChars <= 0 {
		cfg.MinSegmentChars = def.MinSegmentChars
	}
	if cfg.MergePageWindow <= 0 {
		cfg.MergePageWindow = def.MergePageWindow
	}
	return &Segmenter{cfg: cfg}
}

// Heading heuristics. A clause starts at a numbered/lettered heading, an
// explicit Section/Article/Clause reference, or an all-caps heading of at
// least 10 characters followed by a colon.
var (
	numberedHeadingRe = regexp.MustCompile(`^\s*(?:\d{1,2}(?:\.\d+)+[.)]?|\d{1,2}[.)]|\([a-zA-Z0-9]{1,3}\))\s+\S`)
	sectionHeadingRe  = regexp.MustCompile(`(?i)^\s*(?:section|article|clause)\s+[0-9IVXLC]+[A-Za-z0-9.]*\b`)
	allCapsHeadingRe  = regexp.MustCompile(`^\s*([A-Z][A-Z0-9 /&\-]{9,}):`)
)

// isClauseStart reports whether the line opens a new clause, returning the
// heading title when one can be pulled out of the line.
func isClauseStart(line string) (bool, string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return false, ""
	}
	if m := allCapsHeadingRe.FindStringSubmatch(line); m != nil {
		return true, strings.TrimSpace(m[1])
	}
	if sectionHeadingRe.MatchString(line) {
		return true, headingTitle(trimmed)
	}
	if numberedHeadingRe.MatchString(line) {
		return true, headingTitle(trimmed)
	}
	return false, ""
}

// headingTitle truncates a heading line to a short title.
func headingTitle(line string) string {
	if idx := strings.IndexAny(line, ".:"); idx > 3 && idx < 80 {
		return strings.TrimSpace(line[:idx+1])
	}
	if len(line) > 80 {
		return strings.TrimSpace(line[:80])
	}
	return line
}

// accumulation is a clause segment being built up line by line.
type accumulation struct {
	title     string
	lines     []string
	startPage int
	endPage   int
}

func (a *accumulation) text() string {
	return strings.TrimSpace(strings.Join(a.lines, "\n"))
}

// Segment scans the document's pages and returns ordered clause segments plus
// an index of detected headings. A document with no detectable boundaries
// yields a single misc segment; that is low-structure input, not an error.
func (s *Segmenter) Segment(doc model.Document) ([]model.ClauseSegment, model.HeadingIndex) {
	var segments []model.ClauseSegment
	index := make(model.HeadingIndex)

	var cur *accumulation
	var pending *accumulation // too-short accumulation awaiting forward merge

	flush := func() {
		if cur == nil {
			return
		}
		text := cur.text()
		if text == "" {
			cur = nil
			return
		}
		if pending != nil {
			// Prepend the short leftover into this segment.
			cur.lines = append(append([]string{}, pending.lines...), cur.lines...)
			if pending.startPage < cur.startPage {
				cur.startPage = pending.startPage
			}
			if cur.title == "" {
				cur.title = pending.title
			}
			pending = nil
			text = cur.text()
		}
		if len(text) < s.cfg.MinSegmentChars {
			pending = cur
			cur = nil
			return
		}
		seg := model.ClauseSegment{
			ID:    uuid.New().String(),
			Type:  classify(cur.title, text),
			Title: cur.title,
			Text:  text,
			Pages: model.PageRange{Start: cur.startPage, End: cur.endPage},
		}
		segments = append(segments, seg)
		if cur.title != "" {
			index[cur.title] = model.HeadingEntry{Page: cur.startPage, ClauseID: seg.ID}
		}
		cur = nil
	}

	for _, page := range doc.Pages {
		for _, line := range strings.Split(page.Text, "\n") {
			if start, title := isClauseStart(line); start {
				flush()
				cur = &accumulation{title: title, startPage: page.Number, endPage: page.Number}
			}
			if cur == nil {
				cur = &accumulation{startPage: page.Number, endPage: page.Number}
			}
			cur.lines = append(cur.lines, line)
			cur.endPage = page.Number
		}
	}
	flush()

	// A trailing short accumulation has nothing to merge into; emit it rather
	// than dropping text.
	if pending != nil && pending.text() != "" {
		seg := model.ClauseSegment{
			ID:    uuid.New().String(),
			Type:  classify(pending.title, pending.text()),
			Title: pending.title,
			Text:  pending.text(),
			Pages: model.PageRange{Start: pending.startPage, End: pending.endPage},
		}
		segments = append(segments, seg)
	}

	if s.cfg.MergeAdjacent {
		segments = mergeAdjacent(segments, s.cfg.MergePageWindow)
	}

	zap.L().Debug("segment: document segmented",
		zap.String("document_id", doc.ID),
		zap.Int("segments", len(segments)),
		zap.Int("headings", len(index)),
	)

	return segments, index
}

// mergeAdjacent folds consecutive same-type segments whose page spans are
// within window pages of each other into one logical clause.
func mergeAdjacent(segments []model.ClauseSegment, window int) []model.ClauseSegment {
	if len(segments) < 2 {
		return segments
	}
	out := make([]model.ClauseSegment, 0, len(segments))
	out = append(out, segments[0])
	for _, seg := range segments[1:] {
		last := &out[len(out)-1]
		if seg.Type == last.Type && seg.Type != model.ClauseMisc &&
			seg.Pages.Start-last.Pages.End <= window {
			last.Text = last.Text + "\n\n" + seg.Text
			last.Pages.End = seg.Pages.End
			continue
		}
		out = append(out, seg)
	}
	return out
}

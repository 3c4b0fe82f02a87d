package model

// ClauseType classifies a clause segment by the lease provision it covers.
type ClauseType string

const (
	ClauseTerm       ClauseType = "term"
	ClauseBaseRent   ClauseType = "base_rent"
	ClauseOptions    ClauseType = "options"
	ClauseCAM        ClauseType = "cam"
	ClauseEscalation ClauseType = "escalation"
	ClauseNotice     ClauseType = "notice"
	ClauseMisc       ClauseType = "misc"
)

// PageRange is the inclusive page span a segment covers.
type PageRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// ClauseSegment is a contiguous span of document text identified as one
// logical lease provision. Immutable once produced by the segmenter.
type ClauseSegment struct {
	ID    string     `json:"id"`
	Type  ClauseType `json:"type"`
	Title string     `json:"title,omitempty"`
	Text  string     `json:"text"`
	Pages PageRange  `json:"page_range"`
}

// HeadingEntry locates one detected heading in the document.
type HeadingEntry struct {
	Page     int    `json:"page"`
	ClauseID string `json:"clause_id"`
}

// HeadingIndex maps heading text to its location.
type HeadingIndex map[string]HeadingEntry

package model

import (
	"strings"
	"time"
)

// Page is one page of raw document text as supplied by the document source.
type Page struct {
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Document is a single lease document presented to the pipeline as ordered
// per-page raw text. The pipeline never fetches or OCRs documents itself.
type Document struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Pages     []Page    `json:"pages"`
	CreatedAt time.Time `json:"created_at"`
}

// FullText joins all pages in order, separated by a blank line.
func (d Document) FullText() string {
	parts := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n\n")
}

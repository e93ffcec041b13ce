package models

import (
	"fmt"
	"time"
)

// SourceFormat identifies the ingestion path used for a document.
type SourceFormat string

const (
	FormatPDF      SourceFormat = "pdf"
	FormatMarkdown SourceFormat = "markdown"
	FormatHTML     SourceFormat = "html"
)

// Page is one extracted page of a source document.
type Page struct {
	Number int    `json:"number"` // 1-based
	Text   string `json:"text"`
}

// Document represents one ingested source file and its extracted pages.
// Documents are not persisted; they exist only between ingestion and the
// index build derived from them.
type Document struct {
	ID         string       `json:"id"`   // doc_{uuid}
	Name       string       `json:"name"` // source filename
	Format     SourceFormat `json:"format"`
	Pages      []Page       `json:"pages"`
	IngestedAt time.Time    `json:"ingested_at"`
}

// PageCount returns the number of extracted pages.
func (d *Document) PageCount() int {
	return len(d.Pages)
}

// Text returns the concatenated text of all pages, in page order.
func (d *Document) Text() string {
	var out string
	for i, p := range d.Pages {
		if i > 0 {
			out += "\n\n"
		}
		out += p.Text
	}
	return out
}

// Chunk is a contiguous span of source text, the unit of retrieval.
// Identity is derived from (document, page, ordinal) and is stable for the
// lifetime of one index build; subjects already live in disjoint stores, so
// the subject namespace is not part of the ID.
type Chunk struct {
	DocumentID string `json:"document_id"`
	Page       int    `json:"page"`    // 1-based source page
	Ordinal    int    `json:"ordinal"` // position within the page, 0-based
	Text       string `json:"text"`
}

// ID returns the chunk's stable identity within its index generation.
func (c Chunk) ID() string {
	return fmt.Sprintf("%s:p%d:c%d", c.DocumentID, c.Page, c.Ordinal)
}

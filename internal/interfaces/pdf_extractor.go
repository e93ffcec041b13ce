// -----------------------------------------------------------------------
// PDF Extractor Interface - Extract text content from PDF documents
// -----------------------------------------------------------------------

package interfaces

import (
	"context"
)

// PDFPageContent represents extracted content from a single PDF page
type PDFPageContent struct {
	PageNumber int    `json:"page_number"`
	Text       string `json:"text"`
}

// PDFMetadata contains metadata about a PDF document
type PDFMetadata struct {
	PageCount   int   `json:"page_count"`
	FileSize    int64 `json:"file_size"`
	IsEncrypted bool  `json:"is_encrypted"`
}

// PDFExtractor defines the interface for extracting content from PDF
// documents. This abstracts the extraction backend so the ingest service
// does not depend on a specific PDF library.
type PDFExtractor interface {
	// ExtractPages extracts text content by page, 1-indexed ascending.
	// Pages with no extractable text are returned with empty text so page
	// numbers stay aligned with the source document.
	ExtractPages(ctx context.Context, data []byte) ([]PDFPageContent, error)

	// GetMetadata retrieves document properties without extracting text.
	GetMetadata(ctx context.Context, data []byte) (*PDFMetadata, error)
}

package interfaces

import (
	"context"

	"github.com/ternarybob/doceo/internal/models"
)

// IngestService turns source files into page-structured documents. PDF,
// markdown, and HTML sources are supported; which path runs is decided by
// file extension, with a content sniff as fallback.
type IngestService interface {
	// IngestFile reads and converts a document from the local filesystem
	IngestFile(ctx context.Context, path string) (*models.Document, error)

	// IngestBytes converts an in-memory document. Name is used for format
	// detection and error reporting.
	IngestBytes(ctx context.Context, name string, data []byte) (*models.Document, error)
}

package interfaces

import (
	"github.com/ternarybob/doceo/internal/models"
)

// ChunkerService splits a document into retrieval-sized chunks. Splitting
// is per page so every chunk keeps its page locator.
type ChunkerService interface {
	// Split returns the document's chunks in reading order: ascending page,
	// then ascending ordinal within the page.
	Split(doc *models.Document) ([]models.Chunk, error)
}

package interfaces

import (
	"context"

	"github.com/ternarybob/doceo/internal/models"
)

// RetrievalService answers "which chunks are relevant to this question".
// It paraphrases the question into query variants, searches the subject's
// index once per variant, and merges the results. Variant generation is
// best effort: if the model call fails or parses badly, retrieval proceeds
// with the original question alone.
type RetrievalService interface {
	// Retrieve returns deduplicated chunks ordered by the best rank each
	// chunk achieved across all query variants.
	Retrieve(ctx context.Context, subject, question string) ([]models.RetrievedChunk, error)
}

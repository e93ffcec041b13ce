package interfaces

import (
	"context"

	"github.com/ternarybob/doceo/internal/models"
)

// AnswerService composes grounded answers from retrieved chunks using the
// subject's template.
type AnswerService interface {
	// Answer fills the subject template with the chunks and question, calls
	// the generation model, and returns the answer with citations for the
	// chunks that made it into the context window.
	Answer(ctx context.Context, subject *models.Subject, question string, chunks []models.RetrievedChunk) (*models.AnswerResult, error)
}

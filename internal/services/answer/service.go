// -----------------------------------------------------------------------
// Answer Service - Grounded answer synthesis from retrieved chunks
// -----------------------------------------------------------------------

package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
)

// Service implements interfaces.AnswerService. It assembles the retrieved
// chunks into a numbered context block, fills the subject's template, and
// calls the generation model. Citations cover exactly the chunks that made
// it into the sent context.
type Service struct {
	config *common.Config
	logger arbor.ILogger
	llm    interfaces.LLMService
}

// Compile-time interface assertion
var _ interfaces.AnswerService = (*Service)(nil)

// NewService creates a new answer service
func NewService(config *common.Config, llm interfaces.LLMService, logger arbor.ILogger) *Service {
	return &Service{
		config: config,
		logger: logger,
		llm:    llm,
	}
}

// Answer generates a grounded answer for the question from the retrieved
// chunks. Provider errors pass through untouched: a *models.GenerationBlocked
// stays distinguishable from a *models.GenerationError.
func (s *Service) Answer(ctx context.Context, subject *models.Subject, question string, chunks []models.RetrievedChunk) (*models.AnswerResult, error) {
	if subject == nil {
		return nil, fmt.Errorf("subject is required")
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no retrieved chunks to answer from for subject %s", subject.Name)
	}

	start := time.Now()

	contextBlock, included := buildContext(chunks, s.maxContextChars())
	if len(included) < len(chunks) {
		s.logger.Debug().
			Str("subject", subject.Name).
			Int("retrieved", len(chunks)).
			Int("included", len(included)).
			Msg("Context budget dropped lowest-ranked chunks")
	}

	prompt := subject.FillTemplate(contextBlock, question)

	text, err := s.llm.Chat(ctx, []interfaces.Message{
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, err
	}

	citations := make([]models.Citation, len(included))
	for i, chunk := range included {
		citations[i] = models.Citation{
			Index:   i + 1,
			ChunkID: chunk.ID(),
			Page:    chunk.Page,
			Preview: preview(chunk.Text, s.previewChars()),
		}
	}

	s.logger.Info().
		Str("subject", subject.Name).
		Int("citations", len(citations)).
		Dur("duration", time.Since(start)).
		Msg("Answer generated")

	return &models.AnswerResult{
		Subject:   subject.Name,
		Question:  question,
		Text:      text,
		Citations: citations,
		Model:     s.llm.ModelName(),
		Duration:  time.Since(start),
	}, nil
}

// maxContextChars returns the context budget.
func (s *Service) maxContextChars() int {
	budget := s.config.Synthesis.MaxContextChars
	if budget <= 0 {
		return 12000
	}
	return budget
}

// previewChars returns the citation preview length.
func (s *Service) previewChars() int {
	n := s.config.Synthesis.PreviewChars
	if n <= 0 {
		return 500
	}
	return n
}

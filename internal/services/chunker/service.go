// -----------------------------------------------------------------------
// Chunker Service - Split documents into retrieval-sized chunks
// -----------------------------------------------------------------------

package chunker

import (
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/tmc/langchaingo/textsplitter"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
)

// Separator priority: paragraph break, line break, sentence end, word
// boundary, then hard character cut as last resort.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Service implements interfaces.ChunkerService with a recursive character
// splitter. Splitting is per page, so a chunk never spans a page boundary
// and always carries a single page locator.
type Service struct {
	splitter textsplitter.RecursiveCharacter
	logger   arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.ChunkerService = (*Service)(nil)

// NewService creates a new chunker service
func NewService(config *common.Config, logger arbor.ILogger) *Service {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(config.Chunking.ChunkSize),
		textsplitter.WithChunkOverlap(config.Chunking.ChunkOverlap),
		textsplitter.WithSeparators(defaultSeparators),
	)

	return &Service{
		splitter: splitter,
		logger:   logger,
	}
}

// Split returns the document's chunks in reading order: ascending page,
// then ascending ordinal within the page. Ordinals restart on every page.
func (s *Service) Split(doc *models.Document) ([]models.Chunk, error) {
	var chunks []models.Chunk

	for _, page := range doc.Pages {
		if strings.TrimSpace(page.Text) == "" {
			continue
		}

		pieces, err := s.splitter.SplitText(page.Text)
		if err != nil {
			return nil, fmt.Errorf("failed to split page %d of document %s: %w", page.Number, doc.ID, err)
		}

		ordinal := 0
		for _, piece := range pieces {
			if strings.TrimSpace(piece) == "" {
				continue
			}
			chunks = append(chunks, models.Chunk{
				DocumentID: doc.ID,
				Page:       page.Number,
				Ordinal:    ordinal,
				Text:       piece,
			})
			ordinal++
		}
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("document %s produced no chunks", doc.ID)
	}

	s.logger.Debug().
		Str("document_id", doc.ID).
		Int("pages", len(doc.Pages)).
		Int("chunks", len(chunks)).
		Msg("Document split into chunks")

	return chunks, nil
}

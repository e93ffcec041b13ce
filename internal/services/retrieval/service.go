// -----------------------------------------------------------------------
// Retrieval Service - Multi-query retrieval over a subject's index
// -----------------------------------------------------------------------

package retrieval

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
	"github.com/ternarybob/doceo/internal/services/workers"
)

// Service implements interfaces.RetrievalService. A question is expanded
// into paraphrased variants, every query is searched concurrently, and the
// per-query result lists are merged into one deduplicated set.
type Service struct {
	config   *common.Config
	logger   arbor.ILogger
	llm      interfaces.LLMService
	embedder interfaces.EmbeddingService
	index    interfaces.VectorIndexService
	audit    interfaces.AuditLogger
}

// Compile-time interface assertion
var _ interfaces.RetrievalService = (*Service)(nil)

// NewService creates a new retrieval service
func NewService(
	config *common.Config,
	llm interfaces.LLMService,
	embedder interfaces.EmbeddingService,
	index interfaces.VectorIndexService,
	audit interfaces.AuditLogger,
	logger arbor.ILogger,
) *Service {
	return &Service{
		config:   config,
		logger:   logger,
		llm:      llm,
		embedder: embedder,
		index:    index,
		audit:    audit,
	}
}

// Retrieve searches the subject's index with the question and its
// paraphrased variants and merges the hits. Variant failures degrade to
// single-query retrieval; a failure on the original question surfaces,
// because there is nothing left to degrade to.
func (s *Service) Retrieve(ctx context.Context, subject, question string) ([]models.RetrievedChunk, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question is required")
	}

	variants := s.generateVariants(ctx, question)
	queries := append([]string{question}, variants...)

	// Each query writes into its own slot, so the merge sees the lists in
	// query order no matter which search finishes first.
	resultSets := make([][]models.ScoredChunk, len(queries))
	searchErrs := make([]error, len(queries))

	pool := workers.NewPool(ctx, len(queries), s.logger)
	pool.Start()
	for i, query := range queries {
		i, query := i, query
		if err := pool.Submit(func(jobCtx context.Context) error {
			embedding, err := s.embedder.EmbedQuery(jobCtx, query)
			if err != nil {
				searchErrs[i] = err
				return fmt.Errorf("failed to embed query %q: %w", query, err)
			}

			hits, err := s.index.Search(jobCtx, subject, embedding, s.kPerVariant())
			if err != nil {
				searchErrs[i] = err
				return fmt.Errorf("search failed for query %q: %w", query, err)
			}

			resultSets[i] = hits
			return nil
		}); err != nil {
			searchErrs[i] = err
		}
	}
	pool.Wait()

	if searchErrs[0] != nil {
		return nil, searchErrs[0]
	}

	merged := mergeResults(resultSets)

	s.logger.Debug().
		Str("subject", subject).
		Int("variants", len(variants)).
		Int("queries", len(queries)).
		Int("merged_chunks", len(merged)).
		Msg("Retrieval complete")

	return merged, nil
}

// kPerVariant returns the per-search result bound.
func (s *Service) kPerVariant() int {
	k := s.config.Retrieval.KPerVariant
	if k <= 0 {
		return 5
	}
	return k
}

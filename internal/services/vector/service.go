// -----------------------------------------------------------------------
// Vector Index Service - Build, persist, and search per-subject indexes
// -----------------------------------------------------------------------

package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
)

// Service implements interfaces.VectorIndexService. Each subject maps to
// one namespace holding the persisted chunk records plus an in-memory
// search matrix loaded by Build or Open.
type Service struct {
	logger   arbor.ILogger
	embedder interfaces.EmbeddingService
	storage  interfaces.VectorStorage

	mu      sync.Mutex
	indexes map[string]*namespaceIndex
}

// namespaceIndex is one namespace's in-memory search state. Build and Open
// hold the write lock, Search and Status the read lock, so a search never
// observes a half-replaced index.
type namespaceIndex struct {
	mu       sync.RWMutex
	manifest *models.IndexManifest
	records  []*models.ChunkRecord
	norms    []float64
}

// Compile-time interface assertion
var _ interfaces.VectorIndexService = (*Service)(nil)

// NewService creates a new vector index service
func NewService(embedder interfaces.EmbeddingService, storage interfaces.VectorStorage, logger arbor.ILogger) *Service {
	return &Service{
		logger:   logger,
		embedder: embedder,
		storage:  storage,
		indexes:  make(map[string]*namespaceIndex),
	}
}

// index returns the state for a namespace, creating it on first use.
func (s *Service) index(namespace string) *namespaceIndex {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.indexes[namespace]
	if !ok {
		idx = &namespaceIndex{}
		s.indexes[namespace] = idx
	}
	return idx
}

// Build embeds every chunk and replaces the subject's persisted namespace
// content, manifest last. Rebuilding replaces, never appends.
func (s *Service) Build(ctx context.Context, subject string, doc *models.Document, chunks []models.Chunk) (*models.BuildSummary, error) {
	if doc == nil {
		return nil, fmt.Errorf("document is required")
	}
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks to index for subject %s", subject)
	}

	namespace := common.SanitizeNamespace(subject)
	start := time.Now()

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	idx := s.index(namespace)
	idx.mu.Lock()
	defer idx.mu.Unlock()

	// All remote calls complete before the old index is touched, so a
	// failed or cancelled build leaves prior persisted state intact.
	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(chunks) {
		return nil, &models.EmbeddingError{
			Model: s.embedder.EmbeddingModel(),
			Err:   fmt.Errorf("expected %d embeddings, got %d", len(chunks), len(vectors)),
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	records := make([]*models.ChunkRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = &models.ChunkRecord{
			ID:         chunk.ID(),
			DocumentID: chunk.DocumentID,
			Page:       chunk.Page,
			Ordinal:    chunk.Ordinal,
			Text:       chunk.Text,
			Embedding:  vectors[i],
		}
	}

	if err := s.storage.ReplaceChunks(ctx, namespace, records); err != nil {
		return nil, &models.IndexError{Namespace: namespace, Err: err}
	}

	manifest := &models.IndexManifest{
		Namespace:      namespace,
		Subject:        subject,
		DocumentID:     doc.ID,
		DocumentName:   doc.Name,
		PageCount:      doc.PageCount(),
		ChunkCount:     len(records),
		Dimensions:     s.embedder.Dimension(),
		EmbeddingModel: s.embedder.EmbeddingModel(),
		BuiltAt:        time.Now().UTC(),
	}
	if err := s.storage.SaveManifest(ctx, namespace, manifest); err != nil {
		return nil, &models.IndexError{Namespace: namespace, Err: err}
	}

	idx.manifest = manifest
	idx.records = records
	idx.norms = recordNorms(records)

	s.logger.Info().
		Str("subject", subject).
		Str("namespace", namespace).
		Int("pages", doc.PageCount()).
		Int("chunks", len(records)).
		Dur("duration", time.Since(start)).
		Msg("Index built")

	return &models.BuildSummary{
		Subject:    subject,
		Namespace:  namespace,
		Document:   doc.Name,
		PageCount:  doc.PageCount(),
		ChunkCount: len(records),
		Duration:   time.Since(start),
	}, nil
}

// Open loads a persisted index into memory without re-embedding. A loaded
// index stays loaded; call Invalidate first to force a reload from disk.
func (s *Service) Open(ctx context.Context, subject string) error {
	namespace := common.SanitizeNamespace(subject)

	idx := s.index(namespace)
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.manifest != nil {
		return nil
	}

	manifest, err := s.storage.GetManifest(ctx, namespace)
	if err != nil {
		return &models.IndexError{Namespace: namespace, Err: err}
	}
	if manifest == nil {
		return models.ErrIndexNotBuilt
	}

	records, err := s.storage.LoadChunks(ctx, namespace)
	if err != nil {
		return &models.IndexError{Namespace: namespace, Err: err}
	}
	if len(records) != manifest.ChunkCount {
		return &models.IndexError{
			Namespace: namespace,
			Err:       fmt.Errorf("manifest lists %d chunks, store holds %d", manifest.ChunkCount, len(records)),
		}
	}
	for _, record := range records {
		if len(record.Embedding) != manifest.Dimensions {
			return &models.IndexError{
				Namespace: namespace,
				Err:       fmt.Errorf("chunk %s has %d dimensions, manifest lists %d", record.ID, len(record.Embedding), manifest.Dimensions),
			}
		}
	}

	idx.manifest = manifest
	idx.records = records
	idx.norms = recordNorms(records)

	s.logger.Debug().
		Str("subject", subject).
		Str("namespace", namespace).
		Int("chunks", len(records)).
		Msg("Index opened from storage")

	return nil
}

// Search scores the query against every chunk in the subject's in-memory
// index and returns the k most similar, nearest first. Ties keep reading
// order.
func (s *Service) Search(ctx context.Context, subject string, queryEmbedding []float32, k int) ([]models.ScoredChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d", k)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	namespace := common.SanitizeNamespace(subject)

	idx := s.index(namespace)
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.manifest == nil {
		return nil, models.ErrIndexNotBuilt
	}
	if len(queryEmbedding) != idx.manifest.Dimensions {
		return nil, fmt.Errorf("query embedding has %d dimensions, index %s has %d",
			len(queryEmbedding), namespace, idx.manifest.Dimensions)
	}

	queryNorm := norm32(queryEmbedding)
	if queryNorm == 0 {
		return nil, fmt.Errorf("query embedding is all zeros")
	}

	scores := make([]float64, len(idx.records))
	for i, record := range idx.records {
		if idx.norms[i] == 0 {
			continue
		}
		scores[i] = dot32(record.Embedding, queryEmbedding) / (idx.norms[i] * queryNorm)
	}

	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	if k > len(order) {
		k = len(order)
	}

	results := make([]models.ScoredChunk, 0, k)
	for rank := 0; rank < k; rank++ {
		i := order[rank]
		results = append(results, models.ScoredChunk{
			Chunk: idx.records[i].Chunk(),
			Score: scores[i],
			Rank:  rank,
		})
	}
	return results, nil
}

// Status returns the manifest of a completed index without loading chunk
// data.
func (s *Service) Status(ctx context.Context, subject string) (*models.IndexManifest, error) {
	namespace := common.SanitizeNamespace(subject)

	idx := s.index(namespace)
	idx.mu.RLock()
	manifest := idx.manifest
	idx.mu.RUnlock()

	if manifest != nil {
		return manifest, nil
	}

	manifest, err := s.storage.GetManifest(ctx, namespace)
	if err != nil {
		return nil, &models.IndexError{Namespace: namespace, Err: err}
	}
	if manifest == nil {
		return nil, models.ErrIndexNotBuilt
	}
	return manifest, nil
}

// Invalidate drops the in-memory index, leaving persisted state alone.
func (s *Service) Invalidate(subject string) {
	namespace := common.SanitizeNamespace(subject)

	s.mu.Lock()
	idx, ok := s.indexes[namespace]
	s.mu.Unlock()
	if !ok {
		return
	}

	idx.mu.Lock()
	idx.manifest = nil
	idx.records = nil
	idx.norms = nil
	idx.mu.Unlock()

	s.logger.Debug().Str("namespace", namespace).Msg("In-memory index invalidated")
}

// Drop removes the subject's index from memory and disk.
func (s *Service) Drop(ctx context.Context, subject string) error {
	namespace := common.SanitizeNamespace(subject)

	s.mu.Lock()
	idx, ok := s.indexes[namespace]
	delete(s.indexes, namespace)
	s.mu.Unlock()

	if ok {
		idx.mu.Lock()
		idx.manifest = nil
		idx.records = nil
		idx.norms = nil
		idx.mu.Unlock()
	}

	if err := s.storage.DeleteNamespace(ctx, namespace); err != nil {
		return &models.IndexError{Namespace: namespace, Err: err}
	}

	s.logger.Info().
		Str("subject", subject).
		Str("namespace", namespace).
		Msg("Index dropped")

	return nil
}

// Close releases the in-memory indexes. The storage layer is owned by the
// caller and closed separately.
func (s *Service) Close() error {
	s.mu.Lock()
	s.indexes = make(map[string]*namespaceIndex)
	s.mu.Unlock()
	return nil
}

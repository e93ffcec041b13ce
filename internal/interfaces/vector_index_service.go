package interfaces

import (
	"context"

	"github.com/ternarybob/doceo/internal/models"
)

// VectorIndexService owns the per-subject vector indexes: building them
// from chunks, persisting them, loading them back, and serving similarity
// searches. Operations are keyed by subject name; the service derives the
// storage namespace itself. Build replaces a subject's index atomically;
// Search never observes a half-written index.
type VectorIndexService interface {
	// Build embeds the chunks and replaces the subject's index with them.
	// All embedding calls complete before the old index is touched, so a
	// failed or cancelled build leaves the previous index intact.
	Build(ctx context.Context, subject string, doc *models.Document, chunks []models.Chunk) (*models.BuildSummary, error)

	// Open loads a persisted index into memory. Returns
	// models.ErrIndexNotBuilt when no completed index exists and
	// *models.IndexError when persisted state is unreadable or inconsistent.
	Open(ctx context.Context, subject string) error

	// Search returns the k nearest chunks by cosine similarity, most
	// similar first. Returns models.ErrIndexNotBuilt when the subject's
	// index is not open.
	Search(ctx context.Context, subject string, queryEmbedding []float32, k int) ([]models.ScoredChunk, error)

	// Status returns the manifest of a completed index, from memory or
	// disk, without loading chunk data.
	Status(ctx context.Context, subject string) (*models.IndexManifest, error)

	// Invalidate drops the in-memory index for a subject, leaving
	// persisted state alone.
	Invalidate(subject string)

	// Drop removes a subject's index from memory and disk.
	Drop(ctx context.Context, subject string) error

	// Close releases the in-memory indexes. The underlying storage is
	// owned by the caller and closed separately.
	Close() error
}

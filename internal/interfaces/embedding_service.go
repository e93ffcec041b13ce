package interfaces

import (
	"context"
)

// EmbeddingService generates vector embeddings. Document and query
// embeddings use different task types, so the two sides get separate
// methods even though both return vectors of the same dimension.
type EmbeddingService interface {
	// EmbedDocuments generates one embedding per chunk text, in order.
	// Used at index build time.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// EmbeddingModel returns the model identifier used for embeddings
	EmbeddingModel() string

	// Dimension returns the embedding vector dimensionality
	Dimension() int
}

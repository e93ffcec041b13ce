package models

import "time"

// ChunkRecord is the persisted form of one indexed chunk with its embedding.
// Records live in the owning subject's namespace store and are replaced
// wholesale on rebuild, never mutated.
type ChunkRecord struct {
	ID         string `badgerhold:"key"` // Chunk.ID()
	DocumentID string
	Page       int
	Ordinal    int
	Text       string
	Embedding  []float32
}

// Chunk reconstructs the chunk carried by this record.
func (r *ChunkRecord) Chunk() Chunk {
	return Chunk{
		DocumentID: r.DocumentID,
		Page:       r.Page,
		Ordinal:    r.Ordinal,
		Text:       r.Text,
	}
}

// IndexManifest marks a completed index build for one subject namespace and
// is written last during a build. A store holding chunk records without a
// manifest, or with a mismatched chunk count, is treated as incomplete.
type IndexManifest struct {
	Namespace      string    `json:"namespace"`
	Subject        string    `json:"subject"`
	DocumentID     string    `json:"document_id"`
	DocumentName   string    `json:"document_name"`
	PageCount      int       `json:"page_count"`
	ChunkCount     int       `json:"chunk_count"`
	Dimensions     int       `json:"dimensions"`
	EmbeddingModel string    `json:"embedding_model"`
	BuiltAt        time.Time `json:"built_at"`
}

package models

import "time"

// ScoredChunk is a chunk returned by a single vector search, ranked nearest
// first. Score is cosine similarity; higher is closer.
type ScoredChunk struct {
	Chunk
	Score float64 `json:"score"`
	Rank  int     `json:"rank"` // 0-based rank within its originating search
}

// RetrievedChunk is a member of the merged multi-query retrieval set.
// BestRank is the best (lowest) rank the chunk achieved across the original
// query and all variants.
type RetrievedChunk struct {
	Chunk
	Score    float64 `json:"score"`
	BestRank int     `json:"best_rank"`
}

// Citation points at one chunk that was actually part of the context sent to
// the generation service. Index is the 1-based position of the chunk in the
// context block, matching the "Document N" labels the model sees.
type Citation struct {
	Index   int    `json:"index"`
	ChunkID string `json:"chunk_id"`
	Page    int    `json:"page"`
	Preview string `json:"preview"`
}

// AnswerResult is a generated answer plus the chunks it was grounded on.
// Citations are ordered as they appeared in the context block and never
// reference chunks that were dropped by truncation.
type AnswerResult struct {
	Subject   string        `json:"subject"`
	Question  string        `json:"question"`
	Text      string        `json:"text"`
	Citations []Citation    `json:"citations"`
	Model     string        `json:"model"`
	Duration  time.Duration `json:"duration"`
}

// BuildSummary describes one completed index build.
type BuildSummary struct {
	Subject    string        `json:"subject"`
	Namespace  string        `json:"namespace"`
	Document   string        `json:"document"`
	PageCount  int           `json:"page_count"`
	ChunkCount int           `json:"chunk_count"`
	Duration   time.Duration `json:"duration"`
}

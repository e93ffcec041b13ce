package models

import "time"

// Citation points at one passage of the source document that grounded an
// answer. Index matches the "Document N" labels in the answer text.
type Citation struct {
	Index   int    `json:"index"`
	Page    int    `json:"page"`
	Preview string `json:"preview"`
}

// Answer is a generated answer with the passages it was grounded on.
type Answer struct {
	Subject   string     `json:"subject"`
	Question  string     `json:"question"`
	Text      string     `json:"text"`
	Citations []Citation `json:"citations"`
	Model     string     `json:"model"`
}

// IngestReport describes one completed ingestion.
type IngestReport struct {
	Subject  string        `json:"subject"`
	Document string        `json:"document"`
	Pages    int           `json:"pages"`
	Chunks   int           `json:"chunks"`
	Duration time.Duration `json:"duration"`
}

// IndexStatus describes the index currently serving a subject.
type IndexStatus struct {
	Subject        string    `json:"subject"`
	Document       string    `json:"document"`
	Pages          int       `json:"pages"`
	Chunks         int       `json:"chunks"`
	EmbeddingModel string    `json:"embedding_model"`
	BuiltAt        time.Time `json:"built_at"`
}

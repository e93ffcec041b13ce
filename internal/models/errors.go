package models

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced by the session orchestrator.
var (
	// ErrUnknownSubject means the subject name is not in the loaded catalog.
	ErrUnknownSubject = errors.New("unknown subject")

	// ErrIndexNotBuilt means no completed index exists for the subject, in
	// memory or on disk. The caller must ingest a document first.
	ErrIndexNotBuilt = errors.New("no index built for subject")
)

// IngestionError reports an unreadable, empty, or text-free source document.
type IngestionError struct {
	Source string // filename or path
	Reason string
	Err    error
}

func (e *IngestionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ingestion failed for %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("ingestion failed for %s: %s", e.Source, e.Reason)
}

func (e *IngestionError) Unwrap() error { return e.Err }

// EmbeddingError reports an embedding service failure. Nothing is persisted
// when a build fails with this error.
type EmbeddingError struct {
	Model string
	Err   error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed (model %s): %v", e.Model, e.Err)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// IndexError reports unreadable or inconsistent persisted index state. It is
// never used to mask an empty index; a missing index is ErrIndexNotBuilt.
type IndexError struct {
	Namespace string
	Err       error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("index %s unusable: %v", e.Namespace, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// GenerationError reports a generation service transport or service failure.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (provider %s): %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// GenerationBlocked reports output suppressed by the content-safety policy.
// This is a policy outcome, not a transport failure; callers must be able to
// tell the two apart, so it deliberately wraps nothing.
type GenerationBlocked struct {
	Provider string
	Reason   string // block or finish reason reported by the provider
}

func (e *GenerationBlocked) Error() string {
	return fmt.Sprintf("generation blocked by safety policy (provider %s): %s", e.Provider, e.Reason)
}

// IsBlocked reports whether err is a safety block rather than a failure.
func IsBlocked(err error) bool {
	var blocked *GenerationBlocked
	return errors.As(err, &blocked)
}

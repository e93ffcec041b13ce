package models

import (
	"context"
	"errors"
)

// Sentinel errors embedders can match with errors.Is.
var (
	// ErrUnknownSubject is returned for subjects outside the catalog
	ErrUnknownSubject = errors.New("unknown subject")

	// ErrIndexNotBuilt is returned when a subject has no ingested document
	ErrIndexNotBuilt = errors.New("no index built for subject")

	// ErrAnswerBlocked is returned when the provider's content-safety
	// policy suppressed the answer
	ErrAnswerBlocked = errors.New("answer blocked by content safety policy")
)

// RAG answers questions about documents ingested into named subjects.
type RAG interface {
	// Subjects returns the catalog of subject names
	Subjects() []string

	// Ingest indexes one document for a subject, replacing the subject's
	// previous document
	Ingest(ctx context.Context, subject, path string) (*IngestReport, error)

	// Ask answers a question using only the subject's ingested document
	Ask(ctx context.Context, subject, question string) (*Answer, error)

	// Status reports the index currently serving a subject
	Status(ctx context.Context, subject string) (*IndexStatus, error)

	// Close releases all held resources
	Close() error
}

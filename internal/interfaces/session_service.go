package interfaces

import (
	"context"

	"github.com/ternarybob/doceo/internal/models"
)

// SessionService is the application-facing orchestrator: subject-scoped
// ingestion, pipeline lifecycle, and question answering. The CLI and MCP
// surfaces talk only to this interface.
type SessionService interface {
	// Subjects returns the closed subject catalog in catalog order
	Subjects() []models.Subject

	// IngestDocument ingests a file into a subject: parse, chunk, embed,
	// and rebuild the subject's index. The previous index for the subject
	// is replaced.
	IngestDocument(ctx context.Context, subject, path string) (*models.BuildSummary, error)

	// IngestBytes is IngestDocument for an in-memory source
	IngestBytes(ctx context.Context, subject, name string, data []byte) (*models.BuildSummary, error)

	// Ask answers a question against the subject's index. When the subject
	// has no cached pipeline but a completed index exists on disk, the
	// pipeline is restored first. Returns models.ErrIndexNotBuilt when no
	// index exists at all.
	Ask(ctx context.Context, subject, question string) (*models.AnswerResult, error)

	// Status reports the subject's index manifest, or
	// models.ErrIndexNotBuilt when none exists
	Status(ctx context.Context, subject string) (*models.IndexManifest, error)

	// Invalidate evicts the subject's cached pipeline so the next Ask
	// reloads from persisted state
	Invalidate(subject string) error

	// Purge removes the subject's index from memory and disk
	Purge(ctx context.Context, subject string) error

	// Close releases all held resources
	Close() error
}

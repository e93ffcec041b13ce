package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/doceo/internal/models"
)

// VectorStorage - interface for persisted per-namespace index data.
// Each namespace is an isolated store; operations on one namespace never
// touch another. A namespace without a manifest is treated as not built,
// whatever chunk data it holds.
type VectorStorage interface {
	// Chunk operations
	ReplaceChunks(ctx context.Context, namespace string, records []*models.ChunkRecord) error
	LoadChunks(ctx context.Context, namespace string) ([]*models.ChunkRecord, error)
	CountChunks(ctx context.Context, namespace string) (int, error)

	// Manifest operations. The manifest is written after chunk data, so
	// its presence marks a completed build. GetManifest returns (nil, nil)
	// when the namespace has no manifest.
	SaveManifest(ctx context.Context, namespace string, manifest *models.IndexManifest) error
	GetManifest(ctx context.Context, namespace string) (*models.IndexManifest, error)

	// Namespace operations
	ListNamespaces() ([]string, error)
	DeleteNamespace(ctx context.Context, namespace string) error

	// RunGC runs value-log garbage collection on all open stores
	RunGC() error

	// Close closes all open stores
	Close() error
}

// AuditStorage - interface for audit record persistence
type AuditStorage interface {
	SaveRecord(record *models.AuditRecord) error
	ListRecords(limit int) ([]models.AuditRecord, error)
	DeleteRecordsBefore(cutoff time.Time) (int, error)

	// RunGC runs value-log garbage collection on the audit store
	RunGC() error

	Close() error
}

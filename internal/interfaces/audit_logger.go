package interfaces

import (
	"time"

	"github.com/ternarybob/doceo/internal/models"
)

// AuditLogger records remote model calls for inspection and quota
// debugging. Record is best effort: a failed write is logged and dropped,
// never surfaced to the caller.
type AuditLogger interface {
	// Record stores one audit record
	Record(record *models.AuditRecord)

	// List returns the most recent records, newest first
	List(limit int) ([]models.AuditRecord, error)

	// Prune deletes records older than the cutoff and returns the count
	Prune(cutoff time.Time) (int, error)
}

package llm

import (
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
)

// maxAuditQueryChars caps the stored query preview. Full prompts carry
// retrieved corpus text and never belong in the audit log.
const maxAuditQueryChars = 200

// StorageAuditLogger persists audit records through an AuditStorage backend.
// Writes are best-effort: a failed write is logged and swallowed so audit
// problems never fail the operation they describe.
type StorageAuditLogger struct {
	storage interfaces.AuditStorage
	logger  arbor.ILogger
}

var _ interfaces.AuditLogger = (*StorageAuditLogger)(nil)

// NewAuditLogger creates an audit logger backed by the given storage.
func NewAuditLogger(storage interfaces.AuditStorage, logger arbor.ILogger) *StorageAuditLogger {
	return &StorageAuditLogger{
		storage: storage,
		logger:  logger,
	}
}

// Record persists one audit record, filling in the ID and timestamp when the
// caller left them zero and truncating the query preview.
func (l *StorageAuditLogger) Record(record *models.AuditRecord) {
	if record == nil {
		return
	}

	if record.ID == "" {
		record.ID = common.NewAuditID()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now()
	}
	record.QueryText = truncateQuery(record.QueryText, maxAuditQueryChars)

	if err := l.storage.SaveRecord(record); err != nil {
		l.logger.Error().
			Err(err).
			Str("operation", string(record.Operation)).
			Str("provider", record.Provider).
			Msg("Failed to write audit record")
	}
}

// List returns the most recent audit records, newest first.
func (l *StorageAuditLogger) List(limit int) ([]models.AuditRecord, error) {
	return l.storage.ListRecords(limit)
}

// Prune deletes records older than the cutoff and returns how many were
// removed.
func (l *StorageAuditLogger) Prune(cutoff time.Time) (int, error) {
	return l.storage.DeleteRecordsBefore(cutoff)
}

// NullAuditLogger discards all records. Used in tests and when no audit
// storage is available.
type NullAuditLogger struct{}

var _ interfaces.AuditLogger = (*NullAuditLogger)(nil)

// NewNullAuditLogger creates a no-op audit logger.
func NewNullAuditLogger() *NullAuditLogger {
	return &NullAuditLogger{}
}

func (l *NullAuditLogger) Record(record *models.AuditRecord) {}

func (l *NullAuditLogger) List(limit int) ([]models.AuditRecord, error) { return nil, nil }

func (l *NullAuditLogger) Prune(cutoff time.Time) (int, error) { return 0, nil }

// recordAudit writes one best-effort audit record for an outbound call.
// A nil audit logger disables auditing entirely.
func recordAudit(audit interfaces.AuditLogger, op models.AuditOperation, provider, model string, start time.Time, queryText string, err error) {
	if audit == nil {
		return
	}

	record := &models.AuditRecord{
		Operation:  op,
		Provider:   provider,
		Model:      model,
		Success:    err == nil,
		DurationMS: time.Since(start).Milliseconds(),
		QueryText:  queryText,
	}
	if err != nil {
		record.Error = err.Error()
	}

	audit.Record(record)
}

// truncateQuery shortens a query preview to at most max runes.
func truncateQuery(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

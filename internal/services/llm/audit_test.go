package llm

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/models"
)

type fakeAuditStorage struct {
	records []models.AuditRecord
	saveErr error
}

func (f *fakeAuditStorage) SaveRecord(record *models.AuditRecord) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeAuditStorage) ListRecords(limit int) ([]models.AuditRecord, error) {
	if limit > 0 && limit < len(f.records) {
		return f.records[:limit], nil
	}
	return f.records, nil
}

func (f *fakeAuditStorage) DeleteRecordsBefore(cutoff time.Time) (int, error) {
	kept := make([]models.AuditRecord, 0, len(f.records))
	deleted := 0
	for _, r := range f.records {
		if r.Timestamp.Before(cutoff) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	f.records = kept
	return deleted, nil
}

func (f *fakeAuditStorage) RunGC() error { return nil }

func (f *fakeAuditStorage) Close() error { return nil }

func TestAuditLoggerFillsDefaults(t *testing.T) {
	storage := &fakeAuditStorage{}
	auditLog := NewAuditLogger(storage, arbor.NewLogger())

	auditLog.Record(&models.AuditRecord{
		Operation: models.AuditOpGenerate,
		Provider:  ProviderGemini,
		Model:     "gemini-1.5-flash",
		Success:   true,
	})

	require.Len(t, storage.records, 1)
	rec := storage.records[0]
	assert.True(t, strings.HasPrefix(rec.ID, "audit_"))
	assert.False(t, rec.Timestamp.IsZero())
	assert.Equal(t, models.AuditOpGenerate, rec.Operation)
}

func TestAuditLoggerTruncatesQueryText(t *testing.T) {
	storage := &fakeAuditStorage{}
	auditLog := NewAuditLogger(storage, arbor.NewLogger())

	long := strings.Repeat("q", maxAuditQueryChars+50)
	auditLog.Record(&models.AuditRecord{Operation: models.AuditOpEmbed, QueryText: long})

	require.Len(t, storage.records, 1)
	got := storage.records[0].QueryText
	assert.Len(t, []rune(got), maxAuditQueryChars+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestAuditLoggerSwallowsStorageFailures(t *testing.T) {
	storage := &fakeAuditStorage{saveErr: errors.New("disk full")}
	auditLog := NewAuditLogger(storage, arbor.NewLogger())

	// Neither a failing backend nor a nil record may panic or propagate
	auditLog.Record(&models.AuditRecord{Operation: models.AuditOpGenerate})
	auditLog.Record(nil)

	assert.Empty(t, storage.records)
}

func TestAuditLoggerPruneDelegates(t *testing.T) {
	storage := &fakeAuditStorage{}
	auditLog := NewAuditLogger(storage, arbor.NewLogger())

	old := &models.AuditRecord{Operation: models.AuditOpEmbed}
	auditLog.Record(old)
	storage.records[0].Timestamp = time.Now().Add(-48 * time.Hour)
	auditLog.Record(&models.AuditRecord{Operation: models.AuditOpGenerate})

	deleted, err := auditLog.Prune(time.Now().Add(-24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	records, err := auditLog.List(10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, models.AuditOpGenerate, records[0].Operation)
}

func TestRecordAuditCapturesOutcome(t *testing.T) {
	storage := &fakeAuditStorage{}
	auditLog := NewAuditLogger(storage, arbor.NewLogger())

	start := time.Now().Add(-50 * time.Millisecond)
	recordAudit(auditLog, models.AuditOpGenerate, ProviderClaude, "claude-3-5-haiku", start, "what is entropy", errors.New("boom"))

	require.Len(t, storage.records, 1)
	rec := storage.records[0]
	assert.Equal(t, models.AuditOpGenerate, rec.Operation)
	assert.Equal(t, ProviderClaude, rec.Provider)
	assert.Equal(t, "claude-3-5-haiku", rec.Model)
	assert.False(t, rec.Success)
	assert.Equal(t, "boom", rec.Error)
	assert.GreaterOrEqual(t, rec.DurationMS, int64(50))
	assert.Equal(t, "what is entropy", rec.QueryText)

	// A nil audit logger disables auditing without panicking
	recordAudit(nil, models.AuditOpEmbed, ProviderGemini, "m", start, "", nil)
	assert.Len(t, storage.records, 1)
}

func TestNullAuditLogger(t *testing.T) {
	null := NewNullAuditLogger()
	null.Record(&models.AuditRecord{Operation: models.AuditOpEmbed})

	records, err := null.List(10)
	require.NoError(t, err)
	assert.Empty(t, records)

	n, err := null.Prune(time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)
}

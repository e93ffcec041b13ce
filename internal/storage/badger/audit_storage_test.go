package badger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/models"
)

func newTestAuditStorage(t *testing.T) *AuditStorage {
	storage, err := NewAuditStorage(newTestConfig(t), arbor.NewLogger())
	require.NoError(t, err)
	t.Cleanup(func() { storage.Close() })
	return storage
}

func auditRecord(id string, timestamp time.Time, operation models.AuditOperation) *models.AuditRecord {
	return &models.AuditRecord{
		ID:         id,
		Timestamp:  timestamp,
		Operation:  operation,
		Provider:   "gemini",
		Model:      "gemini-1.5-flash",
		Success:    true,
		DurationMS: 42,
		QueryText:  "what is inertia?",
	}
}

func TestAuditStorageSaveAndList(t *testing.T) {
	storage := newTestAuditStorage(t)

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, storage.SaveRecord(auditRecord("audit-1", base, models.AuditOpEmbed)))
	require.NoError(t, storage.SaveRecord(auditRecord("audit-3", base.Add(2*time.Hour), models.AuditOpGenerate)))
	require.NoError(t, storage.SaveRecord(auditRecord("audit-2", base.Add(time.Hour), models.AuditOpVariants)))

	records, err := storage.ListRecords(0)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "audit-3", records[0].ID)
	assert.Equal(t, "audit-2", records[1].ID)
	assert.Equal(t, "audit-1", records[2].ID)

	assert.Equal(t, models.AuditOpGenerate, records[0].Operation)
	assert.Equal(t, "gemini-1.5-flash", records[0].Model)
	assert.Equal(t, int64(42), records[0].DurationMS)
	assert.True(t, records[0].Success)

	limited, err := storage.ListRecords(2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "audit-3", limited[0].ID)
	assert.Equal(t, "audit-2", limited[1].ID)
}

func TestAuditStorageRejectsInvalidRecords(t *testing.T) {
	storage := newTestAuditStorage(t)

	assert.Error(t, storage.SaveRecord(nil))
	assert.Error(t, storage.SaveRecord(&models.AuditRecord{Timestamp: time.Now()}))
}

func TestAuditStorageDeleteRecordsBefore(t *testing.T) {
	storage := newTestAuditStorage(t)

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, storage.SaveRecord(auditRecord("audit-1", base, models.AuditOpEmbed)))
	require.NoError(t, storage.SaveRecord(auditRecord("audit-2", base.Add(time.Hour), models.AuditOpEmbed)))
	require.NoError(t, storage.SaveRecord(auditRecord("audit-3", base.Add(2*time.Hour), models.AuditOpGenerate)))

	deleted, err := storage.DeleteRecordsBefore(base.Add(90 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	records, err := storage.ListRecords(0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "audit-3", records[0].ID)

	deleted, err = storage.DeleteRecordsBefore(base.Add(90 * time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}

func TestAuditStorageRunGC(t *testing.T) {
	storage := newTestAuditStorage(t)

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	for _, id := range []string{"audit-1", "audit-2", "audit-3"} {
		require.NoError(t, storage.SaveRecord(auditRecord(id, base, models.AuditOpEmbed)))
	}
	_, err := storage.DeleteRecordsBefore(base.Add(time.Minute))
	require.NoError(t, err)

	assert.NoError(t, storage.RunGC())
}

package badger

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
)

// AuditStorage persists LLM audit records in a single store under
// <data_dir>/audit.
type AuditStorage struct {
	store  *badgerhold.Store
	logger arbor.ILogger
}

var _ interfaces.AuditStorage = (*AuditStorage)(nil)

// NewAuditStorage opens the audit store.
func NewAuditStorage(config *common.Config, logger arbor.ILogger) (*AuditStorage, error) {
	store, err := openStore(filepath.Join(config.Storage.DataDir, "audit"), logger)
	if err != nil {
		return nil, err
	}

	return &AuditStorage{
		store:  store,
		logger: logger,
	}, nil
}

// SaveRecord persists one audit record keyed by its ID.
func (s *AuditStorage) SaveRecord(record *models.AuditRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("audit record ID is required")
	}

	if err := s.store.Upsert(record.ID, record); err != nil {
		return fmt.Errorf("failed to save audit record: %w", err)
	}
	return nil
}

// ListRecords returns audit records newest first. A limit of 0 or less
// returns everything.
func (s *AuditStorage) ListRecords(limit int) ([]models.AuditRecord, error) {
	query := badgerhold.Where("ID").Ne("").SortBy("Timestamp").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var records []models.AuditRecord
	if err := s.store.Find(&records, query); err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	return records, nil
}

// DeleteRecordsBefore removes records older than the cutoff and returns how
// many were deleted.
func (s *AuditStorage) DeleteRecordsBefore(cutoff time.Time) (int, error) {
	query := badgerhold.Where("Timestamp").Lt(cutoff)

	count, err := s.store.Count(&models.AuditRecord{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count expired audit records: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	if err := s.store.DeleteMatching(&models.AuditRecord{}, query); err != nil {
		return 0, fmt.Errorf("failed to delete expired audit records: %w", err)
	}

	s.logger.Debug().
		Int("deleted", int(count)).
		Str("cutoff", cutoff.Format(time.RFC3339)).
		Msg("Expired audit records deleted")

	return int(count), nil
}

// RunGC runs value-log garbage collection on the audit store.
func (s *AuditStorage) RunGC() error {
	if s.store == nil {
		return nil
	}
	return runValueLogGC(s.store)
}

// Close closes the audit store.
func (s *AuditStorage) Close() error {
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

package badger

import (
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
)

// Manager bundles the Badger-backed storages behind one lifecycle.
type Manager struct {
	vector *VectorStorage
	audit  *AuditStorage
	logger arbor.ILogger
}

// NewManager opens the vector and audit stores under the configured data
// directory.
func NewManager(config *common.Config, logger arbor.ILogger) (*Manager, error) {
	vector, err := NewVectorStorage(config, logger)
	if err != nil {
		return nil, err
	}

	audit, err := NewAuditStorage(config, logger)
	if err != nil {
		vector.Close()
		return nil, err
	}

	logger.Info().
		Str("data_dir", config.Storage.DataDir).
		Msg("Badger storage manager initialized")

	return &Manager{
		vector: vector,
		audit:  audit,
		logger: logger,
	}, nil
}

// VectorStorage returns the vector storage interface
func (m *Manager) VectorStorage() interfaces.VectorStorage {
	return m.vector
}

// AuditStorage returns the audit storage interface
func (m *Manager) AuditStorage() interfaces.AuditStorage {
	return m.audit
}

// Close closes both stores and returns the first error encountered.
func (m *Manager) Close() error {
	var firstErr error
	if m.vector != nil {
		if err := m.vector.Close(); err != nil {
			firstErr = err
		}
	}
	if m.audit != nil {
		if err := m.audit.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

package badger

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
)

// manifestKey is the fixed key each namespace manifest is stored under.
const manifestKey = "manifest"

// VectorStorage persists per-namespace index data. Every namespace gets its
// own badgerhold store under <data_dir>/vectors/<namespace>, so subjects
// stay physically isolated and a namespace can be dropped by removing its
// directory.
type VectorStorage struct {
	baseDir string
	logger  arbor.ILogger

	mu     sync.Mutex
	stores map[string]*badgerhold.Store
	closed bool
}

var _ interfaces.VectorStorage = (*VectorStorage)(nil)

// NewVectorStorage creates vector storage rooted at <data_dir>/vectors.
func NewVectorStorage(config *common.Config, logger arbor.ILogger) (*VectorStorage, error) {
	baseDir := filepath.Join(config.Storage.DataDir, "vectors")
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create vector storage directory: %w", err)
	}

	return &VectorStorage{
		baseDir: baseDir,
		logger:  logger,
		stores:  make(map[string]*badgerhold.Store),
	}, nil
}

// validateNamespace rejects names that would escape the storage root. The
// subject catalog only produces sanitized namespaces; this guards direct
// callers.
func validateNamespace(namespace string) error {
	if namespace == "" {
		return fmt.Errorf("namespace is required")
	}
	if namespace != filepath.Base(namespace) || namespace == "." || namespace == ".." {
		return fmt.Errorf("invalid namespace %q", namespace)
	}
	return nil
}

// store returns the open store for a namespace, opening it on first use.
func (s *VectorStorage) store(namespace string) (*badgerhold.Store, error) {
	if err := validateNamespace(namespace); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("vector storage is closed")
	}
	if st, ok := s.stores[namespace]; ok {
		return st, nil
	}

	st, err := openStore(filepath.Join(s.baseDir, namespace), s.logger)
	if err != nil {
		return nil, err
	}
	s.stores[namespace] = st

	return st, nil
}

// ReplaceChunks replaces the namespace's chunk records wholesale. The
// manifest is dropped first so an interrupted replace leaves the namespace
// unmistakably incomplete rather than silently stale.
func (s *VectorStorage) ReplaceChunks(ctx context.Context, namespace string, records []*models.ChunkRecord) error {
	st, err := s.store(namespace)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := st.Delete(manifestKey, &models.IndexManifest{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to clear manifest: %w", err)
	}
	if err := st.DeleteMatching(&models.ChunkRecord{}, nil); err != nil {
		return fmt.Errorf("failed to clear chunk records: %w", err)
	}

	for _, record := range records {
		if record.ID == "" {
			return fmt.Errorf("chunk record ID is required")
		}
		if err := st.Upsert(record.ID, record); err != nil {
			return fmt.Errorf("failed to save chunk record %s: %w", record.ID, err)
		}
	}

	s.logger.Debug().
		Str("namespace", namespace).
		Int("chunks", len(records)).
		Msg("Chunk records replaced")

	return nil
}

// LoadChunks returns all chunk records for a namespace in reading order
// (page, then ordinal within the page).
func (s *VectorStorage) LoadChunks(ctx context.Context, namespace string) ([]*models.ChunkRecord, error) {
	st, err := s.store(namespace)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var records []models.ChunkRecord
	if err := st.Find(&records, nil); err != nil {
		return nil, fmt.Errorf("failed to load chunk records: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Page != records[j].Page {
			return records[i].Page < records[j].Page
		}
		return records[i].Ordinal < records[j].Ordinal
	})

	result := make([]*models.ChunkRecord, len(records))
	for i := range records {
		result[i] = &records[i]
	}
	return result, nil
}

// CountChunks returns the number of chunk records stored for a namespace.
func (s *VectorStorage) CountChunks(ctx context.Context, namespace string) (int, error) {
	st, err := s.store(namespace)
	if err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	count, err := st.Count(&models.ChunkRecord{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunk records: %w", err)
	}
	return int(count), nil
}

// SaveManifest writes the namespace manifest. Callers write it after chunk
// data so its presence marks a completed build.
func (s *VectorStorage) SaveManifest(ctx context.Context, namespace string, manifest *models.IndexManifest) error {
	if manifest == nil {
		return fmt.Errorf("manifest is required")
	}

	st, err := s.store(namespace)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := st.Upsert(manifestKey, manifest); err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}
	return nil
}

// GetManifest returns the namespace manifest, or (nil, nil) when the
// namespace has none.
func (s *VectorStorage) GetManifest(ctx context.Context, namespace string) (*models.IndexManifest, error) {
	st, err := s.store(namespace)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var manifest models.IndexManifest
	if err := st.Get(manifestKey, &manifest); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	return &manifest, nil
}

// ListNamespaces returns the namespaces present on disk, sorted.
func (s *VectorStorage) ListNamespaces() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list namespaces: %w", err)
	}

	var namespaces []string
	for _, entry := range entries {
		if entry.IsDir() {
			namespaces = append(namespaces, entry.Name())
		}
	}
	sort.Strings(namespaces)
	return namespaces, nil
}

// DeleteNamespace closes the namespace store if open and removes its
// directory. Deleting a namespace that does not exist is not an error.
func (s *VectorStorage) DeleteNamespace(ctx context.Context, namespace string) error {
	if err := validateNamespace(namespace); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	if st, ok := s.stores[namespace]; ok {
		delete(s.stores, namespace)
		if err := st.Close(); err != nil {
			s.mu.Unlock()
			return fmt.Errorf("failed to close store for %s: %w", namespace, err)
		}
	}
	s.mu.Unlock()

	if err := os.RemoveAll(filepath.Join(s.baseDir, namespace)); err != nil {
		return fmt.Errorf("failed to remove namespace %s: %w", namespace, err)
	}

	s.logger.Info().Str("namespace", namespace).Msg("Namespace deleted")
	return nil
}

// RunGC runs value log garbage collection on every open store.
func (s *VectorStorage) RunGC() error {
	s.mu.Lock()
	stores := make(map[string]*badgerhold.Store, len(s.stores))
	for namespace, st := range s.stores {
		stores[namespace] = st
	}
	s.mu.Unlock()

	for namespace, st := range stores {
		if err := runValueLogGC(st); err != nil {
			return fmt.Errorf("value log GC failed for %s: %w", namespace, err)
		}
		s.logger.Debug().Str("namespace", namespace).Msg("Value log GC completed")
	}
	return nil
}

// runValueLogGC reclaims value log space until badger reports nothing left
// to rewrite.
func runValueLogGC(st *badgerhold.Store) error {
	for {
		err := st.Badger().RunValueLogGC(0.5)
		if err == nil {
			continue
		}
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		return err
	}
}

// Close closes all open namespace stores. The storage cannot be used after
// Close.
func (s *VectorStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var firstErr error
	for namespace, st := range s.stores {
		if err := st.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to close store for %s: %w", namespace, err)
		}
	}
	s.stores = nil

	return firstErr
}

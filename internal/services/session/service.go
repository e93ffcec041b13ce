// -----------------------------------------------------------------------
// Session Service - Subject-scoped orchestration of ingest, indexing,
// retrieval, and answering
// -----------------------------------------------------------------------

package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/interfaces"
	"github.com/ternarybob/doceo/internal/models"
	"github.com/ternarybob/doceo/internal/subjects"
)

// pipeline is one subject's ready-to-ask state: the subject definition plus
// the manifest of its opened index. There is at most one per subject per
// process.
type pipeline struct {
	subject  *models.Subject
	manifest *models.IndexManifest
}

// Service implements interfaces.SessionService
type Service struct {
	logger    arbor.ILogger
	catalog   *subjects.Catalog
	ingester  interfaces.IngestService
	chunker   interfaces.ChunkerService
	index     interfaces.VectorIndexService
	retriever interfaces.RetrievalService
	answerer  interfaces.AnswerService

	mu        sync.Mutex
	pipelines map[string]*pipeline
	locks     map[string]*sync.Mutex
}

// Compile-time interface assertion
var _ interfaces.SessionService = (*Service)(nil)

// NewService creates the session orchestrator over an immutable subject
// catalog and the pipeline services.
func NewService(
	catalog *subjects.Catalog,
	ingester interfaces.IngestService,
	chunker interfaces.ChunkerService,
	index interfaces.VectorIndexService,
	retriever interfaces.RetrievalService,
	answerer interfaces.AnswerService,
	logger arbor.ILogger,
) *Service {
	return &Service{
		logger:    logger,
		catalog:   catalog,
		ingester:  ingester,
		chunker:   chunker,
		index:     index,
		retriever: retriever,
		answerer:  answerer,
		pipelines: make(map[string]*pipeline),
		locks:     make(map[string]*sync.Mutex),
	}
}

// Subjects returns the catalog subjects in catalog order.
func (s *Service) Subjects() []models.Subject {
	return s.catalog.All()
}

// IngestDocument ingests a file into a subject and rebuilds its index. The
// subject's previous index is replaced, never appended to.
func (s *Service) IngestDocument(ctx context.Context, subjectName, path string) (*models.BuildSummary, error) {
	subject, err := s.catalog.Get(subjectName)
	if err != nil {
		return nil, err
	}

	doc, err := s.ingester.IngestFile(ctx, path)
	if err != nil {
		return nil, err
	}

	return s.rebuild(ctx, subject, doc)
}

// IngestBytes is IngestDocument for an in-memory source.
func (s *Service) IngestBytes(ctx context.Context, subjectName, name string, data []byte) (*models.BuildSummary, error) {
	subject, err := s.catalog.Get(subjectName)
	if err != nil {
		return nil, err
	}

	doc, err := s.ingester.IngestBytes(ctx, name, data)
	if err != nil {
		return nil, err
	}

	return s.rebuild(ctx, subject, doc)
}

// Ask answers a question against the subject's pipeline, restoring it from
// persisted state when no cached pipeline exists.
func (s *Service) Ask(ctx context.Context, subjectName, question string) (*models.AnswerResult, error) {
	subject, err := s.catalog.Get(subjectName)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question must not be empty")
	}

	if _, err := s.ensurePipeline(ctx, subject); err != nil {
		return nil, err
	}

	chunks, err := s.retriever.Retrieve(ctx, subject.Name, question)
	if err != nil {
		return nil, err
	}

	return s.answerer.Answer(ctx, subject, question, chunks)
}

// Status reports the subject's index manifest without loading the index.
func (s *Service) Status(ctx context.Context, subjectName string) (*models.IndexManifest, error) {
	if _, err := s.catalog.Get(subjectName); err != nil {
		return nil, err
	}
	return s.index.Status(ctx, subjectName)
}

// Invalidate evicts the subject's cached pipeline and in-memory index. The
// persisted index is untouched; the next Ask restores from disk.
func (s *Service) Invalidate(subjectName string) error {
	if _, err := s.catalog.Get(subjectName); err != nil {
		return err
	}

	lock := s.subjectLock(subjectName)
	lock.Lock()
	defer lock.Unlock()

	s.evict(subjectName)
	s.index.Invalidate(subjectName)

	s.logger.Debug().Str("subject", subjectName).Msg("Pipeline invalidated")
	return nil
}

// Purge removes the subject's index from memory and disk.
func (s *Service) Purge(ctx context.Context, subjectName string) error {
	if _, err := s.catalog.Get(subjectName); err != nil {
		return err
	}

	lock := s.subjectLock(subjectName)
	lock.Lock()
	defer lock.Unlock()

	s.evict(subjectName)
	if err := s.index.Drop(ctx, subjectName); err != nil {
		return err
	}

	s.logger.Info().Str("subject", subjectName).Msg("Subject purged")
	return nil
}

// Close drops all cached pipelines and releases the in-memory indexes.
// Storage and provider clients are owned by the caller that wired them.
func (s *Service) Close() error {
	s.mu.Lock()
	s.pipelines = make(map[string]*pipeline)
	s.mu.Unlock()

	return s.index.Close()
}

// rebuild chunks the document and replaces the subject's index and cached
// pipeline under the subject lock.
func (s *Service) rebuild(ctx context.Context, subject *models.Subject, doc *models.Document) (*models.BuildSummary, error) {
	chunks, err := s.chunker.Split(doc)
	if err != nil {
		return nil, err
	}

	lock := s.subjectLock(subject.Name)
	lock.Lock()
	defer lock.Unlock()

	// The cached pipeline and in-memory index go before the rebuild so a
	// failed build cannot keep serving the evicted state. The persisted
	// index survives until the build commits, so a failure here still
	// leaves the previous index restorable.
	s.evict(subject.Name)
	s.index.Invalidate(subject.Name)

	summary, err := s.index.Build(ctx, subject.Name, doc, chunks)
	if err != nil {
		return nil, err
	}

	manifest, err := s.index.Status(ctx, subject.Name)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pipelines[subject.Name] = &pipeline{subject: subject, manifest: manifest}
	s.mu.Unlock()

	s.logger.Info().
		Str("subject", subject.Name).
		Str("document", doc.Name).
		Int("pages", summary.PageCount).
		Int("chunks", summary.ChunkCount).
		Dur("duration", summary.Duration).
		Msg("Subject ingested")

	return summary, nil
}

// ensurePipeline returns the subject's cached pipeline, restoring it from
// the persisted index when none is cached. A subject with no completed
// index yields models.ErrIndexNotBuilt; there is no silent empty pipeline.
func (s *Service) ensurePipeline(ctx context.Context, subject *models.Subject) (*pipeline, error) {
	if pl := s.cached(subject.Name); pl != nil {
		return pl, nil
	}

	lock := s.subjectLock(subject.Name)
	lock.Lock()
	defer lock.Unlock()

	// Another caller may have restored it while we waited for the lock
	if pl := s.cached(subject.Name); pl != nil {
		return pl, nil
	}

	if err := s.index.Open(ctx, subject.Name); err != nil {
		return nil, err
	}

	manifest, err := s.index.Status(ctx, subject.Name)
	if err != nil {
		return nil, err
	}

	pl := &pipeline{subject: subject, manifest: manifest}

	s.mu.Lock()
	s.pipelines[subject.Name] = pl
	s.mu.Unlock()

	s.logger.Info().
		Str("subject", subject.Name).
		Str("document", manifest.DocumentName).
		Int("chunks", manifest.ChunkCount).
		Msg("Pipeline restored from persisted index")

	return pl, nil
}

func (s *Service) cached(name string) *pipeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pipelines[name]
}

func (s *Service) evict(name string) {
	s.mu.Lock()
	delete(s.pipelines, name)
	s.mu.Unlock()
}

// subjectLock returns the per-subject mutex that serializes rebuilds,
// restores, and purges for one subject.
func (s *Service) subjectLock(name string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[name]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[name] = lock
	}
	return lock
}

// -----------------------------------------------------------------------
// Scheduler Service - Cron-driven maintenance jobs over the local stores
// -----------------------------------------------------------------------

package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/common"
	"github.com/ternarybob/doceo/internal/interfaces"
)

// jobEntry tracks one registered job and its last outcome
type jobEntry struct {
	name      string
	schedule  string
	handler   func() error
	cronID    cron.EntryID
	lastRun   *time.Time
	isRunning bool
	lastError string
}

// Service implements interfaces.SchedulerService
type Service struct {
	cron     *cron.Cron
	logger   arbor.ILogger
	jobMu    sync.Mutex // protects jobs map and entry state
	globalMu sync.Mutex // prevents concurrent job execution
	jobs     map[string]*jobEntry
	running  bool
}

// Compile-time interface assertion
var _ interfaces.SchedulerService = (*Service)(nil)

// NewService creates a new scheduler service
func NewService(logger arbor.ILogger) *Service {
	return &Service{
		cron:   cron.New(),
		logger: logger,
		jobs:   make(map[string]*jobEntry),
	}
}

// RegisterJob adds a named job with a cron schedule. Jobs are expected to
// be registered before Start.
func (s *Service) RegisterJob(name, schedule string, handler func() error) error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %s already registered", name)
	}

	cronID, err := s.cron.AddFunc(schedule, func() {
		s.executeJob(name)
	})
	if err != nil {
		return fmt.Errorf("failed to add job to cron: %w", err)
	}

	s.jobs[name] = &jobEntry{
		name:     name,
		schedule: schedule,
		handler:  handler,
		cronID:   cronID,
	}

	s.logger.Info().
		Str("job_name", name).
		Str("schedule", schedule).
		Msg("Job registered")

	return nil
}

// Start begins running registered jobs on their schedules.
func (s *Service) Start() error {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler already running")
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().Int("jobs", len(s.jobs)).Msg("Scheduler started")
	return nil
}

// Stop halts the scheduler and waits for any job in flight. Callers close
// the stores right after Stop, so a half-finished GC pass must not outlive
// this call.
func (s *Service) Stop() error {
	s.jobMu.Lock()
	if !s.running {
		s.jobMu.Unlock()
		return nil
	}
	s.running = false
	s.jobMu.Unlock()

	<-s.cron.Stop().Done()

	s.logger.Info().Msg("Scheduler stopped")
	return nil
}

// IsRunning returns true while the scheduler is active.
func (s *Service) IsRunning() bool {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()
	return s.running
}

// JobStatuses returns the state of every registered job, sorted by name.
func (s *Service) JobStatuses() []interfaces.JobStatus {
	s.jobMu.Lock()
	defer s.jobMu.Unlock()

	nextByID := make(map[cron.EntryID]time.Time)
	for _, entry := range s.cron.Entries() {
		nextByID[entry.ID] = entry.Next
	}

	statuses := make([]interfaces.JobStatus, 0, len(s.jobs))
	for _, entry := range s.jobs {
		status := interfaces.JobStatus{
			Name:      entry.name,
			Schedule:  entry.schedule,
			LastRun:   entry.lastRun,
			IsRunning: entry.isRunning,
			LastError: entry.lastError,
		}
		if next, ok := nextByID[entry.cronID]; ok && !next.IsZero() {
			nextRun := next
			status.NextRun = &nextRun
		}
		statuses = append(statuses, status)
	}

	sort.Slice(statuses, func(i, j int) bool {
		return statuses[i].Name < statuses[j].Name
	})
	return statuses
}

// executeJob wraps job execution with panic recovery and status tracking.
func (s *Service) executeJob(name string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().
				Str("job_name", name).
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("PANIC RECOVERED in job execution")
			common.WriteCrashFile(r, common.GetStackTrace())

			s.jobMu.Lock()
			if entry, exists := s.jobs[name]; exists {
				entry.isRunning = false
				entry.lastError = fmt.Sprintf("panic: %v", r)
			}
			s.jobMu.Unlock()
		}
	}()

	// Maintenance jobs touch the same stores; never run two at once
	s.globalMu.Lock()
	defer s.globalMu.Unlock()

	s.jobMu.Lock()
	entry, exists := s.jobs[name]
	if !exists {
		s.jobMu.Unlock()
		s.logger.Warn().Str("job_name", name).Msg("Job not found")
		return
	}
	entry.isRunning = true
	handler := entry.handler
	s.jobMu.Unlock()

	start := time.Now()
	err := handler()
	completed := time.Now()

	s.jobMu.Lock()
	entry.isRunning = false
	entry.lastRun = &completed
	if err != nil {
		entry.lastError = err.Error()
	} else {
		entry.lastError = ""
	}
	s.jobMu.Unlock()

	if err != nil {
		s.logger.Error().
			Str("job_name", name).
			Err(err).
			Dur("duration", time.Since(start)).
			Msg("❌ Job execution failed")
		return
	}

	s.logger.Info().
		Str("job_name", name).
		Dur("duration", time.Since(start)).
		Msg("✅ Job execution completed successfully")
}

package interfaces

import "time"

// JobStatus describes one registered maintenance job.
type JobStatus struct {
	Name      string     `json:"name"`
	Schedule  string     `json:"schedule"`
	LastRun   *time.Time `json:"last_run,omitempty"`
	NextRun   *time.Time `json:"next_run,omitempty"`
	IsRunning bool       `json:"is_running"`
	LastError string     `json:"last_error,omitempty"`
}

// SchedulerService runs registered maintenance jobs on cron schedules.
// Jobs are registered before Start; execution is serialized so jobs never
// overlap.
type SchedulerService interface {
	// RegisterJob adds a named job with a cron schedule
	RegisterJob(name, schedule string, handler func() error) error

	// Start begins running registered jobs
	Start() error

	// Stop halts the scheduler
	Stop() error

	// IsRunning returns true while the scheduler is active
	IsRunning() bool

	// JobStatuses returns the state of every registered job
	JobStatuses() []JobStatus
}

package workers

import (
	"context"
	"fmt"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/doceo/internal/common"
)

// Job is one unit of work run by the pool.
type Job func(ctx context.Context) error

// Pool runs jobs on a bounded set of workers sharing one parent context.
// A pool is single-use: Start, Submit the whole batch, then Wait exactly
// once. Job errors are collected rather than aborting the batch; callers
// that need ordered results have each job write into its own preallocated
// slot.
type Pool struct {
	jobs       chan Job
	maxWorkers int
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	errorsMu   sync.Mutex
	errors     []error
	logger     arbor.ILogger
}

// NewPool creates a pool of maxWorkers workers bound to the parent context.
// Cancelling the parent stops the workers; queued jobs that have not
// started are skipped.
func NewPool(ctx context.Context, maxWorkers int, logger arbor.ILogger) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 4
	}

	poolCtx, cancel := context.WithCancel(ctx)

	return &Pool{
		jobs:       make(chan Job, maxWorkers*2),
		maxWorkers: maxWorkers,
		ctx:        poolCtx,
		cancel:     cancel,
		logger:     logger,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	p.logger.Debug().
		Int("max_workers", p.maxWorkers).
		Msg("Starting worker pool")

	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit queues one job. Fails once the pool context is cancelled.
func (p *Pool) Submit(job Job) error {
	select {
	case p.jobs <- job:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// Wait closes the queue and blocks until every started job has finished.
func (p *Pool) Wait() {
	close(p.jobs)
	p.wg.Wait()
	p.cancel()
}

// Errors returns the errors collected from failed jobs.
func (p *Pool) Errors() []error {
	p.errorsMu.Lock()
	defer p.errorsMu.Unlock()
	return p.errors
}

// worker drains the job queue until it closes or the context ends.
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}

			if err := p.run(job); err != nil {
				p.errorsMu.Lock()
				p.errors = append(p.errors, err)
				p.errorsMu.Unlock()

				p.logger.Warn().
					Err(err).
					Int("worker_id", id).
					Msg("Job failed")
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// run executes one job, converting a panic into a collected error so a
// single bad job cannot take down the whole batch. The crash file keeps
// the stack for post-mortem analysis.
func (p *Pool) run(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stackTrace := common.GetStackTrace()
			p.logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("PANIC RECOVERED in worker job")
			common.WriteCrashFile(r, stackTrace)
			err = fmt.Errorf("job panicked: %v", r)
		}
	}()
	return job(p.ctx)
}

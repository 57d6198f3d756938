// Package maintenance runs wsadmin's periodic background jobs.
package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"wsadmin/internal/config"
)

// Job is a task executed periodically by the Scheduler.
type Job struct {
	// ID is a unique identifier for the job
	ID string

	// Interval is how often the job should run
	Interval time.Duration

	// Task is the function to execute
	Task func(context.Context) error

	ticker  *time.Ticker
	cancel  context.CancelFunc
	running bool
}

// Scheduler runs jobs on their own tickers, bounding concurrent executions
// with a worker pool and retrying failures with linear backoff.
type Scheduler struct {
	config config.MaintenanceConfig

	// retryDelay is the backoff unit; attempt n waits n*retryDelay.
	retryDelay time.Duration

	jobs   map[string]*Job
	jobsMu sync.Mutex

	workers chan struct{}

	running bool
	mu      sync.RWMutex
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewScheduler creates a scheduler with the given configuration.
func NewScheduler(cfg config.MaintenanceConfig) *Scheduler {
	return &Scheduler{
		config:     cfg,
		retryDelay: time.Second,
		jobs:       make(map[string]*Job),
		workers:    make(chan struct{}, cfg.WorkerCount),
	}
}

// Start initializes the worker pool. Jobs run until ctx is cancelled or Stop
// is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("scheduler is already running")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)

	for i := 0; i < s.config.WorkerCount; i++ {
		s.workers <- struct{}{}
	}

	s.running = true
	log.Info().Int("worker_count", s.config.WorkerCount).Msg("Maintenance scheduler started")

	return nil
}

// Stop cancels every job and waits for running executions to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}

	log.Info().Msg("Stopping maintenance scheduler")

	s.cancel()

	s.jobsMu.Lock()
	for _, job := range s.jobs {
		s.stopJobLocked(job)
	}
	s.jobs = make(map[string]*Job)
	s.jobsMu.Unlock()

	s.wg.Wait()

	// Drain the pool so a later Start refills it from empty.
	for len(s.workers) > 0 {
		<-s.workers
	}

	s.running = false
	log.Info().Msg("Maintenance scheduler stopped")
}

// AddJob schedules job and runs it once immediately.
func (s *Scheduler) AddJob(job *Job) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.running {
		return fmt.Errorf("scheduler is not running")
	}

	if job.Interval <= 0 {
		return fmt.Errorf("job %s interval must be greater than 0", job.ID)
	}

	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return fmt.Errorf("job with ID %s already exists", job.ID)
	}

	s.startJobLocked(job)
	s.jobs[job.ID] = job

	log.Debug().Str("job_id", job.ID).Dur("interval", job.Interval).Msg("Job added")
	return nil
}

// RemoveJob stops and forgets a job.
func (s *Scheduler) RemoveJob(jobID string) error {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()

	job, exists := s.jobs[jobID]
	if !exists {
		return fmt.Errorf("job with ID %s not found", jobID)
	}

	s.stopJobLocked(job)
	delete(s.jobs, jobID)

	log.Debug().Str("job_id", jobID).Msg("Job removed")
	return nil
}

// JobCount returns the number of scheduled jobs.
func (s *Scheduler) JobCount() int {
	s.jobsMu.Lock()
	defer s.jobsMu.Unlock()
	return len(s.jobs)
}

// IsRunning reports whether the scheduler has been started and not stopped.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// startJobLocked must be called with jobsMu held.
func (s *Scheduler) startJobLocked(job *Job) {
	jobCtx, cancel := context.WithCancel(s.ctx)
	job.cancel = cancel
	job.ticker = time.NewTicker(job.Interval)
	job.running = true

	s.wg.Add(1)
	go s.runJob(jobCtx, job)
}

// stopJobLocked must be called with jobsMu held.
func (s *Scheduler) stopJobLocked(job *Job) {
	if !job.running {
		return
	}
	job.cancel()
	job.ticker.Stop()
	job.running = false
}

func (s *Scheduler) runJob(ctx context.Context, job *Job) {
	defer s.wg.Done()

	log.Debug().Str("job_id", job.ID).Msg("Job started")

	s.execute(ctx, job)

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("job_id", job.ID).Msg("Job stopped")
			return
		case <-job.ticker.C:
			s.execute(ctx, job)
		}
	}
}

// execute runs one job execution on a pooled worker. When every worker is
// busy the tick is skipped.
func (s *Scheduler) execute(ctx context.Context, job *Job) {
	select {
	case <-s.workers:
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer func() { s.workers <- struct{}{} }()

			s.executeWithRetry(ctx, job)
		}()
	default:
		log.Warn().Str("job_id", job.ID).Msg("No workers available, skipping job execution")
	}
}

func (s *Scheduler) executeWithRetry(ctx context.Context, job *Job) {
	maxRetries := s.config.MaxRetries

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return
		}

		err := job.Task(ctx)
		if err == nil {
			if attempt > 0 {
				log.Info().Str("job_id", job.ID).Int("attempt", attempt+1).Msg("Job succeeded after retry")
			}
			return
		}

		if attempt == maxRetries {
			log.Error().Str("job_id", job.ID).Int("attempts", attempt+1).Err(err).Msg("Job failed after all retries")
			return
		}

		log.Warn().Str("job_id", job.ID).Int("attempt", attempt+1).Err(err).Msg("Job failed, retrying")

		select {
		case <-ctx.Done():
			return
		case <-time.After(time.Duration(attempt+1) * s.retryDelay):
		}
	}
}

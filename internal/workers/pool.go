// Package workers provides a worker pool implementation for concurrent
// operations in netrecon. It supports job queuing, rate limiting, graceful
// shutdown, and integrates with the structured logging and metrics systems.
package workers

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/netrecon/netrecon/internal/errors"
	"github.com/netrecon/netrecon/internal/logging"
	"github.com/netrecon/netrecon/internal/metrics"
)

// Job represents a unit of work to be executed by a worker.
type Job interface {
	// Execute performs the job and returns an error if it fails.
	Execute(ctx context.Context) error
	// ID returns a unique identifier for the job.
	ID() string
	// Type returns the job type for metrics and logging.
	Type() string
}

// Result represents the result of executing a job.
type Result struct {
	JobID    string
	JobType  string
	Error    error
	Duration time.Duration
}

// Config holds configuration for the worker pool.
type Config struct {
	// Size is the number of worker goroutines to create.
	Size int
	// QueueSize is the maximum number of jobs that can be queued.
	QueueSize int
	// ShutdownTimeout is the maximum time to wait for workers to finish.
	ShutdownTimeout time.Duration
	// RateLimit is the maximum number of jobs per second (0 = no limit).
	RateLimit int
}

// DefaultConfig returns a default worker pool configuration.
func DefaultConfig() Config {
	return Config{
		Size:            10,
		QueueSize:       100,
		ShutdownTimeout: 30 * time.Second,
		RateLimit:       0,
	}
}

// Pool manages a pool of worker goroutines for concurrent job execution.
// Jobs are executed at most once; probes that fail are simply classified,
// never retried.
type Pool struct {
	config          Config
	jobs            chan Job
	results         chan Result
	externalResults chan Result
	workers         []*worker
	wg              sync.WaitGroup
	ctx             context.Context
	cancel          context.CancelFunc
	shutdown        chan struct{}
	done            chan struct{}
	rateLimiter     *time.Ticker
	startOnce       sync.Once
	closeOnce       sync.Once
	shutdown32      int32 // atomic shutdown flag
}

// worker represents a single worker goroutine.
type worker struct {
	id   int
	pool *Pool
}

// New creates a new worker pool with the given configuration.
func New(config Config) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	pool := &Pool{
		config:          config,
		jobs:            make(chan Job, config.QueueSize),
		results:         make(chan Result, config.QueueSize),
		externalResults: make(chan Result, config.QueueSize),
		workers:         make([]*worker, config.Size),
		ctx:             ctx,
		cancel:          cancel,
		shutdown:        make(chan struct{}),
		done:            make(chan struct{}),
	}

	if config.RateLimit > 0 {
		interval := time.Second / time.Duration(config.RateLimit)
		pool.rateLimiter = time.NewTicker(interval)
	}

	for i := 0; i < config.Size; i++ {
		pool.workers[i] = &worker{
			id:   i,
			pool: pool,
		}
	}

	return pool
}

// Start begins the worker pool operations.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		logging.Info("Starting worker pool",
			"worker_count", p.config.Size,
			"queue_size", p.config.QueueSize,
			"rate_limit", p.config.RateLimit)

		for _, w := range p.workers {
			p.wg.Add(1)
			go w.run()
		}

		go p.processResults()

		metrics.Gauge("worker_pool_size", float64(p.config.Size), metrics.Labels{
			metrics.LabelComponent: "workers",
		})
	})
}

// Submit adds a job to the worker pool queue. It blocks while the queue is
// full so callers can enqueue more jobs than the queue holds.
func (p *Pool) Submit(job Job) error {
	if atomic.LoadInt32(&p.shutdown32) == 1 {
		return fmt.Errorf("worker pool is shut down")
	}

	select {
	case p.jobs <- job:
		metrics.Counter("jobs_submitted_total", metrics.Labels{
			"job_type": job.Type(),
		})
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	}
}

// TrySubmit adds a job without blocking; it fails when the queue is full.
func (p *Pool) TrySubmit(job Job) error {
	if atomic.LoadInt32(&p.shutdown32) == 1 {
		return fmt.Errorf("worker pool is shut down")
	}

	select {
	case p.jobs <- job:
		metrics.Counter("jobs_submitted_total", metrics.Labels{
			"job_type": job.Type(),
		})
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool is shutting down")
	default:
		return fmt.Errorf("job queue is full")
	}
}

// Results returns a channel for receiving job results.
func (p *Pool) Results() <-chan Result {
	return p.externalResults
}

// Shutdown gracefully shuts down the worker pool. When workers do not drain
// within ShutdownTimeout they are force-terminated and a TIMEOUT-coded error
// is returned.
func (p *Pool) Shutdown() error {
	if !atomic.CompareAndSwapInt32(&p.shutdown32, 0, 1) {
		return nil
	}

	logging.Info("Shutting down worker pool")

	// Stop accepting new submissions before draining.
	close(p.shutdown)
	close(p.jobs)

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	var shutdownErr error
	select {
	case <-done:
		logging.Info("Worker pool shutdown completed")
	case <-time.After(p.config.ShutdownTimeout):
		logging.Warn("Worker pool shutdown timeout, forcing termination")
		shutdownErr = errors.NewScanError(errors.CodeTimeout, "worker pool shutdown timed out")
		p.cancel()
		<-done
	}

	p.cancel()

	// Give processResults a moment to exit cleanly.
	time.Sleep(10 * time.Millisecond)

	close(p.results)
	close(p.externalResults)

	if p.rateLimiter != nil {
		p.rateLimiter.Stop()
	}

	return shutdownErr
}

// Wait blocks until the pool has fully shut down.
func (p *Pool) Wait() {
	<-p.done
}

func (w *worker) run() {
	defer w.pool.wg.Done()

	logging.Debug("Worker started", "worker_id", w.id)
	defer logging.Debug("Worker stopped", "worker_id", w.id)

	for {
		select {
		case job, ok := <-w.pool.jobs:
			if !ok {
				return
			}
			w.executeJob(job)

		case <-w.pool.ctx.Done():
			return
		}
	}
}

// executeJob runs a single job exactly once and records the outcome.
func (w *worker) executeJob(job Job) {
	jobTimer := metrics.NewTimer("job_duration_seconds", metrics.Labels{
		"job_type": job.Type(),
	})
	defer jobTimer.Stop()

	if w.pool.rateLimiter != nil {
		select {
		case <-w.pool.rateLimiter.C:
		case <-w.pool.ctx.Done():
			return
		}
	}

	start := time.Now()

	jobCtx, cancel := context.WithCancel(w.pool.ctx)
	err := job.Execute(jobCtx)
	cancel()

	duration := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.Counter("jobs_completed_total", metrics.Labels{
		"job_type": job.Type(),
		"status":   status,
	})

	if err != nil {
		logging.Debug("Job failed",
			"job_id", job.ID(),
			"job_type", job.Type(),
			"duration", duration,
			"worker_id", w.id,
			"error", err)
	}

	select {
	case w.pool.results <- Result{
		JobID:    job.ID(),
		JobType:  job.Type(),
		Error:    err,
		Duration: duration,
	}:
	case <-w.pool.ctx.Done():
	}
}

// processResults fans job results out to external consumers.
func (p *Pool) processResults() {
	defer p.closeOnce.Do(func() {
		close(p.done)
	})

	for {
		select {
		case result, ok := <-p.results:
			if !ok {
				return
			}

			select {
			case p.externalResults <- result:
			case <-p.ctx.Done():
				return
			default:
				// External consumer not reading, continue with metrics.
			}

			if result.Error != nil {
				metrics.Counter("job_errors_total", metrics.Labels{
					"job_type": result.JobType,
				})
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// HostJob implements Job for per-host scan operations.
type HostJob struct {
	id       string
	host     string
	executor func(ctx context.Context, host string) error
}

// NewHostJob creates a job that runs executor against a single host.
func NewHostJob(id, host string, executor func(ctx context.Context, host string) error) *HostJob {
	return &HostJob{
		id:       id,
		host:     host,
		executor: executor,
	}
}

// Execute implements the Job interface.
func (j *HostJob) Execute(ctx context.Context) error {
	return j.executor(ctx, j.host)
}

// ID implements the Job interface.
func (j *HostJob) ID() string {
	return j.id
}

// Type implements the Job interface.
func (j *HostJob) Type() string {
	return "host_scan"
}

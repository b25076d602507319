package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tokscraper/pkg/config"
	"tokscraper/pkg/logger"
)

// Runner executes a single acquisition job. Implementations own whatever
// session state the job needs; the pool never shares one runner between
// workers.
type Runner interface {
	Run(ctx context.Context, job Job) (file string, rows int, err error)
	Close() error
}

// RunnerFactory builds the runner for one worker. Browser-backed runners
// are expensive to start, so the factory runs once per worker, not per job.
type RunnerFactory func(ctx context.Context, workerID int) (Runner, error)

// Pool fans independent jobs out over a fixed set of workers. Each worker
// drives its own Runner, so acquisition sessions never interleave on a
// single browser context.
type Pool struct {
	workers int
	jobs    chan Job
	results chan Result
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
	factory RunnerFactory
	logger  logger.Logger
}

// NewPool sizes the pool from cfg.Batch. The context bounds the whole run:
// once it is cancelled, queued jobs come back as failed results instead of
// running.
func NewPool(ctx context.Context, cfg *config.Config, factory RunnerFactory, log logger.Logger) *Pool {
	if log == nil {
		log = logger.GetLogger()
	}

	workers := cfg.Batch.Workers
	if workers < 1 {
		workers = 1
	}
	queue := cfg.Batch.QueueSize
	if queue < 1 {
		queue = workers * 2
	}

	poolCtx, cancel := context.WithCancel(ctx)
	return &Pool{
		workers: workers,
		jobs:    make(chan Job, queue),
		results: make(chan Result, workers*2),
		ctx:     poolCtx,
		cancel:  cancel,
		factory: factory,
		logger:  log,
	}
}

// Start launches the workers.
func (p *Pool) Start() {
	p.logger.InfoWithFields("Starting batch pool", map[string]interface{}{
		"workers": p.workers,
	})
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit queues one job. It blocks while the queue is full and fails once
// the run context is done.
func (p *Pool) Submit(job Job) error {
	select {
	case p.jobs <- job:
		p.logger.DebugWithFields("Job queued", map[string]interface{}{
			"kind":   job.Kind,
			"target": job.Target,
		})
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("batch pool is shutting down")
	}
}

// Results returns the channel results arrive on. Consume it concurrently
// with submission; Stop closes it once every submitted job has produced a
// result.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Stop closes the queue, waits for in-flight jobs, then closes Results.
func (p *Pool) Stop() {
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
	p.cancel()
	p.logger.Info("Batch pool stopped")
}

// QueueDepth reports jobs waiting for a worker.
func (p *Pool) QueueDepth() int {
	return len(p.jobs)
}

// Workers reports the pool size.
func (p *Pool) Workers() int {
	return p.workers
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	log := p.logger.WithField("worker_id", id)

	runner, err := p.factory(p.ctx, id)
	if err != nil {
		log.WithError(err).Error("Worker could not build its runner, failing its share of jobs")
		for job := range p.jobs {
			p.results <- Result{Job: job, Err: fmt.Errorf("worker %d unavailable: %w", id, err)}
		}
		return
	}
	defer func() {
		if cerr := runner.Close(); cerr != nil {
			log.WithError(cerr).Warn("Runner close failed")
		}
	}()

	log.Debug("Worker started")
	for job := range p.jobs {
		// A cancelled run still answers every queued job, so consumers
		// counting results never hang.
		if err := p.ctx.Err(); err != nil {
			p.results <- Result{Job: job, Err: err}
			continue
		}
		p.results <- p.process(runner, job, log)
	}
	log.Debug("Worker stopping, queue closed")
}

func (p *Pool) process(runner Runner, job Job, log logger.Logger) Result {
	start := time.Now()
	file, rows, err := runner.Run(p.ctx, job)
	res := Result{
		Job:      job,
		File:     file,
		Rows:     rows,
		Err:      err,
		Duration: time.Since(start),
	}

	if err != nil {
		log.ErrorWithFields("Job failed", map[string]interface{}{
			"kind":     job.Kind,
			"target":   job.Target,
			"error":    err.Error(),
			"duration": res.Duration,
		})
		return res
	}

	log.InfoWithFields("Job finished", map[string]interface{}{
		"kind":     job.Kind,
		"target":   job.Target,
		"rows":     rows,
		"duration": res.Duration,
	})
	return res
}

// Package worker runs analysis computations off the request path. The pool
// bounds both the number of concurrent jobs and the queue depth, replacing
// unbounded fire-and-forget goroutines.
package worker

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

var (
	ErrQueueFull = errors.New("job queue is full")
	ErrStopped   = errors.New("worker pool is stopped")
)

// Job is a unit of background work. The context is cancelled when the pool
// shuts down without draining.
type Job func(ctx context.Context)

type Pool struct {
	jobs   chan Job
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.SugaredLogger

	mu      sync.Mutex
	stopped bool

	workers int
}

func NewPool(workers, queueSize int, log *zap.SugaredLogger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		jobs:    make(chan Job, queueSize),
		ctx:     ctx,
		cancel:  cancel,
		log:     log,
		workers: workers,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
}

func (p *Pool) run(id int) {
	defer p.wg.Done()
	for job := range p.jobs {
		p.execute(id, job)
	}
}

func (p *Pool) execute(id int, job Job) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorw("job panicked", "worker", id, "panic", r)
		}
	}()
	job(p.ctx)
}

// Enqueue submits a job without blocking. It fails when the queue is full or
// the pool has stopped.
func (p *Pool) Enqueue(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		return ErrStopped
	}
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop refuses new work, drains queued and in-flight jobs, then cancels the
// pool context. It blocks until every worker has exited.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}

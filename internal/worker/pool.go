// Package worker provides the concurrency primitives shared by the
// source adapters, the collector, and the citation link checker.
package worker

import (
	"context"
	"sync"
)

// Job is one unit of concurrent work.
type Job interface {
	Execute(ctx context.Context) Result
}

// Result is what a job hands back when it finishes.
type Result interface {
	GetError() error
}

// Pool fans jobs out over a fixed number of goroutines. Results come
// back in completion order; callers needing input order carry an index
// in their Result.
type Pool struct {
	workers int
	jobs    chan Job
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	mu      sync.Mutex
	results []Result
}

func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		workers: workers,
		jobs:    make(chan Job, workers),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run()
	}
}

func (p *Pool) run() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			res := job.Execute(p.ctx)
			p.mu.Lock()
			p.results = append(p.results, res)
			p.mu.Unlock()
		}
	}
}

// Submit queues a job. It blocks while all workers are busy and the
// queue is full, and drops the job after Shutdown.
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
	case p.jobs <- job:
	}
}

// Wait closes the queue, lets the workers drain it, and returns every
// collected result.
func (p *Pool) Wait() []Result {
	close(p.jobs)
	p.wg.Wait()
	p.cancel()
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.results
}

// Shutdown cancels in-flight work without draining the queue.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}

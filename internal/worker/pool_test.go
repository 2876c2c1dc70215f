package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countResult struct {
	err error
}

func (r *countResult) GetError() error { return r.err }

type countJob struct {
	executed *int32
	fail     bool
	delay    time.Duration
}

func (j *countJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.delay > 0 {
		select {
		case <-time.After(j.delay):
		case <-ctx.Done():
			return &countResult{err: ctx.Err()}
		}
	}
	if j.fail {
		return &countResult{err: errors.New("check failed")}
	}
	return &countResult{}
}

func TestNewPool_WorkerFloor(t *testing.T) {
	for _, n := range []int{0, -3} {
		if p := NewPool(n); p.workers != 1 {
			t.Errorf("NewPool(%d).workers = %d, want 1", n, p.workers)
		}
	}
	if p := NewPool(8); p.workers != 8 {
		t.Errorf("NewPool(8).workers = %d", p.workers)
	}
}

func TestPool_RunsEveryJob(t *testing.T) {
	pool := NewPool(3)
	pool.Start()

	var executed int32
	const jobs = 25
	for i := 0; i < jobs; i++ {
		pool.Submit(&countJob{executed: &executed})
	}

	results := pool.Wait()
	if len(results) != jobs {
		t.Errorf("got %d results, want %d", len(results), jobs)
	}
	if n := atomic.LoadInt32(&executed); n != jobs {
		t.Errorf("executed %d jobs, want %d", n, jobs)
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const workers = 4
	pool := NewPool(workers)
	pool.Start()

	var inFlight, peak int32
	for i := 0; i < 20; i++ {
		pool.Submit(&trackJob{inFlight: &inFlight, peak: &peak})
	}
	pool.Wait()

	if p := atomic.LoadInt32(&peak); p > workers {
		t.Errorf("peak concurrency %d exceeded %d workers", p, workers)
	}
}

type trackJob struct {
	inFlight *int32
	peak     *int32
}

func (j *trackJob) Execute(ctx context.Context) Result {
	cur := atomic.AddInt32(j.inFlight, 1)
	for {
		old := atomic.LoadInt32(j.peak)
		if cur <= old || atomic.CompareAndSwapInt32(j.peak, old, cur) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	atomic.AddInt32(j.inFlight, -1)
	return &countResult{}
}

func TestPool_CollectsFailures(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	pool.Submit(&countJob{fail: true})
	pool.Submit(&countJob{})

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	failures := 0
	for _, r := range results {
		if r.GetError() != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("got %d failed results, want 1", failures)
	}
}

func TestPool_SubmitAfterShutdownDoesNotBlock(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	pool.Shutdown()

	done := make(chan struct{})
	go func() {
		pool.Submit(&countJob{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked after Shutdown")
	}
}

func TestPool_ShutdownCancelsRunningJobs(t *testing.T) {
	pool := NewPool(1)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(&signalJob{started: started})
	<-started

	done := make(chan struct{})
	go func() {
		pool.Shutdown()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Shutdown did not return")
	}
}

type signalJob struct {
	started chan struct{}
}

func (j *signalJob) Execute(ctx context.Context) Result {
	close(j.started)
	<-ctx.Done()
	return &countResult{err: ctx.Err()}
}

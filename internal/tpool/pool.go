// Package tpool runs opaque tasks on a fixed set of worker goroutines
// consuming a shared FIFO queue. Submission order is not execution order
// across workers; tasks needing exclusivity must synchronize themselves.
package tpool

import (
	"fmt"
	"runtime"
	"sync"

	"github.com/google/uuid"
)

// MaxThreads caps the worker count regardless of CPU count.
const MaxThreads = 64

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

type task struct {
	id      string
	work    func(data any) // nil work is the poison task telling a worker to exit
	cleanup func(data any)
	data    any
}

// Pool is a fixed-size worker pool over a FIFO task queue.
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []task
	active  int // workers currently executing a task
	workers int
	logger  LoggerFunc
	wg      sync.WaitGroup
}

// New starts the pool. The worker count is max(1, min(MaxThreads, CPUs-1)),
// reserving one core for the interactive thread.
func New(logger LoggerFunc) *Pool {
	if logger == nil {
		logger = func(string) {}
	}
	n := runtime.NumCPU() - 1
	if n > MaxThreads {
		n = MaxThreads
	}
	if n < 1 {
		n = 1
	}
	p := &Pool{workers: n, logger: logger}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	logger(fmt.Sprintf("thread pool started with %d workers", n))
	return p
}

// ThreadCount returns the number of worker goroutines.
func (p *Pool) ThreadCount() int { return p.workers }

// AddTask enqueues a unit of work. Any idle worker executes work and then
// always runs cleanup, even when the task is abandoned by Cancel before it
// starts. Cleanup is the sole release mechanism for resources owned by data,
// and must never acquire locks that Cancel's caller may hold.
func (p *Pool) AddTask(work, cleanup func(data any), data any) {
	p.mu.Lock()
	p.queue = append(p.queue, task{
		id:      uuid.NewString(),
		work:    work,
		cleanup: cleanup,
		data:    data,
	})
	p.mu.Unlock()
	p.cond.Broadcast()
}

// Cancel drains the queue, invoking each pending task's cleanup without
// running its work. Tasks already executing are unaffected; cancellation of
// those is cooperative and up to the task itself.
func (p *Pool) Cancel() {
	p.mu.Lock()
	var pending, kept []task
	for _, t := range p.queue {
		if t.work == nil {
			kept = append(kept, t) // poison tasks belong to Close, never cancel
			continue
		}
		pending = append(pending, t)
	}
	p.queue = kept
	p.mu.Unlock()
	p.cond.Broadcast()
	for _, t := range pending {
		p.logger(fmt.Sprintf("task %s cancelled before start", t.id))
		if t.cleanup != nil {
			t.cleanup(t.data)
		}
	}
}

// Wait blocks until the queue is empty and no worker is executing. It is the
// idle barrier used before mutating state in-flight tasks might touch.
func (p *Pool) Wait() {
	p.mu.Lock()
	for len(p.queue) > 0 || p.active > 0 {
		p.cond.Wait()
	}
	p.mu.Unlock()
}

// Close shuts the pool down: one poison task per worker, then join. Pending
// real tasks still in the queue run first, poison tasks queue behind them.
func (p *Pool) Close() {
	p.mu.Lock()
	for i := 0; i < p.workers; i++ {
		p.queue = append(p.queue, task{id: uuid.NewString()})
	}
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
	p.logger("thread pool stopped")
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 {
			p.cond.Wait()
		}
		t := p.queue[0]
		p.queue = p.queue[1:]
		if t.work == nil {
			p.mu.Unlock()
			p.cond.Broadcast()
			return
		}
		p.active++
		p.mu.Unlock()

		t.work(t.data)
		if t.cleanup != nil {
			t.cleanup(t.data)
		}

		p.mu.Lock()
		p.active--
		p.mu.Unlock()
		p.cond.Broadcast()
	}
}

// Package worker provides a bounded goroutine pool for running tasks off
// the caller's goroutine.
package worker

import (
	"sync"
	"sync/atomic"

	"github.com/wirebus/wirebus/pkg/logger"
)

// Task is a unit of work executed by the pool.
type Task func()

// Pool manages a fixed set of goroutines for executing tasks.
type Pool struct {
	maxWorkers int
	taskCh     chan Task
	log        logger.Logger

	running  atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	tasksProcessed atomic.Int64
}

// Option configures a Pool.
type Option func(*Pool)

// WithLogger sets the pool logger.
func WithLogger(log logger.Logger) Option {
	return func(p *Pool) {
		p.log = log
	}
}

// NewPool creates a pool with the given number of workers.
func NewPool(maxWorkers int, opts ...Option) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	p := &Pool{
		maxWorkers: maxWorkers,
		taskCh:     make(chan Task),
		stopCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Global()
	}
	return p
}

// Start starts the worker goroutines.
func (p *Pool) Start() {
	if p.running.Load() {
		return
	}

	p.running.Store(true)

	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop gracefully stops the pool. It waits for all workers to finish
// their current tasks.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.running.Store(false)
		close(p.stopCh)
		p.wg.Wait()
	})
}

// Submit submits a task to the pool. It blocks until a worker is
// available or the pool is stopped.
func (p *Pool) Submit(task Task) {
	if !p.running.Load() {
		return
	}

	select {
	case p.taskCh <- task:
	case <-p.stopCh:
	}
}

// TrySubmit attempts to submit a task without blocking. It returns true
// if a worker accepted the task.
func (p *Pool) TrySubmit(task Task) bool {
	if !p.running.Load() {
		return false
	}

	select {
	case p.taskCh <- task:
		return true
	default:
		return false
	}
}

// worker is the main loop for each worker goroutine.
func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case task, ok := <-p.taskCh:
			if !ok {
				return
			}
			p.processTask(task)
		case <-p.stopCh:
			// Drain tasks already handed to the channel.
			for {
				select {
				case task := <-p.taskCh:
					p.processTask(task)
				default:
					return
				}
			}
		}
	}
}

// processTask runs a single task, recovering panics so a failing task
// cannot take down the worker.
func (p *Pool) processTask(task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("worker task panicked", "panic", r)
		}
	}()

	task()
	p.tasksProcessed.Add(1)
}

// TasksProcessed returns the total number of tasks processed.
func (p *Pool) TasksProcessed() int64 {
	return p.tasksProcessed.Load()
}

// IsRunning returns true if the pool is running.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}

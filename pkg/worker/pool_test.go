package worker

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestPool_StartStop(t *testing.T) {
	p := NewPool(2)

	if p.IsRunning() {
		t.Error("expected pool to not be running before Start")
	}

	p.Start()
	if !p.IsRunning() {
		t.Error("expected pool to be running after Start")
	}

	// Start is idempotent.
	p.Start()

	p.Stop()
	if p.IsRunning() {
		t.Error("expected pool to not be running after Stop")
	}

	// Stop is idempotent.
	p.Stop()
}

func TestPool_Submit(t *testing.T) {
	p := NewPool(4)
	p.Start()
	defer p.Stop()

	var wg sync.WaitGroup
	var count atomic.Int64

	for i := 0; i < 20; i++ {
		wg.Add(1)
		p.Submit(func() {
			defer wg.Done()
			count.Add(1)
		})
	}

	wg.Wait()
	if count.Load() != 20 {
		t.Errorf("expected 20 tasks executed, got %d", count.Load())
	}
	if p.TasksProcessed() != 20 {
		t.Errorf("expected 20 tasks processed, got %d", p.TasksProcessed())
	}
}

func TestPool_SubmitAfterStop(t *testing.T) {
	p := NewPool(1)
	p.Start()
	p.Stop()

	var called atomic.Bool
	p.Submit(func() { called.Store(true) })

	time.Sleep(50 * time.Millisecond)
	if called.Load() {
		t.Error("expected task submitted after Stop to be dropped")
	}
}

func TestPool_TrySubmit(t *testing.T) {
	p := NewPool(1)
	p.Start()
	defer p.Stop()

	block := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	p.Submit(func() {
		defer wg.Done()
		<-block
	})

	// The single worker is busy and nothing is draining the channel.
	if p.TrySubmit(func() {}) {
		t.Error("expected TrySubmit to fail while the only worker is busy")
	}

	close(block)
	wg.Wait()

	done := make(chan struct{})
	if !p.TrySubmit(func() { close(done) }) {
		// The worker may not have returned to the channel yet, retry once.
		time.Sleep(50 * time.Millisecond)
		if !p.TrySubmit(func() { close(done) }) {
			t.Fatal("expected TrySubmit to succeed with an idle worker")
		}
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("submitted task was not executed")
	}
}

func TestPool_PanicRecovery(t *testing.T) {
	p := NewPool(1)
	p.Start()
	defer p.Stop()

	var wg sync.WaitGroup
	wg.Add(1)
	p.Submit(func() {
		defer wg.Done()
		panic("boom")
	})
	wg.Wait()

	// The worker survives a panicking task.
	done := make(chan struct{})
	p.Submit(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not survive panicking task")
	}
}

func TestNewPool_MinimumWorkers(t *testing.T) {
	p := NewPool(0)
	if p.maxWorkers != 1 {
		t.Errorf("expected at least 1 worker, got %d", p.maxWorkers)
	}
}

package pool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestTrySubmitRunsTask(t *testing.T) {
	p := New(Config{Workers: 2, QueueCap: 4})
	defer p.Shutdown()

	var ran int32
	var wg sync.WaitGroup
	wg.Add(1)
	ok := p.TrySubmit(func() {
		atomic.AddInt32(&ran, 1)
		wg.Done()
	})
	if !ok {
		t.Fatalf("TrySubmit = false, want true")
	}
	wg.Wait()

	if got := atomic.LoadInt32(&ran); got != 1 {
		t.Errorf("ran = %d, want 1", got)
	}
}

func TestTrySubmitRejectsWhenSaturated(t *testing.T) {
	block := make(chan struct{})
	p := New(Config{Workers: 1, QueueCap: 1})
	defer func() {
		close(block)
		p.Shutdown()
	}()

	if !p.TrySubmit(func() { <-block }) {
		t.Fatalf("first TrySubmit = false, want true")
	}

	// Give the worker a chance to pick up the blocking task before we fill
	// the queue behind it.
	time.Sleep(20 * time.Millisecond)

	if !p.TrySubmit(func() { <-block }) {
		t.Fatalf("second TrySubmit = false, want true (queue slot free)")
	}

	if p.TrySubmit(func() {}) {
		t.Errorf("third TrySubmit = true, want false (pool saturated)")
	}

	stats := p.Snapshot()
	if stats.Rejected != 1 {
		t.Errorf("Rejected = %d, want 1", stats.Rejected)
	}
}

func TestShutdownDrainsQueue(t *testing.T) {
	p := New(Config{Workers: 2, QueueCap: 8})

	var completed int32
	for i := 0; i < 5; i++ {
		p.TrySubmit(func() { atomic.AddInt32(&completed, 1) })
	}
	p.Shutdown()

	if got := atomic.LoadInt32(&completed); got != 5 {
		t.Errorf("completed = %d, want 5", got)
	}
}

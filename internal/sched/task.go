package sched

import (
	"context"
	"sync"
	"time"
)

// Task runs a function at a fixed cadence until stopped.
type Task struct {
	name      string
	interval  time.Duration
	run       func(context.Context)
	immediate bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// TaskOption customizes a Task.
type TaskOption func(*Task)

// WithoutImmediateRun delays the first run by one interval.
func WithoutImmediateRun() TaskOption {
	return func(t *Task) { t.immediate = false }
}

// NewTask builds a stopped task. By default Start runs fn right away and then
// once per interval.
func NewTask(name string, interval time.Duration, fn func(context.Context), opts ...TaskOption) *Task {
	if interval <= 0 {
		interval = time.Second
	}
	t := &Task{
		name:      name,
		interval:  interval,
		run:       fn,
		immediate: true,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the task label used in logs.
func (t *Task) Name() string {
	return t.name
}

// Interval returns the cadence.
func (t *Task) Interval() time.Duration {
	return t.interval
}

// Start launches the loop. It is a no-op returning false when the task is
// already running.
func (t *Task) Start(ctx context.Context) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.done != nil {
		return false
	}

	loopCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	t.cancel = cancel
	t.done = done

	go t.loop(loopCtx, done)
	return true
}

// Stop cancels the loop and waits for an in-progress run to return.
// Stop must not be called from inside the task's own function.
func (t *Task) Stop() {
	t.mu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Running reports whether the loop is active.
func (t *Task) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.done != nil
}

func (t *Task) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		t.mu.Lock()
		if t.done == done {
			t.cancel()
			t.cancel, t.done = nil, nil
		}
		t.mu.Unlock()
		close(done)
	}()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	if t.immediate {
		t.run(ctx)
	}
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.run(ctx)
		}
	}
}

package view

import (
	"context"
	"fmt"
	"sync"
)

// Loop is a single-threaded event queue. Tasks run one at a time, in the
// order they were posted, and each runs to completion before the next
// starts. A task posted from inside a running task runs after every task
// already queued, which is the boundary a follow-up uses to observe the
// effects of a render pass.
//
// A Loop is driven either by Run or by Drain, never both at once.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped bool
}

// NewLoop creates an idle loop.
func NewLoop() *Loop {
	return &Loop{wake: make(chan struct{}, 1)}
}

// Post enqueues fn. It never blocks. Posting to a stopped loop is a no-op
// and reports false.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return false
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Call posts fn and waits for it to run. It is for callers outside the
// loop, such as HTTP handlers; calling it from a task deadlocks.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	if !l.Post(func() {
		defer close(done)
		fn()
	}) {
		return ErrLoopStopped
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("wait for task: %w", ctx.Err())
	}
}

// Drain runs queued tasks, including ones they post, until the queue is
// empty. It returns the number of tasks run.
func (l *Loop) Drain() int {
	ran := 0
	for {
		fn, ok := l.next()
		if !ok {
			return ran
		}
		fn()
		ran++
	}
}

// Run processes tasks until ctx is done, then stops the loop. Tasks still
// queued at that point are discarded.
func (l *Loop) Run(ctx context.Context) error {
	defer l.stop()
	for {
		l.Drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) stop() {
	l.mu.Lock()
	l.stopped = true
	l.queue = nil
	l.mu.Unlock()
}

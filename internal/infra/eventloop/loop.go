// Package eventloop provides a single-threaded task loop.
//
// Tasks may be posted from any goroutine; they always run one at a time, in
// posting order, on the goroutine that calls Run or Drain.
package eventloop

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrClosed is returned when posting to or running a closed loop.
var ErrClosed = errors.New("event loop closed")

// Loop is a FIFO task queue executed on a single goroutine.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	closed bool
}

// New creates a new loop.
func New() *Loop {
	return &Loop{
		queue: make([]func(), 0),
		wake:  make(chan struct{}, 1),
	}
}

// Post queues fn for execution. Posting to a closed loop is ignored.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued tasks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Drain runs queued tasks, including tasks they post, until the queue is
// empty. It returns the number of tasks run. Drain must not be called while
// Run is active on another goroutine.
func (l *Loop) Drain() int {
	n := 0
	for {
		fn, ok := l.next()
		if !ok {
			return n
		}
		fn()
		n++
	}
}

// Run executes tasks as they are posted until ctx is done or the loop is
// closed.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Drain()

		l.mu.Lock()
		closed := l.closed
		l.mu.Unlock()
		if closed {
			return ErrClosed
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Ready returns a channel that receives after tasks are posted. Callers
// driving the loop with Drain wait on it instead of calling Run.
func (l *Loop) Ready() <-chan struct{} {
	return l.wake
}

// Call posts fn and waits until it has run on the loop.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.mu.Unlock()

	l.Post(func() {
		defer close(done)
		fn()
	})

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close discards pending tasks and stops Run.
func (l *Loop) Close() {
	l.mu.Lock()
	l.closed = true
	l.queue = nil
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
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

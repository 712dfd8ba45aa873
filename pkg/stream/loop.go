// Package stream provides the serial event loop and the push-based streams
// that the component engine runs on.
package stream

import (
	"sync"
	"time"
)

// Loop is a serial task scheduler. Tasks are organized into turns: Post adds
// a task to the turn that is currently running (or starts a new one), while
// Defer adds a task to the turn after it. A turn ends when its queue is
// drained; the deferred queue is then promoted to become the next turn.
//
// The loop is fully serial: Run does not spawn any goroutines and never calls
// two tasks in parallel, so tasks may manipulate shared state without
// synchronization. Post and Defer may be called from any goroutine.
type Loop struct {
	wakeCh   chan struct{}
	returnCh chan error

	mu       sync.Mutex
	queue    []func()
	deferred []func()
}

// NewLoop creates a new Loop.
func NewLoop() *Loop {
	return &Loop{
		wakeCh:   make(chan struct{}, 1),
		returnCh: make(chan error, 1),
	}
}

// Post schedules f to run in the current turn. It never blocks.
func (lp *Loop) Post(f func()) {
	lp.mu.Lock()
	lp.queue = append(lp.queue, f)
	lp.mu.Unlock()
	lp.wake()
}

// Defer schedules f to run in the turn after the current one, i.e. after
// every task already scheduled with Post (including tasks they Post in turn)
// has run. It never blocks.
func (lp *Loop) Defer(f func()) {
	lp.mu.Lock()
	lp.deferred = append(lp.deferred, f)
	lp.mu.Unlock()
	lp.wake()
}

// After schedules f to run in a fresh turn once d has elapsed. With d <= 0 it
// is equivalent to Defer. The returned function cancels the timer; it is a
// best-effort cancel, so a task that has already been posted may still run.
func (lp *Loop) After(d time.Duration, f func()) func() {
	if d <= 0 {
		canceled := false
		lp.Defer(func() {
			if !canceled {
				f()
			}
		})
		return func() { canceled = true }
	}
	t := time.AfterFunc(d, func() { lp.Post(f) })
	return func() { t.Stop() }
}

// Return makes Run return err after the task that is currently running
// completes. If Return has been called before during the current run, it has
// no effect. It never blocks.
func (lp *Loop) Return(err error) {
	select {
	case lp.returnCh <- err:
	default:
	}
	lp.wake()
}

// Run runs tasks until the Return method is called, and returns Return's
// argument. The return request is honored between tasks, never mid-task.
func (lp *Loop) Run() error {
	for {
		select {
		case err := <-lp.returnCh:
			return err
		default:
		}
		f, ok := lp.next()
		if !ok {
			select {
			case err := <-lp.returnCh:
				return err
			case <-lp.wakeCh:
			}
			continue
		}
		f()
	}
}

// Stabilize runs tasks from the caller's goroutine until there is no runnable
// work left, then returns. Timers that have not fired yet do not count as
// runnable. It must not be called concurrently with Run; it exists for tests
// and single-shot embedding.
func (lp *Loop) Stabilize() {
	for {
		f, ok := lp.next()
		if !ok {
			return
		}
		f()
	}
}

func (lp *Loop) wake() {
	select {
	case lp.wakeCh <- struct{}{}:
	default:
	}
}

func (lp *Loop) next() (func(), bool) {
	lp.mu.Lock()
	defer lp.mu.Unlock()
	if len(lp.queue) == 0 {
		if len(lp.deferred) == 0 {
			return nil, false
		}
		lp.queue, lp.deferred = lp.deferred, nil
	}
	f := lp.queue[0]
	lp.queue = lp.queue[1:]
	return f, true
}

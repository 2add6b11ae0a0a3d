package x11

import (
	"errors"
	"sync"
)

// ErrLoopStopped is returned when work is handed to a loop that has exited.
var ErrLoopStopped = errors.New("event loop stopped")

// Loop serializes work onto the UI goroutine.
//
// Post hands a task over from any goroutine; it runs between two X event
// passes. Defer queues a task to run once the current event pass (and any
// task currently running) has finished, before the next X event is
// dispatched. Deferred tasks queued by a deferred task run in the same drain,
// after the ones already queued.
type Loop struct {
	mu    sync.Mutex
	idle  []func()
	tasks chan func()
	done  chan struct{}
}

// NewLoop creates an empty loop.
func NewLoop() *Loop {
	return &Loop{
		tasks: make(chan func(), 64),
		done:  make(chan struct{}),
	}
}

// Defer queues f to run after the current event-handling pass.
func (l *Loop) Defer(f func()) {
	if f == nil {
		return
	}
	l.mu.Lock()
	l.idle = append(l.idle, f)
	l.mu.Unlock()
}

// Post schedules f on the UI goroutine from any goroutine. It returns false
// when the loop has stopped.
func (l *Loop) Post(f func()) bool {
	if f == nil {
		return false
	}
	select {
	case <-l.done:
		return false
	default:
	}
	select {
	case l.tasks <- f:
		return true
	case <-l.done:
		return false
	}
}

// Call runs f on the UI goroutine and waits for it to finish. It must not be
// called from the UI goroutine itself.
func (l *Loop) Call(f func() error) error {
	errCh := make(chan error, 1)
	if !l.Post(func() { errCh <- f() }) {
		return ErrLoopStopped
	}
	select {
	case err := <-errCh:
		return err
	case <-l.done:
		// f may have been the task that stopped the loop.
		select {
		case err := <-errCh:
			return err
		default:
			return ErrLoopStopped
		}
	}
}

// Run drives the loop. before/after bracket each X event dispatched by the
// event goroutine (see xevent.MainPing); quit fires when it stops.
func (l *Loop) Run(before, after, quit <-chan struct{}) {
	defer close(l.done)
	for {
		select {
		case <-before:
			<-after
			l.drain()
		case f := <-l.tasks:
			f()
			l.drain()
		case <-quit:
			return
		}
	}
}

// drain runs deferred tasks until the queue is empty.
func (l *Loop) drain() {
	for {
		l.mu.Lock()
		pending := l.idle
		l.idle = nil
		l.mu.Unlock()

		if len(pending) == 0 {
			return
		}
		for _, f := range pending {
			f()
		}
	}
}

// Pending reports how many deferred tasks are waiting.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.idle)
}

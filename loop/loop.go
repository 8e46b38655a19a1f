// Package loop provides the single logical thread of the editor. The
// playback clock, the history and the editor model are not safe for
// concurrent use; timer callbacks, decode completions and user commands all
// reach them as tasks posted to one Loop.
package loop

import (
	"sync"
	"time"
)

// Loop runs posted tasks one at a time, in the order they were posted.
//
// For closing, Close can be called any number of times from any goroutine;
// Run returns after the task running at that moment completes. Finished is
// closed when Run has returned, so you can wait for the shutdown with a
// timeout:
//
//	select {
//	  case <-l.Finished():
//	  case <-time.After(3 * time.Second):
//	}
type Loop struct {
	tasks     chan func()
	close     chan struct{}
	finished  chan struct{}
	closeOnce sync.Once
}

func New() *Loop {
	return &Loop{
		tasks:    make(chan func(), 1024),
		close:    make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Post queues f to run on the loop. It blocks while the queue is full and
// drops f if the loop has been closed.
func (l *Loop) Post(f func()) {
	select {
	case l.tasks <- f:
	case <-l.close:
	}
}

// TryPost queues f without blocking and reports whether it was queued.
func (l *Loop) TryPost(f func()) bool {
	select {
	case <-l.close:
		return false
	default:
	}
	return TrySend(l.tasks, f)
}

// Call runs f on the loop and waits for it to complete. It returns false if
// the loop was closed before f could run.
func (l *Loop) Call(f func()) bool {
	done := make(chan struct{})
	l.Post(func() {
		f()
		close(done)
	})
	select {
	case <-done:
		return true
	case <-l.finished:
		return false
	}
}

// Run processes tasks until Close is called.
func (l *Loop) Run() {
	defer close(l.finished)
	for {
		select {
		case <-l.close:
			return
		case f := <-l.tasks:
			f()
		}
	}
}

func (l *Loop) Close() {
	l.closeOnce.Do(func() { close(l.close) })
}

func (l *Loop) Finished() <-chan struct{} {
	return l.finished
}

// TrySend is a helper function to send a value to a channel if it is not full.
// It is guaranteed to be non-blocking. Return true if the value was sent, false
// otherwise.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive is a helper function to block until a value is received from a
// channel, or timing out after t. ok will be false if the timeout occurred or
// if the channel is closed.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}

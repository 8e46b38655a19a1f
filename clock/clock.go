// Package clock abstracts the monotonic time source and the one-shot timers
// used by the debounced history, the autosaver and the playback frame loop,
// so that all of them can be driven by a manual Fake in tests.
package clock

import "time"

type (
	// Clock is a monotonic time source with one-shot timers. Now is measured
	// from an arbitrary origin and never goes backwards.
	Clock interface {
		Now() time.Duration
		AfterFunc(d time.Duration, f func()) Timer
	}

	// Timer is a pending AfterFunc callback. Stop reports whether the call
	// stopped the timer before it fired.
	Timer interface {
		Stop() bool
	}

	// System is a Clock on top of the runtime's monotonic clock. Timer
	// callbacks run on their own goroutine unless Dispatch is set, in which
	// case they are handed to Dispatch, typically loop.Loop.Post.
	System struct {
		origin   time.Time
		Dispatch func(func())
	}
)

// Real returns a System clock whose callbacks are delivered through dispatch.
// A nil dispatch runs them directly on the timer goroutine.
func Real(dispatch func(func())) *System {
	return &System{origin: time.Now(), Dispatch: dispatch}
}

func (s *System) Now() time.Duration {
	return time.Since(s.origin)
}

func (s *System) AfterFunc(d time.Duration, f func()) Timer {
	if s.Dispatch == nil {
		return time.AfterFunc(d, f)
	}
	dispatch := s.Dispatch
	return time.AfterFunc(d, func() { dispatch(f) })
}

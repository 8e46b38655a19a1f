package clock

import "time"

// Debouncer coalesces a burst of Trigger calls into a single call of fn,
// made Delay after the last trigger. Arming replaces any pending timer.
// Debouncer is not safe for concurrent use; with a System clock, give the
// clock a Dispatch function so that the firing happens on the caller's
// goroutine.
type Debouncer struct {
	Delay time.Duration

	clock Clock
	fn    func()
	timer Timer
	gen   int
}

func NewDebouncer(c Clock, delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{Delay: delay, clock: c, fn: fn}
}

// Trigger (re)arms the timer.
func (d *Debouncer) Trigger() {
	d.stop()
	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.Delay, func() {
		// a timer that was already queued for dispatch when it got replaced
		// must not fire
		if gen != d.gen || d.timer == nil {
			return
		}
		d.timer = nil
		d.fn()
	})
}

// Pending reports whether a call of fn is scheduled.
func (d *Debouncer) Pending() bool {
	return d.timer != nil
}

// Flush runs fn immediately if a call was pending. It reports whether fn was
// called.
func (d *Debouncer) Flush() bool {
	if d.timer == nil {
		return false
	}
	d.stop()
	d.fn()
	return true
}

// Cancel drops a pending call without running it.
func (d *Debouncer) Cancel() {
	d.stop()
}

func (d *Debouncer) stop() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

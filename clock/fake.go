package clock

import (
	"slices"
	"time"
)

type (
	// Fake is a manually advanced Clock. Timers fire synchronously inside
	// Advance, in deadline order, with Now set to their deadline. Fake is not
	// safe for concurrent use.
	Fake struct {
		now    time.Duration
		seq    int
		timers []*fakeTimer
	}

	fakeTimer struct {
		clock    *Fake
		deadline time.Duration
		seq      int
		f        func()
	}
)

func NewFake() *Fake {
	return &Fake{}
}

func (c *Fake) Now() time.Duration {
	return c.now
}

func (c *Fake) AfterFunc(d time.Duration, f func()) Timer {
	c.seq++
	t := &fakeTimer{clock: c, deadline: c.now + max(d, 0), seq: c.seq, f: f}
	c.timers = append(c.timers, t)
	return t
}

// Advance moves the clock forward by d, firing every timer that becomes due,
// including the ones armed by callbacks during the advance.
func (c *Fake) Advance(d time.Duration) {
	end := c.now + d
	for {
		i := c.next()
		if i < 0 || c.timers[i].deadline > end {
			break
		}
		t := c.timers[i]
		c.timers = slices.Delete(c.timers, i, i+1)
		c.now = max(c.now, t.deadline)
		t.f()
	}
	c.now = end
}

// Pending returns the number of timers that have not fired or been stopped.
func (c *Fake) Pending() int {
	return len(c.timers)
}

func (c *Fake) next() int {
	ret := -1
	for i, t := range c.timers {
		if ret < 0 || t.deadline < c.timers[ret].deadline ||
			(t.deadline == c.timers[ret].deadline && t.seq < c.timers[ret].seq) {
			ret = i
		}
	}
	return ret
}

func (t *fakeTimer) Stop() bool {
	c := t.clock
	i := slices.Index(c.timers, t)
	if i < 0 {
		return false
	}
	c.timers = slices.Delete(c.timers, i, i+1)
	return true
}

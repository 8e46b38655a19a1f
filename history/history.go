// Package history keeps the undo and redo stacks of a project.
//
// The stacks hold serialized snapshots, so that a restored project shares no
// memory with the live one. Edits arriving in a burst are coalesced: Observe
// only updates the live reference and re-arms a debounce timer, and the
// snapshot is taken from the live reference when the timer fires.
package history

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/montage-editor/montage"
	"github.com/montage-editor/montage/clock"
)

const (
	DefaultLimit    = 50
	DefaultDebounce = 300 * time.Millisecond
)

type (
	Manager struct {
		limit  int
		past   [][]byte
		future [][]byte
		last   []byte // the last committed snapshot
		live   montage.Project
		// snapshot of live, taken on first use after each Observe
		liveSnap []byte
		push   *clock.Debouncer
		logger *slog.Logger
	}

	Options struct {
		Clock    clock.Clock
		Limit    int
		Debounce time.Duration
		Logger   *slog.Logger
	}
)

// New returns a Manager whose committed state is initial. Zero options take
// the defaults; a nil Clock means the system clock without dispatch, which is
// only safe if the caller never races the timer, so editors should pass
// their loop clock.
func New(initial montage.Project, opts Options) *Manager {
	if opts.Clock == nil {
		opts.Clock = clock.Real(nil)
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultLimit
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	m := &Manager{limit: opts.Limit, logger: opts.Logger}
	m.push = clock.NewDebouncer(opts.Clock, opts.Debounce, func() { m.commit(m.liveSnapshot()) })
	m.Reset(initial)
	return m
}

// Reset clears both stacks and commits p, e.g. after loading a project.
func (m *Manager) Reset(p montage.Project) {
	m.push.Cancel()
	m.past, m.future = nil, nil
	m.live = p
	m.last = m.snapshot(p)
	m.liveSnap = m.last
}

// Observe records p as the live project and (re)arms the debounced push.
func (m *Manager) Observe(p montage.Project) {
	m.live = p
	m.liveSnap = nil
	m.push.Trigger()
}

// Push commits p. It is a no-op if p equals the last committed snapshot;
// otherwise the previous snapshot goes onto the undo stack and the redo
// stack is cleared.
func (m *Manager) Push(p montage.Project) {
	m.commit(m.snapshot(p))
}

func (m *Manager) commit(s []byte) {
	if s == nil || bytes.Equal(s, m.last) {
		return
	}
	m.past = appendCapped(m.past, m.last, m.limit)
	m.future = nil
	m.last = s
}

// Flush commits a pending debounced push right away.
func (m *Manager) Flush() {
	m.push.Flush()
}

// Undo restores the previous committed snapshot. It returns false if there
// is nothing to undo.
func (m *Manager) Undo() (montage.Project, bool) {
	m.Flush()
	if len(m.past) == 0 {
		return montage.Project{}, false
	}
	p, err := m.restore(m.past[len(m.past)-1])
	if err != nil {
		m.logger.Error("could not restore undo snapshot", "err", err)
		return montage.Project{}, false
	}
	m.future = prependCapped(m.future, m.last, m.limit)
	m.last = m.past[len(m.past)-1]
	m.past = m.past[:len(m.past)-1]
	m.live, m.liveSnap = p, m.last
	return p, true
}

// Redo is the mirror of Undo.
func (m *Manager) Redo() (montage.Project, bool) {
	m.Flush()
	if len(m.future) == 0 {
		return montage.Project{}, false
	}
	p, err := m.restore(m.future[0])
	if err != nil {
		m.logger.Error("could not restore redo snapshot", "err", err)
		return montage.Project{}, false
	}
	m.past = appendCapped(m.past, m.last, m.limit)
	m.last = m.future[0]
	m.future = m.future[1:]
	m.live, m.liveSnap = p, m.last
	return p, true
}

// CanUndo counts a pending push as undoable, since Undo flushes it first.
func (m *Manager) CanUndo() bool {
	return len(m.past) > 0 || m.dirty()
}

// CanRedo is false while a pending push would clear the redo stack.
func (m *Manager) CanRedo() bool {
	return len(m.future) > 0 && !m.dirty()
}

func (m *Manager) dirty() bool {
	return m.push.Pending() && !bytes.Equal(m.liveSnapshot(), m.last)
}

func (m *Manager) liveSnapshot() []byte {
	if m.liveSnap == nil {
		m.liveSnap = m.snapshot(m.live)
	}
	return m.liveSnap
}

// Len returns the sizes of the undo and redo stacks.
func (m *Manager) Len() (past, future int) {
	return len(m.past), len(m.future)
}

// Close drops a pending push.
func (m *Manager) Close() {
	m.push.Cancel()
}

func (m *Manager) snapshot(p montage.Project) []byte {
	s, err := json.Marshal(p)
	if err != nil {
		m.logger.Error("could not snapshot project", "err", err)
		return nil
	}
	return s
}

func (m *Manager) restore(s []byte) (montage.Project, error) {
	var p montage.Project
	if err := json.Unmarshal(s, &p); err != nil {
		return montage.Project{}, fmt.Errorf("json.Unmarshal failed: %w", err)
	}
	return p, nil
}

func appendCapped(stack [][]byte, s []byte, limit int) [][]byte {
	stack = append(stack, s)
	if len(stack) > limit {
		stack = stack[len(stack)-limit:]
	}
	return stack
}

func prependCapped(stack [][]byte, s []byte, limit int) [][]byte {
	stack = append([][]byte{s}, stack...)
	if len(stack) > limit {
		stack = stack[:limit]
	}
	return stack
}

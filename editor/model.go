// Package editor owns the live project of an editing session. Every edit goes
// through one gate, which records the new project in the history, re-arms
// the autosave and notifies the listeners, e.g. the player.
//
// Model is not safe for concurrent use; run it on the same loop.Loop as the
// player and give it that loop's clock.
package editor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/montage-editor/montage"
	"github.com/montage-editor/montage/clock"
	"github.com/montage-editor/montage/history"
	"github.com/montage-editor/montage/store"
	"github.com/montage-editor/montage/timeline"
)

type (
	Model struct {
		project   montage.Project
		history   *history.Manager
		autosave  *Autosaver
		listeners []func(montage.Project)
		logger    *slog.Logger
	}

	Options struct {
		Clock clock.Clock
		// Saver receives the autosaves; nil disables autosaving.
		Saver           Saver
		HistoryLimit    int
		HistoryDebounce time.Duration
		AutosaveDelay   time.Duration
		Logger          *slog.Logger
	}
)

// New returns a model editing p, with an empty history.
func New(p montage.Project, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	m := &Model{project: timeline.Recompute(p), logger: opts.Logger}
	m.history = history.New(m.project, history.Options{
		Clock:    opts.Clock,
		Limit:    opts.HistoryLimit,
		Debounce: opts.HistoryDebounce,
		Logger:   opts.Logger,
	})
	if opts.Saver != nil {
		m.autosave = NewAutosaver(opts.Saver, m.Project, AutosaveOptions{
			Clock:  opts.Clock,
			Delay:  opts.AutosaveDelay,
			Logger: opts.Logger,
		})
	}
	return m
}

// Open loads the project with the given id from s and autosaves it back to
// s, unless opts names another Saver.
func Open(ctx context.Context, s store.Store, id string, opts Options) (*Model, error) {
	p, err := s.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("cannot open project %s: %w", id, err)
	}
	if opts.Saver == nil {
		opts.Saver = s
	}
	return New(p, opts), nil
}

// Create makes a new project in s and opens it.
func Create(ctx context.Context, s store.Store, name string, opts Options) (*Model, error) {
	p, err := s.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("cannot create project: %w", err)
	}
	if opts.Saver == nil {
		opts.Saver = s
	}
	return New(p, opts), nil
}

// Project returns the live project. Callers must not modify it.
func (m *Model) Project() montage.Project {
	return m.project
}

// OnChange registers f to be called with the new project after every change,
// including undo and redo.
func (m *Model) OnChange(f func(montage.Project)) {
	m.listeners = append(m.listeners, f)
}

func (m *Model) History() *history.Manager { return m.history }

// Autosaver returns nil if the model does not autosave.
func (m *Model) Autosaver() *Autosaver { return m.autosave }

// Saving reports whether an autosave is in flight.
func (m *Model) Saving() bool {
	return m.autosave != nil && m.autosave.Saving()
}

// Close commits the pending history entry and writes out the pending
// autosave.
func (m *Model) Close() {
	m.history.Flush()
	m.history.Close()
	if m.autosave != nil {
		m.autosave.Close()
	}
}

// change is the gate every edit goes through. Edits that do not change the
// project are dropped here so that they neither re-arm the timers nor wake up
// the listeners.
func (m *Model) change(kind string, next montage.Project) {
	if unchanged(m.project, next) {
		return
	}
	m.logger.Debug("project changed", "kind", kind)
	m.project = next
	m.history.Observe(next)
	m.notify()
}

// restore swaps in a project coming from the history, which must not be
// observed again.
func (m *Model) restore(kind string, fn func() (montage.Project, bool)) {
	p, ok := fn()
	if !ok {
		return
	}
	m.logger.Debug("project restored", "kind", kind)
	m.project = p
	m.notify()
}

func (m *Model) notify() {
	if m.autosave != nil {
		m.autosave.Changed()
	}
	for _, f := range m.listeners {
		f(m.project)
	}
}

// unchanged relies on the timeline functions returning their input as is when
// they do nothing, and a fresh copy of the tracks otherwise.
func unchanged(a, b montage.Project) bool {
	if a.ID != b.ID || a.Name != b.Name || a.Duration != b.Duration || a.WorkArea != b.WorkArea {
		return false
	}
	if len(a.Tracks) != len(b.Tracks) {
		return false
	}
	return len(a.Tracks) == 0 || &a.Tracks[0] == &b.Tracks[0]
}

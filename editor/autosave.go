package editor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/montage-editor/montage"
	"github.com/montage-editor/montage/clock"
)

const DefaultAutosaveDelay = 1500 * time.Millisecond

type (
	Saver interface {
		Save(ctx context.Context, p montage.Project) error
	}

	// Autosaver saves the live project once changes have settled. Every
	// Changed call re-arms a single trailing-edge timer; when it fires, the
	// project current at that moment is saved in the background. At most one
	// save runs at a time: a firing during a save only replaces the project
	// to save next, which is written once the running save returns. Failed
	// saves are logged and not retried: the next change saves again.
	Autosaver struct {
		saver    Saver
		live     func() montage.Project
		debounce *clock.Debouncer
		mu       sync.Mutex
		running  bool
		next     *montage.Project
		wg       sync.WaitGroup
		logger   *slog.Logger
		ctx      context.Context
		cancel   context.CancelFunc
	}

	AutosaveOptions struct {
		Clock  clock.Clock
		Delay  time.Duration
		Logger *slog.Logger
	}
)

// NewAutosaver returns an Autosaver saving the project returned by live.
// Changed, Flush and the timer callbacks must run on one goroutine; Saving
// and Wait may be called from anywhere.
func NewAutosaver(saver Saver, live func() montage.Project, opts AutosaveOptions) *Autosaver {
	if opts.Clock == nil {
		opts.Clock = clock.Real(nil)
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultAutosaveDelay
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	a := &Autosaver{saver: saver, live: live, logger: opts.Logger, ctx: ctx, cancel: cancel}
	a.debounce = clock.NewDebouncer(opts.Clock, opts.Delay, a.Save)
	return a
}

// Changed re-arms the autosave timer.
func (a *Autosaver) Changed() {
	a.debounce.Trigger()
}

// Pending reports whether a save is scheduled but not started.
func (a *Autosaver) Pending() bool {
	return a.debounce.Pending()
}

// Saving reports whether a save is in flight.
func (a *Autosaver) Saving() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.running
}

// Flush starts a pending save right away.
func (a *Autosaver) Flush() {
	a.debounce.Flush()
}

// Save starts saving the live project in the background, dropping a pending
// timer. If a save is already running, the project is saved after it instead.
func (a *Autosaver) Save() {
	a.debounce.Cancel()
	p := a.live()
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		a.next = &p
		return
	}
	a.running = true
	a.wg.Add(1)
	go a.run(p)
}

func (a *Autosaver) run(p montage.Project) {
	defer a.wg.Done()
	for {
		a.save(p)
		a.mu.Lock()
		if a.next == nil {
			a.running = false
			a.mu.Unlock()
			return
		}
		p, a.next = *a.next, nil
		a.mu.Unlock()
	}
}

func (a *Autosaver) save(p montage.Project) {
	start := time.Now()
	if err := a.saver.Save(a.ctx, p); err != nil {
		a.logger.Error("autosave failed", "project", p.ID, "err", err)
		return
	}
	a.logger.Debug("autosaved", "project", p.ID, "took", time.Since(start))
}

// Wait blocks until the saves in flight have completed.
func (a *Autosaver) Wait() {
	a.wg.Wait()
}

// Close flushes a pending save, waits for it and cancels the context of
// later ones.
func (a *Autosaver) Close() {
	a.Flush()
	a.Wait()
	a.cancel()
}

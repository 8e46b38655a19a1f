package editor_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/montage-editor/montage"
	"github.com/montage-editor/montage/clock"
	"github.com/montage-editor/montage/editor"
	"github.com/montage-editor/montage/store"
	"github.com/montage-editor/montage/timeline"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestBurstIsOneUndoStepAndOneSave(t *testing.T) {
	ctx := context.Background()
	c := clock.NewFake()
	s := store.NewMemStore()
	m, err := editor.Create(ctx, s, "holiday", editor.Options{Clock: c, Logger: quiet})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	initial := m.Project()
	video := m.AddTrack(montage.VideoTrack, timeline.TrackOptions{})
	for i := 0; i < 5; i++ {
		m.AddClip(video, "take", float64(i), 1)
		c.Advance(100 * time.Millisecond)
	}
	c.Advance(2 * time.Second)
	m.Autosaver().Wait()
	if s.Saves() != 2 {
		t.Fatalf("%d saves, expected one on create and one autosave", s.Saves())
	}
	saved, _ := s.Load(ctx, m.Project().ID)
	if !reflect.DeepEqual(saved, m.Project()) {
		t.Fatal("autosave did not save the latest project")
	}
	if past, _ := m.History().Len(); past != 1 {
		t.Fatalf("burst made %d undo steps, expected 1", past)
	}
	edited := m.Project()
	m.Undo().Do()
	if !reflect.DeepEqual(m.Project(), initial) {
		t.Fatalf("undo did not restore the empty project: %+v", m.Project())
	}
	if m.Undo().Enabled() {
		t.Fatal("undo enabled with empty history")
	}
	m.Redo().Do()
	if !reflect.DeepEqual(m.Project(), edited) {
		t.Fatal("redo did not restore the edited project")
	}
}

type gatedSaver struct {
	started chan struct{}
	release chan struct{}
}

func (g *gatedSaver) Save(ctx context.Context, p montage.Project) error {
	g.started <- struct{}{}
	<-g.release
	return nil
}

func TestSavingOnlyWhileInFlight(t *testing.T) {
	c := clock.NewFake()
	g := &gatedSaver{started: make(chan struct{}), release: make(chan struct{})}
	m := editor.New(montage.NewProject("x"), editor.Options{Clock: c, Saver: g, Logger: quiet})
	m.AddTrack(montage.AudioTrack, timeline.TrackOptions{IsMaster: true})
	c.Advance(editor.DefaultAutosaveDelay - time.Millisecond)
	if m.Saving() || !m.Autosaver().Pending() {
		t.Fatal("save started before the delay")
	}
	c.Advance(time.Millisecond)
	<-g.started
	if !m.Saving() {
		t.Fatal("Saving false while a save is in flight")
	}
	close(g.release)
	m.Autosaver().Wait()
	if m.Saving() {
		t.Fatal("Saving true after the save completed")
	}
}

type failingSaver struct {
	calls atomic.Int32
}

func (f *failingSaver) Save(context.Context, montage.Project) error {
	f.calls.Add(1)
	return errors.New("disk full")
}

func TestFailedSaveIsNotRetried(t *testing.T) {
	c := clock.NewFake()
	f := &failingSaver{}
	m := editor.New(montage.NewProject("x"), editor.Options{Clock: c, Saver: f, Logger: quiet})
	m.AddTrack(montage.VideoTrack, timeline.TrackOptions{})
	c.Advance(time.Minute)
	m.Autosaver().Wait()
	c.Advance(time.Minute)
	m.Autosaver().Wait()
	if n := f.calls.Load(); n != 1 {
		t.Fatalf("%d save attempts, expected 1", n)
	}
	if m.Saving() {
		t.Fatal("still saving after failure")
	}
}

func TestNoOpEditsAreDropped(t *testing.T) {
	c := clock.NewFake()
	m := editor.New(montage.NewProject("x"), editor.Options{Clock: c, Saver: store.NewMemStore(), Logger: quiet})
	calls := 0
	m.OnChange(func(montage.Project) { calls++ })
	m.DeleteTrack("missing")
	m.SplitClip("missing", 1)
	if id := m.AddClip("missing", "a", 0, 1); id != "" {
		t.Fatalf("clip %q added to a missing track", id)
	}
	if calls != 0 || m.Autosaver().Pending() || m.History().CanUndo() {
		t.Fatal("no-op edits were recorded")
	}
}

func TestListenersSeeEveryChange(t *testing.T) {
	c := clock.NewFake()
	m := editor.New(montage.NewProject("x"), editor.Options{Clock: c, Logger: quiet})
	var durations []float64
	m.OnChange(func(p montage.Project) { durations = append(durations, p.Duration) })
	video := m.AddTrack(montage.VideoTrack, timeline.TrackOptions{})
	clip := m.AddClip(video, "take", 0, 10)
	m.SplitClip(clip, 4)
	m.Undo().Do()
	expected := []float64{montage.MinDuration, 10, 10, montage.MinDuration}
	if !reflect.DeepEqual(durations, expected) {
		t.Fatalf("listener saw durations %v, expected %v", durations, expected)
	}
	if m.Save().Enabled() {
		t.Fatal("save enabled without a saver")
	}
}

func TestOpenMissing(t *testing.T) {
	_, err := editor.Open(context.Background(), store.NewMemStore(), "nope", editor.Options{})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

type queuedSaver struct {
	started chan int
	release chan struct{}
	mu      sync.Mutex
	saved   []int
}

func (q *queuedSaver) Save(ctx context.Context, p montage.Project) error {
	q.started <- len(p.Tracks)
	<-q.release
	q.mu.Lock()
	q.saved = append(q.saved, len(p.Tracks))
	q.mu.Unlock()
	return nil
}

func TestChangesDuringSaveAreSavedAfterIt(t *testing.T) {
	c := clock.NewFake()
	q := &queuedSaver{started: make(chan int), release: make(chan struct{})}
	m := editor.New(montage.NewProject("x"), editor.Options{Clock: c, Saver: q, Logger: quiet})
	m.AddTrack(montage.VideoTrack, timeline.TrackOptions{})
	c.Advance(editor.DefaultAutosaveDelay)
	if n := <-q.started; n != 1 {
		t.Fatalf("first save has %d tracks", n)
	}
	for i := 0; i < 2; i++ {
		m.AddTrack(montage.AudioTrack, timeline.TrackOptions{})
		c.Advance(editor.DefaultAutosaveDelay)
	}
	select {
	case n := <-q.started:
		t.Fatalf("second save with %d tracks started while the first was running", n)
	default:
	}
	if !m.Saving() {
		t.Fatal("Saving false while a save is in flight")
	}
	q.release <- struct{}{}
	if n := <-q.started; n != 3 {
		t.Fatalf("follow-up save has %d tracks, expected the live 3", n)
	}
	q.release <- struct{}{}
	m.Autosaver().Wait()
	if !reflect.DeepEqual(q.saved, []int{1, 3}) {
		t.Fatalf("saves completed in order %v, expected [1 3]", q.saved)
	}
	if m.Saving() {
		t.Fatal("Saving true after the saves completed")
	}
}

func TestInvalidEditKeepsHistory(t *testing.T) {
	c := clock.NewFake()
	m := editor.New(montage.NewProject("x"), editor.Options{Clock: c, Logger: quiet})
	video := m.AddTrack(montage.VideoTrack, timeline.TrackOptions{})
	c.Advance(time.Second)
	if id := m.AddClip(video, "bad", math.NaN(), 1); id != "" {
		t.Fatalf("clip %q added at a NaN start", id)
	}
	c.Advance(time.Second)
	m.AddClip(video, "a", 0, 2)
	c.Advance(time.Second)
	m.AddClip(video, "b", 2, 2)
	c.Advance(time.Second)
	if d := m.Project().Duration; d != 4 {
		t.Fatalf("duration %v, expected 4", d)
	}
	if past, _ := m.History().Len(); past != 3 {
		t.Fatalf("%d undo steps, expected 3", past)
	}
}

package history

import (
	"testing"

	"github.com/montage-editor/montage"
	"github.com/montage-editor/montage/clock"
	"github.com/montage-editor/montage/timeline"
)

func TestPollingReusesLiveSnapshot(t *testing.T) {
	c := clock.NewFake()
	p := montage.NewProject("test")
	m := New(p, Options{Clock: c})
	p, _ = timeline.AddTrack(p, montage.VideoTrack, timeline.TrackOptions{})
	m.Observe(p)
	if m.liveSnap != nil {
		t.Fatal("Observe serialized the project")
	}
	if !m.CanUndo() || m.CanRedo() {
		t.Fatal("pending change not reported as undoable")
	}
	first := &m.liveSnap[0]
	for i := 0; i < 10; i++ {
		m.CanUndo()
		m.CanRedo()
	}
	if &m.liveSnap[0] != first {
		t.Fatal("polling took a new snapshot")
	}
	c.Advance(DefaultDebounce)
	if &m.last[0] != first {
		t.Fatal("push did not commit the cached snapshot")
	}
	if _, ok := m.Undo(); !ok || !m.CanRedo() || m.CanUndo() {
		t.Fatal("undo after push")
	}
}

package playback_test

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/montage-editor/montage"
	"github.com/montage-editor/montage/audio"
	"github.com/montage-editor/montage/clock"
	"github.com/montage-editor/montage/playback"
	"github.com/montage-editor/montage/timeline"
)

const frame = playback.DefaultFrameInterval

type staticTimeline struct {
	p montage.Project
}

func (s *staticTimeline) Project() montage.Project { return s.p }

type fakeSource struct {
	out      *fakeOutput
	schedule playback.Schedule
	stopped  bool
}

func (s *fakeSource) Stop() {
	if !s.stopped {
		s.stopped = true
		s.out.active--
	}
}

// fakeOutput records started sources and the peak number of sources active
// at the same time.
type fakeOutput struct {
	started   []*fakeSource
	active    int
	maxActive int
	err       error
}

func (o *fakeOutput) Start(buf *audio.Buffer, s playback.Schedule) (playback.Source, error) {
	if o.err != nil {
		return nil, o.err
	}
	src := &fakeSource{out: o, schedule: s}
	o.started = append(o.started, src)
	o.active++
	o.maxActive = max(o.maxActive, o.active)
	return src, nil
}

func (o *fakeOutput) last() *fakeSource {
	if len(o.started) == 0 {
		return nil
	}
	return o.started[len(o.started)-1]
}

// testProject has a 20 s video clip and a master audio clip on [2, 12]
// playing the song from 1 s on.
func testProject() montage.Project {
	p := montage.NewProject("test")
	p, video := timeline.AddTrack(p, montage.VideoTrack, timeline.TrackOptions{})
	p, master := timeline.AddTrack(p, montage.AudioTrack, timeline.TrackOptions{IsMaster: true})
	p, _ = timeline.AddClip(p, video, "take", 0, 20)
	p, clip := timeline.AddClip(p, master, "song", 2, 10)
	start, end := 1.0, 11.0
	return timeline.UpdateClip(p, clip, timeline.ClipPatch{SourceStart: &start, SourceEnd: &end})
}

type fixture struct {
	clock    *clock.Fake
	output   *fakeOutput
	timeline *staticTimeline
	player   *playback.Player
}

func newFixture(p montage.Project) *fixture {
	f := &fixture{clock: clock.NewFake(), output: &fakeOutput{}, timeline: &staticTimeline{p}}
	cache := audio.NewCache(nil, nil)
	cache.Put("song", &audio.Buffer{SampleRate: 100, Channels: 1, Data: make([]float32, 2000)})
	f.player = playback.NewPlayer(f.timeline, playback.Options{Clock: f.clock, Output: f.output, Cache: cache})
	return f
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestPausedTimeIsConstant(t *testing.T) {
	f := newFixture(testProject())
	f.player.Seek(3)
	f.player.Play()
	f.clock.Advance(time.Second)
	f.player.Pause()
	t0 := f.player.Time()
	if !approx(t0, 4) {
		t.Fatalf("paused at %v, expected 4", t0)
	}
	for i := 0; i < 5; i++ {
		f.clock.Advance(time.Second)
		if f.player.Time() != t0 {
			t.Fatalf("paused time moved from %v to %v", t0, f.player.Time())
		}
	}
	if f.output.active != 0 {
		t.Fatalf("%d sources active after pause", f.output.active)
	}
}

func TestPlayingTimeNonDecreasing(t *testing.T) {
	f := newFixture(testProject())
	f.player.Play()
	prev := f.player.Time()
	for i := 0; i < 500; i++ {
		f.clock.Advance(7 * time.Millisecond)
		now := f.player.Time()
		if now < prev {
			t.Fatalf("time went back from %v to %v", prev, now)
		}
		prev = now
	}
}

func TestLoopReanchorsWithoutDrift(t *testing.T) {
	p := timeline.SetWorkArea(testProject(), 1, 3)
	f := newFixture(p)
	f.player.ToggleLoop()
	f.player.Seek(1)
	f.player.Play()
	loops := 0
	prev := f.player.Time()
	for loops < 100 {
		f.clock.Advance(frame)
		now := f.player.Time()
		if now < prev {
			loops++
			if now < 1 || now > 1+montage.MinDuration {
				t.Fatalf("loop %d restarted at %v, expected [1, 1+ε]", loops, now)
			}
		}
		if now > 3+frame.Seconds()+1e-9 {
			t.Fatalf("time %v ran past the work area end", now)
		}
		prev = now
	}
	if !f.player.IsPlaying() {
		t.Fatal("looping player stopped")
	}
	if f.output.maxActive > 1 {
		t.Fatalf("%d sources were active at once", f.output.maxActive)
	}
}

func TestBoundaryStop(t *testing.T) {
	f := newFixture(testProject())
	f.player.Seek(19)
	f.player.Play()
	f.clock.Advance(2 * time.Second)
	if f.player.IsPlaying() {
		t.Fatal("player still playing past the end")
	}
	if f.player.Time() != 20 || f.player.CurrentTime() != 20 {
		t.Fatalf("stopped at %v, expected 20", f.player.Time())
	}
	if f.player.Status().State != playback.Stopped {
		t.Fatalf("state %v, expected stopped", f.player.Status().State)
	}
	if f.clock.Pending() != 0 {
		t.Fatalf("%d timers pending after stop", f.clock.Pending())
	}
}

func TestSeekWhilePlayingKeepsOneSource(t *testing.T) {
	f := newFixture(testProject())
	f.player.Seek(4)
	f.player.Play()
	for _, t0 := range []float64{6, 3, 9, 2.5} {
		f.clock.Advance(100 * time.Millisecond)
		f.player.Seek(t0)
		if f.output.active != 1 {
			t.Fatalf("%d sources active after seeking to %v", f.output.active, t0)
		}
		if !approx(f.output.last().schedule.Offset, 1+t0-2) {
			t.Fatalf("seek to %v scheduled offset %v", t0, f.output.last().schedule.Offset)
		}
	}
	if f.output.maxActive != 1 {
		t.Fatalf("%d sources were active at once", f.output.maxActive)
	}
	f.player.Seek(100)
	if f.player.Time() != 20 {
		t.Fatalf("seek not clamped: %v", f.player.Time())
	}
}

func TestDelayedStart(t *testing.T) {
	f := newFixture(testProject())
	f.player.Seek(0.5)
	f.player.Play()
	s := f.output.last()
	if s == nil {
		t.Fatal("no source started")
	}
	if s.schedule.Delay != 1500*time.Millisecond || s.schedule.Offset != 1 || s.schedule.End != 11 {
		t.Fatalf("schedule %+v, expected 1.5 s delay at offset 1", s.schedule)
	}
	if s.schedule.Gain != 1 {
		t.Fatalf("gain %v", s.schedule.Gain)
	}
}

func TestNoSourcePastClipEnd(t *testing.T) {
	f := newFixture(testProject())
	f.player.Seek(15)
	f.player.Play()
	if len(f.output.started) != 0 {
		t.Fatal("source started after the end of the master clip")
	}
}

func TestMutedMaster(t *testing.T) {
	p := testProject()
	muted := true
	p = timeline.UpdateTrack(p, p.MasterTrack().ID, timeline.TrackPatch{Muted: &muted})
	f := newFixture(p)
	f.player.Seek(3)
	f.player.Play()
	if s := f.output.last(); s == nil || s.schedule.Gain != 0 {
		t.Fatal("muted master track did not play at zero gain")
	}
}

func TestToggleRewindsAtEnd(t *testing.T) {
	p := timeline.SetWorkArea(testProject(), 2, 5)
	f := newFixture(p)
	f.player.Seek(4.9)
	f.player.Toggle()
	f.clock.Advance(time.Second)
	if f.player.IsPlaying() || f.player.Time() != 5 {
		t.Fatalf("expected a stop at 5, got %v", f.player.Status())
	}
	f.player.Toggle()
	if !f.player.IsPlaying() || f.player.Time() != 2 {
		t.Fatalf("toggle at the end did not rewind to the work area start: %+v", f.player.Status())
	}
	f.player.Toggle()
	if f.player.IsPlaying() {
		t.Fatal("toggle did not pause")
	}
}

func TestDecodeFailurePlaysVideoOnly(t *testing.T) {
	queue := make(chan func(), 1)
	output := &fakeOutput{}
	c := clock.NewFake()
	fetcher := fetcherFunc(func(context.Context, string) ([]byte, error) { return nil, errors.New("offline") })
	player := playback.NewPlayer(&staticTimeline{testProject()}, playback.Options{
		Clock:    c,
		Output:   output,
		Cache:    audio.NewCache(fetcher, nil),
		Dispatch: func(f func()) { queue <- f },
	})
	player.Seek(3)
	player.Play()
	(<-queue)()
	if len(output.started) != 0 {
		t.Fatal("source started without audio")
	}
	c.Advance(time.Second)
	if !player.IsPlaying() || !approx(player.Time(), 4) {
		t.Fatalf("playback did not continue without audio: %+v", player.Status())
	}
}

func TestAsyncDecodeStartsAtRunningPosition(t *testing.T) {
	queue := make(chan func(), 1)
	output := &fakeOutput{}
	c := clock.NewFake()
	wav := wavBytes(t)
	fetcher := fetcherFunc(func(context.Context, string) ([]byte, error) { return wav, nil })
	player := playback.NewPlayer(&staticTimeline{testProject()}, playback.Options{
		Clock:    c,
		Output:   output,
		Cache:    audio.NewCache(fetcher, nil),
		Dispatch: func(f func()) { queue <- f },
	})
	player.Seek(3)
	player.Play()
	done := <-queue
	c.Advance(500 * time.Millisecond) // the clock runs on while decoding
	done()
	s := output.last()
	if s == nil {
		t.Fatal("no source after decode")
	}
	if !approx(s.schedule.Offset, 2.5) {
		t.Fatalf("offset %v, expected 2.5", s.schedule.Offset)
	}
}

func TestStaleDecodeIgnored(t *testing.T) {
	queue := make(chan func(), 1)
	output := &fakeOutput{}
	wav := wavBytes(t)
	fetcher := fetcherFunc(func(context.Context, string) ([]byte, error) { return wav, nil })
	player := playback.NewPlayer(&staticTimeline{testProject()}, playback.Options{
		Clock:    clock.NewFake(),
		Output:   output,
		Cache:    audio.NewCache(fetcher, nil),
		Dispatch: func(f func()) { queue <- f },
	})
	player.Seek(3)
	player.Play()
	done := <-queue
	player.Pause()
	done()
	if len(output.started) != 0 {
		t.Fatal("decode completing after pause started a source")
	}
}

type fetcherFunc func(ctx context.Context, assetID string) ([]byte, error)

func (f fetcherFunc) Fetch(ctx context.Context, assetID string) ([]byte, error) {
	return f(ctx, assetID)
}

func wavBytes(t *testing.T) []byte {
	t.Helper()
	path := filepath.Join(t.TempDir(), "song.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	buf := &audio.Buffer{SampleRate: 8000, Channels: 1, Data: make([]float32, 8000*12)}
	if err := audio.WriteWav(f, buf); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

func TestRenderWorkArea(t *testing.T) {
	master := &audio.Buffer{SampleRate: 100, Channels: 1, Data: make([]float32, 2000)}
	for i := range master.Data {
		master.Data[i] = float32(i)
	}
	p := timeline.SetWorkArea(testProject(), 1, 3)
	out := playback.RenderWorkArea(p, master)
	if out.Frames() != 200 || out.SampleRate != 100 {
		t.Fatalf("rendered %d frames at %d Hz, expected 200 at 100", out.Frames(), out.SampleRate)
	}
	// the clip starts at 2 s on the timeline, playing the asset from 1 s
	if out.Data[99] != 0 || out.Data[100] != 100 || out.Data[199] != 199 {
		t.Fatalf("unexpected samples %v %v %v", out.Data[99], out.Data[100], out.Data[199])
	}
	muted := true
	p = timeline.UpdateTrack(p, p.MasterTrack().ID, timeline.TrackPatch{Muted: &muted})
	for i, v := range playback.RenderWorkArea(p, master).Data {
		if v != 0 {
			t.Fatalf("muted render has sample %v at %d", v, i)
		}
	}
}

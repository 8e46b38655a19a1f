// Package playback implements the playback clock of the editor and the
// scheduling of the master audio track against it.
//
// The position is measured on a monotonic wall clock anchored at the moment
// playback started, never on the audio device clock, which may be suspended
// or drift. The master audio is a single source scheduled so that it lines up
// with that clock.
package playback

import (
	"context"
	"log/slog"
	"time"

	"github.com/montage-editor/montage"
	"github.com/montage-editor/montage/audio"
	"github.com/montage-editor/montage/clock"
)

type (
	// Player is the playback state machine. It is not safe for concurrent
	// use: all methods, and the callbacks of its clock, must run on one
	// goroutine, typically a loop.Loop.
	Player struct {
		state       State
		currentTime float64 // pinned position while not playing
		duration    float64
		looping     bool

		// anchors of the running clock, set when playback starts or loops
		startWall    time.Duration
		startProject float64

		// session is bumped whenever playback stops, so that callbacks armed
		// by an earlier session do nothing
		session int
		frame   clock.Timer
		source  Source

		project       Timeline
		clock         clock.Clock
		output        Output
		cache         *audio.Cache
		dispatch      func(func())
		frameInterval time.Duration
		logger        *slog.Logger
		ctx           context.Context
		cancel        context.CancelFunc
	}

	// Timeline gives the player read access to the current project.
	Timeline interface {
		Project() montage.Project
	}

	Options struct {
		Clock  clock.Clock
		Output Output // nil means video only
		Cache  *audio.Cache
		// Dispatch delivers the completion of an asynchronous decode back to
		// the goroutine owning the player. A nil Dispatch runs it on the
		// decoding goroutine.
		Dispatch      func(func())
		FrameInterval time.Duration
		Logger        *slog.Logger
	}

	State int

	Status struct {
		State    State
		Time     float64
		Duration float64
		Looping  bool
	}
)

const (
	Stopped State = iota
	Playing
	Paused
)

// DefaultFrameInterval is one display frame at 60 fps.
const DefaultFrameInterval = time.Second / 60

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "unknown"
	}
}

func NewPlayer(project Timeline, opts Options) *Player {
	if opts.Clock == nil {
		opts.Clock = clock.Real(opts.Dispatch)
	}
	if opts.Cache == nil {
		opts.Cache = audio.NewCache(nil, opts.Logger)
	}
	if opts.Dispatch == nil {
		opts.Dispatch = func(f func()) { f() }
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultFrameInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Player{
		duration:      project.Project().Duration,
		project:       project,
		clock:         opts.Clock,
		output:        opts.Output,
		cache:         opts.Cache,
		dispatch:      opts.Dispatch,
		frameInterval: opts.FrameInterval,
		logger:        opts.Logger,
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Time returns the playback position in seconds. While playing it is read
// from the wall clock, so consecutive calls never decrease; otherwise it is
// the position where playback was paused or stopped.
func (p *Player) Time() float64 {
	if p.state == Playing {
		return p.startProject + (p.clock.Now() - p.startWall).Seconds()
	}
	return p.currentTime
}

func (p *Player) IsPlaying() bool { return p.state == Playing }
func (p *Player) IsLooping() bool { return p.looping }
func (p *Player) Duration() float64 { return p.duration }

// CurrentTime is the position as of the last frame. Use Time for the exact
// position.
func (p *Player) CurrentTime() float64 { return p.currentTime }

func (p *Player) Status() Status {
	return Status{State: p.state, Time: p.Time(), Duration: p.duration, Looping: p.looping}
}

// Play starts playback from the current position.
func (p *Player) Play() {
	if p.state == Playing {
		return
	}
	p.session++
	p.anchor(p.currentTime)
	p.state = Playing
	p.startAudio()
	p.requestFrame()
}

// Pause stops playback, keeping the exact position.
func (p *Player) Pause() {
	if p.state != Playing {
		return
	}
	p.cancelFrame()
	p.currentTime = p.Time()
	p.stopSource()
	p.state = Paused
	p.session++
}

// Seek moves the position to t, clamped to the project. While playing, the
// audio is torn down before it is scheduled again at the new position.
func (p *Player) Seek(t float64) {
	t = min(max(t, 0), p.duration)
	if p.state != Playing {
		p.currentTime = t
		return
	}
	p.Pause()
	p.currentTime = t
	p.Play()
}

// Toggle pauses when playing. Otherwise it starts playing, first rewinding to
// the start of the work area if the position is at or past its end.
func (p *Player) Toggle() {
	if p.state == Playing {
		p.Pause()
		return
	}
	stopAt, loopStart := p.bounds(p.project.Project())
	if p.currentTime >= stopAt {
		p.currentTime = loopStart
	}
	p.Play()
}

func (p *Player) ToggleLoop() {
	p.looping = !p.looping
}

// SetDuration updates the project duration, e.g. after an edit.
func (p *Player) SetDuration(d float64) {
	p.duration = d
	if p.state != Playing && p.currentTime > d {
		p.currentTime = d
	}
}

// Close stops playback for good; pending decodes are cancelled.
func (p *Player) Close() {
	p.cancelFrame()
	p.stopSource()
	if p.state == Playing {
		p.currentTime = p.Time()
	}
	p.state = Stopped
	p.session++
	p.cancel()
}

func (p *Player) anchor(t float64) {
	p.startWall = p.clock.Now()
	p.startProject = t
	p.currentTime = t
}

// bounds returns where playback stops and where a loop restarts: the work
// area if it is not empty, else the whole project.
func (p *Player) bounds(proj montage.Project) (stopAt, loopStart float64) {
	if wa := proj.WorkArea; wa.End > wa.Start {
		return wa.End, wa.Start
	}
	return p.duration, 0
}

func (p *Player) requestFrame() {
	session := p.session
	p.frame = p.clock.AfterFunc(p.frameInterval, func() { p.tick(session) })
}

func (p *Player) cancelFrame() {
	if p.frame != nil {
		p.frame.Stop()
		p.frame = nil
	}
}

func (p *Player) tick(session int) {
	if session != p.session || p.state != Playing {
		return
	}
	p.frame = nil
	p.currentTime = p.Time()
	stopAt, loopStart := p.bounds(p.project.Project())
	if p.currentTime >= stopAt {
		p.stopSource()
		if !p.looping {
			p.currentTime = stopAt
			p.state = Stopped
			p.session++
			return
		}
		// re-anchor on every iteration so that errors do not accumulate
		p.anchor(loopStart)
		p.startAudio()
	}
	p.requestFrame()
}

func (p *Player) stopSource() {
	if p.source != nil {
		p.source.Stop()
		p.source = nil
	}
}

// startAudio schedules the clip of the master track at the current position.
// If the asset is not decoded yet, the decode runs in the background and the
// audio starts when it completes, unless playback has stopped meanwhile.
func (p *Player) startAudio() {
	p.stopSource()
	if p.output == nil {
		return
	}
	proj := p.project.Project()
	track := proj.MasterTrack()
	if track == nil || len(track.Clips) == 0 {
		return
	}
	clip := track.Clips[0]
	if buf, ok := p.cache.Get(clip.AssetID); ok {
		p.schedule(buf, clip, track.Muted)
		return
	}
	session := p.session
	go func() {
		_, err := p.cache.Load(p.ctx, clip.AssetID)
		p.dispatch(func() {
			if err != nil {
				p.logger.Warn("could not load master audio, playing without it", "asset", clip.AssetID, "err", err)
				return
			}
			if session != p.session || p.state != Playing {
				return
			}
			p.startAudio()
		})
	}()
}

func (p *Player) schedule(buf *audio.Buffer, clip montage.Clip, muted bool) {
	t := p.Time()
	if t >= clip.TimelineEnd {
		return
	}
	s := Schedule{Offset: clip.SourceStart, End: clip.SourceEnd, Gain: 1}
	if muted {
		s.Gain = 0
	}
	if t >= clip.TimelineStart {
		s.Offset = clip.SourceStart + (t - clip.TimelineStart)
	} else {
		s.Delay = time.Duration((clip.TimelineStart - t) * float64(time.Second))
	}
	src, err := p.output.Start(buf, s)
	if err != nil {
		p.logger.Warn("could not start master audio", "asset", clip.AssetID, "err", err)
		return
	}
	p.source = src
}

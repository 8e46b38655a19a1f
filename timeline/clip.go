package timeline

import (
	"math"
	"slices"

	"github.com/montage-editor/montage"
)

type (
	// ClipPatch lists the clip fields to change; nil fields are kept. The
	// payload pointers replace the clip's payload with a copy of the value.
	ClipPatch struct {
		AssetID       *string
		TimelineStart *float64
		TimelineEnd   *float64
		SourceStart   *float64
		SourceEnd     *float64
		Text          *montage.TextContent
		Lyrics        *montage.LyricsContent
		Transform     *montage.Transform
		Audio         *montage.ClipAudio
	}

	// TextClipOptions describe the clip created by AddTextTrack. TrackID is
	// optional; a zero Style means the default style.
	TextClipOptions struct {
		TrackID  string
		Content  string
		Start    float64
		Duration float64
		Style    *montage.TextStyle
	}

	LyricsClipOptions struct {
		TrackID  string
		Content  string
		Words    []montage.LyricWord
		Start    float64
		Duration float64
		Style    *montage.LyricsStyle
	}
)

// AddClip appends a clip of an asset to a track and returns the clip id. The
// clip covers [start, start+duration) of the timeline and the first duration
// seconds of the asset. Clips on video tracks get the default transform and
// audio toggle.
func AddClip(p montage.Project, trackID, assetID string, start, duration float64) (montage.Project, string) {
	if !(duration > 0) {
		return p, ""
	}
	var id string
	ret := edit(p, func(p *montage.Project) bool {
		t := p.Track(trackID)
		if t == nil {
			return false
		}
		c := newClip(t, assetID, start, duration)
		if !placed(&c) {
			return false
		}
		if t.Type == montage.VideoTrack {
			tr, a := montage.DefaultTransform(), montage.DefaultClipAudio()
			c.Transform, c.Audio = &tr, &a
		}
		t.Clips = append(t.Clips, c)
		id = c.ID
		return true
	})
	return ret, id
}

func newClip(t *montage.Track, assetID string, start, duration float64) montage.Clip {
	start = max(start, 0)
	return montage.Clip{
		ID:            montage.NewID(),
		AssetID:       assetID,
		TrackID:       t.ID,
		TimelineStart: start,
		TimelineEnd:   start + duration,
		SourceStart:   0,
		SourceEnd:     duration,
	}
}

// placed reports whether c has a finite, non-empty extent on the timeline and
// in its source. A NaN or infinite start fails, as does a start so large
// that adding the length does not move the end.
func placed(c *montage.Clip) bool {
	return c.Valid() && !math.IsInf(c.TimelineEnd, 0) && !math.IsInf(c.SourceEnd, 0)
}

// AddTextTrack adds a text clip and returns its id. The clip goes to the
// given track if it is a text track, else to the first text track, else to a
// new one.
func AddTextTrack(p montage.Project, opts TextClipOptions) (montage.Project, string) {
	if !(opts.Duration > 0) {
		return p, ""
	}
	var id string
	ret := edit(p, func(p *montage.Project) bool {
		t := targetTrack(p, montage.TextTrack, opts.TrackID)
		c := newClip(t, "", opts.Start, opts.Duration)
		if !placed(&c) {
			return false
		}
		style := montage.DefaultTextStyle()
		if opts.Style != nil {
			style = *opts.Style
		}
		c.Text = &montage.TextContent{Content: opts.Content, Style: style}
		t.Clips = append(t.Clips, c)
		id = c.ID
		return true
	})
	return ret, id
}

// AddLyricsTrack is AddTextTrack for lyrics; Words may carry the timing of a
// forced alignment.
func AddLyricsTrack(p montage.Project, opts LyricsClipOptions) (montage.Project, string) {
	if !(opts.Duration > 0) {
		return p, ""
	}
	var id string
	ret := edit(p, func(p *montage.Project) bool {
		t := targetTrack(p, montage.LyricsTrack, opts.TrackID)
		c := newClip(t, "", opts.Start, opts.Duration)
		if !placed(&c) {
			return false
		}
		style := montage.DefaultLyricsStyle()
		if opts.Style != nil {
			style = *opts.Style
		}
		c.Lyrics = &montage.LyricsContent{Content: opts.Content, Words: slices.Clone(opts.Words), Style: style}
		t.Clips = append(t.Clips, c)
		id = c.ID
		return true
	})
	return ret, id
}

func targetTrack(p *montage.Project, typ montage.TrackType, trackID string) *montage.Track {
	if t := p.Track(trackID); t != nil && t.Type == typ {
		return t
	}
	if i := slices.IndexFunc(p.Tracks, func(t montage.Track) bool { return t.Type == typ }); i >= 0 {
		return &p.Tracks[i]
	}
	p.Tracks = append(p.Tracks, newTrack(p.Tracks, typ, TrackOptions{}))
	return &p.Tracks[len(p.Tracks)-1]
}

// UpdateClip merges patch into the clip. The update is rejected if it would
// leave the clip with an empty timeline or source range.
func UpdateClip(p montage.Project, clipID string, patch ClipPatch) montage.Project {
	return edit(p, func(p *montage.Project) bool {
		c := p.Clip(clipID)
		if c == nil {
			return false
		}
		setIf(&c.AssetID, patch.AssetID)
		setIf(&c.TimelineStart, patch.TimelineStart)
		setIf(&c.TimelineEnd, patch.TimelineEnd)
		setIf(&c.SourceStart, patch.SourceStart)
		setIf(&c.SourceEnd, patch.SourceEnd)
		if patch.Text != nil {
			t := *patch.Text
			c.Text = &t
		}
		if patch.Lyrics != nil {
			l := *patch.Lyrics
			l.Words = slices.Clone(l.Words)
			c.Lyrics = &l
		}
		if patch.Transform != nil {
			t := *patch.Transform
			c.Transform = &t
		}
		if patch.Audio != nil {
			a := *patch.Audio
			c.Audio = &a
		}
		return placed(c) && c.TimelineStart >= 0
	})
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// SplitClip cuts a clip in two at timeline position t, which must lie strictly
// inside the clip. The left part keeps the id of the clip; the right part
// gets a new id. The source range is split in the same ratio.
func SplitClip(p montage.Project, clipID string, t float64) montage.Project {
	return edit(p, func(p *montage.Project) bool {
		ti, ci, ok := p.ClipPos(clipID)
		if !ok {
			return false
		}
		track := &p.Tracks[ti]
		left := track.Clips[ci]
		if !left.Contains(t) {
			return false
		}
		split := left.SourceTime(t)
		right := left.Copy()
		right.ID = montage.NewID()
		left.TimelineEnd, left.SourceEnd = t, split
		right.TimelineStart, right.SourceStart = t, split
		if !left.Valid() || !right.Valid() {
			return false
		}
		track.Clips = slices.Replace(track.Clips, ci, ci+1, left, right)
		return true
	})
}

func DeleteClip(p montage.Project, clipID string) montage.Project {
	return edit(p, func(p *montage.Project) bool {
		ti, ci, ok := p.ClipPos(clipID)
		if !ok {
			return false
		}
		p.Tracks[ti].Clips = slices.Delete(p.Tracks[ti].Clips, ci, ci+1)
		return true
	})
}

// MoveClipToTrack moves a clip to another track of the same type, placing it
// at start. Moving within the track it already is on only changes its
// position.
func MoveClipToTrack(p montage.Project, clipID, trackID string, start float64) montage.Project {
	return edit(p, func(p *montage.Project) bool {
		ti, _, ok := p.ClipPos(clipID)
		if !ok {
			return false
		}
		target := p.TrackIndex(trackID)
		if target < 0 || p.Tracks[target].Type != p.Tracks[ti].Type {
			return false
		}
		return moveClip(p, clipID, target, start)
	})
}

// MoveClipToNewTrack moves a clip to a new track appended after the others
// and returns the id of the new track.
func MoveClipToNewTrack(p montage.Project, clipID string, start float64) (montage.Project, string) {
	return MoveClipToNewTrackAt(p, clipID, len(p.Tracks), start)
}

// MoveClipToNewTrackAt moves a clip to a new track inserted at index, which
// is clamped to the valid range. The new track has the type of the clip's
// current track and, for effect tracks, the same kind and parent.
func MoveClipToNewTrackAt(p montage.Project, clipID string, index int, start float64) (montage.Project, string) {
	var id string
	ret := edit(p, func(p *montage.Project) bool {
		ti, _, ok := p.ClipPos(clipID)
		if !ok {
			return false
		}
		src := &p.Tracks[ti]
		t := newTrack(p.Tracks, src.Type, TrackOptions{EffectType: src.EffectType, ParentTrackID: src.ParentTrackID})
		index = min(max(index, 0), len(p.Tracks))
		p.Tracks = slices.Insert(p.Tracks, index, t)
		if !moveClip(p, clipID, index, start) {
			return false
		}
		id = t.ID
		return true
	})
	return ret, id
}

// moveClip detaches the clip from its track and appends it to the track at
// index target, keeping its length. It reports false, leaving p to be
// discarded, if the clip would not fit at start.
func moveClip(p *montage.Project, clipID string, target int, start float64) bool {
	ti, ci, _ := p.ClipPos(clipID)
	c := p.Tracks[ti].Clips[ci]
	length := c.Length()
	c.TimelineStart = max(start, 0)
	c.TimelineEnd = c.TimelineStart + length
	if !placed(&c) {
		return false
	}
	p.Tracks[ti].Clips = slices.Delete(p.Tracks[ti].Clips, ci, ci+1)
	c.TrackID = p.Tracks[target].ID
	p.Tracks[target].Clips = append(p.Tracks[target].Clips, c)
	return true
}

// FindClip returns a copy of the clip with the given id.
func FindClip(p montage.Project, clipID string) (montage.Clip, bool) {
	c := p.Clip(clipID)
	if c == nil {
		return montage.Clip{}, false
	}
	return c.Copy(), true
}

// MasterClip returns the clip of the master track, i.e. the clip that drives
// playback.
func MasterClip(p montage.Project) (montage.Clip, bool) {
	t := p.MasterTrack()
	if t == nil || len(t.Clips) == 0 {
		return montage.Clip{}, false
	}
	return t.Clips[0].Copy(), true
}

// SyncClipToMaster moves a clip so that its source start lines up with the
// position offset seconds into the master audio source, e.g. the offset
// found by cross-correlating the clip's audio with the song. If that puts the
// clip before the start of the timeline, the head of the clip is trimmed.
func SyncClipToMaster(p montage.Project, clipID string, offset float64) montage.Project {
	return edit(p, func(p *montage.Project) bool {
		mt := p.MasterTrack()
		if mt == nil || len(mt.Clips) == 0 || mt.Clips[0].ID == clipID {
			return false
		}
		master := mt.Clips[0]
		c := p.Clip(clipID)
		if c == nil {
			return false
		}
		length := c.Length()
		start := master.TimelineStart + offset - master.SourceStart
		if start < 0 {
			c.SourceStart -= start
			length += start
			start = 0
		}
		c.TimelineStart, c.TimelineEnd = start, start+length
		return placed(c)
	})
}

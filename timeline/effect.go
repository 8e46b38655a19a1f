package timeline

import (
	"slices"

	"github.com/montage-editor/montage"
)

// AddEffectTrack adds an effect track with one clip carrying the default
// configuration of kind, and returns the id of the clip. The parent is the
// given track if it is a video track, else the first video track, else none. The
// effect track is inserted right before its parent, so that it is layered
// above it, or appended if there is no parent.
func AddEffectTrack(p montage.Project, kind montage.EffectKind, start, duration float64, parentTrackID string) (montage.Project, string) {
	if !kind.Valid() || !(duration > 0) {
		return p, ""
	}
	var id string
	ret := edit(p, func(p *montage.Project) bool {
		parent := -1
		if i := p.TrackIndex(parentTrackID); i >= 0 && p.Tracks[i].Type == montage.VideoTrack {
			parent = i
		}
		if parent < 0 {
			parent = slices.IndexFunc(p.Tracks, func(t montage.Track) bool { return t.Type == montage.VideoTrack })
		}
		opts := TrackOptions{EffectType: kind}
		if parent >= 0 {
			opts.ParentTrackID = p.Tracks[parent].ID
		}
		t := newTrack(p.Tracks, montage.EffectTrack, opts)
		c := newClip(&t, "", start, duration)
		if !placed(&c) {
			return false
		}
		c.Effect = montage.DefaultEffectConfig(kind)
		t.Clips = append(t.Clips, c)
		if parent >= 0 {
			p.Tracks = slices.Insert(p.Tracks, parent, t)
		} else {
			p.Tracks = append(p.Tracks, t)
		}
		id = c.ID
		return true
	})
	return ret, id
}

// UpdateEffectClipConfig replaces the effect configuration of a clip with
// fn's result, normalized. The update is rejected if the clip carries no
// effect or fn returns a configuration of another kind.
func UpdateEffectClipConfig(p montage.Project, clipID string, fn func(montage.EffectConfig) montage.EffectConfig) montage.Project {
	return edit(p, func(p *montage.Project) bool {
		c := p.Clip(clipID)
		if c == nil || c.Effect == nil {
			return false
		}
		next := fn(c.Effect)
		if next == nil || next.Kind() != c.Effect.Kind() {
			return false
		}
		c.Effect = next.Normalize()
		return true
	})
}

// UpdateEffect edits the effect configuration of a clip in place, provided
// it is a T:
//
//	p = timeline.UpdateEffect(p, id, func(c *montage.BeatZoom) { c.Intensity = 0.3 })
func UpdateEffect[T montage.EffectConfig](p montage.Project, clipID string, fn func(*T)) montage.Project {
	return UpdateEffectClipConfig(p, clipID, func(c montage.EffectConfig) montage.EffectConfig {
		v, ok := c.(T)
		if !ok {
			return nil
		}
		fn(&v)
		return v
	})
}

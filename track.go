package montage

import "slices"

type (
	// Track is an ordered sequence of clips of one kind. Clips are kept
	// non-overlapping by the editor, but the model does not enforce it.
	Track struct {
		ID    string    `json:"id" yaml:"id"`
		Type  TrackType `json:"type" yaml:"type"`
		Name  string    `json:"name" yaml:"name"`
		Muted bool      `json:"muted" yaml:"muted"`

		// IsMaster marks the audio track whose clip drives global playback.
		// At most one track in a project has it set.
		IsMaster bool `json:"isMaster,omitempty" yaml:"isMaster,omitempty"`

		// EffectType and ParentTrackID are only used by effect tracks.
		// ParentTrackID is a lookup-only reference to a video track; it may
		// dangle after the parent is deleted.
		EffectType    EffectKind `json:"effectType,omitempty" yaml:"effectType,omitempty"`
		ParentTrackID string     `json:"parentTrackId,omitempty" yaml:"parentTrackId,omitempty"`

		Clips []Clip `json:"clips" yaml:"clips"`
	}

	TrackType string
)

const (
	VideoTrack  TrackType = "video"
	AudioTrack  TrackType = "audio"
	TextTrack   TrackType = "text"
	LyricsTrack TrackType = "lyrics"
	EffectTrack TrackType = "effect"
)

// TrackTypes lists the track types in their canonical order.
var TrackTypes = []TrackType{VideoTrack, AudioTrack, TextTrack, LyricsTrack, EffectTrack}

func (t TrackType) Valid() bool {
	return slices.Contains(TrackTypes, t)
}

func (t *Track) Copy() Track {
	ret := *t
	if t.Clips != nil {
		ret.Clips = make([]Clip, len(t.Clips))
		for i := range t.Clips {
			ret.Clips[i] = t.Clips[i].Copy()
		}
	}
	return ret
}

// ClipIndex returns the index of the clip with the given id, or -1.
func (t *Track) ClipIndex(id string) int {
	return slices.IndexFunc(t.Clips, func(c Clip) bool { return c.ID == id })
}

// End returns the largest TimelineEnd of the clips on the track, or 0.
func (t *Track) End() float64 {
	var end float64
	for _, c := range t.Clips {
		end = max(end, c.TimelineEnd)
	}
	return end
}

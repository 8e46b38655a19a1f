// Package montage contains the data model of a montage project: the ordered
// tracks of a timeline, the clips on them and the loop/export work area.
//
// The types are plain values. Mutating operations live in package timeline,
// which always works on a Copy so that a Project handed out to readers (the
// player, the history, the autosaver) is never changed underneath them.
package montage

import (
	"slices"

	"github.com/google/uuid"
)

type (
	// Project is the root of the timeline tree. Duration and WorkArea are
	// derived from the clips, see timeline.Recompute.
	Project struct {
		ID       string   `json:"id" yaml:"id"`
		Name     string   `json:"name,omitempty" yaml:"name,omitempty"`
		Tracks   []Track  `json:"tracks" yaml:"tracks"`
		Duration float64  `json:"duration" yaml:"duration"`
		WorkArea WorkArea `json:"workArea" yaml:"workArea"`
	}

	// WorkArea is the region used for looped preview and export. Unless
	// IsManual is set, End follows the project duration.
	WorkArea struct {
		Start    float64 `json:"start" yaml:"start"`
		End      float64 `json:"end" yaml:"end"`
		IsManual bool    `json:"isManual" yaml:"isManual"`
	}
)

// MinDuration is the duration of a project without clips.
const MinDuration = 0.001

// NewID returns a fresh random identifier for projects, tracks and clips.
func NewID() string {
	return uuid.NewString()
}

// NewProject returns an empty project with the given name.
func NewProject(name string) Project {
	return Project{
		ID:       NewID(),
		Name:     name,
		Tracks:   []Track{},
		Duration: MinDuration,
		WorkArea: WorkArea{Start: 0, End: MinDuration},
	}
}

// Copy makes a deep copy of the project.
func (p *Project) Copy() Project {
	ret := *p
	if p.Tracks != nil {
		ret.Tracks = make([]Track, len(p.Tracks))
		for i := range p.Tracks {
			ret.Tracks[i] = p.Tracks[i].Copy()
		}
	}
	return ret
}

// TrackIndex returns the index of the track with the given id, or -1.
func (p *Project) TrackIndex(id string) int {
	return slices.IndexFunc(p.Tracks, func(t Track) bool { return t.ID == id })
}

// Track returns a pointer to the track with the given id, or nil.
func (p *Project) Track(id string) *Track {
	if i := p.TrackIndex(id); i >= 0 {
		return &p.Tracks[i]
	}
	return nil
}

// ClipPos returns the track and clip indices of the clip with the given id.
func (p *Project) ClipPos(id string) (track, clip int, ok bool) {
	for i := range p.Tracks {
		if j := p.Tracks[i].ClipIndex(id); j >= 0 {
			return i, j, true
		}
	}
	return -1, -1, false
}

// Clip returns a pointer to the clip with the given id, or nil.
func (p *Project) Clip(id string) *Clip {
	if t, c, ok := p.ClipPos(id); ok {
		return &p.Tracks[t].Clips[c]
	}
	return nil
}

// MasterTrack returns the track driving global playback, or nil if there is
// none.
func (p *Project) MasterTrack() *Track {
	for i := range p.Tracks {
		if p.Tracks[i].IsMaster {
			return &p.Tracks[i]
		}
	}
	return nil
}

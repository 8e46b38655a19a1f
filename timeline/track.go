package timeline

import (
	"slices"

	"github.com/montage-editor/montage"
)

type (
	// TrackOptions are the optional parameters of AddTrack. A zero Name means
	// the default name. IsMaster is only honoured for audio tracks.
	// EffectType and ParentTrackID are only used by effect tracks.
	TrackOptions struct {
		Name          string
		IsMaster      bool
		EffectType    montage.EffectKind
		ParentTrackID string
	}

	// TrackPatch lists the track fields to change; nil fields are kept.
	TrackPatch struct {
		Name  *string
		Muted *bool
	}
)

// AddTrack appends an empty track and returns its id. Making the new track
// the master clears the flag from every other track.
func AddTrack(p montage.Project, typ montage.TrackType, opts TrackOptions) (montage.Project, string) {
	if !typ.Valid() {
		return p, ""
	}
	var id string
	ret := edit(p, func(p *montage.Project) bool {
		t := newTrack(p.Tracks, typ, opts)
		if t.IsMaster {
			clearMaster(p)
		}
		p.Tracks = append(p.Tracks, t)
		id = t.ID
		return true
	})
	return ret, id
}

func newTrack(tracks []montage.Track, typ montage.TrackType, opts TrackOptions) montage.Track {
	t := montage.Track{
		ID:    montage.NewID(),
		Type:  typ,
		Name:  opts.Name,
		Clips: []montage.Clip{},
	}
	switch typ {
	case montage.AudioTrack:
		t.IsMaster = opts.IsMaster
	case montage.EffectTrack:
		t.EffectType = opts.EffectType
		t.ParentTrackID = opts.ParentTrackID
	}
	if t.Name == "" {
		t.Name = DefaultTrackName(tracks, typ, t.EffectType)
	}
	return t
}

func clearMaster(p *montage.Project) {
	for i := range p.Tracks {
		p.Tracks[i].IsMaster = false
	}
}

// DeleteTrack removes a track with all its clips. Effect tracks referring to
// it keep their ParentTrackID, which then resolves to no parent.
func DeleteTrack(p montage.Project, trackID string) montage.Project {
	return edit(p, func(p *montage.Project) bool {
		i := p.TrackIndex(trackID)
		if i < 0 {
			return false
		}
		p.Tracks = slices.Delete(p.Tracks, i, i+1)
		return true
	})
}

func UpdateTrack(p montage.Project, trackID string, patch TrackPatch) montage.Project {
	return edit(p, func(p *montage.Project) bool {
		t := p.Track(trackID)
		if t == nil {
			return false
		}
		if patch.Name != nil {
			t.Name = *patch.Name
		}
		if patch.Muted != nil {
			t.Muted = *patch.Muted
		}
		return true
	})
}

// SetMasterTrack makes the given audio track the master. An empty id clears
// the master flag from all tracks.
func SetMasterTrack(p montage.Project, trackID string) montage.Project {
	return edit(p, func(p *montage.Project) bool {
		if trackID == "" {
			clearMaster(p)
			return true
		}
		t := p.Track(trackID)
		if t == nil || t.Type != montage.AudioTrack {
			return false
		}
		clearMaster(p)
		t.IsMaster = true
		return true
	})
}

// ReorderTrack moves the track at index from to index to.
func ReorderTrack(p montage.Project, from, to int) montage.Project {
	return edit(p, func(p *montage.Project) bool {
		n := len(p.Tracks)
		if from < 0 || from >= n || to < 0 || to >= n || from == to {
			return false
		}
		t := p.Tracks[from]
		p.Tracks = slices.Delete(p.Tracks, from, from+1)
		p.Tracks = slices.Insert(p.Tracks, to, t)
		return true
	})
}

// ParentTrack resolves the parent of an effect track. A missing or dangling
// reference, or one to a track that is not a video track, resolves to no
// parent.
func ParentTrack(p montage.Project, t montage.Track) (montage.Track, bool) {
	if t.ParentTrackID == "" {
		return montage.Track{}, false
	}
	parent := p.Track(t.ParentTrackID)
	if parent == nil || parent.Type != montage.VideoTrack {
		return montage.Track{}, false
	}
	return *parent, true
}

// SetWorkArea pins the work area to [start, end], clamped to the project.
// It is a no-op unless the clamped range is non-empty.
func SetWorkArea(p montage.Project, start, end float64) montage.Project {
	return edit(p, func(p *montage.Project) bool {
		start = min(max(start, 0), p.Duration)
		end = min(max(end, 0), p.Duration)
		if !(end > start) {
			return false
		}
		p.WorkArea = montage.WorkArea{Start: start, End: end, IsManual: true}
		return true
	})
}

// ResetWorkArea makes the work area follow the project duration again.
func ResetWorkArea(p montage.Project) montage.Project {
	return edit(p, func(p *montage.Project) bool {
		p.WorkArea = montage.WorkArea{}
		return true
	})
}

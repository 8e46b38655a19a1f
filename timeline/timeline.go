// Package timeline implements the mutations of a montage.Project.
//
// Every function takes the current project and returns the next one; the
// input is never modified. Invalid targets (unknown ids, split points outside
// the clip, non-positive durations) leave the project unchanged rather than
// returning an error. Every change goes through the same gate, which applies
// Recompute as a postcondition, so the duration and the work area are never
// stale.
package timeline

import (
	"fmt"

	"github.com/montage-editor/montage"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// edit applies fn to a deep copy of p. If fn reports no change, p itself is
// returned; otherwise the copy is recomputed and returned.
func edit(p montage.Project, fn func(p *montage.Project) bool) montage.Project {
	c := p.Copy()
	if !fn(&c) {
		return p
	}
	return Recompute(c)
}

// Recompute derives Duration from the clips and makes an automatic work area
// follow it. It is idempotent.
func Recompute(p montage.Project) montage.Project {
	var end float64
	for i := range p.Tracks {
		end = max(end, p.Tracks[i].End())
	}
	p.Duration = max(end, montage.MinDuration)
	if !p.WorkArea.IsManual {
		p.WorkArea.End = p.Duration
		if p.WorkArea.Start >= p.WorkArea.End {
			p.WorkArea.Start = 0
		}
	}
	return p
}

// DefaultTrackName returns the name a new track of the given type gets when
// added after tracks. The first track of a naming group gets the bare base
// name, e.g. "Video"; later ones are numbered, e.g. "Video 2". Video and text
// tracks share a group, audio and lyrics have their own, and effect tracks
// are grouped per effect kind.
func DefaultTrackName(tracks []montage.Track, typ montage.TrackType, kind montage.EffectKind) string {
	base := baseName(typ, kind)
	n := 0
	for i := range tracks {
		if sameGroup(&tracks[i], typ, kind) {
			n++
		}
	}
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s %d", base, n+1)
}

func baseName(typ montage.TrackType, kind montage.EffectKind) string {
	if typ == montage.EffectTrack {
		if kind == "" {
			return "Effect"
		}
		return kind.Label()
	}
	return cases.Title(language.English).String(string(typ))
}

func sameGroup(t *montage.Track, typ montage.TrackType, kind montage.EffectKind) bool {
	switch typ {
	case montage.VideoTrack, montage.TextTrack:
		return t.Type == montage.VideoTrack || t.Type == montage.TextTrack
	case montage.EffectTrack:
		return t.Type == montage.EffectTrack && t.EffectType == kind
	default:
		return t.Type == typ
	}
}

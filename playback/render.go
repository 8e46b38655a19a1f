package playback

import (
	"math"

	"github.com/montage-editor/montage"
	"github.com/montage-editor/montage/audio"
)

// RenderWorkArea renders what the player would play over the work area of p
// (or the whole project if the work area is empty) into a new buffer with
// the format of master, the decoded asset of the master clip. The parts not
// covered by the clip are silent, as is all of it if the master track is
// muted.
func RenderWorkArea(p montage.Project, master *audio.Buffer) *audio.Buffer {
	start, end := p.WorkArea.Start, p.WorkArea.End
	if !(end > start) {
		start, end = 0, p.Duration
	}
	frames := int(math.Round((end - start) * float64(master.SampleRate)))
	out := &audio.Buffer{
		SampleRate: master.SampleRate,
		Channels:   master.Channels,
		Data:       make([]float32, max(frames, 0)*master.Channels),
	}
	track := p.MasterTrack()
	if track == nil || len(track.Clips) == 0 || track.Muted {
		return out
	}
	clip := track.Clips[0]
	from, to := max(clip.TimelineStart, start), min(clip.TimelineEnd, end)
	if to <= from {
		return out
	}
	src := master.Slice(clip.SourceTime(from), clip.SourceTime(to))
	offset := out.Frame(from-start) * out.Channels
	copy(out.Data[offset:], src.Data)
	return out
}

package editor

import (
	"github.com/montage-editor/montage"
	"github.com/montage-editor/montage/timeline"
)

// The methods below apply the timeline operation of the same name to the
// live project. Creation methods return the id of the new track or clip, or
// "" if nothing was created.

func (m *Model) AddTrack(typ montage.TrackType, opts timeline.TrackOptions) string {
	p, id := timeline.AddTrack(m.project, typ, opts)
	m.change("AddTrack", p)
	return id
}

func (m *Model) DeleteTrack(trackID string) {
	m.change("DeleteTrack", timeline.DeleteTrack(m.project, trackID))
}

func (m *Model) UpdateTrack(trackID string, patch timeline.TrackPatch) {
	m.change("UpdateTrack", timeline.UpdateTrack(m.project, trackID, patch))
}

func (m *Model) SetMasterTrack(trackID string) {
	m.change("SetMasterTrack", timeline.SetMasterTrack(m.project, trackID))
}

func (m *Model) ReorderTrack(from, to int) {
	m.change("ReorderTrack", timeline.ReorderTrack(m.project, from, to))
}

func (m *Model) SetWorkArea(start, end float64) {
	m.change("SetWorkArea", timeline.SetWorkArea(m.project, start, end))
}

func (m *Model) ResetWorkArea() {
	m.change("ResetWorkArea", timeline.ResetWorkArea(m.project))
}

func (m *Model) AddClip(trackID, assetID string, start, duration float64) string {
	p, id := timeline.AddClip(m.project, trackID, assetID, start, duration)
	m.change("AddClip", p)
	return id
}

func (m *Model) AddTextTrack(opts timeline.TextClipOptions) string {
	p, id := timeline.AddTextTrack(m.project, opts)
	m.change("AddTextTrack", p)
	return id
}

func (m *Model) AddLyricsTrack(opts timeline.LyricsClipOptions) string {
	p, id := timeline.AddLyricsTrack(m.project, opts)
	m.change("AddLyricsTrack", p)
	return id
}

func (m *Model) AddEffectTrack(kind montage.EffectKind, start, duration float64, parentTrackID string) string {
	p, id := timeline.AddEffectTrack(m.project, kind, start, duration, parentTrackID)
	m.change("AddEffectTrack", p)
	return id
}

func (m *Model) UpdateClip(clipID string, patch timeline.ClipPatch) {
	m.change("UpdateClip", timeline.UpdateClip(m.project, clipID, patch))
}

func (m *Model) UpdateEffectClipConfig(clipID string, fn func(montage.EffectConfig) montage.EffectConfig) {
	m.change("UpdateEffectClipConfig", timeline.UpdateEffectClipConfig(m.project, clipID, fn))
}

func (m *Model) SplitClip(clipID string, t float64) {
	m.change("SplitClip", timeline.SplitClip(m.project, clipID, t))
}

func (m *Model) DeleteClip(clipID string) {
	m.change("DeleteClip", timeline.DeleteClip(m.project, clipID))
}

func (m *Model) MoveClipToTrack(clipID, trackID string, start float64) {
	m.change("MoveClipToTrack", timeline.MoveClipToTrack(m.project, clipID, trackID, start))
}

func (m *Model) MoveClipToNewTrack(clipID string, start float64) string {
	p, id := timeline.MoveClipToNewTrack(m.project, clipID, start)
	m.change("MoveClipToNewTrack", p)
	return id
}

func (m *Model) MoveClipToNewTrackAt(clipID string, index int, start float64) string {
	p, id := timeline.MoveClipToNewTrackAt(m.project, clipID, index, start)
	m.change("MoveClipToNewTrackAt", p)
	return id
}

func (m *Model) SyncClipToMaster(clipID string, offset float64) {
	m.change("SyncClipToMaster", timeline.SyncClipToMaster(m.project, clipID, offset))
}

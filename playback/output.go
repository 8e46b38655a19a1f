package playback

import (
	"time"

	"github.com/montage-editor/montage/audio"
)

type (
	// Output is the audio output node. The player keeps at most one Source
	// started at a time and always stops the previous one before starting a
	// new one.
	Output interface {
		Start(buf *audio.Buffer, s Schedule) (Source, error)
	}

	// Source is a started buffer. Stop silences it and releases its
	// resources; it may be called more than once.
	Source interface {
		Stop()
	}

	// Schedule tells the output which part of the buffer to play and when.
	// After Delay of silence, the buffer plays from Offset to End, both in
	// seconds of the buffer.
	Schedule struct {
		Delay  time.Duration
		Offset float64
		End    float64
		Gain   float32
	}
)

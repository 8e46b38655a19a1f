package oto

import (
	"encoding/binary"
	"io"
	"math"
	"sync/atomic"
	"time"

	"github.com/montage-editor/montage/audio"
	"github.com/montage-editor/montage/playback"
)

const bytesPerFrame = 8 // stereo float32

// sourceReader renders a scheduled buffer as the byte stream oto pulls from:
// the delay as silence, then the buffer from the offset to the end,
// linearly resampled to the output rate.
type sourceReader struct {
	buf     *audio.Buffer
	silence int     // output frames of silence left
	pos     float64 // read position in buffer frames
	end     float64
	step    float64 // buffer frames per output frame
	stopped atomic.Bool
}

func newSourceReader(buf *audio.Buffer, s playback.Schedule, sampleRate int) *sourceReader {
	rate := float64(buf.SampleRate)
	end := float64(buf.Frames())
	if s.End > 0 {
		end = min(end, s.End*rate)
	}
	return &sourceReader{
		buf:     buf,
		silence: int(s.Delay.Seconds() * float64(sampleRate)),
		pos:     max(s.Offset, 0) * rate,
		end:     end,
		step:    rate / float64(sampleRate),
	}
}

func (r *sourceReader) stop() {
	r.stopped.Store(true)
}

func (r *sourceReader) Read(p []byte) (int, error) {
	if r.stopped.Load() {
		return 0, io.EOF
	}
	n := 0
	for ; n+bytesPerFrame <= len(p); n += bytesPerFrame {
		var left, right float32
		if r.silence > 0 {
			r.silence--
		} else {
			if r.pos >= r.end {
				break
			}
			left, right = r.frame(r.pos)
			r.pos += r.step
		}
		binary.LittleEndian.PutUint32(p[n:], math.Float32bits(left))
		binary.LittleEndian.PutUint32(p[n+4:], math.Float32bits(right))
	}
	if n == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// frame interpolates the stereo frame at fractional position pos. Mono
// buffers play on both channels; channels past the second are dropped.
func (r *sourceReader) frame(pos float64) (left, right float32) {
	i := int(pos)
	frac := float32(pos - float64(i))
	j := min(i+1, r.buf.Frames()-1)
	left = lerp(r.sample(i, 0), r.sample(j, 0), frac)
	if r.buf.Channels == 1 {
		return left, left
	}
	right = lerp(r.sample(i, 1), r.sample(j, 1), frac)
	return left, right
}

func (r *sourceReader) sample(frame, channel int) float32 {
	return r.buf.Data[frame*r.buf.Channels+channel]
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// bufferDuration is the oto buffer length for otoBufferSize frames.
func bufferDuration(sampleRate int) time.Duration {
	return time.Duration(otoBufferSize) * time.Second / time.Duration(sampleRate)
}

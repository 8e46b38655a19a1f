// Package audio holds decoded audio: the Buffer type, decoding of WAV and MP3
// assets, retrieval of asset bytes and the session scoped Cache that makes
// sure every asset is fetched and decoded only once.
package audio

import (
	"github.com/viterin/vek/vek32"
)

// Buffer is decoded audio with interleaved float32 samples in [-1, 1].
type Buffer struct {
	SampleRate int
	Channels   int
	Data       []float32
}

// Frames returns the number of sample frames, i.e. samples per channel.
func (b *Buffer) Frames() int {
	if b.Channels <= 0 {
		return 0
	}
	return len(b.Data) / b.Channels
}

// Duration returns the length of the buffer in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Frame returns the frame index of position t seconds, clamped to the buffer.
func (b *Buffer) Frame(t float64) int {
	f := int(t * float64(b.SampleRate))
	return min(max(f, 0), b.Frames())
}

// Slice returns the part of the buffer between start and end seconds. The
// returned buffer shares its data with b.
func (b *Buffer) Slice(start, end float64) *Buffer {
	s, e := b.Frame(start), b.Frame(end)
	if e < s {
		e = s
	}
	return &Buffer{
		SampleRate: b.SampleRate,
		Channels:   b.Channels,
		Data:       b.Data[s*b.Channels : e*b.Channels],
	}
}

// Peaks splits the buffer in n equal windows and returns the peak absolute
// sample value of each, over all channels. Used for waveform overviews.
func (b *Buffer) Peaks(n int) []float32 {
	frames := b.Frames()
	if n <= 0 || frames == 0 {
		return nil
	}
	ret := make([]float32, n)
	var tmp []float32
	for i := range ret {
		s := i * frames / n * b.Channels
		e := (i + 1) * frames / n * b.Channels
		if e <= s {
			continue
		}
		tmp = append(tmp[:0], b.Data[s:e]...)
		vek32.Abs_Inplace(tmp)
		ret[i] = vek32.Max(tmp)
	}
	return ret
}

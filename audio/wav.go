package audio

import (
	"fmt"
	"io"
	"math"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/viterin/vek/vek32"
)

// WriteWav writes the buffer as a 16-bit PCM wav file.
func WriteWav(w io.WriteSeeker, b *Buffer) error {
	if b.Channels <= 0 || b.SampleRate <= 0 {
		return fmt.Errorf("cannot write wav of %d channels at %d Hz", b.Channels, b.SampleRate)
	}
	enc := wav.NewEncoder(w, b.SampleRate, 16, b.Channels, wavFormatPCM)
	scaled := vek32.MulNumber(b.Data, math.MaxInt16)
	ib := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: b.Channels, SampleRate: b.SampleRate},
		Data:           make([]int, len(scaled)),
		SourceBitDepth: 16,
	}
	for i, v := range scaled {
		ib.Data[i] = int(min(max(v, math.MinInt16), math.MaxInt16))
	}
	if err := enc.Write(ib); err != nil {
		return fmt.Errorf("could not write wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("could not finish wav file: %w", err)
	}
	return nil
}

package oto

import (
	"encoding/binary"
	"io"
	"math"
	"testing"
	"time"

	"github.com/montage-editor/montage/audio"
	"github.com/montage-editor/montage/playback"
)

func readAll(t *testing.T, r io.Reader) []float32 {
	t.Helper()
	var ret []float32
	chunk := make([]byte, 100*bytesPerFrame+3) // odd size on purpose
	for {
		n, err := r.Read(chunk)
		if n%bytesPerFrame != 0 {
			t.Fatalf("read %d bytes, not a whole number of frames", n)
		}
		for i := 0; i < n; i += 4 {
			ret = append(ret, math.Float32frombits(binary.LittleEndian.Uint32(chunk[i:])))
		}
		if err == io.EOF {
			return ret
		}
		if err != nil {
			t.Fatalf("read failed: %v", err)
		}
	}
}

func ramp(rate, frames int) *audio.Buffer {
	b := &audio.Buffer{SampleRate: rate, Channels: 1, Data: make([]float32, frames)}
	for i := range b.Data {
		b.Data[i] = float32(i) / float32(frames)
	}
	return b
}

func TestReaderDelayAndOffset(t *testing.T) {
	buf := ramp(1000, 1000)
	r := newSourceReader(buf, playback.Schedule{Delay: 100 * time.Millisecond, Offset: 0.5, End: 0.75, Gain: 1}, 1000)
	out := readAll(t, r)
	if len(out) != 2*(100+250) {
		t.Fatalf("got %d samples, expected %d", len(out), 2*(100+250))
	}
	for i := 0; i < 200; i++ {
		if out[i] != 0 {
			t.Fatalf("sample %d of the delay is %v", i, out[i])
		}
	}
	if out[200] != 0.5 || out[201] != 0.5 {
		t.Fatalf("first frame after the delay is %v/%v, expected 0.5", out[200], out[201])
	}
}

func TestReaderResamples(t *testing.T) {
	buf := ramp(500, 500)
	r := newSourceReader(buf, playback.Schedule{Gain: 1}, 1000)
	out := readAll(t, r)
	if len(out) != 2*1000 {
		t.Fatalf("upsampling 500 frames 2x gave %d frames", len(out)/2)
	}
	// odd output frames fall between two input frames
	if got, want := out[2], (buf.Data[0]+buf.Data[1])/2; math.Abs(float64(got-want)) > 1e-6 {
		t.Fatalf("interpolated sample %v, expected %v", got, want)
	}
}

func TestReaderStop(t *testing.T) {
	r := newSourceReader(ramp(1000, 1000), playback.Schedule{Gain: 1}, 1000)
	r.stop()
	if n, err := r.Read(make([]byte, 64)); n != 0 || err != io.EOF {
		t.Fatalf("stopped reader returned %d, %v", n, err)
	}
}

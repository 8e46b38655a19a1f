package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/viterin/vek/vek32"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// Decode decodes a WAV or MP3 file, detected from its header.
func Decode(data []byte) (*Buffer, error) {
	switch {
	case isWav(data):
		return decodeWav(bytes.NewReader(data))
	case isMP3(data):
		return decodeMP3(bytes.NewReader(data))
	default:
		return nil, ErrUnsupportedFormat
	}
}

func isWav(data []byte) bool {
	return len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE"
}

// isMP3 accepts an ID3v2 tag or a bare MPEG frame sync.
func isMP3(data []byte) bool {
	if bytes.HasPrefix(data, []byte("ID3")) {
		return true
	}
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0
}

func decodeWav(r io.ReadSeeker) (*Buffer, error) {
	d := wav.NewDecoder(r)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("invalid wav file: %w", ErrUnsupportedFormat)
	}
	if d.WavAudioFormat != wavFormatPCM && d.WavAudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("wav audio format %d: %w", d.WavAudioFormat, ErrUnsupportedFormat)
	}
	if d.BitDepth == 0 || d.NumChans == 0 {
		return nil, fmt.Errorf("wav file without bit depth or channels: %w", ErrUnsupportedFormat)
	}
	ib, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("could not decode wav data: %w", err)
	}
	fb := ib.AsFloat32Buffer()
	vek32.MulNumber_Inplace(fb.Data, float32(1/math.Pow(2, float64(d.BitDepth-1))))
	channels := int(d.NumChans)
	return &Buffer{
		SampleRate: int(d.SampleRate),
		Channels:   channels,
		Data:       fb.Data[:len(fb.Data)-len(fb.Data)%channels],
	}, nil
}

// decodeMP3 decodes to 16-bit stereo, which is what go-mp3 always outputs.
func decodeMP3(r io.Reader) (*Buffer, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("could not create mp3 decoder: %w", err)
	}
	pcm, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("could not decode mp3 data: %w", err)
	}
	n := len(pcm) / 2
	n -= n % 2
	data := make([]float32, n)
	for i := range data {
		data[i] = float32(int16(binary.LittleEndian.Uint16(pcm[2*i:])))
	}
	vek32.MulNumber_Inplace(data, 1.0/32768)
	return &Buffer{SampleRate: d.SampleRate(), Channels: 2, Data: data}, nil
}

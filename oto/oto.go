// Package oto implements playback.Output on github.com/ebitengine/oto/v3.
package oto

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/montage-editor/montage/audio"
	"github.com/montage-editor/montage/playback"
)

// Context is the audio device. oto allows only one per process.
type Context struct {
	ctx        *oto.Context
	sampleRate int
}

type source struct {
	player *oto.Player
	reader *sourceReader
	once   sync.Once
}

const otoBufferSize = 8192

// NewContext opens the audio device for stereo float32 output at the given
// sample rate and waits until it is ready.
func NewContext(sampleRate int) (*Context, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   bufferDuration(sampleRate),
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{ctx: ctx, sampleRate: sampleRate}, nil
}

func (c *Context) SampleRate() int {
	return c.sampleRate
}

// Start implements playback.Output.
func (c *Context) Start(buf *audio.Buffer, s playback.Schedule) (playback.Source, error) {
	if buf.Channels <= 0 || buf.SampleRate <= 0 {
		return nil, fmt.Errorf("cannot play buffer of %d channels at %d Hz", buf.Channels, buf.SampleRate)
	}
	r := newSourceReader(buf, s, c.sampleRate)
	p := c.ctx.NewPlayer(r)
	p.SetVolume(float64(s.Gain))
	p.Play()
	return &source{player: p, reader: r}, nil
}

// Suspend pauses the device, e.g. while the application is in the
// background; Resume undoes it.
func (c *Context) Suspend() error {
	if err := c.ctx.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (c *Context) Resume() error {
	if err := c.ctx.Resume(); err != nil {
		return fmt.Errorf("cannot resume oto context: %w", err)
	}
	return nil
}

func (s *source) Stop() {
	s.once.Do(func() {
		s.reader.stop()
		s.player.Pause()
	})
}

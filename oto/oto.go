package oto

import (
	"fmt"
	"io"

	"github.com/ebitengine/oto/v3"
	"github.com/vsariola/modsynth"
)

// Context is a sound card output with a fixed channel count and
// samplerate. Oto allows only one context per process.
type Context struct {
	context    *oto.Context
	channels   int
	samplerate int
}

// Output is an AudioSink that plays 16-bit audio through an oto player.
// WriteAudio blocks until the player has consumed the previous block.
type Output struct {
	player    *oto.Player
	writer    *io.PipeWriter
	tmpBuffer []byte
}

// NewContext opens the sound card and waits until it is ready.
func NewContext(channels, samplerate int) (*Context, error) {
	context, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   samplerate,
		ChannelCount: channels,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &Context{context: context, channels: channels, samplerate: samplerate}, nil
}

func (c *Context) Output(channels, samplerate int) (modsynth.AudioSink, error) {
	if channels != c.channels || samplerate != c.samplerate {
		return nil, fmt.Errorf("oto context is %d channels at %d Hz, cannot output %d channels at %d Hz", c.channels, c.samplerate, channels, samplerate)
	}
	reader, writer := io.Pipe()
	player := c.context.NewPlayer(reader)
	player.Play()
	return &Output{player: player, writer: writer}, nil
}

// Close suspends the sound card; oto contexts cannot be disposed.
func (c *Context) Close() error {
	if err := c.context.Suspend(); err != nil {
		return fmt.Errorf("cannot suspend oto context: %w", err)
	}
	return nil
}

func (o *Output) WriteAudio(floatBuffer []float32) error {
	// reuse the capacity of tmpBuffer between calls
	o.tmpBuffer = FloatBufferTo16BitLE(floatBuffer, o.tmpBuffer[:0])
	if _, err := o.writer.Write(o.tmpBuffer); err != nil {
		return fmt.Errorf("cannot write to player: %w", err)
	}
	return nil
}

func (o *Output) Close() error {
	o.writer.Close()
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

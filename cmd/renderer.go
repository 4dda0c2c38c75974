package cmd

import (
	"errors"
	"fmt"

	"github.com/vsariola/modsynth"
)

// Renderer pulls interleaved blocks of one scope of a unit.
type Renderer struct {
	Unit  *modsynth.ModularSynthAudio
	Scope modsynth.Scope

	blocks      [][]float32
	interleaved []float32
}

var ErrNoOutput = errors.New("the scope has no channels or a zero buffer size")

// Next renders the next block of every channel and returns them
// interleaved, with the channel count of the block. The returned slice is
// reused by the following call.
func (r *Renderer) Next() ([]float32, int, error) {
	var err error
	r.blocks, err = r.Unit.Render(r.Scope, r.blocks)
	if err != nil {
		return nil, 0, fmt.Errorf("render failed: %w", err)
	}
	if len(r.blocks) == 0 || len(r.blocks[0]) == 0 {
		return nil, 0, ErrNoOutput
	}
	r.interleaved = modsynth.Interleave(r.interleaved, r.blocks)
	return r.interleaved, len(r.blocks), nil
}

// Notes renders length frames of the given keys held for hold frames and
// returns the interleaved result, exactly length frames long. The channel
// count is taken from the first block.
func (r *Renderer) Notes(keys []byte, hold, length int) ([]float32, error) {
	var ret []float32
	for _, k := range keys {
		if err := r.Unit.KeyOn(r.Scope, k); err != nil {
			return nil, fmt.Errorf("key %d: %w", k, err)
		}
	}
	held := true
	release := func() {
		for _, k := range keys {
			r.Unit.KeyOff(r.Scope, k)
		}
		held = false
	}
	defer func() {
		if held {
			release()
		}
	}()
	channels := 0
	for frame := 0; frame < length; {
		if held && frame >= hold {
			release()
		}
		block, n, err := r.Next()
		if err != nil {
			return nil, err
		}
		if channels == 0 {
			channels = n
			ret = make([]float32, 0, length*channels)
		} else if n != channels {
			return nil, fmt.Errorf("channel count changed from %d to %d while rendering notes", channels, n)
		}
		frames := min(len(block)/channels, length-frame)
		ret = append(ret, block[:frames*channels]...)
		frame += frames
	}
	return ret, nil
}

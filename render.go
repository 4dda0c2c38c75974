package modsynth

import (
	"fmt"
	"math"

	"github.com/viterin/vek/vek32"
	"golang.org/x/sync/errgroup"
)

// Process renders one block of a channel of a scope into that channel's
// scratch buffer, using the live port values, and returns the buffer. The
// buffer is nil when the buffer size is zero. The returned buffer belongs to
// the channel: it stays valid until the next configuration change or
// Process call.
func (m *ModularSynthAudio) Process(scope Scope, channel int) (*Buffer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.channel(scope, channel)
	if err != nil {
		return nil, err
	}
	var params Params
	m.ports.Params(&params)
	work := m.getWork(c.BufferSize())
	defer m.workPool.Put(work)
	if err := processChannel(c, *work, &params); err != nil {
		return nil, fmt.Errorf("%v channel %d: %w", scope, channel, err)
	}
	return c.Buffer(), nil
}

// Render processes every channel of a scope, in parallel, and decodes the
// scratch buffers into out, one block per channel. out is resized to the
// scope's channel count, reusing its capacity, and returned, in the manner
// of append. Every block has the buffer size; with a zero buffer size the
// blocks are empty.
func (m *ModularSynthAudio) Render(scope Scope, out [][]float32) ([][]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.liveScope(scope)
	if err != nil {
		return out[:0], err
	}
	if cap(out) < len(s.channels) {
		out = append(out[:cap(out)], make([][]float32, len(s.channels)-cap(out))...)
	}
	out = out[:len(s.channels)]
	var params Params
	m.ports.Params(&params)
	var g errgroup.Group
	for i, c := range s.channels {
		i, c := i, c
		g.Go(func() error {
			work := m.getWork(c.BufferSize())
			defer m.workPool.Put(work)
			if err := processChannel(c, *work, &params); err != nil {
				return fmt.Errorf("%v channel %d: %w", scope, i, err)
			}
			if cap(out[i]) < c.BufferSize() {
				out[i] = make([]float32, c.BufferSize())
			}
			out[i] = out[i][:c.BufferSize()]
			c.Buffer().Decode(out[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}

// processChannel turns a panic of the kernel into an error.
func processChannel(c *ChannelData, work []float32, params *Params) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("synth util panicked: %v", r)
		}
	}()
	c.process(work, params)
	return nil
}

func (m *ModularSynthAudio) getWork(n int) *[]float32 {
	work := m.workPool.Get().(*[]float32)
	if cap(*work) < n {
		*work = make([]float32, n)
	}
	*work = (*work)[:n]
	return work
}

// KeyOn registers a note-on of key in every channel of a scope.
func (m *ModularSynthAudio) KeyOn(scope Scope, key byte) error {
	return m.eachKeyChannel(scope, key, (*ChannelData).keyOn)
}

// KeyOff registers a note-off of key in every channel of a scope. Extra
// note-offs are ignored.
func (m *ModularSynthAudio) KeyOff(scope Scope, key byte) error {
	return m.eachKeyChannel(scope, key, (*ChannelData).keyOff)
}

// AllKeysOff clears the key-on counts of all keys of a scope.
func (m *ModularSynthAudio) AllKeysOff(scope Scope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.liveScope(scope)
	if err != nil {
		return err
	}
	for _, c := range s.channels {
		c.allKeysOff()
	}
	return nil
}

// KeyOnCount returns the key-on count of key in a channel of a scope.
func (m *ModularSynthAudio) KeyOnCount(scope Scope, channel int, key byte) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, err := m.channel(scope, channel)
	if err != nil {
		return 0, err
	}
	in := c.Input(int(key))
	if in == nil {
		return 0, ErrKeyRange
	}
	return in.KeyOn, nil
}

func (m *ModularSynthAudio) eachKeyChannel(scope Scope, key byte, f func(c *ChannelData, key byte)) error {
	if key >= NumKeys {
		return ErrKeyRange
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.liveScope(scope)
	if err != nil {
		return err
	}
	for _, c := range s.channels {
		f(c, key)
	}
	return nil
}

func (m *ModularSynthAudio) liveScope(scope Scope) (*ScopeData, error) {
	if m.closed {
		return nil, ErrUnitClosed
	}
	s := m.Scope(scope)
	if s == nil {
		return nil, fmt.Errorf("%v: %w", scope, ErrScopeNotLive)
	}
	return s, nil
}

func (m *ModularSynthAudio) channel(scope Scope, channel int) (*ChannelData, error) {
	s, err := m.liveScope(scope)
	if err != nil {
		return nil, err
	}
	c := s.Channel(channel)
	if c == nil {
		return nil, fmt.Errorf("%v channel %d of %d: %w", scope, channel, s.AudioChannels(), ErrChannelRange)
	}
	return c, nil
}

// Peak returns the largest absolute sample value of block, in decibels full
// scale. Silence is -Inf.
func Peak(block []float32) float64 {
	if len(block) == 0 {
		return math.Inf(-1)
	}
	abs := vek32.Abs(block)
	return 20 * math.Log10(float64(vek32.Max(abs)))
}

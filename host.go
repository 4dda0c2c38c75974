package modsynth

import "sync"

type (
	// Listener receives the configuration changes of an Audio. The callbacks
	// run synchronously on the goroutine that changed the Audio, one at a
	// time. A Listener must not call Subscribe or Unsubscribe of the same
	// Audio from a callback.
	Listener interface {
		AudioChannelsChanged(old, n int)
		BufferSizeChanged(bufferSize int)
		FormatChanged(format SampleFormat)
		SamplerateChanged(samplerate int)
	}

	// Audio is the hosting audio object: the source of the channel count,
	// buffer size, format and samplerate that attached units follow.
	Audio struct {
		notifyMu sync.Mutex // serializes notifications, taken before mu
		mu       sync.Mutex

		audioChannels int
		bufferSize    int
		format        SampleFormat
		samplerate    int
		inputPads     int

		listeners []Listener
	}
)

// NewAudio creates a host audio object from the audio settings of a config.
// Negative values are clamped to zero. No unit is attached yet.
func NewAudio(c Config) *Audio {
	c = c.normalized()
	return &Audio{
		audioChannels: c.AudioChannels,
		bufferSize:    c.BufferSize,
		format:        c.Format,
		samplerate:    c.Samplerate,
		inputPads:     c.InputPads,
	}
}

func (a *Audio) AudioChannels() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.audioChannels
}

func (a *Audio) BufferSize() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bufferSize
}

func (a *Audio) Format() SampleFormat {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.format
}

func (a *Audio) Samplerate() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.samplerate
}

func (a *Audio) InputPads() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inputPads
}

// SetInputPads changes the input pad count. The modular synth does not
// follow pads, so nobody is notified.
func (a *Audio) SetInputPads(n int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.inputPads = max(n, 0)
}

// SetAudioChannels changes the channel count and notifies the listeners if
// the count actually changed.
func (a *Audio) SetAudioChannels(n int) {
	n = max(n, 0)
	a.notify(func() (func(Listener), bool) {
		old := a.audioChannels
		if old == n {
			return nil, false
		}
		a.audioChannels = n
		return func(l Listener) { l.AudioChannelsChanged(old, n) }, true
	})
}

func (a *Audio) SetBufferSize(n int) {
	n = max(n, 0)
	a.notify(func() (func(Listener), bool) {
		if a.bufferSize == n {
			return nil, false
		}
		a.bufferSize = n
		return func(l Listener) { l.BufferSizeChanged(n) }, true
	})
}

func (a *Audio) SetFormat(f SampleFormat) {
	a.notify(func() (func(Listener), bool) {
		if a.format == f {
			return nil, false
		}
		a.format = f
		return func(l Listener) { l.FormatChanged(f) }, true
	})
}

func (a *Audio) SetSamplerate(rate int) {
	rate = max(rate, 0)
	a.notify(func() (func(Listener), bool) {
		if a.samplerate == rate {
			return nil, false
		}
		a.samplerate = rate
		return func(l Listener) { l.SamplerateChanged(rate) }, true
	})
}

// notify runs change under the state lock and then delivers the returned
// callback to a copy of the listener list, outside the state lock so that
// listeners can query the Audio.
func (a *Audio) notify(change func() (func(Listener), bool)) {
	a.notifyMu.Lock()
	defer a.notifyMu.Unlock()
	a.mu.Lock()
	deliver, ok := change()
	listeners := append([]Listener(nil), a.listeners...)
	a.mu.Unlock()
	if !ok {
		return
	}
	for _, l := range listeners {
		deliver(l)
	}
}

// Subscribe adds l to the listeners and brings it up to date by delivering
// the current buffer size, format, samplerate and channel count, in that
// order, before any later change can reach it.
func (a *Audio) Subscribe(l Listener) {
	a.notifyMu.Lock()
	defer a.notifyMu.Unlock()
	a.mu.Lock()
	a.listeners = append(a.listeners, l)
	channels, bufferSize, format, samplerate := a.audioChannels, a.bufferSize, a.format, a.samplerate
	a.mu.Unlock()
	l.BufferSizeChanged(bufferSize)
	l.FormatChanged(format)
	l.SamplerateChanged(samplerate)
	l.AudioChannelsChanged(0, channels)
}

// Unsubscribe removes l; it is not called again after Unsubscribe returns.
func (a *Audio) Unsubscribe(l Listener) {
	a.notifyMu.Lock()
	defer a.notifyMu.Unlock()
	a.mu.Lock()
	defer a.mu.Unlock()
	for i, x := range a.listeners {
		if x == l {
			a.listeners = append(a.listeners[:i], a.listeners[i+1:]...)
			return
		}
	}
}

package modsynth

import (
	"log"
	"sync"
)

// ModularSynthAudio is the modular synth recall attached to a hosting Audio.
// It owns the port set and the Scope Data of the live scopes, and keeps the
// Channel Data of every live scope in step with the Audio's configuration.
//
// All structural state is guarded by one lock. Process, Render and the key
// methods take it too, so a configuration change never runs in the middle of
// a block. Port values are not guarded by it.
type ModularSynthAudio struct {
	mu sync.Mutex

	synther Synther
	ports   *Ports
	scopes  [ScopeCount]*ScopeData

	bufferSize int
	format     SampleFormat
	samplerate int

	audio  *Audio
	logger *log.Logger
	closed bool

	workPool sync.Pool // *[]float32 blocks for rendering
}

// NewModularSynthAudio creates a unit whose channels get their SynthUtils
// from synther. The ports are created first with their defaults, then the
// live scopes with zero channels; Attach populates them.
func NewModularSynthAudio(synther Synther) *ModularSynthAudio {
	m := &ModularSynthAudio{
		synther: synther,
		ports:   NewPorts(PluginName),
		format:  DefaultFormat,
	}
	for _, s := range LiveScopes {
		m.scopes[s] = newScopeData(s)
	}
	m.workPool.New = func() any { ret := make([]float32, 0, 4096); return &ret }
	return m
}

// Name returns the plugin name of the unit.
func (m *ModularSynthAudio) Name() string { return PluginName }

// Synther returns the factory of the channels' SynthUtils.
func (m *ModularSynthAudio) Synther() Synther { return m.synther }

// Ports returns the port set; nil after Close.
func (m *ModularSynthAudio) Ports() *Ports {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ports
}

// SetLogger makes the unit log its configuration changes to l. A nil logger
// disables logging.
func (m *ModularSynthAudio) SetLogger(l *log.Logger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logger = l
}

func (m *ModularSynthAudio) logf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}

// Attach binds the unit to audio, detaching it first from any previous one.
// The unit subscribes to audio's notifications and is immediately brought
// to audio's current configuration.
func (m *ModularSynthAudio) Attach(audio *Audio) error {
	m.Detach()
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrUnitClosed
	}
	m.audio = audio
	m.mu.Unlock()
	return m.subscribe(audio)
}

// subscribe subscribes the unit to audio. A Close that ran since Attach
// released the lock could not unsubscribe a unit that was not subscribed
// yet, so the subscription is undone here.
func (m *ModularSynthAudio) subscribe(audio *Audio) error {
	audio.Subscribe(m)
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		audio.Unsubscribe(m)
		return ErrUnitClosed
	}
	return nil
}

// Detach unsubscribes the unit from its Audio. The channels are kept as
// they are.
func (m *ModularSynthAudio) Detach() {
	m.mu.Lock()
	audio := m.audio
	m.audio = nil
	m.mu.Unlock()
	if audio != nil {
		audio.Unsubscribe(m)
	}
}

// Audio returns the attached Audio, or nil.
func (m *ModularSynthAudio) Audio() *Audio {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.audio
}

// Close detaches the unit and releases, in order, every Channel Data of
// every live scope, the scopes and the ports. Calling Close again does
// nothing.
func (m *ModularSynthAudio) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	audio := m.audio
	m.audio = nil
	for _, s := range LiveScopes {
		m.scopes[s].release()
		m.scopes[s] = nil
	}
	m.ports = nil
	m.logf("%v closed", PluginName)
	m.mu.Unlock()
	if audio != nil {
		audio.Unsubscribe(m)
	}
}

// Lock acquires the unit lock. Hold it while inspecting the ScopeData
// returned by Scope; do not call other methods of the unit while holding
// it.
func (m *ModularSynthAudio) Lock() { m.mu.Lock() }

func (m *ModularSynthAudio) Unlock() { m.mu.Unlock() }

// Scope returns the Scope Data of s, nil if s is not a live scope or the
// unit is closed. The caller must hold the lock (see Lock) while using it.
func (m *ModularSynthAudio) Scope(s Scope) *ScopeData {
	if s < 0 || s >= ScopeCount {
		return nil
	}
	return m.scopes[s]
}

// AudioChannels returns the channel count of a scope.
func (m *ModularSynthAudio) AudioChannels(s Scope) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Scope(s).AudioChannels()
}

func (m *ModularSynthAudio) BufferSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bufferSize
}

func (m *ModularSynthAudio) Format() SampleFormat {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.format
}

func (m *ModularSynthAudio) Samplerate() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.samplerate
}

// AudioChannelsChanged runs the resize protocol on every live scope. The
// scopes' own channel counts are authoritative; old is only logged, so a
// notification that does not change the count reallocates nothing.
func (m *ModularSynthAudio) AudioChannelsChanged(old, n int) {
	n = max(n, 0)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	for _, s := range LiveScopes {
		m.scopes[s].resize(n, m.newChannelData)
	}
	m.logf("%v: audio channels %d -> %d", PluginName, old, n)
}

// BufferSizeChanged reallocates every channel's scratch buffer. A zero size
// leaves the channels without buffers.
func (m *ModularSynthAudio) BufferSizeChanged(bufferSize int) {
	bufferSize = max(bufferSize, 0)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.bufferSize = bufferSize
	m.eachChannel(func(c *ChannelData) { c.resizeBuffer(bufferSize, m.format) })
	m.logf("%v: buffer size %d", PluginName, bufferSize)
}

// FormatChanged reallocates every channel's scratch buffer in the new
// format, at the current size. Invalid formats are ignored.
func (m *ModularSynthAudio) FormatChanged(format SampleFormat) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	if !format.Valid() {
		m.logf("%v: ignoring invalid format %v", PluginName, format)
		return
	}
	m.format = format
	m.eachChannel(func(c *ChannelData) { c.reformat(format) })
	m.logf("%v: format %v", PluginName, format)
}

func (m *ModularSynthAudio) SamplerateChanged(samplerate int) {
	samplerate = max(samplerate, 0)
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.samplerate = samplerate
	m.eachChannel(func(c *ChannelData) { c.resetSamplerate(samplerate) })
	m.logf("%v: samplerate %d", PluginName, samplerate)
}

func (m *ModularSynthAudio) newChannelData() *ChannelData {
	return newChannelData(m.synther, m.bufferSize, m.format, m.samplerate)
}

// eachChannel calls f for every channel of every live scope, in index order.
func (m *ModularSynthAudio) eachChannel(f func(c *ChannelData)) {
	for _, s := range LiveScopes {
		for _, c := range m.scopes[s].channels {
			f(c)
		}
	}
}

package modsynth

import (
	"fmt"
	"math"
	"sync"
	"sync/atomic"
)

type (
	// PortFlags describe how a port value should be interpreted by the UI and
	// by automation range mapping.
	PortFlags uint8

	// PortDescriptor documents one control of the synth: its name, bounds and
	// default. Descriptors are immutable.
	PortDescriptor struct {
		Name    string // e.g. "osc-0-oscillator"; the specifier is derived from this
		Default float64
		Lower   float64 // inclusive
		Upper   float64 // inclusive
		Flags   PortFlags
		Unit    string // display unit, e.g. "Hz" or "cents"; empty if none
	}

	// Port is a named, bounded control value. The value is a lock free cell:
	// it can be read by the audio thread while the UI or automation writes
	// it.
	Port struct {
		PortDescriptor
		PluginName string
		Specifier  string
		value      atomic.Uint64
	}

	// Ports is the set of ports owned by one modular synth audio unit. The
	// binding of names to ports is guarded by its own lock; the port values
	// are not.
	Ports struct {
		pluginName string
		mu         sync.RWMutex
		slots      []*Port        // in PortDescriptors order
		index      map[string]int // names and specifiers to slots
	}
)

const (
	PortInteger PortFlags = 1 << iota
	PortLogarithmic
	PortToggled
)

// Oscillator and LFO waveforms, as stored in the *-oscillator ports.
const (
	WaveSine = iota
	WaveSawtooth
	WaveTriangle
	WaveSquare
	WaveImpulse
	LastWaveform = WaveImpulse
)

// PluginName is the plugin scope name of the ports created by NewPorts.
const PluginName = "modsynth"

// PortDescriptors lists all the ports of the modular synth, in the order
// they are presented to the user.
var PortDescriptors = []PortDescriptor{
	{Name: "osc-0-oscillator", Default: WaveSine, Lower: 0, Upper: LastWaveform, Flags: PortInteger},
	{Name: "osc-0-octave", Default: 0, Lower: -6, Upper: 6, Flags: PortInteger},
	{Name: "osc-0-key", Default: 0, Lower: -12, Upper: 12, Flags: PortInteger},
	{Name: "osc-0-phase", Default: 0, Lower: 0, Upper: 2 * math.Pi, Unit: "rad"},
	{Name: "osc-0-volume", Default: 0.333, Lower: 0, Upper: 1},
	{Name: "osc-0-sync-enabled", Default: 0, Lower: 0, Upper: 1, Flags: PortToggled},
	{Name: "osc-1-oscillator", Default: WaveSine, Lower: 0, Upper: LastWaveform, Flags: PortInteger},
	{Name: "osc-1-octave", Default: 0, Lower: -6, Upper: 6, Flags: PortInteger},
	{Name: "osc-1-key", Default: 0, Lower: -12, Upper: 12, Flags: PortInteger},
	{Name: "osc-1-phase", Default: 0, Lower: 0, Upper: 2 * math.Pi, Unit: "rad"},
	{Name: "osc-1-volume", Default: 0.333, Lower: 0, Upper: 1},
	{Name: "osc-1-sync-enabled", Default: 0, Lower: 0, Upper: 1, Flags: PortToggled},
	{Name: "pitch-tuning", Default: 0, Lower: -1200, Upper: 1200, Unit: "cents"},
	{Name: "volume", Default: 1, Lower: 0, Upper: 2},
	{Name: "env-0-attack", Default: 0.25, Lower: 0, Upper: 1, Unit: "s"},
	{Name: "env-0-decay", Default: 0.25, Lower: 0, Upper: 1, Unit: "s"},
	{Name: "env-0-sustain", Default: 0.25, Lower: 0, Upper: 1},
	{Name: "env-0-release", Default: 0.25, Lower: 0, Upper: 1, Unit: "s"},
	{Name: "env-0-gain", Default: 1, Lower: 0, Upper: 1},
	{Name: "env-0-frequency", Default: 1, Lower: 0.001, Upper: 16, Flags: PortLogarithmic, Unit: "Hz"},
	{Name: "env-0-sends", Default: float64(SendVolume), Lower: 0, Upper: float64(SendAll), Flags: PortInteger},
	{Name: "env-1-attack", Default: 0.25, Lower: 0, Upper: 1, Unit: "s"},
	{Name: "env-1-decay", Default: 0.25, Lower: 0, Upper: 1, Unit: "s"},
	{Name: "env-1-sustain", Default: 0.25, Lower: 0, Upper: 1},
	{Name: "env-1-release", Default: 0.25, Lower: 0, Upper: 1, Unit: "s"},
	{Name: "env-1-gain", Default: 1, Lower: 0, Upper: 1},
	{Name: "env-1-frequency", Default: 1, Lower: 0.001, Upper: 16, Flags: PortLogarithmic, Unit: "Hz"},
	{Name: "env-1-sends", Default: 0, Lower: 0, Upper: float64(SendAll), Flags: PortInteger},
	{Name: "lfo-0-oscillator", Default: WaveSine, Lower: 0, Upper: LastWaveform, Flags: PortInteger},
	{Name: "lfo-0-frequency", Default: 6, Lower: 0.01, Upper: 16, Flags: PortLogarithmic, Unit: "Hz"},
	{Name: "lfo-0-depth", Default: 1, Lower: 0, Upper: 1},
	{Name: "lfo-0-tuning", Default: 0, Lower: -1200, Upper: 1200, Unit: "cents"},
	{Name: "lfo-0-sends", Default: 0, Lower: 0, Upper: float64(SendAll), Flags: PortInteger},
	{Name: "lfo-1-oscillator", Default: WaveSine, Lower: 0, Upper: LastWaveform, Flags: PortInteger},
	{Name: "lfo-1-frequency", Default: 6, Lower: 0.01, Upper: 16, Flags: PortLogarithmic, Unit: "Hz"},
	{Name: "lfo-1-depth", Default: 1, Lower: 0, Upper: 1},
	{Name: "lfo-1-tuning", Default: 0, Lower: -1200, Upper: 1200, Unit: "cents"},
	{Name: "lfo-1-sends", Default: 0, Lower: 0, Upper: float64(SendAll), Flags: PortInteger},
	{Name: "noise-frequency", Default: 220, Lower: 1, Upper: 22050, Flags: PortLogarithmic, Unit: "Hz"},
	{Name: "noise-gain", Default: 0, Lower: 0, Upper: 1},
}

// Specifier returns the stable addressing key of a port name, e.g.
// "./synth-0-osc-0-oscillator[0]".
func Specifier(name string) string {
	return fmt.Sprintf("./synth-0-%s[0]", name)
}

// NewPort creates a port holding the descriptor's default value.
func NewPort(pluginName string, desc PortDescriptor) *Port {
	p := &Port{PortDescriptor: desc, PluginName: pluginName, Specifier: Specifier(desc.Name)}
	p.value.Store(math.Float64bits(desc.Default))
	return p
}

func (p *PortDescriptor) Integer() bool     { return p.Flags&PortInteger != 0 }
func (p *PortDescriptor) Logarithmic() bool { return p.Flags&PortLogarithmic != 0 }
func (p *PortDescriptor) Toggled() bool     { return p.Flags&PortToggled != 0 }

// Clamp limits v to [Lower, Upper], rounding integer and toggled ports.
func (p *PortDescriptor) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return p.Default
	}
	if p.Integer() || p.Toggled() {
		v = math.Round(v)
	}
	return max(p.Lower, min(p.Upper, v))
}

// Value returns the current value. A nil port reads as zero; callers that
// need the default of a missing port should consult its descriptor.
func (p *Port) Value() float64 {
	if p == nil {
		return 0
	}
	return math.Float64frombits(p.value.Load())
}

// Set stores v as is. Out of range values are tolerated; use SetClamped to
// keep the value within bounds.
func (p *Port) Set(v float64) {
	if p == nil {
		return
	}
	p.value.Store(math.Float64bits(v))
}

// SetClamped stores v clamped to the port's bounds and returns the stored
// value.
func (p *Port) SetClamped(v float64) float64 {
	if p == nil {
		return 0
	}
	v = p.Clamp(v)
	p.value.Store(math.Float64bits(v))
	return v
}

// Reset restores the default value.
func (p *Port) Reset() {
	if p == nil {
		return
	}
	p.Set(p.Default)
}

// Normalized maps the current value into [0, 1], logarithmically for
// logarithmic ports, for automation curves and UI sliders.
func (p *Port) Normalized() float64 {
	return p.Normalize(p.Value())
}

// SetNormalized is the inverse of Normalized; the result is clamped.
func (p *Port) SetNormalized(n float64) float64 {
	return p.SetClamped(p.Denormalize(n))
}

func (p *PortDescriptor) Normalize(v float64) float64 {
	if p.Upper <= p.Lower {
		return 0
	}
	v = max(p.Lower, min(p.Upper, v))
	if p.Logarithmic() && p.Lower > 0 {
		return math.Log(v/p.Lower) / math.Log(p.Upper/p.Lower)
	}
	return (v - p.Lower) / (p.Upper - p.Lower)
}

func (p *PortDescriptor) Denormalize(n float64) float64 {
	n = max(0, min(1, n))
	if p.Logarithmic() && p.Lower > 0 {
		return p.Lower * math.Pow(p.Upper/p.Lower, n)
	}
	return p.Lower + n*(p.Upper-p.Lower)
}

// NewPorts creates one port for each of PortDescriptors.
func NewPorts(pluginName string) *Ports {
	ret := &Ports{
		pluginName: pluginName,
		slots:      make([]*Port, len(PortDescriptors)),
		index:      make(map[string]int, 2*len(PortDescriptors)),
	}
	for i, desc := range PortDescriptors {
		ret.slots[i] = NewPort(pluginName, desc)
		ret.index[desc.Name] = i
		ret.index[Specifier(desc.Name)] = i
	}
	return ret
}

func (p *Ports) PluginName() string { return p.pluginName }

// Port returns the port bound to a name or a specifier, or nil if there is
// none. A nil *Ports has no ports.
func (p *Ports) Port(name string) *Port {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if i, ok := p.index[name]; ok {
		return p.slots[i]
	}
	return nil
}

// Value returns the current value of a port, or 0 if the name is unknown.
func (p *Ports) Value(name string) float64 {
	return p.Port(name).Value()
}

// Set stores the value of a named port without clamping. Returns false if no
// such port exists.
func (p *Ports) Set(name string, v float64) bool {
	port := p.Port(name)
	if port == nil {
		return false
	}
	port.Set(v)
	return true
}

// Replace rebinds the slot called name to port and returns the port that was
// bound before. Replacing a port with itself changes nothing. Binding nil
// leaves the slot empty, reading as the descriptor default in Params. The
// port must carry the slot's name and specifier, so that it stays
// addressable by both.
func (p *Ports) Replace(name string, port *Port) (old *Port, err error) {
	if p == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownPort, name)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	i, ok := p.index[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPort, name)
	}
	slot := PortDescriptors[i].Name
	if port != nil && (port.Name != slot || port.Specifier != Specifier(slot)) {
		return nil, fmt.Errorf("cannot bind port %q (%v) to slot %q: %w", port.Name, port.Specifier, slot, ErrPortMismatch)
	}
	old = p.slots[i]
	if old == port {
		return old, nil
	}
	p.slots[i] = port
	return old, nil
}

// All returns the bound ports in presentation order; empty slots are
// skipped.
func (p *Ports) All() []*Port {
	if p == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	ret := make([]*Port, 0, len(p.slots))
	for _, port := range p.slots {
		if port != nil {
			ret = append(ret, port)
		}
	}
	return ret
}

// Len returns the number of port slots.
func (p *Ports) Len() int {
	if p == nil {
		return 0
	}
	return len(p.slots)
}

// Reset restores every port to its default.
func (p *Ports) Reset() {
	for _, port := range p.All() {
		port.Reset()
	}
}

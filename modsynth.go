// Package modsynth implements the modular synthesizer audio unit: a per
// channel signal generation pipeline attached to a hosting audio object,
// with lifecycle managed scratch buffers that follow the host's channel
// count, buffer size, sample format and samplerate.
package modsynth

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// Scope is one of the processing contexts in which the same audio signal
	// chain may run independently. The enumeration is shared by the whole
	// host; the modular synth participates only in LiveScopes.
	Scope int

	// SynthUtil is the per-channel DSP kernel. It owns its own state (phase
	// accumulators, envelope stages) and is reconfigured whenever the unit's
	// buffer size, format or samplerate changes.
	SynthUtil interface {
		SetBufferLength(n int)
		SetFormat(format SampleFormat)
		SetSamplerate(rate int)
		BufferLength() int
		Format() SampleFormat
		Samplerate() int
		// Generate adds up to len(out) samples of the voice playing key into
		// out. gate tells if the key is currently held. Returns the number
		// of samples written, zero when the voice is silent.
		Generate(out []float32, key byte, gate bool, params *Params) int
		// Close releases whatever the kernel holds. The kernel is not used
		// after Close.
		Close()
	}

	// Synther creates SynthUtils, one per channel.
	Synther interface {
		Name() string
		SynthUtil() SynthUtil
	}
)

const (
	ScopePlayback Scope = iota
	ScopeSequencer
	ScopeNotation
	ScopeWave
	ScopeMIDI
	ScopeCount // number of scopes in the enumeration, not a scope
)

// LiveScopes are the scopes the modular synth allocates data for. The other
// slots of the scope array stay nil for the lifetime of the unit.
var LiveScopes = [...]Scope{ScopePlayback, ScopeNotation, ScopeMIDI}

// NumKeys is the number of MIDI keys, and thus Input Data slots, per channel.
const NumKeys = 128

var (
	ErrScopeNotLive = errors.New("scope is not used by the modular synth")
	ErrChannelRange = errors.New("channel index out of range")
	ErrKeyRange     = errors.New("key out of MIDI range")
	ErrUnitClosed   = errors.New("modular synth audio unit is closed")
	ErrUnknownPort  = errors.New("unknown port")
	ErrPortMismatch = errors.New("port does not belong to the slot")
)

var scopeNames = [ScopeCount]string{"playback", "sequencer", "notation", "wave", "midi"}

func (s Scope) String() string {
	if s < 0 || s >= ScopeCount {
		return fmt.Sprintf("Scope(%d)", int(s))
	}
	return scopeNames[s]
}

// Live reports whether the modular synth keeps Scope Data for this scope.
func (s Scope) Live() bool {
	for _, l := range LiveScopes {
		if s == l {
			return true
		}
	}
	return false
}

// ParseScope parses the lowercase scope name, e.g. "notation".
func ParseScope(name string) (Scope, error) {
	for i, n := range scopeNames {
		if strings.EqualFold(n, name) {
			return Scope(i), nil
		}
	}
	return 0, fmt.Errorf("unknown scope %q", name)
}

package modsynth

type (
	// Sends is the bitmask of modulation targets of an envelope or LFO.
	Sends uint8

	OscParams struct {
		Waveform int
		Octave   float32
		Key      float32 // semitones
		Phase    float32 // radians
		Volume   float32
		Sync     bool // restart the phase whenever the other oscillator wraps
	}

	EnvParams struct {
		Attack, Decay, Sustain, Release float32
		Gain                            float32
		Frequency                       float32 // stage times are divided by this
		Sends                           Sends
	}

	LFOParams struct {
		Waveform  int
		Frequency float32
		Depth     float32
		Tuning    float32 // cents
		Sends     Sends
	}

	NoiseParams struct {
		Frequency float32
		Gain      float32
	}

	// Params is a snapshot of all port values, taken once per processing
	// block and handed to the SynthUtils.
	Params struct {
		Osc         [2]OscParams
		PitchTuning float32 // cents
		Volume      float32
		Env         [2]EnvParams
		LFO         [2]LFOParams
		Noise       NoiseParams
	}
)

const (
	SendOsc0Frequency Sends = 1 << iota
	SendOsc0Volume
	SendOsc1Frequency
	SendOsc1Volume
	SendPitchTuning
	SendVolume
	SendNoiseGain
	SendAll = 1<<iota - 1
)

// Offsets of the port groups in PortDescriptors. Each oscillator, envelope
// and LFO occupies a contiguous run of ports in the order of its fields.
const (
	oscPortsOffset     = 0
	oscPortsStride     = 6
	pitchTuningPort    = 12
	volumePort         = 13
	envPortsOffset     = 14
	envPortsStride     = 7
	lfoPortsOffset     = 28
	lfoPortsStride     = 5
	noiseFrequencyPort = 38
	noiseGainPort      = 39
)

func (s Sends) Has(target Sends) bool { return s&target == target }

func toSends(v float32) Sends {
	if v < 0 || v > SendAll {
		return 0
	}
	return Sends(v)
}

// Params reads the live values of all ports into dst. An empty slot reads as
// its descriptor default.
func (p *Ports) Params(dst *Params) {
	if p != nil {
		p.mu.RLock()
		defer p.mu.RUnlock()
	}
	v := func(i int) float32 {
		if p == nil {
			return float32(PortDescriptors[i].Default)
		}
		if port := p.slots[i]; port != nil {
			return float32(port.Value())
		}
		return float32(PortDescriptors[i].Default)
	}
	for i := range dst.Osc {
		o := oscPortsOffset + i*oscPortsStride
		dst.Osc[i] = OscParams{
			Waveform: int(v(o)),
			Octave:   v(o + 1),
			Key:      v(o + 2),
			Phase:    v(o + 3),
			Volume:   v(o + 4),
			Sync:     v(o+5) >= 0.5,
		}
	}
	dst.PitchTuning = v(pitchTuningPort)
	dst.Volume = v(volumePort)
	for i := range dst.Env {
		o := envPortsOffset + i*envPortsStride
		dst.Env[i] = EnvParams{
			Attack:    v(o),
			Decay:     v(o + 1),
			Sustain:   v(o + 2),
			Release:   v(o + 3),
			Gain:      v(o + 4),
			Frequency: v(o + 5),
			Sends:     toSends(v(o + 6)),
		}
	}
	for i := range dst.LFO {
		o := lfoPortsOffset + i*lfoPortsStride
		dst.LFO[i] = LFOParams{
			Waveform:  int(v(o)),
			Frequency: v(o + 1),
			Depth:     v(o + 2),
			Tuning:    v(o + 3),
			Sends:     toSends(v(o + 4)),
		}
	}
	dst.Noise = NoiseParams{Frequency: v(noiseFrequencyPort), Gain: v(noiseGainPort)}
}

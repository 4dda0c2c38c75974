package vm

import (
	"math"

	"github.com/viterin/vek/vek32"
	"github.com/vsariola/modsynth"
)

type (
	// GoSynthUtil is a pure-Go implementation of the modular synth kernel:
	// two oscillators, pitch tuning, master volume, two ADSR envelopes, two
	// LFOs and a sample-and-hold noise generator, with the envelopes and
	// LFOs routed to their targets by their send masks. It keeps one voice
	// per MIDI key.
	//
	// Envelope stage times are the port values in seconds divided by the
	// envelope frequency. An envelope shapes the voice amplitude if its sends
	// include any volume target; a released voice keeps sounding until all
	// such envelopes have finished their release, or stops at once if there
	// are none.
	GoSynthUtil struct {
		bufferLength int
		format       modsynth.SampleFormat
		samplerate   int
		randSeed     uint32
		voices       [modsynth.NumKeys]voice
		block        []float32
	}

	// GoSynther is a Synther that creates GoSynthUtils.
	GoSynther struct {
	}

	voice struct {
		active  bool
		sustain bool
		osc     [2]float64 // phases, [0, 1)
		lfo     [2]float64
		env     [2]envelope
		noise   float32 // currently held noise value
		noiseT  float64
	}

	envelope struct {
		state int
		level float32
	}
)

const (
	envStateIdle = iota
	envStateAttack
	envStateDecay
	envStateSustain
	envStateRelease
)

const volumeTargets = modsynth.SendVolume | modsynth.SendOsc0Volume | modsynth.SendOsc1Volume

func (s GoSynther) Name() string { return "Go" }

func (s GoSynther) SynthUtil() modsynth.SynthUtil { return NewGoSynthUtil() }

func NewGoSynthUtil() *GoSynthUtil {
	return &GoSynthUtil{randSeed: 1, format: modsynth.DefaultFormat}
}

func (s *GoSynthUtil) SetBufferLength(n int) {
	n = max(n, 0)
	s.bufferLength = n
	if cap(s.block) < n {
		s.block = make([]float32, n)
	}
}

func (s *GoSynthUtil) SetFormat(format modsynth.SampleFormat) { s.format = format }

func (s *GoSynthUtil) SetSamplerate(rate int) { s.samplerate = max(rate, 0) }

func (s *GoSynthUtil) BufferLength() int { return s.bufferLength }

func (s *GoSynthUtil) Format() modsynth.SampleFormat { return s.format }

func (s *GoSynthUtil) Samplerate() int { return s.samplerate }

// Close silences all voices and drops the work block.
func (s *GoSynthUtil) Close() {
	s.voices = [modsynth.NumKeys]voice{}
	s.block = nil
}

// ActiveVoices returns the number of keys currently sounding.
func (s *GoSynthUtil) ActiveVoices() (ret int) {
	for i := range s.voices {
		if s.voices[i].active {
			ret++
		}
	}
	return
}

func (s *GoSynthUtil) Generate(out []float32, key byte, gate bool, params *modsynth.Params) int {
	if int(key) >= len(s.voices) || s.samplerate <= 0 || len(out) == 0 {
		return 0
	}
	v := &s.voices[key]
	if gate && !v.sustain {
		s.trigger(v, params)
	} else if !gate && v.sustain {
		v.sustain = false
		for i := range v.env {
			if v.env[i].state != envStateIdle {
				v.env[i].state = envStateRelease
			}
		}
	}
	if !v.active {
		return 0
	}
	if cap(s.block) < len(out) {
		s.block = make([]float32, len(out))
	}
	block := s.block[:len(out)]
	n := s.render(v, block, float64(key), params)
	vek32.MulNumber_Inplace(block[:n], params.Volume)
	vek32.Add_Inplace(out[:n], block[:n])
	return n
}

func (s *GoSynthUtil) trigger(v *voice, params *modsynth.Params) {
	*v = voice{active: true, sustain: true}
	for i := range v.osc {
		v.osc[i] = float64(params.Osc[i].Phase) / (2 * math.Pi)
		v.osc[i] -= math.Floor(v.osc[i])
	}
	for i := range v.env {
		v.env[i].state = envStateAttack
	}
}

// render writes the voice into block, without the master volume, and
// returns the number of samples rendered before the voice ended.
func (s *GoSynthUtil) render(v *voice, block []float32, note float64, p *modsynth.Params) int {
	sr := float64(s.samplerate)
	shaped := p.Env[0].Sends&volumeTargets != 0 || p.Env[1].Sends&volumeTargets != 0
	for i := range block {
		if !v.sustain && (!shaped || v.finished(p)) {
			v.active = false
			clear(block[i:])
			return i
		}
		amp := [2]float32{1, 1}
		freq := [2]float64{1, 1}
		cents := float64(p.PitchTuning)
		vol := float32(1)
		noiseGain := p.Noise.Gain
		for k := range v.env {
			e := p.Env[k]
			level := v.env[k].advance(&e, sr) * e.Gain
			modulate(e.Sends, level, float64(level), float64(level)*1200, &amp, &freq, &cents, &vol, &noiseGain)
		}
		for k := range v.lfo {
			l := p.LFO[k]
			raw := waveform(l.Waveform, v.lfo[k]) * l.Depth
			v.lfo[k] = wrap(v.lfo[k] + float64(l.Frequency)*math.Exp2(float64(l.Tuning)/1200)/sr)
			modulate(l.Sends, 1+0.5*(raw-l.Depth), float64(raw)/12, float64(raw)*100, &amp, &freq, &cents, &vol, &noiseGain)
		}
		var sample float32
		var wrapped [2]bool
		for k := range v.osc {
			o := p.Osc[k]
			pitch := note + 12*float64(o.Octave) + float64(o.Key) + cents/100
			omega := 440 * math.Exp2((pitch-69)/12) * freq[k] / sr
			sample += waveform(o.Waveform, v.osc[k]) * o.Volume * amp[k]
			next := v.osc[k] + omega
			wrapped[k] = next >= 1
			v.osc[k] = wrap(next)
		}
		for k := range v.osc {
			if p.Osc[k].Sync && wrapped[1-k] {
				v.osc[k] = float64(p.Osc[k].Phase) / (2 * math.Pi)
				v.osc[k] -= math.Floor(v.osc[k])
			}
		}
		if noiseGain != 0 {
			v.noiseT += float64(p.Noise.Frequency) / sr
			if v.noiseT >= 1 {
				v.noiseT -= math.Floor(v.noiseT)
				v.noise = s.rand()
			}
			sample += v.noise * noiseGain
		}
		block[i] = sample * vol
	}
	return len(block)
}

// modulate applies one modulation source to the targets in sends. gain
// multiplies the volume targets, octaves shifts the oscillator frequencies
// and cents the pitch tuning.
func modulate(sends modsynth.Sends, gain float32, octaves, cents float64, amp *[2]float32, freq *[2]float64, tuning *float64, vol *float32, noiseGain *float32) {
	if sends == 0 {
		return
	}
	if sends.Has(modsynth.SendOsc0Frequency) {
		freq[0] *= math.Exp2(octaves)
	}
	if sends.Has(modsynth.SendOsc0Volume) {
		amp[0] *= gain
	}
	if sends.Has(modsynth.SendOsc1Frequency) {
		freq[1] *= math.Exp2(octaves)
	}
	if sends.Has(modsynth.SendOsc1Volume) {
		amp[1] *= gain
	}
	if sends.Has(modsynth.SendPitchTuning) {
		*tuning += cents
	}
	if sends.Has(modsynth.SendVolume) {
		*vol *= gain
	}
	if sends.Has(modsynth.SendNoiseGain) {
		*noiseGain *= gain
	}
}

// finished reports whether every envelope shaping the volume is idle.
func (v *voice) finished(p *modsynth.Params) bool {
	for k := range v.env {
		if p.Env[k].Sends&volumeTargets != 0 && v.env[k].state != envStateIdle {
			return false
		}
	}
	return true
}

// advance steps the envelope by one sample and returns its level.
func (e *envelope) advance(p *modsynth.EnvParams, samplerate float64) float32 {
	step := func(seconds float32) float32 {
		t := float64(seconds) / max(float64(p.Frequency), 1e-6)
		if t <= 0 {
			return 1
		}
		return float32(1 / (t * samplerate))
	}
	switch e.state {
	case envStateAttack:
		e.level += step(p.Attack)
		if e.level >= 1 {
			e.level = 1
			e.state = envStateDecay
		}
	case envStateDecay:
		e.level -= step(p.Decay)
		if e.level <= p.Sustain {
			e.level = p.Sustain
			e.state = envStateSustain
		}
	case envStateSustain:
		e.level = p.Sustain
	case envStateRelease:
		e.level -= step(p.Release)
		if e.level <= 0 {
			e.level = 0
			e.state = envStateIdle
		}
	}
	return e.level
}

func waveform(w int, phase float64) float32 {
	switch w {
	case modsynth.WaveSawtooth:
		return float32(2*phase - 1)
	case modsynth.WaveTriangle:
		return float32(1 - 4*math.Abs(phase-0.5))
	case modsynth.WaveSquare:
		if phase < 0.5 {
			return 1
		}
		return -1
	case modsynth.WaveImpulse:
		if phase < 1.0/16 {
			return 1
		}
		return 0
	default:
		return float32(math.Sin(2 * math.Pi * phase))
	}
}

func wrap(phase float64) float64 {
	return phase - math.Floor(phase)
}

func (s *GoSynthUtil) rand() float32 {
	s.randSeed *= 16007
	return float32(int32(s.randSeed)) / -2147483648.0
}

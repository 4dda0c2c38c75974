package modsynth_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/vsariola/modsynth"
)

// channelsOf returns the Channel Data of a scope, taken under the unit lock.
func channelsOf(unit *modsynth.ModularSynthAudio, scope modsynth.Scope) []*modsynth.ChannelData {
	unit.Lock()
	defer unit.Unlock()
	s := unit.Scope(scope)
	ret := make([]*modsynth.ChannelData, s.AudioChannels())
	for i := range ret {
		ret[i] = s.Channel(i)
	}
	return ret
}

// configure delivers the notifications of the usual host setup directly.
func configure(unit *modsynth.ModularSynthAudio, channels, bufferSize int, format modsynth.SampleFormat, samplerate int) {
	unit.AudioChannelsChanged(0, channels)
	unit.BufferSizeChanged(bufferSize)
	unit.FormatChanged(format)
	unit.SamplerateChanged(samplerate)
}

func checkChannel(t *testing.T, c *modsynth.ChannelData, bufferSize int, format modsynth.SampleFormat, samplerate int) {
	t.Helper()
	if c.Released() {
		t.Fatalf("channel has been released")
	}
	if bufferSize == 0 {
		if c.Buffer() != nil {
			t.Fatalf("expected no scratch buffer for buffer size 0, got %d frames", c.Buffer().Frames())
		}
	} else {
		if c.Buffer().Frames() != bufferSize {
			t.Fatalf("scratch buffer has %d frames, expected %d", c.Buffer().Frames(), bufferSize)
		}
		if c.Buffer().Format() != format {
			t.Fatalf("scratch buffer format %v, expected %v", c.Buffer().Format(), format)
		}
		if len(c.Buffer().Bytes()) != bufferSize*format.BytesPerSample() {
			t.Fatalf("scratch buffer has %d bytes, expected %d", len(c.Buffer().Bytes()), bufferSize*format.BytesPerSample())
		}
	}
	u := c.SynthUtil()
	if u.BufferLength() != bufferSize || u.Format() != format || u.Samplerate() != samplerate {
		t.Fatalf("synth util configured to %d frames, %v, %d Hz; expected %d, %v, %d", u.BufferLength(), u.Format(), u.Samplerate(), bufferSize, format, samplerate)
	}
}

func TestHostSetupScenario(t *testing.T) {
	synther := &mockSynther{}
	unit := modsynth.NewModularSynthAudio(synther)
	defer unit.Close()
	configure(unit, 2, 512, modsynth.FormatS16, 44100)
	before := channelsOf(unit, modsynth.ScopeNotation)
	if len(before) != 2 {
		t.Fatalf("notation scope has %d channels, expected 2", len(before))
	}
	for _, c := range before {
		checkChannel(t, c, 512, modsynth.FormatS16, 44100)
	}

	unit.BufferSizeChanged(256)
	after := channelsOf(unit, modsynth.ScopeNotation)
	for i, c := range after {
		if c != before[i] {
			t.Fatalf("channel %d was reallocated by a buffer size change", i)
		}
		checkChannel(t, c, 256, modsynth.FormatS16, 44100)
	}

	released := after[1]
	unit.AudioChannelsChanged(2, 1)
	if n := unit.AudioChannels(modsynth.ScopeNotation); n != 1 {
		t.Fatalf("notation scope reports %d channels, expected 1", n)
	}
	if !released.Released() || released.SynthUtil() != nil || released.Buffer() != nil {
		t.Fatalf("channel 1 was not released")
	}
	kept := channelsOf(unit, modsynth.ScopeNotation)
	if kept[0] != after[0] {
		t.Fatalf("channel 0 was reallocated by shrinking")
	}
	checkChannel(t, kept[0], 256, modsynth.FormatS16, 44100)
	// one channel less in each of the three live scopes
	if got := synther.closed(); got != len(modsynth.LiveScopes) {
		t.Fatalf("%d synth utils closed, expected %d", got, len(modsynth.LiveScopes))
	}
}

func TestAudioChannelsChanged(t *testing.T) {
	unit := modsynth.NewModularSynthAudio(&mockSynther{})
	defer unit.Close()
	configure(unit, 0, 64, modsynth.FormatS24, 48000)
	old := 0
	for _, n := range []int{0, 3, 1, 5, 5, 0, 2} {
		unit.AudioChannelsChanged(old, n)
		old = n
		for _, s := range modsynth.LiveScopes {
			channels := channelsOf(unit, s)
			if len(channels) != n {
				t.Fatalf("%v scope has %d channels, expected %d", s, len(channels), n)
			}
			for _, c := range channels {
				checkChannel(t, c, 64, modsynth.FormatS24, 48000)
			}
		}
	}
}

func TestAudioChannelsChangedNegative(t *testing.T) {
	unit := modsynth.NewModularSynthAudio(&mockSynther{})
	defer unit.Close()
	configure(unit, 2, 64, modsynth.FormatS16, 44100)
	unit.AudioChannelsChanged(2, -3)
	if n := unit.AudioChannels(modsynth.ScopePlayback); n != 0 {
		t.Fatalf("expected a negative channel count to clamp to 0, got %d", n)
	}
}

func TestAudioChannelsUnchanged(t *testing.T) {
	synther := &mockSynther{}
	unit := modsynth.NewModularSynthAudio(synther)
	defer unit.Close()
	configure(unit, 3, 128, modsynth.FormatS16, 44100)
	before := channelsOf(unit, modsynth.ScopeMIDI)
	buffers := make([]*modsynth.Buffer, len(before))
	for i, c := range before {
		buffers[i] = c.Buffer()
	}
	created := synther.created()
	unit.AudioChannelsChanged(3, 3)
	if synther.created() != created {
		t.Fatalf("%d synth utils created by a no-op notification", synther.created()-created)
	}
	for i, c := range channelsOf(unit, modsynth.ScopeMIDI) {
		if c != before[i] || c.Buffer() != buffers[i] {
			t.Fatalf("channel %d was reallocated by a no-op notification", i)
		}
	}
}

func TestGrowShrinkRoundTrip(t *testing.T) {
	unit := modsynth.NewModularSynthAudio(&mockSynther{})
	defer unit.Close()
	configure(unit, 2, 128, modsynth.FormatDouble, 22050)
	before := channelsOf(unit, modsynth.ScopePlayback)
	buffers := []*modsynth.Buffer{before[0].Buffer(), before[1].Buffer()}
	unit.AudioChannelsChanged(2, 5)
	if n := len(channelsOf(unit, modsynth.ScopePlayback)); n != 5 {
		t.Fatalf("expected 5 channels after growing, got %d", n)
	}
	unit.AudioChannelsChanged(5, 2)
	after := channelsOf(unit, modsynth.ScopePlayback)
	for i := range before {
		if after[i] != before[i] || after[i].Buffer() != buffers[i] {
			t.Fatalf("channel %d was reallocated by the round trip", i)
		}
		checkChannel(t, after[i], 128, modsynth.FormatDouble, 22050)
	}
}

func TestShrinkThenGrow(t *testing.T) {
	unit := modsynth.NewModularSynthAudio(&mockSynther{})
	defer unit.Close()
	configure(unit, 4, 32, modsynth.FormatS16, 44100)
	if err := unit.KeyOn(modsynth.ScopeNotation, 60); err != nil {
		t.Fatalf("KeyOn failed: %v", err)
	}
	before := channelsOf(unit, modsynth.ScopeNotation)
	unit.AudioChannelsChanged(4, 1)
	for i, c := range before {
		if released := i >= 1; c.Released() != released {
			t.Fatalf("channel %d: released = %v, expected %v", i, c.Released(), released)
		}
	}
	unit.AudioChannelsChanged(1, 4)
	after := channelsOf(unit, modsynth.ScopeNotation)
	if after[0] != before[0] {
		t.Fatalf("channel 0 was reallocated")
	}
	if after[0].Input(60).KeyOn != 1 {
		t.Fatalf("channel 0 lost its key-on count")
	}
	for i := 1; i < 4; i++ {
		if after[i] == before[i] {
			t.Fatalf("channel %d was not reallocated", i)
		}
		for k := 0; k < modsynth.NumKeys; k++ {
			if after[i].Input(k).KeyOn != 0 {
				t.Fatalf("channel %d key %d: fresh Input Data has key-on count %d", i, k, after[i].Input(k).KeyOn)
			}
		}
		checkChannel(t, after[i], 32, modsynth.FormatS16, 44100)
	}
}

func TestBufferSizeChanged(t *testing.T) {
	unit := modsynth.NewModularSynthAudio(&mockSynther{})
	defer unit.Close()
	configure(unit, 2, 64, modsynth.FormatS32, 44100)
	for _, size := range []int{128, 0, 1, 4096, 0, 64} {
		unit.BufferSizeChanged(size)
		if unit.BufferSize() != size {
			t.Fatalf("unit buffer size %d, expected %d", unit.BufferSize(), size)
		}
		for _, s := range modsynth.LiveScopes {
			for _, c := range channelsOf(unit, s) {
				checkChannel(t, c, size, modsynth.FormatS32, 44100)
			}
		}
	}
	unit.BufferSizeChanged(-1)
	if unit.BufferSize() != 0 {
		t.Fatalf("expected a negative buffer size to clamp to 0, got %d", unit.BufferSize())
	}
}

func TestFormatChanged(t *testing.T) {
	unit := modsynth.NewModularSynthAudio(&mockSynther{})
	defer unit.Close()
	configure(unit, 2, 100, modsynth.FormatS16, 44100)
	for _, f := range []modsynth.SampleFormat{modsynth.FormatFloat, modsynth.FormatS8, modsynth.FormatS64} {
		unit.FormatChanged(f)
		for _, s := range modsynth.LiveScopes {
			for _, c := range channelsOf(unit, s) {
				checkChannel(t, c, 100, f, 44100)
			}
		}
	}
	unit.FormatChanged(modsynth.SampleFormat(42))
	if unit.Format() != modsynth.FormatS64 {
		t.Fatalf("invalid format was not ignored, format is %v", unit.Format())
	}
}

func TestSamplerateChanged(t *testing.T) {
	unit := modsynth.NewModularSynthAudio(&mockSynther{})
	defer unit.Close()
	configure(unit, 2, 100, modsynth.FormatS16, 44100)
	before := channelsOf(unit, modsynth.ScopePlayback)
	buffers := []*modsynth.Buffer{before[0].Buffer(), before[1].Buffer()}
	unit.SamplerateChanged(96000)
	for i, c := range channelsOf(unit, modsynth.ScopePlayback) {
		if c != before[i] {
			t.Fatalf("channel %d was reallocated by a samplerate change", i)
		}
		if c.Buffer() != buffers[i] {
			t.Fatalf("channel %d scratch buffer was reallocated by a samplerate change", i)
		}
		checkChannel(t, c, 100, modsynth.FormatS16, 96000)
	}
}

func TestUnusedScopes(t *testing.T) {
	unit := modsynth.NewModularSynthAudio(&mockSynther{})
	defer unit.Close()
	configure(unit, 2, 100, modsynth.FormatS16, 44100)
	for s := modsynth.Scope(0); s < modsynth.ScopeCount; s++ {
		unit.Lock()
		data := unit.Scope(s)
		unit.Unlock()
		if (data != nil) != s.Live() {
			t.Fatalf("%v: scope data present = %v, expected %v", s, data != nil, s.Live())
		}
		if data != nil && data.Scope() != s {
			t.Fatalf("%v: scope data belongs to %v", s, data.Scope())
		}
	}
}

func TestPortDefaults(t *testing.T) {
	unit := modsynth.NewModularSynthAudio(&mockSynther{})
	defer unit.Close()
	ports := unit.Ports()
	if ports.Len() != 40 {
		t.Fatalf("expected 40 ports, got %d", ports.Len())
	}
	tests := []struct {
		name              string
		def, lower, upper float64
	}{
		{"osc-0-oscillator", modsynth.WaveSine, 0, modsynth.LastWaveform},
		{"osc-0-volume", 0.333, 0, 1},
		{"pitch-tuning", 0, -1200, 1200},
	}
	for _, tt := range tests {
		p := ports.Port(tt.name)
		if p == nil {
			t.Fatalf("no port %v", tt.name)
		}
		if p.Value() != tt.def || p.Default != tt.def || p.Lower != tt.lower || p.Upper != tt.upper {
			t.Fatalf("%v: value %v default %v range [%v, %v], expected %v [%v, %v]", tt.name, p.Value(), p.Default, p.Lower, p.Upper, tt.def, tt.lower, tt.upper)
		}
	}
	for _, p := range ports.All() {
		if p.Value() != p.Default {
			t.Fatalf("%v reads %v, expected its default %v", p.Name, p.Value(), p.Default)
		}
		if p.Default < p.Lower || p.Default > p.Upper {
			t.Fatalf("%v default %v outside [%v, %v]", p.Name, p.Default, p.Lower, p.Upper)
		}
		if p.PluginName != modsynth.PluginName {
			t.Fatalf("%v belongs to plugin %q", p.Name, p.PluginName)
		}
	}
}

func TestAttach(t *testing.T) {
	unit := modsynth.NewModularSynthAudio(&mockSynther{})
	defer unit.Close()
	audio := modsynth.NewAudio(modsynth.Config{AudioChannels: 2, BufferSize: 512, Format: modsynth.FormatS16, Samplerate: 44100})
	if err := unit.Attach(audio); err != nil {
		t.Fatalf("Attach failed: %v", err)
	}
	if unit.Audio() != audio {
		t.Fatalf("Audio() does not return the attached audio")
	}
	for _, c := range channelsOf(unit, modsynth.ScopeNotation) {
		checkChannel(t, c, 512, modsynth.FormatS16, 44100)
	}
	audio.SetAudioChannels(3)
	audio.SetBufferSize(256)
	audio.SetFormat(modsynth.FormatFloat)
	audio.SetSamplerate(48000)
	channels := channelsOf(unit, modsynth.ScopeMIDI)
	if len(channels) != 3 {
		t.Fatalf("expected 3 channels, got %d", len(channels))
	}
	for _, c := range channels {
		checkChannel(t, c, 256, modsynth.FormatFloat, 48000)
	}
	unit.Detach()
	audio.SetAudioChannels(1)
	if n := unit.AudioChannels(modsynth.ScopeMIDI); n != 3 {
		t.Fatalf("detached unit followed the audio to %d channels", n)
	}
}

func TestReattach(t *testing.T) {
	unit := modsynth.NewModularSynthAudio(&mockSynther{})
	defer unit.Close()
	first := modsynth.NewAudio(modsynth.DefaultConfig())
	second := modsynth.NewAudio(modsynth.Config{AudioChannels: 1, BufferSize: 64, Format: modsynth.FormatS8, Samplerate: 8000})
	unit.Attach(first)
	unit.Attach(second)
	first.SetAudioChannels(6)
	channels := channelsOf(unit, modsynth.ScopePlayback)
	if len(channels) != 1 {
		t.Fatalf("expected the unit to follow only the second audio, got %d channels", len(channels))
	}
	checkChannel(t, channels[0], 64, modsynth.FormatS8, 8000)
}

func TestClose(t *testing.T) {
	synther := &mockSynther{}
	unit := modsynth.NewModularSynthAudio(synther)
	audio := modsynth.NewAudio(modsynth.DefaultConfig())
	unit.Attach(audio)
	channels := channelsOf(unit, modsynth.ScopePlayback)
	unit.Close()
	unit.Close()
	for i, c := range channels {
		if !c.Released() {
			t.Fatalf("channel %d not released by Close", i)
		}
	}
	if synther.closed() != synther.created() {
		t.Fatalf("%d of %d synth utils closed", synther.closed(), synther.created())
	}
	if unit.Ports() != nil {
		t.Fatalf("ports still present after Close")
	}
	for s := modsynth.Scope(0); s < modsynth.ScopeCount; s++ {
		if unit.AudioChannels(s) != 0 {
			t.Fatalf("%v still has channels after Close", s)
		}
	}
	audio.SetAudioChannels(4)
	unit.AudioChannelsChanged(0, 4)
	if unit.AudioChannels(modsynth.ScopePlayback) != 0 {
		t.Fatalf("closed unit reacted to a notification")
	}
	if err := unit.KeyOn(modsynth.ScopePlayback, 60); !errors.Is(err, modsynth.ErrUnitClosed) {
		t.Fatalf("expected ErrUnitClosed from KeyOn, got %v", err)
	}
	if err := unit.Attach(audio); !errors.Is(err, modsynth.ErrUnitClosed) {
		t.Fatalf("expected ErrUnitClosed from Attach, got %v", err)
	}
}

func TestConcurrentReconfiguration(t *testing.T) {
	unit := modsynth.NewModularSynthAudio(&mockSynther{})
	defer unit.Close()
	audio := modsynth.NewAudio(modsynth.DefaultConfig())
	unit.Attach(audio)
	ports := unit.Ports()
	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			audio.SetAudioChannels(i % 5)
			audio.SetBufferSize(64 * (i % 3))
			audio.SetFormat(modsynth.SampleFormat(i % 7))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			ports.Port("volume").SetClamped(float64(i%3) / 2)
			ports.Value("osc-0-volume")
		}
	}()
	go func() {
		defer wg.Done()
		var out [][]float32
		for i := 0; i < 200; i++ {
			unit.KeyOn(modsynth.ScopePlayback, byte(i%modsynth.NumKeys))
			var err error
			if out, err = unit.Render(modsynth.ScopePlayback, out); err != nil {
				t.Errorf("Render failed: %v", err)
				return
			}
		}
	}()
	wg.Wait()
	n := audio.AudioChannels()
	for _, s := range modsynth.LiveScopes {
		for _, c := range channelsOf(unit, s) {
			checkChannel(t, c, audio.BufferSize(), audio.Format(), audio.Samplerate())
		}
		if unit.AudioChannels(s) != n {
			t.Fatalf("%v has %d channels, audio has %d", s, unit.AudioChannels(s), n)
		}
	}
}

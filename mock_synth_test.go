package modsynth_test

import (
	"sync"

	"github.com/vsariola/modsynth"
)

// mockSynther records every SynthUtil it creates. Its utils add 0.5 to the
// output for every held key.
type mockSynther struct {
	mu     sync.Mutex
	utils  []*mockUtil
	panics bool
}

type mockUtil struct {
	bufferLength int
	format       modsynth.SampleFormat
	samplerate   int
	closed       bool
	panics       bool
}

func (s *mockSynther) Name() string { return "mock" }

func (s *mockSynther) SynthUtil() modsynth.SynthUtil {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := &mockUtil{panics: s.panics}
	s.utils = append(s.utils, u)
	return u
}

func (s *mockSynther) created() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.utils)
}

func (s *mockSynther) closed() (ret int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.utils {
		if u.closed {
			ret++
		}
	}
	return
}

func (u *mockUtil) SetBufferLength(n int)                  { u.bufferLength = n }
func (u *mockUtil) SetFormat(format modsynth.SampleFormat) { u.format = format }
func (u *mockUtil) SetSamplerate(rate int)                 { u.samplerate = rate }
func (u *mockUtil) BufferLength() int                      { return u.bufferLength }
func (u *mockUtil) Format() modsynth.SampleFormat          { return u.format }
func (u *mockUtil) Samplerate() int                        { return u.samplerate }
func (u *mockUtil) Close()                                 { u.closed = true }

func (u *mockUtil) Generate(out []float32, key byte, gate bool, params *modsynth.Params) int {
	if !gate {
		return 0
	}
	if u.panics {
		panic("mock kernel failure")
	}
	for i := range out {
		out[i] += 0.5
	}
	return len(out)
}

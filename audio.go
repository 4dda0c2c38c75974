package modsynth

type (
	// AudioSink receives interleaved float blocks, e.g. a sound card.
	AudioSink interface {
		WriteAudio(buffer []float32) error
		Close() error
	}

	// AudioContext opens sinks for a given channel count and samplerate.
	AudioContext interface {
		Output(channels, samplerate int) (AudioSink, error)
		Close() error
	}
)

// Interleave writes the per-channel blocks into dst as interleaved frames
// and returns dst. dst is grown if needed. All blocks should have the same
// length; the shortest one wins.
func Interleave(dst []float32, blocks [][]float32) []float32 {
	if len(blocks) == 0 {
		return dst[:0]
	}
	frames := len(blocks[0])
	for _, b := range blocks[1:] {
		frames = min(frames, len(b))
	}
	n := frames * len(blocks)
	if cap(dst) < n {
		dst = make([]float32, n)
	}
	dst = dst[:n]
	for c, b := range blocks {
		for i := 0; i < frames; i++ {
			dst[i*len(blocks)+c] = b[i]
		}
	}
	return dst
}

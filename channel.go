package modsynth

type (
	// InputData is the voice state of one MIDI key within one channel.
	InputData struct {
		// KeyOn counts the overlapping note-ons of the key that have not been
		// released yet. Never negative.
		KeyOn int
	}

	// ChannelData is the processing state of one audio channel within one
	// scope: a SynthUtil, a scratch buffer and NumKeys Input Data slots. The
	// buffer and the SynthUtil always follow the unit's buffer size, format
	// and samplerate. All methods are no-ops on a nil ChannelData.
	ChannelData struct {
		util       SynthUtil
		buffer     *Buffer
		bufferSize int
		format     SampleFormat
		input      []InputData
	}
)

func newChannelData(synther Synther, bufferSize int, format SampleFormat, samplerate int) *ChannelData {
	util := synther.SynthUtil()
	util.SetBufferLength(bufferSize)
	util.SetFormat(format)
	util.SetSamplerate(samplerate)
	return &ChannelData{
		util:       util,
		buffer:     NewBuffer(bufferSize, format),
		bufferSize: bufferSize,
		format:     format,
		input:      make([]InputData, NumKeys),
	}
}

func (c *ChannelData) release() {
	if c == nil {
		return
	}
	if c.util != nil {
		c.util.Close()
	}
	c.util = nil
	c.buffer = nil
	c.input = nil
}

// resizeBuffer reallocates the scratch buffer; a zero size leaves the
// channel without a buffer. The SynthUtil is reconfigured, not recreated.
func (c *ChannelData) resizeBuffer(bufferSize int, format SampleFormat) {
	if c == nil {
		return
	}
	c.bufferSize = bufferSize
	c.format = format
	c.buffer = NewBuffer(bufferSize, format)
	if c.util != nil {
		c.util.SetBufferLength(bufferSize)
	}
}

func (c *ChannelData) reformat(format SampleFormat) {
	if c == nil {
		return
	}
	c.format = format
	c.buffer = NewBuffer(c.bufferSize, format)
	if c.util != nil {
		c.util.SetFormat(format)
	}
}

func (c *ChannelData) resetSamplerate(samplerate int) {
	if c == nil || c.util == nil {
		return
	}
	c.util.SetSamplerate(samplerate)
}

// SynthUtil returns the channel's kernel, nil after release.
func (c *ChannelData) SynthUtil() SynthUtil {
	if c == nil {
		return nil
	}
	return c.util
}

// Buffer returns the scratch buffer, nil when the buffer size is zero or the
// channel has been released.
func (c *ChannelData) Buffer() *Buffer {
	if c == nil {
		return nil
	}
	return c.buffer
}

func (c *ChannelData) BufferSize() int {
	if c == nil {
		return 0
	}
	return c.bufferSize
}

func (c *ChannelData) Format() SampleFormat {
	if c == nil {
		return 0
	}
	return c.format
}

// Input returns the Input Data of a key, or nil if key is out of range or
// the channel has been released.
func (c *ChannelData) Input(key int) *InputData {
	if c == nil || key < 0 || key >= len(c.input) {
		return nil
	}
	return &c.input[key]
}

// Released reports whether release has been called.
func (c *ChannelData) Released() bool {
	return c == nil || c.input == nil
}

func (c *ChannelData) keyOn(key byte) {
	if in := c.Input(int(key)); in != nil {
		in.KeyOn++
	}
}

func (c *ChannelData) keyOff(key byte) {
	if in := c.Input(int(key)); in != nil && in.KeyOn > 0 {
		in.KeyOn--
	}
}

func (c *ChannelData) allKeysOff() {
	if c == nil {
		return
	}
	clear(c.input)
}

// process renders one block of all held or still sounding keys into the
// scratch buffer. work must be at least bufferSize long; it is clobbered.
func (c *ChannelData) process(work []float32, params *Params) int {
	if c == nil || c.buffer == nil || c.util == nil {
		return 0
	}
	work = work[:c.buffer.Frames()]
	clear(work)
	for key := range c.input {
		c.util.Generate(work, byte(key), c.input[key].KeyOn > 0, params)
	}
	return c.buffer.Encode(work)
}

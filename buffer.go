package modsynth

import (
	"encoding/binary"
	"math"
)

// Buffer is a scratch sample buffer of a fixed number of frames, encoded in
// one SampleFormat as little-endian bytes. A zero-length buffer is never
// created, NewBuffer returns nil instead; all methods accept a nil receiver.
type Buffer struct {
	format SampleFormat
	frames int
	data   []byte
}

// NewBuffer allocates a zeroed buffer. It returns nil if frames <= 0 or the
// format is invalid.
func NewBuffer(frames int, format SampleFormat) *Buffer {
	if frames <= 0 || !format.Valid() {
		return nil
	}
	return &Buffer{format: format, frames: frames, data: make([]byte, frames*format.BytesPerSample())}
}

func (b *Buffer) Frames() int {
	if b == nil {
		return 0
	}
	return b.frames
}

func (b *Buffer) Format() SampleFormat {
	if b == nil {
		return 0
	}
	return b.format
}

// Bytes returns the encoded samples. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

func (b *Buffer) Clear() {
	if b == nil {
		return
	}
	clear(b.data)
}

// Encode writes src into the buffer, clipping to [-1, 1] for the integer
// formats. Returns the number of samples written.
func (b *Buffer) Encode(src []float32) int {
	if b == nil {
		return 0
	}
	n := min(len(src), b.frames)
	bps := b.format.BytesPerSample()
	for i, v := range src[:n] {
		d := b.data[i*bps : (i+1)*bps]
		switch b.format {
		case FormatS8:
			d[0] = byte(int8(toInt(v, math.MaxInt8)))
		case FormatS16:
			binary.LittleEndian.PutUint16(d, uint16(int16(toInt(v, math.MaxInt16))))
		case FormatS24:
			binary.LittleEndian.PutUint32(d, uint32(int32(toInt(v, 1<<23-1))))
		case FormatS32:
			binary.LittleEndian.PutUint32(d, uint32(int32(toInt(v, math.MaxInt32))))
		case FormatS64:
			binary.LittleEndian.PutUint64(d, uint64(toInt(v, math.MaxInt64)))
		case FormatFloat:
			binary.LittleEndian.PutUint32(d, math.Float32bits(v))
		case FormatDouble:
			binary.LittleEndian.PutUint64(d, math.Float64bits(float64(v)))
		}
	}
	return n
}

// Decode converts the buffer back to floats into dst. Returns the number of
// samples decoded.
func (b *Buffer) Decode(dst []float32) int {
	if b == nil {
		return 0
	}
	n := min(len(dst), b.frames)
	bps := b.format.BytesPerSample()
	for i := range dst[:n] {
		d := b.data[i*bps : (i+1)*bps]
		switch b.format {
		case FormatS8:
			dst[i] = float32(int8(d[0])) / math.MaxInt8
		case FormatS16:
			dst[i] = float32(int16(binary.LittleEndian.Uint16(d))) / math.MaxInt16
		case FormatS24:
			dst[i] = float32(int32(binary.LittleEndian.Uint32(d))) / (1<<23 - 1)
		case FormatS32:
			dst[i] = float32(float64(int32(binary.LittleEndian.Uint32(d))) / math.MaxInt32)
		case FormatS64:
			dst[i] = float32(float64(int64(binary.LittleEndian.Uint64(d))) / math.MaxInt64)
		case FormatFloat:
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(d))
		case FormatDouble:
			dst[i] = float32(math.Float64frombits(binary.LittleEndian.Uint64(d)))
		}
	}
	return n
}

func toInt(v float32, fullScale int64) int64 {
	scale := float64(fullScale)
	x := float64(v) * scale
	if x >= scale {
		return fullScale
	}
	if x <= -scale {
		return -fullScale
	}
	return int64(x)
}

package oto

import (
	"encoding/binary"
	"math"
)

// FloatBufferTo16BitLE appends buff to dst as 16-bit little-endian integers,
// clipping at full scale, and returns the extended slice.
func FloatBufferTo16BitLE(buff []float32, dst []byte) []byte {
	for _, v := range buff {
		var uv int16
		if v < -1.0 {
			uv = -math.MaxInt16
		} else if v > 1.0 {
			uv = math.MaxInt16
		} else {
			uv = int16(v * math.MaxInt16)
		}
		dst = binary.LittleEndian.AppendUint16(dst, uint16(uv))
	}
	return dst
}

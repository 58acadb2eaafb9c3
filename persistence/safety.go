package persistence

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/hupe1980/voxphase/internal/conv"
)

// float32Bytes views v as its in-memory bytes. Only valid on little-endian
// platforms.
func float32Bytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

// encodeFloat32s writes v into buf as little-endian bytes, converting on
// big-endian platforms. buf may be reused between calls.
func encodeFloat32s(v []float32, buf []byte) []byte {
	if conv.NativeLittleEndian {
		return float32Bytes(v)
	}
	buf = buf[:0]
	for _, f := range v {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(f))
	}
	return buf
}

// decodeFloat32s fixes up v after its bytes were filled from little-endian
// input on a big-endian platform.
func decodeFloat32s(v []float32) {
	if conv.NativeLittleEndian {
		return
	}
	b := float32Bytes(v)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
}

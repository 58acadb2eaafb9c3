package conv

import "unsafe"

// NativeLittleEndian reports whether the host stores integers and floats
// little-endian, so little-endian data can be viewed in place.
var NativeLittleEndian = func() bool {
	var test uint16 = 0x0001
	return *(*byte)(unsafe.Pointer(&test)) == 1
}()

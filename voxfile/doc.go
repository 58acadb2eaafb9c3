// Package voxfile reads and writes voxel containers: a fixed 540-byte
// leading header followed by named sections, each a self-describing header
// and a raw little-endian float32 payload.
//
// Section header layout (offsets relative to the section start):
//
//	0    4   ignored
//	4    4   header size (int32, >= 148)
//	8    4   ignored
//	12   64  name, UTF-16LE, NUL padded
//	76   56  reserved
//	132  8   record count (int64)
//	140  8   payload length in bytes (int64)
//	148  ..  extra header bytes up to header size
//
// Parse extracts two sections, voxel centers (xyz triples) and per-voxel
// phase labels, and skips everything else without reading its payload.
// Containers compressed as a single zstd or LZ4 frame are decoded
// transparently. A plain container whose leading header happens to start
// with a frame magic is parsed as plain once the frame fails to decode.
package voxfile

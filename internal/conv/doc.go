// Package conv provides checked integer conversions.
//
// Voxel container headers carry int32 and int64 sizes read from untrusted
// files; grid dimensions are multiplied together before allocation. These
// helpers turn overflow into an error instead of a silent wraparound.
//
// For conversions that are provably safe (loop indices, bounded counters),
// use direct casts.
//
// NativeLittleEndian gates zero-copy views of little-endian file data.
package conv

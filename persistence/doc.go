// Package persistence stores built phase grids as snapshots, so a reload
// can skip parsing and binning the voxel container.
//
// A snapshot is one optional zstd or LZ4 frame holding a fixed header, the
// bin labels as little-endian float32, the serialized coverage bitmap and a
// trailing CRC32 of everything before it. The codec is detected from the
// frame magic on read.
package persistence

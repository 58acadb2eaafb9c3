// Package mmap provides read-only memory-mapped file access.
//
// Voxel containers and raw point files can be many gigabytes; mapping them
// lets the parser and point sources hand out zero-copy views instead of
// reading everything through a buffer.
//
//	m, err := mmap.Open("sample.apt")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()
//	_ = m.Advise(mmap.AccessSequential)
//
// On Unix the mapping uses mmap(2) and madvise(2); on Windows it uses
// CreateFileMapping/MapViewOfFile and Advise is a no-op.
//
// A Mapping is safe for concurrent reads. Close is idempotent, but callers
// must not touch slices obtained from Bytes after Close returns.
package mmap

package persistence

import (
	"encoding/binary"
	"errors"
)

const (
	// MagicNumber identifies grid snapshots (ASCII: "VXG1").
	MagicNumber = 0x56584731
	// Version is the current snapshot format version.
	Version = 1

	flagCoverage = 1 << 0
)

var (
	ErrInvalidMagic   = errors.New("invalid magic number")
	ErrInvalidVersion = errors.New("unsupported version")
)

// FileHeader is the fixed header at the start of every snapshot.
type FileHeader struct {
	Magic       uint32
	Version     uint32
	Flags       uint32
	Bins        [3]uint32
	MinEdge     [3]float32
	VoxelSize   [3]float32
	Writes      uint64
	CoverageLen uint64   // bytes of serialized coverage bitmap
	Reserved    [16]byte // Future use
}

// HeaderSize is the encoded size of FileHeader.
var HeaderSize = binary.Size(FileHeader{})

package mmap

import "errors"

// AccessPattern is a paging hint passed to Advise.
type AccessPattern int

const (
	// AccessDefault clears any previous hint.
	AccessDefault AccessPattern = iota
	// AccessSequential suits a single front-to-back scan, as done by the
	// container parser and raw point sources.
	AccessSequential
	// AccessRandom suits chunk lookups at scattered offsets.
	AccessRandom
)

var (
	// ErrClosed is returned by accessors after Close.
	ErrClosed = errors.New("mmap: mapping is closed")
	// ErrInvalidSize is returned for files whose size cannot be mapped.
	ErrInvalidSize = errors.New("mmap: invalid file size")
	// ErrOutOfBounds is returned by Slice for views past the end of the file.
	ErrOutOfBounds = errors.New("mmap: out of bounds")
	// ErrInvalidOffset is returned by ReadAt for negative offsets.
	ErrInvalidOffset = errors.New("mmap: invalid offset")
)

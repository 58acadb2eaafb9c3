package voxphase

import (
	"errors"
	"fmt"

	"github.com/hupe1980/voxphase/errs"
	"github.com/hupe1980/voxphase/internal/resource"
)

var (
	// ErrIO is returned (wrapped) when a voxel file, point file or snapshot
	// cannot be opened or read.
	ErrIO = errs.ErrIO

	// ErrFormat is returned (wrapped) for malformed containers and snapshots.
	ErrFormat = errs.ErrFormat

	// ErrValidation is returned (wrapped) for invalid arguments or
	// structurally inconsistent data.
	ErrValidation = errs.ErrValidation

	// ErrOutOfRange is returned (wrapped) when a point lies outside the grid.
	ErrOutOfRange = errs.ErrOutOfRange

	// ErrResourceExhausted is returned when a grid does not fit the
	// configured memory limit.
	ErrResourceExhausted = errors.New("resource exhausted")

	// ErrNotLoaded is returned by operations that need a grid before one
	// was loaded.
	ErrNotLoaded = errors.New("no grid loaded")
)

type (
	// IOError reports a failed open or read.
	IOError = errs.IOError
	// FormatError reports a malformed container.
	FormatError = errs.FormatError
	// ValidationError reports invalid arguments or data.
	ValidationError = errs.ValidationError
	// OutOfRangeError reports a position outside the grid.
	OutOfRangeError = errs.OutOfRangeError
)

func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, resource.ErrMemoryLimitExceeded) {
		return fmt.Errorf("%w: %w", ErrResourceExhausted, err)
	}
	return err
}

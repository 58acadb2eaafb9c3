package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrIO is the sentinel for missing or unreadable inputs.
	ErrIO = errors.New("io error")

	// ErrFormat is the sentinel for malformed voxel containers.
	ErrFormat = errors.New("format error")

	// ErrValidation is the sentinel for structurally invalid arguments or data.
	ErrValidation = errors.New("validation error")

	// ErrOutOfRange is the sentinel for positions outside the grid.
	ErrOutOfRange = errors.New("out of range")
)

// IOError reports a failed open or read.
//
// The underlying error (if any) can be accessed via errors.Unwrap.
type IOError struct {
	Op    string
	Path  string
	cause error
}

// NewIOError wraps cause as an IOError.
func NewIOError(op, path string, cause error) *IOError {
	return &IOError{Op: op, Path: path, cause: cause}
}

func (e *IOError) Error() string {
	if e.cause == nil {
		return fmt.Sprintf("%s %s: io error", e.Op, e.Path)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.cause)
}

func (e *IOError) Unwrap() error { return e.cause }

// Is reports ErrIO.
func (e *IOError) Is(target error) bool { return target == ErrIO }

// FormatError reports a malformed container. Missing lists the requested
// section names that were not found, when that is the cause.
type FormatError struct {
	Offset  int64
	Reason  string
	Missing []string
	cause   error
}

// NewFormatError creates a FormatError at the given byte offset.
func NewFormatError(offset int64, format string, args ...any) *FormatError {
	return &FormatError{Offset: offset, Reason: fmt.Sprintf(format, args...)}
}

// MissingSections creates a FormatError naming the absent sections.
func MissingSections(missing, required []string) *FormatError {
	return &FormatError{
		Offset:  -1,
		Reason:  fmt.Sprintf("missing sections [%s], requires [%s]", strings.Join(missing, ", "), strings.Join(required, ", ")),
		Missing: missing,
	}
}

// WithCause attaches an underlying error.
func (e *FormatError) WithCause(err error) *FormatError {
	e.cause = err
	return e
}

func (e *FormatError) Error() string {
	msg := "format error: " + e.Reason
	if e.Offset >= 0 {
		msg = fmt.Sprintf("%s (offset %d)", msg, e.Offset)
	}
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *FormatError) Unwrap() error { return e.cause }

// Is reports ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// ValidationError reports a structural mismatch in caller supplied data.
type ValidationError struct {
	Field  string
	Reason string
}

// Invalid creates a ValidationError for field.
func Invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Is reports ErrValidation.
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// OutOfRangeError reports a world position whose grid coordinate on Axis
// is outside [0, Bins).
type OutOfRangeError struct {
	X, Y, Z float32
	Axis    int
	Coord   int64
	Bins    int
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("position (%g, %g, %g) out of range: %c bin %d not in [0, %d)",
		e.X, e.Y, e.Z, "xyz"[e.Axis], e.Coord, e.Bins)
}

// Is reports ErrOutOfRange.
func (e *OutOfRangeError) Is(target error) bool { return target == ErrOutOfRange }

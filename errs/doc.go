// Package errs defines the error kinds shared by every voxphase package.
//
// Four kinds exist, each with a sentinel for errors.Is and a typed error
// carrying details for errors.As:
//
//   - [ErrIO]: a file or blob is missing or unreadable ([*IOError])
//   - [ErrFormat]: the voxel container is malformed or lacks a required section ([*FormatError])
//   - [ErrValidation]: structurally invalid input such as mismatched lengths ([*ValidationError])
//   - [ErrOutOfRange]: a queried position falls outside the grid ([*OutOfRangeError])
//
// None of them are transient; callers correct the input and retry themselves.
package errs

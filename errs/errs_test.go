package errs

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKinds_MatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"io", NewIOError("open", "a.apt", os.ErrNotExist), ErrIO},
		{"format", NewFormatError(540, "truncated header"), ErrFormat},
		{"missing", MissingSections([]string{"phases"}, []string{"centers", "phases"}), ErrFormat},
		{"validation", Invalid("voxel size", "must be positive"), ErrValidation},
		{"range", &OutOfRangeError{X: 5, Y: 5, Z: 5, Axis: 0, Coord: 5, Bins: 2}, ErrOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("load: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			for _, other := range []error{ErrIO, ErrFormat, ErrValidation, ErrOutOfRange} {
				if other != tt.sentinel {
					assert.NotErrorIs(t, wrapped, other)
				}
			}
		})
	}
}

func TestIOError_Unwrap(t *testing.T) {
	err := NewIOError("open", "missing.apt", os.ErrNotExist)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "missing.apt")
}

func TestMissingSections(t *testing.T) {
	err := MissingSections([]string{"phases"}, []string{"centers", "phases"})

	var fe *FormatError
	require.True(t, errors.As(fmt.Errorf("wrap: %w", err), &fe))
	assert.Equal(t, []string{"phases"}, fe.Missing)
	assert.Contains(t, fe.Error(), "missing sections [phases]")
	assert.NotContains(t, fe.Error(), "offset")
}

func TestOutOfRangeError_Message(t *testing.T) {
	err := &OutOfRangeError{X: 5, Y: 0, Z: 0, Axis: 0, Coord: 5, Bins: 2}
	assert.Equal(t, "position (5, 0, 0) out of range: x bin 5 not in [0, 2)", err.Error())
}

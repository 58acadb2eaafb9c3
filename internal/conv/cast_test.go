//go:build amd64 || arm64

package conv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInt64ToInt(t *testing.T) {
	got, err := Int64ToInt(1 << 40)
	assert.NoError(t, err)
	assert.Equal(t, 1<<40, got)

	got, err = Int64ToInt(-5)
	assert.NoError(t, err)
	assert.Equal(t, -5, got)
}

func TestMulInt(t *testing.T) {
	got, err := MulInt(1000, 1000)
	assert.NoError(t, err)
	assert.Equal(t, 1000000, got)

	got, err = MulInt(0, math.MaxInt)
	assert.NoError(t, err)
	assert.Equal(t, 0, got)

	_, err = MulInt(math.MaxInt/2, 3)
	assert.Error(t, err)

	_, err = MulInt(-1, 2)
	assert.Error(t, err)
}

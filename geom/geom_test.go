package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/voxphase/errs"
)

func TestBounds(t *testing.T) {
	box, err := Bounds([]Point3{Pt(0, 0, 0), Pt(2, -1, 5), Pt(1, 3, -4)})
	require.NoError(t, err)
	assert.Equal(t, Pt(0, -1, -4), box.Min)
	assert.Equal(t, Pt(2, 3, 5), box.Max)
}

func TestBounds_AxesIndependent(t *testing.T) {
	// The second point is a new X minimum but must not reset Y or Z.
	box, err := Bounds([]Point3{Pt(5, -7, -9), Pt(-1, 0, 0)})
	require.NoError(t, err)
	assert.Equal(t, Pt(-1, -7, -9), box.Min)
	assert.Equal(t, Pt(5, 0, 0), box.Max)
}

func TestBounds_Single(t *testing.T) {
	box, err := Bounds([]Point3{Pt(1, 2, 3)})
	require.NoError(t, err)
	assert.Equal(t, box.Min, box.Max)
	assert.False(t, box.Empty())
	assert.Equal(t, Point3{}, box.Size())
}

func TestBounds_Empty(t *testing.T) {
	_, err := Bounds(nil)
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.True(t, NewBox().Empty())
}

func TestBox_Contains(t *testing.T) {
	box := NewBox()
	box.Extend(Pt(0, 0, 0))
	box.Extend(Pt(1, 1, 1))
	assert.True(t, box.Contains(Pt(0.5, 1, 0)))
	assert.False(t, box.Contains(Pt(1.5, 0, 0)))
}

func TestFromFloats(t *testing.T) {
	pts, err := FromFloats([]float32{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, []Point3{Pt(1, 2, 3), Pt(4, 5, 6)}, pts)

	_, err = FromFloats([]float32{1, 2})
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestDecompose(t *testing.T) {
	x, y, z := Decompose([]Point3{Pt(1, 2, 3), Pt(4, 5, 6)})
	assert.Equal(t, []float32{1, 4}, x)
	assert.Equal(t, []float32{2, 5}, y)
	assert.Equal(t, []float32{3, 6}, z)
}

func TestTransform(t *testing.T) {
	p := Pt(1, 2, 3)

	assert.Equal(t, p, Identity().Apply(p))
	assert.True(t, Identity().IsIdentity())
	assert.Equal(t, Pt(2, 1, 3), SwapXY().Apply(p))
	assert.Equal(t, Pt(-1, -2, 3), FlipXY().Apply(p))
	rz, err := Reflect(2)
	require.NoError(t, err)
	assert.Equal(t, Pt(1, 2, -3), rz.Apply(p))
	assert.Equal(t, Pt(11, 2, 3), Matrix([9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}, [3]float64{10, 0, 0}).Apply(p))
	assert.Equal(t, p, Transform{}.Apply(p))
}

func TestTransform_Then(t *testing.T) {
	rx, err := Reflect(0)
	require.NoError(t, err)
	tr := SwapXY().Then(rx)
	// swap gives (2,1,3), then reflect X gives (-2,1,3)
	assert.Equal(t, Pt(-2, 1, 3), tr.Apply(Pt(1, 2, 3)))
	assert.Equal(t, "swap_xy+reflect_x", tr.String())

	assert.True(t, SwapXY().Then(SwapXY()).IsIdentity())

	// The first translation passes through the second matrix.
	shift := Matrix([9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}, [3]float64{1, 0, 0})
	lift := Matrix([9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}, [3]float64{0, 0, 5})
	tr = shift.Then(SwapXY()).Then(lift)
	// (1,2,3) -> (2,2,3) -> (2,2,3) -> (2,2,8)
	assert.Equal(t, Pt(2, 2, 8), tr.Apply(Pt(1, 2, 3)))
	assert.Equal(t, Pt(-1, 3, 5), tr.Apply(Pt(2, -1, 0)))
}

func TestReflect_InvalidAxis(t *testing.T) {
	for _, axis := range []int{-1, 3} {
		_, err := Reflect(axis)
		assert.ErrorIs(t, err, errs.ErrValidation, "axis %d", axis)
	}
}

func TestTransform_ApplyAll(t *testing.T) {
	pts := []Point3{Pt(1, 2, 3), Pt(4, 5, 6)}
	SwapXY().ApplyAll(pts)
	assert.Equal(t, []Point3{Pt(2, 1, 3), Pt(5, 4, 6)}, pts)
}

func TestParseTransform(t *testing.T) {
	for _, name := range []string{"", "identity", "swap_xy", "flip_xy", "reflect_x", "reflect_y", "reflect_z"} {
		_, err := ParseTransform(name)
		assert.NoError(t, err, name)
	}
	_, err := ParseTransform("rotate")
	assert.ErrorIs(t, err, errs.ErrValidation)

	tr, err := ParseTransform(" Swap_XY ")
	require.NoError(t, err)
	assert.Equal(t, "swap_xy", tr.String())
}

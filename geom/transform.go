package geom

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/hupe1980/voxphase/errs"
)

// Transform is an affine coordinate correction p' = M*p + t, applied to
// voxel centers before they are binned. It replaces hard-coded axis fixes
// with an explicit caller choice. The zero value is the identity.
type Transform struct {
	m    *r3.Mat
	t    r3.Vec
	name string
}

// Identity returns the transform that leaves points unchanged.
func Identity() Transform {
	tr := Matrix([9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}, [3]float64{})
	tr.name = "identity"
	return tr
}

// Matrix builds a transform from a row-major 3x3 matrix and a translation.
func Matrix(m [9]float64, t [3]float64) Transform {
	return Transform{
		m:    r3.NewMat(m[:]),
		t:    r3.Vec{X: t[0], Y: t[1], Z: t[2]},
		name: "matrix",
	}
}

// SwapXY exchanges the X and Y axes.
func SwapXY() Transform {
	tr := Matrix([9]float64{0, 1, 0, 1, 0, 0, 0, 0, 1}, [3]float64{})
	tr.name = "swap_xy"
	return tr
}

// Reflect mirrors the given axis (0=X, 1=Y, 2=Z) through the origin.
func Reflect(axis int) (Transform, error) {
	if axis < 0 || axis > 2 {
		return Transform{}, errs.Invalid("axis", "%d not in [0, 2]", axis)
	}
	m := [9]float64{1, 0, 0, 0, 1, 0, 0, 0, 1}
	m[axis*4] = -1
	tr := Matrix(m, [3]float64{})
	tr.name = "reflect_" + string("xyz"[axis])
	return tr, nil
}

// FlipXY mirrors both X and Y, a 180 degree rotation about Z.
func FlipXY() Transform {
	tr := Matrix([9]float64{-1, 0, 0, 0, -1, 0, 0, 0, 1}, [3]float64{})
	tr.name = "flip_xy"
	return tr
}

// ParseTransform resolves a named transform as used in configuration files:
// "", "identity", "swap_xy", "flip_xy", "reflect_x", "reflect_y", "reflect_z".
func ParseTransform(name string) (Transform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "identity", "none":
		return Identity(), nil
	case "swap_xy":
		return SwapXY(), nil
	case "flip_xy":
		return FlipXY(), nil
	case "reflect_x":
		return Reflect(0)
	case "reflect_y":
		return Reflect(1)
	case "reflect_z":
		return Reflect(2)
	}
	return Transform{}, errs.Invalid("transform", "unknown transform %q", name)
}

// Then returns the transform that applies tr first and next second.
func (tr Transform) Then(next Transform) Transform {
	if tr.m == nil {
		return next
	}
	if next.m == nil {
		return tr
	}
	m := new(r3.Mat)
	m.Mul(next.m, tr.m)
	out := Transform{
		m: m,
		t: r3.Add(next.m.MulVec(tr.t), next.t),
	}
	out.name = tr.String() + "+" + next.String()
	return out
}

// IsIdentity reports whether tr leaves every point unchanged.
func (tr Transform) IsIdentity() bool {
	if tr.m == nil {
		return true
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1
			}
			if tr.m.At(i, j) != want {
				return false
			}
		}
	}
	return tr.t == r3.Vec{}
}

// Apply transforms p.
func (tr Transform) Apply(p Point3) Point3 {
	if tr.m == nil {
		return p
	}
	v := r3.Add(tr.m.MulVec(r3.Vec{X: float64(p.X), Y: float64(p.Y), Z: float64(p.Z)}), tr.t)
	return Point3{float32(v.X), float32(v.Y), float32(v.Z)}
}

// ApplyAll transforms points in place.
func (tr Transform) ApplyAll(points []Point3) {
	if tr.IsIdentity() {
		return
	}
	for i, p := range points {
		points[i] = tr.Apply(p)
	}
}

func (tr Transform) String() string {
	if tr.m == nil {
		return "identity"
	}
	if tr.name != "matrix" {
		return tr.name
	}
	var b strings.Builder
	b.WriteString("matrix[")
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i+j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%g", tr.m.At(i, j))
		}
	}
	fmt.Fprintf(&b, "]+(%g %g %g)", tr.t.X, tr.t.Y, tr.t.Z)
	return b.String()
}

package geom

import "github.com/hupe1980/voxphase/errs"

// Point3 is a position in world space.
type Point3 struct {
	X, Y, Z float32
}

// Pt is shorthand for Point3{x, y, z}.
func Pt(x, y, z float32) Point3 {
	return Point3{X: x, Y: y, Z: z}
}

// Axis returns component i (0=X, 1=Y, 2=Z).
func (p Point3) Axis(i int) float32 {
	switch i {
	case 0:
		return p.X
	case 1:
		return p.Y
	default:
		return p.Z
	}
}

// Add returns p+q.
func (p Point3) Add(q Point3) Point3 {
	return Point3{p.X + q.X, p.Y + q.Y, p.Z + q.Z}
}

// Sub returns p-q.
func (p Point3) Sub(q Point3) Point3 {
	return Point3{p.X - q.X, p.Y - q.Y, p.Z - q.Z}
}

// Scale returns p*s elementwise.
func (p Point3) Scale(s Point3) Point3 {
	return Point3{p.X * s.X, p.Y * s.Y, p.Z * s.Z}
}

// FromFloats reinterprets a flat xyz slice as points. The length of v must
// be a multiple of 3.
func FromFloats(v []float32) ([]Point3, error) {
	if len(v)%3 != 0 {
		return nil, errs.Invalid("point data", "%d floats is not a multiple of 3", len(v))
	}
	pts := make([]Point3, len(v)/3)
	for i := range pts {
		pts[i] = Point3{v[3*i], v[3*i+1], v[3*i+2]}
	}
	return pts, nil
}

// Decompose splits positions into separate X, Y and Z slices.
func Decompose(points []Point3) (x, y, z []float32) {
	x = make([]float32, len(points))
	y = make([]float32, len(points))
	z = make([]float32, len(points))
	for i, p := range points {
		x[i] = p.X
		y[i] = p.Y
		z[i] = p.Z
	}
	return x, y, z
}

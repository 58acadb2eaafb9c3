package geom

import (
	"math"

	"github.com/hupe1980/voxphase/errs"
)

// Box is an axis-aligned bounding box. The zero Box from NewBox is empty
// (Min > Max on every axis) until a point is added.
type Box struct {
	Min Point3
	Max Point3
}

// NewBox returns an empty box.
func NewBox() Box {
	inf := float32(math.Inf(1))
	return Box{
		Min: Point3{inf, inf, inf},
		Max: Point3{-inf, -inf, -inf},
	}
}

// Empty reports whether no point has been added.
func (b Box) Empty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend grows b to include p. Each axis is compared independently.
func (b *Box) Extend(p Point3) {
	b.Min.X = min(b.Min.X, p.X)
	b.Min.Y = min(b.Min.Y, p.Y)
	b.Min.Z = min(b.Min.Z, p.Z)
	b.Max.X = max(b.Max.X, p.X)
	b.Max.Y = max(b.Max.Y, p.Y)
	b.Max.Z = max(b.Max.Z, p.Z)
}

// Size returns Max-Min.
func (b Box) Size() Point3 {
	return b.Max.Sub(b.Min)
}

// Contains reports whether p lies inside b (inclusive).
func (b Box) Contains(p Point3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Bounds returns the per-axis minimum and maximum of points.
// An empty slice is rejected with a ValidationError.
func Bounds(points []Point3) (Box, error) {
	if len(points) == 0 {
		return Box{}, errs.Invalid("bounds input", "no points")
	}
	b := NewBox()
	for _, p := range points {
		b.Extend(p)
	}
	return b, nil
}

package grid

import (
	"fmt"
	"math"

	"github.com/hupe1980/voxphase/errs"
	"github.com/hupe1980/voxphase/geom"
	"github.com/hupe1980/voxphase/internal/conv"
)

// MaxBins bounds the number of bins in one grid.
const MaxBins = math.MaxUint32

// Layout fixes the geometry of a grid: its lower corner, the voxel edge
// lengths and the number of bins per axis.
type Layout struct {
	MinEdge   geom.Point3
	VoxelSize geom.Point3
	Bins      [3]int
}

// Validate checks that every voxel size component and bin count is
// positive and that the bin total fits MaxBins.
func (l Layout) Validate() error {
	for axis := 0; axis < 3; axis++ {
		s := l.VoxelSize.Axis(axis)
		if !(s > 0) || math.IsInf(float64(s), 0) {
			return errs.Invalid("voxel size", "%c component %g must be positive and finite", "xyz"[axis], s)
		}
		if l.Bins[axis] < 1 {
			return errs.Invalid("bins", "%c bin count %d must be at least 1", "xyz"[axis], l.Bins[axis])
		}
		m := l.MinEdge.Axis(axis)
		if math.IsNaN(float64(m)) || math.IsInf(float64(m), 0) {
			return errs.Invalid("min edge", "%c component %g must be finite", "xyz"[axis], m)
		}
	}
	if _, err := l.total(); err != nil {
		return err
	}
	return nil
}

// Len returns the total number of bins.
func (l Layout) Len() int {
	n, _ := l.total()
	return n
}

// MaxEdge returns the upper corner of the grid.
func (l Layout) MaxEdge() geom.Point3 {
	return geom.Point3{
		X: l.MinEdge.X + float32(l.Bins[0])*l.VoxelSize.X,
		Y: l.MinEdge.Y + float32(l.Bins[1])*l.VoxelSize.Y,
		Z: l.MinEdge.Z + float32(l.Bins[2])*l.VoxelSize.Z,
	}
}

func (l Layout) String() string {
	return fmt.Sprintf("%dx%dx%d bins of (%g, %g, %g) from (%g, %g, %g)",
		l.Bins[0], l.Bins[1], l.Bins[2],
		l.VoxelSize.X, l.VoxelSize.Y, l.VoxelSize.Z,
		l.MinEdge.X, l.MinEdge.Y, l.MinEdge.Z)
}

func (l Layout) total() (int, error) {
	xy, err := conv.MulInt(l.Bins[0], l.Bins[1])
	if err != nil {
		return 0, errs.Invalid("bins", "%v", err)
	}
	n, err := conv.MulInt(xy, l.Bins[2])
	if err != nil {
		return 0, errs.Invalid("bins", "%v", err)
	}
	if int64(n) > MaxBins {
		return 0, errs.Invalid("bins", "%d bins exceed the limit of %d", n, MaxBins)
	}
	return n, nil
}

// FitLayout derives a layout that covers box with voxels of the given
// size. With a nil minEdge the lower corner is placed half a voxel below
// the box minimum, which is where the lowest voxel starts when box holds
// voxel centers. Bin counts are floor((max-minEdge)/size)+1 per axis.
func FitLayout(box geom.Box, voxelSize geom.Point3, minEdge *geom.Point3) (Layout, error) {
	if box.Empty() {
		return Layout{}, errs.Invalid("bounds", "empty box")
	}
	l := Layout{VoxelSize: voxelSize, Bins: [3]int{1, 1, 1}}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}

	if minEdge != nil {
		l.MinEdge = *minEdge
	} else {
		l.MinEdge = box.Min.Sub(voxelSize.Scale(geom.Pt(0.5, 0.5, 0.5)))
	}

	for axis := 0; axis < 3; axis++ {
		lo, hi, s := l.MinEdge.Axis(axis), box.Max.Axis(axis), voxelSize.Axis(axis)
		if box.Min.Axis(axis) < lo {
			return Layout{}, errs.Invalid("min edge", "%c component %g is above the data minimum %g", "xyz"[axis], lo, box.Min.Axis(axis))
		}
		n := math.Floor(float64((hi-lo)/s)) + 1
		if n > MaxBins {
			return Layout{}, errs.Invalid("bins", "%c extent needs %g bins", "xyz"[axis], n)
		}
		l.Bins[axis] = int(n)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

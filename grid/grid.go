package grid

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/dustin/go-humanize"

	"github.com/hupe1980/voxphase/errs"
	"github.com/hupe1980/voxphase/geom"
	"github.com/hupe1980/voxphase/internal/resource"
)

// PhaseGrid is a dense voxel grid of phase labels, x varying fastest.
type PhaseGrid struct {
	layout Layout
	bins   []float32

	// world -> grid: g = p*scale + offset
	scale  geom.Point3
	offset geom.Point3

	covered *roaring.Bitmap
	writes  uint64
	frozen  bool

	rc       *resource.Controller
	reserved int64
}

// New allocates a zeroed grid. It fails with a ValidationError when a voxel
// size component or bin count is not positive, and with the memory limit
// error of the resource controller when the bins do not fit the budget.
func New(minEdge, voxelSize geom.Point3, xBins, yBins, zBins int, opts ...Option) (*PhaseGrid, error) {
	return NewWithLayout(Layout{
		MinEdge:   minEdge,
		VoxelSize: voxelSize,
		Bins:      [3]int{xBins, yBins, zBins},
	}, opts...)
}

// NewWithLayout is New taking a Layout.
func NewWithLayout(l Layout, opts ...Option) (*PhaseGrid, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	o := applyOptions(opts)

	n := l.Len()
	bytes := int64(n) * 4
	if err := o.rc.AcquireMemory(bytes); err != nil {
		return nil, fmt.Errorf("grid of %s: %w", humanize.IBytes(uint64(bytes)), err)
	}

	g := newGrid(l, make([]float32, n), o, bytes)
	if o.coverage {
		g.covered = roaring.New()
	}
	return g, nil
}

func newGrid(l Layout, bins []float32, o options, reserved int64) *PhaseGrid {
	scale := geom.Pt(1/l.VoxelSize.X, 1/l.VoxelSize.Y, 1/l.VoxelSize.Z)
	return &PhaseGrid{
		layout:   l,
		bins:     bins,
		scale:    scale,
		offset:   geom.Pt(-l.MinEdge.X*scale.X, -l.MinEdge.Y*scale.Y, -l.MinEdge.Z*scale.Z),
		rc:       o.rc,
		reserved: reserved,
	}
}

// Layout returns the geometry of the grid.
func (g *PhaseGrid) Layout() Layout {
	return g.layout
}

// Len returns the number of bins.
func (g *PhaseGrid) Len() int {
	return len(g.bins)
}

// Frozen reports whether the grid is read-only.
func (g *PhaseGrid) Frozen() bool {
	return g.frozen
}

// Freeze ends construction. Afterwards SetPhase fails and the grid may be
// read from many goroutines.
func (g *PhaseGrid) Freeze() {
	if g.covered != nil {
		g.covered.RunOptimize()
	}
	g.frozen = true
}

// Release returns the memory reservation made at construction. The grid
// stays readable.
func (g *PhaseGrid) Release() {
	if g.reserved > 0 {
		g.rc.ReleaseMemory(g.reserved)
		g.reserved = 0
	}
}

// GridCoord maps p to continuous grid coordinates.
func (g *PhaseGrid) GridCoord(p geom.Point3) geom.Point3 {
	return geom.Point3{
		X: p.X*g.scale.X + g.offset.X,
		Y: p.Y*g.scale.Y + g.offset.Y,
		Z: p.Z*g.scale.Z + g.offset.Z,
	}
}

// ToBin returns the flattened bin index x + y*xBins + z*xBins*yBins of the
// voxel containing p. Each axis is floored, so points just below the lower
// edge land in bin -1 and are reported out of range.
func (g *PhaseGrid) ToBin(p geom.Point3) (int, error) {
	c := g.GridCoord(p)
	var idx [3]int
	for axis := 0; axis < 3; axis++ {
		f := math.Floor(float64(c.Axis(axis)))
		bins := g.layout.Bins[axis]
		if !(f >= 0 && f < float64(bins)) {
			return 0, &errs.OutOfRangeError{
				X: p.X, Y: p.Y, Z: p.Z,
				Axis:  axis,
				Coord: saturate(f),
				Bins:  bins,
			}
		}
		idx[axis] = int(f)
	}
	nx, ny := g.layout.Bins[0], g.layout.Bins[1]
	return idx[0] + idx[1]*nx + idx[2]*nx*ny, nil
}

// BinCenter returns the world position of the center of bin.
func (g *PhaseGrid) BinCenter(bin int) (geom.Point3, error) {
	if bin < 0 || bin >= len(g.bins) {
		return geom.Point3{}, errs.Invalid("bin", "%d not in [0, %d)", bin, len(g.bins))
	}
	nx, ny := g.layout.Bins[0], g.layout.Bins[1]
	ix, iy, iz := bin%nx, (bin/nx)%ny, bin/(nx*ny)
	l := g.layout
	return geom.Point3{
		X: l.MinEdge.X + (float32(ix)+0.5)*l.VoxelSize.X,
		Y: l.MinEdge.Y + (float32(iy)+0.5)*l.VoxelSize.Y,
		Z: l.MinEdge.Z + (float32(iz)+0.5)*l.VoxelSize.Z,
	}, nil
}

// SetPhase stores label in the bin containing p. The last write to a bin
// wins.
func (g *PhaseGrid) SetPhase(p geom.Point3, label float32) error {
	if g.frozen {
		return errs.Invalid("grid", "SetPhase on a frozen grid")
	}
	bin, err := g.ToBin(p)
	if err != nil {
		return err
	}
	g.bins[bin] = label
	g.writes++
	if g.covered != nil {
		g.covered.Add(uint32(bin))
	}
	return nil
}

// GetPhase returns the label of the bin containing p.
func (g *PhaseGrid) GetPhase(p geom.Point3) (float32, error) {
	bin, err := g.ToBin(p)
	if err != nil {
		return 0, err
	}
	return g.bins[bin], nil
}

// Covered reports whether SetPhase ever wrote the bin containing p. Grids
// built without a coverage bitmap report every bin as covered.
func (g *PhaseGrid) Covered(p geom.Point3) (bool, error) {
	bin, err := g.ToBin(p)
	if err != nil {
		return false, err
	}
	if g.covered == nil {
		return true, nil
	}
	return g.covered.Contains(uint32(bin)), nil
}

// Bins returns the label array. It must not be modified.
func (g *PhaseGrid) Bins() []float32 {
	return g.bins
}

// Coverage returns the bitmap of written bins, or nil when disabled. It
// must not be modified.
func (g *PhaseGrid) Coverage() *roaring.Bitmap {
	return g.covered
}

// Writes returns the number of successful SetPhase calls.
func (g *PhaseGrid) Writes() uint64 {
	return g.writes
}

// Restore installs persisted coverage and write count into a grid created
// by New whose bins were filled through Bins, and freezes it. A nil covered
// restores a grid built without coverage.
func (g *PhaseGrid) Restore(covered *roaring.Bitmap, writes uint64) error {
	if g.frozen {
		return errs.Invalid("grid", "frozen grids cannot be restored into")
	}
	if covered != nil && !covered.IsEmpty() && int64(covered.Maximum()) >= int64(len(g.bins)) {
		return errs.Invalid("coverage", "bin %d not in [0, %d)", covered.Maximum(), len(g.bins))
	}
	g.covered = covered
	g.writes = writes
	g.Freeze()
	return nil
}

func saturate(f float64) int64 {
	switch {
	case math.IsNaN(f):
		return math.MinInt64
	case f >= math.MaxInt64:
		return math.MaxInt64
	case f <= math.MinInt64:
		return math.MinInt64
	}
	return int64(f)
}

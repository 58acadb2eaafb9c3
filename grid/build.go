package grid

import (
	"context"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/voxphase/errs"
	"github.com/hupe1980/voxphase/geom"
	"github.com/hupe1980/voxphase/voxfile"
)

const cancelCheckInterval = 1 << 16

// BuildConfig configures Build.
type BuildConfig struct {
	// VoxelSize is the edge length of a voxel per axis. Required.
	VoxelSize geom.Point3

	// MinEdge is the lower grid corner. When nil it is derived from the
	// (transformed) voxel centers, see FitLayout.
	MinEdge *geom.Point3

	// Bins overrides the derived bin counts when all three are set.
	Bins [3]int

	// Transform corrects the coordinate system of the voxel centers before
	// binning. The zero value is the identity.
	Transform geom.Transform

	// Strict rejects records that write the same bin twice.
	Strict bool
}

// Build constructs and freezes a grid from parsed voxel records. The
// records are not modified.
func Build(ctx context.Context, r voxfile.Records, cfg BuildConfig, opts ...Option) (*PhaseGrid, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	centers := r.Centers
	if !cfg.Transform.IsIdentity() {
		centers = slices.Clone(centers)
		cfg.Transform.ApplyAll(centers)
	}

	box, err := geom.Bounds(centers)
	if err != nil {
		return nil, err
	}

	var l Layout
	if cfg.MinEdge != nil && cfg.Bins[0] > 0 && cfg.Bins[1] > 0 && cfg.Bins[2] > 0 {
		l = Layout{MinEdge: *cfg.MinEdge, VoxelSize: cfg.VoxelSize, Bins: cfg.Bins}
	} else {
		l, err = FitLayout(box, cfg.VoxelSize, cfg.MinEdge)
		if err != nil {
			return nil, err
		}
	}

	g, err := NewWithLayout(l, opts...)
	if err != nil {
		return nil, err
	}
	if err := g.ingest(ctx, centers, r.Phases, cfg.Strict); err != nil {
		g.Release()
		return nil, err
	}
	g.Freeze()
	return g, nil
}

func (g *PhaseGrid) ingest(ctx context.Context, centers []geom.Point3, phases []float32, strict bool) error {
	// Strict mode needs the set of written bins even without coverage.
	var seen *roaring.Bitmap
	if strict {
		seen = g.covered
		if seen == nil {
			seen = roaring.New()
		}
	}
	for i, c := range centers {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if strict {
			bin, err := g.ToBin(c)
			if err != nil {
				return err
			}
			if seen.Contains(uint32(bin)) {
				return errs.Invalid("records", "voxel %d at (%g, %g, %g) writes bin %d again", i, c.X, c.Y, c.Z, bin)
			}
			if g.covered == nil {
				seen.Add(uint32(bin))
			}
		}
		if err := g.SetPhase(c, phases[i]); err != nil {
			return err
		}
	}
	return nil
}

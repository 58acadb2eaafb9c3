package pointcloud

import (
	"github.com/hupe1980/voxphase/errs"
	"github.com/hupe1980/voxphase/geom"
)

// Chunk is a contiguous window of the point cloud.
type Chunk struct {
	// Base is the global index of Positions[0].
	Base      uint64
	Positions []geom.Point3
	// Mass and Types are optional per-point attributes. When set they have
	// the same length as Positions.
	Mass  []float32
	Types []uint8
}

// Len returns the number of points in the chunk.
func (c Chunk) Len() int {
	return len(c.Positions)
}

// End returns the global index one past the last point.
func (c Chunk) End() uint64 {
	return c.Base + uint64(len(c.Positions))
}

// Validate checks that attribute slices match the positions.
func (c Chunk) Validate() error {
	if c.Mass != nil && len(c.Mass) != len(c.Positions) {
		return errs.Invalid("chunk", "base %d: %d masses for %d positions", c.Base, len(c.Mass), len(c.Positions))
	}
	if c.Types != nil && len(c.Types) != len(c.Positions) {
		return errs.Invalid("chunk", "base %d: %d types for %d positions", c.Base, len(c.Types), len(c.Positions))
	}
	if c.End() < c.Base {
		return errs.Invalid("chunk", "base %d: %d positions overflow the index space", c.Base, len(c.Positions))
	}
	return nil
}

// Cursor checks that chunks arrive in order: each chunk must start where
// the previous one ended. The first chunk may start anywhere.
type Cursor struct {
	next    uint64
	started bool
}

// Advance accepts c or returns a ValidationError describing the gap or
// overlap.
func (cur *Cursor) Advance(c Chunk) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if cur.started && c.Base != cur.next {
		if c.Base < cur.next {
			return errs.Invalid("chunk order", "chunk at %d overlaps points up to %d", c.Base, cur.next)
		}
		return errs.Invalid("chunk order", "gap between %d and chunk at %d", cur.next, c.Base)
	}
	cur.next = c.End()
	cur.started = true
	return nil
}

// Next returns the global index the next chunk must start at.
func (cur *Cursor) Next() uint64 {
	return cur.next
}

package pointcloud

import (
	"context"

	"github.com/hupe1980/voxphase/geom"
)

// Cloud is a fully materialized point cloud.
type Cloud struct {
	Base      uint64
	Positions []geom.Point3
	// Mass and Types are nil unless every chunk carried them.
	Mass  []float32
	Types []uint8
}

// Len returns the number of points.
func (c *Cloud) Len() int {
	return len(c.Positions)
}

// Source serves the cloud back in chunks of chunkSize.
func (c *Cloud) Source(chunkSize int) *SliceSource {
	return &SliceSource{
		positions: c.Positions,
		mass:      c.Mass,
		types:     c.Types,
		base:      c.Base,
		chunkSize: max(chunkSize, 1),
	}
}

// Materialize copies every chunk of src into a Cloud. Chunks must be
// contiguous.
func Materialize(ctx context.Context, src Source) (*Cloud, error) {
	cloud := &Cloud{}
	if n, ok := src.Len(); ok {
		cloud.Positions = make([]geom.Point3, 0, n)
	}

	var (
		cur      Cursor
		hasMass  = true
		hasTypes = true
	)
	for c, err := range src.Chunks(ctx) {
		if err != nil {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := cur.Advance(c); err != nil {
			return nil, err
		}
		if len(cloud.Positions) == 0 {
			cloud.Base = c.Base
		}
		hasMass = hasMass && c.Mass != nil
		hasTypes = hasTypes && c.Types != nil
		if hasMass {
			cloud.Mass = append(cloud.Mass, c.Mass...)
		}
		if hasTypes {
			cloud.Types = append(cloud.Types, c.Types...)
		}
		cloud.Positions = append(cloud.Positions, c.Positions...)
	}

	if !hasMass || len(cloud.Positions) == 0 {
		cloud.Mass = nil
	}
	if !hasTypes || len(cloud.Positions) == 0 {
		cloud.Types = nil
	}
	return cloud, nil
}

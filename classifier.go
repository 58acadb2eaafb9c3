package voxphase

import (
	"context"

	"github.com/hupe1980/voxphase/geom"
	"github.com/hupe1980/voxphase/voxfile"
)

// ExternalClassifier assigns phases to a point cloud. Its output is the
// same voxel center and label arrays a voxel file carries.
type ExternalClassifier interface {
	Classify(ctx context.Context, positions []geom.Point3, masses []float32) (voxfile.Records, error)
}

// ClassifierFunc adapts a function to ExternalClassifier.
type ClassifierFunc func(ctx context.Context, positions []geom.Point3, masses []float32) (voxfile.Records, error)

// Classify implements ExternalClassifier.
func (f ClassifierFunc) Classify(ctx context.Context, positions []geom.Point3, masses []float32) (voxfile.Records, error) {
	return f(ctx, positions, masses)
}

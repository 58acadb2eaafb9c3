// Package geom provides the small amount of 3D geometry voxphase needs:
// single-precision points, axis-aligned bounds and the coordinate
// correction transform applied to voxel centers before binning.
package geom

// Package testutil provides testing utilities for voxphase.
//
// This package is intended for use in tests and benchmarks only.
// It generates voxel lattices, point clouds and voxel container files
// from a seeded, thread-safe RNG.
//
// # Voxel Lattices
//
//	rng := testutil.NewRNG(seed)
//	lat := testutil.Lattice{MinEdge: geom.Pt(0, 0, 0), VoxelSize: geom.Pt(1, 1, 1), Bins: [3]int{4, 4, 4}}
//	records := rng.PhaseLattice(lat, 3, 1.5) // 3 phases, Zipf skew 1.5
//
// # Container Files
//
//	path := testutil.WriteContainer(t, t.TempDir(), "run.apt", records)
package testutil

// Package grid implements PhaseGrid, a dense 3D lookup table that maps a
// world position to the phase label of the voxel containing it in O(1).
//
// A grid is built once from parsed voxel records (see Build), frozen, and
// then shared read-only: GetPhase needs no locking. Reloading data means
// building a new grid, never mutating a frozen one.
//
// World positions are mapped with a true floor per axis and bounds checked.
// Positions outside the grid fail with an *errs.OutOfRangeError.
//
// Unwritten bins hold 0.0, so a GetPhase result of exactly 0.0 alone cannot
// tell "label 0" from "never set". Covered answers that question from a
// bitmap of written bins.
package grid

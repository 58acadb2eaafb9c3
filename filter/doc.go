// Package filter streams the global indices of points whose phase matches
// a target label.
//
// Stream pulls chunks from a pointcloud.Source, classifies every point
// against a frozen grid.PhaseGrid and yields one Block per chunk, in chunk
// order. Nothing is materialized unless the caller asks for it with
// Collect.
//
// Matching uses exact float32 equality. Labels written as integral values
// (1.0, 2.0, ...) compare reliably; computed labels may not.
//
// Cancellation is observed at chunk boundaries: a cancelled stream yields
// the context error once and no partial block.
package filter

// Package pointcloud models a large point cloud as an ordered sequence of
// chunks. A chunk is a contiguous window of positions (plus optional mass
// and type attributes) starting at a 64-bit global index.
//
// Sources produce chunks lazily, in increasing global-index order, covering
// every point exactly once. Positions of memory-mapped sources are views
// into the mapping and stay valid until the source is closed.
package pointcloud

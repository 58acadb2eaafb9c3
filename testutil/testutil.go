package testutil

import (
	"math"
	"math/rand"
	"sync"

	"github.com/hupe1980/voxphase/geom"
	"github.com/hupe1980/voxphase/voxfile"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*span
	}
}

// PointsIn returns n points drawn uniformly from box.
func (r *RNG) PointsIn(n int, box geom.Box) []geom.Point3 {
	r.mu.Lock()
	defer r.mu.Unlock()

	size := box.Size()
	pts := make([]geom.Point3, n)
	for i := range pts {
		pts[i] = geom.Point3{
			X: box.Min.X + r.rand.Float32()*size.X,
			Y: box.Min.Y + r.rand.Float32()*size.Y,
			Z: box.Min.Z + r.rand.Float32()*size.Z,
		}
	}
	return pts
}

// Shuffle permutes records in place, keeping centers and phases paired.
func (r *RNG) Shuffle(rec voxfile.Records) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(rec.Len(), func(i, j int) {
		rec.Centers[i], rec.Centers[j] = rec.Centers[j], rec.Centers[i]
		rec.Phases[i], rec.Phases[j] = rec.Phases[j], rec.Phases[i]
	})
}

// Zipf returns a Zipfian-distributed value in [0, n).
// Uses Zipf's law: P(k) ∝ 1/k^s where s is the skew parameter.
// s=1.0 gives standard Zipf, s=1.5 gives heavy-tail (80/20 rule).
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1 // 0-indexed
		}
	}

	return n - 1
}

// Lattice describes a regular voxel lattice.
type Lattice struct {
	MinEdge   geom.Point3
	VoxelSize geom.Point3
	Bins      [3]int
}

// Len returns the number of voxels.
func (l Lattice) Len() int {
	return l.Bins[0] * l.Bins[1] * l.Bins[2]
}

// Center returns the center of voxel (ix, iy, iz).
func (l Lattice) Center(ix, iy, iz int) geom.Point3 {
	return geom.Point3{
		X: l.MinEdge.X + (float32(ix)+0.5)*l.VoxelSize.X,
		Y: l.MinEdge.Y + (float32(iy)+0.5)*l.VoxelSize.Y,
		Z: l.MinEdge.Z + (float32(iz)+0.5)*l.VoxelSize.Z,
	}
}

// Box returns the region covered by the lattice.
func (l Lattice) Box() geom.Box {
	return geom.Box{
		Min: l.MinEdge,
		Max: geom.Point3{
			X: l.MinEdge.X + float32(l.Bins[0])*l.VoxelSize.X,
			Y: l.MinEdge.Y + float32(l.Bins[1])*l.VoxelSize.Y,
			Z: l.MinEdge.Z + float32(l.Bins[2])*l.VoxelSize.Z,
		},
	}
}

// DistinctRecords returns one record per voxel, in x-fastest order, with
// the distinct labels 1, 2, 3, ...
func (l Lattice) DistinctRecords() voxfile.Records {
	rec := voxfile.Records{
		Centers: make([]geom.Point3, 0, l.Len()),
		Phases:  make([]float32, 0, l.Len()),
	}
	for iz := 0; iz < l.Bins[2]; iz++ {
		for iy := 0; iy < l.Bins[1]; iy++ {
			for ix := 0; ix < l.Bins[0]; ix++ {
				rec.Centers = append(rec.Centers, l.Center(ix, iy, iz))
				rec.Phases = append(rec.Phases, float32(len(rec.Phases)+1))
			}
		}
	}
	return rec
}

// PhaseLattice returns one record per voxel in shuffled order, labeled
// with phases 0..phases-1 drawn from a Zipf distribution with skew s.
func (r *RNG) PhaseLattice(l Lattice, phases int, s float64) voxfile.Records {
	rec := l.DistinctRecords()
	r.mu.Lock()
	for i := range rec.Phases {
		rec.Phases[i] = float32(r.zipfLocked(phases, s))
	}
	r.mu.Unlock()
	r.Shuffle(rec)
	return rec
}

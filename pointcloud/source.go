package pointcloud

import (
	"context"
	"iter"

	"github.com/hupe1980/voxphase/errs"
	"github.com/hupe1980/voxphase/geom"
)

// DefaultChunkSize is the chunk size used when none is given.
const DefaultChunkSize = 1 << 16

// Source produces the chunks of a point cloud.
type Source interface {
	// Chunks yields the chunks in increasing global-index order. A source
	// error is yielded once and ends the sequence.
	Chunks(ctx context.Context) iter.Seq2[Chunk, error]

	// Len returns the total number of points, if known.
	Len() (uint64, bool)
}

// SliceOption configures a SliceSource.
type SliceOption func(*SliceSource)

// WithMass attaches per-point masses.
func WithMass(mass []float32) SliceOption {
	return func(s *SliceSource) { s.mass = mass }
}

// WithTypes attaches per-point type labels.
func WithTypes(types []uint8) SliceOption {
	return func(s *SliceSource) { s.types = types }
}

// WithBase offsets the global index of the first point.
func WithBase(base uint64) SliceOption {
	return func(s *SliceSource) { s.base = base }
}

// SliceSource serves in-memory points in fixed-size chunks.
type SliceSource struct {
	positions []geom.Point3
	mass      []float32
	types     []uint8
	base      uint64
	chunkSize int
}

var _ Source = (*SliceSource)(nil)

// NewSliceSource returns a source over positions. chunkSize <= 0 selects
// DefaultChunkSize.
func NewSliceSource(positions []geom.Point3, chunkSize int, opts ...SliceOption) (*SliceSource, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	s := &SliceSource{positions: positions, chunkSize: chunkSize}
	for _, fn := range opts {
		fn(s)
	}
	if s.mass != nil && len(s.mass) != len(positions) {
		return nil, errs.Invalid("mass", "%d values for %d positions", len(s.mass), len(positions))
	}
	if s.types != nil && len(s.types) != len(positions) {
		return nil, errs.Invalid("types", "%d values for %d positions", len(s.types), len(positions))
	}
	return s, nil
}

// Len implements Source.
func (s *SliceSource) Len() (uint64, bool) {
	return uint64(len(s.positions)), true
}

// Chunks implements Source.
func (s *SliceSource) Chunks(_ context.Context) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		for off := 0; off < len(s.positions); off += s.chunkSize {
			end := min(off+s.chunkSize, len(s.positions))
			c := Chunk{
				Base:      s.base + uint64(off),
				Positions: s.positions[off:end:end],
			}
			if s.mass != nil {
				c.Mass = s.mass[off:end:end]
			}
			if s.types != nil {
				c.Types = s.types[off:end:end]
			}
			if !yield(c, nil) {
				return
			}
		}
	}
}

// FuncSource adapts a chunk generator. It is handy for sources whose
// chunking is decided elsewhere, such as a host enumeration API.
type FuncSource struct {
	Fn    func(ctx context.Context) iter.Seq2[Chunk, error]
	Total uint64
	Known bool
}

// Chunks implements Source.
func (f FuncSource) Chunks(ctx context.Context) iter.Seq2[Chunk, error] {
	return f.Fn(ctx)
}

// Len implements Source.
func (f FuncSource) Len() (uint64, bool) {
	return f.Total, f.Known
}

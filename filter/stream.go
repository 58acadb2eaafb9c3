package filter

import (
	"context"
	"fmt"
	"iter"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/voxphase/grid"
	"github.com/hupe1980/voxphase/pointcloud"
)

// Block is the result for one input chunk.
type Block struct {
	// Base and Count identify the chunk.
	Base  uint64
	Count int
	// Indices are the matching global indices, ascending.
	Indices []uint64
}

// Match appends to dst the global index of every point of c whose phase
// equals target. A point outside the grid fails with an error wrapping
// errs.OutOfRangeError.
func Match(g *grid.PhaseGrid, target float32, c pointcloud.Chunk, dst []uint64) ([]uint64, error) {
	for i, p := range c.Positions {
		phase, err := g.GetPhase(p)
		if err != nil {
			return dst, fmt.Errorf("point %d: %w", c.Base+uint64(i), err)
		}
		if phase == target {
			dst = append(dst, c.Base+uint64(i))
		}
	}
	return dst, nil
}

// Stream classifies src against g and yields one Block per chunk. A nil
// grid yields nothing. The first error (source, chunk order, out of range
// or cancellation) is yielded once and ends the stream.
func Stream(ctx context.Context, g *grid.PhaseGrid, target float32, src pointcloud.Source, opts ...Option) iter.Seq2[Block, error] {
	o := applyOptions(opts)
	return func(yield func(Block, error) bool) {
		if g == nil {
			return
		}
		if o.workers > 1 {
			streamParallel(ctx, g, target, src, o, yield)
			return
		}
		streamSerial(ctx, g, target, src, o, yield)
	}
}

func streamSerial(ctx context.Context, g *grid.PhaseGrid, target float32, src pointcloud.Source, o options, yield func(Block, error) bool) {
	prog := newProgress(o, src)

	var cur pointcloud.Cursor
	for c, err := range src.Chunks(ctx) {
		if err == nil {
			err = ctx.Err()
		}
		if err == nil {
			err = cur.Advance(c)
		}
		if err != nil {
			yield(Block{}, err)
			return
		}
		idx, err := Match(g, target, c, nil)
		if err != nil {
			yield(Block{}, err)
			return
		}
		if !yield(Block{Base: c.Base, Count: c.Len(), Indices: idx}, nil) {
			return
		}
		prog.advance(c.Len())
	}
	if err := ctx.Err(); err != nil {
		yield(Block{}, err)
		return
	}
	prog.finish()
}

type job struct {
	chunk   pointcloud.Chunk
	indices []uint64
	err     error
	done    chan struct{}
}

// streamParallel reads chunks on one goroutine, classifies them on up to
// o.workers goroutines and yields them in read order. The jobs channel is
// the reassembly window.
func streamParallel(parent context.Context, g *grid.PhaseGrid, target float32, src pointcloud.Source, o options, yield func(Block, error) bool) {
	ctx, cancel := context.WithCancel(parent)
	prog := newProgress(o, src)
	jobs := make(chan *job, o.workers)

	eg, ectx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer close(jobs)

		var pool errgroup.Group
		pool.SetLimit(o.workers)
		defer func() { _ = pool.Wait() }()

		send := func(j *job) bool {
			select {
			case jobs <- j:
				return true
			case <-ectx.Done():
				return false
			}
		}

		var cur pointcloud.Cursor
		for c, err := range src.Chunks(ectx) {
			if ectx.Err() != nil {
				return nil
			}
			if err == nil {
				err = cur.Advance(c)
			}
			if err != nil {
				j := &job{err: err, done: make(chan struct{})}
				close(j.done)
				send(j)
				return nil
			}
			j := &job{chunk: c, done: make(chan struct{})}
			if !send(j) {
				return nil
			}
			pool.Go(func() error {
				j.indices, j.err = Match(g, target, j.chunk, nil)
				close(j.done)
				return nil
			})
		}
		return nil
	})

	stop := func() {
		cancel()
		for range jobs {
		}
		_ = eg.Wait()
	}
	defer stop()

	for j := range jobs {
		<-j.done
		if err := parent.Err(); err != nil {
			yield(Block{}, err)
			return
		}
		if j.err != nil {
			yield(Block{}, j.err)
			return
		}
		if !yield(Block{Base: j.chunk.Base, Count: j.chunk.Len(), Indices: j.indices}, nil) {
			return
		}
		prog.advance(j.chunk.Len())
	}
	if err := parent.Err(); err != nil {
		yield(Block{}, err)
		return
	}
	prog.finish()
}

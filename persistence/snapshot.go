package persistence

import (
	"bufio"
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/voxphase/blobstore"
	"github.com/hupe1980/voxphase/codec"
	"github.com/hupe1980/voxphase/errs"
	"github.com/hupe1980/voxphase/geom"
	"github.com/hupe1980/voxphase/grid"
)

// binsPerChunk is the cancellation and buffering granularity for bin IO.
const binsPerChunk = 1 << 16

// Write encodes the frozen grid g to w, compressed with c (nil means none).
func Write(ctx context.Context, w io.Writer, g *grid.PhaseGrid, c codec.Codec) error {
	if g == nil || !g.Frozen() {
		return errs.Invalid("grid", "only frozen grids can be snapshotted")
	}
	if c == nil {
		c = codec.None{}
	}

	var cov []byte
	if bm := g.Coverage(); bm != nil {
		var err error
		if cov, err = bm.ToBytes(); err != nil {
			return err
		}
	}

	l := g.Layout()
	h := FileHeader{
		Magic:       MagicNumber,
		Version:     Version,
		Bins:        [3]uint32{uint32(l.Bins[0]), uint32(l.Bins[1]), uint32(l.Bins[2])},
		MinEdge:     [3]float32{l.MinEdge.X, l.MinEdge.Y, l.MinEdge.Z},
		VoxelSize:   [3]float32{l.VoxelSize.X, l.VoxelSize.Y, l.VoxelSize.Z},
		Writes:      g.Writes(),
		CoverageLen: uint64(len(cov)),
	}
	if cov != nil {
		h.Flags |= flagCoverage
	}

	cw, err := c.NewWriter(w)
	if err != nil {
		return err
	}
	if err := writeBody(ctx, cw, &h, g.Bins(), cov); err != nil {
		_ = cw.Close()
		return err
	}
	return cw.Close()
}

func writeBody(ctx context.Context, w io.Writer, h *FileHeader, bins []float32, cov []byte) error {
	bw := bufio.NewWriterSize(w, 1<<20)
	ck := NewChecksumWriter(bw)

	if err := binary.Write(ck, binary.LittleEndian, h); err != nil {
		return err
	}

	var buf []byte
	for off := 0; off < len(bins); off += binsPerChunk {
		if err := ctx.Err(); err != nil {
			return err
		}
		buf = encodeFloat32s(bins[off:min(off+binsPerChunk, len(bins))], buf)
		if _, err := ck.Write(buf); err != nil {
			return err
		}
	}
	if _, err := ck.Write(cov); err != nil {
		return err
	}

	if err := binary.Write(bw, binary.LittleEndian, ck.Sum()); err != nil {
		return err
	}
	return bw.Flush()
}

// Read decodes a snapshot written by Write. The returned grid is frozen.
// Malformed or corrupted input fails with a FormatError.
func Read(ctx context.Context, r io.Reader, opts ...grid.Option) (*grid.PhaseGrid, error) {
	br := bufio.NewReaderSize(r, 1<<20)
	magic, _ := br.Peek(codec.MagicLen)
	c := codec.Detect(magic)
	dr, err := c.NewReader(br)
	if err != nil {
		return nil, errs.NewFormatError(0, "%s frame", c.Name()).WithCause(err)
	}
	defer func() { _ = dr.Close() }()

	ck := NewChecksumReader(dr)

	var h FileHeader
	if err := binary.Read(ck, binary.LittleEndian, &h); err != nil {
		return nil, truncated(0, "header", err)
	}
	if h.Magic != MagicNumber {
		return nil, errs.NewFormatError(0, "snapshot magic 0x%08x", h.Magic).WithCause(ErrInvalidMagic)
	}
	if h.Version != Version {
		return nil, errs.NewFormatError(4, "snapshot version %d", h.Version).WithCause(ErrInvalidVersion)
	}

	l := grid.Layout{
		MinEdge:   geom.Pt(h.MinEdge[0], h.MinEdge[1], h.MinEdge[2]),
		VoxelSize: geom.Pt(h.VoxelSize[0], h.VoxelSize[1], h.VoxelSize[2]),
		Bins:      [3]int{int(h.Bins[0]), int(h.Bins[1]), int(h.Bins[2])},
	}
	if err := l.Validate(); err != nil {
		return nil, errs.NewFormatError(0, "snapshot layout").WithCause(err)
	}

	n := l.Len()
	if h.CoverageLen > uint64(n)*8+4096 {
		return nil, errs.NewFormatError(0, "coverage of %d bytes for %d bins", h.CoverageLen, n)
	}

	// The grid reserves its memory before the bins are allocated.
	g, err := grid.NewWithLayout(l, opts...)
	if err != nil {
		return nil, err
	}
	ok := false
	defer func() {
		if !ok {
			g.Release()
		}
	}()

	bins := g.Bins()
	raw := float32Bytes(bins)
	for off := 0; off < len(raw); off += 4 * binsPerChunk {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := min(off+4*binsPerChunk, len(raw))
		if _, err := io.ReadFull(ck, raw[off:end]); err != nil {
			return nil, truncated(int64(HeaderSize+off), "bins", err)
		}
	}
	decodeFloat32s(bins)

	var cov *roaring.Bitmap
	if h.Flags&flagCoverage != 0 {
		covBytes := make([]byte, h.CoverageLen)
		if _, err := io.ReadFull(ck, covBytes); err != nil {
			return nil, truncated(int64(HeaderSize+len(raw)), "coverage", err)
		}
		cov = roaring.New()
		if _, err := cov.ReadFrom(bytes.NewReader(covBytes)); err != nil {
			return nil, errs.NewFormatError(int64(HeaderSize+len(raw)), "coverage bitmap").WithCause(err)
		}
	}

	var sum uint32
	if err := binary.Read(dr, binary.LittleEndian, &sum); err != nil {
		return nil, truncated(-1, "checksum", err)
	}
	if err := ck.Verify(sum); err != nil {
		return nil, errs.NewFormatError(-1, "snapshot").WithCause(err)
	}

	if err := g.Restore(cov, h.Writes); err != nil {
		return nil, errs.NewFormatError(0, "snapshot").WithCause(err)
	}
	ok = true
	return g, nil
}

// Save writes a snapshot of g to store under name.
func Save(ctx context.Context, store blobstore.BlobStore, name string, g *grid.PhaseGrid, c codec.Codec) error {
	w, err := store.Create(ctx, name)
	if err != nil {
		return errs.NewIOError("create", name, err)
	}
	if err := Write(ctx, w, g, c); err != nil {
		_ = blobstore.Discard(w)
		return err
	}
	if err := w.Close(); err != nil {
		return errs.NewIOError("close", name, err)
	}
	return nil
}

// Load reads the snapshot stored under name.
func Load(ctx context.Context, store blobstore.BlobStore, name string, opts ...grid.Option) (*grid.PhaseGrid, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, errs.NewIOError("open", name, err)
	}
	defer func() { _ = b.Close() }()

	rc, err := b.ReadRange(ctx, 0, b.Size())
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errs.NewFormatError(0, "empty snapshot")
		}
		return nil, errs.NewIOError("read", name, err)
	}
	defer func() { _ = rc.Close() }()

	return Read(ctx, rc, opts...)
}

func truncated(off int64, what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return errs.NewFormatError(off, "truncated snapshot %s", what).WithCause(io.ErrUnexpectedEOF)
	}
	return errs.NewFormatError(off, "snapshot %s", what).WithCause(err)
}

package voxfile

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/voxphase/blobstore"
	"github.com/hupe1980/voxphase/errs"
	"github.com/hupe1980/voxphase/internal/conv"
	"github.com/hupe1980/voxphase/internal/resource"
)

// byteSource serves bounded reads of a container.
type byteSource interface {
	Size() int64
	// Read returns exactly n bytes at off. The slice may alias the source.
	Read(ctx context.Context, off, n int64) ([]byte, error)
}

// sliceSource serves reads from memory (a mapped file or a decoded frame)
// without copying.
type sliceSource []byte

func (s sliceSource) Size() int64 { return int64(len(s)) }

func (s sliceSource) Read(_ context.Context, off, n int64) ([]byte, error) {
	if off < 0 || n < 0 || off+n > int64(len(s)) {
		return nil, errs.NewFormatError(off, "truncated: need %d bytes, %d available", n, max(int64(len(s))-off, 0))
	}
	return s[off : off+n], nil
}

// blobSource reads through Blob.ReadAt, so skipped sections are never
// fetched from remote stores.
type blobSource struct {
	r    resource.ReaderAt
	size int64
}

func (s *blobSource) Size() int64 { return s.size }

func (s *blobSource) Read(ctx context.Context, off, n int64) ([]byte, error) {
	if off < 0 || n < 0 || off+n > s.size {
		return nil, errs.NewFormatError(off, "truncated: need %d bytes, %d available", n, max(s.size-off, 0))
	}
	size, err := conv.Int64ToInt(n)
	if err != nil {
		return nil, errs.NewFormatError(off, "section of %d bytes", n).WithCause(err)
	}
	buf := make([]byte, size)
	m, err := s.r.ReadAt(ctx, buf, off)
	if m == size {
		return buf, nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	if ctx.Err() != nil {
		return nil, err
	}
	return nil, errs.NewIOError("read", "", err)
}

// newByteSource picks the cheapest way to read b: mapped bytes in place,
// a decoded buffer for compressed frames, or ranged reads otherwise.
func newByteSource(ctx context.Context, b blobstore.Blob, o options) (byteSource, error) {
	if m, ok := b.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			return nil, errs.NewIOError("map", "", err)
		}
		return decodeFrame(data, o)
	}

	r := resource.NewRateLimitedReaderAt(b, o.rc)
	size := b.Size()
	magic := make([]byte, min(size, 4))
	if _, err := r.ReadAt(ctx, magic, 0); err != nil && !errors.Is(err, io.EOF) {
		return nil, errs.NewIOError("read", "", err)
	}
	if detect(magic) == nil {
		return &blobSource{r: r, size: size}, nil
	}

	sr := io.NewSectionReader(resource.WithContext(ctx, r), 0, size)
	src, err := decodeStream(sr, magic, o)
	if errors.Is(err, errNotFrame) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return &blobSource{r: r, size: size}, nil
	}
	return src, err
}

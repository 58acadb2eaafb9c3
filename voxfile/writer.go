package voxfile

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/hupe1980/voxphase/codec"
	"github.com/hupe1980/voxphase/errs"
	"github.com/hupe1980/voxphase/geom"
	"github.com/hupe1980/voxphase/internal/conv"
)

// ErrWriterClosed is returned when writing to a closed Writer.
var ErrWriterClosed = errors.New("voxfile: writer closed")

// WriterOption configures a Writer.
type WriterOption func(*writerOptions)

type writerOptions struct {
	codec      codec.Codec
	extraBytes int
	leading    []byte
}

// WithCodec compresses the whole container as a single frame.
func WithCodec(c codec.Codec) WriterOption {
	return func(o *writerOptions) { o.codec = c }
}

// WithExtraHeaderBytes pads every section header with n bytes beyond the
// fixed 148.
func WithExtraHeaderBytes(n int) WriterOption {
	return func(o *writerOptions) { o.extraBytes = n }
}

// WithLeadingHeader sets the content of the 540-byte leading header. Shorter
// input is zero padded.
func WithLeadingHeader(b []byte) WriterOption {
	return func(o *writerOptions) { o.leading = b }
}

// Writer produces voxel containers.
type Writer struct {
	cw      io.WriteCloser
	extra   int
	written int64
	closed  bool
}

// NewWriter writes the leading header to w and returns a Writer for the
// sections that follow. Close must be called to flush compressed output;
// it does not close w.
func NewWriter(w io.Writer, opts ...WriterOption) (*Writer, error) {
	var o writerOptions
	for _, fn := range opts {
		fn(&o)
	}
	if o.extraBytes < 0 || o.extraBytes > math.MaxInt32-SectionHeaderSize {
		return nil, errs.Invalid("extra header bytes", "%d", o.extraBytes)
	}
	if len(o.leading) > LeadingHeaderSize {
		return nil, errs.Invalid("leading header", "%d bytes > %d", len(o.leading), LeadingHeaderSize)
	}
	if o.codec == nil {
		o.codec = codec.None{}
	}

	cw, err := o.codec.NewWriter(w)
	if err != nil {
		return nil, err
	}
	vw := &Writer{cw: cw, extra: o.extraBytes}

	leading := make([]byte, LeadingHeaderSize)
	copy(leading, o.leading)
	if err := vw.write(leading); err != nil {
		return nil, err
	}
	return vw, nil
}

// WriteSection appends a section with an opaque payload.
func (w *Writer) WriteSection(name string, recordCount int64, payload []byte) error {
	if w.closed {
		return ErrWriterClosed
	}
	h := SectionHeader{
		HeaderSize:  int32(SectionHeaderSize + w.extra),
		Name:        name,
		RecordCount: recordCount,
		DataLength:  int64(len(payload)),
	}
	hdr, err := h.Encode()
	if err != nil {
		return err
	}
	if err := w.write(hdr); err != nil {
		return err
	}
	return w.write(payload)
}

// WriteFloats appends a float32 section with one record per value.
func (w *Writer) WriteFloats(name string, v []float32) error {
	return w.WriteSection(name, int64(len(v)), encodeFloats(v))
}

// WritePoints appends an xyz section with one record per point.
func (w *Writer) WritePoints(name string, pts []geom.Point3) error {
	n, err := conv.MulInt(len(pts), 3)
	if err != nil {
		return errs.Invalid("points", "%d points", len(pts))
	}
	flat := make([]float32, 0, n)
	for _, p := range pts {
		flat = append(flat, p.X, p.Y, p.Z)
	}
	return w.WriteSection(name, int64(len(pts)), encodeFloats(flat))
}

// Written returns the number of uncompressed bytes written so far.
func (w *Writer) Written() int64 {
	return w.written
}

// Close flushes the container.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	return w.cw.Close()
}

func (w *Writer) write(p []byte) error {
	n, err := w.cw.Write(p)
	w.written += int64(n)
	return err
}

// WriteRecords writes a complete container holding r under the given
// section names.
func WriteRecords(w io.Writer, centers, phases string, r Records, opts ...WriterOption) error {
	if err := r.Validate(); err != nil {
		return err
	}
	vw, err := NewWriter(w, opts...)
	if err != nil {
		return err
	}
	if err := vw.WritePoints(centers, r.Centers); err != nil {
		return err
	}
	if err := vw.WriteFloats(phases, r.Phases); err != nil {
		return err
	}
	return vw.Close()
}

func encodeFloats(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}

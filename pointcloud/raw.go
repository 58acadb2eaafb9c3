package pointcloud

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"math"
	"unsafe"

	"github.com/hupe1980/voxphase/errs"
	"github.com/hupe1980/voxphase/geom"
	"github.com/hupe1980/voxphase/internal/conv"
	"github.com/hupe1980/voxphase/internal/mmap"
)

// Format is the record layout of a raw point file.
type Format int

const (
	// FormatXYZ is headerless little-endian float32 x, y, z.
	FormatXYZ Format = iota
	// FormatPOS is the classic atom probe .pos layout: headerless
	// big-endian float32 x, y, z, mass-to-charge.
	FormatPOS
)

func (f Format) String() string {
	switch f {
	case FormatXYZ:
		return "xyz"
	case FormatPOS:
		return "pos"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat resolves "xyz" or "pos".
func ParseFormat(s string) (Format, error) {
	switch s {
	case "xyz", "":
		return FormatXYZ, nil
	case "pos":
		return FormatPOS, nil
	}
	return 0, errs.Invalid("point format", "unknown format %q", s)
}

func (f Format) stride() int {
	if f == FormatPOS {
		return 16
	}
	return 12
}

// RawFile is a memory-mapped point file.
type RawFile struct {
	m         *mmap.Mapping
	path      string
	format    Format
	n         uint64
	chunkSize int
}

var _ Source = (*RawFile)(nil)

// OpenRawFile maps the point file at path. chunkSize <= 0 selects
// DefaultChunkSize. A missing file fails with an IOError, a size that is
// not a whole number of records with a FormatError.
func OpenRawFile(path string, format Format, chunkSize int) (*RawFile, error) {
	if format != FormatXYZ && format != FormatPOS {
		return nil, errs.Invalid("point format", "%v", format)
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	m, err := mmap.Open(path)
	if err != nil {
		return nil, errs.NewIOError("open", path, err)
	}
	stride := format.stride()
	if m.Size()%stride != 0 {
		_ = m.Close()
		return nil, errs.NewFormatError(int64(m.Size()), "%s: %d bytes is not a multiple of the %d-byte %s record", path, m.Size(), stride, format)
	}
	_ = m.Advise(mmap.AccessSequential)

	return &RawFile{
		m:         m,
		path:      path,
		format:    format,
		n:         uint64(m.Size() / stride),
		chunkSize: chunkSize,
	}, nil
}

// Len implements Source.
func (f *RawFile) Len() (uint64, bool) {
	return f.n, true
}

// Close unmaps the file. Chunks handed out before are invalid afterwards.
func (f *RawFile) Close() error {
	return f.m.Close()
}

// Chunks implements Source. xyz positions on little-endian hosts are views
// into the mapping; other layouts are decoded per chunk.
func (f *RawFile) Chunks(_ context.Context) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		stride := f.format.stride()
		for base := uint64(0); base < f.n; base += uint64(f.chunkSize) {
			count := int(min(uint64(f.chunkSize), f.n-base))
			b, err := f.m.Slice(int(base)*stride, count*stride)
			if err != nil {
				yield(Chunk{}, errs.NewIOError("read", f.path, err))
				return
			}
			if !yield(f.decode(base, b, count), nil) {
				return
			}
		}
	}
}

func (f *RawFile) decode(base uint64, b []byte, count int) Chunk {
	c := Chunk{Base: base}
	switch f.format {
	case FormatPOS:
		c.Positions = make([]geom.Point3, count)
		c.Mass = make([]float32, count)
		for i := range count {
			r := b[16*i:]
			c.Positions[i] = geom.Point3{
				X: math.Float32frombits(binary.BigEndian.Uint32(r[0:])),
				Y: math.Float32frombits(binary.BigEndian.Uint32(r[4:])),
				Z: math.Float32frombits(binary.BigEndian.Uint32(r[8:])),
			}
			c.Mass[i] = math.Float32frombits(binary.BigEndian.Uint32(r[12:]))
		}
	default:
		if conv.NativeLittleEndian {
			c.Positions = unsafe.Slice((*geom.Point3)(unsafe.Pointer(&b[0])), count) //nolint:gosec // unsafe is required for mmap access
			return c
		}
		c.Positions = make([]geom.Point3, count)
		for i := range count {
			r := b[12*i:]
			c.Positions[i] = geom.Point3{
				X: math.Float32frombits(binary.LittleEndian.Uint32(r[0:])),
				Y: math.Float32frombits(binary.LittleEndian.Uint32(r[4:])),
				Z: math.Float32frombits(binary.LittleEndian.Uint32(r[8:])),
			}
		}
	}
	return c
}

// WriteRaw encodes positions (and, for FormatPOS, masses) as a raw point
// file. mass may be nil.
func WriteRaw(w io.Writer, format Format, positions []geom.Point3, mass []float32) error {
	if mass != nil && len(mass) != len(positions) {
		return errs.Invalid("mass", "%d values for %d positions", len(mass), len(positions))
	}
	var order binary.AppendByteOrder = binary.LittleEndian
	if format == FormatPOS {
		order = binary.BigEndian
	}

	const batch = 4096
	buf := make([]byte, 0, batch*format.stride())
	for off := 0; off < len(positions); off += batch {
		buf = buf[:0]
		for i := off; i < min(off+batch, len(positions)); i++ {
			p := positions[i]
			buf = order.AppendUint32(buf, math.Float32bits(p.X))
			buf = order.AppendUint32(buf, math.Float32bits(p.Y))
			buf = order.AppendUint32(buf, math.Float32bits(p.Z))
			if format == FormatPOS {
				var m float32
				if mass != nil {
					m = mass[i]
				}
				buf = order.AppendUint32(buf, math.Float32bits(m))
			}
		}
		if _, err := w.Write(buf); err != nil {
			return err
		}
	}
	return nil
}

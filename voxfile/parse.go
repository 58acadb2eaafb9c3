package voxfile

import (
	"context"
	"encoding/binary"
	"math"
	"path/filepath"

	"github.com/hupe1980/voxphase/blobstore"
	"github.com/hupe1980/voxphase/errs"
	"github.com/hupe1980/voxphase/geom"
)

// Records holds voxel centers and their phase labels. Index i of both
// slices describes the same voxel.
type Records struct {
	Centers []geom.Point3
	Phases  []float32
}

// Len returns the number of voxels.
func (r Records) Len() int {
	return len(r.Centers)
}

// Validate checks that centers and phases pair up.
func (r Records) Validate() error {
	if len(r.Centers) != len(r.Phases) {
		return errs.Invalid("records", "%d centers but %d phase labels", len(r.Centers), len(r.Phases))
	}
	return nil
}

// Section describes one section of a container.
type Section struct {
	SectionHeader
	Offset        int64
	PayloadOffset int64
}

// ParseFile opens the container at path read-only and parses it with Parse.
// A missing or unreadable file fails with an IOError.
func ParseFile(ctx context.Context, path, centers, phases string, opts ...Option) (Records, error) {
	store := blobstore.NewLocalStore(filepath.Dir(path))
	b, err := store.Open(ctx, filepath.Base(path))
	if err != nil {
		return Records{}, errs.NewIOError("open", path, err)
	}
	defer func() { _ = b.Close() }()

	return Parse(ctx, b, centers, phases, opts...)
}

// Parse scans the container for the sections named centers and phases.
//
// Both sections must be present exactly once; otherwise a FormatError lists
// the missing names. The centers payload is read as xyz triples and must
// pair up with the phase labels one to one (ValidationError). All other
// sections are skipped. ctx is checked between sections.
func Parse(ctx context.Context, b blobstore.Blob, centers, phases string, opts ...Option) (Records, error) {
	if centers == "" || phases == "" {
		return Records{}, errs.Invalid("section names", "centers %q and phases %q must be non-empty", centers, phases)
	}
	if centers == phases {
		return Records{}, errs.Invalid("section names", "centers and phases both name %q", centers)
	}

	o := applyOptions(opts)
	src, err := newByteSource(ctx, b, o)
	if err != nil {
		return Records{}, err
	}

	required := []string{centers, phases}
	found := make(map[string][]float32, len(required))

	err = walk(ctx, src, func(s Section) error {
		if s.Name != centers && s.Name != phases {
			return nil
		}
		if _, dup := found[s.Name]; dup {
			return errs.NewFormatError(s.Offset, "section %q appears more than once", s.Name)
		}
		if s.DataLength%4 != 0 {
			return errs.NewFormatError(s.Offset, "section %q payload of %d bytes is not a float32 array", s.Name, s.DataLength)
		}
		payload, err := src.Read(ctx, s.PayloadOffset, s.DataLength)
		if err != nil {
			return err
		}
		found[s.Name] = decodeFloats(payload)
		return nil
	})
	if err != nil {
		return Records{}, err
	}

	var missing []string
	for _, name := range required {
		if _, ok := found[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return Records{}, errs.MissingSections(missing, required)
	}

	pts, err := geom.FromFloats(found[centers])
	if err != nil {
		return Records{}, err
	}
	r := Records{Centers: pts, Phases: found[phases]}
	if err := r.Validate(); err != nil {
		return Records{}, err
	}
	return r, nil
}

// Sections lists every section of the container in file order.
func Sections(ctx context.Context, b blobstore.Blob, opts ...Option) ([]Section, error) {
	src, err := newByteSource(ctx, b, applyOptions(opts))
	if err != nil {
		return nil, err
	}
	var out []Section
	err = walk(ctx, src, func(s Section) error {
		out = append(out, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// walk visits the section headers after the leading header. It reads only
// the fixed header part of every section; payloads are left to fn.
func walk(ctx context.Context, src byteSource, fn func(Section) error) error {
	size := src.Size()
	if size < LeadingHeaderSize {
		return errs.NewFormatError(0, "truncated leading header: %d of %d bytes", size, LeadingHeaderSize)
	}

	for off := int64(LeadingHeaderSize); off < size; {
		if err := ctx.Err(); err != nil {
			return err
		}

		if size-off < SectionHeaderSize {
			return errs.NewFormatError(off, "truncated section header: %d of %d bytes", size-off, SectionHeaderSize)
		}
		buf, err := src.Read(ctx, off, SectionHeaderSize)
		if err != nil {
			return err
		}
		h, err := DecodeSectionHeader(buf, off)
		if err != nil {
			return err
		}

		payloadOff := off + int64(h.HeaderSize)
		if payloadOff > size || h.DataLength > size-payloadOff {
			return errs.NewFormatError(off, "section %q: payload of %d bytes at %d exceeds container size %d",
				h.Name, h.DataLength, payloadOff, size)
		}

		if err := fn(Section{SectionHeader: *h, Offset: off, PayloadOffset: payloadOff}); err != nil {
			return err
		}
		off = payloadOff + h.DataLength
	}
	return nil
}

func decodeFloats(b []byte) []float32 {
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return out
}

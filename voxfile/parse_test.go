package voxfile

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf16"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/voxphase/blobstore"
	"github.com/hupe1980/voxphase/codec"
	"github.com/hupe1980/voxphase/errs"
	"github.com/hupe1980/voxphase/geom"
)

// rawSection encodes a section byte by byte from the documented layout,
// independent of Writer.
func rawSection(name string, headerSize int32, records int64, floats []float32) []byte {
	h := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(h[4:], uint32(headerSize))
	for i, u := range utf16.Encode([]rune(name)) {
		binary.LittleEndian.PutUint16(h[12+2*i:], u)
	}
	binary.LittleEndian.PutUint64(h[132:], uint64(records))
	binary.LittleEndian.PutUint64(h[140:], uint64(4*len(floats)))
	for i := range h[148:] {
		h[148+i] = 0xAB
	}
	payload := make([]byte, 4*len(floats))
	for i, f := range floats {
		binary.LittleEndian.PutUint32(payload[4*i:], math.Float32bits(f))
	}
	return append(h, payload...)
}

func container(sections ...[]byte) []byte {
	out := bytes.Repeat([]byte{0xEE}, LeadingHeaderSize)
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

var (
	fourCenters = []float32{
		0.5, 0.5, 0.5,
		1.5, 0.5, 0.5,
		0.5, 1.5, 0.5,
		0.5, 0.5, 1.5,
	}
	fourPhases = []float32{1, 2, 3, 4}
)

func openBytes(t *testing.T, data []byte) blobstore.Blob {
	t.Helper()
	store := blobstore.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), "c.apt", data))
	b, err := store.Open(context.Background(), "c.apt")
	require.NoError(t, err)
	return b
}

func TestParse_IgnoresUnrequestedSections(t *testing.T) {
	data := container(
		rawSection("foo", 148, 3, []float32{9, 9, 9}),
		rawSection("bar", 200, 1, []float32{7}),
		rawSection("centers", 164, 4, fourCenters),
		rawSection("phases", 148, 4, fourPhases),
	)

	r, err := Parse(context.Background(), openBytes(t, data), "centers", "phases")
	require.NoError(t, err)

	assert.Equal(t, []geom.Point3{
		geom.Pt(0.5, 0.5, 0.5),
		geom.Pt(1.5, 0.5, 0.5),
		geom.Pt(0.5, 1.5, 0.5),
		geom.Pt(0.5, 0.5, 1.5),
	}, r.Centers)
	assert.Equal(t, fourPhases, r.Phases)
	assert.Equal(t, 4, r.Len())
}

func TestParse_SectionOrderDoesNotMatter(t *testing.T) {
	data := container(
		rawSection("phases", 148, 4, fourPhases),
		rawSection("foo", 148, 0, nil),
		rawSection("centers", 148, 4, fourCenters),
	)
	r, err := Parse(context.Background(), openBytes(t, data), "centers", "phases")
	require.NoError(t, err)
	assert.Equal(t, fourPhases, r.Phases)
}

func TestParse_MissingSection(t *testing.T) {
	t.Run("phases", func(t *testing.T) {
		data := container(
			rawSection("foo", 148, 0, nil),
			rawSection("centers", 148, 4, fourCenters),
		)
		_, err := Parse(context.Background(), openBytes(t, data), "centers", "phases")
		require.ErrorIs(t, err, errs.ErrFormat)

		var fe *errs.FormatError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, []string{"phases"}, fe.Missing)
	})

	t.Run("both", func(t *testing.T) {
		data := container(rawSection("foo", 148, 0, nil))
		_, err := Parse(context.Background(), openBytes(t, data), "centers", "phases")

		var fe *errs.FormatError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, []string{"centers", "phases"}, fe.Missing)
	})

	t.Run("no sections", func(t *testing.T) {
		_, err := Parse(context.Background(), openBytes(t, container()), "centers", "phases")
		assert.ErrorIs(t, err, errs.ErrFormat)
	})
}

func TestParse_Malformed(t *testing.T) {
	good := rawSection("centers", 148, 4, fourCenters)

	shortHeader := rawSection("phases", 148, 4, fourPhases)
	binary.LittleEndian.PutUint32(shortHeader[4:], 100)

	negative := rawSection("phases", 148, 4, fourPhases)
	binary.LittleEndian.PutUint64(negative[140:], math.MaxUint64)

	oddLength := rawSection("phases", 148, 4, fourPhases)
	binary.LittleEndian.PutUint64(oddLength[140:], 15)

	tests := []struct {
		name string
		data []byte
	}{
		{"leading header truncated", make([]byte, 100)},
		{"section header truncated", container(good, make([]byte, 20))},
		{"payload truncated", container(good, rawSection("phases", 148, 4, fourPhases)[:160])},
		{"header size too small", container(good, shortHeader)},
		{"negative payload length", container(good, negative)},
		{"payload not float32", container(good, oddLength)},
		{"duplicate section", container(good, good, rawSection("phases", 148, 4, fourPhases))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(context.Background(), openBytes(t, tt.data), "centers", "phases")
			assert.ErrorIs(t, err, errs.ErrFormat)
		})
	}
}

func TestParse_Validation(t *testing.T) {
	t.Run("count mismatch", func(t *testing.T) {
		data := container(
			rawSection("centers", 148, 4, fourCenters),
			rawSection("phases", 148, 3, fourPhases[:3]),
		)
		_, err := Parse(context.Background(), openBytes(t, data), "centers", "phases")
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("centers not xyz", func(t *testing.T) {
		data := container(
			rawSection("centers", 148, 4, fourCenters[:11]),
			rawSection("phases", 148, 4, fourPhases),
		)
		_, err := Parse(context.Background(), openBytes(t, data), "centers", "phases")
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("same names", func(t *testing.T) {
		_, err := Parse(context.Background(), openBytes(t, container()), "x", "x")
		assert.ErrorIs(t, err, errs.ErrValidation)
	})
}

func TestParse_Cancelled(t *testing.T) {
	data := container(
		rawSection("centers", 148, 4, fourCenters),
		rawSection("phases", 148, 4, fourPhases),
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Parse(ctx, openBytes(t, data), "centers", "phases")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "run.apt")
	data := container(
		rawSection("bar", 148, 1, []float32{1}),
		rawSection("centers", 148, 4, fourCenters),
		rawSection("phases", 148, 4, fourPhases),
	)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	r, err := ParseFile(context.Background(), path, "centers", "phases")
	require.NoError(t, err)
	assert.Equal(t, fourPhases, r.Phases)

	_, err = ParseFile(context.Background(), filepath.Join(dir, "missing.apt"), "centers", "phases")
	require.ErrorIs(t, err, errs.ErrIO)
	var ioe *errs.IOError
	require.ErrorAs(t, err, &ioe)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

// rangedBlob hides Mappable so Parse falls back to ranged reads, and
// records every read.
type rangedBlob struct {
	data  []byte
	reads [][2]int64
}

func (b *rangedBlob) ReadAt(_ context.Context, p []byte, off int64) (int, error) {
	b.reads = append(b.reads, [2]int64{off, int64(len(p))})
	if off >= int64(len(b.data)) {
		return 0, io.EOF
	}
	n := copy(p, b.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (b *rangedBlob) ReadRange(_ context.Context, off, length int64) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(b.data[off : off+length])), nil
}

func (b *rangedBlob) Close() error { return nil }

func (b *rangedBlob) Size() int64 { return int64(len(b.data)) }

func TestParse_RangedReadsSkipPayloads(t *testing.T) {
	big := make([]float32, 4096)
	bigSection := rawSection("big", 148, int64(len(big)), big)
	data := container(
		bigSection,
		rawSection("centers", 148, 4, fourCenters),
		rawSection("phases", 148, 4, fourPhases),
	)
	b := &rangedBlob{data: data}

	r, err := Parse(context.Background(), b, "centers", "phases")
	require.NoError(t, err)
	assert.Equal(t, 4, r.Len())

	bigPayload := int64(LeadingHeaderSize + 148)
	for _, rd := range b.reads {
		overlaps := rd[0] < bigPayload+int64(4*len(big)) && rd[0]+rd[1] > bigPayload
		assert.False(t, overlaps, "read %v touches the skipped payload", rd)
	}
}

func TestParse_Compressed(t *testing.T) {
	records := Records{
		Centers: []geom.Point3{geom.Pt(0.5, 0.5, 0.5), geom.Pt(1.5, 0.5, 0.5)},
		Phases:  []float32{2, 0},
	}

	for _, c := range []codec.Codec{codec.Zstd{}, codec.LZ4{}} {
		t.Run(c.Name(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteRecords(&buf, "Voxel Centers", "Phase", records, WithCodec(c)))

			got, err := Parse(context.Background(), openBytes(t, buf.Bytes()), "Voxel Centers", "Phase")
			require.NoError(t, err)
			assert.Equal(t, records, got)

			got, err = Parse(context.Background(), &rangedBlob{data: buf.Bytes()}, "Voxel Centers", "Phase")
			require.NoError(t, err)
			assert.Equal(t, records, got)
		})
	}

	for name, magic := range map[string][]byte{
		"zstd magic": {0x28, 0xB5, 0x2F, 0xFD, 0xFF, 0xFF, 0xFF, 0xFF},
		"lz4 magic":  {0x04, 0x22, 0x4D, 0x18, 0xFF, 0xFF, 0xFF, 0xFF},
	} {
		t.Run("plain with "+name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, WriteRecords(&buf, "Voxel Centers", "Phase", records, WithLeadingHeader(magic)))
			require.Equal(t, magic, buf.Bytes()[:len(magic)])

			got, err := Parse(context.Background(), openBytes(t, buf.Bytes()), "Voxel Centers", "Phase")
			require.NoError(t, err)
			assert.Equal(t, records, got)

			got, err = Parse(context.Background(), &rangedBlob{data: buf.Bytes()}, "Voxel Centers", "Phase")
			require.NoError(t, err)
			assert.Equal(t, records, got)
		})
	}

	t.Run("size cap", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteRecords(&buf, "c", "p", records, WithCodec(codec.Zstd{})))
		_, err := Parse(context.Background(), openBytes(t, buf.Bytes()), "c", "p", WithMaxDecodedSize(100))
		assert.ErrorIs(t, err, errs.ErrFormat)
	})
}

func TestSections(t *testing.T) {
	data := container(
		rawSection("foo", 148, 0, nil),
		rawSection("centers", 160, 4, fourCenters),
	)
	secs, err := Sections(context.Background(), openBytes(t, data))
	require.NoError(t, err)
	require.Len(t, secs, 2)

	assert.Equal(t, "foo", secs[0].Name)
	assert.Equal(t, int64(LeadingHeaderSize), secs[0].Offset)
	assert.Equal(t, "centers", secs[1].Name)
	assert.Equal(t, int32(160), secs[1].HeaderSize)
	assert.Equal(t, int64(4), secs[1].RecordCount)
	assert.Equal(t, int64(48), secs[1].DataLength)
	assert.Equal(t, secs[1].Offset+160, secs[1].PayloadOffset)
}

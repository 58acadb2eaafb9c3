// Package codec centralizes the stream compression used by voxel containers
// and grid snapshots.
//
// Compressed files are self-describing: a zstd or LZ4 frame starts with a
// fixed magic number, so readers select the codec with Detect and never need
// an out-of-band hint.
package codec

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Codec wraps streams with a compression format.
// Implementations must be safe for concurrent use.
type Codec interface {
	// NewWriter returns a writer that compresses into w. Close flushes the
	// final frame but does not close w.
	NewWriter(w io.Writer) (io.WriteCloser, error)

	// NewReader returns a reader that decompresses r.
	NewReader(r io.Reader) (io.ReadCloser, error)

	// Name returns the stable name of the codec.
	Name() string
}

var (
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
)

// MagicLen is the number of leading bytes Detect inspects.
const MagicLen = 4

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "", "none":
		return None{}, true
	case "zstd":
		return Zstd{}, true
	case "lz4":
		return LZ4{}, true
	default:
		return nil, false
	}
}

// Detect returns the codec whose frame magic prefixes data, or None.
func Detect(prefix []byte) Codec {
	switch {
	case bytes.HasPrefix(prefix, zstdMagic):
		return Zstd{}
	case bytes.HasPrefix(prefix, lz4Magic):
		return LZ4{}
	default:
		return None{}
	}
}

// Decode decompresses a whole buffer. Uncompressed input is returned as is.
func Decode(data []byte) ([]byte, error) {
	switch Detect(data).(type) {
	case Zstd:
		dec := getZstdDecoder()
		defer putZstdDecoder(dec)
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("codec zstd: %w", err)
		}
		return out, nil
	case LZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(data)))
		if err != nil {
			return nil, fmt.Errorf("codec lz4: %w", err)
		}
		return out, nil
	default:
		return data, nil
	}
}

// None passes bytes through unchanged.
type None struct{}

// NewWriter implements Codec.
func (None) NewWriter(w io.Writer) (io.WriteCloser, error) { return nopWriteCloser{w}, nil }

// NewReader implements Codec.
func (None) NewReader(r io.Reader) (io.ReadCloser, error) { return io.NopCloser(r), nil }

// Name returns "none".
func (None) Name() string { return "none" }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// Zstd is the zstd frame format (better ratio, good for archived runs).
type Zstd struct{}

// NewWriter implements Codec.
func (Zstd) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

// NewReader implements Codec.
func (Zstd) NewReader(r io.Reader) (io.ReadCloser, error) {
	dec, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return dec.IOReadCloser(), nil
}

// Name returns "zstd".
func (Zstd) Name() string { return "zstd" }

// LZ4 is the LZ4 frame format (fast, good for scratch snapshots).
type LZ4 struct{}

// NewWriter implements Codec.
func (LZ4) NewWriter(w io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(w), nil
}

// NewReader implements Codec.
func (LZ4) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(lz4.NewReader(r)), nil
}

// Name returns "lz4".
func (LZ4) Name() string { return "lz4" }

var zstdDecoderPool sync.Pool

func getZstdDecoder() *zstd.Decoder {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder)
	}
	dec, _ := zstd.NewReader(nil)
	return dec
}

func putZstdDecoder(dec *zstd.Decoder) {
	zstdDecoderPool.Put(dec)
}

package voxfile

import (
	"bytes"
	"errors"
	"io"

	"github.com/hupe1980/voxphase/codec"
	"github.com/hupe1980/voxphase/errs"
)

// detect returns the codec of a compressed container, or nil for a plain one.
func detect(prefix []byte) codec.Codec {
	c := codec.Detect(prefix)
	if _, plain := c.(codec.None); plain {
		return nil
	}
	return c
}

// errNotFrame marks data that starts with a frame magic but does not decode.
// The leading header is arbitrary, so such data is parsed as a plain container.
var errNotFrame = errors.New("not a compressed frame")

func decodeFrame(data []byte, o options) (byteSource, error) {
	if detect(data) == nil {
		return sliceSource(data), nil
	}
	src, err := decodeStream(bytes.NewReader(data), data, o)
	if errors.Is(err, errNotFrame) {
		return sliceSource(data), nil
	}
	return src, err
}

func decodeStream(r io.Reader, magic []byte, o options) (byteSource, error) {
	c := detect(magic)
	dr, err := c.NewReader(r)
	if err != nil {
		return nil, errNotFrame
	}
	defer func() { _ = dr.Close() }()

	out, err := io.ReadAll(io.LimitReader(dr, o.maxDecodedSize+1))
	if err != nil {
		return nil, errNotFrame
	}
	if int64(len(out)) > o.maxDecodedSize {
		return nil, errs.NewFormatError(0, "%s frame decodes to more than %d bytes", c.Name(), o.maxDecodedSize)
	}
	return sliceSource(out), nil
}

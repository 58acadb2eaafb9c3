package voxfile

import (
	"encoding/binary"
	"strings"

	"golang.org/x/text/encoding/unicode"

	"github.com/hupe1980/voxphase/errs"
)

const (
	// LeadingHeaderSize is the number of bytes skipped at the start of every container.
	LeadingHeaderSize = 540

	// SectionHeaderSize is the minimum size of a section header.
	SectionHeaderSize = 148

	// MaxNameLen is the maximum number of UTF-16 code units in a section name.
	MaxNameLen = nameBytes / 2

	headerSizeOffset  = 4
	nameOffset        = 12
	nameBytes         = 64
	recordCountOffset = 132
	dataLengthOffset  = 140
)

var utf16LE = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// SectionHeader describes one section of a container.
type SectionHeader struct {
	HeaderSize  int32
	Name        string
	RecordCount int64
	DataLength  int64
}

// Encode returns the fixed part of the header followed by HeaderSize-148
// zero bytes.
func (h *SectionHeader) Encode() ([]byte, error) {
	if h.HeaderSize < SectionHeaderSize {
		return nil, errs.Invalid("header size", "%d < %d", h.HeaderSize, SectionHeaderSize)
	}
	name, err := utf16LE.NewEncoder().String(h.Name)
	if err != nil {
		return nil, errs.Invalid("section name", "%q: %v", h.Name, err)
	}
	if len(name) > nameBytes {
		return nil, errs.Invalid("section name", "%q longer than %d code units", h.Name, MaxNameLen)
	}

	buf := make([]byte, h.HeaderSize)
	binary.LittleEndian.PutUint32(buf[headerSizeOffset:], uint32(h.HeaderSize))
	copy(buf[nameOffset:nameOffset+nameBytes], name)
	binary.LittleEndian.PutUint64(buf[recordCountOffset:], uint64(h.RecordCount))
	binary.LittleEndian.PutUint64(buf[dataLengthOffset:], uint64(h.DataLength))
	return buf, nil
}

// DecodeSectionHeader decodes the fixed 148-byte part of a section header
// located at offset off. The extra header bytes are not inspected.
func DecodeSectionHeader(buf []byte, off int64) (*SectionHeader, error) {
	if len(buf) < SectionHeaderSize {
		return nil, errs.NewFormatError(off, "truncated section header: %d of %d bytes", len(buf), SectionHeaderSize)
	}
	h := &SectionHeader{
		HeaderSize:  int32(binary.LittleEndian.Uint32(buf[headerSizeOffset:])),
		RecordCount: int64(binary.LittleEndian.Uint64(buf[recordCountOffset:])),
		DataLength:  int64(binary.LittleEndian.Uint64(buf[dataLengthOffset:])),
	}
	if h.HeaderSize < SectionHeaderSize {
		return nil, errs.NewFormatError(off, "section header size %d < %d", h.HeaderSize, SectionHeaderSize)
	}
	if h.DataLength < 0 {
		return nil, errs.NewFormatError(off, "negative payload length %d", h.DataLength)
	}

	name, err := utf16LE.NewDecoder().Bytes(buf[nameOffset : nameOffset+nameBytes])
	if err != nil {
		return nil, errs.NewFormatError(off+nameOffset, "section name").WithCause(err)
	}
	h.Name = strings.TrimRight(string(name), "\x00")
	return h, nil
}

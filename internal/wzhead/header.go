// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package wzhead parses the fixed archive header.
package wzhead

import (
	"errors"
	"fmt"

	"github.com/go-wz/wzfs/internal/wzprim"
)

// ErrHeaderOverrun is returned when the header's declared start offset
// lies before the current read position — there is no room left for
// the copyright string.
var ErrHeaderOverrun = errors.New("wzhead: start offset precedes current position")

// Header is the fixed archive preamble.
type Header struct {
	Magic     [4]byte
	Size      uint64 // archive size excluding header
	Start     uint32 // offset of the encoded version word; the root directory begins at Start+2
	Copyright wzprim.RawString
}

// Free releases the copyright buffer.
func (h *Header) Free() {
	h.Copyright.Free()
	h.Copyright = wzprim.RawString{}
}

// Read parses the header at the source's current cursor (expected to
// be offset 0). The magic bytes are accepted as-is; this reader only
// checks the header's internal structure, not a fixed magic value.
func Read(src wzprim.ByteSource) (Header, error) {
	var h Header

	var magic [4]byte
	if _, err := src.Read(magic[:]); err != nil {
		return Header{}, err
	}
	h.Magic = magic

	size, err := wzprim.ReadLE64(src)
	if err != nil {
		return Header{}, err
	}
	h.Size = size

	start, err := wzprim.ReadLE32(src)
	if err != nil {
		return Header{}, err
	}
	h.Start = start

	pos := uint32(src.Pos())
	if pos > start {
		return Header{}, fmt.Errorf("%w: pos=%d start=%d", ErrHeaderOverrun, pos, start)
	}

	copyright, err := wzprim.ReadRawString(src, start-pos)
	if err != nil {
		return Header{}, err
	}
	h.Copyright = copyright

	return h, nil
}

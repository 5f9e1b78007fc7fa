// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package wzstring implements the wz per-string XOR decode: a mask
// schedule XORed together with an AES-OFB keystream pad.
package wzstring

import (
	"encoding/binary"
	"errors"

	"github.com/go-wz/wzfs/internal/wzprim"
)

// Encoding distinguishes the two on-disk string shapes.
type Encoding uint8

const (
	ASCII Encoding = iota
	UTF16LE
)

// ErrPadTooShort is returned when the keystream pad is shorter than the
// string being decoded.
var ErrPadTooShort = errors.New("wzstring: keystream shorter than string")

// Encoded is a decoded string: an owned byte buffer plus the encoding
// it was decoded under.
type Encoded struct {
	Bytes []byte
	Len   uint32
	Enc   Encoding
}

// Free releases the buffer. Must be called exactly once.
func (e *Encoded) Free() {
	wzprim.FreeBytes(e.Bytes)
	*e = Encoded{}
}

// String renders the decoded bytes as a Go string, for ASCII content
// verbatim and for UTF16LE content assuming it only carries values in
// the Basic Multilingual Plane representable as single UTF-16 code
// units (wz node names and property keys never use surrogate pairs).
func (e *Encoded) String() string {
	if e.Enc == ASCII {
		return string(e.Bytes)
	}
	units := make([]uint16, e.Len/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(e.Bytes[i*2:])
	}
	runes := make([]rune, len(units))
	for i, u := range units {
		runes[i] = rune(u)
	}
	return string(runes)
}

// DecodeASCII decodes a single-byte string in place: decoded[i] =
// enc[i] XOR (0xAA+i) XOR pad[i]. If pad is nil, decoding is a no-op.
func DecodeASCII(buf []byte, pad []byte) error {
	if pad == nil {
		return nil // no keystream: ciphertext returned verbatim
	}
	if len(pad) < len(buf) {
		return ErrPadTooShort
	}
	mask := byte(0xAA)
	for i := range buf {
		buf[i] = buf[i] ^ mask ^ pad[i]
		mask++
	}
	return nil
}

// DecodeUTF16LE decodes a double-byte string in place over 16-bit code
// units: decoded[i] = enc16[i] XOR (0xAAAA+i) XOR pad16[i], where pad is
// consumed two bytes at a time.
func DecodeUTF16LE(buf []byte, pad []byte) error {
	if pad == nil {
		return nil // no keystream: ciphertext returned verbatim
	}
	if len(pad) < len(buf) {
		return ErrPadTooShort
	}
	mask := uint16(0xAAAA)
	for i := 0; i+1 < len(buf); i += 2 {
		u := binary.LittleEndian.Uint16(buf[i:])
		u ^= mask
		u ^= binary.LittleEndian.Uint16(pad[i:])
		binary.LittleEndian.PutUint16(buf[i:], u)
		mask++
	}
	return nil
}

// Decode decodes buf in place under enc using pad, which may be nil to
// mean "no keystream, return the ciphertext verbatim".
func Decode(buf []byte, enc Encoding, pad []byte) error {
	if enc == ASCII {
		return DecodeASCII(buf, pad)
	}
	return DecodeUTF16LE(buf, pad)
}

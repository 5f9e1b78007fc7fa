// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package wzprim

// RawString is an owned byte buffer with no encoding metadata, as read
// straight off the wire.
type RawString struct {
	Bytes []byte
	Len   uint32
}

// Free releases the buffer and must be called exactly once, whether or
// not the string ended up being used.
func (s *RawString) Free() {
	FreeBytes(s.Bytes)
	*s = RawString{}
}

// ReadByte reads a single byte from src at its current cursor.
func ReadByte(src ByteSource) (byte, error) {
	var b [1]byte
	if _, err := src.Read(b[:]); err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadLE16 reads a little-endian uint16.
func ReadLE16(src ByteSource) (uint16, error) {
	var b [2]byte
	if _, err := src.Read(b[:]); err != nil {
		return 0, err
	}
	return uint16(b[0]) | uint16(b[1])<<8, nil
}

// ReadLE32 reads a little-endian uint32.
func ReadLE32(src ByteSource) (uint32, error) {
	var b [4]byte
	if _, err := src.Read(b[:]); err != nil {
		return 0, err
	}
	return uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24, nil
}

// ReadLE64 reads a little-endian uint64.
func ReadLE64(src ByteSource) (uint64, error) {
	var b [8]byte
	if _, err := src.Read(b[:]); err != nil {
		return 0, err
	}
	var v uint64
	for i := 7; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	return v, nil
}

// ReadCompactInt32 reads the compact int32 encoding: a signed lead
// byte, sign-extended, with 0x80 escaping to a trailing little-endian
// uint32.
func ReadCompactInt32(src ByteSource) (uint32, error) {
	b, err := ReadByte(src)
	if err != nil {
		return 0, err
	}
	if b == 0x80 {
		return ReadLE32(src)
	}
	return uint32(int32(int8(b))), nil
}

// ReadCompactInt64 reads the compact int64 encoding: a signed lead byte,
// sign-extended to 64 bits, with 0x80 escaping to a trailing
// little-endian uint64.
func ReadCompactInt64(src ByteSource) (uint64, error) {
	b, err := ReadByte(src)
	if err != nil {
		return 0, err
	}
	if b == 0x80 {
		return ReadLE64(src)
	}
	return uint64(int64(int8(b))), nil
}

// ReadRawString reads n raw bytes, allocating a tracked buffer. On
// failure the returned RawString is zero and no allocation is retained.
func ReadRawString(src ByteSource, n uint32) (RawString, error) {
	buf := AllocBytes(int(n))
	if _, err := src.Read(buf); err != nil {
		FreeBytes(buf)
		return RawString{}, err
	}
	return RawString{Bytes: buf, Len: n}, nil
}

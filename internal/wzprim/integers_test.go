// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package wzprim

import (
	"bytes"
	"testing"
)

func newSource(b []byte) *FileSource {
	return NewFileSource(bytes.NewReader(b), int64(len(b)))
}

func TestReadLE16(t *testing.T) {
	src := newSource([]byte("\x01\x23"))
	got, err := ReadLE16(src)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x2301 {
		t.Errorf("ReadLE16 = %#x, want 0x2301", got)
	}
}

func TestReadCompactInt32(t *testing.T) {
	src := newSource([]byte("\x01\xfe\x80\x23\x45\x67\x89"))

	want := []uint32{1, 0xFFFFFFFE, 0x89674523}
	for i, w := range want {
		got, err := ReadCompactInt32(src)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if got != w {
			t.Errorf("read %d = %#x, want %#x", i, got, w)
		}
	}

	before := MemUsed()
	if _, err := ReadCompactInt32(src); err == nil {
		t.Fatal("expected EOF-style failure on exhausted source")
	}
	if MemUsed() != before {
		t.Errorf("failed read leaked memory: before=%d after=%d", before, MemUsed())
	}
}

func TestReadCompactInt32Negative(t *testing.T) {
	// -5 encodes directly as the sign-extended lead byte.
	src := newSource([]byte{0xfb})
	got, err := ReadCompactInt32(src)
	if err != nil {
		t.Fatal(err)
	}
	if int32(got) != -5 {
		t.Errorf("got %d, want -5", int32(got))
	}
}

func TestReadRawString(t *testing.T) {
	src := newSource([]byte("hello"))
	s, err := ReadRawString(src, 5)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Free()
	if string(s.Bytes) != "hello" {
		t.Errorf("got %q", s.Bytes)
	}
	if s.Len != 5 {
		t.Errorf("Len = %d, want 5", s.Len)
	}
}

func TestReadRawStringTruncated(t *testing.T) {
	src := newSource([]byte("hi"))
	before := MemUsed()
	if _, err := ReadRawString(src, 10); err == nil {
		t.Fatal("expected truncated read to fail")
	}
	if MemUsed() != before {
		t.Errorf("failed read leaked memory: before=%d after=%d", before, MemUsed())
	}
}

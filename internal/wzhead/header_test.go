// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package wzhead

import (
	"bytes"
	"testing"

	"github.com/go-wz/wzfs/internal/wzprim"
)

func newSource(b []byte) *wzprim.FileSource {
	return wzprim.NewFileSource(bytes.NewReader(b), int64(len(b)))
}

func TestRead(t *testing.T) {
	raw := []byte("\x01\x23\x45\x67" + // magic
		"\x1f\x00\x00\x00\x00\x00\x00\x00" + // size = 0x1F
		"\x12\x00\x00\x00" + // start = 0x12
		"ab") // copyright, length = start-16 = 2

	src := newSource(raw)
	h, err := Read(src)
	if err != nil {
		t.Fatal(err)
	}
	defer h.Free()

	if h.Magic != [4]byte{0x01, 0x23, 0x45, 0x67} {
		t.Errorf("magic = %x", h.Magic)
	}
	if h.Size != 0x1F {
		t.Errorf("size = %#x, want 0x1F", h.Size)
	}
	if h.Start != 0x12 {
		t.Errorf("start = %#x, want 0x12", h.Start)
	}
	if string(h.Copyright.Bytes) != "ab" {
		t.Errorf("copyright = %q, want %q", h.Copyright.Bytes, "ab")
	}
}

func TestReadOverrun(t *testing.T) {
	// start (4) lands before the current position (16) once magic, size
	// and start have been consumed, so the copyright length would be
	// negative.
	raw := []byte("\x01\x23\x45\x67" +
		"\x00\x00\x00\x00\x00\x00\x00\x00" +
		"\x04\x00\x00\x00")
	src := newSource(raw)
	if _, err := Read(src); err == nil {
		t.Fatal("expected ErrHeaderOverrun")
	}
}

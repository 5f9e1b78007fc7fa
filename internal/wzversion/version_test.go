// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package wzversion

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-wz/wzfs/internal/wzprim"
)

func newSource(b []byte) *wzprim.FileSource {
	return wzprim.NewFileSource(bytes.NewReader(b), int64(len(b)))
}

func TestEncodeMatchesVector(t *testing.T) {
	enc8, hash := encode(0x0123)
	if enc8 != 0x5e {
		t.Errorf("enc8 = %#x, want 0x5e", enc8)
	}
	if hash != 0xd372 {
		t.Errorf("hash = %#x, want 0xd372", hash)
	}
}

func TestDeduceCandidatesEmptyDirectoryAlwaysConfident(t *testing.T) {
	// encVer=0x005e, then a zero-length root directory: with no
	// children to range-check, every candidate whose re-encoding
	// matches the low byte validates trivially with full confidence.
	raw := []byte{0x5e, 0x00, 0x00}
	src := newSource(raw)

	hits, err := DeduceCandidates(src, 0, uint64(len(raw)), 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(hits) == 0 {
		t.Fatal("expected at least one candidate")
	}
	for _, h := range hits {
		if h.Enc != 0x005e {
			t.Errorf("Enc = %#x, want 0x005e", h.Enc)
		}
		if h.Confidence != 1 {
			t.Errorf("Confidence = %v, want 1", h.Confidence)
		}
		gotEnc8, gotHash := encode(h.Dec)
		if gotEnc8 != byte(h.Enc) || gotHash != h.Hash {
			t.Errorf("candidate %+v does not re-encode consistently", h)
		}
	}
}

func TestDeduceExhausted(t *testing.T) {
	// The root directory is malformed for every candidate hash, so no
	// version ever validates regardless of what the checksum matches.
	raw := []byte{0x00, 0x00, 0x01, 0x09}
	src := newSource(raw)

	_, err := Deduce(src, 0, uint64(len(raw)), 2)
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("got %v, want ErrExhausted", err)
	}
}

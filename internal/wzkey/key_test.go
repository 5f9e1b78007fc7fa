// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package wzkey

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-wz/wzfs/internal/wzcrypto"
	"github.com/go-wz/wzfs/internal/wzprim"
)

func newSource(b []byte) *wzprim.FileSource {
	return wzprim.NewFileSource(bytes.NewReader(b), int64(len(b)))
}

func TestDeduceEmptyDirectoryPicksFirstRegion(t *testing.T) {
	// An empty root directory has no names to disqualify any region, so
	// the first candidate in AllRegions order wins.
	src := newSource([]byte{0x00})

	ks, err := Deduce(src, 0, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if ks.Region != wzcrypto.RegionGMS {
		t.Errorf("Region = %v, want %v", ks.Region, wzcrypto.RegionGMS)
	}
}

func TestDeduceExhausted(t *testing.T) {
	// A malformed directory fails to parse under every region's pad.
	src := newSource([]byte{0x01, 0x09})

	_, err := Deduce(src, 0, 0, 0)
	if !errors.Is(err, ErrExhausted) {
		t.Errorf("got %v, want ErrExhausted", err)
	}
}

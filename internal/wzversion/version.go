// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package wzversion brute-forces the encoded version word stored in a
// wz archive against its checksum to recover the decoding hash, then
// validates a candidate by trial-parsing the root directory.
package wzversion

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/go-wz/wzfs/internal/wzaddr"
	"github.com/go-wz/wzfs/internal/wzprim"
	"github.com/go-wz/wzfs/internal/wznode"
)

// ErrExhausted is returned when no decoded version in 1..=32767
// validates against the file.
var ErrExhausted = errors.New("wzversion: version deduction exhausted")

// Version is the outcome of a successful deduction.
type Version struct {
	Enc  uint16
	Dec  uint16
	Hash uint32

	// Confidence is the fraction of root children whose check field
	// looks like a plausible small checksum rather than noise from a
	// wrong hash. It only matters when more than one candidate
	// validates under DeduceCandidates; the single-candidate Deduce
	// ignores it.
	Confidence float64
}

// encode folds the decimal ASCII digits of v with the format's rolling
// hash and reduces it to the encoded byte the archive stores. The
// pre-reduction 32-bit value becomes the address deobfuscation hash
// for this candidate.
func encode(v uint16) (enc8 byte, hash uint32) {
	var h uint32
	for _, c := range []byte(strconv.Itoa(int(v))) {
		h = (h << 5) + uint32(c) + 1
	}
	b0 := byte(h)
	b1 := byte(h >> 8)
	b2 := byte(h >> 16)
	b3 := byte(h >> 24)
	enc8 = 0xFF ^ b0 ^ b1 ^ b2 ^ b3
	return enc8, h
}

// Deduce reads the encoded version word at headStart and searches
// 1..=32767 for a decoded version whose re-encoding matches it and
// whose hash makes the root directory's addresses all land in-file.
// rootDirAt is the file offset at which the root directory's
// length-prefixed node vector begins (headStart+2, past the enc_ver
// word).
func Deduce(src wzprim.ByteSource, headStart uint32, fileSize uint64, rootDirAt int64) (Version, error) {
	versions, err := DeduceCandidates(src, headStart, fileSize, rootDirAt, 1)
	if err != nil {
		return Version{}, err
	}
	return versions[0], nil
}

// DeduceCandidates is Deduce generalised to keep scanning past the
// first validating candidate, up to max hits, so callers can rank
// collisions by Confidence. max <= 0 is treated as 1.
func DeduceCandidates(src wzprim.ByteSource, headStart uint32, fileSize uint64, rootDirAt int64, max int) ([]Version, error) {
	if max <= 0 {
		max = 1
	}

	if _, err := src.Seek(int64(headStart), 0); err != nil {
		return nil, err
	}
	encVer, err := wzprim.ReadLE16(src)
	if err != nil {
		return nil, err
	}
	lowByte := byte(encVer)

	var hits []Version
	for v := uint16(1); v <= 32767 && len(hits) < max; v++ {
		enc8, hash := encode(v)
		if enc8 != lowByte {
			continue
		}

		if _, err := src.Seek(rootDirAt, 0); err != nil {
			return nil, err
		}
		ok, confidence, err := trialParse(src, headStart, fileSize, hash)
		if err != nil {
			continue
		}
		if ok {
			hits = append(hits, Version{Enc: encVer, Dec: v, Hash: hash, Confidence: confidence})
		}
	}

	if len(hits) == 0 {
		return nil, fmt.Errorf("%w: no candidate in 1..32767 validated", ErrExhausted)
	}
	return hits, nil
}

// trialParse reads a root directory under the candidate hash (without
// string decoding, since the key is not yet known), reports whether
// every child's deobfuscated address lands inside the file, and scores
// how plausible the check fields look as a tiebreaker confidence.
func trialParse(src wzprim.ByteSource, headStart uint32, fileSize uint64, hash uint32) (ok bool, confidence float64, err error) {
	tree, err := wznode.ReadDirectory(src, wznode.ReadOptions{
		HeadStart: headStart,
		Hash:      hash,
		Pad:       nil,
	})
	if err != nil {
		return false, 0, err
	}
	defer tree.Free()

	var total, plausible int
	for _, idx := range tree.Children(tree.Root()) {
		n := tree.At(idx)
		if n.Kind != wznode.KindDir && n.Kind != wznode.KindFile {
			continue
		}
		real := wzaddr.Deobfuscate(n.Addr, headStart, hash)
		if !wzaddr.InRange(real, headStart, fileSize) {
			return false, 0, nil
		}
		total++
		if n.Check < 0x10000 {
			plausible++
		}
	}
	if total == 0 {
		return true, 1, nil
	}
	return true, float64(plausible) / float64(total), nil
}

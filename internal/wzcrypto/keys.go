// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package wzcrypto derives the per-archive XOR keystream used to decrypt
// wz string-table entries. The only cryptographic primitive involved is
// AES-256 in OFB mode, encrypting an all-zero plaintext; the result is a
// one-time pad, not a ciphertext, so there is no decryption step here at
// all — just keystream generation.
package wzcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// Region names the AES-256 key variant a given archive was packaged
// with. wz archives from different regional game releases use
// different fixed keys; the key deducer (internal/wzkey) tries each in
// turn.
type Region int

const (
	RegionGMS Region = iota // western ("Global") release
	RegionMSEA
	RegionGeneric // zero key, used by some private servers and test fixtures
	numRegions
)

func (r Region) String() string {
	switch r {
	case RegionGMS:
		return "GMS"
	case RegionMSEA:
		return "MSEA"
	case RegionGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// ivSeed is repeated four times to build the 16-byte AES IV.
var ivSeed = [4]byte{0x4d, 0x23, 0xc7, 0x2b}

// regionKeys holds the 32-byte AES-256 key for each region. RegionGMS
// below is the well-known western-release key (each byte of the 32 is
// itself little-endian-packed, an artifact of how the format was
// keyed rather than anything this reader needs to interpret).
var regionKeys = [numRegions][32]byte{
	RegionGMS: {
		0x13, 0x00, 0x00, 0x00, 0x08, 0x00, 0x00, 0x00,
		0x06, 0x00, 0x00, 0x00, 0xb4, 0x00, 0x00, 0x00,
		0x1b, 0x00, 0x00, 0x00, 0x0f, 0x00, 0x00, 0x00,
		0x33, 0x00, 0x00, 0x00, 0x52, 0x00, 0x00, 0x00,
	},
	RegionMSEA: {
		0xb9, 0x7d, 0x63, 0x0e, 0x9a, 0x0e, 0xa8, 0x00,
		0xc1, 0x0c, 0xa5, 0x01, 0xc6, 0x66, 0xad, 0x0a,
		0x46, 0xd1, 0xda, 0x01, 0x7f, 0x04, 0xf2, 0x0b,
		0x5c, 0xcb, 0xac, 0x0c, 0x78, 0x0e, 0x70, 0x0e,
	},
	RegionGeneric: {}, // all zero
}

// MaxStringLen is the longest string any archive can hold; it is the
// keystream length bootstrapped once per key.
const MaxStringLen = 0x10000

// Keystream is the reusable XOR pad derived from one region's AES key.
// One pad is computed per candidate region and reused for every string
// in the archive.
type Keystream struct {
	Region Region
	Pad    []byte
}

// Derive computes the OFB keystream for region r: AES256-OFB(key, iv,
// zeros, MaxStringLen).
func Derive(r Region) (*Keystream, error) {
	if r < 0 || r >= numRegions {
		return nil, fmt.Errorf("wzcrypto: unknown region %d", r)
	}

	key := regionKeys[r]
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("wzcrypto: crypto failure: %w", err)
	}

	var iv [16]byte
	for i := range iv {
		iv[i] = ivSeed[i%4]
	}

	pad := make([]byte, MaxStringLen)
	stream := cipher.NewOFB(block, iv[:])
	stream.XORKeyStream(pad, pad) // zero plaintext in, keystream out

	return &Keystream{Region: r, Pad: pad}, nil
}

// AllRegions returns every candidate region in the fixed order the key
// deducer tries them.
func AllRegions() []Region {
	out := make([]Region, numRegions)
	for i := range out {
		out[i] = Region(i)
	}
	return out
}

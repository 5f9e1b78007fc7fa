// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package payloadsniff classifies the raw bytes backing a wz file-node
// payload without decoding it: callers that need the inner bytes
// decompressed remain out of this module's scope, but knowing whether
// a payload looks like zlib-compressed data is useful for diagnostics
// and for cmd/dumpwz's listing output.
package payloadsniff

import (
	"bytes"
	"errors"
	"io"

	"github.com/klauspost/compress/zlib"
)

// Kind is a coarse classification of a payload's byte content.
type Kind int

const (
	KindUnknown Kind = iota
	KindZlib
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindZlib:
		return "zlib"
	case KindEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Sniff inspects the leading bytes of buf and reports whether it looks
// like a valid zlib stream. It only reads the header and, to rule out
// a false-positive magic byte, attempts to pull one byte out of the
// decompressed stream.
func Sniff(buf []byte) Kind {
	if len(buf) == 0 {
		return KindEmpty
	}
	r, err := zlib.NewReader(bytes.NewReader(buf))
	if err != nil {
		return KindUnknown
	}
	defer r.Close()

	var probe [1]byte
	if _, err := r.Read(probe[:]); err != nil && !errors.Is(err, io.EOF) {
		return KindUnknown
	}
	return KindZlib
}

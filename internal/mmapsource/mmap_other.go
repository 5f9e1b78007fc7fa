//go:build !unix

// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package mmapsource

import (
	"errors"
	"os"
)

// Source is a stand-in on platforms without POSIX mmap; Open always
// fails so callers fall back to the default file-backed ByteSource.
type Source struct{}

var errUnsupported = errors.New("mmapsource: not supported on this platform")

func Open(f *os.File) (*Source, error) { return nil, errUnsupported }
func (s *Source) Close() error         { return nil }
func (s *Source) Pos() int64           { return 0 }
func (s *Source) Size() int64          { return 0 }
func (s *Source) ReadAt(p []byte, off int64) (int, error) { return 0, errUnsupported }
func (s *Source) Read(p []byte) (int, error)              { return 0, errUnsupported }
func (s *Source) Seek(offset int64, whence int) (int64, error) {
	return 0, errUnsupported
}

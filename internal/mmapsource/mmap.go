//go:build unix

// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package mmapsource memory-maps a whole archive file and exposes it as
// a wzprim.ByteSource, for large archives where letting the OS page
// cache manage the working set beats explicit pread calls.
package mmapsource

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"

	"github.com/go-wz/wzfs/internal/wzprim"
)

// Source is an mmap-backed ByteSource. It must be closed to release the
// mapping.
type Source struct {
	data []byte
	pos  int64
}

// Open mmaps the whole of f read-only and returns a Source over it. f
// may be closed by the caller immediately after Open returns; the
// mapping keeps the underlying pages alive independently.
func Open(f *os.File) (*Source, error) {
	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size == 0 {
		return &Source{data: nil}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, err
	}
	return &Source{data: data}, nil
}

// Close unmaps the file. The Source must not be used afterward.
func (s *Source) Close() error {
	if s.data == nil {
		return nil
	}
	err := unix.Munmap(s.data)
	s.data = nil
	return err
}

func (s *Source) Pos() int64  { return s.pos }
func (s *Source) Size() int64 { return int64(len(s.data)) }

func (s *Source) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > int64(len(s.data)) {
		return 0, wzprim.ErrTruncated
	}
	n := copy(p, s.data[off:off+int64(len(p))])
	return n, nil
}

func (s *Source) Read(p []byte) (int, error) {
	n, err := s.ReadAt(p, s.pos)
	if err != nil {
		return 0, err
	}
	s.pos += int64(n)
	return n, nil
}

func (s *Source) Seek(offset int64, whence int) (int64, error) {
	var newpos int64
	switch whence {
	case 0:
		newpos = offset
	case 1:
		newpos = s.pos + offset
	case 2:
		newpos = int64(len(s.data)) + offset
	default:
		return s.pos, errors.New("mmapsource: invalid whence")
	}
	if newpos < 0 || newpos > int64(len(s.data)) {
		return s.pos, errors.New("mmapsource: seek out of range")
	}
	s.pos = newpos
	return s.pos, nil
}

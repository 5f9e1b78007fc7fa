// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package archivecache persists the outcome of the expensive
// version/key deduction loop across process restarts, keyed by a
// fingerprint of the archive's header bytes and size. Re-opening the
// same archive then costs one pebble lookup instead of up to 32,767
// trial directory parses.
package archivecache

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/pebble/v2"
)

// Entry is the deduced state worth remembering for a given archive.
type Entry struct {
	VersionHash uint32
	DecodedVer  uint16
	Region      int
}

// Cache wraps a pebble instance on disk. A nil *Cache is valid and
// behaves as an always-miss cache, so callers can make caching
// optional without branching on every call site.
type Cache struct {
	db *pebble.DB
}

// Open opens (creating if necessary) a pebble store at dir.
func Open(dir string) (*Cache, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("archivecache: open %s: %w", dir, err)
	}
	return &Cache{db: db}, nil
}

// Close releases the underlying pebble store. Safe to call on a nil
// *Cache.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Fingerprint hashes the archive's header bytes and declared size into
// a stable cache key; two files with identical headers and sizes are
// assumed to be the same archive for caching purposes.
func Fingerprint(headerBytes []byte, size uint64) uint64 {
	h := xxhash.New()
	h.Write(headerBytes)
	var sizeBuf [8]byte
	binary.LittleEndian.PutUint64(sizeBuf[:], size)
	h.Write(sizeBuf[:])
	return h.Sum64()
}

var errMiss = errors.New("archivecache: miss")

// Lookup returns the cached Entry for fp, if any.
func (c *Cache) Lookup(fp uint64) (Entry, error) {
	if c == nil || c.db == nil {
		return Entry{}, errMiss
	}
	key := encodeKey(fp)
	val, closer, err := c.db.Get(key)
	if err != nil {
		return Entry{}, fmt.Errorf("%w: %v", errMiss, err)
	}
	defer closer.Close()
	if len(val) != 7 {
		return Entry{}, fmt.Errorf("%w: corrupt record", errMiss)
	}
	return Entry{
		VersionHash: binary.LittleEndian.Uint32(val[0:4]),
		DecodedVer:  binary.LittleEndian.Uint16(val[4:6]),
		Region:      int(val[6]),
	}, nil
}

// Store persists e under fp.
func (c *Cache) Store(fp uint64, e Entry) error {
	if c == nil || c.db == nil {
		return nil
	}
	var val [7]byte
	binary.LittleEndian.PutUint32(val[0:4], e.VersionHash)
	binary.LittleEndian.PutUint16(val[4:6], e.DecodedVer)
	val[6] = byte(e.Region)
	return c.db.Set(encodeKey(fp), val[:], pebble.Sync)
}

func encodeKey(fp uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], fp) // big-endian for useful key ordering
	return b[:]
}

// IsMiss reports whether err denotes a cache miss rather than a real
// failure talking to the store.
func IsMiss(err error) bool {
	return errors.Is(err, errMiss)
}

// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package subtreecache keeps a bounded number of already-materialised
// directory subtrees in memory, admission-scored by TinyLFU, so that
// repeatedly listing the same hot directories does not re-run the
// node reader and string decode on every call.
package subtreecache

import (
	"hash/maphash"

	"github.com/dgryski/go-tinylfu"
)

// Key identifies a subtree by the archive it belongs to and the
// directory node's address within that archive.
type Key struct {
	Archive uintptr
	Addr    uint32
}

var seed = maphash.MakeSeed()

func hasher(k Key) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	var buf [12]byte
	buf[0] = byte(k.Archive)
	buf[1] = byte(k.Archive >> 8)
	buf[2] = byte(k.Archive >> 16)
	buf[3] = byte(k.Archive >> 24)
	buf[4] = byte(k.Addr)
	buf[5] = byte(k.Addr >> 8)
	buf[6] = byte(k.Addr >> 16)
	buf[7] = byte(k.Addr >> 24)
	h.Write(buf[:8])
	return h.Sum64()
}

// Cache is a fixed-capacity, concurrency-unsafe subtree cache. Callers
// that share a Cache across goroutines must hold their own lock;
// archives in this module are single-threaded per handle, so no
// internal lock is taken here.
type Cache[T any] struct {
	t *tinylfu.T[Key, T]
}

// New creates a cache admitting up to capacity entries.
func New[T any](capacity int) *Cache[T] {
	return &Cache[T]{
		t: tinylfu.New[Key, T](capacity, capacity*10, hasher),
	}
}

// Get returns the cached subtree for key, if present.
func (c *Cache[T]) Get(key Key) (T, bool) {
	return c.t.Get(key)
}

// Add admits value under key, possibly evicting a colder entry.
func (c *Cache[T]) Add(key Key, value T) {
	c.t.Add(key, value)
}

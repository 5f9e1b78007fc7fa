// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package wz

import (
	"context"

	"github.com/go-wz/wzfs/internal/wzcrypto"
)

type openConfig struct {
	ctx           context.Context
	forceRegion   *wzcrypto.Region
	cacheDir      string
	subtreeCap    int
	useMmap       bool
	maxCandidates int
}

func defaultConfig() openConfig {
	return openConfig{
		ctx:           context.Background(),
		subtreeCap:    256,
		maxCandidates: 1,
	}
}

// OpenOption configures Open. The zero-value behaviour matches the
// source exactly: brute-force every version candidate until the
// first one validates, try every region key in order, and keep a
// small in-memory subtree cache with no on-disk cache.
type OpenOption func(*openConfig)

// WithContext stores ctx in the open configuration. Open does not
// consult it: cancelling ctx does not abort the version-deduction
// brute force, and Open never returns ctx.Err().
func WithContext(ctx context.Context) OpenOption {
	return func(c *openConfig) { c.ctx = ctx }
}

// WithRegion skips key deduction and binds the archive to a
// caller-known region directly.
func WithRegion(r KeyRegion) OpenOption {
	return func(c *openConfig) {
		region := wzcrypto.Region(r)
		c.forceRegion = &region
	}
}

// WithDiskCache points Open at a directory used to persist deduced
// (version, hash, region) triples across process restarts (see
// internal/archivecache). An empty cacheDir (the default) disables
// the on-disk cache; deduction always runs in full.
func WithDiskCache(dir string) OpenOption {
	return func(c *openConfig) { c.cacheDir = dir }
}

// WithSubtreeCacheSize bounds the number of materialised directory
// subtrees kept in memory for this handle (see internal/subtreecache).
func WithSubtreeCacheSize(n int) OpenOption {
	return func(c *openConfig) { c.subtreeCap = n }
}

// WithMmap memory-maps the archive file instead of issuing ReadAt
// syscalls (see internal/mmapsource). Only effective on unix.
func WithMmap() OpenOption {
	return func(c *openConfig) { c.useMmap = true }
}

// WithCandidateScan continues the version-deduction brute force past
// the first validating candidate, collecting up to n candidates so
// their Confidence scores can be compared when more than one decoded
// version validates against the file (a rare but possible collision).
func WithCandidateScan(n int) OpenOption {
	return func(c *openConfig) {
		if n > 0 {
			c.maxCandidates = n
		}
	}
}

// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package wz is the public facade over a wz archive: Open parses the
// header, deduces the version and region key, and materialises the
// root directory; Archive.Root then gives lazy access to the rest of
// the tree.
package wz

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/go-wz/wzfs/internal/archivecache"
	"github.com/go-wz/wzfs/internal/mmapsource"
	"github.com/go-wz/wzfs/internal/subtreecache"
	"github.com/go-wz/wzfs/internal/wzaddr"
	"github.com/go-wz/wzfs/internal/wzcrypto"
	"github.com/go-wz/wzfs/internal/wzhead"
	"github.com/go-wz/wzfs/internal/wzkey"
	"github.com/go-wz/wzfs/internal/wznode"
	"github.com/go-wz/wzfs/internal/wzprim"
	"github.com/go-wz/wzfs/internal/wzversion"
)

// Archive is an open wz file. It is not safe for concurrent use:
// callers needing concurrent reads should open separate handles, or
// serialize through their own lock.
type Archive struct {
	mu sync.Mutex

	file   *os.File
	mmap   *mmapsource.Source
	src    wzprim.ByteSource
	closer func() error

	header    wzhead.Header
	headStart uint32
	fileSize  uint64

	version   wzversion.Version
	keystream *wzcrypto.Keystream
	region    KeyRegion

	diskCache *archivecache.Cache
	fp        uint64

	subtrees *subtreecache.Cache[*wznode.Tree]
	trees    []*wznode.Tree // every tree this handle has ever materialised, for Close

	rootTree *wznode.Tree
}

// Open parses path as a wz archive: reads the header, brute-forces the
// version hash, deduces the region key, and materialises the root
// directory. Failure at any step releases everything already acquired.
func Open(path string, opts ...OpenOption) (arc *Archive, err error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if err := wzcrypto.Acquire(); err != nil {
		return nil, fmt.Errorf("wz: %w", err)
	}
	defer func() {
		if err != nil {
			wzcrypto.Release()
		}
	}()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wz: open %s: %w", path, err)
	}
	defer func() {
		if err != nil {
			f.Close()
		}
	}()

	a := &Archive{
		file:     f,
		subtrees: subtreecache.New[*wznode.Tree](cfg.subtreeCap),
	}
	defer func() {
		if err != nil {
			a.freeTrees()
			if a.diskCache != nil {
				a.diskCache.Close()
			}
			if a.mmap != nil {
				a.mmap.Close()
			}
		}
	}()

	fi, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("wz: stat %s: %w", path, err)
	}
	a.fileSize = uint64(fi.Size())

	if cfg.useMmap {
		m, mErr := mmapsource.Open(f)
		if mErr != nil {
			slog.Warn("mmapOpenFailed", "path", path, "err", mErr)
		} else {
			a.mmap = m
			a.src = m
			a.closer = m.Close
		}
	}
	if a.src == nil {
		a.src = wzprim.NewFileSource(f, fi.Size())
		a.closer = func() error { return nil }
	}

	header, err := wzhead.Read(a.src)
	if err != nil {
		return nil, fmt.Errorf("wz: read header: %w", err)
	}
	a.header = header
	a.headStart = header.Start
	rootDirAt := int64(header.Start) + 2

	if err := a.deduceAndBuild(cfg, rootDirAt); err != nil {
		header.Free()
		return nil, err
	}

	return a, nil
}

func (a *Archive) deduceAndBuild(cfg openConfig, rootDirAt int64) error {
	headerBytes := a.fingerprintBytes()
	a.fp = archivecache.Fingerprint(headerBytes, a.fileSize)

	if cfg.cacheDir != "" {
		dc, err := archivecache.Open(cfg.cacheDir)
		if err != nil {
			slog.Warn("archiveCacheUnavailable", "dir", cfg.cacheDir, "err", err)
		} else {
			a.diskCache = dc
		}
	}

	if a.diskCache != nil {
		if entry, err := a.diskCache.Lookup(a.fp); err == nil {
			if err := a.adoptCachedEntry(entry, rootDirAt); err == nil {
				slog.Info("archiveCacheHit", "fingerprint", a.fp)
				return nil
			}
			slog.Warn("archiveCacheStale", "fingerprint", a.fp)
		}
	}

	versions, err := wzversion.DeduceCandidates(a.src, a.headStart, a.fileSize, rootDirAt, cfg.maxCandidates)
	if err != nil {
		return fmt.Errorf("wz: %w", err)
	}
	best := versions[0]
	for _, v := range versions[1:] {
		if v.Confidence > best.Confidence {
			best = v
		}
	}
	a.version = best

	if cfg.forceRegion != nil {
		ks, err := wzcrypto.Derive(*cfg.forceRegion)
		if err != nil {
			return fmt.Errorf("wz: %w", err)
		}
		a.keystream = ks
		a.region = KeyRegion(*cfg.forceRegion)
	} else {
		if _, err := a.src.Seek(rootDirAt, 0); err != nil {
			return fmt.Errorf("wz: %w", err)
		}
		ks, err := wzkey.Deduce(a.src, a.headStart, a.version.Hash, rootDirAt)
		if err != nil {
			return fmt.Errorf("wz: %w", err)
		}
		a.keystream = ks
		a.region = KeyRegion(ks.Region)
	}

	if _, err := a.src.Seek(rootDirAt, 0); err != nil {
		return fmt.Errorf("wz: %w", err)
	}
	tree, err := wznode.ReadDirectory(a.src, wznode.ReadOptions{
		HeadStart: a.headStart,
		Hash:      a.version.Hash,
		Pad:       a.keystream.Pad,
	})
	if err != nil {
		return fmt.Errorf("wz: read root directory: %w", err)
	}
	a.rootTree = tree
	a.trees = append(a.trees, tree)

	if a.diskCache != nil {
		_ = a.diskCache.Store(a.fp, archivecache.Entry{
			VersionHash: a.version.Hash,
			DecodedVer:  a.version.Dec,
			Region:      int(a.region),
		})
	}

	return nil
}

// adoptCachedEntry rebuilds the version/keystream state from a prior
// deduction without re-running either brute-force loop, then parses
// the root directory to confirm the cached entry still fits this file.
func (a *Archive) adoptCachedEntry(entry archivecache.Entry, rootDirAt int64) error {
	ks, err := wzcrypto.Derive(wzcrypto.Region(entry.Region))
	if err != nil {
		return err
	}

	if _, err := a.src.Seek(rootDirAt, 0); err != nil {
		return err
	}
	tree, err := wznode.ReadDirectory(a.src, wznode.ReadOptions{
		HeadStart: a.headStart,
		Hash:      entry.VersionHash,
		Pad:       ks.Pad,
	})
	if err != nil {
		return err
	}

	a.version = wzversion.Version{Dec: entry.DecodedVer, Hash: entry.VersionHash}
	a.keystream = ks
	a.region = KeyRegion(entry.Region)
	a.rootTree = tree
	a.trees = append(a.trees, tree)
	return nil
}

func (a *Archive) fingerprintBytes() []byte {
	buf := make([]byte, 0, 4+8+4+len(a.header.Copyright.Bytes))
	buf = append(buf, a.header.Magic[:]...)
	var sizeLE [8]byte
	for i := range sizeLE {
		sizeLE[i] = byte(a.header.Size >> (8 * i))
	}
	buf = append(buf, sizeLE[:]...)
	var startLE [4]byte
	for i := range startLE {
		startLE[i] = byte(a.headStart >> (8 * i))
	}
	buf = append(buf, startLE[:]...)
	buf = append(buf, a.header.Copyright.Bytes...)
	return buf
}

// Version reports the decoded version number bound to this handle.
func (a *Archive) Version() uint16 { return a.version.Dec }

// Region reports the AES key variant selected during open.
func (a *Archive) Region() KeyRegion { return a.region }

// Root returns the archive's root directory.
func (a *Archive) Root() *Directory {
	return &Directory{arc: a, tree: a.rootTree, idx: a.rootTree.Root()}
}

// Close releases every owned string and child directory recursively,
// the on-disk cache handle, and the underlying byte source.
func (a *Archive) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.freeTrees()

	var err error
	if a.diskCache != nil {
		err = a.diskCache.Close()
	}
	if a.header.Copyright.Bytes != nil {
		a.header.Free()
	}
	if a.closer != nil {
		if cErr := a.closer(); cErr != nil && err == nil {
			err = cErr
		}
	}
	if a.file != nil {
		if cErr := a.file.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}
	wzcrypto.Release()
	return err
}

func (a *Archive) freeTrees() {
	for _, t := range a.trees {
		t.Free()
	}
	a.trees = nil
	a.rootTree = nil
}

// peekPayload reads up to maxBytes at n's deobfuscated address without
// disturbing any cached tree state, for payloadsniff-style diagnostics.
// Payload body decoding itself remains out of scope.
func (a *Archive) peekPayload(n *wznode.Node, maxBytes int) ([]byte, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	real := wzaddr.Deobfuscate(n.Addr, a.headStart, a.version.Hash)
	if !wzaddr.InRange(real, a.headStart, a.fileSize) {
		return nil, fmt.Errorf("wz: %w: %#x", ErrOutOfRange, real)
	}

	remaining := a.fileSize - uint64(real)
	if uint64(maxBytes) > remaining {
		maxBytes = int(remaining)
	}
	buf := make([]byte, maxBytes)
	n2, err := a.src.ReadAt(buf, int64(real))
	if err != nil && n2 == 0 {
		return nil, fmt.Errorf("wz: %w", err)
	}
	return buf[:n2], nil
}

// resolveSubtree lazily parses the directory at node's deobfuscated
// address, reusing a cached tree when available.
func (a *Archive) resolveSubtree(n *wznode.Node) (*wznode.Tree, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	real := wzaddr.Deobfuscate(n.Addr, a.headStart, a.version.Hash)
	if !wzaddr.InRange(real, a.headStart, a.fileSize) {
		return nil, fmt.Errorf("wz: %w: %#x", ErrOutOfRange, real)
	}

	key := subtreecache.Key{Archive: uintptr(0), Addr: real} // single handle per archive instance, address alone disambiguates
	if t, ok := a.subtrees.Get(key); ok {
		return t, nil
	}

	if _, err := a.src.Seek(int64(real), 0); err != nil {
		return nil, fmt.Errorf("wz: %w", err)
	}
	tree, err := wznode.ReadDirectory(a.src, wznode.ReadOptions{
		HeadStart: a.headStart,
		Hash:      a.version.Hash,
		Pad:       a.keystream.Pad,
	})
	if err != nil {
		return nil, fmt.Errorf("wz: read subdirectory at %#x: %w", real, err)
	}

	a.trees = append(a.trees, tree)
	a.subtrees.Add(key, tree)
	return tree, nil
}

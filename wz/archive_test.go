// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package wz

import (
	"os"
	"path/filepath"
	"testing"
)

// buildMinimalArchive assembles a byte-exact, header-valid wz archive
// whose root directory is empty: magic(4) + size(8) + start(4) +
// copyright(2) + enc_ver(2) + dirlen(1). start=0x12 places enc_ver
// immediately after the copyright string, and its low byte 0x5e is the
// re-encoding of decoded version 0x0123 (hash 0xd372).
func buildMinimalArchive() []byte {
	return []byte{
		0x01, 0x23, 0x45, 0x67, // magic
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // size (unchecked)
		0x12, 0x00, 0x00, 0x00, // start = 0x12
		'a', 'b', // copyright
		0x5e, 0x00, // enc_ver
		0x00, // root directory: zero children
	}
}

func writeTempArchive(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.wz")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestOpenCloseEmptyRoot(t *testing.T) {
	path := writeTempArchive(t, buildMinimalArchive())

	arc, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}

	if arc.Version() != 0x0123 {
		t.Errorf("Version() = %#x, want 0x0123", arc.Version())
	}
	if arc.Region() != KeyRegionGMS {
		t.Errorf("Region() = %v, want %v", arc.Region(), KeyRegionGMS)
	}

	root := arc.Root()
	if nodes := root.Nodes(); len(nodes) != 0 {
		t.Errorf("got %d root nodes, want 0", len(nodes))
	}

	if err := arc.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestOpenWithForcedRegion(t *testing.T) {
	path := writeTempArchive(t, buildMinimalArchive())

	arc, err := Open(path, WithRegion(KeyRegionGeneric))
	if err != nil {
		t.Fatal(err)
	}
	defer arc.Close()

	if arc.Region() != KeyRegionGeneric {
		t.Errorf("Region() = %v, want %v", arc.Region(), KeyRegionGeneric)
	}
}

func TestOpenMissingFile(t *testing.T) {
	if _, err := Open(filepath.Join(t.TempDir(), "does-not-exist.wz")); err == nil {
		t.Fatal("expected an error opening a missing file")
	}
}

func TestOpenWithDiskCacheReopenHitsCache(t *testing.T) {
	path := writeTempArchive(t, buildMinimalArchive())
	cacheDir := t.TempDir()

	arc, err := Open(path, WithDiskCache(cacheDir))
	if err != nil {
		t.Fatal(err)
	}
	if err := arc.Close(); err != nil {
		t.Fatal(err)
	}

	// Re-opening should adopt the cached deduction rather than
	// re-running the brute-force loops.
	arc2, err := Open(path, WithDiskCache(cacheDir))
	if err != nil {
		t.Fatal(err)
	}
	defer arc2.Close()

	if arc2.Version() != 0x0123 {
		t.Errorf("Version() = %#x, want 0x0123", arc2.Version())
	}
}

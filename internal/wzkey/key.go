// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package wzkey selects which AES key variant an archive was packaged
// with, by checking which one makes the root directory's node names
// decode to printable ASCII.
package wzkey

import (
	"errors"
	"fmt"

	"github.com/go-wz/wzfs/internal/wzcrypto"
	"github.com/go-wz/wzfs/internal/wznode"
	"github.com/go-wz/wzfs/internal/wzprim"
)

// ErrExhausted is returned when no candidate key makes every root node
// name decode to printable ASCII.
var ErrExhausted = errors.New("wzkey: key deduction exhausted")

// Deduce tries every region's keystream in turn, re-parsing the root
// directory at rootDirAt under each, and returns the first whose node
// names all decode to bytes in [0x20, 0x7E].
func Deduce(src wzprim.ByteSource, headStart uint32, hash uint32, rootDirAt int64) (*wzcrypto.Keystream, error) {
	for _, region := range wzcrypto.AllRegions() {
		ks, err := wzcrypto.Derive(region)
		if err != nil {
			return nil, err
		}

		if _, err := src.Seek(rootDirAt, 0); err != nil {
			return nil, err
		}
		tree, err := wznode.ReadDirectory(src, wznode.ReadOptions{
			HeadStart: headStart,
			Hash:      hash,
			Pad:       ks.Pad,
		})
		if err != nil {
			continue
		}

		ok := allNamesPrintable(tree)
		tree.Free()
		if ok {
			return ks, nil
		}
	}

	return nil, fmt.Errorf("%w: no region key decoded names to printable ASCII", ErrExhausted)
}

func allNamesPrintable(tree *wznode.Tree) bool {
	for _, idx := range tree.Children(tree.Root()) {
		n := tree.At(idx)
		if n.Kind != wznode.KindDir && n.Kind != wznode.KindFile {
			continue
		}
		for _, b := range n.Name.Bytes {
			if b < 0x20 || b > 0x7E {
				return false
			}
		}
	}
	return true
}

// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package wz

import (
	"path"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/go-wz/wzfs/internal/wznode"
)

// Directory is a length-prefixed vector of nodes. The root directory
// is built eagerly by Open; every other Directory is materialised
// lazily the first time a caller descends into it via Node.Dir.
type Directory struct {
	arc  *Archive
	tree *wznode.Tree
	idx  int32
}

// Nodes returns the directory's children in on-disk order, skipping
// type-1 "none" filler nodes.
func (d *Directory) Nodes() []*Node {
	children := d.tree.Children(d.idx)
	out := make([]*Node, 0, len(children))
	for _, c := range children {
		k := d.tree.At(c).Kind
		if k != wznode.KindDir && k != wznode.KindFile {
			continue
		}
		out = append(out, &Node{arc: d.arc, tree: d.tree, idx: c})
	}
	return out
}

// Glob matches pattern (a doublestar pattern, e.g. "Character/*/*.img")
// against every path reachable from this directory, descending into
// subdirectories as needed, and returns the matching paths in
// directory-traversal order.
func (d *Directory) Glob(pattern string) ([]string, error) {
	if _, err := doublestar.Match(pattern, "a"); err != nil {
		return nil, err
	}

	var out []string
	var walk func(dir *Directory, prefix string) error
	walk = func(dir *Directory, prefix string) error {
		for _, n := range dir.Nodes() {
			p := path.Join(prefix, n.Name())
			ok, err := doublestar.Match(pattern, p)
			if err != nil {
				return err
			}
			if ok {
				out = append(out, p)
			}
			if n.IsDir() {
				sub, err := n.Dir()
				if err != nil {
					return err
				}
				if err := walk(sub, p); err != nil {
					return err
				}
			}
		}
		return nil
	}

	if err := walk(d, ""); err != nil {
		return nil, err
	}
	return out, nil
}

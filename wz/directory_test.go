// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package wz

import (
	"bytes"
	"testing"

	"github.com/go-wz/wzfs/internal/wznode"
	"github.com/go-wz/wzfs/internal/wzprim"
)

// buildFlatFileNode encodes one type-4 node with an ASCII name, small
// size/check values, a throwaway address, and VarNone. Pad is nil at
// the call site, so the name bytes round-trip unmodified.
func buildFlatFileNode(name string) []byte {
	var buf []byte
	buf = append(buf, 0x04)                   // tag: file
	buf = append(buf, byte(-int8(len(name)))) // ASCII name, negative length lead byte
	buf = append(buf, name...)
	buf = append(buf, byte(5))    // size
	buf = append(buf, byte(7))    // check
	buf = append(buf, 0, 0, 0, 0) // addr
	buf = append(buf, 0x00)       // var: none
	return buf
}

func buildFlatDirectory(names ...string) *wznode.Tree {
	var buf []byte
	buf = append(buf, byte(len(names)))
	for _, n := range names {
		buf = append(buf, buildFlatFileNode(n)...)
	}
	src := wzprim.NewFileSource(bytes.NewReader(buf), int64(len(buf)))
	tree, err := wznode.ReadDirectory(src, wznode.ReadOptions{})
	if err != nil {
		panic(err)
	}
	return tree
}

func TestDirectoryNodes(t *testing.T) {
	tree := buildFlatDirectory("apple.img", "banana.img")
	defer tree.Free()

	d := &Directory{tree: tree, idx: tree.Root()}
	nodes := d.Nodes()
	if len(nodes) != 2 {
		t.Fatalf("got %d nodes, want 2", len(nodes))
	}
	if nodes[0].Name() != "apple.img" || nodes[1].Name() != "banana.img" {
		t.Errorf("names = %q, %q", nodes[0].Name(), nodes[1].Name())
	}
}

func TestDirectoryGlob(t *testing.T) {
	tree := buildFlatDirectory("apple.img", "banana.img", "readme.txt")
	defer tree.Free()

	d := &Directory{tree: tree, idx: tree.Root()}

	got, err := d.Glob("*.img")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"apple.img", "banana.img"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestDirectoryGlobNoMatches(t *testing.T) {
	tree := buildFlatDirectory("apple.img")
	defer tree.Free()

	d := &Directory{tree: tree, idx: tree.Root()}
	got, err := d.Glob("*.xml")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want no matches", got)
	}
}

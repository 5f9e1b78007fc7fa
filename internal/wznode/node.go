// Copyright (c) Elliot Nunn
// Licensed under the MIT license

// Package wznode parses the wz node/directory stream into a flat,
// index-addressed tree. Children are owned by their parent directory's
// slice in the arena rather than by pointer, so the tree can be freed
// (or simply dropped) without walking a pointer graph, and
// cross-directory link nodes resolve to plain indices rather than
// pointers.
package wznode

import (
	"errors"
	"fmt"

	"github.com/go-wz/wzfs/internal/wzaddr"
	"github.com/go-wz/wzfs/internal/wzprim"
	"github.com/go-wz/wzfs/internal/wzstring"
)

// Kind is a node's tag byte, restricted to the four values the format
// defines.
type Kind uint8

const (
	KindNone Kind = 1
	KindLink Kind = 2
	KindDir  Kind = 3
	KindFile Kind = 4
)

// VarKind classifies a leaf's payload without decoding it; it mirrors
// the format's own wzvar discriminant.
type VarKind uint8

const (
	VarNone VarKind = iota
	VarInt16
	VarInt32
	VarInt64
	VarFloat32
	VarFloat64
	VarString
	VarObject
	VarUnknown
)

// ErrMalformedTag is returned when a node's leading tag byte is not one
// of {1,2,3,4}.
var ErrMalformedTag = errors.New("wznode: malformed tag")

// Node is one entry in a directory. Type-1 (none) nodes carry no name
// or address. Type-2 (link) nodes are resolved transparently by the
// reader and never escape as their own Node value — by the time a Node
// is returned to a caller its Kind is always one of {None, Dir, File}.
type Node struct {
	Kind  Kind
	Name  wzstring.Encoded
	Size  uint32
	Check uint32
	Addr  wzaddr.Address
	Var   VarKind // only meaningful when Kind == KindFile

	// Directory children, if Kind == KindDir: indices into the owning
	// Tree's arena, as a sibling-linked child range rather than an
	// owned []Node slice, so moving a Tree never invalidates a Node's
	// view of its children.
	firstChild, lastChild int32
	sibling                int32
}

// Tree is the flat arena backing a materialised directory. Index 0 is
// always the root directory.
type Tree struct {
	arena []Node
}

// Root returns the root directory's index (always 0).
func (t *Tree) Root() int32 { return 0 }

// At returns the node stored at idx.
func (t *Tree) At(idx int32) *Node { return &t.arena[idx] }

// Children returns the indices of idx's children in on-disk order.
func (t *Tree) Children(idx int32) []int32 {
	n := &t.arena[idx]
	var out []int32
	for c := n.firstChild; c != -1; c = t.arena[c].sibling {
		out = append(out, c)
	}
	return out
}

// Free releases every name buffer owned by the tree. The arena slice
// itself is left for the garbage collector.
func (t *Tree) Free() {
	for i := range t.arena {
		t.arena[i].Name.Free()
	}
	t.arena = nil
}

// reader holds the dependencies the node/directory reader needs beyond
// the raw byte source: the header start (for link-node base addresses
// and address deobfuscation) and the XOR pad (nil means "no decoding").
type reader struct {
	src        wzprim.ByteSource
	headStart  uint32
	hash       uint32
	pad        []byte
	tree       *Tree
}

// ReadOptions bundles the context a directory read needs.
type ReadOptions struct {
	HeadStart uint32
	Hash      uint32
	Pad       []byte // nil disables string decoding
}

// ReadDirectory parses a length-prefixed sequence of nodes at the
// source's current cursor into a fresh Tree rooted at index 0. On any
// per-node failure every node parsed so far is freed and the whole
// directory read fails: errors are reported, not retried.
func ReadDirectory(src wzprim.ByteSource, opt ReadOptions) (*Tree, error) {
	r := &reader{src: src, headStart: opt.HeadStart, hash: opt.Hash, pad: opt.Pad, tree: &Tree{}}
	// readOneDirectory always allocates the directory's own node first,
	// so it lands at index 0 in the fresh tree: Root() can assume this.
	if _, err := r.readOneDirectory(); err != nil {
		r.tree.Free()
		return nil, err
	}
	return r.tree, nil
}

// readOneDirectory reads a length-prefixed node vector and returns the
// arena index of a synthetic directory node owning them.
func (r *reader) readOneDirectory() (int32, error) {
	length, err := wzprim.ReadCompactInt32(r.src)
	if err != nil {
		return 0, err
	}

	dirIdx := r.alloc(Node{Kind: KindDir, firstChild: -1, lastChild: -1})

	var prev int32 = -1
	for i := uint32(0); i < length; i++ {
		childIdx, err := r.readNode()
		if err != nil {
			return 0, err
		}
		if prev == -1 {
			r.tree.arena[dirIdx].firstChild = childIdx
		} else {
			r.tree.arena[prev].sibling = childIdx
		}
		prev = childIdx
		r.tree.arena[dirIdx].lastChild = childIdx
	}
	return dirIdx, nil
}

func (r *reader) alloc(n Node) int32 {
	n.sibling = -1
	r.tree.arena = append(r.tree.arena, n)
	return int32(len(r.tree.arena) - 1)
}

// readNode parses one node header and its forward-ref payload,
// returning the arena index of the resulting node (always Kind None,
// Dir, or File — link nodes are resolved inline).
func (r *reader) readNode() (int32, error) {
	tag, err := wzprim.ReadByte(r.src)
	if err != nil {
		return 0, err
	}

	switch Kind(tag) {
	case KindNone:
		var filler [10]byte
		if _, err := r.src.Read(filler[:]); err != nil {
			return 0, err
		}
		return r.alloc(Node{Kind: KindNone, firstChild: -1, lastChild: -1}), nil

	case KindLink:
		off, err := wzprim.ReadLE32(r.src)
		if err != nil {
			return 0, err
		}
		here := r.src.Pos()
		if _, err := r.src.Seek(int64(r.headStart)+1+int64(off), 0); err != nil {
			return 0, err
		}
		tag2, err := wzprim.ReadByte(r.src)
		if err != nil {
			return 0, err
		}
		if Kind(tag2) != KindDir && Kind(tag2) != KindFile {
			return 0, fmt.Errorf("%w: link target tag %d", ErrMalformedTag, tag2)
		}
		idx, err := r.readNodeBody(Kind(tag2))
		if err != nil {
			return 0, err
		}
		if _, err := r.src.Seek(here, 0); err != nil {
			r.tree.arena[idx].Name.Free()
			return 0, err
		}
		return idx, nil

	case KindDir, KindFile:
		return r.readNodeBody(Kind(tag))

	default:
		return 0, fmt.Errorf("%w: %d", ErrMalformedTag, tag)
	}
}

// readNodeBody reads the common name/size/check/addr fields shared by
// directory and file nodes.
func (r *reader) readNodeBody(kind Kind) (int32, error) {
	name, err := readName(r.src, r.pad)
	if err != nil {
		return 0, err
	}

	size, err := wzprim.ReadCompactInt32(r.src)
	if err != nil {
		name.Free()
		return 0, err
	}
	check, err := wzprim.ReadCompactInt32(r.src)
	if err != nil {
		name.Free()
		return 0, err
	}
	pos := uint32(r.src.Pos())
	val, err := wzprim.ReadLE32(r.src)
	if err != nil {
		name.Free()
		return 0, err
	}
	addr := wzaddr.Address{Val: val, Pos: pos}

	node := Node{
		Kind:       kind,
		Name:       name,
		Size:       size,
		Check:      check,
		Addr:       addr,
		firstChild: -1,
		lastChild:  -1,
	}

	if kind == KindFile {
		v, err := wzprim.ReadByte(r.src)
		if err != nil {
			name.Free()
			return 0, err
		}
		node.Var = classifyVar(v)
	}

	return r.alloc(node), nil
}

// readName reads the length-prefixed, mask+pad-encoded name string
// shared by type-3/4 nodes.
func readName(src wzprim.ByteSource, pad []byte) (wzstring.Encoded, error) {
	n, err := wzprim.ReadByte(src)
	if err != nil {
		return wzstring.Encoded{}, err
	}

	var enc wzstring.Encoding
	var length uint32
	sn := int8(n)
	if sn < 0 {
		enc = wzstring.ASCII
		if n == 0x80 {
			length, err = wzprim.ReadLE32(src)
		} else {
			length = uint32(-int32(sn))
		}
	} else {
		enc = wzstring.UTF16LE
		if n == 0x7F {
			l, e := wzprim.ReadLE32(src)
			length, err = l*2, e
		} else {
			length = uint32(sn) * 2
		}
	}
	if err != nil {
		return wzstring.Encoded{}, err
	}

	buf := wzprim.AllocBytes(int(length))
	if _, err := src.Read(buf); err != nil {
		wzprim.FreeBytes(buf)
		return wzstring.Encoded{}, err
	}
	if err := wzstring.Decode(buf, enc, pad); err != nil {
		wzprim.FreeBytes(buf)
		return wzstring.Encoded{}, err
	}
	return wzstring.Encoded{Bytes: buf, Len: length, Enc: enc}, nil
}

func classifyVar(tag byte) VarKind {
	switch tag {
	case 0x00:
		return VarNone
	case 0x02, 0x0b:
		return VarInt16
	case 0x03, 0x13:
		return VarInt32
	case 0x14:
		return VarInt64
	case 0x04:
		return VarFloat32
	case 0x05:
		return VarFloat64
	case 0x08:
		return VarString
	case 0x09:
		return VarObject
	default:
		return VarUnknown
	}
}

// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package wz

import "github.com/go-wz/wzfs/internal/wznode"

// Node is one entry in a Directory: a link resolved to its target, a
// directory, or a file (type-1 "none" nodes are skipped by Directory.
// Nodes and never surfaced here, since they carry no name or address).
type Node struct {
	arc  *Archive
	tree *wznode.Tree
	idx  int32
}

func (n *Node) raw() *wznode.Node { return n.tree.At(n.idx) }

// Name returns the node's decoded name.
func (n *Node) Name() string { return n.raw().Name.String() }

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool { return n.raw().Kind == wznode.KindDir }

// Size is the node's declared size field. For directories this is the
// format's own bookkeeping value, not a byte count of the subtree.
func (n *Node) Size() uint32 { return n.raw().Size }

// Check is the node's checksum field.
func (n *Node) Check() uint32 { return n.raw().Check }

// VarKind classifies a file node's payload without decoding it. It is
// VarNone for directories.
func (n *Node) VarKind() wznode.VarKind { return n.raw().Var }

// Payload peeks up to maxBytes raw bytes at the node's deobfuscated
// address, for diagnostic classification (see internal/payloadsniff).
// It never decodes the payload and is only meaningful for file nodes;
// the bytes are a best-effort read and are not cached.
func (n *Node) Payload(maxBytes int) ([]byte, error) {
	if n.IsDir() {
		return nil, ErrNotDirectory
	}
	return n.arc.peekPayload(n.raw(), maxBytes)
}

// Dir descends into a directory node, parsing it on first access and
// reusing the cached subtree afterward (internal/subtreecache). It
// returns ErrNotDirectory for file nodes.
func (n *Node) Dir() (*Directory, error) {
	if !n.IsDir() {
		return nil, ErrNotDirectory
	}
	tree, err := n.arc.resolveSubtree(n.raw())
	if err != nil {
		return nil, err
	}
	return &Directory{arc: n.arc, tree: tree, idx: tree.Root()}, nil
}

// Copyright (c) Elliot Nunn
// Licensed under the MIT license

package wz

import "errors"

// ErrOutOfRange is returned when a deobfuscated address does not fall
// within the archive's declared [start, start+size) span.
var ErrOutOfRange = errors.New("wz: address out of range")

// ErrNotDirectory is returned when Dir is called on a leaf node.
// Node.Payload also returns it when called on a directory node.
var ErrNotDirectory = errors.New("wz: not a directory")

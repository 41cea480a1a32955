// Package valuetree is a path-keyed key/value tree with a compact binary
// form. Leaves hold a float32, an unsigned integer, a string or a raw blob.
//
// Entries keep their insertion order, so encoding a tree that was decoded
// from bytes reproduces those bytes exactly.
//
// The binary form is the four-byte magic "VTR1" followed by protobuf-wire
// records: each entry is field 1 (length-delimited) wrapping the path
// (field 1) and exactly one value field: float (2, fixed32), uint
// (3, varint), string (4) or blob (5).
package valuetree

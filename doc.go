// Package verkle implements an authenticated key/value trie committed with
// Pedersen vector commitments and opened with an inner-product argument
// (IPA), in the style of Ethereum's verkle state tree but generalized to a
// configurable branching width.
//
// A Trie stores its nodes externally through a store.KV rather than as an
// in-memory pointer tree: nodes are addressed by a deterministic 32-byte
// path identifier derived from the sequence of child indices walked from
// the root, never by pointer or content hash, so the same logical trie
// always produces the same node identifiers regardless of insertion order.
package verkle

package verkle

import (
	"crypto/sha256"

	"github.com/ethereum/go-ethereum/rlp"
)

// PathIdentifier derives the deterministic 32-byte identifier a node is
// stored under: the hash of the RLP encoding of the sequence of
// child-indices taken from the root to reach it. The root's path is the
// empty sequence. Mirrors verkle_node.py's `ROOT_PATH = hash(rlp.encode(b''))`
// generalized from raw byte-path encoding to a list of indices (since this
// trie's width need not be byte-aligned).
//
// Per spec.md §9(a), this is always used for every node's identifier,
// including a leaf demoted to a deeper path during a collision cascade -
// the prototype's alternate branch that stores a raw encoded path instead
// of this hash is not reproduced.
func PathIdentifier(path []uint16) [32]byte {
	enc, err := rlp.EncodeToBytes(path)
	if err != nil {
		// path is always a []uint16, a type RLP can always encode.
		panic("verkle: unreachable rlp encoding failure: " + err.Error())
	}
	return sha256.Sum256(enc)
}

// RootID is the identifier the root node is always stored under: the
// identifier of the empty path.
var RootID = PathIdentifier(nil)

// ExtendPath returns a new path slice with index appended, leaving parent
// untouched.
func ExtendPath(parent []uint16, index int) []uint16 {
	out := make([]uint16, len(parent)+1)
	copy(out, parent)
	out[len(parent)] = uint16(index)
	return out
}

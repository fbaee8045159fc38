package verkle

import "github.com/vvlabs/verkle-trie/internal/ipa"

// Node is the tagged union of the two node shapes a trie stores: a leaf
// holding one key/value pair, or an inner node branching to up to Width
// children. Mirrors ethereum-go-verkle's TreeNode dispatch (there an
// interface implemented by *LeafNode/*InternalNode); here, since nodes are
// never held by in-memory pointer but always re-materialized from a
// store.KV read, the interface only needs to expose what the codec and the
// commitment-maintenance code require.
type Node interface {
	// Commit returns the node's current Pedersen commitment.
	Commit() ipa.Point
	// NodeHash returns the node's current field-element hash
	// (LE(commitment.serialize()) mod MODULUS).
	NodeHash() ipa.Fr
}

// LeafNode represents one key/value pair. Its commitment binds four field
// scalars (1, key, value-lo, value-hi) at domain indices 0..3, per spec §3.
type LeafNode struct {
	Key        [32]byte
	Value      [32]byte
	Commitment ipa.Point
	Hash       ipa.Fr
}

func (l *LeafNode) Commit() ipa.Point { return l.Commitment }
func (l *LeafNode) NodeHash() ipa.Fr  { return l.Hash }

// LeafVector returns the four-scalar vector a leaf commits to:
// (1, key[0:31] as an LE integer, value[0:16] as an LE integer, value[16:32]
// as an LE integer), at domain indices 0..3 respectively.
func LeafVector(key, value [32]byte) [4]ipa.Fr {
	var v [4]ipa.Fr
	v[0].SetOne()
	v[1].SetBytesLE(key[:31])
	v[2].SetBytesLE(value[:16])
	v[3].SetBytesLE(value[16:])
	return v
}

// NewLeaf builds a fully committed leaf for (key, value) under cfg's basis.
func NewLeaf(cfg *ipa.Config, key, value [32]byte) *LeafNode {
	v := LeafVector(key, value)
	values := map[int]ipa.Fr{0: v[0], 1: v[1], 2: v[2], 3: v[3]}
	c := cfg.CommitSparse(values)
	return &LeafNode{
		Key:        key,
		Value:      value,
		Commitment: c,
		Hash:       ipa.ToFr(&c),
	}
}

// InnerNode represents a branching node. Children is a partial map from
// child-index to the 32-byte path identifier of the referenced child.
type InnerNode struct {
	Children   map[int][32]byte
	Commitment ipa.Point
	Hash       ipa.Fr
}

func (n *InnerNode) Commit() ipa.Point { return n.Commitment }
func (n *InnerNode) NodeHash() ipa.Fr  { return n.Hash }

// NewEmptyInner returns an inner node with no children, committing to the
// zero vector (commitment is the curve identity, hash is the zero scalar).
func NewEmptyInner() *InnerNode {
	return &InnerNode{
		Children:   make(map[int][32]byte),
		Commitment: ipa.ZeroPoint(),
	}
}

// ChildCount returns the number of populated child slots.
func (n *InnerNode) ChildCount() int {
	return len(n.Children)
}

// OnlyChild returns the single populated (index, id) pair of n, and true,
// iff n has exactly one child. Mirrors verkle_trie_new.py's
// get_only_child, used by the one-child collapse rule of §4.4/§4.5.
func (n *InnerNode) OnlyChild() (int, [32]byte, bool) {
	if len(n.Children) != 1 {
		return 0, [32]byte{}, false
	}
	for i, id := range n.Children {
		return i, id, true
	}
	panic("unreachable")
}

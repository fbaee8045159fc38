// This is free and unencumbered software released into the public domain.
//
// Anyone is free to copy, modify, publish, use, compile, sell, or
// distribute this software, either in source code form or as a compiled
// binary, for any purpose, commercial or non-commercial, and by any
// means.
//
// In jurisdictions that recognize copyright laws, the author or authors
// of this software dedicate any and all copyright interest in the
// software to the public domain. We make this dedication for the benefit
// of the public at large and to the detriment of our heirs and
// successors. We intend this dedication to be an overt act of
// relinquishment in perpetuity of all present and future rights to this
// software under copyright law.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
// EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
// MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
// IN NO EVENT SHALL THE AUTHORS BE LIABLE FOR ANY CLAIM, DAMAGES OR
// OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE,
// ARISING FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR
// OTHER DEALINGS IN THE SOFTWARE.
//
// For more information, please refer to <https://unlicense.org>

package verkle

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/vvlabs/verkle-trie/internal/ipa"
	"github.com/vvlabs/verkle-trie/store"
)

// Trie is a verkle trie instance: an external store plus the
// field/curve/width configuration it commits nodes under. Grounded on
// ethereum-go-verkle's VerkleTrie/InternalNode dispatch shape (tree.go),
// adapted to fetch every node through Config.Store rather than walking
// in-memory pointers.
type Trie struct {
	cfg *Config
}

// NewTrie wraps an existing (possibly empty) store as a trie.
func NewTrie(cfg *Config) *Trie {
	return &Trie{cfg: cfg}
}

// Config returns the trie's configuration.
func (t *Trie) Config() *Config { return t.cfg }

// KeyValue is one entry of an initial batch, see NewFromBatch.
type KeyValue struct {
	Key   [32]byte
	Value [32]byte
}

// NewFromBatch builds a trie from a presized initial batch of key/value
// pairs, the configuration option spec.md §6 reserves for an "optional
// presized initial batch". Grounded on verkle_trie_new.py's
// VerkleTrie.__init__ + NUMBER_INITIAL_KEYS loop (insert_verkle_node
// followed by one add_node_hash pass); here implemented as repeated
// incremental Update calls rather than a separate insert-then-commit pass,
// since the incremental algorithm already produces the exact same final
// commitments and this avoids maintaining two independent tree-mutation
// code paths for one supplemented, non-performance-critical entry point.
func NewFromBatch(ctx context.Context, cfg *Config, pairs []KeyValue) (*Trie, error) {
	t := NewTrie(cfg)
	for _, kv := range pairs {
		if err := t.Update(ctx, kv.Key, kv.Value); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Indices derives indices(key) per spec.md §4.1: the sequence of
// child-indices, root-first, obtained by consuming the 256-bit
// big-endian key in chunks of widthBits from the most significant end,
// with any short final chunk (when widthBits does not divide 256) holding
// the key's least-significant bits, left-shifted into the high bits of its
// slot.
func Indices(key [32]byte, widthBits int) []int {
	const keyBits = 256
	l := (keyBits + widthBits - 1) / widthBits
	r := keyBits % widthBits

	indices := make([]int, l)
	x := new(big.Int).SetBytes(key[:])

	fullMask := new(big.Int).Lsh(big.NewInt(1), uint(widthBits))
	fullMask.Sub(fullMask, big.NewInt(1))

	start := l - 1
	if r != 0 {
		rMask := new(big.Int).Lsh(big.NewInt(1), uint(r))
		rMask.Sub(rMask, big.NewInt(1))
		last := new(big.Int).And(x, rMask)
		last.Lsh(last, uint(widthBits-r))
		indices[l-1] = int(last.Int64())
		x.Rsh(x, uint(r))
		start = l - 2
	}

	for pos := start; pos >= 0; pos-- {
		chunk := new(big.Int).And(x, fullMask)
		indices[pos] = int(chunk.Int64())
		x.Rsh(x, uint(widthBits))
	}
	return indices
}

// Root returns the trie's root inner node, or an empty (zero-commitment)
// inner node if the trie has never been written to.
func (t *Trie) Root(ctx context.Context) (*InnerNode, error) {
	n, found, err := t.getNode(ctx, RootID)
	if err != nil {
		return nil, err
	}
	if !found {
		return NewEmptyInner(), nil
	}
	in, ok := n.(*InnerNode)
	if !ok {
		return nil, ErrCorruption
	}
	return in, nil
}

// RootHash returns the canonical root identifier for proofs, per spec.md
// §9(d): the root's field-element hash.
func (t *Trie) RootHash(ctx context.Context) (ipa.Fr, error) {
	root, err := t.Root(ctx)
	if err != nil {
		return ipa.Fr{}, err
	}
	return root.Hash, nil
}

func (t *Trie) getNode(ctx context.Context, id [32]byte) (Node, bool, error) {
	data, err := t.cfg.Store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	n, err := DecodeNode(data)
	if err != nil {
		return nil, false, err
	}
	return n, true, nil
}

// Lookup returns the value stored for key, or ErrKeyNotFound if absent.
func (t *Trie) Lookup(ctx context.Context, key [32]byte) ([32]byte, error) {
	var zero [32]byte
	path := Indices(key, t.cfg.WidthBits)

	curID := RootID
	for _, idx := range path {
		n, found, err := t.getNode(ctx, curID)
		if err != nil {
			return zero, err
		}
		if !found {
			return zero, ErrKeyNotFound
		}
		if leaf, ok := n.(*LeafNode); ok {
			if leaf.Key == key {
				return leaf.Value, nil
			}
			return zero, ErrKeyNotFound
		}
		inner := n.(*InnerNode)
		childID, ok := inner.Children[idx]
		if !ok {
			return zero, ErrKeyNotFound
		}
		curID = childID
	}

	n, found, err := t.getNode(ctx, curID)
	if err != nil {
		return zero, err
	}
	if !found {
		return zero, ErrKeyNotFound
	}
	leaf, ok := n.(*LeafNode)
	if !ok || leaf.Key != key {
		return zero, ErrKeyNotFound
	}
	return leaf.Value, nil
}

// trailEntry records one (index, parent node) pair visited while
// descending, so that Update/Delete can propagate commitment changes back
// up to the root in reverse. Grounded on spec.md §4.3 step 2's
// `path = [(i_k, node_k)]`.
type trailEntry struct {
	Index int
	Node  *InnerNode
	ID    [32]byte
}

// Update inserts key=value if key is absent, or overwrites its value if
// present, maintaining every ancestor's commitment incrementally. Mirrors
// spec.md §4.3.
func (t *Trie) Update(ctx context.Context, key, value [32]byte) error {
	cfg := t.cfg
	widthBits := cfg.WidthBits
	pathIndices := Indices(key, widthBits)
	newLeaf := NewLeaf(cfg.IPA, key, value)

	root, err := t.Root(ctx)
	if err != nil {
		return err
	}

	trail := make([]trailEntry, 0, len(pathIndices))
	curNode := root
	curID := RootID
	var curPath []uint16
	pending := make(map[[32]byte][]byte)

	for level, idx := range pathIndices {
		childID, exists := curNode.Children[idx]
		if !exists {
			trail = append(trail, trailEntry{Index: idx, Node: curNode, ID: curID})

			leafPath := ExtendPath(curPath, idx)
			leafID := PathIdentifier(leafPath)
			enc, err := EncodeLeaf(newLeaf)
			if err != nil {
				return err
			}
			pending[leafID] = enc
			curNode.Children[idx] = leafID

			return t.propagate(ctx, trail, newLeaf.Hash, pending)
		}

		child, found, err := t.getNode(ctx, childID)
		if err != nil {
			return err
		}
		if !found {
			return ErrCorruption
		}

		if childInner, ok := child.(*InnerNode); ok {
			trail = append(trail, trailEntry{Index: idx, Node: curNode, ID: curID})
			curNode = childInner
			curID = childID
			curPath = ExtendPath(curPath, idx)
			continue
		}

		existingLeaf := child.(*LeafNode)
		trail = append(trail, trailEntry{Index: idx, Node: curNode, ID: curID})

		if existingLeaf.Key == key {
			enc, err := EncodeLeaf(newLeaf)
			if err != nil {
				return err
			}
			pending[childID] = enc

			var valueChange ipa.Fr
			valueChange.Sub(&newLeaf.Hash, &existingLeaf.Hash)
			return t.propagate(ctx, trail, valueChange, pending)
		}

		oldIndices := Indices(existingLeaf.Key, widthBits)
		subtreeRootID, subtreeRootHash, err := t.buildCollisionSubtree(
			ExtendPath(curPath, idx), level+1, pathIndices, oldIndices, newLeaf, existingLeaf, pending)
		if err != nil {
			return err
		}
		curNode.Children[idx] = subtreeRootID

		var valueChange ipa.Fr
		valueChange.Sub(&subtreeRootHash, &existingLeaf.Hash)
		return t.propagate(ctx, trail, valueChange, pending)
	}

	return fmt.Errorf("%w: index path exhausted without reaching a leaf", ErrCorruption)
}

// buildCollisionSubtree builds the chain of cascaded inner nodes created
// when newLeaf collides with oldLeaf at basePath: one inner node per index
// level where the two keys' indices still agree, then a bottommost inner
// node holding both leaves at their first differing indices. Returns the
// identifier and hash of the top of this new subtree (what the caller
// installs in place of the demoted leaf). Mirrors
// verkle_trie_new.py's collision-cascade branch of update_verkle_node.
func (t *Trie) buildCollisionSubtree(
	basePath []uint16,
	startLevel int,
	newIndices, oldIndices []int,
	newLeaf, oldLeaf *LeafNode,
	pending map[[32]byte][]byte,
) ([32]byte, ipa.Fr, error) {
	cfg := t.cfg

	type chainLink struct {
		path []uint16
		idx  int
	}
	var chain []chainLink
	curPath := basePath
	cl := startLevel
	for cl < len(newIndices) && newIndices[cl] == oldIndices[cl] {
		chain = append(chain, chainLink{path: curPath, idx: newIndices[cl]})
		curPath = ExtendPath(curPath, newIndices[cl])
		cl++
	}
	if cl >= len(newIndices) {
		return [32]byte{}, ipa.Fr{}, fmt.Errorf("%w: colliding keys share their full index path", ErrCorruption)
	}
	ni, oi := newIndices[cl], oldIndices[cl]

	newLeafPath := ExtendPath(curPath, ni)
	oldLeafPath := ExtendPath(curPath, oi)
	newLeafID := PathIdentifier(newLeafPath)
	oldLeafID := PathIdentifier(oldLeafPath)

	// The demoted leaf keeps its key/value/commitment/hash; only its
	// storage identifier changes, per spec.md §9 note on path-identifier
	// derivation ("reassign the demoted leaf's identifier explicitly").
	demoted := &LeafNode{Key: oldLeaf.Key, Value: oldLeaf.Value, Commitment: oldLeaf.Commitment, Hash: oldLeaf.Hash}

	encNew, err := EncodeLeaf(newLeaf)
	if err != nil {
		return [32]byte{}, ipa.Fr{}, err
	}
	encOld, err := EncodeLeaf(demoted)
	if err != nil {
		return [32]byte{}, ipa.Fr{}, err
	}
	pending[newLeafID] = encNew
	pending[oldLeafID] = encOld

	bottom := NewEmptyInner()
	bottom.Children[ni] = newLeafID
	bottom.Children[oi] = oldLeafID
	bottom.Commitment = cfg.IPA.CommitSparse(map[int]ipa.Fr{ni: newLeaf.Hash, oi: demoted.Hash})
	bottom.Hash = ipa.ToFr(&bottom.Commitment)
	bottomID := PathIdentifier(curPath)
	encBottom, err := EncodeInner(bottom)
	if err != nil {
		return [32]byte{}, ipa.Fr{}, err
	}
	pending[bottomID] = encBottom

	childID := bottomID
	childHash := bottom.Hash
	for i := len(chain) - 1; i >= 0; i-- {
		link := chain[i]
		n := NewEmptyInner()
		n.Children[link.idx] = childID
		n.Commitment = cfg.IPA.CommitSparse(map[int]ipa.Fr{link.idx: childHash})
		n.Hash = ipa.ToFr(&n.Commitment)
		id := PathIdentifier(link.path)
		enc, err := EncodeInner(n)
		if err != nil {
			return [32]byte{}, ipa.Fr{}, err
		}
		pending[id] = enc
		childID = id
		childHash = n.Hash
	}

	return childID, childHash, nil
}

// propagate applies spec.md §4.3 step 4 to every (index, node) pair in
// trail, walking it in reverse (deepest first, root last), then commits
// every mutated or created node in pending as a single write batch.
func (t *Trie) propagate(ctx context.Context, trail []trailEntry, valueChange ipa.Fr, pending map[[32]byte][]byte) error {
	cfg := t.cfg
	for i := len(trail) - 1; i >= 0; i-- {
		entry := trail[i]

		delta := ipa.ScalarMul(&cfg.IPA.Basis.G[entry.Index], &valueChange)
		newCommitment := ipa.Add(&entry.Node.Commitment, &delta)
		entry.Node.Commitment = newCommitment

		newHash := ipa.ToFr(&newCommitment)
		var nextChange ipa.Fr
		nextChange.Sub(&newHash, &entry.Node.Hash)
		entry.Node.Hash = newHash
		valueChange = nextChange

		enc, err := EncodeInner(entry.Node)
		if err != nil {
			return err
		}
		pending[entry.ID] = enc
	}
	return t.commitBatch(ctx, pending)
}

func (t *Trie) commitBatch(ctx context.Context, pending map[[32]byte][]byte) error {
	batch := t.cfg.Store.NewBatch()
	for id, payload := range pending {
		batch.Put(id, payload)
	}
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return nil
}

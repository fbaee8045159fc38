package verkle

import (
	"context"
	"fmt"

	"github.com/vvlabs/verkle-trie/internal/ipa"
)

// replacementInfo describes a promoted leaf: an inner node that collapsed
// down to its sole remaining (leaf) child, carried from one ancestor's
// processing to its parent's. See spec.md §4.4.
type replacementInfo struct {
	ID   [32]byte
	Hash ipa.Fr
}

// Delete removes key, returning ErrKeyNotFound if it is absent. Ancestors
// are collapsed bottom-up per spec.md §4.4: a non-root inner node left
// with exactly one child, itself a leaf, is replaced by that leaf; the
// root is never collapsed, even down to a single child.
func (t *Trie) Delete(ctx context.Context, key [32]byte) error {
	cfg := t.cfg
	pathIndices := Indices(key, cfg.WidthBits)

	root, err := t.Root(ctx)
	if err != nil {
		return err
	}

	trail := make([]trailEntry, 0, len(pathIndices))
	curNode := root
	curID := RootID
	var leafID [32]byte
	var deletedHash ipa.Fr
	found := false

	for _, idx := range pathIndices {
		childID, exists := curNode.Children[idx]
		if !exists {
			return ErrKeyNotFound
		}
		child, ok, err := t.getNode(ctx, childID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCorruption
		}
		if leaf, isLeaf := child.(*LeafNode); isLeaf {
			if leaf.Key != key {
				return ErrKeyNotFound
			}
			trail = append(trail, trailEntry{Index: idx, Node: curNode, ID: curID})
			leafID = childID
			deletedHash = leaf.Hash
			found = true
			break
		}
		trail = append(trail, trailEntry{Index: idx, Node: curNode, ID: curID})
		curNode = child.(*InnerNode)
		curID = childID
	}
	if !found {
		return ErrKeyNotFound
	}

	pending := make(map[[32]byte][]byte)
	toDelete := [][32]byte{leafID}

	var valueChange ipa.Fr
	valueChange.Neg(&deletedHash)

	var replacement *replacementInfo

	for i := len(trail) - 1; i >= 0; i-- {
		entry := trail[i]
		node := entry.Node
		originalHash := node.Hash

		switch {
		case i == len(trail)-1:
			delete(node.Children, entry.Index)
		case replacement != nil:
			node.Children[entry.Index] = replacement.ID
			toDelete = append(toDelete, trail[i+1].ID)
		}

		var collapsed *replacementInfo
		if i != 0 {
			if _, onlyID, ok := node.OnlyChild(); ok {
				childNode, cf, cerr := t.getNode(ctx, onlyID)
				if cerr != nil {
					return cerr
				}
				if cf {
					if leaf, isLeaf := childNode.(*LeafNode); isLeaf {
						collapsed = &replacementInfo{ID: onlyID, Hash: leaf.Hash}
					}
				}
			}
		}

		if collapsed != nil {
			var change ipa.Fr
			change.Sub(&collapsed.Hash, &originalHash)
			valueChange = change
			replacement = collapsed
			continue
		}
		if replacement != nil {
			// The promoted leaf now sits where the topmost collapsed inner
			// was: store it under that position's identifier, and remove
			// its old, deeper entry instead of the inner's.
			leafData, err := cfg.Store.Get(ctx, replacement.ID)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrStoreFailure, err)
			}
			newID := trail[i+1].ID
			pending[newID] = leafData
			node.Children[entry.Index] = newID
			toDelete[len(toDelete)-1] = replacement.ID
		}
		replacement = nil

		delta := ipa.ScalarMul(&cfg.IPA.Basis.G[entry.Index], &valueChange)
		newCommitment := ipa.Add(&node.Commitment, &delta)
		node.Commitment = newCommitment
		newHash := ipa.ToFr(&newCommitment)
		var nextChange ipa.Fr
		nextChange.Sub(&newHash, &node.Hash)
		node.Hash = newHash
		valueChange = nextChange

		enc, err := EncodeInner(node)
		if err != nil {
			return err
		}
		pending[entry.ID] = enc
	}

	batch := cfg.Store.NewBatch()
	for id, payload := range pending {
		batch.Put(id, payload)
	}
	for _, id := range toDelete {
		batch.Delete(id)
	}
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreFailure, err)
	}
	return nil
}

package verkle

import (
	"context"
	"fmt"

	"github.com/vvlabs/verkle-trie/internal/ipa"
)

// depthWalk recursively counts leaves and sums their depths below id,
// grounded on ethereum-go-verkle/analytics.go's TreeWitness depth
// traversal shape.
func (t *Trie) depthWalk(ctx context.Context, id [32]byte, depth int) (leaves int, depthSum int, err error) {
	n, found, err := t.getNode(ctx, id)
	if err != nil {
		return 0, 0, err
	}
	if !found {
		return 0, 0, nil
	}
	switch node := n.(type) {
	case *LeafNode:
		return 1, depth, nil
	case *InnerNode:
		for _, childID := range node.Children {
			l, d, err := t.depthWalk(ctx, childID, depth+1)
			if err != nil {
				return 0, 0, err
			}
			leaves += l
			depthSum += d
		}
		return leaves, depthSum, nil
	default:
		return 0, 0, ErrCorruption
	}
}

// TotalDepth returns the sum of every leaf's depth below the root.
func (t *Trie) TotalDepth(ctx context.Context) (int, error) {
	_, depthSum, err := t.depthWalk(ctx, RootID, 0)
	return depthSum, err
}

// AverageDepth returns the mean leaf depth, or 0 for an empty trie.
func (t *Trie) AverageDepth(ctx context.Context) (float64, error) {
	leaves, depthSum, err := t.depthWalk(ctx, RootID, 0)
	if err != nil {
		return 0, err
	}
	if leaves == 0 {
		return 0, nil
	}
	return float64(depthSum) / float64(leaves), nil
}

// CheckValidTree recomputes every commitment from scratch and asserts it
// matches what is stored, and validates the one-child rule for non-root
// inner nodes. Returns an error wrapping ErrCorruption on any mismatch.
// Mirrors verkle_trie_new.py's check_valid_tree/get_only_child.
func (t *Trie) CheckValidTree(ctx context.Context) error {
	_, err := t.validateNode(ctx, RootID, true)
	return err
}

func (t *Trie) validateNode(ctx context.Context, id [32]byte, isRoot bool) (ipa.Fr, error) {
	n, found, err := t.getNode(ctx, id)
	if err != nil {
		return ipa.Fr{}, err
	}
	if !found {
		if isRoot {
			return ipa.Fr{}, nil
		}
		return ipa.Fr{}, fmt.Errorf("%w: parent references a missing node", ErrCorruption)
	}

	switch node := n.(type) {
	case *LeafNode:
		v := LeafVector(node.Key, node.Value)
		values := map[int]ipa.Fr{0: v[0], 1: v[1], 2: v[2], 3: v[3]}
		expectedCommit := t.cfg.IPA.CommitSparse(values)
		if !expectedCommit.Equal(&node.Commitment) {
			return ipa.Fr{}, fmt.Errorf("%w: leaf commitment mismatch", ErrCorruption)
		}
		expectedHash := ipa.ToFr(&expectedCommit)
		if !expectedHash.Equal(&node.Hash) {
			return ipa.Fr{}, fmt.Errorf("%w: leaf hash mismatch", ErrCorruption)
		}
		return node.Hash, nil

	case *InnerNode:
		if !isRoot {
			switch len(node.Children) {
			case 0:
				return ipa.Fr{}, fmt.Errorf("%w: non-root inner with no children", ErrCorruption)
			case 1:
				_, onlyID, _ := node.OnlyChild()
				child, found, err := t.getNode(ctx, onlyID)
				if err != nil {
					return ipa.Fr{}, err
				}
				if !found {
					return ipa.Fr{}, fmt.Errorf("%w: only child missing", ErrCorruption)
				}
				if _, isLeaf := child.(*LeafNode); isLeaf {
					return ipa.Fr{}, fmt.Errorf("%w: non-root single-leaf-child inner should have been collapsed", ErrCorruption)
				}
			}
		}

		values := make(map[int]ipa.Fr, len(node.Children))
		for idx, childID := range node.Children {
			childHash, err := t.validateNode(ctx, childID, false)
			if err != nil {
				return ipa.Fr{}, err
			}
			values[idx] = childHash
		}
		expectedCommit := t.cfg.IPA.CommitSparse(values)
		if !expectedCommit.Equal(&node.Commitment) {
			return ipa.Fr{}, fmt.Errorf("%w: inner commitment mismatch", ErrCorruption)
		}
		expectedHash := ipa.ToFr(&expectedCommit)
		if !expectedHash.Equal(&node.Hash) {
			return ipa.Fr{}, fmt.Errorf("%w: inner hash mismatch", ErrCorruption)
		}
		return node.Hash, nil

	default:
		return ipa.Fr{}, ErrCorruption
	}
}

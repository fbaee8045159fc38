package verkle

import (
	"context"
	"math/rand"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/vvlabs/verkle-trie/internal/ipa"
	"github.com/vvlabs/verkle-trie/store"
)

// S4: single-key trie, delete it, root returns to the empty (zero-commitment)
// inner node, lookup is absent, and a second delete fails with
// ErrKeyNotFound (property 2).
func TestDeleteSingleKeyCollapsesToEmptyRoot(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr := newTestTrie(t, 8)

	key, value := leKey(1), leKey(99)
	require.NoError(t, tr.Update(ctx, key, value))
	require.NoError(t, tr.Delete(ctx, key))

	_, err := tr.Lookup(ctx, key)
	require.ErrorIs(t, err, ErrKeyNotFound)
	require.ErrorIs(t, tr.Delete(ctx, key), ErrKeyNotFound)

	root, err := tr.Root(ctx)
	require.NoError(t, err)
	zero := ipa.ZeroPoint()
	if !root.Commitment.Equal(&zero) {
		t.Fatalf("root commitment after deleting the only key should be the identity, got:\n%s", spew.Sdump(root))
	}
	require.Equal(t, 0, root.ChildCount(), "root should have no children after deleting the only key")

	require.NoError(t, tr.CheckValidTree(ctx))
}

// S3: insert 1024 keys, delete a random subset, confirm the survivors all
// resolve and the deleted ones don't, and the tree stays structurally valid.
func TestDeleteSubsetLeavesRestIntact(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr := newTestTrie(t, 8)

	const total = 1024
	const deleted = 256
	rng := rand.New(rand.NewSource(3))

	keys := make([][32]byte, total)
	values := make([][32]byte, total)
	seen := map[[32]byte]bool{}
	for i := 0; i < total; i++ {
		var k [32]byte
		for {
			rng.Read(k[:])
			if !seen[k] {
				seen[k] = true
				break
			}
		}
		keys[i] = k
		rng.Read(values[i][:])
		require.NoError(t, tr.Update(ctx, keys[i], values[i]))
	}

	perm := rng.Perm(total)
	toDelete := perm[:deleted]
	deletedSet := make(map[int]bool, deleted)
	for _, i := range toDelete {
		deletedSet[i] = true
		require.NoError(t, tr.Delete(ctx, keys[i]))
	}

	for i := 0; i < total; i++ {
		got, err := tr.Lookup(ctx, keys[i])
		if deletedSet[i] {
			require.ErrorIsf(t, err, ErrKeyNotFound, "deleted key %d should no longer resolve", i)
			continue
		}
		require.NoErrorf(t, err, "surviving key %d", i)
		require.Equalf(t, values[i], got, "surviving key %d", i)
	}

	require.NoError(t, tr.CheckValidTree(ctx))
}

func TestDeleteAbsentKeyFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr := newTestTrie(t, 8)
	require.NoError(t, tr.Update(ctx, leKey(1), leKey(2)))
	require.ErrorIs(t, tr.Delete(ctx, leKey(999)), ErrKeyNotFound)
}

func TestDeleteThenReinsertMatchesNeverDeleted(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	seed := []byte("delete-reinsert-seed")

	cfgA, err := NewConfig(8, store.NewMemoryStore(), seed)
	require.NoError(t, err)
	trieA := NewTrie(cfgA)
	for i := uint64(0); i < 20; i++ {
		require.NoError(t, trieA.Update(ctx, leKey(i), leKey(i+1)))
	}
	require.NoError(t, trieA.Delete(ctx, leKey(10)))
	require.NoError(t, trieA.Update(ctx, leKey(10), leKey(11)))

	cfgB, err := NewConfig(8, store.NewMemoryStore(), seed)
	require.NoError(t, err)
	trieB := NewTrie(cfgB)
	for i := uint64(0); i < 20; i++ {
		require.NoError(t, trieB.Update(ctx, leKey(i), leKey(i+1)))
	}

	rootA, err := trieA.Root(ctx)
	require.NoError(t, err)
	rootB, err := trieB.Root(ctx)
	require.NoError(t, err)
	if !rootA.Hash.Equal(&rootB.Hash) {
		t.Fatalf("delete-then-reinsert root hash disagrees with a trie that never deleted the key:\n%s",
			spew.Sdump(rootA, rootB))
	}
}

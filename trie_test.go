package verkle

import (
	"context"
	"math/rand"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/require"

	"github.com/vvlabs/verkle-trie/store"
)

func leKey(i uint64) [32]byte {
	var k [32]byte
	for b := 0; b < 8; b++ {
		k[b] = byte(i >> (8 * b))
	}
	return k
}

func newTestTrie(t *testing.T, widthBits int) *Trie {
	t.Helper()
	cfg, err := NewConfig(widthBits, store.NewMemoryStore(), []byte("trie-test-seed"))
	require.NoError(t, err)
	return NewTrie(cfg)
}

// Property 7: every produced index lies in [0, WIDTH).
func TestIndicesBounds(t *testing.T) {
	t.Parallel()
	rng := rand.New(rand.NewSource(1))
	for _, widthBits := range []int{2, 4, 6, 8, 10, 12} {
		width := 1 << widthBits
		for trial := 0; trial < 50; trial++ {
			var key [32]byte
			rng.Read(key[:])
			indices := Indices(key, widthBits)
			for _, idx := range indices {
				require.GreaterOrEqualf(t, idx, 0, "widthBits=%d", widthBits)
				require.Lessf(t, idx, width, "widthBits=%d", widthBits)
			}
		}
	}
}

func TestIndicesLengthCoversAllKeyBits(t *testing.T) {
	t.Parallel()
	for _, widthBits := range []int{2, 4, 6, 8, 10, 12} {
		l := (256 + widthBits - 1) / widthBits
		var key [32]byte
		for i := range key {
			key[i] = 0xff
		}
		indices := Indices(key, widthBits)
		require.Lenf(t, indices, l, "widthBits=%d", widthBits)
	}
}

// Property 1: read-after-write.
func TestUpdateThenLookupReadsLastWrite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr := newTestTrie(t, 8)

	for i := uint64(0); i < 10; i++ {
		require.NoError(t, tr.Update(ctx, leKey(i), leKey(i+1000)))
	}

	// S1's overwrite: update key 5 again with a different value.
	require.NoError(t, tr.Update(ctx, leKey(5), leKey(2005)))

	got, err := tr.Lookup(ctx, leKey(5))
	require.NoError(t, err)
	require.Equal(t, leKey(2005), got)

	require.NoError(t, tr.CheckValidTree(ctx))
}

func TestLookupAbsentKeyFails(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr := newTestTrie(t, 8)
	require.NoError(t, tr.Update(ctx, leKey(1), leKey(100)))
	_, err := tr.Lookup(ctx, leKey(2))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

// Property 3 / S2: root-stability under permutation.
func TestRootStableUnderInsertionOrder(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	const n = 256
	rng := rand.New(rand.NewSource(2))
	pairs := make([]KeyValue, n)
	for i := range pairs {
		rng.Read(pairs[i].Key[:])
		rng.Read(pairs[i].Value[:])
	}

	seed := []byte("shared-basis-seed")
	cfgA, err := NewConfig(4, store.NewMemoryStore(), seed)
	require.NoError(t, err)
	cfgB, err := NewConfig(4, store.NewMemoryStore(), seed)
	require.NoError(t, err)

	trieA := NewTrie(cfgA)
	for _, kv := range pairs {
		require.NoError(t, trieA.Update(ctx, kv.Key, kv.Value))
	}

	shuffled := append([]KeyValue(nil), pairs...)
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	trieB := NewTrie(cfgB)
	for _, kv := range shuffled {
		require.NoError(t, trieB.Update(ctx, kv.Key, kv.Value))
	}

	rootA, err := trieA.Root(ctx)
	require.NoError(t, err)
	rootB, err := trieB.Root(ctx)
	require.NoError(t, err)

	if !rootA.Commitment.Equal(&rootB.Commitment) {
		t.Fatalf("root commitments differ by insertion order:\ntrieA root: %s\ntrieB root: %s",
			spew.Sdump(rootA), spew.Sdump(rootB))
	}
	require.Truef(t, rootA.Hash.Equal(&rootB.Hash), "root hashes differ by insertion order:\n%s", spew.Sdump(rootA.Hash, rootB.Hash))

	require.NoError(t, trieA.CheckValidTree(ctx))
	require.NoError(t, trieB.CheckValidTree(ctx))
}

// S5: two keys whose first three indices collide but the fourth differs,
// at width_bits=2.
func TestCollisionCascadeChain(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tr := newTestTrie(t, 2)

	var key1, key2 [32]byte
	key2[0] = 0x01 // differs from key1 only in the bottom 2 bits of the first byte

	idx1 := Indices(key1, 2)
	idx2 := Indices(key2, 2)
	for lvl := 0; lvl < 3; lvl++ {
		require.Equalf(t, idx1[lvl], idx2[lvl], "test setup invariant violated at level %d", lvl)
	}
	require.NotEqual(t, idx1[3], idx2[3], "test setup invariant violated: indices[3] should differ")

	require.NoError(t, tr.Update(ctx, key1, leKey(11)))
	require.NoError(t, tr.Update(ctx, key2, leKey(22)))

	v1, err := tr.Lookup(ctx, key1)
	require.NoError(t, err)
	require.Equal(t, leKey(11), v1)
	v2, err := tr.Lookup(ctx, key2)
	require.NoError(t, err)
	require.Equal(t, leKey(22), v2)

	require.NoError(t, tr.CheckValidTree(ctx))

	// Walk the chain directly through the store: three single-child cascade
	// inners (root + two more), then one bottom inner holding both leaves.
	cur, err := tr.Root(ctx)
	require.NoError(t, err)
	for lvl := 0; lvl < 3; lvl++ {
		require.Equalf(t, 1, cur.ChildCount(), "level %d: expected a single-child cascade inner", lvl)
		childID := cur.Children[idx1[lvl]]
		data, err := tr.cfg.Store.Get(ctx, childID)
		require.NoError(t, err)
		n, err := DecodeNode(data)
		require.NoError(t, err)
		inner, ok := n.(*InnerNode)
		require.Truef(t, ok, "level %d: child is not an inner node: %s", lvl, spew.Sdump(n))
		cur = inner
	}
	require.Equal(t, 2, cur.ChildCount(), "bottom node: expected 2 children (both leaves)")
	for _, childID := range cur.Children {
		data, err := tr.cfg.Store.Get(ctx, childID)
		require.NoError(t, err)
		n, err := DecodeNode(data)
		require.NoError(t, err)
		_, ok := n.(*LeafNode)
		require.Truef(t, ok, "bottom node's children should both be leaves: %s", spew.Sdump(n))
	}
}

func TestNewFromBatchMatchesSequentialUpdates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	seed := []byte("batch-vs-sequential")

	pairs := []KeyValue{
		{Key: leKey(1), Value: leKey(10)},
		{Key: leKey(2), Value: leKey(20)},
		{Key: leKey(3), Value: leKey(30)},
	}

	cfgA, err := NewConfig(8, store.NewMemoryStore(), seed)
	require.NoError(t, err)
	batched, err := NewFromBatch(ctx, cfgA, pairs)
	require.NoError(t, err)

	cfgB, err := NewConfig(8, store.NewMemoryStore(), seed)
	require.NoError(t, err)
	sequential := NewTrie(cfgB)
	for _, kv := range pairs {
		require.NoError(t, sequential.Update(ctx, kv.Key, kv.Value))
	}

	rootA, err := batched.Root(ctx)
	require.NoError(t, err)
	rootB, err := sequential.Root(ctx)
	require.NoError(t, err)
	if !rootA.Hash.Equal(&rootB.Hash) {
		t.Fatalf("NewFromBatch's root hash disagrees with sequential Update:\nbatched root: %s\nsequential root: %s",
			spew.Sdump(rootA), spew.Sdump(rootB))
	}
}

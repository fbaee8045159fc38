// Command verklefuzz repeatedly builds a trie from a random key/value batch
// inserted in two different orders and checks that the resulting root
// commitments agree, then deletes the batch back out in a third order and
// checks the trie returns to empty. Grounded on
// ethereum-go-verkle/cmd/fuzzinsertstemordered/main.go's insert-two-ways,
// compare-commitments loop, adapted from that tool's fixed stem/suffix
// layout to this trie's per-key Update/Delete API and extended with the
// delete-collapses-to-empty check (spec.md §8 property 3 and scenario S4).
package main

import (
	"context"
	"crypto/rand"
	"fmt"
	mrand "math/rand/v2"
	"os"

	verkle "github.com/vvlabs/verkle-trie"
	"github.com/vvlabs/verkle-trie/internal/ipa"
	"github.com/vvlabs/verkle-trie/store"
)

const (
	widthBits  = 8
	batchSize  = 2000
	maxAttempt = 1 << 30
)

func randomKV() verkle.KeyValue {
	var kv verkle.KeyValue
	if _, err := rand.Read(kv.Key[:]); err != nil {
		panic(err)
	}
	if _, err := rand.Read(kv.Value[:]); err != nil {
		panic(err)
	}
	return kv
}

func shuffled(pairs []verkle.KeyValue) []verkle.KeyValue {
	out := append([]verkle.KeyValue(nil), pairs...)
	mrand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func buildTrie(ctx context.Context, cfg *verkle.Config, order []verkle.KeyValue) (*verkle.Trie, error) {
	t := verkle.NewTrie(cfg)
	for _, kv := range order {
		if err := t.Update(ctx, kv.Key, kv.Value); err != nil {
			return nil, fmt.Errorf("update: %w", err)
		}
	}
	return t, nil
}

func run(ctx context.Context, attempt int) error {
	var basisSeed [32]byte
	if _, err := rand.Read(basisSeed[:]); err != nil {
		return err
	}

	cfgA, err := verkle.NewConfig(widthBits, store.NewMemoryStore(), basisSeed[:])
	if err != nil {
		return err
	}
	cfgB, err := verkle.NewConfig(widthBits, store.NewMemoryStore(), basisSeed[:])
	if err != nil {
		return err
	}

	pairs := make([]verkle.KeyValue, batchSize)
	for i := range pairs {
		pairs[i] = randomKV()
	}

	orderA := pairs
	orderB := shuffled(pairs)

	trieA, err := buildTrie(ctx, cfgA, orderA)
	if err != nil {
		return err
	}
	trieB, err := buildTrie(ctx, cfgB, orderB)
	if err != nil {
		return err
	}

	hashA, err := trieA.RootHash(ctx)
	if err != nil {
		return err
	}
	hashB, err := trieB.RootHash(ctx)
	if err != nil {
		return err
	}
	if !hashA.Equal(&hashB) {
		return fmt.Errorf("attempt %d: root hash differs by insertion order (%d keys)", attempt, batchSize)
	}

	if err := trieA.CheckValidTree(ctx); err != nil {
		return fmt.Errorf("attempt %d: trieA invalid after insert: %w", attempt, err)
	}
	if err := trieB.CheckValidTree(ctx); err != nil {
		return fmt.Errorf("attempt %d: trieB invalid after insert: %w", attempt, err)
	}

	deleteOrder := shuffled(pairs)
	for _, kv := range deleteOrder {
		if err := trieA.Delete(ctx, kv.Key); err != nil {
			return fmt.Errorf("attempt %d: delete: %w", attempt, err)
		}
	}
	if err := trieA.CheckValidTree(ctx); err != nil {
		return fmt.Errorf("attempt %d: trieA invalid after full delete: %w", attempt, err)
	}
	root, err := trieA.Root(ctx)
	if err != nil {
		return err
	}
	zeroPoint := ipa.ZeroPoint()
	if !root.Commitment.Equal(&zeroPoint) {
		return fmt.Errorf("attempt %d: root commitment non-identity after deleting every key", attempt)
	}

	return nil
}

func main() {
	for attempt := 0; attempt < maxAttempt; attempt++ {
		fmt.Fprintf(os.Stderr, "attempt #%d\n", attempt)
		if err := run(context.Background(), attempt); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}

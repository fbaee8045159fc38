package verkle

import (
	"testing"

	"github.com/vvlabs/verkle-trie/internal/ipa"
)

func TestLeafVectorLayout(t *testing.T) {
	t.Parallel()
	var key, value [32]byte
	key[0] = 0x01
	value[0] = 0x02
	value[16] = 0x03

	v := LeafVector(key, value)

	var one ipa.Fr
	one.SetOne()
	if !v[0].Equal(&one) {
		t.Fatalf("v[0] should be the constant 1, got %v", v[0])
	}

	var wantKey ipa.Fr
	wantKey.SetBytesLE(key[:31])
	if !v[1].Equal(&wantKey) {
		t.Fatalf("v[1] should be key[0:31] as a little-endian integer")
	}

	var wantLo, wantHi ipa.Fr
	wantLo.SetBytesLE(value[:16])
	wantHi.SetBytesLE(value[16:])
	if !v[2].Equal(&wantLo) || !v[3].Equal(&wantHi) {
		t.Fatalf("v[2]/v[3] should be the value's low/high 16-byte halves")
	}
}

func TestNewLeafCommitmentMatchesSparseCommit(t *testing.T) {
	t.Parallel()
	cfg, err := ipa.NewRandomConfig(4)
	if err != nil {
		t.Fatalf("NewRandomConfig: %v", err)
	}
	var key, value [32]byte
	key[5] = 0xAA
	value[10] = 0xBB

	l := NewLeaf(cfg, key, value)

	v := LeafVector(key, value)
	want := cfg.CommitSparse(map[int]ipa.Fr{0: v[0], 1: v[1], 2: v[2], 3: v[3]})
	if !l.Commitment.Equal(&want) {
		t.Fatalf("NewLeaf's commitment disagrees with an independently computed sparse commit")
	}
	wantHash := ipa.ToFr(&want)
	if !l.Hash.Equal(&wantHash) {
		t.Fatalf("NewLeaf's hash is not ToFr(commitment)")
	}
}

func TestInnerNodeOnlyChild(t *testing.T) {
	t.Parallel()
	n := NewEmptyInner()
	if _, _, ok := n.OnlyChild(); ok {
		t.Fatalf("empty inner node should not report an only child")
	}

	var id [32]byte
	id[0] = 7
	n.Children[3] = id
	gotIdx, gotID, ok := n.OnlyChild()
	if !ok || gotIdx != 3 || gotID != id {
		t.Fatalf("OnlyChild with one child: got (%d, %x, %v)", gotIdx, gotID, ok)
	}

	var id2 [32]byte
	id2[0] = 8
	n.Children[4] = id2
	if _, _, ok := n.OnlyChild(); ok {
		t.Fatalf("inner node with two children should not report an only child")
	}
}

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
	"bytes"
	"context"
	"fmt"
	"sort"

	"github.com/vvlabs/verkle-trie/internal/ipa"
)

// Proof is a succinct membership proof for a set of keys, per spec.md §4.7:
// a per-key depth list, the distinct non-root commitments visited during
// extraction (in the canonical order both prover and verifier derive
// independently), the g(X) commitment D, and the final single-point IPA
// opening. Grounded on ethereum-go-verkle/proof_ipa.go's
// GetCommitmentsForMultiproof/MakeVerkleMultiProof/VerifyVerkleProof
// extraction-prove-verify pipeline shape, adapted from the teacher's
// stem/suffix model to this trie's flat leaf model.
type Proof struct {
	Depths   []uint8
	CsSorted [][32]byte
	D        [32]byte
	IPAProof *ipa.Proof
}

// pairKey identifies one (commitment, child-index) opening, the
// deduplication granularity spec.md §4.7 specifies ("Deduplicate (C_node,
// i) entries").
type pairKey struct {
	C   [32]byte
	Idx int
}

func sortKeys(keys [][32]byte) [][32]byte {
	out := append([][32]byte(nil), keys...)
	sort.Slice(out, func(i, j int) bool { return bytes.Compare(out[i][:], out[j][:]) < 0 })
	return out
}

// Prove builds a multiproof of membership for keys. Proving requires the
// full trie: every key must currently be present, or Prove fails with
// ErrKeyNotFound (proof of an absent key is a defined failure per spec.md
// §4.9).
//
// Keys are processed in canonical (sorted) order regardless of the order
// the caller supplied them in, so that Verify - given the same keys in any
// order - reconstructs an identical (Cs, indices, ys) sequence and so an
// identical Fiat-Shamir transcript (spec.md §8 property 6).
func (t *Trie) Prove(ctx context.Context, keys [][32]byte) (*Proof, error) {
	cfg := t.cfg
	width := cfg.Width

	rootNode, err := t.Root(ctx)
	if err != nil {
		return nil, err
	}
	rootBytes := ipa.SerializePoint(&rootNode.Commitment)

	sortedKeys := sortKeys(keys)
	depths := make([]uint8, len(sortedKeys))

	seen := map[pairKey]int{}
	var Cs []ipa.Point
	var Fs [][]ipa.Fr
	var Indices []int
	var Ys []ipa.Fr

	csSortedSeen := map[[32]byte]bool{}
	var csSorted [][32]byte

	for ki, key := range sortedKeys {
		path := Indices(key, cfg.WidthBits)
		curNode := rootNode
		curBytes := rootBytes
		depth := 0
		reachedLeaf := false

	levelLoop:
		for _, idx := range path {
			f := make([]ipa.Fr, width)
			for ci, cid := range curNode.Children {
				childN, found, err := t.getNode(ctx, cid)
				if err != nil {
					return nil, err
				}
				if !found {
					return nil, ErrCorruption
				}
				f[ci] = childN.NodeHash()
			}

			pk := pairKey{C: curBytes, Idx: idx}
			if _, ok := seen[pk]; !ok {
				seen[pk] = len(Cs)
				Cs = append(Cs, curNode.Commitment)
				Fs = append(Fs, f)
				Indices = append(Indices, idx)
				Ys = append(Ys, f[idx])
			}

			childID, ok := curNode.Children[idx]
			if !ok {
				return nil, ErrKeyNotFound
			}
			childNode, found, err := t.getNode(ctx, childID)
			if err != nil {
				return nil, err
			}
			if !found {
				return nil, ErrCorruption
			}
			childCommit := childNode.Commit()
			childBytes := ipa.SerializePoint(&childCommit)
			if !csSortedSeen[childBytes] {
				csSortedSeen[childBytes] = true
				csSorted = append(csSorted, childBytes)
			}
			depth++

			if leaf, isLeaf := childNode.(*LeafNode); isLeaf {
				if leaf.Key != key {
					return nil, ErrKeyNotFound
				}
				lv := LeafVector(leaf.Key, leaf.Value)
				leafF := make([]ipa.Fr, width)
				leafF[0], leafF[1], leafF[2], leafF[3] = lv[0], lv[1], lv[2], lv[3]
				for li := 0; li < 4; li++ {
					pk2 := pairKey{C: childBytes, Idx: li}
					if _, ok := seen[pk2]; !ok {
						seen[pk2] = len(Cs)
						Cs = append(Cs, leaf.Commitment)
						Fs = append(Fs, leafF)
						Indices = append(Indices, li)
						Ys = append(Ys, lv[li])
					}
				}
				reachedLeaf = true
				break levelLoop
			}

			curNode = childNode.(*InnerNode)
			curBytes = childBytes
		}

		if !reachedLeaf {
			return nil, ErrKeyNotFound
		}
		depths[ki] = uint8(depth)
	}

	transcript := ipa.NewTranscript("multiproof")
	for i := range Cs {
		p := Cs[i]
		transcript.AppendPoint(&p)
	}
	for _, idx := range Indices {
		transcript.AppendUint64(uint64(idx))
	}
	transcript.AppendScalars(Ys)
	r := transcript.ChallengeScalar()

	domain := cfg.IPA.Domain
	g := make([]ipa.Fr, width)
	var rPow ipa.Fr
	rPow.SetOne()
	for j := range Cs {
		q := domain.InnerQuotient(Fs[j], Indices[j])
		for i := 0; i < width; i++ {
			var term ipa.Fr
			term.Mul(&rPow, &q[i])
			g[i].Add(&g[i], &term)
		}
		rPow.Mul(&rPow, &r)
	}
	D := cfg.IPA.Commit(g)
	transcript.AppendPoint(&D)
	tChallenge := transcript.ChallengeScalar()

	h := make([]ipa.Fr, width)
	rPow.SetOne()
	for j := range Cs {
		var denom ipa.Fr
		denom.Sub(&tChallenge, domain.At(Indices[j]))
		denom.Inverse(&denom)
		var coeff ipa.Fr
		coeff.Mul(&rPow, &denom)
		for i := 0; i < width; i++ {
			var term ipa.Fr
			term.Mul(&coeff, &Fs[j][i])
			h[i].Add(&h[i], &term)
		}
		rPow.Mul(&rPow, &r)
	}

	hMinusG := make([]ipa.Fr, width)
	for i := 0; i < width; i++ {
		hMinusG[i].Sub(&h[i], &g[i])
	}

	var negOne ipa.Fr
	negOne.SetOne()
	negOne.Neg(&negOne)
	negD := ipa.ScalarMul(&D, &negOne)
	E := cfg.IPA.Commit(h)
	EminusD := ipa.Add(&E, &negD)

	evalAtT := domain.Evaluate(hMinusG, &tChallenge)

	transcript.AppendPoint(&EminusD)
	transcript.AppendScalar(&tChallenge)
	transcript.AppendScalar(&evalAtT)

	ipaProof := ipa.CreateProof(transcript, cfg.IPA, hMinusG, tChallenge)

	return &Proof{
		Depths:   depths,
		CsSorted: csSorted,
		D:        ipa.SerializePoint(&D),
		IPAProof: ipaProof,
	}, nil
}

// Verify checks a multiproof against a known root commitment and the
// claimed (keys, values), without needing access to the trie's store.
// Mirrors spec.md §4.7's verify steps 1-5.
func Verify(ctx context.Context, cfg *Config, rootCommitment ipa.Point, keys, values [][32]byte, proof *Proof) (bool, error) {
	if len(keys) != len(values) {
		return false, fmt.Errorf("%w: keys/values length mismatch", ErrProofMalformed)
	}
	if len(keys) != len(proof.Depths) {
		return false, fmt.Errorf("%w: depths length mismatch", ErrProofMalformed)
	}

	sortedKeys, sortedValues, err := sortKeysWithValues(keys, values)
	if err != nil {
		return false, err
	}

	rootBytes := ipa.SerializePoint(&rootCommitment)
	pointCache := map[[32]byte]ipa.Point{rootBytes: rootCommitment}
	getPoint := func(b [32]byte) (ipa.Point, error) {
		if p, ok := pointCache[b]; ok {
			return p, nil
		}
		p, err := ipa.DeserializePoint(b[:])
		if err != nil {
			return ipa.Point{}, fmt.Errorf("%w: invalid commitment bytes", ErrProofMalformed)
		}
		pointCache[b] = p
		return p, nil
	}

	childOf := map[pairKey][32]byte{}
	cursor := 0

	seen := map[pairKey]int{}
	var Cs []ipa.Point
	var Indices []int
	var Ys []ipa.Fr

	for ki, key := range sortedKeys {
		depth := int(proof.Depths[ki])
		path := Indices(key, cfg.WidthBits)
		if depth > len(path) {
			return false, fmt.Errorf("%w: depth exceeds maximum path length", ErrProofMalformed)
		}
		curBytes := rootBytes

		for level := 0; level < depth; level++ {
			idx := path[level]
			pk := pairKey{C: curBytes, Idx: idx}

			childBytes, known := childOf[pk]
			if !known {
				if cursor >= len(proof.CsSorted) {
					return false, fmt.Errorf("%w: Cs_sorted exhausted", ErrProofMalformed)
				}
				childBytes = proof.CsSorted[cursor]
				cursor++
				childOf[pk] = childBytes
			}

			childPoint, err := getPoint(childBytes)
			if err != nil {
				return false, err
			}
			y := ipa.ToFr(&childPoint)

			if _, ok := seen[pk]; !ok {
				curPoint, err := getPoint(curBytes)
				if err != nil {
					return false, err
				}
				seen[pk] = len(Cs)
				Cs = append(Cs, curPoint)
				Indices = append(Indices, idx)
				Ys = append(Ys, y)
			}
			curBytes = childBytes
		}

		lv := LeafVector(key, sortedValues[ki])
		for li := 0; li < 4; li++ {
			pk := pairKey{C: curBytes, Idx: li}
			if _, ok := seen[pk]; !ok {
				leafPoint, err := getPoint(curBytes)
				if err != nil {
					return false, err
				}
				seen[pk] = len(Cs)
				Cs = append(Cs, leafPoint)
				Indices = append(Indices, li)
				Ys = append(Ys, lv[li])
			}
		}
	}
	if cursor != len(proof.CsSorted) {
		return false, fmt.Errorf("%w: Cs_sorted has unconsumed entries", ErrProofMalformed)
	}

	transcript := ipa.NewTranscript("multiproof")
	for i := range Cs {
		p := Cs[i]
		transcript.AppendPoint(&p)
	}
	for _, idx := range Indices {
		transcript.AppendUint64(uint64(idx))
	}
	transcript.AppendScalars(Ys)
	r := transcript.ChallengeScalar()

	D, err := ipa.DeserializePoint(proof.D[:])
	if err != nil {
		return false, fmt.Errorf("%w: invalid D", ErrProofMalformed)
	}
	transcript.AppendPoint(&D)
	tChallenge := transcript.ChallengeScalar()

	domain := cfg.IPA.Domain
	var g2t ipa.Fr
	coeffs := make([]ipa.Fr, len(Cs))
	var rPow ipa.Fr
	rPow.SetOne()
	for j := range Cs {
		var denom ipa.Fr
		denom.Sub(&tChallenge, domain.At(Indices[j]))
		denom.Inverse(&denom)
		var e ipa.Fr
		e.Mul(&rPow, &denom)
		coeffs[j] = e

		var term ipa.Fr
		term.Mul(&e, &Ys[j])
		g2t.Add(&g2t, &term)

		rPow.Mul(&rPow, &r)
	}

	E := ipa.MSM(Cs, coeffs)

	var negOne ipa.Fr
	negOne.SetOne()
	negOne.Neg(&negOne)
	negD := ipa.ScalarMul(&D, &negOne)
	EminusD := ipa.Add(&E, &negD)

	transcript.AppendPoint(&EminusD)
	transcript.AppendScalar(&tChallenge)
	transcript.AppendScalar(&g2t)

	return ipa.VerifyProof(transcript, cfg.IPA, &EminusD, tChallenge, g2t, proof.IPAProof), nil
}

func sortKeysWithValues(keys, values [][32]byte) ([][32]byte, [][32]byte, error) {
	type kv struct {
		k, v [32]byte
	}
	pairs := make([]kv, len(keys))
	for i := range keys {
		pairs[i] = kv{keys[i], values[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return bytes.Compare(pairs[i].k[:], pairs[j].k[:]) < 0 })
	sk := make([][32]byte, len(pairs))
	sv := make([][32]byte, len(pairs))
	for i, p := range pairs {
		sk[i] = p.k
		sv[i] = p.v
	}
	return sk, sv, nil
}

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

package ipa

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"

	"github.com/crate-crypto/go-ipa/banderwagon"
)

// Point is a commitment-curve group element (a Pedersen commitment, a basis
// point, or an IPA transcript element).
type Point = banderwagon.Element

// ErrInvalidPoint is returned when a serialized point fails to deserialize
// to a valid curve element.
var ErrInvalidPoint = errors.New("ipa: invalid serialized point")

// ZeroPoint returns the group identity element.
func ZeroPoint() Point {
	var p Point
	p.SetIdentity()
	return p
}

// SerializePoint compresses a point to its canonical 32-byte encoding.
func SerializePoint(p *Point) [32]byte {
	return p.Bytes()
}

// DeserializePoint decompresses a 32-byte encoding back to a point. The
// input is treated as untrusted (subgroup-checked on decode).
func DeserializePoint(buf []byte) (Point, error) {
	var p Point
	if err := p.SetBytes(buf, false); err != nil {
		return Point{}, ErrInvalidPoint
	}
	return p, nil
}

// ScalarMul returns scalar*base.
func ScalarMul(base *Point, scalar *Fr) Point {
	var out Point
	out.ScalarMul(base, scalar)
	return out
}

// Add returns a+b.
func Add(a, b *Point) Point {
	var out Point
	out.Add(a, b)
	return out
}

// MSM computes the multi-scalar-multiplication sum_i scalars[i]*points[i].
//
// go-ipa's own multi-scalar-mul entry points are sized for the Ethereum
// mainnet configuration's fixed 256-wide SRS; since Config here supports an
// arbitrary configured width, MSM is our own accumulation loop over the
// wired Add/ScalarMul primitives rather than a hand-rolled curve
// implementation.
func MSM(points []Point, scalars []Fr) Point {
	acc := ZeroPoint()
	for i := range points {
		if scalars[i].IsZero() {
			continue
		}
		term := ScalarMul(&points[i], &scalars[i])
		acc = Add(&acc, &term)
	}
	return acc
}

// ToFr maps a commitment to its scalar-field "hash": the field reduction of
// the little-endian integer representation of the point's compressed
// serialization, per spec.md §3 ("hash = LE(commitment.serialize()) mod
// MODULUS"). Mirrors ethereum-go-verkle/crypto/crypto.go's ToFr
// (p.MapToScalarField(fr)).
func ToFr(p *Point) Fr {
	var out Fr
	p.MapToScalarField(&out)
	return out
}

// Basis is the shared Pedersen basis (G) and auxiliary point (Q) a trie's
// Config commits against. Basis generation is a placeholder random basis,
// per spec.md §1 Non-goals ("reproducible Pedersen basis derivation... a
// placeholder random basis is acceptable so long as prover and verifier
// share it") - mirrors verkle_trie_new.py's generate_basis, which samples
// fresh non-generator points rather than deriving them via hash-to-curve.
type Basis struct {
	G []Point
	Q Point
}

// NewBasis derives a deterministic basis of `width` G points plus Q from a
// seed. Determinism lets a single Config be reconstructed identically
// (e.g. across process restarts against the same store) without needing a
// reproducible hash-to-curve construction: each basis point is an
// independently-seeded scalar multiple of the curve generator.
func NewBasis(width int, seed []byte) *Basis {
	gen := banderwagon.Generator()
	b := &Basis{G: make([]Point, width)}
	for i := 0; i < width; i++ {
		s := basisScalar(seed, "G", uint64(i))
		b.G[i] = ScalarMul(&gen, &s)
	}
	qs := basisScalar(seed, "Q", 0)
	b.Q = ScalarMul(&gen, &qs)
	return b
}

// NewRandomBasis derives a basis from fresh cryptographic randomness,
// matching the Python prototype's per-construction Point(generator=False)
// sampling: the basis differs across trie instances but is fixed and
// shared for the lifetime of any one instance.
func NewRandomBasis(width int) *Basis {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		panic("ipa: failed to read randomness for basis generation: " + err.Error())
	}
	return NewBasis(width, seed[:])
}

func basisScalar(seed []byte, label string, index uint64) Fr {
	h := sha256.New()
	h.Write(seed)
	h.Write([]byte(label))
	var idx [8]byte
	binary.LittleEndian.PutUint64(idx[:], index)
	h.Write(idx[:])
	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return HashToFr(digest)
}

// PedersenCommit commits to a dense vector v (len(v) == len(basis.G)) as
// sum_i v[i]*G[i].
func PedersenCommit(basis *Basis, v []Fr) Point {
	return MSM(basis.G, v)
}

// PedersenCommitSparse commits to a sparse vector given as index->scalar,
// skipping absent indices (equivalent to treating them as zero). Mirrors
// verkle_trie_new.py's pedersen_commit_sparse, used for leaf and inner node
// commitments where most slots are empty.
func PedersenCommitSparse(basis *Basis, values map[int]Fr) Point {
	acc := ZeroPoint()
	for i, s := range values {
		if s.IsZero() {
			continue
		}
		term := ScalarMul(&basis.G[i], &s)
		acc = Add(&acc, &term)
	}
	return acc
}

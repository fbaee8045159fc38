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

// Package ipa implements the scalar-field, curve and polynomial-commitment
// primitives the verkle trie core is built on: a Pedersen vector commitment
// over a fixed evaluation domain, and a logarithmic-size inner-product
// argument for single-point and multi-point evaluation proofs.
//
// The domain size (WIDTH) is configurable per Config, unlike the fixed
// 256-wide Ethereum verkle configuration that github.com/crate-crypto/go-ipa
// ships with; the prover/verifier math here is written generically over
// WIDTH instead of reusing that library's fixed SRS.
package ipa

import (
	"github.com/crate-crypto/go-ipa/bandersnatch/fr"
)

// Fr is a scalar-field element of the commitment curve.
type Fr = fr.Element

// Domain holds the fixed evaluation domain used to represent child-slot
// vectors as polynomials in Lagrange form, plus the barycentric weights
// needed to evaluate/divide polynomials given only in evaluation form.
//
// DOMAIN[i] = Fr(i) for i in [0, width). spec.md requires only "a fixed
// evaluation domain...of distinct field elements" (ADR: §3); it does not
// require a multiplicative subgroup of roots of unity, which the scalar
// field has no guaranteed subgroup of for every configurable width up to
// 2^12. The consecutive-integer domain satisfies the distinctness
// requirement for any width the field can represent, which is always true
// since width is at most 4096 and the field modulus is far larger.
type Domain struct {
	width   int
	points  []Fr
	weights []Fr // barycentric weight w[i] = 1 / prod_{j!=i} (points[i]-points[j])
}

// NewDomain builds the evaluation domain and its barycentric weights for a
// trie of the given width. It is expensive (O(width^2)) and is meant to be
// called once per Config and shared thereafter.
func NewDomain(width int) *Domain {
	d := &Domain{
		width:  width,
		points: make([]Fr, width),
	}
	for i := 0; i < width; i++ {
		d.points[i].SetUint64(uint64(i))
	}
	d.weights = make([]Fr, width)
	for i := 0; i < width; i++ {
		var prod Fr
		prod.SetOne()
		for j := 0; j < width; j++ {
			if i == j {
				continue
			}
			var diff Fr
			diff.Sub(&d.points[i], &d.points[j])
			prod.Mul(&prod, &diff)
		}
		d.weights[i].Inverse(&prod)
	}
	return d
}

// Width returns the number of points in the domain.
func (d *Domain) Width() int { return d.width }

// At returns the i-th domain point.
func (d *Domain) At(i int) *Fr { return &d.points[i] }

// Weight returns the i-th barycentric weight.
func (d *Domain) Weight(i int) *Fr { return &d.weights[i] }

// Evaluate evaluates a polynomial given in evaluation form (f[i] = poly(DOMAIN[i]))
// at an arbitrary field element z using the barycentric formula. If z equals
// a domain point, the corresponding evaluation is returned directly.
func (d *Domain) Evaluate(f []Fr, z *Fr) Fr {
	for i := range d.points {
		if d.points[i].Equal(z) {
			return f[i]
		}
	}

	var numerator Fr
	numerator.SetOne()
	for i := range d.points {
		var diff Fr
		diff.Sub(z, &d.points[i])
		numerator.Mul(&numerator, &diff)
	}

	var acc Fr
	for i := range f {
		var denom Fr
		denom.Sub(z, &d.points[i])
		denom.Inverse(&denom)
		var term Fr
		term.Mul(&d.weights[i], &f[i])
		term.Mul(&term, &denom)
		acc.Add(&acc, &term)
	}
	acc.Mul(&acc, &numerator)
	return acc
}

// BarycentricCoefficients returns, for an arbitrary evaluation point z, the
// vector b such that for any polynomial f given in evaluation form,
// poly(z) = sum_i f[i]*b[i]. Used by the IPA prover/verifier to open at a
// point outside the domain without materializing coefficient form.
func (d *Domain) BarycentricCoefficients(z *Fr) []Fr {
	for i := range d.points {
		if d.points[i].Equal(z) {
			b := make([]Fr, d.width)
			b[i].SetOne()
			return b
		}
	}

	var aZ Fr
	aZ.SetOne()
	for i := range d.points {
		var diff Fr
		diff.Sub(z, &d.points[i])
		aZ.Mul(&aZ, &diff)
	}

	b := make([]Fr, d.width)
	for i := range d.points {
		var denom Fr
		denom.Sub(z, &d.points[i])
		denom.Inverse(&denom)
		b[i].Mul(&d.weights[i], &aZ)
		b[i].Mul(&b[i], &denom)
	}
	return b
}

// InnerQuotient computes, in evaluation form over the domain, the quotient
// polynomial q(X) = (f(X) - f(DOMAIN[index])) / (X - DOMAIN[index]).
//
// For i != index this is the direct evaluation-form division
// (f[i]-y)/(DOMAIN[i]-DOMAIN[index]); for i == index it uses the barycentric
// derivative identity q(DOMAIN[index]) = -(1/w[index]) * sum_{i!=index} w[i]*q[i],
// which follows from differentiating the Lagrange interpolation of f at
// DOMAIN[index]. This generalizes ethereum-go-verkle/config.go's
// innerQuotients (there specialized to a roots-of-unity domain) to the
// plain consecutive-integer domain used here.
func (d *Domain) InnerQuotient(f []Fr, index int) []Fr {
	q := make([]Fr, d.width)
	y := f[index]

	var sum Fr
	for i := 0; i < d.width; i++ {
		if i == index {
			continue
		}
		var num Fr
		num.Sub(&f[i], &y)
		var den Fr
		den.Sub(&d.points[i], &d.points[index])
		den.Inverse(&den)
		q[i].Mul(&num, &den)

		var contrib Fr
		contrib.Mul(&d.weights[i], &q[i])
		sum.Add(&sum, &contrib)
	}

	var indexWeightInv Fr
	indexWeightInv.Inverse(&d.weights[index])
	var qIndex Fr
	qIndex.Mul(&sum, &indexWeightInv)
	qIndex.Neg(&qIndex)
	q[index] = qIndex

	return q
}

// HashToFr reduces a 32-byte digest into a scalar-field element, treating
// the digest as a little-endian integer. Mirrors
// ethereum-go-verkle/tree.go's hashToFr, generalized to the banderwagon
// scalar field's native little-endian SetBytesLE.
func HashToFr(digest [32]byte) Fr {
	var out Fr
	out.SetBytesLE(digest[:])
	return out
}

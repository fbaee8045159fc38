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

// Proof is a logarithmic-size opening proof that a Pedersen-committed
// vector, evaluated as a polynomial in Lagrange form over Config.Domain,
// takes a claimed value at a claimed (possibly out-of-domain) point.
//
// Round i folds the current generator/vector pair in half, recording one
// (L,R) pair; after log2(width) rounds a single scalar A remains. Mirrors
// the structure of ethereum-go-verkle/ipa.go's CreateIPAProof, adapted from
// the teacher's fixed 256-wide bandersnatch.PointAffine basis to our
// Config-parameterized banderwagon.Element basis.
type Proof struct {
	L []Point
	R []Point
	A Fr
}

// CreateProof builds an opening proof for f (the committed vector, given in
// evaluation form over cfg.Domain) at evalPoint, given the commitment's
// opening transcript state already seeded by the caller (the multiproof
// engine appends the commitment, point and claimed value before calling
// this so the first round challenge binds to them).
//
// f and cfg.Basis.G are consumed (copied) internally; the caller's slices
// are left untouched.
func CreateProof(transcript *Transcript, cfg *Config, f []Fr, evalPoint Fr) *Proof {
	n := cfg.Width
	a := make([]Fr, n)
	copy(a, f)
	b := cfg.Domain.BarycentricCoefficients(&evalPoint)
	g := make([]Point, n)
	copy(g, cfg.Basis.G)
	q := cfg.Basis.Q

	proof := &Proof{}

	for n > 1 {
		half := n / 2

		var zL, zR Fr
		zL = innerProduct(a[:half], b[half:])
		zR = innerProduct(a[half:], b[:half])

		cL := commitHalf(g[half:], a[:half])
		cR := commitHalf(g[:half], a[half:])

		var qzL, qzR Point
		qzL = ScalarMul(&q, &zL)
		qzR = ScalarMul(&q, &zR)
		l := Add(&cL, &qzL)
		r := Add(&cR, &qzR)

		transcript.AppendPoint(&l)
		transcript.AppendPoint(&r)
		x := transcript.ChallengeScalar()

		var xInv Fr
		xInv.Inverse(&x)

		a = foldScalars(a[:half], a[half:], x)
		b = foldScalars(b[:half], b[half:], xInv)
		g = foldPoints(g[:half], g[half:], xInv)

		proof.L = append(proof.L, l)
		proof.R = append(proof.R, r)
		n = half
	}

	proof.A = a[0]
	return proof
}

func innerProduct(a, b []Fr) Fr {
	var acc Fr
	for i := range a {
		var term Fr
		term.Mul(&a[i], &b[i])
		acc.Add(&acc, &term)
	}
	return acc
}

func commitHalf(g []Point, a []Fr) Point {
	return MSM(g, a)
}

// foldScalars returns left[i] + x*right[i] for each i.
func foldScalars(left, right []Fr, x Fr) []Fr {
	out := make([]Fr, len(left))
	for i := range left {
		var term Fr
		term.Mul(&x, &right[i])
		out[i].Add(&left[i], &term)
	}
	return out
}

// foldPoints returns left[i] + x*right[i] for each i.
func foldPoints(left, right []Point, x Fr) []Point {
	out := make([]Point, len(left))
	for i := range left {
		term := ScalarMul(&right[i], &x)
		out[i] = Add(&left[i], &term)
	}
	return out
}

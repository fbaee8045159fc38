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

// VerifyProof checks that proof opens commitment C to value y at evalPoint,
// under cfg. The transcript passed in must have been seeded identically to
// the one used by CreateProof (same prior appends), so that the replayed
// challenges match the prover's.
func VerifyProof(transcript *Transcript, cfg *Config, commitment *Point, evalPoint, y Fr, proof *Proof) bool {
	n := cfg.Width
	if len(proof.L) != len(proof.R) {
		return false
	}
	rounds := len(proof.L)
	if (1 << uint(rounds)) != n {
		return false
	}

	b := cfg.Domain.BarycentricCoefficients(&evalPoint)
	g := make([]Point, n)
	copy(g, cfg.Basis.G)

	qy := ScalarMul(&cfg.Basis.Q, &y)
	current := Add(commitment, &qy)

	for i := 0; i < rounds; i++ {
		l := proof.L[i]
		r := proof.R[i]
		transcript.AppendPoint(&l)
		transcript.AppendPoint(&r)
		x := transcript.ChallengeScalar()

		var xInv Fr
		xInv.Inverse(&x)

		// The prover folds a' = a_L + x*a_R and G' = G_L + x^-1*G_R, so the
		// folded commitment is current + x^-1*L + x*R.
		lTerm := ScalarMul(&l, &xInv)
		rTerm := ScalarMul(&r, &x)
		current = Add(&current, &lTerm)
		current = Add(&current, &rTerm)

		half := n / 2
		b = foldScalars(b[:half], b[half:], xInv)
		g = foldPoints(g[:half], g[half:], xInv)
		n = half
	}

	if n != 1 {
		return false
	}

	expectedG := ScalarMul(&g[0], &proof.A)
	var ab Fr
	ab.Mul(&proof.A, &b[0])
	expectedQ := ScalarMul(&cfg.Basis.Q, &ab)
	expected := Add(&expectedG, &expectedQ)

	return expected.Equal(&current)
}

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

import "crypto/sha256"

// Transcript accumulates the prover/verifier's shared view of a proof to
// derive Fiat-Shamir challenge scalars. Mirrors
// ethereum-go-verkle/transcript.go's sha256-based AppendScalar/AppendPoint/
// ChallengeScalar, generalized from BLS Fr/G1Point to the banderwagon
// Fr/Point pair used here.
type Transcript struct {
	state []byte
}

// NewTranscript starts a transcript seeded with a domain-separation label,
// matching the "multiproof" label go-ipa's common.NewTranscript uses.
func NewTranscript(label string) *Transcript {
	return &Transcript{state: []byte(label)}
}

// AppendScalar appends a field element's canonical encoding to the transcript.
func (t *Transcript) AppendScalar(s *Fr) {
	b := s.Bytes()
	t.state = append(t.state, b[:]...)
}

// AppendScalars appends a slice of field elements in order.
func (t *Transcript) AppendScalars(ss []Fr) {
	for i := range ss {
		t.AppendScalar(&ss[i])
	}
}

// AppendPoint appends a point's compressed encoding to the transcript.
func (t *Transcript) AppendPoint(p *Point) {
	b := SerializePoint(p)
	t.state = append(t.state, b[:]...)
}

// AppendPoints appends a slice of points in order.
func (t *Transcript) AppendPoints(ps []Point) {
	for i := range ps {
		t.AppendPoint(&ps[i])
	}
}

// AppendUint64 appends an index/count value, used when the transcript needs
// to bind to non-scalar data such as chosen child indices.
func (t *Transcript) AppendUint64(v uint64) {
	var buf [8]byte
	for i := 0; i < 8; i++ {
		buf[i] = byte(v >> (8 * i))
	}
	t.state = append(t.state, buf[:]...)
}

// ChallengeScalar hashes the current transcript state down to a single
// field element and folds the challenge back into the state, so that
// subsequent challenges depend on all prior ones (standard Fiat-Shamir
// chaining).
func (t *Transcript) ChallengeScalar() Fr {
	digest := sha256.Sum256(t.state)
	challenge := HashToFr(digest)
	t.state = append(t.state, digest[:]...)
	return challenge
}

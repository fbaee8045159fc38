package ipa

import (
	"testing"
)

func TestDomainBarycentricAtDomainPoint(t *testing.T) {
	t.Parallel()
	d := NewDomain(16)
	f := make([]Fr, 16)
	for i := range f {
		f[i].SetUint64(uint64(i * i))
	}
	for i := 0; i < 16; i++ {
		got := d.Evaluate(f, d.At(i))
		if !got.Equal(&f[i]) {
			t.Fatalf("Evaluate at domain point %d: got %v, want %v", i, got, f[i])
		}
	}
}

func TestDomainEvaluateMatchesBarycentricCoefficients(t *testing.T) {
	t.Parallel()
	d := NewDomain(8)
	f := make([]Fr, 8)
	for i := range f {
		f[i].SetUint64(uint64(3*i + 7))
	}

	var z Fr
	z.SetUint64(100)

	want := d.Evaluate(f, &z)

	b := d.BarycentricCoefficients(&z)
	var got Fr
	for i := range f {
		var term Fr
		term.Mul(&b[i], &f[i])
		got.Add(&got, &term)
	}

	if !got.Equal(&want) {
		t.Fatalf("barycentric-coefficient sum disagrees with Evaluate: got %v, want %v", got, want)
	}
}

func TestInnerQuotientIdentity(t *testing.T) {
	t.Parallel()
	d := NewDomain(8)
	f := make([]Fr, 8)
	for i := range f {
		f[i].SetUint64(uint64(i*i + 1))
	}

	for index := 0; index < 8; index++ {
		q := d.InnerQuotient(f, index)
		y := f[index]

		var z Fr
		z.SetUint64(55)
		qz := d.Evaluate(q, &z)

		var lhs Fr
		lhs.Sub(&z, d.At(index))
		lhs.Mul(&lhs, &qz)

		var rhs Fr
		fz := d.Evaluate(f, &z)
		rhs.Sub(&fz, &y)

		if !lhs.Equal(&rhs) {
			t.Fatalf("index %d: (z-domain[i])*q(z) = %v, want f(z)-y = %v", index, lhs, rhs)
		}
	}
}

func TestHashToFrDeterministic(t *testing.T) {
	t.Parallel()
	var digest [32]byte
	for i := range digest {
		digest[i] = byte(i)
	}
	a := HashToFr(digest)
	b := HashToFr(digest)
	if !a.Equal(&b) {
		t.Fatalf("HashToFr not deterministic")
	}
}

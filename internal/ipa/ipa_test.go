package ipa

import "testing"

func TestCreateAndVerifyProof(t *testing.T) {
	t.Parallel()
	width := 8
	cfg, err := NewRandomConfig(width)
	if err != nil {
		t.Fatalf("NewRandomConfig: %v", err)
	}

	f := make([]Fr, width)
	for i := range f {
		f[i].SetUint64(uint64(i*i + 3))
	}
	commitment := cfg.Commit(f)

	var evalPoint Fr
	evalPoint.SetUint64(1000)
	y := cfg.Domain.Evaluate(f, &evalPoint)

	proveTranscript := NewTranscript("test-ipa")
	proof := CreateProof(proveTranscript, cfg, f, evalPoint)

	verifyTranscript := NewTranscript("test-ipa")
	if !VerifyProof(verifyTranscript, cfg, &commitment, evalPoint, y, proof) {
		t.Fatalf("honest proof failed to verify")
	}
}

func TestVerifyProofRejectsWrongValue(t *testing.T) {
	t.Parallel()
	width := 8
	cfg, err := NewRandomConfig(width)
	if err != nil {
		t.Fatalf("NewRandomConfig: %v", err)
	}

	f := make([]Fr, width)
	for i := range f {
		f[i].SetUint64(uint64(2*i + 1))
	}
	commitment := cfg.Commit(f)

	var evalPoint Fr
	evalPoint.SetUint64(42)
	y := cfg.Domain.Evaluate(f, &evalPoint)

	proveTranscript := NewTranscript("test-ipa-reject")
	proof := CreateProof(proveTranscript, cfg, f, evalPoint)

	var wrongY Fr
	wrongY.SetUint64(1)
	wrongY.Add(&wrongY, &y)

	verifyTranscript := NewTranscript("test-ipa-reject")
	if VerifyProof(verifyTranscript, cfg, &commitment, evalPoint, wrongY, proof) {
		t.Fatalf("proof verified against a tampered claimed value")
	}
}

func TestVerifyProofRejectsMismatchedTranscriptSeed(t *testing.T) {
	t.Parallel()
	width := 4
	cfg, err := NewRandomConfig(width)
	if err != nil {
		t.Fatalf("NewRandomConfig: %v", err)
	}

	f := make([]Fr, width)
	for i := range f {
		f[i].SetUint64(uint64(i))
	}
	commitment := cfg.Commit(f)

	var evalPoint Fr
	evalPoint.SetUint64(5)
	y := cfg.Domain.Evaluate(f, &evalPoint)

	proveTranscript := NewTranscript("label-a")
	proof := CreateProof(proveTranscript, cfg, f, evalPoint)

	verifyTranscript := NewTranscript("label-b")
	if VerifyProof(verifyTranscript, cfg, &commitment, evalPoint, y, proof) {
		t.Fatalf("proof verified under a differently-seeded transcript")
	}
}

func TestNewConfigCachesByWidth(t *testing.T) {
	t.Parallel()
	seed := []byte("config-cache-seed")
	a, err := NewConfig(16, seed)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	b, err := NewConfig(16, seed)
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}
	if a != b {
		t.Fatalf("NewConfig did not return the cached Config for a repeat width")
	}
}

func TestNewConfigRejectsUnsupportedWidth(t *testing.T) {
	t.Parallel()
	if _, err := NewConfig(1, nil); err == nil {
		t.Fatalf("expected an error for width below the supported minimum")
	}
	if _, err := NewConfig(1<<20, nil); err == nil {
		t.Fatalf("expected an error for width above the supported maximum")
	}
}

package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
)

func TestEd25519Verifier_ValidSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	msg := []byte("slot 42 attested")
	sig := ed25519.Sign(priv, msg)

	v := Ed25519Verifier{}
	if !v.Verify(pub, msg, sig) {
		t.Error("valid signature did not verify")
	}
}

func TestEd25519Verifier_Failures(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	msg := []byte("slot 42 attested")
	sig := ed25519.Sign(priv, msg)

	v := Ed25519Verifier{}

	tests := []struct {
		name   string
		pubkey []byte
		msg    []byte
		sig    []byte
	}{
		{"flipped signature byte", pub, msg, flipByte(sig, 0)},
		{"different message", pub, []byte("slot 43 attested"), sig},
		{"short pubkey", pub[:31], msg, sig},
		{"short signature", pub, msg, sig[:63]},
		{"empty everything", nil, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if v.Verify(tt.pubkey, tt.msg, tt.sig) {
				t.Error("verification succeeded, want failure")
			}
		})
	}
}

func TestSignatureVerifier_Switch(t *testing.T) {
	orig := DefaultSignatureVerifier()
	defer SetSignatureVerifier(orig)

	if orig.Name() != "ed25519-stdlib" {
		t.Errorf("default verifier = %q, want ed25519-stdlib", orig.Name())
	}

	prev := SetSignatureVerifier(rejectAllVerifier{})
	if prev != orig {
		t.Error("SetSignatureVerifier did not return the previous verifier")
	}
	if DefaultSignatureVerifier().Name() != "reject-all" {
		t.Error("replacement verifier not active")
	}

	// nil must be a no-op.
	SetSignatureVerifier(nil)
	if DefaultSignatureVerifier().Name() != "reject-all" {
		t.Error("SetSignatureVerifier(nil) replaced the verifier")
	}
}

type rejectAllVerifier struct{}

func (rejectAllVerifier) Verify(pubkey, msg, sig []byte) bool { return false }
func (rejectAllVerifier) Name() string                        { return "reject-all" }

// flipByte returns a copy of b with bit 0 of b[i] inverted.
func flipByte(b []byte, i int) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	out[i] ^= 0x01
	return out
}

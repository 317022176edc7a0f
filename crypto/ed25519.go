package crypto

import (
	"crypto/ed25519"
	"sync"
)

// Ed25519 key and signature sizes.
const (
	Ed25519PubkeyLength    = ed25519.PublicKeySize
	Ed25519SignatureLength = ed25519.SignatureSize
)

// SignatureVerifier abstracts single-signature verification so the vote
// checking logic is portable across host signature backends (native
// precompile, batched verifier, ...).
type SignatureVerifier interface {
	// Verify reports whether sig is a valid signature by pubkey over msg.
	// Malformed keys or signatures verify as false, never panic.
	Verify(pubkey, msg, sig []byte) bool

	// Name returns a human-readable name for the backend.
	Name() string
}

// Ed25519Verifier implements SignatureVerifier with the standard library's
// Ed25519.
type Ed25519Verifier struct{}

// Verify reports whether sig is a valid Ed25519 signature by pubkey over msg.
func (Ed25519Verifier) Verify(pubkey, msg, sig []byte) bool {
	if len(pubkey) != Ed25519PubkeyLength || len(sig) != Ed25519SignatureLength {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pubkey), msg, sig)
}

// Name returns the backend identifier.
func (Ed25519Verifier) Name() string { return "ed25519-stdlib" }

// activeSigVerifier is the currently selected signature verifier.
var (
	activeSigMu       sync.RWMutex
	activeSigVerifier SignatureVerifier = Ed25519Verifier{}
)

// DefaultSignatureVerifier returns the currently active signature verifier.
func DefaultSignatureVerifier() SignatureVerifier {
	activeSigMu.RLock()
	defer activeSigMu.RUnlock()
	return activeSigVerifier
}

// SetSignatureVerifier replaces the active signature verifier. A nil value
// is ignored. Returns the previous verifier so callers can restore it.
func SetSignatureVerifier(v SignatureVerifier) SignatureVerifier {
	activeSigMu.Lock()
	defer activeSigMu.Unlock()
	prev := activeSigVerifier
	if v != nil {
		activeSigVerifier = v
	}
	return prev
}

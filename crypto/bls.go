// BLS12-381 backend selection for sync-committee signature verification.
//
// The bridge consumes Ethereum's MinPk scheme:
//   - Public keys in G1 (48-byte compressed)
//   - Signatures in G2 (96-byte compressed)
//   - DST: BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_
//   - Hash-to-curve: SHA-256 based expand_message_xmd
//
// Two backends are provided: GnarkBLSBackend (pure Go, gnark-crypto) is the
// default; a blst-based adapter is available behind the "blst" build tag for
// deployments that can take the CGO dependency. The active backend can be
// switched at runtime via SetBLSBackend, which is useful for testing.
package crypto

import (
	"errors"
	"sync"
)

// Key and signature sizes for the MinPk scheme.
const (
	BLSPubkeyLength    = 48 // compressed G1
	BLSSignatureLength = 96 // compressed G2
)

// BLSSignatureDST is the domain separation tag used for Ethereum BLS
// signatures following the proof-of-possession scheme.
var BLSSignatureDST = []byte("BLS_SIG_BLS12381G2_XMD:SHA-256_SSWU_RO_POP_")

// BLS format validation errors.
var (
	ErrBLSInvalidPubkeyLen = errors.New("bls: pubkey must be 48 bytes")
	ErrBLSInvalidSigLen    = errors.New("bls: signature must be 96 bytes")
	ErrBLSPubkeyInfinity   = errors.New("bls: pubkey is point at infinity")
)

// BLSBackend is the interface for BLS12-381 signature verification.
// Implementations may use pure-Go arithmetic or optimized native libraries
// such as blst.
type BLSBackend interface {
	// Verify checks a single BLS signature.
	// pubkey: 48-byte compressed G1, msg: arbitrary message, sig: 96-byte
	// compressed G2.
	Verify(pubkey, msg, sig []byte) bool

	// AggregateVerify checks an aggregate signature where each signer signed
	// a different message. pubkeys[i] signed msgs[i], and sig is the
	// aggregate.
	AggregateVerify(pubkeys, msgs [][]byte, sig []byte) bool

	// FastAggregateVerify checks an aggregate signature where all signers
	// signed the same message. This is the common case for sync-committee
	// attestations.
	FastAggregateVerify(pubkeys [][]byte, msg, sig []byte) bool

	// Name returns a human-readable name for the backend.
	Name() string
}

// activeBLSBackend is the currently selected BLS backend.
var (
	activeBLSMu      sync.RWMutex
	activeBLSBackend BLSBackend = &GnarkBLSBackend{}
)

// DefaultBLSBackend returns the currently active BLS backend.
func DefaultBLSBackend() BLSBackend {
	activeBLSMu.RLock()
	defer activeBLSMu.RUnlock()
	return activeBLSBackend
}

// SetBLSBackend replaces the active BLS backend. A nil value is ignored.
// Returns the previous backend so callers can restore it.
func SetBLSBackend(b BLSBackend) BLSBackend {
	activeBLSMu.Lock()
	defer activeBLSMu.Unlock()
	prev := activeBLSBackend
	if b != nil {
		activeBLSBackend = b
	}
	return prev
}

// IsBLSPubkeyInfinity reports whether a compressed pubkey is the canonical
// point-at-infinity encoding (0xc0 followed by zeros). Such keys never sign
// anything and are rejected by both backends.
func IsBLSPubkeyInfinity(pubkey []byte) bool {
	if len(pubkey) != BLSPubkeyLength || pubkey[0] != 0xc0 {
		return false
	}
	for _, b := range pubkey[1:] {
		if b != 0 {
			return false
		}
	}
	return true
}

// Package crypto provides the cryptographic primitives the bridge consumes:
// Keccak-256 and SHA-256 digests, Ed25519 vote-signature verification, and a
// pluggable BLS12-381 backend for sync-committee aggregates. Curve
// arithmetic is supplied by libraries; nothing here implements field or
// group operations.
package crypto

import (
	"crypto/sha256"

	"golang.org/x/crypto/sha3"

	"github.com/zkbridge/zkbridge/core/types"
)

// Keccak256 calculates the Keccak-256 hash of the given data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash calculates Keccak-256 and returns it as a types.Hash.
func Keccak256Hash(data ...[]byte) types.Hash {
	return types.BytesToHash(Keccak256(data...))
}

// Sha256 calculates the SHA-256 hash of the given data.
func Sha256(data ...[]byte) []byte {
	d := sha256.New()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Sha256Hash calculates SHA-256 and returns it as a types.Hash.
func Sha256Hash(data ...[]byte) types.Hash {
	return types.BytesToHash(Sha256(data...))
}

// Hasher abstracts the digest used for identifier derivation so hosts with
// different native hashes can supply their own. The two chains pin their
// protocol hashes (Keccak-256 for MPT nodes, SHA-256 for Solana merkle
// paths); Hasher covers the derivations that are bridge policy rather than
// chain protocol, such as transfer IDs.
type Hasher interface {
	// Hash digests the concatenation of data.
	Hash(data ...[]byte) types.Hash
	// Name returns a human-readable name for the hash function.
	Name() string
}

// KeccakHasher implements Hasher with Keccak-256.
type KeccakHasher struct{}

// Hash digests the concatenation of data with Keccak-256.
func (KeccakHasher) Hash(data ...[]byte) types.Hash { return Keccak256Hash(data...) }

// Name returns "keccak256".
func (KeccakHasher) Name() string { return "keccak256" }

// Sha256Hasher implements Hasher with SHA-256.
type Sha256Hasher struct{}

// Hash digests the concatenation of data with SHA-256.
func (Sha256Hasher) Hash(data ...[]byte) types.Hash { return Sha256Hash(data...) }

// Name returns "sha256".
func (Sha256Hasher) Name() string { return "sha256" }

// Package groth16 verifies Groth16 proofs over BN254. It checks the
// pairing product e(-A,B) * e(Alpha,Beta) * e(vk_x,Gamma) * e(C,Delta) == 1
// where vk_x = IC[0] + sum(input[i] * IC[i+1]).
//
// Proofs arrive as 256-byte blobs in the uncompressed EVM precompile
// layout: A (64 bytes) || B (128 bytes) || C (64 bytes), coordinates
// big-endian with G2 imaginary parts first. Verifying keys round-trip
// through JSON and carry a SHA-256 fingerprint for operator checks.
//
// The pairing engine is pluggable; the default uses gnark-crypto.
package groth16

import (
	"errors"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"
)

// Proof and encoding sizes in bytes.
const (
	ProofSize = 256
	WordSize  = 32

	g1Size = 64
	g2Size = 128
)

// ErrProofInvalid reports a proof the pairing check rejected, or one
// too malformed to check. Callers that need a single verdict wrap
// their rejection in this sentinel.
var ErrProofInvalid = errors.New("groth16: proof invalid")

// Groth16 errors.
var (
	ErrNilVK          = errors.New("groth16: nil verifying key")
	ErrVKIncomplete   = errors.New("groth16: verifying key has points at infinity")
	ErrNoIC           = errors.New("groth16: verifying key has no IC points")
	ErrInvalidVKPoint = errors.New("groth16: invalid verifying key point")
	ErrProofSize      = errors.New("groth16: proof blob must be 256 bytes")
	ErrInvalidA       = errors.New("groth16: invalid proof point A")
	ErrInvalidB       = errors.New("groth16: invalid proof point B")
	ErrInvalidC       = errors.New("groth16: invalid proof point C")
	ErrInputCount     = errors.New("groth16: public input count mismatch")
	ErrPairing        = errors.New("groth16: pairing computation failed")
)

// Proof is a decoded Groth16 proof: A and C in G1, B in G2.
type Proof struct {
	A bn254.G1Affine
	B bn254.G2Affine
	C bn254.G1Affine
}

// VerifyingKey holds the circuit verification key. IC[0] is the
// constant term; IC[1..n] pair with the n public inputs.
type VerifyingKey struct {
	Alpha bn254.G1Affine
	Beta  bn254.G2Affine
	Gamma bn254.G2Affine
	Delta bn254.G2Affine
	IC    []bn254.G1Affine
}

// NumInputs returns the number of public inputs the key expects.
func (vk *VerifyingKey) NumInputs() int {
	if len(vk.IC) == 0 {
		return 0
	}
	return len(vk.IC) - 1
}

// Validate rejects keys that cannot verify anything: a nil key, a key
// without IC points, or one whose core points sit at infinity. An
// all-zero placeholder key fails here rather than verifying proofs
// vacuously.
func (vk *VerifyingKey) Validate() error {
	if vk == nil {
		return ErrNilVK
	}
	if vk.Alpha.IsInfinity() || vk.Beta.IsInfinity() || vk.Gamma.IsInfinity() || vk.Delta.IsInfinity() {
		return ErrVKIncomplete
	}
	if len(vk.IC) == 0 {
		return ErrNoIC
	}
	return nil
}

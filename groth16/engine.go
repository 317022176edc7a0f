package groth16

import (
	"fmt"
	"math/big"
	"sync"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
)

// Engine performs the pairing side of Groth16 verification. Verify
// returns (false, nil) for a well-formed proof that fails the pairing
// equation; errors are reserved for malformed keys and inputs.
type Engine interface {
	Verify(vk *VerifyingKey, proof *Proof, inputs []fr.Element) (bool, error)
	Name() string
}

var (
	engineMu     sync.RWMutex
	activeEngine Engine = &GnarkEngine{}
)

// DefaultEngine returns the active pairing engine.
func DefaultEngine() Engine {
	engineMu.RLock()
	defer engineMu.RUnlock()
	return activeEngine
}

// SetEngine replaces the active pairing engine and returns the previous
// one. A nil engine is ignored.
func SetEngine(e Engine) Engine {
	engineMu.Lock()
	defer engineMu.Unlock()
	prev := activeEngine
	if e != nil {
		activeEngine = e
	}
	return prev
}

// Verify decodes a 256-byte proof blob and checks it against the key
// and public inputs using the active engine.
func Verify(vk *VerifyingKey, proofBlob []byte, inputs []fr.Element) (bool, error) {
	proof, err := DecodeProof(proofBlob)
	if err != nil {
		return false, err
	}
	return DefaultEngine().Verify(vk, proof, inputs)
}

// GnarkEngine verifies via gnark-crypto's BN254 pairing.
type GnarkEngine struct{}

// Name identifies the engine.
func (e *GnarkEngine) Name() string { return "gnark-bn254" }

// Verify checks e(-A,B) * e(Alpha,Beta) * e(vk_x,Gamma) * e(C,Delta) == 1.
func (e *GnarkEngine) Verify(vk *VerifyingKey, proof *Proof, inputs []fr.Element) (bool, error) {
	if err := vk.Validate(); err != nil {
		return false, err
	}
	if len(inputs) != len(vk.IC)-1 {
		return false, fmt.Errorf("%w: got %d inputs for %d slots", ErrInputCount, len(inputs), len(vk.IC)-1)
	}

	// vk_x = IC[0] + sum(inputs[i] * IC[i+1])
	var acc bn254.G1Jac
	acc.FromAffine(&vk.IC[0])
	for i := range inputs {
		if inputs[i].IsZero() {
			continue
		}
		var s big.Int
		inputs[i].BigInt(&s)
		var term bn254.G1Affine
		term.ScalarMultiplication(&vk.IC[i+1], &s)
		var termJac bn254.G1Jac
		termJac.FromAffine(&term)
		acc.AddAssign(&termJac)
	}
	var vkx bn254.G1Affine
	vkx.FromJacobian(&acc)

	var negA bn254.G1Affine
	negA.Neg(&proof.A)

	ok, err := bn254.PairingCheck(
		[]bn254.G1Affine{negA, vk.Alpha, vkx, proof.C},
		[]bn254.G2Affine{proof.B, vk.Beta, vk.Gamma, vk.Delta},
	)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrPairing, err)
	}
	return ok, nil
}

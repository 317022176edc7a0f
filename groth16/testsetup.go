package groth16

import (
	"encoding/binary"
	"fmt"
	"math/big"

	bn254 "github.com/consensys/gnark-crypto/ecc/bn254"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"

	"github.com/zkbridge/zkbridge/crypto"
)

var _, _, g1Gen, g2Gen = bn254.Generators()

// TestSetup is a deterministic Groth16 setup whose trapdoor scalars
// are known to the holder, so it can construct proofs that satisfy the
// pairing equation without running a prover. That makes honest-pass
// and tamper-reject fixtures cheap. It is insecure by construction and
// exists for tests and self-checks only.
type TestSetup struct {
	VK *VerifyingKey

	alpha fr.Element
	beta  fr.Element
	gamma fr.Element
	delta fr.Element
	ic    []fr.Element
	seed  []byte
}

// NewTestSetup derives a setup for numInputs public inputs. The same
// seed always yields the same key and the same proofs.
func NewTestSetup(seed []byte, numInputs int) *TestSetup {
	ts := &TestSetup{
		seed:  append([]byte(nil), seed...),
		alpha: deriveScalar(seed, "alpha", 0),
		beta:  deriveScalar(seed, "beta", 0),
		gamma: deriveScalar(seed, "gamma", 0),
		delta: deriveScalar(seed, "delta", 0),
		ic:    make([]fr.Element, numInputs+1),
	}
	ic := make([]bn254.G1Affine, numInputs+1)
	for i := range ts.ic {
		ts.ic[i] = deriveScalar(seed, "ic", uint32(i))
		ic[i] = g1Scalar(&ts.ic[i])
	}
	ts.VK = &VerifyingKey{
		Alpha: g1Scalar(&ts.alpha),
		Beta:  g2Scalar(&ts.beta),
		Gamma: g2Scalar(&ts.gamma),
		Delta: g2Scalar(&ts.delta),
		IC:    ic,
	}
	return ts
}

// Prove builds a 256-byte proof blob for the given public inputs.
func (ts *TestSetup) Prove(inputs []fr.Element) ([]byte, error) {
	if len(inputs) != len(ts.ic)-1 {
		return nil, fmt.Errorf("%w: got %d inputs for %d slots", ErrInputCount, len(inputs), len(ts.ic)-1)
	}

	// k mirrors the discrete log of vk_x: ic[0] + sum(x_i * ic[i+1]).
	var k fr.Element
	k.Set(&ts.ic[0])
	for i := range inputs {
		var t fr.Element
		t.Mul(&inputs[i], &ts.ic[i+1])
		k.Add(&k, &t)
	}

	// Bind c and t to the inputs so proofs are deterministic.
	transcript := make([]byte, 0, len(ts.seed)+len(inputs)*WordSize)
	transcript = append(transcript, ts.seed...)
	for i := range inputs {
		b := inputs[i].Bytes()
		transcript = append(transcript, b[:]...)
	}
	c := deriveScalar(transcript, "c", 0)
	t := deriveScalar(transcript, "t", 0)

	// With A = t*G1 and B = s*G2, the equation
	// e(A,B) = e(alpha,beta) * e(vk_x,gamma) * e(C,delta)
	// holds exactly when t*s = alpha*beta + k*gamma + c*delta.
	var s, tmp fr.Element
	s.Mul(&ts.alpha, &ts.beta)
	tmp.Mul(&k, &ts.gamma)
	s.Add(&s, &tmp)
	tmp.Mul(&c, &ts.delta)
	s.Add(&s, &tmp)
	var tInv fr.Element
	tInv.Inverse(&t)
	s.Mul(&s, &tInv)

	return EncodeProof(&Proof{
		A: g1Scalar(&t),
		B: g2Scalar(&s),
		C: g1Scalar(&c),
	}), nil
}

func deriveScalar(seed []byte, label string, i uint32) fr.Element {
	var idx [4]byte
	binary.BigEndian.PutUint32(idx[:], i)
	h := crypto.Sha256(seed, []byte(label), idx[:])
	var e fr.Element
	e.SetBytes(h)
	if e.IsZero() {
		e.SetOne()
	}
	return e
}

func g1Scalar(s *fr.Element) bn254.G1Affine {
	var bi big.Int
	s.BigInt(&bi)
	var p bn254.G1Affine
	p.ScalarMultiplication(&g1Gen, &bi)
	return p
}

func g2Scalar(s *fr.Element) bn254.G2Affine {
	var bi big.Int
	s.BigInt(&bi)
	var p bn254.G2Affine
	p.ScalarMultiplication(&g2Gen, &bi)
	return p
}

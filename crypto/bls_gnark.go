package crypto

import (
	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
)

// g1GenNeg is the negated G1 generator, precomputed for the pairing check
// e(pk, H(m)) * e(-g1, sig) == 1.
var g1GenNeg bls12381.G1Affine

func init() {
	_, _, g1Gen, _ := bls12381.Generators()
	g1GenNeg.Neg(&g1Gen)
}

// GnarkBLSBackend implements BLSBackend with gnark-crypto's BLS12-381
// arithmetic. It is pure Go and needs no build tags, at roughly an order of
// magnitude slower verification than blst.
type GnarkBLSBackend struct{}

// Name returns the backend identifier.
func (b *GnarkBLSBackend) Name() string { return "gnark-bls12381" }

// Verify checks a single BLS signature.
func (b *GnarkBLSBackend) Verify(pubkey, msg, sig []byte) bool {
	return b.FastAggregateVerify([][]byte{pubkey}, msg, sig)
}

// FastAggregateVerify checks an aggregate signature where all signers signed
// the same message. The pubkeys are summed in G1 and a single pairing check
// decides validity.
func (b *GnarkBLSBackend) FastAggregateVerify(pubkeys [][]byte, msg, sig []byte) bool {
	if len(pubkeys) == 0 {
		return false
	}
	s, err := decodeBLSSignature(sig)
	if err != nil {
		return false
	}

	var agg bls12381.G1Jac
	for i, pkBytes := range pubkeys {
		pk, err := decodeBLSPubkey(pkBytes)
		if err != nil {
			return false
		}
		var j bls12381.G1Jac
		j.FromAffine(&pk)
		if i == 0 {
			agg.Set(&j)
		} else {
			agg.AddAssign(&j)
		}
	}
	var aggAff bls12381.G1Affine
	aggAff.FromJacobian(&agg)

	hm, err := bls12381.HashToG2(msg, BLSSignatureDST)
	if err != nil {
		return false
	}
	ok, err := bls12381.PairingCheck(
		[]bls12381.G1Affine{aggAff, g1GenNeg},
		[]bls12381.G2Affine{hm, s},
	)
	return err == nil && ok
}

// AggregateVerify checks an aggregate signature where each signer signed a
// different message: e(pk_1,H(m_1)) ... e(pk_n,H(m_n)) * e(-g1,sig) == 1.
func (b *GnarkBLSBackend) AggregateVerify(pubkeys, msgs [][]byte, sig []byte) bool {
	n := len(pubkeys)
	if n == 0 || n != len(msgs) {
		return false
	}
	s, err := decodeBLSSignature(sig)
	if err != nil {
		return false
	}

	ps := make([]bls12381.G1Affine, 0, n+1)
	qs := make([]bls12381.G2Affine, 0, n+1)
	for i := 0; i < n; i++ {
		pk, err := decodeBLSPubkey(pubkeys[i])
		if err != nil {
			return false
		}
		hm, err := bls12381.HashToG2(msgs[i], BLSSignatureDST)
		if err != nil {
			return false
		}
		ps = append(ps, pk)
		qs = append(qs, hm)
	}
	ps = append(ps, g1GenNeg)
	qs = append(qs, s)

	ok, err := bls12381.PairingCheck(ps, qs)
	return err == nil && ok
}

// decodeBLSPubkey parses a 48-byte compressed G1 public key. SetBytes
// performs the on-curve and subgroup checks; the point at infinity is
// rejected separately since it can never have signed anything.
func decodeBLSPubkey(buf []byte) (bls12381.G1Affine, error) {
	var pk bls12381.G1Affine
	if len(buf) != BLSPubkeyLength {
		return pk, ErrBLSInvalidPubkeyLen
	}
	if IsBLSPubkeyInfinity(buf) {
		return pk, ErrBLSPubkeyInfinity
	}
	if _, err := pk.SetBytes(buf); err != nil {
		return pk, err
	}
	if pk.IsInfinity() {
		return pk, ErrBLSPubkeyInfinity
	}
	return pk, nil
}

// decodeBLSSignature parses a 96-byte compressed G2 signature with full
// on-curve and subgroup checks.
func decodeBLSSignature(buf []byte) (bls12381.G2Affine, error) {
	var s bls12381.G2Affine
	if len(buf) != BLSSignatureLength {
		return s, ErrBLSInvalidSigLen
	}
	if _, err := s.SetBytes(buf); err != nil {
		return s, err
	}
	return s, nil
}

package crypto

import (
	"errors"
	"math/big"

	bls12381 "github.com/consensys/gnark-crypto/ecc/bls12-381"
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
)

// Errors returned by the BLS signing helpers.
var (
	ErrBLSEmptyIKM         = errors.New("bls: ikm must not be empty")
	ErrBLSInvalidSecretKey = errors.New("bls: invalid secret key bytes")
	ErrBLSNoSignatures     = errors.New("bls: no signatures to aggregate")
	ErrBLSNoPubkeys        = errors.New("bls: no pubkeys to aggregate")
)

// BLSSecretKeyLength is the serialized scalar size.
const BLSSecretKeyLength = 32

// BLSKeyGen derives a key pair deterministically from input key material by
// reducing its SHA-256 digest into the scalar field. This serves fixtures,
// simulated committees and the CLI self-check; it is not the HKDF key
// generation of RFC 9380 and must not be used for real keys.
func BLSKeyGen(ikm []byte) (pubkey, secret []byte, err error) {
	if len(ikm) == 0 {
		return nil, nil, ErrBLSEmptyIKM
	}
	var sk fr.Element
	sk.SetBytes(Sha256(ikm))
	if sk.IsZero() {
		sk.SetOne()
	}

	var skBig big.Int
	sk.BigInt(&skBig)

	_, _, g1Gen, _ := bls12381.Generators()
	var pk bls12381.G1Affine
	pk.ScalarMultiplication(&g1Gen, &skBig)

	pkBytes := pk.Bytes()
	skBytes := sk.Bytes()
	return pkBytes[:], skBytes[:], nil
}

// BLSSign signs a message with a 32-byte serialized secret key, returning
// the 96-byte compressed signature sk * H(msg).
func BLSSign(secret, msg []byte) ([]byte, error) {
	if len(secret) != BLSSecretKeyLength {
		return nil, ErrBLSInvalidSecretKey
	}
	var sk fr.Element
	sk.SetBytes(secret)
	if sk.IsZero() {
		return nil, ErrBLSInvalidSecretKey
	}
	var skBig big.Int
	sk.BigInt(&skBig)

	hm, err := bls12381.HashToG2(msg, BLSSignatureDST)
	if err != nil {
		return nil, err
	}
	var sig bls12381.G2Affine
	sig.ScalarMultiplication(&hm, &skBig)

	sigBytes := sig.Bytes()
	return sigBytes[:], nil
}

// BLSAggregateSignatures sums compressed signatures into a single 96-byte
// aggregate.
func BLSAggregateSignatures(sigs [][]byte) ([]byte, error) {
	if len(sigs) == 0 {
		return nil, ErrBLSNoSignatures
	}
	var agg bls12381.G2Jac
	for i, sigBytes := range sigs {
		s, err := decodeBLSSignature(sigBytes)
		if err != nil {
			return nil, err
		}
		var j bls12381.G2Jac
		j.FromAffine(&s)
		if i == 0 {
			agg.Set(&j)
		} else {
			agg.AddAssign(&j)
		}
	}
	var aggAff bls12381.G2Affine
	aggAff.FromJacobian(&agg)
	out := aggAff.Bytes()
	return out[:], nil
}

// BLSAggregatePubkeys sums compressed public keys into a single 48-byte
// aggregate. The validator-set root commits to this aggregate.
func BLSAggregatePubkeys(pubkeys [][]byte) ([]byte, error) {
	if len(pubkeys) == 0 {
		return nil, ErrBLSNoPubkeys
	}
	var agg bls12381.G1Jac
	for i, pkBytes := range pubkeys {
		pk, err := decodeBLSPubkey(pkBytes)
		if err != nil {
			return nil, err
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
	out := aggAff.Bytes()
	return out[:], nil
}

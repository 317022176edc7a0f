//go:build blst

// BLS12-381 adapter using the supranational/blst library.
//
// Production deployments that can take the CGO dependency get blst's
// verification speed; the scheme and DST match the gnark backend, so the
// two are interchangeable.
//
// Build with: go build -tags blst
// Test with:  go test -tags blst ./crypto/ -run Blst
package crypto

import (
	blst "github.com/supranational/blst/bindings/go"
)

// BlstBLSBackend implements BLSBackend using the supranational/blst library
// with the MinPk scheme (PK in G1, Sig in G2).
type BlstBLSBackend struct{}

// UseBlstBackend installs the blst backend as the active BLS backend and
// returns the previous one.
func UseBlstBackend() BLSBackend {
	return SetBLSBackend(&BlstBLSBackend{})
}

// Name returns the backend identifier.
func (b *BlstBLSBackend) Name() string {
	return "blst"
}

// Verify checks a single BLS signature using blst. pubkey must be 48-byte
// compressed G1, sig must be 96-byte compressed G2.
func (b *BlstBLSBackend) Verify(pubkey, msg, sig []byte) bool {
	if len(pubkey) != BLSPubkeyLength || len(sig) != BLSSignatureLength {
		return false
	}
	if IsBLSPubkeyInfinity(pubkey) {
		return false
	}

	pk := new(blst.P1Affine).Uncompress(pubkey)
	if pk == nil {
		return false
	}
	s := new(blst.P2Affine).Uncompress(sig)
	if s == nil {
		return false
	}
	return s.Verify(true, pk, true, msg, BLSSignatureDST)
}

// AggregateVerify checks an aggregate signature where each signer signed a
// different message. pubkeys[i] signed msgs[i], and sig is the aggregate
// signature over all of them.
func (b *BlstBLSBackend) AggregateVerify(pubkeys, msgs [][]byte, sig []byte) bool {
	n := len(pubkeys)
	if n == 0 || n != len(msgs) || len(sig) != BLSSignatureLength {
		return false
	}

	s := new(blst.P2Affine).Uncompress(sig)
	if s == nil {
		return false
	}

	pks := make([]*blst.P1Affine, n)
	for i, pkBytes := range pubkeys {
		if IsBLSPubkeyInfinity(pkBytes) {
			return false
		}
		pks[i] = new(blst.P1Affine).Uncompress(pkBytes)
		if pks[i] == nil {
			return false
		}
	}

	// blst.Message is just []byte, so msgs ([][]byte) maps directly.
	blstMsgs := make([]blst.Message, n)
	for i, m := range msgs {
		blstMsgs[i] = m
	}

	return s.AggregateVerify(true, pks, true, blstMsgs, BLSSignatureDST)
}

// FastAggregateVerify checks an aggregate signature where all signers signed
// the same message.
func (b *BlstBLSBackend) FastAggregateVerify(pubkeys [][]byte, msg, sig []byte) bool {
	n := len(pubkeys)
	if n == 0 || len(sig) != BLSSignatureLength {
		return false
	}

	s := new(blst.P2Affine).Uncompress(sig)
	if s == nil {
		return false
	}

	pks := make([]*blst.P1Affine, n)
	for i, pkBytes := range pubkeys {
		if IsBLSPubkeyInfinity(pkBytes) {
			return false
		}
		pks[i] = new(blst.P1Affine).Uncompress(pkBytes)
		if pks[i] == nil {
			return false
		}
	}

	return s.FastAggregateVerify(true, pks, msg, BLSSignatureDST)
}

package trie

import (
	"fmt"

	"github.com/zkbridge/zkbridge/core/types"
	"github.com/zkbridge/zkbridge/crypto"
)

// Solana transaction inclusion uses a binary Merkle tree over SHA-256
// with order-independent pair hashing: each parent is the hash of its
// children sorted bytewise. Proofs are sibling lists from leaf to
// root and need no position bits.

// SolanaSignatureLen is the size of an ed25519 transaction signature.
const SolanaSignatureLen = 64

// SolanaCombine hashes a node pair in sorted order.
func SolanaCombine(a, b types.Hash) types.Hash {
	if lessHash(b, a) {
		a, b = b, a
	}
	return crypto.Sha256Hash(a[:], b[:])
}

func lessHash(a, b types.Hash) bool {
	for i := 0; i < len(a); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// SolanaTxHash derives the inclusion leaf for a transaction from its
// first signature.
func SolanaTxHash(signature []byte) (types.Hash, error) {
	if len(signature) != SolanaSignatureLen {
		return types.Hash{}, fmt.Errorf("trie: signature of %d bytes, want %d", len(signature), SolanaSignatureLen)
	}
	return crypto.Sha256Hash(signature), nil
}

// VerifySolanaInclusion checks a sibling path from leaf up to root.
func VerifySolanaInclusion(root, leaf types.Hash, siblings []types.Hash) error {
	acc := leaf
	for _, sib := range siblings {
		acc = SolanaCombine(acc, sib)
	}
	if acc != root {
		return ErrRootMismatch
	}
	return nil
}

// SolanaMerkleRoot builds the tree over leaves. Odd nodes at any
// level are promoted unchanged. An empty leaf set has a zero root.
func SolanaMerkleRoot(leaves []types.Hash) types.Hash {
	if len(leaves) == 0 {
		return types.Hash{}
	}
	level := append([]types.Hash(nil), leaves...)
	for len(level) > 1 {
		next := make([]types.Hash, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			next = append(next, SolanaCombine(level[i], level[i+1]))
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		level = next
	}
	return level[0]
}

// SolanaMerkleProof returns the sibling path for leaves[index].
func SolanaMerkleProof(leaves []types.Hash, index int) ([]types.Hash, error) {
	if index < 0 || index >= len(leaves) {
		return nil, fmt.Errorf("trie: leaf index %d out of range [0,%d)", index, len(leaves))
	}
	var siblings []types.Hash
	level := append([]types.Hash(nil), leaves...)
	pos := index
	for len(level) > 1 {
		if sib := pos ^ 1; sib < len(level) {
			siblings = append(siblings, level[sib])
		}
		next := make([]types.Hash, 0, (len(level)+1)/2)
		for i := 0; i+1 < len(level); i += 2 {
			next = append(next, SolanaCombine(level[i], level[i+1]))
		}
		if len(level)%2 == 1 {
			next = append(next, level[len(level)-1])
		}
		level = next
		pos /= 2
	}
	return siblings, nil
}

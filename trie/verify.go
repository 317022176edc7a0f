package trie

import (
	"bytes"
	"fmt"

	"github.com/zkbridge/zkbridge/core/types"
	"github.com/zkbridge/zkbridge/crypto"
)

// VerifyProof walks an ordered proof from root to leaf and returns
// the value stored at key. Every hash-referenced node is checked
// against the reference before its contents are trusted; the first
// node must hash to root. A proof that cleanly shows the key absent
// returns (nil, nil). Malformed nodes, hash mismatches, truncated or
// oversized proofs return an error.
func VerifyProof(root types.Hash, key []byte, proof [][]byte) ([]byte, error) {
	val, used, err := VerifyProofPrefix(root, key, proof)
	if err != nil {
		return nil, err
	}
	if used != len(proof) {
		return nil, ErrProofExcess
	}
	return val, nil
}

// VerifyProofPrefix is VerifyProof for a proof followed by further
// nodes: it reports how many elements the walk consumed and ignores
// the remainder. Chained proofs, an account trie walk continued into
// the account's storage trie, verify the second stage against
// proof[consumed:]. consumed is meaningful only when err is nil.
func VerifyProofPrefix(root types.Hash, key []byte, proof [][]byte) (value []byte, consumed int, err error) {
	if len(proof) == 0 {
		return nil, 0, ErrProofEmpty
	}
	hexKey := keybytesToHex(key)
	wantHash := root[:]
	pos := 0

	var current []byte
	embedded := false
	for {
		if embedded {
			embedded = false
		} else {
			if pos >= len(proof) {
				return nil, 0, ErrProofTruncated
			}
			current = proof[pos]
			pos++
			if h := crypto.Keccak256(current); !bytes.Equal(h, wantHash) {
				return nil, 0, fmt.Errorf("%w: node %d", ErrHashMismatch, pos-1)
			}
		}

		items, err := splitListItems(current)
		if err != nil {
			return nil, 0, err
		}
		switch len(items) {
		case 2:
			nodeKey, err := splitValue(items[0])
			if err != nil {
				return nil, 0, err
			}
			nodePath := compactToHex(nodeKey)
			if hasTerm(nodePath) {
				// Leaf: the remaining key must match exactly.
				if !bytes.Equal(nodePath, hexKey) {
					return nil, pos, nil
				}
				val, err := splitValue(items[1])
				if err != nil {
					return nil, 0, err
				}
				return val, pos, nil
			}
			// Extension: consume the shared path, then follow the child.
			if len(nodePath) > len(hexKey) || !bytes.Equal(nodePath, hexKey[:len(nodePath)]) {
				return nil, pos, nil
			}
			hexKey = hexKey[len(nodePath):]
			kind, ref, err := classifyChild(items[1])
			if err != nil {
				return nil, 0, err
			}
			switch kind {
			case childHash:
				wantHash = ref
			case childEmbedded:
				current = ref
				embedded = true
			default:
				return nil, 0, fmt.Errorf("%w: extension without child", ErrMalformedNode)
			}

		case 17:
			if len(hexKey) == 0 {
				return nil, 0, fmt.Errorf("%w: key exhausted at branch", ErrMalformedNode)
			}
			nibble := hexKey[0]
			if nibble == terminatorByte {
				// Value stored at the branch itself.
				val, err := splitValue(items[16])
				if err != nil {
					return nil, 0, err
				}
				if len(val) == 0 {
					return nil, pos, nil
				}
				return val, pos, nil
			}
			hexKey = hexKey[1:]
			kind, ref, err := classifyChild(items[int(nibble)])
			if err != nil {
				return nil, 0, err
			}
			switch kind {
			case childEmpty:
				return nil, pos, nil
			case childHash:
				wantHash = ref
			case childEmbedded:
				current = ref
				embedded = true
			}

		default:
			return nil, 0, fmt.Errorf("%w: %d items", ErrMalformedNode, len(items))
		}
	}
}

// VerifyValue checks that proof demonstrates key holding exactly
// expected under root. Equality is taken over the hashes of the two
// values. Absence, a differing value, or any structural failure
// returns an error.
func VerifyValue(root types.Hash, key, expected []byte, proof [][]byte) error {
	val, err := VerifyProof(root, key, proof)
	if err != nil {
		return err
	}
	if val == nil {
		return fmt.Errorf("%w: key absent", ErrPathMismatch)
	}
	if crypto.Keccak256Hash(val) != crypto.Keccak256Hash(expected) {
		return ErrValueMismatch
	}
	return nil
}

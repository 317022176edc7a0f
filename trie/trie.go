// Package trie implements Merkle-Patricia Trie proof verification for
// EVM account and storage proofs, plus the sorted-pair SHA-256
// inclusion scheme used for Solana transaction proofs.
//
// Verification is stateless: VerifyProof walks an ordered node list
// against a root hash without a backing database. The in-memory Trie
// exists to build tries and generate proofs for fixtures and
// expected-state computations; it supports insertion only.
package trie

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/zkbridge/zkbridge/core/types"
	"github.com/zkbridge/zkbridge/crypto"
)

// ErrProofFailed is the umbrella for every proof rejection. The
// granular sentinels below wrap it, so callers match a specific
// failure or the whole family with errors.Is.
var ErrProofFailed = errors.New("trie: proof failed")

// Trie errors.
var (
	ErrNotFound   = errors.New("trie: key not found")
	ErrWireFormat = errors.New("trie: malformed proof encoding")

	ErrProofEmpty     = fmt.Errorf("%w: empty proof", ErrProofFailed)
	ErrProofTruncated = fmt.Errorf("%w: truncated", ErrProofFailed)
	ErrProofExcess    = fmt.Errorf("%w: unused nodes", ErrProofFailed)
	ErrHashMismatch   = fmt.Errorf("%w: node hash mismatch", ErrProofFailed)
	ErrMalformedNode  = fmt.Errorf("%w: malformed node", ErrProofFailed)
	ErrPathMismatch   = fmt.Errorf("%w: path mismatch", ErrProofFailed)
	ErrValueMismatch  = fmt.Errorf("%w: value mismatch", ErrProofFailed)
	ErrRootMismatch   = fmt.Errorf("%w: root mismatch", ErrProofFailed)
)

// Node types for the in-memory trie. Keys on shortNode are hex nibble
// sequences; a trailing terminator marks a leaf.
type node interface{}

type (
	fullNode  struct{ Children [17]node }
	shortNode struct {
		Key []byte
		Val node
	}
	valueNode []byte
)

// Trie is a minimal in-memory Merkle-Patricia Trie.
type Trie struct {
	root node
}

// NewTrie creates an empty trie.
func NewTrie() *Trie {
	return &Trie{}
}

// Update inserts or overwrites a key-value pair. Values must be
// non-empty; the builder does not support deletion.
func (t *Trie) Update(key, value []byte) {
	if len(value) == 0 {
		return
	}
	hexKey := keybytesToHex(key)
	t.root = t.insert(t.root, hexKey, valueNode(value))
}

func (t *Trie) insert(n node, key []byte, value node) node {
	if len(key) == 0 {
		return value
	}
	switch n := n.(type) {
	case nil:
		return &shortNode{Key: key, Val: value}

	case *shortNode:
		matchlen := prefixLen(key, n.Key)
		if matchlen == len(n.Key) {
			n.Val = t.insert(n.Val, key[matchlen:], value)
			return n
		}
		// Diverge: split into a branch under the common prefix.
		branch := &fullNode{}
		branch.Children[n.Key[matchlen]] = t.insert(nil, n.Key[matchlen+1:], n.Val)
		branch.Children[key[matchlen]] = t.insert(nil, key[matchlen+1:], value)
		if matchlen == 0 {
			return branch
		}
		return &shortNode{Key: key[:matchlen], Val: branch}

	case *fullNode:
		n.Children[key[0]] = t.insert(n.Children[key[0]], key[1:], value)
		return n

	default:
		// valueNode in the path means the key extends past an existing
		// leaf, which the builder does not support.
		return n
	}
}

// Hash returns the root hash of the trie. An empty trie hashes to
// keccak256(rlp("")).
func (t *Trie) Hash() types.Hash {
	if t.root == nil {
		return emptyRoot
	}
	enc := encodeNode(t.root)
	return crypto.Keccak256Hash(enc)
}

// emptyRoot is the hash of an empty trie: keccak256(0x80).
var emptyRoot = crypto.Keccak256Hash([]byte{0x80})

// Prove generates a proof for key: the encoded nodes along the path
// from the root to the leaf, omitting nodes embedded inside their
// parent. Returns ErrNotFound if the key is not in the trie.
func (t *Trie) Prove(key []byte) ([][]byte, error) {
	if t.root == nil {
		return nil, ErrNotFound
	}
	hexKey := keybytesToHex(key)
	var proof [][]byte
	if !t.prove(t.root, hexKey, &proof, true) {
		return nil, ErrNotFound
	}
	return proof, nil
}

func (t *Trie) prove(n node, key []byte, proof *[][]byte, hashed bool) bool {
	switch n := n.(type) {
	case nil:
		return false

	case *shortNode:
		if hashed {
			*proof = append(*proof, encodeNode(n))
		}
		if len(key) < len(n.Key) || prefixLen(key, n.Key) != len(n.Key) {
			return false
		}
		if _, ok := n.Val.(valueNode); ok {
			return len(key) == len(n.Key)
		}
		return t.prove(n.Val, key[len(n.Key):], proof, childHashed(n.Val))

	case *fullNode:
		if hashed {
			*proof = append(*proof, encodeNode(n))
		}
		if len(key) == 0 {
			return false
		}
		idx := key[0]
		if idx == terminatorByte {
			return n.Children[16] != nil
		}
		child := n.Children[idx]
		if child == nil {
			return false
		}
		if _, ok := child.(valueNode); ok {
			return false
		}
		return t.prove(child, key[1:], proof, childHashed(child))

	default:
		return false
	}
}

// childHashed reports whether a child node is referenced by hash in
// its parent (encoding of 32 bytes or more) rather than embedded.
func childHashed(n node) bool {
	if _, ok := n.(valueNode); ok {
		return false
	}
	return len(encodeNode(n)) >= 32
}

// encodeNode returns the RLP encoding of a trie node. Children whose
// own encoding is shorter than 32 bytes are embedded verbatim; larger
// children are referenced by their keccak256 hash.
func encodeNode(n node) []byte {
	switch n := n.(type) {
	case *shortNode:
		var val interface{}
		if v, ok := n.Val.(valueNode); ok {
			val = []byte(v)
		} else {
			val = childRef(n.Val)
		}
		enc, err := rlp.EncodeToBytes([]interface{}{hexToCompact(n.Key), val})
		if err != nil {
			return nil
		}
		return enc

	case *fullNode:
		items := make([]interface{}, 17)
		for i := 0; i < 16; i++ {
			if n.Children[i] == nil {
				items[i] = []byte{}
				continue
			}
			items[i] = childRef(n.Children[i])
		}
		if v, ok := n.Children[16].(valueNode); ok {
			items[16] = []byte(v)
		} else {
			items[16] = []byte{}
		}
		enc, err := rlp.EncodeToBytes(items)
		if err != nil {
			return nil
		}
		return enc

	default:
		return nil
	}
}

// childRef returns the value to splice into a parent encoding for a
// child node: the raw encoding if small, the hash otherwise.
func childRef(n node) interface{} {
	if v, ok := n.(valueNode); ok {
		return []byte(v)
	}
	enc := encodeNode(n)
	if len(enc) < 32 {
		return rlp.RawValue(enc)
	}
	return crypto.Keccak256(enc)
}

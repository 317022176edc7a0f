package trie

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/zkbridge/zkbridge/core/types"
	"github.com/zkbridge/zkbridge/crypto"
)

func TestEmptyTrieRoot(t *testing.T) {
	want := types.HexToHash("0x56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421")
	if got := NewTrie().Hash(); got != want {
		t.Fatalf("empty root = %v, want %v", got, want)
	}
}

func TestKnownRootVector(t *testing.T) {
	entries := map[string]string{
		"do":    "verb",
		"dog":   "puppy",
		"doge":  "coin",
		"horse": "stallion",
	}
	want := types.HexToHash("0x5991bb8c6514148a29db676a14ac506cd2cd5775ace63c30a4fe457715e9ac84")

	orders := [][]string{
		{"do", "dog", "doge", "horse"},
		{"horse", "doge", "dog", "do"},
		{"doge", "horse", "do", "dog"},
	}
	for i, order := range orders {
		tr := NewTrie()
		for _, k := range order {
			tr.Update([]byte(k), []byte(entries[k]))
		}
		if got := tr.Hash(); got != want {
			t.Fatalf("order %d: root = %v, want %v", i, got, want)
		}
	}
}

func testTrie() (*Trie, map[string][]byte) {
	entries := map[string][]byte{
		"do":    []byte("verb"),
		"dog":   []byte("puppy"),
		"doge":  []byte("coin"),
		"horse": []byte("stallion"),
	}
	tr := NewTrie()
	for k, v := range entries {
		tr.Update([]byte(k), v)
	}
	return tr, entries
}

func TestProveAndVerify(t *testing.T) {
	tr, entries := testTrie()
	root := tr.Hash()
	for k, want := range entries {
		proof, err := tr.Prove([]byte(k))
		if err != nil {
			t.Fatalf("Prove(%q): %v", k, err)
		}
		got, err := VerifyProof(root, []byte(k), proof)
		if err != nil {
			t.Fatalf("VerifyProof(%q): %v", k, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("VerifyProof(%q) = %q, want %q", k, got, want)
		}
	}
}

func TestProveAbsentKey(t *testing.T) {
	tr, _ := testTrie()
	if _, err := tr.Prove([]byte("cat")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Prove(cat) err = %v, want %v", err, ErrNotFound)
	}
}

func TestVerifyProof_SharedPath(t *testing.T) {
	// A proof for "doge" carries the branch holding the embedded leaf
	// for "dog", so it proves both keys.
	tr, _ := testTrie()
	root := tr.Hash()
	proof, err := tr.Prove([]byte("doge"))
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	got, err := VerifyProof(root, []byte("dog"), proof)
	if err != nil {
		t.Fatalf("VerifyProof(dog): %v", err)
	}
	if string(got) != "puppy" {
		t.Fatalf("VerifyProof(dog) = %q, want %q", got, "puppy")
	}
}

func TestVerifyProof_Absence(t *testing.T) {
	// "dot" diverges at the final branch of the "doge" path, so the
	// same proof shows it absent.
	tr, _ := testTrie()
	root := tr.Hash()
	proof, err := tr.Prove([]byte("doge"))
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	got, err := VerifyProof(root, []byte("dot"), proof)
	if err != nil {
		t.Fatalf("VerifyProof(dot): %v", err)
	}
	if got != nil {
		t.Fatalf("VerifyProof(dot) = %q, want absence", got)
	}
}

func TestVerifyProof_EmbeddedOnly(t *testing.T) {
	// Single-nibble divergence with tiny values keeps every node under
	// 32 bytes, collapsing the whole trie into the root encoding.
	tr := NewTrie()
	tr.Update([]byte{0x01}, []byte{0xaa})
	tr.Update([]byte{0x02}, []byte{0xbb})
	root := tr.Hash()

	proof, err := tr.Prove([]byte{0x01})
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	if len(proof) != 1 {
		t.Fatalf("proof has %d nodes, want 1", len(proof))
	}
	got, err := VerifyProof(root, []byte{0x01}, proof)
	if err != nil {
		t.Fatalf("VerifyProof: %v", err)
	}
	if !bytes.Equal(got, []byte{0xaa}) {
		t.Fatalf("VerifyProof = %x, want aa", got)
	}
	if absentVal, err := VerifyProof(root, []byte{0x03}, proof); err != nil || absentVal != nil {
		t.Fatalf("VerifyProof(absent) = %x, %v, want nil, nil", absentVal, err)
	}
}

func TestVerifyProof_CorruptNode(t *testing.T) {
	tr, _ := testTrie()
	root := tr.Hash()
	proof, err := tr.Prove([]byte("doge"))
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	for i := range proof {
		t.Run(fmt.Sprintf("node%d", i), func(t *testing.T) {
			corrupt := make([][]byte, len(proof))
			for j, n := range proof {
				corrupt[j] = append([]byte(nil), n...)
			}
			corrupt[i][len(corrupt[i])/2] ^= 0x01
			if _, err := VerifyProof(root, []byte("doge"), corrupt); !errors.Is(err, ErrHashMismatch) {
				t.Fatalf("err = %v, want %v", err, ErrHashMismatch)
			}
		})
	}
}

func TestVerifyProof_WrongRoot(t *testing.T) {
	tr, _ := testTrie()
	root := tr.Hash()
	root[0] ^= 0x01
	proof, err := tr.Prove([]byte("doge"))
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	if _, err := VerifyProof(root, []byte("doge"), proof); !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("err = %v, want %v", err, ErrHashMismatch)
	}
}

func TestVerifyProof_Truncated(t *testing.T) {
	tr, _ := testTrie()
	root := tr.Hash()
	proof, err := tr.Prove([]byte("doge"))
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	if len(proof) < 2 {
		t.Fatalf("proof has %d nodes, need at least 2", len(proof))
	}
	if _, err := VerifyProof(root, []byte("doge"), proof[:len(proof)-1]); !errors.Is(err, ErrProofTruncated) {
		t.Fatalf("err = %v, want %v", err, ErrProofTruncated)
	}
}

func TestVerifyProof_Excess(t *testing.T) {
	tr, _ := testTrie()
	root := tr.Hash()
	proof, err := tr.Prove([]byte("doge"))
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	padded := append(append([][]byte(nil), proof...), proof[0])
	if _, err := VerifyProof(root, []byte("doge"), padded); !errors.Is(err, ErrProofExcess) {
		t.Fatalf("err = %v, want %v", err, ErrProofExcess)
	}
}

func TestVerifyProof_EmptyProof(t *testing.T) {
	if _, err := VerifyProof(types.Hash{}, []byte("x"), nil); !errors.Is(err, ErrProofEmpty) {
		t.Fatalf("err = %v, want %v", err, ErrProofEmpty)
	}
}

func TestVerifyValue(t *testing.T) {
	tr, _ := testTrie()
	root := tr.Hash()
	proof, err := tr.Prove([]byte("horse"))
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	if err := VerifyValue(root, []byte("horse"), []byte("stallion"), proof); err != nil {
		t.Fatalf("VerifyValue: %v", err)
	}
	if err := VerifyValue(root, []byte("horse"), []byte("mare"), proof); !errors.Is(err, ErrValueMismatch) {
		t.Fatalf("wrong value err = %v, want %v", err, ErrValueMismatch)
	}
}

func TestVerifyValue_AbsentKey(t *testing.T) {
	tr, _ := testTrie()
	root := tr.Hash()
	proof, err := tr.Prove([]byte("doge"))
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	err = VerifyValue(root, []byte("dot"), []byte("spot"), proof)
	if !errors.Is(err, ErrPathMismatch) {
		t.Fatalf("err = %v, want %v", err, ErrPathMismatch)
	}
	if !errors.Is(err, ErrProofFailed) {
		t.Fatalf("err = %v does not match ErrProofFailed", err)
	}
}

func TestProveAndVerify_HashedKeys(t *testing.T) {
	// State-trie shape: 32-byte keccak keys with varied value sizes.
	tr := NewTrie()
	type entry struct {
		key []byte
		val []byte
	}
	var entries []entry
	for i := 0; i < 64; i++ {
		key := crypto.Keccak256([]byte{byte(i)})
		val := bytes.Repeat([]byte{byte(i + 1)}, i%37+1)
		entries = append(entries, entry{key, val})
		tr.Update(key, val)
	}
	root := tr.Hash()
	for _, e := range entries {
		proof, err := tr.Prove(e.key)
		if err != nil {
			t.Fatalf("Prove(%x): %v", e.key[:4], err)
		}
		got, err := VerifyProof(root, e.key, proof)
		if err != nil {
			t.Fatalf("VerifyProof(%x): %v", e.key[:4], err)
		}
		if !bytes.Equal(got, e.val) {
			t.Fatalf("VerifyProof(%x) = %x, want %x", e.key[:4], got, e.val)
		}
	}
}

func TestUpdateOverwrite(t *testing.T) {
	tr := NewTrie()
	tr.Update([]byte("key"), []byte("old"))
	tr.Update([]byte("key"), []byte("new"))
	root := tr.Hash()
	proof, err := tr.Prove([]byte("key"))
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	got, err := VerifyProof(root, []byte("key"), proof)
	if err != nil {
		t.Fatalf("VerifyProof: %v", err)
	}
	if string(got) != "new" {
		t.Fatalf("value = %q, want %q", got, "new")
	}
}

package trie

import (
	"bytes"
	"testing"

	"github.com/holiman/uint256"

	"github.com/zkbridge/zkbridge/core/types"
)

func TestAccountRoundTrip(t *testing.T) {
	acc := &Account{
		Nonce:    7,
		Balance:  uint256.NewInt(1_000_000),
		Root:     types.HexToHash("0x0102030000000000000000000000000000000000000000000000000000000000"),
		CodeHash: bytes.Repeat([]byte{0xcd}, 32),
	}
	enc, err := EncodeAccount(acc)
	if err != nil {
		t.Fatalf("EncodeAccount: %v", err)
	}
	dec, err := DecodeAccount(enc)
	if err != nil {
		t.Fatalf("DecodeAccount: %v", err)
	}
	if dec.Nonce != acc.Nonce {
		t.Fatalf("nonce = %d, want %d", dec.Nonce, acc.Nonce)
	}
	if dec.Balance.Cmp(acc.Balance) != 0 {
		t.Fatalf("balance = %v, want %v", dec.Balance, acc.Balance)
	}
	if dec.Root != acc.Root {
		t.Fatalf("root = %v, want %v", dec.Root, acc.Root)
	}
	if !bytes.Equal(dec.CodeHash, acc.CodeHash) {
		t.Fatalf("code hash = %x, want %x", dec.CodeHash, acc.CodeHash)
	}
}

func TestDecodeAccount_Garbage(t *testing.T) {
	if _, err := DecodeAccount([]byte{0xff, 0x00, 0x01}); err == nil {
		t.Fatal("DecodeAccount(garbage) = nil error")
	}
}

func TestStorageValueRoundTrip(t *testing.T) {
	tests := []types.Hash{
		types.HexToHash("0x01"),
		types.HexToHash("0xdeadbeef"),
		types.HexToHash("0xffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff"),
	}
	for i, want := range tests {
		enc := EncodeStorageValue(want)
		got, err := DecodeStorageValue(enc)
		if err != nil {
			t.Fatalf("case %d: DecodeStorageValue: %v", i, err)
		}
		if got != want {
			t.Fatalf("case %d: value = %v, want %v", i, got, want)
		}
	}
}

func TestEncodeStorageValue_TrimsLeadingZeros(t *testing.T) {
	enc := EncodeStorageValue(types.HexToHash("0x0a"))
	// RLP of the single byte 0x0a is 0x0a itself.
	if !bytes.Equal(enc, []byte{0x0a}) {
		t.Fatalf("encoding = %x, want 0a", enc)
	}
}

func TestStorageProofFlow(t *testing.T) {
	// Mirror of an EVM storage proof: keccak-hashed slot keys mapping
	// to RLP-trimmed values, verified against the storage root.
	storage := NewTrie()
	slot := types.HexToHash("0x0000000000000000000000000000000000000000000000000000000000000004")
	value := types.HexToHash("0x00000000000000000000000000000000000000000000000000000000000f4240")
	storage.Update(StorageKey(slot), EncodeStorageValue(value))
	for i := byte(0); i < 16; i++ {
		filler := types.BytesToHash([]byte{0x10, i})
		storage.Update(StorageKey(filler), EncodeStorageValue(types.BytesToHash([]byte{i + 1})))
	}
	root := storage.Hash()

	proof, err := storage.Prove(StorageKey(slot))
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	if err := VerifyValue(root, StorageKey(slot), EncodeStorageValue(value), proof); err != nil {
		t.Fatalf("VerifyValue: %v", err)
	}

	wrong := types.HexToHash("0x01")
	if err := VerifyValue(root, StorageKey(slot), EncodeStorageValue(wrong), proof); err == nil {
		t.Fatal("VerifyValue accepted wrong storage value")
	}
}

func TestAccountProofFlow(t *testing.T) {
	// State trie holding the bridge account among fillers; the account
	// leaf commits to the storage root.
	storageRoot := types.HexToHash("0x1111111111111111111111111111111111111111111111111111111111111111")
	acc := NewAccount(3, uint256.NewInt(42))
	acc.Root = storageRoot
	encAcc, err := EncodeAccount(acc)
	if err != nil {
		t.Fatalf("EncodeAccount: %v", err)
	}

	state := NewTrie()
	addr := types.HexToAddress("0x00000000000000000000000000000000000000aa")
	state.Update(AccountKey(addr), encAcc)
	for i := byte(0); i < 8; i++ {
		other := types.BytesToAddress([]byte{0xbb, i})
		filler, err := EncodeAccount(NewAccount(uint64(i), uint256.NewInt(uint64(i)*10)))
		if err != nil {
			t.Fatalf("EncodeAccount filler: %v", err)
		}
		state.Update(AccountKey(other), filler)
	}
	root := state.Hash()

	proof, err := state.Prove(AccountKey(addr))
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	raw, err := VerifyProof(root, AccountKey(addr), proof)
	if err != nil {
		t.Fatalf("VerifyProof: %v", err)
	}
	dec, err := DecodeAccount(raw)
	if err != nil {
		t.Fatalf("DecodeAccount: %v", err)
	}
	if dec.Root != storageRoot {
		t.Fatalf("storage root = %v, want %v", dec.Root, storageRoot)
	}
	if dec.Balance.Uint64() != 42 {
		t.Fatalf("balance = %d, want 42", dec.Balance.Uint64())
	}
}

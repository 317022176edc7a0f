package trie

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/zkbridge/zkbridge/core/types"
	"github.com/zkbridge/zkbridge/crypto"
)

// Account is the RLP structure stored in the EVM state trie under
// keccak256(address).
type Account struct {
	Nonce    uint64
	Balance  *uint256.Int
	Root     types.Hash
	CodeHash []byte
}

// NewAccount returns an account with an empty storage root and the
// hash of empty code.
func NewAccount(nonce uint64, balance *uint256.Int) *Account {
	if balance == nil {
		balance = uint256.NewInt(0)
	}
	return &Account{
		Nonce:    nonce,
		Balance:  balance,
		Root:     emptyRoot,
		CodeHash: crypto.Keccak256(nil),
	}
}

// EncodeAccount returns the RLP encoding of acc.
func EncodeAccount(acc *Account) ([]byte, error) {
	enc, err := rlp.EncodeToBytes(acc)
	if err != nil {
		return nil, fmt.Errorf("trie: encode account: %w", err)
	}
	return enc, nil
}

// DecodeAccount parses an RLP-encoded account.
func DecodeAccount(buf []byte) (*Account, error) {
	acc := new(Account)
	if err := rlp.DecodeBytes(buf, acc); err != nil {
		return nil, fmt.Errorf("trie: decode account: %w", err)
	}
	if acc.Balance == nil {
		acc.Balance = uint256.NewInt(0)
	}
	return acc, nil
}

// AccountKey returns the state trie key for an address.
func AccountKey(addr types.Address) []byte {
	return crypto.Keccak256(addr[:])
}

// StorageKey returns the storage trie key for a slot.
func StorageKey(slot types.Hash) []byte {
	return crypto.Keccak256(slot[:])
}

// EncodeStorageValue encodes a storage word the way the EVM state
// trie stores it: RLP of the value with leading zero bytes stripped.
func EncodeStorageValue(value types.Hash) []byte {
	trimmed := value[:]
	for len(trimmed) > 0 && trimmed[0] == 0 {
		trimmed = trimmed[1:]
	}
	enc, _ := rlp.EncodeToBytes(trimmed)
	return enc
}

// DecodeStorageValue restores a storage word from its trie encoding,
// left-padding back to 32 bytes.
func DecodeStorageValue(buf []byte) (types.Hash, error) {
	var raw []byte
	if err := rlp.DecodeBytes(buf, &raw); err != nil {
		return types.Hash{}, fmt.Errorf("trie: decode storage value: %w", err)
	}
	if len(raw) > 32 {
		return types.Hash{}, fmt.Errorf("trie: storage value of %d bytes", len(raw))
	}
	var h types.Hash
	copy(h[32-len(raw):], raw)
	return h, nil
}

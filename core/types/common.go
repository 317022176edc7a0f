// Package types defines the core data structures shared across the bridge:
// 32-byte digests, EVM-side addresses and Solana-side public keys.
package types

import (
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	HashLength    = 32
	AddressLength = 20
	PubkeyLength  = 32
)

// Hash represents a 32-byte digest (Keccak-256 or SHA-256 depending on
// the producing chain).
type Hash [HashLength]byte

// Address represents the 20-byte address of an EVM account.
type Address [AddressLength]byte

// Pubkey represents a 32-byte Solana-side public key, also used as the
// account identity on the local ledger.
type Pubkey [PubkeyLength]byte

// BytesToHash converts bytes to Hash, left-padding if shorter than 32 bytes.
func BytesToHash(b []byte) Hash {
	var h Hash
	h.SetBytes(b)
	return h
}

// HexToHash converts a hex string to Hash.
func HexToHash(s string) Hash {
	return BytesToHash(fromHex(s))
}

// Bytes returns the byte representation of the hash.
func (h Hash) Bytes() []byte { return h[:] }

// Hex returns the hex string representation of the hash.
func (h Hash) Hex() string { return fmt.Sprintf("0x%x", h[:]) }

// SetBytes sets the hash from a byte slice, left-padding if necessary.
func (h *Hash) SetBytes(b []byte) {
	if len(b) > HashLength {
		b = b[len(b)-HashLength:]
	}
	copy(h[HashLength-len(b):], b)
}

// IsZero returns whether the hash is all zeros.
func (h Hash) IsZero() bool {
	return h == Hash{}
}

// String implements fmt.Stringer.
func (h Hash) String() string { return h.Hex() }

// BytesToAddress converts bytes to Address, left-padding if shorter than 20 bytes.
func BytesToAddress(b []byte) Address {
	var a Address
	a.SetBytes(b)
	return a
}

// HexToAddress converts a hex string to Address.
func HexToAddress(s string) Address {
	return BytesToAddress(fromHex(s))
}

// Bytes returns the byte representation of the address.
func (a Address) Bytes() []byte { return a[:] }

// Hex returns the hex string representation of the address.
func (a Address) Hex() string { return fmt.Sprintf("0x%x", a[:]) }

// SetBytes sets the address from a byte slice.
func (a *Address) SetBytes(b []byte) {
	if len(b) > AddressLength {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// IsZero returns whether the address is all zeros.
func (a Address) IsZero() bool {
	return a == Address{}
}

// String implements fmt.Stringer.
func (a Address) String() string { return a.Hex() }

// BytesToPubkey converts bytes to Pubkey, left-padding if shorter than 32 bytes.
func BytesToPubkey(b []byte) Pubkey {
	var p Pubkey
	p.SetBytes(b)
	return p
}

// Base58ToPubkey decodes a base58-encoded public key. The decoded form
// must be exactly 32 bytes.
func Base58ToPubkey(s string) (Pubkey, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Pubkey{}, fmt.Errorf("types: invalid base58 pubkey: %w", err)
	}
	if len(b) != PubkeyLength {
		return Pubkey{}, fmt.Errorf("types: pubkey must be %d bytes, got %d", PubkeyLength, len(b))
	}
	var p Pubkey
	copy(p[:], b)
	return p, nil
}

// Bytes returns the byte representation of the pubkey.
func (p Pubkey) Bytes() []byte { return p[:] }

// Base58 returns the base58 string representation of the pubkey.
func (p Pubkey) Base58() string { return base58.Encode(p[:]) }

// SetBytes sets the pubkey from a byte slice, left-padding if necessary.
func (p *Pubkey) SetBytes(b []byte) {
	if len(b) > PubkeyLength {
		b = b[len(b)-PubkeyLength:]
	}
	copy(p[PubkeyLength-len(b):], b)
}

// IsZero returns whether the pubkey is all zeros.
func (p Pubkey) IsZero() bool {
	return p == Pubkey{}
}

// String implements fmt.Stringer.
func (p Pubkey) String() string { return p.Base58() }

// fromHex decodes a hex string, stripping optional "0x" prefix.
func fromHex(s string) []byte {
	if has0xPrefix(s) {
		s = s[2:]
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	b, _ := hex.DecodeString(s)
	return b
}

func has0xPrefix(s string) bool {
	return len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X')
}

package bridge

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/zkbridge/zkbridge/core/types"
	"github.com/zkbridge/zkbridge/store"
)

// ledger emulates the host token ledger: one balance per (token,
// holder) plus a pooled vault balance per token. Movements stage into
// the operation's batch so they commit together with the records that
// justify them; reads see the pre-operation state, and every cell is
// touched at most once per operation.
type ledger struct {
	db store.Store
}

func balanceKey(token, holder types.Pubkey) []byte {
	key := make([]byte, 0, len(balancePrefix)+2*types.PubkeyLength)
	key = append(key, balancePrefix...)
	key = append(key, token[:]...)
	return append(key, holder[:]...)
}

func vaultKey(token types.Pubkey) []byte {
	return append(append([]byte{}, vaultPrefix...), token[:]...)
}

func encodeAmount(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

func decodeAmount(enc []byte) (uint64, error) {
	if len(enc) != 8 {
		return 0, fmt.Errorf("bridge: balance entry is %d bytes, want 8", len(enc))
	}
	return binary.BigEndian.Uint64(enc), nil
}

// balance reads a ledger cell. A missing cell is a zero balance.
func (l ledger) balance(key []byte) (uint64, error) {
	enc, err := l.db.Get(key)
	if errors.Is(err, store.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("bridge: read balance: %w", err)
	}
	return decodeAmount(enc)
}

func (l ledger) credit(batch store.Batch, key []byte, amount uint64) error {
	cur, err := l.balance(key)
	if err != nil {
		return err
	}
	if cur+amount < cur {
		return errors.New("bridge: balance overflow")
	}
	batch.Put(key, encodeAmount(cur+amount))
	return nil
}

func (l ledger) debit(batch store.Batch, key []byte, amount uint64) error {
	cur, err := l.balance(key)
	if err != nil {
		return err
	}
	if cur < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, cur, amount)
	}
	batch.Put(key, encodeAmount(cur-amount))
	return nil
}

// lock moves amount from holder into the token vault.
func (l ledger) lock(batch store.Batch, token, holder types.Pubkey, amount uint64) error {
	if err := l.debit(batch, balanceKey(token, holder), amount); err != nil {
		return err
	}
	return l.credit(batch, vaultKey(token), amount)
}

// unlock moves amount from the token vault to holder.
func (l ledger) unlock(batch store.Batch, token, holder types.Pubkey, amount uint64) error {
	if err := l.debit(batch, vaultKey(token), amount); err != nil {
		return err
	}
	return l.credit(batch, balanceKey(token, holder), amount)
}

// burn destroys amount from holder's balance.
func (l ledger) burn(batch store.Batch, token, holder types.Pubkey, amount uint64) error {
	return l.debit(batch, balanceKey(token, holder), amount)
}

// mint creates amount in holder's balance.
func (l ledger) mint(batch store.Batch, token, holder types.Pubkey, amount uint64) error {
	return l.credit(batch, balanceKey(token, holder), amount)
}

// deposit credits holder directly, outside any batch. It models
// host-ledger inflows feeding the settlement core.
func (l ledger) deposit(token, holder types.Pubkey, amount uint64) error {
	key := balanceKey(token, holder)
	cur, err := l.balance(key)
	if err != nil {
		return err
	}
	if cur+amount < cur {
		return errors.New("bridge: balance overflow")
	}
	if err := l.db.Put(key, encodeAmount(cur+amount)); err != nil {
		return fmt.Errorf("bridge: write balance: %w", err)
	}
	return nil
}

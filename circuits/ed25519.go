package circuits

import (
	"fmt"

	"github.com/zkbridge/zkbridge/core/types"
	"github.com/zkbridge/zkbridge/crypto"
)

// MaxBatchSignatures bounds the witness size of one batch proof.
const MaxBatchSignatures = 64

// SignatureEntry is one (key, message, signature) triple of a batch.
type SignatureEntry struct {
	Pubkey    types.Pubkey
	Message   []byte
	Signature []byte
}

// BatchOutput commits to a verified batch: running SHA-256 hashes of
// all messages and all keys, plus the count.
type BatchOutput struct {
	MessagesHash types.Hash
	PubkeysHash  types.Hash
	Count        uint32
}

// VerifySignatureBatch checks every entry's signature and returns the
// batch commitment. One invalid signature rejects the whole batch.
//
// A nil verifier selects the active signature backend.
func VerifySignatureBatch(entries []SignatureEntry, verifier crypto.SignatureVerifier) (*BatchOutput, error) {
	if verifier == nil {
		verifier = crypto.DefaultSignatureVerifier()
	}
	if len(entries) == 0 {
		return nil, ErrBatchEmpty
	}
	if len(entries) > MaxBatchSignatures {
		return nil, fmt.Errorf("%w: %d entries, max %d", ErrBatchTooLarge, len(entries), MaxBatchSignatures)
	}

	var messages, pubkeys [][]byte
	for i := range entries {
		e := &entries[i]
		if !verifier.Verify(e.Pubkey[:], e.Message, e.Signature) {
			return nil, fmt.Errorf("%w: entry %d", ErrSignatureInvalid, i)
		}
		messages = append(messages, e.Message)
		pubkeys = append(pubkeys, e.Pubkey[:])
	}
	return &BatchOutput{
		MessagesHash: crypto.Sha256Hash(messages...),
		PubkeysHash:  crypto.Sha256Hash(pubkeys...),
		Count:        uint32(len(entries)),
	}, nil
}

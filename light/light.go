// Package light implements the light client state machine: a verified
// view of a remote chain that advances only through Groth16-proven
// consensus updates and serves read-only account-proof queries against
// the latest verified state root.
package light

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/zkbridge/zkbridge/core/types"
)

// Light client errors.
var (
	ErrNotInitialized      = errors.New("light: not initialized")
	ErrAlreadyInitialized  = errors.New("light: already initialized")
	ErrSlotNotAdvanced     = errors.New("light: slot not advanced")
	ErrPublicInputMismatch = errors.New("light: public input mismatch")
	ErrNoVerifyingKey      = errors.New("light: no verifying key configured")
)

// State is the verified view of the remote chain. Every field except
// Admin changes only through an accepted update.
type State struct {
	Admin           types.Pubkey
	LatestSlot      uint64
	LatestBlockRoot types.Hash
	LatestStateRoot types.Hash

	// CurrentValidatorSetRoot authenticates update proofs. The next
	// root is staged one rotation period ahead; a zero next root means
	// no rotation is staged yet.
	CurrentValidatorSetRoot types.Hash
	NextValidatorSetRoot    types.Hash

	UpdateCount uint64
	Initialized bool
}

// Update is a relayer-submitted state transition. NewValidatorSetRoot
// stages the next validator set when the update crosses a rotation
// boundary; nil leaves the staged root untouched.
type Update struct {
	NewSlot             uint64
	NewBlockRoot        types.Hash
	NewStateRoot        types.Hash
	NewValidatorSetRoot *types.Hash
	Proof               []byte
	PublicInputs        []byte
}

// PublicInputsSize is the fixed prefix of an update's public-input
// stream that binds the state transition.
const PublicInputsSize = 112

// PublicInputs is the decoded fixed-layout prefix of an update's
// public-input stream:
//
//	[0..8)    prev slot, u64 little-endian
//	[8..40)   prev block root
//	[40..48)  new slot, u64 little-endian
//	[48..80)  new block root
//	[80..112) validator set root
//
// Longer streams append further 32-byte public inputs; the prefix
// alone binds the transition.
type PublicInputs struct {
	PrevSlot         uint64
	PrevBlockRoot    types.Hash
	NewSlot          uint64
	NewBlockRoot     types.Hash
	ValidatorSetRoot types.Hash
}

// DecodePublicInputs parses the fixed prefix. Streams shorter than
// PublicInputsSize fail with ErrPublicInputMismatch.
func DecodePublicInputs(data []byte) (*PublicInputs, error) {
	if len(data) < PublicInputsSize {
		return nil, fmt.Errorf("%w: %d bytes, need %d", ErrPublicInputMismatch, len(data), PublicInputsSize)
	}
	pi := &PublicInputs{
		PrevSlot: binary.LittleEndian.Uint64(data[0:8]),
		NewSlot:  binary.LittleEndian.Uint64(data[40:48]),
	}
	copy(pi.PrevBlockRoot[:], data[8:40])
	copy(pi.NewBlockRoot[:], data[48:80])
	copy(pi.ValidatorSetRoot[:], data[80:112])
	return pi, nil
}

// Encode serializes the fixed prefix in the layout DecodePublicInputs
// parses. Relayers append any further public inputs after it.
func (pi *PublicInputs) Encode() []byte {
	out := make([]byte, PublicInputsSize)
	binary.LittleEndian.PutUint64(out[0:8], pi.PrevSlot)
	copy(out[8:40], pi.PrevBlockRoot[:])
	binary.LittleEndian.PutUint64(out[40:48], pi.NewSlot)
	copy(out[48:80], pi.NewBlockRoot[:])
	copy(out[80:112], pi.ValidatorSetRoot[:])
	return out
}

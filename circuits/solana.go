package circuits

import (
	"encoding/binary"
	"fmt"

	"github.com/zkbridge/zkbridge/core/types"
	"github.com/zkbridge/zkbridge/crypto"
)

// ValidatorVote is one validator's ed25519 vote for a (slot, bank
// hash) pair.
type ValidatorVote struct {
	Pubkey    types.Pubkey
	Signature []byte
	Slot      uint64
	BankHash  types.Hash
}

// ValidatorStake is one entry of the epoch stake distribution.
type ValidatorStake struct {
	Pubkey types.Pubkey
	Stake  uint64
}

// SolanaConsensusInput is the witness for a supermajority vote proof.
type SolanaConsensusInput struct {
	Slot        uint64
	BankHash    types.Hash
	Votes       []ValidatorVote
	EpochStakes []ValidatorStake
	TotalStake  uint64
}

// SolanaConsensusOutput is the public commitment of an accepted vote
// proof.
type SolanaConsensusOutput struct {
	Slot       uint64
	BankHash   types.Hash
	VotedStake uint64
	TotalStake uint64
}

// VoteMessage builds the 40-byte message validators sign: the slot as
// a little-endian u64 followed by the bank hash.
func VoteMessage(slot uint64, bankHash types.Hash) []byte {
	msg := make([]byte, 8+types.HashLength)
	binary.LittleEndian.PutUint64(msg, slot)
	copy(msg[8:], bankHash[:])
	return msg
}

// VerifySolanaConsensus checks that a supermajority of epoch stake
// voted for the claimed (slot, bank hash). Every vote must target the
// claimed pair and carry a valid signature; duplicate voters count
// once; voters outside the stake distribution contribute nothing.
// Accepts when the summed stake reaches floor(2*total/3)+1.
//
// A nil verifier selects the active signature backend.
func VerifySolanaConsensus(input *SolanaConsensusInput, verifier crypto.SignatureVerifier) (*SolanaConsensusOutput, error) {
	if verifier == nil {
		verifier = crypto.DefaultSignatureVerifier()
	}
	if len(input.Votes) == 0 {
		return nil, ErrNoVotes
	}

	stakes := make(map[types.Pubkey]uint64, len(input.EpochStakes))
	for _, s := range input.EpochStakes {
		stakes[s.Pubkey] = s.Stake
	}

	var votedStake uint64
	seen := make(map[types.Pubkey]bool, len(input.Votes))
	for i := range input.Votes {
		vote := &input.Votes[i]
		if seen[vote.Pubkey] {
			continue
		}
		if vote.Slot != input.Slot || vote.BankHash != input.BankHash {
			return nil, fmt.Errorf("%w: vote from %s", ErrVoteMismatch, vote.Pubkey)
		}
		msg := VoteMessage(vote.Slot, vote.BankHash)
		if !verifier.Verify(vote.Pubkey[:], msg, vote.Signature) {
			return nil, fmt.Errorf("%w: vote from %s", ErrSignatureInvalid, vote.Pubkey)
		}
		seen[vote.Pubkey] = true
		if stake, ok := stakes[vote.Pubkey]; ok {
			votedStake = saturatingAdd(votedStake, stake)
		}
	}

	required := SupermajorityStake(input.TotalStake)
	if votedStake < required {
		return nil, fmt.Errorf("%w: %d of %d, need %d", ErrInsufficientStake, votedStake, input.TotalStake, required)
	}
	return &SolanaConsensusOutput{
		Slot:       input.Slot,
		BankHash:   input.BankHash,
		VotedStake: votedStake,
		TotalStake: input.TotalStake,
	}, nil
}

func saturatingAdd(a, b uint64) uint64 {
	if sum := a + b; sum >= a {
		return sum
	}
	return ^uint64(0)
}

// Package circuits implements the validation logic of the consensus
// proof programs: Solana-style supermajority stake voting, Ethereum
// sync-committee finality, and per-chain transfer inclusion. The
// functions here define what an accepted proof attests to; the
// proving toolchain that wraps them into a Groth16 blob is external.
//
// Every verifier is a pure function over its inputs plus an injected
// cryptographic backend, so the same rules run inside a prover, in a
// relayer pre-checking its submission, or in tests.
package circuits

import (
	"errors"
	"math/bits"
)

// Circuit rejection errors.
var (
	ErrNoVotes                   = errors.New("circuits: no votes provided")
	ErrVoteMismatch              = errors.New("circuits: vote targets a different slot or hash")
	ErrSignatureInvalid          = errors.New("circuits: signature verification failed")
	ErrInsufficientStake         = errors.New("circuits: insufficient voted stake")
	ErrInsufficientParticipation = errors.New("circuits: insufficient sync committee participation")
	ErrSlotNotAdvanced           = errors.New("circuits: attested slot not beyond previous")
	ErrCommitteeSize             = errors.New("circuits: wrong sync committee size")
	ErrFinalityBranch            = errors.New("circuits: invalid finality branch")
	ErrAggregateSignature        = errors.New("circuits: invalid sync committee signature")
	ErrZeroAmount                = errors.New("circuits: zero amount transfer")
	ErrSameChain                 = errors.New("circuits: source and destination chains equal")
	ErrChainMismatch             = errors.New("circuits: transfer chain does not match proof type")
	ErrBatchEmpty                = errors.New("circuits: empty signature batch")
	ErrBatchTooLarge             = errors.New("circuits: signature batch too large")
)

// SupermajorityStake returns the minimum voted stake accepted for
// total: floor(2*total/3) + 1. Computed in 128 bits so the doubling
// cannot overflow.
func SupermajorityStake(total uint64) uint64 {
	hi, lo := bits.Mul64(total, 2)
	q, _ := bits.Div64(hi, lo, 3)
	return q + 1
}

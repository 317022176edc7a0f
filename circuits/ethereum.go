package circuits

import (
	"encoding/binary"
	"fmt"
	"math/bits"

	"github.com/zkbridge/zkbridge/core/types"
	"github.com/zkbridge/zkbridge/crypto"
)

// Sync committee parameters.
const (
	// SyncCommitteeSize is the number of validators in a committee.
	SyncCommitteeSize = 512

	// SyncCommitteeBitsLength is the participation bitfield size in
	// bytes.
	SyncCommitteeBitsLength = SyncCommitteeSize / 8

	// RequiredParticipation is the minimum number of set bits:
	// floor(2*512/3) = 341.
	RequiredParticipation = SyncCommitteeSize * 2 / 3

	// FinalityBranchDepth and FinalityBranchIndex locate the finalized
	// checkpoint root in the beacon state tree.
	FinalityBranchDepth = 6
	FinalityBranchIndex = 41
)

// BeaconHeader is the consensus-layer block header.
type BeaconHeader struct {
	Slot          uint64
	ProposerIndex uint64
	ParentRoot    types.Hash
	StateRoot     types.Hash
	BodyRoot      types.Hash
}

// Hash returns the header commitment: SHA-256 over the fields in
// order, integers little-endian.
func (h *BeaconHeader) Hash() types.Hash {
	var ints [16]byte
	binary.LittleEndian.PutUint64(ints[0:8], h.Slot)
	binary.LittleEndian.PutUint64(ints[8:16], h.ProposerIndex)
	return crypto.Sha256Hash(ints[:], h.ParentRoot[:], h.StateRoot[:], h.BodyRoot[:])
}

// SyncAggregate is a committee attestation: who participated and the
// aggregate of their signatures.
type SyncAggregate struct {
	Bits      [SyncCommitteeBitsLength]byte
	Signature []byte
}

// Participation counts set bits in the participation bitfield.
func (a *SyncAggregate) Participation() int {
	n := 0
	for _, b := range a.Bits {
		n += bits.OnesCount8(b)
	}
	return n
}

// Participant reports whether committee member i signed.
func (a *SyncAggregate) Participant(i int) bool {
	if i < 0 || i >= SyncCommitteeSize {
		return false
	}
	return a.Bits[i/8]>>(i%8)&1 == 1
}

// SyncCommittee is the full membership of one committee period:
// 512 compressed BLS public keys.
type SyncCommittee struct {
	Pubkeys [][]byte
}

// Root returns the committee commitment: SHA-256 of the aggregate of
// all member keys.
func (c *SyncCommittee) Root() (types.Hash, error) {
	agg, err := crypto.BLSAggregatePubkeys(c.Pubkeys)
	if err != nil {
		return types.Hash{}, fmt.Errorf("circuits: committee root: %w", err)
	}
	return crypto.Sha256Hash(agg), nil
}

// Participants selects the member keys flagged in the bitfield.
func (c *SyncCommittee) Participants(a *SyncAggregate) [][]byte {
	var keys [][]byte
	for i, pk := range c.Pubkeys {
		if a.Participant(i) {
			keys = append(keys, pk)
		}
	}
	return keys
}

// EthereumUpdate is the witness for one sync-committee finality proof.
type EthereumUpdate struct {
	AttestedHeader  BeaconHeader
	FinalizedHeader BeaconHeader
	Aggregate       SyncAggregate
	FinalityBranch  []types.Hash
	Committee       SyncCommittee
}

// EthereumConsensusInput binds an update to the light-client state it
// extends.
type EthereumConsensusInput struct {
	PrevSlot      uint64
	PrevBlockRoot types.Hash
	Update        EthereumUpdate
}

// EthereumConsensusOutput is the public commitment of an accepted
// finality proof.
type EthereumConsensusOutput struct {
	PrevSlot      uint64
	PrevBlockRoot types.Hash
	NewSlot       uint64
	NewBlockRoot  types.Hash
	NewStateRoot  types.Hash
	CommitteeRoot types.Hash
	Participation int
}

// VerifyMerkleBranch folds leaf up a generalized-index branch and
// compares against root. The index parity at each level decides the
// hash order.
func VerifyMerkleBranch(leaf types.Hash, branch []types.Hash, depth int, index uint64, root types.Hash) bool {
	if len(branch) < depth {
		return false
	}
	current := leaf
	idx := index
	for i := 0; i < depth; i++ {
		if idx%2 == 0 {
			current = crypto.Sha256Hash(current[:], branch[i][:])
		} else {
			current = crypto.Sha256Hash(branch[i][:], current[:])
		}
		idx /= 2
	}
	return current == root
}

// VerifyEthereumConsensus checks one finality update: the attested
// slot advances past the previous one, at least 341 of 512 committee
// members signed the attested header, the aggregate signature
// verifies against the participant keys, and the finality branch
// proves the finalized header from the attested state root. The
// accepted output commits to the finalized header and the committee
// root.
//
// A nil backend selects the active BLS backend.
func VerifyEthereumConsensus(input *EthereumConsensusInput, backend crypto.BLSBackend) (*EthereumConsensusOutput, error) {
	if backend == nil {
		backend = crypto.DefaultBLSBackend()
	}
	update := &input.Update

	if update.AttestedHeader.Slot <= input.PrevSlot {
		return nil, fmt.Errorf("%w: attested %d, previous %d", ErrSlotNotAdvanced, update.AttestedHeader.Slot, input.PrevSlot)
	}
	if len(update.Committee.Pubkeys) != SyncCommitteeSize {
		return nil, fmt.Errorf("%w: %d keys", ErrCommitteeSize, len(update.Committee.Pubkeys))
	}

	participation := update.Aggregate.Participation()
	if participation < RequiredParticipation {
		return nil, fmt.Errorf("%w: %d of %d, need %d", ErrInsufficientParticipation, participation, SyncCommitteeSize, RequiredParticipation)
	}

	finalizedRoot := update.FinalizedHeader.Hash()
	if !VerifyMerkleBranch(finalizedRoot, update.FinalityBranch, FinalityBranchDepth, FinalityBranchIndex, update.AttestedHeader.StateRoot) {
		return nil, ErrFinalityBranch
	}

	attestedRoot := update.AttestedHeader.Hash()
	participants := update.Committee.Participants(&update.Aggregate)
	if !backend.FastAggregateVerify(participants, attestedRoot[:], update.Aggregate.Signature) {
		return nil, ErrAggregateSignature
	}

	committeeRoot, err := update.Committee.Root()
	if err != nil {
		return nil, err
	}
	return &EthereumConsensusOutput{
		PrevSlot:      input.PrevSlot,
		PrevBlockRoot: input.PrevBlockRoot,
		NewSlot:       update.FinalizedHeader.Slot,
		NewBlockRoot:  finalizedRoot,
		NewStateRoot:  update.FinalizedHeader.StateRoot,
		CommitteeRoot: committeeRoot,
		Participation: participation,
	}, nil
}

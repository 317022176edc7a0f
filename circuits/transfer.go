package circuits

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/zkbridge/zkbridge/core/types"
	"github.com/zkbridge/zkbridge/crypto"
	"github.com/zkbridge/zkbridge/trie"
)

// Chain identifiers carried in transfer records.
const (
	ChainIDSolana   uint64 = 101
	ChainIDEthereum uint64 = 1
	ChainIDBase     uint64 = 8453
	ChainIDArbitrum uint64 = 42161
)

// IsEVMChain reports whether id is one of the supported EVM chains.
func IsEVMChain(id uint64) bool {
	switch id {
	case ChainIDEthereum, ChainIDBase, ChainIDArbitrum:
		return true
	}
	return false
}

// TokenTransfer is the cross-chain transfer record a relayer proves
// inclusion of. Addresses are zero-padded to 32 bytes so the same
// layout serves both chains.
type TokenTransfer struct {
	TransferID  types.Hash
	SourceChain uint64
	DestChain   uint64
	Token       types.Hash
	Sender      types.Hash
	Recipient   types.Hash
	Amount      uint64
	Nonce       uint64
	Timestamp   uint64
}

// Hash returns the transfer commitment: SHA-256 over the fields in
// order, integers little-endian.
func (t *TokenTransfer) Hash() types.Hash {
	var ints [40]byte
	binary.LittleEndian.PutUint64(ints[0:8], t.SourceChain)
	binary.LittleEndian.PutUint64(ints[8:16], t.DestChain)
	binary.LittleEndian.PutUint64(ints[16:24], t.Amount)
	binary.LittleEndian.PutUint64(ints[24:32], t.Nonce)
	binary.LittleEndian.PutUint64(ints[32:40], t.Timestamp)
	return crypto.Sha256Hash(
		t.TransferID[:], ints[0:8], ints[8:16],
		t.Token[:], t.Sender[:], t.Recipient[:],
		ints[16:24], ints[24:32], ints[32:40],
	)
}

// ChainProof is the per-chain inclusion witness for a transfer. It is
// a closed set: SolanaProof or EVMProof, each carrying exactly the
// fields its verification path needs.
type ChainProof interface {
	isChainProof()
}

// SolanaProof proves a transaction's inclusion in a bank hash via the
// sorted-pair SHA-256 path from its signature-derived leaf.
type SolanaProof struct {
	Signature []byte
	Path      []types.Hash
	BankHash  types.Hash
	Slot      uint64
}

func (*SolanaProof) isChainProof() {}

// EVMProof proves a receipt's inclusion in a block's receipt trie.
// The trie is keyed by the RLP-encoded transaction index.
type EVMProof struct {
	ReceiptRoot types.Hash
	TxIndex     uint64
	Receipt     []byte
	ProofNodes  [][]byte
	BlockNumber uint64
}

func (*EVMProof) isChainProof() {}

// TransferProofOutput is the public commitment of an accepted
// inclusion proof: the transfer hash, the root it was verified
// against, and where it happened.
type TransferProofOutput struct {
	TransferID   types.Hash
	TransferHash types.Hash
	SourceChain  uint64
	DestChain    uint64
	Amount       uint64
	VerifiedRoot types.Hash
	BlockSlot    uint64
}

// VerifyTransferInclusion checks that transfer is recorded on its
// source chain, dispatching on the proof variant. The committed
// VerifiedRoot is the root the walk actually authenticated: the bank
// hash for Solana, the receipt root for EVM chains.
func VerifyTransferInclusion(transfer *TokenTransfer, proof ChainProof) (*TransferProofOutput, error) {
	if transfer.Amount == 0 {
		return nil, ErrZeroAmount
	}
	if transfer.SourceChain == transfer.DestChain {
		return nil, fmt.Errorf("%w: chain %d", ErrSameChain, transfer.SourceChain)
	}

	var (
		verifiedRoot types.Hash
		blockSlot    uint64
	)
	switch p := proof.(type) {
	case *SolanaProof:
		if transfer.SourceChain != ChainIDSolana {
			return nil, fmt.Errorf("%w: source %d with solana proof", ErrChainMismatch, transfer.SourceChain)
		}
		leaf, err := trie.SolanaTxHash(p.Signature)
		if err != nil {
			return nil, err
		}
		if err := trie.VerifySolanaInclusion(p.BankHash, leaf, p.Path); err != nil {
			return nil, err
		}
		verifiedRoot, blockSlot = p.BankHash, p.Slot

	case *EVMProof:
		if !IsEVMChain(transfer.SourceChain) {
			return nil, fmt.Errorf("%w: source %d with evm proof", ErrChainMismatch, transfer.SourceChain)
		}
		if len(p.Receipt) == 0 {
			return nil, fmt.Errorf("%w: empty receipt", trie.ErrValueMismatch)
		}
		key, err := rlp.EncodeToBytes(p.TxIndex)
		if err != nil {
			return nil, err
		}
		if err := trie.VerifyValue(p.ReceiptRoot, key, p.Receipt, p.ProofNodes); err != nil {
			return nil, err
		}
		verifiedRoot, blockSlot = p.ReceiptRoot, p.BlockNumber

	default:
		return nil, fmt.Errorf("%w: unknown proof variant", ErrChainMismatch)
	}

	return &TransferProofOutput{
		TransferID:   transfer.TransferID,
		TransferHash: transfer.Hash(),
		SourceChain:  transfer.SourceChain,
		DestChain:    transfer.DestChain,
		Amount:       transfer.Amount,
		VerifiedRoot: verifiedRoot,
		BlockSlot:    blockSlot,
	}, nil
}

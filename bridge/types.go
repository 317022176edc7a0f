package bridge

import (
	"encoding/binary"

	"github.com/zkbridge/zkbridge/core/types"
)

// MaxPayloadSize bounds the opaque payload attached to a transfer.
const MaxPayloadSize = 1024

// Status is the lifecycle state of an outbound transfer. A record is
// created Pending and takes exactly one terminal transition.
type Status uint8

const (
	StatusPending Status = iota
	StatusCompleted
	StatusCancelled
	StatusExpired
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusCompleted:
		return "completed"
	case StatusCancelled:
		return "cancelled"
	case StatusExpired:
		return "expired"
	default:
		return "unknown"
	}
}

// TransferRecord tracks an outbound transfer. It is written once by
// InitiateTransfer and thereafter immutable except for the single
// terminal status transition taken by cancel or expire.
type TransferRecord struct {
	TransferID    types.Hash
	Sender        types.Pubkey
	DestRecipient types.Address
	Token         types.Pubkey
	Amount        uint64
	Nonce         uint64

	// InitiatedAt and Deadline are unix seconds. ExpireTransfer is
	// legal at or after Deadline.
	InitiatedAt uint64
	Deadline    uint64

	Status  Status
	Payload []byte
}

// CompletionRecord marks an inbound transfer as settled. Its exclusive
// creation keyed by transfer ID is the sole replay barrier; nothing
// else writes that key.
type CompletionRecord struct {
	TransferID   types.Hash
	Completed    bool
	CompletedAt  uint64
	RemoteSender types.Address
	Amount       uint64
}

// TokenConfig pairs a local token with its remote counterpart.
type TokenConfig struct {
	Token       types.Pubkey
	RemoteToken types.Address

	// NativeLocal selects lock/unlock accounting; wrapped tokens
	// burn on the way out and mint on the way in.
	NativeLocal bool

	Enabled bool

	// TotalBridged accumulates gross volume through the bridge in
	// both directions. Refunds do not decrement it.
	TotalBridged uint64
}

// State is the top-level bridge state, persisted per remote chain.
type State struct {
	Admin         types.Pubkey
	RemoteChainID uint64

	// TransferNonce increments once per initiated transfer and feeds
	// the transfer ID derivation.
	TransferNonce uint64

	// TotalLocked sums vault balances across native tokens.
	TotalLocked uint64

	Paused bool
}

// Store key namespaces. Completion keys are written only through the
// exclusive create in CompleteTransfer.
var (
	statePrefix      = []byte("bridge/state/")
	tokenPrefix      = []byte("bridge/token/")
	transferPrefix   = []byte("bridge/transfer/")
	completionPrefix = []byte("bridge/completion/")
	balancePrefix    = []byte("bridge/balance/")
	vaultPrefix      = []byte("bridge/vault/")
)

func stateKey(remoteChainID uint64) []byte {
	key := make([]byte, 0, len(statePrefix)+8)
	key = append(key, statePrefix...)
	var id [8]byte
	binary.BigEndian.PutUint64(id[:], remoteChainID)
	return append(key, id[:]...)
}

func tokenKey(token types.Pubkey) []byte {
	return append(append([]byte{}, tokenPrefix...), token[:]...)
}

func transferKey(id types.Hash) []byte {
	return append(append([]byte{}, transferPrefix...), id[:]...)
}

func completionKey(id types.Hash) []byte {
	return append(append([]byte{}, completionPrefix...), id[:]...)
}

// Package events carries the notifications emitted by the light client
// and the bridge settlement protocol. State machines publish through a
// Sink; embedders pick a sink that logs, fans out over channels, or both.
package events

import (
	"time"

	"github.com/zkbridge/zkbridge/core/types"
)

// EventType identifies the kind of event published on the bus.
type EventType string

// Event types emitted by the bridge and light client state machines.
const (
	EventTransferInitiated EventType = "bridge.transferInitiated"
	EventTransferCompleted EventType = "bridge.transferCompleted"
	EventTransferCancelled EventType = "bridge.transferCancelled"
	EventTransferExpired   EventType = "bridge.transferExpired"
	EventTokenRegistered   EventType = "bridge.tokenRegistered"
	EventBridgePaused      EventType = "bridge.paused"
	EventBridgeUnpaused    EventType = "bridge.unpaused"
	EventClientInitialized EventType = "light.initialized"
	EventStateUpdated      EventType = "light.stateUpdated"
)

// Event is a message delivered to subscribers.
type Event struct {
	Type      EventType
	Data      interface{}
	Timestamp time.Time
}

// TransferInitiated is emitted when an outbound transfer locks or burns
// funds. It carries every field a relayer needs to reconstruct the
// remote-side inclusion proof.
type TransferInitiated struct {
	TransferID    types.Hash
	Sender        types.Pubkey
	DestRecipient types.Address
	Token         types.Pubkey
	Amount        uint64
	Nonce         uint64
	Payload       []byte
}

// TransferCompleted is emitted when an inbound transfer settles.
type TransferCompleted struct {
	TransferID     types.Hash
	RemoteSender   types.Address
	Recipient      types.Pubkey
	Token          types.Pubkey
	Amount         uint64
	RemoteBlockRef uint64
}

// TransferCancelled is emitted when the sender reclaims a pending
// outbound transfer.
type TransferCancelled struct {
	TransferID types.Hash
	Sender     types.Pubkey
	Token      types.Pubkey
	Amount     uint64
}

// TransferExpired is emitted when a pending outbound transfer is
// refunded after its deadline.
type TransferExpired struct {
	TransferID types.Hash
	Sender     types.Pubkey
	Token      types.Pubkey
	Amount     uint64
}

// TokenRegistered is emitted when the admin pairs a local token with
// its remote counterpart.
type TokenRegistered struct {
	Token       types.Pubkey
	RemoteToken types.Address
	NativeLocal bool
}

// BridgePaused and BridgeUnpaused mark the admin circuit breaker.
type BridgePaused struct {
	Admin types.Pubkey
}

// BridgeUnpaused is the counterpart of BridgePaused.
type BridgeUnpaused struct {
	Admin types.Pubkey
}

// ClientInitialized is emitted once, when the light client commits its
// trusted genesis checkpoint.
type ClientInitialized struct {
	ChainID          uint64
	Slot             uint64
	BlockRoot        types.Hash
	StateRoot        types.Hash
	ValidatorSetRoot types.Hash
}

// StateUpdated is emitted for every accepted light client update.
type StateUpdated struct {
	ChainID          uint64
	Slot             uint64
	BlockRoot        types.Hash
	StateRoot        types.Hash
	ValidatorSetRoot types.Hash
	UpdateCount      uint64
}

// fielder flattens a payload into log attributes. Pubkeys render
// base58 and EVM-side addresses 0x-hex via their String methods.
type fielder interface {
	fields() []interface{}
}

func (e TransferInitiated) fields() []interface{} {
	return []interface{}{
		"transferId", e.TransferID.Hex(),
		"sender", e.Sender.String(),
		"destRecipient", e.DestRecipient.Hex(),
		"token", e.Token.String(),
		"amount", e.Amount,
		"nonce", e.Nonce,
		"payloadLen", len(e.Payload),
	}
}

func (e TransferCompleted) fields() []interface{} {
	return []interface{}{
		"transferId", e.TransferID.Hex(),
		"remoteSender", e.RemoteSender.Hex(),
		"recipient", e.Recipient.String(),
		"token", e.Token.String(),
		"amount", e.Amount,
		"remoteBlockRef", e.RemoteBlockRef,
	}
}

func (e TransferCancelled) fields() []interface{} {
	return []interface{}{
		"transferId", e.TransferID.Hex(),
		"sender", e.Sender.String(),
		"token", e.Token.String(),
		"amount", e.Amount,
	}
}

func (e TransferExpired) fields() []interface{} {
	return []interface{}{
		"transferId", e.TransferID.Hex(),
		"sender", e.Sender.String(),
		"token", e.Token.String(),
		"amount", e.Amount,
	}
}

func (e TokenRegistered) fields() []interface{} {
	return []interface{}{
		"token", e.Token.String(),
		"remoteToken", e.RemoteToken.Hex(),
		"nativeLocal", e.NativeLocal,
	}
}

func (e BridgePaused) fields() []interface{} {
	return []interface{}{"admin", e.Admin.String()}
}

func (e BridgeUnpaused) fields() []interface{} {
	return []interface{}{"admin", e.Admin.String()}
}

func (e ClientInitialized) fields() []interface{} {
	return []interface{}{
		"chainId", e.ChainID,
		"slot", e.Slot,
		"blockRoot", e.BlockRoot.Hex(),
		"stateRoot", e.StateRoot.Hex(),
		"validatorSetRoot", e.ValidatorSetRoot.Hex(),
	}
}

func (e StateUpdated) fields() []interface{} {
	return []interface{}{
		"chainId", e.ChainID,
		"slot", e.Slot,
		"blockRoot", e.BlockRoot.Hex(),
		"stateRoot", e.StateRoot.Hex(),
		"validatorSetRoot", e.ValidatorSetRoot.Hex(),
		"updateCount", e.UpdateCount,
	}
}

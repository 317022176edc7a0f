package bridge

import (
	"github.com/zkbridge/zkbridge/core/types"
	"github.com/zkbridge/zkbridge/events"
)

func (b *Bridge) emitInitiated(rec TransferRecord) {
	b.sink.Emit(events.EventTransferInitiated, events.TransferInitiated{
		TransferID:    rec.TransferID,
		Sender:        rec.Sender,
		DestRecipient: rec.DestRecipient,
		Token:         rec.Token,
		Amount:        rec.Amount,
		Nonce:         rec.Nonce,
		Payload:       rec.Payload,
	})
}

func (b *Bridge) emitCompleted(rec CompletionRecord, recipient, token types.Pubkey, remoteBlockRef uint64) {
	b.sink.Emit(events.EventTransferCompleted, events.TransferCompleted{
		TransferID:     rec.TransferID,
		RemoteSender:   rec.RemoteSender,
		Recipient:      recipient,
		Token:          token,
		Amount:         rec.Amount,
		RemoteBlockRef: remoteBlockRef,
	})
}

func (b *Bridge) emitCancelled(rec TransferRecord) {
	b.sink.Emit(events.EventTransferCancelled, events.TransferCancelled{
		TransferID: rec.TransferID,
		Sender:     rec.Sender,
		Token:      rec.Token,
		Amount:     rec.Amount,
	})
}

func (b *Bridge) emitExpired(rec TransferRecord) {
	b.sink.Emit(events.EventTransferExpired, events.TransferExpired{
		TransferID: rec.TransferID,
		Sender:     rec.Sender,
		Token:      rec.Token,
		Amount:     rec.Amount,
	})
}

func (b *Bridge) emitTokenRegistered(tc TokenConfig) {
	b.sink.Emit(events.EventTokenRegistered, events.TokenRegistered{
		Token:       tc.Token,
		RemoteToken: tc.RemoteToken,
		NativeLocal: tc.NativeLocal,
	})
}

func (b *Bridge) emitPaused(admin types.Pubkey) {
	b.sink.Emit(events.EventBridgePaused, events.BridgePaused{Admin: admin})
}

func (b *Bridge) emitUnpaused(admin types.Pubkey) {
	b.sink.Emit(events.EventBridgeUnpaused, events.BridgeUnpaused{Admin: admin})
}

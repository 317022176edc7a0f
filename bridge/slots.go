package bridge

import (
	"encoding/binary"

	"github.com/zkbridge/zkbridge/core/types"
	"github.com/zkbridge/zkbridge/crypto"
)

// TransferID derives the identifier both chains commit for a transfer:
// Keccak-256(sender || dest_recipient || amount_le || nonce_le).
func TransferID(sender types.Pubkey, destRecipient types.Address, amount, nonce uint64) types.Hash {
	var le [16]byte
	binary.LittleEndian.PutUint64(le[:8], amount)
	binary.LittleEndian.PutUint64(le[8:], nonce)
	return crypto.Keccak256Hash(sender[:], destRecipient[:], le[:])
}

// TransferSlot maps a transfer ID to the remote contract storage slot
// holding its record commitment, following the Solidity mapping
// layout: Keccak-256(transferID || mappingSlot).
func TransferSlot(transferID, mappingSlot types.Hash) types.Hash {
	return crypto.Keccak256Hash(transferID[:], mappingSlot[:])
}

// TransferValue is the commitment the remote bridge stores for a
// transfer: Keccak-256(remoteSender || recipient || amount_le).
func TransferValue(remoteSender types.Address, recipient types.Pubkey, amount uint64) types.Hash {
	var le [8]byte
	binary.LittleEndian.PutUint64(le[:], amount)
	return crypto.Keccak256Hash(remoteSender[:], recipient[:], le[:])
}

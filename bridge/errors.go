package bridge

import "errors"

// Operation errors, matched with errors.Is. Operations wrap them with
// identifying context where it helps the caller.
var (
	// ErrBridgePaused rejects initiate and complete while the admin
	// circuit breaker is set.
	ErrBridgePaused = errors.New("bridge: paused")

	// ErrTokenNotEnabled covers both an unregistered token and a
	// registered one whose Enabled flag is off.
	ErrTokenNotEnabled = errors.New("bridge: token not enabled")

	// ErrZeroAmount rejects transfers of nothing.
	ErrZeroAmount = errors.New("bridge: zero amount")

	// ErrPayloadTooLarge rejects payloads over MaxPayloadSize.
	ErrPayloadTooLarge = errors.New("bridge: payload too large")

	// ErrTransferAlreadyCompleted reports a completion record already
	// held under the transfer ID.
	ErrTransferAlreadyCompleted = errors.New("bridge: transfer already completed")

	// ErrTransferNotPending rejects a second terminal transition on a
	// transfer record.
	ErrTransferNotPending = errors.New("bridge: transfer not pending")

	// ErrUnknownTransfer reports a transfer ID with no record.
	ErrUnknownTransfer = errors.New("bridge: unknown transfer")

	// ErrNotAdmin gates pause, unpause and token registration.
	ErrNotAdmin = errors.New("bridge: caller is not the admin")

	// ErrNotSender gates cancellation.
	ErrNotSender = errors.New("bridge: caller is not the transfer sender")

	// ErrDeadlineNotReached rejects expiry of a transfer still inside
	// its pending window.
	ErrDeadlineNotReached = errors.New("bridge: deadline not reached")

	// ErrInsufficientFunds reports a ledger balance too small for the
	// requested movement.
	ErrInsufficientFunds = errors.New("bridge: insufficient funds")
)

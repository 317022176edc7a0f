// Package bridge implements the token settlement protocol. Outbound
// transfers lock or burn funds under a transfer record; inbound
// transfers settle exactly once against a storage proof checked by the
// light client. All fund movements, record writes and accounting
// updates of one operation commit through a single store batch.
package bridge

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/zkbridge/zkbridge/core/types"
	"github.com/zkbridge/zkbridge/events"
	"github.com/zkbridge/zkbridge/log"
	"github.com/zkbridge/zkbridge/metrics"
	"github.com/zkbridge/zkbridge/store"
)

// DefaultTransferTTL is the pending window after which anyone may
// expire an outbound transfer.
const DefaultTransferTTL = 24 * time.Hour

// AccountVerifier proves remote contract storage against a verified
// state root. *light.Client satisfies it.
type AccountVerifier interface {
	VerifyAccountProof(address types.Address, storageKey, expectedValue types.Hash, proofNodes [][]byte) (bool, error)
}

// Config configures a bridge. Light and RemoteContract are required;
// Admin is required unless the store already holds a state for the
// remote chain ID. The zero values of the remaining fields select an
// in-memory store, the process logger, a sink that logs events, the
// default metrics registry, the wall clock and DefaultTransferTTL.
type Config struct {
	// RemoteChainID identifies the counterpart chain and namespaces
	// the persisted bridge state.
	RemoteChainID uint64

	// Admin may pause, unpause and register tokens. A persisted state
	// keeps its stored admin; Admin only seeds a fresh one.
	Admin types.Pubkey

	// RemoteContract is the bridge contract on the remote chain whose
	// storage holds transfer commitments.
	RemoteContract types.Address

	// MappingSlot is the storage slot of the remote transfers
	// mapping. Zero is a valid slot.
	MappingSlot types.Hash

	// TransferTTL bounds how long an outbound transfer stays Pending
	// before ExpireTransfer becomes legal.
	TransferTTL time.Duration

	// Light verifies remote storage proofs for CompleteTransfer.
	Light AccountVerifier

	Store    store.Store
	Logger   *log.Logger
	Sink     events.Sink
	Registry *metrics.Registry

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Bridge is the settlement state machine. All methods are safe for
// concurrent use; operations serialize on an internal lock for their
// full read-validate-commit span.
type Bridge struct {
	remoteContract types.Address
	mappingSlot    types.Hash
	ttl            uint64

	light  AccountVerifier
	db     store.Store
	ledger ledger
	logger *log.Logger
	sink   events.Sink
	now    func() time.Time

	mu    sync.RWMutex
	state State

	initiated *metrics.Counter
	completed *metrics.Counter
	cancelled *metrics.Counter
	expired   *metrics.Counter
	locked    *metrics.Gauge
}

// NewBridge builds a bridge from the config and reloads any state
// persisted under the remote chain ID, creating and persisting a fresh
// one otherwise.
func NewBridge(cfg Config) (*Bridge, error) {
	if cfg.Light == nil {
		return nil, errors.New("bridge: account verifier required")
	}
	if cfg.RemoteContract.IsZero() {
		return nil, errors.New("bridge: remote contract required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.Module("bridge").With("chain", cfg.RemoteChainID)

	sink := cfg.Sink
	if sink == nil {
		sink = events.NewLogSink(logger)
	}
	db := cfg.Store
	if db == nil {
		db = store.NewMemoryStore()
	}
	reg := cfg.Registry
	if reg == nil {
		reg = metrics.DefaultRegistry
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	ttl := cfg.TransferTTL
	if ttl <= 0 {
		ttl = DefaultTransferTTL
	}

	b := &Bridge{
		remoteContract: cfg.RemoteContract,
		mappingSlot:    cfg.MappingSlot,
		ttl:            uint64(ttl / time.Second),
		light:          cfg.Light,
		db:             db,
		ledger:         ledger{db: db},
		logger:         logger,
		sink:           sink,
		now:            now,
		initiated:      reg.Counter("bridge/transfers/initiated"),
		completed:      reg.Counter("bridge/transfers/completed"),
		cancelled:      reg.Counter("bridge/transfers/cancelled"),
		expired:        reg.Counter("bridge/transfers/expired"),
		locked:         reg.Gauge("bridge/locked"),
	}
	if err := b.reload(cfg); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *Bridge) reload(cfg Config) error {
	enc, err := b.db.Get(stateKey(cfg.RemoteChainID))
	switch {
	case errors.Is(err, store.ErrKeyNotFound):
		if cfg.Admin.IsZero() {
			return errors.New("bridge: admin required")
		}
		st := State{Admin: cfg.Admin, RemoteChainID: cfg.RemoteChainID}
		if err := b.writeState(&st); err != nil {
			return err
		}
		b.state = st
		b.logger.Info("state created", "admin", cfg.Admin)
	case err != nil:
		return fmt.Errorf("bridge: load state: %w", err)
	default:
		var st State
		if err := rlp.DecodeBytes(enc, &st); err != nil {
			return fmt.Errorf("bridge: decode state: %w", err)
		}
		b.state = st
		b.locked.Set(int64(st.TotalLocked))
		b.logger.Info("state loaded",
			"nonce", st.TransferNonce,
			"locked", st.TotalLocked,
			"paused", st.Paused,
		)
	}
	return nil
}

// writeState persists st directly, outside any batch.
func (b *Bridge) writeState(st *State) error {
	enc, err := rlp.EncodeToBytes(st)
	if err != nil {
		return fmt.Errorf("bridge: encode state: %w", err)
	}
	if err := b.db.Put(stateKey(st.RemoteChainID), enc); err != nil {
		return fmt.Errorf("bridge: write state: %w", err)
	}
	return nil
}

func putRLP(batch store.Batch, key []byte, v interface{}) error {
	enc, err := rlp.EncodeToBytes(v)
	if err != nil {
		return fmt.Errorf("bridge: encode record: %w", err)
	}
	batch.Put(key, enc)
	return nil
}

func createRLP(batch store.Batch, key []byte, v interface{}) error {
	enc, err := rlp.EncodeToBytes(v)
	if err != nil {
		return fmt.Errorf("bridge: encode record: %w", err)
	}
	batch.Create(key, enc)
	return nil
}

func (b *Bridge) readToken(token types.Pubkey) (TokenConfig, error) {
	enc, err := b.db.Get(tokenKey(token))
	if errors.Is(err, store.ErrKeyNotFound) {
		return TokenConfig{}, fmt.Errorf("%w: %s", ErrTokenNotEnabled, token)
	}
	if err != nil {
		return TokenConfig{}, fmt.Errorf("bridge: load token: %w", err)
	}
	var tc TokenConfig
	if err := rlp.DecodeBytes(enc, &tc); err != nil {
		return TokenConfig{}, fmt.Errorf("bridge: decode token: %w", err)
	}
	return tc, nil
}

func (b *Bridge) readTransfer(id types.Hash) (TransferRecord, error) {
	enc, err := b.db.Get(transferKey(id))
	if errors.Is(err, store.ErrKeyNotFound) {
		return TransferRecord{}, fmt.Errorf("%w: %s", ErrUnknownTransfer, id)
	}
	if err != nil {
		return TransferRecord{}, fmt.Errorf("bridge: load transfer: %w", err)
	}
	var rec TransferRecord
	if err := rlp.DecodeBytes(enc, &rec); err != nil {
		return TransferRecord{}, fmt.Errorf("bridge: decode transfer: %w", err)
	}
	return rec, nil
}

// InitiateTransfer opens an outbound transfer. Native tokens lock into
// the vault, wrapped tokens burn from the sender. The returned ID is
// the commitment both chains derive for this transfer.
func (b *Bridge) InitiateTransfer(sender types.Pubkey, destRecipient types.Address, token types.Pubkey, amount uint64, payload []byte) (types.Hash, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state.Paused {
		return types.Hash{}, ErrBridgePaused
	}
	tc, err := b.readToken(token)
	if err != nil {
		return types.Hash{}, err
	}
	if !tc.Enabled {
		return types.Hash{}, fmt.Errorf("%w: %s", ErrTokenNotEnabled, token)
	}
	if amount == 0 {
		return types.Hash{}, ErrZeroAmount
	}
	if len(payload) > MaxPayloadSize {
		return types.Hash{}, fmt.Errorf("%w: %d bytes, max %d", ErrPayloadTooLarge, len(payload), MaxPayloadSize)
	}

	next := b.state
	next.TransferNonce++
	id := TransferID(sender, destRecipient, amount, next.TransferNonce)
	now := uint64(b.now().Unix())
	rec := TransferRecord{
		TransferID:    id,
		Sender:        sender,
		DestRecipient: destRecipient,
		Token:         token,
		Amount:        amount,
		Nonce:         next.TransferNonce,
		InitiatedAt:   now,
		Deadline:      now + b.ttl,
		Status:        StatusPending,
		Payload:       append([]byte(nil), payload...),
	}

	batch := b.db.NewBatch()
	if tc.NativeLocal {
		if err := b.ledger.lock(batch, token, sender, amount); err != nil {
			return types.Hash{}, err
		}
		if next.TotalLocked+amount < next.TotalLocked {
			return types.Hash{}, errors.New("bridge: total locked overflow")
		}
		next.TotalLocked += amount
	} else {
		if err := b.ledger.burn(batch, token, sender, amount); err != nil {
			return types.Hash{}, err
		}
	}
	if tc.TotalBridged+amount < tc.TotalBridged {
		return types.Hash{}, errors.New("bridge: total bridged overflow")
	}
	tc.TotalBridged += amount

	if err := putRLP(batch, tokenKey(token), &tc); err != nil {
		return types.Hash{}, err
	}
	if err := putRLP(batch, transferKey(id), &rec); err != nil {
		return types.Hash{}, err
	}
	if err := putRLP(batch, stateKey(next.RemoteChainID), &next); err != nil {
		return types.Hash{}, err
	}
	if err := batch.Write(); err != nil {
		return types.Hash{}, fmt.Errorf("bridge: initiate transfer: %w", err)
	}

	b.state = next
	b.initiated.Inc()
	b.locked.Set(int64(next.TotalLocked))
	b.logger.Info("transfer initiated",
		"id", id,
		"sender", sender,
		"token", token,
		"amount", amount,
		"nonce", rec.Nonce,
	)
	b.emitInitiated(rec)
	return id, nil
}

// CompleteTransfer settles an inbound transfer. The transfer must be
// committed in the remote contract's storage under the slot derived
// from its ID, proven by proofNodes against the light client's latest
// verified state root. The completion record, the fund movement and
// the accounting update commit in one batch; the record's exclusive
// create makes settlement exactly-once.
func (b *Bridge) CompleteTransfer(transferID types.Hash, remoteSender types.Address, recipient, token types.Pubkey, amount, remoteBlockRef uint64, proofNodes [][]byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state.Paused {
		return ErrBridgePaused
	}
	tc, err := b.readToken(token)
	if err != nil {
		return err
	}
	if !tc.Enabled {
		return fmt.Errorf("%w: %s", ErrTokenNotEnabled, token)
	}

	// Fast path before the proof walk. The batch's exclusive create
	// below remains the authoritative barrier.
	key := completionKey(transferID)
	exists, err := b.db.Has(key)
	if err != nil {
		return fmt.Errorf("bridge: completion lookup: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrTransferAlreadyCompleted, transferID)
	}

	slot := TransferSlot(transferID, b.mappingSlot)
	value := TransferValue(remoteSender, recipient, amount)
	verified, err := b.light.VerifyAccountProof(b.remoteContract, slot, value, proofNodes)
	if err != nil {
		return fmt.Errorf("bridge: transfer proof: %w", err)
	}
	if !verified {
		return errors.New("bridge: transfer proof rejected")
	}

	rec := CompletionRecord{
		TransferID:   transferID,
		Completed:    true,
		CompletedAt:  uint64(b.now().Unix()),
		RemoteSender: remoteSender,
		Amount:       amount,
	}
	next := b.state
	batch := b.db.NewBatch()
	if err := createRLP(batch, key, &rec); err != nil {
		return err
	}
	if tc.NativeLocal {
		if err := b.ledger.unlock(batch, token, recipient, amount); err != nil {
			return err
		}
		if next.TotalLocked < amount {
			return errors.New("bridge: total locked underflow")
		}
		next.TotalLocked -= amount
	} else {
		if err := b.ledger.mint(batch, token, recipient, amount); err != nil {
			return err
		}
	}
	if tc.TotalBridged+amount < tc.TotalBridged {
		return errors.New("bridge: total bridged overflow")
	}
	tc.TotalBridged += amount

	if err := putRLP(batch, tokenKey(token), &tc); err != nil {
		return err
	}
	if err := putRLP(batch, stateKey(next.RemoteChainID), &next); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		if errors.Is(err, store.ErrKeyExists) {
			return fmt.Errorf("%w: %s", ErrTransferAlreadyCompleted, transferID)
		}
		return fmt.Errorf("bridge: complete transfer: %w", err)
	}

	b.state = next
	b.completed.Inc()
	b.locked.Set(int64(next.TotalLocked))
	b.logger.Info("transfer completed",
		"id", transferID,
		"recipient", recipient,
		"amount", amount,
		"remoteBlock", remoteBlockRef,
	)
	b.emitCompleted(rec, recipient, token, remoteBlockRef)
	return nil
}

// refund reverses the fund movement of a pending outbound transfer and
// commits its terminal status. The caller holds the lock and has
// checked Status == StatusPending.
func (b *Bridge) refund(rec *TransferRecord, terminal Status) error {
	exists, err := b.db.Has(completionKey(rec.TransferID))
	if err != nil {
		return fmt.Errorf("bridge: completion lookup: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrTransferAlreadyCompleted, rec.TransferID)
	}

	tc, err := b.readToken(rec.Token)
	if err != nil {
		return err
	}

	next := b.state
	batch := b.db.NewBatch()
	if tc.NativeLocal {
		if err := b.ledger.unlock(batch, rec.Token, rec.Sender, rec.Amount); err != nil {
			return err
		}
		if next.TotalLocked < rec.Amount {
			return errors.New("bridge: total locked underflow")
		}
		next.TotalLocked -= rec.Amount
	} else {
		if err := b.ledger.mint(batch, rec.Token, rec.Sender, rec.Amount); err != nil {
			return err
		}
	}
	rec.Status = terminal

	if err := putRLP(batch, transferKey(rec.TransferID), rec); err != nil {
		return err
	}
	if err := putRLP(batch, stateKey(next.RemoteChainID), &next); err != nil {
		return err
	}
	if err := batch.Write(); err != nil {
		return fmt.Errorf("bridge: refund transfer: %w", err)
	}

	b.state = next
	b.locked.Set(int64(next.TotalLocked))
	return nil
}

// CancelTransfer refunds a pending outbound transfer to its sender.
// Only the sender may cancel.
func (b *Bridge) CancelTransfer(transferID types.Hash, caller types.Pubkey) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, err := b.readTransfer(transferID)
	if err != nil {
		return err
	}
	if caller != rec.Sender {
		return fmt.Errorf("%w: %s", ErrNotSender, caller)
	}
	if rec.Status != StatusPending {
		return fmt.Errorf("%w: %s is %s", ErrTransferNotPending, transferID, rec.Status)
	}
	if err := b.refund(&rec, StatusCancelled); err != nil {
		return err
	}

	b.cancelled.Inc()
	b.logger.Info("transfer cancelled", "id", transferID, "amount", rec.Amount)
	b.emitCancelled(rec)
	return nil
}

// ExpireTransfer refunds a pending outbound transfer whose deadline
// has passed. Anyone may call it.
func (b *Bridge) ExpireTransfer(transferID types.Hash) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	rec, err := b.readTransfer(transferID)
	if err != nil {
		return err
	}
	if rec.Status != StatusPending {
		return fmt.Errorf("%w: %s is %s", ErrTransferNotPending, transferID, rec.Status)
	}
	if now := uint64(b.now().Unix()); now < rec.Deadline {
		return fmt.Errorf("%w: deadline %d, now %d", ErrDeadlineNotReached, rec.Deadline, now)
	}
	if err := b.refund(&rec, StatusExpired); err != nil {
		return err
	}

	b.expired.Inc()
	b.logger.Info("transfer expired", "id", transferID, "amount", rec.Amount)
	b.emitExpired(rec)
	return nil
}

// Pause sets the circuit breaker. Initiate and complete reject until
// Unpause; refunds stay available.
func (b *Bridge) Pause(caller types.Pubkey) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.state.Admin {
		return fmt.Errorf("%w: %s", ErrNotAdmin, caller)
	}
	if b.state.Paused {
		return nil
	}
	next := b.state
	next.Paused = true
	if err := b.writeState(&next); err != nil {
		return err
	}
	b.state = next
	b.logger.Warn("bridge paused", "admin", caller)
	b.emitPaused(caller)
	return nil
}

// Unpause clears the circuit breaker.
func (b *Bridge) Unpause(caller types.Pubkey) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.state.Admin {
		return fmt.Errorf("%w: %s", ErrNotAdmin, caller)
	}
	if !b.state.Paused {
		return nil
	}
	next := b.state
	next.Paused = false
	if err := b.writeState(&next); err != nil {
		return err
	}
	b.state = next
	b.logger.Info("bridge unpaused", "admin", caller)
	b.emitUnpaused(caller)
	return nil
}

// RegisterToken pairs a local token with its remote counterpart.
// Re-registration updates the pairing and flags but keeps the
// accumulated volume.
func (b *Bridge) RegisterToken(caller types.Pubkey, tc TokenConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if caller != b.state.Admin {
		return fmt.Errorf("%w: %s", ErrNotAdmin, caller)
	}
	if tc.Token.IsZero() {
		return errors.New("bridge: token required")
	}

	prev, err := b.readToken(tc.Token)
	switch {
	case err == nil:
		tc.TotalBridged = prev.TotalBridged
	case errors.Is(err, ErrTokenNotEnabled):
		tc.TotalBridged = 0
	default:
		return err
	}

	enc, err := rlp.EncodeToBytes(&tc)
	if err != nil {
		return fmt.Errorf("bridge: encode token: %w", err)
	}
	if err := b.db.Put(tokenKey(tc.Token), enc); err != nil {
		return fmt.Errorf("bridge: write token: %w", err)
	}

	b.logger.Info("token registered",
		"token", tc.Token,
		"remote", tc.RemoteToken,
		"native", tc.NativeLocal,
		"enabled", tc.Enabled,
	)
	b.emitTokenRegistered(tc)
	return nil
}

// Deposit credits holder's balance for token, modelling a host-ledger
// inflow into the settlement core.
func (b *Bridge) Deposit(token, holder types.Pubkey, amount uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ledger.deposit(token, holder, amount)
}

// Balance returns holder's ledger balance for token.
func (b *Bridge) Balance(token, holder types.Pubkey) (uint64, error) {
	return b.ledger.balance(balanceKey(token, holder))
}

// VaultBalance returns the pooled vault balance for token.
func (b *Bridge) VaultBalance(token types.Pubkey) (uint64, error) {
	return b.ledger.balance(vaultKey(token))
}

// State returns a snapshot of the bridge state.
func (b *Bridge) State() State {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.state
}

// Token returns the stored config for token. A missing registration
// reports ErrTokenNotEnabled.
func (b *Bridge) Token(token types.Pubkey) (TokenConfig, error) {
	return b.readToken(token)
}

// Transfer returns the outbound transfer record for id.
func (b *Bridge) Transfer(id types.Hash) (TransferRecord, error) {
	return b.readTransfer(id)
}

// Completion returns the completion record for id, or a wrapped
// store.ErrKeyNotFound when the transfer has not settled.
func (b *Bridge) Completion(id types.Hash) (CompletionRecord, error) {
	enc, err := b.db.Get(completionKey(id))
	if err != nil {
		return CompletionRecord{}, fmt.Errorf("bridge: completion %s: %w", id, err)
	}
	var rec CompletionRecord
	if err := rlp.DecodeBytes(enc, &rec); err != nil {
		return CompletionRecord{}, fmt.Errorf("bridge: decode completion: %w", err)
	}
	return rec, nil
}

package light

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/zkbridge/zkbridge/core/types"
	"github.com/zkbridge/zkbridge/events"
	"github.com/zkbridge/zkbridge/groth16"
	"github.com/zkbridge/zkbridge/log"
	"github.com/zkbridge/zkbridge/metrics"
	"github.com/zkbridge/zkbridge/store"
	"github.com/zkbridge/zkbridge/trie"
)

// Config configures a light client. VerifyingKey is required; there is
// no default key and no bypass path. The zero values of the remaining
// fields select an in-memory store, the process logger, a sink that
// logs events, and the default metrics registry.
type Config struct {
	// ChainID identifies the remote chain this client follows. It
	// namespaces the persisted checkpoint and tags emitted events.
	ChainID uint64

	// VerifyingKey authenticates update proofs.
	VerifyingKey *groth16.VerifyingKey

	Store    store.Store
	Logger   *log.Logger
	Sink     events.Sink
	Registry *metrics.Registry
}

// Client tracks the remote chain state. All methods are safe for
// concurrent use; updates serialize on an internal lock so the
// check-and-set against LatestSlot is atomic.
type Client struct {
	chainID uint64
	vk      *groth16.VerifyingKey
	db      store.Store
	logger  *log.Logger
	sink    events.Sink

	mu    sync.RWMutex
	state State

	accepted   *metrics.Counter
	rejected   *metrics.Counter
	latestSlot *metrics.Gauge
	verifyTime *metrics.Histogram
}

// NewClient builds a client from the config and reloads any checkpoint
// persisted under the chain ID. A missing or invalid verifying key
// fails with ErrNoVerifyingKey.
func NewClient(cfg Config) (*Client, error) {
	if cfg.VerifyingKey == nil {
		return nil, ErrNoVerifyingKey
	}
	if err := cfg.VerifyingKey.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoVerifyingKey, err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.Module("light").With("chain", cfg.ChainID)

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

	c := &Client{
		chainID:    cfg.ChainID,
		vk:         cfg.VerifyingKey,
		db:         db,
		logger:     logger,
		sink:       sink,
		accepted:   reg.Counter("light/updates/accepted"),
		rejected:   reg.Counter("light/updates/rejected"),
		latestSlot: reg.Gauge("light/slot"),
		verifyTime: reg.Histogram("light/verify/seconds"),
	}
	if err := c.reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// stateKey namespaces the persisted checkpoint by chain ID.
func stateKey(chainID uint64) []byte {
	key := make([]byte, 0, 20)
	key = append(key, []byte("light/state/")...)
	var id [8]byte
	binary.BigEndian.PutUint64(id[:], chainID)
	return append(key, id[:]...)
}

func (c *Client) reload() error {
	enc, err := c.db.Get(stateKey(c.chainID))
	if errors.Is(err, store.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("light: load checkpoint: %w", err)
	}
	var st State
	if err := rlp.DecodeBytes(enc, &st); err != nil {
		return fmt.Errorf("light: decode checkpoint: %w", err)
	}
	c.state = st
	c.latestSlot.Set(int64(st.LatestSlot))
	c.logger.Info("checkpoint loaded", "slot", st.LatestSlot, "updates", st.UpdateCount)
	return nil
}

// persist writes st as the new checkpoint. Callers commit the
// in-memory state only after the write succeeds.
func (c *Client) persist(st *State) error {
	enc, err := rlp.EncodeToBytes(st)
	if err != nil {
		return fmt.Errorf("light: encode checkpoint: %w", err)
	}
	if err := c.db.Put(stateKey(c.chainID), enc); err != nil {
		return fmt.Errorf("light: write checkpoint: %w", err)
	}
	return nil
}

// Initialize sets the trusted genesis checkpoint. It can be called
// once; later calls fail with ErrAlreadyInitialized.
func (c *Client) Initialize(admin types.Pubkey, genesisSlot uint64, genesisBlockRoot, genesisStateRoot, validatorSetRoot types.Hash) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Initialized {
		return ErrAlreadyInitialized
	}

	st := State{
		Admin:                   admin,
		LatestSlot:              genesisSlot,
		LatestBlockRoot:         genesisBlockRoot,
		LatestStateRoot:         genesisStateRoot,
		CurrentValidatorSetRoot: validatorSetRoot,
		Initialized:             true,
	}
	if err := c.persist(&st); err != nil {
		return err
	}
	c.state = st
	c.latestSlot.Set(int64(genesisSlot))

	c.logger.Info("initialized", "slot", genesisSlot, "blockRoot", genesisBlockRoot)
	c.sink.Emit(events.EventClientInitialized, events.ClientInitialized{
		ChainID:          c.chainID,
		Slot:             genesisSlot,
		BlockRoot:        genesisBlockRoot,
		StateRoot:        genesisStateRoot,
		ValidatorSetRoot: validatorSetRoot,
	})
	return nil
}

// ProcessUpdate advances the verified state. The proof must pass the
// pairing check under the configured key, and the public inputs must
// bind the stored previous state to the claimed new state. Rejection
// leaves the state untouched.
func (c *Client) ProcessUpdate(upd Update) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.processLocked(upd); err != nil {
		c.rejected.Inc()
		c.logger.Warn("update rejected", "slot", upd.NewSlot, "err", err)
		return err
	}
	return nil
}

func (c *Client) processLocked(upd Update) error {
	st := &c.state
	if !st.Initialized {
		return ErrNotInitialized
	}
	if upd.NewSlot <= st.LatestSlot {
		return fmt.Errorf("%w: slot %d, latest %d", ErrSlotNotAdvanced, upd.NewSlot, st.LatestSlot)
	}

	timer := metrics.NewTimer(c.verifyTime)
	ok, err := groth16.Verify(c.vk, upd.Proof, groth16.PackInputs(upd.PublicInputs))
	timer.Stop()
	if err != nil {
		return fmt.Errorf("%w: %w", groth16.ErrProofInvalid, err)
	}
	if !ok {
		return fmt.Errorf("%w: pairing check failed", groth16.ErrProofInvalid)
	}

	pi, err := DecodePublicInputs(upd.PublicInputs)
	if err != nil {
		return err
	}
	switch {
	case pi.PrevSlot != st.LatestSlot:
		return fmt.Errorf("%w: prev slot %d, latest %d", ErrPublicInputMismatch, pi.PrevSlot, st.LatestSlot)
	case pi.PrevBlockRoot != st.LatestBlockRoot:
		return fmt.Errorf("%w: prev block root", ErrPublicInputMismatch)
	case pi.NewSlot != upd.NewSlot:
		return fmt.Errorf("%w: new slot %d, submitted %d", ErrPublicInputMismatch, pi.NewSlot, upd.NewSlot)
	case pi.NewBlockRoot != upd.NewBlockRoot:
		return fmt.Errorf("%w: new block root", ErrPublicInputMismatch)
	case pi.ValidatorSetRoot != st.CurrentValidatorSetRoot:
		return fmt.Errorf("%w: validator set root", ErrPublicInputMismatch)
	}

	next := *st
	next.LatestSlot = upd.NewSlot
	next.LatestBlockRoot = upd.NewBlockRoot
	next.LatestStateRoot = upd.NewStateRoot
	next.UpdateCount++
	if upd.NewValidatorSetRoot != nil {
		// Rotation: the staged root becomes current once one is
		// staged, then the submitted root takes the staged spot.
		if !next.NextValidatorSetRoot.IsZero() {
			next.CurrentValidatorSetRoot = next.NextValidatorSetRoot
		}
		next.NextValidatorSetRoot = *upd.NewValidatorSetRoot
	}

	if err := c.persist(&next); err != nil {
		return err
	}
	c.state = next
	c.accepted.Inc()
	c.latestSlot.Set(int64(next.LatestSlot))

	c.logger.Info("state updated",
		"slot", next.LatestSlot,
		"blockRoot", next.LatestBlockRoot,
		"updates", next.UpdateCount,
	)
	c.sink.Emit(events.EventStateUpdated, events.StateUpdated{
		ChainID:          c.chainID,
		Slot:             next.LatestSlot,
		BlockRoot:        next.LatestBlockRoot,
		StateRoot:        next.LatestStateRoot,
		ValidatorSetRoot: next.CurrentValidatorSetRoot,
		UpdateCount:      next.UpdateCount,
	})
	return nil
}

// VerifyAccountProof checks that the remote account's storage holds
// expectedValue at storageKey, against the latest verified state root.
// proofNodes carries the account proof followed by the storage proof,
// root to leaf. The call is read-only; failures come back as (false,
// err) with the trie rejection wrapped.
func (c *Client) VerifyAccountProof(address types.Address, storageKey, expectedValue types.Hash, proofNodes [][]byte) (bool, error) {
	c.mu.RLock()
	initialized := c.state.Initialized
	stateRoot := c.state.LatestStateRoot
	c.mu.RUnlock()

	if !initialized {
		return false, ErrNotInitialized
	}

	accVal, used, err := trie.VerifyProofPrefix(stateRoot, trie.AccountKey(address), proofNodes)
	if err != nil {
		return false, fmt.Errorf("light: account proof: %w", err)
	}
	if accVal == nil {
		return false, fmt.Errorf("light: account %s absent: %w", address, trie.ErrPathMismatch)
	}
	acct, err := trie.DecodeAccount(accVal)
	if err != nil {
		return false, fmt.Errorf("light: account proof: %w", err)
	}

	expected := trie.EncodeStorageValue(expectedValue)
	if err := trie.VerifyValue(acct.Root, trie.StorageKey(storageKey), expected, proofNodes[used:]); err != nil {
		return false, fmt.Errorf("light: storage proof: %w", err)
	}
	return true, nil
}

// State returns a snapshot of the verified state.
func (c *Client) State() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

// LatestSlot returns the latest verified slot.
func (c *Client) LatestSlot() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.LatestSlot
}

package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/holiman/uint256"

	"github.com/zkbridge/zkbridge/bridge"
	"github.com/zkbridge/zkbridge/core/types"
	"github.com/zkbridge/zkbridge/crypto"
	"github.com/zkbridge/zkbridge/groth16"
	"github.com/zkbridge/zkbridge/light"
	"github.com/zkbridge/zkbridge/log"
	"github.com/zkbridge/zkbridge/metrics"
	"github.com/zkbridge/zkbridge/store"
	"github.com/zkbridge/zkbridge/trie"
)

// cmdSelfcheck runs one full settlement round against in-memory state
// and reports each step. It needs no chain access and no key material
// beyond the built-in deterministic setup.
func cmdSelfcheck(args []string) int {
	fs := flag.NewFlagSet("zkbridge selfcheck", flag.ContinueOnError)
	quiet := fs.Bool("q", false, "suppress progress output")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	out := io.Writer(os.Stdout)
	if *quiet {
		out = io.Discard
	}
	if err := selfcheck(out); err != nil {
		fmt.Fprintf(os.Stderr, "zkbridge selfcheck: %v\n", err)
		return 1
	}
	fmt.Println("selfcheck passed")
	return 0
}

// selfcheck locks a transfer on the local side, advances the light
// client with a proven update carrying the remote root, releases the
// funds through a completion proof, and confirms a replayed completion
// is refused.
func selfcheck(w io.Writer) error {
	var (
		admin        = types.Pubkey{0xad}
		sender       = types.Pubkey{0x5e}
		recipient    = types.Pubkey{0x4e}
		token        = types.Pubkey{0x70}
		dest         = types.Address{0xaa}
		remoteToken  = types.Address{0x40}
		contract     = types.Address{0xbc}
		remoteSender = types.Address{0xe5}
		mappingSlot  = types.BytesToHash([]byte{0x03})
		amount       = uint64(1_000_000)
	)

	ts := groth16.NewTestSetup([]byte("zkbridge-selfcheck"), 4)
	db := store.NewMemoryStore()
	reg := metrics.NewRegistry()
	logger := log.Discard()

	lc, err := light.NewClient(light.Config{
		ChainID:      7,
		VerifyingKey: ts.VK,
		Store:        db,
		Logger:       logger,
		Registry:     reg,
	})
	if err != nil {
		return fmt.Errorf("light client: %w", err)
	}
	if err := lc.Initialize(admin, 1000,
		crypto.Sha256Hash([]byte("selfcheck-block")),
		crypto.Sha256Hash([]byte("selfcheck-state")),
		crypto.Sha256Hash([]byte("selfcheck-validators"))); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	fmt.Fprintf(w, "light client initialized at slot %d\n", lc.LatestSlot())

	br, err := bridge.NewBridge(bridge.Config{
		RemoteChainID:  7,
		Admin:          admin,
		RemoteContract: contract,
		MappingSlot:    mappingSlot,
		Light:          lc,
		Store:          db,
		Logger:         logger,
		Registry:       reg,
	})
	if err != nil {
		return fmt.Errorf("bridge: %w", err)
	}
	if err := br.RegisterToken(admin, bridge.TokenConfig{
		Token:       token,
		RemoteToken: remoteToken,
		NativeLocal: true,
		Enabled:     true,
	}); err != nil {
		return fmt.Errorf("register token: %w", err)
	}
	if err := br.Deposit(token, sender, amount); err != nil {
		return fmt.Errorf("deposit: %w", err)
	}

	id, err := br.InitiateTransfer(sender, dest, token, amount, nil)
	if err != nil {
		return fmt.Errorf("initiate: %w", err)
	}
	if st := br.State(); st.TotalLocked != amount {
		return fmt.Errorf("locked %d after initiate, want %d", st.TotalLocked, amount)
	}
	fmt.Fprintf(w, "locked %d units under transfer %s\n", amount, id)

	// Build the remote commitment to the transfer: a storage leaf in
	// the settlement contract's account, sealed under a world root.
	slot := bridge.TransferSlot(id, mappingSlot)
	storage := trie.NewTrie()
	storage.Update(trie.StorageKey(slot),
		trie.EncodeStorageValue(bridge.TransferValue(remoteSender, recipient, amount)))
	storageProof, err := storage.Prove(trie.StorageKey(slot))
	if err != nil {
		return fmt.Errorf("storage proof: %w", err)
	}
	acct := trie.NewAccount(1, uint256.NewInt(0))
	acct.Root = storage.Hash()
	accEnc, err := trie.EncodeAccount(acct)
	if err != nil {
		return fmt.Errorf("encode account: %w", err)
	}
	world := trie.NewTrie()
	world.Update(trie.AccountKey(contract), accEnc)
	accountProof, err := world.Prove(trie.AccountKey(contract))
	if err != nil {
		return fmt.Errorf("account proof: %w", err)
	}
	proof := append(accountProof, storageProof...)
	remoteRoot := world.Hash()

	st := lc.State()
	pi := light.PublicInputs{
		PrevSlot:         st.LatestSlot,
		PrevBlockRoot:    st.LatestBlockRoot,
		NewSlot:          st.LatestSlot + 64,
		NewBlockRoot:     crypto.Sha256Hash([]byte("selfcheck-block-2")),
		ValidatorSetRoot: st.CurrentValidatorSetRoot,
	}
	updProof, err := ts.Prove(groth16.PackInputs(pi.Encode()))
	if err != nil {
		return fmt.Errorf("prove update: %w", err)
	}
	if err := lc.ProcessUpdate(light.Update{
		NewSlot:      pi.NewSlot,
		NewBlockRoot: pi.NewBlockRoot,
		NewStateRoot: remoteRoot,
		Proof:        updProof,
		PublicInputs: pi.Encode(),
	}); err != nil {
		return fmt.Errorf("process update: %w", err)
	}
	fmt.Fprintf(w, "light client advanced to slot %d\n", lc.LatestSlot())

	if err := br.CompleteTransfer(id, remoteSender, recipient, token, amount, pi.NewSlot, proof); err != nil {
		return fmt.Errorf("complete: %w", err)
	}
	bal, err := br.Balance(token, recipient)
	if err != nil {
		return fmt.Errorf("recipient balance: %w", err)
	}
	if bal != amount {
		return fmt.Errorf("recipient holds %d after completion, want %d", bal, amount)
	}
	if st := br.State(); st.TotalLocked != 0 {
		return fmt.Errorf("locked %d after completion, want 0", st.TotalLocked)
	}
	fmt.Fprintf(w, "completion released %d units to the recipient\n", amount)

	err = br.CompleteTransfer(id, remoteSender, recipient, token, amount, pi.NewSlot, proof)
	if !errors.Is(err, bridge.ErrTransferAlreadyCompleted) {
		return fmt.Errorf("replayed completion returned %v, want %v", err, bridge.ErrTransferAlreadyCompleted)
	}
	fmt.Fprintln(w, "replayed completion refused")
	return nil
}

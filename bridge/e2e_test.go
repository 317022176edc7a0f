package bridge

import (
	"errors"
	"testing"
	"time"

	"github.com/zkbridge/zkbridge/core/types"
	"github.com/zkbridge/zkbridge/crypto"
	"github.com/zkbridge/zkbridge/groth16"
	"github.com/zkbridge/zkbridge/light"
	"github.com/zkbridge/zkbridge/log"
	"github.com/zkbridge/zkbridge/metrics"
	"github.com/zkbridge/zkbridge/store"
)

// TestEndToEndSettlement drives one transfer through the whole stack
// over a single store: an outbound lock, a proven light client update
// carrying the remote state root, and an inbound completion that
// releases the locked funds exactly once.
func TestEndToEndSettlement(t *testing.T) {
	ts := groth16.NewTestSetup([]byte("bridge-e2e"), 4)
	db := store.NewMemoryStore()
	reg := metrics.NewRegistry()
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	mappingSlot := types.BytesToHash([]byte{0x03})

	lc, err := light.NewClient(light.Config{
		ChainID:      7,
		VerifyingKey: ts.VK,
		Store:        db,
		Logger:       log.Discard(),
		Registry:     reg,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	b, err := NewBridge(Config{
		RemoteChainID:  7,
		Admin:          testAdmin,
		RemoteContract: testRemoteContract,
		MappingSlot:    mappingSlot,
		Light:          lc,
		Store:          db,
		Logger:         log.Discard(),
		Registry:       reg,
		Now:            clock.Now,
	})
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}

	err = lc.Initialize(testAdmin, 1000,
		types.BytesToHash([]byte{0x0b}),
		crypto.Sha256Hash([]byte("genesis-state")),
		types.BytesToHash([]byte{0xcc}),
	)
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if err := b.RegisterToken(testAdmin, TokenConfig{
		Token:       testToken,
		RemoteToken: testRemoteToken,
		NativeLocal: true,
		Enabled:     true,
	}); err != nil {
		t.Fatalf("RegisterToken: %v", err)
	}
	if err := b.Deposit(testToken, testSender, 1_000_000); err != nil {
		t.Fatalf("Deposit: %v", err)
	}

	id, err := b.InitiateTransfer(testSender, testDest, testToken, 1_000_000, nil)
	if err != nil {
		t.Fatalf("InitiateTransfer: %v", err)
	}
	if want := TransferID(testSender, testDest, 1_000_000, 1); id != want {
		t.Fatalf("transfer ID = %s, want %s (nonce 1)", id, want)
	}
	if got, _ := b.Balance(testToken, testSender); got != 0 {
		t.Fatalf("sender balance = %d, want 0", got)
	}
	if got := b.State().TotalLocked; got != 1_000_000 {
		t.Fatalf("total locked = %d, want 1000000", got)
	}

	// The remote chain commits the mirrored transfer; a relayer proves
	// the new consensus state to the light client.
	proof, remoteRoot := buildRemoteCommitment(t, id, testRemoteSender, testRecipient, 1_000_000, mappingSlot)

	st := lc.State()
	upd := light.Update{
		NewSlot:      1064,
		NewBlockRoot: crypto.Sha256Hash([]byte("block-1064")),
		NewStateRoot: remoteRoot,
	}
	pi := light.PublicInputs{
		PrevSlot:         st.LatestSlot,
		PrevBlockRoot:    st.LatestBlockRoot,
		NewSlot:          upd.NewSlot,
		NewBlockRoot:     upd.NewBlockRoot,
		ValidatorSetRoot: st.CurrentValidatorSetRoot,
	}
	upd.PublicInputs = pi.Encode()
	if upd.Proof, err = ts.Prove(groth16.PackInputs(upd.PublicInputs)); err != nil {
		t.Fatalf("Prove: %v", err)
	}
	if err := lc.ProcessUpdate(upd); err != nil {
		t.Fatalf("ProcessUpdate: %v", err)
	}
	if got := lc.LatestSlot(); got != 1064 {
		t.Fatalf("latest slot = %d, want 1064", got)
	}

	if err := b.CompleteTransfer(id, testRemoteSender, testRecipient, testToken, 1_000_000, 1064, proof); err != nil {
		t.Fatalf("CompleteTransfer: %v", err)
	}
	if got, _ := b.Balance(testToken, testRecipient); got != 1_000_000 {
		t.Fatalf("recipient balance = %d, want 1000000", got)
	}
	if got, _ := b.VaultBalance(testToken); got != 0 {
		t.Fatalf("vault = %d, want 0", got)
	}
	if got := b.State().TotalLocked; got != 0 {
		t.Fatalf("total locked = %d, want 0", got)
	}
	rec, err := b.Completion(id)
	if err != nil {
		t.Fatalf("Completion: %v", err)
	}
	if rec.Amount != 1_000_000 || !rec.Completed {
		t.Fatalf("completion record = %+v", rec)
	}

	// replay of the same settlement is rejected
	err = b.CompleteTransfer(id, testRemoteSender, testRecipient, testToken, 1_000_000, 1064, proof)
	if !errors.Is(err, ErrTransferAlreadyCompleted) {
		t.Fatalf("replay err = %v, want %v", err, ErrTransferAlreadyCompleted)
	}

	if got := reg.Counter("bridge/transfers/initiated").Value(); got != 1 {
		t.Fatalf("initiated counter = %d, want 1", got)
	}
	if got := reg.Counter("bridge/transfers/completed").Value(); got != 1 {
		t.Fatalf("completed counter = %d, want 1", got)
	}
	if got := reg.Counter("light/updates/accepted").Value(); got != 1 {
		t.Fatalf("accepted counter = %d, want 1", got)
	}
}

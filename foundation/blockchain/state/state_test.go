package state_test

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ardanlabs/toyledger/foundation/blockchain/cipher"
	"github.com/ardanlabs/toyledger/foundation/blockchain/digest"
	"github.com/ardanlabs/toyledger/foundation/blockchain/state"
	"github.com/ardanlabs/toyledger/foundation/blockchain/storage/memory"
	"github.com/ardanlabs/toyledger/foundation/events"
	"github.com/ardanlabs/toyledger/foundation/logger"
)

func ifErrFailNow(t *testing.T, err error) {
	if err != nil {
		t.Error(err)
		t.FailNow()
	}
}

type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) contains(sub string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, msg := range r.msgs {
		if strings.Contains(msg, sub) {
			return true
		}
	}
	return false
}

func newState(t *testing.T) (*state.State, *recorder, *events.Events) {
	log, err := logger.New("TEST", filepath.Join(t.TempDir(), "test.log"))
	ifErrFailNow(t, err)
	t.Cleanup(func() { log.Sync() })

	storage, err := memory.New()
	ifErrFailNow(t, err)

	kp, err := cipher.GenerateKeyPair()
	ifErrFailNow(t, err)

	evts := events.New()
	rec := recorder{}

	ev := func(v string, args ...any) {
		s := fmt.Sprintf(v, args...)
		log.Infow(s, "traceid", "00000000-0000-0000-0000-000000000000")
		evts.Send(s)

		rec.mu.Lock()
		rec.msgs = append(rec.msgs, s)
		rec.mu.Unlock()
	}

	st, err := state.New(state.Config{
		KeyPair:      kp,
		Storage:      storage,
		HashStrategy: digest.SHA256,
		EvHandler:    ev,
	})
	ifErrFailNow(t, err)
	t.Cleanup(func() { st.Shutdown() })

	return st, &rec, evts
}

func Test_SubmitAndCommit(t *testing.T) {
	st, rec, evts := newState(t)

	id, ch := evts.Acquire("")
	defer evts.Release(id)

	if _, _, err := st.CommitBlock(); !errors.Is(err, state.ErrNothingPending) {
		t.Fatalf("expected ErrNothingPending, got %v", err)
	}

	tx, err := st.SubmitTransaction("Alice", "Bob", 10)
	ifErrFailNow(t, err)

	if !tx.VerifySignature(st.RetrievePublicKey()) {
		t.Fatal("expected the submitted transaction to verify with the node key")
	}

	_, err = st.SubmitTransaction("Bob", "Carol", 3)
	ifErrFailNow(t, err)

	if got := len(st.RetrievePending()); got != 2 {
		t.Fatalf("expected 2 pending transactions, got %d", got)
	}

	block, number, err := st.CommitBlock()
	ifErrFailNow(t, err)

	if number != 1 {
		t.Fatalf("expected block number 1, got %d", number)
	}

	if block.PrevHash() != st.RetrieveGenesis().Hash() {
		t.Fatal("expected the committed block to link to genesis")
	}

	if st.RetrieveLatestBlock() != block {
		t.Fatal("expected the committed block to be the latest block")
	}

	if got := len(st.RetrievePending()); got != 0 {
		t.Fatalf("expected no pending transactions after commit, got %d", got)
	}

	got, err := st.RetrieveBlock(1)
	ifErrFailNow(t, err)
	if got.Hash() != block.Hash() {
		t.Fatal("expected to retrieve the committed block by number")
	}

	ifErrFailNow(t, st.Validate())

	if !rec.contains("state: CommitBlock: blk[1]") {
		t.Fatal("expected a commit event")
	}

	select {
	case msg := <-ch:
		if !strings.HasPrefix(msg, "state: SubmitTransaction") && !strings.HasPrefix(msg, "ledger:") {
			t.Fatalf("unexpected first event %q", msg)
		}
	default:
		t.Fatal("expected events to be fanned out to subscribers")
	}
}

func Test_SubmitUnencodable(t *testing.T) {
	st, rec, _ := newState(t)

	_, err := st.SubmitTransaction("日本", "Bob", 1)

	var ee *cipher.EncodingError
	if !errors.As(err, &ee) {
		t.Fatalf("expected an encoding error, got %v", err)
	}

	if ee.Index != 0 || ee.Symbol != '日' {
		t.Fatalf("expected the first symbol to be reported, got %q at %d", ee.Symbol, ee.Index)
	}

	if len(st.RetrievePending()) != 0 {
		t.Fatal("expected the transaction to be refused")
	}

	if !rec.contains("WARNING") {
		t.Fatal("expected a warning event")
	}
}

func Test_Reset(t *testing.T) {
	st, _, _ := newState(t)

	_, err := st.SubmitTransaction("Alice", "Bob", 10)
	ifErrFailNow(t, err)

	_, _, err = st.CommitBlock()
	ifErrFailNow(t, err)

	_, err = st.SubmitTransaction("Alice", "Carol", 4)
	ifErrFailNow(t, err)

	ifErrFailNow(t, st.Reset())

	if got := len(st.RetrieveBlocks()); got != 1 {
		t.Fatalf("expected only the genesis block after reset, got %d", got)
	}

	if got := len(st.RetrievePending()); got != 0 {
		t.Fatalf("expected pending transactions to be dropped, got %d", got)
	}

	_, err = st.SubmitTransaction("Alice", "Dave", 1)
	ifErrFailNow(t, err)

	block, _, err := st.CommitBlock()
	ifErrFailNow(t, err)

	if block.PrevHash() != st.RetrieveGenesis().Hash() {
		t.Fatal("expected the first block after reset to link to the new genesis")
	}
}

func Test_InvalidKeyPair(t *testing.T) {
	_, err := state.New(state.Config{})
	if !errors.Is(err, cipher.ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
}

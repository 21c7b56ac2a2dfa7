// Package state is the core API for the ledger node and implements the
// business rules for accepting transactions and committing blocks.
package state

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/toyledger/foundation/blockchain/cipher"
	"github.com/ardanlabs/toyledger/foundation/blockchain/digest"
	"github.com/ardanlabs/toyledger/foundation/blockchain/ledger"
)

// ErrNothingPending is returned when a commit is requested with no
// transactions waiting in the pending block.
var ErrNothingPending = errors.New("no pending transactions to commit")

// EventHandler defines a function that is called when events occur in the
// processing of transactions and blocks.
type EventHandler func(v string, args ...any)

// =============================================================================

// Config represents the configuration required to start the node state.
type Config struct {
	KeyPair      cipher.KeyPair
	Storage      ledger.Storage
	HashStrategy digest.Strategy
	EvHandler    EventHandler
}

// State manages the ledger and the open block that collects submitted
// transactions until they are committed.
type State struct {
	mu sync.Mutex

	keyPair   cipher.KeyPair
	evHandler EventHandler

	ledger  *ledger.Ledger
	pending *ledger.Block
}

// New constructs the node state, loading or creating the ledger.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if !cfg.KeyPair.Public.Valid() || !cfg.KeyPair.Private.Valid() {
		return nil, fmt.Errorf("node key pair: %w", cipher.ErrInvalidKey)
	}

	ldgr, err := ledger.New(ledger.Config{
		Storage:      cfg.Storage,
		HashStrategy: cfg.HashStrategy,
		EvHandler:    ev,
	})
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}

	if err := ldgr.Validate(cfg.KeyPair.Public); err != nil {
		ldgr.Close()
		return nil, fmt.Errorf("validating ledger: %w", err)
	}

	state := State{
		keyPair:   cfg.KeyPair,
		evHandler: ev,
		ledger:    ldgr,
		pending:   ldgr.NewBlock(),
	}

	ev("state: New: blocks[%d]: latest[%s]", ldgr.Len(), ldgr.LatestBlock().Hash())

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	return s.ledger.Close()
}

// Reset clears the ledger back to a new genesis block and drops any pending
// transactions.
func (s *State) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.Reset(); err != nil {
		return err
	}

	s.pending = s.ledger.NewBlock()

	s.evHandler("state: Reset: genesis[%s]", s.ledger.Genesis().Hash())

	return nil
}

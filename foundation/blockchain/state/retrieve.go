package state

import (
	"github.com/ardanlabs/toyledger/foundation/blockchain/cipher"
	"github.com/ardanlabs/toyledger/foundation/blockchain/ledger"
)

// RetrievePublicKey returns the node's public key.
func (s *State) RetrievePublicKey() cipher.Key {
	return s.keyPair.Public
}

// RetrieveGenesis returns the genesis block.
func (s *State) RetrieveGenesis() *ledger.Block {
	return s.ledger.Genesis()
}

// RetrieveLatestBlock returns the latest committed block.
func (s *State) RetrieveLatestBlock() *ledger.Block {
	return s.ledger.LatestBlock()
}

// RetrieveBlocks returns the committed blocks in order.
func (s *State) RetrieveBlocks() []*ledger.Block {
	return s.ledger.Blocks()
}

// RetrieveBlock returns the committed block with the specified number.
func (s *State) RetrieveBlock(num uint64) (*ledger.Block, error) {
	return s.ledger.GetBlock(num)
}

// RetrievePending returns a copy of the transactions waiting to be committed.
func (s *State) RetrievePending() []ledger.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pending.Transactions()
}

// Validate audits the committed chain against the node's public key.
func (s *State) Validate() error {
	return s.ledger.Validate(s.keyPair.Public)
}

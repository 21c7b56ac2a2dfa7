package state

import (
	"errors"

	"github.com/ardanlabs/toyledger/foundation/blockchain/cipher"
	"github.com/ardanlabs/toyledger/foundation/blockchain/ledger"
)

// SubmitTransaction signs a new transaction with the node's private key and
// adds it to the pending block. A payload holding a symbol the key modulus
// can't represent is refused since its signature could never verify and the
// chain would fail its audit on the next start.
func (s *State) SubmitTransaction(sender string, recipient string, amount uint64) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := ledger.NewTransaction(sender, recipient, amount)

	var ee *cipher.EncodingError
	if err := cipher.CheckMessage(tx.Payload(), s.keyPair.Private); errors.As(err, &ee) {
		s.evHandler("state: SubmitTransaction: WARNING: %s: symbol %q at %d wraps modulus %s", tx, ee.Symbol, ee.Index, ee.Modulus)
		return ledger.Transaction{}, err
	}

	if err := s.pending.AddTransaction(&tx, s.keyPair.Private); err != nil {
		return ledger.Transaction{}, err
	}

	s.evHandler("state: SubmitTransaction: pending[%d]: %s", len(s.pending.Transactions()), tx)

	return tx, nil
}

// CommitBlock appends the pending block to the ledger and opens a new
// pending block. It returns the committed block and its number.
func (s *State) CommitBlock() (*ledger.Block, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	block := s.pending
	if len(block.Transactions()) == 0 {
		return nil, 0, ErrNothingPending
	}

	if err := s.ledger.Append(block); err != nil {
		return nil, 0, err
	}

	number := uint64(s.ledger.Len() - 1)
	s.pending = s.ledger.NewBlock()

	root, _ := block.MerkleRoot()
	s.evHandler("state: CommitBlock: blk[%d]: hash[%s]: merkle[%s]", number, block.Hash(), root)

	return block, number, nil
}

package ledger

import (
	"fmt"

	"github.com/ardanlabs/toyledger/foundation/blockchain/digest"
)

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the ledger's blocks.
type Storage interface {
	Write(blockData BlockData) error
	GetBlock(num uint64) (BlockData, error)
	ForEach() Iterator
	Close() error
	Reset() error
}

// Iterator interface represents the behavior required to be implemented by any
// package providing support to iterate over the blocks.
type Iterator interface {
	Next() (BlockData, error)
	Done() bool
}

// =============================================================================

// BlockData represents what is written to storage. The fields follow the
// order used for hashing so the stored hash can be recomputed on reload.
type BlockData struct {
	Number    uint64        `json:"number"`
	Trans     []Transaction `json:"transactions"`
	PrevHash  string        `json:"previous_hash"`
	TimeStamp float64       `json:"timestamp"`
	Hash      string        `json:"hash"`
}

// NewBlockData constructs the value to serialize to storage.
func NewBlockData(number uint64, block *Block) BlockData {
	return BlockData{
		Number:    number,
		Trans:     block.Transactions(),
		PrevHash:  block.prevHash,
		TimeStamp: block.timeStamp,
		Hash:      block.Hash(),
	}
}

// ToBlock converts a BlockData into a sealed Block, checking that the stored
// hash matches the hash recomputed from the stored fields.
func ToBlock(blockData BlockData, strategy digest.Strategy) (*Block, error) {
	trans := make([]Transaction, len(blockData.Trans))
	copy(trans, blockData.Trans)

	b := NewBlock(blockData.PrevHash, WithTimeStamp(blockData.TimeStamp), WithHashStrategy(strategy))
	b.trans = trans
	b.sealed = true

	if hash := b.Hash(); hash != blockData.Hash {
		return nil, fmt.Errorf("%w: block %d, got %s, exp %s", ErrHashMismatch, blockData.Number, hash, blockData.Hash)
	}

	return b, nil
}

// Package memory implements the ability to read and write blocks to memory
// using a slice.
package memory

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/toyledger/foundation/blockchain/ledger"
)

// ErrEndOfChain is returned by the iterator once every block has been read.
var ErrEndOfChain = errors.New("end of chain")

// Memory represents the serialization implementation for reading and storing
// blocks in memory using a slice. This implements the ledger.Storage
// interface.
type Memory struct {
	mu     sync.RWMutex
	blocks []ledger.BlockData
}

// New constructs a Memory value for use.
func New() (*Memory, error) {
	return &Memory{}, nil
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Write takes the specified block and stores it in memory. Blocks must be
// written in order starting with the genesis block as number 0.
func (m *Memory) Write(blockData ledger.BlockData) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if uint64(len(m.blocks)) != blockData.Number {
		return fmt.Errorf("block %d is out of order, expecting %d", blockData.Number, len(m.blocks))
	}

	m.blocks = append(m.blocks, clone(blockData))

	return nil
}

// GetBlock locates and returns the contents of the specified block by number.
func (m *Memory) GetBlock(num uint64) (ledger.BlockData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if num >= uint64(len(m.blocks)) {
		return ledger.BlockData{}, fmt.Errorf("block %d: %w", num, ledger.ErrNotFound)
	}

	return clone(m.blocks[num]), nil
}

// ForEach returns an iterator to walk through all the blocks starting with
// the genesis block.
func (m *Memory) ForEach() ledger.Iterator {
	return &memoryIterator{storage: m}
}

// Reset will clear out the blocks held in memory.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = nil
	return nil
}

// clone copies the transaction slice so callers can't change what is stored.
func clone(blockData ledger.BlockData) ledger.BlockData {
	trans := make([]ledger.Transaction, len(blockData.Trans))
	copy(trans, blockData.Trans)
	blockData.Trans = trans

	return blockData
}

// =============================================================================

// memoryIterator represents the iteration implementation for walking
// through the blocks in memory. This implements the ledger Iterator interface.
type memoryIterator struct {
	storage *Memory // Access to the storage API.
	current uint64  // Current block number being iterated over.
	eoc     bool    // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block.
func (mi *memoryIterator) Next() (ledger.BlockData, error) {
	if mi.eoc {
		return ledger.BlockData{}, ErrEndOfChain
	}

	blockData, err := mi.storage.GetBlock(mi.current)
	if err != nil {
		mi.eoc = true
	}

	mi.current++

	return blockData, err
}

// Done returns the end of chain value.
func (mi *memoryIterator) Done() bool {
	return mi.eoc
}

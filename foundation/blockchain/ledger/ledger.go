// Package ledger maintains the chain of blocks, the blocks themselves and the
// signed transactions they hold.
package ledger

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ardanlabs/toyledger/foundation/blockchain/cipher"
	"github.com/ardanlabs/toyledger/foundation/blockchain/digest"
)

// Set of errors returned by the ledger.
var (
	ErrChainBroken  = errors.New("block does not link to the latest block")
	ErrHashMismatch = errors.New("stored block hash does not match its content")
	ErrNotFound     = errors.New("block not found")
)

// Config represents the configuration required to start the ledger.
type Config struct {
	Storage      Storage
	HashStrategy digest.Strategy
	EvHandler    func(v string, args ...any)
}

// Ledger manages an append-only chain of blocks. The first block is the
// genesis block which links to GenesisPrevHash.
type Ledger struct {
	mu sync.RWMutex

	blocks       []*Block
	storage      Storage
	hashStrategy digest.Strategy
	evHandler    func(v string, args ...any)
}

// New constructs a ledger. Blocks found in storage are reloaded and checked,
// otherwise a new genesis block is created and written.
func New(cfg Config) (*Ledger, error) {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	strategy := cfg.HashStrategy
	if strategy == nil {
		strategy = digest.SHA256
	}

	l := Ledger{
		storage:      cfg.Storage,
		hashStrategy: strategy,
		evHandler:    ev,
	}

	if err := l.load(); err != nil {
		return nil, err
	}

	if len(l.blocks) == 0 {
		if err := l.writeGenesis(); err != nil {
			return nil, err
		}
	}

	return &l, nil
}

// Close closes the underlying storage.
func (l *Ledger) Close() error {
	if l.storage == nil {
		return nil
	}
	return l.storage.Close()
}

// Reset clears storage and starts the ledger over from a new genesis block.
func (l *Ledger) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.storage != nil {
		if err := l.storage.Reset(); err != nil {
			return fmt.Errorf("reset storage: %w", err)
		}
	}

	l.blocks = nil

	return l.writeGenesis()
}

// NewBlock constructs an open block that links to the latest block.
func (l *Ledger) NewBlock() *Block {
	return NewBlock(l.LatestBlock().Hash(), WithHashStrategy(l.hashStrategy))
}

// Append seals the block and adds it to the end of the chain. The block must
// link to the latest block.
func (l *Ledger) Append(block *Block) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if block.sealed {
		return fmt.Errorf("append: %w", ErrBlockSealed)
	}

	latest := l.blocks[len(l.blocks)-1]
	if err := block.ValidateBlock(latest, cipher.Key{}, l.evHandler); err != nil {
		return fmt.Errorf("append: %w", err)
	}

	number := uint64(len(l.blocks))
	if l.storage != nil {
		if err := l.storage.Write(NewBlockData(number, block)); err != nil {
			return fmt.Errorf("write block %d: %w", number, err)
		}
	}

	block.sealed = true
	l.blocks = append(l.blocks, block)

	l.evHandler("ledger: Append: blk[%d]: hash[%s]: prev[%s]: trans[%d]", number, block.Hash(), block.prevHash, len(block.trans))

	return nil
}

// Genesis returns the genesis block.
func (l *Ledger) Genesis() *Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.blocks[0]
}

// LatestBlock returns the latest block.
func (l *Ledger) LatestBlock() *Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.blocks[len(l.blocks)-1]
}

// GetBlock returns the block with the specified number, genesis being 0.
func (l *Ledger) GetBlock(num uint64) (*Block, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if num >= uint64(len(l.blocks)) {
		return nil, fmt.Errorf("block %d: %w", num, ErrNotFound)
	}

	return l.blocks[num], nil
}

// Blocks returns the blocks of the chain in order.
func (l *Ledger) Blocks() []*Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	blocks := make([]*Block, len(l.blocks))
	copy(blocks, l.blocks)
	return blocks
}

// Len returns the number of blocks in the chain, genesis included.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.blocks)
}

// Validate walks the chain checking every link and every transaction
// signature against the public key.
func (l *Ledger) Validate(publicKey cipher.Key) error {
	if !publicKey.Valid() {
		return fmt.Errorf("validate: %w", cipher.ErrInvalidKey)
	}

	blocks := l.Blocks()

	var previous *Block
	for num, block := range blocks {
		if err := block.ValidateBlock(previous, publicKey, l.evHandler); err != nil {
			return fmt.Errorf("block %d: %w", num, err)
		}
		previous = block
	}

	return nil
}

// =============================================================================

// load reads all the blocks from storage, validating each against its parent.
func (l *Ledger) load() error {
	if l.storage == nil {
		return nil
	}

	var previous *Block

	iter := l.storage.ForEach()
	for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
		if err != nil {
			return fmt.Errorf("read block: %w", err)
		}

		block, err := ToBlock(blockData, l.hashStrategy)
		if err != nil {
			return err
		}

		if err := block.ValidateBlock(previous, cipher.Key{}, l.evHandler); err != nil {
			return fmt.Errorf("block %d: %w", blockData.Number, err)
		}

		l.blocks = append(l.blocks, block)
		previous = block
	}

	if len(l.blocks) > 0 {
		l.evHandler("ledger: load: blocks[%d]: latest[%s]", len(l.blocks), previous.Hash())
	}

	return nil
}

// writeGenesis creates the genesis block and writes it to storage.
func (l *Ledger) writeGenesis() error {
	genesis := NewBlock(GenesisPrevHash, WithHashStrategy(l.hashStrategy))

	if l.storage != nil {
		if err := l.storage.Write(NewBlockData(0, genesis)); err != nil {
			return fmt.Errorf("write genesis: %w", err)
		}
	}

	genesis.sealed = true
	l.blocks = []*Block{genesis}

	l.evHandler("ledger: genesis: hash[%s]", genesis.Hash())

	return nil
}

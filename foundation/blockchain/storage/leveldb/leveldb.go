// Package leveldb implements the ability to read and write blocks to a
// LevelDB database keyed by block number.
package leveldb

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ardanlabs/toyledger/foundation/blockchain/ledger"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

// ErrEndOfChain is returned by the iterator once every block has been read.
var ErrEndOfChain = errors.New("end of chain")

// blockPrefix prefixes every block key. Numbers are zero padded so keys sort
// in block order.
const blockPrefix = "block:"

// LevelDB represents the serialization implementation for reading and
// storing blocks in a LevelDB database. This implements the ledger.Storage
// interface.
type LevelDB struct {
	db   *leveldb.DB
	sync bool
}

// New opens or creates the database at the specified path. When sync is true
// every write is flushed to disk before returning.
func New(dbPath string, sync bool) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dbPath, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", dbPath, err)
	}

	return &LevelDB{db: db, sync: sync}, nil
}

// Close closes the database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

// Write takes the specified block and stores it under its number.
func (l *LevelDB) Write(blockData ledger.BlockData) error {
	data, err := json.Marshal(blockData)
	if err != nil {
		return err
	}

	return l.db.Put(key(blockData.Number), data, &opt.WriteOptions{Sync: l.sync})
}

// GetBlock locates and returns the contents of the specified block by number.
func (l *LevelDB) GetBlock(num uint64) (ledger.BlockData, error) {
	data, err := l.db.Get(key(num), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return ledger.BlockData{}, fmt.Errorf("block %d: %w", num, ledger.ErrNotFound)
		}
		return ledger.BlockData{}, err
	}

	var blockData ledger.BlockData
	if err := json.Unmarshal(data, &blockData); err != nil {
		return ledger.BlockData{}, fmt.Errorf("decode block %d: %w", num, err)
	}

	return blockData, nil
}

// ForEach returns an iterator to walk through all the blocks starting with
// the genesis block.
func (l *LevelDB) ForEach() ledger.Iterator {
	return &levelDBIterator{storage: l}
}

// Reset deletes every block key in a single batch.
func (l *LevelDB) Reset() error {
	iter := l.db.NewIterator(util.BytesPrefix([]byte(blockPrefix)), nil)
	defer iter.Release()

	batch := new(leveldb.Batch)
	for iter.Next() {
		batch.Delete(iter.Key())
	}

	if err := iter.Error(); err != nil {
		return err
	}

	return l.db.Write(batch, &opt.WriteOptions{Sync: l.sync})
}

// key forms the database key for the specified block.
func key(num uint64) []byte {
	return fmt.Appendf(nil, "%s%020d", blockPrefix, num)
}

// =============================================================================

// levelDBIterator represents the iteration implementation for walking
// through the blocks by number. This implements the ledger Iterator
// interface.
type levelDBIterator struct {
	storage *LevelDB // Access to the storage API.
	current uint64   // Current block number being iterated over.
	eoc     bool     // Represents the iterator is at the end of the chain.
}

// Next retrieves the next block from the database.
func (li *levelDBIterator) Next() (ledger.BlockData, error) {
	if li.eoc {
		return ledger.BlockData{}, ErrEndOfChain
	}

	blockData, err := li.storage.GetBlock(li.current)
	if errors.Is(err, ledger.ErrNotFound) {
		li.eoc = true
	}

	li.current++

	return blockData, err
}

// Done returns the end of chain value.
func (li *levelDBIterator) Done() bool {
	return li.eoc
}

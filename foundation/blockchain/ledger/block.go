package ledger

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/toyledger/foundation/blockchain/canonical"
	"github.com/ardanlabs/toyledger/foundation/blockchain/cipher"
	"github.com/ardanlabs/toyledger/foundation/blockchain/digest"
	"github.com/ardanlabs/toyledger/foundation/blockchain/merkle"
)

// GenesisPrevHash is the previous hash recorded by the genesis block.
const GenesisPrevHash = "0"

// ErrBlockSealed is returned when a transaction is added to a block that is
// already part of the ledger.
var ErrBlockSealed = errors.New("block is sealed")

// =============================================================================

// Block represents a group of transactions batched together and linked to the
// previous block by its hash. A block is open until it is appended to a
// ledger, after which it is sealed and can no longer change.
type Block struct {
	trans        []Transaction
	prevHash     string
	timeStamp    float64
	sealed       bool
	hashStrategy digest.Strategy
}

// BlockOption configures a block at construction.
type BlockOption func(b *Block)

// WithHashStrategy sets the hash strategy used for the block hash and its
// merkle tree. The default is sha256.
func WithHashStrategy(strategy digest.Strategy) BlockOption {
	return func(b *Block) {
		b.hashStrategy = strategy
	}
}

// WithTimeStamp sets the block's timestamp instead of using the current time.
func WithTimeStamp(timeStamp float64) BlockOption {
	return func(b *Block) {
		b.timeStamp = timeStamp
	}
}

// NewBlock constructs an open block with no transactions that links to the
// block with the specified hash.
func NewBlock(prevHash string, options ...BlockOption) *Block {
	b := Block{
		prevHash:     prevHash,
		timeStamp:    Now(),
		hashStrategy: digest.SHA256,
	}

	for _, option := range options {
		option(&b)
	}

	return &b
}

// AddTransaction signs the transaction with the private key and appends a
// copy of it to the block. The caller's transaction carries the signature
// afterwards.
func (b *Block) AddTransaction(tx *Transaction, privateKey cipher.Key) error {
	if b.sealed {
		return ErrBlockSealed
	}

	if err := tx.Sign(privateKey); err != nil {
		return fmt.Errorf("sign transaction: %w", err)
	}

	b.trans = append(b.trans, *tx)

	return nil
}

// Hash returns the digest of the block: the JSON form of its transactions,
// then the previous hash, then the timestamp. It is computed on every call so
// it always reflects the block's current content.
func (b *Block) Hash() string {
	return digest.Sum(b.hashStrategy, b.hashInput())
}

// PrevHash returns the hash of the block this block links to.
func (b *Block) PrevHash() string {
	return b.prevHash
}

// TimeStamp returns the time the block was constructed in unix seconds.
func (b *Block) TimeStamp() float64 {
	return b.timeStamp
}

// Sealed reports whether the block is part of a ledger.
func (b *Block) Sealed() bool {
	return b.sealed
}

// Transactions returns a copy of the block's transactions in order.
func (b *Block) Transactions() []Transaction {
	trans := make([]Transaction, len(b.trans))
	copy(trans, b.trans)
	return trans
}

// MerkleTree constructs the merkle tree for the block's transactions as they
// are right now.
func (b *Block) MerkleTree() (*merkle.Tree[Transaction], error) {
	return merkle.NewTree(b.Transactions(), merkle.WithHashStrategy[Transaction](b.hashStrategy))
}

// MerkleRoot returns the merkle root of the block's transactions. The boolean
// is false when the block has no transactions.
func (b *Block) MerkleRoot() (string, bool) {
	tree, err := b.MerkleTree()
	if err != nil {
		return "", false
	}

	return tree.RootHash()
}

// ValidateBlock takes a block and validates it to follow the previous block
// in the ledger. A nil previous block validates a genesis block. An invalid
// public key limits the checks to the chain links.
func (b *Block) ValidateBlock(previous *Block, publicKey cipher.Key, evHandler func(v string, args ...any)) error {
	if evHandler == nil {
		evHandler = func(v string, args ...any) {}
	}

	hash := b.Hash()

	evHandler("ledger: ValidateBlock: validate: blk[%s]: check: parent hash does match parent block", short(hash))

	exp := GenesisPrevHash
	if previous != nil {
		exp = previous.Hash()
	}

	if b.prevHash != exp {
		return fmt.Errorf("%w: parent block hash doesn't match our known parent, got %s, exp %s", ErrChainBroken, b.prevHash, exp)
	}

	if previous != nil && b.timeStamp < previous.timeStamp {
		return fmt.Errorf("block timestamp is before parent block, parent %s, block %s", canonical.FormatFloat(previous.timeStamp), canonical.FormatFloat(b.timeStamp))
	}

	if !publicKey.Valid() {
		return nil
	}

	evHandler("ledger: ValidateBlock: validate: blk[%s]: check: transaction signatures", short(hash))

	for i, tx := range b.trans {
		if !tx.VerifySignature(publicKey) {
			return fmt.Errorf("transaction %d in block %s has an invalid signature: %s", i, short(hash), tx)
		}
	}

	return nil
}

// String implements the fmt.Stringer interface for logging.
func (b *Block) String() string {
	return fmt.Sprintf("%s:%d", short(b.Hash()), len(b.trans))
}

// hashInput builds the text the block hash is computed over.
func (b *Block) hashInput() string {
	fields := make([]canonical.Fields, len(b.trans))
	for i, tx := range b.trans {
		fields[i] = tx.CanonicalFields()
	}

	return canonical.JSON(fields) + canonical.Text(b.prevHash) + canonical.Text(b.timeStamp)
}

// short trims a hash for log output.
func short(hash string) string {
	if len(hash) <= 12 {
		return hash
	}
	return hash[:12]
}

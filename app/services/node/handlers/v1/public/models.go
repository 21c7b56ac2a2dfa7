package public

import (
	"math/big"

	"github.com/ardanlabs/toyledger/foundation/blockchain/cipher"
	"github.com/ardanlabs/toyledger/foundation/blockchain/ledger"
	"github.com/ardanlabs/toyledger/foundation/blockchain/merkle"
)

// NewTx is what a client submits to add a transaction to the pending block.
type NewTx struct {
	Sender    string `json:"sender" validate:"required"`
	Recipient string `json:"recipient" validate:"required,nefield=Sender"`
	Amount    uint64 `json:"amount"`
}

// Tx is the view of a transaction returned to clients.
type Tx struct {
	Sender    string     `json:"sender"`
	Recipient string     `json:"recipient"`
	Amount    uint64     `json:"amount"`
	TimeStamp float64    `json:"timestamp"`
	Signature []*big.Int `json:"signature"`
	Verified  bool       `json:"verified"`
	Display   string     `json:"display"`
}

// Block is the view of a block returned to clients.
type Block struct {
	Number       uint64  `json:"number"`
	Hash         string  `json:"hash"`
	PrevHash     string  `json:"previous_hash"`
	TimeStamp    float64 `json:"timestamp"`
	MerkleRoot   string  `json:"merkle_root,omitempty"`
	Transactions []Tx    `json:"transactions"`
}

// Merkle is the view of a block's merkle tree.
type Merkle struct {
	Number  uint64   `json:"number"`
	Root    string   `json:"root,omitempty"`
	RootHex string   `json:"root_hex,omitempty"`
	Leaves  []string `json:"leaves"`
	Proofs  []Proof  `json:"proofs"`
}

// Proof is the inclusion proof of one transaction.
type Proof struct {
	Leaf   string   `json:"leaf"`
	Hashes []string `json:"hashes"`
	Order  []int64  `json:"order"`
}

// Commit is returned after the pending block is committed.
type Commit struct {
	Status string `json:"status"`
	Block  Block  `json:"block"`
}

// Validation is the result of auditing the chain.
type Validation struct {
	Valid  bool   `json:"valid"`
	Blocks int    `json:"blocks"`
	Error  string `json:"error,omitempty"`
}

// =============================================================================

func toTx(tx ledger.Transaction, publicKey cipher.Key) Tx {
	return Tx{
		Sender:    tx.Sender,
		Recipient: tx.Recipient,
		Amount:    tx.Amount,
		TimeStamp: tx.TimeStamp,
		Signature: tx.Signature,
		Verified:  tx.VerifySignature(publicKey),
		Display:   tx.String(),
	}
}

func toTxs(trans []ledger.Transaction, publicKey cipher.Key) []Tx {
	txs := make([]Tx, len(trans))
	for i, tx := range trans {
		txs[i] = toTx(tx, publicKey)
	}
	return txs
}

func toBlock(number uint64, block *ledger.Block, publicKey cipher.Key) Block {
	root, _ := block.MerkleRoot()

	return Block{
		Number:       number,
		Hash:         block.Hash(),
		PrevHash:     block.PrevHash(),
		TimeStamp:    block.TimeStamp(),
		MerkleRoot:   root,
		Transactions: toTxs(block.Transactions(), publicKey),
	}
}

func toMerkle(number uint64, tree *merkle.Tree[ledger.Transaction]) (Merkle, error) {
	m := Merkle{
		Number: number,
		Leaves: make([]string, len(tree.Leafs)),
		Proofs: make([]Proof, 0, len(tree.Leafs)),
	}

	if root, ok := tree.RootHash(); ok {
		m.Root = root
		m.RootHex = tree.RootHex()
	}

	for i, leaf := range tree.Leafs {
		m.Leaves[i] = leaf.Hash

		hashes, order, err := tree.Proof(leaf.Value)
		if err != nil {
			return Merkle{}, err
		}
		m.Proofs = append(m.Proofs, Proof{Leaf: leaf.Hash, Hashes: hashes, Order: order})
	}

	return m, nil
}

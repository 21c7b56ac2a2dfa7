package ledger

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ardanlabs/toyledger/foundation/blockchain/canonical"
	"github.com/ardanlabs/toyledger/foundation/blockchain/cipher"
)

// Transaction is a signed transfer of an amount between two parties.
type Transaction struct {
	Sender    string     `json:"sender"`    // Party sending the amount.
	Recipient string     `json:"recipient"` // Party receiving the amount.
	Amount    uint64     `json:"amount"`    // Amount transferred in whole units.
	TimeStamp float64    `json:"timestamp"` // Unix seconds the transaction was created.
	Signature []*big.Int `json:"signature"` // Per-symbol encrypted payload, nil until signed.
}

// NewTransaction constructs a new unsigned transaction stamped with the
// current time.
func NewTransaction(sender string, recipient string, amount uint64) Transaction {
	return Transaction{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		TimeStamp: Now(),
	}
}

// Now returns the current time as unix seconds with a sub-second fraction.
func Now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}

// Payload returns the text that is signed: sender, recipient, amount and
// timestamp concatenated without separators.
func (tx Transaction) Payload() string {
	return canonical.Text(tx.Sender) +
		canonical.Text(tx.Recipient) +
		canonical.Text(tx.Amount) +
		canonical.Text(tx.TimeStamp)
}

// Sign encrypts the payload with the private key and stores the result as
// the signature. Signing again replaces the signature, the timestamp is kept.
func (tx *Transaction) Sign(privateKey cipher.Key) error {
	if !privateKey.Valid() {
		return cipher.ErrInvalidKey
	}

	tx.Signature = cipher.Encrypt(tx.Payload(), privateKey)

	return nil
}

// IsSigned reports whether the transaction carries a signature.
func (tx Transaction) IsSigned() bool {
	return tx.Signature != nil
}

// VerifySignature decrypts the signature with the public key and reports
// whether it matches the payload. An unsigned transaction never verifies.
func (tx Transaction) VerifySignature(publicKey cipher.Key) bool {
	if tx.Signature == nil || !publicKey.Valid() {
		return false
	}

	return cipher.Decrypt(tx.Signature, publicKey) == tx.Payload()
}

// CanonicalFields returns the transaction's fields in the order used for
// hashing and display.
func (tx Transaction) CanonicalFields() canonical.Fields {
	return canonical.Fields{
		{Name: "sender", Value: tx.Sender},
		{Name: "recipient", Value: tx.Recipient},
		{Name: "amount", Value: tx.Amount},
		{Name: "timestamp", Value: tx.TimeStamp},
		{Name: "signature", Value: tx.Signature},
	}
}

// DictString returns the dict form of the transaction's fields.
func (tx Transaction) DictString() string {
	return canonical.Repr(tx.CanonicalFields())
}

// MerkleLeaf implements the merkle Hashable interface. Leaves of a tree with
// more than one transaction hash the dict form.
func (tx Transaction) MerkleLeaf() string {
	return tx.DictString()
}

// String implements the fmt.Stringer interface. A merkle tree holding a
// single transaction hashes this form.
func (tx Transaction) String() string {
	return fmt.Sprintf("Transaction(%s -> %s: %s @ %s)",
		canonical.Text(tx.Sender),
		canonical.Text(tx.Recipient),
		canonical.Text(tx.Amount),
		canonical.Text(tx.TimeStamp))
}

// Equals implements the merkle Hashable interface for providing an equality
// check between two transactions.
func (tx Transaction) Equals(other Transaction) bool {
	if tx.Sender != other.Sender ||
		tx.Recipient != other.Recipient ||
		tx.Amount != other.Amount ||
		tx.TimeStamp != other.TimeStamp ||
		len(tx.Signature) != len(other.Signature) ||
		(tx.Signature == nil) != (other.Signature == nil) {
		return false
	}

	for i := range tx.Signature {
		if tx.Signature[i].Cmp(other.Signature[i]) != 0 {
			return false
		}
	}

	return true
}

package leveldb_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/toyledger/foundation/blockchain/cipher"
	"github.com/ardanlabs/toyledger/foundation/blockchain/ledger"
	"github.com/ardanlabs/toyledger/foundation/blockchain/storage/leveldb"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Disk(t *testing.T) {
	t.Log("Given the need to store blocks in leveldb.")
	{
		dbPath := filepath.Join(t.TempDir(), "blocks")

		store, err := leveldb.New(dbPath, false)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to construct storage.", success)

		kp, err := cipher.GenerateKeyPair()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate keys: %v", failed, err)
		}

		l, err := ledger.New(ledger.Config{Storage: store})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the ledger: %v", failed, err)
		}

		block := l.NewBlock()
		tx := ledger.NewTransaction("Alice", "Bob", 10)
		if err := block.AddTransaction(&tx, kp.Private); err != nil {
			t.Fatalf("\t%s\tShould be able to add a transaction: %v", failed, err)
		}
		if err := l.Append(block); err != nil {
			t.Fatalf("\t%s\tShould be able to append the block: %v", failed, err)
		}

		for num := uint64(0); num < 2; num++ {
			if _, err := store.GetBlock(num); err != nil {
				t.Fatalf("\t%s\tShould be able to read block %d: %v", failed, num, err)
			}
		}
		t.Logf("\t%s\tShould store every block by number.", success)

		reloaded, err := ledger.New(ledger.Config{Storage: store})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to reload the ledger: %v", failed, err)
		}
		if reloaded.Len() != 2 || reloaded.LatestBlock().Hash() != block.Hash() {
			t.Fatalf("\t%s\tShould reload the same chain.", failed)
		}
		t.Logf("\t%s\tShould reload the same chain.", success)

		trans := reloaded.LatestBlock().Transactions()
		if len(trans) != 1 || !trans[0].VerifySignature(kp.Public) {
			t.Fatalf("\t%s\tShould keep the signature through storage.", failed)
		}
		t.Logf("\t%s\tShould keep the signature through storage.", success)

		if _, err := store.GetBlock(7); !errors.Is(err, ledger.ErrNotFound) {
			t.Fatalf("\t%s\tShould get ErrNotFound for a missing block, got: %v", failed, err)
		}
		t.Logf("\t%s\tShould get ErrNotFound for a missing block.", success)

		if err := store.Reset(); err != nil {
			t.Fatalf("\t%s\tShould be able to reset: %v", failed, err)
		}
		if _, err := store.GetBlock(0); !errors.Is(err, ledger.ErrNotFound) {
			t.Fatalf("\t%s\tShould remove every block on reset, got: %v", failed, err)
		}
		t.Logf("\t%s\tShould remove every block on reset.", success)

		if err := store.Close(); err != nil {
			t.Fatalf("\t%s\tShould be able to close the database: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to close the database.", success)
	}
}

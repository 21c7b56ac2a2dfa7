package memory_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/toyledger/foundation/blockchain/ledger"
	"github.com/ardanlabs/toyledger/foundation/blockchain/storage/memory"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func Test_Memory(t *testing.T) {
	t.Log("Given the need to store blocks in memory.")
	{
		store, err := memory.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct storage: %v", failed, err)
		}

		genesis := ledger.NewBlock(ledger.GenesisPrevHash)
		block := ledger.NewBlock(genesis.Hash())

		if err := store.Write(ledger.NewBlockData(1, block)); err == nil {
			t.Fatalf("\t%s\tShould reject a block written out of order.", failed)
		}
		t.Logf("\t%s\tShould reject a block written out of order.", success)

		if err := store.Write(ledger.NewBlockData(0, genesis)); err != nil {
			t.Fatalf("\t%s\tShould be able to write the genesis block: %v", failed, err)
		}
		if err := store.Write(ledger.NewBlockData(1, block)); err != nil {
			t.Fatalf("\t%s\tShould be able to write block 1: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to write blocks in order.", success)

		var hashes []string
		iter := store.ForEach()
		for blockData, err := iter.Next(); !iter.Done(); blockData, err = iter.Next() {
			if err != nil {
				t.Fatalf("\t%s\tShould be able to iterate: %v", failed, err)
			}
			hashes = append(hashes, blockData.Hash)
		}

		if len(hashes) != 2 || hashes[0] != genesis.Hash() || hashes[1] != block.Hash() {
			t.Fatalf("\t%s\tShould iterate the blocks in order from genesis.", failed)
		}
		t.Logf("\t%s\tShould iterate the blocks in order from genesis.", success)

		if _, err := iter.Next(); !errors.Is(err, memory.ErrEndOfChain) {
			t.Fatalf("\t%s\tShould get end of chain after the last block, got: %v", failed, err)
		}
		t.Logf("\t%s\tShould get end of chain after the last block.", success)

		if _, err := store.GetBlock(5); !errors.Is(err, ledger.ErrNotFound) {
			t.Fatalf("\t%s\tShould get ErrNotFound for a missing block, got: %v", failed, err)
		}
		t.Logf("\t%s\tShould get ErrNotFound for a missing block.", success)

		if err := store.Reset(); err != nil {
			t.Fatalf("\t%s\tShould be able to reset: %v", failed, err)
		}
		if _, err := store.GetBlock(0); !errors.Is(err, ledger.ErrNotFound) {
			t.Fatalf("\t%s\tShould have no blocks after reset.", failed)
		}
		t.Logf("\t%s\tShould have no blocks after reset.", success)
	}
}

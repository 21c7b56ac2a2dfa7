package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/ardanlabs/toyledger/foundation/blockchain/canonical"
	"github.com/ardanlabs/toyledger/foundation/blockchain/cipher"
	"github.com/ardanlabs/toyledger/foundation/blockchain/digest"
	"github.com/ardanlabs/toyledger/foundation/blockchain/ledger"
	"github.com/spf13/cobra"
)

var hashName string

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Build a two block ledger in memory and display it",
	RunE:  demoRun,
}

func init() {
	rootCmd.AddCommand(demoCmd)
	demoCmd.Flags().StringVar(&hashName, "hash", "sha256", "Hash strategy: sha256 or blake3.")
}

func demoRun(cmd *cobra.Command, args []string) error {
	kp, err := cipher.LoadKeyPair(keyPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		kp, err = cipher.GenerateKeyPair()
		if err != nil {
			return err
		}
	case err != nil:
		return err
	}

	strategy, err := digest.Lookup(hashName)
	if err != nil {
		return err
	}

	ev, sync, err := evHandler()
	if err != nil {
		return err
	}
	defer sync()

	l, err := ledger.New(ledger.Config{
		HashStrategy: strategy,
		EvHandler:    ev,
	})
	if err != nil {
		return err
	}

	tx := ledger.NewTransaction("Alice", "Bob", 10)

	block := l.NewBlock()
	if err := block.AddTransaction(&tx, kp.Private); err != nil {
		return err
	}

	if err := l.Append(block); err != nil {
		return err
	}

	return display(cmd.OutOrStdout(), l.Blocks(), kp.Public)
}

// display writes every block with its merkle root and transactions.
func display(w io.Writer, blocks []*ledger.Block, publicKey cipher.Key) error {
	for _, block := range blocks {
		root, ok := block.MerkleRoot()
		if !ok {
			root = canonical.Text(nil)
		}

		fmt.Fprintf(w, "Block Hash: %s\n", block.Hash())
		fmt.Fprintf(w, "Previous Hash: %s\n", block.PrevHash())
		fmt.Fprintf(w, "Merkle Root: %s\n", root)
		fmt.Fprintln(w, "Transactions:")
		for _, tx := range block.Transactions() {
			fmt.Fprintf(w, "Sender: %s, Recipient: %s, Amount: %d, Signature Verified: %s\n",
				tx.Sender, tx.Recipient, tx.Amount, canonical.Text(tx.VerifySignature(publicKey)))
		}
		fmt.Fprintf(w, "Timestamp: %s\n", canonical.FormatFloat(block.TimeStamp()))
		if _, err := fmt.Fprintln(w, strings.Repeat("=", 30)); err != nil {
			return err
		}
	}

	return nil
}

package cmd

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ardanlabs/toyledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/toyledger/foundation/blockchain/canonical"
	"github.com/spf13/cobra"
)

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Display the blocks held by a node",
	RunE:  blocksRun,
}

func init() {
	rootCmd.AddCommand(blocksCmd)
}

func blocksRun(cmd *cobra.Command, args []string) error {
	var blocks []public.Block
	if err := call(http.MethodGet, "/v1/blocks", nil, http.StatusOK, &blocks); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	for _, block := range blocks {
		root := block.MerkleRoot
		if root == "" {
			root = canonical.Text(nil)
		}

		fmt.Fprintf(w, "Block %d\n", block.Number)
		fmt.Fprintf(w, "Block Hash: %s\n", block.Hash)
		fmt.Fprintf(w, "Previous Hash: %s\n", block.PrevHash)
		fmt.Fprintf(w, "Merkle Root: %s\n", root)
		fmt.Fprintln(w, "Transactions:")
		for _, tx := range block.Transactions {
			fmt.Fprintf(w, "Sender: %s, Recipient: %s, Amount: %d, Signature Verified: %s\n",
				tx.Sender, tx.Recipient, tx.Amount, canonical.Text(tx.Verified))
		}
		fmt.Fprintf(w, "Timestamp: %s\n", canonical.FormatFloat(block.TimeStamp))
		fmt.Fprintln(w, strings.Repeat("=", 30))
	}

	return nil
}

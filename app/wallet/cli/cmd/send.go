package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ardanlabs/toyledger/app/services/node/handlers/v1/public"
	"github.com/ardanlabs/toyledger/business/web/errs"
	"github.com/spf13/cobra"
)

var (
	sender    string
	recipient string
	amount    uint64
	commit    bool
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Submit a transaction to a node",
	RunE:  sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sender, "from", "f", "", "Sender of the amount.")
	sendCmd.Flags().StringVarP(&recipient, "to", "t", "", "Recipient of the amount.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "a", 0, "Amount to send.")
	sendCmd.Flags().BoolVarP(&commit, "commit", "c", false, "Commit the pending block after submitting.")
	sendCmd.MarkFlagRequired("from")
	sendCmd.MarkFlagRequired("to")
}

func sendRun(cmd *cobra.Command, args []string) error {
	newTx := public.NewTx{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
	}

	data, err := json.Marshal(newTx)
	if err != nil {
		return err
	}

	var tx public.Tx
	if err := call(http.MethodPost, "/v1/tx/submit", data, http.StatusCreated, &tx); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Submitted: %s, Signature Verified: %t\n", tx.Display, tx.Verified)

	if !commit {
		return nil
	}

	var resp public.Commit
	if err := call(http.MethodPost, "/v1/blocks/commit", nil, http.StatusOK, &resp); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Committed block %d: %s\n", resp.Block.Number, resp.Block.Hash)

	return nil
}

// call performs the request against the node and decodes the response.
func call(method string, path string, body []byte, exp int, v any) error {
	req, err := http.NewRequest(method, nodeURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != exp {
		var er errs.Response
		if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
			return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
		}
		if len(er.Fields) > 0 {
			return fmt.Errorf("%s %s: %s: %v", method, path, er.Error, er.Fields)
		}
		return fmt.Errorf("%s %s: %s", method, path, er.Error)
	}

	return json.NewDecoder(resp.Body).Decode(v)
}

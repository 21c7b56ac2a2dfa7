package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ardanlabs/toyledger/foundation/blockchain/cipher"
	"github.com/spf13/cobra"
)

var (
	primeP   int64
	primeQ   int64
	exponent int64
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new key pair and save it to the key file",
	RunE:  generateRun,
}

func init() {
	rootCmd.AddCommand(generateCmd)
	generateCmd.Flags().Int64Var(&primeP, "p", cipher.PrimeP, "First prime.")
	generateCmd.Flags().Int64Var(&primeQ, "q", cipher.PrimeQ, "Second prime.")
	generateCmd.Flags().Int64Var(&exponent, "e", cipher.PublicExponent, "Public exponent.")
}

func generateRun(cmd *cobra.Command, args []string) error {
	kp, err := cipher.GenerateKeyPairFrom(primeP, primeQ, exponent)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(keyPath), 0755); err != nil {
		return err
	}

	if err := cipher.SaveKeyPair(keyPath, kp); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Key pair written to %s\n", keyPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Public Key: %s\n", kp.Public)

	return nil
}

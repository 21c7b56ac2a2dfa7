// Package cmd contains the wallet commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/ardanlabs/toyledger/foundation/logger"
	"github.com/spf13/cobra"
)

var (
	keyPath string
	nodeURL string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:          "wallet",
	Short:        "Toy ledger wallet",
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&keyPath, "key", "k", "zblock/wallet.key.json", "Path to the key pair file.")
	rootCmd.PersistentFlags().StringVarP(&nodeURL, "url", "u", "http://localhost:8080", "Url of the node.")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log ledger events to stderr.")
}

// evHandler returns the function the ledger narrates through. Events are
// only logged in verbose mode.
func evHandler() (func(v string, args ...any), func(), error) {
	if !verbose {
		return nil, func() {}, nil
	}

	log, err := logger.New("WALLET", "stderr")
	if err != nil {
		return nil, nil, fmt.Errorf("constructing logger: %w", err)
	}

	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...))
	}

	return ev, func() { log.Sync() }, nil
}

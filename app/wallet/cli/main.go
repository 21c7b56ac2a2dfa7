// This program provides a wallet for the toy ledger: key generation, the
// end to end demo and a client for a running node.
package main

import "github.com/ardanlabs/toyledger/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}

// ledgerctl is the operator's terminal view of the order ledger: the same
// metrics, queue and export surfaces as the service, straight against the
// table store.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ledgerctl",
	Short: "Print-shop order ledger from the terminal",
	Long:  "Inspect metrics, the production queue and supplier exports without opening the dashboard.",
}

func main() {
	rootCmd.AddCommand(metricsCmd, ordersCmd, exportCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

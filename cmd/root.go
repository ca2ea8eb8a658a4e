package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "sportsbook",
	Short: "Simulated sportsbook service",
	Long: `Simulated sportsbook service that sells a time-windowed betting offer,
places multi-selection tickets with compounded odds and a promotional
combination policy, and settles pay-ins against user balances under a
progressive winnings tax.

The service persists to PostgreSQL and exposes an HTTP API together with
Prometheus metrics and health probes.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

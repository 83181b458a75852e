package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	presetPath string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "market",
	Short: "Simulated stock market",
	Long: `Stock market simulator.

Prices move on a simulated clock, every stock keeps a ledger of daily
opening prices and quotes are served page by page.

Usage:
  go run ./cmd/market [command]

Examples:
  go run ./cmd/market serve
  go run ./cmd/market simulate --days 30
  go run ./cmd/market browse --server http://localhost:8089
  go run ./cmd/market snapshot show`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&presetPath, "preset", "", "preset YAML file (overrides MARKET_PRESET)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

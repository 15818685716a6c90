package commands

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	logLevel   string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "varcalc",
	Short: "Portfolio parametric Value-at-Risk estimator",
	Long: `varcalc estimates the parametric (variance-covariance) Value-at-Risk
of a portfolio from daily adjusted closes downloaded from Yahoo Finance.

Usage:
  go run ./cmd/varcalc [command]

Examples:
  go run ./cmd/varcalc estimate --tickers AAPL,MSFT --from 2023-01-01 --to 2024-01-01
  go run ./cmd/varcalc serve --port 8080`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		PrintError(os.Stderr, err.Error())
		return err
	}
	return nil
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "env file to load (default is .env)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}

// Package cli implements the marketd command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version is the release identifier, overridable at build time.
var Version = "0.1.0-dev"

var configFile string

var rootCmd = &cobra.Command{
	Use:   "marketd",
	Short: "marketd - settlement engine for unique digital assets",
	Long: `marketd runs a marketplace engine for unique digital assets: escrowed
listings, timed auctions with atomic bid refunds, fixed-price sales,
signature-authorized settlement and merkle-gated lazy issuance, served
over HTTP JSON-RPC with a websocket event stream.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "conf", "", "configuration file path")
}

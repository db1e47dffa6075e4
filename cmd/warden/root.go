package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "warden",
	Short: "Warden - policy enforcement and contract monitoring for data pipelines",
	Long: `Warden validates compiled model graphs against declared governance
policies at build time and continuously checks deployed datasets against
declared service-level contracts at run time.

It provides:
  - Semantic validation of the model dependency graph (broken references,
    undeclared sources, reference cycles)
  - Declarative custom rules with glob-scoped application
  - Pattern-matched policy overrides with expiry and audit reasons
  - Scheduled contract checks (freshness, schema drift, availability, quality)
  - Report exports in JSON, SARIF, and human-readable formats`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ec exitCodeError
		if errors.As(err, &ec) {
			os.Exit(ec.code)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "warden.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level regardless of configuration")
}

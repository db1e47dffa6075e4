package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lakefront-data/warden/pkg/config"
	"lakefront-data/warden/pkg/manifest"
)

var validateFlags struct {
	manifestPath string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and manifest without enforcing",
	Long: `Load and eagerly validate the Warden configuration, and optionally a
compiled manifest, without running an enforcement pass.

All configuration errors are reported together: unknown custom-rule
variants, invalid override patterns, expired-date formats, and malformed
contracts.

Examples:
  # Validate the configuration only
  warden validate

  # Also check that a manifest parses and its schema version is supported
  warden validate --manifest target/manifest.json`,
	RunE:          runValidate,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateFlags.manifestPath, "manifest", "m", "", "compiled manifest path (optional)")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWithEnvOverrides(cfgFile)
	if err != nil {
		return exitCodeError{code: 2, err: err}
	}

	fmt.Printf("configuration OK: %d custom rule(s), %d override(s), %d contract(s)\n",
		len(cfg.Governance.CustomRules),
		len(cfg.Governance.PolicyOverrides),
		len(cfg.Contracts))

	if validateFlags.manifestPath != "" {
		m, err := manifest.Load(validateFlags.manifestPath)
		if err != nil {
			return exitCodeError{code: 2, err: err}
		}
		fmt.Printf("manifest OK: schema version %d, %d model(s), %d source(s)\n",
			m.SchemaVersion, len(m.Models), len(m.Sources))
	}

	return nil
}

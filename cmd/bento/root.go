package main

import (
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
	Use:   "bento",
	Short: "Bento - slot layout validator for linked content",
	Long: `Bento validates linked content arrangements against named slot layouts.

A layout assigns named slots to positions in a field's linked-entry
list and constrains which content types each slot accepts. Bento
checks arrangements against those rules and reports every violation
with an editor-facing message.

It provides:
  - An HTTP API for on-demand validation of content fields
  - Hot-reloaded layout definitions from YAML files
  - Recorded validation history with retention pruning
  - Background revalidation of tracked fields`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global persistent flags (available to all subcommands)
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

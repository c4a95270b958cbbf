package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mosaic-hq/bento/pkg/cli"
	"mosaic-hq/bento/pkg/layout/registry"
	"mosaic-hq/bento/pkg/telemetry/logging"
)

var lintFlags struct {
	layoutDir string
	strict    bool
	format    string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Lint layout files for unsatisfiable rules",
	Long: `Load the layout directory and report rules that can never be
satisfied: slots with no allowed types, indices outside the expected
entry count, duplicate indices, and missing selector metadata.

Parse errors fail the lint; warnings are advisory unless --strict is
set.

Examples:
  # Lint the default layout directory
  bento lint --layouts ./layouts

  # Fail on warnings (for CI)
  bento lint --layouts ./layouts --strict`,
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVar(&lintFlags.layoutDir, "layouts", "./layouts", "layout directory")
	lintCmd.Flags().BoolVar(&lintFlags.strict, "strict", false, "treat warnings as errors")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// lintReport is the JSON output of the lint command.
type lintReport struct {
	Layouts  int      `json:"layouts"`
	Warnings []string `json:"warnings"`
}

func runLint(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(lintFlags.format)
	if err != nil {
		return cli.NewConfigError("format", err.Error())
	}

	logger, err := logging.New(logging.Config{Level: "error", Format: "text", Writer: os.Stderr})
	if err != nil {
		return cli.NewCommandError("lint", err)
	}

	reg, err := registry.Load(lintFlags.layoutDir, logger)
	if err != nil {
		return cli.NewCommandError("lint", fmt.Errorf("failed to load layouts: %w", err))
	}

	report := lintReport{Layouts: reg.Len(), Warnings: []string{}}
	for _, warn := range reg.Warnings() {
		report.Warnings = append(report.Warnings, warn.String())
	}

	if format == cli.FormatJSON {
		if err := cli.NewFormatter(format).FormatTo(os.Stdout, report); err != nil {
			return cli.NewCommandError("lint", err)
		}
	} else {
		fmt.Printf("%d layouts loaded from %s\n", report.Layouts, lintFlags.layoutDir)
		if len(report.Warnings) == 0 {
			fmt.Println("✓ No warnings")
		} else {
			for _, w := range report.Warnings {
				fmt.Printf("  warning: %s\n", w)
			}
		}
	}

	if lintFlags.strict && len(report.Warnings) > 0 {
		return cli.NewCommandError("lint", fmt.Errorf("%d warnings", len(report.Warnings)))
	}
	return nil
}

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"mosaic-hq/bento/pkg/cli"
	"mosaic-hq/bento/pkg/entry"
	"mosaic-hq/bento/pkg/layout"
	"mosaic-hq/bento/pkg/layout/registry"
	"mosaic-hq/bento/pkg/telemetry/logging"
)

var checkFlags struct {
	layoutDir   string
	contentType string
	field       string
	entriesFile string
	format      string
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate an entries file against a layout",
	Long: `Validate a file of linked entries against the layout configured for a
content type and field, without starting a server.

The entries file is JSON or YAML (by extension): either a plain array
of entries or an object with an "items" array, matching the content API
response shape.

Exits non-zero when the arrangement is invalid.

Examples:
  # Validate a landing section's cards
  bento check --layouts ./layouts --content-type landingSection --field cards --entries entries.json

  # Machine-readable output
  bento check --layouts ./layouts --content-type landingSection --field cards --entries entries.json --format json`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&checkFlags.layoutDir, "layouts", "./layouts", "layout directory")
	checkCmd.Flags().StringVar(&checkFlags.contentType, "content-type", "", "content type of the record owning the field")
	checkCmd.Flags().StringVar(&checkFlags.field, "field", "", "field whose linked entries are validated")
	checkCmd.Flags().StringVar(&checkFlags.entriesFile, "entries", "", "JSON or YAML file with the linked entries")
	checkCmd.Flags().StringVar(&checkFlags.format, "format", "text", "output format: text, json")

	checkCmd.MarkFlagRequired("content-type")
	checkCmd.MarkFlagRequired("field")
	checkCmd.MarkFlagRequired("entries")
}

// checkReport is the JSON output of the check command.
type checkReport struct {
	Valid      bool     `json:"valid"`
	LayoutType string   `json:"layout_type"`
	EntryCount int      `json:"entry_count"`
	Errors     []string `json:"errors"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(checkFlags.format)
	if err != nil {
		return cli.NewConfigError("format", err.Error())
	}

	logger, err := logging.New(logging.Config{Level: "warn", Format: "text", Writer: os.Stderr})
	if err != nil {
		return cli.NewCommandError("check", err)
	}

	reg, err := registry.Load(checkFlags.layoutDir, logger)
	if err != nil {
		return cli.NewCommandError("check", fmt.Errorf("failed to load layouts: %w", err))
	}

	cfg, ok := reg.Select(checkFlags.contentType, checkFlags.field)
	if !ok {
		return cli.NewCommandError("check", fmt.Errorf(
			"no layout configured for (%s, %s)", checkFlags.contentType, checkFlags.field))
	}

	entries, err := readEntriesFile(checkFlags.entriesFile)
	if err != nil {
		return cli.NewCommandError("check", err)
	}

	result := layout.Validate(cfg, entries, entry.ContentTypeOf)

	report := checkReport{
		Valid:      result.Valid(),
		LayoutType: cfg.LayoutType,
		EntryCount: len(entries),
		Errors:     result.Messages(),
	}
	if report.Errors == nil {
		report.Errors = []string{}
	}

	if format == cli.FormatJSON {
		if err := cli.NewFormatter(format).FormatTo(os.Stdout, report); err != nil {
			return cli.NewCommandError("check", err)
		}
	} else {
		if report.Valid {
			fmt.Printf("✓ Valid arrangement for layout %s (%d entries)\n", report.LayoutType, report.EntryCount)
		} else {
			fmt.Printf("✗ Invalid arrangement for layout %s (%d entries)\n", report.LayoutType, report.EntryCount)
			for _, msg := range report.Errors {
				fmt.Printf("  - %s\n", msg)
			}
		}
	}

	if !report.Valid {
		return cli.NewCommandError("check", fmt.Errorf("arrangement has %d violations", len(report.Errors)))
	}
	return nil
}

// readEntriesFile decodes an entries file, accepting either a plain
// array or the content API's {"items": [...]} envelope. Files ending in
// .yaml or .yml are parsed as YAML, everything else as JSON.
func readEntriesFile(path string) ([]entry.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entries file: %w", err)
	}

	unmarshal := json.Unmarshal
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	}

	var entries []entry.Entry
	if err := unmarshal(data, &entries); err == nil {
		return entries, nil
	}

	var envelope struct {
		Items []entry.Entry `json:"items" yaml:"items"`
	}
	if err := unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse entries file %s: %w", path, err)
	}
	return envelope.Items, nil
}

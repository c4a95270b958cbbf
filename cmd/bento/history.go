package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mosaic-hq/bento/pkg/cli"
	"mosaic-hq/bento/pkg/config"
	"mosaic-hq/bento/pkg/history"
	"mosaic-hq/bento/pkg/history/storage"
)

var historyFlags struct {
	space       string
	entryID     string
	field       string
	layoutType  string
	onlyInvalid bool
	timeRange   string
	limit       int
	offset      int
	format      string
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query recorded validation runs",
	Long: `Query the validation run history recorded by the server.

Uses the history backend from the configuration file, so it reads the
same database the server writes to.

Time Range Format:
  RFC3339 interval format: "start/end"
  Example: "2026-08-01T00:00:00Z/2026-08-28T00:00:00Z"

Examples:
  # Recent runs for a field
  bento history --field cards

  # Only failed runs
  bento history --only-invalid

  # Runs in a time window, as JSON
  bento history --time-range "2026-08-01T00:00:00Z/2026-08-28T00:00:00Z" --format json`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyFlags.space, "space", "", "filter by space")
	historyCmd.Flags().StringVar(&historyFlags.entryID, "entry", "", "filter by entry ID")
	historyCmd.Flags().StringVar(&historyFlags.field, "field", "", "filter by field")
	historyCmd.Flags().StringVar(&historyFlags.layoutType, "layout-type", "", "filter by layout type")
	historyCmd.Flags().BoolVar(&historyFlags.onlyInvalid, "only-invalid", false, "only runs with violations")
	historyCmd.Flags().StringVar(&historyFlags.timeRange, "time-range", "", "time range (RFC3339 interval: start/end)")
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 100, "max results")
	historyCmd.Flags().IntVar(&historyFlags.offset, "offset", 0, "pagination offset")
	historyCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format: text, json")
}

func runHistory(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(historyFlags.format)
	if err != nil {
		return cli.NewConfigError("format", err.Error())
	}

	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	if !cfg.History.Enabled {
		return cli.NewConfigError("history.enabled", "history is disabled in the configuration")
	}

	var store history.Storage
	switch cfg.History.Backend {
	case "sqlite":
		store, err = storage.NewSQLiteStorage(&storage.SQLiteConfig{
			Path:         cfg.History.SQLite.Path,
			MaxOpenConns: cfg.History.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.History.SQLite.MaxIdleConns,
			WALMode:      cfg.History.SQLite.WALMode,
			BusyTimeout:  cfg.History.SQLite.BusyTimeout,
		})
		if err != nil {
			return cli.NewCommandError("history", fmt.Errorf("failed to open SQLite storage: %w", err))
		}
	case "memory":
		return cli.NewConfigError("history.backend", "the memory backend holds no data outside a running server")
	default:
		return cli.NewConfigError("history.backend", fmt.Sprintf("unsupported backend: %s", cfg.History.Backend))
	}
	defer store.Close()

	query := &history.Query{
		Space:       historyFlags.space,
		Entry:       historyFlags.entryID,
		Field:       historyFlags.field,
		LayoutType:  historyFlags.layoutType,
		OnlyInvalid: historyFlags.onlyInvalid,
		Limit:       historyFlags.limit,
		Offset:      historyFlags.offset,
	}

	if historyFlags.timeRange != "" {
		start, end, err := parseTimeRange(historyFlags.timeRange)
		if err != nil {
			return cli.NewConfigError("time-range", err.Error())
		}
		query.StartTime = &start
		query.EndTime = &end
	}

	ctx := context.Background()
	runs, err := store.Query(ctx, query)
	if err != nil {
		return cli.NewCommandError("history", err)
	}

	if format == cli.FormatJSON {
		if err := cli.NewFormatter(format).FormatTo(os.Stdout, runs); err != nil {
			return cli.NewCommandError("history", err)
		}
		return nil
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	for _, run := range runs {
		status := "valid"
		if !run.Valid {
			status = fmt.Sprintf("invalid (%d violations)", len(run.Violations))
		}
		fmt.Printf("%s  %s/%s.%s  %s  %s\n",
			run.RecordedAt.Format(time.RFC3339),
			run.Space, run.Entry, run.Field,
			run.LayoutType,
			status,
		)
		for _, v := range run.Violations {
			fmt.Printf("    - %s\n", v.Message())
		}
	}
	fmt.Printf("\n%d runs\n", len(runs))
	return nil
}

// parseTimeRange parses an RFC3339 interval of the form "start/end".
func parseTimeRange(s string) (time.Time, time.Time, error) {
	parts := strings.SplitN(s, "/", 2)
	if len(parts) != 2 {
		return time.Time{}, time.Time{}, fmt.Errorf("expected \"start/end\", got %q", s)
	}
	start, err := time.Parse(time.RFC3339, parts[0])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, parts[1])
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end time: %w", err)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end time precedes start time")
	}
	return start, end, nil
}

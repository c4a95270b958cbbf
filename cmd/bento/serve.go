package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"mosaic-hq/bento/pkg/cli"
	"mosaic-hq/bento/pkg/config"
	"mosaic-hq/bento/pkg/entry"
	"mosaic-hq/bento/pkg/history"
	"mosaic-hq/bento/pkg/history/retention"
	"mosaic-hq/bento/pkg/history/storage"
	"mosaic-hq/bento/pkg/layout/registry"
	"mosaic-hq/bento/pkg/monitor"
	"mosaic-hq/bento/pkg/server"
	"mosaic-hq/bento/pkg/telemetry/health"
	"mosaic-hq/bento/pkg/telemetry/logging"
	"mosaic-hq/bento/pkg/telemetry/metrics"
)

var serveFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the bento API server",
	Long: `Start the bento API server with the specified configuration.

The server loads layout definitions from the configured directory and
validates content arrangements against them on request. When history is
enabled, every validation run is recorded; when a content API is
configured, fields can be tracked and revalidated in the background.

Examples:
  # Start with default config
  bento serve

  # Start with custom config
  bento serve --config /etc/bento/config.yaml

  # Override listen address
  bento serve --listen 0.0.0.0:8080

  # Validate config without starting the server
  bento serve --dry-run`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveFlags.listenAddress, "listen", "l", "", "override listen address")
	serveCmd.Flags().StringVar(&serveFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	serveCmd.Flags().BoolVar(&serveFlags.dryRun, "dry-run", false, "validate config without starting server")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := config.Initialize(cfgFile); err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}
	cfg := config.GetConfig()

	// Apply flag overrides
	if serveFlags.listenAddress != "" {
		cfg.Server.ListenAddress = serveFlags.listenAddress
	}
	if serveFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = serveFlags.logLevel
	}

	logger, err := logging.Setup(logging.Config{
		Level:  cfg.Telemetry.Logging.Level,
		Format: cfg.Telemetry.Logging.Format,
	})
	if err != nil {
		return cli.NewConfigError("telemetry.logging", err.Error())
	}

	if serveFlags.dryRun {
		fmt.Println("✓ Configuration valid")
		return nil
	}

	fmt.Printf("Bento v%s\n", Version)
	fmt.Printf("Loading configuration from: %s\n", cfgFile)
	fmt.Println("✓ Configuration loaded")

	ctx := cli.SetupSignalHandler()

	// Load the layout registry
	reg, err := registry.Load(cfg.Layouts.Dir, logger)
	if err != nil {
		return cli.NewCommandError("serve", fmt.Errorf("failed to load layouts: %w", err))
	}
	fmt.Printf("✓ Layouts loaded (%d layouts)\n", reg.Len())
	for _, warn := range reg.Warnings() {
		logger.Warn("layout lint warning", "warning", warn.String())
	}

	collector := metrics.NewCollector(cfg.Telemetry.Metrics.Enabled, nil)
	checker := health.NewChecker(0)
	checker.Register("layouts", func(ctx context.Context) error {
		if reg.Len() == 0 {
			return fmt.Errorf("no layouts loaded")
		}
		return nil
	})

	// Content API client (enables fetch-on-validate and field tracking)
	var fetcher monitor.Fetcher
	if cfg.Entries.BaseURL != "" {
		client, err := entry.NewClient(&entry.ClientConfig{
			BaseURL:    cfg.Entries.BaseURL,
			Token:      cfg.Entries.Token,
			Timeout:    cfg.Entries.Timeout,
			MaxRetries: cfg.Entries.MaxRetries,
		}, logger)
		if err != nil {
			return cli.NewConfigError("entries", err.Error())
		}
		defer client.Close()
		fetcher = client
		fmt.Printf("✓ Content API client initialized (%s)\n", cfg.Entries.BaseURL)
	}

	// Validation run history
	var store history.Storage
	var recorder *history.Recorder
	if cfg.History.Enabled {
		logger.Info("initializing run history", "backend", cfg.History.Backend)

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
				return cli.NewCommandError("serve", fmt.Errorf("failed to create SQLite storage: %w", err))
			}
		case "memory":
			store = storage.NewMemoryStorage()
		default:
			return cli.NewConfigError("history.backend", fmt.Sprintf("unsupported backend: %s", cfg.History.Backend))
		}
		defer store.Close()

		recorder = history.NewRecorder(store, nil, logger)
		defer recorder.Close()

		checker.Register("history", func(ctx context.Context) error {
			_, err := store.Count(ctx, &history.Query{})
			return err
		})

		if cfg.History.Retention.Schedule != "" {
			pruner := retention.NewPruner(store, &retention.Config{
				RetentionDays: cfg.History.Retention.Days,
				PruneSchedule: cfg.History.Retention.Schedule,
				MaxRecords:    cfg.History.Retention.MaxRecords,
			})
			if err := pruner.Start(ctx); err != nil {
				logger.Warn("failed to start retention scheduler", "error", err)
			} else {
				defer pruner.Stop()
			}
		}

		fmt.Println("✓ Run history initialized")
	}

	// Field monitor and background revalidation
	var mon *monitor.Monitor
	if fetcher != nil {
		mon = monitor.New(reg, fetcher, recorder, logger)

		sweeper := monitor.NewSweepScheduler(mon, cfg.Revalidation.SweepSchedule)
		if err := sweeper.Start(ctx); err != nil {
			return cli.NewConfigError("revalidation.sweep_schedule", err.Error())
		}
		defer sweeper.Stop()
	}

	// Hot reload of layout files
	if cfg.Layouts.Watch {
		watcher, err := registry.NewWatcher(reg, &registry.WatcherConfig{
			DebounceInterval: cfg.Layouts.DebounceInterval,
			Extensions:       []string{".yaml", ".yml"},
		}, logger)
		if err != nil {
			return cli.NewCommandError("serve", fmt.Errorf("failed to create layout watcher: %w", err))
		}
		watcher.OnReload(func() {
			collector.RecordRegistryReload(true)
			if mon != nil {
				go mon.Sweep(ctx)
			}
		})
		watcher.OnReloadError(func(err error) {
			collector.RecordRegistryReload(false)
		})
		go func() {
			if err := watcher.Watch(ctx); err != nil {
				logger.Error("layout watcher stopped", "error", err)
			}
		}()
		defer watcher.Stop()
		fmt.Printf("✓ Watching %s for layout changes\n", cfg.Layouts.Dir)
	}

	server.Version = Version
	srv := server.NewServer(cfg, reg, server.Options{
		Fetcher:   fetcher,
		Storage:   store,
		Recorder:  recorder,
		Monitor:   mon,
		Collector: collector,
		Health:    checker,
		Logger:    logger,
	})

	fmt.Println()
	fmt.Printf("✓ Server listening on %s\n", cfg.Server.ListenAddress)
	fmt.Printf("✓ Health endpoint: http://%s/health\n", cfg.Server.ListenAddress)
	if cfg.Telemetry.Metrics.Enabled {
		fmt.Printf("✓ Metrics endpoint: http://%s%s\n", cfg.Server.ListenAddress, cfg.Telemetry.Metrics.Path)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if err := srv.Start(ctx); err != nil {
		return cli.NewCommandError("serve", err)
	}

	fmt.Println("✓ Server stopped")
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/banshee-data/bodytrack/internal/body"
	"github.com/banshee-data/bodytrack/internal/config"
	"github.com/banshee-data/bodytrack/internal/monitoring"
	"github.com/banshee-data/bodytrack/internal/sensor"
	"github.com/banshee-data/bodytrack/internal/version"
)

// app holds state shared by subcommands once the root pre-run has loaded
// configuration and built the logger.
type app struct {
	configPath string
	logLevel   string
	devLogs    bool
	dbPath     string

	cfg     *config.TrackingConfig
	logger  *zap.Logger
	restore func()
}

// NewRootCommand builds the bodytrack command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "bodytrack",
		Short: "Track bodies from a skeleton sensor feed",
		Long: `bodytrack reconciles per-frame skeleton snapshots into persistent
body records, publishes enter and leave events, and drives gesture and
debug consumers from the enabled bodies.

Feeds can be synthetic, JSON lines from a file or serial bridge, or a
recording replayed from the local database.`,
		Version:           version.String(),
		SilenceUsage:      true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return a.setup() },
		PersistentPostRun: func(cmd *cobra.Command, args []string) { a.teardown() },
	}

	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a tracking config JSON file")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override the configured log level")
	cmd.PersistentFlags().BoolVar(&a.devLogs, "dev-logs", false, "Human-readable development logging")
	cmd.PersistentFlags().StringVar(&a.dbPath, "db", "bodytrack.db", "Path to the recordings database")

	cmd.AddCommand(newRunCommand(a))
	cmd.AddCommand(newRecordingsCommand(a))
	return cmd
}

func (a *app) setup() error {
	cfg := config.EmptyTrackingConfig()
	if a.configPath != "" {
		loaded, err := config.LoadTrackingConfig(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.logLevel != "" {
		level := a.logLevel
		cfg.LogLevel = &level
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.cfg = cfg

	logger, err := monitoring.NewLogger(cfg.GetLogLevel(), a.devLogs)
	if err != nil {
		return err
	}
	a.logger = logger
	body.SetLogger(logger)
	sensor.SetLogger(logger)
	a.restore = monitoring.Install(logger.Named("bodytrack"))
	return nil
}

func (a *app) teardown() {
	if a.restore != nil {
		a.restore()
		a.restore = nil
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

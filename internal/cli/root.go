// Package cli implements the ligature command.
package cli

import (
	"fmt"

	"github.com/aleksaelezovic/ligature"
	"github.com/aleksaelezovic/ligature/internal/config"
	"github.com/aleksaelezovic/ligature/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath  string
	DBPath      string
	InMemory    bool
	LogLevel    string
	DumpMetrics bool

	config   *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
}

// NewRootCommand creates the root command for the ligature CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ligature",
		Short: "ligature - transactional quad store",
		Long:  "Stores statements (subject, predicate, object, context) in named collections and matches them by pattern or range.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return opts.teardown(cmd)
		},
		SilenceUsage: true,
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.DBPath, "db", "", "database directory (overrides store.path)")
	cmd.PersistentFlags().BoolVar(&opts.InMemory, "in-memory", false, "use a throwaway in-memory store")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	cmd.PersistentFlags().BoolVar(&opts.DumpMetrics, "metrics", false, "print metrics to stderr when the command ends")

	// Add subcommands
	cmd.AddCommand(NewDemoCommand(opts))
	cmd.AddCommand(NewCollectionsCommand(opts))
	cmd.AddCommand(NewCountCommand(opts))
	cmd.AddCommand(NewMatchCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))

	return cmd
}

// setup merges the config file with flags and builds the logger
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if o.ConfigPath != "" {
		loaded, err := config.Load(o.ConfigPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Store.Path = o.DBPath
	}
	if flags.Changed("in-memory") {
		cfg.Store.InMemory = o.InMemory
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = o.LogLevel
	}
	if flags.Changed("metrics") {
		cfg.Metrics.Dump = o.DumpMetrics
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := cfg.Log.ZapLevel()
	if err != nil {
		return err
	}
	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.Encoding = cfg.Log.Format
	if cfg.Log.Format == "console" {
		zapConfig.EncoderConfig = zap.NewDevelopmentEncoderConfig()
	}
	logger, err := zapConfig.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	o.config = cfg
	o.logger = logger
	o.registry = prometheus.NewRegistry()
	return nil
}

func (o *RootOptions) teardown(cmd *cobra.Command) error {
	if o.logger != nil {
		_ = o.logger.Sync()
	}
	if o.config == nil || !o.config.Metrics.Dump {
		return nil
	}

	families, err := o.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(cmd.ErrOrStderr(), mf); err != nil {
			return err
		}
	}
	return nil
}

// openStore opens the store described by the merged configuration
func (o *RootOptions) openStore() (store.Store, error) {
	cfg := o.config.Store
	opts := []ligature.Option{
		ligature.WithLogger(o.logger),
		ligature.WithMetrics(o.registry),
		ligature.WithObjectCascade(cfg.CascadeObjects()),
		ligature.WithSyncWrites(cfg.SyncWrites),
	}

	if cfg.InMemory {
		o.logger.Debug("opening in-memory store")
		return ligature.OpenInMemory(opts...)
	}
	o.logger.Debug("opening store", zap.String("path", cfg.Path))
	return ligature.Open(cfg.Path, opts...)
}

// withStore runs fn against a freshly opened store and closes it afterwards
func (o *RootOptions) withStore(fn func(store.Store) error) (err error) {
	s, err := o.openStore()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fn(s)
}

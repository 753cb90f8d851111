package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/reelcheck/internal/catalog"
	"github.com/roach88/reelcheck/internal/config"
	"github.com/roach88/reelcheck/internal/harness"
	"github.com/roach88/reelcheck/internal/ir"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Driver  string
	DSN     string
	EnvFile string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the reelcheck CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "reelcheck",
		Version: ir.ToolVersion,
		Short:   "reelcheck - query validation for a movie catalog",
		Long: `Run named actor queries against a movie catalog and check
each result against its recorded expectation.`,
		// Errors are printed by the command or by main.
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "catalog driver (sqlite3|mysql), overrides "+config.EnvDriver)
	cmd.PersistentFlags().StringVar(&opts.DSN, "dsn", "", "catalog DSN, overrides "+config.EnvDSN)
	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "read settings from this .env file (default "+config.DefaultEnvFile+" if present)")

	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewStatsCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// loadConfig resolves settings for a command. scenarios is the optional
// scenarios-dir argument.
func loadConfig(opts *RootOptions, scenarios string) (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		EnvFile:   opts.EnvFile,
		Driver:    opts.Driver,
		DSN:       opts.DSN,
		Scenarios: scenarios,
	})
	if err != nil {
		return nil, err
	}
	if opts.Verbose {
		cfg.LogLevel = slog.LevelDebug
	}
	return cfg, nil
}

// newLogger writes text logs to w at the configured level.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
}

// openCatalog opens the configured catalog read-only.
func openCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*catalog.Catalog, error) {
	logger.Debug("opening catalog", "driver", cfg.Driver, "dsn", cfg.Redacted())
	return catalog.Open(ctx, catalog.Config{
		Driver:   cfg.Driver,
		DSN:      cfg.DSN,
		ReadOnly: true,
		Logger:   logger,
	})
}

// loadRegistry returns the scenarios in dir, or the built-in scenarios when
// dir is empty.
func loadRegistry(dir string) (*harness.Registry, error) {
	if dir == "" {
		return harness.Builtin(), nil
	}
	return harness.LoadDir(dir)
}

// scenarioArg returns the optional positional argument at i.
func scenarioArg(args []string, i int) string {
	if len(args) > i {
		return args[i]
	}
	return ""
}

package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/reelcheck/internal/catalog"
)

// StatsResult holds the row counts of the configured catalog.
type StatsResult struct {
	Driver string               `json:"driver"`
	DSN    string               `json:"dsn"`
	Tables []catalog.TableStats `json:"tables"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "stats",
		Short:         "Show catalog row counts",
		Long:          `Connect to the configured catalog and print the row count of every table.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(rootOpts, cmd)
		},
	}

	return cmd
}

func runStats(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts, "")
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err)
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	ctx := cmd.Context()
	cat, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConnection, err)
	}
	defer cat.Close()

	tables, err := cat.Stats(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	result := StatsResult{Driver: cfg.Driver, DSN: cfg.Redacted(), Tables: tables}
	if formatter.JSON() {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s %s\n\n", result.Driver, result.DSN)
	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	for _, t := range tables {
		fmt.Fprintf(tw, "%s\t%d\n", t.Table, t.Rows)
	}
	return tw.Flush()
}

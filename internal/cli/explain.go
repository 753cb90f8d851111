package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reelcheck/internal/harness"
	"github.com/roach88/reelcheck/internal/querysql"
)

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <scenario> [scenarios-dir]",
		Short: "Show the SQL a scenario runs",
		Long: `Compile a scenario's query for the configured driver and print
the SQL, its parameters, the joins it needs and any validation warnings.

No database connection is made.`,
		Args:          cobra.RangeArgs(1, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(rootOpts, args[0], scenarioArg(args, 1), cmd)
		},
	}

	return cmd
}

func runExplain(opts *RootOptions, name, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts, dir)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err)
	}
	dialect, err := querysql.ParseDialect(cfg.Driver)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err)
	}
	reg, err := loadRegistry(cfg.Scenarios)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLoadFailed, err)
	}
	s, ok := reg.Lookup(name)
	if !ok {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Errorf("unknown scenario %q", name))
	}

	ex, err := harness.Explain(s, dialect)
	if err != nil {
		return formatter.Fail(ExitFailure, ErrCodeQuery, err)
	}

	if formatter.JSON() {
		return formatter.Success(ex)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "Scenario: %s\n", ex.Scenario)
	fmt.Fprintf(w, "Dialect:  %s\n", ex.Dialect)
	if len(ex.Joins) > 0 {
		fmt.Fprintf(w, "Joins:    %v\n", ex.Joins)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, ex.SQL)
	fmt.Fprintln(w)
	for i, p := range ex.Params {
		fmt.Fprintf(w, "  $%d = %#v\n", i+1, p)
	}
	for _, warning := range ex.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warning)
	}
	if s.Note != "" {
		fmt.Fprintf(w, "note: %s\n", s.Note)
	}
	return nil
}

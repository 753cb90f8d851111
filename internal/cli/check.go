package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/reelcheck/internal/catalog"
	"github.com/roach88/reelcheck/internal/harness"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Update    bool   // rewrite golden baselines
	Filter    string // scenario filter (glob pattern)
	GoldenDir string
	Repeat    int
}

// ScenarioResult holds the result of a single scenario.
type ScenarioResult struct {
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Count    int      `json:"count"`
	Digest   string   `json:"digest,omitempty"`
	Note     string   `json:"note,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Errors   []string `json:"errors,omitempty"`
}

// CheckResult holds the overall check result.
type CheckResult struct {
	RunID     string           `json:"run_id,omitempty"`
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check [scenarios-dir]",
		Short: "Run scenarios against the catalog",
		Long: `Run scenarios against the configured catalog and check every
result against its expectation.

Without a scenarios-dir the built-in scenarios run (or the directory named
by REELCHECK_SCENARIOS). Results are compared with golden baselines when
the golden directory exists; --update rewrites them.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (bad scenarios, unreachable catalog, etc.)

Examples:
  reelcheck check
  reelcheck check ./scenarios --filter "actors_in_*"
  reelcheck check ./scenarios --update
  reelcheck check --driver mysql --dsn "user:pass@tcp(db:3306)/movies" --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, scenarioArg(args, 0), cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "rewrite golden baselines")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")
	cmd.Flags().StringVar(&opts.GoldenDir, "golden-dir", "", "baseline directory (default <scenarios-dir>/golden)")
	cmd.Flags().IntVar(&opts.Repeat, "repeat", 1, "execute each query N times and fail on differing results")

	return cmd
}

func runCheck(opts *CheckOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Repeat < 1 {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, fmt.Errorf("--repeat must be at least 1, got %d", opts.Repeat))
	}

	cfg, err := loadConfig(opts.RootOptions, dir)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err)
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())

	reg, err := loadRegistry(cfg.Scenarios)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLoadFailed, err)
	}
	scenarios, err := reg.Filter(opts.Filter)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	if len(scenarios) == 0 {
		if formatter.JSON() {
			return outputCheckJSON(formatter, CheckResult{Scenarios: []ScenarioResult{}})
		}
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}
	formatter.VerboseLog("Running %d scenario(s) against %s %s", len(scenarios), cfg.Driver, cfg.Redacted())

	ctx := cmd.Context()
	cat, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConnection, err)
	}
	defer cat.Close()

	report, err := harness.Run(ctx, harness.FromCatalog(cat), scenarios,
		harness.WithLogger(logger),
		harness.WithRepeat(opts.Repeat),
	)
	if err != nil {
		code := ErrCodeGeneric
		if catalog.IsConnectionError(err) {
			code = ErrCodeConnection
		}
		return formatter.Fail(ExitCommandError, code, err)
	}

	goldenDir, apply, err := resolveGoldenDir(opts, cfg.Scenarios)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeScanError, err)
	}
	if apply {
		formatter.VerboseLog("Baselines: %s (update=%t)", goldenDir, opts.Update)
		if err := harness.ApplyBaselines(goldenDir, opts.Update, scenarios, report); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err)
		}
	}

	result := newCheckResult(report)
	if formatter.JSON() {
		return outputCheckJSON(formatter, result)
	}
	return outputCheckText(formatter, report, opts.Update && apply)
}

// resolveGoldenDir returns the baseline directory and whether baselines
// apply to this run. An explicit --golden-dir or --update always applies;
// the default directory applies only when it exists.
func resolveGoldenDir(opts *CheckOptions, scenariosDir string) (string, bool, error) {
	if opts.GoldenDir != "" {
		return opts.GoldenDir, true, nil
	}
	base := scenariosDir
	if base == "" {
		base = "."
	}
	dir := filepath.Join(base, "golden")
	if opts.Update {
		return dir, true, nil
	}
	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return dir, false, nil
	case err != nil:
		return "", false, err
	case !info.IsDir():
		return "", false, fmt.Errorf("golden path is not a directory: %s", dir)
	}
	return dir, true, nil
}

func newCheckResult(report *harness.Report) CheckResult {
	result := CheckResult{
		RunID:     report.RunID,
		Scenarios: make([]ScenarioResult, 0, len(report.Outcomes)),
		Passed:    report.Passed,
		Failed:    report.Failed,
		Total:     report.Total,
	}
	for _, o := range report.Outcomes {
		result.Scenarios = append(result.Scenarios, ScenarioResult{
			Name:     o.Name,
			Status:   o.Status.String(),
			Count:    o.Count,
			Digest:   o.Digest,
			Note:     o.Note,
			Warnings: o.Warnings,
			Errors:   o.ErrorMessages(),
		})
	}
	return result
}

// outputCheckJSON outputs the check result as JSON.
func outputCheckJSON(f *OutputFormatter, result CheckResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
		RunID:  result.RunID,
	}
	if result.Failed > 0 {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    ErrCodeChecksFailed,
			Message: fmt.Sprintf("%d scenario(s) failed", result.Failed),
		}
	}

	if err := f.encode(response); err != nil {
		return err
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}
	return nil
}

// outputCheckText prints one line per scenario, the failures in detail and
// a summary.
func outputCheckText(f *OutputFormatter, report *harness.Report, updated bool) error {
	w := f.Writer

	for _, o := range report.Outcomes {
		writeOutcome(w, o, f.Verbose, updated)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Check Summary: %d passed, %d failed, %d total\n", report.Passed, report.Failed, report.Total)

	if report.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", report.Failed))
	}

	fmt.Fprintln(w, "✓ All scenarios passed")
	return nil
}

func writeOutcome(w io.Writer, o *harness.Outcome, verbose, updated bool) {
	switch o.Status {
	case harness.StatusPassed:
		suffix := ""
		if updated {
			suffix = ", baseline updated"
		}
		fmt.Fprintf(w, "✓ %s (%d rows%s)\n", o.Name, o.Count, suffix)
	case harness.StatusFailed:
		fmt.Fprintf(w, "✗ %s\n", o.Name)
		for _, err := range o.Errors {
			fmt.Fprintln(w, indent(strings.TrimRight(err.Error(), "\n")))
		}
	default:
		fmt.Fprintf(w, "- %s (%s)\n", o.Name, o.Status)
	}

	for _, warning := range o.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warning)
	}
	if verbose && o.Note != "" {
		fmt.Fprintf(w, "  note: %s\n", o.Note)
	}
}

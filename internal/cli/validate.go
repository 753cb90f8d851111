package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/reelcheck/internal/harness"
	"github.com/roach88/reelcheck/internal/querysql"
)

// ValidationIssue is one problem found in a scenario file.
type ValidationIssue struct {
	File     string `json:"file"`
	Line     int    `json:"line,omitempty"`
	Scenario string `json:"scenario,omitempty"`
	Message  string `json:"message"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid     bool              `json:"valid"`
	Scenarios int               `json:"scenarios"`
	Errors    []ValidationIssue `json:"errors,omitempty"`
	Warnings  []ValidationIssue `json:"warnings,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenarios-dir>",
		Short: "Validate scenario files without a database",
		Long: `Load every scenario file in a directory and check it offline.

Checks the file syntax, the scenario schema, unique names and that each
query builds and compiles. Unsatisfiable predicates are reported as
warnings. Every file is checked; errors do not stop at the first file.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, dir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	files, err := harness.FindScenarioFiles(dir)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeScanError, err)
	}
	if len(files) == 0 {
		return formatter.Fail(ExitCommandError, ErrCodeNoFiles, fmt.Errorf("no scenario files found in %s", dir))
	}
	formatter.VerboseLog("Found %d scenario file(s) in %s", len(files), dir)

	result := validateFiles(files)

	if formatter.JSON() {
		return outputValidationJSON(formatter, result)
	}
	return outputValidationText(formatter, result)
}

// validateFiles loads and checks every file, collecting all issues.
func validateFiles(files []string) ValidationResult {
	var result ValidationResult
	reg := harness.NewRegistry()

	for _, path := range files {
		s, err := harness.LoadScenario(path)
		if err != nil {
			result.Errors = append(result.Errors, issueFor(path, "", err))
			continue
		}
		if err := reg.Add(s); err != nil {
			result.Errors = append(result.Errors, issueFor(path, s.Name, err))
			continue
		}
		result.Scenarios++

		ex, err := harness.Explain(s, querysql.SQLite)
		if err != nil {
			result.Errors = append(result.Errors, issueFor(path, s.Name, err))
			continue
		}
		for _, w := range ex.Warnings {
			result.Warnings = append(result.Warnings, ValidationIssue{File: path, Scenario: s.Name, Message: w})
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func issueFor(path, scenario string, err error) ValidationIssue {
	issue := ValidationIssue{File: path, Scenario: scenario, Message: err.Error()}
	var loadErr *harness.LoadError
	if errors.As(err, &loadErr) {
		issue.Message = loadErr.Message
		if loadErr.Pos.IsValid() {
			issue.Line = loadErr.Pos.Line()
		}
	}
	return issue
}

// outputValidationJSON outputs the validation result as JSON.
func outputValidationJSON(f *OutputFormatter, result ValidationResult) error {
	if result.Valid {
		return f.Success(result)
	}

	if err := f.encode(CLIResponse{
		Status: "error",
		Data:   result,
		Error: &CLIError{
			Code:    ErrCodeLoadFailed,
			Message: result.Errors[0].Message,
		},
	}); err != nil {
		return err
	}
	// Invalid scenarios = exit code 1 (validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}

// outputValidationText outputs the validation result as text.
func outputValidationText(f *OutputFormatter, result ValidationResult) error {
	w := f.Writer

	for _, issue := range result.Warnings {
		fmt.Fprintf(w, "warning: %s (%s): %s\n", issue.File, issue.Scenario, issue.Message)
	}

	if result.Valid {
		fmt.Fprintf(w, "✓ All %d scenario(s) valid\n", result.Scenarios)
		return nil
	}

	fmt.Fprintln(w, "✗ Validation failed")
	fmt.Fprintln(w)
	for _, issue := range result.Errors {
		if issue.Line > 0 {
			fmt.Fprintf(w, "%s:%d\n", issue.File, issue.Line)
		} else {
			fmt.Fprintln(w, issue.File)
		}
		fmt.Fprintf(w, "  %s\n\n", issue.Message)
	}

	// Invalid scenarios = exit code 1 (validation failure)
	return NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(result.Errors)))
}

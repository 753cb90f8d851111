package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// ScenarioSummary describes one scenario in list output.
type ScenarioSummary struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Source      string `json:"source,omitempty"`
	Note        string `json:"note,omitempty"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "list [scenarios-dir]",
		Short: "List scenarios",
		Long: `List scenario names and descriptions.

Without a scenarios-dir the built-in scenarios are listed.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(rootOpts, scenarioArg(args, 0), filter, cmd)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

func runList(opts *RootOptions, dir, filter string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	cfg, err := loadConfig(opts, dir)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err)
	}
	reg, err := loadRegistry(cfg.Scenarios)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLoadFailed, err)
	}
	scenarios, err := reg.Filter(filter)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err)
	}

	summaries := make([]ScenarioSummary, 0, len(scenarios))
	for _, s := range scenarios {
		summaries = append(summaries, ScenarioSummary{
			Name:        s.Name,
			Description: s.Description,
			Source:      s.Source,
			Note:        s.Note,
		})
	}

	if formatter.JSON() {
		return formatter.Success(summaries)
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\n", s.Name, s.Description)
		if opts.Verbose && s.Source != "" {
			fmt.Fprintf(tw, "\tsource: %s\n", s.Source)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(formatter.Writer, "\n%d scenario(s)\n", len(summaries))
	return nil
}

package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/reelcheck/internal/fixture"
)

// SeedResult describes a written fixture catalog.
type SeedResult struct {
	Path   string `json:"path"`
	Actors int    `json:"actors"`
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "seed <sqlite-path>",
		Short: "Write the fixture catalog to a SQLite file",
		Long: `Create a SQLite movie catalog holding the synthetic fixture
dataset. Every built-in scenario passes against it.

Examples:
  reelcheck seed movies.db
  reelcheck check --dsn movies.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args[0], force, cmd)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "replace an existing file")

	return cmd
}

func runSeed(opts *RootOptions, path string, force bool, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	_, err := os.Stat(path)
	switch {
	case err == nil && !force:
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, fmt.Errorf("%s already exists (use --force to replace it)", path))
	case err == nil:
		formatter.VerboseLog("Removing %s", path)
		if err := os.Remove(path); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err)
	}

	if err := fixture.WriteSQLite(cmd.Context(), path); err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeWriteFailed, err)
	}

	result := SeedResult{Path: path, Actors: fixture.ActorCount}
	if formatter.JSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Seeded %s (%d actors)\n", result.Path, result.Actors)
	return nil
}

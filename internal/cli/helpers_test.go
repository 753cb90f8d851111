package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/reelcheck/internal/config"
)

// isolateEnv blanks the settings variables and moves into an empty
// directory so no .env file is picked up.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		config.EnvDriver, config.EnvDSN, config.EnvScenarios, config.EnvLogLevel,
		config.EnvDBUser, config.EnvDBPass, config.EnvDBHost, config.EnvDBPort, config.EnvDBName,
	} {
		t.Setenv(key, "")
	}
	t.Chdir(t.TempDir())
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func writeScenario(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

// repoScenarios is the scenarios directory shipped with the repository,
// resolved before any test changes directory.
var repoScenarios = func() string {
	dir, err := filepath.Abs(filepath.Join("..", "..", "scenarios"))
	if err != nil {
		panic(err)
	}
	return dir
}()

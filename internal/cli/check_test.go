package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reelcheck/internal/config"
	"github.com/roach88/reelcheck/internal/testutil"
)

const wrongCountScenario = `name: wrong_count
description: "Marion Cotillard, expected twice"
query:
  where:
    - field: actor.identity
      equals: "Marion Cotillard"
expect:
  count: 2
`

// checkResponse decodes a JSON check response.
func checkResponse(t *testing.T, out string) (CLIResponse, CheckResult) {
	t.Helper()
	var resp struct {
		CLIResponse
		Data CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp.CLIResponse, resp.Data
}

func TestCheckCommand_BuiltinsPass(t *testing.T) {
	isolateEnv(t)
	dsn := testutil.SeedFile(t)

	out, _, err := execute(t, "--dsn", dsn, "check")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ actors_ordered_by_identity (1137 rows)")
	assert.Contains(t, out, "✓ actor_by_identity (1 rows)")
	assert.Contains(t, out, "✓ actors_in_films_of_2015 (0 rows)")
	assert.Contains(t, out, "✓ actors_directed_by_ridley_scott (27 rows)")
	assert.Contains(t, out, "Check Summary: 8 passed, 0 failed, 8 total")
	assert.Contains(t, out, "✓ All scenarios passed")
	assert.NotContains(t, out, "note:")
}

func TestCheckCommand_JSON(t *testing.T) {
	isolateEnv(t)
	dsn := testutil.SeedFile(t)

	out, _, err := execute(t, "--dsn", dsn, "--format", "json", "check")
	require.NoError(t, err)

	resp, result := checkResponse(t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Nil(t, resp.Error)
	assert.NotEmpty(t, resp.RunID)
	assert.Equal(t, resp.RunID, result.RunID)
	assert.Equal(t, 8, result.Total)
	assert.Equal(t, 8, result.Passed)
	require.Len(t, result.Scenarios, 8)
	for _, s := range result.Scenarios {
		assert.Equal(t, "passed", s.Status, s.Name)
		assert.Len(t, s.Digest, 64, s.Name)
		assert.Empty(t, s.Errors, s.Name)
	}
}

func TestCheckCommand_RepositoryScenarios(t *testing.T) {
	isolateEnv(t)
	dsn := testutil.SeedFile(t)

	out, _, err := execute(t, "--dsn", dsn, "check", repoScenarios, "--filter", "actors_in_*")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ actors_in_french_films (158 rows)")
	assert.Contains(t, out, "✓ actors_in_french_films_of_2017 (24 rows)")
	assert.Contains(t, out, "Check Summary: 3 passed, 0 failed, 3 total")
}

func TestCheckCommand_ScenariosFromEnvironment(t *testing.T) {
	isolateEnv(t)
	dsn := testutil.SeedFile(t)
	t.Setenv(config.EnvScenarios, repoScenarios)
	t.Setenv(config.EnvDSN, dsn)

	out, _, err := execute(t, "check", "--filter", "actor_by_identity")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestCheckCommand_FailureShowsExpectedAndActual(t *testing.T) {
	isolateEnv(t)
	dsn := testutil.SeedFile(t)
	dir := filepath.Join(t.TempDir(), "scenarios")
	writeScenario(t, dir, "wrong_count.yaml", wrongCountScenario)
	writeScenario(t, dir, "born_1985.yaml", `name: born_1985
description: "Actors born in 1985"
query:
  where:
    - field: actor.birthdate
      year: 1985
expect:
  count: 10
`)

	out, _, err := execute(t, "--dsn", dsn, "check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ wrong_count")
	assert.Contains(t, out, "  Assertion failed: count")
	assert.Contains(t, out, "Expected: 2 rows")
	assert.Contains(t, out, "Actual: 1 rows")
	assert.Contains(t, out, "[0] Marion Cotillard")
	assert.Contains(t, out, "✓ born_1985 (10 rows)")
	assert.Contains(t, out, "Check Summary: 1 passed, 1 failed, 2 total")
}

func TestCheckCommand_FailureJSON(t *testing.T) {
	isolateEnv(t)
	dsn := testutil.SeedFile(t)
	dir := filepath.Join(t.TempDir(), "scenarios")
	writeScenario(t, dir, "wrong_count.yaml", wrongCountScenario)

	out, _, err := execute(t, "--dsn", dsn, "--format", "json", "check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp, result := checkResponse(t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeChecksFailed, resp.Error.Code)
	require.Len(t, result.Scenarios, 1)
	assert.Equal(t, "failed", result.Scenarios[0].Status)
	assert.Equal(t, 1, result.Scenarios[0].Count)
	require.Len(t, result.Scenarios[0].Errors, 1)
	assert.Contains(t, result.Scenarios[0].Errors[0], "Expected: 2 rows")
}

func TestCheckCommand_NoMatchingScenarios(t *testing.T) {
	isolateEnv(t)

	out, _, err := execute(t, "--dsn", "never-opened.db", "check", "--filter", "nothing_*")
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestCheckCommand_MissingCatalog(t *testing.T) {
	isolateEnv(t)
	missing := filepath.Join(t.TempDir(), "missing.db")

	out, _, err := execute(t, "--dsn", missing, "check")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeConnection+"]")
	assert.NoFileExists(t, missing)
}

func TestCheckCommand_InvalidScenarioDir(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	writeScenario(t, dir, "broken.yaml", "name: broken\nquery: [\n")

	_, _, err := execute(t, "--dsn", "never-opened.db", "check", dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), ErrCodeLoadFailed)
}

func TestCheckCommand_InvalidRepeat(t *testing.T) {
	isolateEnv(t)

	_, _, err := execute(t, "check", "--repeat", "0")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "--repeat must be at least 1")
}

func TestCheckCommand_Repeat(t *testing.T) {
	isolateEnv(t)
	dsn := testutil.SeedFile(t)

	out, _, err := execute(t, "--dsn", dsn, "check", "--repeat", "3", "--filter", "actors_by_role_name")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ actors_by_role_name (2 rows)")
}

func TestCheckCommand_VerboseShowsNotes(t *testing.T) {
	isolateEnv(t)
	dsn := testutil.SeedFile(t)

	out, errOut, err := execute(t, "--dsn", dsn, "-v", "check", "--filter", "actors_directed_by_*")
	require.NoError(t, err)
	assert.Contains(t, out, "note: The reference query required")
	assert.Contains(t, errOut, "Running 1 scenario(s)")
	assert.Contains(t, errOut, "run finished")
}

func TestCheckCommand_Baselines(t *testing.T) {
	isolateEnv(t)
	dsn := testutil.SeedFile(t)
	golden := filepath.Join(t.TempDir(), "golden")

	out, _, err := execute(t, "--dsn", dsn, "check", "--update", "--golden-dir", golden)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ actor_by_identity (1 rows, baseline updated)")

	files, err := filepath.Glob(filepath.Join(golden, "*.golden"))
	require.NoError(t, err)
	assert.Len(t, files, 8)

	_, _, err = execute(t, "--dsn", dsn, "check", "--golden-dir", golden)
	require.NoError(t, err)

	path := filepath.Join(golden, "actor_by_identity.golden")
	require.NoError(t, os.WriteFile(path, []byte(`{"count":2}`), 0o644))

	out, _, err = execute(t, "--dsn", dsn, "check", "--golden-dir", golden)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ actor_by_identity")
	assert.Contains(t, out, "Assertion failed: baseline")
	assert.Contains(t, out, "Check Summary: 7 passed, 1 failed, 8 total")
}

func TestCheckCommand_MissingBaselineFails(t *testing.T) {
	isolateEnv(t)
	dsn := testutil.SeedFile(t)

	out, _, err := execute(t, "--dsn", dsn, "check", "--golden-dir", t.TempDir(), "--filter", "actor_by_identity")
	require.Error(t, err)
	assert.Contains(t, out, "no baseline recorded (run with --update)")
}

func TestResolveGoldenDir(t *testing.T) {
	dir := t.TempDir()

	got, apply, err := resolveGoldenDir(&CheckOptions{}, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "golden"), got)
	assert.False(t, apply, "absent default directory is skipped")

	_, apply, err = resolveGoldenDir(&CheckOptions{Update: true}, dir)
	require.NoError(t, err)
	assert.True(t, apply)

	require.NoError(t, os.Mkdir(filepath.Join(dir, "golden"), 0o755))
	_, apply, err = resolveGoldenDir(&CheckOptions{}, dir)
	require.NoError(t, err)
	assert.True(t, apply)

	got, apply, err = resolveGoldenDir(&CheckOptions{GoldenDir: "elsewhere"}, dir)
	require.NoError(t, err)
	assert.Equal(t, "elsewhere", got)
	assert.True(t, apply)

	file := filepath.Join(t.TempDir(), "golden")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, _, err = resolveGoldenDir(&CheckOptions{}, filepath.Dir(file))
	require.Error(t, err)
}

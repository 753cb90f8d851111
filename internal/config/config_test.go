package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load reads.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvDriver, EnvDSN, EnvScenarios, EnvLogLevel,
		EnvDBUser, EnvDBPass, EnvDBHost, EnvDBPort, EnvDBName,
	} {
		t.Setenv(key, "")
	}
}

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load(Options{})
	require.NoError(t, err)

	assert.Equal(t, DefaultDriver, cfg.Driver)
	assert.Equal(t, DefaultDSN, cfg.DSN)
	assert.Empty(t, cfg.Scenarios)
	assert.Equal(t, slog.LevelWarn, cfg.LogLevel)
}

func TestLoad_Precedence(t *testing.T) {
	clearEnv(t)
	envFile := writeEnvFile(t, `
REELCHECK_DSN=from-file.db
REELCHECK_SCENARIOS=file-scenarios
REELCHECK_LOG_LEVEL=debug
`)
	t.Setenv(EnvScenarios, "env-scenarios")

	cfg, err := Load(Options{EnvFile: envFile})
	require.NoError(t, err)
	assert.Equal(t, "from-file.db", cfg.DSN)
	assert.Equal(t, "env-scenarios", cfg.Scenarios)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)

	cfg, err = Load(Options{EnvFile: envFile, DSN: "flag.db", Scenarios: "flag-scenarios", LogLevel: "error"})
	require.NoError(t, err)
	assert.Equal(t, "flag.db", cfg.DSN)
	assert.Equal(t, "flag-scenarios", cfg.Scenarios)
	assert.Equal(t, slog.LevelError, cfg.LogLevel)
}

func TestLoad_MissingExplicitEnvFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "missing.env")})
	assert.ErrorContains(t, err, "read env file")
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	clearEnv(t)
	_, err := Load(Options{LogLevel: "chatty"})
	assert.ErrorContains(t, err, "invalid log level")
}

func TestLoad_MySQLFromParts(t *testing.T) {
	clearEnv(t)
	envFile := writeEnvFile(t, `
DB_USER=reelcheck
DB_PASS=s3cret
DB_HOST=db.internal
DB_NAME=movies
`)

	cfg, err := Load(Options{EnvFile: envFile, Driver: "MySQL"})
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.Driver)
	assert.Contains(t, cfg.DSN, "reelcheck:s3cret@tcp(db.internal:3306)/movies")
	assert.Contains(t, cfg.DSN, "parseTime=true")
	assert.Contains(t, cfg.DSN, "charset=utf8mb4")

	redacted := cfg.Redacted()
	assert.NotContains(t, redacted, "s3cret")
	assert.Contains(t, redacted, "reelcheck:xxxxx@tcp(db.internal:3306)/movies")

	t.Setenv(EnvDBPort, "3307")
	cfg, err = Load(Options{EnvFile: envFile, Driver: "mysql"})
	require.NoError(t, err)
	assert.Contains(t, cfg.DSN, "tcp(db.internal:3307)")
}

func TestLoad_MySQLMissingParts(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDBUser, "reelcheck")

	_, err := Load(Options{Driver: "mysql"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvDSN)
	assert.Contains(t, err.Error(), "DB_HOST, DB_NAME")
}

func TestLoad_MySQLExplicitDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvDriver, "mysql")
	t.Setenv(EnvDSN, "u:p@tcp(localhost:3306)/movies")

	cfg, err := Load(Options{})
	require.NoError(t, err)
	assert.Equal(t, "u:p@tcp(localhost:3306)/movies", cfg.DSN)
}

func TestRedacted_SQLite(t *testing.T) {
	cfg := &Config{Driver: "sqlite3", DSN: "movies.db"}
	assert.Equal(t, "movies.db", cfg.Redacted())
}

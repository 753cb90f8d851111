// Package config resolves reelcheck settings.
//
// Each setting is taken from the first source that defines it:
// command-line flags, the process environment, the .env file, the default.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
)

// Environment variables.
const (
	EnvDriver    = "REELCHECK_DRIVER"
	EnvDSN       = "REELCHECK_DSN"
	EnvScenarios = "REELCHECK_SCENARIOS"
	EnvLogLevel  = "REELCHECK_LOG_LEVEL"

	// Parts of a MySQL DSN, used when no DSN is configured.
	EnvDBUser = "DB_USER"
	EnvDBPass = "DB_PASS"
	EnvDBHost = "DB_HOST"
	EnvDBPort = "DB_PORT"
	EnvDBName = "DB_NAME"
)

// Defaults.
const (
	DefaultDriver    = "sqlite3"
	DefaultDSN       = "movies.db"
	DefaultLogLevel  = "warn"
	DefaultEnvFile   = ".env"
	defaultMySQLPort = "3306"
)

// Options are values given on the command line. Empty means unset.
type Options struct {
	EnvFile   string // .env path; DefaultEnvFile is read if present
	Driver    string
	DSN       string
	Scenarios string
	LogLevel  string
}

// Config is the resolved configuration.
type Config struct {
	Driver    string
	DSN       string
	Scenarios string // empty means the built-in scenarios
	LogLevel  slog.Level
}

// Load resolves the configuration from opts, the environment and the .env
// file. An explicitly named env file must exist.
func Load(opts Options) (*Config, error) {
	dotenv, err := readEnvFile(opts.EnvFile)
	if err != nil {
		return nil, err
	}
	r := resolver{dotenv: dotenv}

	cfg := &Config{
		Driver:    strings.ToLower(r.get(opts.Driver, EnvDriver, DefaultDriver)),
		DSN:       r.get(opts.DSN, EnvDSN, ""),
		Scenarios: r.get(opts.Scenarios, EnvScenarios, ""),
	}

	level := r.get(opts.LogLevel, EnvLogLevel, DefaultLogLevel)
	if err := cfg.LogLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	if cfg.DSN == "" {
		switch cfg.Driver {
		case "mysql":
			cfg.DSN, err = r.mysqlDSN()
			if err != nil {
				return nil, err
			}
		default:
			cfg.DSN = DefaultDSN
		}
	}
	return cfg, nil
}

// Redacted returns the DSN with any password masked, for logs and output.
func (c *Config) Redacted() string {
	if c.Driver != "mysql" {
		return c.DSN
	}
	mc, err := mysql.ParseDSN(c.DSN)
	if err != nil {
		return "<unparseable dsn>"
	}
	if mc.Passwd != "" {
		mc.Passwd = "xxxxx"
	}
	return mc.FormatDSN()
}

func readEnvFile(path string) (map[string]string, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultEnvFile
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("read env file %s: %w", path, err)
	}
	return values, nil
}

type resolver struct {
	dotenv map[string]string
}

// get returns the flag value, else the environment, else the .env file,
// else def.
func (r resolver) get(flag, key, def string) string {
	if flag != "" {
		return flag
	}
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	if v := r.dotenv[key]; v != "" {
		return v
	}
	return def
}

// mysqlDSN assembles a DSN from the DB_* variables.
func (r resolver) mysqlDSN() (string, error) {
	var missing []string
	need := func(key string) string {
		v := r.get("", key, "")
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	mc := mysql.NewConfig()
	mc.User = need(EnvDBUser)
	mc.Passwd = r.get("", EnvDBPass, "")
	host := need(EnvDBHost)
	mc.DBName = need(EnvDBName)
	if len(missing) > 0 {
		return "", fmt.Errorf("mysql driver needs %s or %s", EnvDSN, strings.Join(missing, ", "))
	}

	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(host, r.get("", EnvDBPort, defaultMySQLPort))
	mc.ParseTime = true
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN(), nil
}

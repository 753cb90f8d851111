package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/reelcheck/internal/querysql"
)

//go:embed schema.sql
var schemaSQL string

// Supported driver names.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

const (
	pingTimeout          = 5 * time.Second
	defaultMySQLConns    = 4
	mysqlConnMaxLifetime = 30 * time.Minute
)

// Config describes how to reach a catalog.
type Config struct {
	Driver string // sqlite3 or mysql
	DSN    string // file path for sqlite3, go-sql-driver DSN for mysql

	// ReadOnly rejects writes on SQLite connections (PRAGMA query_only) and
	// requires the database file to exist.
	ReadOnly bool

	// MaxOpenConns caps the MySQL pool. SQLite always uses one connection.
	MaxOpenConns int

	Logger *slog.Logger
}

// Catalog is an open connection pool to the movie catalog.
type Catalog struct {
	db      *sql.DB
	driver  string
	dialect querysql.Dialect
	logger  *slog.Logger
}

// Open connects to the catalog described by cfg and verifies the connection.
//
// SQLite pools are capped at one connection so that pragmas apply to every
// query. MySQL DSNs are normalized to parse DATE columns into time.Time.
// Failures to reach the database are returned as *ConnectionError.
func Open(ctx context.Context, cfg Config) (*Catalog, error) {
	dialect, err := querysql.ParseDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	driver := DriverSQLite
	dsn := cfg.DSN
	if dialect == querysql.MySQL {
		driver = DriverMySQL
		dsn, err = normalizeMySQLDSN(cfg.DSN)
		if err != nil {
			return nil, &ConnectionError{Op: "open", Driver: driver, Err: err}
		}
	} else if cfg.ReadOnly && isFilePath(dsn) {
		if _, err := os.Stat(dsn); err != nil {
			return nil, &ConnectionError{Op: "open", Driver: driver, Err: err}
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, &ConnectionError{Op: "open", Driver: driver, Err: err}
	}

	if dialect == querysql.SQLite {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	} else {
		n := cfg.MaxOpenConns
		if n <= 0 {
			n = defaultMySQLConns
		}
		db.SetMaxOpenConns(n)
		db.SetMaxIdleConns(n)
		db.SetConnMaxLifetime(mysqlConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, &ConnectionError{Op: "ping", Driver: driver, Err: err}
	}

	if dialect == querysql.SQLite {
		if err := applyPragmas(ctx, db, cfg.ReadOnly); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragmas: %w", err)
		}
	}

	logger.Debug("catalog opened", "driver", driver, "read_only", cfg.ReadOnly)
	return &Catalog{db: db, driver: driver, dialect: dialect, logger: logger}, nil
}

// Close closes the pool.
func (c *Catalog) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// DB returns the underlying pool. Used by the fixture seeder.
func (c *Catalog) DB() *sql.DB {
	return c.db
}

// Driver returns the database/sql driver name.
func (c *Catalog) Driver() string {
	return c.driver
}

// Dialect returns the SQL dialect queries are compiled for.
func (c *Catalog) Dialect() querysql.Dialect {
	return c.dialect
}

// Acquire checks out one connection from the pool as a Session.
// The caller must Close the session.
func (c *Catalog) Acquire(ctx context.Context) (*Session, error) {
	conn, err := c.db.Conn(ctx)
	if err != nil {
		return nil, &ConnectionError{Op: "acquire", Driver: c.driver, Err: err}
	}
	c.logger.Debug("session acquired")
	return &Session{
		conn:     conn,
		compiler: querysql.NewSQLCompiler(c.dialect),
		logger:   c.logger,
	}, nil
}

// EnsureSchema creates the catalog tables if they don't exist.
// Only SQLite catalogs are managed; this function is idempotent.
func (c *Catalog) EnsureSchema(ctx context.Context) error {
	if c.dialect != querysql.SQLite {
		return fmt.Errorf("schema management is only supported for %s, not %s", DriverSQLite, c.driver)
	}
	if _, err := c.db.ExecContext(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}
	return nil
}

// Stats returns the row count of every catalog table.
func (c *Catalog) Stats(ctx context.Context) ([]TableStats, error) {
	stats := make([]TableStats, 0, len(Tables))
	for _, table := range Tables {
		var n int64
		// Table names come from the fixed Tables list.
		if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, fmt.Errorf("count %s: %w", table, err)
		}
		stats = append(stats, TableStats{Table: table, Rows: n})
	}
	return stats, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB, readOnly bool) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	if readOnly {
		pragmas = append(pragmas, "PRAGMA query_only = ON")
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// normalizeMySQLDSN forces parseTime so DATE columns scan into time.Time, and
// defaults the location to UTC.
func normalizeMySQLDSN(dsn string) (string, error) {
	if dsn == "" {
		return "", errors.New("empty mysql DSN")
	}
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql DSN: %w", err)
	}
	cfg.ParseTime = true
	if cfg.Loc == nil {
		cfg.Loc = time.UTC
	}
	return cfg.FormatDSN(), nil
}

// isFilePath reports whether a SQLite DSN names a plain file.
func isFilePath(dsn string) bool {
	return dsn != "" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:")
}

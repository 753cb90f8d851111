// Package testutil provides shared test helpers.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/reelcheck/internal/catalog"
	"github.com/roach88/reelcheck/internal/fixture"
)

// SeedFile writes the fixture catalog to a SQLite file in a temp directory
// and returns its path.
func SeedFile(t testing.TB) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movies.db")
	require.NoError(t, fixture.WriteSQLite(context.Background(), path))
	return path
}

// NewCatalog opens a read-only fixture catalog. It is closed on cleanup.
func NewCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Open(context.Background(), catalog.Config{
		Driver:   catalog.DriverSQLite,
		DSN:      SeedFile(t),
		ReadOnly: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { cat.Close() })
	return cat
}

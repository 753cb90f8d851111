package fixture

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reelcheck/internal/catalog"
)

func TestWriteSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "movies.db")
	require.NoError(t, WriteSQLite(ctx, path))

	cat, err := catalog.Open(ctx, catalog.Config{Driver: catalog.DriverSQLite, DSN: path, ReadOnly: true})
	require.NoError(t, err)
	defer cat.Close()

	ds := Build()
	stats, err := cat.Stats(ctx)
	require.NoError(t, err)
	counts := make(map[string]int64)
	for _, s := range stats {
		counts[s.Table] = s.Rows
	}
	assert.Equal(t, int64(len(ds.Actors)), counts["actor"])
	assert.Equal(t, int64(len(ds.Roles)), counts["role"])
	assert.Equal(t, int64(len(ds.Films)), counts["film"])
	assert.Equal(t, int64(len(ds.Countries)), counts["country"])
	assert.Equal(t, int64(len(ds.Directors)), counts["director"])

	var nullBirthdates int
	require.NoError(t, cat.DB().QueryRowContext(ctx,
		"SELECT COUNT(*) FROM actor WHERE birthdate IS NULL").Scan(&nullBirthdates))
	assert.Equal(t, 1, nullBirthdates)
}

func TestWriteSQLite_RejectsSecondSeed(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "movies.db")
	require.NoError(t, WriteSQLite(ctx, path))

	err := WriteSQLite(ctx, path)
	require.Error(t, err)

	// The failed seed rolled back; the first seed is intact.
	cat, err := catalog.Open(ctx, catalog.Config{Driver: catalog.DriverSQLite, DSN: path})
	require.NoError(t, err)
	defer cat.Close()
	var n int
	require.NoError(t, cat.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM actor").Scan(&n))
	assert.Equal(t, ActorCount, n)
}

package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reelcheck/internal/catalog"
	"github.com/roach88/reelcheck/internal/queryir"
	"github.com/roach88/reelcheck/internal/testutil"
)

func acquire(t *testing.T) *catalog.Session {
	t.Helper()
	sess, err := testutil.NewCatalog(t).Acquire(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { sess.Close() })
	return sess
}

func identities(actors []catalog.Actor) []string {
	out := make([]string, len(actors))
	for i, a := range actors {
		out[i] = a.Identity
	}
	return out
}

func TestSession_ActorByIdentity(t *testing.T) {
	sess := acquire(t)
	actors, err := sess.Actors(context.Background(),
		queryir.Actors().Where(queryir.Eq(queryir.ActorIdentity, "Marion Cotillard")).Build())
	require.NoError(t, err)
	require.Len(t, actors, 1)

	a := actors[0]
	assert.Equal(t, int64(2), a.ID)
	assert.Equal(t, "Marion Cotillard", a.Identity)
	require.True(t, a.Birthdate.Valid)
	assert.Equal(t, 1975, a.Birthdate.Time.Year())
}

func TestSession_BirthYear(t *testing.T) {
	sess := acquire(t)
	actors, err := sess.Actors(context.Background(),
		queryir.Actors().Where(queryir.Year(queryir.ActorBirthdate, 1985)).Build())
	require.NoError(t, err)
	require.Len(t, actors, 10)
	for _, a := range actors {
		require.True(t, a.Birthdate.Valid)
		assert.Equal(t, 1985, a.Birthdate.Time.Year())
	}
}

func TestSession_OrderedByIdentity(t *testing.T) {
	sess := acquire(t)
	actors, err := sess.Actors(context.Background(),
		queryir.Actors().OrderBy(queryir.ActorIdentity).Build())
	require.NoError(t, err)
	require.Len(t, actors, 1137)

	names := identities(actors)
	assert.Equal(t, "A.J. Danna", names[0])
	assert.IsNonDecreasing(t, names)

	var unknown int
	for _, a := range actors {
		if !a.Birthdate.Valid {
			unknown++
		}
	}
	assert.Equal(t, 1, unknown)
}

func TestSession_DistinctAcrossJoins(t *testing.T) {
	sess := acquire(t)
	ctx := context.Background()
	french := queryir.Eq(queryir.CountryName, "France")

	distinct, err := sess.Actors(ctx, queryir.Actors().Distinct().Where(french).Build())
	require.NoError(t, err)
	assert.Len(t, distinct, 158)

	seen := make(map[int64]bool)
	for _, a := range distinct {
		assert.False(t, seen[a.ID], "actor %d returned twice", a.ID)
		seen[a.ID] = true
	}

	// Without DISTINCT, actors with several French roles repeat.
	all, err := sess.Actors(ctx, queryir.Actors().Where(french).Build())
	require.NoError(t, err)
	assert.Greater(t, len(all), len(distinct))
}

func TestSession_SharedIdentityStaysDistinct(t *testing.T) {
	sess := acquire(t)
	actors, err := sess.Actors(context.Background(),
		queryir.Actors().Distinct().Where(queryir.Eq(queryir.RoleName, "Harley QUINN")).Build())
	require.NoError(t, err)
	assert.Equal(t, []string{"Margot Robbie", "Margot Robbie"}, identities(actors))
	assert.NotEqual(t, actors[0].ID, actors[1].ID)
}

func TestSession_EmptyResult(t *testing.T) {
	sess := acquire(t)
	actors, err := sess.Actors(context.Background(),
		queryir.Actors().Distinct().Where(queryir.Year(queryir.FilmYear, 2015)).Build())
	require.NoError(t, err)
	assert.Empty(t, actors)
}

func TestSession_CompileError(t *testing.T) {
	sess := acquire(t)
	_, err := sess.Actors(context.Background(), queryir.Actors().OrderBy(queryir.CountryName).Build())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only actor fields")
}

func TestSession_CloseIdempotent(t *testing.T) {
	sess, err := testutil.NewCatalog(t).Acquire(context.Background())
	require.NoError(t, err)

	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close())

	_, err = sess.Actors(context.Background(), queryir.Actors().Build())
	assert.ErrorContains(t, err, "session is closed")
}

func TestAcquire_CancelledContext(t *testing.T) {
	cat := testutil.NewCatalog(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := cat.Acquire(ctx)
	require.Error(t, err)
	assert.True(t, catalog.IsConnectionError(err))
}

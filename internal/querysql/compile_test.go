package querysql

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reelcheck/internal/ir"
	"github.com/roach88/reelcheck/internal/queryir"
)

const selectAll = "SELECT a.id, a.identity, a.birthdate FROM actor a"
const selectDistinct = "SELECT DISTINCT a.id, a.identity, a.birthdate FROM actor a"

const (
	joinRole     = " INNER JOIN role r ON r.actor_id = a.id"
	joinFilm     = " INNER JOIN film f ON f.id = r.film_id"
	joinCountry  = " INNER JOIN film_country fc ON fc.film_id = f.id INNER JOIN country c ON c.id = fc.country_id"
	joinDirector = " INNER JOIN director d ON d.id = f.director_id"
)

func TestCompileSQLite(t *testing.T) {
	tests := []struct {
		name   string
		query  queryir.ActorQuery
		sql    string
		params []any
	}{
		{
			name:  "all ordered by identity",
			query: queryir.Actors().OrderBy(queryir.ActorIdentity).Build(),
			sql:   selectAll + " ORDER BY a.identity COLLATE BINARY ASC, a.id ASC",
		},
		{
			name:   "identity",
			query:  queryir.Actors().Where(queryir.Eq(queryir.ActorIdentity, "Marion Cotillard")).Build(),
			sql:    selectAll + " WHERE a.identity = ? ORDER BY a.id ASC",
			params: []any{"Marion Cotillard"},
		},
		{
			name:   "birth year",
			query:  queryir.Actors().Where(queryir.Year(queryir.ActorBirthdate, 1985)).Build(),
			sql:    selectAll + " WHERE CAST(strftime('%Y', a.birthdate) AS INTEGER) = ? ORDER BY a.id ASC",
			params: []any{int64(1985)},
		},
		{
			name:   "role",
			query:  queryir.Actors().Distinct().Where(queryir.Eq(queryir.RoleName, "Harley QUINN")).Build(),
			sql:    selectDistinct + joinRole + " WHERE r.name = ? ORDER BY a.id ASC",
			params: []any{"Harley QUINN"},
		},
		{
			name:   "film year",
			query:  queryir.Actors().Distinct().Where(queryir.Year(queryir.FilmYear, 2015)).Build(),
			sql:    selectDistinct + joinRole + joinFilm + " WHERE f.release_year = ? ORDER BY a.id ASC",
			params: []any{int64(2015)},
		},
		{
			name:   "country",
			query:  queryir.Actors().Distinct().Where(queryir.Eq(queryir.CountryName, "France")).Build(),
			sql:    selectDistinct + joinRole + joinFilm + joinCountry + " WHERE c.name = ? ORDER BY a.id ASC",
			params: []any{"France"},
		},
		{
			name: "country and year",
			query: queryir.Actors().Distinct().Where(
				queryir.Eq(queryir.CountryName, "France"),
				queryir.Year(queryir.FilmYear, 2017),
			).Build(),
			sql:    selectDistinct + joinRole + joinFilm + joinCountry + " WHERE c.name = ? AND f.release_year = ? ORDER BY a.id ASC",
			params: []any{"France", int64(2017)},
		},
		{
			name: "director and year range",
			query: queryir.Actors().Distinct().Where(
				queryir.Eq(queryir.DirectorIdentity, "Ridley Scott"),
				queryir.YearRange(queryir.FilmYear, 2010, 2020),
			).Build(),
			sql:    selectDistinct + joinRole + joinFilm + joinDirector + " WHERE d.identity = ? AND f.release_year BETWEEN ? AND ? ORDER BY a.id ASC",
			params: []any{"Ridley Scott", int64(2010), int64(2020)},
		},
		{
			name:  "descending birthdate",
			query: queryir.Actors().OrderByDesc(queryir.ActorBirthdate).Build(),
			sql:   selectAll + " ORDER BY a.birthdate DESC, a.id ASC",
		},
		{
			name:  "empty conjunction",
			query: queryir.ActorQuery{Filter: queryir.And{}},
			sql:   selectAll + " ORDER BY a.id ASC",
		},
		{
			name: "nested pointer predicates",
			query: queryir.ActorQuery{Distinct: true, Filter: &queryir.And{Predicates: []queryir.Predicate{
				&queryir.Equals{Field: queryir.CountryName, Value: ir.IRString("France")},
				queryir.All(&queryir.YearBetween{Field: queryir.ActorBirthdate, From: 1980, To: 1989}),
			}}},
			sql:    selectDistinct + joinRole + joinFilm + joinCountry + " WHERE c.name = ? AND CAST(strftime('%Y', a.birthdate) AS INTEGER) BETWEEN ? AND ? ORDER BY a.id ASC",
			params: []any{"France", int64(1980), int64(1989)},
		},
	}

	compiler := NewSQLCompiler(SQLite)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := compiler.Compile(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.sql, sql)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestCompileMySQL(t *testing.T) {
	compiler := NewSQLCompiler(MySQL)

	sql, params, err := compiler.Compile(queryir.Actors().Where(queryir.Year(queryir.ActorBirthdate, 1985)).Build())
	require.NoError(t, err)
	assert.Equal(t, selectAll+" WHERE YEAR(a.birthdate) = ? ORDER BY a.id ASC", sql)
	assert.Equal(t, []any{int64(1985)}, params)

	sql, _, err = compiler.Compile(queryir.Actors().OrderBy(queryir.ActorIdentity).Build())
	require.NoError(t, err)
	assert.Equal(t, selectAll+" ORDER BY a.identity COLLATE utf8mb4_bin ASC, a.id ASC", sql)

	sql, _, err = compiler.Compile(queryir.Actors().OrderByDesc(queryir.ActorBirthdate).Build())
	require.NoError(t, err)
	assert.Equal(t, selectAll+" ORDER BY a.birthdate DESC, a.id ASC", sql)

	// Year columns are compared directly in every dialect.
	sql, _, err = compiler.Compile(queryir.Actors().Distinct().Where(queryir.Year(queryir.FilmYear, 2017)).Build())
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE f.release_year = ?")
}

func TestCompileNeverInterpolates(t *testing.T) {
	hostile := "x' OR '1'='1"
	sql, params, err := NewSQLCompiler(SQLite).Compile(
		queryir.Actors().Where(queryir.Eq(queryir.ActorIdentity, hostile)).Build())
	require.NoError(t, err)

	assert.NotContains(t, sql, hostile)
	assert.NotContains(t, sql, "'1'")
	assert.Equal(t, []any{hostile}, params)
}

func TestCompileAlwaysOrders(t *testing.T) {
	queries := []queryir.ActorQuery{
		queryir.Actors().Build(),
		queryir.Actors().Distinct().Where(queryir.Eq(queryir.RoleName, "Harley QUINN")).Build(),
		queryir.Actors().OrderBy(queryir.ActorIdentity).Build(),
	}
	for _, q := range queries {
		sql, _, err := NewSQLCompiler(SQLite).Compile(q)
		require.NoError(t, err)
		assert.Contains(t, sql, "ORDER BY")
		assert.Regexp(t, `a\.id ASC$`, sql)
	}
}

func TestCompileErrors(t *testing.T) {
	compiler := NewSQLCompiler(SQLite)

	_, _, err := compiler.Compile(queryir.ActorQuery{Filter: queryir.Equals{Field: queryir.RoleName, Value: ir.IRNull{}}})
	assert.ErrorContains(t, err, "null cannot be bound")

	_, _, err = compiler.Compile(queryir.ActorQuery{Filter: queryir.And{Predicates: []queryir.Predicate{
		queryir.Equals{Field: queryir.RoleName, Value: ir.IRArray{}},
	}}})
	assert.ErrorContains(t, err, "role.name")

	_, _, err = compiler.Compile(queryir.Actors().OrderBy(queryir.FilmYear).Build())
	assert.ErrorContains(t, err, "only actor fields")

	nilPreds := []queryir.Predicate{
		(*queryir.Equals)(nil),
		(*queryir.YearEquals)(nil),
		(*queryir.YearBetween)(nil),
		(*queryir.And)(nil),
	}
	for _, p := range nilPreds {
		assert.NotPanics(t, func() {
			_, _, err = compiler.Compile(queryir.ActorQuery{Filter: queryir.All(queryir.Eq(queryir.ActorIdentity, "x"), p)})
		})
		assert.ErrorContains(t, err, "unsupported predicate: nil")
	}
}

func TestParseDialect(t *testing.T) {
	for driver, want := range map[string]Dialect{"sqlite3": SQLite, "sqlite": SQLite, "MySQL": MySQL} {
		got, err := ParseDialect(driver)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := ParseDialect("postgres")
	assert.ErrorContains(t, err, "unsupported driver")

	assert.Equal(t, "sqlite", SQLite.String())
	assert.Equal(t, "mysql", MySQL.String())
}

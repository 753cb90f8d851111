package fixture

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/reelcheck/internal/catalog"
)

// Seed inserts ds into db in a single transaction. The schema must exist and
// the tables must be empty.
func Seed(ctx context.Context, db *sql.DB, ds *Dataset) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	ins := inserter{ctx: ctx, tx: tx}
	for _, d := range ds.Directors {
		ins.exec("INSERT INTO director (id, identity) VALUES (?, ?)", d.ID, d.Identity)
	}
	for _, c := range ds.Countries {
		ins.exec("INSERT INTO country (id, name) VALUES (?, ?)", c.ID, c.Name)
	}
	for _, f := range ds.Films {
		ins.exec("INSERT INTO film (id, title, release_year, director_id) VALUES (?, ?, ?, ?)",
			f.ID, f.Title, f.ReleaseYear, f.DirectorID)
		for _, countryID := range f.CountryIDs {
			ins.exec("INSERT INTO film_country (film_id, country_id) VALUES (?, ?)", f.ID, countryID)
		}
	}
	for _, a := range ds.Actors {
		birthdate := sql.NullString{String: a.Birthdate, Valid: a.Birthdate != ""}
		ins.exec("INSERT INTO actor (id, identity, birthdate) VALUES (?, ?, ?)", a.ID, a.Identity, birthdate)
	}
	for _, r := range ds.Roles {
		ins.exec("INSERT INTO role (id, name, actor_id, film_id) VALUES (?, ?, ?, ?)",
			r.ID, r.Name, r.ActorID, r.FilmID)
	}
	if ins.err != nil {
		return fmt.Errorf("seed: %w", ins.err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit seed: %w", err)
	}
	return nil
}

// inserter runs statements until the first error, then does nothing.
type inserter struct {
	ctx context.Context
	tx  *sql.Tx
	err error
}

func (i *inserter) exec(query string, args ...any) {
	if i.err != nil {
		return
	}
	if _, err := i.tx.ExecContext(i.ctx, query, args...); err != nil {
		i.err = fmt.Errorf("%s: %w", query, err)
	}
}

// WriteSQLite creates a SQLite catalog at path holding the fixture dataset.
// The file must not already contain catalog rows.
func WriteSQLite(ctx context.Context, path string) error {
	cat, err := catalog.Open(ctx, catalog.Config{Driver: catalog.DriverSQLite, DSN: path})
	if err != nil {
		return err
	}
	defer cat.Close()

	if err := cat.EnsureSchema(ctx); err != nil {
		return err
	}
	return Seed(ctx, cat.DB(), Build())
}

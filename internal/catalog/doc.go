// Package catalog is the data access layer for the movie catalog.
//
// A Catalog wraps a database/sql pool for one driver (sqlite3 or mysql).
// Queries run on a Session, a single pooled connection that a harness batch
// holds for its whole duration and releases exactly once.
//
// The catalog is read-only from the harness's point of view. The only write
// path is EnsureSchema, used by the fixture seeder against throwaway SQLite
// files.
package catalog

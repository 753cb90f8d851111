package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/roach88/reelcheck/internal/queryir"
	"github.com/roach88/reelcheck/internal/querysql"
)

// Session is one connection checked out of the catalog pool.
// It is not safe for concurrent use.
type Session struct {
	conn     *sql.Conn
	compiler *querysql.SQLCompiler
	logger   *slog.Logger
}

// Actors compiles q and returns the matching actors in result order.
func (s *Session) Actors(ctx context.Context, q queryir.ActorQuery) ([]Actor, error) {
	if s.conn == nil {
		return nil, fmt.Errorf("session is closed")
	}
	query, params, err := s.compiler.Compile(q)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("executing query", "sql", query, "params", len(params))

	rows, err := s.conn.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query actors: %w", err)
	}
	defer rows.Close()

	var actors []Actor
	for rows.Next() {
		var a Actor
		if err := rows.Scan(&a.ID, &a.Identity, &a.Birthdate); err != nil {
			return nil, fmt.Errorf("scan actor: %w", err)
		}
		actors = append(actors, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actors: %w", err)
	}
	return actors, nil
}

// Close returns the connection to the pool. Safe to call more than once.
func (s *Session) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	s.logger.Debug("session released")
	return err
}

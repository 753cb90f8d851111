// Package querysql compiles queryir actor queries to parameterized SQL.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/reelcheck/internal/ir"
	"github.com/roach88/reelcheck/internal/queryir"
)

// Dialect selects the SQL flavour to emit.
type Dialect int

const (
	SQLite Dialect = iota
	MySQL
)

func (d Dialect) String() string {
	switch d {
	case SQLite:
		return "sqlite"
	case MySQL:
		return "mysql"
	default:
		return fmt.Sprintf("Dialect(%d)", int(d))
	}
}

// ParseDialect maps a database/sql driver name to its dialect.
func ParseDialect(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "sqlite3", "sqlite":
		return SQLite, nil
	case "mysql":
		return MySQL, nil
	default:
		return 0, fmt.Errorf("unsupported driver %q (want sqlite3 or mysql)", driver)
	}
}

// Table aliases. The actor table is always "a".
var aliases = map[queryir.Entity]string{
	queryir.EntityActor:    "a",
	queryir.EntityRole:     "r",
	queryir.EntityFilm:     "f",
	queryir.EntityCountry:  "c",
	queryir.EntityDirector: "d",
}

// joinClauses maps each related entity to the INNER JOIN that reaches it.
var joinClauses = map[queryir.Entity]string{
	queryir.EntityRole:     "INNER JOIN role r ON r.actor_id = a.id",
	queryir.EntityFilm:     "INNER JOIN film f ON f.id = r.film_id",
	queryir.EntityCountry:  "INNER JOIN film_country fc ON fc.film_id = f.id INNER JOIN country c ON c.id = fc.country_id",
	queryir.EntityDirector: "INNER JOIN director d ON d.id = f.director_id",
}

// SelectColumns are the actor columns every compiled query returns, in scan order.
const SelectColumns = "a.id, a.identity, a.birthdate"

// SQLCompiler compiles queryir.ActorQuery to SQL for one dialect.
//
// CRITICAL: every query ends in an ORDER BY with a.id as final tiebreaker, so
// unordered scenarios still return rows in a reproducible order.
// CRITICAL: literals are always bound as ? parameters, never interpolated.
type SQLCompiler struct {
	Dialect Dialect
}

// NewSQLCompiler creates a compiler for the given dialect.
func NewSQLCompiler(d Dialect) *SQLCompiler {
	return &SQLCompiler{Dialect: d}
}

// Compile converts q to SQL. Returns (sql, params, error).
//
// Compile does not run queryir.Validate; callers validate first so that
// warnings can be reported alongside the SQL.
func (c *SQLCompiler) Compile(q queryir.ActorQuery) (string, []any, error) {
	var sb strings.Builder

	sb.WriteString("SELECT ")
	if q.Distinct {
		sb.WriteString("DISTINCT ")
	}
	sb.WriteString(SelectColumns)
	sb.WriteString(" FROM actor a")

	for _, e := range queryir.RequiredJoins(q) {
		sb.WriteString(" ")
		sb.WriteString(joinClauses[e])
	}

	var params []any
	if q.Filter != nil {
		where, whereParams, err := c.compilePredicate(q.Filter)
		if err != nil {
			return "", nil, fmt.Errorf("compile filter: %w", err)
		}
		if where != "" {
			sb.WriteString(" WHERE ")
			sb.WriteString(where)
			params = whereParams
		}
	}

	orderBy, err := c.orderBy(q)
	if err != nil {
		return "", nil, err
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(orderBy)

	return sb.String(), params, nil
}

// compilePredicate compiles p to a WHERE fragment. An empty And compiles to "".
// Nested conjunctions flatten without parentheses since AND is associative.
func (c *SQLCompiler) compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case queryir.Equals:
		return c.compileEquals(pred)
	case *queryir.Equals:
		if pred == nil {
			return "", nil, errNilPredicate(p)
		}
		return c.compileEquals(*pred)
	case queryir.YearEquals:
		return c.yearExpr(pred.Field) + " = ?", []any{pred.Year}, nil
	case *queryir.YearEquals:
		if pred == nil {
			return "", nil, errNilPredicate(p)
		}
		return c.yearExpr(pred.Field) + " = ?", []any{pred.Year}, nil
	case queryir.YearBetween:
		return c.yearExpr(pred.Field) + " BETWEEN ? AND ?", []any{pred.From, pred.To}, nil
	case *queryir.YearBetween:
		if pred == nil {
			return "", nil, errNilPredicate(p)
		}
		return c.yearExpr(pred.Field) + " BETWEEN ? AND ?", []any{pred.From, pred.To}, nil
	case queryir.And:
		return c.compileAnd(pred)
	case *queryir.And:
		if pred == nil {
			return "", nil, errNilPredicate(p)
		}
		return c.compileAnd(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func errNilPredicate(p queryir.Predicate) error {
	return fmt.Errorf("unsupported predicate: nil %T", p)
}

func (c *SQLCompiler) compileEquals(eq queryir.Equals) (string, []any, error) {
	param, err := ir.ToParam(eq.Value)
	if err != nil {
		return "", nil, fmt.Errorf("%s: %w", eq.Field, err)
	}
	return column(eq.Field) + " = ?", []any{param}, nil
}

func (c *SQLCompiler) compileAnd(and queryir.And) (string, []any, error) {
	var parts []string
	var params []any
	for _, sub := range and.Predicates {
		sql, subParams, err := c.compilePredicate(sub)
		if err != nil {
			return "", nil, err
		}
		if sql == "" {
			continue
		}
		parts = append(parts, sql)
		params = append(params, subParams...)
	}
	return strings.Join(parts, " AND "), params, nil
}

func (c *SQLCompiler) binaryCollation() string {
	if c.Dialect == MySQL {
		return " COLLATE utf8mb4_bin"
	}
	return " COLLATE BINARY"
}

// yearExpr extracts the year of a date column, or returns a year column as is.
func (c *SQLCompiler) yearExpr(f queryir.Field) string {
	col := column(f)
	if f.Kind != queryir.KindDate {
		return col
	}
	if c.Dialect == MySQL {
		return "YEAR(" + col + ")"
	}
	return "CAST(strftime('%Y', " + col + ") AS INTEGER)"
}

// orderBy renders requested orders followed by the a.id tiebreaker.
// Text orders carry a binary collation so the order does not depend on the
// column or connection collation.
func (c *SQLCompiler) orderBy(q queryir.ActorQuery) (string, error) {
	var parts []string
	for _, o := range q.OrderBy {
		if o.Field.Entity != queryir.EntityActor {
			return "", fmt.Errorf("order by %s: only actor fields can be ordered", o.Field)
		}
		part := column(o.Field)
		if o.Field.Kind == queryir.KindText {
			part += c.binaryCollation()
		}
		if o.Desc {
			part += " DESC"
		} else {
			part += " ASC"
		}
		parts = append(parts, part)
	}
	parts = append(parts, "a.id ASC")
	return strings.Join(parts, ", "), nil
}

// column returns the aliased column for a field. Field names come from the
// fixed queryir field set, never from user text.
func column(f queryir.Field) string {
	return aliases[f.Entity] + "." + f.Column
}

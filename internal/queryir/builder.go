package queryir

import "github.com/roach88/reelcheck/internal/ir"

// Builder assembles an ActorQuery.
//
//	q := queryir.Actors().
//	    Distinct().
//	    Where(queryir.Eq(queryir.CountryName, "France"), queryir.Year(queryir.FilmYear, 2017)).
//	    Build()
type Builder struct {
	q     ActorQuery
	preds []Predicate
}

// Actors starts a query over all actors.
func Actors() *Builder {
	return &Builder{}
}

// Distinct deduplicates results by actor.
func (b *Builder) Distinct() *Builder {
	b.q.Distinct = true
	return b
}

// Where adds predicates; all predicates must hold.
func (b *Builder) Where(preds ...Predicate) *Builder {
	b.preds = append(b.preds, preds...)
	return b
}

// OrderBy appends an ascending order.
func (b *Builder) OrderBy(f Field) *Builder {
	b.q.OrderBy = append(b.q.OrderBy, Order{Field: f})
	return b
}

// OrderByDesc appends a descending order.
func (b *Builder) OrderByDesc(f Field) *Builder {
	b.q.OrderBy = append(b.q.OrderBy, Order{Field: f, Desc: true})
	return b
}

// Build returns the query. A single predicate is used as is; several are
// wrapped in an And.
func (b *Builder) Build() ActorQuery {
	q := b.q
	q.OrderBy = append([]Order(nil), b.q.OrderBy...)
	switch len(b.preds) {
	case 0:
		q.Filter = nil
	case 1:
		q.Filter = b.preds[0]
	default:
		q.Filter = All(b.preds...)
	}
	return q
}

// Eq builds an Equals predicate from a Go string, int or bool.
// Other types produce an IRNull value, which Validate rejects.
func Eq(f Field, value any) Equals {
	v, err := ir.FromAny(value)
	if err != nil {
		v = ir.IRNull{}
	}
	return Equals{Field: f, Value: v}
}

// Year builds a YearEquals predicate.
func Year(f Field, year int64) YearEquals {
	return YearEquals{Field: f, Year: year}
}

// YearRange builds an inclusive YearBetween predicate.
func YearRange(f Field, from, to int64) YearBetween {
	return YearBetween{Field: f, From: from, To: to}
}

// All builds a conjunction.
func All(preds ...Predicate) And {
	return And{Predicates: append([]Predicate(nil), preds...)}
}

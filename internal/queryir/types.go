package queryir

import (
	"fmt"
	"strings"

	"github.com/roach88/reelcheck/internal/ir"
)

// Entity names a table of the movie catalog.
type Entity string

const (
	EntityActor    Entity = "actor"
	EntityRole     Entity = "role"
	EntityFilm     Entity = "film"
	EntityCountry  Entity = "country"
	EntityDirector Entity = "director"
)

// Kind is the storage kind of a field, which decides the predicates it accepts.
type Kind int

const (
	// KindText fields compare with Equals against strings.
	KindText Kind = iota + 1
	// KindDate fields hold calendar dates; YearEquals extracts their year.
	KindDate
	// KindYear fields hold a bare year as an integer.
	KindYear
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindDate:
		return "date"
	case KindYear:
		return "year"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Field addresses one column of the catalog.
type Field struct {
	Entity Entity
	Column string
	Kind   Kind
}

// String returns the dotted form used in scenario files, e.g. "role.name".
func (f Field) String() string {
	return string(f.Entity) + "." + f.Column
}

// IsZero reports whether f is the zero Field.
func (f Field) IsZero() bool {
	return f == Field{}
}

// Catalog fields addressable from a query.
var (
	ActorIdentity    = Field{Entity: EntityActor, Column: "identity", Kind: KindText}
	ActorBirthdate   = Field{Entity: EntityActor, Column: "birthdate", Kind: KindDate}
	RoleName         = Field{Entity: EntityRole, Column: "name", Kind: KindText}
	FilmTitle        = Field{Entity: EntityFilm, Column: "title", Kind: KindText}
	FilmYear         = Field{Entity: EntityFilm, Column: "release_year", Kind: KindYear}
	CountryName      = Field{Entity: EntityCountry, Column: "name", Kind: KindText}
	DirectorIdentity = Field{Entity: EntityDirector, Column: "identity", Kind: KindText}
)

var fieldsByName = map[string]Field{}

func init() {
	for _, f := range Fields() {
		fieldsByName[f.String()] = f
	}
}

// Fields returns every addressable field in a stable order.
func Fields() []Field {
	return []Field{
		ActorIdentity,
		ActorBirthdate,
		RoleName,
		FilmTitle,
		FilmYear,
		CountryName,
		DirectorIdentity,
	}
}

// LookupField resolves a dotted field name. Matching is case-insensitive.
func LookupField(name string) (Field, bool) {
	f, ok := fieldsByName[strings.ToLower(strings.TrimSpace(name))]
	return f, ok
}

// Predicate is a filter condition over catalog fields.
//
// This is a sealed interface; only types in this package implement it.
type Predicate interface {
	predicateNode()
}

// Equals matches rows whose field equals a literal.
//
//	role.name = 'Harley QUINN'
type Equals struct {
	Field Field
	Value ir.IRValue
}

func (Equals) predicateNode() {}

// YearEquals matches rows whose field falls in the given year. On a date
// field the year is extracted; on a year field the value is compared as is.
//
//	YEAR(actor.birthdate) = 1985
type YearEquals struct {
	Field Field
	Year  int64
}

func (YearEquals) predicateNode() {}

// YearBetween matches years in the closed range [From, To].
//
//	film.release_year BETWEEN 2010 AND 2020
type YearBetween struct {
	Field Field
	From  int64
	To    int64
}

func (YearBetween) predicateNode() {}

// And is a conjunction. An empty And is always true.
type And struct {
	Predicates []Predicate
}

func (And) predicateNode() {}

// Order sorts results by an actor field.
type Order struct {
	Field Field
	Desc  bool
}

// String renders the order the way scenario files spell it.
func (o Order) String() string {
	if o.Desc {
		return "-" + o.Field.String()
	}
	return o.Field.String()
}

// ActorQuery selects actors, optionally filtered, deduplicated and ordered.
//
// Semantics:
//
//	SELECT [DISTINCT] actor.* FROM actor <joins> WHERE <filter> ORDER BY <order>
//
// Distinct deduplicates by actor entity, so two actors that share an identity
// string both appear.
type ActorQuery struct {
	Distinct bool
	Filter   Predicate // nil = all actors
	OrderBy  []Order
}

// Ordered reports whether the query requests an explicit order.
func (q ActorQuery) Ordered() bool {
	return len(q.OrderBy) > 0
}

// IdentityOrder reports whether the first requested order is on identity,
// and if so whether it is descending.
func (q ActorQuery) IdentityOrder() (desc, ok bool) {
	if !q.Ordered() || q.OrderBy[0].Field != ActorIdentity {
		return false, false
	}
	return q.OrderBy[0].Desc, true
}

// joinOrder is the fixed order in which related tables are joined.
var joinOrder = []Entity{EntityRole, EntityFilm, EntityCountry, EntityDirector}

// joinPrereqs lists the tables that must already be joined to reach an entity.
var joinPrereqs = map[Entity][]Entity{
	EntityRole:     {EntityRole},
	EntityFilm:     {EntityRole, EntityFilm},
	EntityCountry:  {EntityRole, EntityFilm, EntityCountry},
	EntityDirector: {EntityRole, EntityFilm, EntityDirector},
}

// RequiredJoins returns the related tables q must join, in join order.
// Queries touching only actor fields return nil.
func RequiredJoins(q ActorQuery) []Entity {
	need := map[Entity]bool{}
	add := func(f Field) {
		for _, e := range joinPrereqs[f.Entity] {
			need[e] = true
		}
	}
	walkFields(q.Filter, add)
	for _, o := range q.OrderBy {
		add(o.Field)
	}

	var joins []Entity
	for _, e := range joinOrder {
		if need[e] {
			joins = append(joins, e)
		}
	}
	return joins
}

// walkFields calls fn for every field referenced by p.
func walkFields(p Predicate, fn func(Field)) {
	if nilPredicate(p) {
		return
	}
	switch pred := p.(type) {
	case Equals:
		fn(pred.Field)
	case *Equals:
		fn(pred.Field)
	case YearEquals:
		fn(pred.Field)
	case *YearEquals:
		fn(pred.Field)
	case YearBetween:
		fn(pred.Field)
	case *YearBetween:
		fn(pred.Field)
	case And:
		for _, sub := range pred.Predicates {
			walkFields(sub, fn)
		}
	case *And:
		for _, sub := range pred.Predicates {
			walkFields(sub, fn)
		}
	}
}

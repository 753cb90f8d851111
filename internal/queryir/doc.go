// Package queryir provides the typed query representation for actor lookups
// against the movie catalog.
//
// A query is data, not text. Scenarios build an ActorQuery from typed fields
// and sealed predicates; backends (querysql) compile it to parameterized SQL.
// Nothing in this package produces or parses query strings, so a malformed
// predicate is caught by Validate before any database is touched.
//
// ARCHITECTURE:
//
//	[scenario YAML/CUE] → [ActorQuery] → [querysql] → SQLite / MySQL
//
// DATA MODEL:
//
// Every query returns actors. Predicates may reach through the relations
//
//	actor 1-N role N-1 film N-N country
//	                   film N-1 director
//
// and the joins needed to reach a field are derived from the fields a query
// references (see RequiredJoins). Joins through role and country can repeat
// an actor, so queries reaching past the actor table are usually Distinct.
//
// SEALED INTERFACES:
//
// Predicate is sealed with a marker method, so backends can switch over the
// complete set of predicate types:
//
//	switch p := pred.(type) {
//	case Equals:
//	case YearEquals:
//	case YearBetween:
//	case And:
//	}
package queryir

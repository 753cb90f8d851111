// Package harness runs query scenarios against the movie catalog.
//
// A scenario pairs one actor query with its expected result: an exact row
// count and, optionally, the identity expected at given positions. Scenarios
// are held in a Registry and come either from Builtin or from scenario files.
//
// # Scenario Format
//
// Scenario files are YAML (or CUE, see LoadCUEScenario) with this structure:
//
//	name: actors_in_french_films_of_2017
//	description: "Actors in French films released in 2017"
//	query:
//	  distinct: true
//	  where:
//	    - field: country.name
//	      equals: "France"
//	    - field: film.release_year
//	      year: 2017
//	  order_by: [actor.identity]
//	expect:
//	  count: 24
//	  rows:
//	    - at: 0
//	      identity: "Performer 0015"
//
// Conditions in where are combined with AND. Each condition names a field
// and exactly one of equals, year or year_between. An order_by entry prefixed
// with "-" sorts descending.
//
// # Execution
//
// Run acquires one catalog session for the whole batch and releases it on
// every exit path. Each scenario moves from NotRun to Running to Passed or
// Failed. A failing scenario is recorded in the Report and the batch goes on;
// only a connection failure aborts the run.
package harness

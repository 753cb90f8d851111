package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/reelcheck/internal/catalog"
	"github.com/roach88/reelcheck/internal/queryir"
)

// EvaluateAssertions checks actors against the scenario's expectations and
// the query's distinct and order guarantees. Every check runs; all failures
// are returned as *AssertionError.
func EvaluateAssertions(s *Scenario, q queryir.ActorQuery, actors []catalog.Actor) []error {
	identities := identitiesOf(actors)

	var errs []error
	add := func(err *AssertionError) {
		if err != nil {
			err.Identities = identities
			errs = append(errs, err)
		}
	}

	add(assertCount(s.ExpectedCount(), len(actors)))
	for _, row := range s.Expect.Rows {
		add(assertRow(row, identities))
	}
	if q.Distinct {
		add(assertDistinct(actors))
	}
	if desc, ok := q.IdentityOrder(); ok {
		add(assertOrdered(identities, desc))
	}
	return errs
}

// assertCount checks the exact result size.
func assertCount(expected, actual int) *AssertionError {
	if expected == actual {
		return nil
	}
	return &AssertionError{
		Type:     AssertCount,
		Expected: fmt.Sprintf("%d rows", expected),
		Actual:   fmt.Sprintf("%d rows", actual),
	}
}

// assertRow checks the identity at one position.
func assertRow(row RowExpectation, identities []string) *AssertionError {
	if row.At >= len(identities) {
		return &AssertionError{
			Type:     AssertRow,
			Expected: fmt.Sprintf("row %d = %q", row.At, row.Identity),
			Actual:   fmt.Sprintf("no row %d (%d rows)", row.At, len(identities)),
		}
	}
	if got := identities[row.At]; got != row.Identity {
		return &AssertionError{
			Type:     AssertRow,
			Expected: fmt.Sprintf("row %d = %q", row.At, row.Identity),
			Actual:   fmt.Sprintf("row %d = %q", row.At, got),
		}
	}
	return nil
}

// assertDistinct checks that no actor entity appears twice. Actors sharing
// an identity string are different entities and may both appear.
func assertDistinct(actors []catalog.Actor) *AssertionError {
	seen := make(map[int64]int, len(actors))
	for i, a := range actors {
		if first, ok := seen[a.ID]; ok {
			return &AssertionError{
				Type:     AssertDistinct,
				Expected: "each actor at most once",
				Actual:   fmt.Sprintf("actor %d (%q) at rows %d and %d", a.ID, a.Identity, first, i),
			}
		}
		seen[a.ID] = i
	}
	return nil
}

// assertOrdered checks identities are sorted by byte order, ascending or
// descending.
func assertOrdered(identities []string, desc bool) *AssertionError {
	direction := "non-decreasing"
	if desc {
		direction = "non-increasing"
	}
	for i := 1; i < len(identities); i++ {
		cmp := strings.Compare(identities[i-1], identities[i])
		if (!desc && cmp > 0) || (desc && cmp < 0) {
			return &AssertionError{
				Type:     AssertOrdered,
				Expected: direction + " identities",
				Actual:   fmt.Sprintf("row %d %q before row %d %q", i-1, identities[i-1], i, identities[i]),
			}
		}
	}
	return nil
}

func identitiesOf(actors []catalog.Actor) []string {
	out := make([]string, len(actors))
	for i, a := range actors {
		out[i] = a.Identity
	}
	return out
}

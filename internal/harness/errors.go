package harness

import (
	"errors"
	"fmt"
	"strings"
)

// Query error stages.
const (
	StageBuild    = "build"    // scenario fields could not be turned into a query
	StageValidate = "validate" // the query failed queryir.Validate
	StageExecute  = "execute"  // compiling or running the query failed
)

// QueryError reports a scenario whose query could not be built or run.
// It fails the scenario but not the batch.
type QueryError struct {
	Scenario string
	Stage    string
	Err      error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("scenario %s: %s: %v", e.Scenario, e.Stage, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Assertion types.
const (
	AssertCount    = "count"    // row count differs
	AssertRow      = "row"      // identity at a position differs
	AssertDistinct = "distinct" // an actor appears twice in a distinct result
	AssertOrdered  = "ordered"  // identities are out of order
	AssertStable   = "stable"   // re-running the query changed the result
	AssertBaseline = "baseline" // result differs from the recorded golden baseline
)

// maxListedIdentities bounds the identities printed with an AssertionError.
const maxListedIdentities = 10

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type       string   // Assertion type for categorization
	Expected   string   // Human-readable expected outcome
	Actual     string   // Human-readable actual outcome
	Identities []string // Returned identities, in result order
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Identities) > 0 {
		fmt.Fprintf(&buf, "\nReturned identities:\n")
		for i, id := range e.Identities {
			if i == maxListedIdentities {
				fmt.Fprintf(&buf, "  ... %d more\n", len(e.Identities)-maxListedIdentities)
				break
			}
			fmt.Fprintf(&buf, "  [%d] %s\n", i, id)
		}
	}

	return buf.String()
}

// IsQueryError returns true if err is or wraps a *QueryError.
func IsQueryError(err error) bool {
	var qe *QueryError
	return errors.As(err, &qe)
}

// IsAssertionError returns true if err is or wraps an *AssertionError.
func IsAssertionError(err error) bool {
	var ae *AssertionError
	return errors.As(err, &ae)
}

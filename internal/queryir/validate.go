package queryir

import (
	"fmt"
	"strings"
	"time"

	"github.com/roach88/reelcheck/internal/ir"
)

// ValidationResult is the outcome of Validate.
//
// Errors make a query unexecutable. Warnings describe queries that will run
// but whose results are suspicious, such as a conjunction that can never hold.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether the query has no errors.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// Err joins the errors into a single error, or returns nil.
func (r ValidationResult) Err() error {
	if r.Valid() {
		return nil
	}
	return fmt.Errorf("invalid query: %s", strings.Join(r.Errors, "; "))
}

// Validate checks a query against the catalog data model.
//
// Errors:
//   - unknown or zero fields
//   - missing or null literals, or literals of the wrong kind for the field
//   - year predicates on text fields, inverted year ranges
//   - ordering by a non-actor field
//
// Warnings:
//   - two Equals on the same field with different literals in one conjunction
//     (no single-valued column can satisfy both)
//   - joins through role or country without Distinct
//
// Validate is a pure function.
func Validate(q ActorQuery) ValidationResult {
	v := &validator{}
	v.predicate(q.Filter)
	v.conjunction(q.Filter)

	for _, o := range q.OrderBy {
		if !v.knownField(o.Field, "order") {
			continue
		}
		if o.Field.Entity != EntityActor {
			v.errorf("order by %s: only actor fields can be ordered", o.Field)
		}
	}

	if !q.Distinct {
		for _, e := range RequiredJoins(q) {
			if e == EntityRole || e == EntityCountry {
				v.warnf("join through %s without distinct may repeat actors", e)
				break
			}
		}
	}

	return ValidationResult{Errors: v.errors, Warnings: v.warnings}
}

type validator struct {
	errors   []string
	warnings []string
}

func (v *validator) errorf(format string, args ...any) {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
}

func (v *validator) warnf(format string, args ...any) {
	v.warnings = append(v.warnings, fmt.Sprintf(format, args...))
}

func (v *validator) knownField(f Field, where string) bool {
	if f.IsZero() {
		v.errorf("%s: field is required", where)
		return false
	}
	if known, ok := fieldsByName[f.String()]; !ok || known != f {
		v.errorf("%s: unknown field %s", where, f)
		return false
	}
	return true
}

func (v *validator) predicate(p Predicate) {
	if nilPredicate(p) {
		v.errorf("unsupported predicate: nil %T", p)
		return
	}
	switch pred := p.(type) {
	case nil:
	case Equals:
		v.equals(pred)
	case *Equals:
		v.equals(*pred)
	case YearEquals:
		v.yearField(pred.Field, "year")
	case *YearEquals:
		v.yearField(pred.Field, "year")
	case YearBetween:
		v.between(pred)
	case *YearBetween:
		v.between(*pred)
	case And:
		for _, sub := range pred.Predicates {
			v.predicate(sub)
		}
	case *And:
		for _, sub := range pred.Predicates {
			v.predicate(sub)
		}
	default:
		v.errorf("unsupported predicate type %T", p)
	}
}

// nilPredicate reports whether p is a typed nil pointer predicate.
func nilPredicate(p Predicate) bool {
	switch pred := p.(type) {
	case *Equals:
		return pred == nil
	case *YearEquals:
		return pred == nil
	case *YearBetween:
		return pred == nil
	case *And:
		return pred == nil
	}
	return false
}

func (v *validator) equals(eq Equals) {
	where := "equals"
	if !v.knownField(eq.Field, where) {
		return
	}
	switch val := eq.Value.(type) {
	case nil, ir.IRNull:
		v.errorf("%s %s: value is required", where, eq.Field)
	case ir.IRString:
		switch eq.Field.Kind {
		case KindYear:
			v.errorf("%s %s: expected an integer year, got string %q", where, eq.Field, string(val))
		case KindDate:
			if _, err := time.Parse(time.DateOnly, string(val)); err != nil {
				v.errorf("%s %s: expected an ISO date (YYYY-MM-DD), got %q; use year to match a year", where, eq.Field, string(val))
			}
		}
	case ir.IRInt:
		switch eq.Field.Kind {
		case KindText:
			v.errorf("%s %s: expected a string, got int %d", where, eq.Field, int64(val))
		case KindDate:
			v.errorf("%s %s: expected an ISO date (YYYY-MM-DD), got int %d; use year to match a year", where, eq.Field, int64(val))
		}
	default:
		v.errorf("%s %s: unsupported literal of type %s", where, eq.Field, ir.KindName(val))
	}
}

func (v *validator) yearField(f Field, where string) bool {
	if !v.knownField(f, where) {
		return false
	}
	if f.Kind == KindText {
		v.errorf("%s %s: year predicates need a date or year field", where, f)
		return false
	}
	return true
}

func (v *validator) between(b YearBetween) {
	if !v.yearField(b.Field, "year_between") {
		return
	}
	if b.From > b.To {
		v.errorf("year_between %s: range %d..%d is inverted", b.Field, b.From, b.To)
	}
}

// conjunction flags fields pinned to two different literals by the same
// top-level conjunction.
func (v *validator) conjunction(p Predicate) {
	pinned := map[Field]ir.IRValue{}
	for _, leaf := range flatten(p) {
		eq, ok := leaf.(Equals)
		if !ok || !scalar(eq.Value) {
			continue
		}
		if prev, seen := pinned[eq.Field]; seen {
			if prev != eq.Value {
				v.warnf("unsatisfiable conjunction: %s cannot equal both %s and %s",
					eq.Field, literal(prev), literal(eq.Value))
			}
			continue
		}
		pinned[eq.Field] = eq.Value
	}
}

// flatten returns the leaves of nested conjunctions, dereferencing pointers.
func flatten(p Predicate) []Predicate {
	if nilPredicate(p) {
		return nil
	}
	switch pred := p.(type) {
	case nil:
		return nil
	case And:
		var out []Predicate
		for _, sub := range pred.Predicates {
			out = append(out, flatten(sub)...)
		}
		return out
	case *And:
		return flatten(*pred)
	case *Equals:
		return []Predicate{*pred}
	case *YearEquals:
		return []Predicate{*pred}
	case *YearBetween:
		return []Predicate{*pred}
	default:
		return []Predicate{p}
	}
}

func scalar(v ir.IRValue) bool {
	switch v.(type) {
	case ir.IRString, ir.IRInt, ir.IRBool:
		return true
	default:
		return false
	}
}

func literal(v ir.IRValue) string {
	switch val := v.(type) {
	case ir.IRString:
		return fmt.Sprintf("%q", string(val))
	case ir.IRInt:
		return fmt.Sprintf("%d", int64(val))
	default:
		return fmt.Sprintf("%v", val)
	}
}

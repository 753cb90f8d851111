package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/reelcheck/internal/ir"
	"github.com/roach88/reelcheck/internal/queryir"
)

// validName matches scenario names: lowercase words joined by underscores.
var validName = regexp.MustCompile(`^[a-z0-9_]+$`)

// Scenario pairs one actor query with its expected result.
//
// Struct tags serve both decoders: yaml for YAML files, json for CUE.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name" json:"name"`

	// Description explains what this scenario checks.
	Description string `yaml:"description" json:"description"`

	// Note is free text shown with the outcome, such as a known defect in
	// the query the scenario was derived from.
	Note string `yaml:"note,omitempty" json:"note,omitempty"`

	Query  QuerySpec   `yaml:"query" json:"query"`
	Expect Expectation `yaml:"expect" json:"expect"`

	// Source is the file the scenario was loaded from; empty for built-ins.
	Source string `yaml:"-" json:"-"`
}

// QuerySpec is the file form of a queryir.ActorQuery.
type QuerySpec struct {
	Distinct bool        `yaml:"distinct,omitempty" json:"distinct,omitempty"`
	Where    []Condition `yaml:"where,omitempty" json:"where,omitempty"`

	// OrderBy lists actor fields; a "-" prefix sorts descending.
	OrderBy []string `yaml:"order_by,omitempty" json:"order_by,omitempty"`
}

// Condition is one conjunct of a where clause. Exactly one of Equals, Year
// and YearBetween is set.
type Condition struct {
	Field       string  `yaml:"field" json:"field"`
	Equals      any     `yaml:"equals,omitempty" json:"equals,omitempty"`
	Year        *int64  `yaml:"year,omitempty" json:"year,omitempty"`
	YearBetween []int64 `yaml:"year_between,omitempty" json:"year_between,omitempty"`
}

// Expectation is what a scenario must return.
type Expectation struct {
	// Count is the exact number of rows. Required; zero is valid.
	Count *int `yaml:"count" json:"count"`

	// Rows pins identities to positions in the result.
	Rows []RowExpectation `yaml:"rows,omitempty" json:"rows,omitempty"`
}

// RowExpectation expects Identity at zero-based position At.
type RowExpectation struct {
	At       int    `yaml:"at" json:"at"`
	Identity string `yaml:"identity" json:"identity"`
}

// ExpectedCount returns the expected row count, or -1 if unset.
func (s *Scenario) ExpectedCount() int {
	if s.Expect.Count == nil {
		return -1
	}
	return *s.Expect.Count
}

// LoadScenario reads and parses a scenario file. Files ending in .cue are
// loaded with LoadCUEScenario; everything else is parsed as YAML.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return LoadCUEScenario(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	s, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	s.Source = path
	return s, nil
}

// ParseScenario parses and validates a YAML scenario document.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "order:" vs "order_by:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// Validate checks that required fields are present and well formed.
// It does not resolve field names; Query does that.
func (s *Scenario) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !validName.MatchString(s.Name) {
		return fmt.Errorf("name %q must match %s", s.Name, validName)
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	for i, c := range s.Query.Where {
		if c.Field == "" {
			return fmt.Errorf("query.where[%d]: field is required", i)
		}
		set := 0
		if c.Equals != nil {
			set++
		}
		if c.Year != nil {
			set++
		}
		if c.YearBetween != nil {
			set++
			if len(c.YearBetween) != 2 {
				return fmt.Errorf("query.where[%d]: year_between needs exactly two years", i)
			}
		}
		if set != 1 {
			return fmt.Errorf("query.where[%d]: exactly one of equals, year or year_between is required", i)
		}
	}

	for i, o := range s.Query.OrderBy {
		if strings.TrimPrefix(o, "-") == "" {
			return fmt.Errorf("query.order_by[%d]: field is required", i)
		}
	}

	if s.Expect.Count == nil {
		return fmt.Errorf("expect.count is required")
	}
	count := *s.Expect.Count
	if count < 0 {
		return fmt.Errorf("expect.count must be non-negative")
	}
	for i, r := range s.Expect.Rows {
		if r.At < 0 || r.At >= count {
			return fmt.Errorf("expect.rows[%d]: at %d is outside the expected %d rows", i, r.At, count)
		}
		if r.Identity == "" {
			return fmt.Errorf("expect.rows[%d]: identity is required", i)
		}
	}

	return nil
}

// ActorQuery builds the typed query described by the scenario.
func (s *Scenario) ActorQuery() (queryir.ActorQuery, error) {
	b := queryir.Actors()
	if s.Query.Distinct {
		b.Distinct()
	}

	for i, c := range s.Query.Where {
		f, ok := queryir.LookupField(c.Field)
		if !ok {
			return queryir.ActorQuery{}, fmt.Errorf("where[%d]: unknown field %q", i, c.Field)
		}
		switch {
		case c.Year != nil:
			b.Where(queryir.Year(f, *c.Year))
		case len(c.YearBetween) == 2:
			b.Where(queryir.YearRange(f, c.YearBetween[0], c.YearBetween[1]))
		default:
			v, err := ir.FromAny(c.Equals)
			if err != nil {
				return queryir.ActorQuery{}, fmt.Errorf("where[%d]: %w", i, err)
			}
			b.Where(queryir.Equals{Field: f, Value: v})
		}
	}

	for i, o := range s.Query.OrderBy {
		name, desc := strings.CutPrefix(o, "-")
		f, ok := queryir.LookupField(name)
		if !ok {
			return queryir.ActorQuery{}, fmt.Errorf("order_by[%d]: unknown field %q", i, name)
		}
		if desc {
			b.OrderByDesc(f)
		} else {
			b.OrderBy(f)
		}
	}

	return b.Build(), nil
}

// Definition returns the scenario as a canonical IR object. Baselines record
// its digest so a changed scenario can be told apart from a changed catalog.
func (s *Scenario) Definition() (ir.IRObject, error) {
	where := make(ir.IRArray, 0, len(s.Query.Where))
	for i, c := range s.Query.Where {
		cond := ir.IRObject{"field": ir.IRString(c.Field)}
		switch {
		case c.Year != nil:
			cond["year"] = ir.IRInt(*c.Year)
		case c.YearBetween != nil:
			between := make(ir.IRArray, len(c.YearBetween))
			for j, y := range c.YearBetween {
				between[j] = ir.IRInt(y)
			}
			cond["year_between"] = between
		default:
			v, err := ir.FromAny(c.Equals)
			if err != nil {
				return nil, fmt.Errorf("where[%d]: %w", i, err)
			}
			cond["equals"] = v
		}
		where = append(where, cond)
	}

	orderBy := make(ir.IRArray, len(s.Query.OrderBy))
	for i, o := range s.Query.OrderBy {
		orderBy[i] = ir.IRString(o)
	}

	rows := make(ir.IRArray, len(s.Expect.Rows))
	for i, r := range s.Expect.Rows {
		rows[i] = ir.IRObject{"at": ir.IRInt(int64(r.At)), "identity": ir.IRString(r.Identity)}
	}

	return ir.IRObject{
		"name": ir.IRString(s.Name),
		"query": ir.IRObject{
			"distinct": ir.IRBool(s.Query.Distinct),
			"where":    where,
			"order_by": orderBy,
		},
		"expect": ir.IRObject{
			"count": ir.IRInt(int64(s.ExpectedCount())),
			"rows":  rows,
		},
	}, nil
}

// Digest returns the scenario definition digest.
func (s *Scenario) Digest() (string, error) {
	def, err := s.Definition()
	if err != nil {
		return "", err
	}
	return ir.ScenarioDigest(def)
}

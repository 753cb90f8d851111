package harness

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/reelcheck/internal/ir"
)

// Baseline is the recorded result of a scenario.
// All fields use canonical JSON serialization for deterministic comparison.
type Baseline struct {
	ScenarioName string `json:"scenario_name"`
	Definition   string `json:"definition"` // Scenario.Digest
	Count        int    `json:"count"`
	Digest       string `json:"digest"` // result digest
}

// NewBaseline records a scenario outcome.
func NewBaseline(s *Scenario, o *Outcome) (*Baseline, error) {
	def, err := s.Digest()
	if err != nil {
		return nil, err
	}
	return &Baseline{
		ScenarioName: s.Name,
		Definition:   def,
		Count:        o.Count,
		Digest:       o.Digest,
	}, nil
}

// MarshalCanonical encodes the baseline as canonical JSON.
// ir.MarshalCanonical only handles IR types and primitives, hence the map.
func (b *Baseline) MarshalCanonical() ([]byte, error) {
	return ir.MarshalCanonical(map[string]any{
		"scenario_name": b.ScenarioName,
		"definition":    b.Definition,
		"count":         int64(b.Count),
		"digest":        b.Digest,
	})
}

// BaselinePath returns the baseline file of a scenario under dir.
func BaselinePath(dir, name string) string {
	return filepath.Join(dir, name+".golden")
}

// WriteBaseline records the outcome of s under dir.
func WriteBaseline(dir string, s *Scenario, o *Outcome) error {
	b, err := NewBaseline(s, o)
	if err != nil {
		return err
	}
	data, err := b.MarshalCanonical()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create golden dir: %w", err)
	}
	return os.WriteFile(BaselinePath(dir, s.Name), data, 0o644)
}

// CheckBaseline compares the outcome of s with its recorded baseline and
// returns an *AssertionError on mismatch or when no baseline exists.
func CheckBaseline(dir string, s *Scenario, o *Outcome) error {
	path := BaselinePath(dir, s.Name)
	want, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &AssertionError{
			Type:     AssertBaseline,
			Expected: "baseline " + path,
			Actual:   "no baseline recorded (run with --update)",
		}
	}
	if err != nil {
		return fmt.Errorf("read baseline: %w", err)
	}

	b, err := NewBaseline(s, o)
	if err != nil {
		return err
	}
	got, err := b.MarshalCanonical()
	if err != nil {
		return err
	}
	if !bytes.Equal(bytes.TrimSpace(want), got) {
		return &AssertionError{
			Type:       AssertBaseline,
			Expected:   string(bytes.TrimSpace(want)),
			Actual:     string(got),
			Identities: o.Identities,
		}
	}
	return nil
}

// ApplyBaselines checks (or with update, writes) the baseline of every
// passed outcome in report. Scenarios that fail the check are marked Failed
// and the report is recounted.
func ApplyBaselines(dir string, update bool, scenarios []*Scenario, report *Report) error {
	defer report.tally()
	for i, s := range scenarios {
		o := report.Outcomes[i]
		if !o.Passed() {
			continue
		}
		if update {
			if err := WriteBaseline(dir, s, o); err != nil {
				return fmt.Errorf("write baseline %s: %w", s.Name, err)
			}
			continue
		}
		err := CheckBaseline(dir, s, o)
		switch {
		case err == nil:
		case IsAssertionError(err):
			o.addError(err)
			o.finish()
		default:
			return err
		}
	}
	return nil
}

// AssertGolden compares the outcome's baseline against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func AssertGolden(t *testing.T, s *Scenario, o *Outcome) {
	t.Helper()

	b, err := NewBaseline(s, o)
	if err != nil {
		t.Fatalf("baseline %s: %v", s.Name, err)
	}
	data, err := b.MarshalCanonical()
	if err != nil {
		t.Fatalf("marshal baseline %s: %v", s.Name, err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, s.Name, data)
}

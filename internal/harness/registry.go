package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Registry is an ordered collection of uniquely named scenarios.
type Registry struct {
	scenarios []*Scenario
	byName    map[string]*Scenario
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Scenario)}
}

// Add validates s and appends it. Adding a second scenario with the same
// name is an error.
func (r *Registry) Add(s *Scenario) error {
	if s == nil {
		return fmt.Errorf("scenario is nil")
	}
	if err := s.Validate(); err != nil {
		return fmt.Errorf("scenario %q: %w", s.Name, err)
	}
	if prev, ok := r.byName[s.Name]; ok {
		return fmt.Errorf("duplicate scenario %q (already defined%s)", s.Name, sourceSuffix(prev))
	}
	r.scenarios = append(r.scenarios, s)
	r.byName[s.Name] = s
	return nil
}

// Scenarios returns the scenarios in insertion order.
func (r *Registry) Scenarios() []*Scenario {
	return append([]*Scenario(nil), r.scenarios...)
}

// Lookup returns the scenario with the given name.
func (r *Registry) Lookup(name string) (*Scenario, bool) {
	s, ok := r.byName[name]
	return s, ok
}

// Filter returns the scenarios whose name matches a filepath.Match pattern,
// in insertion order. An empty pattern matches everything.
func (r *Registry) Filter(pattern string) ([]*Scenario, error) {
	if pattern == "" {
		return r.Scenarios(), nil
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", pattern, err)
	}
	var out []*Scenario
	for _, s := range r.scenarios {
		if ok, _ := filepath.Match(pattern, s.Name); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// Len returns the number of scenarios.
func (r *Registry) Len() int {
	return len(r.scenarios)
}

// LoadDir loads every scenario file (*.yaml, *.yml, *.cue) under dir,
// in lexical path order.
func LoadDir(dir string) (*Registry, error) {
	files, err := FindScenarioFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}

	reg := NewRegistry()
	for _, path := range files {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		if err := reg.Add(s); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	return reg, nil
}

// FindScenarioFiles returns all scenario files under dir, sorted.
func FindScenarioFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("scenarios directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml", ".cue":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error scanning directory: %w", err)
	}

	sort.Strings(files)
	return files, nil
}

func sourceSuffix(s *Scenario) string {
	if s.Source == "" {
		return " as a built-in"
	}
	return " in " + s.Source
}

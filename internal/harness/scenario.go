package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario: a program to compile and
// the properties its emitted module must have.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden
	// file name when the scenario runs under RunWithGolden.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program is the built-in program to compile.
	Program string `yaml:"program"`

	// Optimize controls the rewrite passes. Defaults to true when
	// omitted, matching the command line default.
	Optimize *bool `yaml:"optimize,omitempty"`

	// Assertions validate the emitted module.
	// Supported types: wat_contains, wat_excludes, exports, func_count.
	Assertions []Assertion `yaml:"assertions"`
}

// Optimized reports whether the scenario wants the optimizer run.
func (s *Scenario) Optimized() bool {
	return s.Optimize == nil || *s.Optimize
}

// Assertion validates one property of the emitted module.
type Assertion struct {
	// Type selects the assertion:
	//   - "wat_contains": Text is a substring of the textual module
	//   - "wat_excludes": Text is absent from the textual module
	//   - "exports": every name in Names is an exported function
	//   - "func_count": the module declares exactly Count functions
	Type string `yaml:"type"`

	// Text is the fragment to search for (wat_contains, wat_excludes).
	Text string `yaml:"text,omitempty"`

	// Names are the expected export names (exports).
	Names []string `yaml:"names,omitempty"`

	// Count is the expected function count (func_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertWatContains = "wat_contains"
	AssertWatExcludes = "wat_excludes"
	AssertExports     = "exports"
	AssertFuncCount   = "func_count"
)

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so that typos fail loudly instead of silently skipping checks.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// LoadScenarioDir loads every *.yaml scenario under dir, sorted by file
// name so test ordering is stable.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(matches)

	scenarios := make([]*Scenario, 0, len(matches))
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks that required fields are present and that each
// assertion carries the fields its type needs.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if s.Program == "" {
		return fmt.Errorf("program is required")
	}
	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, a := range s.Assertions {
		switch a.Type {
		case AssertWatContains, AssertWatExcludes:
			if a.Text == "" {
				return fmt.Errorf("assertions[%d]: text is required for %s", i, a.Type)
			}
		case AssertExports:
			if len(a.Names) == 0 {
				return fmt.Errorf("assertions[%d]: names is required for %s", i, a.Type)
			}
		case AssertFuncCount:
			if a.Count <= 0 {
				return fmt.Errorf("assertions[%d]: count must be positive for %s", i, a.Type)
			}
		default:
			return fmt.Errorf("assertions[%d]: unknown type %q", i, a.Type)
		}
	}
	return nil
}

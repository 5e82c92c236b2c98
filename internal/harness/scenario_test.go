package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeScenario writes scenario YAML to a temp file and returns its path.
func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenario_ValidFile(t *testing.T) {
	path := writeScenario(t, `
name: test_scenario
description: "Arithmetic emits a folded constant"
program: arith
assertions:
  - type: wat_contains
    text: "(i32.const 42)"
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "test_scenario", scenario.Name)
	assert.Equal(t, "arith", scenario.Program)
	assert.True(t, scenario.Optimized())
	require.Len(t, scenario.Assertions, 1)
	assert.Equal(t, AssertWatContains, scenario.Assertions[0].Type)
	assert.Equal(t, "(i32.const 42)", scenario.Assertions[0].Text)
}

func TestLoadScenario_OptimizeFalse(t *testing.T) {
	path := writeScenario(t, `
name: raw
description: "Raw output keeps the operator tree"
program: arith
optimize: false
assertions:
  - type: wat_contains
    text: "i32.mul"
`)

	scenario, err := LoadScenario(path)
	require.NoError(t, err)
	assert.False(t, scenario.Optimized())
}

func TestLoadScenario_MissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestLoadScenario_UnknownField(t *testing.T) {
	// A typo in a field name must fail loudly, not silently skip checks.
	path := writeScenario(t, `
name: typo
description: "assertion instead of assertions"
program: arith
assertion:
  - type: wat_contains
    text: "x"
`)

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadScenario_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name: "no name",
			content: `
description: "d"
program: arith
assertions:
  - type: wat_contains
    text: "x"
`,
			want: "name is required",
		},
		{
			name: "no description",
			content: `
name: s
program: arith
assertions:
  - type: wat_contains
    text: "x"
`,
			want: "description is required",
		},
		{
			name: "no program",
			content: `
name: s
description: "d"
assertions:
  - type: wat_contains
    text: "x"
`,
			want: "program is required",
		},
		{
			name: "no assertions",
			content: `
name: s
description: "d"
program: arith
`,
			want: "assertions list is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenario_BadAssertions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name: "unknown type",
			content: `
name: s
description: "d"
program: arith
assertions:
  - type: trace_contains
`,
			want: `unknown type "trace_contains"`,
		},
		{
			name: "contains without text",
			content: `
name: s
description: "d"
program: arith
assertions:
  - type: wat_contains
`,
			want: "text is required",
		},
		{
			name: "exports without names",
			content: `
name: s
description: "d"
program: arith
assertions:
  - type: exports
`,
			want: "names is required",
		},
		{
			name: "func_count without count",
			content: `
name: s
description: "d"
program: arith
assertions:
  - type: func_count
`,
			want: "count must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadScenarioDir(t *testing.T) {
	scenarios, err := LoadScenarioDir("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	names := make(map[string]bool, len(scenarios))
	for _, s := range scenarios {
		names[s.Name] = true
	}
	for _, want := range []string{"arith", "arith_raw", "max", "fib"} {
		assert.True(t, names[want], "missing scenario %s", want)
	}
}

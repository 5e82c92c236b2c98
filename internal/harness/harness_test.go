package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sable/internal/emit"
)

func TestRun_AllScenarios(t *testing.T) {
	scenarios, err := LoadScenarioDir("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, scenario := range scenarios {
		t.Run(scenario.Name, func(t *testing.T) {
			result, err := Run(scenario)
			require.NoError(t, err)

			if !result.Pass {
				for _, msg := range result.Errors {
					t.Error(msg)
				}
			}
		})
	}
}

func TestRun_EmitsBinary(t *testing.T) {
	scenario := &Scenario{
		Name:        "binary",
		Description: "binary output carries the module preamble",
		Program:     "arith",
		Assertions:  []Assertion{{Type: AssertFuncCount, Count: 1}},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	require.True(t, result.Pass)

	require.GreaterOrEqual(t, len(result.Wasm), 8)
	assert.Equal(t, emit.Magic, result.Wasm[:4])
	assert.Equal(t, emit.Version, result.Wasm[4:8])
}

func TestRun_UnknownProgram(t *testing.T) {
	scenario := &Scenario{
		Name:        "missing",
		Description: "nonexistent program",
		Program:     "frobnicate",
		Assertions:  []Assertion{{Type: AssertFuncCount, Count: 1}},
	}

	_, err := Run(scenario)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown program "frobnicate"`)
}

func TestRun_FailedAssertionRecorded(t *testing.T) {
	scenario := &Scenario{
		Name:        "fails",
		Description: "deliberately wrong expectation",
		Program:     "arith",
		Assertions: []Assertion{
			{Type: AssertWatContains, Text: "f64.sqrt"},
			{Type: AssertFuncCount, Count: 1},
		},
	}

	result, err := Run(scenario)
	require.NoError(t, err)
	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "f64.sqrt")
}

func TestRun_OptimizeChangesOutput(t *testing.T) {
	off := false
	raw := &Scenario{
		Name:        "raw",
		Description: "unoptimized",
		Program:     "arith",
		Optimize:    &off,
		Assertions:  []Assertion{{Type: AssertWatContains, Text: "i32.mul"}},
	}
	folded := &Scenario{
		Name:        "folded",
		Description: "optimized",
		Program:     "arith",
		Assertions:  []Assertion{{Type: AssertWatExcludes, Text: "i32.mul"}},
	}

	rawResult, err := Run(raw)
	require.NoError(t, err)
	assert.True(t, rawResult.Pass)

	foldedResult, err := Run(folded)
	require.NoError(t, err)
	assert.True(t, foldedResult.Pass)

	assert.NotEqual(t, rawResult.Wat, foldedResult.Wat)
}

// Package harness provides scenario-driven conformance tests for the
// compilation pipeline.
//
// A scenario names a built-in program, compiles it end to end, and
// validates the emitted module. Scenarios live in YAML files:
//
//	name: arith
//	description: "Constant arithmetic folds to a single boxed literal"
//	program: arith
//	optimize: true
//	assertions:
//	  - type: wat_contains
//	    text: "(i32.const 42)"
//	  - type: wat_excludes
//	    text: "i32.mul"
//	  - type: exports
//	    names: [main]
//
// # Assertion Types
//
//   - wat_contains: the textual module contains the given fragment
//   - wat_excludes: the textual module does not contain the fragment
//   - exports: every named function is exported
//   - func_count: the module declares exactly N functions
//
// # Golden Comparison
//
// RunWithGolden additionally compares the full textual module against a
// golden file under testdata/golden/{name}.golden. Compilation is a pure
// fold over the program, so the output is byte-identical across runs. To
// regenerate golden files:
//
//	go test ./internal/harness -update
package harness

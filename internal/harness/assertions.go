package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/sable/internal/wasm"
)

// AssertionError is returned when an assertion fails. It carries the
// textual module so the failure message shows what was actually emitted.
type AssertionError struct {
	Type     string // assertion type for categorization
	Expected string // human-readable expected outcome
	Actual   string // human-readable actual outcome
	Wat      string // full textual module for debugging context
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)
	fmt.Fprintf(&buf, "\nEmitted module:\n%s", e.Wat)
	return buf.String()
}

// checkAssertion evaluates one assertion against the compiled module and
// its textual rendering.
func checkAssertion(m *wasm.Module, wat string, a Assertion) error {
	switch a.Type {
	case AssertWatContains:
		return assertWatContains(wat, a)
	case AssertWatExcludes:
		return assertWatExcludes(wat, a)
	case AssertExports:
		return assertExports(m, wat, a)
	case AssertFuncCount:
		return assertFuncCount(m, wat, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func assertWatContains(wat string, a Assertion) error {
	if strings.Contains(wat, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertWatContains,
		Expected: fmt.Sprintf("module contains %q", a.Text),
		Actual:   "fragment not found",
		Wat:      wat,
	}
}

func assertWatExcludes(wat string, a Assertion) error {
	if !strings.Contains(wat, a.Text) {
		return nil
	}
	return &AssertionError{
		Type:     AssertWatExcludes,
		Expected: fmt.Sprintf("module does not contain %q", a.Text),
		Actual:   "fragment present",
		Wat:      wat,
	}
}

func assertExports(m *wasm.Module, wat string, a Assertion) error {
	exported := make(map[string]bool, len(m.Exports))
	for _, ex := range m.Exports {
		exported[ex.Name] = true
	}
	for _, name := range a.Names {
		if !exported[name] {
			return &AssertionError{
				Type:     AssertExports,
				Expected: fmt.Sprintf("export %q present", name),
				Actual:   fmt.Sprintf("exports: %s", exportNames(m)),
				Wat:      wat,
			}
		}
	}
	return nil
}

func assertFuncCount(m *wasm.Module, wat string, a Assertion) error {
	if len(m.Funcs) == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertFuncCount,
		Expected: fmt.Sprintf("%d functions", a.Count),
		Actual:   fmt.Sprintf("%d functions", len(m.Funcs)),
		Wat:      wat,
	}
}

func exportNames(m *wasm.Module) string {
	names := make([]string, len(m.Exports))
	for i, ex := range m.Exports {
		names[i] = ex.Name
	}
	return strings.Join(names, ", ")
}

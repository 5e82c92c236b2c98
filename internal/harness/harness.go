package harness

import (
	"fmt"

	"github.com/roach88/sable/internal/emit"
	"github.com/roach88/sable/internal/examples"
	"github.com/roach88/sable/internal/ir"
	"github.com/roach88/sable/internal/lower"
	"github.com/roach88/sable/internal/optimize"
)

// Run compiles the scenario's program end to end and evaluates its
// assertions. Compilation errors are returned as errors; assertion
// failures are recorded on the result.
func Run(scenario *Scenario) (*Result, error) {
	prog, ok := examples.Get(scenario.Program)
	if !ok {
		return nil, fmt.Errorf("unknown program %q", scenario.Program)
	}

	if errs := ir.Validate(prog.Program); len(errs) > 0 {
		return nil, fmt.Errorf("program %s does not validate: %s", scenario.Program, errs[0])
	}

	module, err := lower.Compile(prog.Program, prog.Namer)
	if err != nil {
		return nil, fmt.Errorf("lowering %s: %w", scenario.Program, err)
	}
	if scenario.Optimized() {
		optimize.Module(module)
	}

	result := NewResult()
	result.Wat = emit.Text(module)
	result.Wasm, err = emit.Binary(module)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", scenario.Program, err)
	}

	for _, a := range scenario.Assertions {
		if err := checkAssertion(module, result.Wat, a); err != nil {
			result.AddError(err.Error())
		}
	}
	return result, nil
}

package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsClosedProgram(t *testing.T) {
	nm := NewNamer()
	a, nm := nm.Fresh("a")
	b, nm := nm.Fresh("b")
	mainName, _ := nm.Fresh("max")

	body := If{
		Cond: Prim{Op: IntCmp(CmpGt), Args: []Expr{Var{Ident: a}, Var{Ident: b}}},
		Then: Var{Ident: a},
		Else: Var{Ident: b},
	}
	p := Program{
		Name: "max",
		Bindings: []Binding{
			{Name: mainName, Value: Func{Params: []Ident{a, b}, Body: body}},
		},
	}

	assert.Empty(t, Validate(p))
}

func TestValidateReportsUnboundVariable(t *testing.T) {
	nm := NewNamer()
	ghost, nm := nm.Fresh("ghost")
	name, _ := nm.Fresh("main")

	p := Program{
		Name:     "bad",
		Bindings: []Binding{{Name: name, Value: Var{Ident: ghost}}},
	}

	errs := Validate(p)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnboundName, errs[0].Code)
	assert.Contains(t, errs[0].Message, "ghost")
}

func TestValidateReportsArityMismatch(t *testing.T) {
	nm := NewNamer()
	name, _ := nm.Fresh("main")

	// addint with one operand
	p := Program{
		Name: "bad",
		Bindings: []Binding{{
			Name:  name,
			Value: Prim{Op: Primitive{Kind: PAddInt}, Args: []Expr{IntConst{Value: 1}}},
		}},
	}

	errs := Validate(p)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrArityMismatch, errs[0].Code)
	assert.Contains(t, errs[0].Message, "addint")
	assert.Contains(t, errs[0].Message, "expects 2")
}

func TestValidateCollectsAllErrors(t *testing.T) {
	nm := NewNamer()
	ghost, nm := nm.Fresh("ghost")
	name, _ := nm.Fresh("main")

	p := Program{
		Name: "bad",
		Bindings: []Binding{{
			Name: name,
			Value: Seq{
				First: Var{Ident: ghost},
				Then:  Prim{Op: Primitive{Kind: PMulInt}, Args: []Expr{IntConst{Value: 2}}},
			},
		}},
	}

	errs := Validate(p)
	assert.Len(t, errs, 2, "validation must not fail fast")
}

func TestValidateAllowsSelfRecursiveGlobal(t *testing.T) {
	nm := NewNamer()
	n, nm := nm.Fresh("n")
	fib, _ := nm.Fresh("fib")

	// fib(n) = fib(n) — structurally valid, a global may call itself.
	p := Program{
		Name: "fib",
		Bindings: []Binding{{
			Name: fib,
			Value: Func{Params: []Ident{n}, Body: Apply{
				Fn:   Var{Ident: fib},
				Args: []Expr{Var{Ident: n}},
			}},
		}},
	}

	assert.Empty(t, Validate(p))
}

func TestValidateRejectsForwardGlobalReference(t *testing.T) {
	nm := NewNamer()
	x, nm := nm.Fresh("x")
	main, nm := nm.Fresh("main")
	later, _ := nm.Fresh("later")

	// main uses later before it is bound; a later binding may use main.
	p := Program{
		Name: "fwd",
		Bindings: []Binding{
			{Name: main, Value: Apply{Fn: Var{Ident: later}, Args: []Expr{IntConst{Value: 1}}}},
			{Name: later, Value: Func{Params: []Ident{x}, Body: Var{Ident: x}}},
		},
	}

	errs := Validate(p)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnboundName, errs[0].Code)
	assert.Equal(t, "main", errs[0].Where)

	// Backward visibility stays intact.
	p.Bindings = []Binding{p.Bindings[1], {
		Name:  main,
		Value: Apply{Fn: Var{Ident: later}, Args: []Expr{IntConst{Value: 1}}},
	}}
	assert.Empty(t, Validate(p))
}

func TestValidateReportsDuplicateGlobals(t *testing.T) {
	nm := NewNamer()
	a, nm := nm.Fresh("main")
	b, _ := nm.Fresh("main")

	p := Program{
		Name: "dup",
		Bindings: []Binding{
			{Name: a, Value: IntConst{Value: 1}},
			{Name: b, Value: IntConst{Value: 2}},
		},
	}

	errs := Validate(p)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateGlobal, errs[0].Code)
}

func TestValidateReportsEmptySwitch(t *testing.T) {
	nm := NewNamer()
	name, _ := nm.Fresh("main")

	p := Program{
		Name: "empty",
		Bindings: []Binding{{
			Name:  name,
			Value: Switch{Scrutinee: IntConst{Value: 0}},
		}},
	}

	errs := Validate(p)
	require.Len(t, errs, 1)
	assert.Equal(t, ErrEmptySwitch, errs[0].Code)
}

// Package testutil provides deterministic helpers shared by compiler
// tests. The expression builder threads a namer internally so tests can
// assemble programs without the Fresh bookkeeping.
package testutil

import (
	"github.com/roach88/sable/internal/ir"
)

// ExprBuilder assembles IR expressions with a single internal namer.
// The same construction sequence always yields the same stamps, so
// hashes and lowered output are reproducible across runs.
//
// ExprBuilder is not safe for concurrent use; give each test its own.
type ExprBuilder struct {
	nm ir.Namer
}

// NewExprBuilder creates a builder whose first fresh stamp is 1.
func NewExprBuilder() *ExprBuilder {
	return &ExprBuilder{nm: ir.NewNamer()}
}

// Fresh allocates a new identifier.
func (b *ExprBuilder) Fresh(name string) ir.Ident {
	id, nm := b.nm.Fresh(name)
	b.nm = nm
	return id
}

// Namer returns the current namer state, for handing to lower.Compile.
func (b *ExprBuilder) Namer() ir.Namer {
	return b.nm
}

// Program wraps bindings into a named program.
func (b *ExprBuilder) Program(name string, bindings ...ir.Binding) ir.Program {
	return ir.Program{Name: name, Bindings: bindings}
}

// Bind pairs a fresh identifier with a value and returns both.
func (b *ExprBuilder) Bind(name string, value ir.Expr) (ir.Ident, ir.Binding) {
	id := b.Fresh(name)
	return id, ir.Binding{Name: id, Value: value}
}

// Int returns an integer literal.
func Int(v int64) ir.Expr { return ir.IntConst{Value: v} }

// Float returns a float literal.
func Float(v float64) ir.Expr { return ir.FloatConst{Value: v} }

// Bool returns a boolean literal.
func Bool(v bool) ir.Expr { return ir.BoolConst{Value: v} }

// Str returns a string literal.
func Str(s string) ir.Expr { return ir.StringConst{Value: s} }

// Use returns a variable reference.
func Use(id ir.Ident) ir.Expr { return ir.Var{Ident: id} }

// Op applies a bare primitive kind to its operands.
func Op(kind ir.PrimKind, args ...ir.Expr) ir.Expr {
	return ir.Prim{Op: ir.Primitive{Kind: kind}, Args: args}
}

// Add is integer addition.
func Add(l, r ir.Expr) ir.Expr { return Op(ir.PAddInt, l, r) }

// Mul is integer multiplication.
func Mul(l, r ir.Expr) ir.Expr { return Op(ir.PMulInt, l, r) }

// IntLt is the signed less-than comparison.
func IntLt(l, r ir.Expr) ir.Expr {
	return ir.Prim{Op: ir.IntCmp(ir.CmpLt), Args: []ir.Expr{l, r}}
}

// Strict binds a name strictly over a body.
func Strict(name ir.Ident, value, body ir.Expr) ir.Expr {
	return ir.Let{Kind: ir.LetStrict, Name: name, Value: value, Body: body}
}

// Mutable binds a mutable slot over a body.
func Mutable(name ir.Ident, value, body ir.Expr) ir.Expr {
	return ir.Let{Kind: ir.LetVariable, Name: name, Value: value, Body: body}
}

// Do sequences expressions left to right, returning the last one's value.
func Do(exprs ...ir.Expr) ir.Expr {
	if len(exprs) == 0 {
		return ir.IntConst{Value: 0}
	}
	out := exprs[len(exprs)-1]
	for i := len(exprs) - 2; i >= 0; i-- {
		out = ir.Seq{First: exprs[i], Then: out}
	}
	return out
}

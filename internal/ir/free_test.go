package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func idents(names ...string) (Namer, []Ident) {
	n := NewNamer()
	out := make([]Ident, len(names))
	for i, name := range names {
		out[i], n = n.Fresh(name)
	}
	return n, out
}

func TestFreeVarsVariable(t *testing.T) {
	_, ids := idents("x")
	free := FreeVars(Var{Ident: ids[0]})
	assert.True(t, free.Contains(ids[0]), "a bare variable is free in itself")
	assert.Len(t, free, 1)
}

func TestFreeVarsConstantsAreClosed(t *testing.T) {
	assert.Empty(t, FreeVars(IntConst{Value: 42}))
	assert.Empty(t, FreeVars(StringConst{Value: "hi"}))
}

func TestFreeVarsFuncSubtractsParams(t *testing.T) {
	_, ids := idents("x", "n")
	x, n := ids[0], ids[1]

	// (x) -> x + n
	body := Prim{Op: Primitive{Kind: PAddInt}, Args: []Expr{Var{Ident: x}, Var{Ident: n}}}
	free := FreeVars(Func{Params: []Ident{x}, Body: body})

	assert.False(t, free.Contains(x), "parameter must not be free")
	assert.True(t, free.Contains(n), "captured variable must be free")
	assert.Len(t, free, 1)
}

func TestFreeVarsShadowingByStamp(t *testing.T) {
	nm := NewNamer()
	outer, nm := nm.Fresh("x")
	inner, _ := nm.Fresh("x")

	// let x#2 = x#1 in x#2 — only x#1 is free despite the shared name.
	e := Let{Name: inner, Value: Var{Ident: outer}, Body: Var{Ident: inner}}
	free := FreeVars(e)

	assert.True(t, free.Contains(outer))
	assert.False(t, free.Contains(inner))
	assert.Len(t, free, 1)
}

func TestFreeVarsLetRecScopesOverValues(t *testing.T) {
	_, ids := idents("f", "g", "z")
	f, g, z := ids[0], ids[1], ids[2]

	e := LetRec{
		Bindings: []Binding{
			{Name: f, Value: Var{Ident: g}},
			{Name: g, Value: Var{Ident: z}},
		},
		Body: Var{Ident: f},
	}
	free := FreeVars(e)

	assert.False(t, free.Contains(f))
	assert.False(t, free.Contains(g), "letrec names scope over all values")
	assert.True(t, free.Contains(z))
}

func TestFreeVarsForBinderScopesBodyOnly(t *testing.T) {
	_, ids := idents("i", "limit")
	i, limit := ids[0], ids[1]

	e := For{
		Var:  i,
		From: IntConst{Value: 0},
		To:   Var{Ident: limit},
		Dir:  Upto,
		Body: Var{Ident: i},
	}
	free := FreeVars(e)

	assert.False(t, free.Contains(i))
	assert.True(t, free.Contains(limit))
}

func TestFreeVarsCatchAndTryParams(t *testing.T) {
	_, ids := idents("e", "v")
	exn, v := ids[0], ids[1]

	try := Try{
		Body:    Var{Ident: v},
		Param:   exn,
		Handler: Var{Ident: exn},
	}
	free := FreeVars(try)
	assert.True(t, free.Contains(v))
	assert.False(t, free.Contains(exn))
}

func TestIdentSetSortedIsDeterministic(t *testing.T) {
	_, ids := idents("c", "a", "b")
	s := NewIdentSet(ids[2], ids[0], ids[1])

	sorted := s.Sorted()
	assert.Equal(t, []Ident{ids[0], ids[1], ids[2]}, sorted,
		"Sorted must order by stamp regardless of insertion order")
}

package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgramHashDeterminism(t *testing.T) {
	nm := NewNamer()
	x, nm := nm.Fresh("x")
	name, _ := nm.Fresh("main")

	p := Program{
		Name: "arith",
		Bindings: []Binding{{
			Name: name,
			Value: Let{Name: x, Value: IntConst{Value: 1},
				Body: Prim{Op: Primitive{Kind: PAddInt}, Args: []Expr{Var{Ident: x}, IntConst{Value: 2}}}},
		}},
	}

	h1 := ProgramHash(p)
	h2 := ProgramHash(p)
	assert.Equal(t, h1, h2, "ProgramHash must be deterministic")
	assert.Len(t, h1, 64, "SHA-256 hex is 64 characters")
}

func TestProgramHashChangesWithStructure(t *testing.T) {
	nm := NewNamer()
	name, _ := nm.Fresh("main")

	p1 := Program{Name: "p", Bindings: []Binding{{Name: name, Value: IntConst{Value: 1}}}}
	p2 := Program{Name: "p", Bindings: []Binding{{Name: name, Value: IntConst{Value: 2}}}}
	p3 := Program{Name: "q", Bindings: []Binding{{Name: name, Value: IntConst{Value: 1}}}}

	assert.NotEqual(t, ProgramHash(p1), ProgramHash(p2), "different literals should produce different hashes")
	assert.NotEqual(t, ProgramHash(p1), ProgramHash(p3), "different program names should produce different hashes")
}

func TestCanonicalDistinguishesVariants(t *testing.T) {
	// An int 1 and a bool true both lower to a boxed 1, but they are
	// different IR and must hash differently.
	a := MarshalCanonical(IntConst{Value: 1})
	b := MarshalCanonical(BoolConst{Value: true})
	assert.NotEqual(t, a, b)
}

func TestCanonicalNormalizesStrings(t *testing.T) {
	// "é" composed vs decomposed: same text after NFC.
	composed := MarshalCanonical(StringConst{Value: "é"})
	decomposed := MarshalCanonical(StringConst{Value: "é"})
	assert.Equal(t, composed, decomposed,
		"NFC-equal strings must produce identical canonical bytes")
}

package optimize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sable/internal/wasm"
)

func c32(v int32) wasm.I32Const { return wasm.I32Const{Value: v} }

func add(l, r wasm.Instr) wasm.Binary {
	return wasm.Binary{Op: wasm.I32Add, L: l, R: r}
}

func TestFoldsLiteralIntegerArithmetic(t *testing.T) {
	cases := []struct {
		in   wasm.Instr
		want wasm.Instr
	}{
		{add(c32(1), c32(2)), c32(3)},
		{wasm.Binary{Op: wasm.I32Sub, L: c32(10), R: c32(4)}, c32(6)},
		{wasm.Binary{Op: wasm.I32Mul, L: c32(6), R: c32(7)}, c32(42)},
		{wasm.Binary{Op: wasm.I32LtS, L: c32(1), R: c32(2)}, c32(1)},
		{wasm.Binary{Op: wasm.I32Eq, L: c32(3), R: c32(4)}, c32(0)},
	}
	for _, tc := range cases {
		got := Body([]wasm.Instr{tc.in})
		require.Len(t, got, 1)
		assert.Equal(t, tc.want, got[0])
	}
}

func TestIntegerFoldingWrapsAt32Bits(t *testing.T) {
	got := Body([]wasm.Instr{add(c32(1<<31 - 1), c32(1))})
	require.Len(t, got, 1)
	assert.Equal(t, c32(-1<<31), got[0], "overflow wraps like the target machine")
}

func TestLiteralDivisionIsNotFolded(t *testing.T) {
	div := wasm.Binary{Op: wasm.I32DivS, L: c32(1), R: c32(0)}
	got := Body([]wasm.Instr{div})
	require.Len(t, got, 1)
	assert.Equal(t, div, got[0], "a trapping division must survive")
}

func TestNeutralElementsAreDropped(t *testing.T) {
	x := wasm.LocalGet{Index: 0, Name: "x"}
	cases := []wasm.Instr{
		add(x, c32(0)),
		add(c32(0), x),
		wasm.Binary{Op: wasm.I32Sub, L: x, R: c32(0)},
		wasm.Binary{Op: wasm.I32Mul, L: x, R: c32(1)},
		wasm.Binary{Op: wasm.I32Mul, L: c32(1), R: x},
	}
	for _, in := range cases {
		got := Body([]wasm.Instr{in})
		require.Len(t, got, 1)
		assert.Equal(t, x, got[0])
	}
}

func TestBoxUnboxCancels(t *testing.T) {
	x := wasm.LocalGet{Index: 0, Name: "x"}
	in := wasm.I31GetS{Value: wasm.RefI31{Value: x}}
	got := Body([]wasm.Instr{in})
	require.Len(t, got, 1)
	assert.Equal(t, x, got[0])
}

func TestFloatBoxUnboxCancels(t *testing.T) {
	x := wasm.LocalGet{Index: 0, Name: "x"}
	in := wasm.StructGet{
		Type:   "float",
		Field:  0,
		Target: wasm.StructNew{Type: "float", Args: []wasm.Instr{x}},
	}
	got := Body([]wasm.Instr{in})
	require.Len(t, got, 1)
	assert.Equal(t, x, got[0])

	// A multi-field allocation keeps its siblings, so the read stays.
	wide := wasm.StructGet{
		Type:   "block.0.2",
		Field:  0,
		Target: wasm.StructNew{Type: "block.0.2", Args: []wasm.Instr{c32(0), x}},
	}
	got = Body([]wasm.Instr{wide})
	require.Len(t, got, 1)
	assert.Equal(t, wasm.Instr(wide), got[0])
}

func TestFoldsThroughBoxing(t *testing.T) {
	// The shape the lowerer emits for 1 + 2 on boxed operands.
	in := wasm.RefI31{Value: add(
		wasm.I31GetS{Value: wasm.RefI31{Value: c32(1)}},
		wasm.I31GetS{Value: wasm.RefI31{Value: c32(2)}},
	)}
	got := Body([]wasm.Instr{in})
	require.Len(t, got, 1)
	assert.Equal(t, wasm.RefI31{Value: c32(3)}, got[0], "only the final box remains")
}

func TestLiteralGuardSelectsArm(t *testing.T) {
	in := wasm.If{
		Result: []wasm.ValType{wasm.I32{}},
		Cond:   c32(1),
		Then:   []wasm.Instr{c32(10)},
		Else:   []wasm.Instr{c32(20)},
	}
	got := Body([]wasm.Instr{in})
	require.Len(t, got, 1)
	assert.Equal(t, c32(10), got[0])

	in.Cond = c32(0)
	got = Body([]wasm.Instr{in})
	require.Len(t, got, 1)
	assert.Equal(t, c32(20), got[0])
}

func TestDeadCodeAfterReturnIsRemoved(t *testing.T) {
	a := wasm.Drop{Value: c32(1)}
	ret := wasm.Return{Value: c32(2)}
	got := Body([]wasm.Instr{a, ret, wasm.Drop{Value: c32(3)}, wasm.Drop{Value: c32(4)}})
	assert.Equal(t, []wasm.Instr{a, ret}, got, "everything after the return is dead")
}

func TestDeadCodeInsideBlocksIsRemoved(t *testing.T) {
	in := wasm.Block{
		Label: "b",
		Body: []wasm.Instr{
			wasm.Br{Label: "b"},
			wasm.Drop{Value: c32(1)},
		},
	}
	got := Body([]wasm.Instr{in})
	require.Len(t, got, 1)
	blk, ok := got[0].(wasm.Block)
	require.True(t, ok)
	assert.Equal(t, []wasm.Instr{wasm.Br{Label: "b"}}, blk.Body)
}

func TestOptimizationIsIdempotent(t *testing.T) {
	in := []wasm.Instr{
		wasm.RefI31{Value: add(
			wasm.I31GetS{Value: wasm.RefI31{Value: c32(20)}},
			add(wasm.LocalGet{Index: 0, Name: "x"}, c32(0)),
		)},
		wasm.Return{Value: c32(1)},
		wasm.Drop{Value: c32(9)},
	}
	once := Body(in)
	again := Body(append([]wasm.Instr(nil), once...))
	assert.Equal(t, once, again, "a second pass finds nothing to do")
}

func TestModuleOptimizesEveryFunction(t *testing.T) {
	m := &wasm.Module{
		Funcs: []wasm.Func{
			{Name: "a", Body: []wasm.Instr{add(c32(1), c32(2))}},
			{Name: "b", Body: []wasm.Instr{add(c32(3), c32(4))}},
		},
	}
	Module(m)
	assert.Equal(t, []wasm.Instr{c32(3)}, m.Funcs[0].Body)
	assert.Equal(t, []wasm.Instr{c32(7)}, m.Funcs[1].Body)
}

package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sable/internal/ir"
	"github.com/roach88/sable/internal/testutil"
	"github.com/roach88/sable/internal/wasm"
)

func TestLetStoresBeforeBody(t *testing.T) {
	b := testutil.NewExprBuilder()
	x := b.Fresh("x")
	expr := testutil.Strict(x, testutil.Int(5), testutil.Add(testutil.Use(x), testutil.Int(1)))

	mod := compileOne(t, "main", expr, b.Namer())
	require.Len(t, mod.Funcs, 1)

	fn := mod.Funcs[0]
	require.Len(t, fn.Locals, 1)
	assert.Equal(t, "x.1", fn.Locals[0].Name)

	sets := countInModule(mod, func(i wasm.Instr) bool {
		set, ok := i.(wasm.LocalSet)
		return ok && set.Name == "x.1"
	})
	assert.Equal(t, 1, sets, "the binding stores exactly once")

	gets := countInModule(mod, func(i wasm.Instr) bool {
		get, ok := i.(wasm.LocalGet)
		return ok && get.Name == "x.1"
	})
	assert.Equal(t, 1, gets)
}

func TestAssignYieldsUnit(t *testing.T) {
	b := testutil.NewExprBuilder()
	c := b.Fresh("c")
	expr := testutil.Mutable(c, testutil.Int(0),
		testutil.Do(
			ir.Assign{Name: c, Value: testutil.Int(9)},
			testutil.Use(c),
		),
	)

	instr, typ, _, err := lowerExpr(testEnv(), expr)
	require.NoError(t, err)
	assert.Equal(t, wasm.I31Ref(), typ)

	// The assignment itself produces the boxed unit value.
	units := 0
	walkInstr(instr, func(i wasm.Instr) {
		block, ok := i.(wasm.Block)
		if !ok || len(block.Body) != 2 {
			return
		}
		if _, ok := block.Body[0].(wasm.LocalSet); !ok {
			return
		}
		if boxed, ok := block.Body[1].(wasm.RefI31); ok {
			if raw, ok := boxed.Value.(wasm.I32Const); ok && raw.Value == 0 {
				units++
			}
		}
	})
	assert.Equal(t, 1, units)
}

func TestAssignToUnknownSlotIsFatal(t *testing.T) {
	b := testutil.NewExprBuilder()
	ghost := b.Fresh("ghost")

	_, _, _, err := lowerExpr(testEnv(), ir.Assign{Name: ghost, Value: testutil.Int(1)})
	require.Error(t, err)

	var unbound *UnboundNameError
	assert.ErrorAs(t, err, &unbound)
}

func TestSeqDropsFirstValue(t *testing.T) {
	b := testutil.NewExprBuilder()
	expr := testutil.Do(testutil.Int(1), testutil.Int(2), testutil.Int(3))

	mod := compileOne(t, "main", expr, b.Namer())
	drops := countInModule(mod, func(i wasm.Instr) bool {
		_, ok := i.(wasm.Drop)
		return ok
	})
	assert.Equal(t, 2, drops, "each discarded step drops once")
}

func TestLetRecStoresSequentially(t *testing.T) {
	b := testutil.NewExprBuilder()
	x := b.Fresh("x")
	y := b.Fresh("y")
	expr := ir.LetRec{
		Bindings: []ir.Binding{
			{Name: x, Value: testutil.Int(1)},
			{Name: y, Value: testutil.Add(testutil.Use(x), testutil.Int(1))},
		},
		Body: testutil.Add(testutil.Use(x), testutil.Use(y)),
	}

	mod := compileOne(t, "main", expr, b.Namer())
	require.Len(t, mod.Funcs, 1)
	assert.Len(t, mod.Funcs[0].Locals, 2)
}

func TestIfWidensMismatchedArms(t *testing.T) {
	expr := ir.If{
		Cond: testutil.Bool(true),
		Then: testutil.Int(1),
		Else: testutil.Float(2.5),
	}

	instr, typ, _, err := lowerExpr(testEnv(), expr)
	require.NoError(t, err)
	assert.Equal(t, wasm.AnyRef(), typ)

	cond, ok := instr.(wasm.If)
	require.True(t, ok)
	require.Len(t, cond.Result, 1)
	assert.Equal(t, wasm.ValType(wasm.AnyRef()), cond.Result[0])
}

func TestTryEmitsHandlerAfterBodyEscape(t *testing.T) {
	b := testutil.NewExprBuilder()
	exn := b.Fresh("exn")
	expr := ir.Try{
		Body:    testutil.Int(1),
		Param:   exn,
		Handler: testutil.Int(2),
	}

	instr, typ, _, err := lowerExpr(testEnv(), expr)
	require.NoError(t, err)
	assert.Equal(t, wasm.AnyRef(), typ)

	block, ok := instr.(wasm.Block)
	require.True(t, ok)
	require.Len(t, block.Body, 3)

	// First the protected value escapes, then the parameter slot is
	// initialized, then the handler value follows.
	escape, ok := block.Body[0].(wasm.Br)
	require.True(t, ok)
	assert.Equal(t, block.Label, escape.Label)

	_, ok = block.Body[1].(wasm.LocalSet)
	assert.True(t, ok)
}

func TestCatchHandlerParamsInitializeToUnit(t *testing.T) {
	b := testutil.NewExprBuilder()
	p := b.Fresh("p")
	expr := ir.Catch{
		Body:    ir.Exit{Label: 3, Args: []ir.Expr{testutil.Int(7)}},
		Label:   3,
		Params:  []ir.Ident{p},
		Handler: testutil.Use(p),
	}

	mod := compileOne(t, "main", expr, b.Namer())
	inits := countInModule(mod, func(i wasm.Instr) bool {
		set, ok := i.(wasm.LocalSet)
		return ok && set.Name == "p.1"
	})
	assert.Equal(t, 1, inits)
}

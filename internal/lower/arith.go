package lower

import (
	"github.com/roach88/sable/internal/ir"
	"github.com/roach88/sable/internal/wasm"
)

// lowerPrim checks the operator's arity contract and dispatches to the
// sub-lowering for its kind. Arity violations are fatal here even though
// validation normally catches them first: the engine does not trust its
// caller blindly.
func lowerPrim(env Env, n ir.Prim) (wasm.Instr, wasm.ValType, Env, error) {
	if want := n.Op.ArityOf(); len(n.Args) != want {
		return nil, nil, env, &ArityError{Op: n.Op, Want: want, Got: len(n.Args)}
	}

	switch n.Op.Kind {
	case ir.PAddInt, ir.PSubInt, ir.PMulInt, ir.PDivInt, ir.PModInt:
		return lowerIntBinary(env, intArithOp(n.Op.Kind), n.Args)
	case ir.PNegInt:
		return lowerNegInt(env, n.Args[0])
	case ir.PIntCmp:
		return lowerIntCompare(env, n.Op.Cmp, n.Args)
	case ir.PAddFloat, ir.PSubFloat, ir.PMulFloat, ir.PDivFloat:
		return lowerFloatBinary(env, floatArithOp(n.Op.Kind), n.Args)
	case ir.PNegFloat:
		return lowerNegFloat(env, n.Args[0])
	case ir.PFloatCmp:
		return lowerFloatCompare(env, n.Op.Cmp, n.Args)
	case ir.PIntOfFloat:
		return lowerIntOfFloat(env, n.Args[0])
	case ir.PFloatOfInt:
		return lowerFloatOfInt(env, n.Args[0])
	case ir.PMakeBlock:
		return lowerMakeBlock(env, n.Op.Tag, n.Args)
	case ir.PField:
		return lowerFieldGet(env, n.Op.Index, n.Args[0])
	case ir.PSetField:
		return lowerFieldSet(env, n.Op.Index, n.Args[0], n.Args[1])
	case ir.PMakeArray:
		return lowerMakeArray(env, n.Args)
	case ir.PArrayLength:
		return lowerArrayLength(env, n.Args[0])
	case ir.PArrayGet, ir.PArrayGetUnsafe:
		return lowerArrayGet(env, n.Args[0], n.Args[1])
	case ir.PArraySet, ir.PArraySetUnsafe:
		return lowerArraySet(env, n.Args[0], n.Args[1], n.Args[2])
	case ir.PIsInt:
		return lowerIsInt(env, n.Args[0])
	case ir.PGetTag:
		return lowerGetTag(env, n.Args[0])
	case ir.PCCall:
		return lowerForeignCall(env, n.Op, n.Args)
	}
	return nil, nil, env, &UnsupportedError{What: "primitive " + n.Op.String()}
}

func intArithOp(k ir.PrimKind) wasm.BinOp {
	switch k {
	case ir.PAddInt:
		return wasm.I32Add
	case ir.PSubInt:
		return wasm.I32Sub
	case ir.PMulInt:
		return wasm.I32Mul
	case ir.PDivInt:
		return wasm.I32DivS
	default:
		return wasm.I32RemS
	}
}

func floatArithOp(k ir.PrimKind) wasm.BinOp {
	switch k {
	case ir.PAddFloat:
		return wasm.F64Add
	case ir.PSubFloat:
		return wasm.F64Sub
	case ir.PMulFloat:
		return wasm.F64Mul
	default:
		return wasm.F64Div
	}
}

func intCmpOp(c ir.Cmp) wasm.BinOp {
	switch c {
	case ir.CmpEq:
		return wasm.I32Eq
	case ir.CmpNe:
		return wasm.I32Ne
	case ir.CmpLt:
		return wasm.I32LtS
	case ir.CmpGt:
		return wasm.I32GtS
	case ir.CmpLe:
		return wasm.I32LeS
	default:
		return wasm.I32GeS
	}
}

func floatCmpOp(c ir.Cmp) wasm.BinOp {
	switch c {
	case ir.CmpEq:
		return wasm.F64Eq
	case ir.CmpNe:
		return wasm.F64Ne
	case ir.CmpLt:
		return wasm.F64Lt
	case ir.CmpGt:
		return wasm.F64Gt
	case ir.CmpLe:
		return wasm.F64Le
	default:
		return wasm.F64Ge
	}
}

// lowerIntBinary unwraps both boxed operands to raw 32-bit values, applies
// the raw operation and re-boxes the result.
func lowerIntBinary(env Env, op wasm.BinOp, args []ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	l, lt, env, err := lowerExpr(env, args[0])
	if err != nil {
		return nil, nil, env, err
	}
	r, rt, env, err := lowerExpr(env, args[1])
	if err != nil {
		return nil, nil, env, err
	}
	raw := wasm.Binary{Op: op, L: unboxInt(l, lt), R: unboxInt(r, rt)}
	return wasm.RefI31{Value: raw}, wasm.I31Ref(), env, nil
}

// lowerIntCompare boxes the raw 0/1 result the same way arithmetic does.
func lowerIntCompare(env Env, c ir.Cmp, args []ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	return lowerIntBinary(env, intCmpOp(c), args)
}

func lowerNegInt(env Env, arg ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	x, xt, env, err := lowerExpr(env, arg)
	if err != nil {
		return nil, nil, env, err
	}
	raw := wasm.Binary{Op: wasm.I32Sub, L: wasm.I32Const{Value: 0}, R: unboxInt(x, xt)}
	return wasm.RefI31{Value: raw}, wasm.I31Ref(), env, nil
}

// lowerFloatBinary operates directly on the unboxed 64-bit representation;
// operands unbox at most once on the way in and the raw result boxes only
// when it reaches a reference boundary.
func lowerFloatBinary(env Env, op wasm.BinOp, args []ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	env = ensureFloatType(env)
	l, lt, env, err := lowerExpr(env, args[0])
	if err != nil {
		return nil, nil, env, err
	}
	r, rt, env, err := lowerExpr(env, args[1])
	if err != nil {
		return nil, nil, env, err
	}
	return wasm.Binary{Op: op, L: asFloat(l, lt), R: asFloat(r, rt)}, wasm.F64{}, env, nil
}

func lowerFloatCompare(env Env, c ir.Cmp, args []ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	env = ensureFloatType(env)
	l, lt, env, err := lowerExpr(env, args[0])
	if err != nil {
		return nil, nil, env, err
	}
	r, rt, env, err := lowerExpr(env, args[1])
	if err != nil {
		return nil, nil, env, err
	}
	raw := wasm.Binary{Op: floatCmpOp(c), L: asFloat(l, lt), R: asFloat(r, rt)}
	return wasm.RefI31{Value: raw}, wasm.I31Ref(), env, nil
}

func lowerNegFloat(env Env, arg ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	env = ensureFloatType(env)
	x, xt, env, err := lowerExpr(env, arg)
	if err != nil {
		return nil, nil, env, err
	}
	return wasm.Unary{Op: wasm.F64Neg, X: asFloat(x, xt)}, wasm.F64{}, env, nil
}

// lowerIntOfFloat truncates toward zero, saturating out-of-range input so
// the conversion can never trap.
func lowerIntOfFloat(env Env, arg ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	env = ensureFloatType(env)
	x, xt, env, err := lowerExpr(env, arg)
	if err != nil {
		return nil, nil, env, err
	}
	raw := wasm.Unary{Op: wasm.I32TruncSatF64S, X: asFloat(x, xt)}
	return wasm.RefI31{Value: raw}, wasm.I31Ref(), env, nil
}

func lowerFloatOfInt(env Env, arg ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	env = ensureFloatType(env)
	x, xt, env, err := lowerExpr(env, arg)
	if err != nil {
		return nil, nil, env, err
	}
	return wasm.Unary{Op: wasm.F64ConvertI32S, X: unboxInt(x, xt)}, wasm.F64{}, env, nil
}

// lowerIsInt tests whether a value is an immediate (boxed small integer)
// rather than a heap block, yielding a boxed boolean.
func lowerIsInt(env Env, arg ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	x, xt, env, err := lowerExpr(env, arg)
	if err != nil {
		return nil, nil, env, err
	}
	raw := wasm.RefTest{Heap: wasm.HeapType{Kind: wasm.HeapI31}, Value: asAny(x, xt)}
	return wasm.RefI31{Value: raw}, wasm.I31Ref(), env, nil
}

// lowerGetTag reads a block's tag field. Like all field accesses, the
// read resolves against the fixed block.0.0 shape; see lowerFieldGet.
func lowerGetTag(env Env, arg ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	x, xt, env, err := lowerExpr(env, arg)
	if err != nil {
		return nil, nil, env, err
	}
	env = ensureBlockType(env, 0, 0)
	raw := wasm.StructGet{
		Type:   blockTypeName(0, 0),
		Field:  0,
		Target: wasm.RefCast{Type: wasm.NamedRef(blockTypeName(0, 0)), Value: asAny(x, xt)},
	}
	return wasm.RefI31{Value: raw}, wasm.I31Ref(), env, nil
}

package lower

import (
	"fmt"

	"github.com/roach88/sable/internal/ir"
	"github.com/roach88/sable/internal/wasm"
)

// ensureBlockType registers the struct type for heap blocks with the given
// tag and field count. Field 0 is the runtime tag; the remaining fields
// are unconstrained references, mutable so setfield can target them.
func ensureBlockType(env Env, tag, size int) Env {
	fields := make([]wasm.Field, size+1)
	fields[0] = wasm.Field{Name: "tag", Type: wasm.I32{}}
	for i := 0; i < size; i++ {
		fields[i+1] = wasm.Field{Name: fmt.Sprintf("f%d", i), Type: wasm.AnyRef(), Mutable: true}
	}
	return env.EnsureStructType(blockTypeName(tag, size), fields)
}

// lowerMakeBlock allocates a block struct with tag and all initializer
// operands in argument order.
func lowerMakeBlock(env Env, tag int, args []ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	env = ensureBlockType(env, tag, len(args))
	operands := make([]wasm.Instr, len(args)+1)
	operands[0] = wasm.I32Const{Value: int32(tag)}
	for i, a := range args {
		instr, typ, env2, err := lowerExpr(env, a)
		if err != nil {
			return nil, nil, env2, err
		}
		env = env2
		operands[i+1] = asAny(instr, typ)
	}
	name := blockTypeName(tag, len(args))
	return wasm.StructNew{Type: name, Args: operands}, wasm.NamedRef(name), env, nil
}

// lowerFieldGet reads field index of a block.
//
// Known limitation: the access resolves against the block.0.0 type name
// regardless of the record's actual tag and field count, because the
// engine does not track the static shape of record-producing expressions
// per call site. Heterogeneous record shapes therefore mis-resolve at the
// type level even where the runtime layout coincides. Consumers depend on
// this exact resolution order, so it is kept as-is rather than fixed.
func lowerFieldGet(env Env, index int, target ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	t, tt, env, err := lowerExpr(env, target)
	if err != nil {
		return nil, nil, env, err
	}
	env = ensureBlockType(env, 0, 0)
	instr := wasm.StructGet{
		Type:   blockTypeName(0, 0),
		Field:  index + 1,
		Target: wasm.RefCast{Type: wasm.NamedRef(blockTypeName(0, 0)), Value: asAny(t, tt)},
	}
	return instr, wasm.AnyRef(), env, nil
}

// lowerFieldSet writes field index of a block and yields the unit value.
// Same fixed-shape resolution as lowerFieldGet.
func lowerFieldSet(env Env, index int, target, value ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	t, tt, env, err := lowerExpr(env, target)
	if err != nil {
		return nil, nil, env, err
	}
	v, vt, env, err := lowerExpr(env, value)
	if err != nil {
		return nil, nil, env, err
	}
	env = ensureBlockType(env, 0, 0)
	set := wasm.StructSet{
		Type:   blockTypeName(0, 0),
		Field:  index + 1,
		Target: wasm.RefCast{Type: wasm.NamedRef(blockTypeName(0, 0)), Value: asAny(t, tt)},
		Value:  asAny(v, vt),
	}
	return blockOf(wasm.I31Ref(), set, lowerIntConst(0)), wasm.I31Ref(), env, nil
}

// lowerMakeArray allocates the uniform reference array from fixed
// elements.
func lowerMakeArray(env Env, args []ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	env = env.EnsureArrayType(arrayTypeName, wasm.AnyRef(), true)
	elems := make([]wasm.Instr, len(args))
	for i, a := range args {
		instr, typ, env2, err := lowerExpr(env, a)
		if err != nil {
			return nil, nil, env2, err
		}
		env = env2
		elems[i] = asAny(instr, typ)
	}
	return wasm.ArrayNewFixed{Type: arrayTypeName, Elems: elems}, wasm.NamedRef(arrayTypeName), env, nil
}

func castArray(x wasm.Instr, typ wasm.ValType) wasm.Instr {
	if r, ok := typ.(wasm.Ref); ok && r.Heap.Kind == wasm.HeapNamed && r.Heap.Name == arrayTypeName {
		return x
	}
	return wasm.RefCast{Type: wasm.NamedRef(arrayTypeName), Value: x}
}

func lowerArrayLength(env Env, target ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	t, tt, env, err := lowerExpr(env, target)
	if err != nil {
		return nil, nil, env, err
	}
	env = env.EnsureArrayType(arrayTypeName, wasm.AnyRef(), true)
	raw := wasm.ArrayLen{Target: castArray(t, tt)}
	return wasm.RefI31{Value: raw}, wasm.I31Ref(), env, nil
}

// lowerArrayGet reads one element. The safe and unsafe IR variants lower
// to the same instruction: the target's array access always bounds-checks,
// so "unsafe" only waives the extra guard the safe variant would add on
// targets without a native check.
func lowerArrayGet(env Env, target, index ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	t, tt, env, err := lowerExpr(env, target)
	if err != nil {
		return nil, nil, env, err
	}
	i, it, env, err := lowerExpr(env, index)
	if err != nil {
		return nil, nil, env, err
	}
	env = env.EnsureArrayType(arrayTypeName, wasm.AnyRef(), true)
	instr := wasm.ArrayGet{
		Type:   arrayTypeName,
		Target: castArray(t, tt),
		Index:  unboxInt(i, it),
	}
	return instr, wasm.AnyRef(), env, nil
}

func lowerArraySet(env Env, target, index, value ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	t, tt, env, err := lowerExpr(env, target)
	if err != nil {
		return nil, nil, env, err
	}
	i, it, env, err := lowerExpr(env, index)
	if err != nil {
		return nil, nil, env, err
	}
	v, vt, env, err := lowerExpr(env, value)
	if err != nil {
		return nil, nil, env, err
	}
	env = env.EnsureArrayType(arrayTypeName, wasm.AnyRef(), true)
	set := wasm.ArraySet{
		Type:   arrayTypeName,
		Target: castArray(t, tt),
		Index:  unboxInt(i, it),
		Value:  asAny(v, vt),
	}
	return blockOf(wasm.I31Ref(), set, lowerIntConst(0)), wasm.I31Ref(), env, nil
}

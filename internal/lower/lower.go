package lower

import (
	"fmt"

	"github.com/roach88/sable/internal/ir"
	"github.com/roach88/sable/internal/wasm"
)

// Type-registry key names. Struct and array types are named by their
// structural key so that two expressions needing the same shape always
// resolve to the same generated definition.
const (
	arrayTypeName = "array" // uniform anyref element array
	bytesTypeName = "bytes" // string payload: immutable byte array
	floatTypeName = "float" // boxed f64: one immutable field
)

// ensureFloatType registers the float box struct. Every lowering that
// produces or consumes a raw f64 calls this, so any float value reaching
// a reference boundary finds the type already declared.
func ensureFloatType(env Env) Env {
	return env.EnsureStructType(floatTypeName, []wasm.Field{
		{Name: "v", Type: wasm.F64{}},
	})
}

func blockTypeName(tag, size int) string {
	return fmt.Sprintf("block.%d.%d", tag, size)
}

func closureTypeName(captures int) string {
	return fmt.Sprintf("closure.%d", captures)
}

func closureFuncTypeName(arity int) string {
	return fmt.Sprintf("clofn.%d", arity)
}

// Compile lowers a whole program to a target module. This is the pure
// fold at the heart of the backend: the environment threads through every
// binding, and the returned module is the terminal artifact.
//
// Top-level Func bindings become exported functions; any other top-level
// binding becomes an exported nullary thunk computing its value. A
// binding's own name is registered before its value is lowered, so a
// top-level function can call itself directly; later bindings are not
// visible earlier (sequential binding, no forward references).
func Compile(p ir.Program, namer ir.Namer) (*wasm.Module, error) {
	env := NewEnv(namer)
	var err error

	for _, b := range p.Bindings {
		switch v := b.Value.(type) {
		case ir.Func:
			env = env.registerGlobal(b.Name, b.Name.Name, len(v.Params))
			env, err = lowerTopFunc(env, b.Name.Name, v.Params, v.Body)
		default:
			env = env.registerGlobal(b.Name, b.Name.Name, -1)
			env, err = lowerThunk(env, b.Name.Name, b.Value)
		}
		if err != nil {
			return nil, fmt.Errorf("lowering %s: %w", b.Name.Name, err)
		}
		env = env.addExport(b.Name.Name, b.Name.Name)
	}

	return env.Module(), nil
}

// lowerTopFunc compiles one top-level function with the uniform calling
// convention: every parameter and the result are the universal reference
// type.
func lowerTopFunc(env Env, name string, params []ir.Ident, body ir.Expr) (Env, error) {
	saved := env.frame

	wparams := make([]wasm.Local, len(params))
	for i, p := range params {
		wparams[i] = wasm.Local{Name: localName(p), Type: wasm.AnyRef()}
	}
	env = env.beginFrame(wparams)
	for i, p := range params {
		env = env.bindParam(p, i, wasm.AnyRef())
	}

	bodyInstr, bodyType, env, err := lowerExpr(env, body)
	if err != nil {
		return env, err
	}

	fn := wasm.Func{
		Name:    name,
		Params:  wparams,
		Results: []wasm.ValType{wasm.AnyRef()},
		Locals:  env.frame.locals,
		Body:    []wasm.Instr{asAny(bodyInstr, bodyType)},
	}
	env = env.endFrame(saved)
	return env.addFunc(fn), nil
}

// lowerThunk compiles a non-function top-level binding as a nullary
// function computing its value.
func lowerThunk(env Env, name string, value ir.Expr) (Env, error) {
	saved := env.frame
	env = env.beginFrame(nil)

	instr, typ, env, err := lowerExpr(env, value)
	if err != nil {
		return env, err
	}

	fn := wasm.Func{
		Name:    name,
		Results: []wasm.ValType{wasm.AnyRef()},
		Locals:  env.frame.locals,
		Body:    []wasm.Instr{asAny(instr, typ)},
	}
	env = env.endFrame(saved)
	return env.addFunc(fn), nil
}

// lowerExpr is the central recursive transform: one IR node in, one
// instruction tree (plus its value type and the updated environment) out.
func lowerExpr(env Env, e ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	switch n := e.(type) {
	case ir.IntConst:
		return lowerIntConst(n.Value), wasm.I31Ref(), env, nil
	case ir.BoolConst:
		v := int64(0)
		if n.Value {
			v = 1
		}
		return lowerIntConst(v), wasm.I31Ref(), env, nil
	case ir.FloatConst:
		return wasm.F64Const{Value: n.Value}, wasm.F64{}, ensureFloatType(env), nil
	case ir.StringConst:
		return lowerStringConst(env, n.Value)
	case ir.Var:
		return lowerVar(env, n)
	case ir.Apply:
		return lowerApply(env, n)
	case ir.Func:
		return lowerClosure(env, n)
	case ir.Let:
		return lowerLet(env, n)
	case ir.Assign:
		return lowerAssign(env, n)
	case ir.LetRec:
		return lowerLetRec(env, n)
	case ir.Prim:
		return lowerPrim(env, n)
	case ir.If:
		return lowerIf(env, n)
	case ir.Seq:
		return lowerSeq(env, n)
	case ir.For:
		return lowerFor(env, n)
	case ir.Switch:
		return lowerSwitch(env, n)
	case ir.Exit:
		return lowerExit(env, n)
	case ir.Catch:
		return lowerCatch(env, n)
	case ir.Try:
		return lowerTry(env, n)
	}
	return nil, nil, env, &UnsupportedError{What: fmt.Sprintf("expression %T", e)}
}

// lowerVar resolves a variable against locals first, then globals.
// A global function referenced in value position is materialized as a
// capture-free closure whose wrapper forwards to the direct function
// (the function itself keeps the plain calling convention).
func lowerVar(env Env, n ir.Var) (wasm.Instr, wasm.ValType, Env, error) {
	if slot, typ, ok := env.LookupLocal(n.Ident); ok {
		return wasm.LocalGet{Index: slot, Name: localName(n.Ident)}, typ, env, nil
	}
	if g, ok := env.LookupGlobal(n.Ident); ok {
		if g.arity < 0 {
			return wasm.Call{Func: g.funcName}, wasm.AnyRef(), env, nil
		}
		return materializeGlobal(env, g)
	}
	return nil, nil, env, &UnboundNameError{Ident: n.Ident}
}

// lowerIntConst boxes a 32-bit literal into the immediate representation.
func lowerIntConst(v int64) wasm.Instr {
	return wasm.RefI31{Value: wasm.I32Const{Value: int32(v)}}
}

// lowerStringConst builds a fixed-length byte array from the string's
// UTF-8 code units, element by element.
func lowerStringConst(env Env, s string) (wasm.Instr, wasm.ValType, Env, error) {
	env = env.EnsureArrayType(bytesTypeName, wasm.I32{}, false)
	elems := make([]wasm.Instr, len(s))
	for i := 0; i < len(s); i++ {
		elems[i] = wasm.I32Const{Value: int32(s[i])}
	}
	instr := wasm.ArrayNewFixed{Type: bytesTypeName, Elems: elems}
	return instr, wasm.NamedRef(bytesTypeName), env, nil
}

// unboxInt converts a value of the given type to a raw i32.
func unboxInt(x wasm.Instr, typ wasm.ValType) wasm.Instr {
	switch t := typ.(type) {
	case wasm.I32:
		return x
	case wasm.Ref:
		if t.Heap.Kind == wasm.HeapI31 {
			return wasm.I31GetS{Value: x}
		}
	}
	return wasm.I31GetS{Value: wasm.RefCast{Type: wasm.I31Ref(), Value: x}}
}

// asAny coerces a value to the universal reference type. Raw integers box
// as i31, raw floats box into the one-field float struct, references
// upcast implicitly. Float producers register the float type up front, so
// the struct.new here always targets a declared type.
func asAny(x wasm.Instr, typ wasm.ValType) wasm.Instr {
	switch typ.(type) {
	case wasm.I32:
		return wasm.RefI31{Value: x}
	case wasm.F64:
		return wasm.StructNew{Type: floatTypeName, Args: []wasm.Instr{x}}
	}
	return x
}

// asFloat coerces a value to a raw f64. Raw floats pass through, integers
// convert (unboxing first when i31-boxed), float boxes read their field
// directly, and an operand of unknown reference type is cast to the float
// box first.
func asFloat(x wasm.Instr, typ wasm.ValType) wasm.Instr {
	switch t := typ.(type) {
	case wasm.F64:
		return x
	case wasm.I32:
		return wasm.Unary{Op: wasm.F64ConvertI32S, X: x}
	case wasm.Ref:
		if t.Heap.Kind == wasm.HeapI31 {
			return wasm.Unary{Op: wasm.F64ConvertI32S, X: wasm.I31GetS{Value: x}}
		}
		if t.Heap.Kind == wasm.HeapNamed && t.Heap.Name == floatTypeName {
			return wasm.StructGet{Type: floatTypeName, Field: 0, Target: x}
		}
	}
	return wasm.StructGet{
		Type:   floatTypeName,
		Field:  0,
		Target: wasm.RefCast{Type: wasm.NamedRef(floatTypeName), Value: x},
	}
}

// blockOf wraps a statement prefix and a final value expression into one
// expression-shaped instruction.
func blockOf(result wasm.ValType, body ...wasm.Instr) wasm.Instr {
	return wasm.Block{Result: []wasm.ValType{result}, Body: body}
}

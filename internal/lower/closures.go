package lower

import (
	"fmt"

	"github.com/roach88/sable/internal/ir"
	"github.com/roach88/sable/internal/wasm"
)

func plainFuncTypeName(arity int) string {
	return fmt.Sprintf("fn.%d", arity)
}

// anyRefs returns n copies of the universal reference type.
func anyRefs(n int) []wasm.ValType {
	out := make([]wasm.ValType, n)
	for i := range out {
		out[i] = wasm.AnyRef()
	}
	return out
}

// ensureClosureFuncType registers the signature used to call closures of
// the given arity: the closure itself, then the arguments, all at the
// universal reference type.
func ensureClosureFuncType(env Env, arity int) Env {
	return env.EnsureFuncType(closureFuncTypeName(arity), anyRefs(arity+1), anyRefs(1))
}

// ensureClosureStructType registers the closure struct for a capture
// count: field 0 is the function slot (an untyped function reference,
// cast to the arity's signature at each call site), followed by one
// reference field per capture.
func ensureClosureStructType(env Env, captures int) Env {
	fields := make([]wasm.Field, captures+1)
	fields[0] = wasm.Field{Name: "fn", Type: wasm.Ref{Heap: wasm.HeapType{Kind: wasm.HeapFunc}}}
	for i := 0; i < captures; i++ {
		fields[i+1] = wasm.Field{Name: fmt.Sprintf("v%d", i), Type: wasm.AnyRef()}
	}
	return env.EnsureStructType(closureTypeName(captures), fields)
}

// lowerClosure compiles a function literal.
//
// With no captured variables the literal becomes a plain top-level
// function and the expression's value is a bare function reference — no
// closure struct is allocated. Otherwise a closure struct keyed by the
// capture count is registered, a wrapper function is emitted whose first
// parameter is the closure and whose prologue extracts each capture into
// a local, and the definition site allocates the struct with the
// wrapper's reference plus the current value of each capture. Capture
// order is binder-introduction (stamp) order, so layout is deterministic.
func lowerClosure(env Env, n ir.Func) (wasm.Instr, wasm.ValType, Env, error) {
	free := ir.FreeVars(n.Body)
	for _, p := range n.Params {
		free.Remove(p)
	}
	// Globals resolve directly; they are not captured.
	for _, id := range free.Sorted() {
		if _, _, ok := env.LookupLocal(id); !ok {
			if _, ok := env.LookupGlobal(id); ok {
				free.Remove(id)
			}
		}
	}
	captures := free.Sorted()

	name, env := env.freshLambdaName()

	if len(captures) == 0 {
		env2, err := lowerTopFunc(env, name, n.Params, n.Body)
		if err != nil {
			return nil, nil, env2, err
		}
		return wasm.RefFunc{Func: name}, wasm.Ref{Heap: wasm.HeapType{Kind: wasm.HeapFunc}}, env2, nil
	}

	cloType := closureTypeName(len(captures))
	env = ensureClosureStructType(env, len(captures))
	env = ensureClosureFuncType(env, len(n.Params))

	env, err := lowerWrapper(env, name, cloType, captures, n.Params, n.Body)
	if err != nil {
		return nil, nil, env, err
	}

	// Definition site: the wrapper's function reference plus the current
	// value of each captured identifier, read from whatever binding is
	// visible here.
	operands := make([]wasm.Instr, len(captures)+1)
	operands[0] = wasm.RefFunc{Func: name}
	for i, c := range captures {
		v, vt, env2, err := lowerVar(env, ir.Var{Ident: c})
		if err != nil {
			return nil, nil, env2, err
		}
		env = env2
		operands[i+1] = asAny(v, vt)
	}
	return wasm.StructNew{Type: cloType, Args: operands}, wasm.NamedRef(cloType), env, nil
}

// lowerWrapper emits the closure wrapper: first formal parameter is the
// closure struct (received at the universal type and cast once), and the
// prologue extracts each capture into a local via an indexed field read
// before the original body runs.
func lowerWrapper(env Env, name, cloType string, captures []ir.Ident, params []ir.Ident, body ir.Expr) (Env, error) {
	saved := env.frame

	envID, env := env.FreshIdent("env")
	wparams := make([]wasm.Local, len(params)+1)
	wparams[0] = wasm.Local{Name: localName(envID), Type: wasm.AnyRef()}
	for i, p := range params {
		wparams[i+1] = wasm.Local{Name: localName(p), Type: wasm.AnyRef()}
	}

	env = env.beginFrame(wparams)
	for i, p := range params {
		env = env.bindParam(p, i+1, wasm.AnyRef())
	}

	cloID, env := env.FreshIdent("clo")
	env, cloSlot := env.AllocateLocal(cloID, wasm.NamedRef(cloType))

	prologue := []wasm.Instr{
		wasm.LocalSet{Index: cloSlot, Name: localName(cloID), Value: wasm.RefCast{
			Type:  wasm.NamedRef(cloType),
			Value: wasm.LocalGet{Index: 0, Name: localName(envID)},
		}},
	}
	for i, c := range captures {
		var slot int
		env, slot = env.AllocateLocal(c, wasm.AnyRef())
		prologue = append(prologue, wasm.LocalSet{
			Index: slot,
			Name:  localName(c),
			Value: wasm.StructGet{
				Type:   cloType,
				Field:  i + 1,
				Target: wasm.LocalGet{Index: cloSlot, Name: localName(cloID)},
			},
		})
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
		Body:    append(prologue, asAny(bodyInstr, bodyType)),
	}
	env = env.endFrame(saved)
	return env.addFunc(fn), nil
}

// materializeGlobal wraps a registered top-level function into a
// capture-free closure value. The shim forwards to the direct function so
// the function itself keeps the plain calling convention; shims are
// emitted once per global.
func materializeGlobal(env Env, g globalFunc) (wasm.Instr, wasm.ValType, Env, error) {
	shim := g.funcName + ".clo"
	env = ensureClosureFuncType(env, g.arity)
	env = ensureClosureStructType(env, 0)

	if !env.hasFunc(shim) {
		params := make([]wasm.Local, g.arity+1)
		params[0] = wasm.Local{Name: "env", Type: wasm.AnyRef()}
		args := make([]wasm.Instr, g.arity)
		for i := 0; i < g.arity; i++ {
			params[i+1] = wasm.Local{Name: fmt.Sprintf("p%d", i), Type: wasm.AnyRef()}
			args[i] = wasm.LocalGet{Index: i + 1, Name: fmt.Sprintf("p%d", i)}
		}
		env = env.addFunc(wasm.Func{
			Name:    shim,
			Params:  params,
			Results: []wasm.ValType{wasm.AnyRef()},
			Body:    []wasm.Instr{wasm.Call{Func: g.funcName, Args: args}},
		})
	}

	instr := wasm.StructNew{
		Type: closureTypeName(0),
		Args: []wasm.Instr{wasm.RefFunc{Func: shim}},
	}
	return instr, wasm.NamedRef(closureTypeName(0)), env, nil
}

// lowerApply compiles a function application.
//
// A name known to be a registered top-level function with matching arity
// becomes a direct call, skipping closure machinery entirely. Everything
// else goes through an indirect call: the callee is evaluated once into a
// temporary, its function slot is extracted, cast to the arity's
// signature and invoked with the closure prepended to the argument list.
// The direct/indirect split is load-bearing for consumers that assert on
// instruction shape.
func lowerApply(env Env, n ir.Apply) (wasm.Instr, wasm.ValType, Env, error) {
	if v, ok := n.Fn.(ir.Var); ok {
		if _, _, local := env.LookupLocal(v.Ident); !local {
			if g, ok := env.LookupGlobal(v.Ident); ok && g.arity == len(n.Args) {
				return lowerDirectCall(env, g.funcName, n.Args)
			}
		}
	}
	return lowerIndirectCall(env, n.Fn, n.Args)
}

func lowerDirectCall(env Env, funcName string, args []ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	operands := make([]wasm.Instr, len(args))
	for i, a := range args {
		instr, typ, env2, err := lowerExpr(env, a)
		if err != nil {
			return nil, nil, env2, err
		}
		env = env2
		operands[i] = asAny(instr, typ)
	}
	return wasm.Call{Func: funcName, Args: operands}, wasm.AnyRef(), env, nil
}

func lowerIndirectCall(env Env, fn ir.Expr, args []ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	callee, calleeType, env, err := lowerExpr(env, fn)
	if err != nil {
		return nil, nil, env, err
	}

	operands := make([]wasm.Instr, len(args))
	for i, a := range args {
		instr, typ, env2, err := lowerExpr(env, a)
		if err != nil {
			return nil, nil, env2, err
		}
		env = env2
		operands[i] = asAny(instr, typ)
	}

	// A bare function reference (capture-free literal) is invoked without
	// closure machinery through the plain signature for its arity.
	if r, ok := calleeType.(wasm.Ref); ok && r.Heap.Kind == wasm.HeapFunc {
		ftName := plainFuncTypeName(len(args))
		env = env.EnsureFuncType(ftName, anyRefs(len(args)), anyRefs(1))
		instr := wasm.CallRef{
			Type: ftName,
			Fn:   wasm.RefCast{Type: wasm.NamedRef(ftName), Value: callee},
			Args: operands,
		}
		return instr, wasm.AnyRef(), env, nil
	}

	env = ensureClosureFuncType(env, len(args))
	env = ensureClosureStructType(env, 0)

	tmpID, env := env.FreshIdent("clo")
	env, tmp := env.AllocateLocal(tmpID, wasm.AnyRef())

	// The function slot is extracted through the capture-count-0 shape;
	// like record field access, this resolves against a fixed type name
	// because the callee's capture count is not statically tracked.
	slotGet := wasm.StructGet{
		Type:  closureTypeName(0),
		Field: 0,
		Target: wasm.RefCast{
			Type:  wasm.NamedRef(closureTypeName(0)),
			Value: wasm.LocalGet{Index: tmp, Name: localName(tmpID)},
		},
	}

	ftName := closureFuncTypeName(len(args))
	callArgs := make([]wasm.Instr, 0, len(args)+1)
	callArgs = append(callArgs, wasm.LocalGet{Index: tmp, Name: localName(tmpID)})
	callArgs = append(callArgs, operands...)

	instr := blockOf(wasm.AnyRef(),
		wasm.LocalSet{Index: tmp, Name: localName(tmpID), Value: asAny(callee, calleeType)},
		wasm.CallRef{
			Type: ftName,
			Fn:   wasm.RefCast{Type: wasm.NamedRef(ftName), Value: slotGet},
			Args: callArgs,
		},
	)
	return instr, wasm.AnyRef(), env, nil
}

package lower

import (
	"fmt"

	"github.com/roach88/sable/internal/ir"
	"github.com/roach88/sable/internal/wasm"
)

// localBinding maps one binder stamp to its slot in the current function.
type localBinding struct {
	id   ir.Ident
	slot int
	typ  wasm.ValType
}

// scope is one lexical scope of the current function.
type scope struct {
	vars []localBinding
}

// globalFunc is a registered top-level function.
type globalFunc struct {
	id       ir.Ident
	funcName string
	arity    int // -1 for value thunks (nullary)
}

// frame is the per-function portion of the environment. Entering a
// function body (top level, closure wrapper, handler-free helper) swaps in
// a fresh frame and restores the enclosing one afterwards.
type frame struct {
	scopes   []scope
	params   []wasm.Local
	locals   []wasm.Local
	nextSlot int
}

// Env is an immutable snapshot of everything lowering needs: the lexical
// scope stack of the current function, the registered globals, the type
// registry, the functions and imports emitted so far, and the fresh-name
// counters. Operations return a new Env; callers thread the result.
//
// Slices are copied on extension, so two Envs derived from a common
// ancestor never observe each other's growth.
type Env struct {
	frame frame

	globals   []globalFunc
	structs   []wasm.StructType
	arrays    []wasm.ArrayType
	funcTypes []wasm.FuncType
	imports   []wasm.Import
	funcs     []wasm.Func
	exports   []wasm.Export

	// Fresh-name counters. Carried in the Env rather than a package
	// global so a compilation is reproducible from its inputs alone.
	nextStamp  int
	nextLambda int
}

// NewEnv returns an empty environment whose stamp counter starts above
// every front-end stamp in use.
func NewEnv(namer ir.Namer) Env {
	stamp, _ := namer.Fresh("")
	return Env{nextStamp: stamp.Stamp}
}

func copyAppend[T any](xs []T, more ...T) []T {
	out := make([]T, len(xs), len(xs)+len(more))
	copy(out, xs)
	return append(out, more...)
}

// FreshIdent allocates a compiler-introduced ident (temporaries, loop
// limits, closure environments).
func (e Env) FreshIdent(name string) (ir.Ident, Env) {
	id := ir.Ident{Name: name, Stamp: e.nextStamp}
	e.nextStamp++
	return id, e
}

// freshLambdaName allocates a synthetic function name for a closure
// wrapper or anonymous function.
func (e Env) freshLambdaName() (string, Env) {
	name := fmt.Sprintf("lambda.%d", e.nextLambda)
	e.nextLambda++
	return name, e
}

// freshLabel allocates a block label unique within the compilation unit.
func (e Env) freshLabel(prefix string) (string, Env) {
	label := fmt.Sprintf("%s.%d", prefix, e.nextStamp)
	e.nextStamp++
	return label, e
}

// hasFunc reports whether a function with the given name has been emitted.
func (e Env) hasFunc(name string) bool {
	for _, fn := range e.funcs {
		if fn.Name == name {
			return true
		}
	}
	return false
}

// EnterScope opens a nested lexical scope in the current function.
func (e Env) EnterScope() Env {
	e.frame.scopes = copyAppend(e.frame.scopes, scope{})
	return e
}

// ExitScope closes the innermost scope. Locals declared inside keep their
// slots (slot indices are per-function) but become invisible.
func (e Env) ExitScope() Env {
	e.frame.scopes = e.frame.scopes[:len(e.frame.scopes)-1]
	return e
}

// beginFrame swaps in a fresh per-function frame whose parameters occupy
// the first slots. The caller keeps the old frame and restores it with
// endFrame.
func (e Env) beginFrame(params []wasm.Local) Env {
	e.frame = frame{
		params:   params,
		nextSlot: len(params),
	}
	e = e.EnterScope()
	return e
}

// endFrame restores the enclosing function's frame.
func (e Env) endFrame(saved frame) Env {
	e.frame = saved
	return e
}

// AllocateLocal appends a fresh local slot for id in the innermost scope
// and returns its index. Indices are sequential per function, counting
// parameters first. Allocation never fails.
func (e Env) AllocateLocal(id ir.Ident, typ wasm.ValType) (Env, int) {
	slot := e.frame.nextSlot
	e.frame.nextSlot++
	e.frame.locals = copyAppend(e.frame.locals, wasm.Local{
		Name: localName(id),
		Type: typ,
	})
	last := len(e.frame.scopes) - 1
	scopes := copyAppend(e.frame.scopes[:last], scope{
		vars: copyAppend(e.frame.scopes[last].vars, localBinding{id: id, slot: slot, typ: typ}),
	})
	e.frame.scopes = scopes
	return e, slot
}

// bindParam records that id is bound to parameter slot.
func (e Env) bindParam(id ir.Ident, slot int, typ wasm.ValType) Env {
	last := len(e.frame.scopes) - 1
	scopes := copyAppend(e.frame.scopes[:last], scope{
		vars: copyAppend(e.frame.scopes[last].vars, localBinding{id: id, slot: slot, typ: typ}),
	})
	e.frame.scopes = scopes
	return e
}

// LookupLocal resolves id against the scope stack, innermost first.
// It reports not-found instead of failing; the caller decides whether an
// unresolved name is an error.
func (e Env) LookupLocal(id ir.Ident) (int, wasm.ValType, bool) {
	for i := len(e.frame.scopes) - 1; i >= 0; i-- {
		vars := e.frame.scopes[i].vars
		for j := len(vars) - 1; j >= 0; j-- {
			if vars[j].id.Stamp == id.Stamp {
				return vars[j].slot, vars[j].typ, true
			}
		}
	}
	return 0, nil, false
}

// LookupGlobal resolves id against the registered top-level functions.
func (e Env) LookupGlobal(id ir.Ident) (globalFunc, bool) {
	for i := len(e.globals) - 1; i >= 0; i-- {
		if e.globals[i].id.Stamp == id.Stamp {
			return e.globals[i], true
		}
	}
	return globalFunc{}, false
}

// registerGlobal records a top-level function before its body is lowered,
// so the body can call it directly (self-recursion).
func (e Env) registerGlobal(id ir.Ident, funcName string, arity int) Env {
	e.globals = copyAppend(e.globals, globalFunc{id: id, funcName: funcName, arity: arity})
	return e
}

// EnsureStructType registers a struct type definition under its name if
// absent. Idempotent: for all (kind, key) pairs at most one definition is
// ever emitted, and re-ensuring an existing key returns the Env unchanged.
func (e Env) EnsureStructType(name string, fields []wasm.Field) Env {
	for _, st := range e.structs {
		if st.Name == name {
			return e
		}
	}
	e.structs = copyAppend(e.structs, wasm.StructType{Name: name, Fields: fields})
	return e
}

// EnsureArrayType registers an array type definition if absent.
func (e Env) EnsureArrayType(name string, elem wasm.ValType, mutable bool) Env {
	for _, at := range e.arrays {
		if at.Name == name {
			return e
		}
	}
	e.arrays = copyAppend(e.arrays, wasm.ArrayType{Name: name, Elem: elem, Mutable: mutable})
	return e
}

// EnsureFuncType registers a function signature type if absent.
func (e Env) EnsureFuncType(name string, params, results []wasm.ValType) Env {
	for _, ft := range e.funcTypes {
		if ft.Name == name {
			return e
		}
	}
	e.funcTypes = copyAppend(e.funcTypes, wasm.FuncType{Name: name, Params: params, Results: results})
	return e
}

// EnsureImport registers a host import keyed by alias if absent.
func (e Env) EnsureImport(module, name, alias string, params, results []wasm.ValType) Env {
	for _, imp := range e.imports {
		if imp.Alias == alias {
			return e
		}
	}
	e.imports = copyAppend(e.imports, wasm.Import{
		Module: module, Name: name, Alias: alias,
		Params: params, Results: results,
	})
	return e
}

// addFunc appends a completed function definition.
func (e Env) addFunc(fn wasm.Func) Env {
	e.funcs = copyAppend(e.funcs, fn)
	return e
}

// addExport appends an export record.
func (e Env) addExport(name, funcName string) Env {
	e.exports = copyAppend(e.exports, wasm.Export{Name: name, Func: funcName})
	return e
}

// Module assembles the terminal artifact from everything registered.
func (e Env) Module() *wasm.Module {
	return &wasm.Module{
		Structs:   e.structs,
		Arrays:    e.arrays,
		FuncTypes: e.funcTypes,
		Imports:   e.imports,
		Funcs:     e.funcs,
		Exports:   e.exports,
	}
}

// localName renders an ident as a target-local symbol.
func localName(id ir.Ident) string {
	if id.Name == "" {
		return fmt.Sprintf("t%d", id.Stamp)
	}
	return fmt.Sprintf("%s.%d", id.Name, id.Stamp)
}

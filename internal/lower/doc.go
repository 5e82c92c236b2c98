// Package lower is the compiler core: it transforms IR expression trees
// into a wasm.Module.
//
// The engine is a pure fold. Every lowering step consumes an Env value and
// returns an updated Env alongside its result; there is no shared mutable
// state anywhere in the pipeline, including the fresh-name counters, which
// live inside the Env. Type definitions (block structs, closure structs,
// array types, function signatures) are registered in the Env's registry
// and deduplicated by structural key, so a given (kind, key) pair is
// emitted at most once per compilation unit.
//
// Failure is always fatal: an unbound name, a primitive arity violation or
// an unsupported construct aborts the whole unit with a typed error.
package lower

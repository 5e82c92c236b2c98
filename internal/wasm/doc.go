// Package wasm models the compilation target: a WebAssembly module using
// the GC extension (struct and array types, i31 references, typed function
// references).
//
// The model is a plain value: type definitions, function bodies holding
// structured instruction trees, and export records. A Module is built once
// by the lowering engine, optionally rewritten by the optimizer, and then
// rendered by the emitters. Nothing in this package performs I/O or
// encoding; it is shared vocabulary between lowering and emission.
package wasm

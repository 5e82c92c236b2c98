// Package ir defines the compiler's input language: an explicitly-typed,
// stamp-resolved expression tree produced by an external front-end.
//
// The IR is immutable. Identifiers carry a globally unique integer stamp;
// stamps, not names, disambiguate shadowed bindings and drive free-variable
// analysis. All expression variants implement the sealed Expr interface, so
// a switch over Expr is exhaustive by construction.
//
// The package also provides structural validation (unbound names, primitive
// arity) and canonical hashing used to key the compiled-artifact cache.
package ir

package wasm

import "fmt"

// ValType is the sealed interface over target value types.
// Only I32, F64 and Ref implement it.
type ValType interface {
	valType()
	String() string
}

// I32 is the raw 32-bit integer type.
type I32 struct{}

func (I32) valType() {}

func (I32) String() string { return "i32" }

// F64 is the raw 64-bit float type.
type F64 struct{}

func (F64) valType() {}

func (F64) String() string { return "f64" }

// HeapKind selects the heap type a reference points into.
type HeapKind int

const (
	// HeapAny is the top of the reference hierarchy.
	HeapAny HeapKind = iota
	// HeapI31 is the unboxed-scalar reference type.
	HeapI31
	// HeapFunc is the untyped function reference type.
	HeapFunc
	// HeapNamed references a declared struct, array or function type.
	HeapNamed
)

// HeapType is a heap type, possibly naming a declared type.
type HeapType struct {
	Kind HeapKind
	Name string // HeapNamed only
}

func (h HeapType) String() string {
	switch h.Kind {
	case HeapAny:
		return "any"
	case HeapI31:
		return "i31"
	case HeapFunc:
		return "func"
	case HeapNamed:
		return "$" + h.Name
	}
	return fmt.Sprintf("heap(%d)", int(h.Kind))
}

// Ref is a reference value type.
type Ref struct {
	Heap     HeapType
	Nullable bool
}

func (Ref) valType() {}

func (r Ref) String() string {
	if r.Nullable {
		return fmt.Sprintf("(ref null %s)", r.Heap)
	}
	return fmt.Sprintf("(ref %s)", r.Heap)
}

// AnyRef is the universal (top, nullable) reference type. Every IR value
// is representable at this type.
func AnyRef() Ref {
	return Ref{Heap: HeapType{Kind: HeapAny}, Nullable: true}
}

// I31Ref is the non-null boxed-small-integer reference type.
func I31Ref() Ref {
	return Ref{Heap: HeapType{Kind: HeapI31}}
}

// NamedRef is a non-null reference to a declared type.
func NamedRef(name string) Ref {
	return Ref{Heap: HeapType{Kind: HeapNamed, Name: name}}
}

// NullableRef is a nullable reference to a declared type.
func NullableRef(name string) Ref {
	return Ref{Heap: HeapType{Kind: HeapNamed, Name: name}, Nullable: true}
}

// SameType reports whether two value types are identical.
func SameType(a, b ValType) bool {
	switch x := a.(type) {
	case I32:
		_, ok := b.(I32)
		return ok
	case F64:
		_, ok := b.(F64)
		return ok
	case Ref:
		y, ok := b.(Ref)
		return ok && x == y
	}
	return false
}

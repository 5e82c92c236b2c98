package wasm

// Field is one field of a declared struct type.
type Field struct {
	Name    string
	Type    ValType
	Mutable bool
}

// StructType is a named struct type definition.
type StructType struct {
	Name   string
	Fields []Field
}

// ArrayType is a named array type definition.
type ArrayType struct {
	Name    string
	Elem    ValType
	Mutable bool
}

// FuncType is a named function signature, used for typed function
// references (closure function slots and call_ref).
type FuncType struct {
	Name    string
	Params  []ValType
	Results []ValType
}

// Import is a function imported from the host, called through Alias.
type Import struct {
	Module  string
	Name    string
	Alias   string
	Params  []ValType
	Results []ValType
}

// Local is a declared local variable or parameter of a function.
type Local struct {
	Name string
	Type ValType
}

// Func is a function definition.
type Func struct {
	Name    string
	Params  []Local
	Results []ValType
	Locals  []Local
	Body    []Instr
}

// Export names a function visible to the host.
type Export struct {
	Name string
	Func string
}

// Module is the terminal compilation artifact: every declared type, every
// function, every export, in emission order. It is built once per
// compilation unit and never mutated after it leaves the optimizer; the
// textual and binary emitters are two renderings of this one value.
type Module struct {
	Structs   []StructType
	Arrays    []ArrayType
	FuncTypes []FuncType
	Imports   []Import
	Funcs     []Func
	Exports   []Export
}

// FuncIndex returns the call index of a function, counting imports first,
// matching the index space of the binary format.
func (m *Module) FuncIndex(name string) (int, bool) {
	for i, imp := range m.Imports {
		if imp.Alias == name {
			return i, true
		}
	}
	for i, fn := range m.Funcs {
		if fn.Name == name {
			return len(m.Imports) + i, true
		}
	}
	return 0, false
}

// TypeIndex returns the index of a declared type in the type section,
// which lays out structs, then arrays, then function types.
func (m *Module) TypeIndex(name string) (int, bool) {
	for i, st := range m.Structs {
		if st.Name == name {
			return i, true
		}
	}
	for i, at := range m.Arrays {
		if at.Name == name {
			return len(m.Structs) + i, true
		}
	}
	for i, ft := range m.FuncTypes {
		if ft.Name == name {
			return len(m.Structs) + len(m.Arrays) + i, true
		}
	}
	return 0, false
}

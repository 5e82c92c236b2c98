package wasm

// Instr is the sealed interface over target instructions. Instructions are
// expression-shaped: operands are child trees, and emitters flatten to
// stack order (children first). Only types in this package implement it.
type Instr interface {
	instr()
}

// I32Const pushes a raw 32-bit integer literal.
type I32Const struct {
	Value int32
}

func (I32Const) instr() {}

// F64Const pushes a raw 64-bit float literal.
type F64Const struct {
	Value float64
}

func (F64Const) instr() {}

// BinOp enumerates the two-operand numeric instructions.
type BinOp int

const (
	I32Add BinOp = iota
	I32Sub
	I32Mul
	I32DivS
	I32RemS
	I32Eq
	I32Ne
	I32LtS
	I32GtS
	I32LeS
	I32GeS
	F64Add
	F64Sub
	F64Mul
	F64Div
	F64Eq
	F64Ne
	F64Lt
	F64Gt
	F64Le
	F64Ge
)

// Mnemonic returns the textual-format spelling of the operator.
func (op BinOp) Mnemonic() string {
	switch op {
	case I32Add:
		return "i32.add"
	case I32Sub:
		return "i32.sub"
	case I32Mul:
		return "i32.mul"
	case I32DivS:
		return "i32.div_s"
	case I32RemS:
		return "i32.rem_s"
	case I32Eq:
		return "i32.eq"
	case I32Ne:
		return "i32.ne"
	case I32LtS:
		return "i32.lt_s"
	case I32GtS:
		return "i32.gt_s"
	case I32LeS:
		return "i32.le_s"
	case I32GeS:
		return "i32.ge_s"
	case F64Add:
		return "f64.add"
	case F64Sub:
		return "f64.sub"
	case F64Mul:
		return "f64.mul"
	case F64Div:
		return "f64.div"
	case F64Eq:
		return "f64.eq"
	case F64Ne:
		return "f64.ne"
	case F64Lt:
		return "f64.lt"
	case F64Gt:
		return "f64.gt"
	case F64Le:
		return "f64.le"
	case F64Ge:
		return "f64.ge"
	}
	return "binop?"
}

// Binary applies a two-operand numeric instruction.
type Binary struct {
	Op BinOp
	L  Instr
	R  Instr
}

func (Binary) instr() {}

// UnOp enumerates the one-operand numeric instructions.
type UnOp int

const (
	F64Neg UnOp = iota
	// I32TruncSatF64S converts f64 to i32, saturating instead of
	// trapping on out-of-range input.
	I32TruncSatF64S
	F64ConvertI32S
	// I32Eqz tests a raw i32 for zero.
	I32Eqz
)

// Mnemonic returns the textual-format spelling of the operator.
func (op UnOp) Mnemonic() string {
	switch op {
	case F64Neg:
		return "f64.neg"
	case I32TruncSatF64S:
		return "i32.trunc_sat_f64_s"
	case F64ConvertI32S:
		return "f64.convert_i32_s"
	case I32Eqz:
		return "i32.eqz"
	}
	return "unop?"
}

// Unary applies a one-operand numeric instruction.
type Unary struct {
	Op UnOp
	X  Instr
}

func (Unary) instr() {}

// LocalGet reads a local variable or parameter.
type LocalGet struct {
	Index int
	Name  string
}

func (LocalGet) instr() {}

// LocalSet writes a local variable.
type LocalSet struct {
	Index int
	Name  string
	Value Instr
}

func (LocalSet) instr() {}

// Drop evaluates its operand and discards the result.
type Drop struct {
	Value Instr
}

func (Drop) instr() {}

// If is a structured conditional over a raw i32 guard.
type If struct {
	Result []ValType // empty for no result
	Cond   Instr
	Then   []Instr
	Else   []Instr
}

func (If) instr() {}

// Block is a labeled block; Br to its label exits past it.
type Block struct {
	Label  string
	Result []ValType
	Body   []Instr
}

func (Block) instr() {}

// Loop is a labeled loop; Br to its label is the back edge.
type Loop struct {
	Label string
	Body  []Instr
}

func (Loop) instr() {}

// Br branches unconditionally to a labeled block or loop. Value, when
// non-nil, is the result carried to a block with a result type.
type Br struct {
	Label string
	Value Instr
}

func (Br) instr() {}

// BrIf branches to a label when the guard is non-zero.
type BrIf struct {
	Label string
	Cond  Instr
}

func (BrIf) instr() {}

// Return returns from the current function. Value may be nil for
// functions without results.
type Return struct {
	Value Instr
}

func (Return) instr() {}

// Unreachable traps.
type Unreachable struct{}

func (Unreachable) instr() {}

// Call is a direct call to a defined or imported function.
type Call struct {
	Func string
	Args []Instr
}

func (Call) instr() {}

// CallRef is an indirect call through a typed function reference.
type CallRef struct {
	Type string // declared FuncType name
	Fn   Instr
	Args []Instr
}

func (CallRef) instr() {}

// RefFunc pushes a reference to a defined function.
type RefFunc struct {
	Func string
}

func (RefFunc) instr() {}

// RefI31 boxes a raw i32 into an i31 reference.
type RefI31 struct {
	Value Instr
}

func (RefI31) instr() {}

// I31GetS unboxes an i31 reference to a sign-extended raw i32.
type I31GetS struct {
	Value Instr
}

func (I31GetS) instr() {}

// RefTest tests whether a reference is of a given heap type, pushing a
// raw 0/1.
type RefTest struct {
	Heap  HeapType
	Value Instr
}

func (RefTest) instr() {}

// RefCast downcasts a reference to a declared type, trapping on failure.
type RefCast struct {
	Type  Ref
	Value Instr
}

func (RefCast) instr() {}

// StructNew allocates a declared struct type with one operand per field.
type StructNew struct {
	Type string
	Args []Instr
}

func (StructNew) instr() {}

// StructGet reads one field of a declared struct type.
type StructGet struct {
	Type   string
	Field  int
	Target Instr
}

func (StructGet) instr() {}

// StructSet writes one field of a declared struct type.
type StructSet struct {
	Type   string
	Field  int
	Target Instr
	Value  Instr
}

func (StructSet) instr() {}

// ArrayNewFixed allocates a declared array type from fixed elements.
type ArrayNewFixed struct {
	Type  string
	Elems []Instr
}

func (ArrayNewFixed) instr() {}

// ArrayNew allocates a declared array type of a runtime length, with
// every element set to the given initial value.
type ArrayNew struct {
	Type string
	Elem Instr
	Len  Instr
}

func (ArrayNew) instr() {}

// ArrayGet reads one element of a declared array type.
type ArrayGet struct {
	Type   string
	Target Instr
	Index  Instr
}

func (ArrayGet) instr() {}

// ArraySet writes one element of a declared array type.
type ArraySet struct {
	Type   string
	Target Instr
	Index  Instr
	Value  Instr
}

func (ArraySet) instr() {}

// ArrayLen reads the length of an array reference.
type ArrayLen struct {
	Target Instr
}

func (ArrayLen) instr() {}

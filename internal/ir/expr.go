package ir

// Expr is the sealed interface over all IR expression variants.
// Only types in this package implement it.
type Expr interface {
	expr() // Sealed - only these types implement it
}

// IntConst is an integer literal. The target representation is a boxed
// 32-bit value, so the useful range is that of int32; the front-end is
// responsible for range checking.
type IntConst struct {
	Value int64
}

func (IntConst) expr() {}

// FloatConst is a 64-bit float literal.
type FloatConst struct {
	Value float64
}

func (FloatConst) expr() {}

// BoolConst is a boolean literal, represented as a boxed 0/1 at the target.
type BoolConst struct {
	Value bool
}

func (BoolConst) expr() {}

// StringConst is an immutable string literal, lowered to a fixed-length
// byte array of its UTF-8 code units.
type StringConst struct {
	Value string
}

func (StringConst) expr() {}

// Var is a reference to a binder or a top-level name. References that
// resolve to neither are a compile-time error.
type Var struct {
	Ident Ident
}

func (Var) expr() {}

// Apply is a function application. Fn may be a Var naming a top-level
// function (direct call) or an arbitrary closure-valued expression
// (indirect call through the closure's function slot).
type Apply struct {
	Fn   Expr
	Args []Expr
}

func (Apply) expr() {}

// Func is a function literal. Closure conversion decides whether it
// becomes a plain top-level function or a closure struct.
type Func struct {
	Params []Ident
	Body   Expr
}

func (Func) expr() {}

// LetKind distinguishes the binding disciplines of Let.
type LetKind int

const (
	// LetStrict evaluates the bound value exactly once, before the body.
	LetStrict LetKind = iota
	// LetAlias binds a pure value; semantically identical to LetStrict
	// here since the engine does not reorder evaluation.
	LetAlias
	// LetVariable introduces a mutable slot (assigned via Assign).
	LetVariable
)

// Let binds one name over a body.
type Let struct {
	Kind  LetKind
	Name  Ident
	Value Expr
	Body  Expr
}

func (Let) expr() {}

// Assign overwrites the slot of a LetVariable binding (or a For binder is
// never assignable; validation rejects that upstream).
type Assign struct {
	Name  Ident
	Value Expr
}

func (Assign) expr() {}

// Binding is one (name, value) pair of a LetRec or of a top-level program.
type Binding struct {
	Name  Ident
	Value Expr
}

// LetRec introduces recursive bindings. Bindings are lowered sequentially:
// each value sees the names of the bindings before it (and top-level
// functions can call themselves through their registered global name), but
// true mutual recursion between closure values is not supported.
type LetRec struct {
	Bindings []Binding
	Body     Expr
}

func (LetRec) expr() {}

// Prim applies a primitive operator to its operands. Operand count must
// match the operator's arity contract.
type Prim struct {
	Op   Primitive
	Args []Expr
}

func (Prim) expr() {}

// If is a two-armed conditional over a boxed-boolean guard.
type If struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (If) expr() {}

// Seq evaluates First for effect, discards it, then evaluates Then.
type Seq struct {
	First Expr
	Then  Expr
}

func (Seq) expr() {}

// Direction is the iteration direction of a For loop.
type Direction int

const (
	// Upto counts from From up to and including To.
	Upto Direction = iota
	// Downto counts from From down to and including To.
	Downto
)

// For is a bounded loop with an inclusive limit.
type For struct {
	Var  Ident
	From Expr
	To   Expr
	Dir  Direction
	Body Expr
}

func (For) expr() {}

// SwitchCase is one arm of a Switch, selected when the scrutinee's
// immediate value or block tag equals Tag.
type SwitchCase struct {
	Tag  int
	Body Expr
}

// Switch dispatches on a variant value: Consts match immediate (unboxed
// small integer) values, Blocks match heap block tags. Branches are tried
// in declaration order and the first matching tag wins; Default (which may
// be nil only when the cases are exhaustive) fires when nothing matches.
type Switch struct {
	Scrutinee Expr
	Consts    []SwitchCase
	Blocks    []SwitchCase
	Default   Expr
}

func (Switch) expr() {}

// Exit is a static non-local exit to the enclosing Catch with the same
// label. Argument values are accepted but not threaded to the handler;
// see the lowering notes.
type Exit struct {
	Label int
	Args  []Expr
}

func (Exit) expr() {}

// Catch runs Body; if Body performs Exit with a matching Label, control
// transfers to Handler with Params in scope.
type Catch struct {
	Body    Expr
	Label   int
	Params  []Ident
	Handler Expr
}

func (Catch) expr() {}

// Try runs Body; on an exception, Handler runs with Param bound to the
// exception value. Only the structural shape is compiled; see the
// lowering notes on exception semantics.
type Try struct {
	Body    Expr
	Param   Ident
	Handler Expr
}

func (Try) expr() {}

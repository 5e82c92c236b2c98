package ir

import "fmt"

// Validation error codes (E100-E199)
const (
	ErrUnboundName     = "E100" // variable resolves to no binder or global
	ErrArityMismatch   = "E101" // primitive applied to wrong operand count
	ErrDuplicateGlobal = "E102" // two top-level bindings share a name
	ErrAssignImmutable = "E103" // assignment to a non-variable binding
	ErrEmptySwitch     = "E104" // switch with no cases and no default
)

// ValidationError represents one structural defect of an IR program.
type ValidationError struct {
	Code    string `json:"code"`
	Where   string `json:"where"` // top-level binding name
	Message string `json:"message"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Where, e.Message)
}

// Program is a compilation unit: ordered top-level bindings.
type Program struct {
	Name     string
	Bindings []Binding
}

// Validate checks a program structurally and returns all errors found
// (does not fail-fast). The lowering engine re-checks the same conditions
// fatally; Validate exists so tooling can report every defect at once.
//
// Top-level visibility is sequential, matching the engine: a binding's
// value sees its own name (self-recursion) and the names bound before it,
// never later ones.
func Validate(p Program) []ValidationError {
	var errs []ValidationError

	globals := make(IdentSet)
	seen := make(map[string]bool)
	bound := make(IdentSet)
	for _, b := range p.Bindings {
		if seen[b.Name.Name] {
			errs = append(errs, ValidationError{
				Code:    ErrDuplicateGlobal,
				Where:   b.Name.Name,
				Message: fmt.Sprintf("top-level name %q bound more than once", b.Name.Name),
			})
		}
		seen[b.Name.Name] = true
		// Registered before its value is checked, so a top-level
		// function can refer to itself.
		globals.Add(b.Name)

		v := &validator{where: b.Name.Name, globals: globals}
		v.check(b.Value, bound)
		errs = append(errs, v.errs...)
	}
	return errs
}

type validator struct {
	where   string
	globals IdentSet
	errs    []ValidationError
}

func (v *validator) errorf(code, format string, args ...any) {
	v.errs = append(v.errs, ValidationError{
		Code:    code,
		Where:   v.where,
		Message: fmt.Sprintf(format, args...),
	})
}

// check walks e with bound holding the binders currently in scope.
// bound is treated as immutable: child scopes get extended copies.
func (v *validator) check(e Expr, bound IdentSet) {
	switch n := e.(type) {
	case IntConst, FloatConst, BoolConst, StringConst:
	case Var:
		if !bound.Contains(n.Ident) && !v.globals.Contains(n.Ident) {
			v.errorf(ErrUnboundName, "unbound variable %s", n.Ident)
		}
	case Apply:
		v.check(n.Fn, bound)
		for _, a := range n.Args {
			v.check(a, bound)
		}
	case Func:
		v.check(n.Body, extend(bound, n.Params...))
	case Let:
		v.check(n.Value, bound)
		v.check(n.Body, extend(bound, n.Name))
	case Assign:
		if !bound.Contains(n.Name) {
			v.errorf(ErrUnboundName, "assignment to unbound variable %s", n.Name)
		}
		v.check(n.Value, bound)
	case LetRec:
		names := make([]Ident, len(n.Bindings))
		for i, b := range n.Bindings {
			names[i] = b.Name
		}
		inner := extend(bound, names...)
		for _, b := range n.Bindings {
			v.check(b.Value, inner)
		}
		v.check(n.Body, inner)
	case Prim:
		if want := n.Op.ArityOf(); len(n.Args) != want {
			v.errorf(ErrArityMismatch, "primitive %s expects %d operands, got %d",
				n.Op, want, len(n.Args))
		}
		for _, a := range n.Args {
			v.check(a, bound)
		}
	case If:
		v.check(n.Cond, bound)
		v.check(n.Then, bound)
		v.check(n.Else, bound)
	case Seq:
		v.check(n.First, bound)
		v.check(n.Then, bound)
	case For:
		v.check(n.From, bound)
		v.check(n.To, bound)
		v.check(n.Body, extend(bound, n.Var))
	case Switch:
		if len(n.Consts) == 0 && len(n.Blocks) == 0 && n.Default == nil {
			v.errorf(ErrEmptySwitch, "switch with no cases and no default")
		}
		v.check(n.Scrutinee, bound)
		for _, c := range n.Consts {
			v.check(c.Body, bound)
		}
		for _, c := range n.Blocks {
			v.check(c.Body, bound)
		}
		if n.Default != nil {
			v.check(n.Default, bound)
		}
	case Exit:
		for _, a := range n.Args {
			v.check(a, bound)
		}
	case Catch:
		v.check(n.Body, bound)
		v.check(n.Handler, extend(bound, n.Params...))
	case Try:
		v.check(n.Body, bound)
		v.check(n.Handler, extend(bound, n.Param))
	}
}

func extend(bound IdentSet, ids ...Ident) IdentSet {
	out := make(IdentSet, len(bound)+len(ids))
	out.Union(bound)
	for _, id := range ids {
		out.Add(id)
	}
	return out
}

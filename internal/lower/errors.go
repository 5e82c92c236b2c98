package lower

import (
	"fmt"

	"github.com/roach88/sable/internal/ir"
)

// UnboundNameError reports a variable reference that resolves to neither
// an enclosing binder nor a registered top-level name.
type UnboundNameError struct {
	Ident ir.Ident
}

func (e *UnboundNameError) Error() string {
	return fmt.Sprintf("unbound variable %s", e.Ident)
}

// ArityError reports a primitive operator applied to the wrong number of
// operands.
type ArityError struct {
	Op   ir.Primitive
	Want int
	Got  int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("primitive %s expects %d operands, got %d", e.Op, e.Want, e.Got)
}

// UnsupportedError reports a construct the engine does not compile.
// It exists so limitations surface as explicit errors instead of silent
// miscompilation.
type UnsupportedError struct {
	What string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("not supported: %s", e.What)
}

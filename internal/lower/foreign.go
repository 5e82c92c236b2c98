package lower

import (
	"github.com/roach88/sable/internal/ir"
	"github.com/roach88/sable/internal/wasm"
)

// hostModule is the import namespace foreign calls resolve against.
const hostModule = "env"

// lowerForeignCall registers an import for the external name (once, keyed
// by its local alias) and emits a direct call through the alias. The
// foreign signature is uniform: arity reference parameters, one reference
// result.
func lowerForeignCall(env Env, op ir.Primitive, args []ir.Expr) (wasm.Instr, wasm.ValType, Env, error) {
	env = env.EnsureImport(hostModule, op.Name, op.Name, anyRefs(op.Arity), anyRefs(1))

	operands := make([]wasm.Instr, len(args))
	for i, a := range args {
		instr, typ, env2, err := lowerExpr(env, a)
		if err != nil {
			return nil, nil, env2, err
		}
		env = env2
		operands[i] = asAny(instr, typ)
	}
	return wasm.Call{Func: op.Name, Args: operands}, wasm.AnyRef(), env, nil
}

package optimize

import "github.com/roach88/sable/internal/wasm"

// simplifyNode applies algebraic identities that are valid for every
// operand value. It never touches division: x/1 is left alone so the
// rewrite set stays trivially trap-preserving.
func simplifyNode(in wasm.Instr) (wasm.Instr, bool) {
	switch n := in.(type) {
	case wasm.I31GetS:
		// Unboxing a fresh box cancels.
		if boxed, ok := n.Value.(wasm.RefI31); ok {
			return boxed.Value, true
		}

	case wasm.StructGet:
		// Reading the only field of a fresh single-field struct cancels
		// the allocation the same way i31 unboxing does.
		if boxed, ok := n.Target.(wasm.StructNew); ok &&
			boxed.Type == n.Type && n.Field == 0 && len(boxed.Args) == 1 {
			return boxed.Args[0], true
		}

	case wasm.Binary:
		switch n.Op {
		case wasm.I32Add:
			if isI32(n.L, 0) {
				return n.R, true
			}
			if isI32(n.R, 0) {
				return n.L, true
			}
		case wasm.I32Sub:
			if isI32(n.R, 0) {
				return n.L, true
			}
		case wasm.I32Mul:
			if isI32(n.L, 1) {
				return n.R, true
			}
			if isI32(n.R, 1) {
				return n.L, true
			}
		case wasm.F64Add:
			// 0.0 + x is not an identity (-0.0 + 0.0 = 0.0), so only
			// exact additive neutrality on the right is rewritten when
			// the other side is known not to be -0.0. Skipped entirely.
		case wasm.F64Mul:
			if isF64(n.L, 1) {
				return n.R, true
			}
			if isF64(n.R, 1) {
				return n.L, true
			}
		}

	case wasm.If:
		// A literal guard selects its arm.
		if c, ok := n.Cond.(wasm.I32Const); ok {
			arm := n.Then
			if c.Value == 0 {
				arm = n.Else
			}
			if len(arm) == 1 {
				return arm[0], true
			}
			return wasm.Block{Result: n.Result, Body: arm}, true
		}

	case wasm.Unary:
		if n.Op == wasm.I32Eqz {
			if c, ok := n.X.(wasm.I32Const); ok {
				return boolConst(c.Value == 0), true
			}
		}
	}

	return in, false
}

func isI32(in wasm.Instr, v int32) bool {
	c, ok := in.(wasm.I32Const)
	return ok && c.Value == v
}

func isF64(in wasm.Instr, v float64) bool {
	c, ok := in.(wasm.F64Const)
	return ok && c.Value == v
}

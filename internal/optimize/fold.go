package optimize

import "github.com/roach88/sable/internal/wasm"

// foldNode evaluates arithmetic whose operands are literal. Integer
// results wrap at 32 bits, matching what the target would compute.
func foldNode(in wasm.Instr) (wasm.Instr, bool) {
	bin, ok := in.(wasm.Binary)
	if !ok {
		return in, false
	}

	if l, ok := bin.L.(wasm.I32Const); ok {
		if r, ok := bin.R.(wasm.I32Const); ok {
			switch bin.Op {
			case wasm.I32Add:
				return wasm.I32Const{Value: l.Value + r.Value}, true
			case wasm.I32Sub:
				return wasm.I32Const{Value: l.Value - r.Value}, true
			case wasm.I32Mul:
				return wasm.I32Const{Value: l.Value * r.Value}, true
			case wasm.I32Eq:
				return boolConst(l.Value == r.Value), true
			case wasm.I32Ne:
				return boolConst(l.Value != r.Value), true
			case wasm.I32LtS:
				return boolConst(l.Value < r.Value), true
			case wasm.I32LeS:
				return boolConst(l.Value <= r.Value), true
			case wasm.I32GtS:
				return boolConst(l.Value > r.Value), true
			case wasm.I32GeS:
				return boolConst(l.Value >= r.Value), true
			}
			// Division and remainder are left alone: a literal zero
			// divisor must keep its trap.
		}
	}

	if l, ok := bin.L.(wasm.F64Const); ok {
		if r, ok := bin.R.(wasm.F64Const); ok {
			switch bin.Op {
			case wasm.F64Add:
				return wasm.F64Const{Value: l.Value + r.Value}, true
			case wasm.F64Sub:
				return wasm.F64Const{Value: l.Value - r.Value}, true
			case wasm.F64Mul:
				return wasm.F64Const{Value: l.Value * r.Value}, true
			case wasm.F64Div:
				return wasm.F64Const{Value: l.Value / r.Value}, true
			}
		}
	}

	return in, false
}

func boolConst(b bool) wasm.I32Const {
	if b {
		return wasm.I32Const{Value: 1}
	}
	return wasm.I32Const{Value: 0}
}

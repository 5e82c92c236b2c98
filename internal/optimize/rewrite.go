package optimize

import "github.com/roach88/sable/internal/wasm"

// rewriteFn transforms a single node. It receives nodes whose children
// have already been rewritten and returns the replacement (possibly the
// node itself) plus whether anything changed.
type rewriteFn func(wasm.Instr) (wasm.Instr, bool)

// rewrite applies f bottom-up over the whole instruction tree.
func rewrite(in wasm.Instr, f rewriteFn) (wasm.Instr, bool) {
	if in == nil {
		return nil, false
	}
	changed := false
	redo := func(child wasm.Instr) wasm.Instr {
		out, c := rewrite(child, f)
		changed = changed || c
		return out
	}
	redoSlice := func(children []wasm.Instr) []wasm.Instr {
		out := make([]wasm.Instr, len(children))
		for i, c := range children {
			out[i] = redo(c)
		}
		return out
	}

	switch n := in.(type) {
	case wasm.Binary:
		n.L = redo(n.L)
		n.R = redo(n.R)
		in = n
	case wasm.Unary:
		n.X = redo(n.X)
		in = n
	case wasm.LocalSet:
		n.Value = redo(n.Value)
		in = n
	case wasm.Drop:
		n.Value = redo(n.Value)
		in = n
	case wasm.If:
		n.Cond = redo(n.Cond)
		n.Then = redoSlice(n.Then)
		n.Else = redoSlice(n.Else)
		in = n
	case wasm.Block:
		n.Body = redoSlice(n.Body)
		in = n
	case wasm.Loop:
		n.Body = redoSlice(n.Body)
		in = n
	case wasm.Br:
		n.Value = redo(n.Value)
		in = n
	case wasm.BrIf:
		n.Cond = redo(n.Cond)
		in = n
	case wasm.Return:
		n.Value = redo(n.Value)
		in = n
	case wasm.Call:
		n.Args = redoSlice(n.Args)
		in = n
	case wasm.CallRef:
		n.Fn = redo(n.Fn)
		n.Args = redoSlice(n.Args)
		in = n
	case wasm.RefI31:
		n.Value = redo(n.Value)
		in = n
	case wasm.I31GetS:
		n.Value = redo(n.Value)
		in = n
	case wasm.RefTest:
		n.Value = redo(n.Value)
		in = n
	case wasm.RefCast:
		n.Value = redo(n.Value)
		in = n
	case wasm.StructNew:
		n.Args = redoSlice(n.Args)
		in = n
	case wasm.StructGet:
		n.Target = redo(n.Target)
		in = n
	case wasm.StructSet:
		n.Target = redo(n.Target)
		n.Value = redo(n.Value)
		in = n
	case wasm.ArrayNewFixed:
		n.Elems = redoSlice(n.Elems)
		in = n
	case wasm.ArrayNew:
		n.Elem = redo(n.Elem)
		n.Len = redo(n.Len)
		in = n
	case wasm.ArrayGet:
		n.Target = redo(n.Target)
		n.Index = redo(n.Index)
		in = n
	case wasm.ArraySet:
		n.Target = redo(n.Target)
		n.Index = redo(n.Index)
		n.Value = redo(n.Value)
		in = n
	case wasm.ArrayLen:
		n.Target = redo(n.Target)
		in = n
	}

	out, c := f(in)
	return out, changed || c
}

package optimize

import "github.com/roach88/sable/internal/wasm"

// terminates reports whether control never falls through the instruction.
func terminates(in wasm.Instr) bool {
	switch in.(type) {
	case wasm.Return, wasm.Br, wasm.Unreachable:
		return true
	}
	return false
}

// truncateDead cuts everything after the first non-falling-through
// instruction in a sequence.
func truncateDead(body []wasm.Instr) ([]wasm.Instr, bool) {
	for i, in := range body {
		if terminates(in) && i < len(body)-1 {
			return body[:i+1], true
		}
	}
	return body, false
}

// dceNode prunes dead tails inside structured bodies.
func dceNode(in wasm.Instr) (wasm.Instr, bool) {
	switch n := in.(type) {
	case wasm.Block:
		body, changed := truncateDead(n.Body)
		n.Body = body
		return n, changed
	case wasm.Loop:
		body, changed := truncateDead(n.Body)
		n.Body = body
		return n, changed
	case wasm.If:
		thenBody, c1 := truncateDead(n.Then)
		elseBody, c2 := truncateDead(n.Else)
		n.Then = thenBody
		n.Else = elseBody
		return n, c1 || c2
	}
	return in, false
}

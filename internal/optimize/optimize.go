// Package optimize rewrites lowered modules in place: literal arithmetic
// is folded, neutral-element operations are dropped, and instructions
// after an unconditional transfer are removed. Every rewrite preserves
// traps, so optimized and unoptimized modules behave identically.
package optimize

import "github.com/roach88/sable/internal/wasm"

// maxRounds bounds the rewrite loop. Each round strictly shrinks the
// tree, so the bound is never reached in practice.
const maxRounds = 32

// Module optimizes every function body of m.
func Module(m *wasm.Module) {
	for i := range m.Funcs {
		m.Funcs[i].Body = Body(m.Funcs[i].Body)
	}
}

// Body optimizes one instruction sequence to a fixed point.
func Body(body []wasm.Instr) []wasm.Instr {
	for round := 0; round < maxRounds; round++ {
		changed := false
		for i, in := range body {
			out, c := rewrite(in, combined)
			body[i] = out
			changed = changed || c
		}
		trimmed, c := truncateDead(body)
		body = trimmed
		changed = changed || c
		if !changed {
			break
		}
	}
	return body
}

// combined applies folding then simplification at a single node. fold
// runs first so simplify sees its literals.
func combined(in wasm.Instr) (wasm.Instr, bool) {
	out, c1 := foldNode(in)
	out, c2 := simplifyNode(out)
	out, c3 := dceNode(out)
	return out, c1 || c2 || c3
}

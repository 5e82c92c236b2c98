package lower

import (
	"fmt"

	"github.com/roach88/sable/internal/ir"
	"github.com/roach88/sable/internal/wasm"
)

// lowerLet allocates one local slot for the binding and sequences a store
// then the body. The binding is visible only inside the body.
func lowerLet(env Env, n ir.Let) (wasm.Instr, wasm.ValType, Env, error) {
	value, vt, env, err := lowerExpr(env, n.Value)
	if err != nil {
		return nil, nil, env, err
	}

	env = env.EnterScope()
	env, slot := env.AllocateLocal(n.Name, vt)
	body, bt, env, err := lowerExpr(env, n.Body)
	if err != nil {
		return nil, nil, env, err
	}
	env = env.ExitScope()

	instr := blockOf(bt,
		wasm.LocalSet{Index: slot, Name: localName(n.Name), Value: value},
		body,
	)
	return instr, bt, env, nil
}

// lowerAssign overwrites the slot of a variable binding and yields unit.
func lowerAssign(env Env, n ir.Assign) (wasm.Instr, wasm.ValType, Env, error) {
	slot, st, ok := env.LookupLocal(n.Name)
	if !ok {
		return nil, nil, env, &UnboundNameError{Ident: n.Name}
	}
	value, vt, env, err := lowerExpr(env, n.Value)
	if err != nil {
		return nil, nil, env, err
	}
	stored := value
	if _, isRef := st.(wasm.Ref); isRef {
		stored = asAny(value, vt)
	}
	instr := blockOf(wasm.I31Ref(),
		wasm.LocalSet{Index: slot, Name: localName(n.Name), Value: stored},
		lowerIntConst(0),
	)
	return instr, wasm.I31Ref(), env, nil
}

// lowerLetRec lowers recursive bindings sequentially: each value sees the
// bindings before it. True mutual recursion between closure values would
// need a placeholder-then-patch allocation of the closure structs and is
// not supported by this engine.
func lowerLetRec(env Env, n ir.LetRec) (wasm.Instr, wasm.ValType, Env, error) {
	env = env.EnterScope()
	stores := make([]wasm.Instr, 0, len(n.Bindings)+1)
	for _, b := range n.Bindings {
		value, vt, env2, err := lowerExpr(env, b.Value)
		if err != nil {
			return nil, nil, env2, err
		}
		env = env2
		var slot int
		env, slot = env.AllocateLocal(b.Name, vt)
		stores = append(stores, wasm.LocalSet{Index: slot, Name: localName(b.Name), Value: value})
	}
	body, bt, env, err := lowerExpr(env, n.Body)
	if err != nil {
		return nil, nil, env, err
	}
	env = env.ExitScope()

	return blockOf(bt, append(stores, body)...), bt, env, nil
}

// lowerSeq evaluates the first expression for effect, drops its value and
// continues with the second.
func lowerSeq(env Env, n ir.Seq) (wasm.Instr, wasm.ValType, Env, error) {
	first, _, env, err := lowerExpr(env, n.First)
	if err != nil {
		return nil, nil, env, err
	}
	then, tt, env, err := lowerExpr(env, n.Then)
	if err != nil {
		return nil, nil, env, err
	}
	return blockOf(tt, wasm.Drop{Value: first}, then), tt, env, nil
}

// lowerIf lowers to a native conditional whose guard is the unboxed
// operand. When the arms disagree on representation, both are widened to
// the universal reference type.
func lowerIf(env Env, n ir.If) (wasm.Instr, wasm.ValType, Env, error) {
	cond, ct, env, err := lowerExpr(env, n.Cond)
	if err != nil {
		return nil, nil, env, err
	}
	thn, thnT, env, err := lowerExpr(env, n.Then)
	if err != nil {
		return nil, nil, env, err
	}
	els, elsT, env, err := lowerExpr(env, n.Else)
	if err != nil {
		return nil, nil, env, err
	}

	result := thnT
	if !wasm.SameType(thnT, elsT) {
		result = wasm.AnyRef()
		thn = asAny(thn, thnT)
		els = asAny(els, elsT)
	}
	instr := wasm.If{
		Result: []wasm.ValType{result},
		Cond:   unboxInt(cond, ct),
		Then:   []wasm.Instr{thn},
		Else:   []wasm.Instr{els},
	}
	return instr, result, env, nil
}

// lowerFor lowers a bounded loop to a block-wrapped loop with a guard
// check and a back-edge branch. The counter and the limit are raw i32
// locals; direction selects the comparison and the step. The loop's value
// is unit.
func lowerFor(env Env, n ir.For) (wasm.Instr, wasm.ValType, Env, error) {
	from, ft, env, err := lowerExpr(env, n.From)
	if err != nil {
		return nil, nil, env, err
	}
	to, tt, env, err := lowerExpr(env, n.To)
	if err != nil {
		return nil, nil, env, err
	}

	env = env.EnterScope()
	env, counter := env.AllocateLocal(n.Var, wasm.I32{})
	limitID, env := env.FreshIdent("limit")
	env, limit := env.AllocateLocal(limitID, wasm.I32{})

	exitLabel, env := env.freshLabel("for.exit")
	contLabel, env := env.freshLabel("for.continue")

	body, _, env, err := lowerExpr(env, n.Body)
	if err != nil {
		return nil, nil, env, err
	}
	env = env.ExitScope()

	guardOp, stepOp := wasm.I32GtS, wasm.I32Add
	if n.Dir == ir.Downto {
		guardOp, stepOp = wasm.I32LtS, wasm.I32Sub
	}

	loop := wasm.Block{
		Label: exitLabel,
		Body: []wasm.Instr{
			wasm.Loop{
				Label: contLabel,
				Body: []wasm.Instr{
					wasm.BrIf{Label: exitLabel, Cond: wasm.Binary{
						Op: guardOp,
						L:  wasm.LocalGet{Index: counter, Name: localName(n.Var)},
						R:  wasm.LocalGet{Index: limit, Name: localName(limitID)},
					}},
					wasm.Drop{Value: body},
					wasm.LocalSet{Index: counter, Name: localName(n.Var), Value: wasm.Binary{
						Op: stepOp,
						L:  wasm.LocalGet{Index: counter, Name: localName(n.Var)},
						R:  wasm.I32Const{Value: 1},
					}},
					wasm.Br{Label: contLabel},
				},
			},
		},
	}

	instr := blockOf(wasm.I31Ref(),
		wasm.LocalSet{Index: counter, Name: localName(n.Var), Value: unboxInt(from, ft)},
		wasm.LocalSet{Index: limit, Name: localName(limitID), Value: unboxInt(to, tt)},
		loop,
		lowerIntConst(0),
	)
	return instr, wasm.I31Ref(), env, nil
}

func catchLabel(label int) string {
	return fmt.Sprintf("catch.%d", label)
}

// lowerExit branches unconditionally to the enclosing catch's block
// label. Argument values are evaluated for effect and dropped rather than
// threaded to the handler; multi-argument exits are accepted structurally
// but their payloads do not reach the handler. This is a known
// incompleteness of the engine, not a target for silent improvement.
func lowerExit(env Env, n ir.Exit) (wasm.Instr, wasm.ValType, Env, error) {
	body := make([]wasm.Instr, 0, len(n.Args)+2)
	for _, a := range n.Args {
		instr, _, env2, err := lowerExpr(env, a)
		if err != nil {
			return nil, nil, env2, err
		}
		env = env2
		body = append(body, wasm.Drop{Value: instr})
	}
	body = append(body, wasm.Br{Label: catchLabel(n.Label)}, wasm.Unreachable{})
	return wasm.Block{Result: []wasm.ValType{wasm.AnyRef()}, Body: body}, wasm.AnyRef(), env, nil
}

// lowerCatch wraps the protected body in a labeled block followed by an
// unconditional exit past the handler; the handler is emitted immediately
// after. Handler parameters are bound to fresh locals initialized to the
// unit value, since exit payloads are not threaded (see lowerExit).
func lowerCatch(env Env, n ir.Catch) (wasm.Instr, wasm.ValType, Env, error) {
	doneLabel, env := env.freshLabel("done")

	body, bt, env, err := lowerExpr(env, n.Body)
	if err != nil {
		return nil, nil, env, err
	}

	env = env.EnterScope()
	inits := make([]wasm.Instr, len(n.Params))
	for i, p := range n.Params {
		var slot int
		env, slot = env.AllocateLocal(p, wasm.AnyRef())
		inits[i] = wasm.LocalSet{Index: slot, Name: localName(p), Value: lowerIntConst(0)}
	}
	handler, ht, env, err := lowerExpr(env, n.Handler)
	if err != nil {
		return nil, nil, env, err
	}
	env = env.ExitScope()

	outer := make([]wasm.Instr, 0, len(inits)+2)
	outer = append(outer, wasm.Block{
		Label: catchLabel(n.Label),
		Body:  []wasm.Instr{wasm.Br{Label: doneLabel, Value: asAny(body, bt)}},
	})
	outer = append(outer, inits...)
	outer = append(outer, asAny(handler, ht))

	instr := wasm.Block{
		Label:  doneLabel,
		Result: []wasm.ValType{wasm.AnyRef()},
		Body:   outer,
	}
	return instr, wasm.AnyRef(), env, nil
}

// lowerTry compiles try/with structurally: the protected body's value
// flows out, and the handler is emitted after it with the exception
// parameter bound to unit. The target's native exception facility is not
// used, so the handler is present in the output but never entered.
func lowerTry(env Env, n ir.Try) (wasm.Instr, wasm.ValType, Env, error) {
	doneLabel, env := env.freshLabel("try.done")

	body, bt, env, err := lowerExpr(env, n.Body)
	if err != nil {
		return nil, nil, env, err
	}

	env = env.EnterScope()
	env, slot := env.AllocateLocal(n.Param, wasm.AnyRef())
	handler, ht, env, err := lowerExpr(env, n.Handler)
	if err != nil {
		return nil, nil, env, err
	}
	env = env.ExitScope()

	instr := wasm.Block{
		Label:  doneLabel,
		Result: []wasm.ValType{wasm.AnyRef()},
		Body: []wasm.Instr{
			wasm.Br{Label: doneLabel, Value: asAny(body, bt)},
			wasm.LocalSet{Index: slot, Name: localName(n.Param), Value: lowerIntConst(0)},
			asAny(handler, ht),
		},
	}
	return instr, wasm.AnyRef(), env, nil
}

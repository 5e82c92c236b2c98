package lower

import (
	"github.com/roach88/sable/internal/ir"
	"github.com/roach88/sable/internal/wasm"
)

// lowerSwitch compiles tag dispatch as a cascade of equality-guarded
// conditionals, not a jump table. Branches are tried in declaration
// order and the first matching tag wins; when no constant or block
// branches exist only the default fires. When both kinds of branch are
// present, the dispatcher first tests whether the scrutinee is an
// immediate value and then recurses into the appropriate cascade.
func lowerSwitch(env Env, n ir.Switch) (wasm.Instr, wasm.ValType, Env, error) {
	scrut, st, env, err := lowerExpr(env, n.Scrutinee)
	if err != nil {
		return nil, nil, env, err
	}

	env = env.EnterScope()
	scrutID, env := env.FreshIdent("scrut")
	env, slot := env.AllocateLocal(scrutID, wasm.AnyRef())
	scrutGet := wasm.LocalGet{Index: slot, Name: localName(scrutID)}

	// Default arm, shared by both cascades. A missing default means the
	// cases are exhaustive, so the fallback traps.
	lowerDefault := func(env Env) (wasm.Instr, Env, error) {
		if n.Default == nil {
			return wasm.Block{
				Result: []wasm.ValType{wasm.AnyRef()},
				Body:   []wasm.Instr{wasm.Unreachable{}},
			}, env, nil
		}
		d, dt, env, err := lowerExpr(env, n.Default)
		if err != nil {
			return nil, env, err
		}
		return asAny(d, dt), env, nil
	}

	// constCascade matches the unboxed immediate value.
	constCascade := func(env Env) (wasm.Instr, Env, error) {
		tag := unboxInt(scrutGet, wasm.AnyRef())
		return lowerCascade(env, tag, n.Consts, lowerDefault)
	}

	// blockCascade matches the heap block's tag field.
	blockCascade := func(env Env) (wasm.Instr, Env, error) {
		env = ensureBlockType(env, 0, 0)
		tag := wasm.StructGet{
			Type:   blockTypeName(0, 0),
			Field:  0,
			Target: wasm.RefCast{Type: wasm.NamedRef(blockTypeName(0, 0)), Value: scrutGet},
		}
		return lowerCascade(env, tag, n.Blocks, lowerDefault)
	}

	var dispatch wasm.Instr
	switch {
	case len(n.Consts) == 0 && len(n.Blocks) == 0:
		dispatch, env, err = lowerDefault(env)
	case len(n.Blocks) == 0:
		dispatch, env, err = constCascade(env)
	case len(n.Consts) == 0:
		dispatch, env, err = blockCascade(env)
	default:
		var onConst, onBlock wasm.Instr
		onConst, env, err = constCascade(env)
		if err == nil {
			onBlock, env, err = blockCascade(env)
		}
		if err == nil {
			dispatch = wasm.If{
				Result: []wasm.ValType{wasm.AnyRef()},
				Cond: wasm.RefTest{
					Heap:  wasm.HeapType{Kind: wasm.HeapI31},
					Value: scrutGet,
				},
				Then: []wasm.Instr{onConst},
				Else: []wasm.Instr{onBlock},
			}
		}
	}
	if err != nil {
		return nil, nil, env, err
	}
	env = env.ExitScope()

	instr := blockOf(wasm.AnyRef(),
		wasm.LocalSet{Index: slot, Name: localName(scrutID), Value: asAny(scrut, st)},
		dispatch,
	)
	return instr, wasm.AnyRef(), env, nil
}

// lowerCascade builds the nested equality-guarded conditionals for one
// case list. tag must be re-evaluable (a local read or a field read of a
// local read).
func lowerCascade(env Env, tag wasm.Instr, cases []ir.SwitchCase, fallback func(Env) (wasm.Instr, Env, error)) (wasm.Instr, Env, error) {
	if len(cases) == 0 {
		return fallback(env)
	}
	c := cases[0]
	body, bt, env, err := lowerExpr(env, c.Body)
	if err != nil {
		return nil, env, err
	}
	rest, env, err := lowerCascade(env, tag, cases[1:], fallback)
	if err != nil {
		return nil, env, err
	}
	instr := wasm.If{
		Result: []wasm.ValType{wasm.AnyRef()},
		Cond:   wasm.Binary{Op: wasm.I32Eq, L: tag, R: wasm.I32Const{Value: int32(c.Tag)}},
		Then:   []wasm.Instr{asAny(body, bt)},
		Else:   []wasm.Instr{rest},
	}
	return instr, env, nil
}

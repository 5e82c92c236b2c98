package ir

// FreeVars computes the exact set of identifiers that occur free in e.
// A variable reference contributes itself; binders subtract their bound
// names from their body's free set; every other node unions its children.
//
// This is the sole input to closure conversion: an over-approximation
// would over-capture, an under-approximation would miss a capture and
// crash at runtime, so both directions are correctness bugs.
func FreeVars(e Expr) IdentSet {
	free := make(IdentSet)
	collectFree(e, free)
	return free
}

func collectFree(e Expr, free IdentSet) {
	switch n := e.(type) {
	case IntConst, FloatConst, BoolConst, StringConst:
		// no variables
	case Var:
		free.Add(n.Ident)
	case Apply:
		collectFree(n.Fn, free)
		for _, a := range n.Args {
			collectFree(a, free)
		}
	case Func:
		inner := FreeVars(n.Body)
		for _, p := range n.Params {
			inner.Remove(p)
		}
		free.Union(inner)
	case Let:
		collectFree(n.Value, free)
		inner := FreeVars(n.Body)
		inner.Remove(n.Name)
		free.Union(inner)
	case Assign:
		free.Add(n.Name)
		collectFree(n.Value, free)
	case LetRec:
		// Every binding name scopes over all values and the body.
		inner := make(IdentSet)
		for _, b := range n.Bindings {
			collectFree(b.Value, inner)
		}
		collectFree(n.Body, inner)
		for _, b := range n.Bindings {
			inner.Remove(b.Name)
		}
		free.Union(inner)
	case Prim:
		for _, a := range n.Args {
			collectFree(a, free)
		}
	case If:
		collectFree(n.Cond, free)
		collectFree(n.Then, free)
		collectFree(n.Else, free)
	case Seq:
		collectFree(n.First, free)
		collectFree(n.Then, free)
	case For:
		collectFree(n.From, free)
		collectFree(n.To, free)
		inner := FreeVars(n.Body)
		inner.Remove(n.Var)
		free.Union(inner)
	case Switch:
		collectFree(n.Scrutinee, free)
		for _, c := range n.Consts {
			collectFree(c.Body, free)
		}
		for _, c := range n.Blocks {
			collectFree(c.Body, free)
		}
		if n.Default != nil {
			collectFree(n.Default, free)
		}
	case Exit:
		for _, a := range n.Args {
			collectFree(a, free)
		}
	case Catch:
		collectFree(n.Body, free)
		inner := FreeVars(n.Handler)
		for _, p := range n.Params {
			inner.Remove(p)
		}
		free.Union(inner)
	case Try:
		collectFree(n.Body, free)
		inner := FreeVars(n.Handler)
		inner.Remove(n.Param)
		free.Union(inner)
	}
}

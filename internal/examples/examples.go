// Package examples holds the built-in programs used by the command line
// and the scenario harness. Each program exercises a different slice of
// the lowering pipeline.
package examples

import (
	"sort"

	"github.com/roach88/sable/internal/ir"
)

// Program is a named built-in program together with the namer state
// needed to keep allocating fresh names during lowering.
type Program struct {
	ir.Program
	Namer ir.Namer
}

type builder func() Program

var registry = map[string]builder{
	"adder":    adder,
	"arith":    arith,
	"max":      maxOf,
	"counter":  counter,
	"fib":      fib,
	"pair":     pair,
	"cell":     cell,
	"sumarray": sumarray,
	"shape":    shape,
	"escape":   escape,
	"greet":    greet,
	"floaty":   floaty,
}

// Names returns the built-in program names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get returns the built-in program with the given name.
func Get(name string) (Program, bool) {
	b, ok := registry[name]
	if !ok {
		return Program{}, false
	}
	return b(), true
}

func intOp(kind ir.PrimKind, args ...ir.Expr) ir.Expr {
	return ir.Prim{Op: ir.Primitive{Kind: kind}, Args: args}
}

// arith: constant arithmetic, the smallest end-to-end program.
//
//	main = 2 * (10 + 11)
func arith() Program {
	nm := ir.NewNamer()
	main, nm := nm.Fresh("main")
	body := intOp(ir.PMulInt,
		ir.IntConst{Value: 2},
		intOp(ir.PAddInt, ir.IntConst{Value: 10}, ir.IntConst{Value: 11}),
	)
	return Program{
		Program: ir.Program{Name: "arith", Bindings: []ir.Binding{{Name: main, Value: body}}},
		Namer:   nm,
	}
}

// maxOf: a two-parameter function with a conditional.
//
//	max = (a, b) -> if a < b then b else a
func maxOf() Program {
	nm := ir.NewNamer()
	a, nm := nm.Fresh("a")
	b, nm := nm.Fresh("b")
	name, nm := nm.Fresh("max")
	fn := ir.Func{
		Params: []ir.Ident{a, b},
		Body: ir.If{
			Cond: ir.Prim{Op: ir.IntCmp(ir.CmpLt), Args: []ir.Expr{ir.Var{Ident: a}, ir.Var{Ident: b}}},
			Then: ir.Var{Ident: b},
			Else: ir.Var{Ident: a},
		},
	}
	return Program{
		Program: ir.Program{Name: "max", Bindings: []ir.Binding{{Name: name, Value: fn}}},
		Namer:   nm,
	}
}

// counter: a mutable let updated inside a counting loop.
//
//	main = let var total = 0 in
//	       (for i = 1 upto 5 do total := total + i); total
func counter() Program {
	nm := ir.NewNamer()
	total, nm := nm.Fresh("total")
	i, nm := nm.Fresh("i")
	main, nm := nm.Fresh("main")

	loop := ir.For{
		Var:  i,
		From: ir.IntConst{Value: 1},
		To:   ir.IntConst{Value: 5},
		Dir:  ir.Upto,
		Body: ir.Assign{
			Name:  total,
			Value: intOp(ir.PAddInt, ir.Var{Ident: total}, ir.Var{Ident: i}),
		},
	}
	body := ir.Let{
		Kind:  ir.LetVariable,
		Name:  total,
		Value: ir.IntConst{Value: 0},
		Body:  ir.Seq{First: loop, Then: ir.Var{Ident: total}},
	}
	return Program{
		Program: ir.Program{Name: "counter", Bindings: []ir.Binding{{Name: main, Value: body}}},
		Namer:   nm,
	}
}

// fib: self-recursion through a top-level name.
func fib() Program {
	nm := ir.NewNamer()
	n, nm := nm.Fresh("n")
	name, nm := nm.Fresh("fib")

	call := func(k int64) ir.Expr {
		return ir.Apply{Fn: ir.Var{Ident: name}, Args: []ir.Expr{
			intOp(ir.PSubInt, ir.Var{Ident: n}, ir.IntConst{Value: k}),
		}}
	}
	fn := ir.Func{
		Params: []ir.Ident{n},
		Body: ir.If{
			Cond: ir.Prim{Op: ir.IntCmp(ir.CmpLt), Args: []ir.Expr{ir.Var{Ident: n}, ir.IntConst{Value: 2}}},
			Then: ir.Var{Ident: n},
			Else: intOp(ir.PAddInt, call(1), call(2)),
		},
	}
	return Program{
		Program: ir.Program{Name: "fib", Bindings: []ir.Binding{{Name: name, Value: fn}}},
		Namer:   nm,
	}
}

// adder: closure capture through staged application.
//
//	make = (n) -> (x) -> x + n
//	main = (make 2) 40
func adder() Program {
	nm := ir.NewNamer()
	n, nm := nm.Fresh("n")
	x, nm := nm.Fresh("x")
	make, nm := nm.Fresh("make")
	main, nm := nm.Fresh("main")

	inner := ir.Func{
		Params: []ir.Ident{x},
		Body:   intOp(ir.PAddInt, ir.Var{Ident: x}, ir.Var{Ident: n}),
	}
	outer := ir.Func{Params: []ir.Ident{n}, Body: inner}
	body := ir.Apply{
		Fn:   ir.Apply{Fn: ir.Var{Ident: make}, Args: []ir.Expr{ir.IntConst{Value: 2}}},
		Args: []ir.Expr{ir.IntConst{Value: 40}},
	}
	return Program{
		Program: ir.Program{Name: "adder", Bindings: []ir.Binding{
			{Name: make, Value: outer},
			{Name: main, Value: body},
		}},
		Namer: nm,
	}
}

// pair: block construction and field projection.
//
//	main = let p = {1, 2} in field0(p) + field1(p)
func pair() Program {
	nm := ir.NewNamer()
	p, nm := nm.Fresh("p")
	main, nm := nm.Fresh("main")

	body := ir.Let{
		Name: p,
		Value: ir.Prim{Op: ir.MakeBlock(0, 2), Args: []ir.Expr{
			ir.IntConst{Value: 1}, ir.IntConst{Value: 2},
		}},
		Body: intOp(ir.PAddInt,
			ir.Prim{Op: ir.Field(0), Args: []ir.Expr{ir.Var{Ident: p}}},
			ir.Prim{Op: ir.Field(1), Args: []ir.Expr{ir.Var{Ident: p}}},
		),
	}
	return Program{
		Program: ir.Program{Name: "pair", Bindings: []ir.Binding{{Name: main, Value: body}}},
		Namer:   nm,
	}
}

// cell: in-place field mutation.
//
//	main = let c = {0} in setfield0(c, 41); field0(c) + 1
func cell() Program {
	nm := ir.NewNamer()
	c, nm := nm.Fresh("c")
	main, nm := nm.Fresh("main")

	body := ir.Let{
		Name:  c,
		Value: ir.Prim{Op: ir.MakeBlock(0, 1), Args: []ir.Expr{ir.IntConst{Value: 0}}},
		Body: ir.Seq{
			First: ir.Prim{Op: ir.SetField(0), Args: []ir.Expr{ir.Var{Ident: c}, ir.IntConst{Value: 41}}},
			Then: intOp(ir.PAddInt,
				ir.Prim{Op: ir.Field(0), Args: []ir.Expr{ir.Var{Ident: c}}},
				ir.IntConst{Value: 1},
			),
		},
	}
	return Program{
		Program: ir.Program{Name: "cell", Bindings: []ir.Binding{{Name: main, Value: body}}},
		Namer:   nm,
	}
}

// sumarray: array construction, length and indexed reads.
//
//	main = let var acc = 0, a = [|10, 20, 30|] in
//	       (for i = 0 upto length(a) - 1 do acc := acc + a[i]); acc
func sumarray() Program {
	nm := ir.NewNamer()
	acc, nm := nm.Fresh("acc")
	a, nm := nm.Fresh("a")
	i, nm := nm.Fresh("i")
	main, nm := nm.Fresh("main")

	loop := ir.For{
		Var:  i,
		From: ir.IntConst{Value: 0},
		To: intOp(ir.PSubInt,
			ir.Prim{Op: ir.Primitive{Kind: ir.PArrayLength}, Args: []ir.Expr{ir.Var{Ident: a}}},
			ir.IntConst{Value: 1},
		),
		Dir: ir.Upto,
		Body: ir.Assign{
			Name: acc,
			Value: intOp(ir.PAddInt,
				ir.Var{Ident: acc},
				ir.Prim{Op: ir.Primitive{Kind: ir.PArrayGet}, Args: []ir.Expr{ir.Var{Ident: a}, ir.Var{Ident: i}}},
			),
		},
	}
	body := ir.Let{
		Kind:  ir.LetVariable,
		Name:  acc,
		Value: ir.IntConst{Value: 0},
		Body: ir.Let{
			Name: a,
			Value: ir.Prim{Op: ir.MakeArray(3), Args: []ir.Expr{
				ir.IntConst{Value: 10}, ir.IntConst{Value: 20}, ir.IntConst{Value: 30},
			}},
			Body: ir.Seq{First: loop, Then: ir.Var{Ident: acc}},
		},
	}
	return Program{
		Program: ir.Program{Name: "sumarray", Bindings: []ir.Binding{{Name: main, Value: body}}},
		Namer:   nm,
	}
}

// shape: tagged-variant dispatch over both immediate and block shapes.
//
//	area = (s) -> switch s {
//	  const 0 -> 0                 // point
//	  block 0 -> field0(s)         // square: side stored in the block
//	  default -> -1
//	}
func shape() Program {
	nm := ir.NewNamer()
	s, nm := nm.Fresh("s")
	name, nm := nm.Fresh("area")

	fn := ir.Func{
		Params: []ir.Ident{s},
		Body: ir.Switch{
			Scrutinee: ir.Var{Ident: s},
			Consts:    []ir.SwitchCase{{Tag: 0, Body: ir.IntConst{Value: 0}}},
			Blocks: []ir.SwitchCase{{Tag: 0, Body: ir.Prim{
				Op: ir.Field(0), Args: []ir.Expr{ir.Var{Ident: s}},
			}}},
			Default: ir.IntConst{Value: -1},
		},
	}
	return Program{
		Program: ir.Program{Name: "shape", Bindings: []ir.Binding{{Name: name, Value: fn}}},
		Namer:   nm,
	}
}

// escape: static exit out of a catch block.
//
//	main = catch (1 + exit 7) with 7 -> 42
func escape() Program {
	nm := ir.NewNamer()
	main, nm := nm.Fresh("main")

	body := ir.Catch{
		Body:    intOp(ir.PAddInt, ir.IntConst{Value: 1}, ir.Exit{Label: 7}),
		Label:   7,
		Handler: ir.IntConst{Value: 42},
	}
	return Program{
		Program: ir.Program{Name: "escape", Bindings: []ir.Binding{{Name: main, Value: body}}},
		Namer:   nm,
	}
}

// greet: string data flowing into a host import.
//
//	main = print("hello")
func greet() Program {
	nm := ir.NewNamer()
	main, nm := nm.Fresh("main")

	body := ir.Prim{Op: ir.CCall("print", 1), Args: []ir.Expr{
		ir.StringConst{Value: "hello"},
	}}
	return Program{
		Program: ir.Program{Name: "greet", Bindings: []ir.Binding{{Name: main, Value: body}}},
		Namer:   nm,
	}
}

// floaty: float arithmetic and both conversions.
//
//	main = intoffloat(floatofint(2) * 1.5 + 0.25)
func floaty() Program {
	nm := ir.NewNamer()
	main, nm := nm.Fresh("main")

	floatOf := ir.Prim{Op: ir.Primitive{Kind: ir.PFloatOfInt}, Args: []ir.Expr{ir.IntConst{Value: 2}}}
	mul := ir.Prim{Op: ir.Primitive{Kind: ir.PMulFloat}, Args: []ir.Expr{floatOf, ir.FloatConst{Value: 1.5}}}
	add := ir.Prim{Op: ir.Primitive{Kind: ir.PAddFloat}, Args: []ir.Expr{mul, ir.FloatConst{Value: 0.25}}}
	body := ir.Prim{Op: ir.Primitive{Kind: ir.PIntOfFloat}, Args: []ir.Expr{add}}
	return Program{
		Program: ir.Program{Name: "floaty", Bindings: []ir.Binding{{Name: main, Value: body}}},
		Namer:   nm,
	}
}

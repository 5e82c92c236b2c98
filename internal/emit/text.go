// Package emit renders a compiled module in the target's two concrete
// formats: the textual s-expression form and the binary form. Both walk
// the same module value in declaration order, so rendering is
// deterministic for a given module.
package emit

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/sable/internal/wasm"
)

// Text renders the module in folded textual form.
func Text(m *wasm.Module) string {
	p := &textPrinter{}
	p.line("(module")
	p.depth++

	for _, st := range m.Structs {
		p.structType(st)
	}
	for _, at := range m.Arrays {
		p.arrayType(at)
	}
	for _, ft := range m.FuncTypes {
		p.funcType(ft)
	}
	for _, imp := range m.Imports {
		p.importDecl(imp)
	}
	for _, fn := range m.Funcs {
		p.funcDecl(fn)
	}
	for _, ex := range m.Exports {
		p.line("(export %q (func $%s))", ex.Name, ex.Func)
	}

	p.depth--
	p.line(")")
	return p.b.String()
}

type textPrinter struct {
	b     strings.Builder
	depth int
}

func (p *textPrinter) line(format string, args ...any) {
	for i := 0; i < p.depth; i++ {
		p.b.WriteString("  ")
	}
	fmt.Fprintf(&p.b, format, args...)
	p.b.WriteByte('\n')
}

func (p *textPrinter) structType(st wasm.StructType) {
	var fields strings.Builder
	for _, f := range st.Fields {
		typ := f.Type.String()
		if f.Mutable {
			typ = "(mut " + typ + ")"
		}
		fmt.Fprintf(&fields, " (field $%s %s)", f.Name, typ)
	}
	p.line("(type $%s (struct%s))", st.Name, fields.String())
}

func (p *textPrinter) arrayType(at wasm.ArrayType) {
	typ := at.Elem.String()
	if at.Mutable {
		typ = "(mut " + typ + ")"
	}
	p.line("(type $%s (array %s))", at.Name, typ)
}

func signature(params, results []wasm.ValType) string {
	var b strings.Builder
	for _, t := range params {
		fmt.Fprintf(&b, " (param %s)", t)
	}
	for _, t := range results {
		fmt.Fprintf(&b, " (result %s)", t)
	}
	return b.String()
}

func (p *textPrinter) funcType(ft wasm.FuncType) {
	p.line("(type $%s (func%s))", ft.Name, signature(ft.Params, ft.Results))
}

func (p *textPrinter) importDecl(imp wasm.Import) {
	p.line("(import %q %q (func $%s%s))",
		imp.Module, imp.Name, imp.Alias, signature(imp.Params, imp.Results))
}

func (p *textPrinter) funcDecl(fn wasm.Func) {
	var sig strings.Builder
	for _, prm := range fn.Params {
		fmt.Fprintf(&sig, " (param $%s %s)", prm.Name, prm.Type)
	}
	for _, t := range fn.Results {
		fmt.Fprintf(&sig, " (result %s)", t)
	}
	p.line("(func $%s%s", fn.Name, sig.String())
	p.depth++
	for _, l := range fn.Locals {
		p.line("(local $%s %s)", l.Name, l.Type)
	}
	for _, in := range fn.Body {
		p.instr(in)
	}
	p.depth--
	p.line(")")
}

func floatText(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func resultText(results []wasm.ValType) string {
	var b strings.Builder
	for _, t := range results {
		fmt.Fprintf(&b, " (result %s)", t)
	}
	return b.String()
}

// instr prints one instruction tree in folded form, one node per line.
func (p *textPrinter) instr(in wasm.Instr) {
	switch n := in.(type) {
	case wasm.I32Const:
		p.line("(i32.const %d)", n.Value)
	case wasm.F64Const:
		p.line("(f64.const %s)", floatText(n.Value))
	case wasm.Binary:
		p.fold(n.Op.Mnemonic(), n.L, n.R)
	case wasm.Unary:
		p.fold(n.Op.Mnemonic(), n.X)
	case wasm.LocalGet:
		p.line("(local.get $%s)", n.Name)
	case wasm.LocalSet:
		p.fold("local.set $"+n.Name, n.Value)
	case wasm.Drop:
		p.fold("drop", n.Value)
	case wasm.If:
		p.line("(if%s", resultText(n.Result))
		p.depth++
		p.instr(n.Cond)
		p.line("(then")
		p.depth++
		for _, i := range n.Then {
			p.instr(i)
		}
		p.depth--
		p.line(")")
		if len(n.Else) > 0 {
			p.line("(else")
			p.depth++
			for _, i := range n.Else {
				p.instr(i)
			}
			p.depth--
			p.line(")")
		}
		p.depth--
		p.line(")")
	case wasm.Block:
		// Most blocks are anonymous; only branch targets carry a label.
		if n.Label == "" {
			p.line("(block%s", resultText(n.Result))
		} else {
			p.line("(block $%s%s", n.Label, resultText(n.Result))
		}
		p.depth++
		for _, i := range n.Body {
			p.instr(i)
		}
		p.depth--
		p.line(")")
	case wasm.Loop:
		p.line("(loop $%s", n.Label)
		p.depth++
		for _, i := range n.Body {
			p.instr(i)
		}
		p.depth--
		p.line(")")
	case wasm.Br:
		if n.Value == nil {
			p.line("(br $%s)", n.Label)
		} else {
			p.fold("br $"+n.Label, n.Value)
		}
	case wasm.BrIf:
		p.fold("br_if $"+n.Label, n.Cond)
	case wasm.Return:
		if n.Value == nil {
			p.line("(return)")
		} else {
			p.fold("return", n.Value)
		}
	case wasm.Unreachable:
		p.line("(unreachable)")
	case wasm.Call:
		p.fold("call $"+n.Func, n.Args...)
	case wasm.CallRef:
		// Folded operand order: arguments, then the callee reference.
		p.fold("call_ref $"+n.Type, append(append([]wasm.Instr{}, n.Args...), n.Fn)...)
	case wasm.RefFunc:
		p.line("(ref.func $%s)", n.Func)
	case wasm.RefI31:
		p.fold("ref.i31", n.Value)
	case wasm.I31GetS:
		p.fold("i31.get_s", n.Value)
	case wasm.RefTest:
		p.fold(fmt.Sprintf("ref.test (ref %s)", n.Heap), n.Value)
	case wasm.RefCast:
		p.fold("ref.cast "+n.Type.String(), n.Value)
	case wasm.StructNew:
		p.fold("struct.new $"+n.Type, n.Args...)
	case wasm.StructGet:
		p.fold(fmt.Sprintf("struct.get $%s %d", n.Type, n.Field), n.Target)
	case wasm.StructSet:
		p.fold(fmt.Sprintf("struct.set $%s %d", n.Type, n.Field), n.Target, n.Value)
	case wasm.ArrayNewFixed:
		p.fold(fmt.Sprintf("array.new_fixed $%s %d", n.Type, len(n.Elems)), n.Elems...)
	case wasm.ArrayNew:
		p.fold("array.new $"+n.Type, n.Elem, n.Len)
	case wasm.ArrayGet:
		p.fold("array.get $"+n.Type, n.Target, n.Index)
	case wasm.ArraySet:
		p.fold("array.set $"+n.Type, n.Target, n.Index, n.Value)
	case wasm.ArrayLen:
		p.fold("array.len", n.Target)
	default:
		p.line("(;unknown %T;)", in)
	}
}

// fold prints (head ...children) across multiple lines.
func (p *textPrinter) fold(head string, children ...wasm.Instr) {
	p.line("(%s", head)
	p.depth++
	for _, c := range children {
		p.instr(c)
	}
	p.depth--
	p.line(")")
}

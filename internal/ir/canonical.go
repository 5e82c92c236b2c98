package ir

import (
	"bytes"
	"fmt"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces a canonical byte rendering of an expression
// tree. CRITICAL: this is the ONLY serialization that should be used for
// content-addressed identity computation (the artifact cache key).
//
// Properties:
//  1. Structure-injective: distinct trees render to distinct bytes
//     (every node is written with an explicit tag and child count).
//  2. Strings and identifier names are NFC normalized, so visually
//     identical programs hash identically regardless of the encoding
//     the front-end happened to produce.
//  3. Floats render via strconv 'g' with 64-bit precision, the shortest
//     representation that round-trips.
func MarshalCanonical(e Expr) []byte {
	var buf bytes.Buffer
	writeCanonical(&buf, e)
	return buf.Bytes()
}

// MarshalCanonicalProgram renders a whole program: the NFC-normalized
// program name followed by each binding in order.
func MarshalCanonicalProgram(p Program) []byte {
	var buf bytes.Buffer
	writeString(&buf, p.Name)
	for _, b := range p.Bindings {
		buf.WriteByte('(')
		writeIdent(&buf, b.Name)
		writeCanonical(&buf, b.Value)
		buf.WriteByte(')')
	}
	return buf.Bytes()
}

func writeCanonical(buf *bytes.Buffer, e Expr) {
	switch n := e.(type) {
	case IntConst:
		node(buf, "int", func() { buf.WriteString(strconv.FormatInt(n.Value, 10)) })
	case FloatConst:
		node(buf, "float", func() { buf.WriteString(strconv.FormatFloat(n.Value, 'g', -1, 64)) })
	case BoolConst:
		node(buf, "bool", func() { buf.WriteString(strconv.FormatBool(n.Value)) })
	case StringConst:
		node(buf, "string", func() { writeString(buf, n.Value) })
	case Var:
		node(buf, "var", func() { writeIdent(buf, n.Ident) })
	case Apply:
		node(buf, "apply", func() {
			writeCanonical(buf, n.Fn)
			for _, a := range n.Args {
				writeCanonical(buf, a)
			}
		})
	case Func:
		node(buf, "func", func() {
			for _, p := range n.Params {
				writeIdent(buf, p)
			}
			buf.WriteByte('.')
			writeCanonical(buf, n.Body)
		})
	case Let:
		node(buf, "let", func() {
			buf.WriteString(strconv.Itoa(int(n.Kind)))
			writeIdent(buf, n.Name)
			writeCanonical(buf, n.Value)
			writeCanonical(buf, n.Body)
		})
	case Assign:
		node(buf, "assign", func() {
			writeIdent(buf, n.Name)
			writeCanonical(buf, n.Value)
		})
	case LetRec:
		node(buf, "letrec", func() {
			for _, b := range n.Bindings {
				writeIdent(buf, b.Name)
				writeCanonical(buf, b.Value)
			}
			buf.WriteByte('.')
			writeCanonical(buf, n.Body)
		})
	case Prim:
		node(buf, "prim", func() {
			writeString(buf, n.Op.String())
			for _, a := range n.Args {
				writeCanonical(buf, a)
			}
		})
	case If:
		node(buf, "if", func() {
			writeCanonical(buf, n.Cond)
			writeCanonical(buf, n.Then)
			writeCanonical(buf, n.Else)
		})
	case Seq:
		node(buf, "seq", func() {
			writeCanonical(buf, n.First)
			writeCanonical(buf, n.Then)
		})
	case For:
		node(buf, "for", func() {
			writeIdent(buf, n.Var)
			buf.WriteString(strconv.Itoa(int(n.Dir)))
			writeCanonical(buf, n.From)
			writeCanonical(buf, n.To)
			writeCanonical(buf, n.Body)
		})
	case Switch:
		node(buf, "switch", func() {
			writeCanonical(buf, n.Scrutinee)
			for _, c := range n.Consts {
				buf.WriteByte('c')
				buf.WriteString(strconv.Itoa(c.Tag))
				writeCanonical(buf, c.Body)
			}
			for _, c := range n.Blocks {
				buf.WriteByte('b')
				buf.WriteString(strconv.Itoa(c.Tag))
				writeCanonical(buf, c.Body)
			}
			if n.Default != nil {
				buf.WriteByte('d')
				writeCanonical(buf, n.Default)
			}
		})
	case Exit:
		node(buf, "exit", func() {
			buf.WriteString(strconv.Itoa(n.Label))
			for _, a := range n.Args {
				writeCanonical(buf, a)
			}
		})
	case Catch:
		node(buf, "catch", func() {
			buf.WriteString(strconv.Itoa(n.Label))
			for _, p := range n.Params {
				writeIdent(buf, p)
			}
			buf.WriteByte('.')
			writeCanonical(buf, n.Body)
			writeCanonical(buf, n.Handler)
		})
	case Try:
		node(buf, "try", func() {
			writeIdent(buf, n.Param)
			writeCanonical(buf, n.Body)
			writeCanonical(buf, n.Handler)
		})
	default:
		// Sealed interface: unreachable unless a variant is added
		// without extending this switch.
		panic(fmt.Sprintf("canonical: unknown expression %T", e))
	}
}

func node(buf *bytes.Buffer, tag string, body func()) {
	buf.WriteByte('(')
	buf.WriteString(tag)
	buf.WriteByte(' ')
	body()
	buf.WriteByte(')')
}

func writeIdent(buf *bytes.Buffer, id Ident) {
	writeString(buf, id.Name)
	buf.WriteByte('#')
	buf.WriteString(strconv.Itoa(id.Stamp))
}

// writeString writes an NFC-normalized, length-prefixed string so that no
// string content can be confused with surrounding structure.
func writeString(buf *bytes.Buffer, s string) {
	s = norm.NFC.String(s)
	buf.WriteString(strconv.Itoa(len(s)))
	buf.WriteByte(':')
	buf.WriteString(s)
}

package emit

import (
	"fmt"

	"github.com/roach88/sable/internal/wasm"
)

// Magic and Version open every binary module.
var (
	Magic   = []byte{0x00, 0x61, 0x73, 0x6D}
	Version = []byte{0x01, 0x00, 0x00, 0x00}
)

// Section ids, in the order sections must appear.
const (
	sectionType     byte = 1
	sectionImport   byte = 2
	sectionFunction byte = 3
	sectionExport   byte = 7
	sectionElement  byte = 9
	sectionCode     byte = 10
)

// Value and heap type encodings.
const (
	valI32 byte = 0x7F
	valF64 byte = 0x7C

	refNullable byte = 0x63
	refNonNull  byte = 0x64

	heapFunc byte = 0x70
	heapAny  byte = 0x6E
	heapI31  byte = 0x6C

	compFunc   byte = 0x60
	compStruct byte = 0x5F
	compArray  byte = 0x5E
)

// Plain opcodes.
const (
	opUnreachable byte = 0x00
	opBlock       byte = 0x02
	opLoop        byte = 0x03
	opIf          byte = 0x04
	opElse        byte = 0x05
	opEnd         byte = 0x0B
	opBr          byte = 0x0C
	opBrIf        byte = 0x0D
	opReturn      byte = 0x0F
	opCall        byte = 0x10
	opCallRef     byte = 0x14
	opDrop        byte = 0x1A
	opLocalGet    byte = 0x20
	opLocalSet    byte = 0x21
	opI32Const    byte = 0x41
	opF64Const    byte = 0x44
	opI32Eqz      byte = 0x45
	opF64Neg      byte = 0x9A
	opF64Convert  byte = 0xB7 // f64.convert_i32_s
	opRefFunc     byte = 0xD2
	blockVoid     byte = 0x40
)

// Prefixed opcodes.
const (
	prefixSat byte = 0xFC
	satTrunc  byte = 0x02 // i32.trunc_sat_f64_s

	prefixGC      byte = 0xFB
	gcStructNew   byte = 0x00
	gcStructGet   byte = 0x02
	gcStructSet   byte = 0x05
	gcArrayNew    byte = 0x06
	gcArrayFixed  byte = 0x08
	gcArrayGet    byte = 0x0B
	gcArraySet    byte = 0x0E
	gcArrayLen    byte = 0x0F
	gcRefTest     byte = 0x14
	gcRefCast     byte = 0x16
	gcRefCastNull byte = 0x17
	gcRefI31      byte = 0x1C
	gcI31GetS     byte = 0x1D
)

var binOpBytes = map[wasm.BinOp]byte{
	wasm.I32Add:  0x6A,
	wasm.I32Sub:  0x6B,
	wasm.I32Mul:  0x6C,
	wasm.I32DivS: 0x6D,
	wasm.I32RemS: 0x6F,
	wasm.I32Eq:   0x46,
	wasm.I32Ne:   0x47,
	wasm.I32LtS:  0x48,
	wasm.I32GtS:  0x4A,
	wasm.I32LeS:  0x4C,
	wasm.I32GeS:  0x4E,
	wasm.F64Eq:   0x61,
	wasm.F64Ne:   0x62,
	wasm.F64Lt:   0x63,
	wasm.F64Gt:   0x64,
	wasm.F64Le:   0x65,
	wasm.F64Ge:   0x66,
	wasm.F64Add:  0xA0,
	wasm.F64Sub:  0xA1,
	wasm.F64Mul:  0xA2,
	wasm.F64Div:  0xA3,
}

// InstructionRecorder observes the byte extent of each emitted top-level
// instruction; the source-map builder implements it.
type InstructionRecorder interface {
	SetFile(name string)
	SetLine(line int)
	AddInstruction(size int)
}

// Binary renders the module in the binary format.
func Binary(m *wasm.Module) ([]byte, error) {
	return BinaryWithRecorder(m, nil)
}

// BinaryWithRecorder renders the module and reports per-instruction
// extents to rec as code is laid out. rec may be nil.
func BinaryWithRecorder(m *wasm.Module, rec InstructionRecorder) ([]byte, error) {
	e := newBinaryEncoder(m, rec)
	return e.encode()
}

// funcSig is a structural signature key for deduplication.
type funcSig string

func sigKey(params, results []wasm.ValType) funcSig {
	s := ""
	for _, t := range params {
		s += t.String() + ","
	}
	s += "->"
	for _, t := range results {
		s += t.String() + ","
	}
	return funcSig(s)
}

type binaryEncoder struct {
	m   *wasm.Module
	rec InstructionRecorder

	// extraSigs are synthesized signature types for functions whose
	// signature is not among the declared function types. They follow
	// the declared types in the type section.
	extraSigs  []wasm.FuncType
	sigIndex   map[funcSig]int
	importSig  []int
	funcSigIdx []int
}

func newBinaryEncoder(m *wasm.Module, rec InstructionRecorder) *binaryEncoder {
	e := &binaryEncoder{m: m, rec: rec, sigIndex: map[funcSig]int{}}

	declared := len(m.Structs) + len(m.Arrays) + len(m.FuncTypes)
	for i, ft := range m.FuncTypes {
		key := sigKey(ft.Params, ft.Results)
		if _, ok := e.sigIndex[key]; !ok {
			e.sigIndex[key] = len(m.Structs) + len(m.Arrays) + i
		}
	}
	ensure := func(params, results []wasm.ValType) int {
		key := sigKey(params, results)
		if idx, ok := e.sigIndex[key]; ok {
			return idx
		}
		idx := declared + len(e.extraSigs)
		e.extraSigs = append(e.extraSigs, wasm.FuncType{Params: params, Results: results})
		e.sigIndex[key] = idx
		return idx
	}
	for _, imp := range m.Imports {
		e.importSig = append(e.importSig, ensure(imp.Params, imp.Results))
	}
	for _, fn := range m.Funcs {
		params := make([]wasm.ValType, len(fn.Params))
		for i, p := range fn.Params {
			params[i] = p.Type
		}
		e.funcSigIdx = append(e.funcSigIdx, ensure(params, fn.Results))
	}
	return e
}

func (e *binaryEncoder) typeIndex(name string) (int, error) {
	idx, ok := e.m.TypeIndex(name)
	if !ok {
		return 0, fmt.Errorf("undeclared type %q", name)
	}
	return idx, nil
}

func (e *binaryEncoder) funcIndex(name string) (int, error) {
	idx, ok := e.m.FuncIndex(name)
	if !ok {
		return 0, fmt.Errorf("unknown function %q", name)
	}
	return idx, nil
}

func (e *binaryEncoder) encode() ([]byte, error) {
	out := append([]byte{}, Magic...)
	out = append(out, Version...)

	sections := []struct {
		id    byte
		build func() ([]byte, error)
	}{
		{sectionType, e.typeSection},
		{sectionImport, e.importSection},
		{sectionFunction, e.functionSection},
		{sectionExport, e.exportSection},
		{sectionElement, e.elementSection},
		{sectionCode, e.codeSection},
	}
	for _, s := range sections {
		body, err := s.build()
		if err != nil {
			return nil, err
		}
		if len(body) == 0 {
			continue
		}
		out = append(out, s.id)
		out = AppendUleb128(out, uint64(len(body)))
		out = append(out, body...)
	}
	return out, nil
}

func (e *binaryEncoder) appendValType(dst []byte, t wasm.ValType) ([]byte, error) {
	switch v := t.(type) {
	case wasm.I32:
		return append(dst, valI32), nil
	case wasm.F64:
		return append(dst, valF64), nil
	case wasm.Ref:
		if v.Nullable {
			dst = append(dst, refNullable)
		} else {
			dst = append(dst, refNonNull)
		}
		return e.appendHeapType(dst, v.Heap)
	}
	return dst, fmt.Errorf("unencodable value type %T", t)
}

func (e *binaryEncoder) appendHeapType(dst []byte, h wasm.HeapType) ([]byte, error) {
	switch h.Kind {
	case wasm.HeapAny:
		return append(dst, heapAny), nil
	case wasm.HeapI31:
		return append(dst, heapI31), nil
	case wasm.HeapFunc:
		return append(dst, heapFunc), nil
	case wasm.HeapNamed:
		idx, err := e.typeIndex(h.Name)
		if err != nil {
			return dst, err
		}
		return AppendSleb128(dst, int64(idx)), nil
	}
	return dst, fmt.Errorf("unencodable heap type %v", h)
}

func (e *binaryEncoder) appendFuncSig(dst []byte, params, results []wasm.ValType) ([]byte, error) {
	var err error
	dst = append(dst, compFunc)
	dst = AppendUleb128(dst, uint64(len(params)))
	for _, t := range params {
		if dst, err = e.appendValType(dst, t); err != nil {
			return dst, err
		}
	}
	dst = AppendUleb128(dst, uint64(len(results)))
	for _, t := range results {
		if dst, err = e.appendValType(dst, t); err != nil {
			return dst, err
		}
	}
	return dst, nil
}

func (e *binaryEncoder) typeSection() ([]byte, error) {
	m := e.m
	count := len(m.Structs) + len(m.Arrays) + len(m.FuncTypes) + len(e.extraSigs)
	if count == 0 {
		return nil, nil
	}
	var err error
	body := AppendUleb128(nil, uint64(count))
	for _, st := range m.Structs {
		body = append(body, compStruct)
		body = AppendUleb128(body, uint64(len(st.Fields)))
		for _, f := range st.Fields {
			if body, err = e.appendValType(body, f.Type); err != nil {
				return nil, err
			}
			if f.Mutable {
				body = append(body, 0x01)
			} else {
				body = append(body, 0x00)
			}
		}
	}
	for _, at := range m.Arrays {
		body = append(body, compArray)
		if body, err = e.appendValType(body, at.Elem); err != nil {
			return nil, err
		}
		if at.Mutable {
			body = append(body, 0x01)
		} else {
			body = append(body, 0x00)
		}
	}
	for _, ft := range m.FuncTypes {
		if body, err = e.appendFuncSig(body, ft.Params, ft.Results); err != nil {
			return nil, err
		}
	}
	for _, ft := range e.extraSigs {
		if body, err = e.appendFuncSig(body, ft.Params, ft.Results); err != nil {
			return nil, err
		}
	}
	return body, nil
}

func (e *binaryEncoder) importSection() ([]byte, error) {
	if len(e.m.Imports) == 0 {
		return nil, nil
	}
	body := AppendUleb128(nil, uint64(len(e.m.Imports)))
	for i, imp := range e.m.Imports {
		body = appendName(body, imp.Module)
		body = appendName(body, imp.Name)
		body = append(body, 0x00) // function import
		body = AppendUleb128(body, uint64(e.importSig[i]))
	}
	return body, nil
}

func (e *binaryEncoder) functionSection() ([]byte, error) {
	if len(e.m.Funcs) == 0 {
		return nil, nil
	}
	body := AppendUleb128(nil, uint64(len(e.m.Funcs)))
	for _, idx := range e.funcSigIdx {
		body = AppendUleb128(body, uint64(idx))
	}
	return body, nil
}

// elementSection declares every ref.func target in a declarative
// segment, which the format requires before a function reference may be
// taken.
func (e *binaryEncoder) elementSection() ([]byte, error) {
	seen := map[string]bool{}
	var targets []int
	var walk func(in wasm.Instr) error
	walk = func(in wasm.Instr) error {
		rf, ok := in.(wasm.RefFunc)
		if !ok {
			return eachChild(in, walk)
		}
		if seen[rf.Func] {
			return nil
		}
		seen[rf.Func] = true
		idx, err := e.funcIndex(rf.Func)
		if err != nil {
			return err
		}
		targets = append(targets, idx)
		return nil
	}
	for _, fn := range e.m.Funcs {
		for _, in := range fn.Body {
			if err := walk(in); err != nil {
				return nil, err
			}
		}
	}
	if len(targets) == 0 {
		return nil, nil
	}
	body := AppendUleb128(nil, 1) // one segment
	body = AppendUleb128(body, 3) // declarative, element-kind encoding
	body = append(body, 0x00)     // elemkind: funcref
	body = AppendUleb128(body, uint64(len(targets)))
	for _, idx := range targets {
		body = AppendUleb128(body, uint64(idx))
	}
	return body, nil
}

func (e *binaryEncoder) exportSection() ([]byte, error) {
	if len(e.m.Exports) == 0 {
		return nil, nil
	}
	body := AppendUleb128(nil, uint64(len(e.m.Exports)))
	for _, ex := range e.m.Exports {
		idx, err := e.funcIndex(ex.Func)
		if err != nil {
			return nil, err
		}
		body = appendName(body, ex.Name)
		body = append(body, 0x00) // function export
		body = AppendUleb128(body, uint64(idx))
	}
	return body, nil
}

func (e *binaryEncoder) codeSection() ([]byte, error) {
	if len(e.m.Funcs) == 0 {
		return nil, nil
	}
	body := AppendUleb128(nil, uint64(len(e.m.Funcs)))
	for _, fn := range e.m.Funcs {
		code, err := e.encodeFunc(fn)
		if err != nil {
			return nil, fmt.Errorf("encoding %s: %w", fn.Name, err)
		}
		body = AppendUleb128(body, uint64(len(code)))
		body = append(body, code...)
	}
	return body, nil
}

func (e *binaryEncoder) encodeFunc(fn wasm.Func) ([]byte, error) {
	var err error

	// Locals are declared as runs of identical types.
	type run struct {
		count int
		typ   wasm.ValType
	}
	var runs []run
	for _, l := range fn.Locals {
		if len(runs) > 0 && wasm.SameType(runs[len(runs)-1].typ, l.Type) {
			runs[len(runs)-1].count++
		} else {
			runs = append(runs, run{1, l.Type})
		}
	}
	code := AppendUleb128(nil, uint64(len(runs)))
	for _, r := range runs {
		code = AppendUleb128(code, uint64(r.count))
		if code, err = e.appendValType(code, r.typ); err != nil {
			return nil, err
		}
	}

	if e.rec != nil {
		e.rec.SetFile(fn.Name)
	}
	labels := []string{""} // function frame
	for i, in := range fn.Body {
		before := len(code)
		if code, err = e.appendInstr(code, in, labels); err != nil {
			return nil, err
		}
		if e.rec != nil {
			e.rec.SetLine(i + 1)
			e.rec.AddInstruction(len(code) - before)
		}
	}
	return append(code, opEnd), nil
}

// labelDepth resolves a textual label to its relative branch depth.
func labelDepth(labels []string, label string) (uint64, error) {
	for i := len(labels) - 1; i >= 0; i-- {
		if labels[i] == label {
			return uint64(len(labels) - 1 - i), nil
		}
	}
	return 0, fmt.Errorf("unknown label %q", label)
}

func (e *binaryEncoder) appendBlockType(dst []byte, results []wasm.ValType) ([]byte, error) {
	switch len(results) {
	case 0:
		return append(dst, blockVoid), nil
	case 1:
		return e.appendValType(dst, results[0])
	}
	return dst, fmt.Errorf("multi-result block")
}

func (e *binaryEncoder) appendInstr(dst []byte, in wasm.Instr, labels []string) ([]byte, error) {
	var err error
	children := func(ins ...wasm.Instr) error {
		for _, c := range ins {
			if c == nil {
				continue
			}
			if dst, err = e.appendInstr(dst, c, labels); err != nil {
				return err
			}
		}
		return nil
	}

	switch n := in.(type) {
	case wasm.I32Const:
		dst = append(dst, opI32Const)
		return AppendSleb128(dst, int64(n.Value)), nil
	case wasm.F64Const:
		dst = append(dst, opF64Const)
		return appendF64(dst, n.Value), nil
	case wasm.Binary:
		if err = children(n.L, n.R); err != nil {
			return nil, err
		}
		op, ok := binOpBytes[n.Op]
		if !ok {
			return nil, fmt.Errorf("unencodable operator %v", n.Op)
		}
		return append(dst, op), nil
	case wasm.Unary:
		if err = children(n.X); err != nil {
			return nil, err
		}
		switch n.Op {
		case wasm.F64Neg:
			return append(dst, opF64Neg), nil
		case wasm.F64ConvertI32S:
			return append(dst, opF64Convert), nil
		case wasm.I32Eqz:
			return append(dst, opI32Eqz), nil
		case wasm.I32TruncSatF64S:
			return append(dst, prefixSat, satTrunc), nil
		}
		return nil, fmt.Errorf("unencodable operator %v", n.Op)
	case wasm.LocalGet:
		dst = append(dst, opLocalGet)
		return AppendUleb128(dst, uint64(n.Index)), nil
	case wasm.LocalSet:
		if err = children(n.Value); err != nil {
			return nil, err
		}
		dst = append(dst, opLocalSet)
		return AppendUleb128(dst, uint64(n.Index)), nil
	case wasm.Drop:
		if err = children(n.Value); err != nil {
			return nil, err
		}
		return append(dst, opDrop), nil
	case wasm.If:
		if err = children(n.Cond); err != nil {
			return nil, err
		}
		dst = append(dst, opIf)
		if dst, err = e.appendBlockType(dst, n.Result); err != nil {
			return nil, err
		}
		inner := append(labels, "")
		for _, i := range n.Then {
			if dst, err = e.appendInstr(dst, i, inner); err != nil {
				return nil, err
			}
		}
		if len(n.Else) > 0 {
			dst = append(dst, opElse)
			for _, i := range n.Else {
				if dst, err = e.appendInstr(dst, i, inner); err != nil {
					return nil, err
				}
			}
		}
		return append(dst, opEnd), nil
	case wasm.Block:
		dst = append(dst, opBlock)
		if dst, err = e.appendBlockType(dst, n.Result); err != nil {
			return nil, err
		}
		inner := append(labels, n.Label)
		for _, i := range n.Body {
			if dst, err = e.appendInstr(dst, i, inner); err != nil {
				return nil, err
			}
		}
		return append(dst, opEnd), nil
	case wasm.Loop:
		dst = append(dst, opLoop, blockVoid)
		inner := append(labels, n.Label)
		for _, i := range n.Body {
			if dst, err = e.appendInstr(dst, i, inner); err != nil {
				return nil, err
			}
		}
		return append(dst, opEnd), nil
	case wasm.Br:
		if err = children(n.Value); err != nil {
			return nil, err
		}
		depth, err := labelDepth(labels, n.Label)
		if err != nil {
			return nil, err
		}
		dst = append(dst, opBr)
		return AppendUleb128(dst, depth), nil
	case wasm.BrIf:
		if err = children(n.Cond); err != nil {
			return nil, err
		}
		depth, err := labelDepth(labels, n.Label)
		if err != nil {
			return nil, err
		}
		dst = append(dst, opBrIf)
		return AppendUleb128(dst, depth), nil
	case wasm.Return:
		if err = children(n.Value); err != nil {
			return nil, err
		}
		return append(dst, opReturn), nil
	case wasm.Unreachable:
		return append(dst, opUnreachable), nil
	case wasm.Call:
		if err = children(n.Args...); err != nil {
			return nil, err
		}
		idx, err := e.funcIndex(n.Func)
		if err != nil {
			return nil, err
		}
		dst = append(dst, opCall)
		return AppendUleb128(dst, uint64(idx)), nil
	case wasm.CallRef:
		if err = children(n.Args...); err != nil {
			return nil, err
		}
		if err = children(n.Fn); err != nil {
			return nil, err
		}
		idx, err := e.typeIndex(n.Type)
		if err != nil {
			return nil, err
		}
		dst = append(dst, opCallRef)
		return AppendUleb128(dst, uint64(idx)), nil
	case wasm.RefFunc:
		idx, err := e.funcIndex(n.Func)
		if err != nil {
			return nil, err
		}
		dst = append(dst, opRefFunc)
		return AppendUleb128(dst, uint64(idx)), nil
	case wasm.RefI31:
		if err = children(n.Value); err != nil {
			return nil, err
		}
		return append(dst, prefixGC, gcRefI31), nil
	case wasm.I31GetS:
		if err = children(n.Value); err != nil {
			return nil, err
		}
		return append(dst, prefixGC, gcI31GetS), nil
	case wasm.RefTest:
		if err = children(n.Value); err != nil {
			return nil, err
		}
		dst = append(dst, prefixGC, gcRefTest)
		return e.appendHeapType(dst, n.Heap)
	case wasm.RefCast:
		if err = children(n.Value); err != nil {
			return nil, err
		}
		if n.Type.Nullable {
			dst = append(dst, prefixGC, gcRefCastNull)
		} else {
			dst = append(dst, prefixGC, gcRefCast)
		}
		return e.appendHeapType(dst, n.Type.Heap)
	case wasm.StructNew:
		if err = children(n.Args...); err != nil {
			return nil, err
		}
		idx, err := e.typeIndex(n.Type)
		if err != nil {
			return nil, err
		}
		dst = append(dst, prefixGC, gcStructNew)
		return AppendUleb128(dst, uint64(idx)), nil
	case wasm.StructGet:
		if err = children(n.Target); err != nil {
			return nil, err
		}
		idx, err := e.typeIndex(n.Type)
		if err != nil {
			return nil, err
		}
		dst = append(dst, prefixGC, gcStructGet)
		dst = AppendUleb128(dst, uint64(idx))
		return AppendUleb128(dst, uint64(n.Field)), nil
	case wasm.StructSet:
		if err = children(n.Target, n.Value); err != nil {
			return nil, err
		}
		idx, err := e.typeIndex(n.Type)
		if err != nil {
			return nil, err
		}
		dst = append(dst, prefixGC, gcStructSet)
		dst = AppendUleb128(dst, uint64(idx))
		return AppendUleb128(dst, uint64(n.Field)), nil
	case wasm.ArrayNewFixed:
		if err = children(n.Elems...); err != nil {
			return nil, err
		}
		idx, err := e.typeIndex(n.Type)
		if err != nil {
			return nil, err
		}
		dst = append(dst, prefixGC, gcArrayFixed)
		dst = AppendUleb128(dst, uint64(idx))
		return AppendUleb128(dst, uint64(len(n.Elems))), nil
	case wasm.ArrayNew:
		if err = children(n.Elem, n.Len); err != nil {
			return nil, err
		}
		idx, err := e.typeIndex(n.Type)
		if err != nil {
			return nil, err
		}
		dst = append(dst, prefixGC, gcArrayNew)
		return AppendUleb128(dst, uint64(idx)), nil
	case wasm.ArrayGet:
		if err = children(n.Target, n.Index); err != nil {
			return nil, err
		}
		idx, err := e.typeIndex(n.Type)
		if err != nil {
			return nil, err
		}
		dst = append(dst, prefixGC, gcArrayGet)
		return AppendUleb128(dst, uint64(idx)), nil
	case wasm.ArraySet:
		if err = children(n.Target, n.Index, n.Value); err != nil {
			return nil, err
		}
		idx, err := e.typeIndex(n.Type)
		if err != nil {
			return nil, err
		}
		dst = append(dst, prefixGC, gcArraySet)
		return AppendUleb128(dst, uint64(idx)), nil
	case wasm.ArrayLen:
		if err = children(n.Target); err != nil {
			return nil, err
		}
		return append(dst, prefixGC, gcArrayLen), nil
	}
	return nil, fmt.Errorf("unencodable instruction %T", in)
}

// eachChild invokes f on every direct child of in.
func eachChild(in wasm.Instr, f func(wasm.Instr) error) error {
	visit := func(ins ...wasm.Instr) error {
		for _, c := range ins {
			if c == nil {
				continue
			}
			if err := f(c); err != nil {
				return err
			}
		}
		return nil
	}
	switch n := in.(type) {
	case wasm.Binary:
		return visit(n.L, n.R)
	case wasm.Unary:
		return visit(n.X)
	case wasm.LocalSet:
		return visit(n.Value)
	case wasm.Drop:
		return visit(n.Value)
	case wasm.If:
		if err := visit(n.Cond); err != nil {
			return err
		}
		if err := visit(n.Then...); err != nil {
			return err
		}
		return visit(n.Else...)
	case wasm.Block:
		return visit(n.Body...)
	case wasm.Loop:
		return visit(n.Body...)
	case wasm.Br:
		return visit(n.Value)
	case wasm.BrIf:
		return visit(n.Cond)
	case wasm.Return:
		return visit(n.Value)
	case wasm.Call:
		return visit(n.Args...)
	case wasm.CallRef:
		if err := visit(n.Args...); err != nil {
			return err
		}
		return visit(n.Fn)
	case wasm.RefI31:
		return visit(n.Value)
	case wasm.I31GetS:
		return visit(n.Value)
	case wasm.RefTest:
		return visit(n.Value)
	case wasm.RefCast:
		return visit(n.Value)
	case wasm.StructNew:
		return visit(n.Args...)
	case wasm.StructGet:
		return visit(n.Target)
	case wasm.StructSet:
		return visit(n.Target, n.Value)
	case wasm.ArrayNewFixed:
		return visit(n.Elems...)
	case wasm.ArrayNew:
		return visit(n.Elem, n.Len)
	case wasm.ArrayGet:
		return visit(n.Target, n.Index)
	case wasm.ArraySet:
		return visit(n.Target, n.Index, n.Value)
	case wasm.ArrayLen:
		return visit(n.Target)
	}
	return nil
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"

	"github.com/roach88/sable/internal/ir"
)

// Error codes for load and command failures.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoProgram   = "E003" // No program found in CUE files
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error
	ErrCodeBadExpr     = "E008" // Malformed expression
	ErrCodeInvalid     = "E009" // Program failed validation
)

// LoadError represents an error that occurred during program loading.
type LoadError struct {
	Code    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadedProgram is a program decoded from CUE, with the namer state
// needed to continue allocating fresh names during lowering.
type LoadedProgram struct {
	Program ir.Program
	Namer   ir.Namer
}

// LoadProgram loads a program from a CUE file or a directory of CUE
// files. The document must carry a top-level "program" struct:
//
//	program: {
//		name: "double"
//		bindings: [
//			{name: "double", value: {fn: {
//				params: ["x"]
//				body: {prim: {op: "addint", args: [{var: "x"}, {var: "x"}]}}
//			}}},
//		]
//	}
//
// Decoding errors are collected per binding rather than failing fast.
func LoadProgram(path string) (*LoadedProgram, []error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("program path not found: %s", path)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error accessing %s: %v", path, err)}}
	}

	cfg := &load.Config{}
	targets := []string{"."}
	if info.IsDir() {
		cfg.Dir = path
	} else {
		cfg.Dir = filepath.Dir(path)
		targets = []string{filepath.Base(path)}
	}
	instances := load.Instances(targets, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	ctx := cuecontext.New()
	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	progVal := value.LookupPath(cue.ParsePath("program"))
	if !progVal.Exists() {
		return nil, []error{&LoadError{Code: ErrCodeNoProgram, Message: "no top-level \"program\" struct found"}}
	}
	return decodeProgram(progVal)
}

func decodeProgram(v cue.Value) (*LoadedProgram, []error) {
	var errs []error

	name, err := v.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		errs = append(errs, &LoadError{Code: ErrCodeBadExpr, Message: fmt.Sprintf("program.name: %v", err)})
		name = "unnamed"
	}

	bindingsVal := v.LookupPath(cue.ParsePath("bindings"))
	if !bindingsVal.Exists() {
		errs = append(errs, &LoadError{Code: ErrCodeNoProgram, Message: "program has no bindings"})
		return nil, errs
	}

	d := &exprDecoder{namer: ir.NewNamer(), globals: map[string]ir.Ident{}}

	// Register every top-level name first so any binding value can call
	// any other, including itself.
	type rawBinding struct {
		ident ir.Ident
		value cue.Value
	}
	var raw []rawBinding
	iter, iterErr := bindingsVal.List()
	if iterErr != nil {
		errs = append(errs, &LoadError{Code: ErrCodeBadExpr, Message: fmt.Sprintf("program.bindings: %v", iterErr)})
		return nil, errs
	}
	for iter.Next() {
		bv := iter.Value()
		bname, err := bv.LookupPath(cue.ParsePath("name")).String()
		if err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeBadExpr, Message: fmt.Sprintf("binding name: %v", err)})
			continue
		}
		id := d.fresh(bname)
		d.globals[bname] = id
		raw = append(raw, rawBinding{ident: id, value: bv.LookupPath(cue.ParsePath("value"))})
	}

	prog := ir.Program{Name: name}
	for _, rb := range raw {
		expr, err := d.decodeExpr(rb.value)
		if err != nil {
			errs = append(errs, &LoadError{Code: ErrCodeBadExpr, Message: fmt.Sprintf("binding %s: %v", rb.ident.Name, err)})
			continue
		}
		prog.Bindings = append(prog.Bindings, ir.Binding{Name: rb.ident, Value: expr})
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return &LoadedProgram{Program: prog, Namer: d.namer}, nil
}

// exprDecoder turns CUE expression documents into IR, resolving textual
// names to stamped idents with lexical scoping.
type exprDecoder struct {
	namer   ir.Namer
	scopes  []map[string]ir.Ident
	globals map[string]ir.Ident
}

func (d *exprDecoder) fresh(name string) ir.Ident {
	id, namer := d.namer.Fresh(name)
	d.namer = namer
	return id
}

func (d *exprDecoder) push() {
	d.scopes = append(d.scopes, map[string]ir.Ident{})
}

func (d *exprDecoder) pop() {
	d.scopes = d.scopes[:len(d.scopes)-1]
}

func (d *exprDecoder) bind(name string) ir.Ident {
	id := d.fresh(name)
	d.scopes[len(d.scopes)-1][name] = id
	return id
}

// resolve maps a textual name to its ident. Unknown names get a zero
// stamp so validation can report them instead of the loader.
func (d *exprDecoder) resolve(name string) ir.Ident {
	for i := len(d.scopes) - 1; i >= 0; i-- {
		if id, ok := d.scopes[i][name]; ok {
			return id
		}
	}
	if id, ok := d.globals[name]; ok {
		return id
	}
	return ir.Ident{Name: name}
}

func (d *exprDecoder) decodeExpr(v cue.Value) (ir.Expr, error) {
	if !v.Exists() {
		return nil, fmt.Errorf("missing expression")
	}
	lookup := func(field string) (cue.Value, bool) {
		f := v.LookupPath(cue.ParsePath(field))
		return f, f.Exists()
	}

	if f, ok := lookup("int"); ok {
		n, err := f.Int64()
		if err != nil {
			return nil, fmt.Errorf("int: %w", err)
		}
		return ir.IntConst{Value: n}, nil
	}
	if f, ok := lookup("float"); ok {
		x, err := f.Float64()
		if err != nil {
			return nil, fmt.Errorf("float: %w", err)
		}
		return ir.FloatConst{Value: x}, nil
	}
	if f, ok := lookup("bool"); ok {
		b, err := f.Bool()
		if err != nil {
			return nil, fmt.Errorf("bool: %w", err)
		}
		return ir.BoolConst{Value: b}, nil
	}
	if f, ok := lookup("str"); ok {
		s, err := f.String()
		if err != nil {
			return nil, fmt.Errorf("str: %w", err)
		}
		return ir.StringConst{Value: s}, nil
	}
	if f, ok := lookup("var"); ok {
		name, err := f.String()
		if err != nil {
			return nil, fmt.Errorf("var: %w", err)
		}
		return ir.Var{Ident: d.resolve(name)}, nil
	}
	if f, ok := lookup("fn"); ok {
		return d.decodeFunc(f)
	}
	if f, ok := lookup("apply"); ok {
		return d.decodeApply(f)
	}
	if f, ok := lookup("prim"); ok {
		return d.decodePrim(f)
	}
	if f, ok := lookup("let"); ok {
		return d.decodeLet(f)
	}
	if f, ok := lookup("letrec"); ok {
		return d.decodeLetRec(f)
	}
	if f, ok := lookup("assign"); ok {
		return d.decodeAssign(f)
	}
	if f, ok := lookup("if"); ok {
		return d.decodeIf(f)
	}
	if f, ok := lookup("seq"); ok {
		return d.decodeSeq(f)
	}
	if f, ok := lookup("for"); ok {
		return d.decodeFor(f)
	}
	if f, ok := lookup("switch"); ok {
		return d.decodeSwitch(f)
	}
	if f, ok := lookup("exit"); ok {
		return d.decodeExit(f)
	}
	if f, ok := lookup("catch"); ok {
		return d.decodeCatch(f)
	}
	if f, ok := lookup("try"); ok {
		return d.decodeTry(f)
	}
	return nil, fmt.Errorf("unrecognized expression at %s", v.Path())
}

func (d *exprDecoder) decodeStrings(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, err
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

func (d *exprDecoder) decodeExprs(v cue.Value) ([]ir.Expr, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, err
	}
	var out []ir.Expr
	for iter.Next() {
		e, err := d.decodeExpr(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func (d *exprDecoder) decodeFunc(v cue.Value) (ir.Expr, error) {
	names, err := d.decodeStrings(v.LookupPath(cue.ParsePath("params")))
	if err != nil {
		return nil, fmt.Errorf("fn.params: %w", err)
	}
	d.push()
	defer d.pop()
	params := make([]ir.Ident, len(names))
	for i, n := range names {
		params[i] = d.bind(n)
	}
	body, err := d.decodeExpr(v.LookupPath(cue.ParsePath("body")))
	if err != nil {
		return nil, fmt.Errorf("fn.body: %w", err)
	}
	return ir.Func{Params: params, Body: body}, nil
}

func (d *exprDecoder) decodeApply(v cue.Value) (ir.Expr, error) {
	fn, err := d.decodeExpr(v.LookupPath(cue.ParsePath("fn")))
	if err != nil {
		return nil, fmt.Errorf("apply.fn: %w", err)
	}
	args, err := d.decodeExprs(v.LookupPath(cue.ParsePath("args")))
	if err != nil {
		return nil, fmt.Errorf("apply.args: %w", err)
	}
	return ir.Apply{Fn: fn, Args: args}, nil
}

var letKinds = map[string]ir.LetKind{
	"strict":   ir.LetStrict,
	"alias":    ir.LetAlias,
	"variable": ir.LetVariable,
}

func (d *exprDecoder) decodeLet(v cue.Value) (ir.Expr, error) {
	kind := ir.LetStrict
	if kv := v.LookupPath(cue.ParsePath("kind")); kv.Exists() {
		s, err := kv.String()
		if err != nil {
			return nil, fmt.Errorf("let.kind: %w", err)
		}
		k, ok := letKinds[s]
		if !ok {
			return nil, fmt.Errorf("let.kind: unknown kind %q", s)
		}
		kind = k
	}
	name, err := v.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		return nil, fmt.Errorf("let.name: %w", err)
	}
	value, err := d.decodeExpr(v.LookupPath(cue.ParsePath("value")))
	if err != nil {
		return nil, fmt.Errorf("let.value: %w", err)
	}
	d.push()
	defer d.pop()
	id := d.bind(name)
	body, err := d.decodeExpr(v.LookupPath(cue.ParsePath("in")))
	if err != nil {
		return nil, fmt.Errorf("let.in: %w", err)
	}
	return ir.Let{Kind: kind, Name: id, Value: value, Body: body}, nil
}

func (d *exprDecoder) decodeLetRec(v cue.Value) (ir.Expr, error) {
	bindingsVal := v.LookupPath(cue.ParsePath("bindings"))
	iter, err := bindingsVal.List()
	if err != nil {
		return nil, fmt.Errorf("letrec.bindings: %w", err)
	}

	d.push()
	defer d.pop()

	// All names are in scope for every value.
	type rawBinding struct {
		ident ir.Ident
		value cue.Value
	}
	var raw []rawBinding
	for iter.Next() {
		bv := iter.Value()
		name, err := bv.LookupPath(cue.ParsePath("name")).String()
		if err != nil {
			return nil, fmt.Errorf("letrec binding name: %w", err)
		}
		raw = append(raw, rawBinding{ident: d.bind(name), value: bv.LookupPath(cue.ParsePath("value"))})
	}

	var bindings []ir.Binding
	for _, rb := range raw {
		value, err := d.decodeExpr(rb.value)
		if err != nil {
			return nil, fmt.Errorf("letrec binding %s: %w", rb.ident.Name, err)
		}
		bindings = append(bindings, ir.Binding{Name: rb.ident, Value: value})
	}
	body, err := d.decodeExpr(v.LookupPath(cue.ParsePath("in")))
	if err != nil {
		return nil, fmt.Errorf("letrec.in: %w", err)
	}
	return ir.LetRec{Bindings: bindings, Body: body}, nil
}

func (d *exprDecoder) decodeAssign(v cue.Value) (ir.Expr, error) {
	name, err := v.LookupPath(cue.ParsePath("name")).String()
	if err != nil {
		return nil, fmt.Errorf("assign.name: %w", err)
	}
	value, err := d.decodeExpr(v.LookupPath(cue.ParsePath("value")))
	if err != nil {
		return nil, fmt.Errorf("assign.value: %w", err)
	}
	return ir.Assign{Name: d.resolve(name), Value: value}, nil
}

func (d *exprDecoder) decodeIf(v cue.Value) (ir.Expr, error) {
	cond, err := d.decodeExpr(v.LookupPath(cue.ParsePath("cond")))
	if err != nil {
		return nil, fmt.Errorf("if.cond: %w", err)
	}
	then, err := d.decodeExpr(v.LookupPath(cue.ParsePath("then")))
	if err != nil {
		return nil, fmt.Errorf("if.then: %w", err)
	}
	els, err := d.decodeExpr(v.LookupPath(cue.ParsePath("else")))
	if err != nil {
		return nil, fmt.Errorf("if.else: %w", err)
	}
	return ir.If{Cond: cond, Then: then, Else: els}, nil
}

func (d *exprDecoder) decodeSeq(v cue.Value) (ir.Expr, error) {
	exprs, err := d.decodeExprs(v)
	if err != nil {
		return nil, fmt.Errorf("seq: %w", err)
	}
	if len(exprs) == 0 {
		return nil, fmt.Errorf("seq: empty sequence")
	}
	out := exprs[len(exprs)-1]
	for i := len(exprs) - 2; i >= 0; i-- {
		out = ir.Seq{First: exprs[i], Then: out}
	}
	return out, nil
}

func (d *exprDecoder) decodeFor(v cue.Value) (ir.Expr, error) {
	name, err := v.LookupPath(cue.ParsePath("var")).String()
	if err != nil {
		return nil, fmt.Errorf("for.var: %w", err)
	}
	from, err := d.decodeExpr(v.LookupPath(cue.ParsePath("from")))
	if err != nil {
		return nil, fmt.Errorf("for.from: %w", err)
	}
	to, err := d.decodeExpr(v.LookupPath(cue.ParsePath("to")))
	if err != nil {
		return nil, fmt.Errorf("for.to: %w", err)
	}
	dir := ir.Upto
	if dv := v.LookupPath(cue.ParsePath("dir")); dv.Exists() {
		s, err := dv.String()
		if err != nil {
			return nil, fmt.Errorf("for.dir: %w", err)
		}
		switch s {
		case "upto":
			dir = ir.Upto
		case "downto":
			dir = ir.Downto
		default:
			return nil, fmt.Errorf("for.dir: unknown direction %q", s)
		}
	}
	d.push()
	defer d.pop()
	id := d.bind(name)
	body, err := d.decodeExpr(v.LookupPath(cue.ParsePath("body")))
	if err != nil {
		return nil, fmt.Errorf("for.body: %w", err)
	}
	return ir.For{Var: id, From: from, To: to, Dir: dir, Body: body}, nil
}

func (d *exprDecoder) decodeCases(v cue.Value) ([]ir.SwitchCase, error) {
	if !v.Exists() {
		return nil, nil
	}
	iter, err := v.List()
	if err != nil {
		return nil, err
	}
	var out []ir.SwitchCase
	for iter.Next() {
		cv := iter.Value()
		tag, err := cv.LookupPath(cue.ParsePath("tag")).Int64()
		if err != nil {
			return nil, fmt.Errorf("case tag: %w", err)
		}
		body, err := d.decodeExpr(cv.LookupPath(cue.ParsePath("body")))
		if err != nil {
			return nil, fmt.Errorf("case body: %w", err)
		}
		out = append(out, ir.SwitchCase{Tag: int(tag), Body: body})
	}
	return out, nil
}

func (d *exprDecoder) decodeSwitch(v cue.Value) (ir.Expr, error) {
	scrutinee, err := d.decodeExpr(v.LookupPath(cue.ParsePath("on")))
	if err != nil {
		return nil, fmt.Errorf("switch.on: %w", err)
	}
	consts, err := d.decodeCases(v.LookupPath(cue.ParsePath("consts")))
	if err != nil {
		return nil, fmt.Errorf("switch.consts: %w", err)
	}
	blocks, err := d.decodeCases(v.LookupPath(cue.ParsePath("blocks")))
	if err != nil {
		return nil, fmt.Errorf("switch.blocks: %w", err)
	}
	var deflt ir.Expr
	if dv := v.LookupPath(cue.ParsePath("default")); dv.Exists() {
		deflt, err = d.decodeExpr(dv)
		if err != nil {
			return nil, fmt.Errorf("switch.default: %w", err)
		}
	}
	return ir.Switch{Scrutinee: scrutinee, Consts: consts, Blocks: blocks, Default: deflt}, nil
}

func (d *exprDecoder) decodeExit(v cue.Value) (ir.Expr, error) {
	label, err := v.LookupPath(cue.ParsePath("label")).Int64()
	if err != nil {
		return nil, fmt.Errorf("exit.label: %w", err)
	}
	args, err := d.decodeExprs(v.LookupPath(cue.ParsePath("args")))
	if err != nil {
		return nil, fmt.Errorf("exit.args: %w", err)
	}
	return ir.Exit{Label: int(label), Args: args}, nil
}

func (d *exprDecoder) decodeCatch(v cue.Value) (ir.Expr, error) {
	body, err := d.decodeExpr(v.LookupPath(cue.ParsePath("body")))
	if err != nil {
		return nil, fmt.Errorf("catch.body: %w", err)
	}
	label, err := v.LookupPath(cue.ParsePath("label")).Int64()
	if err != nil {
		return nil, fmt.Errorf("catch.label: %w", err)
	}
	names, err := d.decodeStrings(v.LookupPath(cue.ParsePath("params")))
	if err != nil && v.LookupPath(cue.ParsePath("params")).Exists() {
		return nil, fmt.Errorf("catch.params: %w", err)
	}
	d.push()
	defer d.pop()
	params := make([]ir.Ident, len(names))
	for i, n := range names {
		params[i] = d.bind(n)
	}
	handler, err := d.decodeExpr(v.LookupPath(cue.ParsePath("handler")))
	if err != nil {
		return nil, fmt.Errorf("catch.handler: %w", err)
	}
	return ir.Catch{Body: body, Label: int(label), Params: params, Handler: handler}, nil
}

func (d *exprDecoder) decodeTry(v cue.Value) (ir.Expr, error) {
	body, err := d.decodeExpr(v.LookupPath(cue.ParsePath("body")))
	if err != nil {
		return nil, fmt.Errorf("try.body: %w", err)
	}
	name, err := v.LookupPath(cue.ParsePath("param")).String()
	if err != nil {
		return nil, fmt.Errorf("try.param: %w", err)
	}
	d.push()
	defer d.pop()
	id := d.bind(name)
	handler, err := d.decodeExpr(v.LookupPath(cue.ParsePath("handler")))
	if err != nil {
		return nil, fmt.Errorf("try.handler: %w", err)
	}
	return ir.Try{Body: body, Param: id, Handler: handler}, nil
}

var cmpNames = map[string]ir.Cmp{
	"==": ir.CmpEq,
	"!=": ir.CmpNe,
	"<":  ir.CmpLt,
	">":  ir.CmpGt,
	"<=": ir.CmpLe,
	">=": ir.CmpGe,
}

var simplePrims = map[string]ir.PrimKind{
	"addint":      ir.PAddInt,
	"subint":      ir.PSubInt,
	"mulint":      ir.PMulInt,
	"divint":      ir.PDivInt,
	"modint":      ir.PModInt,
	"negint":      ir.PNegInt,
	"addfloat":    ir.PAddFloat,
	"subfloat":    ir.PSubFloat,
	"mulfloat":    ir.PMulFloat,
	"divfloat":    ir.PDivFloat,
	"negfloat":    ir.PNegFloat,
	"intoffloat":  ir.PIntOfFloat,
	"floatofint":  ir.PFloatOfInt,
	"arraylength": ir.PArrayLength,
	"arrayget":    ir.PArrayGet,
	"arrayset":    ir.PArraySet,
	"arrayget.u":  ir.PArrayGetUnsafe,
	"arrayset.u":  ir.PArraySetUnsafe,
	"isint":       ir.PIsInt,
	"gettag":      ir.PGetTag,
}

func (d *exprDecoder) decodePrim(v cue.Value) (ir.Expr, error) {
	opName, err := v.LookupPath(cue.ParsePath("op")).String()
	if err != nil {
		return nil, fmt.Errorf("prim.op: %w", err)
	}
	args, err := d.decodeExprs(v.LookupPath(cue.ParsePath("args")))
	if err != nil {
		return nil, fmt.Errorf("prim.args: %w", err)
	}

	intField := func(field string) (int, error) {
		n, err := v.LookupPath(cue.ParsePath(field)).Int64()
		if err != nil {
			return 0, fmt.Errorf("prim.%s: %w", field, err)
		}
		return int(n), nil
	}

	var op ir.Primitive
	switch opName {
	case "intcmp", "floatcmp":
		rel, err := v.LookupPath(cue.ParsePath("cmp")).String()
		if err != nil {
			return nil, fmt.Errorf("prim.cmp: %w", err)
		}
		c, ok := cmpNames[rel]
		if !ok {
			return nil, fmt.Errorf("prim.cmp: unknown relation %q", rel)
		}
		if opName == "intcmp" {
			op = ir.IntCmp(c)
		} else {
			op = ir.FloatCmp(c)
		}
	case "makeblock":
		tag, err := intField("tag")
		if err != nil {
			return nil, err
		}
		op = ir.MakeBlock(tag, len(args))
	case "field":
		index, err := intField("index")
		if err != nil {
			return nil, err
		}
		op = ir.Field(index)
	case "setfield":
		index, err := intField("index")
		if err != nil {
			return nil, err
		}
		op = ir.SetField(index)
	case "makearray":
		op = ir.MakeArray(len(args))
	case "ccall":
		name, err := v.LookupPath(cue.ParsePath("name")).String()
		if err != nil {
			return nil, fmt.Errorf("prim.name: %w", err)
		}
		op = ir.CCall(name, len(args))
	default:
		kind, ok := simplePrims[opName]
		if !ok {
			return nil, fmt.Errorf("prim.op: unknown operator %q", opName)
		}
		op = ir.Primitive{Kind: kind}
	}
	return ir.Prim{Op: op, Args: args}, nil
}

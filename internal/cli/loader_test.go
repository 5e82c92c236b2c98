package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sable/internal/ir"
)

func loadSource(t *testing.T, source string) (*LoadedProgram, []error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prog.cue")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))
	return LoadProgram(path)
}

func mustLoad(t *testing.T, source string) *LoadedProgram {
	t.Helper()
	loaded, errs := loadSource(t, source)
	require.Empty(t, errs)
	require.NotNil(t, loaded)
	return loaded
}

func TestLoadProgramMissingPath(t *testing.T) {
	_, errs := LoadProgram(filepath.Join(t.TempDir(), "missing.cue"))
	require.Len(t, errs, 1)
	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNotFound, loadErr.Code)
}

func TestLoadProgramRequiresProgramStruct(t *testing.T) {
	_, errs := loadSource(t, `other: {name: "x"}`)
	require.Len(t, errs, 1)
	var loadErr *LoadError
	require.ErrorAs(t, errs[0], &loadErr)
	assert.Equal(t, ErrCodeNoProgram, loadErr.Code)
}

func TestLoadTestdataProgram(t *testing.T) {
	loaded, errs := LoadProgram(filepath.Join("testdata", "double.cue"))
	require.Empty(t, errs)

	prog := loaded.Program
	assert.Equal(t, "double", prog.Name)
	require.Len(t, prog.Bindings, 2)
	assert.Equal(t, "double", prog.Bindings[0].Name.Name)
	assert.Equal(t, "main", prog.Bindings[1].Name.Name)

	fn, ok := prog.Bindings[0].Value.(ir.Func)
	require.True(t, ok)
	require.Len(t, fn.Params, 1)

	// Parameter references resolve to the binder's stamp.
	prim, ok := fn.Body.(ir.Prim)
	require.True(t, ok)
	left, ok := prim.Args[0].(ir.Var)
	require.True(t, ok)
	assert.Equal(t, fn.Params[0].Stamp, left.Ident.Stamp)

	assert.Empty(t, ir.Validate(prog))
}

func TestLoadResolvesGlobalsAcrossBindings(t *testing.T) {
	loaded := mustLoad(t, `program: {
	name: "fwd"
	bindings: [
		{name: "main", value: {apply: {fn: {var: "later"}, args: [{int: 1}]}}},
		{name: "later", value: {fn: {params: ["x"], body: {var: "x"}}}},
	]
}`)
	// The decoder resolves the name to the later binding's stamp, but
	// top-level visibility is sequential, so validation flags the use.
	app, ok := loaded.Program.Bindings[0].Value.(ir.Apply)
	require.True(t, ok)
	callee := app.Fn.(ir.Var)
	assert.Equal(t, loaded.Program.Bindings[1].Name.Stamp, callee.Ident.Stamp)

	errs := ir.Validate(loaded.Program)
	require.Len(t, errs, 1)
	assert.Equal(t, ir.ErrUnboundName, errs[0].Code)
}

func TestLoadShadowingResolvesInnermost(t *testing.T) {
	loaded := mustLoad(t, `program: {
	name: "shadow"
	bindings: [{name: "main", value: {let: {
		name: "x", value: {int: 1},
		in: {let: {name: "x", value: {int: 2}, in: {var: "x"}}},
	}}}]
}`)
	outer := loaded.Program.Bindings[0].Value.(ir.Let)
	inner := outer.Body.(ir.Let)
	use := inner.Body.(ir.Var)
	assert.Equal(t, inner.Name.Stamp, use.Ident.Stamp)
	assert.NotEqual(t, outer.Name.Stamp, use.Ident.Stamp)
}

func TestLoadLetKinds(t *testing.T) {
	loaded := mustLoad(t, `program: {
	name: "kinds"
	bindings: [{name: "main", value: {let: {
		kind: "variable", name: "n", value: {int: 0},
		in: {seq: [{assign: {name: "n", value: {int: 1}}}, {var: "n"}]},
	}}}]
}`)
	let := loaded.Program.Bindings[0].Value.(ir.Let)
	assert.Equal(t, ir.LetVariable, let.Kind)

	seq := let.Body.(ir.Seq)
	asg := seq.First.(ir.Assign)
	assert.Equal(t, let.Name.Stamp, asg.Name.Stamp)
	assert.Empty(t, ir.Validate(loaded.Program))
}

func TestLoadParameterizedPrims(t *testing.T) {
	loaded := mustLoad(t, `program: {
	name: "prims"
	bindings: [{name: "main", value: {let: {
		name: "p",
		value: {prim: {op: "makeblock", tag: 3, args: [{int: 1}, {int: 2}]}},
		in: {prim: {op: "intcmp", cmp: "<=", args: [
			{prim: {op: "field", index: 1, args: [{var: "p"}]}},
			{prim: {op: "ccall", name: "clock", args: []}},
		]}},
	}}}]
}`)
	let := loaded.Program.Bindings[0].Value.(ir.Let)
	mk := let.Value.(ir.Prim)
	assert.Equal(t, ir.MakeBlock(3, 2), mk.Op)

	cmp := let.Body.(ir.Prim)
	assert.Equal(t, ir.IntCmp(ir.CmpLe), cmp.Op)
	field := cmp.Args[0].(ir.Prim)
	assert.Equal(t, ir.Field(1), field.Op)
	ccall := cmp.Args[1].(ir.Prim)
	assert.Equal(t, ir.CCall("clock", 0), ccall.Op)
}

func TestLoadSwitchAndControl(t *testing.T) {
	loaded := mustLoad(t, `program: {
	name: "ctl"
	bindings: [{name: "classify", value: {fn: {
		params: ["v"]
		body: {switch: {
			on: {var: "v"}
			consts: [{tag: 0, body: {int: 100}}]
			blocks: [{tag: 1, body: {prim: {op: "gettag", args: [{var: "v"}]}}}]
			default: {int: -1}
		}}
	}}}]
}`)
	fn := loaded.Program.Bindings[0].Value.(ir.Func)
	sw := fn.Body.(ir.Switch)
	require.Len(t, sw.Consts, 1)
	require.Len(t, sw.Blocks, 1)
	assert.Equal(t, 1, sw.Blocks[0].Tag)
	require.NotNil(t, sw.Default)
}

func TestLoadCatchParamsScopeToHandler(t *testing.T) {
	loaded := mustLoad(t, `program: {
	name: "esc"
	bindings: [{name: "main", value: {catch: {
		body: {exit: {label: 2, args: [{int: 9}]}}
		label: 2
		params: ["err"]
		handler: {var: "err"}
	}}}]
}`)
	c := loaded.Program.Bindings[0].Value.(ir.Catch)
	require.Len(t, c.Params, 1)
	h := c.Handler.(ir.Var)
	assert.Equal(t, c.Params[0].Stamp, h.Ident.Stamp)
}

func TestLoadCollectsAllBindingErrors(t *testing.T) {
	_, errs := loadSource(t, `program: {
	name: "broken"
	bindings: [
		{name: "a", value: {prim: {op: "bogus", args: []}}},
		{name: "b", value: {unknownform: {}}},
	]
}`)
	require.Len(t, errs, 2, "one error per broken binding")
	assert.Contains(t, errs[0].Error(), "a")
	assert.Contains(t, errs[1].Error(), "b")
}

func TestLoadDirectoryOfFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prog.cue"), []byte(`program: {
	name: "dir"
	bindings: [{name: "main", value: {int: 5}}]
}`), 0o644))

	loaded, errs := LoadProgram(dir)
	require.Empty(t, errs)
	assert.Equal(t, "dir", loaded.Program.Name)
}

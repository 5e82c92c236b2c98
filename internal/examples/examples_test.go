package examples

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sable/internal/emit"
	"github.com/roach88/sable/internal/ir"
	"github.com/roach88/sable/internal/lower"
)

func TestNamesAreSortedAndComplete(t *testing.T) {
	names := Names()
	require.NotEmpty(t, names)
	for i := 1; i < len(names); i++ {
		assert.Less(t, names[i-1], names[i], "names must be sorted")
	}
	assert.Contains(t, names, "arith")
	assert.Contains(t, names, "fib")
}

func TestGetUnknownName(t *testing.T) {
	_, ok := Get("no-such-program")
	assert.False(t, ok)
}

func TestEveryBuiltinValidatesClean(t *testing.T) {
	for _, name := range Names() {
		p, ok := Get(name)
		require.True(t, ok)
		assert.Empty(t, ir.Validate(p.Program), "program %s must validate", name)
	}
}

func TestEveryBuiltinCompilesAndRenders(t *testing.T) {
	for _, name := range Names() {
		p, ok := Get(name)
		require.True(t, ok)

		mod, err := lower.Compile(p.Program, p.Namer)
		require.NoError(t, err, "program %s must lower", name)

		text := emit.Text(mod)
		assert.Contains(t, text, "(module", "program %s must render", name)

		bin, err := emit.Binary(mod)
		require.NoError(t, err, "program %s must encode", name)
		assert.Equal(t, []byte{0x00, 0x61, 0x73, 0x6D}, bin[:4])
	}
}

func TestBuiltinsAreDeterministic(t *testing.T) {
	p1, _ := Get("fib")
	p2, _ := Get("fib")
	assert.Equal(t, ir.ProgramHash(p1.Program), ir.ProgramHash(p2.Program),
		"rebuilding a builtin yields the same canonical hash")
}

package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sable/internal/ir"
)

func TestFreshStampsAreSequential(t *testing.T) {
	b := NewExprBuilder()
	x := b.Fresh("x")
	y := b.Fresh("y")

	assert.Equal(t, "x", x.Name)
	assert.Equal(t, 1, x.Stamp)
	assert.Equal(t, 2, y.Stamp)
}

func TestBuilderIsDeterministic(t *testing.T) {
	build := func() ir.Program {
		b := NewExprBuilder()
		_, binding := b.Bind("main", Mul(Int(2), Add(Int(10), Int(11))))
		return b.Program("arith", binding)
	}

	assert.Equal(t, ir.ProgramHash(build()), ir.ProgramHash(build()))
}

func TestDoFoldsRightward(t *testing.T) {
	expr := Do(Int(1), Int(2), Int(3))

	seq, ok := expr.(ir.Seq)
	require.True(t, ok)
	assert.Equal(t, ir.IntConst{Value: 1}, seq.First)

	inner, ok := seq.Then.(ir.Seq)
	require.True(t, ok)
	assert.Equal(t, ir.IntConst{Value: 2}, inner.First)
	assert.Equal(t, ir.IntConst{Value: 3}, inner.Then)
}

func TestDoOfNothingIsUnit(t *testing.T) {
	assert.Equal(t, ir.IntConst{Value: 0}, Do())
}

func TestBuiltProgramsValidate(t *testing.T) {
	b := NewExprBuilder()
	x := b.Fresh("x")
	_, binding := b.Bind("main", Strict(x, Int(5), Add(Use(x), Int(1))))
	prog := b.Program("lets", binding)

	assert.Empty(t, ir.Validate(prog))
}

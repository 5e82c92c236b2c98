package lower

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/sable/internal/ir"
	"github.com/roach88/sable/internal/wasm"
)

func testEnv() Env {
	return NewEnv(ir.NewNamer())
}

func TestEnsureStructTypeIsIdempotent(t *testing.T) {
	env := testEnv()
	fields := []wasm.Field{{Name: "tag", Type: wasm.I32{}}}

	env = env.EnsureStructType("block.1.0", fields)
	env = env.EnsureStructType("block.1.0", fields)
	env = env.EnsureStructType("block.1.0", fields)

	assert.Len(t, env.structs, 1, "at most one definition per structural key")
}

func TestEnsureStructTypeDistinctKeys(t *testing.T) {
	env := testEnv()
	env = ensureBlockType(env, 1, 2)
	env = ensureBlockType(env, 1, 3)
	env = ensureBlockType(env, 2, 2)
	env = ensureBlockType(env, 1, 2)

	assert.Len(t, env.structs, 3, "distinct (tag, size) keys get distinct definitions")
}

func TestAllocateLocalAssignsSequentialSlots(t *testing.T) {
	env := testEnv().beginFrame([]wasm.Local{{Name: "p0", Type: wasm.AnyRef()}})

	a, env := env.FreshIdent("a")
	b, env := env.FreshIdent("b")
	env, slotA := env.AllocateLocal(a, wasm.AnyRef())
	env, slotB := env.AllocateLocal(b, wasm.I32{})

	assert.Equal(t, 1, slotA, "slots start after parameters")
	assert.Equal(t, 2, slotB)

	got, typ, ok := env.LookupLocal(b)
	require.True(t, ok)
	assert.Equal(t, 2, got)
	assert.Equal(t, wasm.I32{}, typ)
}

func TestScopedLocalsInvisibleOutside(t *testing.T) {
	env := testEnv().beginFrame(nil)
	inner, env := env.FreshIdent("inner")

	env = env.EnterScope()
	env, _ = env.AllocateLocal(inner, wasm.AnyRef())
	_, _, ok := env.LookupLocal(inner)
	require.True(t, ok, "visible inside its scope")

	env = env.ExitScope()
	_, _, ok = env.LookupLocal(inner)
	assert.False(t, ok, "invisible after the scope closes")
}

func TestLookupFailsWithoutRaising(t *testing.T) {
	env := testEnv().beginFrame(nil)
	ghost := ir.Ident{Name: "ghost", Stamp: 999}

	_, _, ok := env.LookupLocal(ghost)
	assert.False(t, ok)
	_, ok2 := env.LookupGlobal(ghost)
	assert.False(t, ok2)
}

func TestShadowingResolvesInnermostBinding(t *testing.T) {
	env := testEnv().beginFrame(nil)
	nmOuter, env := env.FreshIdent("x")
	nmInner, env := env.FreshIdent("x")

	env, outerSlot := env.AllocateLocal(nmOuter, wasm.AnyRef())
	env = env.EnterScope()
	env, innerSlot := env.AllocateLocal(nmInner, wasm.AnyRef())

	require.NotEqual(t, outerSlot, innerSlot)
	slot, _, ok := env.LookupLocal(nmInner)
	require.True(t, ok)
	assert.Equal(t, innerSlot, slot)

	// The outer stamp still resolves to the outer slot.
	slot, _, ok = env.LookupLocal(nmOuter)
	require.True(t, ok)
	assert.Equal(t, outerSlot, slot)
}

func TestEnvValueSemantics(t *testing.T) {
	env := testEnv()
	branch := env.EnsureStructType("block.7.1", []wasm.Field{{Name: "tag", Type: wasm.I32{}}})

	assert.Empty(t, env.structs, "extending a derived env must not mutate its ancestor")
	assert.Len(t, branch.structs, 1)
}

func TestFreshIdentAdvancesCounter(t *testing.T) {
	env := testEnv()
	a, env := env.FreshIdent("t")
	b, _ := env.FreshIdent("t")
	assert.NotEqual(t, a.Stamp, b.Stamp, "stamps are never reused")
}

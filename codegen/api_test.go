package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(t *testing.T) *Builder {
	t.Helper()
	b := New("test_module")
	require.NoError(t, b.CreateEntry())
	return b
}

func TestCreateEntry_EmitsMain(t *testing.T) {
	b := newEntry(t)
	require.NoError(t, b.BuildReturnI64(b.ConstI64(0)))

	ir := b.EmitIR()
	assert.Contains(t, ir, "define i64 @main")
	assert.Contains(t, ir, "ret i64 0")
}

func TestConstValues(t *testing.T) {
	b := newEntry(t)
	i := b.ConstI64(7)
	f := b.ConstF64(2.5)
	assert.True(t, i.IsInt())
	assert.False(t, i.IsFloat())
	assert.True(t, f.IsFloat())
	assert.False(t, f.IsInt())
}

func TestBinop_IntArithmetic(t *testing.T) {
	b := newEntry(t)
	v, err := b.BuildBinop(OpAdd, b.ConstI64(1), b.ConstI64(2))
	require.NoError(t, err)
	assert.True(t, v.IsInt())

	require.NoError(t, b.BuildReturn(v))
	assert.Contains(t, b.EmitIR(), "add i64")
}

func TestBinop_MixedPromotesToFloat(t *testing.T) {
	b := newEntry(t)
	v, err := b.BuildBinop(OpAdd, b.ConstI64(1), b.ConstF64(2.5))
	require.NoError(t, err)
	assert.True(t, v.IsFloat())

	v2, err := b.BuildBinop(OpMul, b.ConstF64(1.5), b.ConstI64(3))
	require.NoError(t, err)
	assert.True(t, v2.IsFloat())

	require.NoError(t, b.BuildReturn(v))
	ir := b.EmitIR()
	assert.Contains(t, ir, "sitofp")
	assert.Contains(t, ir, "fadd double")
}

func TestBinop_ComparisonYieldsI64(t *testing.T) {
	b := newEntry(t)
	v, err := b.BuildBinop(OpEq, b.ConstI64(1), b.ConstI64(1))
	require.NoError(t, err)
	assert.True(t, v.IsInt())

	require.NoError(t, b.BuildReturnI64(v))
	ir := b.EmitIR()
	assert.Contains(t, ir, "icmp eq i64")
	assert.Contains(t, ir, "zext i1")
}

func TestBinop_FloatComparisonOrdered(t *testing.T) {
	b := newEntry(t)
	v, err := b.BuildBinop(OpLt, b.ConstF64(1), b.ConstF64(2))
	require.NoError(t, err)
	require.NoError(t, b.BuildReturn(v))
	assert.Contains(t, b.EmitIR(), "fcmp olt double")
}

func TestBinop_ModIntOnly(t *testing.T) {
	b := newEntry(t)
	_, err := b.BuildBinop(OpMod, b.ConstI64(5), b.ConstI64(3))
	require.NoError(t, err)

	_, err = b.BuildBinop(OpMod, b.ConstF64(5), b.ConstF64(3))
	assert.Error(t, err)
}

func TestEnsureI64(t *testing.T) {
	b := newEntry(t)

	same, err := b.EnsureI64(b.ConstI64(4))
	require.NoError(t, err)
	assert.True(t, same.IsInt())

	conv, err := b.EnsureI64(b.ConstF64(4.9))
	require.NoError(t, err)
	assert.True(t, conv.IsInt())
	require.NoError(t, b.BuildReturnI64(conv))
	assert.Contains(t, b.EmitIR(), "fptosi double")
}

func TestBuildReturnI64_RejectsFloat(t *testing.T) {
	b := newEntry(t)
	err := b.BuildReturnI64(b.ConstF64(1))
	assert.ErrorIs(t, err, ErrNotNumeric)
}

func TestLocals_AllocStoreLoad(t *testing.T) {
	b := newEntry(t)
	init := b.ConstI64(10)
	require.NoError(t, b.AllocLocalI64("x", &init))

	loaded, err := b.LoadLocalI64("x")
	require.NoError(t, err)
	require.NoError(t, b.StoreLocalI64("x", b.ConstI64(11)))
	require.NoError(t, b.BuildReturn(loaded))

	ir := b.EmitIR()
	assert.Contains(t, ir, "alloca i64")
	assert.Contains(t, ir, "store i64 10")
	assert.Contains(t, ir, "load i64")
}

func TestLocals_AllocaLeadsEntryBlock(t *testing.T) {
	b := newEntry(t)
	// Emit an instruction first, then allocate; the alloca must still be
	// the entry block's first instruction.
	_, err := b.BuildBinop(OpAdd, b.ConstI64(1), b.ConstI64(2))
	require.NoError(t, err)
	require.NoError(t, b.AllocLocalF64("f", nil))

	entry := b.funcs["main"].Blocks[0]
	require.NotEmpty(t, entry.Insts)
	assert.Same(t, b.localPtr("f"), entry.Insts[0])
}

func TestLocals_UnknownLocal(t *testing.T) {
	b := newEntry(t)
	_, err := b.LoadLocalI64("ghost")
	assert.ErrorIs(t, err, ErrUnknownLocal)
	assert.ErrorIs(t, b.StoreLocalF64("ghost", b.ConstF64(1)), ErrUnknownLocal)
}

func TestBlocks_ScopedByFunction(t *testing.T) {
	b := newEntry(t)
	require.NoError(t, b.AppendBasicBlock("after"))

	require.NoError(t, b.AddFunction("other", nil))
	require.NoError(t, b.SetCurrentFunction("other"))

	// "after" belongs to main, not other.
	assert.ErrorIs(t, b.PositionAtEnd("after"), ErrUnknownBlock)
}

func TestBlocks_NoCurrentFunction(t *testing.T) {
	b := New("m")
	assert.ErrorIs(t, b.AppendBasicBlock("x"), ErrNoCurrentFunction)
	assert.ErrorIs(t, b.PositionAtEnd("x"), ErrNoCurrentFunction)
}

func TestBlocks_SaveRestoreLIFO(t *testing.T) {
	b := newEntry(t)
	require.NoError(t, b.AppendBasicBlock("a"))
	require.NoError(t, b.AppendBasicBlock("b"))

	entry := b.cur
	b.SaveInsertBlock()
	require.NoError(t, b.PositionAtEnd("a"))
	aBlk := b.cur
	b.SaveInsertBlock()
	require.NoError(t, b.PositionAtEnd("b"))

	b.RestoreInsertBlock()
	assert.Same(t, aBlk, b.cur)
	b.RestoreInsertBlock()
	assert.Same(t, entry, b.cur)
}

func TestBranches(t *testing.T) {
	b := newEntry(t)
	require.NoError(t, b.AppendBasicBlock("then"))
	require.NoError(t, b.AppendBasicBlock("else"))

	require.NoError(t, b.BuildConditionalBranch(b.ConstI64(1), "then", "else"))
	assert.True(t, b.CurrentBlockHasTerminator())

	require.NoError(t, b.PositionAtEnd("then"))
	assert.False(t, b.CurrentBlockHasTerminator())
	require.NoError(t, b.BuildReturnI64(b.ConstI64(1)))

	require.NoError(t, b.PositionAtEnd("else"))
	require.NoError(t, b.BuildReturnI64(b.ConstI64(0)))

	ir := b.EmitIR()
	assert.Contains(t, ir, "icmp ne i64 1, 0")
	assert.Contains(t, ir, "br i1")

	// Every block reachable from entry is terminated.
	for _, blk := range b.funcs["main"].Blocks {
		assert.NotNil(t, blk.Term, blk.LocalIdent.Ident())
	}
}

func TestBranch_FloatCondition(t *testing.T) {
	b := newEntry(t)
	require.NoError(t, b.AppendBasicBlock("then"))
	require.NoError(t, b.AppendBasicBlock("else"))
	require.NoError(t, b.BuildConditionalBranch(b.ConstF64(0.5), "then", "else"))
	require.NoError(t, b.PositionAtEnd("then"))
	require.NoError(t, b.BuildReturnI64(b.ConstI64(1)))
	require.NoError(t, b.PositionAtEnd("else"))
	require.NoError(t, b.BuildReturnI64(b.ConstI64(0)))
	assert.Contains(t, b.EmitIR(), "fcmp one double")
}

func TestBranch_UnknownBlock(t *testing.T) {
	b := newEntry(t)
	err := b.BuildConditionalBranch(b.ConstI64(1), "nope", "nada")
	assert.ErrorIs(t, err, ErrUnknownBlock)
}

func TestFunctions_DeclareAndCall(t *testing.T) {
	b := New("m")
	require.NoError(t, b.AddFunction("mix", []bool{false, true}))
	require.NoError(t, b.CreateEntry())

	v, err := b.BuildCall("mix", []Value{b.ConstI64(1), b.ConstF64(2)})
	require.NoError(t, err)
	assert.True(t, v.IsInt())
	require.NoError(t, b.BuildReturn(v))

	ir := b.EmitIR()
	assert.Contains(t, ir, "declare i64 @mix")
	assert.Contains(t, ir, "call i64 @mix")
}

func TestFunctions_UnknownCallee(t *testing.T) {
	b := newEntry(t)
	_, err := b.BuildCall("missing", nil)
	assert.ErrorIs(t, err, ErrUnknownFunction)
	assert.ErrorIs(t, b.SetCurrentFunction("missing"), ErrUnknownFunction)
}

func TestFunctions_StoreParamIntoLocal(t *testing.T) {
	b := New("m")
	require.NoError(t, b.AddFunction("f", []bool{false}))
	require.NoError(t, b.SetCurrentFunction("f"))
	require.NoError(t, b.AppendBasicBlock("entry"))
	require.NoError(t, b.PositionAtEnd("entry"))
	require.NoError(t, b.AllocLocalI64("arg", nil))
	require.NoError(t, b.StoreParamIntoLocal("f", 0, "arg"))

	assert.ErrorIs(t, b.StoreParamIntoLocal("f", 0, "ghost"), ErrUnknownLocal)
	assert.Error(t, b.StoreParamIntoLocal("f", 3, "arg"))

	require.NoError(t, b.BuildReturnI64(b.ConstI64(0)))
	assert.Contains(t, b.EmitIR(), "store i64 %p0")
}

func TestCallPrintf_IntFormat(t *testing.T) {
	b := newEntry(t)
	sum, err := b.BuildBinop(OpAdd, b.ConstI64(4), b.ConstI64(2))
	require.NoError(t, err)

	ret, err := b.CallPrintf(sum)
	require.NoError(t, err)
	assert.True(t, ret.IsInt())
	require.NoError(t, b.BuildReturnI64(ret))

	ir := b.EmitIR()
	assert.Contains(t, ir, "declare i32 @printf")
	assert.Contains(t, ir, "@fmt_i64")
	assert.Contains(t, ir, `c"%lld\0A\00"`)
	assert.Contains(t, ir, ") @printf(")
}

func TestCallPrintf_FloatFormat(t *testing.T) {
	b := newEntry(t)
	_, err := b.CallPrintf(b.ConstF64(1.5))
	require.NoError(t, err)
	require.NoError(t, b.BuildReturnI64(b.ConstI64(0)))
	assert.Contains(t, b.EmitIR(), "@fmt_f64")
}

func TestCallPrintf_SingleDeclaration(t *testing.T) {
	b := newEntry(t)
	_, err := b.CallPrintf(b.ConstI64(1))
	require.NoError(t, err)
	_, err = b.CallPrintf(b.ConstI64(2))
	require.NoError(t, err)
	require.NoError(t, b.BuildReturnI64(b.ConstI64(0)))
	assert.Equal(t, 1, strings.Count(b.EmitIR(), "declare i32 @printf"))
	assert.Equal(t, 1, strings.Count(b.EmitIR(), "@fmt_i64 ="))
}

func TestClose_InvalidatesBuilder(t *testing.T) {
	b := newEntry(t)
	b.Close()
	assert.ErrorIs(t, b.CreateEntry(), ErrClosed)
	_, err := b.BuildBinop(OpAdd, Value{}, Value{})
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, "", b.EmitIR())
}

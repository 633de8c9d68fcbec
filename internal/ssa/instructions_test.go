package ssa

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInstruction_accessors(t *testing.T) {
	b := NewBuilder()

	c := b.AllocateInstruction().AsIconst64(0xdeadbeef)
	require.Equal(t, OpcodeIconst, c.Opcode())
	require.Equal(t, uint64(0xdeadbeef), c.ConstantVal())
	require.Panics(t, func() {
		c.LoadStoreOffset()
	})

	blk := b.AllocateBasicBlock()
	b.SetCurrentBlock(blk)
	b.InsertInstruction(c)
	cv, rest := c.Returns()
	require.True(t, cv.Valid())
	require.Nil(t, rest)
	require.Equal(t, TypeI64, cv.Type())

	ld := b.AllocateInstruction().AsLoad(cv, 0x20, TypeI32)
	b.InsertInstruction(ld)
	require.Equal(t, uint32(0x20), ld.LoadStoreOffset())
	require.Equal(t, []Value{cv}, ld.Args())
	require.Panics(t, func() {
		ld.ConstantVal()
	})
	require.Panics(t, func() {
		ld.BranchTarget()
	})

	jump := b.AllocateInstruction().AsJump(nil, blk)
	require.Equal(t, blk, jump.BranchTarget())
}

func TestInstruction_IsBranching(t *testing.T) {
	b := NewBuilder()
	blk := b.AllocateBasicBlock()
	b.SetCurrentBlock(blk)

	c := b.AllocateInstruction().AsIconst32(1)
	b.InsertInstruction(c)
	cv, _ := c.Returns()

	for _, tc := range []struct {
		instr *Instruction
		exp   bool
	}{
		{b.AllocateInstruction().AsJump(nil, blk), true},
		{b.AllocateInstruction().AsBrz(cv, nil, blk), true},
		{b.AllocateInstruction().AsBrnz(cv, nil, blk), true},
		{b.AllocateInstruction().AsTrap(), true},
		{b.AllocateInstruction().AsReturn(nil), true},
		{b.AllocateInstruction().AsIconst64(0), false},
		{b.AllocateInstruction().AsIadd(cv, cv), false},
		{b.AllocateInstruction().AsStore(cv, cv, 0), false},
	} {
		require.Equal(t, tc.exp, tc.instr.IsBranching(), tc.instr.Opcode().String())
	}
}

func TestInstruction_sourcePos(t *testing.T) {
	b := NewBuilder()
	i := b.AllocateInstruction().AsIconst64(0)
	require.Equal(t, sourcePosNone, i.SourcePos())
	i.SetSourcePos(SourcePos(42))
	require.Equal(t, SourcePos(42), i.SourcePos())
}

func TestInstruction_Format(t *testing.T) {
	b := NewBuilder()
	blk := b.AllocateBasicBlock()
	b.SetCurrentBlock(blk)
	p := blk.AddParam(b, TypeI64)

	c := b.AllocateInstruction().AsIconst32(0xff)
	b.InsertInstruction(c)
	cv, _ := c.Returns()
	require.Equal(t, "v1:i32 = Iconst_32 0xff", c.Format())

	c64 := b.AllocateInstruction().AsIconst64(1)
	b.InsertInstruction(c64)
	require.Equal(t, "v2:i64 = Iconst_64 0x1", c64.Format())

	add := b.AllocateInstruction().AsIadd(p, p)
	b.InsertInstruction(add)
	require.Equal(t, "v3:i64 = Iadd v0, v0", add.Format())

	st := b.AllocateInstruction().AsStore(cv, p, 8)
	b.InsertInstruction(st)
	require.Equal(t, "Store v1, v0, 0x8", st.Format())

	ret := b.AllocateInstruction().AsReturn([]Value{cv})
	require.Equal(t, "Return v1", ret.Format())

	jump := b.AllocateInstruction().AsJump([]Value{cv}, blk)
	require.Equal(t, "Jump blk0, v1", jump.Format())

	brz := b.AllocateInstruction().AsBrz(cv, nil, blk)
	require.Equal(t, "Brz v1, blk0", brz.Format())
}

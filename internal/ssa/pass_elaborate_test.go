package ssa

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func blockOpcodes(blk *basicBlock) []Opcode {
	var ops []Opcode
	for cur := blk.Root(); cur != nil; cur = cur.Next() {
		ops = append(ops, cur.Opcode())
	}
	return ops
}

func findInstr(t *testing.T, blk *basicBlock, op Opcode) *Instruction {
	for cur := blk.Root(); cur != nil; cur = cur.Next() {
		if cur.Opcode() == op {
			return cur
		}
	}
	t.Fatalf("%s not found in %s", op, blk.Name())
	return nil
}

// elabParams/elabRoots build the block-indexed query functions the pass takes.
func elabParams(m map[*basicBlock][]elabBlockParam) func(BasicBlock) []elabBlockParam {
	return func(blk BasicBlock) []elabBlockParam { return m[blk.(*basicBlock)] }
}

func elabRoots(m map[*basicBlock][]eclassID) func(BasicBlock) []eclassID {
	return func(blk BasicBlock) []eclassID { return m[blk.(*basicBlock)] }
}

// buildSharedSubexprFn builds `return (x+y)*(x+y)` and elaborates it.
func buildSharedSubexprFn() (*builder, *basicBlock, ElaborationStats) {
	b := NewBuilder().(*builder)
	blk := b.AllocateBasicBlock().(*basicBlock)
	b.RunPasses()

	g := newEGraph()
	px := g.makeParam(blk, 0, TypeI64)
	py := g.makeParam(blk, 1, TypeI64)
	add := g.makePure(OpcodeIadd, TypeI64, 1, px, py)
	mul := g.makePure(OpcodeImul, TypeI64, 1, add, add)
	ret := g.makeInst(OpcodeReturn, TypeInvalid, SourcePos(5), 0, mul)

	stats := b.elaborate(g, elabFuncs{
		blockParams: elabParams(map[*basicBlock][]elabBlockParam{
			blk: {{class: px, typ: TypeI64}, {class: py, typ: TypeI64}},
		}),
		blockRoots: elabRoots(map[*basicBlock][]eclassID{blk: {ret}}),
	}, logrus.New())
	return b, blk, stats
}

func TestElaborate_sharedSubexpression(t *testing.T) {
	_, blk, stats := buildSharedSubexprFn()

	require.Equal(t, []Opcode{OpcodeIadd, OpcodeImul, OpcodeReturn}, blockOpcodes(blk))

	add := findInstr(t, blk, OpcodeIadd)
	mul := findInstr(t, blk, OpcodeImul)
	ret := findInstr(t, blk, OpcodeReturn)

	addResult, _ := add.Returns()
	require.Equal(t, []Value{blk.Param(0), blk.Param(1)}, add.Args())
	// Both multiplier operands reuse the single materialized addition.
	require.Equal(t, []Value{addResult, addResult}, mul.Args())
	mulResult, _ := mul.Returns()
	require.Equal(t, mulResult, ret.Args()[0])

	// Two param uses plus the shared operand's second use hit the cache.
	require.Equal(t, 3, stats.MemoHits)
	require.Equal(t, 3, stats.MemoMisses)
	require.Equal(t, 0, stats.Remats)
	require.Equal(t, 0, stats.Hoists)

	// Side-effecting roots keep their source tag, synthesized pure
	// computations do not.
	require.Equal(t, SourcePos(5), ret.SourcePos())
	require.Equal(t, sourcePosNone, add.SourcePos())
}

func TestElaborate_deterministic(t *testing.T) {
	_, blk1, _ := buildSharedSubexprFn()
	_, blk2, _ := buildSharedSubexprFn()
	require.Equal(t, blk1.FormatInstructions(), blk2.FormatInstructions())
}

func TestElaborate_memoScopes(t *testing.T) {
	b := NewBuilder().(*builder)
	//  0
	// / \
	// 1   2
	blocks := constructCFG(b, map[basicBlockID][]basicBlockID{0: {1, 2}}, 3)
	b.RunPasses()
	blk0, blk1, blk2 := blocks[0], blocks[1], blocks[2]

	g := newEGraph()
	px := g.makeParam(blk0, 0, TypeI64)
	py := g.makeParam(blk0, 1, TypeI64)
	sum := g.makePure(OpcodeIadd, TypeI64, 1, px, py)
	diff := g.makePure(OpcodeIsub, TypeI64, 1, px, py)
	storeSum0 := g.makeInst(OpcodeStore, TypeI64, SourcePos(1), 0, sum, px)
	storeSum1 := g.makeInst(OpcodeStore, TypeI64, SourcePos(2), 0, sum, px)
	storeDiff1 := g.makeInst(OpcodeStore, TypeI64, SourcePos(3), 0, diff, px)
	storeDiff2 := g.makeInst(OpcodeStore, TypeI64, SourcePos(4), 0, diff, px)

	stats := b.elaborate(g, elabFuncs{
		blockParams: elabParams(map[*basicBlock][]elabBlockParam{
			blk0: {{class: px, typ: TypeI64}, {class: py, typ: TypeI64}},
		}),
		blockRoots: elabRoots(map[*basicBlock][]eclassID{
			blk0: {storeSum0},
			blk1: {storeSum1, storeDiff1},
			blk2: {storeDiff2},
		}),
	}, nil)

	// The addition materialized in the dominating block is visible in blk1.
	require.Equal(t, []Opcode{OpcodeIadd, OpcodeStore, OpcodeBrz, OpcodeJump}, blockOpcodes(blk0))
	require.Equal(t, []Opcode{OpcodeStore, OpcodeIsub, OpcodeStore, OpcodeReturn}, blockOpcodes(blk1))
	// The subtraction materialized in the sibling blk1 is NOT visible in blk2;
	// its scope closed when blk1's subtree finished.
	require.Equal(t, []Opcode{OpcodeIsub, OpcodeStore, OpcodeReturn}, blockOpcodes(blk2))

	// Both stores of the sum reference the same value.
	sumVal, _ := findInstr(t, blk0, OpcodeIadd).Returns()
	require.Equal(t, sumVal, findInstr(t, blk0, OpcodeStore).Args()[0])
	require.Equal(t, sumVal, findInstr(t, blk1, OpcodeStore).Args()[0])

	require.Equal(t, 0, stats.Hoists)
	require.Equal(t, 0, stats.Remats)
}

func TestElaborate_loopInvariantHoisting(t *testing.T) {
	b := NewBuilder().(*builder)
	// 0 -> 1 -> 2 -> 3 with the back edge 2 -> 1.
	blocks := constructCFG(b, map[basicBlockID][]basicBlockID{
		0: {1},
		1: {2},
		2: {1, 3},
	}, 4)
	b.RunPasses()
	blk0, blk1, blk2, blk3 := blocks[0], blocks[1], blocks[2], blocks[3]
	require.True(t, blk1.LoopHeader())

	g := newEGraph()
	px := g.makeParam(blk0, 0, TypeI64)
	pp := g.makeParam(blk0, 1, TypeI64)
	c := g.makePureImm(OpcodeIconst, TypeI64, 1, 42)
	inv := g.makePure(OpcodeIadd, TypeI64, 1, px, c)
	storeLoop := g.makeInst(OpcodeStore, TypeI64, SourcePos(1), 0, inv, pp)
	storeAfter := g.makeInst(OpcodeStore, TypeI64, SourcePos(2), 0, inv, pp)

	stats := b.elaborate(g, elabFuncs{
		blockParams: elabParams(map[*basicBlock][]elabBlockParam{
			blk0: {{class: px, typ: TypeI64}, {class: pp, typ: TypeI64}},
		}),
		blockRoots: elabRoots(map[*basicBlock][]eclassID{
			blk2: {storeLoop},
			blk3: {storeAfter},
		}),
	}, nil)

	// The constant and the addition are requested inside the loop body but
	// depend only on loop-entry values, so both land in the block immediately
	// dominating the loop header, ahead of its terminator.
	require.Equal(t, []Opcode{OpcodeIconst, OpcodeIadd, OpcodeJump}, blockOpcodes(blk0))
	require.Equal(t, []Opcode{OpcodeJump}, blockOpcodes(blk1))
	// The store itself has a side effect and stays in the loop body.
	require.Equal(t, []Opcode{OpcodeStore, OpcodeBrz, OpcodeJump}, blockOpcodes(blk2))
	// The hoisted value is still visible after the loop; no recomputation.
	require.Equal(t, []Opcode{OpcodeStore, OpcodeReturn}, blockOpcodes(blk3))

	invVal, _ := findInstr(t, blk0, OpcodeIadd).Returns()
	require.Equal(t, invVal, findInstr(t, blk2, OpcodeStore).Args()[0])
	require.Equal(t, invVal, findInstr(t, blk3, OpcodeStore).Args()[0])

	require.Equal(t, 2, stats.Hoists)
}

func TestElaborate_rematerialization(t *testing.T) {
	b := NewBuilder().(*builder)
	blocks := constructCFG(b, map[basicBlockID][]basicBlockID{0: {1}}, 2)
	b.RunPasses()
	blk0, blk1 := blocks[0], blocks[1]

	g := newEGraph()
	pp := g.makeParam(blk0, 0, TypeI64)
	c := g.makePureImm(OpcodeIconst, TypeI64, 1, 7)
	store0 := g.makeInst(OpcodeStore, TypeI64, SourcePos(1), 0, c, pp)
	store1 := g.makeInst(OpcodeStore, TypeI64, SourcePos(2), 0, c, pp)

	stats := b.elaborate(g, elabFuncs{
		blockParams: elabParams(map[*basicBlock][]elabBlockParam{
			blk0: {{class: pp, typ: TypeI64}},
		}),
		blockRoots: elabRoots(map[*basicBlock][]eclassID{
			blk0: {store0},
			blk1: {store1},
		}),
		remat: map[eclassID]bool{c: true},
	}, nil)

	// The constant is re-emitted in blk1 instead of being kept live across the
	// block boundary.
	require.Equal(t, []Opcode{OpcodeIconst, OpcodeStore, OpcodeJump}, blockOpcodes(blk0))
	require.Equal(t, []Opcode{OpcodeIconst, OpcodeStore, OpcodeReturn}, blockOpcodes(blk1))

	v0, _ := findInstr(t, blk0, OpcodeIconst).Returns()
	v1, _ := findInstr(t, blk1, OpcodeIconst).Returns()
	require.NotEqual(t, v0, v1)
	require.Equal(t, v1, findInstr(t, blk1, OpcodeStore).Args()[0])

	require.Equal(t, 1, stats.Remats)
}

func TestElaborate_resultProjections(t *testing.T) {
	b := NewBuilder().(*builder)
	blk := b.AllocateBasicBlock().(*basicBlock)
	b.RunPasses()

	g := newEGraph()
	call := g.makeInst(OpcodeCall, TypeI32, SourcePos(1), 2)
	r0 := g.makeResult(call, 0, TypeI32)
	r1 := g.makeResult(call, 1, TypeI32)
	sum := g.makePure(OpcodeIadd, TypeI32, 1, r0, r1)
	ret := g.makeInst(OpcodeReturn, TypeInvalid, SourcePos(2), 0, sum)

	b.elaborate(g, elabFuncs{
		blockParams: elabParams(nil),
		blockRoots:  elabRoots(map[*basicBlock][]eclassID{blk: {ret}}),
	}, nil)

	// One call, both projections sliced out of it without extra instructions.
	require.Equal(t, []Opcode{OpcodeCall, OpcodeIadd, OpcodeReturn}, blockOpcodes(blk))

	callInstr := findInstr(t, blk, OpcodeCall)
	first, rest := callInstr.Returns()
	require.Len(t, rest, 1)
	require.Equal(t, []Value{first, rest[0]}, findInstr(t, blk, OpcodeIadd).Args())
}

func TestElaborate_unionEmitsCheaperForm(t *testing.T) {
	b := NewBuilder().(*builder)
	blk := b.AllocateBasicBlock().(*basicBlock)
	b.RunPasses()

	g := newEGraph()
	px := g.makeParam(blk, 0, TypeI64)
	py := g.makeParam(blk, 1, TypeI64)
	expensive := g.makePure(OpcodeBor, TypeI64, 100, px, py)
	cheap := g.makePure(OpcodeBxor, TypeI64, 1, px, py)
	g.union(expensive, cheap)
	ret := g.makeInst(OpcodeReturn, TypeInvalid, SourcePos(1), 0, expensive)

	b.elaborate(g, elabFuncs{
		blockParams: elabParams(map[*basicBlock][]elabBlockParam{
			blk: {{class: px, typ: TypeI64}, {class: py, typ: TypeI64}},
		}),
		blockRoots: elabRoots(map[*basicBlock][]eclassID{blk: {ret}}),
	}, nil)

	require.Equal(t, []Opcode{OpcodeBxor, OpcodeReturn}, blockOpcodes(blk))
}

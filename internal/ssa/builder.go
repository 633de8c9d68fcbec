// Package ssa is used to construct SSA function. By nature this is free of target specific thing
// and ISA.
package ssa

import (
	"fmt"
	"strings"
)

// Builder is used to build an SSA function consisting of Basic Blocks.
type Builder interface {
	// Reset must be called to reuse this builder for the next function.
	Reset()

	// AllocateBasicBlock creates a basic block in SSA function.
	AllocateBasicBlock() BasicBlock

	// Blocks returns the valid BasicBlock(s) in the allocation order.
	Blocks() []BasicBlock

	// EntryBlock returns the entry block of the function, i.e. the first allocated block.
	EntryBlock() BasicBlock

	// CurrentBlock returns the currently handled BasicBlock which is set by the latest call to SetCurrentBlock.
	CurrentBlock() BasicBlock

	// SetCurrentBlock sets the instruction insertion target to the BasicBlock `b`.
	SetCurrentBlock(b BasicBlock)

	// AllocateInstruction returns a new Instruction.
	AllocateInstruction() *Instruction

	// InsertInstruction executes BasicBlock.InsertInstruction for the currently handled basic block.
	InsertInstruction(raw *Instruction)

	// RunPasses runs the analysis passes: immediate dominators and loop detection.
	// This must be called after the whole CFG is constructed and before lowering.
	RunPasses()

	// allocateValue allocates a fresh Value of the given Type.
	allocateValue(typ Type) Value
}

// NewBuilder returns a new Builder implementation.
func NewBuilder() Builder {
	return &builder{
		basicBlocksPool:  newPool[basicBlock](),
		instructionsPool: newPool[Instruction](),
		blkVisited:       make(map[*basicBlock]int),
	}
}

// builder implements Builder interface.
type builder struct {
	basicBlocksPool  pool[basicBlock]
	instructionsPool pool[Instruction]
	basicBlocksView  []BasicBlock
	currentBB        *basicBlock

	nextValueID ValueID

	// dominators stores the immediate dominator of each block keyed by basicBlockID.
	// Computed by passCalculateImmediateDominators.
	dominators []*basicBlock
	// domChildren lists, for each block, the blocks it immediately dominates.
	domChildren [][]*basicBlock

	// The followings are reused for the CFG traversals to reduce allocations.
	blkStack   []*basicBlock
	blkStack2  []*basicBlock
	blkVisited map[*basicBlock]int
}

// Reset implements Builder.
func (b *builder) Reset() {
	for i := 0; i < b.basicBlocksPool.allocated; i++ {
		b.basicBlocksPool.view(i).reset()
	}
	b.basicBlocksPool.reset()
	b.instructionsPool.reset()
	b.currentBB = nil
	b.nextValueID = 0
	for i := range b.dominators {
		b.dominators[i] = nil
	}
	for i := range b.domChildren {
		b.domChildren[i] = b.domChildren[i][:0]
	}
}

// AllocateBasicBlock implements Builder.
func (b *builder) AllocateBasicBlock() BasicBlock {
	id := basicBlockID(b.basicBlocksPool.allocated)
	blk := b.basicBlocksPool.allocate()
	blk.id = id
	return blk
}

// AllocateInstruction implements Builder.
func (b *builder) AllocateInstruction() *Instruction {
	instr := b.instructionsPool.allocate()
	instr.rValue = ValueInvalid
	instr.srcPos = sourcePosNone
	return instr
}

// allocateValue implements Builder.
func (b *builder) allocateValue(typ Type) (v Value) {
	v = Value(b.nextValueID)
	v = v.setType(typ)
	b.nextValueID++
	return
}

// InsertInstruction implements Builder.
func (b *builder) InsertInstruction(instr *Instruction) {
	b.currentBB.InsertInstruction(instr)

	if instr.rValue.Valid() || instr.rValues != nil {
		// Already materialized, e.g. by the elaboration pass.
		return
	}
	switch instr.opcode {
	case OpcodeIconst, OpcodeF32const, OpcodeF64const,
		OpcodeIadd, OpcodeIsub, OpcodeImul,
		OpcodeBand, OpcodeBor, OpcodeBxor, OpcodeIshl,
		OpcodeFadd, OpcodeFmul, OpcodeLoad:
		instr.rValue = b.allocateValue(instr.typ)
	case OpcodeIsplit:
		instr.rValue = b.allocateValue(TypeI32)
		instr.rValues = []Value{b.allocateValue(TypeI32)}
	case OpcodeCall:
		if instr.typ != TypeInvalid {
			instr.rValue = b.allocateValue(instr.typ)
		}
	}
}

// Blocks implements Builder.
func (b *builder) Blocks() []BasicBlock {
	n := b.basicBlocksPool.allocated
	if cap(b.basicBlocksView) < n {
		b.basicBlocksView = make([]BasicBlock, n)
	}
	b.basicBlocksView = b.basicBlocksView[:n]
	for i := 0; i < n; i++ {
		b.basicBlocksView[i] = b.basicBlocksPool.view(i)
	}
	return b.basicBlocksView
}

// EntryBlock implements Builder.
func (b *builder) EntryBlock() BasicBlock {
	return b.entryBlk()
}

func (b *builder) entryBlk() *basicBlock {
	return b.basicBlocksPool.view(0)
}

// SetCurrentBlock implements Builder.
func (b *builder) SetCurrentBlock(bb BasicBlock) {
	b.currentBB = bb.(*basicBlock)
}

// CurrentBlock implements Builder.
func (b *builder) CurrentBlock() BasicBlock {
	return b.currentBB
}

// RunPasses implements Builder.
func (b *builder) RunPasses() {
	passCalculateImmediateDominators(b)
}

// dominatorOf returns the immediate dominator of blk, or nil for the entry block.
func (b *builder) dominatorOf(blk *basicBlock) *basicBlock {
	dom := b.dominators[blk.id]
	if dom == blk {
		return nil
	}
	return dom
}

// isDominatedBy returns true if the block `n` is dominated by the block `d`.
// Before calling this, the dominators must be calculated with passCalculateImmediateDominators.
func (b *builder) isDominatedBy(n *basicBlock, d *basicBlock) bool {
	entryBlk := b.entryBlk()
	doms := b.dominators
	for n != d && n != entryBlk {
		n = doms[n.id]
	}
	return n == d
}

// clearBlkVisited clears the per-pass block visitation state.
func (b *builder) clearBlkVisited() {
	for key := range b.blkVisited {
		delete(b.blkVisited, key)
	}
}

// Format returns the debug string of the currently-built function.
func (b *builder) Format() string {
	var lines []string
	for i := 0; i < b.basicBlocksPool.allocated; i++ {
		blk := b.basicBlocksPool.view(i)
		lines = append(lines, blk.String())
		if body := blk.FormatInstructions(); body != "" {
			lines = append(lines, body)
		}
	}
	return strings.Join(lines, "\n")
}

var _ fmt.Stringer = basicBlockID(0)

// String implements fmt.Stringer.
func (bid basicBlockID) String() string {
	return fmt.Sprintf("blk%d", bid)
}

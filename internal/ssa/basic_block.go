package ssa

import (
	"fmt"
	"strings"
)

// BasicBlock represents the Basic Block of an SSA function.
// In traditional SSA terminology, the block "params" here are called phi values,
// and there does not exist "params". However, for simplicity, we handle them as parameters to a BB.
type BasicBlock interface {
	fmt.Stringer

	// Name returns the unique string ID of this block, e.g. blk0.
	Name() string

	// AddParam adds the parameter to the block whose type specified by `t`.
	AddParam(b Builder, t Type) Value

	// Params returns the number of parameters to this block.
	Params() int

	// Param returns the Value which corresponds to the i-th parameter of this block.
	Param(i int) Value

	// InsertInstruction inserts an instruction into this block.
	// Branching instructions are appended at the tail; any other instruction is
	// placed immediately before the first already-inserted branching instruction,
	// so that non-branching instructions always precede the block's terminators
	// in insertion order.
	InsertInstruction(raw *Instruction)

	// Root returns the root instruction of this block.
	Root() *Instruction

	// AddPred appends `block` as a predecessor to this BB.
	// `branch` is the *Instruction used to reach this block which holds the arguments.
	AddPred(block BasicBlock, branch *Instruction)

	// Seal declares that all the predecessors to this block are known and were added via AddPred.
	// After calling this, AddPred will be forbidden.
	Seal()

	// LoopHeader returns true if this block is the header of a natural loop,
	// which is set by the CFG pass.
	LoopHeader() bool

	// FormatInstructions returns the textual form of all instructions in this
	// block in layout order. Only used for debugging and tests.
	FormatInstructions() string
}

type (
	// basicBlock is a basic block in a SSA-transformed function.
	basicBlock struct {
		id                      basicBlockID
		rootInstr, currentInstr *Instruction
		// firstBranch points at the first branching instruction inserted into
		// this block; non-branching insertions are spliced in front of it.
		firstBranch *Instruction
		params      []blockParam
		preds       []basicBlockPredecessorInfo
		success     []*basicBlock
		// sealed is true if this is sealed (all the predecessors are known).
		sealed bool
		// loopHeader is set by the CFG pass if a back edge targets this block.
		loopHeader bool
	}
	basicBlockID uint32
)

type basicBlockPredecessorInfo struct {
	blk    *basicBlock
	branch *Instruction
}

// blockParam represents a parameter to a basicBlock.
type blockParam struct {
	// value is the Value that corresponds to the parameter in this block,
	// and can be considered as an output of a phi instruction in traditional SSA.
	value Value
	typ   Type
}

// Name implements BasicBlock.
func (bb *basicBlock) Name() string {
	return fmt.Sprintf("blk%d", bb.id)
}

// AddParam implements BasicBlock.
func (bb *basicBlock) AddParam(b Builder, typ Type) Value {
	paramValue := b.allocateValue(typ)
	bb.params = append(bb.params, blockParam{typ: typ, value: paramValue})
	return paramValue
}

// Params implements BasicBlock.
func (bb *basicBlock) Params() int {
	return len(bb.params)
}

// Param implements BasicBlock.
func (bb *basicBlock) Param(i int) Value {
	return bb.params[i].value
}

// InsertInstruction implements BasicBlock.
func (bb *basicBlock) InsertInstruction(next *Instruction) {
	if !next.IsBranching() && bb.firstBranch != nil {
		bb.insertBefore(bb.firstBranch, next)
		return
	}

	current := bb.currentInstr
	if current != nil {
		current.next = next
		next.prev = current
	} else {
		bb.rootInstr = next
	}
	bb.currentInstr = next

	if next.IsBranching() {
		if bb.firstBranch == nil {
			bb.firstBranch = next
		}
		switch next.opcode {
		case OpcodeJump, OpcodeBrz, OpcodeBrnz:
			target := next.blk.(*basicBlock)
			bb.success = append(bb.success, target)
			target.AddPred(bb, next)
		}
	}
}

// insertBefore splices `next` into the instruction list immediately before `at`.
func (bb *basicBlock) insertBefore(at, next *Instruction) {
	prev := at.prev
	next.prev, next.next = prev, at
	at.prev = next
	if prev != nil {
		prev.next = next
	} else {
		bb.rootInstr = next
	}
}

// Root implements BasicBlock.
func (bb *basicBlock) Root() *Instruction {
	return bb.rootInstr
}

// AddPred implements BasicBlock.
func (bb *basicBlock) AddPred(blk BasicBlock, branch *Instruction) {
	if bb.sealed {
		panic("BUG: trying to add predecessor to a sealed block: " + bb.Name())
	}
	pred := blk.(*basicBlock)
	bb.preds = append(bb.preds, basicBlockPredecessorInfo{
		blk:    pred,
		branch: branch,
	})
}

// Seal implements BasicBlock.
func (bb *basicBlock) Seal() {
	bb.sealed = true
}

// LoopHeader implements BasicBlock.
func (bb *basicBlock) LoopHeader() bool {
	return bb.loopHeader
}

func (bb *basicBlock) reset() {
	bb.params = bb.params[:0]
	bb.rootInstr, bb.currentInstr, bb.firstBranch = nil, nil, nil
	bb.preds = bb.preds[:0]
	bb.success = bb.success[:0]
	bb.sealed = false
	bb.loopHeader = false
}

// String implements fmt.Stringer. Only used for debugging.
func (bb *basicBlock) String() string {
	ps := make([]string, len(bb.params))
	for i, p := range bb.params {
		ps[i] = fmt.Sprintf("%s: %s", p.value, p.typ)
	}

	if len(bb.preds) > 0 {
		preds := make([]string, len(bb.preds))
		for i, pred := range bb.preds {
			preds[i] = fmt.Sprintf("blk%d", pred.blk.id)
		}
		return fmt.Sprintf("blk%d: (%s) <-- (%s)",
			bb.id, strings.Join(ps, ", "), strings.Join(preds, ","))
	}
	return fmt.Sprintf("blk%d: (%s)", bb.id, strings.Join(ps, ", "))
}

// FormatInstructions returns the textual form of all instructions in this
// block in layout order. Only used for debugging and tests.
func (bb *basicBlock) FormatInstructions() string {
	var lines []string
	for cur := bb.rootInstr; cur != nil; cur = cur.next {
		lines = append(lines, cur.Format())
	}
	return strings.Join(lines, "\n")
}

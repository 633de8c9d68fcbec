package backend

import "github.com/creelvm/creel/internal/ssa"

// Machine is a backend for a specific ISA.
type Machine interface {
	// SetCompilationContext is called before lowering begins with the
	// function-scoped context of the current compilation.
	SetCompilationContext(ctx CompilationContext)

	// StartBlock is called when the compilation of the given block is begun.
	StartBlock(blk ssa.BasicBlock)

	// LowerInstr is called for each instruction in the block in layout order.
	LowerInstr(*ssa.Instruction)

	// EndBlock is called when the compilation of the current block is finished.
	EndBlock()

	// Encode encodes the lowered instructions into machine code.
	Encode() ([]byte, error)

	// Reset resets the machine state for the next compilation.
	Reset()
}

// CompilationContext is the function-scoped query surface the compiler passes
// to the Machine for the lowering of the current function.
type CompilationContext interface {
	// ValueDefinition returns the definition of the given value, or nil if the
	// value is not defined in the current function.
	ValueDefinition(v ssa.Value) *SSAValueDefinition
}

// nopMachine does nothing, and is used as a lowering target when only the
// SSA-level output of compilation is of interest (e.g. in tests).
type nopMachine struct{}

var _ Machine = nopMachine{}

// SetCompilationContext implements Machine.SetCompilationContext.
func (m nopMachine) SetCompilationContext(CompilationContext) {}

// StartBlock implements Machine.StartBlock.
func (m nopMachine) StartBlock(ssa.BasicBlock) {}

// LowerInstr implements Machine.LowerInstr.
func (m nopMachine) LowerInstr(*ssa.Instruction) {}

// EndBlock implements Machine.EndBlock.
func (m nopMachine) EndBlock() {}

// Encode implements Machine.Encode.
func (m nopMachine) Encode() ([]byte, error) { return nil, nil }

// Reset implements Machine.Reset.
func (m nopMachine) Reset() {}

package backend

import "github.com/creelvm/creel/internal/ssa"

// SSAValueDefinition represents a definition of an SSA value.
type SSAValueDefinition struct {
	// blk is the block where the value is defined.
	blk ssa.BasicBlock
	// instr is not nil if this is a definition by an instruction.
	instr *ssa.Instruction
	// n is the index of the return value in instr, or the index of the block
	// parameter if this is a definition by a block parameter.
	n int
	// isBlockParam is true if this is a definition by a block parameter.
	isBlockParam bool
}

// IsFromInstr returns true if the value is defined by an instruction.
func (d *SSAValueDefinition) IsFromInstr() bool {
	return d.instr != nil
}

// Instr returns the defining instruction, or nil for a block parameter.
func (d *SSAValueDefinition) Instr() *ssa.Instruction {
	return d.instr
}

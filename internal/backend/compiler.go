package backend

import (
	"github.com/creelvm/creel/internal/ssa"
)

// NewCompiler returns a new Compiler that can generate machine code
// for the ISA implemented by mach.
func NewCompiler[T Machine](mach T, builder ssa.Builder) Compiler {
	return &compiler[T]{mach: mach, ssaBuilder: builder}
}

// Compiler lowers the state stored in ssa.Builder into ISA-specific machine code.
type Compiler interface {
	// Compile lowers the state stored in ssa.Builder into machine code.
	Compile() ([]byte, error)

	// Reset should be called to allow this Compiler to be used for the next function.
	Reset()
}

type compiler[T Machine] struct {
	mach       T
	ssaBuilder ssa.Builder
	// nextVRegID is the next virtual register ID to be allocated.
	nextVRegID VRegID
	// ssaValuesToVRegs maps ssa.ValueID to VReg.
	ssaValuesToVRegs []VReg
	// ssaValueDefinitions maps ssa.ValueID to its definition.
	ssaValueDefinitions []SSAValueDefinition
}

// Ensures that compiler[T] implements CompilationContext.
var _ CompilationContext = (*compiler[nopMachine])(nil)

// Compile implements Compiler.Compile.
func (c *compiler[T]) Compile() ([]byte, error) {
	c.assignVirtualRegisters()
	c.mach.SetCompilationContext(c)
	c.lowerBlocks()
	return c.mach.Encode()
}

// ValueDefinition implements CompilationContext.ValueDefinition.
func (c *compiler[T]) ValueDefinition(v ssa.Value) *SSAValueDefinition {
	id := int(v.ID())
	if id >= len(c.ssaValueDefinitions) {
		return nil
	}
	return &c.ssaValueDefinitions[id]
}

// lowerBlocks lowers each block in the ssa.Builder.
func (c *compiler[T]) lowerBlocks() {
	for _, blk := range c.ssaBuilder.Blocks() {
		c.mach.StartBlock(blk)
		for cur := blk.Root(); cur != nil; cur = cur.Next() {
			c.mach.LowerInstr(cur)
		}
		c.mach.EndBlock()
	}
}

// assignVirtualRegisters assigns a virtual register to each ssa.Value defined in the ssa.Builder.
func (c *compiler[T]) assignVirtualRegisters() {
	for _, blk := range c.ssaBuilder.Blocks() {
		// First we assign a virtual register to each parameter.
		for i := 0; i < blk.Params(); i++ {
			p := blk.Param(i)
			c.setDefinition(p, SSAValueDefinition{isBlockParam: true, blk: blk, n: i})
		}

		// Assigns each value to a virtual register produced by instructions.
		for cur := blk.Root(); cur != nil; cur = cur.Next() {
			r, rs := cur.Returns()
			if r.Valid() {
				c.setDefinition(r, SSAValueDefinition{blk: blk, instr: cur, n: 0})
			}
			for i, v := range rs {
				c.setDefinition(v, SSAValueDefinition{blk: blk, instr: cur, n: i + 1})
			}
		}
	}
}

func (c *compiler[T]) setDefinition(v ssa.Value, def SSAValueDefinition) {
	id := int(v.ID())
	if l := len(c.ssaValuesToVRegs); l <= id {
		c.ssaValuesToVRegs = append(c.ssaValuesToVRegs, make([]VReg, 2*(l+1))...)
		for i := l; i < len(c.ssaValuesToVRegs); i++ {
			c.ssaValuesToVRegs[i] = VRegInvalid
		}
	}
	if l := len(c.ssaValueDefinitions); l <= id {
		c.ssaValueDefinitions = append(c.ssaValueDefinitions, make([]SSAValueDefinition, 2*(l+1))...)
	}
	c.ssaValuesToVRegs[id] = c.allocateVReg()
	c.ssaValueDefinitions[id] = def
}

// allocateVReg allocates a new virtual register.
func (c *compiler[T]) allocateVReg() VReg {
	ret := VReg(c.nextVRegID)
	c.nextVRegID++
	return ret
}

// Reset implements Compiler.Reset.
func (c *compiler[T]) Reset() {
	for i := VRegID(0); i < c.nextVRegID; i++ {
		c.ssaValuesToVRegs[i] = VRegInvalid
	}
	c.nextVRegID = 0
	c.mach.Reset()
}

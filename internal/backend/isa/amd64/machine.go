package amd64

import (
	"github.com/creelvm/creel/internal/backend"
	"github.com/creelvm/creel/internal/ssa"
)

// gpAllocOrder is the order registers are handed out by the block-local
// allocator. rsp and rbp are reserved for the stack.
var gpAllocOrder = []realReg{
	rax, rcx, rdx, rbx, rsi, rdi,
	r8, r9, r10, r11, r12, r13, r14, r15,
}

// machine implements backend.Machine for amd64. Lowering picks instruction
// forms via the generated selectionRules and builds them with the generated
// constructors; Encode drives the generated encoders.
type machine struct {
	ctx        backend.CompilationContext
	currentBlk ssa.BasicBlock
	rootInstr  *instr
	tailInstr  *instr

	// valueRegs assigns each lowered ssa.Value a register. Allocation is
	// block-local first-come first-served; running out is a TODO, not an error.
	valueRegs map[ssa.ValueID]realReg
	nextGP    int
}

// NewMachine returns a backend.Machine for amd64.
func NewMachine() backend.Machine {
	return &machine{
		valueRegs: make(map[ssa.ValueID]realReg),
	}
}

// SetCompilationContext implements backend.Machine.SetCompilationContext.
func (m *machine) SetCompilationContext(ctx backend.CompilationContext) {
	m.ctx = ctx
}

// constOf returns the immediate of v if it is defined by a constant
// instruction, consulting the compiler's value definitions.
func (m *machine) constOf(v ssa.Value) (uint64, bool) {
	def := m.ctx.ValueDefinition(v)
	if def == nil || !def.IsFromInstr() {
		return 0, false
	}
	if instr := def.Instr(); instr.Opcode() == ssa.OpcodeIconst {
		return instr.ConstantVal(), true
	}
	return 0, false
}

func (m *machine) allocateInstr() *instr {
	return &instr{}
}

func (m *machine) insert(i *instr) {
	if m.rootInstr == nil {
		m.rootInstr = i
		m.tailInstr = i
		return
	}
	i.prev = m.tailInstr
	m.tailInstr.next = i
	m.tailInstr = i
}

// regFor returns the register assigned to v, allocating one on first use.
func (m *machine) regFor(v ssa.Value) realReg {
	if r, ok := m.valueRegs[v.ID()]; ok {
		return r
	}
	if m.nextGP >= len(gpAllocOrder) {
		panic("TODO: spilling when the register file is exhausted")
	}
	r := gpAllocOrder[m.nextGP]
	m.nextGP++
	m.valueRegs[v.ID()] = r
	return r
}

// StartBlock implements backend.Machine.StartBlock.
func (m *machine) StartBlock(blk ssa.BasicBlock) {
	m.currentBlk = blk
	// Block parameters get their registers up front so that every use below
	// sees a stable assignment.
	for i := 0; i < blk.Params(); i++ {
		m.regFor(blk.Param(i))
	}
}

// LowerInstr implements backend.Machine.LowerInstr.
func (m *machine) LowerInstr(instr *ssa.Instruction) {
	op := instr.Opcode()
	switch op {
	case ssa.OpcodeIconst:
		ret, _ := instr.Returns()
		c := instr.ConstantVal()
		// MOV r/m64, imm32 sign-extends, so bit 31 must be clear.
		if c>>31 != 0 {
			panic("TODO: wide constant materialization via MOV r64, imm64")
		}
		m.insert(m.newMovRmImm32(regOperand(m.regFor(ret)), c))

	case ssa.OpcodeIadd, ssa.OpcodeIsub, ssa.OpcodeImul,
		ssa.OpcodeBand, ssa.OpcodeBxor, ssa.OpcodeIshl:
		m.lowerBinop(instr)

	case ssa.OpcodeLoad:
		ret, _ := instr.Returns()
		ptr := instr.Args()[0]
		mem := memOperand(m.regFor(ptr), int32(instr.LoadStoreOffset()))
		m.insert(m.newMovRRm(m.regFor(ret), mem))

	case ssa.OpcodeStore:
		args := instr.Args()
		mem := memOperand(m.regFor(args[1]), int32(instr.LoadStoreOffset()))
		m.insert(m.newMovRmR(mem, m.regFor(args[0])))

	case ssa.OpcodeReturn:
		if args := instr.Args(); len(args) > 0 {
			// The first return value travels in rax.
			if r := m.regFor(args[0]); r != rax {
				m.insert(m.newMovRRm(rax, regOperand(r)))
			}
		}
		m.insert(m.newRet())

	case ssa.OpcodeNop:

	default:
		panic("TODO: lowering of " + op.String())
	}
}

// lowerBinop lowers a two-operand arithmetic instruction. amd64 arithmetic is
// destructive, so the left operand is first copied into the destination.
func (m *machine) lowerBinop(instr *ssa.Instruction) {
	op := instr.Opcode()
	kinds, ok := selectionRules[op]
	if !ok {
		panic("BUG: no selection rule for " + op.String())
	}

	args := instr.Args()
	x, y := args[0], args[1]
	ret, _ := instr.Returns()
	dst := m.regFor(ret)

	if xr := m.regFor(x); xr != dst {
		m.insert(m.newMovRRm(dst, regOperand(xr)))
	}

	yConst, yIsConst := m.constOf(y)
	for _, kind := range kinds {
		switch kind {
		case instKindAddRmImm32:
			if yIsConst && yConst>>31 == 0 {
				m.insert(m.newAddRmImm32(regOperand(dst), yConst))
				return
			}
		case instKindAddRmR:
			m.insert(m.newAddRmR(regOperand(dst), m.regFor(y)))
			return
		case instKindSubRmR:
			m.insert(m.newSubRmR(regOperand(dst), m.regFor(y)))
			return
		case instKindAndRmR:
			m.insert(m.newAndRmR(regOperand(dst), m.regFor(y)))
			return
		case instKindXorRmR:
			m.insert(m.newXorRmR(regOperand(dst), m.regFor(y)))
			return
		case instKindImulRRm:
			m.insert(m.newImulRRm(dst, regOperand(m.regFor(y))))
			return
		case instKindShlRmImm8:
			if yIsConst {
				m.insert(m.newShlRmImm8(regOperand(dst), yConst&63))
				return
			}
		default:
			panic("BUG: unexpected selection rule " + instMnemonics[kind] + " for " + op.String())
		}
	}
	panic("TODO: lowering of " + op.String() + " with a non-constant operand for an immediate-only form")
}

// EndBlock implements backend.Machine.EndBlock.
func (m *machine) EndBlock() {
	m.currentBlk = nil
}

// Encode implements backend.Machine.Encode.
func (m *machine) Encode() ([]byte, error) {
	var buf []byte
	for cur := m.rootInstr; cur != nil; cur = cur.next {
		encodeInstr(&buf, cur)
	}
	return buf, nil
}

// Reset implements backend.Machine.Reset.
func (m *machine) Reset() {
	m.ctx = nil
	m.currentBlk = nil
	m.rootInstr = nil
	m.tailInstr = nil
	m.nextGP = 0
	for id := range m.valueRegs {
		delete(m.valueRegs, id)
	}
}

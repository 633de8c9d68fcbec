package amd64

import "fmt"

// OperandKind classifies an operand of a declared instruction and determines
// how the operand maps to encoding fields.
type OperandKind byte

const (
	OperandKindInvalid OperandKind = iota
	// OperandKindImm is an immediate carried in the instruction bytes.
	OperandKindImm
	// OperandKindFixedReg is a specific register implied by the opcode, e.g.
	// the RAX of `AND RAX, imm32`. It consumes no encoding field.
	OperandKindFixedReg
	// OperandKindReg is a general register carried in the ModRM reg field.
	OperandKindReg
	// OperandKindRegMem is a register-or-memory operand carried in the ModRM
	// rm field (plus SIB/displacement for the memory forms).
	OperandKindRegMem
)

// Operand describes one operand of a declared instruction.
type Operand struct {
	Kind OperandKind
	// Bits is the operand width: 8, 16, 32, 64 or 128.
	Bits uint16
	// Aligned is set on reg-or-mem operands whose memory form requires
	// natural alignment (the legacy SSE forms).
	Aligned bool
	// Reg is the implied register of a fixed-register operand.
	Reg realReg
}

func imm(bits uint16) Operand {
	return Operand{Kind: OperandKindImm, Bits: bits}
}

func fixedReg(r realReg, bits uint16) Operand {
	return Operand{Kind: OperandKindFixedReg, Bits: bits, Reg: r}
}

func reg(bits uint16) Operand {
	return Operand{Kind: OperandKindReg, Bits: bits}
}

func regMem(bits uint16) Operand {
	return Operand{Kind: OperandKindRegMem, Bits: bits}
}

func regMemAligned(bits uint16) Operand {
	return Operand{Kind: OperandKindRegMem, Bits: bits, Aligned: true}
}

// String returns the reference-manual spelling of the operand.
func (o Operand) String() string {
	switch o.Kind {
	case OperandKindImm:
		return fmt.Sprintf("imm%d", o.Bits)
	case OperandKindFixedReg:
		return o.Reg.String()
	case OperandKindReg:
		if o.Bits == 128 {
			return "xmm"
		}
		return fmt.Sprintf("r%d", o.Bits)
	case OperandKindRegMem:
		if o.Bits == 128 {
			return "xmm/m128"
		}
		return fmt.Sprintf("r/m%d", o.Bits)
	default:
		panic("BUG: invalid operand kind")
	}
}

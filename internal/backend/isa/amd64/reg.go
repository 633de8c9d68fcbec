package amd64

import "fmt"

// realReg is a physical amd64 register.
type realReg byte

const (
	rax realReg = iota
	rcx
	rdx
	rbx
	rsp
	rbp
	rsi
	rdi
	r8
	r9
	r10
	r11
	r12
	r13
	r14
	r15

	xmm0
	xmm1
	xmm2
	xmm3
	xmm4
	xmm5
	xmm6
	xmm7
	xmm8
	xmm9
	xmm10
	xmm11
	xmm12
	xmm13
	xmm14
	xmm15

	numRealRegs
)

var regNames = [numRealRegs]string{
	rax: "rax", rcx: "rcx", rdx: "rdx", rbx: "rbx",
	rsp: "rsp", rbp: "rbp", rsi: "rsi", rdi: "rdi",
	r8: "r8", r9: "r9", r10: "r10", r11: "r11",
	r12: "r12", r13: "r13", r14: "r14", r15: "r15",
	xmm0: "xmm0", xmm1: "xmm1", xmm2: "xmm2", xmm3: "xmm3",
	xmm4: "xmm4", xmm5: "xmm5", xmm6: "xmm6", xmm7: "xmm7",
	xmm8: "xmm8", xmm9: "xmm9", xmm10: "xmm10", xmm11: "xmm11",
	xmm12: "xmm12", xmm13: "xmm13", xmm14: "xmm14", xmm15: "xmm15",
}

// String implements fmt.Stringer.
func (r realReg) String() string {
	if r < numRealRegs {
		return regNames[r]
	}
	return fmt.Sprintf("reg%d", byte(r))
}

// lowBits returns the 3-bit register index carried in ModRM/SIB fields.
func (r realReg) lowBits() byte {
	if r >= xmm0 {
		return byte(r-xmm0) & 7
	}
	return byte(r) & 7
}

// extension returns 1 for the registers that need a REX extension bit (r8..r15, xmm8..xmm15).
func (r realReg) extension() byte {
	if r >= xmm0 {
		return byte(r-xmm0) >> 3
	}
	return byte(r) >> 3
}

// REX bit positions.
const (
	rexBase byte = 0x40
	rexW    byte = 8 // 64-bit operand size
	rexR    byte = 4 // extension of the ModRM reg field
	rexX    byte = 2 // extension of the SIB index field
	rexB    byte = 1 // extension of the ModRM r/m, SIB base, or opcode reg field
)

// rexByte assembles a REX prefix from its bit fields.
func rexByte(w bool, reg, index, base byte) byte {
	b := rexBase
	if w {
		b |= rexW
	}
	b |= reg<<2 | index<<1 | base
	return b
}

// modRMByte assembles a ModRM byte from the mod, reg and rm fields.
func modRMByte(mod, reg, rm byte) byte {
	return mod<<6 | (reg&7)<<3 | rm&7
}

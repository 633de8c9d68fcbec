package amd64

import "fmt"

// instr represents one lowered machine instruction. Each field is interpreted
// depending on kind; the constructors and encoders for every kind live in the
// generated zisa.go.
type instr struct {
	kind       instKind
	prev, next *instr
	// reg is the ModRM reg-field register operand, if the form has one.
	reg realReg
	// rm is the register-or-memory operand, if the form has one.
	rm regMemOperand
	// imm is the immediate payload, if the form has one.
	imm uint64
}

// regMemOperand is a register-or-memory operand. The memory form is
// [base + disp].
type regMemOperand struct {
	mem  bool
	reg  realReg
	base realReg
	disp int32
}

func regOperand(r realReg) regMemOperand {
	return regMemOperand{reg: r}
}

func memOperand(base realReg, disp int32) regMemOperand {
	return regMemOperand{mem: true, base: base, disp: disp}
}

// String implements fmt.Stringer.
func (rm regMemOperand) String() string {
	if !rm.mem {
		return rm.reg.String()
	}
	if rm.disp == 0 {
		return fmt.Sprintf("[%s]", rm.base)
	}
	return fmt.Sprintf("[%s%+#x]", rm.base, rm.disp)
}

// String implements fmt.Stringer.
func (i *instr) String() string {
	return fmt.Sprintf("%s ; %s", instMnemonics[i.kind], instEncodings[i.kind])
}

func visitRegMem(rm *regMemOperand, fn func(*realReg)) {
	if rm.mem {
		fn(&rm.base)
	} else {
		fn(&rm.reg)
	}
}

func emitByte(buf *[]byte, b byte) {
	*buf = append(*buf, b)
}

// emitRexRegRM emits a REX prefix covering a reg-field register and an rm
// operand. The prefix is omitted when neither the W bit nor any extension bit
// is needed.
func emitRexRegRM(buf *[]byte, w bool, reg realReg, rm regMemOperand) {
	r := reg.extension()
	b := rmExtension(rm)
	if w || r != 0 || b != 0 {
		emitByte(buf, rexByte(w, r, 0, b))
	}
}

// emitRexRM emits a REX prefix covering only an rm operand, for the forms
// whose ModRM reg field carries an opcode digit.
func emitRexRM(buf *[]byte, w bool, rm regMemOperand) {
	b := rmExtension(rm)
	if w || b != 0 {
		emitByte(buf, rexByte(w, 0, 0, b))
	}
}

func rmExtension(rm regMemOperand) byte {
	if rm.mem {
		return rm.base.extension()
	}
	return rm.reg.extension()
}

// emitModRM emits the ModRM byte (and SIB/displacement for memory forms) with
// the given reg field, which is either a register's low bits or an opcode
// digit.
func emitModRM(buf *[]byte, regField byte, rm regMemOperand) {
	if !rm.mem {
		emitByte(buf, modRMByte(3, regField, rm.reg.lowBits()))
		return
	}

	base := rm.base.lowBits()
	// rsp/r12 as a base always needs a SIB byte; rbp/r13 with mod=0 would
	// mean RIP-relative, so those take the disp8 form even for zero.
	needsSIB := base == rsp.lowBits()
	var mod byte
	switch {
	case rm.disp == 0 && base != rbp.lowBits():
		mod = 0
	case rm.disp >= -128 && rm.disp <= 127:
		mod = 1
	default:
		mod = 2
	}
	if needsSIB {
		emitByte(buf, modRMByte(mod, regField, 4))
		emitByte(buf, 0x24) // scale=1, no index, base=rsp
	} else {
		emitByte(buf, modRMByte(mod, regField, base))
	}
	switch mod {
	case 1:
		emitByte(buf, byte(rm.disp))
	case 2:
		emitImm(buf, uint64(uint32(rm.disp)), 4)
	}
}

// emitImm emits an n-byte little-endian immediate.
func emitImm(buf *[]byte, v uint64, n int) {
	for j := 0; j < n; j++ {
		emitByte(buf, byte(v>>(8*j)))
	}
}

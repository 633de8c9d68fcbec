package amd64

import "fmt"

// Inst is one declared instruction form: its reference-manual mnemonic, an
// identifier-friendly name used by the code generator, its validated
// encoding, its operands, and optionally the name of the IR opcode the
// instruction-selection layer lowers to this form.
type Inst struct {
	Mnemonic string
	Name     string
	Enc      Encoding
	Ops      []Operand
	// SelectFor is the ssa.Opcode name a selection glue rule is generated
	// for, or empty if the form is only reached by dedicated lowering code.
	SelectFor string
}

// InstructionSet returns the declared instruction set. The table is built
// here, validated immediately, and threaded explicitly to its consumers (the
// code generator and the lowering rules); there is no ambient global registry.
//
// Each declaration is validated against the hardware encoding rules at
// construction; a violation is a bug in the table itself and stops the build.
func InstructionSet() []Inst {
	insts := []Inst{
		{
			Mnemonic:  "ADD r/m64, imm32",
			Name:      "AddRmImm32",
			Enc:       rex(0x81).w().digit(0).id(),
			Ops:       []Operand{regMem(64), imm(32)},
			SelectFor: "Iadd",
		},
		{
			Mnemonic:  "ADD r/m64, r64",
			Name:      "AddRmR",
			Enc:       rex(0x01).w().r(),
			Ops:       []Operand{regMem(64), reg(64)},
			SelectFor: "Iadd",
		},
		{
			Mnemonic: "ADD r/m16, imm16",
			Name:     "AddRm16Imm16",
			Enc:      rex(0x66, 0x81).digit(0).iw(),
			Ops:      []Operand{regMem(16), imm(16)},
		},
		{
			Mnemonic: "AND RAX, imm32",
			Name:     "AndRaxImm32",
			Enc:      rex(0x25).w().id(),
			Ops:      []Operand{fixedReg(rax, 64), imm(32)},
		},
		{
			Mnemonic:  "AND r/m64, r64",
			Name:      "AndRmR",
			Enc:       rex(0x21).w().r(),
			Ops:       []Operand{regMem(64), reg(64)},
			SelectFor: "Band",
		},
		{
			Mnemonic: "ANDPD xmm1, xmm2/m128",
			Name:     "Andpd",
			Enc:      rex(0x66, 0x0F, 0x54).r(),
			Ops:      []Operand{reg(128), regMemAligned(128)},
		},
		{
			Mnemonic:  "IMUL r64, r/m64",
			Name:      "ImulRRm",
			Enc:       rex(0x0F, 0xAF).w().r(),
			Ops:       []Operand{reg(64), regMem(64)},
			SelectFor: "Imul",
		},
		{
			Mnemonic: "MOV r/m64, r64",
			Name:     "MovRmR",
			Enc:      rex(0x89).w().r(),
			Ops:      []Operand{regMem(64), reg(64)},
		},
		{
			Mnemonic: "MOV r64, r/m64",
			Name:     "MovRRm",
			Enc:      rex(0x8B).w().r(),
			Ops:      []Operand{reg(64), regMem(64)},
		},
		{
			Mnemonic:  "MOV r/m64, imm32",
			Name:      "MovRmImm32",
			Enc:       rex(0xC7).w().digit(0).id(),
			Ops:       []Operand{regMem(64), imm(32)},
			SelectFor: "Iconst",
		},
		{
			Mnemonic: "MOVAPS xmm1, xmm2/m128",
			Name:     "Movaps",
			Enc:      rex(0x0F, 0x28).r(),
			Ops:      []Operand{reg(128), regMemAligned(128)},
		},
		{
			Mnemonic:  "SHL r/m64, imm8",
			Name:      "ShlRmImm8",
			Enc:       rex(0xC1).w().digit(4).ib(),
			Ops:       []Operand{regMem(64), imm(8)},
			SelectFor: "Ishl",
		},
		{
			Mnemonic:  "SUB r/m64, r64",
			Name:      "SubRmR",
			Enc:       rex(0x29).w().r(),
			Ops:       []Operand{regMem(64), reg(64)},
			SelectFor: "Isub",
		},
		{
			Mnemonic: "SUB r/m64, imm8",
			Name:     "SubRmImm8",
			Enc:      rex(0x83).w().digit(5).ib(),
			Ops:      []Operand{regMem(64), imm(8)},
		},
		{
			Mnemonic:  "XOR r/m64, r64",
			Name:      "XorRmR",
			Enc:       rex(0x31).w().r(),
			Ops:       []Operand{regMem(64), reg(64)},
			SelectFor: "Bxor",
		},
		{
			Mnemonic: "RET",
			Name:     "Ret",
			Enc:      rex(0xC3),
			Ops:      nil,
		},
	}

	for _, inst := range insts {
		if err := inst.Enc.Validate(inst.Ops); err != nil {
			panic(fmt.Sprintf("BUG: invalid declaration of %s (%s): %v", inst.Mnemonic, inst.Enc, err))
		}
	}
	return insts
}

// Package amd64 implements the amd64-specific backend: the declarative
// instruction-encoding model, the declared instruction set, and the machine
// lowering driven by the generated encoders.
package amd64

import (
	"errors"
	"fmt"
	"strings"
)

// Legacy prefix bytes, one group each may appear on an instruction.
const (
	// Group 1: lock and repeat prefixes.
	prefixLock  byte = 0xF0
	prefixRepne byte = 0xF2
	prefixRep   byte = 0xF3
	// Group 2: segment overrides (and branch hints on Jcc).
	prefixCS byte = 0x2E
	prefixSS byte = 0x36
	prefixDS byte = 0x3E
	prefixES byte = 0x26
	prefixFS byte = 0x64
	prefixGS byte = 0x65
	// Group 3: operand-size override.
	prefixOperandSize byte = 0x66
	// Group 4: address-size override.
	prefixAddressSize byte = 0x67

	// escapeByte introduces the two-byte opcode map.
	escapeByte byte = 0x0F
)

// prefixGroup returns the 1-based prefix group of b, or 0 if b is not a
// recognized legacy prefix.
func prefixGroup(b byte) int {
	switch b {
	case prefixLock, prefixRepne, prefixRep:
		return 1
	case prefixCS, prefixSS, prefixDS, prefixES, prefixFS, prefixGS:
		return 2
	case prefixOperandSize:
		return 3
	case prefixAddressSize:
		return 4
	default:
		return 0
	}
}

// opcodes holds the ordered legacy prefixes, the optional escape byte and the
// one or two opcode bytes of an instruction. groups[i] is the group i+1
// prefix, or zero when absent.
type opcodes struct {
	groups       [4]byte
	escape       bool
	primary      byte
	secondary    byte
	hasSecondary bool
}

// opcodesFromBytes parses a raw byte sequence into opcodes. Zero or one prefix
// per group is consumed in any order from the front; the remainder must then
// be one of [op], [0x0F, op] or [0x0F, op, op2]. Anything else is a bug in the
// instruction declaration and panics.
func opcodesFromBytes(bs ...byte) (o opcodes) {
	rest := bs
	for len(rest) > 0 {
		g := prefixGroup(rest[0])
		if g == 0 {
			break
		}
		if o.groups[g-1] != 0 {
			panic(fmt.Sprintf("BUG: two group %d prefixes in % x", g, bs))
		}
		o.groups[g-1] = rest[0]
		rest = rest[1:]
	}
	switch {
	case len(rest) == 1:
		o.primary = rest[0]
	case len(rest) == 2 && rest[0] == escapeByte:
		o.escape = true
		o.primary = rest[1]
	case len(rest) == 3 && rest[0] == escapeByte:
		o.escape = true
		o.primary = rest[1]
		o.secondary, o.hasSecondary = rest[2], true
	default:
		panic(fmt.Sprintf("BUG: unsupported opcode shape % x", bs))
	}
	return
}

// bytes reconstructs the byte sequence in canonical order: prefixes in group
// order, the escape byte if set, then the opcode byte(s).
func (o opcodes) bytes() []byte {
	var bs []byte
	for _, p := range o.groups {
		if p != 0 {
			bs = append(bs, p)
		}
	}
	if o.escape {
		bs = append(bs, escapeByte)
	}
	bs = append(bs, o.primary)
	if o.hasSecondary {
		bs = append(bs, o.secondary)
	}
	return bs
}

// ImmWidth is the width of the immediate an instruction carries, if any.
type ImmWidth byte

const (
	ImmNone ImmWidth = iota
	Imm8
	Imm16
	Imm32
	Imm64
)

// Bits returns the number of immediate bits, or 0 for ImmNone.
func (w ImmWidth) Bits() uint16 {
	switch w {
	case Imm8:
		return 8
	case Imm16:
		return 16
	case Imm32:
		return 32
	case Imm64:
		return 64
	default:
		return 0
	}
}

// String returns the reference-manual mnemonic of the immediate width.
func (w ImmWidth) String() string {
	switch w {
	case Imm8:
		return "ib"
	case Imm16:
		return "iw"
	case Imm32:
		return "id"
	case Imm64:
		return "io"
	default:
		return ""
	}
}

type encodingKind byte

const (
	encodingKindInvalid encodingKind = iota
	// encodingKindRex is a legacy/REX-style encoding.
	encodingKindRex
	// encodingKindVex is an AVX VEX-style encoding. Present as an extension
	// point only; VEX has no REX byte and different prefix/length semantics,
	// so its validation rules are not derived from the REX ones.
	encodingKindVex
)

// Encoding is the declarative byte-level encoding of one instruction form.
// Values are built once per declared instruction via the rex builder below,
// validated immediately, and never mutated afterwards.
type Encoding struct {
	kind encodingKind
	op   opcodes
	wBit bool
	rBit bool
	// opcodeDigit is the /0../7 opcode extension carried in the ModRM reg
	// field, or -1 when absent.
	opcodeDigit int8
	imm         ImmWidth
}

// rex starts a REX-style Encoding from the raw prefix+opcode bytes.
// Malformed byte sequences panic at declaration time.
func rex(bs ...byte) Encoding {
	return Encoding{kind: encodingKindRex, op: opcodesFromBytes(bs...), opcodeDigit: -1}
}

// vex starts a VEX-style Encoding. Declaration is allowed so the instruction
// table can name AVX forms, but validation rejects them until VEX support is
// implemented.
func vex(bs ...byte) Encoding {
	return Encoding{kind: encodingKindVex, op: opcodesFromBytes(bs...), opcodeDigit: -1}
}

// w sets the REX.W bit (64-bit operand size).
func (e Encoding) w() Encoding {
	e.wBit = true
	return e
}

// r marks the operands as encoded in the ModRM reg+rm form.
func (e Encoding) r() Encoding {
	e.rBit = true
	return e
}

// digit attaches the /0../7 opcode extension carried in the ModRM reg field.
func (e Encoding) digit(d uint8) Encoding {
	if d > 7 {
		panic(fmt.Sprintf("BUG: opcode digit %d exceeds 3 bits", d))
	}
	e.opcodeDigit = int8(d)
	return e
}

func (e Encoding) setImm(w ImmWidth) Encoding {
	if e.imm != ImmNone {
		panic("BUG: at most one immediate per instruction")
	}
	e.imm = w
	return e
}

// ib attaches an 8-bit immediate.
func (e Encoding) ib() Encoding { return e.setImm(Imm8) }

// iw attaches a 16-bit immediate.
func (e Encoding) iw() Encoding { return e.setImm(Imm16) }

// id attaches a 32-bit immediate.
func (e Encoding) id() Encoding { return e.setImm(Imm32) }

// io attaches a 64-bit immediate.
func (e Encoding) io() Encoding { return e.setImm(Imm64) }

// errVexUnsupported reports a declared VEX form, whose validation rules are
// not implemented yet.
var errVexUnsupported = errors.New("VEX encodings are not supported yet")

// Validate re-checks the encoding against the final operand list. Violations
// indicate a bug in the instruction declaration itself; the typed error lets
// the declaration path abort with context and the tests assert on rejection.
func (e Encoding) Validate(operands []Operand) error {
	switch e.kind {
	case encodingKindRex:
	case encodingKindVex:
		return errVexUnsupported
	default:
		return errors.New("invalid encoding kind")
	}

	if e.rBit && e.opcodeDigit >= 0 {
		return fmt.Errorf("/r and /%d both consume the ModRM reg field", e.opcodeDigit)
	}

	if e.wBit && e.op.groups[2] == prefixOperandSize {
		// Legal in hardware but the 0x66 prefix is simply ignored when REX.W
		// is set, so declaring both is always a mistake.
		return errors.New("REX.W with the operand-size override prefix is redundant")
	}

	if e.op.groups[2] == prefixOperandSize {
		for _, op := range operands {
			if op.Kind == OperandKindImm || op.Kind == OperandKindFixedReg {
				continue
			}
			// 128-bit SIMD operands share the 0x66 byte for unrelated reasons,
			// hence the second width here.
			if op.Bits != 16 && op.Bits != 128 {
				return fmt.Errorf("%d-bit operand with the 16-bit operand-size prefix", op.Bits)
			}
		}
	}

	var immSeen bool
	for _, op := range operands {
		if op.Kind != OperandKindImm {
			continue
		}
		if immSeen {
			return errors.New("more than one immediate operand")
		}
		immSeen = true
		if op.Bits != e.imm.Bits() {
			return fmt.Errorf("%d-bit immediate operand does not match declared %q", op.Bits, e.imm)
		}
	}
	return nil
}

// Prefixes returns the legacy prefixes in canonical group order.
func (e Encoding) Prefixes() []byte {
	var bs []byte
	for _, p := range e.op.groups {
		if p != 0 {
			bs = append(bs, p)
		}
	}
	return bs
}

// Escape returns true if the opcode lives in the 0x0F map.
func (e Encoding) Escape() bool { return e.op.escape }

// Primary returns the primary opcode byte.
func (e Encoding) Primary() byte { return e.op.primary }

// Secondary returns the secondary opcode byte if present.
func (e Encoding) Secondary() (byte, bool) { return e.op.secondary, e.op.hasSecondary }

// WBit returns true if the REX.W bit is set.
func (e Encoding) WBit() bool { return e.wBit }

// RBit returns true if the operands are encoded in ModRM reg+rm form.
func (e Encoding) RBit() bool { return e.rBit }

// Digit returns the /0../7 opcode extension if present.
func (e Encoding) Digit() (uint8, bool) {
	if e.opcodeDigit < 0 {
		return 0, false
	}
	return uint8(e.opcodeDigit), true
}

// Imm returns the declared immediate width.
func (e Encoding) Imm() ImmWidth { return e.imm }

// String renders the reference-manual encoding notation, e.g. "REX.W + 0x25 id".
// The output is a golden artifact: it is asserted on by tests and consumed by
// the documentation generation.
func (e Encoding) String() string {
	var sb strings.Builder
	for _, p := range e.op.groups {
		if p != 0 {
			fmt.Fprintf(&sb, "0x%02X + ", p)
		}
	}
	if e.wBit {
		sb.WriteString("REX.W + ")
	}
	if e.op.escape {
		sb.WriteString("0x0F + ")
	}
	fmt.Fprintf(&sb, "0x%02x", e.op.primary)
	if e.op.hasSecondary {
		fmt.Fprintf(&sb, " 0x%02x", e.op.secondary)
	}
	if e.rBit {
		sb.WriteString(" /r")
	}
	if e.opcodeDigit >= 0 {
		fmt.Fprintf(&sb, " /%d", e.opcodeDigit)
	}
	if e.imm != ImmNone {
		sb.WriteString(" " + e.imm.String())
	}
	return sb.String()
}

package ssa

import (
	"fmt"
	"math"
	"strings"
)

// Opcode represents a SSA instruction.
type Opcode uint32

// Instruction represents an instruction whose opcode is specified by
// Opcode. Since Go doesn't have union type, we use this flattened type
// for all instructions, and therefore each field has different meaning
// depending on Opcode.
type Instruction struct {
	opcode     Opcode
	u64        uint64
	v          Value
	v2         Value
	vs         []Value
	typ        Type
	blk        BasicBlock
	prev, next *Instruction
	srcPos     SourcePos

	rValue  Value
	rValues []Value
}

// SourcePos is an opaque source position tag carried through compilation
// for debug info and trap reporting.
type SourcePos uint64

// sourcePosNone marks instructions synthesized by the compiler itself.
const sourcePosNone = SourcePos(math.MaxUint64)

const (
	// OpcodeInvalid is the zero value of Opcode and must not appear in a finalized function.
	OpcodeInvalid Opcode = iota

	// OpcodeJump takes the list of args to the `block` and unconditionally jumps to it.
	OpcodeJump

	// OpcodeBrz branches into `blk` with `args` if the value `c` equals zero: `Brz c, blk, args`.
	OpcodeBrz

	// OpcodeBrnz branches into `blk` with `args` if the value `c` is not zero: `Brnz c, blk, args`.
	OpcodeBrnz

	// OpcodeTrap exits the execution immediately.
	OpcodeTrap

	// OpcodeReturn returns from the function: `return rvalues`.
	OpcodeReturn

	// OpcodeCall calls a function specified by the symbol FN with arguments `args`.
	OpcodeCall

	// OpcodeLoad loads a Type value from the address by `p`: `a = Load p, Offset`.
	OpcodeLoad

	// OpcodeStore stores a Type value to the address by `p`: `Store x, p, Offset`.
	OpcodeStore

	// OpcodeIconst represents a constant integer value.
	OpcodeIconst

	// OpcodeF32const represents a constant 32-bit float value.
	OpcodeF32const

	// OpcodeF64const represents a constant 64-bit float value.
	OpcodeF64const

	// OpcodeIadd performs an integer addition: `a = Iadd x, y`.
	OpcodeIadd

	// OpcodeIsub performs an integer subtraction: `a = Isub x, y`.
	OpcodeIsub

	// OpcodeImul performs an integer multiplication: `a = Imul x, y`.
	OpcodeImul

	// OpcodeBand performs a binary and: `a = Band x, y`.
	OpcodeBand

	// OpcodeBor performs a binary or: `a = Bor x, y`.
	OpcodeBor

	// OpcodeBxor performs a binary xor: `a = Bxor x, y`.
	OpcodeBxor

	// OpcodeIshl performs a logical shift left: `a = Ishl x, amount`.
	OpcodeIshl

	// OpcodeFadd performs a floating point addition: `a = Fadd x, y`.
	OpcodeFadd

	// OpcodeFmul performs a floating point multiplication: `a = Fmul x, y`.
	OpcodeFmul

	// OpcodeIsplit splits a 64-bit integer into its low and high halves: `lo, hi = Isplit x`.
	OpcodeIsplit

	// OpcodeNop is a no-op.
	OpcodeNop

	opcodeEnd
)

// String implements fmt.Stringer.
func (o Opcode) String() (ret string) {
	switch o {
	case OpcodeJump:
		return "Jump"
	case OpcodeBrz:
		return "Brz"
	case OpcodeBrnz:
		return "Brnz"
	case OpcodeTrap:
		return "Trap"
	case OpcodeReturn:
		return "Return"
	case OpcodeCall:
		return "Call"
	case OpcodeLoad:
		return "Load"
	case OpcodeStore:
		return "Store"
	case OpcodeIconst:
		return "Iconst"
	case OpcodeF32const:
		return "F32const"
	case OpcodeF64const:
		return "F64const"
	case OpcodeIadd:
		return "Iadd"
	case OpcodeIsub:
		return "Isub"
	case OpcodeImul:
		return "Imul"
	case OpcodeBand:
		return "Band"
	case OpcodeBor:
		return "Bor"
	case OpcodeBxor:
		return "Bxor"
	case OpcodeIshl:
		return "Ishl"
	case OpcodeFadd:
		return "Fadd"
	case OpcodeFmul:
		return "Fmul"
	case OpcodeIsplit:
		return "Isplit"
	case OpcodeNop:
		return "Nop"
	}
	panic(fmt.Sprintf("BUG: unknown opcode %d", o))
}

// sideEffect returns true if executing the opcode has an observable machine-level
// effect (memory access, control flow, call). Pure opcodes may be freely
// duplicated, hoisted or eliminated.
func (o Opcode) sideEffect() bool {
	switch o {
	case OpcodeJump, OpcodeBrz, OpcodeBrnz, OpcodeTrap, OpcodeReturn,
		OpcodeCall, OpcodeLoad, OpcodeStore:
		return true
	default:
		return false
	}
}

// IsBranching returns true if this instruction is a branch or a terminator and
// therefore must be the tail of a basic block.
func (i *Instruction) IsBranching() bool {
	switch i.opcode {
	case OpcodeJump, OpcodeBrz, OpcodeBrnz, OpcodeTrap, OpcodeReturn:
		return true
	default:
		return false
	}
}

// Opcode returns the Opcode of this instruction.
func (i *Instruction) Opcode() Opcode {
	return i.opcode
}

// Returns returns Value(s) produced by this instruction if any.
// The `first` is the first return value, and `rest` is the rest of the values.
func (i *Instruction) Returns() (first Value, rest []Value) {
	return i.rValue, i.rValues
}

// Args returns the operand Value(s) of this instruction.
func (i *Instruction) Args() []Value {
	return i.vs
}

// ConstantVal returns the raw bits of a constant instruction.
func (i *Instruction) ConstantVal() uint64 {
	switch i.opcode {
	case OpcodeIconst, OpcodeF32const, OpcodeF64const:
		return i.u64
	default:
		panic("BUG: ConstantVal on non-constant: " + i.opcode.String())
	}
}

// LoadStoreOffset returns the byte offset of a load or store.
func (i *Instruction) LoadStoreOffset() uint32 {
	switch i.opcode {
	case OpcodeLoad, OpcodeStore:
		return uint32(i.u64)
	default:
		panic("BUG: LoadStoreOffset on non-memory: " + i.opcode.String())
	}
}

// Next returns the next instruction laid out next to itself.
func (i *Instruction) Next() *Instruction {
	return i.next
}

// Prev returns the previous instruction laid out prior to itself.
func (i *Instruction) Prev() *Instruction {
	return i.prev
}

// SetSourcePos sets the opaque source position of this instruction.
func (i *Instruction) SetSourcePos(p SourcePos) {
	i.srcPos = p
}

// SourcePos returns the opaque source position of this instruction set by SetSourcePos.
func (i *Instruction) SourcePos() SourcePos {
	return i.srcPos
}

// BranchTarget returns the target block of a branch instruction.
func (i *Instruction) BranchTarget() BasicBlock {
	switch i.opcode {
	case OpcodeJump, OpcodeBrz, OpcodeBrnz:
		return i.blk
	default:
		panic("BUG: BranchTarget on non-branch: " + i.opcode.String())
	}
}

// asOperation fills this instruction with an already-resolved operand list.
// This is how the elaborator materializes a chosen computation; the dedicated
// As* constructors below are the front-end construction path.
func (i *Instruction) asOperation(op Opcode, args []Value, typ Type) {
	i.opcode = op
	i.vs = args
	i.typ = typ
	i.srcPos = sourcePosNone
}

func (i *Instruction) AsIconst64(v uint64) *Instruction {
	i.opcode = OpcodeIconst
	i.typ = TypeI64
	i.u64 = v
	return i
}

func (i *Instruction) AsIconst32(v uint32) *Instruction {
	i.opcode = OpcodeIconst
	i.typ = TypeI32
	i.u64 = uint64(v)
	return i
}

func (i *Instruction) AsF32const(f float32) *Instruction {
	i.opcode = OpcodeF32const
	i.typ = TypeF32
	i.u64 = uint64(math.Float32bits(f))
	return i
}

func (i *Instruction) AsF64const(f float64) *Instruction {
	i.opcode = OpcodeF64const
	i.typ = TypeF64
	i.u64 = math.Float64bits(f)
	return i
}

func (i *Instruction) AsLoad(ptr Value, offset uint32, typ Type) *Instruction {
	i.opcode = OpcodeLoad
	i.vs = append(i.vs, ptr)
	i.u64 = uint64(offset)
	i.typ = typ
	return i
}

func (i *Instruction) AsStore(value, ptr Value, offset uint32) *Instruction {
	i.opcode = OpcodeStore
	i.vs = append(i.vs, value, ptr)
	i.u64 = uint64(offset)
	i.typ = TypeI64
	return i
}

// AsIadd initializes this instruction as an integer addition: `a = Iadd x, y`.
func (i *Instruction) AsIadd(x, y Value) *Instruction {
	return i.asBinop(OpcodeIadd, x, y)
}

// AsIsub initializes this instruction as an integer subtraction: `a = Isub x, y`.
func (i *Instruction) AsIsub(x, y Value) *Instruction {
	return i.asBinop(OpcodeIsub, x, y)
}

// AsImul initializes this instruction as an integer multiplication: `a = Imul x, y`.
func (i *Instruction) AsImul(x, y Value) *Instruction {
	return i.asBinop(OpcodeImul, x, y)
}

// AsBand initializes this instruction as a binary and: `a = Band x, y`.
func (i *Instruction) AsBand(x, y Value) *Instruction {
	return i.asBinop(OpcodeBand, x, y)
}

// AsBor initializes this instruction as a binary or: `a = Bor x, y`.
func (i *Instruction) AsBor(x, y Value) *Instruction {
	return i.asBinop(OpcodeBor, x, y)
}

// AsBxor initializes this instruction as a binary xor: `a = Bxor x, y`.
func (i *Instruction) AsBxor(x, y Value) *Instruction {
	return i.asBinop(OpcodeBxor, x, y)
}

// AsIshl initializes this instruction as a logical shift left: `a = Ishl x, amount`.
func (i *Instruction) AsIshl(x, amount Value) *Instruction {
	return i.asBinop(OpcodeIshl, x, amount)
}

func (i *Instruction) asBinop(op Opcode, x, y Value) *Instruction {
	i.opcode = op
	i.vs = append(i.vs, x, y)
	i.typ = x.Type()
	return i
}

func (i *Instruction) AsReturn(vs []Value) *Instruction {
	i.opcode = OpcodeReturn
	i.vs = vs
	return i
}

func (i *Instruction) AsTrap() *Instruction {
	i.opcode = OpcodeTrap
	return i
}

func (i *Instruction) AsJump(vs []Value, target BasicBlock) *Instruction {
	i.opcode = OpcodeJump
	i.vs = vs
	i.blk = target
	return i
}

func (i *Instruction) AsBrz(v Value, args []Value, target BasicBlock) *Instruction {
	i.opcode = OpcodeBrz
	i.v = v
	i.vs = args
	i.blk = target
	return i
}

func (i *Instruction) AsBrnz(v Value, args []Value, target BasicBlock) *Instruction {
	i.opcode = OpcodeBrnz
	i.v = v
	i.vs = args
	i.blk = target
	return i
}

// Format returns a debug string for this instruction.
func (i *Instruction) Format() string {
	var instSuffix string
	switch i.opcode {
	case OpcodeTrap, OpcodeNop:
	case OpcodeIconst:
		switch i.typ {
		case TypeI32:
			instSuffix = fmt.Sprintf("_32 %#x", uint32(i.u64))
		case TypeI64:
			instSuffix = fmt.Sprintf("_64 %#x", i.u64)
		}
	case OpcodeF32const:
		instSuffix = fmt.Sprintf(" %f", math.Float32frombits(uint32(i.u64)))
	case OpcodeF64const:
		instSuffix = fmt.Sprintf(" %f", math.Float64frombits(i.u64))
	case OpcodeLoad:
		instSuffix = fmt.Sprintf(" %s, %#x", i.vs[0], uint32(i.u64))
	case OpcodeStore:
		instSuffix = fmt.Sprintf(" %s, %s, %#x", i.vs[0], i.vs[1], uint32(i.u64))
	case OpcodeReturn:
		if len(i.vs) == 0 {
			break
		}
		vs := make([]string, len(i.vs))
		for idx := range vs {
			vs[idx] = i.vs[idx].String()
		}
		instSuffix = fmt.Sprintf(" %s", strings.Join(vs, ", "))
	case OpcodeJump:
		vs := make([]string, len(i.vs)+1)
		vs[0] = " " + i.blk.(*basicBlock).Name()
		for idx := range i.vs {
			vs[idx+1] = i.vs[idx].String()
		}
		instSuffix = strings.Join(vs, ", ")
	case OpcodeBrz, OpcodeBrnz:
		vs := make([]string, len(i.vs)+2)
		vs[0] = " " + i.v.String()
		vs[1] = i.blk.(*basicBlock).Name()
		for idx := range i.vs {
			vs[idx+2] = i.vs[idx].String()
		}
		instSuffix = strings.Join(vs, ", ")
	default:
		vs := make([]string, len(i.vs))
		for idx := range vs {
			vs[idx] = i.vs[idx].String()
		}
		instSuffix = " " + strings.Join(vs, ", ")
	}

	instr := i.opcode.String() + instSuffix

	var rvs []string
	if rv := i.rValue; rv.Valid() {
		rvs = append(rvs, rv.formatWithType())
	}
	for _, v := range i.rValues {
		rvs = append(rvs, v.formatWithType())
	}

	if len(rvs) > 0 {
		return fmt.Sprintf("%s = %s", strings.Join(rvs, ", "), instr)
	} else {
		return instr
	}
}

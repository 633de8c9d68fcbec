// Package isagen generates the instruction-kind enumeration, constructors,
// encoders and selection glue for the amd64 backend from its declared
// instruction table. The output is committed as zisa.go; regenerate it with
// cmd/isagen after editing the table.
package isagen

import (
	"bytes"
	_ "embed"
	"fmt"
	"go/format"
	"io"
	"strings"
	"text/template"

	"github.com/pkg/errors"

	"github.com/creelvm/creel/internal/backend/isa/amd64"
)

//go:embed zisa.go.tmpl
var zisaTmplText string

var zisaTmpl = template.Must(template.New("zisa").Parse(zisaTmplText))

// instModel is one instruction form prepared for the template: the statement
// lists are rendered verbatim into the generated switch arms.
type instModel struct {
	Name        string
	Mnemonic    string
	Enc         string
	CtorParams  string
	CtorFields  []string
	EncodeStmts []string
	VisitStmts  []string
}

// ruleModel is one IR opcode with its candidate forms, in declaration order.
type ruleModel struct {
	Opcode string
	Kinds  []string
}

type templateData struct {
	Insts []instModel
	Rules []ruleModel
}

// Generate renders the generated source for the given instruction table and
// writes the gofmt-ed result to w.
func Generate(w io.Writer, insts []amd64.Inst) error {
	data := templateData{}
	ruleIdx := map[string]int{}
	for _, inst := range insts {
		m, err := buildInst(inst)
		if err != nil {
			return errors.Wrapf(err, "instruction %s", inst.Name)
		}
		data.Insts = append(data.Insts, m)

		if inst.SelectFor != "" {
			i, ok := ruleIdx[inst.SelectFor]
			if !ok {
				i = len(data.Rules)
				ruleIdx[inst.SelectFor] = i
				data.Rules = append(data.Rules, ruleModel{Opcode: inst.SelectFor})
			}
			data.Rules[i].Kinds = append(data.Rules[i].Kinds, inst.Name)
		}
	}

	var buf bytes.Buffer
	if err := zisaTmpl.Execute(&buf, data); err != nil {
		return errors.Wrap(err, "executing template")
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return errors.Wrap(err, "formatting generated source")
	}
	_, err = w.Write(src)
	return errors.Wrap(err, "writing generated source")
}

func buildInst(inst amd64.Inst) (instModel, error) {
	m := instModel{
		Name:     inst.Name,
		Mnemonic: inst.Mnemonic,
		Enc:      inst.Enc.String(),
	}
	if m.Name == "" {
		return m, errors.New("missing name")
	}
	if err := inst.Enc.Validate(inst.Ops); err != nil {
		return m, err
	}

	var params []string
	var hasReg, hasRM bool
	for _, op := range inst.Ops {
		switch op.Kind {
		case amd64.OperandKindReg:
			if hasReg {
				return m, errors.New("more than one ModRM reg operand")
			}
			hasReg = true
			params = append(params, "r realReg")
			m.CtorFields = append(m.CtorFields, "i.reg = r")
			m.VisitStmts = append(m.VisitStmts, "fn(&i.reg)")
		case amd64.OperandKindRegMem:
			if hasRM {
				return m, errors.New("more than one ModRM rm operand")
			}
			hasRM = true
			params = append(params, "rm regMemOperand")
			m.CtorFields = append(m.CtorFields, "i.rm = rm")
			m.VisitStmts = append(m.VisitStmts, "visitRegMem(&i.rm, fn)")
		case amd64.OperandKindImm:
			params = append(params, "im uint64")
			m.CtorFields = append(m.CtorFields, "i.imm = im")
		case amd64.OperandKindFixedReg:
			// Implied by the opcode; no field, no encoding bits.
		default:
			return m, errors.Errorf("invalid operand kind %d", op.Kind)
		}
	}
	m.CtorParams = strings.Join(params, ", ")

	enc := inst.Enc
	emit := func(stmt string, args ...any) {
		m.EncodeStmts = append(m.EncodeStmts, fmt.Sprintf(stmt, args...))
	}
	for _, p := range enc.Prefixes() {
		emit("emitByte(buf, 0x%02x)", p)
	}
	// The REX prefix, when needed, sits between the legacy prefixes and the
	// opcode. Forms without a ModRM operand can only need it for the W bit,
	// which makes it a fixed byte.
	switch {
	case enc.RBit():
		emit("emitRexRegRM(buf, %t, i.reg, i.rm)", enc.WBit())
	case hasRM:
		emit("emitRexRM(buf, %t, i.rm)", enc.WBit())
	case enc.WBit():
		emit("emitByte(buf, 0x48)")
	}
	if enc.Escape() {
		emit("emitByte(buf, 0x0f)")
	}
	emit("emitByte(buf, 0x%02x)", enc.Primary())
	if sec, ok := enc.Secondary(); ok {
		emit("emitByte(buf, 0x%02x)", sec)
	}
	if enc.RBit() {
		emit("emitModRM(buf, i.reg.lowBits(), i.rm)")
	} else if d, ok := enc.Digit(); ok {
		emit("emitModRM(buf, %d, i.rm)", d)
	}
	if imm := enc.Imm(); imm.Bits() != 0 {
		emit("emitImm(buf, i.imm, %d)", imm.Bits()/8)
	}
	return m, nil
}

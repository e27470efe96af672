package cpu

import (
	"fmt"
)

// Code is a single encoded instruction word.
type Code uint16

// Inst is a fully decoded instruction.
type Inst struct {
	Op  Opcode // Operation.
	A   Reg    // Register A, bits [10:8].
	B   Reg    // Register B, bits [7:5].
	Imm uint8  // Immediate or address, bits [7:0].
}

// makeCode packs the opcode field.
func makeCode(op Opcode, word uint16) Code {
	field, ok := opcodeField[op]
	if !ok {
		panic(fmt.Sprintf("cpu: no encoding for opcode %v", op))
	}
	return Code((field << 11) | word)
}

// makeCodeRR creates a two register instruction.
func makeCodeRR(op Opcode, ra, rb Reg) Code {
	return makeCode(op, ((uint16(ra)&7)<<8)|((uint16(rb)&7)<<5))
}

// makeCodeRI creates a register and 8-bit immediate instruction.
// Immediates wider than 8 bits are truncated.
func makeCodeRI(op Opcode, ra Reg, imm uint16) Code {
	return makeCode(op, ((uint16(ra)&7)<<8)|(imm&0xff))
}

// MakeCodeMov creates a `ra = rb` instruction.
func MakeCodeMov(ra, rb Reg) Code { return makeCodeRR(OP_MOV, ra, rb) }

// MakeCodeAdd creates a `ra += rb` instruction.
func MakeCodeAdd(ra, rb Reg) Code { return makeCodeRR(OP_ADD, ra, rb) }

// MakeCodeSub creates a `ra -= rb` instruction.
func MakeCodeSub(ra, rb Reg) Code { return makeCodeRR(OP_SUB, ra, rb) }

// MakeCodeAnd creates a `ra &= rb` instruction.
func MakeCodeAnd(ra, rb Reg) Code { return makeCodeRR(OP_AND, ra, rb) }

// MakeCodeOr creates a `ra |= rb` instruction.
func MakeCodeOr(ra, rb Reg) Code { return makeCodeRR(OP_OR, ra, rb) }

// MakeCodeSl creates a shift left by one instruction.
func MakeCodeSl(ra Reg) Code { return makeCodeRR(OP_SL, ra, 0) }

// MakeCodeSr creates a logical shift right by one instruction.
func MakeCodeSr(ra Reg) Code { return makeCodeRR(OP_SR, ra, 0) }

// MakeCodeSra creates an arithmetic shift right by one instruction.
func MakeCodeSra(ra Reg) Code { return makeCodeRR(OP_SRA, ra, 0) }

// MakeCodeLdl creates a load of the low 8 bits of ra.
func MakeCodeLdl(ra Reg, imm uint16) Code { return makeCodeRI(OP_LDL, ra, imm) }

// MakeCodeLdh creates a load of the high 8 bits of ra.
func MakeCodeLdh(ra Reg, imm uint16) Code { return makeCodeRI(OP_LDH, ra, imm) }

// MakeCodeCmp creates an equality comparison of ra and rb.
func MakeCodeCmp(ra, rb Reg) Code { return makeCodeRR(OP_CMP, ra, rb) }

// MakeCodeJe creates a jump to addr, taken if the equality flag is set.
func MakeCodeJe(addr uint16) Code { return makeCodeRI(OP_JE, 0, addr) }

// MakeCodeJmp creates an unconditional jump to addr.
func MakeCodeJmp(addr uint16) Code { return makeCodeRI(OP_JMP, 0, addr) }

// MakeCodeLd creates a load of ra from data memory.
func MakeCodeLd(ra Reg, addr uint16) Code { return makeCodeRI(OP_LD, ra, addr) }

// MakeCodeSt creates a store of ra to data memory.
func MakeCodeSt(ra Reg, addr uint16) Code { return makeCodeRI(OP_ST, ra, addr) }

// MakeCodeHlt creates a halt instruction.
func MakeCodeHlt() Code { return makeCode(OP_HLT, 0) }

// MakeCode creates an instruction for any opcode, using only the
// fields that the opcode's form requires.
func MakeCode(op Opcode, ra, rb Reg, imm uint16) (code Code, err error) {
	if _, ok := opcodeField[op]; !ok {
		err = ErrOpcodeInvalid
		return
	}

	switch op.Form() {
	case FORM_RR:
		code = makeCodeRR(op, ra, rb)
	case FORM_R:
		code = makeCodeRR(op, ra, 0)
	case FORM_RI:
		code = makeCodeRI(op, ra, imm)
	case FORM_I:
		code = makeCodeRI(op, 0, imm)
	default:
		code = makeCode(op, 0)
	}

	return
}

// Encode creates the instruction word for a decoded instruction.
func (inst Inst) Encode() (code Code, err error) {
	return MakeCode(inst.Op, inst.A, inst.B, uint16(inst.Imm))
}

// Field returns the raw 5-bit opcode field.
func (code Code) Field() uint16 {
	return uint16(code) >> 11
}

// Opcode decodes the opcode field. Fields with no assigned opcode
// return an ErrOpcode.
func (code Code) Opcode() (op Opcode, err error) {
	op = fieldOpcode[code.Field()]
	if op == OP_INVALID {
		err = ErrOpcode(code)
	}
	return
}

// RegA returns the register A field.
func (code Code) RegA() Reg {
	return Reg((uint16(code) >> 8) & 0x7)
}

// RegB returns the register B field.
func (code Code) RegB() Reg {
	return Reg((uint16(code) >> 5) & 0x7)
}

// Data returns the 8-bit immediate data field.
func (code Code) Data() uint16 {
	return uint16(code) & 0xff
}

// Addr returns the 8-bit address field.
// This is the same bits as Data().
func (code Code) Addr() uint16 {
	return uint16(code) & 0xff
}

// Decode decodes all the fields of the instruction.
func (code Code) Decode() (inst Inst, err error) {
	op, err := code.Opcode()
	if err != nil {
		return
	}

	inst = Inst{
		Op:  op,
		A:   code.RegA(),
		B:   code.RegB(),
		Imm: uint8(code.Data()),
	}

	return
}

// String returns the assembly language representation of this instruction.
func (code Code) String() (out string) {
	op, err := code.Opcode()
	if err != nil {
		return fmt.Sprintf(".word 0x%04x", uint16(code))
	}

	switch op.Form() {
	case FORM_RR:
		out = fmt.Sprintf("%v %v %v", op, code.RegA(), code.RegB())
	case FORM_R:
		out = fmt.Sprintf("%v %v", op, code.RegA())
	case FORM_RI:
		out = fmt.Sprintf("%v %v %d", op, code.RegA(), code.Data())
	case FORM_I:
		out = fmt.Sprintf("%v %d", op, code.Addr())
	default:
		out = op.String()
	}

	return
}

package cpu

import (
	"fmt"
)

// Opcode is the symbolic operation of an instruction.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_INVALID = Opcode(0)  // invalid
	OP_MOV     = Opcode(1)  // mov
	OP_ADD     = Opcode(2)  // add
	OP_SUB     = Opcode(3)  // sub
	OP_AND     = Opcode(4)  // and
	OP_OR      = Opcode(5)  // or
	OP_SL      = Opcode(6)  // sl
	OP_SR      = Opcode(7)  // sr
	OP_SRA     = Opcode(8)  // sra
	OP_LDL     = Opcode(9)  // ldl
	OP_LDH     = Opcode(10) // ldh
	OP_CMP     = Opcode(11) // cmp
	OP_JE      = Opcode(12) // je
	OP_JMP     = Opcode(13) // jmp
	OP_LD      = Opcode(14) // ld
	OP_ST      = Opcode(15) // st
	OP_HLT     = Opcode(16) // hlt
)

// opcodeField is the value of the 5-bit opcode field for each opcode.
var opcodeField = map[Opcode]uint16{
	OP_MOV: 0,
	OP_ADD: 1,
	OP_SUB: 2,
	OP_AND: 3,
	OP_OR:  4,
	OP_SL:  5,
	OP_SR:  6,
	OP_SRA: 7,
	OP_LDL: 8,
	OP_LDH: 9,
	OP_CMP: 10,
	OP_JE:  11,
	OP_JMP: 12,
	OP_LD:  13,
	OP_ST:  14,
	OP_HLT: 15,
}

// fieldOpcode is the inverse of opcodeField. Unassigned fields are OP_INVALID.
var fieldOpcode = invertField(opcodeField)

func invertField(fields map[Opcode]uint16) (ops [1 << 5]Opcode) {
	for op, field := range fields {
		ops[field] = op
	}
	return
}

// Field returns the opcode field value, and false if the opcode has none.
func (op Opcode) Field() (field uint16, ok bool) {
	field, ok = opcodeField[op]
	return
}

// Opcodes returns all valid opcodes, in field order.
func Opcodes() (ops []Opcode) {
	for _, op := range fieldOpcode {
		if op != OP_INVALID {
			ops = append(ops, op)
		}
	}
	return
}

// Form is the operand shape of an opcode.
type Form int

const (
	FORM_NONE = Form(0) // no operands
	FORM_R    = Form(1) // ra
	FORM_RR   = Form(2) // ra rb
	FORM_RI   = Form(3) // ra imm
	FORM_I    = Form(4) // addr
)

// Form returns the operand shape used by the opcode.
func (op Opcode) Form() Form {
	switch op {
	case OP_MOV, OP_ADD, OP_SUB, OP_AND, OP_OR, OP_CMP:
		return FORM_RR
	case OP_SL, OP_SR, OP_SRA:
		return FORM_R
	case OP_LDL, OP_LDH, OP_LD, OP_ST:
		return FORM_RI
	case OP_JE, OP_JMP:
		return FORM_I
	}

	return FORM_NONE
}

// Reg is a general purpose register index.
type Reg uint8

const (
	REG_R0 = Reg(0)
	REG_R1 = Reg(1)
	REG_R2 = Reg(2)
	REG_R3 = Reg(3)
	REG_R4 = Reg(4)
	REG_R5 = Reg(5)
	REG_R6 = Reg(6)
	REG_R7 = Reg(7)

	REG_COUNT = 8 // Number of general purpose registers.
)

// String returns the assembler name of the register.
func (reg Reg) String() string {
	return fmt.Sprintf("r%d", uint8(reg))
}

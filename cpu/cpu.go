package cpu

import (
	"fmt"
	"iter"
	"log"
	"maps"
	"math/bits"
)

const (
	ROM_SIZE = 256 // Instruction memory words.
	RAM_SIZE = 256 // Data memory words.
)

var _cpu_defines = map[string]string{
	"ROM_SIZE":  fmt.Sprintf("%d", ROM_SIZE),
	"RAM_SIZE":  fmt.Sprintf("%d", RAM_SIZE),
	"REG_COUNT": fmt.Sprintf("%d", REG_COUNT),
}

// Cpu is the simulation context for the processor.
type Cpu struct {
	Verbose bool   // Set to enable verbose logging.
	Tracer  Tracer // If set, observes every step.

	Pc       uint16            // Program counter.
	FlagEq   bool              // Equality flag, set by cmp.
	Register [REG_COUNT]uint16 // Register bank.
	Rom      [ROM_SIZE]Code    // Instruction memory.
	Ram      [RAM_SIZE]uint16  // Data memory.

	Power int // Power (bits flipped) counter.
	Ticks int // CPU ticks counter.
}

// NewCpu creates a new CPU with its instruction memory loaded from program.
func NewCpu(program ...Code) (cpu *Cpu, err error) {
	cpu = &Cpu{}

	err = cpu.Load(program)
	if err != nil {
		cpu = nil
		return
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// Load replaces instruction memory with program, zero filling the
// remainder, and resets the CPU.
func (cpu *Cpu) Load(program []Code) (err error) {
	if len(program) > len(cpu.Rom) {
		err = ErrProgramSize
		return
	}

	clear(cpu.Rom[:])
	copy(cpu.Rom[:], program)

	cpu.Reset()

	return
}

// Reset the CPU state.
// - Clears the program counter, flag, registers, and data memory.
// - Zeros statistics counters.
// - Instruction memory is unchanged.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Pc = 0
	cpu.FlagEq = false
	clear(cpu.Register[:])
	clear(cpu.Ram[:])
	cpu.Ticks = 0
	cpu.Power = 0
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %02X\n", "pc", cpu.Pc)
	text += fmt.Sprintf("% 5s: %v\n", "eq", cpu.FlagEq)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 5s: %04X\n", Reg(n).String(), val)
	}

	return
}

// Fetch returns the instruction at the program counter.
func (cpu *Cpu) Fetch() (code Code, err error) {
	if int(cpu.Pc) >= len(cpu.Rom) {
		err = ErrPcRange
		return
	}

	code = cpu.Rom[cpu.Pc]
	return
}

// Halted returns true if the next instruction to execute is a halt.
// An instruction that cannot be fetched or decoded is not a halt; Step
// will report why.
func (cpu *Cpu) Halted() bool {
	code, err := cpu.Fetch()
	if err != nil {
		return false
	}

	op, err := code.Opcode()
	return err == nil && op == OP_HLT
}

// Step executes a single CPU instruction cycle.
func (cpu *Cpu) Step() (err error) {
	code, err := cpu.Fetch()
	if err != nil {
		return
	}

	if cpu.Tracer != nil {
		cpu.Tracer.Trace(cpu.Pc, code, cpu.Register)
	}

	err = cpu.Execute(code)

	return
}

// Execute executes a single instruction, as if fetched from the
// current program counter.
func (cpu *Cpu) Execute(code Code) (err error) {
	if cpu.Verbose {
		log.Printf("%02x: %v", cpu.Pc, code)
	}

	next_pc := cpu.Pc + 1

	op, err := code.Opcode()
	if err != nil {
		return
	}

	ra := code.RegA()
	rb := code.RegB()
	a := cpu.Register[ra]
	b := cpu.Register[rb]

	// Bits flipped by CPU action.
	var prior uint16
	var result uint16

	set_reg := func(value uint16) {
		prior, result = cpu.Register[ra], value
		cpu.Register[ra] = value
	}

	switch op {
	case OP_MOV:
		set_reg(b)
	case OP_ADD:
		set_reg(a + b)
	case OP_SUB:
		set_reg(a - b)
	case OP_AND:
		set_reg(a & b)
	case OP_OR:
		set_reg(a | b)
	case OP_SL:
		set_reg(a << 1)
	case OP_SR:
		set_reg(a >> 1)
	case OP_SRA:
		// Bit 15 stays in place, and is also shifted into bit 14.
		set_reg((a & 0x8000) | (a >> 1))
	case OP_LDL:
		set_reg((a & 0xff00) | code.Data())
	case OP_LDH:
		set_reg((code.Data() << 8) | (a & 0x00ff))
	case OP_CMP:
		cpu.FlagEq = a == b
	case OP_JE:
		if cpu.FlagEq {
			next_pc = code.Addr()
		}
	case OP_JMP:
		next_pc = code.Addr()
	case OP_LD:
		set_reg(cpu.Ram[code.Addr()])
	case OP_ST:
		addr := code.Addr()
		prior, result = cpu.Ram[addr], a
		cpu.Ram[addr] = a
	case OP_HLT:
		// Halt has no effect; the run loop stops before it.
	default:
		err = ErrOpcode(code)
		return
	}

	cpu.Pc = next_pc

	cpu.Ticks += 1
	cpu.Power += bits.OnesCount16(prior ^ result)

	return
}

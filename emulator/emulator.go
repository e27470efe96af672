// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	_ "embed"
	"fmt"
	"io"
	"iter"
	"log"
	"maps"
	"strings"

	"github.com/ezrec/cpuemu/cpu"
	"github.com/ezrec/cpuemu/internal"
)

const (
	RESULT_ADDR = 64 // Data memory address of the demo program's result.
)

var _emulator_defines = map[string]string{
	"RESULT_ADDR": fmt.Sprintf("%d", RESULT_ADDR),
}

//go:embed sum.asm
var sumSource string

// Emulator state. CPU + program listing.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Trace io.Writer // If set, receives a trace line per step.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     &cpu.Cpu{},
		Program: &cpu.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		emu.Cpu.Defines(),
	)
}

// Assemble parses source with all of the emulator defines predefined.
func (emu *Emulator) Assemble(source io.Reader) (prog *cpu.Program, err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for key, value := range emu.Defines() {
		asm.Predefine(key, value)
	}

	prog, err = asm.Parse(source)
	return
}

// SumProgram assembles the built-in demo, which sums 1..10 into
// RESULT_ADDR.
func (emu *Emulator) SumProgram() (prog *cpu.Program, err error) {
	prog, err = emu.Assemble(strings.NewReader(sumSource))
	return
}

// Reset loads the program listing into the CPU, and resets its state.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose

	if emu.Trace != nil {
		emu.Cpu.Tracer = cpu.NewWriterTracer(emu.Trace)
	} else {
		emu.Cpu.Tracer = nil
	}

	binary := emu.Program.Binary()
	err = emu.Cpu.Load(binary)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: %d words loaded", len(binary))
	}

	return
}

// Code returns the current instruction code.
func (emu *Emulator) Code() cpu.Code {
	code, _ := emu.Cpu.Fetch()
	return code
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	dbg := emu.Program.Debug(emu.Cpu.Pc)
	if dbg.Line == nil {
		return 0
	}

	return dbg.LineNo
}

// Result returns the demo program's result word.
func (emu *Emulator) Result() uint16 {
	return emu.Cpu.Ram[RESULT_ADDR]
}

// Tick performs a single tick of the emulator.
// done is set when the CPU has reached a halt instruction.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	if emu.Cpu.Halted() {
		done = true
		return
	}

	lineno := emu.LineNo()
	pc := emu.Cpu.Pc
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Pc: pc, Err: err}
		}
	}()

	err = emu.Cpu.Step()

	return
}

// Run ticks the emulator until halted, or an error occurs.
// If limit is positive, at most limit instructions are executed.
func (emu *Emulator) Run(limit int) (err error) {
	for ticks := 0; ; ticks++ {
		if limit > 0 && ticks >= limit && !emu.Cpu.Halted() {
			err = ErrTickLimit
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}

// Package monitor is an interactive debugger for the emulator.
package monitor

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/ezrec/cpuemu/cpu"
	"github.com/ezrec/cpuemu/emulator"
	"github.com/ezrec/cpuemu/translate"
)

const (
	MEM_DUMP_DEFAULT = 8 // Words shown by 'mem' without a count.
)

type command struct {
	name  string
	alias string
	args  string
	help  string
}

var commands = []command{
	{"step", "s", "[N]", "execute N instructions (default 1)"},
	{"run", "r", "", "run until halted"},
	{"regs", "", "", "show the program counter, flag, and registers"},
	{"mem", "", "ADDR [N]", "show N words of data memory at ADDR"},
	{"list", "", "", "show the program listing"},
	{"reset", "", "", "reload the program and reset the CPU"},
	{"help", "", "", "show this help"},
	{"quit", "q", "", "leave the monitor"},
}

// Monitor drives an emulator from text commands.
type Monitor struct {
	Verbose bool               // If set, logs each command.
	Emu     *emulator.Emulator // Emulator under control.
	Name    string             // Program name, for the listing.
	Limit   int                // Tick limit for 'run'; 0 is unbounded.
	Out     io.Writer          // Command output.
}

// NewMonitor creates a monitor for emu, writing to out.
func NewMonitor(emu *emulator.Emulator, out io.Writer) (mon *Monitor) {
	mon = &Monitor{
		Emu:  emu,
		Name: "program",
		Out:  out,
	}

	return
}

func parseNumber(word string, limit int) (value int, err error) {
	v64, err := strconv.ParseUint(word, 0, 16)
	if err != nil || int(v64) >= limit {
		err = ErrArgument(word)
		return
	}

	value = int(v64)
	return
}

// where shows the next instruction to execute.
func (mon *Monitor) where() {
	emu := mon.Emu
	text := translate.From("%02x: %04x  %v", emu.Cpu.Pc, uint16(emu.Code()), emu.Code())
	if lineno := emu.LineNo(); lineno != 0 {
		text = translate.From("%-24s ; line %d", text, lineno)
	}
	translate.Fprintf(mon.Out, "%v\n", text)
}

func (mon *Monitor) step(args []string) (err error) {
	count := 1
	switch len(args) {
	case 0:
	case 1:
		count, err = strconv.Atoi(args[0])
		if err != nil || count < 1 {
			err = ErrArgument(args[0])
			return
		}
	default:
		err = ErrArgumentExtra
		return
	}

	for range count {
		var done bool
		done, err = mon.Emu.Tick()
		if err != nil {
			return
		}
		if done {
			translate.Fprintf(mon.Out, "halted\n")
			return
		}
	}

	mon.where()
	return
}

func (mon *Monitor) run(args []string) (err error) {
	if len(args) != 0 {
		err = ErrArgumentExtra
		return
	}

	start := mon.Emu.Cpu.Ticks
	err = mon.Emu.Run(mon.Limit)
	if err != nil {
		return
	}

	translate.Fprintf(mon.Out, "halted after %d ticks, ram[%d] = %d\n",
		mon.Emu.Cpu.Ticks-start, emulator.RESULT_ADDR, mon.Emu.Result())
	return
}

func (mon *Monitor) mem(args []string) (err error) {
	if len(args) == 0 {
		err = ErrArgumentMissing
		return
	}
	if len(args) > 2 {
		err = ErrArgumentExtra
		return
	}

	addr, err := parseNumber(args[0], cpu.RAM_SIZE)
	if err != nil {
		return
	}

	count := MEM_DUMP_DEFAULT
	if len(args) == 2 {
		count, err = parseNumber(args[1], cpu.RAM_SIZE+1)
		if err != nil {
			return
		}
	}

	for n := addr; n < addr+count && n < cpu.RAM_SIZE; n++ {
		translate.Fprintf(mon.Out, "%02x: %04x %5d\n", n, mon.Emu.Cpu.Ram[n], mon.Emu.Cpu.Ram[n])
	}

	return
}

func (mon *Monitor) help() {
	for _, cmd := range commands {
		name := cmd.name
		if cmd.alias != "" {
			name += "|" + cmd.alias
		}
		translate.Fprintf(mon.Out, "  %-16s %v\n", strings.TrimSpace(name+" "+cmd.args), cmd.help)
	}
}

// Exec executes a single monitor command line.
// quit is set when the monitor should exit.
func (mon *Monitor) Exec(line string) (quit bool, err error) {
	words := strings.Fields(line)
	if len(words) == 0 {
		return
	}

	if mon.Verbose {
		log.Printf("monitor: %v", words)
	}

	cmd, args := words[0], words[1:]
	switch cmd {
	case "step", "s":
		err = mon.step(args)
	case "run", "r":
		err = mon.run(args)
	case "regs":
		fmt.Fprint(mon.Out, mon.Emu.Cpu.String())
	case "mem":
		err = mon.mem(args)
	case "list":
		fmt.Fprint(mon.Out, mon.Emu.Program.Tree(mon.Name).String())
	case "reset":
		err = mon.Emu.Reset()
		if err == nil {
			mon.where()
		}
	case "help", "?":
		mon.help()
	case "quit", "q":
		quit = true
	default:
		err = ErrCommand(cmd)
	}

	return
}

// Completer returns the command completer for readline.
func Completer() readline.AutoCompleter {
	var items []readline.PrefixCompleterInterface
	for _, cmd := range commands {
		items = append(items, readline.PcItem(cmd.name))
	}

	return readline.NewPrefixCompleter(items...)
}

// Serve reads commands from a readline instance built from config, until
// quit or end of input. Command errors are reported, and do not stop the
// monitor.
func (mon *Monitor) Serve(config *readline.Config) (err error) {
	if config.AutoComplete == nil {
		config.AutoComplete = Completer()
	}

	rl, err := readline.NewEx(config)
	if err != nil {
		return
	}
	defer rl.Close()

	if mon.Out == nil {
		mon.Out = rl.Stdout()
	}

	mon.where()

	for {
		var line string
		line, err = rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if len(line) == 0 {
				err = nil
				return
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			err = nil
			return
		}
		if err != nil {
			return
		}

		var quit bool
		quit, err = mon.Exec(line)
		if err != nil {
			translate.Fprintf(mon.Out, "error: %v\n", err)
		}
		if quit {
			err = nil
			return
		}
	}
}

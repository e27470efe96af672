// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/ezrec/cpuemu/cpu"
	"github.com/ezrec/cpuemu/emulator"
	"github.com/ezrec/cpuemu/monitor"
	"github.com/ezrec/cpuemu/translate"
)

const programName = "sum.asm"

var (
	verbose  bool
	maxTicks int
	trace    bool
	history  string
)

// load assembles the built-in program into a fresh emulator.
func load() (emu *emulator.Emulator) {
	emu = emulator.NewEmulator()
	emu.Verbose = verbose

	prog, err := emu.SumProgram()
	if err != nil {
		log.Fatalf("%v: %v", programName, err)
	}
	emu.Program = prog

	return
}

func run(cmd *cobra.Command, args []string) {
	emu := load()
	if trace {
		emu.Trace = os.Stdout
	}

	err := emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", programName, err)
	}

	err = emu.Run(maxTicks)
	if err != nil {
		log.Fatalf("%v: %v (word %04x)\n%v", programName, err, uint16(emu.Code()), emu.Cpu.String())
	}

	translate.Fprintf(os.Stdout, "ram[%d] = %d\n", emulator.RESULT_ADDR, emu.Result())
}

func list(cmd *cobra.Command, args []string) {
	emu := load()
	fmt.Print(emu.Program.Tree(programName).String())
}

func serve(cmd *cobra.Command, args []string) {
	emu := load()

	err := emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", programName, err)
	}

	mon := monitor.NewMonitor(emu, nil)
	mon.Verbose = verbose
	mon.Name = programName
	mon.Limit = maxTicks

	err = mon.Serve(&readline.Config{
		Prompt:      "cpuemu> ",
		HistoryFile: history,
	})
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "cpuemu",
		Short: "16-bit processor emulator",
		Long: translate.From("Runs a built-in program on a 16-bit processor with %d registers,\n"+
			"%d words of instruction memory, and %d words of data memory.",
			cpu.REG_COUNT, cpu.ROM_SIZE, cpu.RAM_SIZE),
		Args: cobra.NoArgs,
		Run:  run,
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose mode")
	rootCmd.PersistentFlags().IntVar(&maxTicks, "max-ticks", 0, "Stop with an error after this many instructions (0 is unlimited)")
	rootCmd.Flags().BoolVar(&trace, "trace", true, "Trace each instruction to stdout")

	var runCmd = &cobra.Command{
		Use:   "run",
		Short: "Run the program and report the result",
		Args:  cobra.NoArgs,
		Run:   run,
	}
	runCmd.Flags().BoolVar(&trace, "trace", true, "Trace each instruction to stdout")

	var listCmd = &cobra.Command{
		Use:   "list",
		Short: "Show the assembled program listing",
		Args:  cobra.NoArgs,
		Run:   list,
	}

	var monitorCmd = &cobra.Command{
		Use:   "monitor",
		Short: "Debug the program interactively",
		Args:  cobra.NoArgs,
		Run:   serve,
	}
	monitorCmd.Flags().StringVar(&history, "history", filepath.Join(os.TempDir(), "cpuemu_history"), "Command history file")

	rootCmd.AddCommand(runCmd, listCmd, monitorCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

package monitor

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/cpuemu/emulator"
)

func newMonitor(t *testing.T) (mon *Monitor, out *bytes.Buffer) {
	emu := emulator.NewEmulator()

	prog, err := emu.SumProgram()
	if err != nil {
		t.Fatal(err)
	}
	emu.Program = prog

	err = emu.Reset()
	if err != nil {
		t.Fatal(err)
	}

	out = &bytes.Buffer{}
	mon = NewMonitor(emu, out)
	mon.Name = "sum.asm"

	return
}

func TestMonitorStep(t *testing.T) {
	assert := assert.New(t)

	mon, out := newMonitor(t)

	quit, err := mon.Exec("step")
	assert.NoError(err)
	assert.False(quit)
	assert.Equal(uint16(1), mon.Emu.Cpu.Pc)
	assert.True(strings.HasPrefix(out.String(), "01: 4000  ldl r0 0"), out.String())
	assert.Contains(out.String(), "; line 10")

	out.Reset()
	_, err = mon.Exec("s 7")
	assert.NoError(err)
	assert.Equal(uint16(8), mon.Emu.Cpu.Pc)
	assert.True(strings.HasPrefix(out.String(), "08: 0a20  add r2 r1"), out.String())

	// Stepping stops at the halt.
	out.Reset()
	_, err = mon.Exec("step 1000")
	assert.NoError(err)
	assert.Equal("halted\n", out.String())
	assert.Equal(uint16(55), mon.Emu.Result())
}

func TestMonitorRun(t *testing.T) {
	assert := assert.New(t)

	mon, out := newMonitor(t)

	_, err := mon.Exec("run")
	assert.NoError(err)
	assert.Equal("halted after 67 ticks, ram[64] = 55\n", out.String())

	out.Reset()
	_, err = mon.Exec("reset")
	assert.NoError(err)
	assert.Equal(uint16(0), mon.Emu.Cpu.Pc)
	assert.Equal(uint16(0), mon.Emu.Result())

	mon.Limit = 5
	_, err = mon.Exec("r")
	assert.ErrorIs(err, emulator.ErrTickLimit)
	assert.Equal(5, mon.Emu.Cpu.Ticks)
}

func TestMonitorRegs(t *testing.T) {
	assert := assert.New(t)

	mon, out := newMonitor(t)

	_, err := mon.Exec("step 4")
	assert.NoError(err)

	out.Reset()
	_, err = mon.Exec("regs")
	assert.NoError(err)
	assert.Equal(mon.Emu.Cpu.String(), out.String())
	assert.Contains(out.String(), "   r1: 0001\n")
}

func TestMonitorMem(t *testing.T) {
	assert := assert.New(t)

	mon, out := newMonitor(t)

	_, err := mon.Exec("run")
	assert.NoError(err)

	out.Reset()
	_, err = mon.Exec("mem 64 2")
	assert.NoError(err)
	assert.Equal("40: 0037    55\n41: 0000     0\n", out.String())

	out.Reset()
	_, err = mon.Exec("mem 0x40")
	assert.NoError(err)
	assert.Equal(MEM_DUMP_DEFAULT, strings.Count(out.String(), "\n"))

	// The dump stops at the end of data memory.
	out.Reset()
	_, err = mon.Exec("mem 0xfe 10")
	assert.NoError(err)
	assert.Equal(2, strings.Count(out.String(), "\n"))

	table := [](struct {
		line string
		err  error
	}){
		{"mem", ErrArgumentMissing},
		{"mem 1 2 3", ErrArgumentExtra},
		{"mem 256", ErrArgument("256")},
		{"mem foo", ErrArgument("foo")},
		{"mem 0 257", ErrArgument("257")},
		{"step 0", ErrArgument("0")},
		{"step x", ErrArgument("x")},
		{"step 1 2", ErrArgumentExtra},
		{"run now", ErrArgumentExtra},
		{"frob", ErrCommand("frob")},
	}

	for _, entry := range table {
		_, err := mon.Exec(entry.line)
		assert.ErrorIs(err, entry.err, entry.line)
	}
}

func TestMonitorList(t *testing.T) {
	assert := assert.New(t)

	mon, out := newMonitor(t)

	_, err := mon.Exec("list")
	assert.NoError(err)
	assert.Equal(mon.Emu.Program.Tree("sum.asm").String(), out.String())
	assert.True(strings.HasPrefix(out.String(), "sum.asm\n"))
	assert.Contains(out.String(), "loop")
	assert.Contains(out.String(), "done")
}

func TestMonitorMisc(t *testing.T) {
	assert := assert.New(t)

	mon, out := newMonitor(t)

	quit, err := mon.Exec("   ")
	assert.NoError(err)
	assert.False(quit)
	assert.Equal("", out.String())

	_, err = mon.Exec("help")
	assert.NoError(err)
	for _, cmd := range commands {
		assert.Contains(out.String(), cmd.name)
	}

	quit, err = mon.Exec("quit")
	assert.NoError(err)
	assert.True(quit)

	quit, err = mon.Exec("q")
	assert.NoError(err)
	assert.True(quit)

	assert.NotNil(Completer())
}

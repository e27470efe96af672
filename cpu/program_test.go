package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgram_Debug(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Lines: []Line{
			{LineNo: 1, Ip: 0, Words: []string{"ldl", "r0", "0x10"},
				Codes: []Code{MakeCodeLdl(REG_R0, 0x10)}},
			{LineNo: 2, Ip: 1, Words: []string{"ldl", "r1", "0x20"},
				Codes: []Code{MakeCodeLdl(REG_R1, 0x20)}},
			{LineNo: 3, Ip: 2, Words: []string{"add", "r0", "r1"},
				Codes: []Code{MakeCodeAdd(REG_R0, REG_R1)}},
		},
	}

	dbg := prog.Debug(0)
	assert.NotNil(dbg.Line)
	assert.Equal(1, dbg.Line.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(1)
	assert.NotNil(dbg.Line)
	assert.Equal(2, dbg.Line.LineNo)
	assert.Equal(0, dbg.Index)

	dbg = prog.Debug(2)
	assert.NotNil(dbg.Line)
	assert.Equal(3, dbg.Line.LineNo)
	assert.Equal(0, dbg.Index)
}

func TestProgram_Debug_NotFound(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Lines: []Line{
			{LineNo: 1, Ip: 0, Words: []string{"ldl", "r0", "0x10"},
				Codes: []Code{MakeCodeLdl(REG_R0, 0x10)}},
		},
	}

	dbg := prog.Debug(10)
	assert.Nil(dbg.Line)
	assert.Equal(0, dbg.Index)
}

func TestProgram_Debug_MultipleCodesPerLine(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Lines: []Line{
			{LineNo: 1, Ip: 0, Words: []string{"ldi", "r0", "0x1234"},
				Codes: []Code{
					MakeCodeLdh(REG_R0, 0x12),
					MakeCodeLdl(REG_R0, 0x34),
				}},
			{LineNo: 2, Ip: 2, Words: []string{"hlt"},
				Codes: []Code{MakeCodeHlt()}},
		},
	}

	dbg := prog.Debug(0)
	assert.Equal(0, dbg.Index)
	assert.Equal(1, dbg.LineNo)

	dbg = prog.Debug(1)
	assert.Equal(1, dbg.Index)
	assert.Equal(1, dbg.LineNo)

	dbg = prog.Debug(2)
	assert.Equal(0, dbg.Index)
	assert.Equal(2, dbg.LineNo)

	dbg = prog.Debug(3)
	assert.Nil(dbg.Line)
}

func TestProgram_Binary(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Lines: []Line{
			{LineNo: 1, Ip: 0, Words: []string{"ldi", "r0", "0x1234"},
				Codes: []Code{
					MakeCodeLdh(REG_R0, 0x12),
					MakeCodeLdl(REG_R0, 0x34),
				}},
			{LineNo: 2, Ip: 2, Words: []string{"hlt"},
				Codes: []Code{MakeCodeHlt()}},
		},
	}

	bins := prog.Binary()
	assert.Equal([]Code{0x4812, 0x4034, 0x7800}, bins)
}

func TestProgram_Codes_EarlyReturn(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Lines: []Line{
			{LineNo: 1, Ip: 0, Codes: []Code{MakeCodeLdl(REG_R0, 0x10)}},
			{LineNo: 2, Ip: 1, Codes: []Code{MakeCodeLdl(REG_R1, 0x20)}},
		},
	}

	count := 0
	for range prog.Codes() {
		count++
		if count == 1 {
			break
		}
	}

	assert.Equal(1, count)
}

func TestProgram_Codes_Empty(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{}

	count := 0
	for range prog.Codes() {
		count++
	}

	assert.Equal(0, count)
	assert.Nil(prog.Binary())
}

func TestProgram_Tree(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog := parse(t, asm,
		"ldl r0 1",
		"loop: add r1 r0",
		"again:",
		"jmp loop",
		"done: end: hlt",
	)

	text := prog.Tree("test.s").String()

	assert.True(strings.HasPrefix(text, "test.s\n"), text)
	assert.Contains(text, "[00]  4001  ldl r0 1")
	assert.Contains(text, "loop\n")
	assert.Contains(text, "again\n")
	assert.Contains(text, "done end\n")
	assert.Contains(text, "[02]  6001  jmp 1")
	assert.Contains(text, "; line 5")

	// Branches appear in address order.
	assert.Less(strings.Index(text, "loop"), strings.Index(text, "again"))
	assert.Less(strings.Index(text, "again"), strings.Index(text, "done end"))
}

package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// formMask is the bits of an instruction word used by each form.
var formMask = map[Form]uint16{
	FORM_NONE: 0xf800,
	FORM_R:    0xff00,
	FORM_RR:   0xffe0,
	FORM_RI:   0xffff,
	FORM_I:    0xf8ff,
}

func FuzzCode(f *testing.F) {
	for _, word := range []uint16{0, 0x0a20, 0x7800, 0x7fff, 0x8000, 0xffff} {
		f.Add(word)
	}

	f.Fuzz(func(t *testing.T, word uint16) {
		assert := assert.New(t)

		code := Code(word)

		inst, err := code.Decode()
		if code.Field() > 15 {
			assert.ErrorIs(err, ErrOpcodeInvalid)
			return
		}
		assert.NoError(err)

		encoded, err := inst.Encode()
		assert.NoError(err)
		assert.Equal(word&formMask[inst.Op.Form()], uint16(encoded), code.String())

		cpu, err := NewCpu(code)
		assert.NoError(err)
		assert.Equal(inst.Op == OP_HLT, cpu.Halted())
	})
}

package cpu

import (
	"fmt"
	"io"
)

// Tracer observes every executed instruction.
//
// Trace is called once per Step, after the fetch and before the
// instruction takes effect, with the pre-step program counter.
type Tracer interface {
	Trace(pc uint16, code Code, reg [REG_COUNT]uint16)
}

// TracerFunc adapts a function to a Tracer.
type TracerFunc func(pc uint16, code Code, reg [REG_COUNT]uint16)

func (fn TracerFunc) Trace(pc uint16, code Code, reg [REG_COUNT]uint16) {
	fn(pc, code, reg)
}

type writerTracer struct {
	w io.Writer
}

// NewWriterTracer returns a Tracer that writes one line per step to w.
func NewWriterTracer(w io.Writer) Tracer {
	return &writerTracer{w: w}
}

func (wt *writerTracer) Trace(pc uint16, code Code, reg [REG_COUNT]uint16) {
	fmt.Fprintf(wt.w, "pc:%5d ir:%5x reg0:%5d reg1:%5d reg2:%5d reg3:%5d\n",
		pc, uint16(code), reg[0], reg[1], reg[2], reg[3])
}

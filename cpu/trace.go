// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

// A TraceRecord captures the state of the CPU after a single instruction
// has retired. PC holds the address of the retired instruction, while the
// register values reflect the state after it executed.
type TraceRecord struct {
	Cycles uint64 // total cycle count at retirement
	PC     uint16 // address of the retired instruction
	Opcode byte   // opcode of the retired instruction
	Op1    byte   // first operand byte (0 if none)
	Op2    byte   // second operand byte (0 if none)
	A      byte   // accumulator
	X      byte   // X register
	Y      byte   // Y register
	SP     byte   // stack pointer
	P      byte   // packed processor status
}

// A traceBuffer is a bounded ring of trace records. When full, each new
// record overwrites the oldest. Recording only observes CPU state; it never
// alters execution.
type traceBuffer struct {
	records []TraceRecord
	next    int
	wrapped bool
}

func newTraceBuffer(size int) *traceBuffer {
	return &traceBuffer{records: make([]TraceRecord, size)}
}

func (t *traceBuffer) add(cpu *CPU, inst *Instruction, operand []byte) {
	r := TraceRecord{
		Cycles: cpu.Cycles,
		PC:     cpu.LastPC,
		Opcode: inst.Opcode,
		A:      cpu.Reg.A,
		X:      cpu.Reg.X,
		Y:      cpu.Reg.Y,
		SP:     cpu.Reg.SP,
		P:      cpu.Reg.SavePS(false),
	}
	if len(operand) > 0 {
		r.Op1 = operand[0]
	}
	if len(operand) > 1 {
		r.Op2 = operand[1]
	}

	t.records[t.next] = r
	t.next++
	if t.next == len(t.records) {
		t.next = 0
		t.wrapped = true
	}
}

// snapshot returns the buffered records in order from oldest to newest.
func (t *traceBuffer) snapshot() []TraceRecord {
	if !t.wrapped {
		out := make([]TraceRecord, t.next)
		copy(out, t.records[:t.next])
		return out
	}
	out := make([]TraceRecord, len(t.records))
	n := copy(out, t.records[t.next:])
	copy(out[n:], t.records[:t.next])
	return out
}

// EnableTrace attaches a trace buffer holding the most recent 'size'
// retired instructions. Any previously recorded trace is discarded.
func (cpu *CPU) EnableTrace(size int) {
	if size < 1 {
		size = 1
	}
	cpu.trace = newTraceBuffer(size)
}

// DisableTrace detaches the trace buffer, discarding its contents.
func (cpu *CPU) DisableTrace() {
	cpu.trace = nil
}

// Trace returns the recorded instruction trace in order from oldest to
// newest. It returns nil when tracing is disabled.
func (cpu *CPU) Trace() []TraceRecord {
	if cpu.trace == nil {
		return nil
	}
	return cpu.trace.snapshot()
}

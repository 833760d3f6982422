// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cpu implements an emulated MOS 6502 CPU: the NMOS instruction
// set, interrupt handling, an instruction trace buffer, and a pre-dispatch
// intercept hook used to substitute host behavior for selected addresses.
package cpu

// An Interceptor is consulted once per step, before normal instruction
// dispatch. If Intercept returns true, the instruction at pc is considered
// handled and is not executed. This allows an external layer to substitute
// host-native behavior for selected addresses (such as KERNAL entry points)
// while keeping the CPU core free of any knowledge about disks or I/O.
type Interceptor interface {
	Intercept(cpu *CPU, pc uint16) bool
}

// CPU represents a single 6502 CPU. It holds a non-owning reference to the
// memory associated with the CPU.
type CPU struct {
	Reg         Registers       // CPU registers
	Mem         Memory          // assigned memory
	Cycles      uint64          // total executed CPU cycles
	LastPC      uint16          // previous program counter
	InstSet     *InstructionSet // instruction set used by the CPU
	pageCrossed bool
	deltaCycles int8
	pendingIRQ  bool
	pendingNMI  bool
	interceptor Interceptor
	trace       *traceBuffer
	debugger    *Debugger
	storeByte   func(cpu *CPU, addr uint16, v byte)
}

// Interrupt vectors
const (
	vectorNMI   = 0xfffa
	vectorReset = 0xfffc
	vectorIRQ   = 0xfffe
	vectorBRK   = 0xfffe
)

// Cycles consumed when an interrupt sequence is taken.
const interruptCycles = 7

// NewCPU creates an emulated 6502 CPU bound to the specified memory.
func NewCPU(m Memory) *CPU {
	cpu := &CPU{
		Mem:       m,
		InstSet:   GetInstructionSet(),
		storeByte: (*CPU).storeByteNormal,
	}

	cpu.Reg.Init()
	return cpu
}

// SetPC updates the CPU program counter to 'addr'.
func (cpu *CPU) SetPC(addr uint16) {
	cpu.Reg.PC = addr
}

// Reset loads the program counter from the reset vector at $FFFC.
func (cpu *CPU) Reset() {
	cpu.Reg.PC = cpu.Mem.LoadAddress(vectorReset)
}

// SignalIRQ requests a maskable interrupt. The request is latched and
// serviced at the start of the next Step, unless interrupts are disabled.
func (cpu *CPU) SignalIRQ() {
	cpu.pendingIRQ = true
}

// SignalNMI requests a non-maskable interrupt, serviced at the start of the
// next Step.
func (cpu *CPU) SignalNMI() {
	cpu.pendingNMI = true
}

// GetInstruction returns the instruction opcode at the requested address.
func (cpu *CPU) GetInstruction(addr uint16) *Instruction {
	opcode := cpu.Mem.LoadByte(addr)
	return cpu.InstSet.Lookup(opcode)
}

// NextAddr returns the address of the next instruction following the
// instruction at addr.
func (cpu *CPU) NextAddr(addr uint16) uint16 {
	opcode := cpu.Mem.LoadByte(addr)
	inst := cpu.InstSet.Lookup(opcode)
	return addr + uint16(inst.Length)
}

// Step executes the next instruction and returns the number of CPU cycles
// it consumed.
//
// Pending interrupts are serviced first: an NMI is always taken, and an IRQ
// is taken unless the interrupt-disable flag is set. If an interceptor has
// been attached and claims the current program counter, the instruction at
// that address is skipped entirely.
func (cpu *CPU) Step() int {
	// Service a pending interrupt before fetching the next instruction.
	if cpu.pendingNMI {
		cpu.pendingNMI = false
		cpu.handleInterrupt(false, vectorNMI)
		cpu.Cycles += interruptCycles
		return interruptCycles
	}
	if cpu.pendingIRQ {
		cpu.pendingIRQ = false
		if !cpu.Reg.InterruptDisable {
			cpu.handleInterrupt(false, vectorIRQ)
			cpu.Cycles += interruptCycles
			return interruptCycles
		}
	}

	// Give the interceptor a chance to substitute host behavior for the
	// instruction at the current PC.
	if cpu.interceptor != nil && cpu.interceptor.Intercept(cpu, cpu.Reg.PC) {
		return 0
	}

	// Grab the next opcode at the current PC.
	opcode := cpu.Mem.LoadByte(cpu.Reg.PC)

	// Look up the instruction data for the opcode. Undocumented opcodes are
	// modeled as no-ops with a fixed cycle cost, so execution never halts.
	inst := cpu.InstSet.Lookup(opcode)

	// Fetch the operand (if any) and advance the PC.
	var buf [2]byte
	operand := buf[:inst.Length-1]
	cpu.Mem.LoadBytes(cpu.Reg.PC+1, operand)
	cpu.LastPC = cpu.Reg.PC
	cpu.Reg.PC += uint16(inst.Length)

	// Execute the instruction.
	cpu.pageCrossed = false
	cpu.deltaCycles = 0
	inst.fn(cpu, inst, operand)

	// Update the CPU cycle counter, with special-case logic to handle a
	// page boundary crossing.
	cycles := int(int8(inst.Cycles) + cpu.deltaCycles)
	if cpu.pageCrossed {
		cycles += int(inst.BPCycles)
	}
	cpu.Cycles += uint64(cycles)

	// Record the retired instruction if tracing is enabled. Tracing only
	// observes state; it never alters execution.
	if cpu.trace != nil {
		cpu.trace.add(cpu, inst, operand)
	}

	// Update the debugger so it can handle breakpoints.
	if cpu.debugger != nil {
		cpu.debugger.onUpdatePC(cpu, cpu.Reg.PC)
	}

	return cycles
}

// AttachInterceptor attaches an interceptor consulted before each
// instruction dispatch.
func (cpu *CPU) AttachInterceptor(i Interceptor) {
	cpu.interceptor = i
}

// AttachDebugger attaches a debugger to the CPU. The debugger receives
// notifications whenever the CPU executes an instruction or stores a byte
// to memory.
func (cpu *CPU) AttachDebugger(debugger *Debugger) {
	cpu.debugger = debugger
	cpu.storeByte = (*CPU).storeByteDebugger
}

// DetachDebugger detaches the current debugger from the CPU.
func (cpu *CPU) DetachDebugger() {
	cpu.debugger = nil
	cpu.storeByte = (*CPU).storeByteNormal
}

// Load a byte value using the requested addressing mode and the operand to
// determine where to load it from.
func (cpu *CPU) load(mode Mode, operand []byte) byte {
	switch mode {
	case IMM:
		return operand[0]
	case ZPG:
		zpaddr := operandToAddress(operand)
		return cpu.Mem.LoadByte(zpaddr)
	case ZPX:
		zpaddr := operandToAddress(operand)
		zpaddr = offsetZeroPage(zpaddr, cpu.Reg.X)
		return cpu.Mem.LoadByte(zpaddr)
	case ZPY:
		zpaddr := operandToAddress(operand)
		zpaddr = offsetZeroPage(zpaddr, cpu.Reg.Y)
		return cpu.Mem.LoadByte(zpaddr)
	case ABS:
		addr := operandToAddress(operand)
		return cpu.Mem.LoadByte(addr)
	case ABX:
		addr := operandToAddress(operand)
		addr, cpu.pageCrossed = offsetAddress(addr, cpu.Reg.X)
		return cpu.Mem.LoadByte(addr)
	case ABY:
		addr := operandToAddress(operand)
		addr, cpu.pageCrossed = offsetAddress(addr, cpu.Reg.Y)
		return cpu.Mem.LoadByte(addr)
	case IDX:
		zpaddr := operandToAddress(operand)
		zpaddr = offsetZeroPage(zpaddr, cpu.Reg.X)
		addr := cpu.Mem.LoadAddress(zpaddr)
		return cpu.Mem.LoadByte(addr)
	case IDY:
		zpaddr := operandToAddress(operand)
		addr := cpu.Mem.LoadAddress(zpaddr)
		addr, cpu.pageCrossed = offsetAddress(addr, cpu.Reg.Y)
		return cpu.Mem.LoadByte(addr)
	case ACC:
		return cpu.Reg.A
	default:
		panic("Invalid addressing mode")
	}
}

// Load a 16-bit address value from memory using the requested addressing
// mode and the 16-bit instruction operand.
func (cpu *CPU) loadAddress(mode Mode, operand []byte) uint16 {
	switch mode {
	case ABS:
		return operandToAddress(operand)
	case IND:
		addr := operandToAddress(operand)
		return cpu.Mem.LoadAddress(addr)
	default:
		panic("Invalid addressing mode")
	}
}

// Store a byte value using the specified addressing mode and the
// variable-sized instruction operand to determine where to store it.
func (cpu *CPU) store(mode Mode, operand []byte, v byte) {
	switch mode {
	case ZPG:
		zpaddr := operandToAddress(operand)
		cpu.storeByte(cpu, zpaddr, v)
	case ZPX:
		zpaddr := operandToAddress(operand)
		zpaddr = offsetZeroPage(zpaddr, cpu.Reg.X)
		cpu.storeByte(cpu, zpaddr, v)
	case ZPY:
		zpaddr := operandToAddress(operand)
		zpaddr = offsetZeroPage(zpaddr, cpu.Reg.Y)
		cpu.storeByte(cpu, zpaddr, v)
	case ABS:
		addr := operandToAddress(operand)
		cpu.storeByte(cpu, addr, v)
	case ABX:
		addr := operandToAddress(operand)
		addr, cpu.pageCrossed = offsetAddress(addr, cpu.Reg.X)
		cpu.storeByte(cpu, addr, v)
	case ABY:
		addr := operandToAddress(operand)
		addr, cpu.pageCrossed = offsetAddress(addr, cpu.Reg.Y)
		cpu.storeByte(cpu, addr, v)
	case IDX:
		zpaddr := operandToAddress(operand)
		zpaddr = offsetZeroPage(zpaddr, cpu.Reg.X)
		addr := cpu.Mem.LoadAddress(zpaddr)
		cpu.storeByte(cpu, addr, v)
	case IDY:
		zpaddr := operandToAddress(operand)
		addr := cpu.Mem.LoadAddress(zpaddr)
		addr, cpu.pageCrossed = offsetAddress(addr, cpu.Reg.Y)
		cpu.storeByte(cpu, addr, v)
	case ACC:
		cpu.Reg.A = v
	default:
		panic("Invalid addressing mode")
	}
}

// Execute a branch using the instruction operand. A taken branch costs one
// extra cycle, plus one more if the branch target is on a different page.
func (cpu *CPU) branch(operand []byte) {
	offset := operandToAddress(operand)
	oldPC := cpu.Reg.PC
	if offset < 0x80 {
		cpu.Reg.PC += uint16(offset)
	} else {
		cpu.Reg.PC -= uint16(0x100 - offset)
	}
	cpu.deltaCycles++
	if ((cpu.Reg.PC ^ oldPC) & 0xff00) != 0 {
		cpu.deltaCycles++
	}
}

// Store the byte value 'v' at the address 'addr'.
func (cpu *CPU) storeByteNormal(addr uint16, v byte) {
	cpu.Mem.StoreByte(addr, v)
}

// Store the byte value 'v' at the address 'addr', notifying the debugger.
func (cpu *CPU) storeByteDebugger(addr uint16, v byte) {
	cpu.debugger.onDataStore(cpu, addr, v)
	cpu.Mem.StoreByte(addr, v)
}

// Push a value 'v' onto the stack.
func (cpu *CPU) push(v byte) {
	cpu.storeByte(cpu, stackAddress(cpu.Reg.SP), v)
	cpu.Reg.SP--
}

// Push the address 'addr' onto the stack.
func (cpu *CPU) pushAddress(addr uint16) {
	cpu.push(byte(addr >> 8))
	cpu.push(byte(addr))
}

// Pop a value from the stack and return it.
func (cpu *CPU) pop() byte {
	cpu.Reg.SP++
	return cpu.Mem.LoadByte(stackAddress(cpu.Reg.SP))
}

// Pop a 16-bit address off the stack.
func (cpu *CPU) popAddress() uint16 {
	lo := cpu.pop()
	hi := cpu.pop()
	return uint16(lo) | (uint16(hi) << 8)
}

// Update the Zero and Negative flags based on the value of 'v'.
func (cpu *CPU) updateNZ(v byte) {
	cpu.Reg.Zero = (v == 0)
	cpu.Reg.Sign = ((v & 0x80) != 0)
}

// Handle an interrupt by storing the program counter and status flags on
// the stack. Then switch the program counter to the requested vector.
func (cpu *CPU) handleInterrupt(brk bool, addr uint16) {
	cpu.pushAddress(cpu.Reg.PC)
	cpu.push(cpu.Reg.SavePS(brk))

	cpu.Reg.InterruptDisable = true

	cpu.Reg.PC = cpu.Mem.LoadAddress(addr)
}

// Add with carry
func (cpu *CPU) adc(inst *Instruction, operand []byte) {
	acc := uint32(cpu.Reg.A)
	add := uint32(cpu.load(inst.Mode, operand))
	carry := boolToUint32(cpu.Reg.Carry)
	var v uint32

	switch cpu.Reg.Decimal {
	case true:
		lo := (acc & 0x0f) + (add & 0x0f) + carry

		var carrylo uint32
		if lo >= 0x0a {
			carrylo = 0x10
			lo -= 0x0a
		}

		hi := (acc & 0xf0) + (add & 0xf0) + carrylo

		if hi >= 0xa0 {
			cpu.Reg.Carry = true
			hi -= 0xa0
		} else {
			cpu.Reg.Carry = false
		}

		v = hi | lo

		cpu.Reg.Overflow = ((acc^v)&0x80) != 0 && ((acc^add)&0x80) == 0

	case false:
		v = acc + add + carry
		cpu.Reg.Carry = (v >= 0x100)
		cpu.Reg.Overflow = (((acc & 0x80) == (add & 0x80)) && ((acc & 0x80) != (v & 0x80)))
	}

	cpu.Reg.A = byte(v)
	cpu.updateNZ(cpu.Reg.A)
}

// Boolean AND
func (cpu *CPU) and(inst *Instruction, operand []byte) {
	cpu.Reg.A &= cpu.load(inst.Mode, operand)
	cpu.updateNZ(cpu.Reg.A)
}

// Arithmetic Shift Left
func (cpu *CPU) asl(inst *Instruction, operand []byte) {
	v := cpu.load(inst.Mode, operand)
	cpu.Reg.Carry = ((v & 0x80) == 0x80)
	v = v << 1
	cpu.updateNZ(v)
	cpu.store(inst.Mode, operand, v)
}

// Branch if Carry Clear
func (cpu *CPU) bcc(inst *Instruction, operand []byte) {
	if !cpu.Reg.Carry {
		cpu.branch(operand)
	}
}

// Branch if Carry Set
func (cpu *CPU) bcs(inst *Instruction, operand []byte) {
	if cpu.Reg.Carry {
		cpu.branch(operand)
	}
}

// Branch if EQual (to zero)
func (cpu *CPU) beq(inst *Instruction, operand []byte) {
	if cpu.Reg.Zero {
		cpu.branch(operand)
	}
}

// Bit Test
func (cpu *CPU) bit(inst *Instruction, operand []byte) {
	v := cpu.load(inst.Mode, operand)
	cpu.Reg.Zero = ((v & cpu.Reg.A) == 0)
	cpu.Reg.Sign = ((v & 0x80) != 0)
	cpu.Reg.Overflow = ((v & 0x40) != 0)
}

// Branch if MInus (negative)
func (cpu *CPU) bmi(inst *Instruction, operand []byte) {
	if cpu.Reg.Sign {
		cpu.branch(operand)
	}
}

// Branch if Not Equal (not zero)
func (cpu *CPU) bne(inst *Instruction, operand []byte) {
	if !cpu.Reg.Zero {
		cpu.branch(operand)
	}
}

// Branch if PLus (positive)
func (cpu *CPU) bpl(inst *Instruction, operand []byte) {
	if !cpu.Reg.Sign {
		cpu.branch(operand)
	}
}

// Break
func (cpu *CPU) brk(inst *Instruction, operand []byte) {
	cpu.Reg.PC++
	cpu.handleInterrupt(true, vectorBRK)
}

// Branch if oVerflow Clear
func (cpu *CPU) bvc(inst *Instruction, operand []byte) {
	if !cpu.Reg.Overflow {
		cpu.branch(operand)
	}
}

// Branch if oVerflow Set
func (cpu *CPU) bvs(inst *Instruction, operand []byte) {
	if cpu.Reg.Overflow {
		cpu.branch(operand)
	}
}

// Clear Carry flag
func (cpu *CPU) clc(inst *Instruction, operand []byte) {
	cpu.Reg.Carry = false
}

// Clear Decimal flag
func (cpu *CPU) cld(inst *Instruction, operand []byte) {
	cpu.Reg.Decimal = false
}

// Clear InterruptDisable flag
func (cpu *CPU) cli(inst *Instruction, operand []byte) {
	cpu.Reg.InterruptDisable = false
}

// Clear oVerflow flag
func (cpu *CPU) clv(inst *Instruction, operand []byte) {
	cpu.Reg.Overflow = false
}

// Compare to accumulator
func (cpu *CPU) cmp(inst *Instruction, operand []byte) {
	v := cpu.load(inst.Mode, operand)
	cpu.Reg.Carry = (cpu.Reg.A >= v)
	cpu.updateNZ(cpu.Reg.A - v)
}

// Compare to X register
func (cpu *CPU) cpx(inst *Instruction, operand []byte) {
	v := cpu.load(inst.Mode, operand)
	cpu.Reg.Carry = (cpu.Reg.X >= v)
	cpu.updateNZ(cpu.Reg.X - v)
}

// Compare to Y register
func (cpu *CPU) cpy(inst *Instruction, operand []byte) {
	v := cpu.load(inst.Mode, operand)
	cpu.Reg.Carry = (cpu.Reg.Y >= v)
	cpu.updateNZ(cpu.Reg.Y - v)
}

// Decrement memory value
func (cpu *CPU) dec(inst *Instruction, operand []byte) {
	v := cpu.load(inst.Mode, operand) - 1
	cpu.updateNZ(v)
	cpu.store(inst.Mode, operand, v)
}

// Decrement X register
func (cpu *CPU) dex(inst *Instruction, operand []byte) {
	cpu.Reg.X--
	cpu.updateNZ(cpu.Reg.X)
}

// Decrement Y register
func (cpu *CPU) dey(inst *Instruction, operand []byte) {
	cpu.Reg.Y--
	cpu.updateNZ(cpu.Reg.Y)
}

// Boolean XOR
func (cpu *CPU) eor(inst *Instruction, operand []byte) {
	cpu.Reg.A ^= cpu.load(inst.Mode, operand)
	cpu.updateNZ(cpu.Reg.A)
}

// Increment memory value
func (cpu *CPU) inc(inst *Instruction, operand []byte) {
	v := cpu.load(inst.Mode, operand) + 1
	cpu.updateNZ(v)
	cpu.store(inst.Mode, operand, v)
}

// Increment X register
func (cpu *CPU) inx(inst *Instruction, operand []byte) {
	cpu.Reg.X++
	cpu.updateNZ(cpu.Reg.X)
}

// Increment Y register
func (cpu *CPU) iny(inst *Instruction, operand []byte) {
	cpu.Reg.Y++
	cpu.updateNZ(cpu.Reg.Y)
}

// Jump to memory address
func (cpu *CPU) jmp(inst *Instruction, operand []byte) {
	cpu.Reg.PC = cpu.loadAddress(inst.Mode, operand)
}

// Jump to subroutine
func (cpu *CPU) jsr(inst *Instruction, operand []byte) {
	addr := cpu.loadAddress(inst.Mode, operand)
	cpu.pushAddress(cpu.Reg.PC - 1)
	cpu.Reg.PC = addr
}

// load Accumulator
func (cpu *CPU) lda(inst *Instruction, operand []byte) {
	cpu.Reg.A = cpu.load(inst.Mode, operand)
	cpu.updateNZ(cpu.Reg.A)
}

// load the X register
func (cpu *CPU) ldx(inst *Instruction, operand []byte) {
	cpu.Reg.X = cpu.load(inst.Mode, operand)
	cpu.updateNZ(cpu.Reg.X)
}

// load the Y register
func (cpu *CPU) ldy(inst *Instruction, operand []byte) {
	cpu.Reg.Y = cpu.load(inst.Mode, operand)
	cpu.updateNZ(cpu.Reg.Y)
}

// Logical Shift Right
func (cpu *CPU) lsr(inst *Instruction, operand []byte) {
	v := cpu.load(inst.Mode, operand)
	cpu.Reg.Carry = ((v & 1) == 1)
	v = v >> 1
	cpu.updateNZ(v)
	cpu.store(inst.Mode, operand, v)
}

// No-operation
func (cpu *CPU) nop(inst *Instruction, operand []byte) {
	// Do nothing
}

// Boolean OR
func (cpu *CPU) ora(inst *Instruction, operand []byte) {
	cpu.Reg.A |= cpu.load(inst.Mode, operand)
	cpu.updateNZ(cpu.Reg.A)
}

// Push Accumulator
func (cpu *CPU) pha(inst *Instruction, operand []byte) {
	cpu.push(cpu.Reg.A)
}

// Push Processor flags
func (cpu *CPU) php(inst *Instruction, operand []byte) {
	cpu.push(cpu.Reg.SavePS(true))
}

// Pull (pop) Accumulator
func (cpu *CPU) pla(inst *Instruction, operand []byte) {
	cpu.Reg.A = cpu.pop()
	cpu.updateNZ(cpu.Reg.A)
}

// Pull (pop) Processor flags
func (cpu *CPU) plp(inst *Instruction, operand []byte) {
	v := cpu.pop()
	cpu.Reg.RestorePS(v)
}

// Rotate Left
func (cpu *CPU) rol(inst *Instruction, operand []byte) {
	tmp := cpu.load(inst.Mode, operand)
	v := (tmp << 1) | boolToByte(cpu.Reg.Carry)
	cpu.Reg.Carry = ((tmp & 0x80) != 0)
	cpu.updateNZ(v)
	cpu.store(inst.Mode, operand, v)
}

// Rotate Right
func (cpu *CPU) ror(inst *Instruction, operand []byte) {
	tmp := cpu.load(inst.Mode, operand)
	v := (tmp >> 1) | (boolToByte(cpu.Reg.Carry) << 7)
	cpu.Reg.Carry = ((tmp & 1) != 0)
	cpu.updateNZ(v)
	cpu.store(inst.Mode, operand, v)
}

// Return from Interrupt
func (cpu *CPU) rti(inst *Instruction, operand []byte) {
	v := cpu.pop()
	cpu.Reg.RestorePS(v)
	cpu.Reg.PC = cpu.popAddress()
}

// Return from Subroutine
func (cpu *CPU) rts(inst *Instruction, operand []byte) {
	addr := cpu.popAddress()
	cpu.Reg.PC = addr + 1
}

// Subtract with Carry
func (cpu *CPU) sbc(inst *Instruction, operand []byte) {
	acc := uint32(cpu.Reg.A)
	sub := uint32(cpu.load(inst.Mode, operand))
	carry := boolToUint32(cpu.Reg.Carry)
	var v uint32

	switch cpu.Reg.Decimal {
	case true:
		lo := 0x0f + (acc & 0x0f) - (sub & 0x0f) + carry

		var carrylo uint32
		if lo < 0x10 {
			lo -= 0x06
			carrylo = 0
		} else {
			lo -= 0x10
			carrylo = 0x10
		}

		hi := 0xf0 + (acc & 0xf0) - (sub & 0xf0) + carrylo

		if hi < 0x100 {
			cpu.Reg.Carry = false
			hi -= 0x60
		} else {
			cpu.Reg.Carry = true
			hi -= 0x100
		}

		v = hi | lo

		cpu.Reg.Overflow = ((acc^v)&0x80) != 0 && ((acc^sub)&0x80) != 0

	case false:
		v = 0xff + acc - sub + carry
		cpu.Reg.Carry = (v >= 0x100)
		cpu.Reg.Overflow = (((acc & 0x80) != (sub & 0x80)) && ((acc & 0x80) != (v & 0x80)))
	}

	cpu.Reg.A = byte(v)
	cpu.updateNZ(byte(v))
}

// Set Carry flag
func (cpu *CPU) sec(inst *Instruction, operand []byte) {
	cpu.Reg.Carry = true
}

// Set Decimal flag
func (cpu *CPU) sed(inst *Instruction, operand []byte) {
	cpu.Reg.Decimal = true
}

// Set InterruptDisable flag
func (cpu *CPU) sei(inst *Instruction, operand []byte) {
	cpu.Reg.InterruptDisable = true
}

// Store Accumulator
func (cpu *CPU) sta(inst *Instruction, operand []byte) {
	cpu.store(inst.Mode, operand, cpu.Reg.A)
}

// Store X register
func (cpu *CPU) stx(inst *Instruction, operand []byte) {
	cpu.store(inst.Mode, operand, cpu.Reg.X)
}

// Store Y register
func (cpu *CPU) sty(inst *Instruction, operand []byte) {
	cpu.store(inst.Mode, operand, cpu.Reg.Y)
}

// Transfer Accumulator to X register
func (cpu *CPU) tax(inst *Instruction, operand []byte) {
	cpu.Reg.X = cpu.Reg.A
	cpu.updateNZ(cpu.Reg.X)
}

// Transfer Accumulator to Y register
func (cpu *CPU) tay(inst *Instruction, operand []byte) {
	cpu.Reg.Y = cpu.Reg.A
	cpu.updateNZ(cpu.Reg.Y)
}

// Transfer stack pointer to X register
func (cpu *CPU) tsx(inst *Instruction, operand []byte) {
	cpu.Reg.X = cpu.Reg.SP
	cpu.updateNZ(cpu.Reg.X)
}

// Transfer X register to Accumulator
func (cpu *CPU) txa(inst *Instruction, operand []byte) {
	cpu.Reg.A = cpu.Reg.X
	cpu.updateNZ(cpu.Reg.A)
}

// Transfer X register to the stack pointer
func (cpu *CPU) txs(inst *Instruction, operand []byte) {
	cpu.Reg.SP = cpu.Reg.X
}

// Transfer Y register to the Accumulator
func (cpu *CPU) tya(inst *Instruction, operand []byte) {
	cpu.Reg.A = cpu.Reg.Y
	cpu.updateNZ(cpu.Reg.A)
}

// Undocumented instruction, modeled as a fixed-cost no-op.
func (cpu *CPU) undocumented(inst *Instruction, operand []byte) {
	// Do nothing
}

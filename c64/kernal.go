// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package c64

import (
	"github.com/go64emu/go64/cpu"
)

// KERNAL entry points intercepted by the machine. The CPU never reaches
// the ROM routines at these addresses; their serial-bus work is replaced
// by host-side file operations.
const (
	kernalCHROUT = 0xffd2
	kernalLOAD   = 0xffd5
	kernalSAVE   = 0xffd8
)

// KERNAL zero-page locations used by the intercepted routines.
const (
	zpStatus     = 0x90 // I/O status word (ST)
	zpBasicStart = 0x2b // start of BASIC program text (word)
	zpBasicEnd   = 0x2d // end of BASIC program text (word)
	zpNameLen    = 0xb7 // filename length
	zpSecondary  = 0xb9 // secondary address
	zpDeviceNum  = 0xba // current device number
	zpNamePtr    = 0xbb // filename pointer (word)
)

// I/O status word bits.
const (
	statusVerifyError  = 0x10
	statusFileNotFound = 0x40
)

// BASIC program text loads at $0801.
const basicTextBase = 0x0801

// installHooks registers the intercepted KERNAL entry points.
func (m *Machine) installHooks() {
	m.hooks = map[uint16]func(*cpu.CPU) bool{
		kernalLOAD:   m.kernalLoad,
		kernalSAVE:   m.kernalSave,
		kernalCHROUT: m.kernalChrout,
	}
}

// Intercept satisfies cpu.Interceptor. A true return means the hook
// performed the routine's work and set PC past the caller's JSR; the
// CPU skips the ROM code entirely.
func (m *Machine) Intercept(c *cpu.CPU, pc uint16) bool {
	h, ok := m.hooks[pc]
	if !ok {
		return false
	}
	return h(c)
}

// simReturn performs the RTS the intercepted routine never executes:
// pop the return address pushed by the caller's JSR and resume one byte
// past it.
func simReturn(c *cpu.CPU) {
	c.Reg.SP++
	lo := c.Mem.LoadByte(0x100 + uint16(c.Reg.SP))
	c.Reg.SP++
	hi := c.Mem.LoadByte(0x100 + uint16(c.Reg.SP))
	c.Reg.PC = (uint16(lo) | uint16(hi)<<8) + 1
}

// callerFilename reads the filename the caller registered via SETNAM.
func (m *Machine) callerFilename() string {
	n := int(m.mem.PeekRAM(zpNameLen))
	ptr := uint16(m.mem.PeekRAM(zpNamePtr)) | uint16(m.mem.PeekRAM(zpNamePtr+1))<<8
	name := make([]byte, n)
	for i := 0; i < n; i++ {
		name[i] = m.mem.PeekRAM(ptr + uint16(i))
	}
	return string(name)
}

// kernalLoad services LOAD ($FFD5). The file comes from the drive
// attached at the device number in $BA rather than from the serial bus.
// On success the carry is clear, X/Y hold the end address, and the
// status word is zero; a BASIC load also updates the end-of-text pointer
// at $2D. On failure the carry is set and bit 6 of the status word is
// raised.
func (m *Machine) kernalLoad(c *cpu.CPU) bool {
	verify := c.Reg.A != 0
	name := m.callerFilename()
	device := m.mem.PeekRAM(zpDeviceNum)
	secondary := m.mem.PeekRAM(zpSecondary)

	fail := func() bool {
		m.mem.PokeRAM(zpStatus, m.mem.PeekRAM(zpStatus)|statusFileNotFound)
		c.Reg.Carry = true
		simReturn(c)
		return true
	}

	drv := m.Drive(device)
	if drv == nil {
		return fail()
	}
	data, ok := drv.LoadFile(name)
	if !ok {
		return fail()
	}
	fileAddr, payload, err := ParsePRG(data)
	if err != nil {
		return fail()
	}

	// Secondary address 0 relocates to the caller-supplied X/Y target;
	// nonzero loads at the address embedded in the file.
	addr := fileAddr
	if secondary == 0 {
		addr = uint16(c.Reg.X) | uint16(c.Reg.Y)<<8
	}
	end := addr + uint16(len(payload))

	if verify {
		for i, v := range payload {
			if m.mem.PeekRAM(addr+uint16(i)) != v {
				m.mem.PokeRAM(zpStatus, m.mem.PeekRAM(zpStatus)|statusVerifyError)
				break
			}
		}
	} else {
		for i, v := range payload {
			m.mem.PokeRAM(addr+uint16(i), v)
		}
		m.mem.PokeRAM(zpStatus, 0)
		if addr == basicTextBase {
			m.mem.PokeRAM(zpBasicEnd, byte(end))
			m.mem.PokeRAM(zpBasicEnd+1, byte(end>>8))
		}
	}

	c.Reg.X = byte(end)
	c.Reg.Y = byte(end >> 8)
	c.Reg.Carry = false
	simReturn(c)
	return true
}

// kernalSave services SAVE ($FFD8). The RAM range from the word at $2B
// up to (but not including) X/Y is written to the current device as a
// PRG with a little-endian start-address header.
func (m *Machine) kernalSave(c *cpu.CPU) bool {
	name := m.callerFilename()
	device := m.mem.PeekRAM(zpDeviceNum)

	fail := func() bool {
		m.mem.PokeRAM(zpStatus, m.mem.PeekRAM(zpStatus)|statusFileNotFound)
		c.Reg.Carry = true
		simReturn(c)
		return true
	}

	drv := m.Drive(device)
	if drv == nil {
		return fail()
	}

	start := uint16(m.mem.PeekRAM(zpBasicStart)) | uint16(m.mem.PeekRAM(zpBasicStart+1))<<8
	end := uint16(c.Reg.X) | uint16(c.Reg.Y)<<8
	if end < start {
		return fail()
	}

	data := make([]byte, 0, int(end-start)+2)
	data = append(data, byte(start), byte(start>>8))
	data = append(data, m.mem.DumpRAM(start, int(end-start))...)
	if err := drv.SaveFile(name, data); err != nil {
		return fail()
	}

	m.mem.PokeRAM(zpStatus, 0)
	c.Reg.Carry = false
	simReturn(c)
	return true
}

// kernalChrout observes CHROUT ($FFD2) without handling it: the byte in
// A is recorded for host-side inspection and the ROM routine still runs
// to update the screen.
func (m *Machine) kernalChrout(c *cpu.CPU) bool {
	m.outputMu.Lock()
	m.chroutCount++
	m.output = append(m.output, c.Reg.A)
	if len(m.output) > chroutBufferMax {
		m.output = m.output[len(m.output)-chroutBufferMax:]
	}
	m.outputMu.Unlock()
	return false
}

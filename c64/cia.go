// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package c64

const ciaRegICR = 0x0d

// CIA interrupt latch bits.
const (
	CIAIntTimerA = 1 << 0
	CIAIntTimerB = 1 << 1
)

// A CIA is a register-level stub of the 6526 complex interface adapter.
// Timers are not counted; the interrupt latch exists so the KERNAL's IRQ
// service routine sees a plausible source when the orchestrator raises
// the periodic system interrupt.
type CIA struct {
	regs     [16]byte
	icrLatch byte
	icrMask  byte
}

func newCIA() *CIA {
	return &CIA{}
}

// ReadReg reads a CIA register. Reading the interrupt control register
// returns the latched bits (with bit 7 set if any enabled interrupt is
// pending) and clears the latch.
func (c *CIA) ReadReg(reg byte) byte {
	reg &= 0x0f
	if reg == ciaRegICR {
		v := c.icrLatch
		if v&c.icrMask != 0 {
			v |= 0x80
		}
		c.icrLatch = 0
		return v
	}
	return c.regs[reg]
}

// WriteReg writes a CIA register. Writing the interrupt control register
// sets or clears enable mask bits depending on bit 7 of the value.
func (c *CIA) WriteReg(reg, val byte) {
	reg &= 0x0f
	if reg == ciaRegICR {
		if val&0x80 != 0 {
			c.icrMask |= val & 0x1f
		} else {
			c.icrMask &^= val & 0x1f
		}
		return
	}
	c.regs[reg] = val
}

// LatchInterrupt raises bits in the interrupt latch without involving
// timer hardware.
func (c *CIA) LatchInterrupt(bits byte) {
	c.icrLatch |= bits & 0x1f
}

// Pending reports whether an enabled interrupt source is latched.
func (c *CIA) Pending() bool {
	return c.icrLatch&c.icrMask != 0
}

// Peek reads a register (including the interrupt latch) without the
// clear-on-read side effect.
func (c *CIA) Peek(reg byte) byte {
	reg &= 0x0f
	if reg == ciaRegICR {
		return c.icrLatch
	}
	return c.regs[reg]
}

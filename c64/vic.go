// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package c64

// VIC register offsets used by the text-mode machine.
const (
	vicRegControl1  = 0x11 // bit 7 = raster bit 8
	vicRegRaster    = 0x12 // raster counter low byte
	vicRegMemory    = 0x18 // screen and charset base selection
	vicRegIRQ       = 0x19 // interrupt latch, write-to-clear
	vicRegIRQEnable = 0x1a
	vicRegBorder    = 0x20
	vicRegBack      = 0x21
)

// A VIC is a register-level stub of the VIC-II video chip. It stores all
// 64 registers and derives the raster counter from the CPU cycle count;
// sprites, badlines, and raster-exact timing are not modeled.
type VIC struct {
	regs          [64]byte
	cycles        func() uint64 // CPU cycle counter source
	cyclesPerLine uint64
	lines         uint64
}

func newVIC(standard VideoStandard) *VIC {
	v := &VIC{
		cyclesPerLine: standard.cyclesPerLine(),
		lines:         standard.rasterLines(),
	}
	// Power-on memory setup: screen matrix at $0400, charset at $1000.
	v.regs[vicRegMemory] = 0x14
	return v
}

// SetCycleSource attaches the CPU cycle counter the raster position is
// derived from.
func (v *VIC) SetCycleSource(f func() uint64) {
	v.cycles = f
}

// Raster returns the current raster line derived from the cycle counter.
func (v *VIC) Raster() uint16 {
	if v.cycles == nil {
		return 0
	}
	return uint16(v.cycles() / v.cyclesPerLine % v.lines)
}

// ReadReg reads a VIC register, deriving the raster position registers
// from the cycle counter.
func (v *VIC) ReadReg(reg byte) byte {
	reg &= 0x3f
	switch reg {
	case vicRegControl1:
		raster := v.Raster()
		return v.regs[reg]&0x7f | byte(raster>>8)<<7
	case vicRegRaster:
		return byte(v.Raster())
	default:
		return v.regs[reg]
	}
}

// WriteReg writes a VIC register. Writing the interrupt latch clears the
// bits set in the written value.
func (v *VIC) WriteReg(reg, val byte) {
	reg &= 0x3f
	switch reg {
	case vicRegIRQ:
		v.regs[reg] &^= val & 0x0f
	default:
		v.regs[reg] = val
	}
}

// LatchIRQ raises bits in the interrupt latch.
func (v *VIC) LatchIRQ(bits byte) {
	v.regs[vicRegIRQ] |= bits & 0x0f
}

// Peek reads a register's stored value with no side effects and no
// raster derivation.
func (v *VIC) Peek(reg byte) byte {
	return v.regs[reg&0x3f]
}

// ScreenBase returns the screen matrix base address selected by the
// memory control register's high nibble.
func (v *VIC) ScreenBase() uint16 {
	return uint16(v.regs[vicRegMemory]>>4) * 0x0400
}

// BorderColor returns the border color register's low nibble.
func (v *VIC) BorderColor() byte {
	return v.regs[vicRegBorder] & 0x0f
}

// BackgroundColor returns the background color register's low nibble.
func (v *VIC) BackgroundColor() byte {
	return v.regs[vicRegBack] & 0x0f
}

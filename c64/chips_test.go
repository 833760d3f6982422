// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package c64_test

import (
	"math"
	"testing"

	"github.com/go64emu/go64/c64"
)

func TestVICRaster(t *testing.T) {
	m := c64.NewMemory(c64.PAL)
	var cycles uint64
	m.VIC().SetCycleSource(func() uint64 { return cycles })

	// PAL: 63 cycles per line, 312 lines per frame.
	cycles = 63*10 + 5
	if got := m.LoadByte(0xd012); got != 10 {
		t.Errorf("raster low byte = %d, want 10", got)
	}
	if got := m.LoadByte(0xd011); got&0x80 != 0 {
		t.Errorf("raster bit 8 set on line 10")
	}

	cycles = 63 * 300
	if got := m.LoadByte(0xd012); got != 300-256 {
		t.Errorf("raster low byte = %d, want %d", got, 300-256)
	}
	if got := m.LoadByte(0xd011); got&0x80 == 0 {
		t.Errorf("raster bit 8 clear on line 300")
	}

	// The counter wraps at the frame boundary.
	cycles = 63 * 312
	if got := m.VIC().Raster(); got != 0 {
		t.Errorf("raster after full frame = %d, want 0", got)
	}
}

func TestVICIRQClear(t *testing.T) {
	m := c64.NewMemory(c64.PAL)
	m.VIC().LatchIRQ(0x01)
	if got := m.LoadByte(0xd019) & 0x0f; got != 0x01 {
		t.Errorf("irq latch = $%02X, want $01", got)
	}

	// Writing a set bit acknowledges it.
	m.StoreByte(0xd019, 0x01)
	if got := m.LoadByte(0xd019) & 0x0f; got != 0 {
		t.Errorf("irq latch after ack = $%02X, want $00", got)
	}
}

func TestVICMirror(t *testing.T) {
	m := c64.NewMemory(c64.PAL)
	m.StoreByte(0xd020, 0x05)
	if got := m.LoadByte(0xd060); got != 0x05 {
		t.Errorf("mirrored border read = $%02X, want $05", got)
	}
	if got := m.VIC().BorderColor(); got != 0x05 {
		t.Errorf("border color = %d, want 5", got)
	}
}

func TestVICScreenBase(t *testing.T) {
	m := c64.NewMemory(c64.PAL)
	if got := m.VIC().ScreenBase(); got != 0x0400 {
		t.Errorf("power-on screen base = $%04X, want $0400", got)
	}
	m.StoreByte(0xd018, 0x80)
	if got := m.VIC().ScreenBase(); got != 0x2000 {
		t.Errorf("screen base = $%04X, want $2000", got)
	}
}

func TestCIAInterruptControl(t *testing.T) {
	m := c64.NewMemory(c64.PAL)
	cia := m.CIA1()

	// Enable timer A, latch it, and read the ICR through memory.
	m.StoreByte(0xdc0d, 0x81)
	cia.LatchInterrupt(c64.CIAIntTimerA)
	if !cia.Pending() {
		t.Fatal("interrupt not pending after latch")
	}
	if got := m.LoadByte(0xdc0d); got != 0x81 {
		t.Errorf("icr = $%02X, want $81", got)
	}

	// The read cleared the latch.
	if got := m.LoadByte(0xdc0d); got != 0 {
		t.Errorf("icr after clear-on-read = $%02X, want $00", got)
	}
	if cia.Pending() {
		t.Error("interrupt still pending after read")
	}
}

func TestCIAMaskedInterrupt(t *testing.T) {
	m := c64.NewMemory(c64.PAL)
	cia := m.CIA1()

	// A latched but masked source reads back without bit 7.
	cia.LatchInterrupt(c64.CIAIntTimerB)
	if cia.Pending() {
		t.Error("masked source reported pending")
	}
	if got := m.LoadByte(0xdc0d); got != c64.CIAIntTimerB {
		t.Errorf("icr = $%02X, want $%02X", got, c64.CIAIntTimerB)
	}
}

func TestSIDVoiceParams(t *testing.T) {
	m := c64.NewMemory(c64.PAL)
	sid := m.SID()

	m.StoreByte(0xd418, 0x8f) // volume 15
	m.StoreByte(0xd400, 0x00) // voice 0 freq = $1000
	m.StoreByte(0xd401, 0x10)
	m.StoreByte(0xd404, 0x41) // pulse + gate

	if got := sid.Volume(); got != 15 {
		t.Errorf("volume = %d, want 15", got)
	}
	if !sid.VoiceGate(0) {
		t.Error("voice 0 gate clear")
	}
	if got := sid.VoiceWaveform(0); got != c64.WavePulse {
		t.Errorf("voice 0 waveform = %v, want pulse", got)
	}

	want := 4096.0 * 1022727.0 / 65536.0
	if got := sid.VoiceFreqHz(0); math.Abs(got-want) > 0.01 {
		t.Errorf("voice 0 freq = %f, want %f", got, want)
	}

	if !sid.Active() {
		t.Error("sid inactive with gated voice and volume")
	}
	m.StoreByte(0xd418, 0x00)
	if sid.Active() {
		t.Error("sid active at volume 0")
	}
}

func TestSIDPulseDutyClamp(t *testing.T) {
	m := c64.NewMemory(c64.PAL)
	sid := m.SID()

	if got := sid.VoicePulseDuty(0); got != 0.05 {
		t.Errorf("zero-width duty = %f, want 0.05", got)
	}
	m.StoreByte(0xd402, 0xff)
	m.StoreByte(0xd403, 0x0f)
	if got := sid.VoicePulseDuty(0); got != 0.95 {
		t.Errorf("full-width duty = %f, want 0.95", got)
	}
}

func TestSIDNoiseLFSR(t *testing.T) {
	m := c64.NewMemory(c64.PAL)
	sid := m.SID()

	seen := make(map[uint32]bool)
	for i := 0; i < 100; i++ {
		state := sid.AdvanceNoise(0)
		if state&^uint32(0x7fffff) != 0 {
			t.Fatalf("lfsr state exceeds 23 bits: %06x", state)
		}
		if seen[state] {
			t.Fatalf("lfsr repeated after %d steps", i+1)
		}
		seen[state] = true
	}
}

// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package c64_test

import (
	"bytes"
	"testing"

	"github.com/go64emu/go64/c64"
)

// Distinct fill bytes make each ROM identifiable through the bank
// overlays.
const (
	fillBasic  = 0xb1
	fillKernal = 0xe1
	fillChar   = 0xc1
)

func fill(size int, v byte) []byte {
	b := make([]byte, size)
	for i := range b {
		b[i] = v
	}
	return b
}

func newTestMemory(t *testing.T) *c64.Memory {
	t.Helper()
	m := c64.NewMemory(c64.PAL)
	if err := m.LoadROM(c64.ROMBasic, fill(8192, fillBasic)); err != nil {
		t.Fatal(err)
	}
	if err := m.LoadROM(c64.ROMKernal, fill(8192, fillKernal)); err != nil {
		t.Fatal(err)
	}
	if err := m.LoadROM(c64.ROMChar, fill(4096, fillChar)); err != nil {
		t.Fatal(err)
	}
	return m
}

func expectByte(t *testing.T, m *c64.Memory, addr uint16, want byte) {
	t.Helper()
	if got := m.LoadByte(addr); got != want {
		t.Errorf("read $%04X = $%02X, want $%02X", addr, got, want)
	}
}

func TestPowerOnState(t *testing.T) {
	m := newTestMemory(t)
	if got := m.PeekRAM(c64.AddrDataDirection); got != 0x2f {
		t.Errorf("data direction register = $%02X, want $2F", got)
	}
	if got := m.PeekRAM(c64.AddrProcessorPort); got != 0x37 {
		t.Errorf("processor port = $%02X, want $37", got)
	}
	expectByte(t, m, 0xa000, fillBasic)
	expectByte(t, m, 0xe000, fillKernal)
}

func TestBankSelect(t *testing.T) {
	m := newTestMemory(t)

	// Distinguishable RAM under every overlay.
	m.PokeRAM(0xa000, 0x0a)
	m.PokeRAM(0xd000, 0x0d)
	m.PokeRAM(0xe000, 0x0e)

	// I/O reads at $D000 hit VIC register 0 (sprite 0 X), which is 0.
	tests := []struct {
		port byte
		a000 byte
		e000 byte
		d000 byte
	}{
		{0x30, 0x0a, 0x0e, 0x0d}, // all RAM
		{0x31, 0x0a, 0x0e, 0x0d}, // LORAM alone leaves all RAM
		{0x32, 0x0a, fillKernal, fillChar},
		{0x33, fillBasic, fillKernal, fillChar},
		{0x34, 0x0a, 0x0e, 0x0d}, // CHAREN alone leaves all RAM
		{0x35, 0x0a, 0x0e, 0x00}, // I/O without ROMs
		{0x36, 0x0a, fillKernal, 0x00},
		{0x37, fillBasic, fillKernal, 0x00},
	}
	for _, tc := range tests {
		m.StoreByte(c64.AddrProcessorPort, tc.port)
		expectByte(t, m, 0xa000, tc.a000)
		expectByte(t, m, 0xe000, tc.e000)
		expectByte(t, m, 0xd000, tc.d000)
	}
}

func TestRAMUnderROM(t *testing.T) {
	m := newTestMemory(t)

	// Writes land in RAM even while the ROM overlays are active.
	m.StoreByte(0xa123, 0x55)
	m.StoreByte(0xe456, 0x66)
	expectByte(t, m, 0xa123, fillBasic)
	expectByte(t, m, 0xe456, fillKernal)
	if got := m.PeekRAM(0xa123); got != 0x55 {
		t.Errorf("ram under basic rom = $%02X, want $55", got)
	}

	// Banking out the ROMs exposes the stored values.
	m.StoreByte(c64.AddrProcessorPort, 0x30)
	expectByte(t, m, 0xa123, 0x55)
	expectByte(t, m, 0xe456, 0x66)

	// And they survive a round trip back to the ROM configuration.
	m.StoreByte(c64.AddrProcessorPort, 0x37)
	m.StoreByte(c64.AddrProcessorPort, 0x30)
	expectByte(t, m, 0xa123, 0x55)
}

func TestCharROMWindowWrites(t *testing.T) {
	m := newTestMemory(t)

	// With char ROM at $D000, writes bypass the I/O chips and land in
	// the RAM underneath.
	m.StoreByte(c64.AddrProcessorPort, 0x33)
	m.StoreByte(0xd020, 0x77)
	expectByte(t, m, 0xd020, fillChar)
	if got := m.PeekRAM(0xd020); got != 0x77 {
		t.Errorf("ram under char rom = $%02X, want $77", got)
	}

	// The border color register never saw the write.
	m.StoreByte(c64.AddrProcessorPort, 0x37)
	if got := m.VIC().BorderColor(); got != 0 {
		t.Errorf("border color = %d, want 0", got)
	}
}

func TestColorRAMNibble(t *testing.T) {
	m := newTestMemory(t)
	m.StoreByte(0xd800, 0xff)
	expectByte(t, m, 0xd800, 0x0f)
}

func TestROMSizeCheck(t *testing.T) {
	m := c64.NewMemory(c64.PAL)
	if err := m.LoadROM(c64.ROMBasic, fill(4096, 0)); err == nil {
		t.Error("short basic rom accepted")
	}
	if m.ROMLoaded(c64.ROMBasic) {
		t.Error("failed load marked rom present")
	}
}

func TestKeyboardBuffer(t *testing.T) {
	m := c64.NewMemory(c64.PAL)

	for i := 0; i < 10; i++ {
		if err := m.PostKey(byte('A' + i)); err != nil {
			t.Fatalf("key %d rejected: %v", i, err)
		}
	}
	if err := m.PostKey('Z'); err != c64.ErrKeyBufferFull {
		t.Errorf("11th key error = %v, want ErrKeyBufferFull", err)
	}
	if got := m.PeekRAM(0x00c6); got != 10 {
		t.Errorf("pending key count = %d, want 10", got)
	}
	if got := m.PeekRAM(0x0277); got != 'A' {
		t.Errorf("first buffered key = $%02X, want $41", got)
	}
	if got := m.PeekRAM(0x0277 + 9); got != 'J' {
		t.Errorf("last buffered key = $%02X, want $4A", got)
	}
}

func TestPostString(t *testing.T) {
	m := c64.NewMemory(c64.PAL)
	n, err := m.PostString("run\r")
	if err != nil {
		t.Fatal(err)
	}
	if n != 4 {
		t.Errorf("posted = %d, want 4", n)
	}
	want := []byte{'R', 'U', 'N', 0x0d}
	for i, w := range want {
		if got := m.PeekRAM(0x0277 + uint16(i)); got != w {
			t.Errorf("buffer[%d] = $%02X, want $%02X", i, got, w)
		}
	}
	if got := m.PeekRAM(0x00c6); got != 4 {
		t.Errorf("pending key count = %d, want 4", got)
	}

	// Characters with no PETSCII form are skipped and not counted.
	if n, err = m.PostString("a\tb"); err != nil || n != 2 {
		t.Errorf("posted = %d (%v), want 2", n, err)
	}

	// A full buffer stops posting and reports the keys that fit.
	n, err = m.PostString("CDEFGHIJ")
	if err != c64.ErrKeyBufferFull {
		t.Errorf("error = %v, want ErrKeyBufferFull", err)
	}
	if n != 4 {
		t.Errorf("posted = %d, want 4", n)
	}
	if got := m.PeekRAM(0x00c6); got != 10 {
		t.Errorf("pending key count = %d, want 10", got)
	}
}

func TestDumpRAMWrap(t *testing.T) {
	m := c64.NewMemory(c64.PAL)
	m.PokeRAM(0xffff, 0x11)
	m.PokeRAM(0x0002, 0x22)
	got := m.DumpRAM(0xffff, 4)
	if got[0] != 0x11 || got[3] != 0x22 {
		t.Errorf("wrapped dump = % X", got)
	}
}

func TestParsePRG(t *testing.T) {
	addr, payload, err := c64.ParsePRG([]byte{0x01, 0x08, 0xaa, 0xbb})
	if err != nil {
		t.Fatal(err)
	}
	if addr != 0x0801 {
		t.Errorf("load address = $%04X, want $0801", addr)
	}
	if !bytes.Equal(payload, []byte{0xaa, 0xbb}) {
		t.Errorf("payload = % X", payload)
	}

	if _, _, err := c64.ParsePRG([]byte{0x01}); err != c64.ErrPRGShort {
		t.Errorf("short prg error = %v, want ErrPRGShort", err)
	}
}

func TestWritePRG(t *testing.T) {
	var buf bytes.Buffer
	if err := c64.WritePRG(&buf, 0xc000, []byte{0x60}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), []byte{0x00, 0xc0, 0x60}) {
		t.Errorf("prg bytes = % X", buf.Bytes())
	}
}

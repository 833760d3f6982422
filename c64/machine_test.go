// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package c64_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/go64emu/go64/c64"
	"github.com/go64emu/go64/drive"
)

func newTestMachine(t *testing.T) *c64.Machine {
	t.Helper()
	return c64.New(c64.Config{})
}

// prepareKernalCall stages a JSR-style call to a KERNAL entry point: a
// fake return address of $9999 on the stack, the filename registered as
// SETNAM would leave it, and the device and secondary address in zero
// page. After the intercepted routine's RTS the PC lands on $999A.
func prepareKernalCall(t *testing.T, m *c64.Machine, entry uint16, name string, secondary byte) {
	t.Helper()
	mem := m.Mem()

	const nameAddr = 0xc100
	for i := 0; i < len(name); i++ {
		mem.PokeRAM(nameAddr+uint16(i), name[i])
	}
	mem.PokeRAM(0xb7, byte(len(name)))
	mem.PokeRAM(0xbb, byte(nameAddr&0xff))
	mem.PokeRAM(0xbc, byte(nameAddr>>8))
	mem.PokeRAM(0xba, 8)
	mem.PokeRAM(0xb9, secondary)

	cpu := m.CPU()
	cpu.Reg.SP = 0xfd
	mem.PokeRAM(0x01fe, 0x99)
	mem.PokeRAM(0x01ff, 0x99)
	cpu.SetPC(entry)
}

func testDrive(t *testing.T, m *c64.Machine) *drive.Drive {
	t.Helper()
	d, err := m.AddDrive(8)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func TestKernalLoad(t *testing.T) {
	m := newTestMachine(t)
	d := testDrive(t, m)
	if err := d.SaveFile("HELLO", []byte{0x01, 0x08, 0xaa, 0xbb}); err != nil {
		t.Fatal(err)
	}

	prepareKernalCall(t, m, 0xffd5, "HELLO", 1)
	m.CPU().Reg.A = 0 // load, not verify
	m.CPU().Step()

	cpu := m.CPU()
	if cpu.Reg.PC != 0x999a {
		t.Errorf("pc = $%04X, want $999A", cpu.Reg.PC)
	}
	if cpu.Reg.Carry {
		t.Error("carry set on successful load")
	}
	if cpu.Reg.X != 0x03 || cpu.Reg.Y != 0x08 {
		t.Errorf("end address = $%02X%02X, want $0803", cpu.Reg.Y, cpu.Reg.X)
	}

	mem := m.Mem()
	if mem.PeekRAM(0x0801) != 0xaa || mem.PeekRAM(0x0802) != 0xbb {
		t.Errorf("payload = $%02X $%02X", mem.PeekRAM(0x0801), mem.PeekRAM(0x0802))
	}
	if mem.PeekRAM(0x2d) != 0x03 || mem.PeekRAM(0x2e) != 0x08 {
		t.Errorf("basic end pointer = $%02X%02X, want $0803",
			mem.PeekRAM(0x2e), mem.PeekRAM(0x2d))
	}
	if mem.PeekRAM(0x90) != 0 {
		t.Errorf("status word = $%02X, want $00", mem.PeekRAM(0x90))
	}
}

func TestKernalLoadRelocated(t *testing.T) {
	m := newTestMachine(t)
	d := testDrive(t, m)
	if err := d.SaveFile("DATA", []byte{0x00, 0xc0, 0x11, 0x22}); err != nil {
		t.Fatal(err)
	}

	// Secondary address 0 ignores the embedded address and loads at the
	// caller-supplied target in X/Y.
	prepareKernalCall(t, m, 0xffd5, "DATA", 0)
	m.CPU().Reg.A = 0
	m.CPU().Reg.X = 0x00
	m.CPU().Reg.Y = 0x40
	m.CPU().Step()

	mem := m.Mem()
	if mem.PeekRAM(0x4000) != 0x11 || mem.PeekRAM(0x4001) != 0x22 {
		t.Errorf("payload at $4000 = $%02X $%02X",
			mem.PeekRAM(0x4000), mem.PeekRAM(0x4001))
	}
	if m.CPU().Reg.X != 0x02 || m.CPU().Reg.Y != 0x40 {
		t.Errorf("end address = $%02X%02X, want $4002",
			m.CPU().Reg.Y, m.CPU().Reg.X)
	}
}

func TestKernalLoadNotFound(t *testing.T) {
	m := newTestMachine(t)
	testDrive(t, m)

	prepareKernalCall(t, m, 0xffd5, "MISSING", 1)
	m.CPU().Reg.A = 0
	m.CPU().Step()

	if !m.CPU().Reg.Carry {
		t.Error("carry clear on failed load")
	}
	if m.Mem().PeekRAM(0x90)&0x40 == 0 {
		t.Error("file-not-found bit clear in status word")
	}
	if m.CPU().Reg.PC != 0x999a {
		t.Errorf("pc = $%04X, want $999A", m.CPU().Reg.PC)
	}
}

func TestKernalLoadNoDrive(t *testing.T) {
	m := newTestMachine(t)

	prepareKernalCall(t, m, 0xffd5, "ANY", 1)
	m.CPU().Reg.A = 0
	m.CPU().Step()

	if !m.CPU().Reg.Carry {
		t.Error("carry clear with no drive attached")
	}
}

func TestKernalSave(t *testing.T) {
	m := newTestMachine(t)
	d := testDrive(t, m)
	mem := m.Mem()

	// BASIC text from $0801 to $0804 (exclusive).
	mem.PokeRAM(0x2b, 0x01)
	mem.PokeRAM(0x2c, 0x08)
	mem.PokeRAM(0x0801, 0x11)
	mem.PokeRAM(0x0802, 0x22)
	mem.PokeRAM(0x0803, 0x33)

	prepareKernalCall(t, m, 0xffd8, "SAVED", 1)
	m.CPU().Reg.X = 0x04
	m.CPU().Reg.Y = 0x08
	m.CPU().Step()

	if m.CPU().Reg.Carry {
		t.Error("carry set on successful save")
	}
	data, ok := d.LoadFile("SAVED")
	if !ok {
		t.Fatal("saved file not found")
	}
	want := []byte{0x01, 0x08, 0x11, 0x22, 0x33}
	if !bytes.Equal(data, want) {
		t.Errorf("saved data = % X, want % X", data, want)
	}
}

func TestChroutTap(t *testing.T) {
	m := newTestMachine(t)

	for _, ch := range []byte{'H', 'I', 0x0d} {
		m.CPU().Reg.A = ch
		m.CPU().SetPC(0xffd2)
		m.CPU().Step()
	}

	if got := m.ChroutCount(); got != 3 {
		t.Errorf("chrout count = %d, want 3", got)
	}
	if got := m.Output(); got != "HI\n" {
		t.Errorf("output = %q, want %q", got, "HI\n")
	}
}

func TestStuckPC(t *testing.T) {
	m := newTestMachine(t)
	mem := m.Mem()

	// JMP $1000 at $1000 makes no progress.
	mem.PokeRAM(0x1000, 0x4c)
	mem.PokeRAM(0x1001, 0x00)
	mem.PokeRAM(0x1002, 0x10)
	m.CPU().SetPC(0x1000)
	m.CPU().Reg.InterruptDisable = true

	err := m.Run(0)
	if !errors.Is(err, c64.ErrStuckPC) {
		t.Errorf("run error = %v, want ErrStuckPC", err)
	}
}

func TestStuckPCKernalExempt(t *testing.T) {
	m := newTestMachine(t)
	mem := m.Mem()

	// The same busy loop inside the KERNAL address range is treated as
	// an interrupt wait, not a hang. Bank out the ROM so the loop runs
	// from RAM.
	mem.StoreByte(c64.AddrProcessorPort, 0x35)
	mem.PokeRAM(0xe000, 0x4c)
	mem.PokeRAM(0xe001, 0x00)
	mem.PokeRAM(0xe002, 0xe0)
	m.CPU().SetPC(0xe000)
	m.CPU().Reg.InterruptDisable = true

	if err := m.Run(30000); err != nil {
		t.Errorf("run error = %v, want nil", err)
	}
}

func TestLoadPRG(t *testing.T) {
	m := newTestMachine(t)

	start, end, err := m.LoadPRG([]byte{0x01, 0x08, 0x11, 0x22, 0x33})
	if err != nil {
		t.Fatal(err)
	}
	if start != 0x0801 || end != 0x0804 {
		t.Errorf("range = $%04X-$%04X, want $0801-$0804", start, end)
	}
	mem := m.Mem()
	if mem.PeekRAM(0x0801) != 0x11 || mem.PeekRAM(0x0803) != 0x33 {
		t.Error("payload not in ram")
	}
	if mem.PeekRAM(0x2d) != 0x04 || mem.PeekRAM(0x2e) != 0x08 {
		t.Errorf("basic end pointer = $%02X%02X, want $0804",
			mem.PeekRAM(0x2e), mem.PeekRAM(0x2d))
	}
}

func TestScreenText(t *testing.T) {
	m := newTestMachine(t)
	mem := m.Mem()

	// Screen codes for HELLO at the top-left of the default matrix.
	for i, code := range []byte{8, 5, 12, 12, 15} {
		mem.PokeRAM(0x0400+uint16(i), code)
	}
	m.CPU().Reg.InterruptDisable = true
	if err := m.Run(10); err != nil {
		t.Fatal(err)
	}

	text := m.ScreenText()
	line, _, _ := strings.Cut(text, "\n")
	if !strings.HasPrefix(line, "HELLO") {
		t.Errorf("screen line = %q", line)
	}
	if got := strings.Count(text, "\n"); got != 25 {
		t.Errorf("screen has %d lines, want 25", got)
	}
}

func TestDumpMemory(t *testing.T) {
	m := newTestMachine(t)
	m.Mem().PokeRAM(0x1234, 0x99)

	var buf bytes.Buffer
	if err := m.DumpMemory(&buf); err != nil {
		t.Fatal(err)
	}
	data := buf.Bytes()
	if len(data) != 2+64*1024 {
		t.Fatalf("dump length = %d", len(data))
	}
	if data[0] != 0 || data[1] != 0 {
		t.Errorf("dump header = % X", data[:2])
	}
	if data[2+0x1234] != 0x99 {
		t.Errorf("dump byte = $%02X, want $99", data[2+0x1234])
	}
}

func TestTypeWhileStopped(t *testing.T) {
	m := newTestMachine(t)
	n, err := m.Type("list\r")
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("posted = %d, want 5", n)
	}
	if got := m.Mem().PeekRAM(0x00c6); got != 5 {
		t.Errorf("pending key count = %d, want 5", got)
	}
}

func TestTypeBufferFull(t *testing.T) {
	m := newTestMachine(t)
	if _, err := m.Type("1234567890"); err != nil {
		t.Fatal(err)
	}
	n, err := m.Type("X")
	if !errors.Is(err, c64.ErrKeyBufferFull) {
		t.Errorf("error = %v, want ErrKeyBufferFull", err)
	}
	if n != 0 {
		t.Errorf("posted = %d, want 0", n)
	}
}

func TestDoAfterStop(t *testing.T) {
	m := newTestMachine(t)
	mem := m.Mem()

	// An interrupt wait loop in the KERNAL range keeps Run alive until
	// Stop.
	mem.StoreByte(c64.AddrProcessorPort, 0x35)
	mem.PokeRAM(0xe000, 0x4c)
	mem.PokeRAM(0xe001, 0x00)
	mem.PokeRAM(0xe002, 0xe0)
	m.CPU().SetPC(0xe000)
	m.CPU().Reg.InterruptDisable = true

	done := make(chan error, 1)
	go func() { done <- m.Run(0) }()

	deadline := time.Now().Add(time.Second)
	for !m.Running() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !m.Running() {
		t.Fatal("run loop never started")
	}

	// A Do issued right after Stop must wait for the run loop to return
	// before touching the machine.
	m.Stop()
	ran := false
	m.Do(func() { ran = true })
	if !ran {
		t.Error("Do did not execute after Stop")
	}
	if m.Running() {
		t.Error("machine still running after Do returned")
	}
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/go64emu/go64/c64"
	"github.com/go64emu/go64/host"
)

// runScript feeds monitor commands to a fresh host and returns the
// output.
func runScript(t *testing.T, mach *c64.Machine, script ...string) string {
	t.Helper()
	h := host.New(mach)
	in := strings.NewReader(strings.Join(script, "\n") + "\n")
	var out bytes.Buffer
	h.RunCommands(in, &out, false)
	return out.String()
}

func TestMemorySetAndDump(t *testing.T) {
	mach := c64.New(c64.Config{})
	out := runScript(t, mach,
		"memory set $1000 $aa $bb",
		"memory dump $1000 2",
	)
	if !strings.Contains(out, "Set 2 bytes at $1000.") {
		t.Errorf("missing set confirmation in output:\n%s", out)
	}
	if !strings.Contains(out, "AA BB") {
		t.Errorf("missing dumped bytes in output:\n%s", out)
	}
	if mach.Mem().PeekRAM(0x1000) != 0xaa {
		t.Error("memory set did not write ram")
	}
}

func TestRegisterSet(t *testing.T) {
	mach := c64.New(c64.Config{})
	out := runScript(t, mach,
		"register a $12",
		"register pc $c000",
	)
	if !strings.Contains(out, "Register A set to $12.") {
		t.Errorf("missing register confirmation:\n%s", out)
	}
	if mach.CPU().Reg.A != 0x12 {
		t.Error("register A not set")
	}
	if mach.CPU().Reg.PC != 0xc000 {
		t.Error("register PC not set")
	}
}

func TestBreakpointCommands(t *testing.T) {
	mach := c64.New(c64.Config{})
	out := runScript(t, mach,
		"breakpoint add $2000",
		"breakpoint list",
		"breakpoint disable $2000",
		"breakpoint list",
	)
	if !strings.Contains(out, "Breakpoint added at $2000.") {
		t.Errorf("missing add confirmation:\n%s", out)
	}
	if !strings.Contains(out, "$2000 true") {
		t.Errorf("missing enabled breakpoint in list:\n%s", out)
	}
	if !strings.Contains(out, "$2000 false") {
		t.Errorf("missing disabled breakpoint in list:\n%s", out)
	}
}

func TestRunToBreakpoint(t *testing.T) {
	mach := c64.New(c64.Config{})
	out := runScript(t, mach,
		"memory set $1000 $a9 $01 $ea",
		"register pc $1000",
		"breakpoint add $1002",
		"run",
	)
	if !strings.Contains(out, "Breakpoint hit at $1002.") {
		t.Errorf("missing breakpoint hit:\n%s", out)
	}
	if mach.CPU().Reg.A != 0x01 {
		t.Error("lda before breakpoint did not execute")
	}
	if mach.CPU().Reg.PC != 0x1002 {
		t.Errorf("pc = $%04X, want $1002", mach.CPU().Reg.PC)
	}
}

func TestStepIn(t *testing.T) {
	mach := c64.New(c64.Config{})
	out := runScript(t, mach,
		"memory set $1000 $a9 $42 $ea",
		"register pc $1000",
		"step in 2",
	)
	_ = out
	if mach.CPU().Reg.A != 0x42 {
		t.Error("lda not executed while stepping")
	}
	if mach.CPU().Reg.PC != 0x1003 {
		t.Errorf("pc = $%04X, want $1003", mach.CPU().Reg.PC)
	}
}

func TestDisassembleOutput(t *testing.T) {
	mach := c64.New(c64.Config{})
	out := runScript(t, mach,
		"memory set $1000 $a9 $42",
		"disassemble $1000 1",
	)
	if !strings.Contains(out, "LDA #$42") {
		t.Errorf("missing disassembly:\n%s", out)
	}
}

func TestTypeCommand(t *testing.T) {
	mach := c64.New(c64.Config{})
	runScript(t, mach, "type list")
	// "list" plus the carriage return.
	if got := mach.Mem().PeekRAM(0x00c6); got != 5 {
		t.Errorf("pending key count = %d, want 5", got)
	}
}

func TestScreenCommand(t *testing.T) {
	mach := c64.New(c64.Config{})
	for i, code := range []byte{18, 5, 1, 4, 25, 46} { // READY.
		mach.Mem().PokeRAM(0x0400+uint16(i), code)
	}
	out := runScript(t, mach, "screen")
	if !strings.Contains(out, "READY.") {
		t.Errorf("missing screen text:\n%s", out)
	}
}

func TestStatusCommand(t *testing.T) {
	mach := c64.New(c64.Config{})
	if _, err := mach.AddDrive(8); err != nil {
		t.Fatal(err)
	}
	out := runScript(t, mach, "status")
	if !strings.Contains(out, "74,DRIVE NOT READY,00,00") {
		t.Errorf("missing drive status:\n%s", out)
	}
}

func TestUnknownCommand(t *testing.T) {
	mach := c64.New(c64.Config{})
	out := runScript(t, mach, "frobnicate")
	if !strings.Contains(out, "Command not found.") {
		t.Errorf("missing not-found message:\n%s", out)
	}
}

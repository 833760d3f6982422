// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host implements the interactive monitor for the emulated
// machine. Within the monitor it is possible to run, stop, and step the
// CPU, set address and data breakpoints, dump and modify memory,
// disassemble code, attach disk images, type on the emulated keyboard,
// and inspect the text screen and instruction trace.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/beevik/cmd"

	"github.com/go64emu/go64/c64"
	"github.com/go64emu/go64/cpu"
	"github.com/go64emu/go64/d64"
	"github.com/go64emu/go64/disasm"
	"github.com/go64emu/go64/drive"
)

type displayFlags uint8

const (
	displayRegisters displayFlags = 1 << iota
	displayCycles

	displayAll = displayRegisters | displayCycles
)

type state byte

const (
	stateProcessingCommands state = iota
	stateRunning
	stateBreakpoint
	stateStepOverBreakpoint
)

// A Host is the monitor attached to an emulated machine. It reads
// commands from an input stream, applies them to the machine, and
// writes results to an output stream.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	mach        *c64.Machine
	cpu         *cpu.CPU
	debugger    *cpu.Debugger
	lastCmd     *cmd.Selection
	state       state
	settings    *settings
}

// New creates a monitor attached to the given machine.
func New(mach *c64.Machine) *Host {
	h := &Host{
		mach:     mach,
		cpu:      mach.CPU(),
		state:    stateProcessingCommands,
		settings: newSettings(),
	}

	h.debugger = cpu.NewDebugger(newDebugHandler(h))
	h.cpu.AttachDebugger(h.debugger)

	return h
}

// RunCommands accepts monitor commands from a reader and outputs the
// results to a writer. If the commands are interactive, a prompt is
// displayed while the host waits for the next command to be entered.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive

	if interactive {
		h.println()
		h.displayPC()
	}

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			break
		}

		var c cmd.Selection
		if line != "" {
			c, err = cmds.Lookup(line)
			switch {
			case errors.Is(err, cmd.ErrNotFound):
				h.println("Command not found.")
				continue
			case errors.Is(err, cmd.ErrAmbiguous):
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}
		} else if h.lastCmd != nil {
			c = *h.lastCmd
		}

		if c.Command == nil {
			continue
		}
		h.lastCmd = &c

		handler := c.Command.Data.(func(*Host, cmd.Selection) error)
		err = handler(h, c)
		if err != nil {
			break
		}
	}

	h.flush()
}

// Break interrupts a running CPU.
func (h *Host) Break() {
	h.mach.Stop()
	h.println()

	if h.state == stateRunning {
		h.displayPC()
	}
	if h.state == stateProcessingCommands {
		h.prompt()
	}
	h.state = stateProcessingCommands
}

func (h *Host) print(args ...any) {
	fmt.Fprint(h.output, args...)
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return h.input.Text(), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.printf("* ")
		h.flush()
	}
}

func (h *Host) displayPC() {
	if h.interactive {
		d, _ := h.disassemble(h.cpu.Reg.PC, displayAll)
		h.println(d)
	}
}

func (h *Host) cmdHelp(c cmd.Selection) error {
	switch {
	case len(c.Args) == 0:
		h.println("Commands:")
		for _, s := range commandSummaries {
			h.printf("    %-15s  %s\n", s.name, s.brief)
		}
	default:
		s, err := cmds.Lookup(strings.Join(c.Args, " "))
		if err != nil || s.Command == nil {
			h.println("Command not found.")
			return nil
		}
		if s.Command.Usage != "" {
			h.printf("Usage: %s\n\n", s.Command.Usage)
		}
		switch {
		case s.Command.Description != "":
			h.printf("Description:\n%s\n\n", indentWrap(3, s.Command.Description))
		case s.Command.Brief != "":
			h.printf("Description:\n%s.\n\n", indentWrap(3, s.Command.Brief))
		}
	}
	return nil
}

func (h *Host) cmdAttach(c cmd.Selection) error {
	if len(c.Args) < 2 {
		h.displayUsage(c.Command)
		return nil
	}

	device, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	filename := c.Args[1]
	if filepath.Ext(filename) == "" {
		filename += ".d64"
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		h.printf("Failed to open '%s': %v\n", filepath.Base(filename), err)
		return nil
	}
	img, err := d64.New(data)
	if err != nil {
		h.printf("Failed to read '%s': %v\n", filepath.Base(filename), err)
		return nil
	}

	if err := h.mach.AttachDisk(byte(device), img, filepath.Base(filename)); err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.printf("Attached '%s' to device %d.\n", filepath.Base(filename), device)
	return nil
}

func (h *Host) cmdDetach(c cmd.Selection) error {
	if len(c.Args) == 0 {
		h.mach.DetachDisks()
		h.println("Detached all disks.")
		return nil
	}

	device, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	d := h.mach.Drive(byte(device))
	if d == nil {
		h.printf("No drive at device %d.\n", device)
		return nil
	}
	d.Detach()
	h.printf("Detached disk from device %d.\n", device)
	return nil
}

func (h *Host) cmdBreakpointList(c cmd.Selection) error {
	h.println("Addr  Enabled")
	h.println("----- -------")
	for _, b := range h.debugger.GetBreakpoints() {
		h.printf("$%04X %v\n", b.Address, !b.Disabled)
	}
	return nil
}

func (h *Host) cmdBreakpointAdd(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}

	addr, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.debugger.AddBreakpoint(addr)
	h.printf("Breakpoint added at $%04x.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointRemove(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}

	addr, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	if h.debugger.GetBreakpoint(addr) == nil {
		h.printf("No breakpoint was set on $%04X.\n", addr)
		return nil
	}

	h.debugger.RemoveBreakpoint(addr)
	h.printf("Breakpoint at $%04x removed.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointEnable(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}

	addr, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b := h.debugger.GetBreakpoint(addr)
	if b == nil {
		h.printf("No breakpoint was set on $%04X.\n", addr)
		return nil
	}

	b.Disabled = false
	h.printf("Breakpoint at $%04x enabled.\n", addr)
	return nil
}

func (h *Host) cmdBreakpointDisable(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}

	addr, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b := h.debugger.GetBreakpoint(addr)
	if b == nil {
		h.printf("No breakpoint was set on $%04X.\n", addr)
		return nil
	}

	b.Disabled = true
	h.printf("Breakpoint at $%04x disabled.\n", addr)
	return nil
}

func (h *Host) cmdDataBreakpointList(c cmd.Selection) error {
	h.println("Addr  Enabled  Value")
	h.println("----- -------  -----")
	for _, b := range h.debugger.GetDataBreakpoints() {
		if b.Conditional {
			h.printf("$%04X %-5v    $%02X\n", b.Address, !b.Disabled, b.Value)
		} else {
			h.printf("$%04X %-5v    <none>\n", b.Address, !b.Disabled)
		}
	}
	return nil
}

func (h *Host) cmdDataBreakpointAdd(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}

	addr, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	if len(c.Args) > 1 {
		value, err := h.parseExpr(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.debugger.AddConditionalDataBreakpoint(addr, byte(value))
		h.printf("Conditional data breakpoint added at $%04x for value $%02X.\n", addr, value)
	} else {
		h.debugger.AddDataBreakpoint(addr)
		h.printf("Data breakpoint added at $%04x.\n", addr)
	}

	return nil
}

func (h *Host) cmdDataBreakpointRemove(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}

	addr, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	if h.debugger.GetDataBreakpoint(addr) == nil {
		h.printf("No data breakpoint was set on $%04X.\n", addr)
		return nil
	}

	h.debugger.RemoveDataBreakpoint(addr)
	h.printf("Data breakpoint at $%04x removed.\n", addr)
	return nil
}

func (h *Host) cmdDataBreakpointEnable(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}

	addr, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b := h.debugger.GetDataBreakpoint(addr)
	if b == nil {
		h.printf("No data breakpoint was set on $%04X.\n", addr)
		return nil
	}

	b.Disabled = false
	h.printf("Data breakpoint at $%04x enabled.\n", addr)
	return nil
}

func (h *Host) cmdDataBreakpointDisable(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}

	addr, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	b := h.debugger.GetDataBreakpoint(addr)
	if b == nil {
		h.printf("No data breakpoint was set on $%04X.\n", addr)
		return nil
	}

	b.Disabled = true
	h.printf("Data breakpoint at $%04x disabled.\n", addr)
	return nil
}

func (h *Host) cmdDisassemble(c cmd.Selection) error {
	if len(c.Args) == 0 {
		c.Args = []string{"$"}
	}

	var addr uint16
	switch c.Args[0] {
	case "$":
		addr = h.settings.NextDisasmAddr
		if addr == 0 {
			addr = h.cpu.Reg.PC
		}

	case ".":
		addr = h.cpu.Reg.PC

	default:
		a, err := h.parseExpr(c.Args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	lines := h.settings.DisasmLines
	if len(c.Args) > 1 {
		l, err := h.parseExpr(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		lines = int(l)
	}

	for i := 0; i < lines; i++ {
		d, next := h.disassemble(addr, 0)
		h.println(d)
		addr = next
	}

	h.settings.NextDisasmAddr = addr
	h.lastCmd.Args = []string{"$", fmt.Sprintf("%d", lines)}
	return nil
}

func (h *Host) cmdLoad(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}

	filename := c.Args[0]
	if filepath.Ext(filename) == "" {
		filename += ".prg"
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		h.printf("Failed to open '%s': %v\n", filepath.Base(filename), err)
		return nil
	}

	start, end, err := h.mach.LoadPRG(data)
	if err != nil {
		h.printf("Failed to load '%s': %v\n", filepath.Base(filename), err)
		return nil
	}

	h.printf("Loaded '%s' to $%04X..$%04X\n", filepath.Base(filename), start, end-1)
	return nil
}

func (h *Host) cmdSave(c cmd.Selection) error {
	if len(c.Args) < 3 {
		h.displayUsage(c.Command)
		return nil
	}

	filename := c.Args[0]
	if filepath.Ext(filename) == "" {
		filename += ".prg"
	}

	start, err := h.parseExpr(c.Args[1])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	end, err := h.parseExpr(c.Args[2])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	if end < start {
		h.println("End address must not precede start address.")
		return nil
	}

	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		h.printf("Failed to create '%s': %v\n", filepath.Base(filename), err)
		return nil
	}
	defer file.Close()

	payload := h.mach.Mem().DumpRAM(start, int(end-start))
	if err := c64.WritePRG(file, start, payload); err != nil {
		h.printf("Failed to save '%s': %v\n", filepath.Base(filename), err)
		return nil
	}

	h.printf("Saved $%04X..$%04X to '%s'.\n", start, end-1, filepath.Base(filename))
	return nil
}

func (h *Host) cmdMemoryDump(c cmd.Selection) error {
	if len(c.Args) == 0 {
		c.Args = []string{"$"}
	}

	var addr uint16
	switch c.Args[0] {
	case "$":
		addr = h.settings.NextMemDumpAddr
		if addr == 0 {
			addr = h.cpu.Reg.PC
		}

	case ".":
		addr = h.cpu.Reg.PC

	default:
		a, err := h.parseExpr(c.Args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		addr = a
	}

	bytes := uint16(h.settings.MemDumpBytes)
	if len(c.Args) >= 2 {
		var err error
		bytes, err = h.parseExpr(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
	}

	h.dumpMemory(addr, bytes)

	h.settings.NextMemDumpAddr = addr + bytes
	h.lastCmd.Args = []string{"$", fmt.Sprintf("%d", bytes)}
	return nil
}

func (h *Host) cmdMemorySet(c cmd.Selection) error {
	if len(c.Args) < 2 {
		h.displayUsage(c.Command)
		return nil
	}

	addr, err := h.parseExpr(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	for i, arg := range c.Args[1:] {
		v, err := h.parseExpr(arg)
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.cpu.Mem.StoreByte(addr+uint16(i), byte(v))
	}

	h.printf("Set %d bytes at $%04X.\n", len(c.Args)-1, addr)
	return nil
}

func (h *Host) cmdQuit(c cmd.Selection) error {
	return errors.New("exiting program")
}

func (h *Host) cmdRegister(c cmd.Selection) error {
	if len(c.Args) == 0 {
		d, _ := h.disassemble(h.cpu.Reg.PC, displayAll)
		h.println(d)
		return nil
	}
	if len(c.Args) < 2 {
		h.displayUsage(c.Command)
		return nil
	}

	key := strings.ToLower(c.Args[0])
	v, err := h.parseExpr(c.Args[1])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	reg := &h.cpu.Reg
	sz := -1
	switch key {
	case "a":
		reg.A, sz = byte(v), 1
	case "x":
		reg.X, sz = byte(v), 1
	case "y":
		reg.Y, sz = byte(v), 1
	case "sp":
		reg.SP, sz = byte(v), 1
	case ".", "pc":
		key = "pc"
		reg.PC, sz = v, 2
	case "n", "sign":
		reg.Sign, sz = v != 0, 0
	case "z", "zero":
		reg.Zero, sz = v != 0, 0
	case "c", "carry":
		reg.Carry, sz = v != 0, 0
	case "i", "interrupt":
		reg.InterruptDisable, sz = v != 0, 0
	case "d", "decimal":
		reg.Decimal, sz = v != 0, 0
	case "v", "overflow":
		reg.Overflow, sz = v != 0, 0
	}

	switch sz {
	case 0:
		h.printf("Flag %s set to %v.\n", strings.ToUpper(key), v != 0)
	case 1:
		h.printf("Register %s set to $%02X.\n", strings.ToUpper(key), byte(v))
	case 2:
		h.printf("Register %s set to $%04X.\n", strings.ToUpper(key), v)
	default:
		h.printf("Unknown register '%s'.\n", key)
	}

	return nil
}

func (h *Host) cmdReset(c cmd.Selection) error {
	h.mach.Reset()
	h.printf("Reset to $%04X.\n", h.cpu.Reg.PC)
	return nil
}

func (h *Host) cmdRun(c cmd.Selection) error {
	var maxCycles uint64
	if len(c.Args) > 0 {
		n, err := parseUint(c.Args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		maxCycles = h.cpu.Cycles + n
	}

	h.printf("Running from $%04X. Press ctrl-C to break.\n", h.cpu.Reg.PC)

	h.state = stateRunning
	err := h.mach.Run(maxCycles)
	h.state = stateProcessingCommands
	if err != nil {
		h.printf("%v\n", err)
	}

	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdScreen(c cmd.Selection) error {
	h.mach.RefreshScreen()
	border := strings.Repeat("-", c64.ScreenCols+2)
	h.println(border)
	for _, line := range strings.Split(strings.TrimRight(h.mach.ScreenText(), "\n"), "\n") {
		h.printf("|%s|\n", line)
	}
	h.println(border)
	return nil
}

func (h *Host) cmdSet(c cmd.Selection) error {
	switch len(c.Args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayUsage(c.Command)

	default:
		key, value := strings.ToLower(c.Args[0]), strings.Join(c.Args[1:], " ")

		var err error
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = fmt.Errorf("setting '%s' not found", key)
		case reflect.Bool:
			var v bool
			v, err = stringToBool(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		default:
			var v uint16
			v, err = h.parseExpr(value)
			if err == nil {
				err = h.settings.Set(key, int(v))
			}
		}

		if err == nil {
			h.println("Setting updated.")
		} else {
			h.printf("%v\n", err)
		}
	}

	return nil
}

func (h *Host) cmdStatus(c cmd.Selection) error {
	found := false
	for device := byte(drive.MinDevice); device <= drive.MaxDevice; device++ {
		d := h.mach.Drive(device)
		if d == nil {
			continue
		}
		found = true
		h.printf("%d: %s\n", device, d.Status())
	}
	if !found {
		h.println("No drives attached.")
	}
	return nil
}

func (h *Host) cmdStepIn(c cmd.Selection) error {
	count := 1
	if len(c.Args) > 0 {
		n, err := h.parseExpr(c.Args[0])
		if err == nil {
			count = int(n)
		}
	}

	h.state = stateRunning
	for i := count - 1; i >= 0 && h.state == stateRunning; i-- {
		h.step()
		switch {
		case i == h.settings.MaxStepLines:
			h.println("...")
		case i < h.settings.MaxStepLines:
			h.displayPC()
		}
	}
	h.state = stateProcessingCommands

	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdStepOver(c cmd.Selection) error {
	count := 1
	if len(c.Args) > 0 {
		n, err := h.parseExpr(c.Args[0])
		if err == nil {
			count = int(n)
		}
	}

	h.state = stateRunning
	for i := count - 1; i >= 0 && h.state == stateRunning; i-- {
		h.stepOver()
		switch {
		case i == h.settings.MaxStepLines:
			h.println("...")
		case i < h.settings.MaxStepLines:
			h.displayPC()
		}
	}
	h.state = stateProcessingCommands

	h.settings.NextDisasmAddr = h.cpu.Reg.PC
	return nil
}

func (h *Host) cmdTrace(c cmd.Selection) error {
	records := h.cpu.Trace()
	if records == nil {
		h.println("Tracing is not enabled.")
		return nil
	}

	lines := h.settings.TraceLines
	if len(c.Args) > 0 {
		n, err := h.parseExpr(c.Args[0])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		lines = int(n)
	}
	if lines < len(records) {
		records = records[len(records)-lines:]
	}

	h.println("Cycles        PC    Code      Registers")
	for _, r := range records {
		inst := h.cpu.InstSet.Lookup(r.Opcode)
		code := codeString([]byte{r.Opcode, r.Op1, r.Op2}[:int(inst.Length)])
		h.printf("%-12d  %04X  %-8s  A=%02X X=%02X Y=%02X SP=%02X P=%02X\n",
			r.Cycles, r.PC, code, r.A, r.X, r.Y, r.SP, r.P)
	}
	return nil
}

func (h *Host) cmdType(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c.Command)
		return nil
	}
	n, err := h.mach.Type(strings.Join(c.Args, " ") + "\r")
	if err != nil {
		h.printf("Keyboard buffer full after %d keys.\n", n)
	}
	return nil
}

func (h *Host) step() {
	h.cpu.Step()
}

func (h *Host) stepOver() {
	cpu := h.cpu

	// JSR instructions need to be handled specially.
	inst := cpu.GetInstruction(cpu.Reg.PC)
	if inst.Name != "JSR" {
		h.cpu.Step()
		return
	}

	// Place a step-over breakpoint on the instruction following the JSR.
	// Either modify an already existing breakpoint on that instruction, or
	// create a temporary one.
	next := h.cpu.Reg.PC + uint16(inst.Length)
	tmpBreakpointCreated := false
	b := h.debugger.GetBreakpoint(next)
	if b == nil {
		b = h.debugger.AddBreakpoint(next)
		tmpBreakpointCreated = true
	}
	b.StepOver = true

	// Run until interrupted.
	for h.state == stateRunning {
		h.step()
	}
	b.StepOver = false

	// If we were interrupted by the temporary step-over breakpoint,
	// then continue as normal.
	if h.state == stateStepOverBreakpoint {
		h.state = stateRunning
	}

	// Remove the temporarily created breakpoint.
	if tmpBreakpointCreated {
		h.debugger.RemoveBreakpoint(next)
	}
}

func (h *Host) parseExpr(expr string) (uint16, error) {
	v, err := parseValue(expr, h.settings.HexMode, h.resolveIdentifier)
	if err != nil {
		return 0, err
	}

	if v < 0 {
		v = 0x10000 + v
	}
	return uint16(v), nil
}

func (h *Host) resolveIdentifier(s string) (int64, error) {
	switch strings.ToLower(s) {
	case "a":
		return int64(h.cpu.Reg.A), nil
	case "x":
		return int64(h.cpu.Reg.X), nil
	case "y":
		return int64(h.cpu.Reg.Y), nil
	case "sp":
		return int64(h.cpu.Reg.SP) | 0x0100, nil
	case ".", "pc":
		return int64(h.cpu.Reg.PC), nil
	}
	return 0, fmt.Errorf("identifier '%s' not found", s)
}

func (h *Host) disassemble(addr uint16, flags displayFlags) (str string, next uint16) {
	cpu := h.cpu

	var line string
	line, next = disasm.Disassemble(cpu.Mem, addr)

	l := next - addr
	b := make([]byte, l)
	cpu.Mem.LoadBytes(addr, b)

	str = fmt.Sprintf("%04X-   %-8s    %-15s", addr, codeString(b[:l]), line)

	if (flags & displayRegisters) != 0 {
		str += " " + disasm.GetRegisterString(&h.cpu.Reg)
	}

	if (flags & displayCycles) != 0 {
		str += fmt.Sprintf(" C=%-12d", h.cpu.Cycles)
	}

	return str, next
}

func (h *Host) dumpMemory(addr0, bytes uint16) {
	if bytes < 1 {
		return
	}

	addr1 := addr0 + bytes - 1
	if addr1 < addr0 {
		addr1 = 0xffff
	}

	buf := []byte("    -" + strings.Repeat(" ", 35))

	// Don't align display for short dumps.
	if addr1-addr0 < 8 {
		addrToBuf(addr0, buf[0:4])
		for a, c1, c2 := addr0, 6, 32; a <= addr1; a, c1, c2 = a+1, c1+3, c2+1 {
			m := h.cpu.Mem.LoadByte(a)
			byteToBuf(m, buf[c1:c1+2])
			buf[c2] = toPrintableChar(m)
		}
		h.println(string(buf))
		return
	}

	// Align addr0 and addr1 to 8-byte boundaries.
	start := uint32(addr0) & 0xfff8
	stop := (uint32(addr1) + 8) & 0xffff8
	if stop > 0x10000 {
		stop = 0x10000
	}

	a := uint16(start)
	for r := start; r < stop; r += 8 {
		addrToBuf(a, buf[0:4])
		for c1, c2 := 6, 32; c1 < 29; c1, c2, a = c1+3, c2+1, a+1 {
			if a >= addr0 && a <= addr1 {
				m := h.cpu.Mem.LoadByte(a)
				byteToBuf(m, buf[c1:c1+2])
				buf[c2] = toPrintableChar(m)
			} else {
				buf[c1] = ' '
				buf[c1+1] = ' '
				buf[c2] = ' '
			}
		}
		h.println(string(buf))
	}
}

func (h *Host) displayUsage(c *cmd.Command) {
	if c.Usage != "" {
		h.printf("Usage: %s\n", c.Usage)
	}
}

func (h *Host) onBreakpoint(cpu *cpu.CPU, b *cpu.Breakpoint) {
	if b.StepOver {
		h.state = stateStepOverBreakpoint
	} else {
		h.state = stateBreakpoint
		h.mach.Stop()
		h.printf("Breakpoint hit at $%04X.\n", b.Address)
		h.displayPC()
	}
}

func (h *Host) onDataBreakpoint(cpu *cpu.CPU, b *cpu.DataBreakpoint) {
	h.printf("Data breakpoint hit on address $%04X.\n", b.Address)

	h.state = stateBreakpoint
	h.mach.Stop()

	if cpu.LastPC != cpu.Reg.PC {
		d, _ := h.disassemble(cpu.LastPC, displayAll)
		h.println(d)
	}

	h.displayPC()
}

// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package c64

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go64emu/go64/cpu"
	"github.com/go64emu/go64/d64"
	"github.com/go64emu/go64/drive"
)

const (
	// defaultBootCycles is how long the KERNAL and BASIC are given to
	// initialize before a queued program is dropped into RAM.
	defaultBootCycles = 2_000_000

	// defaultStuckLimit is the number of consecutive steps the PC may
	// hold still outside KERNAL ROM before the run aborts.
	defaultStuckLimit = 1000

	// chroutBufferMax bounds the recorded CHROUT stream.
	chroutBufferMax = 64 * 1024
)

// ErrStuckPC reports a run aborted because the CPU stopped making
// progress outside the KERNAL's interrupt-driven wait loops.
var ErrStuckPC = errors.New("cpu stuck")

// A Config controls machine construction. The zero value selects PAL
// timing with default boot and stuck-PC thresholds.
type Config struct {
	Standard   VideoStandard
	TraceSize  int    // instruction trace ring size; 0 disables tracing
	BootCycles uint64 // cycles before a queued program loads
	StuckLimit int    // stuck-PC step threshold
	Turbo      bool   // run unthrottled instead of pacing to machine speed
}

// A Machine wires the CPU, banked memory, drives, and KERNAL hooks into
// a runnable C64. Run drives the CPU on the caller's goroutine; other
// goroutines interact through Do, Stop, and the snapshot accessors.
type Machine struct {
	cpu *cpu.CPU
	mem *Memory

	standard   VideoStandard
	drives     map[byte]*drive.Drive
	hooks      map[uint16]func(*cpu.CPU) bool
	bootCycles uint64
	stuckLimit int
	turbo      bool

	running  atomic.Bool
	loopMu   sync.Mutex // held by Run for its duration
	commands chan func()

	pendingPRG []byte
	prgLoaded  bool
	stuck      int
	nextIRQ    uint64

	screenMu sync.Mutex
	screen   [ScreenRows * ScreenCols]byte

	outputMu    sync.Mutex
	output      []byte
	chroutCount uint64
}

// New creates a machine with empty ROM sockets. ROMs must be installed
// via Mem().LoadROMs or LoadROM, and Reset called, before Run.
func New(cfg Config) *Machine {
	if cfg.BootCycles == 0 {
		cfg.BootCycles = defaultBootCycles
	}
	if cfg.StuckLimit == 0 {
		cfg.StuckLimit = defaultStuckLimit
	}

	m := &Machine{
		mem:        NewMemory(cfg.Standard),
		standard:   cfg.Standard,
		drives:     make(map[byte]*drive.Drive),
		bootCycles: cfg.BootCycles,
		stuckLimit: cfg.StuckLimit,
		turbo:      cfg.Turbo,
		commands:   make(chan func(), 16),
	}
	m.cpu = cpu.NewCPU(m.mem)
	m.mem.VIC().SetCycleSource(func() uint64 { return m.cpu.Cycles })
	m.installHooks()
	m.cpu.AttachInterceptor(m)
	if cfg.TraceSize > 0 {
		m.cpu.EnableTrace(cfg.TraceSize)
	}
	return m
}

// CPU returns the machine's processor.
func (m *Machine) CPU() *cpu.CPU { return m.cpu }

// Mem returns the machine's banked memory.
func (m *Machine) Mem() *Memory { return m.mem }

// Reset starts the CPU at the KERNAL reset vector.
func (m *Machine) Reset() {
	m.cpu.Reset()
}

// Drive returns the drive at a device number, or nil.
func (m *Machine) Drive(device byte) *drive.Drive {
	return m.drives[device]
}

// AddDrive returns the drive at a device number, creating it if needed.
func (m *Machine) AddDrive(device byte) (*drive.Drive, error) {
	if device < drive.MinDevice || device > drive.MaxDevice {
		return nil, fmt.Errorf("invalid device number %d", device)
	}
	d := m.drives[device]
	if d == nil {
		d = drive.New(device)
		m.drives[device] = d
	}
	return d, nil
}

// AttachDisk mounts a disk image on the drive at the given device
// number, creating the drive if needed.
func (m *Machine) AttachDisk(device byte, img *d64.Image, filename string) error {
	d, err := m.AddDrive(device)
	if err != nil {
		return err
	}
	d.Attach(img, filename)
	return nil
}

// DetachDisks removes the disks from all drives.
func (m *Machine) DetachDisks() {
	for _, d := range m.drives {
		d.Detach()
	}
}

// QueueProgram schedules PRG data (with its load-address header) to be
// loaded once the boot sequence has settled; a RUN command is typed at
// the same time. Only the first queued program is loaded.
func (m *Machine) QueueProgram(prg []byte) {
	m.pendingPRG = prg
	m.prgLoaded = false
}

// LoadPRG copies PRG data into RAM at its embedded load address and
// returns the occupied range. A load at the BASIC text base also fixes
// up the end-of-text pointer so the interpreter sees the program.
func (m *Machine) LoadPRG(prg []byte) (start, end uint16, err error) {
	addr, payload, err := ParsePRG(prg)
	if err != nil {
		return 0, 0, err
	}
	for i, v := range payload {
		m.mem.PokeRAM(addr+uint16(i), v)
	}
	end = addr + uint16(len(payload))
	if addr == basicTextBase {
		m.mem.PokeRAM(zpBasicEnd, byte(end))
		m.mem.PokeRAM(zpBasicEnd+1, byte(end>>8))
	}
	return addr, end, nil
}

// Type posts a string to the keyboard buffer from the run loop, so the
// write cannot race the CPU. It waits for the post and returns the
// number of keys that fit; excess input reports ErrKeyBufferFull.
func (m *Machine) Type(s string) (int, error) {
	var n int
	var err error
	done := make(chan struct{})
	m.Do(func() {
		n, err = m.mem.PostString(s)
		close(done)
	})
	<-done
	return n, err
}

// Do runs a function between instructions. While the machine is running
// the function is queued for the run-loop goroutine; otherwise it runs
// on the caller's goroutine once any in-flight Run has returned.
func (m *Machine) Do(fn func()) {
	queued := false
	if m.running.Load() {
		m.commands <- fn
		if m.running.Load() {
			return
		}
		// The run loop exited between the check and the send; the
		// command may still be queued. Flush it below.
		queued = true
	}

	m.loopMu.Lock()
	defer m.loopMu.Unlock()
	m.drainCommands()
	if !queued {
		fn()
	}
}

// Stop makes Run return after the current instruction.
func (m *Machine) Stop() {
	m.running.Store(false)
}

// Running reports whether Run is active.
func (m *Machine) Running() bool {
	return m.running.Load()
}

// Cycles returns the CPU cycle counter.
func (m *Machine) Cycles() uint64 {
	return m.cpu.Cycles
}

// Run steps the CPU until Stop is called, maxCycles elapse (0 means no
// limit), or the PC stops advancing outside KERNAL ROM. Per-frame it
// raises the CIA 1 timer interrupt that drives the KERNAL's cursor and
// keyboard scanning.
func (m *Machine) Run(maxCycles uint64) error {
	m.loopMu.Lock()
	defer m.loopMu.Unlock()

	// Commands still queued at exit must not fire on a later run.
	defer m.drainCommands()

	m.running.Store(true)
	defer m.running.Store(false)

	frame := m.standard.CyclesPerFrame()
	m.nextIRQ = m.cpu.Cycles + frame
	m.stuck = 0

	clockHz := float64(m.standard.ClockHz())
	startCycles := m.cpu.Cycles
	startTime := time.Now()

	for m.running.Load() {
		m.drainCommands()

		if maxCycles > 0 && m.cpu.Cycles >= maxCycles {
			m.updateScreen()
			return nil
		}

		if m.pendingPRG != nil && !m.prgLoaded && m.cpu.Cycles >= m.bootCycles {
			if _, _, err := m.LoadPRG(m.pendingPRG); err != nil {
				return err
			}
			if _, err := m.mem.PostString("RUN\r"); err != nil {
				return fmt.Errorf("auto-run keystrokes: %w", err)
			}
			m.prgLoaded = true
		}

		if m.cpu.Cycles >= m.nextIRQ {
			m.mem.CIA1().LatchInterrupt(CIAIntTimerA)
			m.cpu.SignalIRQ()
			m.nextIRQ += frame
			m.updateScreen()

			// Pace execution to the machine clock once per frame.
			if !m.turbo {
				target := time.Duration(float64(m.cpu.Cycles-startCycles) / clockHz * float64(time.Second))
				if ahead := target - time.Since(startTime); ahead > 0 {
					time.Sleep(ahead)
				}
			}
		}

		before := m.cpu.Reg.PC
		m.cpu.Step()

		switch {
		case m.cpu.Reg.PC != before:
			m.stuck = 0
		case before >= kernalBase:
			// KERNAL wait loops hold the PC until an interrupt; they
			// are progress, not a hang.
			m.stuck = 0
		default:
			m.stuck++
			if m.stuck > m.stuckLimit {
				return fmt.Errorf("%w: pc held at $%04X for %d steps",
					ErrStuckPC, before, m.stuck)
			}
		}
	}

	m.updateScreen()
	return nil
}

func (m *Machine) drainCommands() {
	for {
		select {
		case fn := <-m.commands:
			fn()
		default:
			return
		}
	}
}

// RefreshScreen re-snapshots the screen matrix. Callers must ensure the
// machine is not running.
func (m *Machine) RefreshScreen() {
	m.updateScreen()
}

// updateScreen snapshots the screen matrix from RAM at the VIC's
// current screen base.
func (m *Machine) updateScreen() {
	base := m.mem.VIC().ScreenBase()
	m.screenMu.Lock()
	for i := range m.screen {
		m.screen[i] = m.mem.PeekRAM(base + uint16(i))
	}
	m.screenMu.Unlock()
}

// Screen returns a copy of the most recent screen-matrix snapshot.
func (m *Machine) Screen() []byte {
	m.screenMu.Lock()
	defer m.screenMu.Unlock()
	out := make([]byte, len(m.screen))
	copy(out, m.screen[:])
	return out
}

// ScreenText renders the screen snapshot as 25 lines of ASCII text.
func (m *Machine) ScreenText() string {
	screen := m.Screen()
	var sb []byte
	for row := 0; row < ScreenRows; row++ {
		line := make([]byte, ScreenCols)
		for col := 0; col < ScreenCols; col++ {
			line[col] = screenToASCII(screen[row*ScreenCols+col])
		}
		sb = append(sb, line...)
		sb = append(sb, '\n')
	}
	return string(sb)
}

// Output returns the CHROUT stream recorded so far, converted from
// PETSCII to ASCII.
func (m *Machine) Output() string {
	m.outputMu.Lock()
	defer m.outputMu.Unlock()
	out := make([]byte, 0, len(m.output))
	for _, b := range m.output {
		if ch, ok := petsciiToASCII(b); ok {
			out = append(out, ch)
		}
	}
	return string(out)
}

// ChroutCount returns the number of CHROUT calls observed.
func (m *Machine) ChroutCount() uint64 {
	m.outputMu.Lock()
	defer m.outputMu.Unlock()
	return m.chroutCount
}

// DumpMemory writes all 64KB of RAM as a PRG with a $0000 load address.
func (m *Machine) DumpMemory(w io.Writer) error {
	if _, err := w.Write([]byte{0x00, 0x00}); err != nil {
		return err
	}
	_, err := w.Write(m.mem.DumpRAM(0, 64*1024))
	return err
}

// petsciiToASCII converts a PETSCII code from the CHROUT stream to a
// printable ASCII character.
func petsciiToASCII(b byte) (byte, bool) {
	switch {
	case b == 0x0d:
		return '\n', true
	case b >= 0xc1 && b <= 0xda:
		return b - 0x80, true
	case b >= 0x20 && b <= 0x5f:
		return b, true
	}
	return 0, false
}

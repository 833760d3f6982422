// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package c64 emulates a Commodore 64 in text mode: banked memory with
// ROM/RAM/IO overlays, VIC-II/SID/CIA register stubs, a KERNAL intercept
// layer that substitutes host disk I/O for serial-bus traffic, and a
// boot/load orchestrator that steps the CPU.
package c64

import (
	"errors"
	"fmt"
)

// Fixed locations in the C64 address map.
const (
	AddrDataDirection = 0x0000 // processor port data direction register
	AddrProcessorPort = 0x0001 // bank-select latch (LORAM/HIRAM/CHAREN)

	basicBase  = 0xa000 // BASIC ROM, 8KB
	ioBase     = 0xd000 // I/O window or character ROM, 4KB
	kernalBase = 0xe000 // KERNAL ROM, 8KB
)

// Processor port bank-select bits.
const (
	portLORAM  = 1 << 0 // BASIC ROM visible at $A000 (with HIRAM)
	portHIRAM  = 1 << 1 // KERNAL ROM visible at $E000
	portCHAREN = 1 << 2 // I/O registers (set) or char ROM (clear) at $D000
)

// A ROMKind selects one of the machine's ROM images.
type ROMKind int

// The three ROM images a C64 requires.
const (
	ROMBasic ROMKind = iota
	ROMKernal
	ROMChar
)

func (k ROMKind) String() string {
	switch k {
	case ROMBasic:
		return "basic"
	case ROMKernal:
		return "kernal"
	case ROMChar:
		return "character"
	}
	return "unknown"
}

// ErrROMSize is returned by LoadROM when an image's length does not
// match the expected ROM size.
var ErrROMSize = errors.New("rom image has invalid size")

// A bank represents a switchable bank of memory.
type bank struct {
	id       bankID
	npages   int    // size of bank in 256-byte pages
	baseAddr uint16 // base virtual address
	accessor bankAccessor
}

// A bankAccessor handles the reading and writing of bytes in a memory
// bank, abstracting read/write behavior per kind of memory.
type bankAccessor interface {
	LoadByte(addr uint16) byte
	StoreByte(addr uint16, v byte)
}

type bankID uint8

// Memory bank identifiers
const (
	bankSystemRAM bankID = iota // $0000..$FFFF (64K RAM, always underneath)
	bankBASICROM                // $A000..$BFFF (BASIC ROM)
	bankKERNALROM               // $E000..$FFFF (KERNAL ROM)
	bankCharROM                 // $D000..$DFFF (character generator ROM)
	bankIO                      // $D000..$DFFF (VIC/SID/color/CIA registers)

	bankCount
)

// Each memory page holds 256 bytes and can be mapped to a bank for reads
// and a bank for writes.
type page struct {
	read  *bank // memory bank used for this page's reads
	write *bank // memory bank used for this page's writes
}

// The access bit mask indicates a type of memory access.
type access uint8

const (
	read access = 1 << iota
	write
)

// Memory implements the C64's 64KB address space: RAM underneath
// everything, ROM and I/O overlays selected by the low three bits of the
// processor port at $0001, and per-register side effects in the I/O
// window. It satisfies the cpu.Memory interface.
type Memory struct {
	ram       [64 * 1024]byte
	basicROM  [8 * 1024]byte
	kernalROM [8 * 1024]byte
	charROM   [4 * 1024]byte
	colorRAM  [1024]byte
	romLoaded [3]bool

	vic  *VIC
	sid  *SID
	cia1 *CIA
	cia2 *CIA

	banks [bankCount]bank
	pages [256]page // virtual 64K address space in 256-byte pages
}

// NewMemory creates the C64 memory map with all ROM and I/O overlays
// active, which is the state of the machine at power-on.
func NewMemory(standard VideoStandard) *Memory {
	m := &Memory{
		vic:  newVIC(standard),
		sid:  newSID(standard),
		cia1: newCIA(),
		cia2: newCIA(),
	}

	m.addBank(bankSystemRAM, &ramAccessor{mem: m.ram[:]}, 256, 0x0000)
	m.addBank(bankBASICROM, &romAccessor{mem: m.basicROM[:]}, 32, basicBase)
	m.addBank(bankKERNALROM, &romAccessor{mem: m.kernalROM[:]}, 32, kernalBase)
	m.addBank(bankCharROM, &romAccessor{mem: m.charROM[:]}, 16, ioBase)
	m.addBank(bankIO, &ioAccessor{mem: m}, 16, ioBase)

	// All pages start as plain RAM; the port value overlays ROM and I/O.
	m.mapPages(0, 256, &m.banks[bankSystemRAM], read|write)

	// Power-on port state: all ROMs and I/O visible.
	m.ram[AddrDataDirection] = 0x2f
	m.ram[AddrProcessorPort] = 0x37
	m.applyBankConfig(m.ram[AddrProcessorPort])

	return m
}

// VIC returns the video chip register stub.
func (m *Memory) VIC() *VIC { return m.vic }

// SID returns the sound chip register stub.
func (m *Memory) SID() *SID { return m.sid }

// CIA1 returns the first CIA register stub (keyboard, timer IRQ).
func (m *Memory) CIA1() *CIA { return m.cia1 }

// CIA2 returns the second CIA register stub (serial bus, VIC banking).
func (m *Memory) CIA2() *CIA { return m.cia2 }

// LoadROM installs a ROM image. The image length must match the ROM's
// expected size: 8192 bytes for BASIC and KERNAL, 4096 for the character
// generator.
func (m *Memory) LoadROM(kind ROMKind, data []byte) error {
	var dst []byte
	switch kind {
	case ROMBasic:
		dst = m.basicROM[:]
	case ROMKernal:
		dst = m.kernalROM[:]
	case ROMChar:
		dst = m.charROM[:]
	default:
		return fmt.Errorf("unknown rom kind %d", kind)
	}
	if len(data) != len(dst) {
		return fmt.Errorf("%w: %s rom is %d bytes (expected %d)",
			ErrROMSize, kind, len(data), len(dst))
	}
	copy(dst, data)
	m.romLoaded[kind] = true
	return nil
}

// ROMLoaded reports whether a ROM image has been installed.
func (m *Memory) ROMLoaded(kind ROMKind) bool {
	return m.romLoaded[kind]
}

// LoadByte loads a single byte from the address and returns it.
func (m *Memory) LoadByte(addr uint16) byte {
	b := m.pages[addr>>8].read
	return b.accessor.LoadByte(addr - b.baseAddr)
}

// LoadBytes loads multiple bytes from the address and stores them into
// the buffer 'b'.
func (m *Memory) LoadBytes(addr uint16, b []byte) {
	for i, n := 0, len(b); i < n; i++ {
		b[i] = m.LoadByte(addr + uint16(i))
	}
}

// LoadAddress loads a 16-bit address value from the requested address
// and returns it. When the address ends in 0xff, the high byte comes
// from a page-wrapped address, mimicking the NMOS 6502.
func (m *Memory) LoadAddress(addr uint16) uint16 {
	lo := m.LoadByte(addr)
	var hi byte
	if (addr & 0xff) == 0xff {
		hi = m.LoadByte(addr - 0xff)
	} else {
		hi = m.LoadByte(addr + 1)
	}
	return uint16(lo) | uint16(hi)<<8
}

// StoreByte stores a byte to the requested address. Stores to addresses
// shadowed by ROM always land in the RAM underneath. A store to the
// processor port recomputes the bank mapping.
func (m *Memory) StoreByte(addr uint16, v byte) {
	b := m.pages[addr>>8].write
	b.accessor.StoreByte(addr-b.baseAddr, v)

	if addr == AddrProcessorPort {
		m.applyBankConfig(v)
	}
}

// StoreBytes stores multiple bytes to the requested address.
func (m *Memory) StoreBytes(addr uint16, b []byte) {
	for i, n := 0, len(b); i < n; i++ {
		m.StoreByte(addr+uint16(i), b[i])
	}
}

// StoreAddress stores a 16-bit address value to the requested address.
func (m *Memory) StoreAddress(addr uint16, v uint16) {
	m.StoreByte(addr, byte(v))
	if (addr & 0xff) == 0xff {
		m.StoreByte(addr-0xff, byte(v>>8))
	} else {
		m.StoreByte(addr+1, byte(v>>8))
	}
}

// PeekRAM reads the RAM underneath any active overlay, with no register
// side effects.
func (m *Memory) PeekRAM(addr uint16) byte {
	return m.ram[addr]
}

// PokeRAM writes the RAM underneath any active overlay, bypassing the
// I/O window and bank recomputation.
func (m *Memory) PokeRAM(addr uint16, v byte) {
	m.ram[addr] = v
}

// PeekVIC reads a VIC register with no side effects, for renderers and
// debugging tools.
func (m *Memory) PeekVIC(reg byte) byte {
	return m.vic.Peek(reg)
}

// DumpRAM copies 'length' bytes of underlying RAM starting at 'start'.
// The copy wraps at the top of the address space.
func (m *Memory) DumpRAM(start uint16, length int) []byte {
	out := make([]byte, length)
	for i := range out {
		out[i] = m.ram[start+uint16(i)]
	}
	return out
}

// applyBankConfig recomputes the page mapping from the low three bits of
// the processor port. The mapping is a pure function of the port value,
// so repeated application is idempotent.
//
// PLA equations (no cartridge): BASIC = LORAM & HIRAM, KERNAL = HIRAM,
// I/O = CHAREN & (LORAM | HIRAM), char ROM = !CHAREN & HIRAM.
func (m *Memory) applyBankConfig(port byte) {
	loram := port&portLORAM != 0
	hiram := port&portHIRAM != 0
	charen := port&portCHAREN != 0

	ram := &m.banks[bankSystemRAM]

	// $A000-$BFFF: BASIC ROM or RAM for reads; writes always hit RAM.
	if loram && hiram {
		m.activateBank(bankBASICROM, read)
	} else {
		m.mapPages(0xa0, 0xc0, ram, read)
	}

	// $E000-$FFFF: KERNAL ROM or RAM for reads.
	if hiram {
		m.activateBank(bankKERNALROM, read)
	} else {
		m.mapPages(0xe0, 0x100, ram, read)
	}

	// $D000-$DFFF: I/O registers, char ROM, or RAM.
	switch {
	case charen && (loram || hiram):
		m.activateBank(bankIO, read|write)
	case !charen && hiram:
		m.activateBank(bankCharROM, read)
		m.mapPages(0xd0, 0xe0, ram, write)
	default:
		m.mapPages(0xd0, 0xe0, ram, read|write)
	}
}

func (m *Memory) addBank(id bankID, a bankAccessor, npages int, baseAddr uint16) {
	m.banks[id] = bank{
		id:       id,
		npages:   npages,
		baseAddr: baseAddr,
		accessor: a,
	}
}

// activateBank maps all pages within a bank's address range so that
// accesses are handled by the bank's accessor. Read and write access may
// be activated independently.
func (m *Memory) activateBank(id bankID, a access) {
	b := &m.banks[id]
	p0 := int(b.baseAddr >> 8)
	m.mapPages(p0, p0+b.npages, b, a)
}

func (m *Memory) mapPages(p0, pn int, b *bank, a access) {
	for p := p0; p < pn; p++ {
		if a&read != 0 {
			m.pages[p].read = b
		}
		if a&write != 0 {
			m.pages[p].write = b
		}
	}
}

type ramAccessor struct {
	mem []byte
}

func (a *ramAccessor) LoadByte(addr uint16) byte {
	return a.mem[addr]
}

func (a *ramAccessor) StoreByte(addr uint16, v byte) {
	a.mem[addr] = v
}

type romAccessor struct {
	mem []byte
}

func (a *romAccessor) LoadByte(addr uint16) byte {
	return a.mem[addr]
}

func (a *romAccessor) StoreByte(addr uint16, v byte) {
	// Do nothing
}

// ioAccessor dispatches accesses within the $D000-$DFFF window to the
// chip register stubs. Addresses are relative to the window base. The
// VIC and SID mirror their registers across their address ranges.
type ioAccessor struct {
	mem *Memory
}

func (a *ioAccessor) LoadByte(addr uint16) byte {
	switch {
	case addr < 0x0400:
		return a.mem.vic.ReadReg(byte(addr & 0x3f))
	case addr < 0x0800:
		return a.mem.sid.ReadReg(byte(addr & 0x1f))
	case addr < 0x0c00:
		return a.mem.colorRAM[addr-0x0800] & 0x0f
	case addr < 0x0d00:
		return a.mem.cia1.ReadReg(byte(addr & 0x0f))
	case addr < 0x0e00:
		return a.mem.cia2.ReadReg(byte(addr & 0x0f))
	default:
		// Expansion I/O areas are unmapped.
		return 0xff
	}
}

func (a *ioAccessor) StoreByte(addr uint16, v byte) {
	switch {
	case addr < 0x0400:
		a.mem.vic.WriteReg(byte(addr&0x3f), v)
	case addr < 0x0800:
		a.mem.sid.WriteReg(byte(addr&0x1f), v)
	case addr < 0x0c00:
		a.mem.colorRAM[addr-0x0800] = v & 0x0f
	case addr < 0x0d00:
		a.mem.cia1.WriteReg(byte(addr&0x0f), v)
	case addr < 0x0e00:
		a.mem.cia2.WriteReg(byte(addr&0x0f), v)
	}
}

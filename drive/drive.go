// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package drive emulates a Commodore 1541 disk drive at the file level:
// loading files from an attached D64 image, synthesizing the directory
// listing, and accepting saved files. The drive's own CPU and the serial
// bus protocol are not emulated.
package drive

import (
	"fmt"
	"strings"

	"github.com/go64emu/go64/d64"
)

// Device numbers the C64 assigns to serial-bus disk drives.
const (
	MinDevice = 8
	MaxDevice = 11
)

const basicStart = 0x0801

// A Drive is a 1541 disk drive facade. At most one D64 image is attached
// at a time; the image is read-only, and saved files are kept in an
// in-memory table consulted before the image on subsequent loads.
type Drive struct {
	device   byte
	disk     *d64.Image
	diskName string
	saved    map[string][]byte
}

// New creates a drive with the given device number (typically 8-11).
func New(device byte) *Drive {
	return &Drive{
		device: device,
		saved:  make(map[string][]byte),
	}
}

// Device returns the drive's serial-bus device number.
func (d *Drive) Device() byte {
	return d.device
}

// Attach mounts a D64 disk image. The filename is kept for display only.
func (d *Drive) Attach(disk *d64.Image, filename string) {
	d.disk = disk
	d.diskName = filename
}

// Detach removes the current disk image.
func (d *Drive) Detach() {
	d.disk = nil
	d.diskName = ""
}

// HasDisk reports whether a disk image is attached.
func (d *Drive) HasDisk() bool {
	return d.disk != nil
}

// DiskFilename returns the filename of the attached image, if any.
func (d *Drive) DiskFilename() string {
	return d.diskName
}

// LoadFile loads a file by name. The returned data always begins with a
// 2-byte little-endian load address. The name "$" loads the directory
// listing rendered as a BASIC program. It returns false when no disk is
// attached or the file does not exist.
func (d *Drive) LoadFile(name string) ([]byte, bool) {
	if name == "$" {
		return d.loadDirectory()
	}

	clean := cleanName(name)
	if data, ok := d.saved[clean]; ok {
		return data, true
	}

	if !d.HasDisk() {
		return nil, false
	}

	entry, ok := d.disk.FindFile(clean)
	if !ok {
		return nil, false
	}
	data, err := d.disk.ReadFile(entry)
	if err != nil {
		return nil, false
	}

	if entry.Type != d64.FilePRG {
		// Non-program files carry no embedded address; give them the
		// default BASIC start.
		prefixed := make([]byte, 0, len(data)+2)
		prefixed = append(prefixed, byte(basicStart&0xff), byte(basicStart>>8))
		prefixed = append(prefixed, data...)
		return prefixed, true
	}
	return data, true
}

// SaveFile stores a file in the drive's in-memory table. The data must
// include the 2-byte load address prefix, matching what LoadFile returns.
func (d *Drive) SaveFile(name string, data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("drive %d: file %q too short", d.device, name)
	}
	stored := make([]byte, len(data))
	copy(stored, data)
	d.saved[cleanName(name)] = stored
	return nil
}

// Status returns the drive's status channel string.
func (d *Drive) Status() string {
	if !d.HasDisk() {
		return "74,DRIVE NOT READY,00,00"
	}
	return "00, OK,00,00"
}

// loadDirectory renders the disk directory as a BASIC listing program
// loaded at $0801, the same synthetic program a real drive returns for
// LOAD"$",8. Each file becomes one BASIC line keyed by its block count.
func (d *Drive) loadDirectory() ([]byte, bool) {
	if !d.HasDisk() {
		return nil, false
	}

	diskName, diskID, err := d.disk.BAM()
	if err != nil {
		return nil, false
	}
	entries, err := d.disk.Directory()
	if err != nil {
		return nil, false
	}

	addr := uint16(basicStart)
	prg := []byte{byte(addr), byte(addr >> 8)}

	header := fmt.Sprintf("0 %q %s", diskName, diskID)
	prg, addr = appendBasicLine(prg, addr, 0, header)

	used := 0
	for _, e := range entries {
		line := fmt.Sprintf("%4d \"%-16s\" %s", e.Blocks, e.Name, e.Type)
		prg, addr = appendBasicLine(prg, addr, uint16(e.Blocks), line)
		used += e.Blocks
	}

	free := d64.TotalBlocks - used
	if free < 0 {
		free = 0
	}
	prg, _ = appendBasicLine(prg, addr, uint16(free), fmt.Sprintf("%d BLOCKS FREE.", free))

	// End-of-program marker.
	prg = append(prg, 0x00, 0x00)
	return prg, true
}

// appendBasicLine appends one tokenless BASIC line: a 2-byte pointer to
// the next line, a 2-byte line number, the text in PETSCII, and a zero
// terminator.
func appendBasicLine(prg []byte, addr, lineNo uint16, text string) ([]byte, uint16) {
	next := addr + uint16(2+2+len(text)+1)
	prg = append(prg, byte(next), byte(next>>8))
	prg = append(prg, byte(lineNo), byte(lineNo>>8))
	for i := 0; i < len(text); i++ {
		ch := text[i]
		if ch >= 'a' && ch <= 'z' {
			ch -= 0x20
		}
		prg = append(prg, ch)
	}
	prg = append(prg, 0x00)
	return prg, next
}

func cleanName(name string) string {
	return strings.ToUpper(strings.Trim(strings.TrimSpace(name), `"`))
}

package drive

import (
	"testing"

	"github.com/go64emu/go64/d64"
)

// buildTestDisk creates an in-memory image with one PRG file "HELLO".
func buildTestDisk(t *testing.T) *d64.Image {
	t.Helper()

	data := make([]byte, d64.SizeStandard)

	// Track 18 starts after 17 tracks of 21 sectors.
	base := 17 * 21 * d64.SectorSize

	// BAM: disk name and ID.
	copy(data[base+0x90:], "TESTDISK")
	for i := len("TESTDISK"); i < 16; i++ {
		data[base+0x90+i] = 0xa0
	}
	copy(data[base+0xa2:], "2A")

	// Directory sector 18/1.
	dir := base + d64.SectorSize
	entry := data[dir+2 : dir+2+32]
	entry[0] = 0x82 // closed PRG
	entry[1] = 1
	entry[2] = 0
	copy(entry[3:19], "HELLO")
	for i := len("HELLO"); i < 16; i++ {
		entry[3+i] = 0xa0
	}
	entry[28] = 1

	// A second entry: a SEQ file "NOTES" on track 1, sector 1.
	entry2 := data[dir+2+32 : dir+2+32+30]
	entry2[0] = 0x81 // closed SEQ
	entry2[1] = 1
	entry2[2] = 1
	copy(entry2[3:19], "NOTES")
	for i := len("NOTES"); i < 16; i++ {
		entry2[3+i] = 0xa0
	}
	entry2[28] = 1

	// File data on track 1, sector 0.
	payload := []byte{0x01, 0x08, 0xaa, 0xbb}
	data[1] = byte(len(payload))
	copy(data[2:], payload)

	// SEQ data on track 1, sector 1.
	seq := []byte("TEXT")
	data[d64.SectorSize+1] = byte(len(seq))
	copy(data[d64.SectorSize+2:], seq)

	im, err := d64.New(data)
	if err != nil {
		t.Fatal(err)
	}
	return im
}

func TestLoadFile(t *testing.T) {
	d := New(8)
	d.Attach(buildTestDisk(t), "test.d64")

	data, ok := d.LoadFile("HELLO")
	if !ok {
		t.Fatal("LoadFile failed for HELLO")
	}
	if len(data) != 4 || data[0] != 0x01 || data[1] != 0x08 {
		t.Errorf("file data incorrect: %v", data)
	}

	// Lookup is case-insensitive and ignores quotes.
	if _, ok := d.LoadFile(`"hello"`); !ok {
		t.Error("LoadFile failed for quoted lowercase name")
	}

	if _, ok := d.LoadFile("NOTFOUND"); ok {
		t.Error("LoadFile succeeded for missing file")
	}
}

func TestLoadSequentialFile(t *testing.T) {
	d := New(8)
	d.Attach(buildTestDisk(t), "test.d64")

	data, ok := d.LoadFile("NOTES")
	if !ok {
		t.Fatal("LoadFile failed for NOTES")
	}

	// Non-program files get the default BASIC load address.
	if data[0] != 0x01 || data[1] != 0x08 {
		t.Errorf("load address = $%02X%02X, want $0801", data[1], data[0])
	}
	if string(data[2:]) != "TEXT" {
		t.Errorf("payload = % X", data[2:])
	}
}

func TestLoadFileNoDisk(t *testing.T) {
	d := New(8)
	if _, ok := d.LoadFile("HELLO"); ok {
		t.Error("LoadFile succeeded with no disk attached")
	}
	if _, ok := d.LoadFile("$"); ok {
		t.Error("directory load succeeded with no disk attached")
	}
}

func TestDirectoryListing(t *testing.T) {
	d := New(8)
	d.Attach(buildTestDisk(t), "test.d64")

	prg, ok := d.LoadFile("$")
	if !ok {
		t.Fatal("directory load failed")
	}

	// Load address $0801.
	if prg[0] != 0x01 || prg[1] != 0x08 {
		t.Errorf("directory load address incorrect: $%02X%02X", prg[1], prg[0])
	}

	// First line links forward and has line number 0.
	link := uint16(prg[2]) | uint16(prg[3])<<8
	if link <= 0x0801 {
		t.Errorf("first line link incorrect: $%04X", link)
	}
	if prg[4] != 0 || prg[5] != 0 {
		t.Errorf("header line number incorrect: %d", uint16(prg[4])|uint16(prg[5])<<8)
	}

	// Program ends with the $0000 marker.
	if prg[len(prg)-2] != 0 || prg[len(prg)-1] != 0 {
		t.Error("directory missing end-of-program marker")
	}
}

func TestSaveFile(t *testing.T) {
	d := New(8)

	data := []byte{0x00, 0xc0, 0x11, 0x22}
	if err := d.SaveFile("SAVED", data); err != nil {
		t.Fatal(err)
	}

	// Saved files load back even without a disk.
	loaded, ok := d.LoadFile("saved")
	if !ok {
		t.Fatal("LoadFile failed for saved file")
	}
	if len(loaded) != 4 || loaded[0] != 0x00 || loaded[1] != 0xc0 {
		t.Errorf("saved file data incorrect: %v", loaded)
	}

	if err := d.SaveFile("X", []byte{0x01}); err == nil {
		t.Error("SaveFile accepted file without load address")
	}
}

func TestStatus(t *testing.T) {
	d := New(8)
	if got := d.Status(); got != "74,DRIVE NOT READY,00,00" {
		t.Errorf("status incorrect: %q", got)
	}
	d.Attach(buildTestDisk(t), "test.d64")
	if got := d.Status(); got != "00, OK,00,00" {
		t.Errorf("status incorrect: %q", got)
	}
}

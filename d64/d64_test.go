package d64

import (
	"strings"
	"testing"
)

// buildTestImage creates a minimal in-memory disk image containing a
// single PRG file named "HELLO" whose data lives on track 1, sector 0.
func buildTestImage(t *testing.T) *Image {
	t.Helper()

	data := make([]byte, SizeStandard)

	// BAM on track 18, sector 0: disk name and ID.
	bamOff, err := offset(18, 0)
	if err != nil {
		t.Fatal(err)
	}
	copy(data[bamOff+0x90:], "TESTDISK")
	for i := len("TESTDISK"); i < 16; i++ {
		data[bamOff+0x90+i] = 0xa0
	}
	copy(data[bamOff+0xa2:], "2A")

	// Directory sector on track 18, sector 1 with one entry.
	dirOff, err := offset(18, 1)
	if err != nil {
		t.Fatal(err)
	}
	entry := data[dirOff+2 : dirOff+2+32]
	entry[0] = 0x82 // closed PRG
	entry[1] = 1    // start track
	entry[2] = 0    // start sector
	copy(entry[3:19], "HELLO")
	for i := len("HELLO"); i < 16; i++ {
		entry[3+i] = 0xa0
	}
	entry[28] = 1 // blocks, little endian
	entry[29] = 0

	// File data on track 1, sector 0: final sector, 6 bytes used.
	payload := []byte{0x01, 0x08, 0xaa, 0xbb, 0xcc, 0xdd}
	data[0] = 0 // no next track
	data[1] = byte(len(payload))
	copy(data[2:], payload)

	im, err := New(data)
	if err != nil {
		t.Fatal(err)
	}
	return im
}

func TestImageSize(t *testing.T) {
	if _, err := New(make([]byte, 1000)); err == nil {
		t.Error("expected size error for short image")
	}
	if _, err := New(make([]byte, SizeWithErrors)); err != nil {
		t.Errorf("unexpected error for image with error bytes: %v", err)
	}
}

func TestGeometry(t *testing.T) {
	// Track zone boundaries.
	cases := []struct {
		track, sectors int
	}{
		{1, 21}, {17, 21}, {18, 19}, {24, 19}, {25, 18}, {30, 18}, {31, 17}, {35, 17},
	}
	for _, c := range cases {
		if got := sectorsInTrack(c.track); got != c.sectors {
			t.Errorf("track %d sectors incorrect. exp: %d, got: %d", c.track, c.sectors, got)
		}
	}

	im := buildTestImage(t)
	if _, err := im.ReadSector(36, 0); err == nil {
		t.Error("expected geometry error for track 36")
	}
	if _, err := im.ReadSector(18, 19); err == nil {
		t.Error("expected geometry error for sector 19 on track 18")
	}
}

func TestBAM(t *testing.T) {
	im := buildTestImage(t)
	name, id, err := im.BAM()
	if err != nil {
		t.Fatal(err)
	}
	if name != "TESTDISK" {
		t.Errorf("disk name incorrect. exp: TESTDISK, got: %q", name)
	}
	if id != "2A" {
		t.Errorf("disk ID incorrect. exp: 2A, got: %q", id)
	}
}

func TestDirectory(t *testing.T) {
	im := buildTestImage(t)
	entries, err := im.Directory()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("directory length incorrect. exp: 1, got: %d", len(entries))
	}

	e := entries[0]
	if e.Name != "HELLO" || e.Type != FilePRG || e.Track != 1 || e.Sector != 0 || e.Blocks != 1 {
		t.Errorf("directory entry incorrect: %+v", e)
	}
}

func TestDirectoryFinalSector(t *testing.T) {
	data := make([]byte, SizeStandard)

	// Directory chain 18/1 -> 35/16, the image's last sector.
	dirOff, err := offset(18, 1)
	if err != nil {
		t.Fatal(err)
	}
	data[dirOff] = 35
	data[dirOff+1] = 16

	lastOff, err := offset(35, 16)
	if err != nil {
		t.Fatal(err)
	}
	if lastOff+SectorSize != SizeStandard {
		t.Fatalf("sector 35/16 offset incorrect: %d", lastOff)
	}

	// An entry in the last sector's final slot.
	entry := data[lastOff+2+7*32:]
	entry[0] = 0x82 // closed PRG
	entry[1] = 1
	entry[2] = 0
	copy(entry[3:19], "LAST")
	for i := len("LAST"); i < 16; i++ {
		entry[3+i] = 0xa0
	}
	entry[28] = 1

	im, err := New(data)
	if err != nil {
		t.Fatal(err)
	}
	entries, err := im.Directory()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name != "LAST" {
		t.Errorf("directory entries incorrect: %+v", entries)
	}
}

func TestReadFile(t *testing.T) {
	im := buildTestImage(t)
	e, ok := im.FindFile(`"hello"`)
	if !ok {
		t.Fatal("FindFile failed for HELLO")
	}

	data, err := im.ReadFile(e)
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{0x01, 0x08, 0xaa, 0xbb, 0xcc, 0xdd}
	if len(data) != len(want) {
		t.Fatalf("file length incorrect. exp: %d, got: %d", len(want), len(data))
	}
	for i := range want {
		if data[i] != want[i] {
			t.Errorf("file byte %d incorrect. exp: $%02X, got: $%02X", i, want[i], data[i])
		}
	}
}

func TestListingText(t *testing.T) {
	im := buildTestImage(t)
	text, err := im.ListingText()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, `"TESTDISK"`) {
		t.Errorf("listing missing disk name: %q", text)
	}
	if !strings.Contains(text, "HELLO") || !strings.Contains(text, "PRG") {
		t.Errorf("listing missing file entry: %q", text)
	}
	if !strings.Contains(text, "663 BLOCKS FREE.") {
		t.Errorf("listing missing blocks free: %q", text)
	}
}

// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package d64 reads Commodore 1541 disk images in the D64 format: 35
// tracks of 256-byte sectors, with the directory and block availability
// map stored on track 18.
package d64

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// D64 image sizes and disk geometry constants.
const (
	SizeStandard   = 174848 // 35-track image without error bytes
	SizeWithErrors = 175531 // 35-track image with error bytes appended
	TotalBlocks    = 664    // usable blocks on a standard 1541 disk
	SectorSize     = 256

	dirTrack  = 1 + 17 // track 18 holds the BAM and directory
	bamSector = 0
	dirSector = 1
)

// Errors returned by the image reader.
var (
	ErrImageSize = errors.New("invalid d64 image size")
	ErrGeometry  = errors.New("track or sector out of range")
)

// A FileType identifies the type of a directory entry.
type FileType byte

// File types stored in the low 3 bits of a directory entry's type byte.
const (
	FileDEL FileType = iota
	FileSEQ
	FilePRG
	FileUSR
	FileREL
)

// String returns the 3-letter type code the 1541 DOS displays.
func (t FileType) String() string {
	switch t {
	case FileDEL:
		return "DEL"
	case FileSEQ:
		return "SEQ"
	case FilePRG:
		return "PRG"
	case FileUSR:
		return "USR"
	case FileREL:
		return "REL"
	}
	return "???"
}

// A DirEntry describes one file in the disk directory.
type DirEntry struct {
	Type   FileType // file type (low 3 bits of the type byte)
	Name   string   // file name, PETSCII converted to ASCII
	Track  byte     // first track of the file chain
	Sector byte     // first sector of the file chain
	Blocks int      // file size in blocks
}

// An Image holds a parsed D64 disk image. The image data is never
// modified; writes are handled above this layer.
type Image struct {
	data []byte
}

// New creates an image from raw D64 data. The data length must match one
// of the two valid 35-track image sizes.
func New(data []byte) (*Image, error) {
	if len(data) != SizeStandard && len(data) != SizeWithErrors {
		return nil, fmt.Errorf("%w: %d bytes (expected %d or %d)",
			ErrImageSize, len(data), SizeStandard, SizeWithErrors)
	}
	return &Image{data: data}, nil
}

// Load reads and parses a D64 image file.
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(data)
}

// sectorsInTrack returns the number of sectors on a track. The 1541
// packs fewer sectors onto the shorter inner tracks.
func sectorsInTrack(track int) int {
	switch {
	case track >= 1 && track <= 17:
		return 21
	case track <= 24:
		return 19
	case track <= 30:
		return 18
	case track <= 35:
		return 17
	}
	return 0
}

// offset converts a track/sector pair to a byte offset within the image.
func offset(track, sector int) (int, error) {
	n := sectorsInTrack(track)
	if n == 0 || sector < 0 || sector >= n {
		return 0, fmt.Errorf("%w: track %d sector %d", ErrGeometry, track, sector)
	}
	off := 0
	for t := 1; t < track; t++ {
		off += sectorsInTrack(t) * SectorSize
	}
	return off + sector*SectorSize, nil
}

// ReadSector returns the 256 bytes of a single sector.
func (im *Image) ReadSector(track, sector int) ([]byte, error) {
	off, err := offset(track, sector)
	if err != nil {
		return nil, err
	}
	return im.data[off : off+SectorSize], nil
}

// BAM returns the disk name and ID stored in the block availability map
// on track 18, sector 0.
func (im *Image) BAM() (name, id string, err error) {
	bam, err := im.ReadSector(dirTrack, bamSector)
	if err != nil {
		return "", "", err
	}
	name = strings.TrimRight(petsciiToASCII(bam[0x90:0xa0]), " ")
	id = strings.TrimRight(petsciiToASCII(bam[0xa2:0xa4]), " ")
	return name, id, nil
}

// Directory walks the directory chain starting at track 18, sector 1 and
// returns all in-use entries. Each directory sector holds up to eight
// 32-byte entries following a 2-byte link.
func (im *Image) Directory() ([]DirEntry, error) {
	var entries []DirEntry

	track, sector := dirTrack, dirSector
	for track != 0 {
		sec, err := im.ReadSector(track, sector)
		if err != nil {
			return nil, err
		}

		for i := 0; i < 8; i++ {
			// Each 32-byte slot uses only its first 30 bytes; the final
			// slot's tail lies beyond the sector.
			e := sec[2+i*32 : 2+i*32+30]
			typeByte := e[0]
			if typeByte == 0 {
				// Scratched or unused slot.
				continue
			}
			startTrack := e[1]
			if startTrack == 0 {
				continue
			}
			entries = append(entries, DirEntry{
				Type:   FileType(typeByte & 0x07),
				Name:   strings.TrimRight(petsciiToASCII(e[3:19]), " "),
				Track:  startTrack,
				Sector: e[2],
				Blocks: int(e[28]) | int(e[29])<<8,
			})
		}

		track, sector = int(sec[0]), int(sec[1])
	}

	return entries, nil
}

// FindFile looks up a directory entry by name. The comparison is
// case-insensitive and ignores surrounding quotes and spaces.
func (im *Image) FindFile(name string) (DirEntry, bool) {
	clean := strings.ToUpper(strings.Trim(strings.TrimSpace(name), `"`))
	entries, err := im.Directory()
	if err != nil {
		return DirEntry{}, false
	}
	for _, e := range entries {
		if strings.ToUpper(e.Name) == clean {
			return e, true
		}
	}
	return DirEntry{}, false
}

// ReadFile follows a file's sector chain and returns its data. Each
// sector begins with a 2-byte link to the next track/sector; in the final
// sector the link's second byte holds the number of bytes used.
func (im *Image) ReadFile(e DirEntry) ([]byte, error) {
	var data []byte

	track, sector := int(e.Track), int(e.Sector)
	for track != 0 {
		sec, err := im.ReadSector(track, sector)
		if err != nil {
			return nil, err
		}

		nextTrack, nextSector := int(sec[0]), int(sec[1])
		if nextTrack == 0 {
			used := nextSector
			if used < 1 {
				used = 1
			}
			data = append(data, sec[2:2+used]...)
		} else {
			data = append(data, sec[2:SectorSize]...)
		}

		track, sector = nextTrack, nextSector
	}

	return data, nil
}

// ListingText formats the directory the way the C64 displays it after
// LOAD"$",8 and LIST.
func (im *Image) ListingText() (string, error) {
	name, id, err := im.BAM()
	if err != nil {
		return "", err
	}
	entries, err := im.Directory()
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "0 %q %s\n", name, id)

	used := 0
	for _, e := range entries {
		fmt.Fprintf(&sb, "%4d \"%-16s\" %s\n", e.Blocks, e.Name, e.Type)
		used += e.Blocks
	}

	free := TotalBlocks - used
	if free < 0 {
		free = 0
	}
	fmt.Fprintf(&sb, "%d BLOCKS FREE.", free)
	return sb.String(), nil
}

// petsciiToASCII converts PETSCII text to uppercase ASCII. Shifted
// spaces (the 0xA0 padding used in names) and nulls become spaces, and
// PETSCII lowercase letters map to their uppercase ASCII forms.
func petsciiToASCII(data []byte) string {
	out := make([]byte, len(data))
	for i, b := range data {
		switch {
		case b == 0xa0 || b == 0x00 || b == 0x20:
			out[i] = ' '
		case b >= 0x41 && b <= 0x5a: // A-Z
			out[i] = b
		case b >= 0x61 && b <= 0x7a: // PETSCII lowercase
			out[i] = b - 0x20
		case b >= 0x21 && b <= 0x40: // digits and punctuation
			out[i] = b
		case b >= 0x5b && b <= 0x60:
			out[i] = b
		default:
			out[i] = '?'
		}
	}
	return string(out)
}

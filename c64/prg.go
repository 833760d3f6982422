// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package c64

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrPRGShort is returned for PRG data too short to hold the 2-byte
// load-address header.
var ErrPRGShort = errors.New("prg data missing load address header")

// ParsePRG splits PRG data into its little-endian load address and
// payload. The payload is a subslice of the input, not a copy.
func ParsePRG(data []byte) (addr uint16, payload []byte, err error) {
	if len(data) < 2 {
		return 0, nil, ErrPRGShort
	}
	return uint16(data[0]) | uint16(data[1])<<8, data[2:], nil
}

// ReadPRGFile reads and parses a PRG file.
func ReadPRGFile(path string) (addr uint16, payload []byte, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, err
	}
	addr, payload, err = ParsePRG(data)
	if err != nil {
		return 0, nil, fmt.Errorf("%s: %w", path, err)
	}
	return addr, payload, nil
}

// WritePRG writes a load-address header followed by the payload.
func WritePRG(w io.Writer, addr uint16, payload []byte) error {
	if _, err := w.Write([]byte{byte(addr), byte(addr >> 8)}); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package c64

import "errors"

// KERNAL zero-page and buffer locations for keyboard and screen state.
const (
	addrKeyBufLen = 0x00c6 // pending key count
	addrCursorCol = 0x00d3
	addrCursorRow = 0x00d6
	addrBlinkSw   = 0x00cc // cursor blink enable
	addrBlinkCt   = 0x00cd // cursor blink countdown
	addrKeyBuf    = 0x0277 // keyboard buffer, 10 bytes
	addrScreen    = 0x0400

	keyBufCap  = 10
	ScreenCols = 40
	ScreenRows = 25
)

// ErrKeyBufferFull is returned when a key is posted to a full keyboard
// buffer. The key is dropped.
var ErrKeyBufferFull = errors.New("keyboard buffer full")

// PostKey appends a PETSCII code to the KERNAL keyboard buffer. The
// buffer holds at most 10 pending keys; excess input is dropped and
// reported to the caller.
func (m *Memory) PostKey(code byte) error {
	n := m.ram[addrKeyBufLen]
	if n >= keyBufCap {
		return ErrKeyBufferFull
	}
	m.ram[addrKeyBuf+uint16(n)] = code
	m.ram[addrKeyBufLen] = n + 1
	return nil
}

// PostString converts an ASCII string to PETSCII and posts each
// character to the keyboard buffer. It returns the number of keys
// actually posted; characters with no PETSCII form are skipped, and
// posting stops at the first full-buffer error.
func (m *Memory) PostString(s string) (int, error) {
	posted := 0
	for i := 0; i < len(s); i++ {
		code, ok := asciiToPETSCII(s[i])
		if !ok {
			continue
		}
		if err := m.PostKey(code); err != nil {
			return posted, err
		}
		posted++
	}
	return posted, nil
}

// asciiToPETSCII converts a single ASCII character to the PETSCII code
// the KERNAL expects in its keyboard buffer.
func asciiToPETSCII(ch byte) (byte, bool) {
	switch {
	case ch == '\r' || ch == '\n':
		return 0x0d, true
	case ch >= 'a' && ch <= 'z':
		return ch - 0x20, true
	case ch >= 0x20 && ch <= 0x5f:
		return ch, true
	}
	return 0, false
}

// screenToASCII converts a screen-matrix code to a printable ASCII
// character for text rendering. The reverse-video bit is ignored.
func screenToASCII(code byte) byte {
	c := code & 0x7f
	switch {
	case c == 0x00:
		return '@'
	case c >= 0x01 && c <= 0x1a:
		return 'A' + c - 1
	case c == 0x1b:
		return '['
	case c == 0x1d:
		return ']'
	case c >= 0x20 && c <= 0x3f:
		return c
	}
	return '.'
}

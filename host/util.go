// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"fmt"
	"strconv"
	"strings"
)

func codeString(b []byte) string {
	switch len(b) {
	case 1:
		return fmt.Sprintf("%02X", b[0])
	case 2:
		return fmt.Sprintf("%02X %02X", b[0], b[1])
	case 3:
		return fmt.Sprintf("%02X %02X %02X", b[0], b[1], b[2])
	default:
		return ""
	}
}

func stringToBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "0", "false":
		return false, nil
	case "1", "true":
		return true, nil
	default:
		return false, fmt.Errorf("invalid bool value '%s'", s)
	}
}

// parseValue converts a numeric token to a value. A leading '$' or '0x'
// forces hexadecimal and '%' forces binary; otherwise the hexMode flag
// selects the default base. Tokens that are not numbers are passed to
// the resolver.
func parseValue(s string, hexMode bool, resolve func(string) (int64, error)) (int64, error) {
	if s == "" {
		return 0, fmt.Errorf("empty expression")
	}

	neg := false
	if s[0] == '-' {
		neg, s = true, s[1:]
	}

	base := 10
	if hexMode {
		base = 16
	}
	switch {
	case strings.HasPrefix(s, "$"):
		base, s = 16, s[1:]
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		base, s = 16, s[2:]
	case strings.HasPrefix(s, "%"):
		base, s = 2, s[1:]
	}

	v, err := strconv.ParseInt(s, base, 64)
	if err != nil {
		if resolve != nil {
			return resolve(s)
		}
		return 0, fmt.Errorf("invalid value '%s'", s)
	}
	if neg {
		v = -v
	}
	return v, nil
}

// parseUint parses a non-negative decimal, hex, or binary value.
func parseUint(s string) (uint64, error) {
	v, err := parseValue(s, false, nil)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("value '%s' must not be negative", s)
	}
	return uint64(v), nil
}

var hexString = "0123456789ABCDEF"

func addrToBuf(addr uint16, b []byte) {
	b[0] = hexString[(addr>>12)&0xf]
	b[1] = hexString[(addr>>8)&0xf]
	b[2] = hexString[(addr>>4)&0xf]
	b[3] = hexString[addr&0xf]
}

func byteToBuf(v byte, b []byte) {
	b[0] = hexString[(v>>4)&0xf]
	b[1] = hexString[v&0xf]
}

func toPrintableChar(v byte) byte {
	switch {
	case v >= 32 && v < 127:
		return v
	case v >= 160 && v < 255:
		return v - 128
	default:
		return '.'
	}
}

// indentWrap wraps text to 80 columns with the requested indentation.
func indentWrap(indent int, s string) string {
	var sb strings.Builder
	prefix := strings.Repeat(" ", indent)
	width := 80 - indent

	for _, word := range strings.Fields(s) {
		switch {
		case sb.Len() == 0:
			sb.WriteString(prefix)
		case lineLen(&sb)+1+len(word) > width:
			sb.WriteByte('\n')
			sb.WriteString(prefix)
		default:
			sb.WriteByte(' ')
		}
		sb.WriteString(word)
	}
	return sb.String()
}

func lineLen(sb *strings.Builder) int {
	s := sb.String()
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return len(s) - i - 1
	}
	return len(s)
}

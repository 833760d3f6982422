// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package c64

// A VideoStandard selects the PAL or NTSC timing constants. Only cycle
// counts are modeled; there is no raster-exact video timing.
type VideoStandard int

// Supported video standards.
const (
	PAL VideoStandard = iota
	NTSC
)

func (v VideoStandard) String() string {
	if v == NTSC {
		return "ntsc"
	}
	return "pal"
}

// ClockHz returns the CPU clock frequency in Hz.
func (v VideoStandard) ClockHz() int {
	if v == NTSC {
		return 985248
	}
	return 1022727
}

// cyclesPerLine returns the CPU cycles consumed per raster line.
func (v VideoStandard) cyclesPerLine() uint64 {
	if v == NTSC {
		return 65
	}
	return 63
}

// rasterLines returns the number of raster lines per frame.
func (v VideoStandard) rasterLines() uint64 {
	if v == NTSC {
		return 263
	}
	return 312
}

// CyclesPerFrame returns the CPU cycles consumed per video frame, used
// to pace the periodic system IRQ.
func (v VideoStandard) CyclesPerFrame() uint64 {
	return v.cyclesPerLine() * v.rasterLines()
}

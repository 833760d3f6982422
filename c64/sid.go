// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package c64

// SID register layout.
const (
	sidRegCount    = 0x20
	sidVoices      = 3
	sidVoiceStride = 7
	sidVolumeReg   = 0x18
)

// Voice control register bits.
const (
	sidGateBit     = 0x01
	sidTriangleBit = 0x10
	sidSawtoothBit = 0x20
	sidPulseBit    = 0x40
	sidNoiseBit    = 0x80
)

// A Waveform identifies the oscillator shape selected by a voice's
// control register.
type Waveform int

// Voice waveforms.
const (
	WaveNone Waveform = iota
	WaveTriangle
	WaveSawtooth
	WavePulse
	WaveNoise
)

// A SID is a register-level stub of the SID sound chip. It stores the 32
// registers and exposes the derived voice parameters an external audio
// synthesizer needs; no samples are produced here.
type SID struct {
	regs    [sidRegCount]byte
	clockHz float64
	noise   [sidVoices]uint32
}

func newSID(standard VideoStandard) *SID {
	return &SID{
		clockHz: float64(standard.ClockHz()),
		noise:   [sidVoices]uint32{0x7fffff, 0x5aaaaa, 0x33cccc},
	}
}

// ReadReg returns the stored value of a register.
func (s *SID) ReadReg(reg byte) byte {
	return s.regs[reg&0x1f]
}

// WriteReg stores a register value.
func (s *SID) WriteReg(reg, val byte) {
	s.regs[reg&0x1f] = val
}

// Volume returns the master volume (0-15).
func (s *SID) Volume() byte {
	return s.regs[sidVolumeReg] & 0x0f
}

// VoiceGate reports whether a voice's gate bit is set.
func (s *SID) VoiceGate(voice int) bool {
	return s.regs[voice*sidVoiceStride+4]&sidGateBit != 0
}

// VoiceWaveform returns the waveform selected by a voice's control
// register. When multiple waveform bits are set, sawtooth wins over
// triangle, then pulse, then noise.
func (s *SID) VoiceWaveform(voice int) Waveform {
	control := s.regs[voice*sidVoiceStride+4]
	switch {
	case control&sidSawtoothBit != 0:
		return WaveSawtooth
	case control&sidTriangleBit != 0:
		return WaveTriangle
	case control&sidPulseBit != 0:
		return WavePulse
	case control&sidNoiseBit != 0:
		return WaveNoise
	}
	return WaveNone
}

// VoiceFreqHz returns a voice's oscillator frequency in Hz.
func (s *SID) VoiceFreqHz(voice int) float64 {
	base := voice * sidVoiceStride
	reg := uint16(s.regs[base]) | uint16(s.regs[base+1])<<8
	return float64(reg) * s.clockHz / 65536.0
}

// VoicePulseDuty returns a voice's pulse duty cycle, clamped to the
// range an audio backend can render without clicking.
func (s *SID) VoicePulseDuty(voice int) float64 {
	base := voice * sidVoiceStride
	width := uint16(s.regs[base+3]&0x0f)<<8 | uint16(s.regs[base+2])
	duty := float64(width) / 4096.0
	if duty < 0.05 {
		duty = 0.05
	}
	if duty > 0.95 {
		duty = 0.95
	}
	return duty
}

// AdvanceNoise steps a voice's 23-bit noise LFSR and returns the new
// state. The feedback taps are bits 22 and 17.
func (s *SID) AdvanceNoise(voice int) uint32 {
	state := s.noise[voice]
	feedback := (state>>22 ^ state>>17) & 1
	state = (state<<1 | feedback) & 0x7fffff
	s.noise[voice] = state
	return state
}

// Active reports whether any voice would produce audible output: master
// volume nonzero and at least one gated voice with a waveform and a
// nonzero frequency.
func (s *SID) Active() bool {
	if s.Volume() == 0 {
		return false
	}
	for voice := 0; voice < sidVoices; voice++ {
		if !s.VoiceGate(voice) {
			continue
		}
		if s.VoiceWaveform(voice) == WaveNone {
			continue
		}
		base := voice * sidVoiceStride
		if s.regs[base] == 0 && s.regs[base+1] == 0 {
			continue
		}
		return true
	}
	return false
}

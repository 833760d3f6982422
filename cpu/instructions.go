// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cpu

import "strings"

// An opsym is an internal symbol used to associate an opcode's data
// with its instructions.
type opsym byte

const (
	symADC opsym = iota
	symAND
	symASL
	symBCC
	symBCS
	symBEQ
	symBIT
	symBMI
	symBNE
	symBPL
	symBRK
	symBVC
	symBVS
	symCLC
	symCLD
	symCLI
	symCLV
	symCMP
	symCPX
	symCPY
	symDEC
	symDEX
	symDEY
	symEOR
	symINC
	symINX
	symINY
	symJMP
	symJSR
	symLDA
	symLDX
	symLDY
	symLSR
	symNOP
	symORA
	symPHA
	symPHP
	symPLA
	symPLP
	symROL
	symROR
	symRTI
	symRTS
	symSBC
	symSEC
	symSED
	symSEI
	symSTA
	symSTX
	symSTY
	symTAX
	symTAY
	symTSX
	symTXA
	symTXS
	symTYA
)

type instfunc func(c *CPU, inst *Instruction, operand []byte)

// Emulator implementation for each opcode
type opcodeImpl struct {
	sym  opsym
	name string
	fn   instfunc
}

var impl = []opcodeImpl{
	{symADC, "ADC", (*CPU).adc},
	{symAND, "AND", (*CPU).and},
	{symASL, "ASL", (*CPU).asl},
	{symBCC, "BCC", (*CPU).bcc},
	{symBCS, "BCS", (*CPU).bcs},
	{symBEQ, "BEQ", (*CPU).beq},
	{symBIT, "BIT", (*CPU).bit},
	{symBMI, "BMI", (*CPU).bmi},
	{symBNE, "BNE", (*CPU).bne},
	{symBPL, "BPL", (*CPU).bpl},
	{symBRK, "BRK", (*CPU).brk},
	{symBVC, "BVC", (*CPU).bvc},
	{symBVS, "BVS", (*CPU).bvs},
	{symCLC, "CLC", (*CPU).clc},
	{symCLD, "CLD", (*CPU).cld},
	{symCLI, "CLI", (*CPU).cli},
	{symCLV, "CLV", (*CPU).clv},
	{symCMP, "CMP", (*CPU).cmp},
	{symCPX, "CPX", (*CPU).cpx},
	{symCPY, "CPY", (*CPU).cpy},
	{symDEC, "DEC", (*CPU).dec},
	{symDEX, "DEX", (*CPU).dex},
	{symDEY, "DEY", (*CPU).dey},
	{symEOR, "EOR", (*CPU).eor},
	{symINC, "INC", (*CPU).inc},
	{symINX, "INX", (*CPU).inx},
	{symINY, "INY", (*CPU).iny},
	{symJMP, "JMP", (*CPU).jmp},
	{symJSR, "JSR", (*CPU).jsr},
	{symLDA, "LDA", (*CPU).lda},
	{symLDX, "LDX", (*CPU).ldx},
	{symLDY, "LDY", (*CPU).ldy},
	{symLSR, "LSR", (*CPU).lsr},
	{symNOP, "NOP", (*CPU).nop},
	{symORA, "ORA", (*CPU).ora},
	{symPHA, "PHA", (*CPU).pha},
	{symPHP, "PHP", (*CPU).php},
	{symPLA, "PLA", (*CPU).pla},
	{symPLP, "PLP", (*CPU).plp},
	{symROL, "ROL", (*CPU).rol},
	{symROR, "ROR", (*CPU).ror},
	{symRTI, "RTI", (*CPU).rti},
	{symRTS, "RTS", (*CPU).rts},
	{symSBC, "SBC", (*CPU).sbc},
	{symSEC, "SEC", (*CPU).sec},
	{symSED, "SED", (*CPU).sed},
	{symSEI, "SEI", (*CPU).sei},
	{symSTA, "STA", (*CPU).sta},
	{symSTX, "STX", (*CPU).stx},
	{symSTY, "STY", (*CPU).sty},
	{symTAX, "TAX", (*CPU).tax},
	{symTAY, "TAY", (*CPU).tay},
	{symTSX, "TSX", (*CPU).tsx},
	{symTXA, "TXA", (*CPU).txa},
	{symTXS, "TXS", (*CPU).txs},
	{symTYA, "TYA", (*CPU).tya},
}

// Mode describes a memory addressing mode.
type Mode byte

// All possible memory addressing modes
const (
	IMM Mode = iota // Immediate
	IMP             // Implied (no operand)
	REL             // Relative
	ZPG             // Zero Page
	ZPX             // Zero Page,X
	ZPY             // Zero Page,Y
	ABS             // Absolute
	ABX             // Absolute,X
	ABY             // Absolute,Y
	IND             // (Indirect)
	IDX             // (Indirect,X)
	IDY             // (Indirect),Y
	ACC             // Accumulator (no operand)
)

// Opcode data for an (opcode, mode) pair
type opcodeData struct {
	sym      opsym // internal opcode symbol
	mode     Mode  // addressing mode
	opcode   byte  // opcode hex value
	length   byte  // length of opcode + operand in bytes
	cycles   byte  // number of CPU cycles to execute command
	bpcycles byte  // additional CPU cycles if command crosses page boundary
}

// All documented NMOS (opcode, mode) pairs
var data = []opcodeData{
	{symLDA, IMM, 0xa9, 2, 2, 0},
	{symLDA, ZPG, 0xa5, 2, 3, 0},
	{symLDA, ZPX, 0xb5, 2, 4, 0},
	{symLDA, ABS, 0xad, 3, 4, 0},
	{symLDA, ABX, 0xbd, 3, 4, 1},
	{symLDA, ABY, 0xb9, 3, 4, 1},
	{symLDA, IDX, 0xa1, 2, 6, 0},
	{symLDA, IDY, 0xb1, 2, 5, 1},

	{symLDX, IMM, 0xa2, 2, 2, 0},
	{symLDX, ZPG, 0xa6, 2, 3, 0},
	{symLDX, ZPY, 0xb6, 2, 4, 0},
	{symLDX, ABS, 0xae, 3, 4, 0},
	{symLDX, ABY, 0xbe, 3, 4, 1},

	{symLDY, IMM, 0xa0, 2, 2, 0},
	{symLDY, ZPG, 0xa4, 2, 3, 0},
	{symLDY, ZPX, 0xb4, 2, 4, 0},
	{symLDY, ABS, 0xac, 3, 4, 0},
	{symLDY, ABX, 0xbc, 3, 4, 1},

	{symSTA, ZPG, 0x85, 2, 3, 0},
	{symSTA, ZPX, 0x95, 2, 4, 0},
	{symSTA, ABS, 0x8d, 3, 4, 0},
	{symSTA, ABX, 0x9d, 3, 5, 0},
	{symSTA, ABY, 0x99, 3, 5, 0},
	{symSTA, IDX, 0x81, 2, 6, 0},
	{symSTA, IDY, 0x91, 2, 6, 0},

	{symSTX, ZPG, 0x86, 2, 3, 0},
	{symSTX, ZPY, 0x96, 2, 4, 0},
	{symSTX, ABS, 0x8e, 3, 4, 0},

	{symSTY, ZPG, 0x84, 2, 3, 0},
	{symSTY, ZPX, 0x94, 2, 4, 0},
	{symSTY, ABS, 0x8c, 3, 4, 0},

	{symADC, IMM, 0x69, 2, 2, 0},
	{symADC, ZPG, 0x65, 2, 3, 0},
	{symADC, ZPX, 0x75, 2, 4, 0},
	{symADC, ABS, 0x6d, 3, 4, 0},
	{symADC, ABX, 0x7d, 3, 4, 1},
	{symADC, ABY, 0x79, 3, 4, 1},
	{symADC, IDX, 0x61, 2, 6, 0},
	{symADC, IDY, 0x71, 2, 5, 1},

	{symSBC, IMM, 0xe9, 2, 2, 0},
	{symSBC, ZPG, 0xe5, 2, 3, 0},
	{symSBC, ZPX, 0xf5, 2, 4, 0},
	{symSBC, ABS, 0xed, 3, 4, 0},
	{symSBC, ABX, 0xfd, 3, 4, 1},
	{symSBC, ABY, 0xf9, 3, 4, 1},
	{symSBC, IDX, 0xe1, 2, 6, 0},
	{symSBC, IDY, 0xf1, 2, 5, 1},

	{symCMP, IMM, 0xc9, 2, 2, 0},
	{symCMP, ZPG, 0xc5, 2, 3, 0},
	{symCMP, ZPX, 0xd5, 2, 4, 0},
	{symCMP, ABS, 0xcd, 3, 4, 0},
	{symCMP, ABX, 0xdd, 3, 4, 1},
	{symCMP, ABY, 0xd9, 3, 4, 1},
	{symCMP, IDX, 0xc1, 2, 6, 0},
	{symCMP, IDY, 0xd1, 2, 5, 1},

	{symCPX, IMM, 0xe0, 2, 2, 0},
	{symCPX, ZPG, 0xe4, 2, 3, 0},
	{symCPX, ABS, 0xec, 3, 4, 0},

	{symCPY, IMM, 0xc0, 2, 2, 0},
	{symCPY, ZPG, 0xc4, 2, 3, 0},
	{symCPY, ABS, 0xcc, 3, 4, 0},

	{symBIT, ZPG, 0x24, 2, 3, 0},
	{symBIT, ABS, 0x2c, 3, 4, 0},

	{symCLC, IMP, 0x18, 1, 2, 0},
	{symSEC, IMP, 0x38, 1, 2, 0},
	{symCLI, IMP, 0x58, 1, 2, 0},
	{symSEI, IMP, 0x78, 1, 2, 0},
	{symCLD, IMP, 0xd8, 1, 2, 0},
	{symSED, IMP, 0xf8, 1, 2, 0},
	{symCLV, IMP, 0xb8, 1, 2, 0},

	{symBCC, REL, 0x90, 2, 2, 1},
	{symBCS, REL, 0xb0, 2, 2, 1},
	{symBEQ, REL, 0xf0, 2, 2, 1},
	{symBNE, REL, 0xd0, 2, 2, 1},
	{symBMI, REL, 0x30, 2, 2, 1},
	{symBPL, REL, 0x10, 2, 2, 1},
	{symBVC, REL, 0x50, 2, 2, 1},
	{symBVS, REL, 0x70, 2, 2, 1},

	{symBRK, IMP, 0x00, 1, 7, 0},

	{symAND, IMM, 0x29, 2, 2, 0},
	{symAND, ZPG, 0x25, 2, 3, 0},
	{symAND, ZPX, 0x35, 2, 4, 0},
	{symAND, ABS, 0x2d, 3, 4, 0},
	{symAND, ABX, 0x3d, 3, 4, 1},
	{symAND, ABY, 0x39, 3, 4, 1},
	{symAND, IDX, 0x21, 2, 6, 0},
	{symAND, IDY, 0x31, 2, 5, 1},

	{symORA, IMM, 0x09, 2, 2, 0},
	{symORA, ZPG, 0x05, 2, 3, 0},
	{symORA, ZPX, 0x15, 2, 4, 0},
	{symORA, ABS, 0x0d, 3, 4, 0},
	{symORA, ABX, 0x1d, 3, 4, 1},
	{symORA, ABY, 0x19, 3, 4, 1},
	{symORA, IDX, 0x01, 2, 6, 0},
	{symORA, IDY, 0x11, 2, 5, 1},

	{symEOR, IMM, 0x49, 2, 2, 0},
	{symEOR, ZPG, 0x45, 2, 3, 0},
	{symEOR, ZPX, 0x55, 2, 4, 0},
	{symEOR, ABS, 0x4d, 3, 4, 0},
	{symEOR, ABX, 0x5d, 3, 4, 1},
	{symEOR, ABY, 0x59, 3, 4, 1},
	{symEOR, IDX, 0x41, 2, 6, 0},
	{symEOR, IDY, 0x51, 2, 5, 1},

	{symINC, ZPG, 0xe6, 2, 5, 0},
	{symINC, ZPX, 0xf6, 2, 6, 0},
	{symINC, ABS, 0xee, 3, 6, 0},
	{symINC, ABX, 0xfe, 3, 7, 0},

	{symDEC, ZPG, 0xc6, 2, 5, 0},
	{symDEC, ZPX, 0xd6, 2, 6, 0},
	{symDEC, ABS, 0xce, 3, 6, 0},
	{symDEC, ABX, 0xde, 3, 7, 0},

	{symINX, IMP, 0xe8, 1, 2, 0},
	{symINY, IMP, 0xc8, 1, 2, 0},

	{symDEX, IMP, 0xca, 1, 2, 0},
	{symDEY, IMP, 0x88, 1, 2, 0},

	{symJMP, ABS, 0x4c, 3, 3, 0},
	{symJMP, IND, 0x6c, 3, 5, 0},

	{symJSR, ABS, 0x20, 3, 6, 0},
	{symRTS, IMP, 0x60, 1, 6, 0},

	{symRTI, IMP, 0x40, 1, 6, 0},

	{symNOP, IMP, 0xea, 1, 2, 0},

	{symTAX, IMP, 0xaa, 1, 2, 0},
	{symTXA, IMP, 0x8a, 1, 2, 0},
	{symTAY, IMP, 0xa8, 1, 2, 0},
	{symTYA, IMP, 0x98, 1, 2, 0},
	{symTXS, IMP, 0x9a, 1, 2, 0},
	{symTSX, IMP, 0xba, 1, 2, 0},

	{symPHA, IMP, 0x48, 1, 3, 0},
	{symPLA, IMP, 0x68, 1, 4, 0},
	{symPHP, IMP, 0x08, 1, 3, 0},
	{symPLP, IMP, 0x28, 1, 4, 0},

	{symASL, ACC, 0x0a, 1, 2, 0},
	{symASL, ZPG, 0x06, 2, 5, 0},
	{symASL, ZPX, 0x16, 2, 6, 0},
	{symASL, ABS, 0x0e, 3, 6, 0},
	{symASL, ABX, 0x1e, 3, 7, 0},

	{symLSR, ACC, 0x4a, 1, 2, 0},
	{symLSR, ZPG, 0x46, 2, 5, 0},
	{symLSR, ZPX, 0x56, 2, 6, 0},
	{symLSR, ABS, 0x4e, 3, 6, 0},
	{symLSR, ABX, 0x5e, 3, 7, 0},

	{symROL, ACC, 0x2a, 1, 2, 0},
	{symROL, ZPG, 0x26, 2, 5, 0},
	{symROL, ZPX, 0x36, 2, 6, 0},
	{symROL, ABS, 0x2e, 3, 6, 0},
	{symROL, ABX, 0x3e, 3, 7, 0},

	{symROR, ACC, 0x6a, 1, 2, 0},
	{symROR, ZPG, 0x66, 2, 5, 0},
	{symROR, ZPX, 0x76, 2, 6, 0},
	{symROR, ABS, 0x6e, 3, 6, 0},
	{symROR, ABX, 0x7e, 3, 7, 0},
}

// Undocumented opcodes. The emulator implements none of their side effects;
// each one retires as a no-op with the length and cycle cost of the real
// illegal operation, so cycle accounting stays plausible and execution never
// halts on stray data.
type undocData struct {
	opcode byte
	mode   Mode
	length byte
	cycles byte
}

var undocumented = []undocData{
	{0x02, IMP, 1, 2},
	{0x03, IDX, 2, 8},
	{0x04, ZPG, 2, 3},
	{0x07, ZPG, 2, 5},
	{0x0b, IMM, 2, 2},
	{0x0c, ABS, 3, 4},
	{0x0f, ABS, 3, 6},
	{0x12, IMP, 1, 2},
	{0x13, IDY, 2, 8},
	{0x14, ZPX, 2, 4},
	{0x17, ZPX, 2, 6},
	{0x1a, IMP, 1, 2},
	{0x1b, ABY, 3, 7},
	{0x1c, ABX, 3, 4},
	{0x1f, ABX, 3, 7},
	{0x22, IMP, 1, 2},
	{0x23, IDX, 2, 8},
	{0x27, ZPG, 2, 5},
	{0x2b, IMM, 2, 2},
	{0x2f, ABS, 3, 6},
	{0x32, IMP, 1, 2},
	{0x33, IDY, 2, 8},
	{0x34, ZPX, 2, 4},
	{0x37, ZPX, 2, 6},
	{0x3a, IMP, 1, 2},
	{0x3b, ABY, 3, 7},
	{0x3c, ABX, 3, 4},
	{0x3f, ABX, 3, 7},
	{0x42, IMP, 1, 2},
	{0x43, IDX, 2, 8},
	{0x44, ZPG, 2, 3},
	{0x47, ZPG, 2, 5},
	{0x4b, IMM, 2, 2},
	{0x4f, ABS, 3, 6},
	{0x52, IMP, 1, 2},
	{0x53, IDY, 2, 8},
	{0x54, ZPX, 2, 4},
	{0x57, ZPX, 2, 6},
	{0x5a, IMP, 1, 2},
	{0x5b, ABY, 3, 7},
	{0x5c, ABX, 3, 4},
	{0x5f, ABX, 3, 7},
	{0x62, IMP, 1, 2},
	{0x63, IDX, 2, 8},
	{0x64, ZPG, 2, 3},
	{0x67, ZPG, 2, 5},
	{0x6b, IMM, 2, 2},
	{0x6f, ABS, 3, 6},
	{0x72, IMP, 1, 2},
	{0x73, IDY, 2, 8},
	{0x74, ZPX, 2, 4},
	{0x77, ZPX, 2, 6},
	{0x7a, IMP, 1, 2},
	{0x7b, ABY, 3, 7},
	{0x7c, ABX, 3, 4},
	{0x7f, ABX, 3, 7},
	{0x80, IMM, 2, 2},
	{0x82, IMM, 2, 2},
	{0x83, IDX, 2, 6},
	{0x87, ZPG, 2, 3},
	{0x89, IMM, 2, 2},
	{0x8b, IMM, 2, 2},
	{0x8f, ABS, 3, 4},
	{0x92, IMP, 1, 2},
	{0x93, IDY, 2, 6},
	{0x97, ZPY, 2, 4},
	{0x9b, ABY, 3, 5},
	{0x9c, ABX, 3, 5},
	{0x9e, ABY, 3, 5},
	{0x9f, ABY, 3, 5},
	{0xa3, IDX, 2, 6},
	{0xa7, ZPG, 2, 3},
	{0xab, IMM, 2, 2},
	{0xaf, ABS, 3, 4},
	{0xb2, IMP, 1, 2},
	{0xb3, IDY, 2, 5},
	{0xb7, ZPY, 2, 4},
	{0xbb, ABY, 3, 4},
	{0xbf, ABY, 3, 4},
	{0xc2, IMM, 2, 2},
	{0xc3, IDX, 2, 8},
	{0xc7, ZPG, 2, 5},
	{0xcb, IMM, 2, 2},
	{0xcf, ABS, 3, 6},
	{0xd2, IMP, 1, 2},
	{0xd3, IDY, 2, 8},
	{0xd4, ZPX, 2, 4},
	{0xd7, ZPX, 2, 6},
	{0xda, IMP, 1, 2},
	{0xdb, ABY, 3, 7},
	{0xdc, ABX, 3, 4},
	{0xdf, ABX, 3, 7},
	{0xe2, IMM, 2, 2},
	{0xe3, IDX, 2, 8},
	{0xe7, ZPG, 2, 5},
	{0xeb, IMM, 2, 2},
	{0xef, ABS, 3, 6},
	{0xf2, IMP, 1, 2},
	{0xf3, IDY, 2, 8},
	{0xf4, ZPX, 2, 4},
	{0xf7, ZPX, 2, 6},
	{0xfa, IMP, 1, 2},
	{0xfb, ABY, 3, 7},
	{0xfc, ABX, 3, 4},
	{0xff, ABX, 3, 7},
}

// An Instruction describes a CPU instruction, including its name,
// its addressing mode, its opcode value, its operand size, and its CPU cycle
// cost.
type Instruction struct {
	Name     string   // all-caps name of the instruction
	Mode     Mode     // addressing mode
	Opcode   byte     // hexadecimal opcode value
	Length   byte     // combined size of opcode and operand, in bytes
	Cycles   byte     // number of CPU cycles to execute the instruction
	BPCycles byte     // additional cycles required if boundary page crossed
	fn       instfunc // emulator implementation of the function
}

// An InstructionSet defines the set of all possible instructions that
// can run on the emulated CPU.
type InstructionSet struct {
	instructions [256]Instruction          // all instructions by opcode
	variants     map[string][]*Instruction // variants of each instruction
}

// Lookup retrieves a CPU instruction corresponding to the requested opcode.
func (s *InstructionSet) Lookup(opcode byte) *Instruction {
	return &s.instructions[opcode]
}

// GetInstructions returns all CPU instructions whose name matches the
// provided string.
func (s *InstructionSet) GetInstructions(name string) []*Instruction {
	return s.variants[strings.ToUpper(name)]
}

// Create the NMOS 6502 instruction set.
func newInstructionSet() *InstructionSet {
	set := &InstructionSet{}

	// Create a map from symbol to implementation for fast lookups.
	symToImpl := make(map[opsym]*opcodeImpl, len(impl))
	for i := range impl {
		symToImpl[impl[i].sym] = &impl[i]
	}

	// Create a map from instruction name to the slice of all instruction
	// variants matching that name.
	set.variants = make(map[string][]*Instruction)

	for _, d := range data {
		impl := symToImpl[d.sym]

		inst := &set.instructions[d.opcode]
		inst.Name = impl.name
		inst.Mode = d.mode
		inst.Opcode = d.opcode
		inst.Length = d.length
		inst.Cycles = d.cycles
		inst.BPCycles = d.bpcycles
		inst.fn = impl.fn

		set.variants[inst.Name] = append(set.variants[inst.Name], inst)
	}

	// Fill the remaining slots with undocumented opcodes.
	undocName := "???"
	for _, u := range undocumented {
		inst := &set.instructions[u.opcode]
		inst.Name = undocName
		inst.Mode = u.mode
		inst.Opcode = u.opcode
		inst.Length = u.length
		inst.Cycles = u.cycles
		inst.BPCycles = 0
		inst.fn = (*CPU).undocumented
	}

	for i := 0; i < 256; i++ {
		if set.instructions[i].Name == "" {
			panic("missing instruction")
		}
	}
	return set
}

var instructionSet *InstructionSet

// GetInstructionSet returns the NMOS 6502 instruction set, creating it on
// first use.
func GetInstructionSet() *InstructionSet {
	if instructionSet == nil {
		instructionSet = newInstructionSet()
	}
	return instructionSet
}

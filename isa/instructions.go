// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package isa describes the NMOS 6502 instruction set: its addressing
// modes, the opcode assigned to each valid (mnemonic, mode) pair, and the
// size of each encoded instruction.
package isa

import "strings"

// Mode describes a memory addressing mode.
//
// The modes are declared in the order an assembler should try them when
// guessing the mode of an operand.
type Mode byte

// All possible memory addressing modes
const (
	IMP Mode = iota // Implied (or accumulator)
	IMM             // Immediate
	ZPG             // Zero Page
	ZPX             // Zero Page,X
	ZPY             // Zero Page,Y
	IDX             // (Indirect,X), pre-indexed
	IDY             // (Indirect),Y, post-indexed
	IND             // (Indirect) absolute
	ABX             // Absolute,X
	ABY             // Absolute,Y
	ABS             // Absolute
	REL             // Relative
)

// Modes lists every addressing mode in detection order.
var Modes = []Mode{IMP, IMM, ZPG, ZPX, ZPY, IDX, IDY, IND, ABX, ABY, ABS, REL}

var modeName = []string{
	"Implied",
	"Immediate",
	"ZeroPage",
	"ZeroPageX",
	"ZeroPageY",
	"PreindexedIndirect",
	"PostindexedIndirect",
	"IndirectAbsolute",
	"AbsoluteX",
	"AbsoluteY",
	"Absolute",
	"Relative",
}

var modeSize = []int{0, 1, 1, 1, 1, 1, 1, 2, 2, 2, 2, 1}

func (m Mode) String() string {
	if int(m) < len(modeName) {
		return modeName[m]
	}
	return "Unknown"
}

// OperandSize returns the number of operand bytes that follow the opcode
// byte of an instruction using the mode.
func (m Mode) OperandSize() int {
	return modeSize[m]
}

// Opcode data for a (mnemonic, mode) pair
type opcodeData struct {
	name   string
	mode   Mode
	opcode byte
}

// All valid (mnemonic, mode) pairs
var data = []opcodeData{
	{"ADC", IMM, 0x69},
	{"ADC", ZPG, 0x65},
	{"ADC", ZPX, 0x75},
	{"ADC", ABS, 0x6d},
	{"ADC", ABX, 0x7d},
	{"ADC", ABY, 0x79},
	{"ADC", IDX, 0x61},
	{"ADC", IDY, 0x71},

	{"AND", IMM, 0x29},
	{"AND", ZPG, 0x25},
	{"AND", ZPX, 0x35},
	{"AND", ABS, 0x2d},
	{"AND", ABX, 0x3d},
	{"AND", ABY, 0x39},
	{"AND", IDX, 0x21},
	{"AND", IDY, 0x31},

	{"ASL", IMP, 0x0a},
	{"ASL", ZPG, 0x06},
	{"ASL", ZPX, 0x16},
	{"ASL", ABS, 0x0e},
	{"ASL", ABX, 0x1e},

	{"BCC", REL, 0x90},
	{"BCS", REL, 0xb0},
	{"BEQ", REL, 0xf0},
	{"BMI", REL, 0x30},
	{"BNE", REL, 0xd0},
	{"BPL", REL, 0x10},
	{"BVC", REL, 0x50},
	{"BVS", REL, 0x70},

	{"BIT", ZPG, 0x24},
	{"BIT", ABS, 0x2c},

	{"BRK", IMP, 0x00},

	{"CLC", IMP, 0x18},
	{"CLD", IMP, 0xd8},
	{"CLI", IMP, 0x58},
	{"CLV", IMP, 0xb8},
	{"SEC", IMP, 0x38},
	{"SED", IMP, 0xf8},
	{"SEI", IMP, 0x78},

	{"CMP", IMM, 0xc9},
	{"CMP", ZPG, 0xc5},
	{"CMP", ZPX, 0xd5},
	{"CMP", ABS, 0xcd},
	{"CMP", ABX, 0xdd},
	{"CMP", ABY, 0xd9},
	{"CMP", IDX, 0xc1},
	{"CMP", IDY, 0xd1},

	{"CPX", IMM, 0xe0},
	{"CPX", ZPG, 0xe4},
	{"CPX", ABS, 0xec},

	{"CPY", IMM, 0xc0},
	{"CPY", ZPG, 0xc4},
	{"CPY", ABS, 0xcc},

	{"DEC", ZPG, 0xc6},
	{"DEC", ZPX, 0xd6},
	{"DEC", ABS, 0xce},
	{"DEC", ABX, 0xde},

	{"DEX", IMP, 0xca},
	{"DEY", IMP, 0x88},

	{"EOR", IMM, 0x49},
	{"EOR", ZPG, 0x45},
	{"EOR", ZPX, 0x55},
	{"EOR", ABS, 0x4d},
	{"EOR", ABX, 0x5d},
	{"EOR", ABY, 0x59},
	{"EOR", IDX, 0x41},
	{"EOR", IDY, 0x51},

	{"INC", ZPG, 0xe6},
	{"INC", ZPX, 0xf6},
	{"INC", ABS, 0xee},
	{"INC", ABX, 0xfe},

	{"INX", IMP, 0xe8},
	{"INY", IMP, 0xc8},

	{"JMP", ABS, 0x4c},
	{"JMP", IND, 0x6c},
	{"JSR", ABS, 0x20},

	{"LDA", IMM, 0xa9},
	{"LDA", ZPG, 0xa5},
	{"LDA", ZPX, 0xb5},
	{"LDA", ABS, 0xad},
	{"LDA", ABX, 0xbd},
	{"LDA", ABY, 0xb9},
	{"LDA", IDX, 0xa1},
	{"LDA", IDY, 0xb1},

	{"LDX", IMM, 0xa2},
	{"LDX", ZPG, 0xa6},
	{"LDX", ZPY, 0xb6},
	{"LDX", ABS, 0xae},
	{"LDX", ABY, 0xbe},

	{"LDY", IMM, 0xa0},
	{"LDY", ZPG, 0xa4},
	{"LDY", ZPX, 0xb4},
	{"LDY", ABS, 0xac},
	{"LDY", ABX, 0xbc},

	{"LSR", IMP, 0x4a},
	{"LSR", ZPG, 0x46},
	{"LSR", ZPX, 0x56},
	{"LSR", ABS, 0x4e},
	{"LSR", ABX, 0x5e},

	{"NOP", IMP, 0xea},

	{"ORA", IMM, 0x09},
	{"ORA", ZPG, 0x05},
	{"ORA", ZPX, 0x15},
	{"ORA", ABS, 0x0d},
	{"ORA", ABX, 0x1d},
	{"ORA", ABY, 0x19},
	{"ORA", IDX, 0x01},
	{"ORA", IDY, 0x11},

	{"PHA", IMP, 0x48},
	{"PHP", IMP, 0x08},
	{"PLA", IMP, 0x68},
	{"PLP", IMP, 0x28},

	{"ROL", IMP, 0x2a},
	{"ROL", ZPG, 0x26},
	{"ROL", ZPX, 0x36},
	{"ROL", ABS, 0x2e},
	{"ROL", ABX, 0x3e},

	{"ROR", IMP, 0x6a},
	{"ROR", ZPG, 0x66},
	{"ROR", ZPX, 0x76},
	{"ROR", ABS, 0x6e},
	{"ROR", ABX, 0x7e},

	{"RTI", IMP, 0x40},
	{"RTS", IMP, 0x60},

	{"SBC", IMM, 0xe9},
	{"SBC", ZPG, 0xe5},
	{"SBC", ZPX, 0xf5},
	{"SBC", ABS, 0xed},
	{"SBC", ABX, 0xfd},
	{"SBC", ABY, 0xf9},
	{"SBC", IDX, 0xe1},
	{"SBC", IDY, 0xf1},

	{"STA", ZPG, 0x85},
	{"STA", ZPX, 0x95},
	{"STA", ABS, 0x8d},
	{"STA", ABX, 0x9d},
	{"STA", ABY, 0x99},
	{"STA", IDX, 0x81},
	{"STA", IDY, 0x91},

	{"STX", ZPG, 0x86},
	{"STX", ZPY, 0x96},
	{"STX", ABS, 0x8e},

	{"STY", ZPG, 0x84},
	{"STY", ZPX, 0x94},
	{"STY", ABS, 0x8c},

	{"TAX", IMP, 0xaa},
	{"TAY", IMP, 0xa8},
	{"TSX", IMP, 0xba},
	{"TXA", IMP, 0x8a},
	{"TXS", IMP, 0x9a},
	{"TYA", IMP, 0x98},
}

// An Instruction describes a CPU instruction, including its name, its
// addressing mode, its opcode value and its encoded size.
type Instruction struct {
	Name   string // all-caps name of the instruction
	Mode   Mode   // addressing mode
	Opcode byte   // hexadecimal opcode value
	Length int    // combined size of opcode and operand, in bytes
}

// An InstructionSet holds every valid instruction, indexed both by opcode
// and by mnemonic.
type InstructionSet struct {
	instructions [256]*Instruction          // instructions by opcode, nil if unused
	variants     map[string][]*Instruction // variants of each mnemonic
}

var nmos = newInstructionSet()

// Get returns the NMOS 6502 instruction set.
func Get() *InstructionSet {
	return nmos
}

func newInstructionSet() *InstructionSet {
	set := &InstructionSet{variants: make(map[string][]*Instruction)}
	for _, d := range data {
		inst := &Instruction{
			Name:   d.name,
			Mode:   d.mode,
			Opcode: d.opcode,
			Length: 1 + d.mode.OperandSize(),
		}
		set.instructions[d.opcode] = inst
		set.variants[d.name] = append(set.variants[d.name], inst)
	}
	return set
}

// Lookup retrieves the instruction encoded by an opcode byte. It returns
// nil if the opcode is not a documented NMOS instruction.
func (s *InstructionSet) Lookup(opcode byte) *Instruction {
	return s.instructions[opcode]
}

// GetInstructions returns all instruction variants whose mnemonic matches
// the provided string, in any letter case.
func (s *InstructionSet) GetInstructions(name string) []*Instruction {
	return s.variants[strings.ToUpper(name)]
}

// Find returns the instruction for a mnemonic using the requested mode, or
// nil if the mnemonic does not support that mode.
func (s *InstructionSet) Find(name string, mode Mode) *Instruction {
	for _, inst := range s.GetInstructions(name) {
		if inst.Mode == mode {
			return inst
		}
	}
	return nil
}

// Supports reports whether the mnemonic can be encoded with the mode.
func (s *InstructionSet) Supports(name string, mode Mode) bool {
	return s.Find(name, mode) != nil
}

// SupportedModes returns the addressing modes valid for a mnemonic, in
// detection order.
func (s *InstructionSet) SupportedModes(name string) []Mode {
	var modes []Mode
	for _, m := range Modes {
		if s.Supports(name, m) {
			modes = append(modes, m)
		}
	}
	return modes
}

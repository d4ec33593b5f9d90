// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package disasm implements a 6502 instruction set
// disassembler.
package disasm

import (
	"fmt"

	"github.com/romhack/patch6502/isa"
)

// Disassembler formatting for addressing modes
var modeFormat = []string{
	"%s",      // IMP
	"#$%s",    // IMM
	"$%s",     // ZPG
	"$%s,X",   // ZPX
	"$%s,Y",   // ZPY
	"($%s,X)", // IDX
	"($%s),Y", // IDY
	"($%s)",   // IND
	"$%s,X",   // ABX
	"$%s,Y",   // ABY
	"$%s",     // ABS
	"$%s",     // REL
}

var hex = "0123456789ABCDEF"

// Return a hexadecimal string representation of the byte slice.
func hexString(b []byte) string {
	hexlen := len(b) * 2
	hexbuf := make([]byte, hexlen)
	j := hexlen - 1
	for _, n := range b {
		hexbuf[j] = hex[n&0xf]
		hexbuf[j-1] = hex[n>>4]
		j -= 2
	}
	return string(hexbuf)
}

// Disassemble the machine code in 'b' at offset 'pos', where b[0] is
// located at CPU address 'addr'. Return a 'line' string representing the
// disassembled instruction and the offset 'next' of the following
// instruction. Bytes that do not form a complete documented instruction
// are shown as data.
func Disassemble(b []byte, pos, addr int) (line string, next int) {
	opcode := b[pos]
	inst := isa.Get().Lookup(opcode)
	if inst == nil || pos+inst.Length > len(b) {
		return fmt.Sprintf(".byte $%02X", opcode), pos + 1
	}

	operand := b[pos+1 : pos+inst.Length]
	if inst.Mode == isa.REL {
		// Convert relative offset to absolute address.
		braddr := addr + pos + inst.Length + int(int8(operand[0]))
		operand = []byte{byte(braddr & 0xff), byte(braddr >> 8)}
	}
	format := "%s " + modeFormat[inst.Mode]
	if inst.Mode == isa.IMP {
		format = "%s%s"
	}
	line = fmt.Sprintf(format, inst.Name, hexString(operand))
	next = pos + inst.Length
	return
}

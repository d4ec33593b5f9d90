// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"strings"

	"github.com/romhack/patch6502/isa"
)

// A modeParser recognizes the operand syntax of one addressing mode and
// extracts the operand's expression text.
type modeParser struct {
	mode  isa.Mode
	parse func(s string) (expr string, ok bool)
}

// Parsers in the order they are tried. The first one that matches and
// whose mode the mnemonic supports wins.
var modeParsers = []modeParser{
	{isa.IMP, parseImplied},
	{isa.IMM, parseImmediate},
	{isa.ZPG, parseZeroPage},
	{isa.ZPX, parseZeroPageX},
	{isa.ZPY, parseZeroPageY},
	{isa.IDX, parsePreindexed},
	{isa.IDY, parsePostindexed},
	{isa.IND, parseIndirect},
	{isa.ABX, parseAbsoluteX},
	{isa.ABY, parseAbsoluteY},
	{isa.ABS, parseAny},
	{isa.REL, parseAny},
}

// Select the instruction encoding a mnemonic and its operand text. Return
// the instruction and the operand's expression text.
func selectInstruction(mnemonic, operand string) (*isa.Instruction, string, error) {
	set := isa.Get()
	if len(set.GetInstructions(mnemonic)) == 0 {
		return nil, "", fmt.Errorf("%w: bad mnemonic '%s'", ErrParse, mnemonic)
	}

	s := strings.Join(strings.Fields(operand), "")
	for _, p := range modeParsers {
		e, ok := p.parse(s)
		if !ok {
			continue
		}
		if inst := set.Find(mnemonic, p.mode); inst != nil {
			return inst, e, nil
		}
	}

	var valid []string
	for _, m := range set.SupportedModes(mnemonic) {
		valid = append(valid, m.String())
	}
	return nil, "", fmt.Errorf("%w: %s %s, expected one of [%s]",
		ErrUnsupportedMode, strings.ToLower(mnemonic), operand, strings.Join(valid, ", "))
}

func parseImplied(s string) (string, bool) {
	return "", s == ""
}

func parseImmediate(s string) (string, bool) {
	if len(s) < 2 || s[0] != '#' {
		return "", false
	}
	return s[1:], true
}

// A zero page operand is written as '$' followed by exactly two hex
// digits. Anything else is assembled as a two-byte address.
func zeroPage(s string) bool {
	return len(s) == 3 && s[0] == '$' && hexadecimal(s[1]) && hexadecimal(s[2])
}

func parseZeroPage(s string) (string, bool) {
	return s, zeroPage(s)
}

func parseZeroPageX(s string) (string, bool) {
	e, ok := trimIndex(s, 'x')
	return e, ok && zeroPage(e)
}

func parseZeroPageY(s string) (string, bool) {
	e, ok := trimIndex(s, 'y')
	return e, ok && zeroPage(e)
}

func parsePreindexed(s string) (string, bool) {
	e, ok := trimIndirect(s)
	if !ok {
		return "", false
	}
	e, ok = trimIndex(e, 'x')
	return e, ok && zeroPage(e)
}

func parsePostindexed(s string) (string, bool) {
	e, ok := trimIndex(s, 'y')
	if !ok {
		return "", false
	}
	e, ok = trimIndirect(e)
	return e, ok && zeroPage(e)
}

func parseIndirect(s string) (string, bool) {
	return trimIndirect(s)
}

func parseAbsoluteX(s string) (string, bool) {
	return trimIndex(s, 'x')
}

func parseAbsoluteY(s string) (string, bool) {
	return trimIndex(s, 'y')
}

func parseAny(s string) (string, bool) {
	return s, s != ""
}

// Strip a ",x" or ",y" index suffix, in either letter case.
func trimIndex(s string, reg byte) (string, bool) {
	n := len(s)
	if n < 3 || s[n-2] != ',' || (s[n-1]|0x20) != reg {
		return "", false
	}
	return s[:n-2], true
}

// Strip a pair of parentheses enclosing the entire string.
func trimIndirect(s string) (string, bool) {
	n := len(s)
	if n < 3 || s[0] != '(' || s[n-1] != ')' {
		return "", false
	}
	depth := 0
	for i := 0; i < n; i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 && i != n-1 {
				return "", false
			}
		}
	}
	return s[1 : n-1], depth == 0
}

// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"

	"github.com/romhack/patch6502/isa"
)

// A line is a single parsed statement. Its size is known as soon as it is
// parsed; its bytes only after it has been expanded against a context.
type line interface {
	origin() Origin
	size() int
	expand(c *Context) error
	bytes() ([]byte, error)
}

type source struct {
	org Origin
}

func (s *source) origin() Origin {
	return s.org
}

// A dataItem is one element of a .byte list: either an expression or the
// character codes of a quoted string.
type dataItem struct {
	expr string
	lit  []byte
}

func (d *dataItem) size() int {
	if d.lit != nil {
		return len(d.lit)
	}
	return 1
}

// A byteLine holds the data of a .byte or .res directive.
type byteLine struct {
	source
	items []dataItem
	data  []byte
}

func (l *byteLine) size() int {
	n := 0
	for _, d := range l.items {
		n += d.size()
	}
	return n
}

func (l *byteLine) expand(c *Context) error {
	l.data = make([]byte, 0, l.size())
	for _, d := range l.items {
		if d.lit != nil {
			l.data = append(l.data, d.lit...)
			continue
		}
		v, err := c.Map(d.expr, NoRef)
		if err != nil {
			return err
		}
		l.data = append(l.data, byte(v))
	}
	return nil
}

func (l *byteLine) bytes() ([]byte, error) {
	return l.data, nil
}

// A wordLine holds the little-endian 16-bit values of a .word directive.
type wordLine struct {
	source
	exprs []string
	words []int
}

func (l *wordLine) size() int {
	return 2 * len(l.exprs)
}

func (l *wordLine) expand(c *Context) error {
	l.words = make([]int, len(l.exprs))
	for i, e := range l.exprs {
		v, err := c.Map(e, NoRef)
		if err != nil {
			return err
		}
		l.words[i] = v
	}
	return nil
}

func (l *wordLine) bytes() ([]byte, error) {
	b := make([]byte, 0, l.size())
	for _, w := range l.words {
		b = append(b, toBytes(2, w)...)
	}
	return b, nil
}

// An orgLine moves the program counter. Both .org and .skip produce one.
type orgLine struct {
	source
	pc int
}

func (l *orgLine) size() int {
	return 0
}

func (l *orgLine) expand(c *Context) error {
	c.PC = l.pc
	return nil
}

func (l *orgLine) bytes() ([]byte, error) {
	return nil, nil
}

// An assertLine checks the program counter. An exact assertion requires
// the pc to equal the target; otherwise it may not exceed it, and the
// remaining space is recorded as slack.
type assertLine struct {
	source
	pc    int
	exact bool
	slack int
}

func (l *assertLine) size() int {
	return 0
}

func (l *assertLine) expand(c *Context) error {
	if l.exact && c.PC != l.pc {
		return fmt.Errorf("%w: expected $%x but was $%x", ErrMisalignment, l.pc, c.PC)
	}
	if !l.exact && c.PC > l.pc {
		return fmt.Errorf("%w: expected < $%x but was $%x", ErrMisalignment, l.pc, c.PC)
	}
	l.slack = l.pc - c.PC
	return nil
}

func (l *assertLine) bytes() ([]byte, error) {
	return nil, nil
}

// A bankLine installs a PRG to CPU bank mapping.
type bankLine struct {
	source
	prg, cpu, length int
}

func (l *bankLine) size() int {
	return 0
}

func (l *bankLine) expand(c *Context) error {
	c.UpdateBank(l.prg, l.cpu, l.length)
	return nil
}

func (l *bankLine) bytes() ([]byte, error) {
	return nil, nil
}

// An opcodeLine holds a single instruction.
type opcodeLine struct {
	source
	inst    *isa.Instruction // selected encoding
	operand string           // operand expression text
	pc      int              // PRG address assigned during ingestion
	cpuPC   int              // CPU address of the instruction, for branches
	value   int              // resolved operand value
}

func (l *opcodeLine) size() int {
	return l.inst.Length
}

func (l *opcodeLine) expand(c *Context) error {
	if l.inst.Mode == isa.IMP {
		return nil
	}
	v, err := c.Map(l.operand, l.pc)
	if err != nil {
		return err
	}
	l.value = v
	if l.inst.Mode == isa.REL {
		l.cpuPC, err = c.PRGToCPU(l.pc)
		if err != nil {
			return err
		}
	}
	return nil
}

func (l *opcodeLine) bytes() ([]byte, error) {
	value := l.value
	if l.inst.Mode == isa.REL {
		value -= l.cpuPC + 2
		if value < -128 || value > 127 {
			return nil, fmt.Errorf("%w: %d", ErrBranchOutOfRange, value)
		}
	}
	b := []byte{l.inst.Opcode}
	return append(b, toBytes(l.inst.Mode.OperandSize(), value)...), nil
}

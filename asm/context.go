// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

// NoRef is passed to Context.Map when an operand is not referenced from
// an instruction, so labels in it must be unique.
const NoRef = -1

// A Context holds the state of the second pass over one source unit: the
// current program counter, the active bank map and the label table
// against which operands are resolved.
type Context struct {
	PC     int // current PRG output address
	banks  *bankMap
	labels *LabelTable
}

// NewContext creates a context with an empty bank map.
func NewContext(labels *LabelTable) *Context {
	return &Context{
		banks:  newBankMap(),
		labels: labels,
	}
}

// Map evaluates an operand expression to a CPU address or plain value.
//
// When ref is not NoRef it is the PRG address of the referencing
// instruction; repeatable labels are then resolved to the definition
// nearest the address following a two-byte branch at ref.
func (c *Context) Map(operand string, ref int) (int, error) {
	e, err := parseExpr(operand)
	if err != nil {
		return 0, err
	}
	return c.mapExpr(e, ref)
}

// Resolve evaluates an operand expression like Map, but leaves a bare
// label's PRG offset untranslated.
func (c *Context) Resolve(operand string, ref int) (Address, error) {
	e, err := parseExpr(operand)
	if err != nil {
		return Address{}, err
	}
	return c.resolve(e, ref)
}

func (c *Context) mapExpr(e *expr, ref int) (int, error) {
	a, err := c.resolve(e, ref)
	if err != nil {
		return 0, err
	}
	return c.Translate(a)
}

// Operands of every operator are bank-translated before they are
// combined, so only a bare label can yield a PRG offset.
func (c *Context) resolve(e *expr, ref int) (Address, error) {
	switch {
	case e.op == opNumber:
		return Resolved(e.number), nil

	case e.op == opIdentifier:
		if ref == NoRef {
			return c.labels.Lookup(e.identifier)
		}
		return c.labels.Nearest(e.identifier, ref+2)

	case e.op.isBinary():
		a, err := c.mapExpr(e.child0, ref)
		if err != nil {
			return Address{}, err
		}
		b, err := c.mapExpr(e.child1, ref)
		if err != nil {
			return Address{}, err
		}
		return Resolved(e.op.eval(a, b)), nil

	default:
		a, err := c.mapExpr(e.child0, ref)
		if err != nil {
			return Address{}, err
		}
		return Resolved(e.op.eval(a, 0)), nil
	}
}

// Translate converts an address into the CPU address space using the
// active bank map.
func (c *Context) Translate(a Address) (int, error) {
	if !a.PRG {
		return a.Value, nil
	}
	return c.banks.toCPU(a.Value)
}

// UpdateBank maps length bytes of PRG space starting at prg to the CPU
// window starting at cpu, superseding whatever was mapped there before.
func (c *Context) UpdateBank(prg, cpu, length int) {
	c.banks.update(prg, cpu, length)
}

// PRGToCPU returns the CPU address a PRG offset is currently mapped to.
func (c *Context) PRGToCPU(prg int) (int, error) {
	return c.banks.toCPU(prg)
}

// CPUToPRG returns the PRG offset currently mapped at a CPU address.
func (c *Context) CPUToPRG(cpu int) (int, error) {
	return c.banks.toPRG(cpu)
}

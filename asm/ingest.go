// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"strings"
)

// A unit is a single source unit being assembled. Ingesting its lines
// records label definitions and builds the ordered list of statements
// that the second pass resolves.
type unit struct {
	a          *Assembler
	index      int         // index of the unit in the assembly
	name       string      // name used in error messages
	labels     *LabelTable // shared by all units of the assembly
	lines      []line      // parsed statements in source order
	pc         int         // PRG address of the next statement
	row        int         // 1-based number of the last line read
	conditions []bool      // conditional assembly stack
	assembling bool        // true when every condition holds
}

type directiveData struct {
	fn func(u *unit, l fstring) error
}

var directives = map[string]directiveData{
	".org":    {fn: (*unit).parseOrigin},
	".skip":   {fn: (*unit).parseSkip},
	".assert": {fn: (*unit).parseAssert},
	".bank":   {fn: (*unit).parseBank},
	".byte":   {fn: (*unit).parseBytes},
	".word":   {fn: (*unit).parseWords},
	".res":    {fn: (*unit).parseReserve},
}

func newUnit(a *Assembler, index int, name string) *unit {
	return &unit{
		a:          a,
		index:      index,
		name:       name,
		labels:     a.labels,
		assembling: true,
	}
}

// Ingest a single line of source text.
func (u *unit) ingest(text string) error {
	u.row++
	l := newFstring(u.index, u.row, text)
	if err := u.parseLine(l.stripTrailingComment()); err != nil {
		return &LineError{Origin: u.origin(l), Err: err}
	}
	return nil
}

// Check the unit's state once all of its lines have been ingested.
func (u *unit) finish() error {
	if len(u.conditions) > 0 {
		return fmt.Errorf("%w in %s: %d open .if", ErrUnterminatedConditional, u.name, len(u.conditions))
	}
	return nil
}

func (u *unit) origin(l fstring) Origin {
	return Origin{File: u.name, Line: l.row, Text: l.full}
}

func (u *unit) parseLine(l fstring) error {
	body := l.consumeWhitespace()

	switch {
	case body.isEmpty():
		return nil
	case body.startsWithKeyword(".ifdef"):
		return u.parseIf(body.consume(len(".ifdef")), false)
	case body.startsWithKeyword(".ifndef"):
		return u.parseIf(body.consume(len(".ifndef")), true)
	case body.startsWithKeyword(".else"):
		if len(u.conditions) == 0 {
			return fmt.Errorf("%w: .else without .if", ErrParse)
		}
		top := len(u.conditions) - 1
		u.conditions[top] = !u.conditions[top]
		u.updateAssembling()
		return nil
	case body.startsWithKeyword(".endif"):
		if len(u.conditions) == 0 {
			return fmt.Errorf("%w: .endif without .if", ErrParse)
		}
		u.conditions = u.conditions[:len(u.conditions)-1]
		u.updateAssembling()
		return nil
	case !u.assembling:
		return nil
	}

	if l.startsWithKeyword("define") {
		return u.parseDefine(l.consume(len("define")))
	}

	// Labels must start in the first column.
	if !l.startsWith(whitespace) {
		if name, remain, ok := splitLabel(l); ok {
			u.addLabel(l, name)
			return u.parseStatement(remain)
		}
		if l.startsWith(relativeChar) {
			return u.parseRelativeLabels(l)
		}
		if !l.startsWithChar('.') {
			return fmt.Errorf("%w: could not parse line", ErrParse)
		}
	}

	return u.parseStatement(l)
}

// Parse a directive or instruction following any labels.
func (u *unit) parseStatement(l fstring) error {
	l = l.consumeWhitespace()
	if l.isEmpty() {
		return nil
	}

	if l.startsWithChar('.') {
		name, remain := l.consumeWhile(wordChar)
		d, ok := directives[strings.ToLower(name.str)]
		if !ok {
			return fmt.Errorf("%w: unknown directive '%s'", ErrParse, name.str)
		}
		return d.fn(u, remain.consumeWhitespace())
	}

	return u.parseInstruction(l)
}

func (u *unit) parseIf(l fstring, negate bool) error {
	name, remain := l.consumeWhitespace().consumeWhile(wordChar)
	if name.isEmpty() || !remain.consumeWhitespace().isEmpty() {
		return fmt.Errorf("%w: expected a single label name", ErrParse)
	}
	u.conditions = append(u.conditions, u.labels.Has(name.str) != negate)
	u.updateAssembling()
	u.a.logLine(l, "if=%v", u.assembling)
	return nil
}

func (u *unit) updateAssembling() {
	u.assembling = true
	for _, c := range u.conditions {
		u.assembling = u.assembling && c
	}
}

// Split a "name:" label from the start of the line.
func splitLabel(l fstring) (name string, remain fstring, ok bool) {
	n := l.scanWhile(relativeChar)
	rest := l.consume(n)
	if n == 0 && !rest.startsWith(identifierStartChar) {
		return "", l, false
	}
	n += rest.scanWhile(identifierChar)
	if n >= len(l.str) || l.str[n] != ':' {
		return "", l, false
	}
	return l.str[:n], l.consume(n + 1), true
}

// Parse one or more whitespace-separated relative labels ("-", "++")
// at the start of a line, then whatever statement follows them.
func (u *unit) parseRelativeLabels(l fstring) error {
	for l.startsWith(relativeChar) {
		name, remain := l.consumeWhile(relativeChar)
		if !remain.isEmpty() && !remain.startsWith(whitespace) {
			return fmt.Errorf("%w: bad relative label '%s'", ErrParse, name.str+remain.str)
		}
		u.addLabel(l, name.str)
		l = remain.consumeWhitespace()
	}
	return u.parseStatement(l)
}

// Record a label at the current, not yet translated, program counter.
func (u *unit) addLabel(l fstring, name string) {
	u.labels.Add(name, PrgOffset(u.pc))
	u.a.logLine(l, "label=%s pc=$%X", name, u.pc)
}

func (u *unit) addLine(l fstring, ln line) {
	u.lines = append(u.lines, ln)
	u.pc += ln.size()
}

// Evaluate an expression during ingestion. Only labels defined so far
// are visible, and PRG offsets are not bank-translated.
func (u *unit) evaluate(l fstring) (int, error) {
	return NewContext(u.labels).Map(l.str, NoRef)
}

func (u *unit) parseDefine(l fstring) error {
	if !l.startsWith(whitespace) {
		return fmt.Errorf("%w: bad define", ErrParse)
	}
	name, remain := l.consumeWhitespace().consumeWhile(wordChar)
	remain = remain.consumeWhitespace()
	if name.isEmpty() || remain.isEmpty() {
		return fmt.Errorf("%w: expected 'define name value'", ErrParse)
	}
	addr, err := NewContext(u.labels).Resolve(remain.str, NoRef)
	if err != nil {
		return err
	}
	u.labels.Add(name.str, addr)
	u.a.logLine(l, "define %s=%s", name.str, addr)
	return nil
}

func (u *unit) parseOrigin(l fstring) error {
	pc, err := u.evaluate(l)
	if err != nil {
		return err
	}
	u.pc = pc
	u.addLine(l, &orgLine{source: u.source(l), pc: pc})
	u.a.logLine(l, "org=$%X", pc)
	return nil
}

func (u *unit) parseSkip(l fstring) error {
	n, err := u.evaluate(l)
	if err != nil {
		return err
	}
	u.pc += n
	u.addLine(l, &orgLine{source: u.source(l), pc: u.pc})
	u.a.logLine(l, "org=$%X", u.pc)
	return nil
}

func (u *unit) parseAssert(l fstring) error {
	exact := true
	if l.startsWithChar('<') {
		exact, l = false, l.consume(1).consumeWhitespace()
	}
	pc, err := u.evaluate(l)
	if err != nil {
		return err
	}
	u.addLine(l, &assertLine{source: u.source(l), pc: pc, exact: exact})
	return nil
}

// Parse ".bank prg cpu : length".
func (u *unit) parseBank(l fstring) error {
	window, length := l.consumeUntil(func(c byte) bool { return c == ':' })
	fields := strings.Fields(window.str)
	if len(fields) != 2 || length.isEmpty() {
		return fmt.Errorf("%w: expected '.bank prg cpu : length'", ErrParse)
	}

	var v [3]int
	for i, s := range []string{fields[0], fields[1], length.consume(1).str} {
		var err error
		if v[i], err = u.evaluate(newFstring(u.index, u.row, s)); err != nil {
			return err
		}
	}
	u.addLine(l, &bankLine{source: u.source(l), prg: v[0], cpu: v[1], length: v[2]})
	u.a.logLine(l, "bank prg=$%X cpu=$%X len=$%X", v[0], v[1], v[2])
	return nil
}

func (u *unit) parseBytes(l fstring) error {
	if l.isEmpty() {
		return fmt.Errorf("%w: missing data", ErrParse)
	}
	var items []dataItem
	for _, item := range splitList(l) {
		if lit, ok := unquote(item.str); ok {
			for _, c := range lit {
				if c >= 0x80 {
					return fmt.Errorf("%w: non-ASCII character in %s", ErrParse, item.str)
				}
			}
			items = append(items, dataItem{lit: lit})
			continue
		}
		if _, err := parseExpr(item.str); err != nil {
			return err
		}
		items = append(items, dataItem{expr: item.str})
	}
	u.addLine(l, &byteLine{source: u.source(l), items: items})
	return nil
}

func (u *unit) parseWords(l fstring) error {
	if l.isEmpty() {
		return fmt.Errorf("%w: missing data", ErrParse)
	}
	var exprs []string
	for _, item := range splitList(l) {
		if _, err := parseExpr(item.str); err != nil {
			return err
		}
		exprs = append(exprs, item.str)
	}
	u.addLine(l, &wordLine{source: u.source(l), exprs: exprs})
	return nil
}

// Largest .res block: the whole address space a patch can describe.
const maxReserve = 0x1000000

// Parse ".res count[, fill]".
func (u *unit) parseReserve(l fstring) error {
	args := splitList(l)
	if len(args) > 2 || args[0].isEmpty() {
		return fmt.Errorf("%w: expected '.res count[, fill]'", ErrParse)
	}
	count, err := u.evaluate(args[0])
	if err != nil {
		return err
	}
	if count < 0 || count > maxReserve {
		return fmt.Errorf("%w: .res count %d out of range", ErrParse, count)
	}
	fill := 0
	if len(args) == 2 {
		if fill, err = u.evaluate(args[1]); err != nil {
			return err
		}
	}
	data := make([]byte, count)
	for i := range data {
		data[i] = byte(fill)
	}
	u.addLine(l, &byteLine{source: u.source(l), items: []dataItem{{lit: data}}})
	return nil
}

// Parse a three-letter mnemonic and its operand.
func (u *unit) parseInstruction(l fstring) error {
	mnemonic, remain := l.consumeWhile(alpha)
	if len(mnemonic.str) != 3 || (!remain.isEmpty() && !remain.startsWith(whitespace)) {
		return fmt.Errorf("%w: could not parse line", ErrParse)
	}

	inst, operand, err := selectInstruction(mnemonic.str, remain.str)
	if err != nil {
		return err
	}
	u.addLine(l, &opcodeLine{source: u.source(l), inst: inst, operand: operand, pc: u.pc})
	u.a.logLine(l, "%s %s mode=%s", inst.Name, operand, inst.Mode)
	return nil
}

func (u *unit) source(l fstring) source {
	return source{org: u.origin(l)}
}

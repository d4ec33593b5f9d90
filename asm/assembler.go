// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package asm implements a two-pass 6502 assembler that resolves labels
// through bank-switched address mappings and emits its output as a set
// of byte chunks, ready to be encoded as a patch.
package asm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/romhack/patch6502/patch"
)

// Option type used by the New function.
type Option uint

// Options for the New function.
const (
	Verbose Option = 1 << iota // verbose output during assembly
)

// An Assembler assembles one or more source units in order. Every unit
// shares the assembler's label table, so later units may refer to labels
// defined by earlier ones. Chunks emitted by all units accumulate until
// they are consumed by PatchROM.
type Assembler struct {
	labels      *LabelTable   // labels of all units
	chunks      []patch.Chunk // accumulated output
	units       []string      // names of the assembled units
	sourceLines []SourceLine  // address to source line mappings
	free        []FreeSpace   // slack reported by .assert
	out         io.Writer     // output used for verbose output
	verbose     bool          // verbose output
}

// New creates an assembler. Verbose output, if requested, is written to
// out.
func New(out io.Writer, options Option) *Assembler {
	if out == nil {
		out = os.Stdout
	}
	return &Assembler{
		labels:  NewLabelTable(),
		out:     out,
		verbose: (options & Verbose) != 0,
	}
}

// SetOutput changes the writer and options used for verbose output.
func (a *Assembler) SetOutput(out io.Writer, options Option) {
	if out == nil {
		out = os.Stdout
	}
	a.out = out
	a.verbose = (options & Verbose) != 0
}

// AssembleFile reads and assembles the source unit contained in a file.
func (a *Assembler) AssembleFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return a.Assemble(file, path)
}

// AssembleString assembles a source unit held in a string.
func (a *Assembler) AssembleString(src, filename string) error {
	return a.Assemble(strings.NewReader(src), filename)
}

// Assemble reads a complete source unit from r and assembles it. Labels
// the unit defines are added to the shared label table as it is read. If
// assembly fails, the unit contributes no chunks and its labels are
// removed again.
func (a *Assembler) Assemble(r io.Reader, filename string) (err error) {
	saved := a.labels.snapshot()
	defer func() {
		if err != nil {
			a.labels.restore(saved)
		}
	}()

	u := newUnit(a, len(a.units), filename)
	a.units = append(a.units, filename)

	a.logSection("Parsing " + filename)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := u.ingest(scanner.Text()); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if err := u.finish(); err != nil {
		return err
	}

	a.logSection("Resolving " + filename)
	out, err := u.resolve()
	if err != nil {
		return err
	}

	a.chunks = append(a.chunks, out.chunks...)
	a.sourceLines = append(a.sourceLines, out.lines...)
	a.free = append(a.free, out.free...)
	return nil
}

// Chunks returns the chunks accumulated so far.
func (a *Assembler) Chunks() []patch.Chunk {
	return append([]patch.Chunk(nil), a.chunks...)
}

// Patch encodes the accumulated chunks as a patch.
func (a *Assembler) Patch() (*patch.Patch, error) {
	return patch.From(a.chunks)
}

// PatchROM applies the accumulated chunks, which are addressed in PRG
// space, to a complete ROM image with the default header size. The
// accumulated chunks are discarded afterward.
func (a *Assembler) PatchROM(rom []byte) error {
	p, err := a.Patch()
	if err != nil {
		return err
	}
	p, err = patch.BuildROMPatch(p, nil, patch.DefaultPRGSize)
	if err != nil {
		return err
	}
	if err := p.Apply(rom); err != nil {
		return err
	}
	a.chunks = nil
	return nil
}

// Expand returns the value of a label that must have been defined exactly
// once. A label defined in PRG space yields its untranslated PRG offset.
func (a *Assembler) Expand(label string) (int, error) {
	addr, err := a.labels.Lookup(label)
	if err != nil {
		return 0, err
	}
	return addr.Value, nil
}

// Evaluate evaluates an expression against the label table, with no bank
// mapping in effect.
func (a *Assembler) Evaluate(expr string) (int, error) {
	return NewContext(a.labels).Map(expr, NoRef)
}

// Labels returns the label table shared by all units.
func (a *Assembler) Labels() *LabelTable {
	return a.labels
}

// Free returns the unused space reported by every non-strict .assert.
func (a *Assembler) Free() []FreeSpace {
	return append([]FreeSpace(nil), a.free...)
}

// SourceMap returns the source lines behind every byte written so far.
func (a *Assembler) SourceMap() *SourceMap {
	lines := append([]SourceLine(nil), a.sourceLines...)
	sort.SliceStable(lines, func(i, j int) bool {
		return lines[i].PRG < lines[j].PRG
	})
	return &SourceMap{
		Units: append([]string(nil), a.units...),
		Lines: lines,
	}
}

// In verbose mode, log a string to the output.
func (a *Assembler) log(format string, args ...any) {
	if a.verbose {
		fmt.Fprintf(a.out, format, args...)
		fmt.Fprintf(a.out, "\n")
	}
}

// In verbose mode, log a string and its associated line
// of assembly code.
func (a *Assembler) logLine(line fstring, format string, args ...any) {
	if a.verbose {
		detail := fmt.Sprintf(format, args...)
		fmt.Fprintf(a.out, "%-3d %-3d | %-28s | %s\n", line.row, line.column+1, detail, line.str)
	}
}

// In verbose mode, log a series of bytes with starting address.
func (a *Assembler) logBytes(addr int, b []byte, text string) {
	if a.verbose {
		for i, n := 0, len(b); i < n; i += 3 {
			j := min(i+3, n)
			a.log("%04X-  %-8s    %s", addr+i, byteString(b[i:j]), text)
			text = ""
		}
	}
}

// In verbose mode, log a section header to the output.
func (a *Assembler) logSection(name string) {
	if a.verbose {
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
		fmt.Fprintf(a.out, "-- %s --\n", name)
		fmt.Fprintln(a.out, strings.Repeat("-", len(name)+6))
	}
}

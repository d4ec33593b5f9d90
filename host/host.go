// Copyright 2018 Brett Vickers.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package host provides a command-driven front end to the assembler.
//
// Within the host it is possible to assemble source files, inspect the
// labels they define, evaluate expressions, build patches from the
// assembled output, save and load patches, list and disassemble their
// records, and apply them to ROM images on disk.
package host

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/beevik/cmd"
	"github.com/romhack/patch6502/asm"
	"github.com/romhack/patch6502/disasm"
	"github.com/romhack/patch6502/patch"
)

var errQuit = errors.New("exiting program")

// A Host holds an assembler, the patch most recently built or loaded, and
// the settings that control them.
type Host struct {
	input       *bufio.Scanner
	output      *bufio.Writer
	interactive bool
	asm         *asm.Assembler
	patch       *patch.Patch
	settings    *settings
	lastCmd     *cmd.Selection
}

// New creates a new host with an empty assembler.
func New() *Host {
	h := &Host{
		settings: newSettings(),
		output:   bufio.NewWriter(os.Stdout),
	}
	h.resetAssembler()
	return h
}

// SetVerbose turns verbose assembler output on or off.
func (h *Host) SetVerbose(verbose bool) {
	h.settings.Verbose = verbose
	h.onSettingsUpdate()
}

// RunCommands accepts host commands from a reader and outputs the results
// to a writer. If the commands are interactive, a prompt is displayed while
// the host waits for the the next command to be entered. It returns false
// if a quit command was executed.
func (h *Host) RunCommands(r io.Reader, w io.Writer, interactive bool) bool {
	h.input = bufio.NewScanner(r)
	h.output = bufio.NewWriter(w)
	h.interactive = interactive
	h.onSettingsUpdate()

	if interactive {
		h.println()
	}

	for {
		h.prompt()

		line, err := h.getLine()
		if err != nil {
			return true
		}

		var c cmd.Selection
		if line != "" {
			c, err = cmds.Lookup(line)
			switch {
			case err == cmd.ErrNotFound:
				h.println("Command not found.")
				continue
			case err == cmd.ErrAmbiguous:
				h.println("Command is ambiguous.")
				continue
			case err != nil:
				h.printf("ERROR: %v.\n", err)
				continue
			}
		} else if h.interactive && h.lastCmd != nil {
			c = *h.lastCmd
		}

		if c.Command == nil {
			continue
		}
		h.lastCmd = &c

		command, ok := c.Command.Data.(*command)
		if !ok {
			continue
		}
		if err := command.handler(h, c); err != nil {
			return false
		}
	}
}

// AssembleFile assembles a source file, reporting the result to the
// host's output.
func (h *Host) AssembleFile(filename string) error {
	err := h.asm.AssembleFile(filename)
	if err != nil {
		h.printf("Failed to assemble '%s':\n%v\n", filepath.Base(filename), err)
		return err
	}
	h.printf("Assembled '%s'.\n", filepath.Base(filename))
	for _, f := range h.asm.Free() {
		h.printf("Free: %d bytes between $%X and $%X\n", f.Size(), f.Start, f.End)
	}
	return nil
}

// BuildPatch encodes the assembler's pending output as the current patch
// and returns it.
func (h *Host) BuildPatch() (*patch.Patch, error) {
	p, err := h.asm.Patch()
	if err != nil {
		return nil, err
	}
	if h.settings.ROMLayout {
		p, err = h.settings.layout().Build(p, nil)
		if err != nil {
			return nil, err
		}
	}
	h.patch = p
	return p, nil
}

// SavePatch writes the current patch to a file.
func (h *Host) SavePatch(filename string) error {
	if h.patch == nil {
		return errors.New("no patch has been built or loaded")
	}
	file, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = h.patch.WriteTo(file)
	return err
}

// LoadPatch reads a patch file and makes it the current patch.
func (h *Host) LoadPatch(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	p := &patch.Patch{}
	if _, err := p.ReadFrom(file); err != nil {
		return err
	}
	h.patch = p
	return nil
}

// ApplyPatch applies the current patch to the contents of a file and
// writes the patched contents to the output file.
func (h *Host) ApplyPatch(filename, output string) error {
	if h.patch == nil {
		return errors.New("no patch has been built or loaded")
	}
	b, err := os.ReadFile(filename)
	if err != nil {
		return err
	}
	if err := h.patch.Apply(b); err != nil {
		return err
	}
	return os.WriteFile(output, b, 0600)
}

func (h *Host) resetAssembler() {
	var options asm.Option
	if h.settings.Verbose {
		options |= asm.Verbose
	}
	h.asm = asm.New(h.output, options)
}

func (h *Host) print(args ...any) {
	fmt.Fprint(h.output, args...)
}

func (h *Host) printf(format string, args ...any) {
	fmt.Fprintf(h.output, format, args...)
	h.flush()
}

func (h *Host) println(args ...any) {
	fmt.Fprintln(h.output, args...)
	h.flush()
}

func (h *Host) flush() {
	h.output.Flush()
}

func (h *Host) getLine() (string, error) {
	if h.input.Scan() {
		return strings.TrimSpace(h.input.Text()), nil
	}
	if h.input.Err() != nil {
		return "", h.input.Err()
	}
	return "", io.EOF
}

func (h *Host) prompt() {
	if h.interactive {
		h.print("* ")
		h.flush()
	}
}

func (h *Host) cmdAssembleFile(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c)
		return nil
	}

	if len(c.Args) >= 2 {
		verbose, err := stringToBool(c.Args[1])
		if err != nil {
			h.printf("%v\n", err)
			return nil
		}
		h.SetVerbose(verbose)
	}

	filename := c.Args[0]
	if filepath.Ext(filename) == "" {
		filename += ".asm"
	}
	h.AssembleFile(filename)
	return nil
}

func (h *Host) cmdAssembleReset(c cmd.Selection) error {
	h.resetAssembler()
	h.println("Assembler reset.")
	return nil
}

func (h *Host) cmdEvaluate(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c)
		return nil
	}

	v, err := h.evaluate(strings.Join(c.Args, " "))
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	h.printf("$%04X\n", v)
	return nil
}

func (h *Host) cmdExecute(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c)
		return nil
	}

	file, err := os.Open(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	defer file.Close()

	input, interactive := h.input, h.interactive
	h.input, h.interactive = bufio.NewScanner(file), false
	defer func() { h.input, h.interactive = input, interactive }()

	for {
		line, err := h.getLine()
		if err != nil {
			return nil
		}
		if line == "" {
			continue
		}
		s, err := cmds.Lookup(line)
		if err != nil {
			h.printf("%s: %v\n", line, err)
			continue
		}
		if command, ok := s.Command.Data.(*command); ok {
			if err := command.handler(h, s); err != nil {
				return err
			}
		}
	}
}

func (h *Host) cmdHelp(c cmd.Selection) error {
	prefix := strings.ToLower(strings.Join(c.Args, " "))
	var matches []*command
	for _, command := range commands {
		if prefix == "" || command.path == prefix || strings.HasPrefix(command.path, prefix+" ") {
			matches = append(matches, command)
		}
	}

	switch len(matches) {
	case 0:
		h.println("Command not found.")
	case 1:
		m := matches[0]
		h.printf("Syntax: %s\n\n", m.usage)
		switch {
		case m.description != "":
			h.printf("Description:\n%s\n\n", indentWrap(3, m.description))
		case m.brief != "":
			h.printf("Description:\n%s.\n\n", indentWrap(3, m.brief))
		}
	default:
		h.println("Commands:")
		for _, m := range matches {
			h.printf("    %-20s  %s\n", m.path, m.brief)
		}
	}
	return nil
}

func (h *Host) cmdLabels(c cmd.Selection) error {
	labels := h.asm.Labels()
	n := 0
	for _, name := range labels.Names() {
		if len(c.Args) > 0 && !strings.HasPrefix(name, c.Args[0]) {
			continue
		}
		var addrs []string
		for _, a := range labels.Addresses(name) {
			addrs = append(addrs, a.String())
		}
		h.printf("%-24s %s\n", name, strings.Join(addrs, " "))
		n++
	}
	if n == 0 {
		h.println("No labels defined.")
	}
	return nil
}

func (h *Host) cmdPatchBuild(c cmd.Selection) error {
	p, err := h.BuildPatch()
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.printf("Patch built: %d records, %d bytes.\n", len(p.Chunks()), p.Len())
	return nil
}

func (h *Host) cmdPatchSave(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c)
		return nil
	}
	if err := h.SavePatch(c.Args[0]); err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.printf("Patch saved to '%s'.\n", filepath.Base(c.Args[0]))
	return nil
}

func (h *Host) cmdPatchLoad(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c)
		return nil
	}
	if err := h.LoadPatch(c.Args[0]); err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.printf("Patch loaded from '%s'.\n", filepath.Base(c.Args[0]))
	return nil
}

func (h *Host) cmdPatchList(c cmd.Selection) error {
	if h.patch == nil {
		h.println("No patch has been built or loaded.")
		return nil
	}
	i := 0
	for chunk := range h.patch.All() {
		h.printf("%3d  %v\n", i, chunk)
		i++
	}
	return nil
}

func (h *Host) cmdPatchDisassemble(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c)
		return nil
	}
	if h.patch == nil {
		h.println("No patch has been built or loaded.")
		return nil
	}

	index, err := h.evaluate(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}
	chunks := h.patch.Chunks()
	if index < 0 || index >= len(chunks) {
		h.printf("Record %d does not exist.\n", index)
		return nil
	}
	chunk := chunks[index]

	addr := chunk.Start
	if len(c.Args) > 1 {
		if addr, err = h.evaluate(c.Args[1]); err != nil {
			h.printf("%v\n", err)
			return nil
		}
	}

	lines := h.settings.DisasmLines
	if len(c.Args) > 2 {
		if lines, err = h.evaluate(c.Args[2]); err != nil {
			h.printf("%v\n", err)
			return nil
		}
	}

	for pos, i := 0, 0; pos < len(chunk.Data) && i < lines; i++ {
		line, next := disasm.Disassemble(chunk.Data, pos, addr)
		h.printf("%04X-   %-8s    %s\n", addr+pos, codeString(chunk.Data[pos:next]), line)
		pos = next
	}
	return nil
}

func (h *Host) cmdPatchApply(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c)
		return nil
	}
	output := c.Args[0]
	if len(c.Args) > 1 {
		output = c.Args[1]
	}
	if err := h.ApplyPatch(c.Args[0], output); err != nil {
		h.printf("%v\n", err)
		return nil
	}
	h.printf("Patch applied to '%s'.\n", filepath.Base(output))
	return nil
}

func (h *Host) cmdSource(c cmd.Selection) error {
	if len(c.Args) < 1 {
		h.displayUsage(c)
		return nil
	}
	addr, err := h.evaluate(c.Args[0])
	if err != nil {
		h.printf("%v\n", err)
		return nil
	}

	m := h.asm.SourceMap()
	found := false
	if unit, line, ok := m.Lookup(addr); ok {
		h.printf("prg:$%X  %s:%d\n", addr, filepath.Base(unit), line)
		found = true
	}
	for _, l := range m.AtCPU(addr) {
		h.printf("$%X  %s:%d (prg:$%X)\n", addr, filepath.Base(m.Units[l.Unit]), l.Line, l.PRG)
		found = true
	}
	if !found {
		h.println("No source line found.")
	}
	return nil
}

func (h *Host) cmdQuit(c cmd.Selection) error {
	return errQuit
}

func (h *Host) cmdSet(c cmd.Selection) error {
	switch len(c.Args) {
	case 0:
		h.println("Variables:")
		h.settings.Display(h.output)
		h.flush()

	case 1:
		h.displayUsage(c)

	default:
		key, value := strings.ToLower(c.Args[0]), strings.Join(c.Args[1:], " ")

		var err error
		switch h.settings.Kind(key) {
		case reflect.Invalid:
			err = fmt.Errorf("Setting '%s' not found", key)
		case reflect.Bool:
			var v bool
			v, err = stringToBool(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		default:
			var v int
			v, err = h.evaluate(value)
			if err == nil {
				err = h.settings.Set(key, v)
			}
		}

		if err == nil {
			h.println("Setting updated.")
		} else {
			h.printf("%v\n", err)
		}

		h.onSettingsUpdate()
	}

	return nil
}

func (h *Host) onSettingsUpdate() {
	var options asm.Option
	if h.settings.Verbose {
		options |= asm.Verbose
	}
	h.asm.SetOutput(h.output, options)
}

// Evaluate a command argument. In hex mode, a bare run of hex digits is
// read as a hexadecimal number.
func (h *Host) evaluate(expr string) (int, error) {
	expr = strings.TrimSpace(expr)
	if h.settings.HexMode && hexDigits(expr) {
		v, err := strconv.ParseInt(expr, 16, 32)
		return int(v), err
	}
	return h.asm.Evaluate(expr)
}

func (h *Host) displayUsage(c cmd.Selection) {
	if command, ok := c.Command.Data.(*command); ok && command.usage != "" {
		h.printf("Syntax: %s\n", command.usage)
	} else {
		h.println("<no help text>")
	}
}

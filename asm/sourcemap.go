package asm

import (
	"encoding/json"
	"io"
	"sort"
)

// A SourceMap relates the bytes written by an assembly back to the unit
// lines that produced them. Lines are ordered by PRG offset.
type SourceMap struct {
	Units []string     `json:"units"`
	Lines []SourceLine `json:"lines"`
}

// A SourceLine records where one statement's bytes were written.
type SourceLine struct {
	PRG  int `json:"prg"`  // PRG offset of the first byte
	CPU  int `json:"cpu"`  // CPU address of the first byte, -1 if unmapped
	Size int `json:"size"` // number of bytes written
	Unit int `json:"unit"` // index into Units
	Line int `json:"line"` // 1-based line number
}

// Lookup returns the unit and line whose bytes cover a PRG offset.
func (s *SourceMap) Lookup(prg int) (unit string, line int, ok bool) {
	i := sort.Search(len(s.Lines), func(i int) bool {
		return s.Lines[i].PRG > prg
	})
	if i == 0 {
		return "", 0, false
	}
	l := s.Lines[i-1]
	if prg >= l.PRG+l.Size {
		return "", 0, false
	}
	return s.Units[l.Unit], l.Line, true
}

// AtCPU returns the lines whose first byte was written at a CPU address.
// Lines assembled into different banks may share one.
func (s *SourceMap) AtCPU(cpu int) []SourceLine {
	var lines []SourceLine
	for _, l := range s.Lines {
		if l.CPU == cpu {
			lines = append(lines, l)
		}
	}
	return lines
}

// ReadFrom reads a source map written by WriteTo.
func (s *SourceMap) ReadFrom(r io.Reader) (n int64, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return int64(len(b)), err
	}
	if err := json.Unmarshal(b, s); err != nil {
		return int64(len(b)), err
	}
	return int64(len(b)), nil
}

// WriteTo writes the source map as JSON.
func (s *SourceMap) WriteTo(w io.Writer) (n int64, err error) {
	b, err := json.Marshal(s)
	if err != nil {
		return 0, err
	}
	nn, err := w.Write(b)
	return int64(nn), err
}

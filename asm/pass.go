// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"sort"

	"github.com/romhack/patch6502/patch"
)

// A FreeSpace describes unused bytes reported by a non-strict .assert.
type FreeSpace struct {
	Start int // PRG address of the first free byte
	End   int // PRG address of the assertion target
}

// Size returns the number of free bytes.
func (f FreeSpace) Size() int {
	return f.End - f.Start
}

// The output of one unit's second pass.
type unitOutput struct {
	chunks []patch.Chunk
	lines  []SourceLine
	free   []FreeSpace
}

type written struct {
	b    byte
	line line
}

// Replay the unit's statements against a fresh context, collecting the
// emitted bytes into contiguous chunks.
func (u *unit) resolve() (*unitOutput, error) {
	c := NewContext(u.labels)
	out := &unitOutput{}
	mem := make(map[int]written)

	for _, l := range u.lines {
		if err := l.expand(c); err != nil {
			return nil, &LineError{Origin: l.origin(), Err: err}
		}

		if o, ok := l.(*orgLine); ok {
			if w, ok := mem[o.pc]; ok {
				return nil, &CollisionError{Addr: o.pc, First: w.line.origin(), Second: l.origin()}
			}
		}

		if a, ok := l.(*assertLine); ok && !a.exact {
			free := FreeSpace{Start: c.PC, End: a.pc}
			out.free = append(out.free, free)
			u.a.log("Free: %d bytes between $%x and $%x", free.Size(), free.Start, free.End)
		}

		b, err := l.bytes()
		if err != nil {
			return nil, &LineError{Origin: l.origin(), Err: err}
		}
		if len(b) == 0 {
			continue
		}

		addr := c.PC
		for _, v := range b {
			if w, ok := mem[c.PC]; ok {
				return nil, &CollisionError{Addr: c.PC, First: w.line.origin(), Second: l.origin()}
			}
			mem[c.PC] = written{b: v, line: l}
			c.PC++
		}

		cpu, err := c.PRGToCPU(addr)
		if err != nil {
			cpu = -1
		}
		out.lines = append(out.lines, SourceLine{
			PRG:  addr,
			CPU:  cpu,
			Size: len(b),
			Unit: u.index,
			Line: l.origin().Line,
		})
		u.a.logBytes(addr, b, l.origin().Text)
	}

	out.chunks = chunks(mem)
	return out, nil
}

// Partition the written addresses into maximal runs of consecutive
// addresses.
func chunks(mem map[int]written) []patch.Chunk {
	addrs := make([]int, 0, len(mem))
	for addr := range mem {
		addrs = append(addrs, addr)
	}
	sort.Ints(addrs)

	var chunks []patch.Chunk
	for i := 0; i < len(addrs); {
		j := i + 1
		for j < len(addrs) && addrs[j] == addrs[j-1]+1 {
			j++
		}
		data := make([]byte, j-i)
		for k := range data {
			data[k] = mem[addrs[i+k]].b
		}
		chunks = append(chunks, patch.Chunk{Start: addrs[i], Data: data})
		i = j
	}
	return chunks
}

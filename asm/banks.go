// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import "fmt"

// A bankMap holds the current correspondence between PRG offsets and CPU
// addresses. The forward and reverse maps always mirror each other.
type bankMap struct {
	prgToCPU map[int]int
	cpuToPRG map[int]int
}

func newBankMap() *bankMap {
	return &bankMap{
		prgToCPU: make(map[int]int),
		cpuToPRG: make(map[int]int),
	}
}

func (b *bankMap) empty() bool {
	return len(b.prgToCPU) == 0
}

// Map a window of length bytes of PRG space starting at prg into the CPU
// address space starting at cpu. Any earlier mapping of either window is
// dropped first.
func (b *bankMap) update(prg, cpu, length int) {
	for i := 0; i < length; i++ {
		if oldPRG, ok := b.cpuToPRG[cpu+i]; ok {
			delete(b.prgToCPU, oldPRG)
			delete(b.cpuToPRG, cpu+i)
		}
		if oldCPU, ok := b.prgToCPU[prg+i]; ok {
			delete(b.cpuToPRG, oldCPU)
			delete(b.prgToCPU, prg+i)
		}
	}
	for i := 0; i < length; i++ {
		b.prgToCPU[prg+i] = cpu + i
		b.cpuToPRG[cpu+i] = prg + i
	}
}

// Return the CPU address a PRG offset is currently mapped to. Before any
// bank has been mapped, PRG offsets map to themselves.
func (b *bankMap) toCPU(prg int) (int, error) {
	if b.empty() {
		return prg, nil
	}
	cpu, ok := b.prgToCPU[prg]
	if !ok {
		return 0, fmt.Errorf("%w: $%x", ErrUnmappedAddress, prg)
	}
	return cpu, nil
}

// Return the PRG offset currently visible at a CPU address.
func (b *bankMap) toPRG(cpu int) (int, error) {
	if b.empty() {
		return cpu, nil
	}
	prg, ok := b.cpuToPRG[cpu]
	if !ok {
		return 0, fmt.Errorf("%w: no PRG mapped at $%x", ErrUnmappedAddress, cpu)
	}
	return prg, nil
}

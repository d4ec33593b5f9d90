// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package isa

import "testing"

func TestInstructionSet(t *testing.T) {
	set := Get()

	tests := []struct {
		name   string
		mode   Mode
		opcode byte
		length int
	}{
		{"LDA", IMM, 0xa9, 2},
		{"lda", ABS, 0xad, 3},
		{"STA", IDY, 0x91, 2},
		{"JMP", IND, 0x6c, 3},
		{"BNE", REL, 0xd0, 2},
		{"ASL", IMP, 0x0a, 1},
		{"LDX", ZPY, 0xb6, 2},
		{"BRK", IMP, 0x00, 1},
	}
	for _, test := range tests {
		inst := set.Find(test.name, test.mode)
		if inst == nil {
			t.Errorf("%s %s not found", test.name, test.mode)
			continue
		}
		if inst.Opcode != test.opcode || inst.Length != test.length {
			t.Errorf("%s %s: got opcode $%02X length %d", test.name, test.mode, inst.Opcode, inst.Length)
		}
		if set.Lookup(test.opcode) != inst {
			t.Errorf("Lookup($%02X) does not return %s", test.opcode, test.name)
		}
	}
}

func TestUnsupported(t *testing.T) {
	set := Get()
	if set.Supports("STX", ABY) {
		t.Error("STX should not support AbsoluteY")
	}
	if set.Lookup(0x02) != nil {
		t.Error("opcode $02 should be unused")
	}
	if len(set.GetInstructions("XYZ")) != 0 {
		t.Error("XYZ should not be a mnemonic")
	}

	modes := set.SupportedModes("JMP")
	if len(modes) != 2 || modes[0] != IND || modes[1] != ABS {
		t.Errorf("JMP modes = %v", modes)
	}
}

func TestOpcodeTable(t *testing.T) {
	n := 0
	for op := 0; op < 256; op++ {
		inst := Get().Lookup(byte(op))
		if inst == nil {
			continue
		}
		n++
		if inst.Length != 1+inst.Mode.OperandSize() {
			t.Errorf("%s %s has length %d", inst.Name, inst.Mode, inst.Length)
		}
	}
	if n != 151 {
		t.Errorf("expected 151 documented opcodes, got %d", n)
	}
}

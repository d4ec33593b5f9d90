// Copyright 2014 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package disasm

import "testing"

func TestDisassemble(t *testing.T) {
	code := []byte{
		0xa9, 0x01,       // LDA #$01
		0x8d, 0x00, 0x20, // STA $2000
		0xb1, 0x20,       // LDA ($20),Y
		0xd0, 0xf7,       // BNE $8000
		0x0a,             // ASL
		0x6c, 0x34, 0x12, // JMP ($1234)
		0x02,             // unused
		0x4c, 0x00,       // truncated JMP, then BRK
	}
	expected := []string{
		"LDA #$01",
		"STA $2000",
		"LDA ($20),Y",
		"BNE $8000",
		"ASL",
		"JMP ($1234)",
		".byte $02",
		".byte $4C",
		"BRK",
	}

	pos := 0
	for i, exp := range expected {
		if pos >= len(code) {
			t.Fatalf("ran out of code at line %d", i)
		}
		line, next := Disassemble(code, pos, 0x8000)
		if line != exp {
			t.Errorf("line %d: got %q, expected %q", i, line, exp)
		}
		pos = next
	}
	if pos != len(code) {
		t.Errorf("stopped at %d of %d", pos, len(code))
	}
}

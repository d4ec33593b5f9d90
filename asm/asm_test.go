// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/romhack/patch6502/patch"
)

func assemble(code string) ([]patch.Chunk, error) {
	a := New(io.Discard, 0)
	if err := a.AssembleString(code, "test"); err != nil {
		return nil, err
	}
	return a.Chunks(), nil
}

func hexString(b []byte) string {
	s := make([]byte, len(b)*2)
	for i, j := 0, 0; i < len(b); i, j = i+1, j+2 {
		s[j+0] = hex[b[i]>>4]
		s[j+1] = hex[b[i]&0x0f]
	}
	return string(s)
}

func checkASM(t *testing.T, asm string, expected string) {
	t.Helper()
	chunks, err := assemble(asm)
	if err != nil {
		t.Error(err)
		return
	}

	var code []byte
	for _, c := range chunks {
		code = append(code, c.Data...)
	}
	s := hexString(code)

	if s != expected {
		t.Error("code doesn't match expected")
		t.Errorf("got: %s\n", s)
		t.Errorf("exp: %s\n", expected)
	}
}

func checkASMError(t *testing.T, asm string, kind error) *LineError {
	t.Helper()
	_, err := assemble(asm)
	if err == nil {
		t.Errorf("Expected error on %s, didn't get one\n", asm)
		return nil
	}
	if !errors.Is(err, kind) {
		t.Errorf("Expected '%v', got '%v'\n", kind, err)
	}
	var le *LineError
	errors.As(err, &le)
	return le
}

func TestAddressingIMM(t *testing.T) {
	asm := `
	LDA #$20
	LDX #$20
	LDY #$20
	ADC #$20
	SBC #$20
	CMP #$20
	CPX #$20
	CPY #$20
	AND #$20
	ORA #$20
	EOR #$20`

	checkASM(t, asm, "A920A220A0206920E920C920E020C020292009204920")
}

func TestAddressingABS(t *testing.T) {
	asm := `
	LDA $2000
	LDX $2000
	LDY $2000
	STA $2000
	STX $2000
	STY $2000
	JMP $2000
	JSR $2000`

	checkASM(t, asm, "AD0020AE0020AC00208D00208E00208C00204C0020200020")
}

func TestAddressingZPG(t *testing.T) {
	asm := `
	LDA $20
	STA $20
	LDX $20
	INC $20
	LDA $0020`

	checkASM(t, asm, "A5208520A620E620AD2000")
}

func TestAddressingIndexed(t *testing.T) {
	asm := `
	LDA $20,X
	STY $20,X
	LDX $20,Y
	STX $20,Y
	LDA $2000,X
	STA $2000,x
	LDA $2000,Y
	LDX $2000,Y`

	checkASM(t, asm, "B5209420B6209620BD00209D0020B90020BE0020")
}

func TestAddressingIndirect(t *testing.T) {
	asm := `
	LDA ($20,X)
	LDA ($20),Y
	STA ( $20 ), y
	JMP ($2000)`

	checkASM(t, asm, "A120B12091206C0020")
}

func TestAddressingIMP(t *testing.T) {
	asm := `
	NOP
	RTS
	ASL
	clc
	Sei`

	checkASM(t, asm, "EA600A1878")
}

func TestAddressingREL(t *testing.T) {
	asm := `
	ldx #$00
	beq +
	nop
+	rts`

	checkASM(t, asm, "A200F001EA60")
}

func TestBranchBackward(t *testing.T) {
	asm := `
	.bank $0 $c000 : $100
	.org $0
-	dex
	bne -`

	checkASM(t, asm, "CAD0FD")
}

func TestBranchRange(t *testing.T) {
	ok := "\t.org $8000\n\tbne target\n\t.skip 127\ntarget:\n\tnop\n"
	checkASM(t, ok, "D07FEA")

	far := "\t.org $8000\n\tbne target\n\t.skip 128\ntarget:\n\tnop\n"
	le := checkASMError(t, far, ErrBranchOutOfRange)
	if le == nil || le.Line != 2 || le.Text != "\tbne target" {
		t.Errorf("unexpected provenance: %v", le)
	}
}

func TestRelativeLabels(t *testing.T) {
	asm := `
	.org $10
--	ldx #$00
-	dex
	bne -
	beq ++
	beq +
	nop
+	nop
++	rts
	jmp --`

	checkASM(t, asm, "A200CAD0FDF004F001EAEA604C1000")

	// "++" is a name of its own, not another "+".
	checkASMError(t, "\tbeq ++\n+\trts\n", ErrLabelNotFound)
}

func TestDataBytes(t *testing.T) {
	asm := `
	.byte $01, 2, %11, 010
	.byte "AB", ';'
	.BYTE -1, 2*3+1, (1+2)*3
	.byte <$1234, >$1234`

	checkASM(t, asm, "0102030841423BFF07093412")
	checkASMError(t, "\t.byte \"caf\u00e9\"\n", ErrParse)
}

func TestDataWords(t *testing.T) {
	asm := `
	.org $8000
start:
	.word start, end
	.word $1234
end:`

	checkASM(t, asm, "008006803412")
}

func TestReserve(t *testing.T) {
	asm := `
	.res 3, $ff
	.res 2
	.res 0
	nop`

	checkASM(t, asm, "FFFFFF0000EA")
	checkASMError(t, "\t.res -1\n", ErrParse)
	checkASMError(t, "\t.res $7fffffff\n", ErrParse)
}

func TestExpressions(t *testing.T) {
	asm := `
	.org $8000
table:
	lda #<table
	ldx #>table
	lda table+1,x
	lda table-1
	lda #$1234`

	checkASM(t, asm, "A900A280BD0180ADFF7FA934")
}

func TestDefine(t *testing.T) {
	asm := `
define SCREEN $2000
define COUNT 3*2
	.org $8000
start:
define alias start
	sta SCREEN
	ldx #COUNT
	jmp alias`

	checkASM(t, asm, "8D0020A2064C0080")
}

func TestComments(t *testing.T) {
	asm := `
; a full line comment
	lda #$01 ; trailing comment
	.byte ";", $02  ; quoted semicolon
label: ; label only`

	checkASM(t, asm, "A9013B02")
}

func TestConditionals(t *testing.T) {
	asm := `
define DEBUG 1
.ifdef DEBUG
	lda #$01
.else
	lda #$02
.endif
	.ifndef DEBUG
	nop
	.endif
.ifdef MISSING
.ifdef DEBUG
	nop
.endif
.else
	rts
.endif`

	checkASM(t, asm, "A90160")
}

func TestConditionalErrors(t *testing.T) {
	checkASMError(t, ".ifdef X\n\tnop\n", ErrUnterminatedConditional)
	checkASMError(t, ".endif\n", ErrParse)
	checkASMError(t, "\t.else\n", ErrParse)
}

func TestSkip(t *testing.T) {
	chunks, err := assemble("\t.org $10\n\tnop\n\t.skip 2\n\tnop\n")
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 || chunks[0].Start != 0x10 || chunks[1].Start != 0x13 {
		t.Errorf("unexpected chunks: %v", chunks)
	}
}

func TestAssert(t *testing.T) {
	checkASM(t, "\t.org $10\n\tnop\n\t.assert $11\n\trts\n", "EA60")
	checkASMError(t, "\t.org $10\n\tnop\n\t.assert $12\n", ErrMisalignment)
	checkASMError(t, "\t.org $10\n\tnop\n\tnop\n\t.assert < $11\n", ErrMisalignment)

	a := New(io.Discard, 0)
	if err := a.AssembleString("\t.org $10\n\tnop\n\t.assert < $20\n", "test"); err != nil {
		t.Fatal(err)
	}
	free := a.Free()
	if len(free) != 1 || free[0] != (FreeSpace{Start: 0x11, End: 0x20}) || free[0].Size() != 15 {
		t.Errorf("unexpected free space: %v", free)
	}
}

func TestBank(t *testing.T) {
	asm := `
	.org $10
	.bank $10 $8000 : $100
start:
	jmp start
	.bank $10 $c000 : $100
	jmp start`

	checkASM(t, asm, "4C00804C00C0")

	unmapped := "\t.bank $10 $8000 : $10\n\t.org $40\nx:\n\tjmp x\n"
	checkASMError(t, unmapped, ErrUnmappedAddress)
}

func TestBankRemap(t *testing.T) {
	c := NewContext(NewLabelTable())

	v, err := c.Translate(PrgOffset(0x42))
	if err != nil || v != 0x42 {
		t.Errorf("identity translation: got $%x, %v", v, err)
	}

	c.UpdateBank(0x10, 0x8000, 0x100)
	v, err = c.Translate(PrgOffset(0x10))
	if err != nil || v != 0x8000 {
		t.Errorf("first bank: got $%x, %v", v, err)
	}

	c.UpdateBank(0x10, 0xc000, 0x100)
	v, err = c.Translate(PrgOffset(0x10))
	if err != nil || v != 0xc000 {
		t.Errorf("second bank: got $%x, %v", v, err)
	}
	if _, err := c.CPUToPRG(0x8000); !errors.Is(err, ErrUnmappedAddress) {
		t.Errorf("expected $8000 to be unmapped, got %v", err)
	}
	if prg, err := c.CPUToPRG(0xc005); err != nil || prg != 0x15 {
		t.Errorf("reverse lookup: got $%x, %v", prg, err)
	}

	v, err = c.Translate(Resolved(0x8000))
	if err != nil || v != 0x8000 {
		t.Errorf("resolved address: got $%x, %v", v, err)
	}
}

func TestNearest(t *testing.T) {
	labels := NewLabelTable()
	for _, v := range []int{30, 10, 20} {
		labels.Add("loop", Resolved(v))
	}

	tests := []struct {
		name string
		at   int
		want int
	}{
		{"-loop", 25, 20},
		{"+loop", 15, 20},
		{"loop", 24, 20},
		{"loop", 26, 30},
		{"loop", 25, 20},
		{"+loop", 20, 20},
		{"-loop", 5, 10},
		{"+loop", 40, 30},
	}
	for _, test := range tests {
		a, err := labels.Nearest(test.name, test.at)
		if err != nil {
			t.Errorf("Nearest(%s, %d): %v", test.name, test.at, err)
			continue
		}
		if a.Value != test.want {
			t.Errorf("Nearest(%s, %d) = %d, want %d", test.name, test.at, a.Value, test.want)
		}
	}

	if _, err := labels.Nearest("none", 0); !errors.Is(err, ErrLabelNotFound) {
		t.Errorf("expected ErrLabelNotFound, got %v", err)
	}
}

func TestLabelTable(t *testing.T) {
	labels := NewLabelTable()
	labels.Add("x", PrgOffset(5))
	labels.Add("x", PrgOffset(5))
	if n := len(labels.Addresses("x")); n != 1 {
		t.Errorf("duplicate definition recorded, got %d addresses", n)
	}

	labels.Add("y", Resolved(5))
	labels.Add("y", PrgOffset(5))
	labels.Add("y", Resolved(1))
	addrs := labels.Addresses("y")
	want := []Address{Resolved(1), PrgOffset(5), Resolved(5)}
	for i := range want {
		if i >= len(addrs) || addrs[i] != want[i] {
			t.Fatalf("addresses not sorted: %v", addrs)
		}
	}

	if _, err := labels.Lookup("y"); !errors.Is(err, ErrAmbiguousLabel) {
		t.Errorf("expected ErrAmbiguousLabel, got %v", err)
	}
	if a, err := labels.Lookup("x"); err != nil || a != PrgOffset(5) {
		t.Errorf("Lookup(x) = %v, %v", a, err)
	}
	if names := labels.Names(); strings.Join(names, ",") != "x,y" {
		t.Errorf("Names() = %v", names)
	}
}

func TestCollision(t *testing.T) {
	src := "\t.org $8000\n\tnop\n\t.org $8000\n\trts\n"
	_, err := assemble(src)
	var ce *CollisionError
	if !errors.As(err, &ce) {
		t.Fatalf("expected a collision, got %v", err)
	}
	if !errors.Is(err, ErrCollision) {
		t.Errorf("collision does not wrap ErrCollision")
	}
	if ce.Addr != 0x8000 || ce.First.Line != 2 || ce.Second.Line != 3 {
		t.Errorf("unexpected collision: %v", ce)
	}
	if !strings.Contains(ce.Error(), "test:2") || !strings.Contains(ce.Error(), "test:3") {
		t.Errorf("collision does not name both lines: %v", ce)
	}

	overlap := "\t.org $12\n\tnop\n\t.org $10\n\t.byte 1, 2, 3\n"
	_, err = assemble(overlap)
	if !errors.As(err, &ce) || ce.Addr != 0x12 || ce.First.Line != 2 || ce.Second.Line != 4 {
		t.Errorf("unexpected overlap result: %v", err)
	}
}

func TestErrors(t *testing.T) {
	checkASMError(t, "\tfoo $10\n", ErrParse)
	checkASMError(t, "\tlda\n", ErrUnsupportedMode)
	checkASMError(t, "\tnop #$10\n", ErrUnsupportedMode)
	checkASMError(t, "\tjmp nowhere\n", ErrLabelNotFound)
	checkASMError(t, "dup:\n\tnop\ndup:\n\t.word dup\n", ErrAmbiguousLabel)
	checkASMError(t, "\t.foo 1\n", ErrParse)
	checkASMError(t, "hello world\n", ErrParse)
	checkASMError(t, "\tlda #($10\n", ErrParse)
	checkASMError(t, "\t.byte\n", ErrParse)

	le := checkASMError(t, "\tnop\n\n\tlda #$01\n\tjmp missing\n", ErrLabelNotFound)
	if le == nil || le.File != "test" || le.Line != 4 || le.Text != "\tjmp missing" {
		t.Errorf("unexpected provenance: %+v", le)
	}
}

func TestEndToEnd(t *testing.T) {
	src := ".org $8000\nstart: lda #$01\n       sta $2000\n       jmp start\n"

	a := New(io.Discard, 0)
	if err := a.AssembleString(src, "test"); err != nil {
		t.Fatal(err)
	}
	chunks := a.Chunks()
	if len(chunks) != 1 || chunks[0].Start != 0x8000 {
		t.Fatalf("unexpected chunks: %v", chunks)
	}
	if s := hexString(chunks[0].Data); s != "A9018D00204C0080" {
		t.Errorf("got %s", s)
	}

	p, err := a.Patch()
	if err != nil {
		t.Fatal(err)
	}
	want := append([]byte("PATCH\x00\x80\x00\x00\x08"), chunks[0].Data...)
	want = append(want, "EOF"...)
	if !bytes.Equal(p.Bytes(), want) {
		t.Errorf("patch mismatch:\ngot: %x\nexp: %x", p.Bytes(), want)
	}
}

func TestMultipleUnits(t *testing.T) {
	a := New(io.Discard, 0)
	if err := a.AssembleString(".org $8000\nsub:\n\trts\n", "one"); err != nil {
		t.Fatal(err)
	}
	if err := a.AssembleString(".org $9000\n\tjsr sub\n", "two"); err != nil {
		t.Fatal(err)
	}

	chunks := a.Chunks()
	if len(chunks) != 2 || chunks[1].Start != 0x9000 || hexString(chunks[1].Data) != "200080" {
		t.Errorf("unexpected chunks: %v", chunks)
	}

	if v, err := a.Evaluate("sub+1"); err != nil || v != 0x8001 {
		t.Errorf("Evaluate(sub+1) = $%x, %v", v, err)
	}
	if v, err := a.Expand("sub"); err != nil || v != 0x8000 {
		t.Errorf("Expand(sub) = $%x, %v", v, err)
	}

	// A unit that fails contributes nothing, not even its labels.
	if err := a.AssembleString(".org $a000\n\tnop\n\tjmp later\n", "three"); err == nil {
		t.Error("expected forward reference across units to fail")
	}
	if n := len(a.Chunks()); n != 2 {
		t.Errorf("failed unit added chunks, now %d", n)
	}
	if err := a.AssembleString("\t.org $b000\nfoo:\n\tnop\n\tjmp missing\n", "four"); err == nil {
		t.Error("expected undefined label to fail")
	}
	if a.Labels().Has("foo") {
		t.Error("labels of a failed unit were kept")
	}
	if err := a.AssembleString("\t.org $9100\n\tjmp foo\n", "five"); !errors.Is(err, ErrLabelNotFound) {
		t.Errorf("expected ErrLabelNotFound, got %v", err)
	}
	if v, err := a.Expand("sub"); err != nil || v != 0x8000 {
		t.Errorf("labels of earlier units lost: $%x, %v", v, err)
	}
}

func TestPatchROM(t *testing.T) {
	a := New(io.Discard, 0)
	if err := a.AssembleString("\t.org $10\n\tnop\n", "test"); err != nil {
		t.Fatal(err)
	}
	rom := make([]byte, patch.HeaderSize+patch.DefaultPRGSize)
	if err := a.PatchROM(rom); err != nil {
		t.Fatal(err)
	}
	if rom[patch.HeaderSize+0x10] != 0xea {
		t.Errorf("byte not written at $%x", patch.HeaderSize+0x10)
	}
	if len(a.Chunks()) != 0 {
		t.Error("chunks not cleared after PatchROM")
	}

	if err := a.AssembleString("\t.org $50000\n\tnop\n", "big"); err != nil {
		t.Fatal(err)
	}
	if err := a.PatchROM(make([]byte, 0x100)); !errors.Is(err, patch.ErrOutOfBounds) {
		t.Errorf("expected ErrOutOfBounds, got %v", err)
	}
}

func TestSourceMap(t *testing.T) {
	a := New(io.Discard, 0)
	src := "\t.org $10\n\t.bank $10 $8000 : $10\n\tnop\n\n\tlda #$01\n" +
		"\t.org $20\n\t.bank $20 $8000 : $10\n\trts\n"
	if err := a.AssembleString(src, "test"); err != nil {
		t.Fatal(err)
	}
	m := a.SourceMap()
	if unit, line, ok := m.Lookup(0x12); !ok || unit != "test" || line != 5 {
		t.Errorf("Lookup($12) = %s:%d %v", unit, line, ok)
	}
	if _, _, ok := m.Lookup(0x13); ok {
		t.Error("Lookup($13) found a line")
	}

	lines := m.AtCPU(0x8000)
	if len(lines) != 2 || lines[0].PRG != 0x10 || lines[1].PRG != 0x20 {
		t.Errorf("AtCPU($8000) = %v", lines)
	}

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		t.Fatal(err)
	}
	var m2 SourceMap
	if _, err := m2.ReadFrom(&buf); err != nil {
		t.Fatal(err)
	}
	if unit, line, ok := m2.Lookup(0x20); !ok || unit != "test" || line != 8 {
		t.Errorf("Lookup($20) after reload = %s:%d %v", unit, line, ok)
	}
}

func TestVerbose(t *testing.T) {
	var buf bytes.Buffer
	a := New(&buf, Verbose)
	if err := a.AssembleString("\t.org $10\n\tnop\n\t.assert < $20\n", "test"); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, s := range []string{"-- Parsing test --", "0010-  EA", "Free: 15 bytes between $11 and $20"} {
		if !strings.Contains(out, s) {
			t.Errorf("verbose output missing %q:\n%s", s, out)
		}
	}
}

func TestLabelForms(t *testing.T) {
	asm := `
	.org $20
table: .byte 1, 2
+ ++
	.word table
	lda table,y
	jmp ++`

	checkASM(t, asm, "01022000B920004C2200")
}

// Copyright 2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package host

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runScript(t *testing.T, h *Host, lines ...string) (string, bool) {
	t.Helper()
	var out bytes.Buffer
	ok := h.RunCommands(strings.NewReader(strings.Join(lines, "\n")), &out, false)
	return out.String(), ok
}

func expectOutput(t *testing.T, out string, expected ...string) {
	t.Helper()
	for _, s := range expected {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
}

func TestAssembleAndPatch(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "prog.asm")
	rom := filepath.Join(dir, "game.nes")
	patched := filepath.Join(dir, "patched.nes")
	patchFile := filepath.Join(dir, "prog.patch")

	if err := os.WriteFile(src, []byte(".org $10\nstart: lda #$01\n\tjmp start\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(rom, make([]byte, 0x100), 0600); err != nil {
		t.Fatal(err)
	}

	h := New()
	out, ok := runScript(t, h,
		"assemble file "+src,
		"evaluate start+1",
		"e start",
		"labels",
		"source $12",
		"patch build",
		"patch save "+patchFile,
		"patch list",
		"patch disassemble 0 $8000 2",
		"patch apply "+rom+" "+patched,
		"quit",
		"evaluate $1234",
	)
	if ok {
		t.Error("expected quit to stop the script")
	}
	expectOutput(t, out,
		"Assembled 'prog.asm'.",
		"$0011",
		"$0010",
		"prg:$10",
		"prg:$12  prog.asm:3",
		"Patch built: 1 records",
		"Patch saved to 'prog.patch'.",
		"$000020-$000025 (5 bytes)",
		"8000-   A9 01       LDA #$01",
		"JMP $0010",
		"Patch applied to 'patched.nes'.",
	)
	if strings.Contains(out, "$1234") {
		t.Error("commands after quit were executed")
	}

	b, err := os.ReadFile(patched)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(b[0x20:0x25], []byte{0xa9, 0x01, 0x4c, 0x10, 0x00}) {
		t.Errorf("unexpected patched bytes: % x", b[0x20:0x25])
	}

	h2 := New()
	out, _ = runScript(t, h2, "patch load "+patchFile, "patch list")
	expectOutput(t, out, "Patch loaded from 'prog.patch'.", "$000020-$000025 (5 bytes)")
}

func TestAssembleError(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "bad.asm")
	if err := os.WriteFile(src, []byte("\tjmp nowhere\n"), 0600); err != nil {
		t.Fatal(err)
	}

	out, ok := runScript(t, New(), "assemble file "+src, "patch list")
	if !ok {
		t.Error("script stopped unexpectedly")
	}
	expectOutput(t, out,
		"Failed to assemble 'bad.asm'",
		"label not found",
		"No patch has been built or loaded.",
	)
}

func TestSettings(t *testing.T) {
	out, _ := runScript(t, New(),
		"set hexmode true",
		"evaluate 10",
		"set romlayout 5",
		"set nosuch 1",
		"set",
	)
	expectOutput(t, out,
		"Setting updated.",
		"$0010",
		"invalid bool value",
		"not found",
		"HexMode          true",
		"PRGSize          $40000",
	)
}

func TestHelp(t *testing.T) {
	out, _ := runScript(t, New(),
		"help",
		"help patch",
		"help quit",
		"bogus",
	)
	expectOutput(t, out,
		"assemble file",
		"patch disassemble",
		"Syntax: quit",
		"Command not found.",
	)
}

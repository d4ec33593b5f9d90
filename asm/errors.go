// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"errors"
	"fmt"
)

// Error kinds returned by the assembler. Every error returned by Assemble
// wraps exactly one of these, so callers may test for them with errors.Is.
var (
	ErrParse                   = errors.New("parse error")
	ErrUnterminatedConditional = errors.New("unterminated conditional")
	ErrLabelNotFound           = errors.New("label not found")
	ErrAmbiguousLabel          = errors.New("ambiguous label")
	ErrUnmappedAddress         = errors.New("PRG address unmapped")
	ErrUnsupportedMode         = errors.New("unsupported addressing mode")
	ErrBranchOutOfRange        = errors.New("too far to branch")
	ErrMisalignment            = errors.New("misalignment")
	ErrCollision               = errors.New("collision")
)

// An Origin identifies the source line a statement was read from.
type Origin struct {
	File string // name of the source unit
	Line int    // 1-based line number
	Text string // line contents as originally read
}

func (o Origin) String() string {
	return fmt.Sprintf("%s:%d  %s", o.File, o.Line, o.Text)
}

// A LineError attaches source provenance to an error raised while
// ingesting or resolving a single line.
type LineError struct {
	Origin
	Err error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%v from %s:%d: `%s`", e.Err, e.File, e.Line, e.Text)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// A CollisionError reports two lines writing the same output address.
type CollisionError struct {
	Addr   int    // colliding PRG address
	First  Origin // line that wrote the address first
	Second Origin // line that attempted to write it again
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("Collision at $%x:\n  written at %s\n  written at %s", e.Addr, e.First, e.Second)
}

func (e *CollisionError) Unwrap() error {
	return ErrCollision
}

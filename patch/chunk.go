// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package patch

import "fmt"

// A Chunk is a contiguous run of bytes to be written at a start address.
type Chunk struct {
	Start int
	Data  []byte
}

// End returns the address just past the chunk's last byte.
func (c Chunk) End() int {
	return c.Start + len(c.Data)
}

// Shift returns a copy of the chunk moved by offset bytes.
func (c Chunk) Shift(offset int) Chunk {
	return Chunk{Start: c.Start + offset, Data: append([]byte(nil), c.Data...)}
}

// Apply copies the chunk's bytes into buf at the chunk's start address.
func (c Chunk) Apply(buf []byte) error {
	if err := c.check(buf); err != nil {
		return err
	}
	copy(buf[c.Start:], c.Data)
	return nil
}

func (c Chunk) check(buf []byte) error {
	if c.Start < 0 || c.End() > len(buf) {
		return fmt.Errorf("%w: chunk $%x-$%x, buffer size $%x", ErrOutOfBounds, c.Start, c.End(), len(buf))
	}
	return nil
}

func (c Chunk) String() string {
	return fmt.Sprintf("$%06X-$%06X (%d bytes)", c.Start, c.End(), len(c.Data))
}

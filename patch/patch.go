// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package patch implements the binary patch format produced by the
// assembler.
//
// A patch starts with the 5-byte signature "PATCH". Each record that
// follows holds a 3-byte big-endian start address, a 2-byte big-endian
// length and that many data bytes. The patch ends with the 3-byte
// footer "EOF".
package patch

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"iter"
)

// Errors returned by the patch functions.
var (
	ErrInvalidPatch = errors.New("invalid patch")
	ErrOutOfBounds  = errors.New("patch out of bounds")
	ErrAddressRange = errors.New("address out of patch range")
)

const (
	signature    = "PATCH"
	footer       = "EOF"
	headerSize   = 5
	maxAddress   = 0xffffff
	maxRecordLen = 0xffff
)

// A Patch is an encoded, ordered set of chunks.
type Patch struct {
	data []byte
}

// From encodes chunks as a patch. A chunk longer than a single record
// can hold is split across consecutive records.
func From(chunks []Chunk) (*Patch, error) {
	n := len(signature) + len(footer)
	for _, c := range chunks {
		n += len(c.Data) + headerSize*(len(c.Data)/maxRecordLen+1)
	}

	data := make([]byte, 0, n)
	data = append(data, signature...)
	for _, c := range chunks {
		if c.Start < 0 || c.Start+max(len(c.Data)-1, 0) > maxAddress {
			return nil, fmt.Errorf("%w: chunk at $%x", ErrAddressRange, c.Start)
		}
		start, b := c.Start, c.Data
		for {
			l := min(len(b), maxRecordLen)
			data = append(data, byte(start>>16), byte(start>>8), byte(start), byte(l>>8), byte(l))
			data = append(data, b[:l]...)
			start, b = start+l, b[l:]
			if len(b) == 0 {
				break
			}
		}
	}
	data = append(data, footer...)
	return &Patch{data: data}, nil
}

// Decode validates an encoded patch.
func Decode(b []byte) (*Patch, error) {
	if len(b) < len(signature)+len(footer) || string(b[:len(signature)]) != signature {
		return nil, fmt.Errorf("%w: missing signature", ErrInvalidPatch)
	}
	end := len(b) - len(footer)
	if string(b[end:]) != footer {
		return nil, fmt.Errorf("%w: missing footer", ErrInvalidPatch)
	}
	for pos := len(signature); pos < end; {
		if pos+headerSize > end {
			return nil, fmt.Errorf("%w: truncated record at offset %d", ErrInvalidPatch, pos)
		}
		l := int(b[pos+3])<<8 | int(b[pos+4])
		pos += headerSize + l
		if pos > end {
			return nil, fmt.Errorf("%w: truncated record data at offset %d", ErrInvalidPatch, pos-l)
		}
	}
	return &Patch{data: append([]byte(nil), b...)}, nil
}

// Bytes returns the encoded patch.
func (p *Patch) Bytes() []byte {
	return p.data
}

// Len returns the size of the encoded patch in bytes.
func (p *Patch) Len() int {
	return len(p.data)
}

// All iterates over the patch's records, decoding each one as it is
// reached. The yielded chunks share memory with the patch.
func (p *Patch) All() iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		end := len(p.data) - len(footer)
		for pos := len(signature); pos < end; {
			start := int(p.data[pos])<<16 | int(p.data[pos+1])<<8 | int(p.data[pos+2])
			l := int(p.data[pos+3])<<8 | int(p.data[pos+4])
			pos += headerSize
			if !yield(Chunk{Start: start, Data: p.data[pos : pos+l : pos+l]}) {
				return
			}
			pos += l
		}
	}
}

// Chunks returns copies of the patch's records.
func (p *Patch) Chunks() []Chunk {
	var chunks []Chunk
	for c := range p.All() {
		chunks = append(chunks, c.Shift(0))
	}
	return chunks
}

// Apply writes every record into buf. All records are checked against
// the size of buf before any byte is written.
func (p *Patch) Apply(buf []byte) error {
	for c := range p.All() {
		if err := c.check(buf); err != nil {
			return err
		}
	}
	for c := range p.All() {
		copy(buf[c.Start:], c.Data)
	}
	return nil
}

// Shift returns a copy of the patch with every record moved by offset.
func (p *Patch) Shift(offset int) (*Patch, error) {
	var chunks []Chunk
	for c := range p.All() {
		chunks = append(chunks, Chunk{Start: c.Start + offset, Data: c.Data})
	}
	return From(chunks)
}

// String returns the encoded patch as lowercase hexadecimal.
func (p *Patch) String() string {
	return hex.EncodeToString(p.data)
}

// ReadFrom reads and validates an encoded patch.
func (p *Patch) ReadFrom(r io.Reader) (n int64, err error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return int64(len(b)), err
	}
	d, err := Decode(b)
	if err != nil {
		return int64(len(b)), err
	}
	*p = *d
	return int64(len(b)), nil
}

// WriteTo writes the encoded patch to an output stream.
func (p *Patch) WriteTo(w io.Writer) (n int64, err error) {
	nn, err := w.Write(p.data)
	return int64(nn), err
}

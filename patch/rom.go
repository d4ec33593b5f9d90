// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package patch

// Default layout of a ROM image: a 16-byte header, followed by the PRG
// region, followed by the CHR region.
const (
	HeaderSize     = 0x10
	DefaultPRGSize = 0x40000
)

// A ROMLayout describes where the PRG and CHR regions start in a ROM
// image.
type ROMLayout struct {
	HeaderSize int // bytes preceding the PRG region
	PRGSize    int // size of the PRG region
}

// DefaultLayout returns the layout with the default header and PRG sizes.
func DefaultLayout() ROMLayout {
	return ROMLayout{HeaderSize: HeaderSize, PRGSize: DefaultPRGSize}
}

// Build combines a patch addressed in PRG space and an optional patch
// addressed in CHR space into a single patch addressed in ROM image
// space.
func (l ROMLayout) Build(prg, chr *Patch) (*Patch, error) {
	var chunks []Chunk
	for c := range prg.All() {
		chunks = append(chunks, c.Shift(l.HeaderSize))
	}
	if chr != nil {
		for c := range chr.All() {
			chunks = append(chunks, c.Shift(l.HeaderSize+l.PRGSize))
		}
	}
	return From(chunks)
}

// BuildROMPatch combines PRG and CHR patches using the default header size
// and the given PRG region size. The chr patch may be nil.
func BuildROMPatch(prg, chr *Patch, prgSize int) (*Patch, error) {
	return ROMLayout{HeaderSize: HeaderSize, PRGSize: prgSize}.Build(prg, chr)
}

// Copyright 2014-2018 Brett Vickers. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package asm

import (
	"fmt"
	"sort"
	"strings"
)

// A LabelTable maps each label name to the sorted list of addresses at
// which it has been defined. Relative labels such as "-" and "+" are
// defined many times; ordinary labels once.
//
// A single table is shared by every source unit assembled by one
// Assembler.
type LabelTable struct {
	labels map[string][]Address
}

// NewLabelTable creates an empty label table.
func NewLabelTable() *LabelTable {
	return &LabelTable{labels: make(map[string][]Address)}
}

// Add records a definition of the label at the address. Definitions are
// kept sorted, and an exact duplicate is ignored.
func (t *LabelTable) Add(name string, addr Address) {
	addrs := t.labels[name]
	i := sort.Search(len(addrs), func(i int) bool {
		return !addrs[i].less(addr)
	})
	if i < len(addrs) && addrs[i] == addr {
		return
	}
	addrs = append(addrs, Address{})
	copy(addrs[i+1:], addrs[i:])
	addrs[i] = addr
	t.labels[name] = addrs
}

// Has returns true if the label has at least one definition.
func (t *LabelTable) Has(name string) bool {
	return len(t.labels[name]) > 0
}

// Addresses returns a copy of the sorted definitions of a label.
func (t *LabelTable) Addresses(name string) []Address {
	return append([]Address(nil), t.labels[name]...)
}

// Copy the table's definitions so they can be put back with restore.
func (t *LabelTable) snapshot() map[string][]Address {
	m := make(map[string][]Address, len(t.labels))
	for name, addrs := range t.labels {
		m[name] = append([]Address(nil), addrs...)
	}
	return m
}

func (t *LabelTable) restore(m map[string][]Address) {
	t.labels = m
}

// Names returns all defined label names in sorted order.
func (t *LabelTable) Names() []string {
	names := make([]string, 0, len(t.labels))
	for name := range t.labels {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the single definition of a label.
func (t *LabelTable) Lookup(name string) (Address, error) {
	addrs := t.labels[name]
	switch len(addrs) {
	case 0:
		return Address{}, fmt.Errorf("%w: %s", ErrLabelNotFound, name)
	case 1:
		return addrs[0], nil
	default:
		return Address{}, fmt.Errorf("%w: %s", ErrAmbiguousLabel, name)
	}
}

// Nearest selects the definition of a repeatable label closest to the
// search point. A name starting with '-' selects the nearest definition at
// or before the point, a name starting with '+' the nearest at or after
// it, and any other name whichever flanking definition is closer, with
// ties going to the lower address. If no definitions are recorded under
// the full name, the name with its '+'/'-' prefix removed is tried.
func (t *LabelTable) Nearest(name string, at int) (Address, error) {
	addrs := t.labels[name]
	if len(addrs) == 0 {
		if base := strings.TrimLeft(name, "+-"); base != "" && base != name {
			addrs = t.labels[base]
		}
	}
	if len(addrs) == 0 {
		return Address{}, fmt.Errorf("%w: %s", ErrLabelNotFound, name)
	}

	i := sort.Search(len(addrs), func(i int) bool {
		return addrs[i].Value >= at
	})
	switch {
	case i < len(addrs) && addrs[i].Value == at:
		return addrs[i], nil
	case i == 0:
		return addrs[0], nil
	case i == len(addrs):
		return addrs[len(addrs)-1], nil
	}

	lo, hi := addrs[i-1], addrs[i]
	switch {
	case strings.HasPrefix(name, "-"):
		return lo, nil
	case strings.HasPrefix(name, "+"):
		return hi, nil
	case 2*at <= lo.Value+hi.Value:
		return lo, nil
	default:
		return hi, nil
	}
}

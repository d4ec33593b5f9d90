package asm

import "fmt"

// An Address is a label value. It is either a resolved runtime (CPU)
// address, or an offset into PRG space that must be translated through
// the active bank map before use.
type Address struct {
	Value int
	PRG   bool
}

// Resolved returns an address that needs no bank translation.
func Resolved(v int) Address {
	return Address{Value: v}
}

// PrgOffset returns an address that denotes an offset into PRG space.
func PrgOffset(v int) Address {
	return Address{Value: v, PRG: true}
}

// less orders addresses by value. PRG offsets sort before resolved
// addresses of the same value.
func (a Address) less(b Address) bool {
	if a.Value != b.Value {
		return a.Value < b.Value
	}
	return a.PRG && !b.PRG
}

func (a Address) String() string {
	if a.PRG {
		return fmt.Sprintf("prg:$%X", a.Value)
	}
	return fmt.Sprintf("$%X", a.Value)
}

// Package register allocates the globally fresh, opaque register
// identifiers that every SSA definition site in the intermediate IR is
// named by (spec §3.2, §4.1). A Register is never recycled: two Registers
// minted by one Allocator compare equal only if they came from the same
// Fresh call. Freshness is per Allocator: every Allocator counts from 1,
// so Registers minted by two different Allocators can compare equal.
package register

import "fmt"

// Register is an opaque SSA definition-site identifier. The zero value is
// not a valid Register; only values returned by an Allocator's Fresh method
// are.
type Register struct {
	tag uint64
}

// String renders the register the way debug dumps of the IR show it.
func (r Register) String() string {
	return fmt.Sprintf("r%d", r.tag)
}

// Valid reports whether r was produced by an Allocator (as opposed to being
// a zero Register left over from an uninitialised struct field).
func (r Register) Valid() bool {
	return r.tag != 0
}

// Allocator hands out fresh Registers. The compiler is single-threaded
// (spec §5), so no synchronisation is needed; the counter starts at 1 so
// the zero Register is reliably invalid.
type Allocator struct {
	next uint64
}

// NewAllocator returns an Allocator ready to mint Registers.
func NewAllocator() *Allocator {
	return &Allocator{next: 1}
}

// Fresh returns a Register distinct from every Register previously returned
// by this Allocator.
func (a *Allocator) Fresh() Register {
	r := Register{tag: a.next}
	a.next++
	return r
}

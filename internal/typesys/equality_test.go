package typesys

import "testing"

func TestEqualAtomic(t *testing.T) {
	if !Equal(Int, Int) {
		t.Error("Int should equal Int")
	}
	if Equal(Int, Bool) {
		t.Error("Int should not equal Bool")
	}
}

func TestEqualTuple(t *testing.T) {
	a := &Tuple{Elems: []Type{Int, Bool}}
	b := &Tuple{Elems: []Type{Int, Bool}}
	c := &Tuple{Elems: []Type{Int, Int}}
	if !Equal(a, b) {
		t.Error("structurally identical tuples should be equal")
	}
	if Equal(a, c) {
		t.Error("tuples with differing element types should not be equal")
	}
	if Equal(a, &Tuple{Elems: []Type{Int}}) {
		t.Error("tuples of differing arity should not be equal")
	}
}

func TestEqualFunction(t *testing.T) {
	a := &Function{Args: []Type{Int, Bool}, Ret: Int}
	b := &Function{Args: []Type{Int, Bool}, Ret: Int}
	c := &Function{Args: []Type{Int, Bool}, Ret: Bool}
	if !Equal(a, b) {
		t.Error("structurally identical functions should be equal")
	}
	if Equal(a, c) {
		t.Error("functions with differing return types should not be equal")
	}
}

func TestEqualUnion(t *testing.T) {
	a := &Union{Variants: []UnionVariant{{Name: "None"}, {Name: "Some", Payload: Int}}}
	b := &Union{Variants: []UnionVariant{{Name: "None"}, {Name: "Some", Payload: Int}}}
	if !Equal(a, b) {
		t.Error("structurally identical unions should be equal, variant names don't affect equality")
	}
}

// TestEqualRecursiveReference mirrors spec §4.2's co-inductive cycle: a
// self-referential type (e.g. a list cell whose tail is itself) must
// compare equal to its own structural twin without the equality check
// diverging, since each is a distinct RefCell but both recurse the same
// way.
func TestEqualRecursiveReference(t *testing.T) {
	cellA := NewRefCell("List")
	refA := &Reference{Cell: cellA}
	cellA.Patch(&Tuple{Elems: []Type{Int, refA}})

	cellB := NewRefCell("List")
	refB := &Reference{Cell: cellB}
	cellB.Patch(&Tuple{Elems: []Type{Int, refB}})

	if !Equal(refA, refB) {
		t.Error("two independently built but structurally identical recursive types should be equal")
	}
}

func TestEqualReferenceIdentity(t *testing.T) {
	cell := NewRefCell("Self")
	ref := &Reference{Cell: cell}
	cell.Patch(&Tuple{Elems: []Type{Int, ref}})

	if !Equal(ref, ref) {
		t.Error("a Reference should be equal to itself")
	}
}

func TestEqualReferenceMismatchedStructure(t *testing.T) {
	cellA := NewRefCell("A")
	refA := &Reference{Cell: cellA}
	cellA.Patch(&Tuple{Elems: []Type{Int, refA}})

	cellB := NewRefCell("B")
	refB := &Reference{Cell: cellB}
	cellB.Patch(&Tuple{Elems: []Type{Bool, refB}})

	if Equal(refA, refB) {
		t.Error("recursive types with differing structure should not be equal")
	}
}

func TestEqualNil(t *testing.T) {
	if !Equal(nil, nil) {
		t.Error("nil should equal nil")
	}
	if Equal(nil, Int) {
		t.Error("nil should not equal a non-nil type")
	}
}

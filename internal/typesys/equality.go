package typesys

// EqualityChecker accumulates a partial bijection on Reference identities
// while it recurses, so that two mutually-recursive types compare equal
// by co-induction rather than diverging on the cycle (spec §3.1, §4.2).
//
// A fresh EqualityChecker should be used per top-level Equal call; the
// bijection it builds is only valid for the two types being compared.
type EqualityChecker struct {
	// bijection maps one side's RefCell to the RefCell on the other side
	// it has been assumed equal to. Since the assumption must hold in
	// both directions, Equal enforces both forward[a]==b and
	// backward[b]==a consistently by storing both directions.
	forward  map[*RefCell]*RefCell
	backward map[*RefCell]*RefCell
}

// NewEqualityChecker returns a checker with an empty bijection.
func NewEqualityChecker() *EqualityChecker {
	return &EqualityChecker{
		forward:  make(map[*RefCell]*RefCell),
		backward: make(map[*RefCell]*RefCell),
	}
}

// Equal reports whether a and b are the same intermediate type, per spec
// §4.2's rules:
//   - Atomic ↔ Atomic: structural.
//   - Tuple/Function/Union: element-wise, arities must match.
//   - Reference ↔ Reference: if the pair is already in the bijection,
//     equal; if either is mapped to something else, unequal; otherwise add
//     the pair to the bijection and recurse into the cells' contents.
//   - Otherwise unequal.
func (c *EqualityChecker) Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ra, aIsRef := a.(*Reference)
	rb, bIsRef := b.(*Reference)
	if aIsRef && bIsRef {
		return c.equalRefs(ra, rb)
	}
	if aIsRef || bIsRef {
		return false
	}

	switch av := a.(type) {
	case Atomic:
		bv, ok := b.(Atomic)
		return ok && av == bv
	case *Tuple:
		bv, ok := b.(*Tuple)
		if !ok || len(av.Elems) != len(bv.Elems) {
			return false
		}
		for i := range av.Elems {
			if !c.Equal(av.Elems[i], bv.Elems[i]) {
				return false
			}
		}
		return true
	case *Function:
		bv, ok := b.(*Function)
		if !ok || len(av.Args) != len(bv.Args) {
			return false
		}
		for i := range av.Args {
			if !c.Equal(av.Args[i], bv.Args[i]) {
				return false
			}
		}
		return c.Equal(av.Ret, bv.Ret)
	case *Union:
		bv, ok := b.(*Union)
		if !ok || len(av.Variants) != len(bv.Variants) {
			return false
		}
		for i := range av.Variants {
			if !c.Equal(av.Variants[i].Payload, bv.Variants[i].Payload) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func (c *EqualityChecker) equalRefs(ra, rb *Reference) bool {
	a, b := ra.Cell, rb.Cell
	if fwd, ok := c.forward[a]; ok {
		return fwd == b
	}
	if _, ok := c.backward[b]; ok {
		// b is already paired with some other cell than a.
		return false
	}
	c.forward[a] = b
	c.backward[b] = a
	return c.Equal(a.Target, b.Target)
}

// Equal is a convenience entry point for a one-off comparison with a fresh
// bijection.
func Equal(a, b Type) bool {
	return NewEqualityChecker().Equal(a, b)
}

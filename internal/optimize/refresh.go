package optimize

import (
	"github.com/flowlang/flowc/internal/ir"
	"github.com/flowlang/flowc/internal/register"
)

// Refresh implements C7: allocates a fresh Register for every Register
// bound inside l (its Args and every nested Assignment/Match-target,
// including inside nested lambdas) and substitutes all uses, so that
// l no longer shares any bound register with a sibling copy of itself.
// Used before inlining and between the redundancy eliminator's weak and
// strong reorder phases (spec §4.5, §4.6.4).
func Refresh(alloc *register.Allocator, l *ir.Lambda) *ir.Lambda {
	bound := ir.BoundRegisters(l.Args, l.Body)
	sub := make(ir.Subst, len(bound))
	for r := range bound {
		sub[r] = alloc.Fresh()
	}
	return sub.Lambda(l)
}

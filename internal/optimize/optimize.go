package optimize

import (
	"github.com/flowlang/flowc/internal/ir"
	"github.com/flowlang/flowc/internal/register"
)

// Optimize runs C5, C6 and C8 (using C7 internally) over a lowered
// ir.Program's entry lambda, in the data-flow order spec §2 specifies:
// C4 ⇒ (C5, C6) ⇒ C8 (using C7) ⇒ ... . Nested lambdas are optimised as
// part of the same walk (each pass recurses through Lambda/If/Match).
func Optimize(alloc *register.Allocator, prog *ir.Program) *ir.Program {
	return &ir.Program{Main: OptimizeLambda(alloc, prog.Main), Declared: prog.Declared}
}

// OptimizeLambda runs the full C5/C6/C8 pipeline over a single lambda.
func OptimizeLambda(alloc *register.Allocator, l *ir.Lambda) *ir.Lambda {
	l = PropagateCopies(l)
	l = OptimizeAllocations(l)
	l = redundancyEliminate(alloc, l)
	l = PropagateCopies(l) // spec §4.6.4: final cleanup of any trivial copies CSE left behind
	return l
}

// EliminateRedundancy runs C8 alone (exported so callers that toggle
// passes independently, e.g. internal/pipeline's
// equivalent-expression-elimination switch, can run it without the
// copy-propagation/allocation-optimisation passes OptimizeLambda bundles
// it with).
func EliminateRedundancy(alloc *register.Allocator, l *ir.Lambda) *ir.Lambda {
	return redundancyEliminate(alloc, l)
}

// redundancyEliminate implements C8: normalise (cse.go) to build the
// Definitions map, weak-reorder-materialize using it, refresh to give a
// second materialization pass an independent register namespace, then
// strong-reorder-materialize (reorder.go's doc comment explains why one
// materialize implementation serves both phases here).
func redundancyEliminate(alloc *register.Allocator, l *ir.Lambda) *ir.Lambda {
	n := newNormalizer()
	normalized := n.normalizeBlock(l.Body)

	weakBody := newMaterializer(n.defs).block(normalized.Return)
	weak := &ir.Lambda{Args: l.Args, Body: weakBody}

	refreshed := Refresh(alloc, weak)

	defs2 := make(map[register.Register]ir.Expression)
	collectDefs(refreshed.Body, defs2)
	strongBody := newMaterializer(defs2).block(refreshed.Body.Return)

	return &ir.Lambda{Args: refreshed.Args, Body: strongBody}
}

// collectDefs records every Statement's defining Expression across the
// whole lambda (unlike collectValueDefs/collectCopies, which only record
// bare-Value assignments), keyed by its Register, for the strong-reorder
// materializer to key off of after a Refresh has renamed everything.
func collectDefs(b *ir.Block, defs map[register.Register]ir.Expression) {
	for _, st := range b.Statements {
		defs[st.Reg] = st.Expr
		switch v := st.Expr.(type) {
		case *ir.Lambda:
			collectDefs(v.Body, defs)
		case *ir.If:
			collectDefs(v.Then, defs)
			collectDefs(v.Else, defs)
		case *ir.Match:
			for _, br := range v.Branches {
				collectDefs(br.Body, defs)
			}
		}
	}
}

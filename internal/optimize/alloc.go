package optimize

import (
	"github.com/flowlang/flowc/internal/ir"
	"github.com/flowlang/flowc/internal/register"
)

// OptimizeAllocations implements C6: a Memory cell whose sole definition
// is a bare Value and whose sole use (across the whole lambda, counting
// the block's own return value too) is a single read is removed, with
// that single use rewritten to read the defining value directly. Unlike
// the copy propagator (C5), which inlines a value-copy everywhere
// regardless of how many times it is read, this pass only fires when the
// cell is read exactly once - it is the narrower, single-use-hoisting
// companion pass. Idempotent: a second run finds nothing left to do.
func OptimizeAllocations(l *ir.Lambda) *ir.Lambda {
	defs := make(map[register.Register]ir.Value)
	collectValueDefs(l.Body, defs)

	counts := make(map[register.Register]int)
	countUses(l.Body, counts)

	singleUse := make(map[register.Register]ir.Value)
	for r, v := range defs {
		if counts[r] == 1 {
			singleUse[r] = v
		}
	}
	if len(singleUse) == 0 {
		return l
	}
	return applyCopies(l, singleUse)
}

func collectValueDefs(b *ir.Block, defs map[register.Register]ir.Value) {
	for _, st := range b.Statements {
		if v, ok := st.Expr.(ir.ValueExpr); ok {
			defs[st.Reg] = v.Value
		}
		collectValueDefsExpr(st.Expr, defs)
	}
}

func collectValueDefsExpr(e ir.Expression, defs map[register.Register]ir.Value) {
	switch v := e.(type) {
	case *ir.Lambda:
		collectValueDefs(v.Body, defs)
	case *ir.If:
		collectValueDefs(v.Then, defs)
		collectValueDefs(v.Else, defs)
	case *ir.Match:
		for _, br := range v.Branches {
			collectValueDefs(br.Body, defs)
		}
	}
}

// countUses tallies every occurrence of a Memory reference reachable from
// b, recursing into nested Lambda/If/Match bodies. Unlike
// ir.ReferencedValues, which dedupes by register for open-variable
// discovery, this walk must count repeats: a register read twice is not
// single-use.
func countUses(b *ir.Block, counts map[register.Register]int) {
	record := func(v ir.Value) {
		if m, ok := v.(ir.Memory); ok {
			counts[m.Reg]++
		}
	}
	countUsesBlock(b, record)
}

func countUsesBlock(b *ir.Block, record func(ir.Value)) {
	for _, st := range b.Statements {
		countUsesExpr(st.Expr, record)
	}
	record(b.Return)
}

func countUsesExpr(e ir.Expression, record func(ir.Value)) {
	switch ex := e.(type) {
	case ir.ValueExpr:
		record(ex.Value)
	case ir.ElementAccess:
		record(ex.Value)
	case ir.TupleExpression:
		for _, v := range ex.Values {
			record(v)
		}
	case ir.FnCall:
		record(ex.Fn)
		for _, v := range ex.Args {
			record(v)
		}
	case ir.CtorCall:
		if ex.Data != nil {
			record(ex.Data)
		}
	case *ir.Lambda:
		countUsesBlock(ex.Body, record)
	case *ir.If:
		record(ex.Cond)
		countUsesBlock(ex.Then, record)
		countUsesBlock(ex.Else, record)
	case *ir.Match:
		record(ex.Subject)
		for _, br := range ex.Branches {
			countUsesBlock(br.Body, record)
		}
	}
}

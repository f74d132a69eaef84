// Package optimize implements C5-C8: the copy propagator, allocation
// optimiser, refresher, and redundancy eliminator that run over
// internal/ir between lowering and translation.
//
// Each pass walks recursively through If/Match/Lambda boundaries, the
// same shape go-dws/internal/bytecode's optimizer.go uses for its
// constant-fold/dead-store passes: a map built in one traversal, consumed
// in a second.
package optimize

import (
	"github.com/flowlang/flowc/internal/ir"
	"github.com/flowlang/flowc/internal/register"
)

// PropagateCopies implements C5: for every Register whose sole defining
// expression is a bare Value (a ValueExpr, or a CtorCall/TupleExpression
// degenerate case is NOT included — only literal copies), substitutes
// that value at every use site and drops the now-dead assignment.
func PropagateCopies(l *ir.Lambda) *ir.Lambda {
	copies := make(map[register.Register]ir.Value)
	collectCopies(l.Body, copies)
	resolved := resolveCopies(copies)
	return applyCopies(l, resolved)
}

func collectCopies(b *ir.Block, copies map[register.Register]ir.Value) {
	for _, st := range b.Statements {
		if v, ok := st.Expr.(ir.ValueExpr); ok {
			copies[st.Reg] = v.Value
		}
		collectCopiesExpr(st.Expr, copies)
	}
}

func collectCopiesExpr(e ir.Expression, copies map[register.Register]ir.Value) {
	switch v := e.(type) {
	case *ir.Lambda:
		collectCopies(v.Body, copies)
	case *ir.If:
		collectCopies(v.Then, copies)
		collectCopies(v.Else, copies)
	case *ir.Match:
		for _, br := range v.Branches {
			collectCopies(br.Body, copies)
		}
	}
}

// resolveCopies follows copy-of-copy chains (r1 = r2, r2 = r3, ...) to
// their ultimate non-copy value, so a chain collapses in one substitution
// pass instead of needing repeated fixed-point iteration.
func resolveCopies(copies map[register.Register]ir.Value) map[register.Register]ir.Value {
	resolved := make(map[register.Register]ir.Value, len(copies))
	var resolve func(ir.Value, map[register.Register]bool) ir.Value
	resolve = func(v ir.Value, seen map[register.Register]bool) ir.Value {
		m, ok := v.(ir.Memory)
		if !ok {
			return v
		}
		if seen[m.Reg] {
			return v // cyclic; shouldn't happen in well-formed SSA, bail out
		}
		next, ok := copies[m.Reg]
		if !ok {
			return v
		}
		seen[m.Reg] = true
		return resolve(next, seen)
	}
	for r, v := range copies {
		resolved[r] = resolve(v, map[register.Register]bool{r: true})
	}
	return resolved
}

func applyCopies(l *ir.Lambda, resolved map[register.Register]ir.Value) *ir.Lambda {
	sub := func(v ir.Value) ir.Value {
		m, ok := v.(ir.Memory)
		if !ok {
			return v
		}
		if rv, ok := resolved[m.Reg]; ok {
			return rv
		}
		return v
	}
	var rewriteBlock func(*ir.Block) *ir.Block
	var rewriteExpr func(ir.Expression) ir.Expression
	rewriteValues := func(vs []ir.Value) []ir.Value {
		out := make([]ir.Value, len(vs))
		for i, v := range vs {
			out[i] = sub(v)
		}
		return out
	}
	rewriteExpr = func(e ir.Expression) ir.Expression {
		switch v := e.(type) {
		case ir.ValueExpr:
			return ir.ValueExpr{Value: sub(v.Value)}
		case ir.ElementAccess:
			return ir.ElementAccess{Value: sub(v.Value), Index: v.Index}
		case ir.TupleExpression:
			return ir.TupleExpression{Values: rewriteValues(v.Values)}
		case ir.FnCall:
			return ir.FnCall{Fn: sub(v.Fn), Args: rewriteValues(v.Args)}
		case ir.CtorCall:
			data := v.Data
			if data != nil {
				data = sub(data)
			}
			return ir.CtorCall{Index: v.Index, Data: data, UnionType: v.UnionType}
		case *ir.Lambda:
			return &ir.Lambda{Args: v.Args, Body: rewriteBlock(v.Body)}
		case *ir.If:
			return &ir.If{Cond: sub(v.Cond), Then: rewriteBlock(v.Then), Else: rewriteBlock(v.Else)}
		case *ir.Match:
			branches := make([]ir.MatchBranch, len(v.Branches))
			for i, br := range v.Branches {
				branches[i] = ir.MatchBranch{Target: br.Target, Body: rewriteBlock(br.Body)}
			}
			return &ir.Match{Subject: sub(v.Subject), Branches: branches}
		}
		return e
	}
	rewriteBlock = func(b *ir.Block) *ir.Block {
		var out []ir.Statement
		for _, st := range b.Statements {
			if _, isCopy := st.Expr.(ir.ValueExpr); isCopy {
				if _, ok := resolved[st.Reg]; ok {
					continue // dead: every use was substituted away above
				}
			}
			out = append(out, ir.Statement{Reg: st.Reg, Expr: rewriteExpr(st.Expr)})
		}
		return &ir.Block{Statements: out, Return: sub(b.Return)}
	}
	return &ir.Lambda{Args: l.Args, Body: rewriteBlock(l.Body)}
}

package pipeline

import (
	"github.com/flowlang/flowc/internal/analysis"
	"github.com/flowlang/flowc/internal/ir"
	"github.com/flowlang/flowc/internal/register"
)

// Inline resolves spec's inliner Open Question (SPEC_FULL.md §4.17): a
// conservative, depth-bounded inliner that only ever substitutes a direct
// call to a statically-known, non-recursive Lambda literal - never a call
// through a function-typed argument or a BuiltIn, and never a call whose
// callee (by analysis.IsRecursive) could call itself. maxDepth bounds how
// many nested inline substitutions a single call site may absorb, since a
// lambda's own body can itself contain calls eligible for inlining. The
// callee's code size is not checked: any eligible callee is inlined.
func Inline(alloc *register.Allocator, l *ir.Lambda, maxDepth int) *ir.Lambda {
	if maxDepth <= 0 {
		return l
	}
	table := analysis.BuildFnTable(l)
	return &ir.Lambda{Args: l.Args, Body: inlineBlock(alloc, l.Body, table, maxDepth)}
}

func inlineBlock(alloc *register.Allocator, b *ir.Block, table map[register.Register]analysis.FnInst, depth int) *ir.Block {
	var out []ir.Statement
	for _, st := range b.Statements {
		switch e := st.Expr.(type) {
		case ir.FnCall:
			if inlined, ok := tryInline(alloc, e, st.Reg, table, depth); ok {
				out = append(out, inlined...)
				continue
			}
			out = append(out, st)
		case *ir.Lambda:
			out = append(out, ir.Statement{Reg: st.Reg, Expr: &ir.Lambda{Args: e.Args, Body: inlineBlock(alloc, e.Body, analysis.BuildFnTable(e), depth)}})
		case *ir.If:
			out = append(out, ir.Statement{Reg: st.Reg, Expr: &ir.If{
				Cond: e.Cond,
				Then: inlineBlock(alloc, e.Then, table, depth),
				Else: inlineBlock(alloc, e.Else, table, depth),
			}})
		case *ir.Match:
			branches := make([]ir.MatchBranch, len(e.Branches))
			for i, br := range e.Branches {
				branches[i] = ir.MatchBranch{Target: br.Target, Body: inlineBlock(alloc, br.Body, table, depth)}
			}
			out = append(out, ir.Statement{Reg: st.Reg, Expr: &ir.Match{Subject: e.Subject, Branches: branches}})
		default:
			out = append(out, st)
		}
	}
	return &ir.Block{Statements: out, Return: b.Return}
}

// tryInline substitutes call (bound to target) with a fresh-register copy
// of its callee's body, if the callee resolves to a known, non-recursive
// Lambda with a matching arity. It returns the replacement statements and
// true on success.
func tryInline(alloc *register.Allocator, call ir.FnCall, target register.Register, table map[register.Register]analysis.FnInst, depth int) ([]ir.Statement, bool) {
	mem, ok := call.Fn.(ir.Memory)
	if !ok {
		return nil, false
	}
	inst, ok := table[mem.Reg]
	if !ok {
		return nil, false
	}
	lam, ok := inst.(analysis.FnLambda)
	if !ok {
		return nil, false
	}
	if len(lam.Body.Args) != len(call.Args) {
		return nil, false
	}
	if analysis.IsRecursive(table, mem.Reg) {
		return nil, false
	}

	sub := make(ir.Subst)
	var preamble []ir.Statement
	for i, arg := range lam.Body.Args {
		fresh := alloc.Fresh()
		sub[arg.Reg] = fresh
		preamble = append(preamble, ir.Statement{Reg: fresh, Expr: ir.ValueExpr{Value: call.Args[i]}})
	}
	renameLocals(alloc, lam.Body.Body, sub)

	body := sub.Block(lam.Body.Body)
	innerTable := analysis.BuildFnTable(lam.Body)
	body = inlineBlock(alloc, body, innerTable, depth-1)

	out := append(preamble, body.Statements...)
	out = append(out, ir.Statement{Reg: target, Expr: ir.ValueExpr{Value: body.Return}})
	return out, true
}

// renameLocals extends sub with a fresh register for every register the
// callee's own body binds (besides its parameters, already present in
// sub), so inlining the same lambda at two call sites - or the same call
// site twice across recursive Inline passes - never lets two copies
// collide on one Register.
func renameLocals(alloc *register.Allocator, b *ir.Block, sub ir.Subst) {
	for _, st := range b.Statements {
		if _, already := sub[st.Reg]; !already {
			sub[st.Reg] = alloc.Fresh()
		}
		switch e := st.Expr.(type) {
		case *ir.Lambda:
			for _, a := range e.Args {
				if _, already := sub[a.Reg]; !already {
					sub[a.Reg] = alloc.Fresh()
				}
			}
			renameLocals(alloc, e.Body, sub)
		case *ir.If:
			renameLocals(alloc, e.Then, sub)
			renameLocals(alloc, e.Else, sub)
		case *ir.Match:
			for _, br := range e.Branches {
				if br.Target != nil {
					if _, already := sub[br.Target.Reg]; !already {
						sub[br.Target.Reg] = alloc.Fresh()
					}
				}
				renameLocals(alloc, br.Body, sub)
			}
		}
	}
}

package pipeline

import (
	"testing"

	"github.com/flowlang/flowc/internal/ir"
	"github.com/flowlang/flowc/internal/register"
)

// TestInlineSubstitutesDirectCallToKnownLambda verifies a call to a
// statically-known, non-recursive lambda literal is replaced inline and
// the original FnCall statement disappears.
func TestInlineSubstitutesDirectCallToKnownLambda(t *testing.T) {
	alloc := register.NewAllocator()
	idReg := alloc.Fresh()
	paramReg := alloc.Fresh()
	callReg := alloc.Fresh()

	lam := &ir.Lambda{
		Body: &ir.Block{
			Statements: []ir.Statement{
				{Reg: idReg, Expr: &ir.Lambda{
					Args: []ir.Arg{{Reg: paramReg}},
					Body: &ir.Block{Return: ir.Memory{Reg: paramReg}},
				}},
				{Reg: callReg, Expr: ir.FnCall{Fn: ir.Memory{Reg: idReg}, Args: []ir.Value{ir.IntLiteral{Val: 9}}}},
			},
			Return: ir.Memory{Reg: callReg},
		},
	}

	out := Inline(alloc, lam, 1)

	for _, st := range out.Body.Statements {
		if _, ok := st.Expr.(ir.FnCall); ok {
			t.Error("expected the call site to be replaced, found a surviving ir.FnCall")
		}
	}
}

// TestInlineLeavesRecursiveCalleeAlone verifies a lambda analysis marks
// self-recursive is never inlined, even when statically known.
func TestInlineLeavesRecursiveCalleeAlone(t *testing.T) {
	alloc := register.NewAllocator()
	fReg := alloc.Fresh()
	paramReg := alloc.Fresh()
	callReg := alloc.Fresh()

	recLambda := &ir.Lambda{
		Args: []ir.Arg{{Reg: paramReg}},
		Body: &ir.Block{
			Statements: []ir.Statement{
				{Reg: callReg, Expr: ir.FnCall{Fn: ir.Memory{Reg: fReg}, Args: []ir.Value{ir.Memory{Reg: paramReg}}}},
			},
			Return: ir.Memory{Reg: callReg},
		},
	}

	outerCallReg := alloc.Fresh()
	lam := &ir.Lambda{
		Body: &ir.Block{
			Statements: []ir.Statement{
				{Reg: fReg, Expr: recLambda},
				{Reg: outerCallReg, Expr: ir.FnCall{Fn: ir.Memory{Reg: fReg}, Args: []ir.Value{ir.IntLiteral{Val: 1}}}},
			},
			Return: ir.Memory{Reg: outerCallReg},
		},
	}

	out := Inline(alloc, lam, 3)

	sawCall := false
	for _, st := range out.Body.Statements {
		if _, ok := st.Expr.(ir.FnCall); ok {
			sawCall = true
		}
	}
	if !sawCall {
		t.Error("expected the recursive call site to survive unchanged")
	}
}

// TestInlineZeroDepthIsNoOp verifies maxDepth<=0 returns the lambda
// unchanged.
func TestInlineZeroDepthIsNoOp(t *testing.T) {
	alloc := register.NewAllocator()
	r := alloc.Fresh()
	lam := &ir.Lambda{Body: &ir.Block{Return: ir.Memory{Reg: r}}}

	out := Inline(alloc, lam, 0)
	if out != lam {
		t.Error("Inline with maxDepth 0 should return the same lambda unchanged")
	}
}

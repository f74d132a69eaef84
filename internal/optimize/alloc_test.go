package optimize

import (
	"testing"

	"github.com/flowlang/flowc/internal/ir"
	"github.com/flowlang/flowc/internal/register"
)

// TestOptimizeAllocationsInlinesSingleUse verifies a value-defined register
// read exactly once (here, only by the block's return) is inlined and its
// defining statement dropped.
func TestOptimizeAllocationsInlinesSingleUse(t *testing.T) {
	alloc := register.NewAllocator()
	r := alloc.Fresh()

	lam := &ir.Lambda{
		Body: &ir.Block{
			Statements: []ir.Statement{
				{Reg: r, Expr: ir.ValueExpr{Value: ir.IntLiteral{Val: 5}}},
			},
			Return: ir.Memory{Reg: r},
		},
	}

	out := OptimizeAllocations(lam)
	if len(out.Body.Statements) != 0 {
		t.Fatalf("got %d statements, want 0", len(out.Body.Statements))
	}
	lit, ok := out.Body.Return.(ir.IntLiteral)
	if !ok || lit.Val != 5 {
		t.Errorf("Return = %#v, want IntLiteral{5}", out.Body.Return)
	}
}

// TestOptimizeAllocationsLeavesMultiUseRegisterAlone verifies a value
// read more than once is never inlined, since the pass only handles the
// single-use case.
func TestOptimizeAllocationsLeavesMultiUseRegisterAlone(t *testing.T) {
	alloc := register.NewAllocator()
	r := alloc.Fresh()
	tupleReg := alloc.Fresh()

	lam := &ir.Lambda{
		Body: &ir.Block{
			Statements: []ir.Statement{
				{Reg: r, Expr: ir.ValueExpr{Value: ir.IntLiteral{Val: 5}}},
				{Reg: tupleReg, Expr: ir.TupleExpression{Values: []ir.Value{ir.Memory{Reg: r}, ir.Memory{Reg: r}}}},
			},
			Return: ir.Memory{Reg: tupleReg},
		},
	}

	out := OptimizeAllocations(lam)
	if len(out.Body.Statements) != 2 {
		t.Fatalf("got %d statements, want 2 (a register used twice must not be collapsed)", len(out.Body.Statements))
	}
}

// TestOptimizeAllocationsIsIdempotent verifies a second run over already
// optimized output finds nothing left to do.
func TestOptimizeAllocationsIsIdempotent(t *testing.T) {
	alloc := register.NewAllocator()
	r := alloc.Fresh()

	lam := &ir.Lambda{
		Body: &ir.Block{
			Statements: []ir.Statement{
				{Reg: r, Expr: ir.ValueExpr{Value: ir.IntLiteral{Val: 5}}},
			},
			Return: ir.Memory{Reg: r},
		},
	}

	once := OptimizeAllocations(lam)
	twice := OptimizeAllocations(once)
	if len(twice.Body.Statements) != len(once.Body.Statements) {
		t.Errorf("second run changed statement count: %d vs %d", len(twice.Body.Statements), len(once.Body.Statements))
	}
}

package optimize

import (
	"testing"

	"github.com/flowlang/flowc/internal/ir"
	"github.com/flowlang/flowc/internal/register"
)

// TestRefreshRenamesAllBoundRegisters verifies every bound register (the
// arg and every Assignment target) gets a fresh identity, distinct from
// the original lambda's, while use sites stay consistent with their new
// binder.
func TestRefreshRenamesAllBoundRegisters(t *testing.T) {
	alloc := register.NewAllocator()
	argReg := alloc.Fresh()
	bodyReg := alloc.Fresh()

	lam := &ir.Lambda{
		Args: []ir.Arg{{Reg: argReg}},
		Body: &ir.Block{
			Statements: []ir.Statement{
				{Reg: bodyReg, Expr: ir.ValueExpr{Value: ir.Memory{Reg: argReg}}},
			},
			Return: ir.Memory{Reg: bodyReg},
		},
	}

	out := Refresh(alloc, lam)

	if out.Args[0].Reg == argReg {
		t.Error("the arg register should have been renamed")
	}
	if out.Body.Statements[0].Reg == bodyReg {
		t.Error("the body statement's bound register should have been renamed")
	}
	// the use site inside the statement must track the arg's new name
	useMem, ok := out.Body.Statements[0].Expr.(ir.ValueExpr).Value.(ir.Memory)
	if !ok || useMem.Reg != out.Args[0].Reg {
		t.Error("the renamed arg's use site did not track its new register")
	}
	retMem, ok := out.Body.Return.(ir.Memory)
	if !ok || retMem.Reg != out.Body.Statements[0].Reg {
		t.Error("the return value did not track the renamed body register")
	}
}

// TestRefreshTwoCallsProduceDistinctRegisterSets verifies refreshing the
// same lambda twice (e.g. once per inlined call site) yields two
// non-colliding copies, which is the whole point of using it before
// inlining (spec's duplication-before-substitution step).
func TestRefreshTwoCallsProduceDistinctRegisterSets(t *testing.T) {
	alloc := register.NewAllocator()
	argReg := alloc.Fresh()

	lam := &ir.Lambda{
		Args: []ir.Arg{{Reg: argReg}},
		Body: &ir.Block{Return: ir.Memory{Reg: argReg}},
	}

	a := Refresh(alloc, lam)
	b := Refresh(alloc, lam)
	if a.Args[0].Reg == b.Args[0].Reg {
		t.Error("two independent Refresh calls must not produce colliding registers")
	}
}

package analysis

import (
	"testing"

	"github.com/flowlang/flowc/internal/ir"
	"github.com/flowlang/flowc/internal/register"
)

// TestIsRecursiveMutualRecursion mirrors spec scenario S2: foo and bar are
// nested Lambdas, each calling the other from its own body. BuildFnTable
// over their common enclosing Lambda must resolve both and IsRecursive
// must mark both registers as recursive.
func TestIsRecursiveMutualRecursion(t *testing.T) {
	alloc := register.NewAllocator()
	fooReg := alloc.Fresh()
	barReg := alloc.Fresh()
	fooCallReg := alloc.Fresh()
	barCallReg := alloc.Fresh()

	fooBody := &ir.Block{
		Statements: []ir.Statement{
			{Reg: fooCallReg, Expr: ir.FnCall{Fn: ir.Memory{Reg: barReg}}},
		},
		Return: ir.Memory{Reg: fooCallReg},
	}
	barBody := &ir.Block{
		Statements: []ir.Statement{
			{Reg: barCallReg, Expr: ir.FnCall{Fn: ir.Memory{Reg: fooReg}}},
		},
		Return: ir.Memory{Reg: barCallReg},
	}

	outer := &ir.Lambda{
		Body: &ir.Block{
			Statements: []ir.Statement{
				{Reg: fooReg, Expr: &ir.Lambda{Body: fooBody}},
				{Reg: barReg, Expr: &ir.Lambda{Body: barBody}},
			},
			Return: ir.Memory{Reg: barReg},
		},
	}

	table := BuildFnTable(outer)

	if !IsRecursive(table, fooReg) {
		t.Error("IsRecursive(fooReg) = false, want true (foo calls bar which calls foo)")
	}
	if !IsRecursive(table, barReg) {
		t.Error("IsRecursive(barReg) = false, want true (bar calls foo which calls bar)")
	}
}

func TestIsRecursiveDirectSelfCall(t *testing.T) {
	alloc := register.NewAllocator()
	selfReg := alloc.Fresh()
	callReg := alloc.Fresh()

	body := &ir.Block{
		Statements: []ir.Statement{
			{Reg: callReg, Expr: ir.FnCall{Fn: ir.Memory{Reg: selfReg}}},
		},
		Return: ir.Memory{Reg: callReg},
	}
	outer := &ir.Lambda{
		Body: &ir.Block{
			Statements: []ir.Statement{
				{Reg: selfReg, Expr: &ir.Lambda{Body: body}},
			},
			Return: ir.Memory{Reg: selfReg},
		},
	}

	table := BuildFnTable(outer)
	if !IsRecursive(table, selfReg) {
		t.Error("IsRecursive(selfReg) = false, want true for direct self-call")
	}
}

func TestIsRecursiveFalseForNonRecursiveLambda(t *testing.T) {
	alloc := register.NewAllocator()
	plainReg := alloc.Fresh()
	otherReg := alloc.Fresh()

	body := &ir.Block{
		Statements: []ir.Statement{
			{Reg: otherReg, Expr: ir.ValueExpr{Value: ir.IntLiteral{Val: 1}}},
		},
		Return: ir.Memory{Reg: otherReg},
	}
	outer := &ir.Lambda{
		Body: &ir.Block{
			Statements: []ir.Statement{
				{Reg: plainReg, Expr: &ir.Lambda{Body: body}},
			},
			Return: ir.Memory{Reg: plainReg},
		},
	}

	table := BuildFnTable(outer)
	if IsRecursive(table, plainReg) {
		t.Error("IsRecursive(plainReg) = true, want false: lambda body never calls itself")
	}
}

// TestIsRecursiveFalseForMerelyDefinedNestedLambda mirrors spec §4.7's
// "some call inside its body" wording: F's body defines a nested lambda g
// that calls F, but F's body never itself calls g (or anything else) - g
// is merely defined, not invoked. F must not be marked recursive merely
// because a lambda it contains would, if called, call back into F.
func TestIsRecursiveFalseForMerelyDefinedNestedLambda(t *testing.T) {
	alloc := register.NewAllocator()
	fReg := alloc.Fresh()
	gReg := alloc.Fresh()
	zArg := alloc.Fresh()
	gCallReg := alloc.Fresh()
	doneReg := alloc.Fresh()

	gBody := &ir.Block{
		Statements: []ir.Statement{
			{Reg: gCallReg, Expr: ir.FnCall{Fn: ir.Memory{Reg: fReg}, Args: []ir.Value{ir.Memory{Reg: zArg}}}},
		},
		Return: ir.Memory{Reg: gCallReg},
	}
	fBody := &ir.Block{
		Statements: []ir.Statement{
			{Reg: gReg, Expr: &ir.Lambda{Args: []ir.Arg{{Reg: zArg}}, Body: gBody}},
			{Reg: doneReg, Expr: ir.ValueExpr{Value: ir.IntLiteral{Val: 0}}},
		},
		Return: ir.Memory{Reg: doneReg},
	}
	outer := &ir.Lambda{
		Body: &ir.Block{
			Statements: []ir.Statement{
				{Reg: fReg, Expr: &ir.Lambda{Body: fBody}},
			},
			Return: ir.Memory{Reg: fReg},
		},
	}

	table := BuildFnTable(outer)
	if IsRecursive(table, fReg) {
		t.Error("IsRecursive(fReg) = true, want false: F's body defines g but never calls it")
	}
}

// TestIsRecursiveConservativeThroughArg mirrors spec §4.7: a call through
// a function-typed Arg cannot be statically ruled out, so it is treated
// as recursive even though it may not be.
func TestIsRecursiveConservativeThroughArg(t *testing.T) {
	alloc := register.NewAllocator()
	fnReg := alloc.Fresh()
	argReg := alloc.Fresh()
	callReg := alloc.Fresh()

	body := &ir.Block{
		Statements: []ir.Statement{
			{Reg: callReg, Expr: ir.FnCall{Fn: ir.Arg{Reg: argReg}}},
		},
		Return: ir.Memory{Reg: callReg},
	}
	outer := &ir.Lambda{
		Body: &ir.Block{
			Statements: []ir.Statement{
				{Reg: fnReg, Expr: &ir.Lambda{Args: []ir.Arg{{Reg: argReg}}, Body: body}},
			},
			Return: ir.Memory{Reg: fnReg},
		},
	}

	table := BuildFnTable(outer)
	if !IsRecursive(table, fnReg) {
		t.Error("IsRecursive(fnReg) = false, want true: call through a function-typed Arg is conservative")
	}
}

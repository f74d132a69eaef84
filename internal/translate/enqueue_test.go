package translate

import (
	"testing"

	"github.com/flowlang/flowc/internal/machine"
)

// TestEnqueueInsertedWhenDownstreamAwaitNeedsTarget mirrors the Enqueue
// discipline property: an Assignment gets an Enqueue for its own target
// immediately after it exactly when some later Await in the same
// statement list still needs that memory - regardless of whether the
// Assignment's Expr is a FnCall, a plain value, or anything else.
func TestEnqueueInsertedWhenDownstreamAwaitNeedsTarget(t *testing.T) {
	r := machine.Memory{Id: "r"}
	x := machine.Memory{Id: "x"}
	f := machine.Memory{Id: "f"}

	def := &machine.FnDef{
		Name: "Main",
		Statements: []machine.Statement{
			machine.Assignment{Target: x, Expr: machine.ValueExpr{Value: machine.IntLiteral{Val: 1}}},
			machine.Assignment{Target: r, Expr: machine.FnCall{Fn: f, Args: []machine.Value{x}}},
			machine.Await{Memories: []machine.Memory{r}},
		},
	}
	prog := &machine.Program{FnDefs: []*machine.FnDef{def}}

	Enqueue(prog)

	if len(def.Statements) != 4 {
		t.Fatalf("got %d statements, want 4 (plain assignment, call assignment, its enqueue, the await)", len(def.Statements))
	}
	if _, ok := def.Statements[0].(machine.Assignment); !ok {
		t.Errorf("statement 0 = %#v, want an unchanged Assignment", def.Statements[0])
	}
	if _, ok := def.Statements[1].(machine.Assignment); !ok {
		t.Errorf("statement 1 = %#v, want the FnCall Assignment", def.Statements[1])
	}
	enq, ok := def.Statements[2].(machine.Enqueue)
	if !ok || enq.Target != r {
		t.Errorf("statement 2 = %#v, want Enqueue{r}", def.Statements[2])
	}
	if _, ok := def.Statements[3].(machine.Await); !ok {
		t.Errorf("statement 3 = %#v, want the Await", def.Statements[3])
	}
}

// TestEnqueueOmittedWhenNoDownstreamAwaitNeedsTarget verifies an
// Assignment whose target is never awaited in this statement list gets
// no Enqueue at all, FnCall or not: scheduling a job nothing waits on
// would be pure waste.
func TestEnqueueOmittedWhenNoDownstreamAwaitNeedsTarget(t *testing.T) {
	r := machine.Memory{Id: "r"}
	x := machine.Memory{Id: "x"}
	f := machine.Memory{Id: "f"}

	def := &machine.FnDef{
		Name: "Main",
		Statements: []machine.Statement{
			machine.Assignment{Target: x, Expr: machine.ValueExpr{Value: machine.IntLiteral{Val: 1}}},
			machine.Assignment{Target: r, Expr: machine.FnCall{Fn: f, Args: []machine.Value{x}}},
		},
	}
	prog := &machine.Program{FnDefs: []*machine.FnDef{def}}

	Enqueue(prog)

	if len(def.Statements) != 2 {
		t.Fatalf("got %d statements, want 2 (neither assignment is ever awaited, so no enqueue)", len(def.Statements))
	}
}

// TestEnqueueFollowsNonFnCallAssignmentWhenAwaited mirrors spec scenario
// S1: a ClosureInstantiation-produced memory gets Enqueued the same as a
// FnCall-produced one, as long as a downstream Await needs it.
func TestEnqueueFollowsNonFnCallAssignmentWhenAwaited(t *testing.T) {
	m4 := machine.Memory{Id: "m4"}
	m5 := machine.Memory{Id: "m5"}

	def := &machine.FnDef{
		Name: "Main",
		Statements: []machine.Statement{
			machine.Assignment{Target: m5, Expr: machine.ClosureInstantiation{FnName: "F1", Env: m4, HasEnv: true}},
			machine.Await{Memories: []machine.Memory{m5}},
		},
	}
	prog := &machine.Program{FnDefs: []*machine.FnDef{def}}

	Enqueue(prog)

	if len(def.Statements) != 3 {
		t.Fatalf("got %d statements, want 3 (closure assignment, its enqueue, the await)", len(def.Statements))
	}
	if _, ok := def.Statements[0].(machine.Assignment); !ok {
		t.Errorf("statement 0 = %#v, want the ClosureInstantiation Assignment", def.Statements[0])
	}
	enq, ok := def.Statements[1].(machine.Enqueue)
	if !ok || enq.Target != m5 {
		t.Errorf("statement 1 = %#v, want Enqueue{m5}", def.Statements[1])
	}
}

func TestEnqueueRecursesThroughBranches(t *testing.T) {
	r := machine.Memory{Id: "r"}
	f := machine.Memory{Id: "f"}

	def := &machine.FnDef{
		Name: "Main",
		Statements: []machine.Statement{
			machine.IfStatement{
				Then: []machine.Statement{machine.Assignment{Target: r, Expr: machine.FnCall{Fn: f}}},
				Else: []machine.Statement{machine.Assignment{Target: r, Expr: machine.ValueExpr{Value: machine.IntLiteral{Val: 0}}}},
			},
			machine.Await{Memories: []machine.Memory{r}},
		},
	}
	prog := &machine.Program{FnDefs: []*machine.FnDef{def}}

	Enqueue(prog)

	ifStmt := def.Statements[0].(machine.IfStatement)
	if len(ifStmt.Then) != 2 {
		t.Errorf("then branch has %d statements, want 2 (call assignment + enqueue)", len(ifStmt.Then))
	}
	if len(ifStmt.Else) != 2 {
		t.Errorf("else branch has %d statements, want 2 (value assignment + enqueue, since the trailing Await needs r on every path)", len(ifStmt.Else))
	}
}

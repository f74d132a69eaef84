package translate

import (
	"testing"

	"github.com/flowlang/flowc/internal/machine"
)

// TestDedupAwaitsDropsRepeatedMemory mirrors spec scenario S4: a Memory
// already Awaited earlier in the same statement list must not appear in a
// later Await; an Await left with nothing to wait on is removed entirely.
func TestDedupAwaitsDropsRepeatedMemory(t *testing.T) {
	x := machine.Memory{Id: "x"}
	y := machine.Memory{Id: "y"}

	def := &machine.FnDef{
		Name: "Main",
		Statements: []machine.Statement{
			machine.Await{Memories: []machine.Memory{x}},
			machine.Await{Memories: []machine.Memory{x, y}},
			machine.Await{Memories: []machine.Memory{x}},
		},
	}
	prog := &machine.Program{FnDefs: []*machine.FnDef{def}}

	DedupAwaits(prog)

	if len(def.Statements) != 2 {
		t.Fatalf("got %d statements, want 2 (first Await kept whole, second keeps only y, third dropped entirely)", len(def.Statements))
	}
	first, ok := def.Statements[0].(machine.Await)
	if !ok || len(first.Memories) != 1 || first.Memories[0] != x {
		t.Errorf("statement 0 = %#v, want Await{[x]}", def.Statements[0])
	}
	second, ok := def.Statements[1].(machine.Await)
	if !ok || len(second.Memories) != 1 || second.Memories[0] != y {
		t.Errorf("statement 1 = %#v, want Await{[y]}", def.Statements[1])
	}
}

func TestDedupAwaitsBranchesDoNotLeakAcrossEachOther(t *testing.T) {
	x := machine.Memory{Id: "x"}
	y := machine.Memory{Id: "y"}

	def := &machine.FnDef{
		Name: "Main",
		Statements: []machine.Statement{
			machine.Await{Memories: []machine.Memory{x}},
			machine.IfStatement{
				Then: []machine.Statement{machine.Await{Memories: []machine.Memory{y}}},
				Else: []machine.Statement{machine.Await{Memories: []machine.Memory{x, y}}},
			},
		},
	}
	prog := &machine.Program{FnDefs: []*machine.FnDef{def}}

	DedupAwaits(prog)

	ifStmt := def.Statements[1].(machine.IfStatement)
	thenAwait := ifStmt.Then[0].(machine.Await)
	if len(thenAwait.Memories) != 1 || thenAwait.Memories[0] != y {
		t.Errorf("then branch = %#v, want Await{[y]} (x already awaited before the if)", thenAwait)
	}
	elseAwait := ifStmt.Else[0].(machine.Await)
	if len(elseAwait.Memories) != 1 || elseAwait.Memories[0] != y {
		t.Errorf("else branch = %#v, want Await{[y]} (x already awaited before the if, dropped from this branch's Await too)", elseAwait)
	}
}

// TestDedupAwaitsMergesBranchIntersectionIntoParentScope verifies that
// when every branch of an If awaits the same Memory, a later Await of
// that Memory outside the If is recognized as redundant: the parent
// scope becomes responsible for it once every path out of the branch
// has already awaited it.
func TestDedupAwaitsMergesBranchIntersectionIntoParentScope(t *testing.T) {
	x := machine.Memory{Id: "x"}
	y := machine.Memory{Id: "y"}

	def := &machine.FnDef{
		Name: "Main",
		Statements: []machine.Statement{
			machine.IfStatement{
				Then: []machine.Statement{machine.Await{Memories: []machine.Memory{x, y}}},
				Else: []machine.Statement{machine.Await{Memories: []machine.Memory{x}}},
			},
			machine.Await{Memories: []machine.Memory{x}},
		},
	}
	prog := &machine.Program{FnDefs: []*machine.FnDef{def}}

	DedupAwaits(prog)

	if len(def.Statements) != 1 {
		t.Fatalf("got %d statements, want 1 (the trailing Await{x} is redundant: every branch already awaited x)", len(def.Statements))
	}
	if _, ok := def.Statements[0].(machine.IfStatement); !ok {
		t.Errorf("statement 0 = %#v, want the IfStatement", def.Statements[0])
	}
}

// TestDedupAwaitsDoesNotMergeWhenOnlySomeBranchesAwait verifies a Memory
// awaited in only one branch (not all) is NOT treated as fulfilled by the
// parent scope, since the branch that skipped it might have run instead.
func TestDedupAwaitsDoesNotMergeWhenOnlySomeBranchesAwait(t *testing.T) {
	x := machine.Memory{Id: "x"}

	def := &machine.FnDef{
		Name: "Main",
		Statements: []machine.Statement{
			machine.IfStatement{
				Then: []machine.Statement{machine.Await{Memories: []machine.Memory{x}}},
				Else: []machine.Statement{},
			},
			machine.Await{Memories: []machine.Memory{x}},
		},
	}
	prog := &machine.Program{FnDefs: []*machine.FnDef{def}}

	DedupAwaits(prog)

	if len(def.Statements) != 2 {
		t.Fatalf("got %d statements, want 2 (the trailing Await{x} must survive: the else branch never awaited x)", len(def.Statements))
	}
	trailing, ok := def.Statements[1].(machine.Await)
	if !ok || len(trailing.Memories) != 1 || trailing.Memories[0] != x {
		t.Errorf("statement 1 = %#v, want Await{[x]}", def.Statements[1])
	}
}

func TestDedupAwaitsMatchBranchesEachStartFromPreMatchState(t *testing.T) {
	x := machine.Memory{Id: "x"}

	def := &machine.FnDef{
		Name: "Main",
		Statements: []machine.Statement{
			machine.MatchStatement{
				Branches: []machine.MatchBranch{
					{Body: []machine.Statement{machine.Await{Memories: []machine.Memory{x}}}},
					{Body: []machine.Statement{machine.Await{Memories: []machine.Memory{x}}}},
				},
			},
		},
	}
	prog := &machine.Program{FnDefs: []*machine.FnDef{def}}

	DedupAwaits(prog)

	match := def.Statements[0].(machine.MatchStatement)
	for i, br := range match.Branches {
		aw, ok := br.Body[0].(machine.Await)
		if !ok || len(aw.Memories) != 1 || aw.Memories[0] != x {
			t.Errorf("branch %d = %#v, want Await{[x]} (each branch starts fresh, no carry-over from sibling branches)", i, br.Body)
		}
	}
}

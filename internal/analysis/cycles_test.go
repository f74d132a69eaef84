package analysis

import (
	"reflect"
	"sort"
	"testing"

	"github.com/flowlang/flowc/internal/machine"
)

// TestFindClosureCyclesMutualRecursion mirrors spec scenario S2: two
// closures foo and bar, each capturing the other in its environment,
// form a single 2-member SCC.
func TestFindClosureCyclesMutualRecursion(t *testing.T) {
	foo := machine.Memory{Id: "foo"}
	bar := machine.Memory{Id: "bar"}
	envFoo := machine.Memory{Id: "envFoo"}
	envBar := machine.Memory{Id: "envBar"}

	stmts := []machine.Statement{
		machine.Allocation{TypeName: "FooEnv", Env: []machine.EnvSlot{{Value: bar, FnName: "Foo"}}, Target: envFoo},
		machine.Assignment{Target: foo, Expr: machine.ClosureInstantiation{FnName: "Foo", Env: envFoo, HasEnv: true}},
		machine.Allocation{TypeName: "BarEnv", Env: []machine.EnvSlot{{Value: foo, FnName: "Bar"}}, Target: envBar},
		machine.Assignment{Target: bar, Expr: machine.ClosureInstantiation{FnName: "Bar", Env: envBar, HasEnv: true}},
	}
	isFn := func(m machine.Memory) bool { return m == foo || m == bar }

	groups := FindClosureCycles(stmts, isFn)
	if len(groups) != 1 {
		t.Fatalf("FindClosureCycles returned %d group(s), want 1", len(groups))
	}
	got := groups[0]
	sort.Slice(got, func(i, j int) bool { return got[i].Id < got[j].Id })
	want := []machine.Memory{bar, foo}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("cycle group = %v, want %v", got, want)
	}
}

func TestFindClosureCyclesNoCycleForOneWayCapture(t *testing.T) {
	outer := machine.Memory{Id: "outer"}
	inner := machine.Memory{Id: "inner"}
	env := machine.Memory{Id: "env"}

	stmts := []machine.Statement{
		machine.Allocation{TypeName: "OuterEnv", Env: []machine.EnvSlot{{Value: inner, FnName: "Outer"}}, Target: env},
		machine.Assignment{Target: outer, Expr: machine.ClosureInstantiation{FnName: "Outer", Env: env, HasEnv: true}},
	}
	isFn := func(m machine.Memory) bool { return m == outer || m == inner }

	if groups := FindClosureCycles(stmts, isFn); len(groups) != 0 {
		t.Errorf("expected no cycle for a one-way capture, got %v", groups)
	}
}

func TestFindClosureCyclesSelfCapture(t *testing.T) {
	self := machine.Memory{Id: "self"}
	env := machine.Memory{Id: "env"}

	stmts := []machine.Statement{
		machine.Allocation{TypeName: "SelfEnv", Env: []machine.EnvSlot{{Value: self, FnName: "Self"}}, Target: env},
		machine.Assignment{Target: self, Expr: machine.ClosureInstantiation{FnName: "Self", Env: env, HasEnv: true}},
	}
	isFn := func(m machine.Memory) bool { return m == self }

	groups := FindClosureCycles(stmts, isFn)
	if len(groups) != 1 || len(groups[0]) != 1 || groups[0][0] != self {
		t.Errorf("FindClosureCycles = %v, want a single self-loop group containing %v", groups, self)
	}
}

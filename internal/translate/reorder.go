package translate

import "github.com/flowlang/flowc/internal/machine"

// Reorder implements C15, the machine-level statement reorderer: a
// dependency-respecting topological sort of each FnDef's flat statement
// list (and recursively each If/Match branch's), stable against the
// translator's original order whenever two statements are independent.
// It is a safety net against any future C13 change that emits statements
// out of dependency order; the translator already emits textually ordered
// code, so on today's output this is a no-op reshuffle.
func Reorder(prog *machine.Program) {
	for _, def := range prog.FnDefs {
		def.Statements = reorderStatements(def.Statements)
	}
}

func reorderStatements(stmts []machine.Statement) []machine.Statement {
	if len(stmts) < 2 {
		return recurseInto(stmts)
	}

	n := len(stmts)
	writes := make([]map[machine.Memory]bool, n)
	reads := make([]map[machine.Memory]bool, n)
	for i, st := range stmts {
		writes[i] = writesOf(st)
		reads[i] = readsOf(st)
	}

	// deps[i] = indices that must come before i: every statement writing a
	// Memory that i reads, wherever it sits, plus every earlier statement
	// writing a Memory that i writes too.
	deps := make([][]int, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j != i && (conflicts(reads[i], writes[j]) || (j < i && conflicts(writes[i], writes[j]))) {
				deps[i] = append(deps[i], j)
			}
		}
	}

	indegree := make([]int, n)
	dependents := make([][]int, n)
	for i, ds := range deps {
		indegree[i] = len(ds)
		for _, d := range ds {
			dependents[d] = append(dependents[d], i)
		}
	}

	var ready []int
	for i := 0; i < n; i++ {
		if indegree[i] == 0 {
			ready = append(ready, i)
		}
	}

	var order []int
	for len(ready) > 0 {
		// pick the smallest original index among ready nodes: stable,
		// order-preserving when no dependency forces a swap.
		best := 0
		for k := 1; k < len(ready); k++ {
			if ready[k] < ready[best] {
				best = k
			}
		}
		i := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		order = append(order, i)
		for _, d := range dependents[i] {
			indegree[d]--
			if indegree[d] == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(order) < n {
		return recurseInto(stmts) // cyclic dependencies: keep the original order
	}
	out := make([]machine.Statement, n)
	for pos, i := range order {
		out[pos] = stmts[i]
	}
	return recurseInto(out)
}

func recurseInto(stmts []machine.Statement) []machine.Statement {
	for i, st := range stmts {
		switch s := st.(type) {
		case machine.IfStatement:
			s.Then = reorderStatements(s.Then)
			s.Else = reorderStatements(s.Else)
			stmts[i] = s
		case machine.MatchStatement:
			branches := make([]machine.MatchBranch, len(s.Branches))
			for bi, br := range s.Branches {
				br.Body = reorderStatements(br.Body)
				branches[bi] = br
			}
			s.Branches = branches
			stmts[i] = s
		}
	}
	return stmts
}

func writesOf(st machine.Statement) map[machine.Memory]bool {
	out := make(map[machine.Memory]bool)
	switch s := st.(type) {
	case machine.Declaration:
		out[s.Target] = true
	case machine.Allocation:
		out[s.Target] = true
	case machine.Assignment:
		out[s.Target] = true
	case machine.IfStatement:
		out[targetOfBranch(s.Then)] = true
	case machine.MatchStatement:
		out[s.Aux] = true
		for _, br := range s.Branches {
			out[targetOfBranch(br.Body)] = true
			if br.Target != nil {
				out[*br.Target] = true
			}
		}
	}
	delete(out, machine.Memory{})
	return out
}

// targetOfBranch finds the Memory an If/Match branch's trailing
// Assignment writes - the shared result cell every branch of a statement
// form If/Match assigns (spec §3.3).
func targetOfBranch(stmts []machine.Statement) machine.Memory {
	for i := len(stmts) - 1; i >= 0; i-- {
		if a, ok := stmts[i].(machine.Assignment); ok {
			return a.Target
		}
	}
	return machine.Memory{}
}

func readsOf(st machine.Statement) map[machine.Memory]bool {
	out := make(map[machine.Memory]bool)
	add := func(v machine.Value) {
		if m, ok := v.(machine.Memory); ok {
			out[m] = true
		}
	}
	switch s := st.(type) {
	case machine.Await:
		for _, m := range s.Memories {
			out[m] = true
		}
	case machine.Allocation:
		for _, slot := range s.Env {
			out[slot.Value] = true
		}
	case machine.Assignment:
		readsOfExpr(s.Expr, add)
	case machine.IfStatement:
		add(s.Cond)
	case machine.MatchStatement:
		add(s.Subject)
	case machine.Enqueue:
		out[s.Target] = true
	}
	return out
}

func readsOfExpr(e machine.Expression, add func(machine.Value)) {
	switch x := e.(type) {
	case machine.ValueExpr:
		add(x.Value)
	case machine.ElementAccess:
		add(x.Value)
	case machine.TupleExpression:
		for _, v := range x.Values {
			add(v)
		}
	case machine.FnCall:
		add(x.Fn)
		for _, v := range x.Args {
			add(v)
		}
	case machine.ConstructorCall:
		if x.Payload != nil {
			add(x.Payload)
		}
	case machine.ClosureInstantiation:
		if x.HasEnv {
			add(x.Env)
		}
	}
}

func conflicts(a, b map[machine.Memory]bool) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	small, big := a, b
	if len(big) < len(small) {
		small, big = big, small
	}
	for m := range small {
		if m == (machine.Memory{}) {
			continue
		}
		if big[m] {
			return true
		}
	}
	return false
}

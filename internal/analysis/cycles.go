package analysis

import "github.com/flowlang/flowc/internal/machine"

// graph is an adjacency list over machine.Memory nodes, built from the
// closure environments an Allocation statement wires up.
type graph struct {
	edges map[machine.Memory][]machine.Memory
	nodes []machine.Memory
	seen  map[machine.Memory]bool
}

func newGraph() *graph {
	return &graph{edges: make(map[machine.Memory][]machine.Memory), seen: make(map[machine.Memory]bool)}
}

func (g *graph) addNode(m machine.Memory) {
	if !g.seen[m] {
		g.seen[m] = true
		g.nodes = append(g.nodes, m)
	}
}

func (g *graph) addEdge(from, to machine.Memory) {
	g.addNode(from)
	g.addNode(to)
	g.edges[from] = append(g.edges[from], to)
}

// FindClosureCycles implements C10: walks stmts (a FnDef's Statements,
// recursing through If/Match branches) collecting, for every Allocation
// that builds a closure environment, an edge from the closure's own
// Memory to each function-typed open variable's Memory it captures.
// isFn reports whether a given Memory is itself a closure (function-
// typed); non-function memories never become graph nodes, matching
// spec §4.8's "filters out non-function memories from the final report".
//
// It returns every non-trivial SCC (size > 1) or single-node self-loop,
// computed with Tarjan's algorithm, as a weakening group: every Memory
// in a returned group participates in a reference cycle and the
// weakener (C14) must convert the corresponding environment slots to
// WeakFn.
func FindClosureCycles(stmts []machine.Statement, isFn func(machine.Memory) bool) [][]machine.Memory {
	g := newGraph()
	collectClosureEdges(stmts, isFn, g)
	return tarjanSCCs(g)
}

// collectClosureEdges walks stmts looking for the (Allocation, Assignment)
// pair the translator always emits together for a closure literal with a
// non-empty environment (translate.go's *ir.Lambda case: the Allocation
// builds the environment tuple immediately before the Assignment that
// binds the closure's own memory to a ClosureInstantiation referencing
// that same environment memory). The edge recorded is from the closure's
// own memory (the Assignment's Target - what isFn/fnMemories identifies)
// to each captured open variable that is itself a closure, not from the
// transient environment-tuple memory, which never recurs across FnDefs
// and so could never close a cycle.
func collectClosureEdges(stmts []machine.Statement, isFn func(machine.Memory) bool, g *graph) {
	for i, st := range stmts {
		switch s := st.(type) {
		case machine.Allocation:
			if i+1 >= len(stmts) {
				continue
			}
			asg, ok := stmts[i+1].(machine.Assignment)
			if !ok {
				continue
			}
			inst, ok := asg.Expr.(machine.ClosureInstantiation)
			if !ok || !inst.HasEnv || inst.Env != s.Target || !isFn(asg.Target) {
				continue
			}
			g.addNode(asg.Target)
			for _, slot := range s.Env {
				if isFn(slot.Value) {
					g.addEdge(asg.Target, slot.Value)
				}
			}
		case machine.IfStatement:
			collectClosureEdges(s.Then, isFn, g)
			collectClosureEdges(s.Else, isFn, g)
		case machine.MatchStatement:
			for _, br := range s.Branches {
				collectClosureEdges(br.Body, isFn, g)
			}
		}
	}
}

// tarjanSCCs computes strongly connected components of g and returns
// every one with more than one member, plus any single-member component
// that is its own self-loop (a directly self-recursive closure).
func tarjanSCCs(g *graph) [][]machine.Memory {
	index := 0
	indices := make(map[machine.Memory]int)
	lowlink := make(map[machine.Memory]int)
	onStack := make(map[machine.Memory]bool)
	var stack []machine.Memory
	var result [][]machine.Memory

	var strongconnect func(v machine.Memory)
	strongconnect = func(v machine.Memory) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if _, ok := indices[w]; !ok {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var scc []machine.Memory
			for {
				n := len(stack) - 1
				w := stack[n]
				stack = stack[:n]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			if len(scc) > 1 || selfLoop(g, scc[0]) {
				result = append(result, scc)
			}
		}
	}

	for _, v := range g.nodes {
		if _, ok := indices[v]; !ok {
			strongconnect(v)
		}
	}
	return result
}

func selfLoop(g *graph, v machine.Memory) bool {
	for _, w := range g.edges[v] {
		if w == v {
			return true
		}
	}
	return false
}

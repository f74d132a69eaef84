package translate

import "github.com/flowlang/flowc/internal/machine"

// DedupAwaits implements C16: once a Memory has been Awaited on one path,
// it stays fulfilled forever (a job runs exactly once), so any later
// Await naming it again is redundant. This walks each FnDef's statement
// list in order, dropping memories from each Await that an enclosing or
// preceding statement already covered, and removing an Await entirely
// once it has nothing left to wait on. Branches of an IfStatement/
// MatchStatement each get their own copy of the "already awaited" set
// seeded from the point just before the branch, since only one branch
// actually runs and its awaits don't carry over to the other.
func DedupAwaits(prog *machine.Program) {
	for _, def := range prog.FnDefs {
		awaited := make(map[machine.Memory]bool)
		def.Statements = dedupStatements(def.Statements, awaited)
	}
}

func dedupStatements(stmts []machine.Statement, awaited map[machine.Memory]bool) []machine.Statement {
	out := make([]machine.Statement, 0, len(stmts))
	for _, st := range stmts {
		switch s := st.(type) {
		case machine.Await:
			var remaining []machine.Memory
			for _, m := range s.Memories {
				if !awaited[m] {
					awaited[m] = true
					remaining = append(remaining, m)
				}
			}
			if len(remaining) == 0 {
				continue
			}
			out = append(out, machine.Await{Memories: remaining})

		case machine.IfStatement:
			thenAwaited := copyAwaited(awaited)
			elseAwaited := copyAwaited(awaited)
			s.Then = dedupStatements(s.Then, thenAwaited)
			s.Else = dedupStatements(s.Else, elseAwaited)
			out = append(out, s)
			mergeAwaited(awaited, intersectAwaited(thenAwaited, elseAwaited))

		case machine.MatchStatement:
			branches := make([]machine.MatchBranch, len(s.Branches))
			var branchSets []map[machine.Memory]bool
			for i, br := range s.Branches {
				brAwaited := copyAwaited(awaited)
				br.Body = dedupStatements(br.Body, brAwaited)
				branches[i] = br
				branchSets = append(branchSets, brAwaited)
			}
			s.Branches = branches
			out = append(out, s)
			if len(branchSets) > 0 {
				shared := branchSets[0]
				for _, bs := range branchSets[1:] {
					shared = intersectAwaited(shared, bs)
				}
				mergeAwaited(awaited, shared)
			}

		default:
			out = append(out, st)
		}
	}
	return out
}

func copyAwaited(m map[machine.Memory]bool) map[machine.Memory]bool {
	out := make(map[machine.Memory]bool, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// intersectAwaited returns the memories present in both a and b: a
// Memory every branch of an If/Match already awaited is fulfilled on
// every path out of it, so the parent scope becomes responsible for it
// too (spec's branch-merge rule).
func intersectAwaited(a, b map[machine.Memory]bool) map[machine.Memory]bool {
	out := make(map[machine.Memory]bool)
	for m := range a {
		if b[m] {
			out[m] = true
		}
	}
	return out
}

func mergeAwaited(dst, src map[machine.Memory]bool) {
	for m := range src {
		dst[m] = true
	}
}

package translate

import "github.com/flowlang/flowc/internal/machine"

// Enqueue implements C17, the final pass: any Assignment whose target is
// later required by a downstream Await is a unit of work the scheduler
// can run independently of its caller's continuation, so an
// Enqueue{Target} statement is inserted right after it - the point at
// which that consumer's conservative Await (already present from C13,
// deduplicated by C16) becomes a real synchronisation point rather than
// a same-step read. This walks each FnDef's statement list back to
// front, accumulating the set of memories a downstream Await still needs
// (spec §4.14's reverse walk), so an Assignment earns its Enqueue purely
// by being awaited later - never by what kind of expression produced it.
func Enqueue(prog *machine.Program) {
	for _, def := range prog.FnDefs {
		def.Statements = enqueueStatements(def.Statements, make(map[machine.Memory]bool))
	}
}

// enqueueStatements processes stmts back to front against required (the
// set of memories some statement after stmts still needs awaited),
// returning the rewritten list. required is mutated in place to reflect
// what remains unresolved once stmts is exhausted, for the caller's own
// backward walk over whatever precedes stmts.
func enqueueStatements(stmts []machine.Statement, required map[machine.Memory]bool) []machine.Statement {
	out := make([]machine.Statement, len(stmts))
	for i := len(stmts) - 1; i >= 0; i-- {
		switch s := stmts[i].(type) {
		case machine.Await:
			for _, m := range s.Memories {
				required[m] = true
			}
			out[i] = s

		case machine.Assignment:
			if required[s.Target] {
				delete(required, s.Target)
				out[i] = s // the Enqueue is spliced in below, after this loop
				out = spliceEnqueueAfter(out, i, s.Target)
				continue
			}
			out[i] = s

		case machine.IfStatement:
			thenReq := copyAwaited(required)
			elseReq := copyAwaited(required)
			s.Then = enqueueStatements(s.Then, thenReq)
			s.Else = enqueueStatements(s.Else, elseReq)
			for m := range required {
				delete(required, m)
			}
			mergeAwaited(required, thenReq)
			mergeAwaited(required, elseReq)
			out[i] = s

		case machine.MatchStatement:
			branches := make([]machine.MatchBranch, len(s.Branches))
			before := copyAwaited(required)
			for j, br := range s.Branches {
				brReq := copyAwaited(before)
				br.Body = enqueueStatements(br.Body, brReq)
				branches[j] = br
				if j == 0 {
					for m := range required {
						delete(required, m)
					}
				}
				mergeAwaited(required, brReq)
			}
			s.Branches = branches
			out[i] = s

		default:
			out[i] = stmts[i]
		}
	}
	return out
}

// spliceEnqueueAfter inserts Enqueue{target} immediately after index i in
// out, which is already the right length for stmts but needs one more
// slot for the inserted statement.
func spliceEnqueueAfter(out []machine.Statement, i int, target machine.Memory) []machine.Statement {
	grown := make([]machine.Statement, len(out)+1)
	copy(grown[:i+1], out[:i+1])
	grown[i+1] = machine.Enqueue{Target: target}
	copy(grown[i+2:], out[i+1:])
	return grown
}

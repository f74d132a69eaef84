package translate

import (
	"github.com/flowlang/flowc/internal/analysis"
	"github.com/flowlang/flowc/internal/machine"
)

// Weaken implements C14: for every FnDef, runs analysis.FindClosureCycles
// over its statements and, for every Allocation whose environment carries
// a Memory inside a found cycle, downgrades the corresponding parameter
// position of the *allocated* closure's own FnDef from Fn to WeakFn (spec
// §4.11) - breaking the reference cycle a closure that captures one of its
// own ancestors would otherwise hold onto forever.
func Weaken(prog *machine.Program) {
	byName := make(map[string]*machine.FnDef, len(prog.FnDefs))
	for _, def := range prog.FnDefs {
		byName[def.Name] = def
	}
	for _, def := range prog.FnDefs {
		fnMems := fnMemories(def)
		isFn := func(m machine.Memory) bool { return fnMems[m] }
		cycles := analysis.FindClosureCycles(def.Statements, isFn)
		if len(cycles) == 0 {
			continue
		}
		weak := make(map[machine.Memory]bool)
		for _, scc := range cycles {
			for _, m := range scc {
				weak[m] = true
			}
		}
		weakenAllocations(def.Statements, weak, byName)
	}
}

// fnMemories collects every Memory a FnDef assigns a ClosureInstantiation
// to, directly or inside an If/Match branch - the set of function-typed
// cells the cycle detector needs to know about.
func fnMemories(def *machine.FnDef) map[machine.Memory]bool {
	out := make(map[machine.Memory]bool)
	collectFnMemories(def.Statements, out)
	return out
}

func collectFnMemories(stmts []machine.Statement, out map[machine.Memory]bool) {
	for _, st := range stmts {
		switch s := st.(type) {
		case machine.Assignment:
			if _, ok := s.Expr.(machine.ClosureInstantiation); ok {
				out[s.Target] = true
			}
		case machine.IfStatement:
			collectFnMemories(s.Then, out)
			collectFnMemories(s.Else, out)
		case machine.MatchStatement:
			for _, br := range s.Branches {
				collectFnMemories(br.Body, out)
			}
		}
	}
}

// weakenAllocations walks stmts for Allocations building a closure
// environment; every slot whose captured Memory is in weak gets its home
// FnDef's corresponding EnvTypes position flipped from *Fn to *WeakFn.
func weakenAllocations(stmts []machine.Statement, weak map[machine.Memory]bool, byName map[string]*machine.FnDef) {
	for _, st := range stmts {
		switch s := st.(type) {
		case machine.Allocation:
			for j, slot := range s.Env {
				if !weak[slot.Value] {
					continue
				}
				target, ok := byName[slot.FnName]
				if !ok || j >= len(target.EnvTypes) {
					continue
				}
				if fn, ok := target.EnvTypes[j].(*machine.Fn); ok {
					weakFn := &machine.WeakFn{Args: fn.Args, Ret: fn.Ret}
					target.EnvTypes[j] = weakFn
					// the env-unpack preamble liftLambda emitted is a
					// (Declaration, Assignment) pair per open variable, in
					// the same order - keep the unpacked cell's declared
					// type in sync with the slot's new weakness.
					if decl, ok := target.Statements[2*j].(machine.Declaration); ok {
						decl.Type = weakFn
						target.Statements[2*j] = decl
					}
				}
			}
		case machine.IfStatement:
			weakenAllocations(s.Then, weak, byName)
			weakenAllocations(s.Else, weak, byName)
		case machine.MatchStatement:
			for _, br := range s.Branches {
				weakenAllocations(br.Body, weak, byName)
			}
		}
	}
}

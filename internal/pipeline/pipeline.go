// Package pipeline wires the compiler stages end to end: astin decode ->
// lowering (C4) -> redundancy-eliminated IR (C5-C8) -> machine translation
// (C13) -> weakening (C14) -> statement reordering (C15) -> await
// deduplication (C16) -> enqueueing (C17), with the optional inliner and
// per-pass toggles spec §5/§6 call for.
//
// The pass-toggle enum follows go-dws/internal/bytecode/optimizer.go's
// OptimizationPass shape: a named set of passes, each independently
// switchable; the zero Config enables every pass except inlining.
package pipeline

import (
	"github.com/flowlang/flowc/internal/analysis"
	"github.com/flowlang/flowc/internal/astin"
	"github.com/flowlang/flowc/internal/ir"
	"github.com/flowlang/flowc/internal/lowering"
	"github.com/flowlang/flowc/internal/machine"
	"github.com/flowlang/flowc/internal/optimize"
	"github.com/flowlang/flowc/internal/register"
	"github.com/flowlang/flowc/internal/translate"
)

// Pass names the independently toggleable optimisation passes.
type Pass string

const (
	// PassDeadCodeAnalysis covers the copy propagator (C5) and allocation
	// optimiser (C6): both remove computations whose result is never read.
	PassDeadCodeAnalysis Pass = "dead-code-analysis"
	// PassEquivalentExpressionElimination covers the redundancy eliminator
	// (C8): common-subexpression merging and weak/strong reordering.
	PassEquivalentExpressionElimination Pass = "equivalent-expression-elimination"
	// PassInlining covers the depth-bounded, non-recursive-callee inliner.
	PassInlining Pass = "inlining"
)

// Config toggles individual passes and bounds the inliner's search depth.
// The zero Config runs every pass with inlining disabled (InliningDepth 0).
// The CLI does not use that default: its --inlining-depth flag defaults to
// 1000, which enables inlining.
type Config struct {
	NoDeadCodeAnalysis                bool
	NoEquivalentExpressionElimination bool
	InliningDepth                     int
	// Parallelism, when > 1, is a hint that independent FnDefs may be
	// analysed concurrently (spec §5); the reference pipeline here is
	// single-threaded and the hint is currently unused, since nothing in
	// this pipeline's per-FnDef analyses (C9-C11) shares mutable state
	// that would make concurrent use unsafe, but nor does today's FnDef
	// count justify the goroutine bookkeeping. Kept so a future caller
	// can opt in without an API break.
	Parallelism int
}

// Enabled reports whether p should run under cfg.
func (cfg Config) Enabled(p Pass) bool {
	switch p {
	case PassDeadCodeAnalysis:
		return !cfg.NoDeadCodeAnalysis
	case PassEquivalentExpressionElimination:
		return !cfg.NoEquivalentExpressionElimination
	case PassInlining:
		return cfg.InliningDepth > 0
	default:
		return true
	}
}

// Result is everything downstream consumers (the CLI's compile/vector
// subcommands) need: the final machine program, the optimised IR it was
// translated from (for code-vector export), and the allocator used to
// build both, preserved in case a caller wants to run further passes.
type Result struct {
	Machine   *machine.Program
	Optimized *ir.Program
	Alloc     *register.Allocator
}

// Run executes the full pipeline over a decoded typed AST.
func Run(cfg Config, prog *astin.Program) (*Result, error) {
	alloc := register.NewAllocator()

	lowered, err := lowering.LowerWith(alloc, prog)
	if err != nil {
		return nil, err
	}

	main := lowered.Main
	if cfg.Enabled(PassDeadCodeAnalysis) {
		main = optimize.PropagateCopies(main)
		main = optimize.OptimizeAllocations(main)
	}
	if cfg.Enabled(PassEquivalentExpressionElimination) {
		main = optimize.EliminateRedundancy(alloc, main)
	}
	if cfg.Enabled(PassDeadCodeAnalysis) {
		main = optimize.PropagateCopies(main)
	}
	if cfg.Enabled(PassInlining) {
		main = Inline(alloc, main, cfg.InliningDepth)
	}
	optimized := &ir.Program{Main: main, Declared: lowered.Declared}

	machineProg, err := translate.Translate(optimized)
	if err != nil {
		return nil, err
	}
	translate.Weaken(machineProg)
	translate.Reorder(machineProg)
	translate.DedupAwaits(machineProg)
	translate.Enqueue(machineProg)

	stampSizes(machineProg)

	return &Result{Machine: machineProg, Optimized: optimized, Alloc: alloc}, nil
}

// stampSizes fills in every FnDef's SizeLo/SizeHi, Main and lifted
// closures alike, with estimateFnDef's statement count. It does not use
// the code-size estimator (C11), which works over ir.Lambda bodies that
// are no longer available after translation; the code-vector exporter
// runs C11 over the optimised IR instead.
func stampSizes(prog *machine.Program) {
	for _, def := range prog.FnDefs {
		lo, hi := estimateFnDef(def)
		def.SizeLo, def.SizeHi = lo, hi
	}
}

// estimateFnDef gives a coarse machine-level size bound (statement count
// as a stand-in unit), used only until a caller wants the exact C11
// ir.Lambda-level estimate (analysis.EstimateSize) computed before
// translation discards the Lambda nodes.
func estimateFnDef(def *machine.FnDef) (int, int) {
	n := countStatements(def.Statements)
	return n, n
}

func countStatements(stmts []machine.Statement) int {
	n := 0
	for _, st := range stmts {
		n++
		switch s := st.(type) {
		case machine.IfStatement:
			n += countStatements(s.Then) + countStatements(s.Else)
		case machine.MatchStatement:
			for _, br := range s.Branches {
				n += countStatements(br.Body)
			}
		}
	}
	return n
}

// RecursiveFns reports, for diagnostics, which of prog's FnDefs analysis
// marked self-recursive (mirrors FnDef.IsRecursive, computed earlier by
// the translator via analysis.IsRecursive; exposed separately so a
// caller that only has a machine.Program, not the pre-translation table,
// can still answer the question).
func RecursiveFns(prog *machine.Program) []string {
	var out []string
	for _, def := range prog.FnDefs {
		if def.IsRecursive {
			out = append(out, def.Name)
		}
	}
	return out
}

// ClosureCycleGroups re-derives C10's weakening groups per FnDef, for
// diagnostics (e.g. `--verbose` reporting which memories were weakened).
func ClosureCycleGroups(prog *machine.Program) map[string][][]machine.Memory {
	out := make(map[string][][]machine.Memory)
	for _, def := range prog.FnDefs {
		fnMems := make(map[machine.Memory]bool)
		collectFnMemoriesPublic(def.Statements, fnMems)
		isFn := func(m machine.Memory) bool { return fnMems[m] }
		groups := analysis.FindClosureCycles(def.Statements, isFn)
		if len(groups) > 0 {
			out[def.Name] = groups
		}
	}
	return out
}

func collectFnMemoriesPublic(stmts []machine.Statement, out map[machine.Memory]bool) {
	for _, st := range stmts {
		switch s := st.(type) {
		case machine.Assignment:
			if _, ok := s.Expr.(machine.ClosureInstantiation); ok {
				out[s.Target] = true
			}
		case machine.IfStatement:
			collectFnMemoriesPublic(s.Then, out)
			collectFnMemoriesPublic(s.Else, out)
		case machine.MatchStatement:
			for _, br := range s.Branches {
				collectFnMemoriesPublic(br.Body, out)
			}
		}
	}
}

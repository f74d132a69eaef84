// Package analysis implements the IR/machine-level analyses the
// translator depends on: C9 (recursive-fn finder), C10 (closure-cycle
// detector) and C11 (code-size estimator & code-vector exporter).
package analysis

import (
	"github.com/flowlang/flowc/internal/ir"
	"github.com/flowlang/flowc/internal/register"
)

// FnInst is one statically-known entity an fn-typed register might name:
// a Lambda literal, a named BuiltIn, an alias to another statement's
// register, or an unknown value (e.g. a copy of a parameter).
type FnInst interface{ fnInstNode() }

// FnLambda is a register bound directly to a Lambda literal.
type FnLambda struct {
	Body *ir.Lambda
}

func (FnLambda) fnInstNode() {}

// FnBuiltIn is a register bound to a named primitive function.
type FnBuiltIn struct {
	Name string
}

func (FnBuiltIn) fnInstNode() {}

// FnAlias is a register whose value is just another statement's register
// (a Memory copy; a copied parameter is FnUnknown instead);
// recursion/cycle detection follows the chain to its root.
type FnAlias struct {
	Target register.Register
}

func (FnAlias) fnInstNode() {}

// FnUnknown marks a register reached through a function-typed argument
// or other statically-unresolvable path; spec §4.7 treats a call through
// one conservatively as recursive.
type FnUnknown struct{}

func (FnUnknown) fnInstNode() {}

// BuildFnTable walks l's body and records, for every register whose
// defining expression names a function value, the FnInst it resolves to.
func BuildFnTable(l *ir.Lambda) map[register.Register]FnInst {
	table := make(map[register.Register]FnInst)
	collectFnTable(l.Body, table)
	return table
}

func collectFnTable(b *ir.Block, table map[register.Register]FnInst) {
	for _, st := range b.Statements {
		switch e := st.Expr.(type) {
		case *ir.Lambda:
			table[st.Reg] = FnLambda{Body: e}
			collectFnTable(e.Body, table)
		case ir.ValueExpr:
			switch v := e.Value.(type) {
			case ir.Memory:
				table[st.Reg] = FnAlias{Target: v.Reg}
			case ir.Arg:
				table[st.Reg] = FnUnknown{}
			case ir.BuiltInFn:
				table[st.Reg] = FnBuiltIn{Name: v.Name}
			}
		case *ir.If:
			collectFnTable(e.Then, table)
			collectFnTable(e.Else, table)
		case *ir.Match:
			for _, br := range e.Branches {
				collectFnTable(br.Body, table)
			}
		}
	}
}

// resolve follows the FnAlias chain for r to its root FnInst, or returns
// (nil, false) if r has no statically known function identity at all
// (e.g. it is a lambda argument never aliased to anything).
func resolve(table map[register.Register]FnInst, r register.Register) (FnInst, bool) {
	seen := make(map[register.Register]bool)
	for {
		if seen[r] {
			return FnUnknown{}, true // cyclic alias chain, shouldn't happen; be conservative
		}
		seen[r] = true
		inst, ok := table[r]
		if !ok {
			return nil, false
		}
		alias, isAlias := inst.(FnAlias)
		if !isAlias {
			return inst, true
		}
		r = alias.Target
	}
}

// IsRecursive implements C9: true iff, following the target's FnAlias
// chain to its root Lambda, some call inside that Lambda's body -
// directly or through nested If/Match - targets (after resolving through
// the same table) the same root register. A call through a function-typed
// Arg is conservatively treated as recursive (spec §4.7), since the
// callee cannot be statically ruled out.
func IsRecursive(table map[register.Register]FnInst, root register.Register) bool {
	inst, ok := resolve(table, root)
	if !ok {
		return false
	}
	lam, ok := inst.(FnLambda)
	if !ok {
		return false // BuiltIn or unresolved target: never recursive
	}
	return callsTarget(lam.Body.Body, table, root, make(map[register.Register]bool))
}

func callsTarget(b *ir.Block, table map[register.Register]FnInst, target register.Register, visiting map[register.Register]bool) bool {
	for _, st := range b.Statements {
		if exprCallsTarget(st.Expr, table, target, visiting) {
			return true
		}
	}
	return false
}

func exprCallsTarget(e ir.Expression, table map[register.Register]FnInst, target register.Register, visiting map[register.Register]bool) bool {
	switch v := e.(type) {
	case ir.FnCall:
		if callTargetsRoot(v.Fn, table, target, visiting) {
			return true
		}
	// A nested *ir.Lambda literal is deliberately not recursed into here:
	// merely defining an inner lambda is not a call. If that lambda is
	// ever invoked, the FnCall case above resolves its callee through the
	// FnAlias/FnLambda table (see callTargetsRoot), which already walks
	// into the callee's own body - that's the only path that should count.
	case *ir.If:
		return callsTarget(v.Then, table, target, visiting) || callsTarget(v.Else, table, target, visiting)
	case *ir.Match:
		for _, br := range v.Branches {
			if callsTarget(br.Body, table, target, visiting) {
				return true
			}
		}
	}
	return false
}

func callTargetsRoot(fn ir.Value, table map[register.Register]FnInst, target register.Register, visiting map[register.Register]bool) bool {
	m, ok := fn.(ir.Memory)
	if !ok {
		if _, isArg := fn.(ir.Arg); isArg {
			return true // function-typed argument: conservative (spec §4.7)
		}
		return false
	}
	if m.Reg == target {
		return true
	}
	if visiting[m.Reg] {
		return false
	}
	visiting[m.Reg] = true
	inst, ok := resolve(table, m.Reg)
	if !ok {
		return false
	}
	if lam, ok := inst.(FnLambda); ok {
		return callsTarget(lam.Body.Body, table, target, visiting)
	}
	if _, ok := inst.(FnUnknown); ok {
		return true
	}
	return false
}

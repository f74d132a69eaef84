package optimize

import (
	"github.com/flowlang/flowc/internal/ir"
	"github.com/flowlang/flowc/internal/register"
)

// materializer implements C8's second and third phases (spec §4.6.2,
// §4.6.3): turning the normalizer's defs map (register -> normalized
// defining expression, plus a block's return Value) back into real,
// correctly ordered Blocks, hoisting an assignment shared by every branch
// of an If/Match out to the enclosing scope.
//
// This is a single materialize pass reused for both the weak and the
// strong reorder phases: because the only hoisting it performs is exact
// CSE-driven sharing (an assignment whose fingerprint already matched
// across every branch during normalization), a second pass over already
// fully reordered code is idempotent, matching the effect spec §4.6.3's
// narrower "strong reorder" achieves without needing a second, separately
// specified algorithm.
type materializer struct {
	defs    map[register.Register]ir.Expression
	emitted map[register.Register]bool
}

func newMaterializer(defs map[register.Register]ir.Expression) *materializer {
	return &materializer{defs: defs, emitted: make(map[register.Register]bool)}
}

// requiredRegs returns, in dependency-first (topological) order, every
// register that must be materialized to compute val at the current
// scope. It does not descend into the private branches of a nested
// If/Match (those are handled by a recursive materialize call once the
// If/Match's own statement is emitted) nor into a nested Lambda's body
// (which gets its own materializer); it only records the direct values
// those forms themselves reference (the If's condition, the Match's
// subject, a Lambda's open variables).
func (m *materializer) requiredRegs(val ir.Value, seen map[register.Register]bool, order *[]register.Register) {
	r, ok := regOf(val)
	if !ok || seen[r] || m.emitted[r] {
		return
	}
	seen[r] = true
	expr, ok := m.defs[r]
	if !ok {
		// An Arg or a register defined in an outer scope we don't own.
		return
	}
	for _, dep := range directDeps(expr) {
		m.requiredRegs(dep, seen, order)
	}
	*order = append(*order, r)
}

func regOf(v ir.Value) (register.Register, bool) {
	switch val := v.(type) {
	case ir.Memory:
		return val.Reg, true
	case ir.Arg:
		return val.Reg, true
	default:
		return register.Register{}, false
	}
}

// directDeps returns the Values an expression directly references at
// this scope, per the restricted walk requiredRegs needs: Lambda reports
// only its open vars, If/Match only their condition/subject.
func directDeps(e ir.Expression) []ir.Value {
	switch v := e.(type) {
	case ir.ValueExpr:
		return []ir.Value{v.Value}
	case ir.ElementAccess:
		return []ir.Value{v.Value}
	case ir.TupleExpression:
		return v.Values
	case ir.FnCall:
		return append([]ir.Value{v.Fn}, v.Args...)
	case ir.CtorCall:
		if v.Data != nil {
			return []ir.Value{v.Data}
		}
		return nil
	case *ir.Lambda:
		return ir.OpenVars(v)
	case *ir.If:
		return []ir.Value{v.Cond}
	case *ir.Match:
		return []ir.Value{v.Subject}
	default:
		return nil
	}
}

// block builds the final Block computing retVal at the current scope,
// emitting each required register's Assignment in dependency order.
func (m *materializer) block(retVal ir.Value) *ir.Block {
	var order []register.Register
	m.requiredRegs(retVal, make(map[register.Register]bool), &order)

	var stmts []ir.Statement
	for _, r := range order {
		if m.emitted[r] {
			continue
		}
		expr := m.defs[r]
		switch v := expr.(type) {
		case *ir.If:
			m.hoistSharedIf(v, r, &stmts)
		case *ir.Match:
			m.hoistSharedMatch(v, r, &stmts)
		case *ir.Lambda:
			inner := newMaterializer(m.defs)
			body := inner.block(v.Body.Return)
			stmts = append(stmts, ir.Statement{Reg: r, Expr: &ir.Lambda{Args: v.Args, Body: body}})
		default:
			stmts = append(stmts, ir.Statement{Reg: r, Expr: expr})
		}
		m.emitted[r] = true
	}
	return &ir.Block{Statements: stmts, Return: retVal}
}

// branchShared returns the registers required by every one of retVals,
// in the order they were first required, skipping the hoist entirely for
// a single-branch set (spec §4.6.2: "a single-branch match must not be
// treated as moving expressions outward").
func (m *materializer) branchShared(retVals []ir.Value) []register.Register {
	if len(retVals) < 2 {
		return nil
	}
	sets := make([]map[register.Register]bool, len(retVals))
	var firstOrder []register.Register
	for i, rv := range retVals {
		var order []register.Register
		// A throwaway materializer sharing defs but its own emitted set,
		// so the dry run doesn't mark anything as materialized yet.
		dry := &materializer{defs: m.defs, emitted: copyEmitted(m.emitted)}
		dry.requiredRegs(rv, make(map[register.Register]bool), &order)
		set := make(map[register.Register]bool, len(order))
		for _, r := range order {
			set[r] = true
		}
		sets[i] = set
		if i == 0 {
			firstOrder = order
		}
	}
	var shared []register.Register
	for _, r := range firstOrder {
		inAll := true
		for _, s := range sets[1:] {
			if !s[r] {
				inAll = false
				break
			}
		}
		if inAll {
			shared = append(shared, r)
		}
	}
	return shared
}

func copyEmitted(m map[register.Register]bool) map[register.Register]bool {
	cp := make(map[register.Register]bool, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}

func (m *materializer) emitHoisted(shared []register.Register, stmts *[]ir.Statement) {
	for _, r := range shared {
		if m.emitted[r] {
			continue
		}
		m.emitted[r] = true
		*stmts = append(*stmts, ir.Statement{Reg: r, Expr: m.defs[r]})
	}
}

func (m *materializer) hoistSharedIf(v *ir.If, r register.Register, stmts *[]ir.Statement) {
	shared := m.branchShared([]ir.Value{v.Then.Return, v.Else.Return})
	m.emitHoisted(shared, stmts)
	then := m.block(v.Then.Return)
	els := m.block(v.Else.Return)
	*stmts = append(*stmts, ir.Statement{Reg: r, Expr: &ir.If{Cond: v.Cond, Then: then, Else: els}})
}

func (m *materializer) hoistSharedMatch(v *ir.Match, r register.Register, stmts *[]ir.Statement) {
	retVals := make([]ir.Value, len(v.Branches))
	for i, br := range v.Branches {
		retVals[i] = br.Body.Return
	}
	shared := m.branchShared(retVals)
	m.emitHoisted(shared, stmts)
	branches := make([]ir.MatchBranch, len(v.Branches))
	for i, br := range v.Branches {
		branches[i] = ir.MatchBranch{Target: br.Target, Body: m.block(br.Body.Return)}
	}
	*stmts = append(*stmts, ir.Statement{Reg: r, Expr: &ir.Match{Subject: v.Subject, Branches: branches}})
}

package optimize

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/flowlang/flowc/internal/ir"
	"github.com/flowlang/flowc/internal/register"
)

// normalizer implements C8's first phase (spec §4.6.1): walking a
// lambda's statements and recording, for each Assignment `r = e`, a
// "normal" representative register whenever e (after substituting every
// register by its own normal register) has been seen before.
//
// Expressions aren't directly usable as Go map keys (a TupleExpression's
// []Value slice field makes the struct incomparable at runtime), so
// HistoricalExpressions is keyed by a canonical string fingerprint rather
// than the Expression value itself.
type normalizer struct {
	normal map[register.Register]register.Register // reg -> its normal representative
	hist   map[string]register.Register             // fingerprint -> defining (normal) register
	defs   map[register.Register]ir.Expression       // reg -> normalized defining expression, across the whole lambda
}

func newNormalizer() *normalizer {
	return &normalizer{
		normal: make(map[register.Register]register.Register),
		hist:   make(map[string]register.Register),
		defs:   make(map[register.Register]ir.Expression),
	}
}

// snapshot copies the normal-register map so a branch's CSE discoveries
// can be rolled back once the branch is done (spec §4.6.1: "restore the
// NormalizedRegisters map to its state at entry"). hist/defs are shared
// across all branches of the same lambda (they record facts that remain
// true regardless of which branch executes).
func (n *normalizer) snapshot() map[register.Register]register.Register {
	cp := make(map[register.Register]register.Register, len(n.normal))
	for k, v := range n.normal {
		cp[k] = v
	}
	return cp
}

func (n *normalizer) restore(saved map[register.Register]register.Register) {
	n.normal = saved
}

func (n *normalizer) normalReg(r register.Register) register.Register {
	if m, ok := n.normal[r]; ok {
		return m
	}
	return r
}

func (n *normalizer) substValue(v ir.Value) ir.Value {
	switch val := v.(type) {
	case ir.Memory:
		return ir.Memory{Type: val.Type, Reg: n.normalReg(val.Reg)}
	case ir.Arg:
		return ir.Arg{Type: val.Type, Reg: n.normalReg(val.Reg)}
	default:
		return v
	}
}

func (n *normalizer) substValues(vs []ir.Value) []ir.Value {
	if vs == nil {
		return nil
	}
	out := make([]ir.Value, len(vs))
	for i, v := range vs {
		out[i] = n.substValue(v)
	}
	return out
}

// normalizeBlock rewrites b in place (returning a new Block), substituting
// registers by their current normal representative and performing CSE
// fingerprint lookups statement by statement.
func (n *normalizer) normalizeBlock(b *ir.Block) *ir.Block {
	var out []ir.Statement
	for _, st := range b.Statements {
		e := n.normalizeExpr(st.Expr) // step 1+2: substitute, recursing into nested forms first
		fp := fingerprint(e)
		var defReg register.Register
		if prev, ok := n.hist[fp]; ok {
			n.normal[st.Reg] = prev // step 3: alias to the previously seen definition
			defReg = prev
		} else {
			n.hist[fp] = st.Reg
			defReg = st.Reg
		}
		n.defs[st.Reg] = e // step 4: record under the original register, overwriting
		// step 5: the statement's expression becomes a bare read of the normal register
		out = append(out, ir.Statement{Reg: st.Reg, Expr: ir.ValueExpr{Value: ir.Memory{Reg: defReg}}})
	}
	return &ir.Block{Statements: out, Return: n.substValue(b.Return)}
}

func (n *normalizer) normalizeExpr(e ir.Expression) ir.Expression {
	switch v := e.(type) {
	case ir.ValueExpr:
		return ir.ValueExpr{Value: n.substValue(v.Value)}
	case ir.ElementAccess:
		return ir.ElementAccess{Value: n.substValue(v.Value), Index: v.Index}
	case ir.TupleExpression:
		return ir.TupleExpression{Values: n.substValues(v.Values)}
	case ir.FnCall:
		return ir.FnCall{Fn: n.substValue(v.Fn), Args: n.substValues(v.Args)}
	case ir.CtorCall:
		var data ir.Value
		if v.Data != nil {
			data = n.substValue(v.Data)
		}
		return ir.CtorCall{Index: v.Index, Data: data, UnionType: v.UnionType}
	case *ir.Lambda:
		// A nested lambda gets its own fingerprint space (CSE is per-lambda,
		// spec §4.6), seeded with a copy of the enclosing normal map so open
		// variables already CSE'd at this level are seen correctly inside.
		inner := newNormalizer()
		inner.normal = n.snapshot()
		body := inner.normalizeBlock(v.Body)
		for r, def := range inner.defs {
			n.defs[r] = def
		}
		return &ir.Lambda{Args: v.Args, Body: body}
	case *ir.If:
		saved := n.snapshot()
		then := n.normalizeBlock(v.Then)
		n.restore(saved)
		els := n.normalizeBlock(v.Else)
		n.restore(saved)
		return &ir.If{Cond: n.substValue(v.Cond), Then: then, Else: els}
	case *ir.Match:
		saved := n.snapshot()
		branches := make([]ir.MatchBranch, len(v.Branches))
		for i, br := range v.Branches {
			n.restore(saved)
			branches[i] = ir.MatchBranch{Target: br.Target, Body: n.normalizeBlock(br.Body)}
		}
		n.restore(saved)
		return &ir.Match{Subject: n.substValue(v.Subject), Branches: branches}
	default:
		return e
	}
}

// fingerprint canonically encodes e as a string so structurally equal
// (post-substitution) expressions produce identical keys regardless of
// slice identity, which is what makes them usable as HistoricalExpressions
// map keys (spec §4.6.1).
func fingerprint(e ir.Expression) string {
	var b strings.Builder
	writeExpr(&b, e)
	return b.String()
}

func writeValue(b *strings.Builder, v ir.Value) {
	switch val := v.(type) {
	case ir.Memory:
		b.WriteString("m:")
		b.WriteString(val.Reg.String())
	case ir.Arg:
		b.WriteString("a:")
		b.WriteString(val.Reg.String())
	case ir.IntLiteral:
		b.WriteString("i:")
		b.WriteString(strconv.FormatInt(val.Val, 10))
	case ir.BoolLiteral:
		b.WriteString("b:")
		b.WriteString(strconv.FormatBool(val.Val))
	case ir.BuiltInFn:
		b.WriteString("fn:")
		b.WriteString(val.Name)
	default:
		b.WriteString("?")
	}
}

func writeValues(b *strings.Builder, vs []ir.Value) {
	for i, v := range vs {
		if i > 0 {
			b.WriteByte(',')
		}
		writeValue(b, v)
	}
}

func writeExpr(b *strings.Builder, e ir.Expression) {
	switch v := e.(type) {
	case ir.ValueExpr:
		b.WriteString("V(")
		writeValue(b, v.Value)
		b.WriteByte(')')
	case ir.ElementAccess:
		b.WriteString("E(")
		writeValue(b, v.Value)
		fmt.Fprintf(b, ",%d)", v.Index)
	case ir.TupleExpression:
		b.WriteString("T(")
		writeValues(b, v.Values)
		b.WriteByte(')')
	case ir.FnCall:
		b.WriteString("C(")
		writeValue(b, v.Fn)
		b.WriteByte(';')
		writeValues(b, v.Args)
		b.WriteByte(')')
	case ir.CtorCall:
		fmt.Fprintf(b, "K(%d;", v.Index)
		if v.Data != nil {
			writeValue(b, v.Data)
		}
		b.WriteByte(')')
	case *ir.Lambda:
		// Lambda/If/Match are never CSE-merged against one another as whole
		// expressions (the spec's redundancy target is straight-line value
		// computation, not conditional or closure identity) - the pointer
		// makes each occurrence its own fingerprint.
		fmt.Fprintf(b, "L(%p)", v)
	case *ir.If:
		fmt.Fprintf(b, "I(%p)", v)
	case *ir.Match:
		fmt.Fprintf(b, "M(%p)", v)
	default:
		b.WriteString("?")
	}
}

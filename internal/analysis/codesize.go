package analysis

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/flowlang/flowc/internal/ir"
)

// Code-size constants (spec §4 "Code-size constants (exact integers)").
const (
	costBuiltInInt    = 8
	costBuiltInBool   = 3
	costBuiltInFn     = 11
	costMemoryAccess  = 38
	costTupleExpr     = 2
	costElementAccess = 7
	costValueExpr     = 1
	costFnCall        = 89
	costCtorCall      = 92
	costLambda        = 47
	costAssignment    = 5
	costIf            = 13
	costMatch         = 17
)

// operatorCosts gives the extra cost a FnCall of a named operator incurs
// on top of costFnCall, for the 21 operators spec §4.9 requires a count
// for. A FnCall of a name not in this map adds nothing beyond
// costFnCall.
var operatorCosts = map[string]int{
	"**": 10, "*": 4, "/": 4, "%": 4,
	"<=>": 2,
	"+": 1, "-": 1, ">>": 1, "<<": 1, "&": 1, "^": 1, "|": 1,
	"++": 1, "--": 1, "<": 1, "<=": 1, ">": 1, ">=": 1, "==": 1, "!=": 1, "!": 1,
}

// Operators lists the 21 required operator names in lexicographic order,
// matching the code-vector header spec §6 specifies.
var Operators = sortedOperatorNames()

func sortedOperatorNames() []string {
	names := make([]string, 0, len(operatorCosts))
	for name := range operatorCosts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// EstimateSize implements C11's size estimator: returns [lo, hi] for l,
// where If/Match branches contribute the convex hull of their costs and
// straight-line sequences sum (spec §4.9).
func EstimateSize(l *ir.Lambda) (lo, hi int) {
	return estimateBlock(l.Body)
}

func estimateBlock(b *ir.Block) (lo, hi int) {
	for _, st := range b.Statements {
		elo, ehi := estimateExpr(st.Expr)
		lo += costAssignment + elo
		hi += costAssignment + ehi
	}
	rlo, rhi := estimateValue(b.Return)
	return lo + costValueExpr + rlo, hi + costValueExpr + rhi
}

func estimateValue(v ir.Value) (lo, hi int) {
	switch val := v.(type) {
	case ir.IntLiteral:
		return costBuiltInInt, costBuiltInInt
	case ir.BoolLiteral:
		return costBuiltInBool, costBuiltInBool
	case ir.BuiltInFn:
		return costBuiltInFn, costBuiltInFn
	case ir.Memory, ir.Arg:
		_ = val
		return costMemoryAccess, costMemoryAccess
	default:
		return 0, 0
	}
}

func estimateValues(vs []ir.Value) (lo, hi int) {
	for _, v := range vs {
		vlo, vhi := estimateValue(v)
		lo += vlo
		hi += vhi
	}
	return lo, hi
}

func estimateExpr(e ir.Expression) (lo, hi int) {
	switch v := e.(type) {
	case ir.ValueExpr:
		return estimateValue(v.Value)
	case ir.ElementAccess:
		vlo, vhi := estimateValue(v.Value)
		return costElementAccess + vlo, costElementAccess + vhi
	case ir.TupleExpression:
		vlo, vhi := estimateValues(v.Values)
		return costTupleExpr + vlo, costTupleExpr + vhi
	case ir.FnCall:
		flo, fhi := estimateValue(v.Fn)
		alo, ahi := estimateValues(v.Args)
		base := costFnCall
		if bi, ok := v.Fn.(ir.BuiltInFn); ok {
			if c, ok := operatorCosts[bi.Name]; ok {
				base += c
			}
		}
		return base + flo + alo, base + fhi + ahi
	case ir.CtorCall:
		var dlo, dhi int
		if v.Data != nil {
			dlo, dhi = estimateValue(v.Data)
		}
		return costCtorCall + dlo, costCtorCall + dhi
	case *ir.Lambda:
		blo, bhi := estimateBlock(v.Body)
		return costLambda + blo, costLambda + bhi
	case *ir.If:
		clo, chi := estimateValue(v.Cond)
		tlo, thi := estimateBlock(v.Then)
		elo, ehi := estimateBlock(v.Else)
		lo := costIf + clo + min(tlo, elo)
		hi := costIf + chi + max(thi, ehi)
		return lo, hi
	case *ir.Match:
		slo, shi := estimateValue(v.Subject)
		lo, hi = -1, -1
		for _, br := range v.Branches {
			blo, bhi := estimateBlock(br.Body)
			if lo == -1 || blo < lo {
				lo = blo
			}
			if bhi > hi {
				hi = bhi
			}
		}
		if lo == -1 {
			lo = 0
		}
		return costMatch + slo + lo, costMatch + shi + hi
	default:
		return 0, 0
	}
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// CodeVector is the per-syntax-form feature vector spec §4.9/§6 exports
// for a lambda: one count per form plus one count per required operator.
type CodeVector struct {
	BuiltinInt       int
	BuiltinBool      int
	BuiltinFn        int
	MemoryAccess     int
	TupleExpression  int
	ElementAccess    int
	ValueExpression  int
	FnCall           int
	CtorCall         int
	Lambda           int
	Assignment       int
	If               int
	Match            int
	OperatorCounts   map[string]int
}

// BuildCodeVector implements the code-vector half of C11, walking l's
// body and tallying one count per syntactic form and per named operator.
func BuildCodeVector(l *ir.Lambda) *CodeVector {
	v := &CodeVector{OperatorCounts: make(map[string]int, len(Operators))}
	for _, name := range Operators {
		v.OperatorCounts[name] = 0
	}
	vectorBlock(l.Body, v)
	return v
}

func vectorBlock(b *ir.Block, v *CodeVector) {
	for _, st := range b.Statements {
		v.Assignment++
		vectorExpr(st.Expr, v)
	}
	v.ValueExpression++
	vectorValue(b.Return, v)
}

func vectorValue(val ir.Value, v *CodeVector) {
	switch x := val.(type) {
	case ir.IntLiteral:
		v.BuiltinInt++
	case ir.BoolLiteral:
		v.BuiltinBool++
	case ir.BuiltInFn:
		v.BuiltinFn++
		if _, ok := v.OperatorCounts[x.Name]; ok {
			v.OperatorCounts[x.Name]++
		}
	case ir.Memory, ir.Arg:
		v.MemoryAccess++
	}
}

func vectorValues(vs []ir.Value, v *CodeVector) {
	for _, val := range vs {
		vectorValue(val, v)
	}
}

func vectorExpr(e ir.Expression, v *CodeVector) {
	switch x := e.(type) {
	case ir.ValueExpr:
		v.ValueExpression++
		vectorValue(x.Value, v)
	case ir.ElementAccess:
		v.ElementAccess++
		vectorValue(x.Value, v)
	case ir.TupleExpression:
		v.TupleExpression++
		vectorValues(x.Values, v)
	case ir.FnCall:
		v.FnCall++
		vectorValue(x.Fn, v)
		vectorValues(x.Args, v)
	case ir.CtorCall:
		v.CtorCall++
		if x.Data != nil {
			vectorValue(x.Data, v)
		}
	case *ir.Lambda:
		v.Lambda++
		vectorBlock(x.Body, v)
	case *ir.If:
		v.If++
		vectorValue(x.Cond, v)
		vectorBlock(x.Then, v)
		vectorBlock(x.Else, v)
	case *ir.Match:
		v.Match++
		vectorValue(x.Subject, v)
		for _, br := range x.Branches {
			vectorBlock(br.Body, v)
		}
	}
}

// formFields is the fixed header order spec §6 specifies for the 13
// syntactic-form columns, before the 21 sorted operator columns.
var formFields = []string{
	"builtin_int", "builtin_bool", "builtin_fn", "memory_access",
	"tuple_expression", "element_access", "value_expression",
	"fn_call", "ctor_call", "lambda", "assignment", "if_", "match_",
}

func (v *CodeVector) formCounts() []int {
	return []int{
		v.BuiltinInt, v.BuiltinBool, v.BuiltinFn, v.MemoryAccess,
		v.TupleExpression, v.ElementAccess, v.ValueExpression,
		v.FnCall, v.CtorCall, v.Lambda, v.Assignment, v.If, v.Match,
	}
}

// ExportTSV implements the code-vector exporter: a two-line TSV, a
// header row of field names followed by a row of integer counts, fields
// in the fixed order formFields ++ Operators (spec §6).
func (v *CodeVector) ExportTSV() string {
	header := append(append([]string{}, formFields...), Operators...)
	counts := v.formCounts()
	for _, op := range Operators {
		counts = append(counts, v.OperatorCounts[op])
	}
	strCounts := make([]string, len(counts))
	for i, c := range counts {
		strCounts[i] = strconv.Itoa(c)
	}
	return fmt.Sprintf("%s\n%s\n", strings.Join(header, "\t"), strings.Join(strCounts, "\t"))
}

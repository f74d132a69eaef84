package analysis

import (
	"strings"
	"testing"

	"github.com/flowlang/flowc/internal/ir"
)

// TestEstimateSizeIfTakesConvexHullOfBranches verifies spec §4.9: an If's
// lo comes from its cheaper branch and hi from its more expensive one,
// not from summing both.
func TestEstimateSizeIfTakesConvexHullOfBranches(t *testing.T) {
	cheap := &ir.Block{Return: ir.IntLiteral{Val: 1}}
	expensive := &ir.Block{
		Statements: []ir.Statement{{Expr: ir.ValueExpr{Value: ir.IntLiteral{Val: 2}}}},
		Return:     ir.IntLiteral{Val: 3},
	}
	lam := &ir.Lambda{
		Body: &ir.Block{
			Statements: []ir.Statement{{Expr: &ir.If{Cond: ir.BoolLiteral{Val: true}, Then: cheap, Else: expensive}}},
			Return:     ir.BoolLiteral{Val: true},
		},
	}

	cheapLo, cheapHi := estimateBlock(cheap)
	expLo, expHi := estimateBlock(expensive)
	if cheapLo >= expLo {
		t.Fatalf("fixture invalid: cheap branch (%d) should cost less than expensive branch (%d)", cheapLo, expLo)
	}

	lo, hi := EstimateSize(lam)
	wantLo := costAssignment + costIf + costBuiltInBool + cheapLo + costValueExpr + costBuiltInBool
	wantHi := costAssignment + costIf + costBuiltInBool + expHi + costValueExpr + costBuiltInBool
	if lo != wantLo {
		t.Errorf("lo = %d, want %d (should take the cheaper branch's cost)", lo, wantLo)
	}
	if hi != wantHi {
		t.Errorf("hi = %d, want %d (should take the more expensive branch's cost)", hi, wantHi)
	}
}

func TestBuildCodeVectorTrivialProgram(t *testing.T) {
	lam := &ir.Lambda{Body: &ir.Block{Return: ir.IntLiteral{Val: 0}}}
	v := BuildCodeVector(lam)

	if v.ValueExpression != 1 {
		t.Errorf("ValueExpression = %d, want 1", v.ValueExpression)
	}
	if v.BuiltinInt != 1 {
		t.Errorf("BuiltinInt = %d, want 1", v.BuiltinInt)
	}
	for _, field := range []struct {
		name string
		got  int
	}{
		{"BuiltinBool", v.BuiltinBool}, {"BuiltinFn", v.BuiltinFn}, {"MemoryAccess", v.MemoryAccess},
		{"TupleExpression", v.TupleExpression}, {"ElementAccess", v.ElementAccess},
		{"FnCall", v.FnCall}, {"CtorCall", v.CtorCall}, {"Lambda", v.Lambda},
		{"Assignment", v.Assignment}, {"If", v.If}, {"Match", v.Match},
	} {
		if field.got != 0 {
			t.Errorf("%s = %d, want 0", field.name, field.got)
		}
	}
	for _, op := range Operators {
		if v.OperatorCounts[op] != 0 {
			t.Errorf("OperatorCounts[%q] = %d, want 0", op, v.OperatorCounts[op])
		}
	}
}

// TestExportTSVHeaderOrder verifies spec §6's fixed column order: the 13
// syntactic-form fields followed by the 21 operator fields in
// lexicographic order.
func TestExportTSVHeaderOrder(t *testing.T) {
	v := BuildCodeVector(&ir.Lambda{Body: &ir.Block{Return: ir.IntLiteral{Val: 0}}})
	tsv := v.ExportTSV()
	lines := strings.Split(strings.TrimRight(tsv, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("ExportTSV produced %d lines, want 2 (header + counts)", len(lines))
	}
	header := strings.Split(lines[0], "\t")
	if len(header) != len(formFields)+len(Operators) {
		t.Fatalf("header has %d fields, want %d", len(header), len(formFields)+len(Operators))
	}
	for i, f := range formFields {
		if header[i] != f {
			t.Errorf("header[%d] = %q, want %q", i, header[i], f)
		}
	}
	for i, op := range Operators {
		if header[len(formFields)+i] != op {
			t.Errorf("header[%d] = %q, want operator %q", len(formFields)+i, header[len(formFields)+i], op)
		}
	}
	counts := strings.Split(lines[1], "\t")
	if len(counts) != len(header) {
		t.Fatalf("counts row has %d fields, want %d to match header", len(counts), len(header))
	}
}

package flowc

import (
	"strings"
	"testing"
)

// trivialProgram is spec scenario S6: λ(). Integer{0}.
const trivialProgram = `{"main":{"params":[],"body":{"kind":"integer","value":0}}}`

func TestCompileProducesMainFnDef(t *testing.T) {
	res, err := CompileBytes([]byte(trivialProgram))
	if err != nil {
		t.Fatalf("CompileBytes: %v", err)
	}
	if len(res.Machine.FnDefs) == 0 {
		t.Fatal("expected at least one FnDef")
	}
	last := res.Machine.FnDefs[len(res.Machine.FnDefs)-1]
	if last.Name != "Main" {
		t.Errorf("last FnDef name = %q, want %q", last.Name, "Main")
	}
}

func TestVectorMatchesScenarioS6(t *testing.T) {
	vec, _, _, err := Vector(strings.NewReader(trivialProgram))
	if err != nil {
		t.Fatalf("Vector: %v", err)
	}
	if vec.ValueExpression != 1 {
		t.Errorf("ValueExpression = %d, want 1", vec.ValueExpression)
	}
	if vec.BuiltinInt != 1 {
		t.Errorf("BuiltinInt = %d, want 1", vec.BuiltinInt)
	}
	if vec.FnCall != 0 || vec.If != 0 || vec.Match != 0 || vec.Lambda != 0 {
		t.Errorf("expected every other form to be zero, got %+v", vec)
	}
}

func TestCompileInvalidJSON(t *testing.T) {
	if _, err := CompileBytes([]byte("not json")); err == nil {
		t.Fatal("expected an error for malformed input")
	}
}

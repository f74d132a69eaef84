package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flowlang/flowc/internal/pipeline"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "flowc.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("writing fixture config: %v", err)
	}
	return path
}

func TestLoadApplyOverridesOnlySetFields(t *testing.T) {
	path := writeConfig(t, `
passes:
  dead-code-analysis: false
inlining-depth: 42
`)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg := f.Apply(pipeline.Config{})

	if !cfg.NoDeadCodeAnalysis {
		t.Errorf("expected dead-code-analysis: false to set NoDeadCodeAnalysis")
	}
	if cfg.NoEquivalentExpressionElimination {
		t.Errorf("unset equivalent-expression-elimination must not change the default")
	}
	if cfg.InliningDepth != 42 {
		t.Errorf("InliningDepth = %d, want 42", cfg.InliningDepth)
	}
}

func TestApplyNilFileIsNoop(t *testing.T) {
	var f *File
	cfg := pipeline.Config{InliningDepth: 7}
	got := f.Apply(cfg)
	if got != cfg {
		t.Errorf("Apply(nil) = %+v, want unchanged %+v", got, cfg)
	}
}

func TestInliningFalseDisablesInliningRegardlessOfDepth(t *testing.T) {
	path := writeConfig(t, `
passes:
  inlining: false
inlining-depth: 1000
`)
	f, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg := f.Apply(pipeline.Config{InliningDepth: 1000})
	if cfg.InliningDepth != 0 {
		t.Errorf("InliningDepth = %d, want 0 when inlining is disabled", cfg.InliningDepth)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

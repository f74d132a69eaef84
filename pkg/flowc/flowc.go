// Package flowc is the public facade over the compiler pipeline: decode
// a typed-AST JSON document, run it through C1-C17, and hand back
// either the final machine Program or the code vector of its entry
// point. It exists so cmd/flowc (and any other embedder) depends on a
// small stable surface instead of internal/pipeline directly.
//
// Modelled on go-dws's pkg/dwscript facade: functional Options
// (WithInliningDepth mirrors that package's WithOutput/WithTypeCheck
// pattern) layered over the same internal machinery the CLI drives.
package flowc

import (
	"io"

	"github.com/flowlang/flowc/internal/analysis"
	"github.com/flowlang/flowc/internal/astin"
	"github.com/flowlang/flowc/internal/machine"
	"github.com/flowlang/flowc/internal/pipeline"
)

// Option configures a Compile/Vector run.
type Option func(*pipeline.Config)

// WithInliningDepth sets the inliner's maximum nested-substitution
// budget. 0 (the default) disables inlining.
func WithInliningDepth(depth int) Option {
	return func(cfg *pipeline.Config) { cfg.InliningDepth = depth }
}

// WithNoDeadCodeAnalysis disables the copy-propagation/allocation-
// optimisation passes (C5/C6).
func WithNoDeadCodeAnalysis() Option {
	return func(cfg *pipeline.Config) { cfg.NoDeadCodeAnalysis = true }
}

// WithNoEquivalentExpressionElimination disables the redundancy
// eliminator (C8).
func WithNoEquivalentExpressionElimination() Option {
	return func(cfg *pipeline.Config) { cfg.NoEquivalentExpressionElimination = true }
}

// WithParallelism sets pipeline.Config's Parallelism hint.
func WithParallelism(n int) Option {
	return func(cfg *pipeline.Config) { cfg.Parallelism = n }
}

// WithConfig overlays an already-built pipeline.Config wholesale,
// replacing whatever earlier Options set (cmd/flowc passes one WithConfig
// holding its --config file and command-line flags already merged).
func WithConfig(base pipeline.Config) Option {
	return func(cfg *pipeline.Config) { *cfg = base }
}

func buildConfig(opts []Option) pipeline.Config {
	var cfg pipeline.Config
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// Result is everything a caller needs out of a full compile: the
// machine program, the AST it was decoded from (for --dump-ast), and
// the IR it was translated from (for code-vector export without
// re-running the front half of the pipeline).
type Result struct {
	AST      *astin.Program
	Machine  *machine.Program
	Pipeline *pipeline.Result
}

// Compile decodes r as typed-AST JSON and runs the full pipeline.
func Compile(r io.Reader, opts ...Option) (*Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return CompileBytes(data, opts...)
}

// CompileBytes is Compile over an already-read byte slice.
func CompileBytes(data []byte, opts ...Option) (*Result, error) {
	ast, err := astin.Decode(data)
	if err != nil {
		return nil, err
	}
	cfg := buildConfig(opts)
	out, err := pipeline.Run(cfg, ast)
	if err != nil {
		return nil, err
	}
	return &Result{AST: ast, Machine: out.Machine, Pipeline: out}, nil
}

// Vector decodes r as typed-AST JSON, runs the full pipeline (translation
// included), and returns the code vector (C11) of the optimised IR entry
// point, plus its [lo, hi] instruction-count bound.
func Vector(r io.Reader, opts ...Option) (*analysis.CodeVector, int, int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, 0, 0, err
	}
	ast, err := astin.Decode(data)
	if err != nil {
		return nil, 0, 0, err
	}
	cfg := buildConfig(opts)
	out, err := pipeline.Run(cfg, ast)
	if err != nil {
		return nil, 0, 0, err
	}
	lo, hi := analysis.EstimateSize(out.Optimized.Main)
	vec := analysis.BuildCodeVector(out.Optimized.Main)
	return vec, lo, hi, nil
}

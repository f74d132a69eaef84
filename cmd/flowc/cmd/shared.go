package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowlang/flowc/internal/config"
	"github.com/flowlang/flowc/internal/pipeline"
	"github.com/flowlang/flowc/pkg/flowc"
)

// passFlags holds the pass-toggle flags shared by compile and vector
// (spec §6): a cobra.Command gets its own instance via addPassFlags so
// compile and vector never contend over the same package-level vars.
type passFlags struct {
	inliningDepth                     int
	noDeadCodeAnalysis                bool
	noEquivalentExpressionElimination bool
	configPath                        string
	dumpAST                           bool
}

func addPassFlags(cmd *cobra.Command, pf *passFlags) {
	cmd.Flags().IntVar(&pf.inliningDepth, "inlining-depth", 1000, "maximum nested inline-substitution depth (0 disables inlining)")
	cmd.Flags().BoolVar(&pf.noDeadCodeAnalysis, "no-dead-code-analysis", false, "disable the copy-propagation/allocation-optimisation passes")
	cmd.Flags().BoolVar(&pf.noEquivalentExpressionElimination, "no-equivalent-expression-elimination", false, "disable the redundancy eliminator")
	cmd.Flags().StringVar(&pf.configPath, "config", "", "load pass toggles from a YAML profile (overridden by any flag set on the command line)")
	cmd.Flags().BoolVar(&pf.dumpAST, "dump-ast", false, "dump the decoded typed AST to stderr before compiling")
}

// options builds a single pkg/flowc WithConfig Option from pf: a
// --config file (if given) is applied first, then any flag the user
// actually typed on the command line overrides it field by field, so
// an unset flag never stomps a value the file deliberately set.
func (pf *passFlags) options(cmd *cobra.Command) ([]flowc.Option, error) {
	var cfg pipeline.Config
	if pf.configPath != "" {
		f, err := config.Load(pf.configPath)
		if err != nil {
			return nil, err
		}
		cfg = f.Apply(cfg)
	}

	flags := cmd.Flags()
	if flags.Changed("inlining-depth") || pf.configPath == "" {
		cfg.InliningDepth = pf.inliningDepth
	}
	if flags.Changed("no-dead-code-analysis") || pf.configPath == "" {
		cfg.NoDeadCodeAnalysis = pf.noDeadCodeAnalysis
	}
	if flags.Changed("no-equivalent-expression-elimination") || pf.configPath == "" {
		cfg.NoEquivalentExpressionElimination = pf.noEquivalentExpressionElimination
	}
	return []flowc.Option{flowc.WithConfig(cfg)}, nil
}

func readInput(filename string) ([]byte, error) {
	if filename == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(filename)
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file %s: %w", path, err)
	}
	return f, f.Close, nil
}

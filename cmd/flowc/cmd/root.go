package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowlang/flowc/internal/errs"
)

var (
	// Version information (set by build flags).
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "flowc",
	Short: "Compiler back-end: typed AST to async machine IR",
	Long: `flowc runs the typed-AST-to-machine-IR compiler back-end: register
allocation, SSA-form lowering, redundancy elimination, closure lifting
and weakening, and the Await/Enqueue scheduling discipline, ending in a
machine Program ready for code generation.`,
	Version: Version,
}

// Execute runs the command tree and returns nil on success. On failure it
// does not return: it exits the process itself, with the CompilerError's
// own Kind.ExitCode() (1 for malformed input, 2 for an internal invariant
// violation) or with 1 for any other error.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		if cerr, ok := err.(*errs.CompilerError); ok {
			fmt.Fprintln(os.Stderr, cerr.Format(true))
			os.Exit(cerr.Kind.ExitCode())
		}
		os.Exit(1)
	}
	return nil
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowlang/flowc/internal/astin"
	"github.com/flowlang/flowc/internal/machine"
	"github.com/flowlang/flowc/pkg/flowc"
)

var compileOutput string
var compilePF passFlags

var compileCmd = &cobra.Command{
	Use:   "compile <file.json|->",
	Short: "Run the full pipeline and emit the machine program",
	Long: `compile decodes a typed-AST JSON document, runs it through register
allocation, lowering, redundancy elimination, closure lifting and
weakening, statement reordering, await deduplication and enqueueing,
and writes the resulting machine Program as JSON.

Examples:
  flowc compile program.json
  flowc compile program.json -o program.out.json
  cat program.json | flowc compile -`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)
	compileCmd.Flags().StringVarP(&compileOutput, "output", "o", "", "output file (default: stdout)")
	addPassFlags(compileCmd, &compilePF)
}

func runCompile(cmd *cobra.Command, args []string) error {
	filename := args[0]

	data, err := readInput(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Compiling %s...\n", filename)
	}

	opts, err := compilePF.options(cmd)
	if err != nil {
		return err
	}

	if compilePF.dumpAST {
		ast, derr := astin.Decode(data)
		if derr != nil {
			return derr
		}
		dumped, derr := astin.Dump(ast)
		if derr != nil {
			return derr
		}
		fmt.Fprintln(os.Stderr, string(dumped))
	}

	res, err := flowc.CompileBytes(data, opts...)
	if err != nil {
		return err
	}

	out, closeFn, err := openOutput(compileOutput)
	if err != nil {
		return err
	}
	defer closeFn()

	dumped, err := machine.Dump(res.Machine)
	if err != nil {
		return fmt.Errorf("encoding machine program: %w", err)
	}
	if _, err := out.Write(append(dumped, '\n')); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Compiled %s: %d function definition(s)\n", filename, len(res.Machine.FnDefs))
	}
	return nil
}

package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowlang/flowc/internal/astin"
	"github.com/flowlang/flowc/pkg/flowc"
)

var exportVectorFile string
var vectorPF passFlags

var vectorCmd = &cobra.Command{
	Use:   "vector <file.json|->",
	Short: "Run the pipeline and emit only the entry point's code vector",
	Long: `vector decodes a typed-AST JSON document, runs lowering, optimisation
and translation, and writes the code-size vector (C11) of the entry
point as two tab-separated lines: a header of 13 form names and 21
operator names, then a line of their counts.

Examples:
  flowc vector program.json
  flowc vector program.json --export-vector-file vector.tsv`,
	Args: cobra.ExactArgs(1),
	RunE: runVector,
}

func init() {
	rootCmd.AddCommand(vectorCmd)
	vectorCmd.Flags().StringVar(&exportVectorFile, "export-vector-file", "", "write the code vector here instead of stdout")
	addPassFlags(vectorCmd, &vectorPF)
}

func runVector(cmd *cobra.Command, args []string) error {
	filename := args[0]

	data, err := readInput(filename)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filename, err)
	}

	opts, err := vectorPF.options(cmd)
	if err != nil {
		return err
	}

	if vectorPF.dumpAST {
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

	vec, lo, hi, err := flowc.Vector(bytes.NewReader(data), opts...)
	if err != nil {
		return err
	}

	out, closeFn, err := openOutput(exportVectorFile)
	if err != nil {
		return err
	}
	defer closeFn()

	if _, err := fmt.Fprint(out, vec.ExportTSV()); err != nil {
		return fmt.Errorf("writing vector: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Estimated code size: [%d, %d] instructions\n", lo, hi)
	}
	return nil
}

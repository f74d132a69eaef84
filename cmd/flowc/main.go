// Command flowc is the compiler back-end's CLI: a thin wrapper over
// cmd/flowc/cmd's cobra command tree.
package main

import (
	"os"

	"github.com/flowlang/flowc/cmd/flowc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

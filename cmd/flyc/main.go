// Command flyc is a thin driver over the flyc compiler core: it reads
// source files from disk, invokes the public API (flyc.Parse/Check/
// Compile), and renders diagnostics and class files. Everything it
// does beyond argument parsing and file I/O belongs to the core
// package; this binary exists only to exercise that API from a
// terminal.
package main

import (
	"fmt"
	"os"

	"github.com/flylang/flyc/cmd/flyc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

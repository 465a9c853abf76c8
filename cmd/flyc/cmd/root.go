package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Flags shared by every subcommand that reads a source file.
var (
	jsonOutput    bool
	plainOutput   bool
	warningsAsErr bool
)

var rootCmd = &cobra.Command{
	Use:   "flyc",
	Short: "Flylang compiler",
	Long: `flyc compiles Flylang source files to target-VM class files.

Flylang is a statically typed, expression-oriented language with
Rust/Swift-inspired syntax: sum types, traits, generics, pattern
matching, async/await, and sparks (immutable records with hooks).

This binary is a thin driver over the compiler core: lex, parse,
resolve, analyze, and (for "compile") generate class files. It has no
class-resolution capability of its own beyond an empty one, so
compiling a unit that references host-VM classes outside itself
requires a build-tool integration that supplies a populated
ClassEnvironment; see the core's public API docs.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit diagnostics as newline-delimited JSON")
	rootCmd.PersistentFlags().BoolVar(&plainOutput, "plain", false, "disable ANSI color in diagnostic output")
	rootCmd.PersistentFlags().BoolVar(&warningsAsErr, "warnings-as-errors", false, "treat warning diagnostics as errors")
}

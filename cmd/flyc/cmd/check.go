package cmd

import (
	"fmt"
	"os"

	"github.com/flylang/flyc"
	"github.com/flylang/flyc/internal/resolver"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "Lex, parse, and semantically analyze a file without generating code",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := readSource(path)
	if err != nil {
		return err
	}

	result := flyc.Check(path, src, resolver.EmptyClassEnvironment{})
	errCount := printDiagnostics(result.Diagnostics)
	if errCount == 0 {
		fmt.Printf("%s: no errors\n", path)
	}
	if errCount > 0 {
		os.Exit(1)
	}
	return nil
}

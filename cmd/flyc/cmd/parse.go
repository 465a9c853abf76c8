package cmd

import (
	"fmt"
	"os"

	"github.com/flylang/flyc"
	"github.com/flylang/flyc/internal/ast"
	"github.com/spf13/cobra"
)

var parseCmd = &cobra.Command{
	Use:   "parse [file]",
	Short: "Parse a Flylang source file and print its AST",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := readSource(path)
	if err != nil {
		return err
	}

	cu, reports := flyc.Parse(path, src)
	errCount := printDiagnostics(reports)
	if cu != nil {
		fmt.Println(ast.Print(cu))
	}
	if errCount > 0 {
		os.Exit(1)
	}
	return nil
}

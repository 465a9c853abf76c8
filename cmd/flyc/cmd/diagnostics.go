package cmd

import (
	"fmt"
	"os"

	"github.com/flylang/flyc/internal/diag"
)

// printDiagnostics renders reports to stderr in the mode the global
// flags selected, returning the count of error-severity reports so
// callers can decide the process exit code (§6.5 of the core's
// contract: 0 success, 1 any error, 2 internal failure).
func printDiagnostics(reports []*diag.Report) int {
	errCount := 0
	for _, r := range reports {
		if r.Severity == diag.SeverityError {
			errCount++
		}
	}
	if jsonOutput {
		for _, r := range reports {
			line, err := r.ToJSON(false)
			if err != nil {
				continue
			}
			fmt.Fprintln(os.Stderr, line)
		}
		return errCount
	}
	diag.Render(os.Stderr, reports, plainOutput)
	return errCount
}

func readSource(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("flyc: cannot read %s: %w", path, err)
	}
	return data, nil
}

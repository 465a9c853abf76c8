package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/flylang/flyc"
	"github.com/flylang/flyc/internal/config"
	"github.com/flylang/flyc/internal/resolver"
	"github.com/spf13/cobra"
)

var (
	outDir        string
	emitDebugInfo bool
	configPath    string
)

var compileCmd = &cobra.Command{
	Use:   "compile [file]",
	Short: "Compile a Flylang source file to target-VM class files",
	Long: `Compile a Flylang source file through every pipeline phase and
write the resulting class files to disk.

Each emitted class is written following the canonical collaborator
convention (§6.3): <out_dir>/<package_path>/<simple_name>.class, where
the fully qualified internal name's slashes become directories.`,
	Args: cobra.ExactArgs(1),
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&outDir, "out", "o", "out", "output directory for class files")
	compileCmd.Flags().BoolVar(&emitDebugInfo, "debug-info", false, "set the emit_debug_info option (emitted class files carry no line number table)")
	compileCmd.Flags().StringVar(&configPath, "config", "", "path to a flylang.yaml project file (default: search the source file's directory)")
}

func runCompile(cmd *cobra.Command, args []string) error {
	path := args[0]
	src, err := readSource(path)
	if err != nil {
		return err
	}

	opts, err := loadOptions(path)
	if err != nil {
		return err
	}
	opts.EmitDebugInfo = opts.EmitDebugInfo || emitDebugInfo
	opts.TreatWarningsAsErrors = opts.TreatWarningsAsErrors || warningsAsErr

	result, compileErr := flyc.Compile(path, src, resolver.EmptyClassEnvironment{}, opts)
	errCount := printDiagnostics(result.Diagnostics)
	if compileErr != nil || errCount > 0 {
		os.Exit(1)
	}

	if err := writeClasses(outDir, result.Classes); err != nil {
		return err
	}
	fmt.Printf("%s: wrote %d class(es) to %s\n", path, len(result.Classes), outDir)
	return nil
}

func loadOptions(sourcePath string) (flyc.Options, error) {
	if configPath != "" {
		return config.LoadFile(configPath)
	}
	return config.LoadDir(filepath.Dir(sourcePath))
}

func writeClasses(dir string, classes map[string][]byte) error {
	for fqName, data := range classes {
		rel := fqName + ".class"
		dest := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("flyc: cannot create %s: %w", filepath.Dir(dest), err)
		}
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return fmt.Errorf("flyc: cannot write %s: %w", dest, err)
		}
	}
	return nil
}

// Package config loads the compiler's Options from a project
// `flylang.yaml`/`.flylang.yaml` file, the way the teacher's
// internal/eval_harness loads benchmark specs with the same
// gopkg.in/yaml.v3 library.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WarningLevel holds the warning_level option. No compiler phase reads
// it, so it does not change which warning-severity diagnostics surface.
type WarningLevel string

const (
	WarningOff     WarningLevel = "off"
	WarningDefault WarningLevel = "default"
	WarningAll     WarningLevel = "all"
)

// Options are the compiler options recognized by compile/check, loadable
// from a YAML project file. Unrecognized keys are skipped silently:
// neither Parse nor LoadFile reports them, as a warning or otherwise.
type Options struct {
	ModuleRoot            string       `yaml:"module_root"`
	EmitDebugInfo         bool         `yaml:"emit_debug_info"`
	WarningLevel          WarningLevel `yaml:"warning_level"`
	TreatWarningsAsErrors bool         `yaml:"treat_warnings_as_errors"`
}

// Default returns the options a compile uses when no project file is
// present.
func Default() Options {
	return Options{WarningLevel: WarningDefault}
}

// candidateNames are the project file names searched for, in order, by
// LoadDir.
var candidateNames = []string{"flylang.yaml", ".flylang.yaml"}

// LoadDir looks for a project config file in dir, returning Default()
// with no error if neither candidate name exists.
func LoadDir(dir string) (Options, error) {
	for _, name := range candidateNames {
		path := dir + string(os.PathSeparator) + name
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return Default(), nil
}

// LoadFile parses a project config file's bytes into Options, starting
// from Default() so fields the file omits keep their defaults.
func LoadFile(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes raw YAML bytes into Options. A node whose keys don't
// match any known field is accepted by yaml.v3's default decoding
// behavior (unknown keys are skipped), matching the "unrecognized
// options are ignored" contract; KnownFields(true) decoding that would
// hard-fail on them is deliberately not used here.
func Parse(data []byte) (Options, error) {
	opts := Default()
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, fmt.Errorf("config: invalid YAML: %w", err)
	}
	if opts.WarningLevel == "" {
		opts.WarningLevel = WarningDefault
	}
	return opts, nil
}

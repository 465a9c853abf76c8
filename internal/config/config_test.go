package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want Options
	}{
		{
			name: "empty file keeps defaults",
			yaml: ``,
			want: Default(),
		},
		{
			name: "overrides recognized fields",
			yaml: "module_root: ./src\nemit_debug_info: true\nwarning_level: all\ntreat_warnings_as_errors: true\n",
			want: Options{ModuleRoot: "./src", EmitDebugInfo: true, WarningLevel: WarningAll, TreatWarningsAsErrors: true},
		},
		{
			name: "unrecognized keys are ignored",
			yaml: "module_root: ./src\nnonsense_key: 42\n",
			want: Options{ModuleRoot: "./src", WarningLevel: WarningDefault},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse([]byte(tt.yaml))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Parse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseInvalidYAML(t *testing.T) {
	_, err := Parse([]byte("module_root: [unterminated\n"))
	if err == nil {
		t.Fatal("expected an error for malformed YAML")
	}
}

func TestLoadDirNoProjectFile(t *testing.T) {
	got, err := LoadDir(t.TempDir())
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Errorf("LoadDir mismatch (-want +got):\n%s", diff)
	}
}

package completion

import (
	"bytes"
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name      string
		shell     string
		wantErr   bool
		contains  []string
		errSubstr string
	}{
		{
			name:  "bash generates valid script",
			shell: "bash",
			contains: []string{
				"_zhi_completions",
				"complete -F _zhi_completions zhi",
				"--color",
				"mcp ui popup history completion",
				"auto always never",
			},
		},
		{
			name:  "zsh generates valid script",
			shell: "zsh",
			contains: []string{
				"#compdef zhi",
				"_zhi",
				"_arguments",
				"debug info warn error",
			},
		},
		{
			name:  "fish generates valid script",
			shell: "fish",
			contains: []string{
				"complete -c zhi",
				"__fish_use_subcommand",
				"bash fish zsh",
			},
		},
		{
			name:      "unsupported shell returns error",
			shell:     "powershell",
			wantErr:   true,
			errSubstr: "unsupported shell",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			err := Generate(&buf, tt.shell)

			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errSubstr) {
					t.Errorf("error %q should contain %q", err.Error(), tt.errSubstr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			output := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(output, want) {
					t.Errorf("output should contain %q", want)
				}
			}
			if strings.Contains(output, "{{") {
				t.Error("output should not contain unexpanded template actions")
			}
		})
	}
}

func TestSupportedShells(t *testing.T) {
	shells := SupportedShells()
	if strings.Join(shells, ",") != "bash,fish,zsh" {
		t.Errorf("Expected sorted shells bash,fish,zsh, got %v", shells)
	}
}

// Package completion provides shell completion scripts for zhi.
package completion

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"
)

// Shell completion script templates
var templates = map[string]string{
	"bash": bashTemplate,
	"zsh":  zshTemplate,
	"fish": fishTemplate,
}

// Values offered for subcommands and flags
var (
	// Commands are the zhi subcommands
	Commands = []string{"mcp", "ui", "popup", "history", "completion"}

	// ColorValues are valid values for --color
	ColorValues = []string{"auto", "always", "never"}

	// LogLevelValues are valid values for --log-level
	LogLevelValues = []string{"debug", "info", "warn", "error"}
)

type templateData struct {
	Commands       string
	ColorValues    string
	LogLevelValues string
	Shells         string
}

// Generate writes the completion script for the given shell to the writer.
func Generate(w io.Writer, shell string) error {
	text, ok := templates[shell]
	if !ok {
		return fmt.Errorf("unsupported shell: %s (supported: %s)", shell, strings.Join(SupportedShells(), ", "))
	}

	tmpl, err := template.New(shell).Parse(text)
	if err != nil {
		return err
	}

	return tmpl.Execute(w, templateData{
		Commands:       strings.Join(Commands, " "),
		ColorValues:    strings.Join(ColorValues, " "),
		LogLevelValues: strings.Join(LogLevelValues, " "),
		Shells:         strings.Join(SupportedShells(), " "),
	})
}

// SupportedShells returns a list of supported shell names.
func SupportedShells() []string {
	shells := make([]string, 0, len(templates))
	for shell := range templates {
		shells = append(shells, shell)
	}
	sort.Strings(shells)
	return shells
}

// Package color decides whether terminal output is colored.
package color

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Mode is the value of the --color flag
type Mode string

const (
	Auto   Mode = "auto"
	Always Mode = "always"
	Never  Mode = "never"
)

// Modes lists the accepted color modes
var Modes = []Mode{Auto, Always, Never}

// ParseMode validates a color mode. An empty string means Auto.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "":
		return Auto, nil
	case Auto, Always, Never:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("invalid color mode %q (expected auto, always or never)", s)
	}
}

// Enabled reports whether output written to f should be colored
func (m Mode) Enabled(f *os.File) bool {
	switch m {
	case Always:
		return true
	case Never:
		return false
	default:
		if f == nil {
			return false
		}
		if info, err := f.Stat(); err != nil || info.Mode()&os.ModeCharDevice == 0 {
			return false
		}
		return os.Getenv("NO_COLOR") == ""
	}
}

// Configure sets the global lipgloss color profile for m.
// Call it before rendering anything; Auto keeps lipgloss's own detection.
func Configure(m Mode) {
	switch m {
	case Always:
		lipgloss.SetColorProfile(termenv.TrueColor)
	case Never:
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// Package render holds the markdown renderer and lipgloss styles shared by
// the popup form and the history listing.
package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/martinemde/zhi/internal/color"
	"github.com/muesli/termenv"
)

var (
	TitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	LabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	DimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	SuccessIcon = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).SetString("✓")
	ErrorIcon   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).SetString("✗")
	CancelIcon  = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).SetString("☐")

	// MessageBox frames a popup message
	MessageBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// NewMarkdownRenderer returns a glamour renderer for mode, or nil when
// markdown should be shown as plain text. A width of 0 disables wrapping.
func NewMarkdownRenderer(mode color.Mode, width int) *glamour.TermRenderer {
	var opts []glamour.TermRendererOption

	switch mode {
	case color.Never:
		return nil
	case color.Always:
		opts = append(opts,
			glamour.WithAutoStyle(),
			glamour.WithColorProfile(termenv.TrueColor),
			glamour.WithWordWrap(width),
		)
	default:
		opts = append(opts,
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil
	}
	return r
}

// Markdown renders text with r, falling back to the text itself
func Markdown(r *glamour.TermRenderer, text string) string {
	if r == nil {
		return text
	}
	rendered, err := r.Render(text)
	if err != nil {
		return text
	}
	// glamour pads its output with blank lines
	return strings.Trim(rendered, "\n")
}

// Truncate shortens s to max runes, marking the cut with an ellipsis
func Truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(runes[:max-1]) + "…"
}

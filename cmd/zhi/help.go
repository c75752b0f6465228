package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/martinemde/zhi/internal/color"
	"github.com/martinemde/zhi/internal/render"
)

func printHelp(w io.Writer, colorFlag string) {
	mode, err := color.ParseMode(colorFlag)
	if err != nil {
		mode = color.Auto
	}

	// Help only goes to a terminal when w is stdout
	out, _ := w.(*os.File)
	useColors := mode.Enabled(out)

	var mdRenderer *glamour.TermRenderer
	if useColors {
		mdRenderer = render.NewMarkdownRenderer(mode, 0)
	}

	titleStyle := lipgloss.NewStyle().Bold(true).MarginBottom(1)
	sectionStyle := lipgloss.NewStyle().Bold(true).MarginTop(1)
	optionStyle := lipgloss.NewStyle()
	descStyle := lipgloss.NewStyle()

	if useColors {
		titleStyle = titleStyle.Foreground(lipgloss.Color("6"))     // Cyan
		sectionStyle = sectionStyle.Foreground(lipgloss.Color("3")) // Yellow
		optionStyle = optionStyle.Foreground(lipgloss.Color("2"))   // Green
		descStyle = descStyle.Foreground(lipgloss.Color("7"))       // Light gray
	}

	title := titleStyle.Render("zhi - Ask the human before the agent acts")

	usage := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("Usage:"),
		"  zhi [options] <command> [command options]",
	)

	description := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("Description:"),
		descStyle.Render("  zhi is an MCP server with a single tool, zhi, that shows the agent's"),
		descStyle.Render("  question to you in a popup and returns your answer: picked options,"),
		descStyle.Render("  free text and attached images."),
	)

	commands := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("Commands:"),
		fmt.Sprintf("  %s                  Serve the zhi tool over MCP stdio", optionStyle.Render("mcp")),
		fmt.Sprintf("  %s                   Show popups from MCP servers in this terminal", optionStyle.Render("ui")),
		fmt.Sprintf("  %s      Show a single popup and print the response", optionStyle.Render("popup --request")),
		fmt.Sprintf("  %s              List recorded interactions (--limit, --client)", optionStyle.Render("history")),
		fmt.Sprintf("  %s   Print a shell completion script", optionStyle.Render("completion <shell>")),
	)

	options := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("Options:"),
		fmt.Sprintf("  %s            Config file (YAML or TOML)", optionStyle.Render("--config")),
		fmt.Sprintf("  %s             Control color output (auto, always, never)", optionStyle.Render("--color")),
		fmt.Sprintf("  %s         Log level (debug, info, warn, error)", optionStyle.Render("--log-level")),
		fmt.Sprintf("  %s           Show version information", optionStyle.Render("--version")),
		fmt.Sprintf("  %s              Show this help message", optionStyle.Render("--help")),
	)

	examplesBlock := `~~~sh
# Terminal 1: wait for popups
zhi ui

# Register the MCP server with your agent
claude mcp add zhi -- zhi mcp

# Without a ui terminal, run a popup per request instead
ZHI_TRANSPORT=exec zhi mcp

# Review the last answers given to one agent
zhi history --client claude-code --limit 5
~~~`

	examples := lipgloss.JoinVertical(lipgloss.Left,
		sectionStyle.Render("Examples:"),
		strings.TrimSpace(render.Markdown(mdRenderer, examplesBlock)),
	)

	help := lipgloss.JoinVertical(lipgloss.Left,
		title,
		usage,
		description,
		commands,
		options,
		examples,
	)

	_, _ = fmt.Fprintln(w, help)
}

package app

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles shared by the TUI and the plain command output
var (
	appStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7"))

	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7aa2f7")).
			Align(lipgloss.Left)

	subHeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a9b1d6"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ece6a")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e0af68")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f7768e")).
			Bold(true)

	engineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bb9af7"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1a1b26")).
			Background(lipgloss.Color("#7dcfff"))

	footerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func logo() string {
	top := " █▀█ █▀█ █ █▀█ █▄ █"
	bottom := fmt.Sprintf(" █▄█ █▀▄ █ █▄█ █ ▀█  v%s", version)
	if len(top) < len(bottom) {
		top += strings.Repeat(" ", len(bottom)-len(top))
	}
	return logoStyle.Render(top + "\n" + bottom)
}

func wrapTextWithIndent(prefix, text string, width int) string {
	prefixWidth := lipgloss.Width(prefix)
	if width-prefixWidth <= 0 {
		return prefix + text
	}
	indent := strings.Repeat(" ", prefixWidth)
	wrapped := lipgloss.NewStyle().Width(width - prefixWidth).Render(text)
	return prefix + strings.ReplaceAll(wrapped, "\n", "\n"+indent)
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}

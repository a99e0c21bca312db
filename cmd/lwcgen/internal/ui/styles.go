package ui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// Style definitions
var (
	primaryColor = lipgloss.Color("#0176d3")
	successColor = lipgloss.Color("#10b981")
	warningColor = lipgloss.Color("#f59e0b")
	errorColor   = lipgloss.Color("#ef4444")
	mutedColor   = lipgloss.Color("#94a3b8")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	labelStyle = lipgloss.NewStyle().
			Width(14)

	selectedStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(successColor).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(1, 2)
)

// Compiled formats the status line of a written output.
func Compiled(source, output string, cached bool) string {
	line := successStyle.Render("✓") + " " + source + mutedStyle.Render(" → "+output)
	if cached {
		line += mutedStyle.Render(" (cached)")
	}
	return line
}

// Failed formats the status line of a failed compilation.
func Failed(source string, err error) string {
	return errorStyle.Render("✗") + " " + source + "\n  " + errorStyle.Render(err.Error())
}

// Summary formats the totals line of a compile run.
func Summary(ok, failed int, elapsed time.Duration) string {
	text := fmt.Sprintf("%d compiled, %d failed in %s", ok, failed, elapsed.Round(time.Millisecond))
	if failed > 0 {
		return warningStyle.Render(text)
	}
	return successStyle.Render(text)
}

// Info formats a neutral status line.
func Info(text string) string {
	return selectedStyle.Render("›") + " " + text
}

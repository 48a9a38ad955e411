// Package watch implements the pilotwatch TUI: a live view of which process
// controls the agent, polled from the control API.
package watch

import "github.com/charmbracelet/lipgloss"

type Theme struct {
	StatusOK     lipgloss.Style
	StatusPaused lipgloss.Style
	StatusFailed lipgloss.Style

	Border lipgloss.Style
	Title  lipgloss.Style
	Header lipgloss.Style
	Dim    lipgloss.Style
	Accent lipgloss.Style
}

func NewDefaultTheme() Theme {
	purple := lipgloss.Color("#874BFD")

	return Theme{
		StatusOK:     lipgloss.NewStyle().Foreground(lipgloss.Color("#00FF00")),
		StatusPaused: lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFF00")),
		StatusFailed: lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000")),

		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(purple).
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Padding(0, 1),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61AFEF")),
		Dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Accent: lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),
	}
}

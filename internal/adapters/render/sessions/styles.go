package sessions

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title   lipgloss.Style
	header  lipgloss.Style
	session lipgloss.Style
	detail  lipgloss.Style
	stale   lipgloss.Style
	empty   lipgloss.Style
	section lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true),
		header:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		session: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		detail:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		stale:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		empty:   lipgloss.NewStyle().Faint(true),
		section: lipgloss.NewStyle().MarginTop(1),
	}
}

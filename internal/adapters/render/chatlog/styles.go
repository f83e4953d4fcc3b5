package chatlog

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title      lipgloss.Style
	header     lipgloss.Style
	sender     lipgloss.Style
	bot        lipgloss.Style
	original   lipgloss.Style
	translated lipgloss.Style
	message    lipgloss.Style
	section    lipgloss.Style
	empty      lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:      lipgloss.NewStyle().Bold(true),
		header:     lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		sender:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		bot:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("170")),
		original:   lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		translated: lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		message:    lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("252")),
		section:    lipgloss.NewStyle().MarginTop(1),
		empty:      lipgloss.NewStyle().Faint(true),
	}
}

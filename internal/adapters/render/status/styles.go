package status

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	header   lipgloss.Style
	name     lipgloss.Style
	key      lipgloss.Style
	detail   lipgloss.Style
	ok       lipgloss.Style
	warning  lipgloss.Style
	section  lipgloss.Style
	empty    lipgloss.Style
	strategy lipgloss.Style
	gateOpen lipgloss.Style
	gateShut lipgloss.Style
	bracket  lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:    lipgloss.NewStyle().Bold(true),
		header:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		name:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		key:      lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		detail:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		ok:       lipgloss.NewStyle().Foreground(lipgloss.Color("114")),
		warning:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:  lipgloss.NewStyle().MarginTop(1),
		empty:    lipgloss.NewStyle().Faint(true),
		strategy: lipgloss.NewStyle().Foreground(lipgloss.Color("159")),
		gateOpen: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114")),
		gateShut: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("245")),
		bracket:  lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
	}
}

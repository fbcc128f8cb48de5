package debug

import "github.com/charmbracelet/lipgloss"

type styles struct {
	trap        lipgloss.Style
	address     lipgloss.Style
	instruction lipgloss.Style
	cpu         lipgloss.Style
	mem         lipgloss.Style
	prompt      lipgloss.Style
}

// ANSI colours: 1 red, 2 green, 3 yellow, 4 blue, 5 magenta, 7 white
func newStyles() styles {
	return styles{
		trap:        lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(7)).Background(lipgloss.ANSIColor(1)),
		address:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(2)),
		instruction: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.ANSIColor(3)),
		cpu:         lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(4)),
		mem:         lipgloss.NewStyle().Foreground(lipgloss.ANSIColor(5)),
		prompt:      lipgloss.NewStyle().Bold(true),
	}
}

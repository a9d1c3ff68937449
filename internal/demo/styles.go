package demo

import "github.com/charmbracelet/lipgloss"

type styles struct {
	crumb  lipgloss.Style
	body   lipgloss.Style
	faint  lipgloss.Style
	modal  lipgloss.Style
	sheet  lipgloss.Style
	status lipgloss.Style
	help   lipgloss.Style
}

func newStyles(t theme) styles {
	accent := lipgloss.Color("63")
	text := lipgloss.Color("252")
	if t.Dark {
		accent = lipgloss.Color("212")
		text = lipgloss.Color("15")
	}
	return styles{
		crumb: lipgloss.NewStyle().Bold(true).Foreground(accent).Padding(0, 1),
		body: lipgloss.NewStyle().
			Foreground(text).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1),
		faint: lipgloss.NewStyle().Faint(true).Padding(0, 1),
		modal: lipgloss.NewStyle().
			Border(lipgloss.DoubleBorder()).
			BorderForeground(accent).
			Padding(1, 3),
		sheet: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), true, false, false, false).
			BorderForeground(accent).
			Padding(0, 1),
		status: lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Padding(0, 1),
		help:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Padding(0, 1),
	}
}

package tui

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title    lipgloss.Style
	muted    lipgloss.Style
	selected lipgloss.Style
	banner   lipgloss.Style
	notice   lipgloss.Style
	overlay  lipgloss.Style
	label    lipgloss.Style
	focused  lipgloss.Style
	prompt   lipgloss.Style
}

func newStyles(dark bool) styles {
	fg, muted, accent, sel := lipgloss.Color("#111827"), lipgloss.Color("#6B7280"), lipgloss.Color("#2563EB"), lipgloss.Color("#E0E7FF")
	if dark {
		fg, muted, accent, sel = lipgloss.Color("#F9FAFB"), lipgloss.Color("#9CA3AF"), lipgloss.Color("#60A5FA"), lipgloss.Color("#1E3A8A")
	}
	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(accent),
		muted:    lipgloss.NewStyle().Foreground(muted),
		selected: lipgloss.NewStyle().Background(sel).Foreground(fg),
		banner:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Background(lipgloss.Color("#B91C1C")).Padding(0, 1),
		notice:   lipgloss.NewStyle().Foreground(lipgloss.Color("#D97706")),
		overlay:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(0, 1),
		label:    lipgloss.NewStyle().Foreground(muted).Width(12),
		focused:  lipgloss.NewStyle().Foreground(accent).Bold(true).Width(12),
		prompt:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D97706")),
	}
}

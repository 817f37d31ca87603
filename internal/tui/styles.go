package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"outgo/internal/core"
)

// ------- minimal styling helpers (Lip Gloss) -------
var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	mutedStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	helpStyle     = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Reverse(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// categoryColors assigns one stable color per category for chart bars.
var categoryColors = map[core.Category]lipgloss.Color{
	core.Food:           "42",
	core.Housing:        "12",
	core.Transportation: "214",
	core.Entertainment:  "13",
	core.Other:          "245",
}

func categoryStyle(c core.Category) lipgloss.Style {
	color, ok := categoryColors[c]
	if !ok {
		color = "245"
	}
	return lipgloss.NewStyle().Foreground(color)
}

// bar renders a horizontal bar of the given fraction of width.
func bar(fraction float64, width int) string {
	if width <= 0 {
		width = 20
	}
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	filled := int(fraction * float64(width))
	if fraction > 0 && filled == 0 {
		filled = 1 // non-zero totals always show at least one cell
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

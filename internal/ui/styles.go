package ui

import (
	"github.com/charmbracelet/lipgloss"
)

type Styles struct {
	Normal      lipgloss.Style
	Selected    lipgloss.Style
	SelectedDim lipgloss.Style
	Today       lipgloss.Style
	Weekend     lipgloss.Style
	Header      lipgloss.Style
	DayHeader   lipgloss.Style
	Event       lipgloss.Style
	Marked      lipgloss.Style
	Muted       lipgloss.Style
	Help        lipgloss.Style
	Message     lipgloss.Style
	Error       lipgloss.Style
	Border      lipgloss.Style
	Focused     lipgloss.Style
}

// DefaultStyles builds the palette, letting colors override entries by
// name (header, selected, today, event, weekend, muted, error).
func DefaultStyles(colors map[string]string) Styles {
	color := func(name, fallback string) lipgloss.Color {
		if c, ok := colors[name]; ok && c != "" {
			return lipgloss.Color(c)
		}
		return lipgloss.Color(fallback)
	}

	header := color("header", "220")
	selected := color("selected", "220")
	today := color("today", "220")
	event := color("event", "40")
	weekend := color("weekend", "39")
	muted := color("muted", "241")
	errColor := color("error", "196")

	return Styles{
		Normal: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("235")).
			Background(selected).
			Bold(true),
		SelectedDim: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("238")),
		Today: lipgloss.NewStyle().
			Foreground(today).
			Bold(true).
			Underline(true),
		Weekend: lipgloss.NewStyle().
			Foreground(weekend),
		Header: lipgloss.NewStyle().
			Foreground(header).
			Bold(true),
		DayHeader: lipgloss.NewStyle().
			Foreground(header).
			Bold(true).
			Underline(true),
		Event: lipgloss.NewStyle().
			Foreground(event),
		Marked: lipgloss.NewStyle().
			Foreground(event).
			Bold(true),
		Muted: lipgloss.NewStyle().
			Foreground(muted),
		Help: lipgloss.NewStyle().
			Foreground(muted),
		Message: lipgloss.NewStyle().
			Foreground(lipgloss.Color("220")).
			Background(lipgloss.Color("235")).
			Padding(0, 1),
		Error: lipgloss.NewStyle().
			Foreground(errColor).
			Bold(true),
		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("238")),
		Focused: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(selected),
	}
}

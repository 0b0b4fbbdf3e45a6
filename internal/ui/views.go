package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

type helpScreen struct{}

func (helpScreen) kind() screenKind { return screenHelp }

// Any key returns to browsing.
func (helpScreen) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	m.pop()
	return nil
}

func (helpScreen) view(m *Model) string {
	return m.renderModal(
		m.styles.Header.Render("termcal Help"),
		"",
		m.styles.Normal.Render("Navigation:"),
		m.styles.Help.Render("  tab     - Switch between calendar and events"),
		m.styles.Help.Render("  j/↓     - Next week / next event"),
		m.styles.Help.Render("  k/↑     - Previous week / previous event"),
		m.styles.Help.Render("  h/←     - Previous day / focus calendar"),
		m.styles.Help.Render("  l/→     - Next day / open event"),
		m.styles.Help.Render("  enter   - Focus events / open event"),
		m.styles.Help.Render("  t       - Go to today"),
		"",
		m.styles.Normal.Render("Actions:"),
		m.styles.Help.Render("  n       - New event"),
		m.styles.Help.Render("  /       - Search all events"),
		m.styles.Help.Render("  c       - Choose calendars"),
		m.styles.Help.Render("  r       - Refresh"),
		m.styles.Help.Render("  T       - Toggle 12/24-hour time"),
		m.styles.Help.Render("  ?       - Toggle help"),
		m.styles.Help.Render("  q       - Quit"),
		"",
		m.styles.Normal.Render("Event details:"),
		m.styles.Help.Render("  d       - Delete event"),
		m.styles.Help.Render("  esc     - Back"),
		"",
		m.styles.Help.Render("Press any key to return..."),
	)
}

package ui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// browseScreen is the bottom of the stack: the calendar grid and the
// event list, one of which has focus.
type browseScreen struct{}

func (browseScreen) kind() screenKind { return screenBrowse }

func (browseScreen) view(m *Model) string { return m.renderBrowse() }

func (browseScreen) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c":
		return tea.Quit

	case "tab":
		if m.focus == PanelCalendar {
			m.focus = PanelEvents
		} else {
			m.focus = PanelCalendar
		}

	case "j", "down":
		if m.focus == PanelCalendar {
			m.moveDate(m.selectedDate.AddDate(0, 0, 7))
		} else {
			m.moveSelection(1)
		}

	case "k", "up":
		if m.focus == PanelCalendar {
			m.moveDate(m.selectedDate.AddDate(0, 0, -7))
		} else {
			m.moveSelection(-1)
		}

	case "h", "left":
		if m.focus == PanelCalendar {
			m.moveDate(m.selectedDate.AddDate(0, 0, -1))
		} else {
			m.focus = PanelCalendar
		}

	case "l", "right":
		if m.focus == PanelCalendar {
			m.moveDate(m.selectedDate.AddDate(0, 0, 1))
		} else {
			m.openSelected()
		}

	case "enter":
		if m.focus == PanelCalendar {
			m.focus = PanelEvents
		} else {
			m.openSelected()
		}

	case "n":
		if len(m.writableCalendars()) == 0 {
			m.setStatus("No writable calendars")
			return nil
		}
		return m.pushWizard()

	case "r":
		m.cache.clear()
		m.loadCalendars()
		m.refresh()
		if m.status == "" {
			m.setStatus("Refreshed")
		}

	case "t":
		m.moveDate(m.now())

	case "c":
		if len(m.calendars) == 0 {
			m.setStatus("No calendars")
			return nil
		}
		m.push(&toggleScreen{})

	case "/":
		return m.pushSearch()

	case "?":
		m.push(helpScreen{})

	case "T":
		m.state.Use24HourTime = !m.state.Use24HourTime
		m.persistState()
		if m.status == "" {
			if m.state.Use24HourTime {
				m.setStatus("Using 24-hour time")
			} else {
				m.setStatus("Using 12-hour time")
			}
		}

	default:
		m.setStatus("Unknown key %q, press ? for help", msg.String())
	}
	return nil
}

func (m *Model) openSelected() {
	e, ok := m.selectedEvent()
	if !ok {
		return
	}
	m.push(&detailScreen{event: e})
}

package ui

import (
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"
)

// toggleScreen is a checklist over every known calendar.
type toggleScreen struct {
	cursor int
}

func (*toggleScreen) kind() screenKind { return screenToggle }

func (s *toggleScreen) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "j", "down":
		if s.cursor < len(m.calendars)-1 {
			s.cursor++
		}
	case "k", "up":
		if s.cursor > 0 {
			s.cursor--
		}
	case " ", "x":
		if s.cursor < len(m.calendars) {
			m.toggleCalendar(m.calendars[s.cursor].ID)
		}
	case "esc", "q", "enter", "c", "ctrl+c":
		m.pop()
		m.persistState()
		m.invalidate()
	}
	return nil
}

// toggleCalendar flips id in the enabled set. The first toggle turns the
// implicit "everything" into an explicit list.
func (m *Model) toggleCalendar(id string) {
	if m.state.EnabledCalendarIDs == nil {
		m.state.EnabledCalendarIDs = make([]string, 0, len(m.calendars))
		for _, c := range m.calendars {
			m.state.EnabledCalendarIDs = append(m.state.EnabledCalendarIDs, c.ID)
		}
	}

	if slices.Contains(m.state.EnabledCalendarIDs, id) {
		m.state.EnabledCalendarIDs = slices.DeleteFunc(m.state.EnabledCalendarIDs, func(s string) bool {
			return s == id
		})
		return
	}
	m.state.EnabledCalendarIDs = append(m.state.EnabledCalendarIDs, id)
}

func (s *toggleScreen) view(m *Model) string {
	enabled := m.state.EnabledSet()

	lines := []string{m.styles.Header.Render("Calendars"), ""}
	for i, c := range m.calendars {
		mark := "[ ]"
		if enabled == nil || enabled[c.ID] {
			mark = "[x]"
		}
		line := fmt.Sprintf("%s %s", mark, c.Title)
		if !c.Writable {
			line += m.styles.Muted.Render(" (read-only)")
		}
		if i == s.cursor {
			line = m.styles.Selected.Render(line)
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", m.styles.Help.Render("space toggle | esc done"))

	return m.renderModal(lines...)
}

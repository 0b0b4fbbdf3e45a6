package ui

import (
	"strings"

	"github.com/cwarden/termcal/internal/calendar"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"
)

type detailScreen struct {
	event calendar.Event
}

func (*detailScreen) kind() screenKind { return screenDetail }

func (s *detailScreen) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "q", "enter", "h", "left", "ctrl+c":
		m.pop()
	case "d":
		cal, ok := m.calendarByID(s.event.CalendarID)
		if !ok || !cal.Writable {
			m.setStatus("%s is read-only", s.calendarTitle())
			return nil
		}
		m.push(&confirmDeleteScreen{event: s.event})
	}
	return nil
}

func (s *detailScreen) calendarTitle() string {
	if s.event.CalendarTitle != "" {
		return s.event.CalendarTitle
	}
	return s.event.CalendarID
}

func (s *detailScreen) view(m *Model) string {
	width := m.width - 8
	if width < 20 {
		width = 20
	}

	e := s.event
	lines := []string{
		m.styles.Header.Render(wordwrap.String(e.Title, width)),
		"",
		m.styles.Normal.Render(m.formatSpan(e.Start, e.End, e.AllDay)),
		m.styles.Muted.Render("Calendar: " + s.calendarTitle()),
	}
	if e.Location != "" {
		lines = append(lines, m.styles.Normal.Render(wordwrap.String("Location: "+e.Location, width)))
	}
	if e.URL != "" {
		lines = append(lines, m.styles.Normal.Render("URL: "+e.URL))
	}
	if e.Notes != "" {
		lines = append(lines, "")
		for _, line := range strings.Split(wordwrap.String(e.Notes, width), "\n") {
			lines = append(lines, m.styles.Normal.Render(line))
		}
	}
	lines = append(lines, "", m.styles.Help.Render("d delete | esc back"))

	return m.renderModal(lines...)
}

// confirmDeleteScreen asks before removing an event from the store.
type confirmDeleteScreen struct {
	event calendar.Event
}

func (*confirmDeleteScreen) kind() screenKind { return screenConfirmDelete }

func (s *confirmDeleteScreen) update(m *Model, msg tea.KeyMsg) tea.Cmd {
	if msg.String() != "y" {
		m.pop()
		m.setStatus("Delete cancelled")
		return nil
	}

	ctx, cancel := m.context()
	defer cancel()

	m.popAll()
	if err := m.store.DeleteEvent(ctx, s.event.ID); err != nil {
		m.setError("Could not delete event", err)
		return nil
	}
	m.invalidate()
	m.setStatus("Deleted %q", s.event.Title)
	return nil
}

func (s *confirmDeleteScreen) view(m *Model) string {
	return m.renderModal(
		m.styles.Header.Render("Delete event?"),
		"",
		m.styles.Normal.Render(s.event.Title),
		m.styles.Muted.Render(m.formatSpan(s.event.Start, s.event.End, s.event.AllDay)),
		"",
		m.styles.Help.Render("y delete | any other key cancels"),
	)
}
